package store

import (
	"database/sql"
	"fmt"
)

// DDL shared by the create helpers below and the versioned migrations under
// migrations/. Store files come out of the search pipeline; these helpers
// exist for tools and tests that need to build one from scratch.

const storeAttrsDDL = `
	CREATE TABLE IF NOT EXISTS store_attrs (
		key               TEXT PRIMARY KEY,
		value             TEXT NOT NULL
	);`

const partitionColumnsDDL = `(
		idx               BIGINT PRIMARY KEY,
		stat              DOUBLE NOT NULL,
		ifar              DOUBLE NOT NULL,
		fap               DOUBLE NOT NULL,
		ifar_exc          DOUBLE NOT NULL,
		fap_exc           DOUBLE NOT NULL,
		time1             DOUBLE NOT NULL,
		time2             DOUBLE NOT NULL,
		trigger_id1       BIGINT NOT NULL,
		trigger_id2       BIGINT NOT NULL
	);`

const triggersDDL = `
	CREATE TABLE IF NOT EXISTS detectors (
		name              TEXT PRIMARY KEY
	);
	CREATE TABLE IF NOT EXISTS triggers (
		detector          TEXT NOT NULL,
		idx               BIGINT NOT NULL,
		template_id       BIGINT NOT NULL,
		snr               DOUBLE NOT NULL,
		chisq             DOUBLE NOT NULL,
		chisq_dof         BIGINT NOT NULL,
		end_time          DOUBLE NOT NULL,
		coa_phase         DOUBLE NOT NULL,
		template_duration DOUBLE NOT NULL,
		PRIMARY KEY (detector, idx)
	);`

const bankDDL = `
	CREATE TABLE IF NOT EXISTS bank (
		template_id       BIGINT PRIMARY KEY,
		mass1             DOUBLE NOT NULL,
		mass2             DOUBLE NOT NULL,
		spin1z            DOUBLE NOT NULL,
		spin2z            DOUBLE NOT NULL
	);`

// CreateCoinc creates a new coincidence store file with the named
// sub-partitions ("foreground" when none are given) and returns a writable
// handle to it.
func CreateCoinc(path string, partitions ...string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to create coincidence store: %w", err)
	}
	if _, err := db.Exec(storeAttrsDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create store_attrs: %w", err)
	}
	if len(partitions) == 0 {
		partitions = []string{"foreground"}
	}
	for _, name := range partitions {
		if err := AddPartition(db, name); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// AddPartition creates one sub-partition table in a coincidence store.
func AddPartition(db *sql.DB, name string) error {
	if !partitionName.MatchString(name) {
		return fmt.Errorf("invalid sub-partition name %q", name)
	}
	if _, err := db.Exec(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q %s", name, partitionColumnsDDL)); err != nil {
		return fmt.Errorf("failed to create sub-partition %q: %w", name, err)
	}
	return nil
}

// SetAttr writes one store-level attribute.
func SetAttr(db *sql.DB, key, value string) error {
	_, err := db.Exec("INSERT OR REPLACE INTO store_attrs (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("failed to set store attribute %q: %w", key, err)
	}
	return nil
}

// InsertEvent appends one coincidence row to a sub-partition.
func InsertEvent(db *sql.DB, partition string, ev CandidateEvent) error {
	if !partitionName.MatchString(partition) {
		return fmt.Errorf("invalid sub-partition name %q", partition)
	}
	_, err := db.Exec(fmt.Sprintf(`INSERT INTO %q (
			idx, stat, ifar, fap, ifar_exc, fap_exc,
			time1, time2, trigger_id1, trigger_id2
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, partition),
		ev.Idx, ev.Stat, ev.IFAR, ev.FAP, ev.IFARExc, ev.FAPExc,
		ev.Time1, ev.Time2, ev.TriggerIdx1, ev.TriggerIdx2,
	)
	if err != nil {
		return fmt.Errorf("failed to insert coincidence row %d: %w", ev.Idx, err)
	}
	return nil
}

// CreateTriggerFile creates a new, empty trigger store file.
func CreateTriggerFile(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to create trigger store: %w", err)
	}
	if _, err := db.Exec(triggersDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create trigger schema: %w", err)
	}
	return db, nil
}

// AddDetector registers a detector sub-store in a trigger store file.
func AddDetector(db *sql.DB, name string) error {
	if _, err := db.Exec("INSERT OR IGNORE INTO detectors (name) VALUES (?)", name); err != nil {
		return fmt.Errorf("failed to add detector %s: %w", name, err)
	}
	return nil
}

// InsertTrigger writes one trigger row at the given row index.
func InsertTrigger(db *sql.DB, detector string, idx int64, row TriggerRow) error {
	_, err := db.Exec(`INSERT INTO triggers (
			detector, idx, template_id, snr, chisq, chisq_dof,
			end_time, coa_phase, template_duration
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		detector, idx, row.TemplateID, row.SNR, row.Chisq, row.ChisqDof,
		row.EndTime, row.CoaPhase, row.TemplateDuration,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trigger %d for %s: %w", idx, detector, err)
	}
	return nil
}

// CreateBankFile creates a new, empty template bank store file.
func CreateBankFile(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to create bank store: %w", err)
	}
	if _, err := db.Exec(bankDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bank schema: %w", err)
	}
	return db, nil
}

// InsertTemplate writes one bank entry.
func InsertTemplate(db *sql.DB, entry TemplateBankEntry) error {
	_, err := db.Exec(`INSERT INTO bank (template_id, mass1, mass2, spin1z, spin2z)
		VALUES (?, ?, ?, ?, ?)`,
		entry.TemplateID, entry.Mass1, entry.Mass2, entry.Spin1z, entry.Spin2z,
	)
	if err != nil {
		return fmt.Errorf("failed to insert template %d: %w", entry.TemplateID, err)
	}
	return nil
}
