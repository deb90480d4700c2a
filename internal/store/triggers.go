package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
)

// TriggerRow is one single-detector trigger fetched from a trigger store.
type TriggerRow struct {
	TemplateID       int64
	SNR              float64
	Chisq            float64
	ChisqDof         int
	EndTime          float64
	CoaPhase         float64
	TemplateDuration float64
}

// triggerSource is the file backing one detector's triggers.
type triggerSource struct {
	db    *sql.DB
	path  string
	count int64
}

// TriggerSet is a read view over one or more trigger store files. A search
// writes each detector's triggers to whichever file its job produced, so a
// detector may live in any of the supplied files, but never in more than one.
type TriggerSet struct {
	sources   map[string]*triggerSource
	openOrder []string // file paths, for Close and inspection
	dbs       []*sql.DB
}

// OpenTriggers opens every supplied trigger store file and indexes the
// detectors each one provides. A detector claimed by two files is an
// AmbiguousDetectorError.
func OpenTriggers(paths []string) (*TriggerSet, error) {
	t := &TriggerSet{sources: make(map[string]*triggerSource)}
	for _, path := range paths {
		if err := t.addFile(path); err != nil {
			t.Close()
			return nil, err
		}
	}
	return t, nil
}

func (t *TriggerSet) addFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return &StoreAccessError{Path: path, Err: err}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &StoreAccessError{Path: path, Err: err}
	}
	t.dbs = append(t.dbs, db)
	t.openOrder = append(t.openOrder, path)

	rows, err := db.Query("SELECT name FROM detectors ORDER BY name")
	if err != nil {
		return &StoreAccessError{Path: path, Err: fmt.Errorf("failed to list detectors: %w", err)}
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return &StoreAccessError{Path: path, Err: err}
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return &StoreAccessError{Path: path, Err: err}
	}

	for _, name := range names {
		if prev, ok := t.sources[name]; ok {
			return &AmbiguousDetectorError{Detector: name, Paths: []string{prev.path, path}}
		}
		var count int64
		if err := db.QueryRow("SELECT COUNT(*) FROM triggers WHERE detector = ?", name).Scan(&count); err != nil {
			return &StoreAccessError{Path: path, Err: fmt.Errorf("failed to count triggers for %s: %w", name, err)}
		}
		t.sources[name] = &triggerSource{db: db, path: path, count: count}
	}
	return nil
}

// Detectors returns every detector the set provides, sorted by name.
func (t *TriggerSet) Detectors() []string {
	names := make([]string, 0, len(t.sources))
	for name := range t.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of trigger rows stored for a detector, or false
// when no file provides the detector.
func (t *TriggerSet) Count(detector string) (int64, bool) {
	src, ok := t.sources[detector]
	if !ok {
		return 0, false
	}
	return src.count, true
}

// Path returns the file backing a detector's triggers, or false when no
// file provides the detector.
func (t *TriggerSet) Path(detector string) (string, bool) {
	src, ok := t.sources[detector]
	if !ok {
		return "", false
	}
	return src.path, true
}

// Files returns the underlying store files in open order, for inspection.
func (t *TriggerSet) Files() []string {
	return t.openOrder
}

// DB returns the database handle backing a detector, for inspection.
func (t *TriggerSet) DB(detector string) (*sql.DB, bool) {
	src, ok := t.sources[detector]
	if !ok {
		return nil, false
	}
	return src.db, true
}

// Trigger fetches one trigger row by detector and stored row index. Indices
// come from a coincidence store verbatim; an index outside the detector's
// rows is a JoinResolutionError, never clamped or wrapped around.
func (t *TriggerSet) Trigger(detector string, idx int64) (TriggerRow, error) {
	src, ok := t.sources[detector]
	if !ok {
		return TriggerRow{}, &JoinResolutionError{
			Key: fmt.Sprintf("triggers for detector %s (no trigger store provides it)", detector),
		}
	}
	if idx < 0 || idx >= src.count {
		return TriggerRow{}, &JoinResolutionError{
			Path: src.path,
			Key:  fmt.Sprintf("trigger index %d for %s (store holds rows 0..%d)", idx, detector, src.count-1),
		}
	}

	var row TriggerRow
	err := src.db.QueryRow(`SELECT template_id, snr, chisq, chisq_dof,
			end_time, coa_phase, template_duration
		FROM triggers WHERE detector = ? AND idx = ?`, detector, idx).Scan(
		&row.TemplateID,
		&row.SNR,
		&row.Chisq,
		&row.ChisqDof,
		&row.EndTime,
		&row.CoaPhase,
		&row.TemplateDuration,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return TriggerRow{}, &JoinResolutionError{
			Path: src.path,
			Key:  fmt.Sprintf("trigger index %d for %s", idx, detector),
		}
	}
	if err != nil {
		return TriggerRow{}, &StoreAccessError{Path: src.path, Err: fmt.Errorf("failed to fetch trigger %d for %s: %w", idx, detector, err)}
	}
	return row, nil
}

// Close closes every underlying store file.
func (t *TriggerSet) Close() error {
	var firstErr error
	for _, db := range t.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
