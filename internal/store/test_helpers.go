package store

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// newCoincFile builds a coincidence store fixture and returns its path.
func newCoincFile(t *testing.T, det1, det2 string, events []CandidateEvent) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "statmap.sqlite")
	db, err := CreateCoinc(path)
	if err != nil {
		t.Fatalf("CreateCoinc failed: %v", err)
	}
	defer db.Close()

	if err := SetAttr(db, "detector_1", det1); err != nil {
		t.Fatalf("SetAttr detector_1 failed: %v", err)
	}
	if err := SetAttr(db, "detector_2", det2); err != nil {
		t.Fatalf("SetAttr detector_2 failed: %v", err)
	}
	for _, ev := range events {
		if err := InsertEvent(db, "foreground", ev); err != nil {
			t.Fatalf("InsertEvent %d failed: %v", ev.Idx, err)
		}
	}
	return path
}

// newTriggerFile builds a trigger store fixture holding the given detectors.
// Rows are stored at consecutive indices starting from 0.
func newTriggerFile(t *testing.T, name string, triggers map[string][]TriggerRow) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	db, err := CreateTriggerFile(path)
	if err != nil {
		t.Fatalf("CreateTriggerFile failed: %v", err)
	}
	defer db.Close()

	for detector, rows := range triggers {
		if err := AddDetector(db, detector); err != nil {
			t.Fatalf("AddDetector %s failed: %v", detector, err)
		}
		for i, row := range rows {
			if err := InsertTrigger(db, detector, int64(i), row); err != nil {
				t.Fatalf("InsertTrigger %s/%d failed: %v", detector, i, err)
			}
		}
	}
	return path
}

// newBankFile builds a template bank fixture and returns its path.
func newBankFile(t *testing.T, entries []TemplateBankEntry) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bank.sqlite")
	db, err := CreateBankFile(path)
	if err != nil {
		t.Fatalf("CreateBankFile failed: %v", err)
	}
	defer db.Close()

	for _, entry := range entries {
		if err := InsertTemplate(db, entry); err != nil {
			t.Fatalf("InsertTemplate %d failed: %v", entry.TemplateID, err)
		}
	}
	return path
}

// rawSQLiteFile creates a bare sqlite file with arbitrary DDL, for fixtures
// that need a structurally broken store.
func rawSQLiteFile(t *testing.T, name, ddl string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("exec fixture DDL failed: %v", err)
	}
	return path
}
