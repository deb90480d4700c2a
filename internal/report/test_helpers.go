package report

import (
	"path/filepath"
	"testing"

	"github.com/banshee-data/coinc.report/internal/store"
)

// fixtureStores builds and opens a coincidence store, a trigger set, and a
// bank from literal rows. Closing is registered on the test.
func fixtureStores(
	t *testing.T,
	det1, det2 string,
	events []store.CandidateEvent,
	triggers map[string][]store.TriggerRow,
	bank []store.TemplateBankEntry,
) (*store.CoincStore, *store.TriggerSet, *store.BankStore) {
	t.Helper()
	dir := t.TempDir()

	coincPath := filepath.Join(dir, "statmap.sqlite")
	cdb, err := store.CreateCoinc(coincPath)
	if err != nil {
		t.Fatalf("CreateCoinc failed: %v", err)
	}
	if err := store.SetAttr(cdb, "detector_1", det1); err != nil {
		t.Fatalf("SetAttr failed: %v", err)
	}
	if err := store.SetAttr(cdb, "detector_2", det2); err != nil {
		t.Fatalf("SetAttr failed: %v", err)
	}
	for _, ev := range events {
		if err := store.InsertEvent(cdb, "foreground", ev); err != nil {
			t.Fatalf("InsertEvent failed: %v", err)
		}
	}
	if err := cdb.Close(); err != nil {
		t.Fatalf("close coinc fixture: %v", err)
	}

	trigPath := filepath.Join(dir, "triggers.sqlite")
	tdb, err := store.CreateTriggerFile(trigPath)
	if err != nil {
		t.Fatalf("CreateTriggerFile failed: %v", err)
	}
	for detector, rows := range triggers {
		if err := store.AddDetector(tdb, detector); err != nil {
			t.Fatalf("AddDetector failed: %v", err)
		}
		for i, row := range rows {
			if err := store.InsertTrigger(tdb, detector, int64(i), row); err != nil {
				t.Fatalf("InsertTrigger failed: %v", err)
			}
		}
	}
	if err := tdb.Close(); err != nil {
		t.Fatalf("close trigger fixture: %v", err)
	}

	bankPath := filepath.Join(dir, "bank.sqlite")
	bdb, err := store.CreateBankFile(bankPath)
	if err != nil {
		t.Fatalf("CreateBankFile failed: %v", err)
	}
	for _, entry := range bank {
		if err := store.InsertTemplate(bdb, entry); err != nil {
			t.Fatalf("InsertTemplate failed: %v", err)
		}
	}
	if err := bdb.Close(); err != nil {
		t.Fatalf("close bank fixture: %v", err)
	}

	coinc, err := store.OpenCoinc(coincPath, "foreground")
	if err != nil {
		t.Fatalf("OpenCoinc failed: %v", err)
	}
	t.Cleanup(func() { coinc.Close() })

	set, err := store.OpenTriggers([]string{trigPath})
	if err != nil {
		t.Fatalf("OpenTriggers failed: %v", err)
	}
	t.Cleanup(func() { set.Close() })

	bankStore, err := store.OpenBank(bankPath)
	if err != nil {
		t.Fatalf("OpenBank failed: %v", err)
	}
	t.Cleanup(func() { bankStore.Close() })

	return coinc, set, bankStore
}

func rankOf(k int64) Selection    { return Selection{Rank: &k} }
func eventIDOf(n int64) Selection { return Selection{EventID: &n} }
