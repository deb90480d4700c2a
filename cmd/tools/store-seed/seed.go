// Command store-seed builds a synthetic set of store files (statmap,
// per-detector triggers, template bank, and a demo strain channel) for
// trying out coincinfo and store-inspect without real pipeline output.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/banshee-data/coinc.report/internal/store"
	"github.com/banshee-data/coinc.report/internal/strain"
	_ "modernc.org/sqlite"
)

var (
	outDir = flag.String("out", "demo", "Directory for the generated store files")
	events = flag.Int("events", 32, "Number of foreground events")
	seed   = flag.Int64("seed", 42, "PRNG seed")
)

const nTemplates = 16

func main() {
	flag.Parse()

	if *events <= 0 {
		log.Fatal("the event count must be positive")
	}

	rng := rand.New(rand.NewSource(*seed))
	if err := buildAll(*outDir, *events, rng); err != nil {
		log.Fatalf("store-seed: %v", err)
	}

	coinc := filepath.Join(*outDir, "statmap.sqlite")
	h1 := filepath.Join(*outDir, "h1_triggers.sqlite")
	l1 := filepath.Join(*outDir, "l1_triggers.sqlite")
	bank := filepath.Join(*outDir, "bank.sqlite")
	fmt.Printf("seeded %d foreground events under %s; try:\n", *events, *outDir)
	fmt.Printf("  coincinfo -coinc-file %s -trigger-file %s -trigger-file %s -bank-file %s -n-loudest 0 -output-html report.html\n",
		coinc, h1, l1, bank)
}

// buildAll writes every demo file under dir.
func buildAll(dir string, n int, rng *rand.Rand) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	templates := synthTemplates(rng)
	if err := writeBank(filepath.Join(dir, "bank.sqlite"), templates); err != nil {
		return err
	}

	evs, h1Rows, l1Rows := synthEvents(rng, n)
	if err := writeTriggers(filepath.Join(dir, "h1_triggers.sqlite"), "H1", h1Rows); err != nil {
		return err
	}
	if err := writeTriggers(filepath.Join(dir, "l1_triggers.sqlite"), "L1", l1Rows); err != nil {
		return err
	}
	if err := writeCoinc(filepath.Join(dir, "statmap.sqlite"), evs); err != nil {
		return err
	}

	return writeStrain(filepath.Join(dir, "strain.sqlite"), rng)
}

// synthTemplates draws a small template bank.
func synthTemplates(rng *rand.Rand) []store.TemplateBankEntry {
	templates := make([]store.TemplateBankEntry, nTemplates)
	for i := range templates {
		mass1 := 1.1 + rng.Float64()*30
		mass2 := 1.1 + rng.Float64()*(mass1-1.1)
		templates[i] = store.TemplateBankEntry{
			TemplateID: int64(i),
			Mass1:      mass1,
			Mass2:      mass2,
			Spin1z:     rng.Float64() - 0.5,
			Spin2z:     rng.Float64() - 0.5,
		}
	}
	return templates
}

// synthEvents draws the foreground population plus one trigger row per
// detector and event. Event i points at trigger row i in each store.
func synthEvents(rng *rand.Rand, n int) ([]store.CandidateEvent, []store.TriggerRow, []store.TriggerRow) {
	evs := make([]store.CandidateEvent, n)
	h1Rows := make([]store.TriggerRow, n)
	l1Rows := make([]store.TriggerRow, n)

	for i := 0; i < n; i++ {
		stat := 5.0 + rng.ExpFloat64()*1.5
		ifar := math.Exp(stat - 8.0)
		fap := math.Min(1.0, math.Exp(-(stat - 5.0)))
		t1 := 1000000000.0 + float64(i)*128 + rng.Float64()
		t2 := t1 + rng.Float64()*0.02 - 0.01

		evs[i] = store.CandidateEvent{
			Idx:         int64(i),
			Stat:        stat,
			IFAR:        ifar,
			FAP:         fap,
			IFARExc:     ifar * 0.8,
			FAPExc:      math.Min(1.0, fap*2),
			Time1:       t1,
			Time2:       t2,
			TriggerIdx1: int64(i),
			TriggerIdx2: int64(i),
		}
		h1Rows[i] = synthTrigger(rng, stat, t1)
		l1Rows[i] = synthTrigger(rng, stat, t2)
	}
	return evs, h1Rows, l1Rows
}

func synthTrigger(rng *rand.Rand, stat, endTime float64) store.TriggerRow {
	const dof = 10
	rchisq := 0.7 + rng.Float64()*0.8
	return store.TriggerRow{
		TemplateID:       int64(rng.Intn(nTemplates)),
		SNR:              stat*0.7 + rng.Float64(),
		Chisq:            rchisq * float64(2*dof-2),
		ChisqDof:         dof,
		EndTime:          endTime,
		CoaPhase:         rng.Float64() * 2 * math.Pi,
		TemplateDuration: 1.0 + rng.Float64()*30,
	}
}

// migratedDB opens a fresh file and brings it to the latest schema for
// its kind.
func migratedDB(path, kind string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := store.MigrateUp(db, kind); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func writeCoinc(path string, evs []store.CandidateEvent) error {
	db, err := migratedDB(path, store.KindCoinc)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.SetAttr(db, "detector_1", "H1"); err != nil {
		return err
	}
	if err := store.SetAttr(db, "detector_2", "L1"); err != nil {
		return err
	}
	for _, ev := range evs {
		if err := store.InsertEvent(db, "foreground", ev); err != nil {
			return err
		}
	}
	return nil
}

func writeTriggers(path, detector string, rows []store.TriggerRow) error {
	db, err := migratedDB(path, store.KindTriggers)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.AddDetector(db, detector); err != nil {
		return err
	}
	for idx, row := range rows {
		if err := store.InsertTrigger(db, detector, int64(idx), row); err != nil {
			return err
		}
	}
	return nil
}

func writeBank(path string, templates []store.TemplateBankEntry) error {
	db, err := migratedDB(path, store.KindBank)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, entry := range templates {
		if err := store.InsertTemplate(db, entry); err != nil {
			return err
		}
	}
	return nil
}

// writeStrain writes a short noise channel for exercising the hwinj
// tool against the demo set.
func writeStrain(path string, rng *rand.Rand) error {
	st, err := strain.Create(path)
	if err != nil {
		return err
	}
	defer st.Close()

	samples := make([]float64, 1024)
	for i := range samples {
		samples[i] = rng.NormFloat64() * 1e-21
	}
	return st.WriteChannel(strain.Series{
		Name:       "H1:GDS-CALIB_STRAIN",
		StartTime:  1000000000.0,
		SampleRate: 16.0,
		Samples:    samples,
	})
}
