// Command coincinfo builds the diagnostic page for one candidate
// coincident event out of a search pipeline's statmap, trigger, and
// template bank stores.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/banshee-data/coinc.report/internal/config"
	"github.com/banshee-data/coinc.report/internal/figure"
	"github.com/banshee-data/coinc.report/internal/fsutil"
	"github.com/banshee-data/coinc.report/internal/render"
	"github.com/banshee-data/coinc.report/internal/report"
	"github.com/banshee-data/coinc.report/internal/store"
	"github.com/banshee-data/coinc.report/internal/version"
	"github.com/google/uuid"
)

// stringList collects a repeatable flag value.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

var (
	coincFile    = flag.String("coinc-file", "", "Coincidence (statmap) store file")
	bankFile     = flag.String("bank-file", "", "Template bank store file")
	nLoudest     = flag.Int64("n-loudest", -1, "Rank of the candidate to report (0 is loudest)")
	eventID      = flag.Int64("event-id", -1, "Explicit row index of the candidate to report")
	outputHTML   = flag.String("output-html", "", "Path for the diagnostic HTML page")
	outputPlot   = flag.String("output-plot", "", "Optional path for the statistic distribution PNG")
	configPath   = flag.String("config", "", "Optional JSON report configuration")
	showVersion  = flag.Bool("version", false, "Print version and exit")
	triggerFiles stringList
)

func init() {
	flag.Var(&triggerFiles, "trigger-file", "Trigger store file (repeat for each file)")
}

// buildSelection maps the flag sentinels onto a selection. A negative
// value means the flag was not given.
func buildSelection(nLoudest, eventID int64) report.Selection {
	var sel report.Selection
	if nLoudest >= 0 {
		sel.Rank = &nLoudest
	}
	if eventID >= 0 {
		sel.EventID = &eventID
	}
	return sel
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("coincinfo %s\n", version.String())
		return
	}

	if *coincFile == "" {
		log.Fatal("a coincidence store file is required")
	}
	if len(triggerFiles) == 0 {
		log.Fatal("at least one trigger store file is required")
	}
	if *bankFile == "" {
		log.Fatal("a template bank store file is required")
	}
	if *outputHTML == "" {
		log.Fatal("an output HTML path is required")
	}

	cfg := config.EmptyReportConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadReportConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	if err := run(cfg); err != nil {
		log.Fatalf("coincinfo: %v", err)
	}
}

func run(cfg *config.ReportConfig) error {
	// Selection errors surface before any store is opened.
	sel := buildSelection(*nLoudest, *eventID)
	if err := sel.Validate(); err != nil {
		return err
	}

	coinc, err := store.OpenCoinc(*coincFile, cfg.GetPartition())
	if err != nil {
		return err
	}
	defer coinc.Close()

	triggers, err := store.OpenTriggers(triggerFiles)
	if err != nil {
		return err
	}
	defer triggers.Close()

	bank, err := store.OpenBank(*bankFile)
	if err != nil {
		return err
	}
	defer bank.Close()

	cand, err := report.Select(coinc.Events(), sel)
	if err != nil {
		return err
	}

	joined, err := report.Join(cand, coinc, triggers, bank)
	if err != nil {
		return err
	}

	record, err := report.Assemble(joined, report.AssembleOptions{RowOrder: cfg.GetRowOrder()})
	if err != nil {
		return err
	}

	commandLine := strings.Join(os.Args, " ")
	caption := figure.StatCaption(coinc.Stats(), joined.Event.Stat)
	runID := uuid.NewString()
	generatedAt := time.Now().UTC().Format("2006-01-02 15:04:05") + " UTC"
	fs := fsutil.OSFileSystem{}

	if *outputPlot != "" {
		meta := figure.Metadata{
			Title:       record.Title,
			Caption:     caption,
			CommandLine: commandLine,
			RunID:       runID,
			GeneratedAt: generatedAt,
		}
		opts := figure.Options{
			Bins:   cfg.GetFigureBins(),
			Width:  cfg.GetFigureWidth(),
			Height: cfg.GetFigureHeight(),
		}
		gen := figure.NewGenerator(fs)
		if err := gen.WriteStatFigure(*outputPlot, coinc.Stats(), joined.Event.Stat, meta, opts); err != nil {
			return err
		}
		log.Printf("wrote figure %s", *outputPlot)
	}

	page := render.NewPage(*record, caption)
	page.CommandLine = commandLine
	page.RunID = runID
	page.GeneratedAt = generatedAt
	if *outputPlot != "" {
		page.FigureHref = figureHref(*outputHTML, *outputPlot)
	}

	out, err := fs.Create(*outputHTML)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", *outputHTML, err)
	}
	if err := render.NewRenderer().WritePage(out, page); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", *outputHTML, err)
	}
	log.Printf("wrote report %s", *outputHTML)
	return nil
}

// figureHref links the page to its figure relative to the page's own
// directory, falling back to the raw path when no relation exists.
func figureHref(htmlPath, plotPath string) string {
	href, err := filepath.Rel(filepath.Dir(htmlPath), plotPath)
	if err != nil {
		return plotPath
	}
	return filepath.ToSlash(href)
}
