// Package inspect serves debug endpoints over the stores behind a report
// run: a live SQL console, rendered diagnostic pages, and quick views of
// the foreground population.
package inspect

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/banshee-data/coinc.report/internal/figure"
	"github.com/banshee-data/coinc.report/internal/httputil"
	"github.com/banshee-data/coinc.report/internal/render"
	"github.com/banshee-data/coinc.report/internal/report"
	"github.com/banshee-data/coinc.report/internal/store"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"
	"github.com/tailscale/tailsql/server/tailsql"
	"gonum.org/v1/gonum/stat"
	"tailscale.com/tsweb"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf
// but may be replaced by SetLogger. Tests can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil sets a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Server mounts debug routes over one run's opened stores.
type Server struct {
	coinc    *store.CoincStore
	triggers *store.TriggerSet
	bank     *store.BankStore
	renderer *render.Renderer
}

// NewServer creates an inspector over already-opened stores. The caller
// keeps ownership of the stores and closes them after the server stops.
func NewServer(coinc *store.CoincStore, triggers *store.TriggerSet, bank *store.BankStore) *Server {
	return &Server{coinc: coinc, triggers: triggers, bank: bank, renderer: render.NewRenderer()}
}

// AttachRoutes mounts the tailSQL console and the inspector endpoints
// under /debug/ on mux.
func (s *Server) AttachRoutes(mux *http.ServeMux) error {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("failed to create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://"+s.coinc.Path, s.coinc.DB, &tailsql.DBOptions{
		Label: "Coincidence store",
	})
	seen := make(map[string]bool)
	for _, det := range s.triggers.Detectors() {
		path, ok := s.triggers.Path(det)
		if !ok || seen[path] {
			continue
		}
		seen[path] = true
		db, _ := s.triggers.DB(det)
		tsql.SetDB("sqlite://"+path, db, &tailsql.DBOptions{
			Label: "Triggers: " + filepath.Base(path),
		})
	}
	tsql.SetDB("sqlite://"+s.bank.Path, s.bank.DB, &tailsql.DBOptions{
		Label: "Template bank",
	})

	// mount the tailSQL server on the debug /tailsql path
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.Handle("report", "Diagnostic page for one candidate (?rank=N or ?event=N)", http.HandlerFunc(s.handleReport))
	debug.Handle("stat-chart", "Foreground ranking statistic chart", http.HandlerFunc(s.handleStatChart))
	debug.Handle("events", "Foreground events as JSON", http.HandlerFunc(s.handleEvents))
	debug.Handle("stores", "Opened store files", http.HandlerFunc(s.handleStores))

	Logf("inspector attached: %d foreground events from %s, detectors %v",
		s.coinc.Len(), s.coinc.Path, s.coinc.Detectors())
	return nil
}

// handleStatChart renders the foreground population as a scatter of
// ranking statistic against first-detector end time.
func (s *Server) handleStatChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	events := s.coinc.Events()
	if len(events) == 0 {
		httputil.NotFound(w, "no foreground events loaded")
		return
	}

	data := make([]opts.ScatterData, 0, len(events))
	minT, maxT := events[0].Time1, events[0].Time1
	for _, ev := range events {
		if ev.Time1 < minT {
			minT = ev.Time1
		}
		if ev.Time1 > maxT {
			maxT = ev.Time1
		}
		data = append(data, opts.ScatterData{Value: []interface{}{ev.Time1, ev.Stat}})
	}

	pad := (maxT - minT) * 0.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Foreground statistics", Theme: "dark", Width: "1200px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: "Foreground ranking statistics", Subtitle: statSubtitle(s.coinc.Partition, s.coinc.Stats())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: minT - pad, Max: maxT + pad, Name: "End time (GPS s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Ranking statistic", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("foreground", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// statSubtitle summarizes the plotted population for the chart header.
func statSubtitle(partition string, stats []float64) string {
	sorted := append([]float64(nil), stats...)
	sort.Float64s(sorted)
	q50 := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	q90 := stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return fmt.Sprintf("partition=%s events=%d median stat=%.2f q90=%.2f",
		partition, len(sorted), q50, q90)
}

// handleReport assembles and serves the diagnostic page for one candidate,
// selected with ?rank=N or ?event=N. With neither, the loudest event is
// served.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	sel, err := querySelection(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	cand, err := report.Select(s.coinc.Events(), sel)
	if err != nil {
		var inv *report.InvalidSelectionError
		if errors.As(err, &inv) {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.InternalServerError(w, err.Error())
		return
	}

	joined, err := report.Join(cand, s.coinc, s.triggers, s.bank)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	record, err := report.Assemble(joined, report.AssembleOptions{})
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	page := render.NewPage(*record, figure.StatCaption(s.coinc.Stats(), joined.Event.Stat))
	page.CommandLine = "GET " + r.URL.RequestURI()
	page.RunID = uuid.NewString()
	page.GeneratedAt = time.Now().UTC().Format("2006-01-02 15:04:05") + " UTC"

	var buf bytes.Buffer
	if err := s.renderer.WritePage(&buf, page); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// querySelection maps the rank and event query parameters onto a selection.
// Absent both, rank 0 is assumed.
func querySelection(r *http.Request) (report.Selection, error) {
	var sel report.Selection
	q := r.URL.Query()
	if v := q.Get("rank"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return sel, fmt.Errorf("bad rank %q", v)
		}
		sel.Rank = &n
	}
	if v := q.Get("event"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return sel, fmt.Errorf("bad event id %q", v)
		}
		sel.EventID = &n
	}
	if sel.Rank == nil && sel.EventID == nil {
		var zero int64
		sel.Rank = &zero
	}
	return sel, nil
}

type eventJSON struct {
	Idx         int64   `json:"idx"`
	Stat        float64 `json:"stat"`
	IFAR        float64 `json:"ifar"`
	FAP         float64 `json:"fap"`
	IFARExc     float64 `json:"ifar_exc"`
	FAPExc      float64 `json:"fap_exc"`
	Time1       float64 `json:"time1"`
	Time2       float64 `json:"time2"`
	TriggerIdx1 int64   `json:"trigger_id1"`
	TriggerIdx2 int64   `json:"trigger_id2"`
}

type eventsResponse struct {
	Path      string      `json:"path"`
	Partition string      `json:"partition"`
	Detectors []string    `json:"detectors"`
	Events    []eventJSON `json:"events"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	resp := eventsResponse{
		Path:      s.coinc.Path,
		Partition: s.coinc.Partition,
		Detectors: s.coinc.Detectors(),
		Events:    []eventJSON{},
	}
	for _, ev := range s.coinc.Events() {
		resp.Events = append(resp.Events, eventJSON{
			Idx:         ev.Idx,
			Stat:        ev.Stat,
			IFAR:        ev.IFAR,
			FAP:         ev.FAP,
			IFARExc:     ev.IFARExc,
			FAPExc:      ev.FAPExc,
			Time1:       ev.Time1,
			Time2:       ev.Time2,
			TriggerIdx1: ev.TriggerIdx1,
			TriggerIdx2: ev.TriggerIdx2,
		})
	}

	httputil.WriteJSONOK(w, resp)
}

type triggerFileJSON struct {
	Path      string           `json:"path"`
	Detectors map[string]int64 `json:"detectors"`
}

type storesResponse struct {
	Coinc     string            `json:"coinc"`
	Partition string            `json:"partition"`
	Events    int               `json:"events"`
	Triggers  []triggerFileJSON `json:"triggers"`
	Bank      string            `json:"bank"`
	BankSize  int64             `json:"bank_size"`
}

func (s *Server) handleStores(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	resp := storesResponse{
		Coinc:     s.coinc.Path,
		Partition: s.coinc.Partition,
		Events:    s.coinc.Len(),
		Bank:      s.bank.Path,
		BankSize:  s.bank.Size,
	}
	for _, file := range s.triggers.Files() {
		entry := triggerFileJSON{Path: file, Detectors: make(map[string]int64)}
		for _, det := range s.triggers.Detectors() {
			path, ok := s.triggers.Path(det)
			if !ok || path != file {
				continue
			}
			count, _ := s.triggers.Count(det)
			entry.Detectors[det] = count
		}
		resp.Triggers = append(resp.Triggers, entry)
	}

	httputil.WriteJSONOK(w, resp)
}
