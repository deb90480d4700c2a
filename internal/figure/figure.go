// Package figure renders the foreground ranking statistic distribution
// for a candidate report as a PNG with a JSON metadata sidecar.
package figure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"path/filepath"
	"sort"
	"strings"

	"github.com/banshee-data/coinc.report/internal/fsutil"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Options controls histogram binning and output geometry.
type Options struct {
	Bins   int
	Width  float64 // inches
	Height float64 // inches
}

// Metadata is written next to each figure as a JSON sidecar so results
// pages can recover how and when the figure was produced.
type Metadata struct {
	Title       string `json:"title"`
	Caption     string `json:"caption"`
	CommandLine string `json:"command_line"`
	RunID       string `json:"run_id"`
	GeneratedAt string `json:"generated_at"`
}

// Generator writes figures through a FileSystem so tests can render
// into memory.
type Generator struct {
	fs fsutil.FileSystem
}

// NewGenerator creates a figure generator over the given filesystem.
func NewGenerator(fs fsutil.FileSystem) *Generator {
	return &Generator{fs: fs}
}

// WriteStatFigure renders a histogram of the foreground ranking
// statistics with a vertical marker at the candidate's statistic, then
// writes the PNG to path and the metadata sidecar next to it.
func (g *Generator) WriteStatFigure(path string, stats []float64, candidateStat float64, meta Metadata, opts Options) error {
	if len(stats) == 0 {
		return fmt.Errorf("no foreground statistics to plot")
	}
	if opts.Bins <= 0 {
		return fmt.Errorf("invalid bin count %d", opts.Bins)
	}

	p := plot.New()
	p.Title.Text = meta.Title
	p.X.Label.Text = "Ranking statistic"
	p.Y.Label.Text = "Number of events"

	hist, err := plotter.NewHist(plotter.Values(stats), opts.Bins)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %w", err)
	}
	hist.FillColor = color.RGBA{R: 0x66, G: 0x88, B: 0xcc, A: 0xff}
	p.Add(hist)

	// Marker spans the tallest bin so it is visible at any zoom.
	maxWeight := 0.0
	for _, bin := range hist.Bins {
		if bin.Weight > maxWeight {
			maxWeight = bin.Weight
		}
	}
	marker, err := plotter.NewLine(plotter.XYs{
		{X: candidateStat, Y: 0},
		{X: candidateStat, Y: maxWeight},
	})
	if err != nil {
		return fmt.Errorf("failed to build candidate marker: %w", err)
	}
	marker.Color = color.RGBA{R: 0xcc, G: 0x33, B: 0x33, A: 0xff}
	marker.Width = vg.Points(1)
	p.Add(marker)
	p.Legend.Add("candidate", marker)
	p.Legend.Top = true

	wt, err := p.WriterTo(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render figure: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to encode figure: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := g.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create figure dir: %w", err)
		}
	}
	if err := g.fs.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write figure: %w", err)
	}

	sidecar, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal figure metadata: %w", err)
	}
	if err := g.fs.WriteFile(sidecarPath(path), sidecar, 0644); err != nil {
		return fmt.Errorf("failed to write figure metadata: %w", err)
	}

	return nil
}

// sidecarPath maps figure.png to figure.json.
func sidecarPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
}

// StatCaption summarizes the foreground distribution behind the figure.
func StatCaption(stats []float64, candidateStat float64) string {
	if len(stats) == 0 {
		return fmt.Sprintf("Candidate statistic: %.2f.", candidateStat)
	}

	sorted := append([]float64(nil), stats...)
	sort.Float64s(sorted)
	q50 := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	q90 := stat.Quantile(0.9, stat.Empirical, sorted, nil)
	q99 := stat.Quantile(0.99, stat.Empirical, sorted, nil)

	return fmt.Sprintf(
		"Distribution of the ranking statistic over %d foreground events. Quantiles: %.2f (50%%), %.2f (90%%), %.2f (99%%). Candidate statistic: %.2f.",
		len(sorted), q50, q90, q99, candidateStat)
}
