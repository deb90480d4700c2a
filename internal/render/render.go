package render

import (
	"fmt"
	"io"

	"github.com/banshee-data/coinc.report/internal/report"
)

const pageTemplate = "coincinfo.html.tmpl"

// Page carries everything the diagnostic page template needs.
type Page struct {
	Title       string
	Caption     string
	Summary     report.SummaryFields
	Rows        []report.DetectorRow
	FigureHref  string
	GeneratedAt string
	RunID       string
	CommandLine string
}

// NewPage builds a Page from an assembled record plus run provenance.
func NewPage(record report.DiagnosticRecord, caption string) Page {
	return Page{
		Title:   record.Title,
		Caption: caption,
		Summary: record.Summary,
		Rows:    record.Rows,
	}
}

// Renderer writes diagnostic pages using a template provider.
type Renderer struct {
	provider TemplateProvider
}

// NewRenderer creates a renderer over the embedded templates.
func NewRenderer() *Renderer {
	return &Renderer{provider: NewEmbeddedTemplateProvider()}
}

// NewRendererWithProvider creates a renderer with a custom provider.
func NewRendererWithProvider(provider TemplateProvider) *Renderer {
	return &Renderer{provider: provider}
}

// WritePage renders the diagnostic page to w.
func (r *Renderer) WritePage(w io.Writer, page Page) error {
	if err := r.provider.ExecuteTemplate(w, pageTemplate, page); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
