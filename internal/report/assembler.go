package report

import (
	"fmt"
	"sort"
)

// SummaryFields are the candidate's six joint statistics, formatted for
// display: statistic and inverse false-alarm rates to two decimals, false
// alarm probabilities in scientific notation with two significant digits,
// and the inter-detector time delay (time2 - time1) to four decimals.
type SummaryFields struct {
	Stat      string
	IFAR      string
	FAP       string
	IFARExc   string
	FAPExc    string
	TimeDelay string
}

// DetectorRow is one detector's formatted diagnostics line.
type DetectorRow struct {
	Detector         string
	EndTimeUTC       string
	EndTimeGPS       string
	SNR              string
	ReweightedSNR    string
	ReducedChisq     string
	ChisqDof         string
	CoaPhase         string
	Mass1            string
	Mass2            string
	ChirpMass        string
	Spin1z           string
	Spin2z           string
	TemplateDuration string
}

// DiagnosticRecord is the assembled report content for one candidate. It is
// built fresh each run and handed to the rendering layer; nothing persists
// it.
type DiagnosticRecord struct {
	Title   string
	Summary SummaryFields
	Rows    []DetectorRow
}

// AssembleOptions control presentation choices that are not data semantics.
type AssembleOptions struct {
	// RowOrder lists detector names in desired row order. Empty means
	// lexicographic by detector name.
	RowOrder []string
}

// Assemble formats a joined candidate into its diagnostic record.
func Assemble(joined *JoinedCandidate, opts AssembleOptions) (*DiagnosticRecord, error) {
	rec := &DiagnosticRecord{
		Title: joined.Label,
		Summary: SummaryFields{
			Stat:      fmt.Sprintf("%.2f", joined.Event.Stat),
			IFAR:      fmt.Sprintf("%.2f", joined.Event.IFAR),
			FAP:       fmt.Sprintf("%.1e", joined.Event.FAP),
			IFARExc:   fmt.Sprintf("%.2f", joined.Event.IFARExc),
			FAPExc:    fmt.Sprintf("%.1e", joined.Event.FAPExc),
			TimeDelay: fmt.Sprintf("%.4f", joined.Event.Time2-joined.Event.Time1),
		},
	}

	byDetector := make(map[string]DetectorDiagnostics, len(joined.Detectors))
	for _, d := range joined.Detectors {
		byDetector[d.Detector] = d
	}

	order := opts.RowOrder
	if len(order) == 0 {
		order = make([]string, 0, len(byDetector))
		for name := range byDetector {
			order = append(order, name)
		}
		sort.Strings(order)
	}

	for _, name := range order {
		d, ok := byDetector[name]
		if !ok {
			return nil, fmt.Errorf("row order names detector %q not present in candidate", name)
		}
		rec.Rows = append(rec.Rows, DetectorRow{
			Detector:         d.Detector,
			EndTimeUTC:       d.EndTimeUTC,
			EndTimeGPS:       fmt.Sprintf("%.3f", d.Trigger.EndTime),
			SNR:              fmt.Sprintf("%.2f", d.Trigger.SNR),
			ReweightedSNR:    fmt.Sprintf("%.2f", d.ReweightedSNR),
			ReducedChisq:     fmt.Sprintf("%.2f", d.ReducedChisq),
			ChisqDof:         fmt.Sprintf("%d", d.Trigger.ChisqDof),
			CoaPhase:         fmt.Sprintf("%.2f", d.Trigger.CoaPhase),
			Mass1:            fmt.Sprintf("%.2f", d.Template.Mass1),
			Mass2:            fmt.Sprintf("%.2f", d.Template.Mass2),
			ChirpMass:        fmt.Sprintf("%.2f", d.ChirpMass),
			Spin1z:           fmt.Sprintf("%.2f", d.Template.Spin1z),
			Spin2z:           fmt.Sprintf("%.2f", d.Template.Spin2z),
			TemplateDuration: fmt.Sprintf("%.2f", d.Trigger.TemplateDuration),
		})
	}
	return rec, nil
}
