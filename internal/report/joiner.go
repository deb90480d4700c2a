package report

import (
	"github.com/banshee-data/coinc.report/internal/gpstime"
	"github.com/banshee-data/coinc.report/internal/gwstat"
	"github.com/banshee-data/coinc.report/internal/store"
)

// DetectorDiagnostics holds one detector's trigger, its resolved template,
// and the derived statistics computed from both.
type DetectorDiagnostics struct {
	Detector string
	Trigger  store.TriggerRow
	Template store.TemplateBankEntry

	ReducedChisq  float64
	ReweightedSNR float64
	ChirpMass     float64
	EndTimeUTC    string
}

// JoinedCandidate is a candidate with every cross-store reference resolved,
// one diagnostics entry per detector in coincidence store attribute order.
type JoinedCandidate struct {
	Event     store.CandidateEvent
	Label     string
	Detectors []DetectorDiagnostics
}

// Join resolves the candidate's trigger indices against the trigger set and
// each trigger's template against the bank. Any dangling reference aborts
// the join; no partial result is returned.
func Join(cand Candidate, coinc *store.CoincStore, triggers *store.TriggerSet, bank *store.BankStore) (*JoinedCandidate, error) {
	joined := &JoinedCandidate{Event: cand.Event, Label: cand.Label}

	refs := []struct {
		detector string
		idx      int64
	}{
		{coinc.Detector1, cand.Event.TriggerIdx1},
		{coinc.Detector2, cand.Event.TriggerIdx2},
	}

	for _, ref := range refs {
		trig, err := triggers.Trigger(ref.detector, ref.idx)
		if err != nil {
			return nil, err
		}
		tmpl, err := bank.Template(trig.TemplateID)
		if err != nil {
			return nil, err
		}
		rchisq, err := gwstat.ReducedChisq(trig.Chisq, trig.ChisqDof)
		if err != nil {
			return nil, err
		}

		joined.Detectors = append(joined.Detectors, DetectorDiagnostics{
			Detector:      ref.detector,
			Trigger:       trig,
			Template:      tmpl,
			ReducedChisq:  rchisq,
			ReweightedSNR: gwstat.ReweightedSNR(trig.SNR, rchisq),
			ChirpMass:     gwstat.ChirpMass(tmpl.Mass1, tmpl.Mass2),
			EndTimeUTC:    gpstime.FormatUTC(trig.EndTime),
		})
	}
	return joined, nil
}
