package gwstat

import (
	"errors"
	"math"
	"testing"
)

func TestReducedChisq(t *testing.T) {
	tests := []struct {
		name     string
		chisq    float64
		dof      int
		expected float64
	}{
		{"chisq 10 dof 3", 10.0, 3, 2.5},
		{"chisq 4 dof 2", 4.0, 2, 2.0},
		{"zero chisq", 0.0, 5, 0.0},
		{"large dof", 40.0, 11, 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ReducedChisq(tt.chisq, tt.dof)
			if err != nil {
				t.Fatalf("ReducedChisq(%f, %d) returned error: %v", tt.chisq, tt.dof, err)
			}
			if math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("ReducedChisq(%f, %d) = %f, want %f", tt.chisq, tt.dof, result, tt.expected)
			}
		})
	}
}

func TestReducedChisqDegenerateDof(t *testing.T) {
	for _, dof := range []int{1, 0, -3} {
		_, err := ReducedChisq(10.0, dof)
		if err == nil {
			t.Fatalf("ReducedChisq(10, %d) expected error, got nil", dof)
		}
		var dofErr *DegenerateDofError
		if !errors.As(err, &dofErr) {
			t.Fatalf("ReducedChisq(10, %d) error type = %T, want *DegenerateDofError", dof, err)
		}
		if dofErr.Dof != dof {
			t.Errorf("DegenerateDofError.Dof = %d, want %d", dofErr.Dof, dof)
		}
	}
}

func TestReweightedSNRPassthrough(t *testing.T) {
	// At or below rchisq 1 the SNR must come back bit-identical.
	for _, rchisq := range []float64{0.0, 0.2, 0.99, 1.0} {
		if got := ReweightedSNR(9.5, rchisq); got != 9.5 {
			t.Errorf("ReweightedSNR(9.5, %f) = %f, want 9.5 unchanged", rchisq, got)
		}
	}
}

func TestReweightedSNRDownweights(t *testing.T) {
	// Known value: snr 10, rchisq 2 -> 10 / ((1+8)/2)^(1/6)
	got := ReweightedSNR(10.0, 2.0)
	if math.Abs(got-7.78272) > 1e-4 {
		t.Errorf("ReweightedSNR(10, 2) = %f, want 7.78272", got)
	}

	// Strictly below the input SNR whenever rchisq exceeds 1.
	for _, rchisq := range []float64{1.01, 1.5, 3.0, 10.0} {
		if got := ReweightedSNR(10.0, rchisq); got >= 10.0 {
			t.Errorf("ReweightedSNR(10, %f) = %f, want < 10", rchisq, got)
		}
	}

	// Monotonically decreasing in rchisq for fixed SNR.
	prev := math.Inf(1)
	for _, rchisq := range []float64{1.5, 2.0, 3.0, 5.0, 8.0} {
		got := ReweightedSNR(10.0, rchisq)
		if got >= prev {
			t.Errorf("ReweightedSNR(10, %f) = %f, not decreasing (prev %f)", rchisq, got, prev)
		}
		prev = got
	}

	// Monotonically increasing in SNR for fixed rchisq.
	prev = 0
	for _, snr := range []float64{5.0, 8.0, 12.0, 20.0} {
		got := ReweightedSNR(snr, 2.5)
		if got <= prev {
			t.Errorf("ReweightedSNR(%f, 2.5) = %f, not increasing (prev %f)", snr, got, prev)
		}
		prev = got
	}
}

func TestChirpMass(t *testing.T) {
	// Equal component masses m reduce to m / 2^(1/5).
	got := ChirpMass(1.4, 1.4)
	if math.Abs(got-1.21877) > 1e-4 {
		t.Errorf("ChirpMass(1.4, 1.4) = %f, want 1.21877", got)
	}

	got = ChirpMass(30.0, 30.0)
	if math.Abs(got-26.11652) > 1e-4 {
		t.Errorf("ChirpMass(30, 30) = %f, want 26.11652", got)
	}

	// Symmetric in argument order.
	if ChirpMass(1.4, 2.6) != ChirpMass(2.6, 1.4) {
		t.Error("ChirpMass is not symmetric in its arguments")
	}

	// Heavier systems have larger chirp mass.
	if ChirpMass(2.0, 2.0) <= ChirpMass(1.0, 1.0) {
		t.Error("ChirpMass(2,2) should exceed ChirpMass(1,1)")
	}
}
