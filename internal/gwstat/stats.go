// Package gwstat computes the derived statistics attached to matched-filter
// triggers: reduced chi-square, reweighted SNR, and template chirp mass.
package gwstat

import (
	"fmt"
	"math"
)

// DegenerateDofError reports a chi-square degrees-of-freedom count too small
// to normalise against. Reduction divides by 2*dof - 2, so dof must exceed 1.
type DegenerateDofError struct {
	Dof int
}

func (e *DegenerateDofError) Error() string {
	return fmt.Sprintf("chi-square dof %d leaves no degrees of freedom after reduction", e.Dof)
}

// ReducedChisq normalises a raw chi-square value by its degrees of freedom.
// Trigger stores record the raw value; everything downstream works with the
// reduced form chisq / (2*dof - 2).
func ReducedChisq(chisq float64, dof int) (float64, error) {
	if dof <= 1 {
		return 0, &DegenerateDofError{Dof: dof}
	}
	return chisq / float64(2*dof-2), nil
}

// ReweightedSNR down-weights a matched-filter SNR by its reduced chi-square.
// Triggers with rchisq <= 1 pass through unchanged; above 1 the SNR is
// divided by ((1 + rchisq^3) / 2)^(1/6).
func ReweightedSNR(snr, rchisq float64) float64 {
	if rchisq <= 1 {
		return snr
	}
	return snr / math.Pow((1+math.Pow(rchisq, 3))/2, 1.0/6.0)
}

// ChirpMass returns the chirp mass of a template with component masses m1
// and m2: (m1*m2)^(3/5) / (m1+m2)^(1/5). Symmetric in its arguments.
func ChirpMass(m1, m2 float64) float64 {
	return math.Pow(m1*m2, 3.0/5.0) / math.Pow(m1+m2, 1.0/5.0)
}
