package retrieval

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"

	"slmwavefront/pkg/field"
)

// epsilon guards divisions by near-zero totals so a degenerate projection
// cannot inject NaN into the iteration.
const epsilon = 1e-15

// normalizedMSE is the mean-squared amplitude error between the propagated
// focal amplitude and the target amplitude, normalized by the target's
// total squared amplitude. Lower is better.
func normalizedMSE(propagated *field.Field, targetAmp []float64) float64 {
	num := 0.0
	den := floats.Dot(targetAmp, targetAmp)
	for i, v := range propagated.Data {
		d := cmplx.Abs(v) - targetAmp[i]
		num += d * d
	}
	return num / math.Max(den, epsilon)
}

// correlationMagnitude is the magnitude of the correlation coefficient
// between the flattened propagated focal field and the (real) target
// amplitude treated as a complex field. Higher is better; 1 means the
// amplitudes match up to a global complex factor.
func correlationMagnitude(propagated *field.Field, targetAmp []float64) float64 {
	var inner complex128
	normF := 0.0
	for i, v := range propagated.Data {
		inner += v * complex(targetAmp[i], 0)
		re, im := real(v), imag(v)
		normF += re*re + im*im
	}
	normT := floats.Dot(targetAmp, targetAmp)
	return cmplx.Abs(inner) / math.Max(math.Sqrt(normF*normT), epsilon)
}

// fidelity evaluates the configured metric.
func (k MetricKind) fidelity(propagated *field.Field, targetAmp []float64) float64 {
	if k == MetricCorrelation {
		return correlationMagnitude(propagated, targetAmp)
	}
	return normalizedMSE(propagated, targetAmp)
}

// relativeChange is the magnitude of the change between the last two
// metric values relative to the previous one. Using the magnitude lets the
// same stopping rule serve both sign conventions: a decreasing MSE and an
// increasing correlation both settle when the relative change vanishes.
func relativeChange(prev, cur float64) float64 {
	return math.Abs(cur-prev) / math.Max(math.Abs(prev), epsilon)
}
