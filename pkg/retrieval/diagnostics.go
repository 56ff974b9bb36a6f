package retrieval

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"slmwavefront/pkg/field"
)

// Diagnostics are read-only figures of merit derived from the retrieved
// focal-plane phase. They never feed back into the iteration.
type Diagnostics struct {
	// RMSWavefront is the RMS wavefront error in the same length units as
	// the wavelength.
	RMSWavefront float64

	// Strehl is the estimated Strehl ratio in [0, 1] from the Mahajan
	// approximation exp(-(2*pi*sigma/lambda)^2).
	Strehl float64
}

// WavefrontDiagnostics samples the central sub-region of the focal field's
// phase map, takes its standard deviation as the phase error in radians
// and scales it to the wavelength for an RMS wavefront error estimate.
//
// centerFraction is the fraction of each dimension covered by the sampled
// sub-region; values outside (0, 1] fall back to the conventional 0.25.
func WavefrontDiagnostics(focus *field.Field, wavelength, centerFraction float64) Diagnostics {
	if centerFraction <= 0 || centerFraction > 1 {
		centerFraction = 0.25
	}

	rows := max(1, int(float64(focus.Rows)*centerFraction))
	cols := max(1, int(float64(focus.Cols)*centerFraction))
	startRow := (focus.Rows - rows) / 2
	startCol := (focus.Cols - cols) / 2

	phases := make([]float64, 0, rows*cols)
	for row := startRow; row < startRow+rows; row++ {
		for col := startCol; col < startCol+cols; col++ {
			phases = append(phases, phase(focus.At(row, col)))
		}
	}

	sigmaPhase := stat.StdDev(phases, nil)
	if math.IsNaN(sigmaPhase) {
		sigmaPhase = 0
	}

	// With sigma = lambda*sigmaPhase/(2*pi), the Mahajan exponent
	// (2*pi*sigma/lambda)^2 collapses to sigmaPhase^2.
	return Diagnostics{
		RMSWavefront: sigmaPhase / (2 * math.Pi) * wavelength,
		Strehl:       math.Exp(-sigmaPhase * sigmaPhase),
	}
}

func phase(v complex128) float64 {
	return math.Atan2(imag(v), real(v))
}
