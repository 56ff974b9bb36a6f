package retrieval

import (
	"fmt"
	"math"

	"slmwavefront/pkg/grid"
)

// MetricKind selects the scalar fidelity metric tracked per iteration.
type MetricKind int

const (
	// MetricMSE is the mean-squared amplitude error between the propagated
	// and target focal amplitudes, normalized by the target's total squared
	// amplitude. Lower values indicate convergence.
	MetricMSE MetricKind = iota

	// MetricCorrelation is the magnitude of the correlation coefficient
	// between the flattened propagated and target focal fields. Higher
	// values indicate convergence.
	MetricCorrelation
)

// String implements fmt.Stringer for reporting.
func (k MetricKind) String() string {
	switch k {
	case MetricMSE:
		return "mse"
	case MetricCorrelation:
		return "correlation"
	default:
		return fmt.Sprintf("MetricKind(%d)", int(k))
	}
}

func (k MetricKind) valid() bool {
	return k == MetricMSE || k == MetricCorrelation
}

// SeedMode is the closed set of initial-phase seeds. Invalid modes are
// unrepresentable: the only implementations are NoSeed and Vortex.
type SeedMode interface {
	// Phase evaluates the seed phase in radians over the given grid,
	// row-major. A nil result means zero phase everywhere.
	Phase(g *grid.PlaneGrid) []float64

	seedMode()
}

// NoSeed starts the retrieval from a flat zero phase.
type NoSeed struct{}

// Phase returns nil: zero phase everywhere.
func (NoSeed) Phase(*grid.PlaneGrid) []float64 { return nil }

func (NoSeed) seedMode() {}

// Vortex seeds the retrieval with an azimuthal phase ramp of the given
// integer topological order, biasing solutions toward beams carrying
// orbital angular momentum. The same ramp is subtracted again during
// correction synthesis.
type Vortex struct {
	Order int
}

// Phase returns the azimuthal ramp order*atan2(y, x) over the grid.
func (v Vortex) Phase(g *grid.PlaneGrid) []float64 {
	phase := make([]float64, g.Ny*g.Nx)
	for row := 0; row < g.Ny; row++ {
		y := g.Y[row]
		for col := 0; col < g.Nx; col++ {
			phase[row*g.Nx+col] = float64(v.Order) * math.Atan2(y, g.X[col])
		}
	}
	return phase
}

func (Vortex) seedMode() {}

// Config holds the convergence configuration of a retrieval run.
type Config struct {
	// MaxIterations is the hard cap on alternating-projection iterations.
	MaxIterations int

	// Tolerance is the relative-change threshold on the fidelity metric
	// below which the run is declared converged.
	Tolerance float64

	// Metric selects the fidelity metric. Zero value is MetricMSE.
	Metric MetricKind

	// Seed selects the initial-phase seed. Nil means NoSeed.
	Seed SeedMode
}

// validate normalizes the zero values and rejects unusable settings.
func (c *Config) validate() error {
	if c.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive, got %d", grid.ErrConfiguration, c.MaxIterations)
	}
	if c.Tolerance < 0 || math.IsNaN(c.Tolerance) {
		return fmt.Errorf("%w: tolerance must be non-negative, got %g", grid.ErrConfiguration, c.Tolerance)
	}
	if !c.Metric.valid() {
		return fmt.Errorf("%w: unknown metric kind %d", grid.ErrConfiguration, int(c.Metric))
	}
	if c.Seed == nil {
		c.Seed = NoSeed{}
	}
	return nil
}

// Status is the terminal state of a retrieval run.
type Status int

const (
	// StatusConverged means the relative change of the fidelity metric
	// dropped below the configured tolerance.
	StatusConverged Status = iota

	// StatusMaxIterations means the iteration cap was reached before the
	// tolerance. This is a normal outcome, not an error: the result holds
	// the best available estimate.
	StatusMaxIterations

	// StatusTimedOut means the caller's context expired at an iteration
	// boundary. The result holds the estimate from the last completed
	// iteration.
	StatusTimedOut
)

// String implements fmt.Stringer for reporting.
func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusMaxIterations:
		return "max iterations reached"
	case StatusTimedOut:
		return "timed out"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}
