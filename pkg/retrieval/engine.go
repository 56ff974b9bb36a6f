// Package retrieval implements the Gerchberg-Saxton style alternating
// projection loop that recovers the SLM-plane phase reproducing a measured
// focal-plane intensity, together with the convergence diagnostics derived
// from the retrieved field.
//
// The engine enforces two amplitude constraints in turn: the measured
// amplitude at the focal plane and the modeled illumination amplitude at
// the SLM plane, keeping the phase from the previous propagation each time.
// Both planes are held at double sample density during the loop and the
// results are cropped back to native resolution on return.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"slmwavefront/pkg/field"
	"slmwavefront/pkg/grid"
	"slmwavefront/pkg/propagation"
)

// Result is the immutable outcome of a retrieval run.
type Result struct {
	// SLMField and FocusField are the terminal field estimates at native
	// resolution.
	SLMField   *field.Field
	FocusField *field.Field

	// History is the fidelity metric recorded once per iteration, in
	// iteration order.
	History []float64

	// Status records how the loop terminated.
	Status Status

	// Iterations is the number of completed iterations, equal to
	// len(History).
	Iterations int
}

// Engine runs phase retrieval on a fixed SLM plane geometry. An Engine
// owns its propagator plans and loop state, so concurrent runs must each
// use their own Engine; a single Engine may be reused for sequential runs.
type Engine struct {
	slmGrid *grid.PlaneGrid
	padGrid *grid.PlaneGrid
	prop    *propagation.Propagator
	cfg     Config
}

// retrievalState is the mutable per-run loop state. It is created at loop
// start, advanced once per iteration and discarded after the immutable
// Result has been extracted.
type retrievalState struct {
	slm     *field.Field
	focus   *field.Field
	history []float64
}

// NewEngine creates an engine for the given SLM plane and convergence
// configuration. Returns grid.ErrConfiguration for unusable settings.
func NewEngine(slmGrid *grid.PlaneGrid, cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	padGrid := slmGrid.Doubled()
	return &Engine{
		slmGrid: slmGrid,
		padGrid: padGrid,
		prop:    propagation.New(padGrid.Ny, padGrid.Nx),
		cfg:     cfg,
	}, nil
}

// Run executes the alternating-projection loop against a measured target
// intensity and a modeled illumination intensity, both at the native SLM
// grid resolution.
//
// The target may already be restricted by an aperture mask sized from beam
// metrology; the engine takes it as given. Validation failures surface as
// field.ErrDegenerateInput or field.ErrShapeMismatch before the first
// iteration. Non-convergence is not an error: the run ends with
// StatusMaxIterations and the best available estimate. Context expiry is
// honored only at iteration boundaries, because one iteration's
// transform/projection steps form an atomic unit of work.
func (e *Engine) Run(ctx context.Context, target, illumination *field.Intensity) (*Result, error) {
	if err := e.checkInputs(target, illumination); err != nil {
		return nil, err
	}

	// Pad both constraints to double resolution. The target amplitude is
	// the square root of the padded measured intensity; padding the
	// intensity and the amplitude commute since sqrt(0) = 0.
	paddedTarget := field.PadIntensityToDouble(target)
	paddedIllum := field.PadIntensityToDouble(illumination)
	targetAmp := amplitude(paddedTarget)
	illumAmp := amplitude(paddedIllum)

	st := &retrievalState{
		slm:     initialField(illumAmp, e.cfg.Seed.Phase(e.padGrid), e.padGrid),
		history: make([]float64, 0, e.cfg.MaxIterations),
	}

	status := StatusMaxIterations
	for {
		focus, err := e.prop.ToFocus(st.slm)
		if err != nil {
			return nil, err
		}

		st.history = append(st.history, e.cfg.Metric.fidelity(focus, targetAmp))

		converged := false
		if n := len(st.history); n >= 2 {
			converged = relativeChange(st.history[n-2], st.history[n-1]) < e.cfg.Tolerance
		}

		// Amplitude-replacement projection: impose the target amplitude,
		// keep the propagated phase.
		st.focus = imposeAmplitude(focus, targetAmp)

		back, err := e.prop.ToSLM(st.focus)
		if err != nil {
			return nil, err
		}
		st.slm = imposeAmplitude(back, illumAmp)

		if converged {
			status = StatusConverged
			break
		}
		if len(st.history) >= e.cfg.MaxIterations {
			status = StatusMaxIterations
			break
		}
		if ctx.Err() != nil {
			status = StatusTimedOut
			break
		}
	}

	return e.extractResult(st, status)
}

// checkInputs validates intensities and their shapes against the SLM grid.
func (e *Engine) checkInputs(target, illumination *field.Intensity) error {
	if err := target.Validate(); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if err := illumination.Validate(); err != nil {
		return fmt.Errorf("illumination: %w", err)
	}
	if target.Rows != e.slmGrid.Ny || target.Cols != e.slmGrid.Nx {
		return fmt.Errorf("%w: target is %dx%d, grid is %dx%d",
			field.ErrShapeMismatch, target.Rows, target.Cols, e.slmGrid.Ny, e.slmGrid.Nx)
	}
	if illumination.Rows != e.slmGrid.Ny || illumination.Cols != e.slmGrid.Nx {
		return fmt.Errorf("%w: illumination is %dx%d, grid is %dx%d",
			field.ErrShapeMismatch, illumination.Rows, illumination.Cols, e.slmGrid.Ny, e.slmGrid.Nx)
	}
	return nil
}

// extractResult crops the terminal fields back to native resolution and
// freezes the loop state into a Result.
func (e *Engine) extractResult(st *retrievalState, status Status) (*Result, error) {
	slm, err := field.ClipToOriginal(st.slm, e.slmGrid.Ny, e.slmGrid.Nx)
	if err != nil {
		return nil, err
	}
	focus, err := field.ClipToOriginal(st.focus, e.slmGrid.Ny, e.slmGrid.Nx)
	if err != nil {
		return nil, err
	}
	return &Result{
		SLMField:   slm,
		FocusField: focus,
		History:    st.history,
		Status:     status,
		Iterations: len(st.history),
	}, nil
}

// initialField builds sqrt(illuminationIntensity) * exp(i*seedPhase) on
// the padded grid. A nil seed phase means a flat zero phase.
func initialField(illumAmp []float64, seedPhase []float64, g *grid.PlaneGrid) *field.Field {
	f, err := field.FromPolar(g.Ny, g.Nx, illumAmp, seedPhase)
	if err != nil {
		// Unreachable: both arrays are built on the padded grid.
		panic(err)
	}
	return f
}

// imposeAmplitude replaces the magnitude of every sample with the given
// amplitude while retaining the sample's phase. Near-zero samples keep a
// zero phase rather than dividing by their vanishing magnitude.
func imposeAmplitude(f *field.Field, amp []float64) *field.Field {
	out := field.New(f.Rows, f.Cols)
	for i, v := range f.Data {
		if cmplx.Abs(v) < epsilon {
			out.Data[i] = complex(amp[i], 0)
			continue
		}
		phase := cmplx.Phase(v)
		out.Data[i] = complex(amp[i]*math.Cos(phase), amp[i]*math.Sin(phase))
	}
	return out
}

// amplitude is the element-wise square root of an intensity.
func amplitude(in *field.Intensity) []float64 {
	amp := make([]float64, len(in.Data))
	for i, v := range in.Data {
		amp[i] = math.Sqrt(v)
	}
	return amp
}
