// Package field holds the sampled complex amplitude and real intensity
// arrays exchanged between the planes of the retrieval pipeline, together
// with the symmetric pad/clip sampling adapter.
package field

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"slmwavefront/pkg/grid"
)

// ErrShapeMismatch is returned when an array does not have the shape an
// operation requires. It indicates a programming error and is never retried.
var ErrShapeMismatch = errors.New("field: shape mismatch")

// ErrDegenerateInput is returned when an intensity carries no usable
// signal: zero total energy, or non-finite or negative samples.
var ErrDegenerateInput = errors.New("field: degenerate input")

// Field is a 2D array of complex amplitude values in row-major order.
// It represents the estimate of a plane's field at a given iteration; each
// iteration of the retrieval loop produces new Field instances rather than
// mutating old ones, so the history stays inspectable.
type Field struct {
	Rows, Cols int
	Data       []complex128
}

// New allocates a zero field of the given shape.
func New(rows, cols int) *Field {
	return &Field{
		Rows: rows,
		Cols: cols,
		Data: make([]complex128, rows*cols),
	}
}

// FromPolar builds a field from an amplitude array and a phase array in
// radians. A nil phase means zero phase everywhere.
func FromPolar(rows, cols int, amplitude, phase []float64) (*Field, error) {
	if len(amplitude) != rows*cols {
		return nil, fmt.Errorf("%w: amplitude has %d samples, want %d", ErrShapeMismatch, len(amplitude), rows*cols)
	}
	if phase != nil && len(phase) != rows*cols {
		return nil, fmt.Errorf("%w: phase has %d samples, want %d", ErrShapeMismatch, len(phase), rows*cols)
	}

	f := New(rows, cols)
	for i, a := range amplitude {
		if phase == nil {
			f.Data[i] = complex(a, 0)
			continue
		}
		f.Data[i] = complex(a*math.Cos(phase[i]), a*math.Sin(phase[i]))
	}
	return f, nil
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	c := New(f.Rows, f.Cols)
	copy(c.Data, f.Data)
	return c
}

// At returns the sample at the given row and column.
func (f *Field) At(row, col int) complex128 {
	return f.Data[row*f.Cols+col]
}

// Set stores the sample at the given row and column.
func (f *Field) Set(row, col int, v complex128) {
	f.Data[row*f.Cols+col] = v
}

// Energy returns the total energy of the field, the sum of squared
// magnitudes over all samples.
func (f *Field) Energy() float64 {
	total := 0.0
	for _, v := range f.Data {
		re, im := real(v), imag(v)
		total += re*re + im*im
	}
	return total
}

// Amplitude returns the element-wise magnitude of the field.
func (f *Field) Amplitude() []float64 {
	amp := make([]float64, len(f.Data))
	for i, v := range f.Data {
		amp[i] = cmplx.Abs(v)
	}
	return amp
}

// PhaseMap returns the element-wise argument of the field in radians,
// in the interval (-pi, pi]. Zero samples report zero phase.
func (f *Field) PhaseMap() []float64 {
	phase := make([]float64, len(f.Data))
	for i, v := range f.Data {
		phase[i] = cmplx.Phase(v)
	}
	return phase
}

// SameShape reports whether two fields have identical dimensions.
func (f *Field) SameShape(other *Field) bool {
	return f.Rows == other.Rows && f.Cols == other.Cols
}

// Intensity is a 2D non-negative real array in row-major order: the
// measured focal-plane target, or any modeled intensity. Its square root
// defines a target amplitude.
type Intensity struct {
	Rows, Cols int
	Data       []float64
}

// NewIntensity allocates a zero intensity of the given shape.
func NewIntensity(rows, cols int) *Intensity {
	return &Intensity{
		Rows: rows,
		Cols: cols,
		Data: make([]float64, rows*cols),
	}
}

// Validate checks the intensity invariants: every sample finite and
// non-negative, and a strictly positive total. Returns ErrDegenerateInput
// otherwise.
func (in *Intensity) Validate() error {
	total := 0.0
	for i, v := range in.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite sample at index %d", ErrDegenerateInput, i)
		}
		if v < 0 {
			return fmt.Errorf("%w: negative sample %g at index %d", ErrDegenerateInput, v, i)
		}
		total += v
	}
	if total <= 0 {
		return fmt.Errorf("%w: total intensity is zero", ErrDegenerateInput)
	}
	return nil
}

// AmplitudeField returns the element-wise square root of the intensity as
// a real-valued complex field.
func (in *Intensity) AmplitudeField() *Field {
	f := New(in.Rows, in.Cols)
	for i, v := range in.Data {
		f.Data[i] = complex(math.Sqrt(v), 0)
	}
	return f
}

// Total returns the summed intensity over all samples.
func (in *Intensity) Total() float64 {
	total := 0.0
	for _, v := range in.Data {
		total += v
	}
	return total
}

// Clone returns a deep copy of the intensity.
func (in *Intensity) Clone() *Intensity {
	c := NewIntensity(in.Rows, in.Cols)
	copy(c.Data, in.Data)
	return c
}

// NewGaussianIntensity models the illumination of the SLM plane as a
// centered Gaussian beam of the given 1/e^2 waist radius (meters):
//
//	I(x, y) = exp(-2 (x^2 + y^2) / waist^2)
func NewGaussianIntensity(g *grid.PlaneGrid, waist float64) (*Intensity, error) {
	if waist <= 0 {
		return nil, fmt.Errorf("%w: waist must be positive, got %g", grid.ErrConfiguration, waist)
	}

	in := NewIntensity(g.Ny, g.Nx)
	for row := 0; row < g.Ny; row++ {
		y := g.Y[row]
		for col := 0; col < g.Nx; col++ {
			x := g.X[col]
			in.Data[row*g.Nx+col] = math.Exp(-2 * (x*x + y*y) / (waist * waist))
		}
	}
	return in, nil
}
