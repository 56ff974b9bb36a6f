// Package propagation implements the centered Fourier propagator relating
// the SLM plane to the focal plane. Both directions use an orthonormal
// scaling convention, so the transform pair is an exact adjoint: total
// energy is preserved to floating-point precision, and ToSLM is the exact
// numerical inverse of ToFocus.
package propagation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"slmwavefront/pkg/field"
)

// Propagator carries the FFT plans for a fixed field shape. The plans are
// reused across all iterations of a retrieval run.
//
// A Propagator is a pure transformer: both operations allocate their result
// and leave the input untouched. It is not safe for concurrent use because
// the underlying plans carry scratch state; each retrieval run owns its own
// Propagator.
type Propagator struct {
	rows, cols int
	rowFFT     *fourier.CmplxFFT
	colFFT     *fourier.CmplxFFT
	scale      float64
}

// New creates a propagator for fields of the given shape.
func New(rows, cols int) *Propagator {
	return &Propagator{
		rows:   rows,
		cols:   cols,
		rowFFT: fourier.NewCmplxFFT(cols),
		colFFT: fourier.NewCmplxFFT(rows),
		scale:  1 / math.Sqrt(float64(rows)*float64(cols)),
	}
}

// ToFocus propagates an SLM-plane field to the focal plane: the array is
// folded about its center so the logical origin sits at index 0, forward
// transformed, and re-centered.
func (p *Propagator) ToFocus(f *field.Field) (*field.Field, error) {
	if err := p.checkShape(f); err != nil {
		return nil, err
	}

	out := shift2(f, floorHalf(f.Rows), floorHalf(f.Cols))
	p.transform(out, false)
	return shiftInPlace(out, floorHalf(f.Rows), floorHalf(f.Cols)), nil
}

// ToSLM propagates a focal-plane field back to the SLM plane. It is the
// exact inverse of ToFocus up to floating-point round-off.
func (p *Propagator) ToSLM(f *field.Field) (*field.Field, error) {
	if err := p.checkShape(f); err != nil {
		return nil, err
	}

	out := shift2(f, floorHalf(f.Rows), floorHalf(f.Cols))
	p.transform(out, true)
	return shiftInPlace(out, floorHalf(f.Rows), floorHalf(f.Cols)), nil
}

func (p *Propagator) checkShape(f *field.Field) error {
	if f.Rows != p.rows || f.Cols != p.cols {
		return fmt.Errorf("%w: field is %dx%d, propagator planned for %dx%d",
			field.ErrShapeMismatch, f.Rows, f.Cols, p.rows, p.cols)
	}
	return nil
}

// transform applies the unnormalized 2D FFT row-wise then column-wise and
// rescales once by 1/sqrt(rows*cols), which makes the forward/inverse pair
// orthonormal.
func (p *Propagator) transform(f *field.Field, inverse bool) {
	rowScratch := make([]complex128, p.cols)
	for row := 0; row < p.rows; row++ {
		line := f.Data[row*p.cols : (row+1)*p.cols]
		if inverse {
			p.rowFFT.Sequence(rowScratch, line)
		} else {
			p.rowFFT.Coefficients(rowScratch, line)
		}
		copy(line, rowScratch)
	}

	colIn := make([]complex128, p.rows)
	colOut := make([]complex128, p.rows)
	for col := 0; col < p.cols; col++ {
		for row := 0; row < p.rows; row++ {
			colIn[row] = f.Data[row*p.cols+col]
		}
		if inverse {
			p.colFFT.Sequence(colOut, colIn)
		} else {
			p.colFFT.Coefficients(colOut, colIn)
		}
		for row := 0; row < p.rows; row++ {
			f.Data[row*p.cols+col] = colOut[row]
		}
	}

	for i := range f.Data {
		f.Data[i] *= complex(p.scale, 0)
	}
}

// shift2 circularly rolls a field backwards by the given row and column
// offsets into a fresh field: the sample at index floor(n/2), where the grid
// places the origin, lands at index 0. shiftInPlace rolls forwards by the
// same offset and re-centers the origin; the two are exact inverses for
// both even and odd sizes.
func shift2(f *field.Field, rowShift, colShift int) *field.Field {
	out := field.New(f.Rows, f.Cols)
	for row := 0; row < f.Rows; row++ {
		dstRow := (row + f.Rows - rowShift) % f.Rows
		for col := 0; col < f.Cols; col++ {
			dstCol := (col + f.Cols - colShift) % f.Cols
			out.Data[dstRow*f.Cols+dstCol] = f.Data[row*f.Cols+col]
		}
	}
	return out
}

func shiftInPlace(f *field.Field, rowShift, colShift int) *field.Field {
	if rowShift == 0 && colShift == 0 {
		return f
	}
	shifted := shift2(f, f.Rows-rowShift, f.Cols-colShift)
	copy(f.Data, shifted.Data)
	return f
}

func floorHalf(n int) int { return n / 2 }
