// Package metrology measures beam geometry from intensity images: the
// intensity-weighted centroid, the second-moment beam radius, and circular
// or rectangular aperture masks used to restrict fields to a physically
// meaningful region without resampling.
package metrology

import (
	"fmt"
	"math"

	"slmwavefront/pkg/field"
	"slmwavefront/pkg/grid"
)

// BeamMetrics holds the centroid and the second-moment radii of a beam.
// The centroid is in fractional pixel coordinates (row, col); the radii
// follow the second-moment beam-width convention 2*sqrt(moment/total) per
// axis, in pixels. This is not a 1/e^2 width.
type BeamMetrics struct {
	CentroidRow float64
	CentroidCol float64
	RadiusX     float64
	RadiusY     float64
}

// CentroidAndRadius computes the intensity-weighted centroid of an image
// and, about that centroid, the second-moment beam radius along each axis.
//
// Returns field.ErrDegenerateInput when the total intensity is zero or any
// sample is non-finite.
func CentroidAndRadius(in *field.Intensity) (BeamMetrics, error) {
	if err := in.Validate(); err != nil {
		return BeamMetrics{}, fmt.Errorf("beam metrology: %w", err)
	}

	total := 0.0
	sumRow := 0.0
	sumCol := 0.0
	for row := 0; row < in.Rows; row++ {
		for col := 0; col < in.Cols; col++ {
			w := in.Data[row*in.Cols+col]
			total += w
			sumRow += w * float64(row)
			sumCol += w * float64(col)
		}
	}

	m := BeamMetrics{
		CentroidRow: sumRow / total,
		CentroidCol: sumCol / total,
	}

	momentX := 0.0
	momentY := 0.0
	for row := 0; row < in.Rows; row++ {
		dy := float64(row) - m.CentroidRow
		for col := 0; col < in.Cols; col++ {
			dx := float64(col) - m.CentroidCol
			w := in.Data[row*in.Cols+col]
			momentX += w * dx * dx
			momentY += w * dy * dy
		}
	}
	m.RadiusX = 2 * math.Sqrt(momentX/total)
	m.RadiusY = 2 * math.Sqrt(momentY/total)
	return m, nil
}

// ApertureMask selects a region of interest over a sampled plane. Inside
// is row-major; samples outside the region are excluded from metrics and
// nulled when the mask is applied to a field.
type ApertureMask struct {
	Rows, Cols int
	Inside     []bool
}

// CircularMask builds a mask selecting the samples within radius of the
// given center, all in the physical units of the grid's coordinates.
func CircularMask(g *grid.PlaneGrid, centerX, centerY, radius float64) *ApertureMask {
	m := &ApertureMask{
		Rows:   g.Ny,
		Cols:   g.Nx,
		Inside: make([]bool, g.Ny*g.Nx),
	}
	r2 := radius * radius
	for row := 0; row < g.Ny; row++ {
		dy := g.Y[row] - centerY
		for col := 0; col < g.Nx; col++ {
			dx := g.X[col] - centerX
			m.Inside[row*g.Nx+col] = dx*dx+dy*dy <= r2
		}
	}
	return m
}

// RectMask builds a centered rectangular mask of the given physical
// half-widths, matching a device's usable area.
func RectMask(g *grid.PlaneGrid, halfWidth, halfHeight float64) *ApertureMask {
	m := &ApertureMask{
		Rows:   g.Ny,
		Cols:   g.Nx,
		Inside: make([]bool, g.Ny*g.Nx),
	}
	for row := 0; row < g.Ny; row++ {
		inY := math.Abs(g.Y[row]) <= halfHeight
		for col := 0; col < g.Nx; col++ {
			m.Inside[row*g.Nx+col] = inY && math.Abs(g.X[col]) <= halfWidth
		}
	}
	return m
}

// And intersects two masks of identical shape.
func (m *ApertureMask) And(other *ApertureMask) (*ApertureMask, error) {
	if m.Rows != other.Rows || m.Cols != other.Cols {
		return nil, fmt.Errorf("%w: masks are %dx%d and %dx%d",
			field.ErrShapeMismatch, m.Rows, m.Cols, other.Rows, other.Cols)
	}
	out := &ApertureMask{
		Rows:   m.Rows,
		Cols:   m.Cols,
		Inside: make([]bool, len(m.Inside)),
	}
	for i := range m.Inside {
		out.Inside[i] = m.Inside[i] && other.Inside[i]
	}
	return out, nil
}

// Count returns the number of samples inside the mask.
func (m *ApertureMask) Count() int {
	n := 0
	for _, in := range m.Inside {
		if in {
			n++
		}
	}
	return n
}

// ApplyField returns a copy of the field with samples outside the mask set
// to zero.
func (m *ApertureMask) ApplyField(f *field.Field) (*field.Field, error) {
	if f.Rows != m.Rows || f.Cols != m.Cols {
		return nil, fmt.Errorf("%w: field is %dx%d, mask is %dx%d",
			field.ErrShapeMismatch, f.Rows, f.Cols, m.Rows, m.Cols)
	}
	out := f.Clone()
	for i, in := range m.Inside {
		if !in {
			out.Data[i] = 0
		}
	}
	return out, nil
}

// ApplyIntensity returns a copy of the intensity with samples outside the
// mask set to zero.
func (m *ApertureMask) ApplyIntensity(in *field.Intensity) (*field.Intensity, error) {
	if in.Rows != m.Rows || in.Cols != m.Cols {
		return nil, fmt.Errorf("%w: intensity is %dx%d, mask is %dx%d",
			field.ErrShapeMismatch, in.Rows, in.Cols, m.Rows, m.Cols)
	}
	out := in.Clone()
	for i, inside := range m.Inside {
		if !inside {
			out.Data[i] = 0
		}
	}
	return out, nil
}
