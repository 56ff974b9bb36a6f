// Package correction turns a retrieved SLM-plane field into the corrective
// phase pattern sent (after device-specific resampling by a display
// collaborator) to the spatial light modulator.
package correction

import (
	"fmt"
	"math"
	"math/cmplx"

	"slmwavefront/pkg/field"
	"slmwavefront/pkg/grid"
	"slmwavefront/pkg/metrology"
	"slmwavefront/pkg/retrieval"
)

// Pattern is a real-valued phase array wrapped to (-pi, pi] on the SLM
// grid. Valid marks the usable region; samples outside it are left as-is
// and must be treated as undefined by downstream consumers, never as an
// implicit zero fill.
type Pattern struct {
	Rows, Cols int
	Phase      []float64
	Valid      []bool
}

// Synthesize derives the correction pattern from a retrieved SLM-plane
// field: extract the phase, subtract the seed's azimuthal ramp so the
// residual is the optical-system correction only, wrap into (-pi, pi], and
// optionally restrict the usable region with an aperture mask. A nil seed
// means no seed was used; a nil mask leaves the whole plane valid.
func Synthesize(slmField *field.Field, g *grid.PlaneGrid, seed retrieval.SeedMode, mask *metrology.ApertureMask) (*Pattern, error) {
	if slmField.Rows != g.Ny || slmField.Cols != g.Nx {
		return nil, fmt.Errorf("%w: field is %dx%d, grid is %dx%d",
			field.ErrShapeMismatch, slmField.Rows, slmField.Cols, g.Ny, g.Nx)
	}
	if mask != nil && (mask.Rows != g.Ny || mask.Cols != g.Nx) {
		return nil, fmt.Errorf("%w: mask is %dx%d, grid is %dx%d",
			field.ErrShapeMismatch, mask.Rows, mask.Cols, g.Ny, g.Nx)
	}

	var seedPhase []float64
	if seed != nil {
		seedPhase = seed.Phase(g)
	}

	p := &Pattern{
		Rows:  g.Ny,
		Cols:  g.Nx,
		Phase: make([]float64, g.Ny*g.Nx),
		Valid: make([]bool, g.Ny*g.Nx),
	}
	for i, v := range slmField.Data {
		phi := cmplx.Phase(v)
		if seedPhase != nil {
			phi -= seedPhase[i]
		}
		p.Phase[i] = WrapPhase(phi)
		if mask != nil {
			p.Valid[i] = mask.Inside[i]
		} else {
			p.Valid[i] = true
		}
	}
	return p, nil
}

// WrapPhase wraps a phase in radians into the canonical interval (-pi, pi]
// via ((x + pi) mod 2pi) - pi, with the boundary mapped to +pi.
func WrapPhase(x float64) float64 {
	w := math.Mod(x+math.Pi, 2*math.Pi)
	if w < 0 {
		w += 2 * math.Pi
	}
	w -= math.Pi
	if w == -math.Pi {
		return math.Pi
	}
	return w
}

// RestrictToRect intersects the valid region with the centered rectangle
// of the given half-sizes in samples, matching a device's usable area.
func (p *Pattern) RestrictToRect(halfRows, halfCols int) {
	centerRow := p.Rows / 2
	centerCol := p.Cols / 2
	for row := 0; row < p.Rows; row++ {
		for col := 0; col < p.Cols; col++ {
			if abs(row-centerRow) > halfRows || abs(col-centerCol) > halfCols {
				p.Valid[row*p.Cols+col] = false
			}
		}
	}
}

// ValidCount returns the number of usable samples.
func (p *Pattern) ValidCount() int {
	n := 0
	for _, v := range p.Valid {
		if v {
			n++
		}
	}
	return n
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
