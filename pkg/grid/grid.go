// Package grid defines the sampled coordinate systems used by the wavefront
// retrieval pipeline: the SLM (near-field) plane and the focal (far-field)
// plane derived from it through the far-field scaling relation.
package grid

import (
	"errors"
	"fmt"
)

// ErrConfiguration is returned when a plane is requested with invalid
// physical parameters (non-positive sample counts, extents, wavelength or
// focal length). It is always raised before any iteration work starts.
var ErrConfiguration = errors.New("grid: invalid configuration")

// PlaneGrid is an immutable descriptor of a 2D sampled plane.
//
// Coordinate vectors run symmetrically from -N/2 to N/2-1 scaled by the
// per-pixel pitch, so the logical origin sits at index N/2. A PlaneGrid is
// created once per retrieval run and never mutated.
type PlaneGrid struct {
	// Nx and Ny are the sample counts along the x (column) and y (row) axes.
	Nx, Ny int

	// HalfExtentX and HalfExtentY are the physical half-extents of the
	// plane in meters.
	HalfExtentX, HalfExtentY float64

	// PitchX and PitchY are the derived per-pixel pitches in meters.
	PitchX, PitchY float64

	// X and Y are the derived coordinate vectors in meters. X has length
	// Nx, Y has length Ny.
	X, Y []float64
}

// NewPlaneGrid creates the descriptor of a sampled plane from its sample
// counts and physical half-extents.
//
// Returns ErrConfiguration if any count or extent is non-positive.
func NewPlaneGrid(nx, ny int, halfExtentX, halfExtentY float64) (*PlaneGrid, error) {
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("%w: sample counts must be positive, got %dx%d", ErrConfiguration, nx, ny)
	}
	if halfExtentX <= 0 || halfExtentY <= 0 {
		return nil, fmt.Errorf("%w: half-extents must be positive, got %g x %g", ErrConfiguration, halfExtentX, halfExtentY)
	}

	g := &PlaneGrid{
		Nx:          nx,
		Ny:          ny,
		HalfExtentX: halfExtentX,
		HalfExtentY: halfExtentY,
		PitchX:      2 * halfExtentX / float64(nx),
		PitchY:      2 * halfExtentY / float64(ny),
	}
	g.X = coordinates(nx, g.PitchX)
	g.Y = coordinates(ny, g.PitchY)
	return g, nil
}

// FocalPlane derives the grid of the far-field plane reached through a
// focusing element, using the scaling relation
//
//	pitch_focus = wavelength * focalLength / (N * pitch_slm)
//
// applied per axis. Wavelength and focal length are in meters.
func (g *PlaneGrid) FocalPlane(wavelength, focalLength float64) (*PlaneGrid, error) {
	if wavelength <= 0 {
		return nil, fmt.Errorf("%w: wavelength must be positive, got %g", ErrConfiguration, wavelength)
	}
	if focalLength <= 0 {
		return nil, fmt.Errorf("%w: focal length must be positive, got %g", ErrConfiguration, focalLength)
	}

	pitchX := wavelength * focalLength / (float64(g.Nx) * g.PitchX)
	pitchY := wavelength * focalLength / (float64(g.Ny) * g.PitchY)
	return NewPlaneGrid(g.Nx, g.Ny, float64(g.Nx)/2*pitchX, float64(g.Ny)/2*pitchY)
}

// Doubled returns the grid covering the same plane padded to double sample
// density: same pitch, doubled sample counts and extents. The retrieval
// engine evaluates seed phases on this grid after zero-padding.
func (g *PlaneGrid) Doubled() *PlaneGrid {
	padded, err := NewPlaneGrid(2*g.Nx, 2*g.Ny, 2*g.HalfExtentX, 2*g.HalfExtentY)
	if err != nil {
		// Unreachable: a valid grid doubles into a valid grid.
		panic(err)
	}
	return padded
}

// Samples returns the total number of samples Nx*Ny.
func (g *PlaneGrid) Samples() int {
	return g.Nx * g.Ny
}

// coordinates builds the symmetric coordinate vector -N/2 .. N/2-1 scaled
// by the pitch.
func coordinates(n int, pitch float64) []float64 {
	c := make([]float64, n)
	for i := 0; i < n; i++ {
		c[i] = float64(i-n/2) * pitch
	}
	return c
}
