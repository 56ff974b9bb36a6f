package grid

import (
	"errors"
	"math"
	"testing"
)

// TestNewPlaneGrid verifies pitch derivation and the symmetric coordinate
// convention -N/2 .. N/2-1.
func TestNewPlaneGrid(t *testing.T) {
	g, err := NewPlaneGrid(8, 4, 4.0, 2.0)
	if err != nil {
		t.Fatalf("NewPlaneGrid failed: %v", err)
	}

	if g.PitchX != 1.0 {
		t.Errorf("Expected PitchX=1.0, got %g", g.PitchX)
	}
	if g.PitchY != 1.0 {
		t.Errorf("Expected PitchY=1.0, got %g", g.PitchY)
	}

	if len(g.X) != 8 || len(g.Y) != 4 {
		t.Fatalf("Expected coordinate vectors of length 8 and 4, got %d and %d", len(g.X), len(g.Y))
	}

	// First coordinate is -N/2 * pitch, last is (N/2-1) * pitch
	if g.X[0] != -4.0 || g.X[7] != 3.0 {
		t.Errorf("Expected X spanning [-4, 3], got [%g, %g]", g.X[0], g.X[7])
	}
	if g.Y[0] != -2.0 || g.Y[3] != 1.0 {
		t.Errorf("Expected Y spanning [-2, 1], got [%g, %g]", g.Y[0], g.Y[3])
	}

	// Origin sits at index N/2
	if g.X[4] != 0 || g.Y[2] != 0 {
		t.Errorf("Expected origin at index N/2, got X[4]=%g Y[2]=%g", g.X[4], g.Y[2])
	}
}

// TestNewPlaneGridInvalid ensures invalid physical parameters are rejected
// with ErrConfiguration.
func TestNewPlaneGridInvalid(t *testing.T) {
	cases := []struct {
		name         string
		nx, ny       int
		halfX, halfY float64
	}{
		{"zero nx", 0, 8, 1, 1},
		{"negative ny", 8, -1, 1, 1},
		{"zero extent", 8, 8, 0, 1},
		{"negative extent", 8, 8, 1, -2},
	}

	for _, tc := range cases {
		if _, err := NewPlaneGrid(tc.nx, tc.ny, tc.halfX, tc.halfY); !errors.Is(err, ErrConfiguration) {
			t.Errorf("%s: expected ErrConfiguration, got %v", tc.name, err)
		}
	}
}

// TestFocalPlaneScaling checks the far-field scaling relation
// pitch_focus = lambda*f/(N*pitch_slm).
func TestFocalPlaneScaling(t *testing.T) {
	g, err := NewPlaneGrid(256, 256, 4e-3, 4e-3)
	if err != nil {
		t.Fatalf("NewPlaneGrid failed: %v", err)
	}

	wavelength := 633e-9
	focal := 0.5
	f, err := g.FocalPlane(wavelength, focal)
	if err != nil {
		t.Fatalf("FocalPlane failed: %v", err)
	}

	want := wavelength * focal / (256 * g.PitchX)
	if math.Abs(f.PitchX-want) > 1e-18 {
		t.Errorf("Expected focal pitch %g, got %g", want, f.PitchX)
	}
	if f.Nx != g.Nx || f.Ny != g.Ny {
		t.Errorf("Focal plane should keep sample counts, got %dx%d", f.Nx, f.Ny)
	}

	// Half-extent is consistent with the derived pitch
	wantHalf := 128 * want
	if math.Abs(f.HalfExtentX-wantHalf) > 1e-18 {
		t.Errorf("Expected focal half-extent %g, got %g", wantHalf, f.HalfExtentX)
	}
}

// TestFocalPlaneInvalid ensures non-positive wavelength or focal length is
// rejected.
func TestFocalPlaneInvalid(t *testing.T) {
	g, err := NewPlaneGrid(16, 16, 1, 1)
	if err != nil {
		t.Fatalf("NewPlaneGrid failed: %v", err)
	}

	if _, err := g.FocalPlane(0, 1); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for zero wavelength, got %v", err)
	}
	if _, err := g.FocalPlane(633e-9, -1); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for negative focal length, got %v", err)
	}
}

// TestDoubled verifies the padded grid keeps the pitch and doubles counts
// and extents.
func TestDoubled(t *testing.T) {
	g, err := NewPlaneGrid(16, 8, 2.0, 1.0)
	if err != nil {
		t.Fatalf("NewPlaneGrid failed: %v", err)
	}

	d := g.Doubled()
	if d.Nx != 32 || d.Ny != 16 {
		t.Errorf("Expected 32x16 samples, got %dx%d", d.Nx, d.Ny)
	}
	if d.PitchX != g.PitchX || d.PitchY != g.PitchY {
		t.Errorf("Doubling must preserve pitch: got %g/%g, want %g/%g",
			d.PitchX, d.PitchY, g.PitchX, g.PitchY)
	}
	if d.HalfExtentX != 2*g.HalfExtentX {
		t.Errorf("Expected doubled half-extent %g, got %g", 2*g.HalfExtentX, d.HalfExtentX)
	}
}
