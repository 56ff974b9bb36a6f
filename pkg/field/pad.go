package field

import "fmt"

// PadToDouble symmetrically zero-pads a field so that each dimension
// doubles: N/2 zeros on the leading side and N-N/2 on the trailing side,
// which doubles odd sizes exactly as well. Padding increases the Fourier
// domain sample density without changing the physical content.
func PadToDouble(f *Field) *Field {
	padRow := f.Rows / 2
	padCol := f.Cols / 2

	out := New(2*f.Rows, 2*f.Cols)
	for row := 0; row < f.Rows; row++ {
		src := f.Data[row*f.Cols : (row+1)*f.Cols]
		dst := out.Data[(row+padRow)*out.Cols+padCol:]
		copy(dst[:f.Cols], src)
	}
	return out
}

// PadIntensityToDouble applies the same symmetric zero-padding to a real
// intensity array.
func PadIntensityToDouble(in *Intensity) *Intensity {
	padRow := in.Rows / 2
	padCol := in.Cols / 2

	out := NewIntensity(2*in.Rows, 2*in.Cols)
	for row := 0; row < in.Rows; row++ {
		src := in.Data[row*in.Cols : (row+1)*in.Cols]
		dst := out.Data[(row+padRow)*out.Cols+padCol:]
		copy(dst[:in.Cols], src)
	}
	return out
}

// ClipToOriginal is the exact inverse of PadToDouble: it extracts the
// centered sub-array of the given target shape using pure integer index
// arithmetic (no interpolation). For any field f,
// ClipToOriginal(PadToDouble(f), f.Rows, f.Cols) equals f exactly.
//
// Returns ErrShapeMismatch if the target shape exceeds the padded shape.
func ClipToOriginal(padded *Field, rows, cols int) (*Field, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: target shape %dx%d is not positive", ErrShapeMismatch, rows, cols)
	}
	if rows > padded.Rows || cols > padded.Cols {
		return nil, fmt.Errorf("%w: target shape %dx%d exceeds padded shape %dx%d",
			ErrShapeMismatch, rows, cols, padded.Rows, padded.Cols)
	}

	startRow := (padded.Rows - rows) / 2
	startCol := (padded.Cols - cols) / 2

	out := New(rows, cols)
	for row := 0; row < rows; row++ {
		src := padded.Data[(row+startRow)*padded.Cols+startCol:]
		copy(out.Data[row*cols:(row+1)*cols], src[:cols])
	}
	return out, nil
}
