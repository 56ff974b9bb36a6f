// Package visualization renders retrieval results for inspection: the
// wrapped correction phase and intensity maps as grayscale images, and the
// fidelity-metric history as a convergence plot. It is a downstream
// consumer of the engine's outputs; nothing here feeds back into the loop.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"slmwavefront/pkg/correction"
	"slmwavefront/pkg/field"
)

// SavePhaseImage writes a correction pattern as an 8-bit grayscale PNG,
// mapping the wrapped interval (-pi, pi] linearly to 0..255. Samples
// outside the valid region are rendered black.
func SavePhaseImage(p *correction.Pattern, filename string) error {
	img := image.NewGray(image.Rect(0, 0, p.Cols, p.Rows))
	for row := 0; row < p.Rows; row++ {
		for col := 0; col < p.Cols; col++ {
			idx := row*p.Cols + col
			if !p.Valid[idx] {
				continue
			}
			gray := uint8((p.Phase[idx] + math.Pi) / (2 * math.Pi) * 255)
			img.SetGray(col, row, color.Gray{Y: gray})
		}
	}
	return writePNG(img, filename)
}

// SaveIntensityImage writes an intensity as a 16-bit grayscale PNG,
// normalized to its own maximum.
func SaveIntensityImage(in *field.Intensity, filename string) error {
	maxVal := 0.0
	for _, v := range in.Data {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal <= 0 {
		return fmt.Errorf("visualization: %w", field.ErrDegenerateInput)
	}

	img := image.NewGray16(image.Rect(0, 0, in.Cols, in.Rows))
	for row := 0; row < in.Rows; row++ {
		for col := 0; col < in.Cols; col++ {
			value := uint16(math.Max(0, math.Min(65535, in.Data[row*in.Cols+col]/maxVal*65535)))
			img.SetGray16(col, row, color.Gray16{Y: value})
		}
	}
	return writePNG(img, filename)
}

func writePNG(img image.Image, filename string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
