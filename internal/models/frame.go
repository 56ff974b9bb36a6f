// Package models holds the measurement data transfer types shared between
// the CLI driver and the numeric core.
package models

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"slmwavefront/pkg/field"
)

// Frame is a single captured focal-plane image with its provenance.
type Frame struct {
	// Image is the decoded camera frame
	Image image.Image

	// Filename is the path the frame was loaded from
	Filename string

	// Width and Height are the pixel dimensions of the frame
	Width, Height int
}

// LoadFrame reads a PNG or JPEG camera capture from disk.
func LoadFrame(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %s: %w", path, err)
	}

	bounds := img.Bounds()
	return &Frame{
		Image:    img,
		Filename: path,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// Intensity converts the frame to a grayscale intensity normalized to
// [0, 1]. Color frames use the luminance of each pixel.
func (f *Frame) Intensity() *field.Intensity {
	bounds := f.Image.Bounds()
	in := field.NewIntensity(f.Height, f.Width)
	for row := 0; row < f.Height; row++ {
		for col := 0; col < f.Width; col++ {
			r, g, b, _ := f.Image.At(bounds.Min.X+col, bounds.Min.Y+row).RGBA()
			// Rec. 601 luma on the 16-bit channel values.
			luma := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
			in.Data[row*f.Width+col] = luma / 65535.0
		}
	}
	return in
}
