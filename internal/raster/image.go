// Package raster holds the in-memory image buffer shared by every
// stylization stage.
//
// Samples are float32 values normalized to [0,1], interleaved per pixel.
// An Image is owned by whichever stage currently holds it; stages never
// write into an input image and always allocate their output.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"
)

// ErrInvalidImage reports a zero-area or malformed buffer.
var ErrInvalidImage = errors.New("invalid image")

type Image struct {
	Width    int
	Height   int
	Channels int       // 1 (mask, texture) or 3 (RGB)
	Pix      []float32 // len = Width*Height*Channels
}

// New allocates a zeroed image.
func New(width, height, channels int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d has zero area", ErrInvalidImage, width, height)
	}
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrInvalidImage, channels)
	}
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]float32, width*height*channels),
	}, nil
}

// Validate checks the buffer invariant.
func (m *Image) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: %dx%d has zero area", ErrInvalidImage, m.Width, m.Height)
	}
	if want := m.Width * m.Height * m.Channels; len(m.Pix) != want {
		return fmt.Errorf("%w: buffer holds %d samples, want %d", ErrInvalidImage, len(m.Pix), want)
	}
	return nil
}

// SameSize reports whether both images have the same width and height.
func (m *Image) SameSize(o *Image) bool {
	return m.Width == o.Width && m.Height == o.Height
}

// Offset returns the index of the first sample of pixel (x, y).
func (m *Image) Offset(x, y int) int {
	return (y*m.Width + x) * m.Channels
}

// RGB returns the color of pixel (x, y). Single-channel images repeat the
// sample across all three components.
func (m *Image) RGB(x, y int) (r, g, b float32) {
	i := m.Offset(x, y)
	if m.Channels == 1 {
		return m.Pix[i], m.Pix[i], m.Pix[i]
	}
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// At returns the first sample of pixel (x, y) with coordinates clamped to
// the image. Convolution kernels use it for replicated borders.
func (m *Image) At(x, y int) float32 {
	return m.Pix[m.Offset(clampInt(x, 0, m.Width-1), clampInt(y, 0, m.Height-1))]
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	out := *m
	out.Pix = make([]float32, len(m.Pix))
	copy(out.Pix, m.Pix)
	return &out
}

// FromImage converts any image.Image to a 3-channel raster. Alpha is
// discarded after compositing over black, which matches how the
// decoders in this repo deliver opaque photographs.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	out, err := New(b.Dx(), b.Dy(), 3)
	if err != nil {
		return nil, err
	}

	nrgba, ok := src.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)
	}

	i := 0
	for y := 0; y < out.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < out.Width; x++ {
			p := row[x*4 : x*4+4]
			a := float32(p[3]) / 255
			out.Pix[i] = float32(p[0]) / 255 * a
			out.Pix[i+1] = float32(p[1]) / 255 * a
			out.Pix[i+2] = float32(p[2]) / 255 * a
			i += 3
		}
	}
	return out, nil
}

// ToNRGBA quantizes the buffer to 8 bits per channel with round-half-up.
func (m *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			r, g, b := m.RGB(x, y)
			o := out.PixOffset(x, y)
			out.Pix[o] = To8(r)
			out.Pix[o+1] = To8(g)
			out.Pix[o+2] = To8(b)
			out.Pix[o+3] = 0xff
		}
	}
	return out
}

// To8 maps a [0,1] sample to a byte, clamping out-of-range values.
func To8(v float32) uint8 {
	return uint8(math.Floor(float64(Clamp01(v))*255 + 0.5))
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
