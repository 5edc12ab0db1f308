package stylize

import (
	"errors"
	"fmt"

	"oniazusa/internal/raster"
)

// ErrDimensionMismatch means two stage outputs disagree on size, which
// can only come from a wiring bug between stages.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// CompositeOptions controls how the layers are merged.
type CompositeOptions struct {
	Ink            [3]float32 // outline color
	InkStrength    float64    // how far a full-strength edge moves toward Ink
	GrainIntensity float64    // overlay blend weight of the texture
}

// Composite merges the graded color layer, the edge mask and the texture.
// Pixels are first pulled toward the ink color in proportion to edge
// strength, then overlay-blended with the texture.
func Composite(graded, mask, texture *raster.Image, opts CompositeOptions) (*raster.Image, error) {
	layers := []struct {
		name     string
		img      *raster.Image
		channels int
	}{
		{"color", graded, 3},
		{"edge mask", mask, 1},
		{"texture", texture, 1},
	}
	for _, layer := range layers {
		if err := layer.img.Validate(); err != nil {
			return nil, fmt.Errorf("%s layer: %w", layer.name, err)
		}
	}
	if !graded.SameSize(mask) || !graded.SameSize(texture) {
		return nil, fmt.Errorf("%w: color %dx%d, edge mask %dx%d, texture %dx%d", ErrDimensionMismatch,
			graded.Width, graded.Height, mask.Width, mask.Height, texture.Width, texture.Height)
	}
	for _, layer := range layers {
		if layer.img.Channels != layer.channels {
			return nil, fmt.Errorf("%s layer: %w: %d channels, want %d",
				layer.name, raster.ErrInvalidImage, layer.img.Channels, layer.channels)
		}
	}

	ink := float32(opts.InkStrength)
	grain := float32(opts.GrainIntensity)
	out := &raster.Image{Width: graded.Width, Height: graded.Height, Channels: 3, Pix: make([]float32, len(graded.Pix))}
	for p := 0; p < len(mask.Pix); p++ {
		m := mask.Pix[p] * ink
		t := texture.Pix[p]
		for c := 0; c < 3; c++ {
			i := p*3 + c
			v := graded.Pix[i]
			v += m * (opts.Ink[c] - v)
			if grain > 0 {
				v += grain * (overlay(v, t) - v)
			}
			out.Pix[i] = raster.Clamp01(v)
		}
	}
	return out, nil
}

// overlay is the standard overlay blend of top t over base b.
func overlay(b, t float32) float32 {
	if b < 0.5 {
		return 2 * b * t
	}
	return 1 - 2*(1-b)*(1-t)
}
