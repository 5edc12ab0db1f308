package stylize

import (
	"fmt"
	"math"

	"github.com/disintegration/imaging"

	"oniazusa/internal/raster"
)

const (
	bilateralRadius     = 2
	bilateralSigmaSpace = 2.0
	bilateralSigmaColor = 0.12
)

// Smooth runs the edge-preserving pre-pass that makes quantization
// produce flat regions instead of speckle. With factor > 1 the filter runs
// on a box-downsampled copy that is scaled back up.
func Smooth(img *raster.Image, factor int) (*raster.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if img.Channels != 3 {
		return nil, fmt.Errorf("%w: smoothing needs 3 channels, got %d", raster.ErrInvalidImage, img.Channels)
	}
	if factor <= 1 {
		return bilateral(img), nil
	}

	sw := max(1, img.Width/factor)
	sh := max(1, img.Height/factor)
	small, err := raster.FromImage(imaging.Resize(img.ToNRGBA(), sw, sh, imaging.Box))
	if err != nil {
		return nil, err
	}
	filtered := bilateral(small)
	return raster.FromImage(imaging.Resize(filtered.ToNRGBA(), img.Width, img.Height, imaging.Linear))
}

// bilateral applies a 5x5 bilateral filter to a 3-channel image. Border
// pixels use replicated edge values.
func bilateral(img *raster.Image) *raster.Image {
	const size = 2*bilateralRadius + 1
	var spatial [size * size]float64
	for ky := -bilateralRadius; ky <= bilateralRadius; ky++ {
		for kx := -bilateralRadius; kx <= bilateralRadius; kx++ {
			d2 := float64(kx*kx + ky*ky)
			spatial[(ky+bilateralRadius)*size+kx+bilateralRadius] = math.Exp(-d2 / (2 * bilateralSigmaSpace * bilateralSigmaSpace))
		}
	}
	colorDenom := 2 * bilateralSigmaColor * bilateralSigmaColor

	w, h := img.Width, img.Height
	out := &raster.Image{Width: w, Height: h, Channels: 3, Pix: make([]float32, len(img.Pix))}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cr, cg, cb := img.RGB(x, y)
			var sr, sg, sb, sw float64
			for ky := -bilateralRadius; ky <= bilateralRadius; ky++ {
				py := min(max(y+ky, 0), h-1)
				for kx := -bilateralRadius; kx <= bilateralRadius; kx++ {
					px := min(max(x+kx, 0), w-1)
					r, g, b := img.RGB(px, py)
					dr, dg, db := float64(r-cr), float64(g-cg), float64(b-cb)
					wgt := spatial[(ky+bilateralRadius)*size+kx+bilateralRadius] *
						math.Exp(-(dr*dr+dg*dg+db*db)/colorDenom)
					sr += wgt * float64(r)
					sg += wgt * float64(g)
					sb += wgt * float64(b)
					sw += wgt
				}
			}
			o := out.Offset(x, y)
			out.Pix[o] = float32(sr / sw)
			out.Pix[o+1] = float32(sg / sw)
			out.Pix[o+2] = float32(sb / sw)
		}
	}
	return out
}
