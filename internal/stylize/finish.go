package stylize

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/disintegration/imaging"

	"oniazusa/internal/raster"
	"oniazusa/internal/style"
)

// Finish applies the mood grade: desaturate, darken, tint the shadows,
// soften and vignette. A nil mood returns img unchanged.
func Finish(img *raster.Image, mood *style.Mood) (*raster.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if mood == nil {
		return img, nil
	}

	graded := adjust.Saturation(img.ToNRGBA(), mood.Saturation-1)
	graded = adjust.Apply(graded, func(c color.RGBA) color.RGBA {
		r := float64(c.R) * mood.Brightness
		g := float64(c.G) * mood.Brightness
		b := float64(c.B) * mood.Brightness
		if (r+g+b)/3 < mood.ShadowLevel*255 {
			r += mood.ShadowTint[0] * 255
			g += mood.ShadowTint[1] * 255
			b += mood.ShadowTint[2] * 255
		}
		return color.RGBA{R: clampByte(r), G: clampByte(g), B: clampByte(b), A: c.A}
	})
	var soft image.Image = graded
	if mood.BlurSigma > 0 {
		soft = imaging.Blur(graded, mood.BlurSigma)
	}

	out, err := raster.FromImage(soft)
	if err != nil {
		return nil, err
	}
	if mood.Vignette > 0 {
		vignette(out, mood.Vignette)
	}
	return out, nil
}

// vignette darkens img in place by 1 - strength*(d/dmax)^2, where d is the
// distance from the image center.
func vignette(img *raster.Image, strength float64) {
	cx, cy := float64(img.Width)/2, float64(img.Height)/2
	maxD2 := cx*cx + cy*cy
	for y := 0; y < img.Height; y++ {
		dy := float64(y) - cy
		for x := 0; x < img.Width; x++ {
			dx := float64(x) - cx
			f := float32(1 - strength*(dx*dx+dy*dy)/maxD2)
			i := img.Offset(x, y)
			img.Pix[i] *= f
			img.Pix[i+1] *= f
			img.Pix[i+2] *= f
		}
	}
}

func clampByte(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
