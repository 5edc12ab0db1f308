package stylize

import (
	"oniazusa/internal/raster"
	"oniazusa/internal/style"
)

// Grade smooths img and pulls every pixel toward its nearest palette
// entry. The profile's quantization strength interpolates linearly between
// the smoothed color (0) and the snapped palette color (1).
func Grade(img *raster.Image, p *style.Profile) (*raster.Image, error) {
	smoothed, err := Smooth(img, p.DownsampleFactor)
	if err != nil {
		return nil, err
	}
	s := float32(p.QuantizationStrength)
	if s == 0 {
		return smoothed, nil
	}
	return quantize(smoothed, p.Palette, s), nil
}

// quantize maps src onto pal with strength s in (0,1]. Nearest-color
// lookups are memoized per 8-bit color, which is the precision the
// result is stored at anyway.
func quantize(src *raster.Image, pal *style.Palette, s float32) *raster.Image {
	out := &raster.Image{Width: src.Width, Height: src.Height, Channels: 3, Pix: make([]float32, len(src.Pix))}
	memo := make(map[uint32]int)
	for i := 0; i < len(src.Pix); i += 3 {
		r, g, b := src.Pix[i], src.Pix[i+1], src.Pix[i+2]
		key := uint32(raster.To8(r))<<16 | uint32(raster.To8(g))<<8 | uint32(raster.To8(b))
		idx, ok := memo[key]
		if !ok {
			idx = pal.Nearest(float32(key>>16)/255, float32(key>>8&0xff)/255, float32(key&0xff)/255)
			memo[key] = idx
		}
		t := pal.RGB(idx)
		if s == 1 {
			out.Pix[i], out.Pix[i+1], out.Pix[i+2] = t[0], t[1], t[2]
			continue
		}
		out.Pix[i] = r + s*(t[0]-r)
		out.Pix[i+1] = g + s*(t[1]-g)
		out.Pix[i+2] = b + s*(t[2]-b)
	}
	return out
}
