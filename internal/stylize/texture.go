package stylize

import (
	"math/rand/v2"

	"oniazusa/internal/raster"
)

const (
	// neutralGrain composites as a no-op under the overlay blend.
	neutralGrain = 0.5

	fiberCell   = 16  // paper fiber grid spacing in pixels
	grainWeight = 0.7 // share of per-pixel grain in the final noise
	fiberWeight = 0.3 // share of low-frequency paper variation
)

// Texture synthesizes a single-channel paper/grain layer of the given size.
// Samples are centered on 0.5; intensity scales their spread. The result
// depends only on (width, height, intensity, seed).
func Texture(width, height int, intensity float64, seed int64) (*raster.Image, error) {
	tex, err := raster.New(width, height, 1)
	if err != nil {
		return nil, err
	}
	if intensity <= 0 {
		for i := range tex.Pix {
			tex.Pix[i] = neutralGrain
		}
		return tex, nil
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(width)<<32|uint64(uint32(height))))

	gw := width/fiberCell + 2
	gh := height/fiberCell + 2
	nodes := make([]float64, gw*gh)
	for i := range nodes {
		nodes[i] = rng.Float64()*2 - 1
	}

	amp := 0.5 * intensity
	for y := 0; y < height; y++ {
		fy := float64(y) / fiberCell
		y0 := int(fy)
		ty := smoothstep(fy - float64(y0))
		for x := 0; x < width; x++ {
			fx := float64(x) / fiberCell
			x0 := int(fx)
			tx := smoothstep(fx - float64(x0))

			top := lerp(nodes[y0*gw+x0], nodes[y0*gw+x0+1], tx)
			bottom := lerp(nodes[(y0+1)*gw+x0], nodes[(y0+1)*gw+x0+1], tx)
			fiber := lerp(top, bottom, ty)
			grain := rng.Float64()*2 - 1

			n := grainWeight*grain + fiberWeight*fiber
			tex.Pix[y*width+x] = raster.Clamp01(float32(neutralGrain + amp*n))
		}
	}
	return tex, nil
}

func smoothstep(t float64) float64 { return t * t * (3 - 2*t) }

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
