package stylize

import (
	"math"

	"oniazusa/internal/raster"
)

// Sobel magnitudes on [0,1] luminance top out near 4*sqrt(2); a clean
// black/white step reaches about 4. Dividing by 4 puts hard edges at 1.
const sobelScale = 4.0

var (
	sobelX = [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
	gaussian5 = [5][5]float64{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}
)

const gaussian5Sum = 273.0

// Edges computes a single-channel edge-strength mask for img.
//
// The image is reduced to BT.601 luminance, blurred with a 5x5 Gaussian
// (sigma ~1.4) and differentiated with Sobel kernels. Magnitudes below
// threshold become 0; the rest keep their value. A threshold of 1 disables
// edges entirely, and 0 keeps the full gradient magnitude.
func Edges(img *raster.Image, threshold float64) (*raster.Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	w, h := img.Width, img.Height
	mask, err := raster.New(w, h, 1)
	if err != nil {
		return nil, err
	}
	if threshold >= 1 {
		return mask, nil
	}

	gray, _ := raster.New(w, h, 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := img.RGB(x, y)
			gray.Pix[y*w+x] = 0.299*r + 0.587*g + 0.114*b
		}
	}

	blurred, _ := raster.New(w, h, 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					sum += float64(gray.At(x+kx, y+ky)) * gaussian5[ky+2][kx+2]
				}
			}
			blurred.Pix[y*w+x] = float32(sum / gaussian5Sum)
		}
	}

	t := float32(threshold)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := float64(blurred.At(x+kx, y+ky))
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			m := raster.Clamp01(float32(math.Sqrt(gx*gx+gy*gy) / sobelScale))
			if m < t {
				m = 0
			}
			mask.Pix[y*w+x] = m
		}
	}
	return mask, nil
}
