package style

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// ExtractMethod selects how ExtractPalette finds candidate colors.
type ExtractMethod int

const (
	ExtractDominant ExtractMethod = iota
	ExtractKMeans
)

func (m ExtractMethod) String() string {
	switch m {
	case ExtractKMeans:
		return "kmeans"
	default:
		return "dominant"
	}
}

// ParseExtractMethod maps "dominant" or "kmeans" onto an ExtractMethod.
func ParseExtractMethod(s string) (ExtractMethod, error) {
	switch s {
	case "", "dominant":
		return ExtractDominant, nil
	case "kmeans":
		return ExtractKMeans, nil
	default:
		return ExtractDominant, fmt.Errorf("unknown extraction method %q (want dominant or kmeans)", s)
	}
}

type weightedColor struct {
	col    colorful.Color
	weight float64
}

// ExtractPalette derives a k-color palette from a reference image and
// orders it dark to light. The dominant method is deterministic; kmeans
// uses random initial centroids.
func ExtractPalette(img image.Image, k int, method ExtractMethod) (*Palette, error) {
	if k < 2 {
		return nil, fmt.Errorf("%w: need at least 2 colors, got %d", ErrPalette, k)
	}
	var cands []weightedColor
	switch method {
	case ExtractKMeans:
		cands = kmeansCandidates(img, k)
		if len(cands) == 0 {
			cands = dominantCandidates(img, k)
		}
	default:
		cands = dominantCandidates(img, k)
	}
	colors := selectDiverse(cands, k)
	slices.SortStableFunc(colors, func(a, b colorful.Color) int {
		ya, yb := luminance(a), luminance(b)
		switch {
		case ya < yb:
			return -1
		case ya > yb:
			return 1
		}
		return 0
	})
	return NewPalette(colors)
}

func dominantCandidates(img image.Image, k int) []weightedColor {
	found := dominantcolor.FindWeight(img, max(24, k*8))
	out := make([]weightedColor, 0, len(found))
	for _, c := range found {
		col, _ := colorful.MakeColor(c.RGBA)
		out = append(out, weightedColor{col: col.Clamped(), weight: max(c.Weight, 1e-6)})
	}
	return out
}

func kmeansCandidates(img image.Image, k int) []weightedColor {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	const maxSamples = 12000
	step := 1
	if w*h > maxSamples {
		step = int(math.Sqrt(float64(w*h)/maxSamples)) + 1
	}
	var data clusters.Observations
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			data = append(data, clusters.Coordinates{
				float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255,
			})
		}
	}
	if len(data) == 0 {
		return nil
	}

	cc, err := kmeans.New().Partition(data, min(k*3, len(data)))
	if err != nil {
		return nil
	}
	out := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		out = append(out, weightedColor{col: col, weight: float64(len(c.Observations))})
	}
	return out
}

// selectDiverse greedily picks up to k colors, starting from the heaviest
// and then favouring candidates far (in Lab) from those already chosen.
func selectDiverse(cands []weightedColor, k int) []colorful.Color {
	if len(cands) == 0 {
		return nil
	}
	maxW := 0.0
	for _, c := range cands {
		maxW = max(maxW, c.weight)
	}

	chosen := []int{0}
	for i, c := range cands {
		if c.weight > cands[chosen[0]].weight {
			chosen[0] = i
		}
	}
	used := make([]bool, len(cands))
	used[chosen[0]] = true

	for len(chosen) < min(k, len(cands)) {
		bestIdx, bestScore := -1, -1.0
		for i, c := range cands {
			if used[i] {
				continue
			}
			minD := math.MaxFloat64
			for _, s := range chosen {
				minD = min(minD, c.col.DistanceLab(cands[s].col))
			}
			score := minD * (0.55 + 0.45*math.Sqrt(c.weight/maxW))
			if score > bestScore {
				bestIdx, bestScore = i, score
			}
		}
		used[bestIdx] = true
		chosen = append(chosen, bestIdx)
	}

	out := make([]colorful.Color, len(chosen))
	for i, idx := range chosen {
		out[i] = cands[idx].col
	}
	return out
}
