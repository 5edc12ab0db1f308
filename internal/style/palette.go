package style

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered, immutable set of quantization targets. Order
// only matters for tie-breaking in Nearest.
type Palette struct {
	colors []colorful.Color
	lab    [][3]float64
	rgb    [][3]float32
}

// NewPalette copies colors into a Palette. Colors are clamped to the sRGB
// gamut and rounded to 8 bits so snapped pixels survive PNG encoding
// unchanged.
func NewPalette(colors []colorful.Color) (*Palette, error) {
	if len(colors) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 colors, got %d", ErrPalette, len(colors))
	}
	p := &Palette{
		colors: make([]colorful.Color, len(colors)),
		lab:    make([][3]float64, len(colors)),
		rgb:    make([][3]float32, len(colors)),
	}
	for i, c := range colors {
		r, g, b := c.Clamped().RGB255()
		c = colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
		p.colors[i] = c
		l, a, bb := c.Lab()
		p.lab[i] = [3]float64{l, a, bb}
		p.rgb[i] = [3]float32{float32(r) / 255, float32(g) / 255, float32(b) / 255}
	}
	return p, nil
}

// ParsePalette builds a Palette from hex strings such as "#1B1F3A".
func ParsePalette(hexes []string) (*Palette, error) {
	colors := make([]colorful.Color, 0, len(hexes))
	for _, h := range hexes {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if !strings.HasPrefix(h, "#") {
			h = "#" + h
		}
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrPalette, h, err)
		}
		colors = append(colors, c)
	}
	return NewPalette(colors)
}

// Len returns the number of colors.
func (p *Palette) Len() int { return len(p.colors) }

// Colors returns a copy of the palette entries.
func (p *Palette) Colors() []colorful.Color {
	out := make([]colorful.Color, len(p.colors))
	copy(out, p.colors)
	return out
}

// RGB returns entry i as normalized float32 components.
func (p *Palette) RGB(i int) [3]float32 { return p.rgb[i] }

// Hex returns the entries as "#rrggbb" strings.
func (p *Palette) Hex() []string {
	out := make([]string, len(p.colors))
	for i, c := range p.colors {
		out[i] = c.Hex()
	}
	return out
}

// Nearest returns the index of the entry closest to (r, g, b) by
// Euclidean distance in CIE L*a*b*. The earliest entry wins ties.
func (p *Palette) Nearest(r, g, b float32) int {
	l, a, bb := colorful.Color{R: float64(r), G: float64(g), B: float64(b)}.Lab()
	best := 0
	bestD := -1.0
	for i, e := range p.lab {
		dl, da, db := l-e[0], a-e[1], bb-e[2]
		d := dl*dl + da*da + db*db
		if bestD < 0 || d < bestD {
			best = i
			bestD = d
		}
	}
	return best
}

// Darkest returns the index of the entry with the lowest relative
// luminance. Used as the ink color.
func (p *Palette) Darkest() int {
	best := 0
	bestY := luminance(p.colors[0])
	for i := 1; i < len(p.colors); i++ {
		if y := luminance(p.colors[i]); y < bestY {
			best, bestY = i, y
		}
	}
	return best
}

func luminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func (p *Palette) String() string {
	return strings.Join(p.Hex(), ",")
}
