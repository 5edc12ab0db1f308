package style

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Mood is the optional atmospheric finishing grade: a muted, darkened
// look with cool shadows, a soft blur and a vignette.
type Mood struct {
	Saturation  float64    // saturation multiplier
	Brightness  float64    // brightness multiplier
	ShadowLevel float64    // mean channel value below which the tint applies
	ShadowTint  [3]float64 // additive RGB tint for shadows
	BlurSigma   float64    // Gaussian sigma in pixels; 0 disables
	Vignette    float64    // corner darkening; 0 disables
}

// DefaultMood returns the finishing grade used by the kizuato look.
func DefaultMood() Mood {
	return Mood{
		Saturation:  0.35,
		Brightness:  0.65,
		ShadowLevel: 100.0 / 255,
		ShadowTint:  [3]float64{15.0 / 255, 5.0 / 255, 30.0 / 255},
		BlurSigma:   0.8,
		Vignette:    0.3,
	}
}

// Profile is a validated, immutable set of stylization parameters. A
// single Profile is shared read-only by every pipeline in a batch.
type Profile struct {
	Palette              *Palette
	QuantizationStrength float64
	EdgeThreshold        float64
	GrainIntensity       float64
	InkStrength          float64
	DownsampleFactor     int
	Seed                 int64
	Mood                 *Mood // nil disables the finishing grade
}

// NewProfile validates cfg and resolves its palette.
func NewProfile(cfg Config) (*Profile, error) {
	var (
		pal *Palette
		err error
	)
	if len(cfg.PaletteColors) > 0 {
		pal, err = ParsePalette(cfg.PaletteColors)
	} else {
		pal, err = ResolvePalette(cfg.Palette)
	}
	if err != nil {
		return nil, err
	}
	return NewProfileWithPalette(cfg, pal)
}

// NewProfileWithPalette validates cfg but takes the palette as given,
// ignoring cfg.Palette and cfg.PaletteColors.
func NewProfileWithPalette(cfg Config, pal *Palette) (*Profile, error) {
	if pal == nil || pal.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 colors", ErrPalette)
	}
	unit := []struct {
		name string
		v    float64
	}{
		{"quantization_strength", cfg.QuantizationStrength},
		{"edge_threshold", cfg.EdgeThreshold},
		{"grain_intensity", cfg.GrainIntensity},
		{"ink_strength", cfg.InkStrength},
	}
	for _, u := range unit {
		if math.IsNaN(u.v) || u.v < 0 || u.v > 1 {
			return nil, fmt.Errorf("%w: %s must be in [0,1], got %v", ErrInvalidProfile, u.name, u.v)
		}
	}
	if cfg.DownsampleFactor < 1 {
		return nil, fmt.Errorf("%w: downsample_factor must be >= 1, got %d", ErrInvalidProfile, cfg.DownsampleFactor)
	}

	p := &Profile{
		Palette:              pal,
		QuantizationStrength: cfg.QuantizationStrength,
		EdgeThreshold:        cfg.EdgeThreshold,
		GrainIntensity:       cfg.GrainIntensity,
		InkStrength:          cfg.InkStrength,
		DownsampleFactor:     cfg.DownsampleFactor,
		Seed:                 cfg.Seed,
	}
	if cfg.Mood {
		m := DefaultMood()
		p.Mood = &m
	}
	return p, nil
}

// Fingerprint is a stable digest of every parameter that affects output
// pixels. Two profiles with equal fingerprints render identical images.
func (p *Profile) Fingerprint() string {
	var b strings.Builder
	b.WriteString(p.Palette.String())
	for _, f := range []float64{p.QuantizationStrength, p.EdgeThreshold, p.GrainIntensity, p.InkStrength} {
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	fmt.Fprintf(&b, "|%d|%d", p.DownsampleFactor, p.Seed)
	if p.Mood != nil {
		fmt.Fprintf(&b, "|mood:%v", *p.Mood)
	}
	return strconv.FormatUint(xxhash.Sum64String(b.String()), 16)
}

func (p *Profile) String() string {
	return fmt.Sprintf("palette=%d colors quant=%.2f edge=%.2f grain=%.2f ink=%.2f downsample=%d seed=%d mood=%t",
		p.Palette.Len(), p.QuantizationStrength, p.EdgeThreshold, p.GrainIntensity,
		p.InkStrength, p.DownsampleFactor, p.Seed, p.Mood != nil)
}
