package stylize

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"oniazusa/internal/raster"
	"oniazusa/internal/style"
)

func TestGradeFullStrengthSnapsToPalette(t *testing.T) {
	p := newProfile(t, func(c *style.Config) { c.QuantizationStrength = 1 })
	out, err := Grade(gradient(t, 24, 16), p)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}

	entries := make(map[[3]float32]bool, p.Palette.Len())
	for i := 0; i < p.Palette.Len(); i++ {
		entries[p.Palette.RGB(i)] = true
	}
	for i := 0; i < len(out.Pix); i += 3 {
		px := [3]float32{out.Pix[i], out.Pix[i+1], out.Pix[i+2]}
		if !entries[px] {
			t.Fatalf("pixel %d = %v is not a palette color", i/3, px)
		}
	}
}

func TestGradeZeroStrengthIsSmoothing(t *testing.T) {
	img := gradient(t, 20, 14)
	p := newProfile(t, func(c *style.Config) { c.QuantizationStrength = 0 })

	graded, err := Grade(img, p)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	smoothed, err := Smooth(img, p.DownsampleFactor)
	if err != nil {
		t.Fatalf("smooth: %v", err)
	}
	if diff := cmp.Diff(smoothed.Pix, graded.Pix); diff != "" {
		t.Errorf("strength 0 should equal the smoothed image")
	}
}

func TestGradeDoesNotModifyInput(t *testing.T) {
	img := gradient(t, 9, 9)
	before := img.Clone()
	if _, err := Grade(img, newProfile(t, nil)); err != nil {
		t.Fatalf("grade: %v", err)
	}
	if diff := cmp.Diff(before.Pix, img.Pix); diff != "" {
		t.Error("input image was modified")
	}
}

func TestSmoothKeepsFlatRegions(t *testing.T) {
	img := solid(t, 10, 6, 0.3, 0.5, 0.7)
	for _, factor := range []int{1, 2, 3} {
		out, err := Smooth(img, factor)
		if err != nil {
			t.Fatalf("factor %d: %v", factor, err)
		}
		if out.Width != img.Width || out.Height != img.Height {
			t.Fatalf("factor %d: size %dx%d", factor, out.Width, out.Height)
		}
		if diff := cmp.Diff(img.Pix, out.Pix, cmpopts.EquateApprox(0, 2.0/255)); diff != "" {
			t.Errorf("factor %d: flat image changed", factor)
		}
	}
}

func TestSmoothRejectsMask(t *testing.T) {
	mask, _ := raster.New(4, 4, 1)
	if _, err := Smooth(mask, 1); !errors.Is(err, raster.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestEdgesThresholdBounds(t *testing.T) {
	img := step(t, 16, 12)

	none, err := Edges(img, 1)
	if err != nil {
		t.Fatalf("edges: %v", err)
	}
	for i, v := range none.Pix {
		if v != 0 {
			t.Fatalf("threshold 1: sample %d = %v, want 0", i, v)
		}
	}

	full, err := Edges(img, 0)
	if err != nil {
		t.Fatalf("edges: %v", err)
	}
	if full.Channels != 1 || full.Width != 16 || full.Height != 12 {
		t.Fatalf("unexpected mask shape %dx%dx%d", full.Width, full.Height, full.Channels)
	}
	var peak float32
	for _, v := range full.Pix {
		if v < 0 || v > 1 {
			t.Fatalf("sample %v outside [0,1]", v)
		}
		peak = max(peak, v)
	}
	if peak < 0.5 {
		t.Errorf("step edge peak %v, expected a strong response", peak)
	}
	if v := full.Pix[6*16+1]; v != 0 {
		t.Errorf("flat region response %v, want 0", v)
	}
}

func TestEdgesThresholdSuppresses(t *testing.T) {
	img := step(t, 16, 12)
	const threshold = 0.3
	mask, err := Edges(img, threshold)
	if err != nil {
		t.Fatalf("edges: %v", err)
	}
	for i, v := range mask.Pix {
		if v != 0 && v < threshold {
			t.Fatalf("sample %d = %v survives below threshold", i, v)
		}
	}
}

func TestEdgesFlatImage(t *testing.T) {
	mask, err := Edges(solid(t, 8, 8, 0.4, 0.4, 0.4), 0)
	if err != nil {
		t.Fatalf("edges: %v", err)
	}
	for i, v := range mask.Pix {
		if math.Abs(float64(v)) > 1e-6 {
			t.Fatalf("sample %d = %v on flat image", i, v)
		}
	}
}

func TestTextureDeterministic(t *testing.T) {
	a, err := Texture(33, 21, 0.6, 7)
	if err != nil {
		t.Fatalf("texture: %v", err)
	}
	b, _ := Texture(33, 21, 0.6, 7)
	if diff := cmp.Diff(a.Pix, b.Pix); diff != "" {
		t.Error("same seed produced different textures")
	}

	c, _ := Texture(33, 21, 0.6, 8)
	if cmp.Equal(a.Pix, c.Pix) {
		t.Error("different seeds produced identical textures")
	}

	for i, v := range a.Pix {
		if v < 0 || v > 1 {
			t.Fatalf("sample %d = %v outside [0,1]", i, v)
		}
	}
}

func TestTextureZeroIntensityIsNeutral(t *testing.T) {
	tex, err := Texture(5, 4, 0, 42)
	if err != nil {
		t.Fatalf("texture: %v", err)
	}
	for i, v := range tex.Pix {
		if v != neutralGrain {
			t.Fatalf("sample %d = %v, want %v", i, v, neutralGrain)
		}
	}
}

func TestTextureRejectsEmpty(t *testing.T) {
	if _, err := Texture(0, 10, 0.5, 1); !errors.Is(err, raster.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestCompositeDimensionMismatch(t *testing.T) {
	graded := solid(t, 8, 8, 0.5, 0.5, 0.5)
	mask, _ := raster.New(8, 7, 1)
	tex, _ := raster.New(8, 8, 1)

	_, err := Composite(graded, mask, tex, CompositeOptions{InkStrength: 1})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCompositeNoEdgesNoGrain(t *testing.T) {
	graded := gradient(t, 6, 5)
	mask, _ := raster.New(6, 5, 1)
	tex, _ := Texture(6, 5, 0.8, 3)

	out, err := Composite(graded, mask, tex, CompositeOptions{InkStrength: 1, GrainIntensity: 0})
	if err != nil {
		t.Fatalf("composite: %v", err)
	}
	if diff := cmp.Diff(graded.Pix, out.Pix); diff != "" {
		t.Errorf("zero mask and zero grain should be identity")
	}
}

func TestCompositeFullEdgeIsInk(t *testing.T) {
	graded := gradient(t, 4, 4)
	mask, _ := raster.New(4, 4, 1)
	for i := range mask.Pix {
		mask.Pix[i] = 1
	}
	tex, _ := Texture(4, 4, 0, 1)
	ink := [3]float32{0.1, 0.05, 0.2}

	out, err := Composite(graded, mask, tex, CompositeOptions{Ink: ink, InkStrength: 1})
	if err != nil {
		t.Fatalf("composite: %v", err)
	}
	for i := 0; i < len(out.Pix); i += 3 {
		got := []float32{out.Pix[i], out.Pix[i+1], out.Pix[i+2]}
		if diff := cmp.Diff(ink[:], got, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
			t.Fatalf("pixel %d not inked: %v", i/3, got)
		}
	}
}

func TestFinishNilMoodPassthrough(t *testing.T) {
	img := gradient(t, 5, 5)
	out, err := Finish(img, nil)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if out != img {
		t.Error("nil mood should return the input")
	}
}

func TestFinishDarkensAndVignettes(t *testing.T) {
	img := solid(t, 21, 21, 0.8, 0.8, 0.8)
	mood := style.DefaultMood()
	out, err := Finish(img, &mood)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	center, _, _ := out.RGB(10, 10)
	corner, _, _ := out.RGB(0, 0)
	if center >= 0.8 {
		t.Errorf("center %v not darkened", center)
	}
	if corner >= center {
		t.Errorf("corner %v should be darker than center %v", corner, center)
	}
}

func TestFinishBlurIsSymmetric(t *testing.T) {
	img := solid(t, 9, 9, 0, 0, 0)
	i := img.Offset(4, 4)
	img.Pix[i], img.Pix[i+1], img.Pix[i+2] = 1, 1, 1

	out, err := Finish(img, &style.Mood{Saturation: 1, Brightness: 1, BlurSigma: 0.8})
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	center, _, _ := out.RGB(4, 4)
	left, _, _ := out.RGB(3, 4)
	right, _, _ := out.RGB(5, 4)
	up, _, _ := out.RGB(4, 3)
	down, _, _ := out.RGB(4, 5)
	if center >= 1 || left <= 0 {
		t.Fatalf("dot not spread: center %v, left %v", center, left)
	}
	if left != right || up != down || left != up {
		t.Errorf("blur is lopsided: left %v right %v up %v down %v", left, right, up, down)
	}
	ul, _, _ := out.RGB(3, 3)
	dr, _, _ := out.RGB(5, 5)
	if ul != dr {
		t.Errorf("diagonal neighbors differ: %v vs %v", ul, dr)
	}
}

func newProfile(t *testing.T, mutate func(*style.Config)) *style.Profile {
	t.Helper()
	cfg := style.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := style.NewProfile(cfg)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	return p
}

func gradient(t *testing.T, w, h int) *raster.Image {
	t.Helper()
	img, err := raster.New(w, h, 3)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.Offset(x, y)
			img.Pix[i] = float32(x) / float32(max(1, w-1))
			img.Pix[i+1] = float32(y) / float32(max(1, h-1))
			img.Pix[i+2] = float32((x+y)%5) / 4
		}
	}
	return img
}

func solid(t *testing.T, w, h int, r, g, b float32) *raster.Image {
	t.Helper()
	img, err := raster.New(w, h, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, b
	}
	return img
}

// step is black on the left half and white on the right.
func step(t *testing.T, w, h int) *raster.Image {
	t.Helper()
	img, err := raster.New(w, h, 3)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			i := img.Offset(x, y)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2] = 1, 1, 1
		}
	}
	return img
}
