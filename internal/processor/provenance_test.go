package processor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"oniazusa/internal/raster"
)

func TestAnnotatePNGReplacesKeys(t *testing.T) {
	src := buildPNGWithText(t, map[string]string{
		"Software":         "some editor",
		"Comment":          "keep me",
		"oniazusa.profile": "stale",
	})

	var out bytes.Buffer
	entries := []TextEntry{
		{Key: TextSoftware, Value: "oniazusa"},
		{Key: TextProfile, Value: "abc123"},
	}
	if err := annotatePNG(bytes.NewReader(src), &out, entries); err != nil {
		t.Fatalf("annotate: %v", err)
	}

	got, err := readPNGText(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("read text: %v", err)
	}
	want := map[string]string{
		"Software":         "oniazusa",
		"Comment":          "keep me",
		"oniazusa.profile": "abc123",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("text chunks mismatch (-want +got):\n%s", diff)
	}

	if _, err := png.Decode(bytes.NewReader(out.Bytes())); err != nil {
		t.Fatalf("annotated PNG no longer decodes: %v", err)
	}
}

func TestAnnotatePNGRejectsNonPNG(t *testing.T) {
	var out bytes.Buffer
	if err := annotatePNG(bytes.NewReader([]byte("GIF89a not a png")), &out, nil); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestPNGWriterAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "nested", "out.png")

	img, err := raster.New(3, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := range img.Pix {
		img.Pix[i] = 0.5
	}

	w := PNGWriter{}
	if err := w.Write(dest, img, []TextEntry{{Key: TextProfile, Value: "first"}}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := w.Write(dest, img, []TextEntry{{Key: TextProfile, Value: "second"}}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	text, err := readPNGTextFile(dest)
	if err != nil {
		t.Fatalf("read text: %v", err)
	}
	if text[TextProfile] != "second" {
		t.Errorf("profile = %q, want second", text[TextProfile])
	}

	entries, err := os.ReadDir(filepath.Dir(dest))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only the output file, found %v", names)
	}
}

func buildPNGWithText(t *testing.T, text map[string]string) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 0xff, A: 0xff})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	if len(data) < 12 || string(data[len(data)-8:len(data)-4]) != "IEND" {
		t.Fatal("unexpected PNG trailer")
	}

	insertAt := len(data) - 12
	out := append([]byte{}, data[:insertAt]...)
	for k, v := range text {
		out = append(out, buildPNGChunk("tEXt", []byte(k+"\x00"+v))...)
	}
	out = append(out, buildPNGChunk("tIME", []byte{0x07, 0xE8, 0x01, 0x02, 0x03, 0x04, 0x05})...)
	out = append(out, data[insertAt:]...)
	return out
}
