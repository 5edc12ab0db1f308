package imgutil

import (
	"bytes"
	"testing"
)

func TestDetectHeader(t *testing.T) {
	cases := []struct {
		name   string
		header []byte
		want   Kind
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F', 0, 1}, KindJPEG},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d}, KindPNG},
		{"tiff-le", []byte{'I', 'I', 0x2a, 0, 8, 0, 0, 0, 0, 0, 0, 0}, KindTIFF},
		{"tiff-be", []byte{'M', 'M', 0, 0x2a, 0, 0, 0, 8, 0, 0, 0, 0}, KindTIFF},
		{"gif", []byte("GIF89a\x01\x00\x01\x00\x00\x00"), KindGIF},
		{"bmp", []byte("BM\x00\x00\x00\x00\x00\x00\x00\x00\x36\x00"), KindBMP},
		{"webp", []byte("RIFF\x10\x00\x00\x00WEBP"), KindWebP},
		{"riff-wav", []byte("RIFF\x10\x00\x00\x00WAVE"), KindUnknown},
		{"text", []byte("hello, world"), KindUnknown},
	}
	for _, tc := range cases {
		got, err := DetectHeader(tc.header)
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}

	if _, err := DetectHeader([]byte{0xff, 0xd8}); err == nil {
		t.Error("expected error for short header")
	}
}

func TestSniffReaderShortInput(t *testing.T) {
	kind, err := SniffReader(bytes.NewReader([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0}))
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if kind != KindPNG {
		t.Errorf("got %s, want png", kind)
	}

	if _, err := SniffReader(bytes.NewReader(nil)); err == nil {
		t.Error("expected error for empty input")
	}
}
