package processor

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"oniazusa/internal/raster"
)

// Writer persists a rendered image. Implementations must be safe for
// concurrent use on distinct paths.
type Writer interface {
	Write(path string, img *raster.Image, text []TextEntry) error
}

// PNGWriter encodes PNG files, annotates them with tEXt provenance and
// replaces the destination atomically through a temp file in the same
// directory.
type PNGWriter struct{}

func (PNGWriter) Write(path string, img *raster.Image, text []TextEntry) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img.ToNRGBA()); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	destDir := filepath.Dir(path)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	tmpFile, err := os.CreateTemp(destDir, "oniazusa-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	defer os.Remove(tmpFile.Name())

	if err := annotatePNG(&buf, tmpFile, text); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	if err := replaceFile(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}
