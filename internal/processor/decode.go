package processor

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	exif "github.com/dsoprea/go-exif/v3"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"oniazusa/internal/raster"
	"oniazusa/pkg/imgutil"
)

// Decoder loads a source file into a raster image. Implementations must be
// safe for concurrent use.
type Decoder interface {
	Decode(path string) (*raster.Image, error)
}

// FileDecoder sniffs the file signature, decodes it with the registered
// image codecs and applies the EXIF orientation of JPEG and TIFF inputs.
type FileDecoder struct{}

func (FileDecoder) Decode(path string) (*raster.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer file.Close()

	kind, err := imgutil.SniffReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrDecode, err)
	}
	if kind == imgutil.KindUnknown {
		return nil, fmt.Errorf("%w: unrecognized image format", ErrDecode)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, kind, err)
	}

	if kind == imgutil.KindJPEG || kind == imgutil.KindTIFF {
		if o, err := readOrientation(file); err == nil {
			img = orient(img, o)
		}
	}

	out, err := raster.FromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return out, nil
}

// readOrientation returns the EXIF Orientation tag (1-8), or 1 when the
// file carries no EXIF block or no orientation.
func readOrientation(rs io.ReadSeeker) (int, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 1, err
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if errorsIsNoExif(err) {
			return 1, nil
		}
		return 1, err
	}

	for _, tag := range tags {
		if tag.TagName != "Orientation" || strings.Contains(tag.IfdPath, "Thumbnail") {
			continue
		}
		switch v := tag.Value.(type) {
		case []uint16:
			if len(v) > 0 {
				return int(v[0]), nil
			}
		case uint16:
			return int(v), nil
		}
	}
	return 1, nil
}

func errorsIsNoExif(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exif.ErrNoExif) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}

// orient undoes the camera rotation recorded in an EXIF orientation value.
func orient(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
