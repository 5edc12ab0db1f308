package processor

import (
	"context"
	"errors"

	"oniazusa/internal/raster"
	"oniazusa/internal/style"
	"oniazusa/internal/stylize"
)

// Per-item failure causes.
var (
	ErrDecode   = errors.New("decode failed")
	ErrEncode   = errors.New("encode failed")
	ErrWrite    = errors.New("write failed")
	ErrTimeout  = errors.New("item timed out")
	ErrCanceled = errors.New("batch canceled before item started")
)

// ErrorKind classifies a failed Result for reporting.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindInvalidImage
	KindDecode
	KindEncode
	KindWrite
	KindDimensionMismatch
	KindTimeout
	KindPalette
	KindCanceled
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidImage:
		return "InvalidImageError"
	case KindDecode:
		return "DecodeError"
	case KindEncode:
		return "EncodeError"
	case KindWrite:
		return "WriteError"
	case KindDimensionMismatch:
		return "DimensionMismatchError"
	case KindTimeout:
		return "TimeoutError"
	case KindPalette:
		return "PaletteError"
	case KindCanceled:
		return "Canceled"
	default:
		return "UnknownError"
	}
}

// Classify maps an error from any layer onto an ErrorKind.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrCanceled), errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, ErrDecode):
		return KindDecode
	case errors.Is(err, ErrEncode):
		return KindEncode
	case errors.Is(err, ErrWrite):
		return KindWrite
	case errors.Is(err, stylize.ErrDimensionMismatch):
		return KindDimensionMismatch
	case errors.Is(err, raster.ErrInvalidImage):
		return KindInvalidImage
	case errors.Is(err, style.ErrPalette), errors.Is(err, style.ErrInvalidProfile):
		return KindPalette
	default:
		return KindUnknown
	}
}
