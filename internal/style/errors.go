package style

import "errors"

// Configuration errors. Both abort a run before any image is processed.
var (
	ErrPalette        = errors.New("invalid palette")
	ErrInvalidProfile = errors.New("invalid style profile")
)
