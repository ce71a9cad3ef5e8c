package card

import (
	"errors"
	"fmt"
)

var (
	ErrImageNotFound    = errors.New("image not found")
	ErrImageDecode      = errors.New("image decode failed")
	ErrEmptyBitmap      = errors.New("empty bitmap")
	ErrTextTooLong      = errors.New("text too long")
	ErrUnsupportedMode  = errors.New("unsupported mode")
	ErrInvalidRotation  = errors.New("text rotation must be 0 or 180")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrLayoutOverlap    = errors.New("layout overlap")
)

// Warning is a non-fatal configuration conflict. Generation continues with
// the offending field ignored.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}
