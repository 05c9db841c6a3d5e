// Package hdrerr holds the error kinds shared by the codec, filters and compositor.
//
// Call sites wrap these with github.com/pkg/errors to add the file and format
// involved; callers match them with errors.Is.
package hdrerr

import "github.com/pkg/errors"

var (
	ErrFormat           = errors.New("format error")       // malformed or unsupported container contents
	ErrShapeMismatch    = errors.New("shape mismatch")     // combined images differ in size
	ErrTileSizeMismatch = errors.New("tile size mismatch") // tile disagrees with the grid's cell size
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Formatf wraps ErrFormat with a message.
func Formatf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrFormat, format, args...)
}

// Invalidf wraps ErrInvalidParameter with a message.
func Invalidf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidParameter, format, args...)
}
