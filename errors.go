package hdrhistogram

import (
	"errors"
	"fmt"
)

// Error kinds surfaced at the encoder/decoder and log boundary. The core
// recording path never returns these: record() reports out-of-range values
// with a boolean, not an error.
var (
	ErrInvalidArgument           = errors.New("hdrhistogram: invalid argument")
	ErrCompressionCookieMismatch = errors.New("hdrhistogram: compression cookie mismatch")
	ErrEncodingCookieMismatch    = errors.New("hdrhistogram: encoding cookie mismatch")
	ErrDeflateInitFailed         = errors.New("hdrhistogram: deflate init failed")
	ErrDeflateFailed             = errors.New("hdrhistogram: deflate failed")
	ErrInflateFailed             = errors.New("hdrhistogram: inflate failed")
	ErrLogInvalidVersion         = errors.New("hdrhistogram: log header missing or unsupported version")
	ErrIncompatibleGeometry      = errors.New("hdrhistogram: histograms have incompatible geometry")
)

// wrap attaches context to a sentinel error without losing errors.Is/As
// matchability.
func wrap(sentinel error, context string) error {
	if context == "" {
		return sentinel
	}
	return fmt.Errorf("%s: %w", context, sentinel)
}
