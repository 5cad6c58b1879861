package fontresolve

import "errors"

// Sentinel errors for font resolution.
var (
	// ErrFontNotFound indicates no installed font matched the required families.
	ErrFontNotFound = errors.New("font not found")

	// ErrFontList indicates the host font-listing facility could not be queried.
	ErrFontList = errors.New("font listing failed")

	// ErrFontParse indicates a font file could not be read or parsed.
	ErrFontParse = errors.New("font parse failed")
)
