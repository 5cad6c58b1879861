package raster

import "errors"

// Sentinel errors for template rendering.
var (
	// ErrUnknownTemplate indicates the template identifier is not registered.
	ErrUnknownTemplate = errors.New("unknown template")

	// ErrUnknownColorScheme indicates the color scheme identifier is not registered.
	ErrUnknownColorScheme = errors.New("unknown color scheme")

	// ErrEmptyTitle indicates the title is empty or whitespace only.
	ErrEmptyTitle = errors.New("title is empty")

	// ErrRender indicates the drawing backend failed.
	ErrRender = errors.New("render failed")
)
