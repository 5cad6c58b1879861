package main

import (
	"errors"
	"os"

	cover "github.com/alnah/go-cover"
	"github.com/alnah/go-cover/internal/assets"
	"github.com/alnah/go-cover/internal/config"
	"github.com/alnah/go-cover/internal/dateutil"
)

// Exit codes for the cover CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Cover written
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, write failure
	ExitBrowser = 4 // Browser/Chrome errors, render timeout
	ExitFont    = 5 // No CJK-capable font
	ExitSize    = 6 // Size ceiling not met
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, cover.ErrFontNotFound) {
		return ExitFont
	}

	if errors.Is(err, cover.ErrSizeCompliance) {
		return ExitSize
	}

	// Browser errors (exit 4)
	if errors.Is(err, cover.ErrBrowserConnect) ||
		errors.Is(err, cover.ErrPageCreate) ||
		errors.Is(err, cover.ErrPageLoad) ||
		errors.Is(err, cover.ErrScreenshot) ||
		errors.Is(err, cover.ErrRenderTimeout) {
		return ExitBrowser
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, cover.ErrEmptyTitle) ||
		errors.Is(err, cover.ErrUnknownTemplate) ||
		errors.Is(err, cover.ErrUnknownColorScheme) ||
		errors.Is(err, cover.ErrInvalidMarkup) ||
		errors.Is(err, cover.ErrInvalidRequest) ||
		errors.Is(err, cover.ErrAssetNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrOutputRequired) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, cover.ErrWriteArtifact) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrReadCSS) {
		return ExitIO
	}

	return ExitGeneral
}

// Stage names reported on failure.
const (
	stageFont     = "font"
	stageTemplate = "template"
	stageInput    = "input"
	stageDraw     = "draw"
	stageBrowser  = "browser"
	stageEncode   = "encode"
	stageWrite    = "write"
)

// stageFor names the pipeline stage that produced err.
func stageFor(err error) string {
	switch {
	case errors.Is(err, cover.ErrFontNotFound):
		return stageFont
	case errors.Is(err, cover.ErrUnknownTemplate),
		errors.Is(err, cover.ErrUnknownColorScheme),
		errors.Is(err, cover.ErrEmptyTitle):
		return stageTemplate
	case errors.Is(err, cover.ErrBrowserConnect),
		errors.Is(err, cover.ErrPageCreate),
		errors.Is(err, cover.ErrPageLoad),
		errors.Is(err, cover.ErrScreenshot),
		errors.Is(err, cover.ErrRenderTimeout):
		return stageBrowser
	case errors.Is(err, cover.ErrSizeCompliance):
		return stageEncode
	case errors.Is(err, cover.ErrWriteArtifact):
		return stageWrite
	case errors.Is(err, cover.ErrRender):
		return stageDraw
	default:
		return stageInput
	}
}
