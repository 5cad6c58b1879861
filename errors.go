package cover

import (
	"errors"

	"github.com/alnah/go-cover/internal/fontresolve"
	"github.com/alnah/go-cover/internal/raster"
)

// Sentinel errors for library operations.
var (
	ErrEmptyTitle         = raster.ErrEmptyTitle
	ErrUnknownTemplate    = raster.ErrUnknownTemplate
	ErrUnknownColorScheme = raster.ErrUnknownColorScheme
	ErrFontNotFound       = fontresolve.ErrFontNotFound

	// ErrRender is the parent of every drawing and browser failure.
	ErrRender = raster.ErrRender

	// ErrRenderTimeout indicates the page did not settle within the render timeout.
	ErrRenderTimeout = errors.New("render timed out waiting for a stable page")

	// ErrSizeCompliance indicates the image exceeds the size ceiling even at
	// the lowest JPEG quality.
	ErrSizeCompliance = errors.New("image exceeds size ceiling")

	// ErrInvalidMarkup indicates a markup request without exactly one source.
	ErrInvalidMarkup = errors.New("markup request needs exactly one of HTMLPath, HTML or Markdown")

	// ErrWriteArtifact indicates the encoded image could not be persisted.
	ErrWriteArtifact = errors.New("failed to write cover")

	// ErrInvalidRequest indicates a request type the renderer does not handle.
	ErrInvalidRequest = errors.New("unsupported request")

	// ErrAssetNotFound indicates a markup stylesheet or document shell is missing.
	ErrAssetNotFound = errors.New("asset not found")
)

// Browser stage errors. Each wraps ErrRender.
var (
	ErrBrowserConnect = stageError("failed to connect to browser")
	ErrPageCreate     = stageError("failed to create browser page")
	ErrPageLoad       = stageError("failed to load page")
	ErrScreenshot     = stageError("failed to capture screenshot")
)

// renderStage is a sentinel that also matches ErrRender.
type renderStage struct{ msg string }

func stageError(msg string) error { return &renderStage{msg: msg} }

func (e *renderStage) Error() string { return e.msg }

func (e *renderStage) Is(target error) bool { return target == ErrRender }
