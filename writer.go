package cover

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-cover/internal/dateutil"
	"github.com/alnah/go-cover/internal/fileutil"
)

// DefaultFileName is the cover file name inside a run directory.
const DefaultFileName = "cover.png"

// maxRunSuffix bounds the search for a free run directory.
const maxRunSuffix = 1000

// imageExts are replaced rather than appended to when fixing an extension.
var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".bmp": true,
}

// WriteArtifact writes enc to path, creating parent directories. The file
// extension is corrected to match the encoded format. The write is atomic.
func WriteArtifact(path string, enc *Encoded) (*Artifact, error) {
	if enc == nil || len(enc.Data) == 0 {
		return nil, fmt.Errorf("%w: nothing to write", ErrWriteArtifact)
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrWriteArtifact)
	}

	path = matchExtension(path, enc.Format)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteArtifact, err)
	}
	if err := fileutil.WriteFileAtomic(path, enc.Data, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWriteArtifact, err)
	}

	return &Artifact{
		Path:   path,
		Size:   int64(len(enc.Data)),
		Format: enc.Format,
		Width:  enc.Width,
		Height: enc.Height,
	}, nil
}

// matchExtension returns path with the extension of f.
// ".jpeg" is kept for JPEG output.
func matchExtension(path string, f Format) string {
	ext := filepath.Ext(path)
	lower := strings.ToLower(ext)

	switch {
	case f == FormatJPEG && (lower == ".jpg" || lower == ".jpeg"):
		return path
	case f == FormatPNG && lower == ".png":
		return path
	case imageExts[lower]:
		return strings.TrimSuffix(path, ext) + f.Ext()
	default:
		return path + f.Ext()
	}
}

// RunDir creates and returns a fresh directory under base named after now in
// the platform time zone. When the name is taken, -2, -3, ... is appended.
func RunDir(base string, now time.Time) (string, error) {
	return RunDirFormat(base, now, dateutil.DefaultRunFormat)
}

// RunDirFormat is RunDir with a custom stamp format (see dateutil.ParseDateFormat).
func RunDirFormat(base string, now time.Time, format string) (string, error) {
	stamp, err := dateutil.RunStamp(now, format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(base, 0o750); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteArtifact, err)
	}

	for i := 1; i <= maxRunSuffix; i++ {
		name := stamp
		if i > 1 {
			name = fmt.Sprintf("%s-%d", stamp, i)
		}
		dir := filepath.Join(base, name)

		err := os.Mkdir(dir, 0o750)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %v", ErrWriteArtifact, err)
		}
	}
	return "", fmt.Errorf("%w: no free run directory for %s in %s", ErrWriteArtifact, stamp, base)
}
