package fontresolve

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// collectionTag prefixes TrueType/OpenType collection files.
var collectionTag = []byte("ttcf")

// Handle is a parsed font resource resolved for this process.
// Handles are immutable after construction and safe for concurrent use.
// Faces returned by Face are not; create one per drawing goroutine.
type Handle struct {
	Family string
	Path   string // empty for in-memory fonts
	Index  int

	regular *opentype.Font
	bold    *opentype.Font
}

// NewHandle builds a handle from raw font bytes. boldData may be nil,
// in which case the regular face doubles as bold.
func NewHandle(family string, regularData, boldData []byte) (*Handle, error) {
	regular, err := parseFont(regularData, 0)
	if err != nil {
		return nil, err
	}

	h := &Handle{Family: family, regular: regular, bold: regular}
	if len(boldData) > 0 {
		b, err := parseFont(boldData, 0)
		if err != nil {
			return nil, err
		}
		h.bold = b
	}
	return h, nil
}

// loadHandle reads and parses the regular (and optional bold) entries from disk.
func loadHandle(family string, regular Entry, bold *Entry) (*Handle, error) {
	reg, err := loadEntry(regular)
	if err != nil {
		return nil, err
	}

	h := &Handle{
		Family:  family,
		Path:    regular.Path,
		Index:   regular.Index,
		regular: reg,
		bold:    reg,
	}

	if bold != nil {
		// A broken bold face is not fatal: the regular face still covers the glyphs.
		if b, err := loadEntry(*bold); err == nil {
			h.bold = b
		}
	}
	return h, nil
}

func loadEntry(e Entry) (*opentype.Font, error) {
	data, err := os.ReadFile(e.Path) // #nosec G304 -- path reported by the host font facility
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrFontParse, e.Path, err)
	}
	f, err := parseFont(data, e.Index)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Path, err)
	}
	return f, nil
}

// parseFont parses a single font or picks face index from a collection.
func parseFont(data []byte, index int) (*opentype.Font, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty font data", ErrFontParse)
	}

	if bytes.HasPrefix(data, collectionTag) {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFontParse, err)
		}
		if index < 0 || index >= coll.NumFonts() {
			return nil, fmt.Errorf("%w: collection index %d out of range (%d faces)", ErrFontParse, index, coll.NumFonts())
		}
		f, err := coll.Font(index)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFontParse, err)
		}
		return f, nil
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontParse, err)
	}
	return f, nil
}

// Covers reports whether the regular face has a glyph for r.
func (h *Handle) Covers(r rune) bool {
	return covers(h.regular, r)
}

// CoversAll reports whether every non-space rune of s has a glyph.
func (h *Handle) CoversAll(s string) bool {
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' {
			continue
		}
		if !h.Covers(r) {
			return false
		}
	}
	return true
}

func covers(f *opentype.Font, r rune) bool {
	var buf sfnt.Buffer
	idx, err := f.GlyphIndex(&buf, r)
	return err == nil && idx != 0
}

// Face creates a face at size points (72 DPI, so points equal pixels).
func (h *Handle) Face(size float64, bold bool) (font.Face, error) {
	f := h.regular
	if bold {
		f = h.bold
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %.0fpx face for %s: %w", size, h.Family, err)
	}
	return face, nil
}

// HasBold reports whether a distinct bold face was resolved.
func (h *Handle) HasBold() bool {
	return h.bold != h.regular
}
