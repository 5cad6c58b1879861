package raster

import (
	"fmt"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/alnah/go-cover/internal/fontresolve"
)

// lineSpacing is the gap between lines as a fraction of the ascent.
const lineSpacing = 0.4

type faceKey struct {
	size float64
	bold bool
}

// canvas is the drawing state of a single render. Not safe for concurrent use.
type canvas struct {
	dc      *gg.Context
	font    *fontresolve.Handle
	faces   map[faceKey]font.Face
	dropped int // list rows that did not fit
	blocks  []textBlock
}

// textBlock is the area covered by one drawn block of lines, from the top of
// the first line to the descent of the last.
type textBlock struct {
	role                     string // title, subtitle or item
	lines                    []string
	left, top, right, bottom float64
}

func newCanvas(h *fontresolve.Handle) *canvas {
	return &canvas{
		dc:    gg.NewContext(Width, Height),
		font:  h,
		faces: make(map[faceKey]font.Face),
	}
}

// close releases the faces created for this render.
func (c *canvas) close() {
	for k, f := range c.faces {
		_ = f.Close()
		delete(c.faces, k)
	}
}

func (c *canvas) face(b Block) (font.Face, error) {
	k := faceKey{size: b.Size, bold: b.Bold}
	if f, ok := c.faces[k]; ok {
		return f, nil
	}
	f, err := c.font.Face(b.Size, b.Bold)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	c.faces[k] = f
	return f, nil
}

// layout wraps and truncates text to the block budget.
func (c *canvas) layout(text string, b Block) ([]string, font.Face, error) {
	f, err := c.face(b)
	if err != nil {
		return nil, nil, err
	}
	return layoutText(text, b.Width, b.MaxLines, measurer(f)), f, nil
}

func measurer(f font.Face) measureFunc {
	return func(s string) float64 {
		return float64(font.MeasureString(f, s)) / 64
	}
}

func lineStep(f font.Face) int {
	asc := f.Metrics().Ascent.Ceil()
	return asc + int(float64(asc)*lineSpacing)
}

func (c *canvas) blockHeight(lines int, f font.Face) int {
	return lines * lineStep(f)
}

// drawLines draws lines with their tops starting at y, anchored horizontally
// at x by ax (0 left, 0.5 center), and records the covered block under role.
// It returns the y below the last line.
func (c *canvas) drawLines(role string, lines []string, f font.Face, x, y, ax float64, col color.Color) float64 {
	c.dc.SetFontFace(f)
	c.dc.SetColor(col)
	m := f.Metrics()
	asc := float64(m.Ascent.Ceil())
	step := float64(lineStep(f))
	measure := measurer(f)

	b := textBlock{role: role, lines: lines, left: x, right: x, top: y, bottom: y}
	for i, line := range lines {
		c.dc.DrawStringAnchored(line, x, y+asc, ax, 0)
		w := measure(line)
		b.left = min(b.left, x-ax*w)
		b.right = max(b.right, x-ax*w+w)
		if i == len(lines)-1 {
			b.bottom = y + asc + float64(m.Descent.Ceil())
		}
		y += step
	}
	if len(lines) > 0 {
		c.blocks = append(c.blocks, b)
	}
	return y
}

// drawCentered draws s centered on (cx, cy) using the cap height.
func (c *canvas) drawCentered(s string, f font.Face, cx, cy float64, col color.Color) {
	c.dc.SetFontFace(f)
	c.dc.SetColor(col)
	capH := float64(f.Metrics().CapHeight.Ceil())
	c.dc.DrawStringAnchored(s, cx, cy+capH/2, 0.5, 0)
}

func (c *canvas) fill(col color.Color) {
	c.dc.SetColor(col)
	c.dc.Clear()
}

func (c *canvas) verticalGradient(top, bottom color.Color) {
	g := gg.NewLinearGradient(0, 0, 0, Height)
	g.AddColorStop(0, top)
	g.AddColorStop(1, bottom)
	c.dc.SetFillStyle(g)
	c.dc.DrawRectangle(0, 0, Width, Height)
	c.dc.Fill()
}

func (c *canvas) rect(x, y, w, h int, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawRectangle(float64(x), float64(y), float64(w), float64(h))
	c.dc.Fill()
}

func (c *canvas) circle(x, y, r float64, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawCircle(x, y, r)
	c.dc.Fill()
}

func (c *canvas) line(x1, y1, x2, y2, width float64, col color.Color) {
	c.dc.SetColor(col)
	c.dc.SetLineWidth(width)
	c.dc.DrawLine(x1, y1, x2, y2)
	c.dc.Stroke()
}
