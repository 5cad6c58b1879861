package raster

import (
	"fmt"

	"golang.org/x/image/font"
)

// Block is the text budget of one region of a template.
type Block struct {
	Size     float64 // pixels
	Bold     bool
	Width    float64 // maximum line width in pixels
	MaxLines int
}

// Template is an immutable layout rule set selected by ID.
type Template struct {
	ID          string
	Description string
	Title       Block
	Subtitle    Block
	Item        Block // list rows; zero for templates without rows

	draw func(c *canvas, t Template, s Scheme, in Input) error
}

// Vertical rhythm shared by the layouts.
const (
	dividerWidth  = 200
	dividerStroke = 3
	dividerGap    = 60 // divider sits this far above the title block
	subtitleGap   = 40
	accentBar     = 8
	accentBarY    = Height - 120
	headerMinH    = 200
	headerTop     = 60
	headerBottom  = 40
	itemsGap      = 80 // between header and first row
	itemGap       = 30
	markerRadius  = 28
	markerX       = Padding + 20
	markerSize    = 36
	itemX         = Padding + 80
)

// Templates in presentation order.
var templates = []Template{
	{
		ID:          "gradient",
		Description: "full-bleed vertical gradient with a centered title and a divider above it",
		Title:       Block{Size: 96, Bold: true, Width: TextAreaWidth, MaxLines: 6},
		Subtitle:    Block{Size: 48, Width: TextAreaWidth, MaxLines: 3},
		draw:        drawGradient,
	},
	{
		ID:          "minimal",
		Description: "solid light background, title at the upper third, accent bar near the bottom",
		Title:       Block{Size: 88, Bold: true, Width: TextAreaWidth, MaxLines: 5},
		Subtitle:    Block{Size: 44, Width: TextAreaWidth, MaxLines: 3},
		draw:        drawMinimal,
	},
	{
		ID:          "list",
		Description: "accent header with the title and up to six numbered rows",
		Title:       Block{Size: 72, Bold: true, Width: TextAreaWidth, MaxLines: 2},
		Item:        Block{Size: 52, Width: TextAreaWidth - 100, MaxLines: 2},
		draw:        drawList,
	},
	{
		ID:          "bold",
		Description: "oversized title on an accent band across the middle half",
		Title:       Block{Size: 128, Bold: true, Width: TextAreaWidth - 40, MaxLines: 4},
		Subtitle:    Block{Size: 48, Width: TextAreaWidth, MaxLines: 2},
		draw:        drawBold,
	},
}

// DefaultTemplate is used when no template is specified.
const DefaultTemplate = "gradient"

// LookupTemplate returns the template registered under id.
func LookupTemplate(id string) (Template, error) {
	for _, t := range templates {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownTemplate, id, TemplateIDs())
}

// TemplateIDs lists registered template identifiers.
func TemplateIDs() []string {
	ids := make([]string, len(templates))
	for i, t := range templates {
		ids[i] = t.ID
	}
	return ids
}

func drawGradient(c *canvas, t Template, s Scheme, in Input) error {
	title, tf, err := c.layout(in.Title, t.Title)
	if err != nil {
		return err
	}
	total := c.blockHeight(len(title), tf)

	var sub []string
	var sf font.Face
	if in.Subtitle != "" {
		if sub, sf, err = c.layout(in.Subtitle, t.Subtitle); err != nil {
			return err
		}
		if len(sub) > 0 {
			total += subtitleGap + c.blockHeight(len(sub), sf)
		}
	}

	startY := float64(Height-total) / 2
	c.verticalGradient(s.GradientTop, s.GradientBottom)

	lineY := startY - dividerGap
	c.line(Width/2-dividerWidth/2, lineY, Width/2+dividerWidth/2, lineY, dividerStroke, s.TextOnGradient)

	y := c.drawLines("title", title, tf, Width/2, startY, 0.5, s.TextOnGradient)
	if len(sub) > 0 {
		c.drawLines("subtitle", sub, sf, Width/2, y+subtitleGap, 0.5, s.TextOnGradient)
	}
	return nil
}

func drawMinimal(c *canvas, t Template, s Scheme, in Input) error {
	c.fill(s.Solid)

	title, tf, err := c.layout(in.Title, t.Title)
	if err != nil {
		return err
	}
	y := c.drawLines("title", title, tf, Width/2, Height/3, 0.5, s.Text)

	if in.Subtitle != "" {
		sub, sf, err := c.layout(in.Subtitle, t.Subtitle)
		if err != nil {
			return err
		}
		c.drawLines("subtitle", sub, sf, Width/2, y+50, 0.5, s.Accent)
	}

	c.rect(Padding, accentBarY, TextAreaWidth, accentBar, s.Accent)
	return nil
}

func drawList(c *canvas, t Template, s Scheme, in Input) error {
	title, tf, err := c.layout(in.Title, t.Title)
	if err != nil {
		return err
	}
	header := headerTop + c.blockHeight(len(title), tf) + headerBottom
	if header < headerMinH {
		header = headerMinH
	}

	c.fill(s.Solid)
	c.rect(0, 0, Width, header, s.Accent)
	c.drawLines("title", title, tf, Width/2, headerTop, 0.5, s.TextOnGradient)

	items := in.Items
	if len(items) == 0 {
		source := in.Subtitle
		if source == "" {
			source = in.Title
		}
		items = ExtractItems(source)
	}
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}

	nf, err := c.face(Block{Size: markerSize, Bold: true})
	if err != nil {
		return err
	}

	y := header + itemsGap
	for i, item := range items {
		lines, f, err := c.layout(item, t.Item)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			continue
		}
		rowH := c.blockHeight(len(lines), f)
		if rowH < 2*markerRadius {
			rowH = 2 * markerRadius
		}
		if y+rowH > Height-Padding {
			c.dropped = len(items) - i
			break
		}

		cy := float64(y + markerRadius - 4)
		c.circle(markerX, cy, markerRadius, s.Accent)
		c.drawCentered(fmt.Sprintf("%d", i+1), nf, markerX, cy, white)
		c.drawLines("item", lines, f, itemX, float64(y), 0, s.Text)

		y += rowH + itemGap
	}
	return nil
}

func drawBold(c *canvas, t Template, s Scheme, in Input) error {
	c.fill(s.Solid)
	c.rect(0, Height/4, Width, Height/2, s.Accent)

	title, tf, err := c.layout(in.Title, t.Title)
	if err != nil {
		return err
	}
	startY := float64(Height-c.blockHeight(len(title), tf)) / 2
	c.drawLines("title", title, tf, Width/2, startY, 0.5, s.TextOnGradient)

	if in.Subtitle != "" {
		sub, sf, err := c.layout(in.Subtitle, t.Subtitle)
		if err != nil {
			return err
		}
		c.drawLines("subtitle", sub, sf, Width/2, Height*3/4+60, 0.5, s.Text)
	}
	return nil
}
