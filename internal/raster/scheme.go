package raster

import (
	"fmt"
	"image/color"
)

// Scheme is a named palette shared by every template.
type Scheme struct {
	ID             string
	GradientTop    color.RGBA
	GradientBottom color.RGBA
	Solid          color.RGBA // light flat background
	Text           color.RGBA // text on Solid
	Accent         color.RGBA
	TextOnGradient color.RGBA // text on the gradient or accent fills
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

var white = rgb(255, 255, 255)

// Schemes in presentation order.
var schemes = []Scheme{
	{
		ID:             "warm",
		GradientTop:    rgb(255, 154, 120),
		GradientBottom: rgb(255, 99, 132),
		Solid:          rgb(255, 240, 235),
		Text:           rgb(60, 20, 10),
		Accent:         rgb(255, 99, 132),
		TextOnGradient: white,
	},
	{
		ID:             "cool",
		GradientTop:    rgb(102, 126, 234),
		GradientBottom: rgb(118, 75, 162),
		Solid:          rgb(235, 238, 255),
		Text:           rgb(20, 20, 60),
		Accent:         rgb(102, 126, 234),
		TextOnGradient: white,
	},
	{
		ID:             "green",
		GradientTop:    rgb(67, 206, 162),
		GradientBottom: rgb(24, 164, 140),
		Solid:          rgb(235, 250, 245),
		Text:           rgb(10, 50, 40),
		Accent:         rgb(24, 164, 140),
		TextOnGradient: white,
	},
	{
		ID:             "neutral",
		GradientTop:    rgb(90, 90, 90),
		GradientBottom: rgb(50, 50, 50),
		Solid:          rgb(245, 245, 245),
		Text:           rgb(30, 30, 30),
		Accent:         rgb(90, 90, 90),
		TextOnGradient: white,
	},
}

// DefaultScheme is used when no scheme is specified.
const DefaultScheme = "warm"

// LookupScheme returns the scheme registered under id.
func LookupScheme(id string) (Scheme, error) {
	for _, s := range schemes {
		if s.ID == id {
			return s, nil
		}
	}
	return Scheme{}, fmt.Errorf("%w: %q (available: %v)", ErrUnknownColorScheme, id, SchemeIDs())
}

// SchemeIDs lists registered scheme identifiers.
func SchemeIDs() []string {
	ids := make([]string, len(schemes))
	for i, s := range schemes {
		ids[i] = s.ID
	}
	return ids
}
