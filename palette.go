package unmagic

import (
	"fmt"
	"image/color"

	css "github.com/mazznoer/csscolorparser"
)

// Default placeholder colours, as CSS strings.
const (
	DefaultFillColor   = "#678"
	DefaultStrokeColor = "#111"
	DefaultTextColor   = "#111"
)

// Placeholder captions drawn by the Empty and Dragging states.
const (
	DropPrompt  = "Drop image here"
	EmptyPrompt = "Drag and drop an image here"
)

// Placeholder geometry.
const (
	placeholderInset = 5
	promptX          = 15
	promptY          = 25
)

// Palette holds the colours used for the placeholder states.
type Palette struct {
	Fill   color.NRGBA
	Stroke color.NRGBA
	Text   color.NRGBA
}

// DefaultPalette returns the stock slate fill with a near-black outline.
func DefaultPalette() Palette {
	p, err := ParsePalette(DefaultFillColor, DefaultStrokeColor, DefaultTextColor)
	if err != nil {
		panic("unmagic: default palette: " + err.Error())
	}
	return p
}

// ParsePalette builds a Palette from CSS colour strings such as "#678",
// "rgb(17 17 17)" or "slategray".
func ParsePalette(fill, stroke, text string) (Palette, error) {
	var p Palette
	var err error
	if p.Fill, err = ParseColor(fill); err != nil {
		return Palette{}, fmt.Errorf("fill colour: %w", err)
	}
	if p.Stroke, err = ParseColor(stroke); err != nil {
		return Palette{}, fmt.Errorf("stroke colour: %w", err)
	}
	if p.Text, err = ParseColor(text); err != nil {
		return Palette{}, fmt.Errorf("text colour: %w", err)
	}
	return p, nil
}

// ParseColor parses a CSS colour string.
func ParseColor(s string) (color.NRGBA, error) {
	c, err := css.Parse(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse %q: %w", s, err)
	}
	return color.NRGBA{
		R: channel8(c.R),
		G: channel8(c.G),
		B: channel8(c.B),
		A: channel8(c.A),
	}, nil
}

func channel8(v float64) uint8 {
	return uint8(clamp(v, 0, 1)*255 + 0.5)
}
