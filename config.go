package unmagic

import (
	"flag"
	"fmt"
)

// RunConfig configures the viewer and the headless renderer.
type RunConfig struct {
	Title  string
	Width  int // maximum surface width in pixels
	Height int // maximum surface height in pixels

	Auto            bool
	OffsetMagnitude float64
	Offset          float64
	Slant           float64
	Stretch         float64

	FillColor   string
	StrokeColor string
	TextColor   string

	ScreenshotDir string
	Debug         bool
}

// DefaultRunConfig returns the stock configuration.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Title:           "unmagic",
		Width:           960,
		Height:          640,
		Auto:            true,
		OffsetMagnitude: DefaultOffsetMagnitude,
		FillColor:       DefaultFillColor,
		StrokeColor:     DefaultStrokeColor,
		TextColor:       DefaultTextColor,
		ScreenshotDir:   "screenshots",
	}
}

// RegisterFlags binds the config fields to fs, using the current values as
// defaults.
func (c *RunConfig) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Title, "title", c.Title, "window title")
	fs.IntVar(&c.Width, "width", c.Width, "maximum surface width in pixels")
	fs.IntVar(&c.Height, "height", c.Height, "maximum surface height in pixels")
	fs.BoolVar(&c.Auto, "auto", c.Auto, "animate the offset automatically")
	fs.Float64Var(&c.OffsetMagnitude, "offset-mag", c.OffsetMagnitude, "offset magnitude [1, 100]")
	fs.Float64Var(&c.Offset, "offset", c.Offset, "initial offset [-100, 100]; setting it disables auto")
	fs.Float64Var(&c.Slant, "slant", c.Slant, "slant [-100, 100]")
	fs.Float64Var(&c.Stretch, "stretch", c.Stretch, "stretch [-100, 100]")
	fs.StringVar(&c.FillColor, "fill", c.FillColor, "placeholder fill colour (CSS)")
	fs.StringVar(&c.StrokeColor, "stroke", c.StrokeColor, "placeholder outline colour (CSS)")
	fs.StringVar(&c.TextColor, "text", c.TextColor, "placeholder text colour (CSS)")
	fs.StringVar(&c.ScreenshotDir, "screenshots", c.ScreenshotDir, "directory for PNG screenshots")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "log per-render timing to stderr")
}

// Validate checks sizes and colours.
func (c RunConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", c.Width, c.Height)
	}
	if _, err := c.Palette(); err != nil {
		return err
	}
	return nil
}

// Palette parses the configured colours.
func (c RunConfig) Palette() (Palette, error) {
	return ParsePalette(c.FillColor, c.StrokeColor, c.TextColor)
}

// Params returns the configured parameters, clamped to the control ranges.
func (c RunConfig) Params() Params {
	return ClampParams(Params{
		OffsetMagnitude: c.OffsetMagnitude,
		Offset:          c.Offset,
		Slant:           c.Slant,
		Stretch:         c.Stretch,
	})
}

// Apply pushes the configured controls into ctrl. A non-zero offset counts
// as a manual setting and turns auto mode off.
func (c RunConfig) Apply(ctrl *Controller) {
	p := c.Params()
	ctrl.SetOffsetMagnitude(p.OffsetMagnitude)
	ctrl.SetSlant(p.Slant)
	ctrl.SetStretch(p.Stretch)
	ctrl.SetAuto(c.Auto)
	if p.Offset != 0 {
		ctrl.SetOffset(p.Offset)
	}
}

// FitAspect returns the largest size with the image's aspect ratio that fits
// in maxW×maxH. Without a usable image size the full area is returned.
func FitAspect(imgW, imgH, maxW, maxH int) (int, int) {
	if imgW <= 0 || imgH <= 0 || maxW <= 0 || maxH <= 0 {
		return max(maxW, 0), max(maxH, 0)
	}
	w := maxW
	h := int(float64(maxW)*float64(imgH)/float64(imgW) + 0.5)
	if h > maxH {
		h = maxH
		w = int(float64(maxH)*float64(imgW)/float64(imgH) + 0.5)
	}
	return max(w, 1), max(h, 1)
}
