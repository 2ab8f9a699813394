package unmagic

import (
	"time"
)

// Compositor draws render states onto a Canvas. It keeps no reference to the
// canvas between calls; rendering the same state twice produces the same
// pixels.
type Compositor struct {
	Palette Palette
	debug   bool
}

// NewCompositor creates a compositor using the given placeholder palette.
func NewCompositor(p Palette) *Compositor {
	return &Compositor{Palette: p}
}

// SetDebugMode enables or disables per-render timing output on stderr.
func (c *Compositor) SetDebugMode(enabled bool) {
	c.debug = enabled
}

// Render clears the canvas and draws state onto it. A zero-sized canvas is
// left untouched.
func (c *Compositor) Render(cv Canvas, state RenderState) {
	w, h := cv.Size()
	if w <= 0 || h <= 0 {
		return
	}

	var stats renderStats
	var t0 time.Time
	if c.debug {
		t0 = time.Now()
	}

	cv.Clear()
	bounds := Rect{Width: float64(w), Height: float64(h)}
	frame := bounds.Inset(placeholderInset)

	switch st := state.(type) {
	case Dragging:
		stats.state = "dragging"
		cv.FillRect(frame, c.Palette.Fill)
		cv.StrokeRect(frame, c.Palette.Stroke)
		cv.FillText(DropPrompt, promptX, promptY, c.Palette.Text)
	case Ready:
		if st.Image == nil {
			stats.state = "empty"
			c.drawEmpty(cv, frame)
			break
		}
		stats.state = "ready"
		stats.ghost = c.drawReady(cv, bounds, st)
	default:
		stats.state = "empty"
		c.drawEmpty(cv, frame)
	}

	if c.debug {
		stats.renderTime = time.Since(t0)
		stats.width, stats.height = w, h
		c.debugLog(stats)
	}
}

func (c *Compositor) drawEmpty(cv Canvas, frame Rect) {
	cv.StrokeRect(frame, c.Palette.Stroke)
	cv.FillText(EmptyPrompt, promptX, promptY, c.Palette.Text)
}

// drawReady runs both passes and returns the ghost transform it used.
func (c *Compositor) drawReady(cv Canvas, bounds Rect, st Ready) GhostTransform {
	w, h := bounds.Width, bounds.Height
	fill := Rect{X: -w / 2, Y: -h / 2, Width: w, Height: h}

	dc := newDrawContext(cv)
	dc.save()
	dc.translate(w/2, h/2)

	// Pass A: base layer.
	dc.setComposite(CompositeSourceOver)
	dc.drawImage(st.Image, fill)

	// Pass B: ghost layer, scoped so its state is dropped afterwards.
	g := st.Params.Ghost(w, h)
	dc.save()
	dc.scale(g.ScaleX, g.ScaleY)
	dc.translate(g.DX, g.DY)
	dc.setComposite(CompositeDifference)
	dc.drawImage(st.Image, fill)
	dc.restore()

	dc.restore()
	return g
}

var defaultCompositor = NewCompositor(DefaultPalette())

// Render draws state onto cv with the default palette.
func Render(cv Canvas, state RenderState) {
	defaultCompositor.Render(cv, state)
}
