package unmagic

import (
	"image"
	"image/color"
)

// Canvas is a mutable drawing target sized in device pixels. Implementations
// carry no transform or composite state of their own: every DrawImage call
// receives both explicitly.
type Canvas interface {
	// Size returns the canvas dimensions in pixels.
	Size() (width, height int)
	// Clear resets every pixel to transparent black.
	Clear()
	// FillRect fills r with c using source-over blending.
	FillRect(r Rect, c color.Color)
	// StrokeRect outlines r with a one pixel line.
	StrokeRect(r Rect, c color.Color)
	// FillText draws s with its baseline starting at (x, y).
	FillText(s string, x, y float64, c color.Color)
	// DrawImage draws img through m, which maps image-local pixel coordinates
	// (origin at img.Bounds().Min) to canvas coordinates.
	DrawImage(img image.Image, m Affine, op CompositeOp)
}

// drawState is the part of a 2D context that save/restore scopes.
type drawState struct {
	transform Affine
	op        CompositeOp
}

// drawContext layers a canvas-style transform stack over a Canvas. A fresh
// context is created for every render, so nothing it holds outlives the call.
type drawContext struct {
	canvas Canvas
	cur    drawState
	stack  []drawState
}

func newDrawContext(c Canvas) *drawContext {
	return &drawContext{
		canvas: c,
		cur:    drawState{transform: Identity, op: CompositeSourceOver},
	}
}

func (dc *drawContext) save() {
	dc.stack = append(dc.stack, dc.cur)
}

func (dc *drawContext) restore() {
	if len(dc.stack) == 0 {
		return
	}
	dc.cur = dc.stack[len(dc.stack)-1]
	dc.stack = dc.stack[:len(dc.stack)-1]
}

func (dc *drawContext) translate(tx, ty float64) {
	dc.cur.transform = dc.cur.transform.Translate(tx, ty)
}

func (dc *drawContext) scale(sx, sy float64) {
	dc.cur.transform = dc.cur.transform.Scale(sx, sy)
}

func (dc *drawContext) setComposite(op CompositeOp) {
	dc.cur.op = op
}

// drawImage draws img stretched over dst, a rectangle in the current local
// coordinate space.
func (dc *drawContext) drawImage(img image.Image, dst Rect) {
	b := img.Bounds()
	if b.Empty() || dst.Empty() {
		return
	}
	m := dc.cur.transform.
		Translate(dst.X, dst.Y).
		Scale(dst.Width/float64(b.Dx()), dst.Height/float64(b.Dy()))
	if !m.IsFinite() {
		return
	}
	dc.canvas.DrawImage(img, m, dc.cur.op)
}
