// Package ebitencanvas implements unmagic.Canvas on top of an *ebiten.Image,
// so the compositor can draw straight into an Ebitengine frame.
package ebitencanvas

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/phanxgames/unmagic"
)

// Canvas draws onto an *ebiten.Image. The target must be a full image (not
// a sub-image) so that its origin is (0, 0).
//
// Source images handed to DrawImage are uploaded once and cached by
// identity; call Forget when an image will not be drawn again.
type Canvas struct {
	dst    *ebiten.Image
	face   *text.GoXFace
	Filter ebiten.Filter

	textures map[image.Image]*ebiten.Image
	layers   layerPool

	// Preallocated draw options, reused across calls.
	imgOp    ebiten.DrawImageOptions
	shaderOp ebiten.DrawRectShaderOptions
	textOp   text.DrawOptions
}

// New returns a canvas drawing onto dst with linear filtering and the 7x13
// bitmap face used for the placeholder captions.
func New(dst *ebiten.Image) *Canvas {
	return &Canvas{
		dst:      dst,
		face:     text.NewGoXFace(basicfont.Face7x13),
		Filter:   ebiten.FilterLinear,
		textures: make(map[image.Image]*ebiten.Image),
	}
}

// Target returns the image the canvas draws onto.
func (c *Canvas) Target() *ebiten.Image { return c.dst }

// SetTarget redirects drawing to dst, e.g. after a window resize. Cached
// textures survive; pooled layers of the old size are released.
func (c *Canvas) SetTarget(dst *ebiten.Image) {
	if dst == c.dst {
		return
	}
	c.dst = dst
	c.layers.Dispose()
}

// Size implements unmagic.Canvas.
func (c *Canvas) Size() (int, int) {
	if c.dst == nil {
		return 0, 0
	}
	b := c.dst.Bounds()
	return b.Dx(), b.Dy()
}

// Clear implements unmagic.Canvas.
func (c *Canvas) Clear() {
	if c.dst != nil {
		c.dst.Clear()
	}
}

// FillRect implements unmagic.Canvas.
func (c *Canvas) FillRect(r unmagic.Rect, clr color.Color) {
	if c.dst == nil || r.Empty() {
		return
	}
	op := &c.imgOp
	op.GeoM.Reset()
	op.GeoM.Scale(r.Width, r.Height)
	op.GeoM.Translate(r.X, r.Y)
	op.ColorScale.Reset()
	op.ColorScale.ScaleWithColor(clr)
	op.Blend = ebiten.BlendSourceOver
	op.Filter = ebiten.FilterNearest
	c.dst.DrawImage(ensureWhitePixel(), op)
}

// StrokeRect implements unmagic.Canvas with a one pixel outline drawn
// inside r.
func (c *Canvas) StrokeRect(r unmagic.Rect, clr color.Color) {
	if r.Width < 2 || r.Height < 2 {
		c.FillRect(r, clr)
		return
	}
	c.FillRect(unmagic.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: 1}, clr)
	c.FillRect(unmagic.Rect{X: r.X, Y: r.Y + r.Height - 1, Width: r.Width, Height: 1}, clr)
	c.FillRect(unmagic.Rect{X: r.X, Y: r.Y + 1, Width: 1, Height: r.Height - 2}, clr)
	c.FillRect(unmagic.Rect{X: r.X + r.Width - 1, Y: r.Y + 1, Width: 1, Height: r.Height - 2}, clr)
}

// FillText implements unmagic.Canvas. y is the baseline.
func (c *Canvas) FillText(s string, x, y float64, clr color.Color) {
	if c.dst == nil || s == "" {
		return
	}
	op := &c.textOp
	op.GeoM.Reset()
	op.GeoM.Translate(x, y-c.face.Metrics().HAscent)
	op.ColorScale.Reset()
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(c.dst, s, c.face, op)
}

// DrawImage implements unmagic.Canvas.
func (c *Canvas) DrawImage(img image.Image, m unmagic.Affine, op unmagic.CompositeOp) {
	if c.dst == nil || img == nil || !m.IsFinite() {
		return
	}
	src := c.texture(img)
	if src == nil {
		return
	}

	switch op {
	case unmagic.CompositeDifference:
		c.drawDifference(src, m)
	case unmagic.CompositeCopy:
		c.drawTransformed(c.dst, src, m, ebiten.BlendCopy)
	default:
		c.drawTransformed(c.dst, src, m, ebiten.BlendSourceOver)
	}
}

func (c *Canvas) drawTransformed(dst, src *ebiten.Image, m unmagic.Affine, blend ebiten.Blend) {
	op := &c.imgOp
	op.GeoM = GeoM(m)
	op.ColorScale.Reset()
	op.Blend = blend
	op.Filter = c.Filter
	dst.DrawImage(src, op)
}

// drawDifference renders src into a transparent layer the size of the
// target, snapshots the target as the backdrop and writes the blended
// result back with a copy blend.
func (c *Canvas) drawDifference(src *ebiten.Image, m unmagic.Affine) {
	w, h := c.Size()
	if w == 0 || h == 0 {
		return
	}
	layer := c.layers.Acquire(w, h)
	backdrop := c.layers.Acquire(w, h)
	defer c.layers.Release(layer)
	defer c.layers.Release(backdrop)

	c.drawTransformed(layer, src, m, ebiten.BlendSourceOver)
	c.drawTransformed(backdrop, c.dst, unmagic.Identity, ebiten.BlendCopy)

	c.shaderOp.Images[0] = layer
	c.shaderOp.Images[1] = backdrop
	c.shaderOp.Blend = ebiten.BlendCopy
	c.dst.DrawRectShader(w, h, ensureDifferenceShader(), &c.shaderOp)
	c.shaderOp.Images[0] = nil
	c.shaderOp.Images[1] = nil
}

func (c *Canvas) texture(img image.Image) *ebiten.Image {
	if e, ok := img.(*ebiten.Image); ok {
		return e
	}
	if t, ok := c.textures[img]; ok {
		return t
	}
	if img.Bounds().Empty() {
		return nil
	}
	t := ebiten.NewImageFromImage(img)
	c.textures[img] = t
	return t
}

// Forget drops the cached texture for img.
func (c *Canvas) Forget(img image.Image) {
	if t, ok := c.textures[img]; ok {
		t.Deallocate()
		delete(c.textures, img)
	}
}

// Dispose releases every cached texture and pooled layer.
func (c *Canvas) Dispose() {
	for img, t := range c.textures {
		t.Deallocate()
		delete(c.textures, img)
	}
	c.layers.Dispose()
}

// GeoM converts an affine matrix to Ebitengine's geometry matrix.
func GeoM(m unmagic.Affine) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(0, 1, m[2])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 0, m[1])
	g.SetElement(1, 1, m[3])
	g.SetElement(1, 2, m[5])
	return g
}

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.White)
	}
	return whitePixelImage
}
