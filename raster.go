package unmagic

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RasterCanvas is a CPU Canvas backed by a premultiplied *image.RGBA.
type RasterCanvas struct {
	dst *image.RGBA

	// Interpolator resamples images in DrawImage. Defaults to draw.BiLinear.
	Interpolator draw.Interpolator
	// Face is used by FillText. Defaults to basicfont.Face7x13.
	Face font.Face
}

// NewRasterCanvas allocates a transparent canvas of the given size.
func NewRasterCanvas(width, height int) *RasterCanvas {
	return NewRasterCanvasFrom(image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0))))
}

// NewRasterCanvasFrom wraps an existing image. Canvas coordinate (0, 0) maps
// to dst.Bounds().Min.
func NewRasterCanvasFrom(dst *image.RGBA) *RasterCanvas {
	return &RasterCanvas{
		dst:          dst,
		Interpolator: draw.BiLinear,
		Face:         basicfont.Face7x13,
	}
}

// Image returns the backing image.
func (r *RasterCanvas) Image() *image.RGBA {
	return r.dst
}

// Size returns the canvas dimensions in pixels.
func (r *RasterCanvas) Size() (int, int) {
	b := r.dst.Bounds()
	return b.Dx(), b.Dy()
}

// Clear resets every pixel to transparent black.
func (r *RasterCanvas) Clear() {
	draw.Draw(r.dst, r.dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// FillRect fills rect with c using source-over blending. Fractional edges are
// snapped to whole pixels.
func (r *RasterCanvas) FillRect(rect Rect, c color.Color) {
	pr := r.pixelRect(rect)
	if pr.Empty() {
		return
	}
	draw.Draw(r.dst, pr, image.NewUniform(c), image.Point{}, draw.Over)
}

// StrokeRect draws a one pixel outline along the edges of rect.
func (r *RasterCanvas) StrokeRect(rect Rect, c color.Color) {
	pr := r.pixelRect(rect)
	if pr.Empty() {
		return
	}
	src := image.NewUniform(c)
	edges := [4]image.Rectangle{
		image.Rect(pr.Min.X, pr.Min.Y, pr.Max.X, pr.Min.Y+1),
		image.Rect(pr.Min.X, pr.Max.Y-1, pr.Max.X, pr.Max.Y),
		image.Rect(pr.Min.X, pr.Min.Y+1, pr.Min.X+1, pr.Max.Y-1),
		image.Rect(pr.Max.X-1, pr.Min.Y+1, pr.Max.X, pr.Max.Y-1),
	}
	for _, e := range edges {
		draw.Draw(r.dst, e.Intersect(r.dst.Bounds()), src, image.Point{}, draw.Over)
	}
}

// FillText draws s with its baseline starting at (x, y).
func (r *RasterCanvas) FillText(s string, x, y float64, c color.Color) {
	origin := r.dst.Bounds().Min
	d := font.Drawer{
		Dst:  r.dst,
		Src:  image.NewUniform(c),
		Face: r.Face,
		Dot:  fixed.P(origin.X+int(x), origin.Y+int(y)),
	}
	d.DrawString(s)
}

// DrawImage draws img through m with the given composite operation.
// Difference is rendered into a scratch layer first and then merged with
// [DifferenceComposite].
func (r *RasterCanvas) DrawImage(img image.Image, m Affine, op CompositeOp) {
	sb := img.Bounds()
	if sb.Empty() || !m.IsFinite() {
		return
	}
	// m is image-local; x/image/draw expects source pixel coordinates.
	origin := r.dst.Bounds().Min
	aff := Identity.
		Translate(float64(origin.X), float64(origin.Y)).
		Multiply(m).
		Translate(-float64(sb.Min.X), -float64(sb.Min.Y)).
		Aff3()

	switch op {
	case CompositeCopy:
		r.Interpolator.Transform(r.dst, aff, img, sb, draw.Src, nil)
	case CompositeDifference:
		layer := image.NewRGBA(r.dst.Bounds())
		r.Interpolator.Transform(layer, aff, img, sb, draw.Src, nil)
		DifferenceComposite(r.dst, layer)
	default:
		r.Interpolator.Transform(r.dst, aff, img, sb, draw.Over, nil)
	}
}

// pixelRect converts a canvas rectangle to image pixel coordinates.
func (r *RasterCanvas) pixelRect(rect Rect) image.Rectangle {
	origin := r.dst.Bounds().Min
	pr := image.Rect(
		origin.X+int(rect.X+0.5), origin.Y+int(rect.Y+0.5),
		origin.X+int(rect.X+rect.Width+0.5), origin.Y+int(rect.Y+rect.Height+0.5),
	)
	return pr.Intersect(r.dst.Bounds())
}
