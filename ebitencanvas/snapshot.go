package ebitencanvas

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Snapshot reads back img as a straight-alpha NRGBA image, suitable for PNG
// encoding or the clipboard. It must be called after the game loop has
// started, e.g. from Draw.
func Snapshot(img *ebiten.Image) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.ReadPixels(out.Pix)
	unpremultiply(out.Pix)
	return out
}

// unpremultiply converts premultiplied RGBA bytes to straight alpha in
// place.
func unpremultiply(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := pix[i+3]
		if a == 0 || a == 255 {
			continue
		}
		pix[i] = uint8(min(int(pix[i])*255/int(a), 255))
		pix[i+1] = uint8(min(int(pix[i+1])*255/int(a), 255))
		pix[i+2] = uint8(min(int(pix[i+2])*255/int(a), 255))
	}
}
