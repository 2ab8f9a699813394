package unmagic

import "image"

// DifferenceComposite blends src onto dst in place with the separable
// difference mode. Both images hold premultiplied colour; for opaque pixels
// each channel becomes |dst - src|. The general form is
//
//	co = cs + cb - 2 * min(cs * ab, cb * as)
//	ao = as + ab - as * ab
//
// Only the overlap of the two bounds is touched.
func DifferenceComposite(dst, src *image.RGBA) {
	r := dst.Bounds().Intersect(src.Bounds())
	if r.Empty() {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		di := dst.PixOffset(r.Min.X, y)
		si := src.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			sa := uint32(src.Pix[si+3])
			if sa == 0 && src.Pix[si] == 0 && src.Pix[si+1] == 0 && src.Pix[si+2] == 0 {
				di += 4
				si += 4
				continue
			}
			ba := uint32(dst.Pix[di+3])
			for c := 0; c < 3; c++ {
				dst.Pix[di+c] = differenceChannel(uint32(src.Pix[si+c]), uint32(dst.Pix[di+c]), sa, ba)
			}
			dst.Pix[di+3] = uint8(sa + ba - div255(sa*ba))
			di += 4
			si += 4
		}
	}
}

// differenceChannel blends one premultiplied channel. cs/cb are the source
// and backdrop channel values, sa/ba their alphas, all in [0, 255].
func differenceChannel(cs, cb, sa, ba uint32) uint8 {
	m := min(cs*ba, cb*sa)
	v := int32(cs+cb) - int32(2*div255(m))
	return uint8(clamp(v, 0, 255))
}

// div255 divides by 255 with rounding.
func div255(v uint32) uint32 {
	return (v + 127) / 255
}
