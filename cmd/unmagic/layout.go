package main

import "github.com/phanxgames/unmagic"

// surfaceLayout places the render surface inside the window area above the
// overlay.
type surfaceLayout struct {
	x, y, w, h int
}

func computeLayout(imgW, imgH, areaW, areaH int) surfaceLayout {
	w, h := unmagic.FitAspect(imgW, imgH, areaW, areaH)
	return surfaceLayout{x: (areaW - w) / 2, y: (areaH - h) / 2, w: w, h: h}
}

func (l surfaceLayout) contains(x, y int) bool {
	return x >= l.x && x < l.x+l.w && y >= l.y && y < l.y+l.h
}

// offsetAt maps a cursor column to an offset: the left edge is -100, the
// right edge +100.
func (l surfaceLayout) offsetAt(x int) float64 {
	if l.w <= 1 {
		return 0
	}
	t := float64(x-l.x) / float64(l.w-1)
	return unmagic.QuantizeOffset((t*2 - 1) * unmagic.OffsetLimit)
}
