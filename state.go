package unmagic

import "image"

// RenderState is one of the three mutually exclusive things the compositor
// can draw: [Empty], [Dragging] or [Ready]. Build one with [SelectState] so
// the drag-over-everything priority holds.
type RenderState interface {
	renderState()
}

// Empty is the placeholder shown before any image has loaded.
type Empty struct{}

// Dragging is shown while a file is being dragged over the surface.
type Dragging struct{}

// Ready draws the two-pass illusion for Image using Params.
type Ready struct {
	Image  image.Image
	Params Params
}

func (Empty) renderState()    {}
func (Dragging) renderState() {}
func (Ready) renderState()    {}

// SelectState picks the render state for the given inputs. A drag in
// progress wins over everything; without an image the result is Empty
// whatever the parameters say.
func SelectState(dragActive bool, img image.Image, p Params) RenderState {
	switch {
	case dragActive:
		return Dragging{}
	case img == nil:
		return Empty{}
	default:
		return Ready{Image: img, Params: p}
	}
}
