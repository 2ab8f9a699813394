package unmagic

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Inset returns r shrunk by d on every edge. Width and height never go
// below zero.
func (r Rect) Inset(d float64) Rect {
	return Rect{
		X:      r.X + d,
		Y:      r.Y + d,
		Width:  max(r.Width-2*d, 0),
		Height: max(r.Height-2*d, 0),
	}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// CompositeOp selects how a drawn image combines with the canvas content.
type CompositeOp uint8

const (
	CompositeSourceOver CompositeOp = iota // standard alpha blending
	CompositeDifference                    // |destination - source| per channel
	CompositeCopy                          // source replaces destination
)

// String returns the canvas-style name of the operation.
func (op CompositeOp) String() string {
	switch op {
	case CompositeSourceOver:
		return "source-over"
	case CompositeDifference:
		return "difference"
	case CompositeCopy:
		return "copy"
	default:
		return "unknown"
	}
}
