package unmagic

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Normalization magnitudes. Control values are divided by these before they
// are applied as multiples of the canvas size.
const (
	OffsetMag  = 10000.0
	SlantMag   = 1000.0
	StretchMag = 10.0
)

// Control ranges and steps.
const (
	MinOffsetMagnitude     = 1.0
	MaxOffsetMagnitude     = 100.0
	DefaultOffsetMagnitude = 10.0

	OffsetLimit  = 100.0 // offset ranges over [-OffsetLimit, OffsetLimit]
	SlantLimit   = 100.0
	StretchLimit = 100.0

	OffsetStep  = 0.1
	SlantStep   = 1.0
	StretchStep = 1.0
)

// Params is an immutable snapshot of the numeric controls read by a single
// render call.
type Params struct {
	OffsetMagnitude float64 // [1, 100]
	Offset          float64 // [-100, 100]
	Slant           float64 // [-100, 100]
	Stretch         float64 // [-100, 100]
}

// DefaultParams returns the control values shown before the user touches
// anything.
func DefaultParams() Params {
	return Params{OffsetMagnitude: DefaultOffsetMagnitude}
}

// GhostTransform is the scale and translation applied to the second pass,
// both expressed about the canvas centre. Scale is applied before the
// translation, so DX and DY are in scaled units.
type GhostTransform struct {
	ScaleX, ScaleY float64
	DX, DY         float64
}

// IsIdentity reports whether the ghost layer coincides with the base layer.
func (g GhostTransform) IsIdentity() bool {
	return g.ScaleX == 1 && g.ScaleY == 1 && g.DX == 0 && g.DY == 0
}

// normalizedOffset returns offset * offsetMagnitude / OffsetMag, or zero
// when the product is not finite.
func (p Params) normalizedOffset() float64 {
	return finite(finite(p.Offset) * finite(p.OffsetMagnitude) / OffsetMag)
}

// Ghost computes the second-pass transform for a canvas of the given size.
// Non-finite inputs contribute nothing: a NaN slant leaves DY at zero, a NaN
// offset yields the identity transform.
func (p Params) Ghost(width, height float64) GhostTransform {
	n := p.normalizedOffset()

	scaleX := 1 + finite(p.Stretch)/StretchMag*math.Abs(n)
	if !isFinite(scaleX) {
		scaleX = 1
	}

	return GhostTransform{
		ScaleX: scaleX,
		ScaleY: 1,
		DX:     finite(n * finite(width)),
		DY:     finite(finite(p.Slant) / SlantMag * n * finite(height)),
	}
}

// ClampParams limits every control to its UI range. NaN values fall back to
// the defaults.
func ClampParams(p Params) Params {
	d := DefaultParams()
	return Params{
		OffsetMagnitude: ClampOffsetMagnitude(p.OffsetMagnitude, d.OffsetMagnitude),
		Offset:          clampOr(p.Offset, -OffsetLimit, OffsetLimit, d.Offset),
		Slant:           clampOr(p.Slant, -SlantLimit, SlantLimit, d.Slant),
		Stretch:         clampOr(p.Stretch, -StretchLimit, StretchLimit, d.Stretch),
	}
}

// ClampOffsetMagnitude limits v to [MinOffsetMagnitude, MaxOffsetMagnitude].
// An unparsable (NaN) entry keeps prev.
func ClampOffsetMagnitude(v, prev float64) float64 {
	return clampOr(v, MinOffsetMagnitude, MaxOffsetMagnitude, prev)
}

// QuantizeOffset rounds v to the nearest OffsetStep.
func QuantizeOffset(v float64) float64 {
	return QuantizeStep(v, OffsetStep)
}

// QuantizeStep rounds v to the nearest multiple of step. Halves round
// towards positive infinity.
func QuantizeStep(v, step float64) float64 {
	if step <= 0 || !isFinite(v) {
		return v
	}
	inv := 1 / step
	q := math.Floor(v*inv+0.5) / inv
	if q == 0 {
		return 0 // drop negative zero
	}
	return q
}

func clampOr(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return clamp(v, lo, hi)
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finite returns v, or zero when v is NaN or infinite.
func finite(v float64) float64 {
	if isFinite(v) {
		return v
	}
	return 0
}
