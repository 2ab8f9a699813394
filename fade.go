package unmagic

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// HUDFadeDuration is how long the control overlay takes to fade in, in
// seconds.
const HUDFadeDuration = 0.5

// Fade animates an opacity between two values. Call Update(dt) each frame
// and read Value.
//
// There is no global animation manager; the owner calls Update itself.
type Fade struct {
	tween *gween.Tween
	from  float64
	Value float64
	Done  bool
}

// NewFade creates a fade from one opacity to another over duration seconds
// using the easing function.
func NewFade(from, to float64, duration float32, fn ease.TweenFunc) *Fade {
	return &Fade{
		tween: gween.New(float32(from), float32(to), duration, fn),
		from:  from,
		Value: from,
	}
}

// FadeIn returns the overlay fade: 0 to 1 over HUDFadeDuration with a
// quadratic ease-out.
func FadeIn() *Fade {
	return NewFade(0, 1, HUDFadeDuration, ease.OutQuad)
}

// Update advances the fade by dt seconds.
func (f *Fade) Update(dt float32) {
	if f.Done {
		return
	}
	val, finished := f.tween.Update(dt)
	f.Value = clamp(float64(val), 0, 1)
	f.Done = finished
}

// Reset restarts the fade from its start value.
func (f *Fade) Reset() {
	f.tween.Reset()
	f.Value = f.from
	f.Done = false
}
