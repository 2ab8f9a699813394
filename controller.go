package unmagic

import "image"

// Snapshot is a copy of the controller state taken at one instant.
type Snapshot struct {
	Params Params
	Auto   bool
	Drag   bool
	Image  image.Image
}

// State returns the render state the snapshot selects.
func (s Snapshot) State() RenderState {
	return SelectState(s.Drag, s.Image, s.Params)
}

// Controller owns the parameters, the loaded image and the oscillator. All
// mutations happen on the frame goroutine in response to discrete events
// (a tick, a drop, a control change); every change is pushed to subscribers
// so they can redraw.
type Controller struct {
	params Params
	auto   bool
	drag   bool
	img    image.Image

	osc     *Oscillator
	subs    map[int]func(Snapshot)
	subKeys []int
	nextSub int
}

// NewController creates a controller with default parameters and auto mode
// on. The oscillator runs on sched and reads time from clock.
func NewController(sched *FrameScheduler, clock Clock) *Controller {
	c := &Controller{
		params: DefaultParams(),
		auto:   true,
		subs:   make(map[int]func(Snapshot)),
	}
	c.osc = NewOscillator(sched, clock, c.applyOffset)
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{Params: c.params, Auto: c.auto, Drag: c.drag, Image: c.img}
}

// Params returns the current parameters.
func (c *Controller) Params() Params { return c.params }

// Auto reports whether the offset is being animated (or will be, once an
// image loads).
func (c *Controller) Auto() bool { return c.auto }

// Animating reports whether the oscillator is currently scheduled.
func (c *Controller) Animating() bool { return c.osc.Running() }

// Subscribe registers fn to receive a snapshot after every change. The
// returned function removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subKeys = append(c.subKeys, id)
	return func() {
		delete(c.subs, id)
		for i, k := range c.subKeys {
			if k == id {
				c.subKeys = append(c.subKeys[:i], c.subKeys[i+1:]...)
				break
			}
		}
	}
}

// SetOffset is a manual offset change, e.g. dragging the offset control. It
// turns auto mode off in the same update: the oscillator is cancelled before
// the value is stored, so no pending tick can overwrite it.
func (c *Controller) SetOffset(v float64) {
	c.osc.Stop()
	c.auto = false
	c.params.Offset = clampOr(QuantizeOffset(v), -OffsetLimit, OffsetLimit, c.params.Offset)
	c.notify()
}

// SetAuto switches automatic oscillation on or off. Turning it on restarts
// the sine wave from the current time if an image is loaded.
func (c *Controller) SetAuto(enabled bool) {
	if c.auto == enabled {
		return
	}
	c.auto = enabled
	c.syncOscillator()
	c.notify()
}

// ToggleAuto flips auto mode.
func (c *Controller) ToggleAuto() {
	c.SetAuto(!c.auto)
}

// SetOffsetMagnitude sets the offset magnitude, clamped to
// [MinOffsetMagnitude, MaxOffsetMagnitude]. NaN keeps the current value.
func (c *Controller) SetOffsetMagnitude(v float64) {
	c.params.OffsetMagnitude = ClampOffsetMagnitude(v, c.params.OffsetMagnitude)
	c.notify()
}

// SetSlant sets the slant control, clamped and rounded to whole steps.
func (c *Controller) SetSlant(v float64) {
	c.params.Slant = clampOr(QuantizeStep(v, SlantStep), -SlantLimit, SlantLimit, c.params.Slant)
	c.notify()
}

// SetStretch sets the stretch control, clamped and rounded to whole steps.
func (c *Controller) SetStretch(v float64) {
	c.params.Stretch = clampOr(QuantizeStep(v, StretchStep), -StretchLimit, StretchLimit, c.params.Stretch)
	c.notify()
}

// SetDrag records whether a file is being dragged over the surface.
func (c *Controller) SetDrag(active bool) {
	if c.drag == active {
		return
	}
	c.drag = active
	c.notify()
}

// SetImage installs a decoded image. A nil image returns to the empty state
// and stops the oscillator.
func (c *Controller) SetImage(img image.Image) {
	c.img = img
	c.syncOscillator()
	c.notify()
}

// syncOscillator runs the oscillator exactly when auto mode is on and an
// image is loaded.
func (c *Controller) syncOscillator() {
	if c.auto && c.img != nil {
		c.osc.Start()
		return
	}
	c.osc.Stop()
}

func (c *Controller) applyOffset(v float64) {
	c.params.Offset = v
	c.notify()
}

func (c *Controller) notify() {
	if len(c.subKeys) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, id := range append([]int(nil), c.subKeys...) {
		if fn, ok := c.subs[id]; ok {
			fn(snap)
		}
	}
}
