package unmagic

import (
	"slices"
	"strings"
	"testing"
)

func TestLoadScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"bad json", `{"steps": [`, "parse script"},
		{"no steps", `{"steps": []}`, "no steps"},
		{"unknown action", `{"steps": [{"action": "jump"}]}`, `unknown action "jump"`},
		{"unknown param", `{"steps": [{"action": "set", "param": "hue"}]}`, `unknown param "hue"`},
		{"negative wait", `{"steps": [{"action": "wait", "frames": -1}]}`, "negative frame count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScript([]byte(tt.json))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestScriptRunnerSequence(t *testing.T) {
	r, err := LoadScript([]byte(`{"steps": [
		{"action": "set", "param": "slant", "value": -20},
		{"action": "set", "param": "offsetMagnitude", "value": 50},
		{"action": "wait", "frames": 2},
		{"action": "capture", "label": "tilted"},
		{"action": "set", "param": "offset", "value": 12.5},
		{"action": "set", "param": "stretch", "value": 7}
	]}`))
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	c, _, _ := newTestController()

	if got := r.Step(c); len(got) != 0 {
		t.Errorf("frame 1 captures = %v, want none", got)
	}
	if c.Params().Slant != -20 || c.Params().OffsetMagnitude != 50 {
		t.Errorf("after frame 1: %+v", c.Params())
	}
	if got := r.Step(c); len(got) != 0 || r.Done() {
		t.Errorf("frame 2 captures = %v done = %v, want waiting", got, r.Done())
	}
	got := slices.Clone(r.Step(c))
	if !slices.Equal(got, []string{"tilted"}) {
		t.Errorf("frame 3 captures = %v, want [tilted]", got)
	}
	if !r.Done() {
		t.Error("script should be done after its last step")
	}
	want := Params{OffsetMagnitude: 50, Offset: 12.5, Slant: -20, Stretch: 7}
	if c.Params() != want {
		t.Errorf("Params = %+v, want %+v", c.Params(), want)
	}
	if c.Auto() {
		t.Error("scripted offset should switch auto off")
	}
	if got := r.Step(c); len(got) != 0 {
		t.Errorf("finished script still captures: %v", got)
	}
}

func TestScriptRunnerTrailingWait(t *testing.T) {
	r, err := LoadScript([]byte(`{"steps": [{"action": "wait", "frames": 3}]}`))
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	c, _, _ := newTestController()
	frames := 0
	for !r.Done() && frames < 10 {
		r.Step(c)
		frames++
	}
	if frames != 3 {
		t.Errorf("trailing wait took %d frames, want 3", frames)
	}
}

func TestScriptRunnerAutoAndDrag(t *testing.T) {
	r, err := LoadScript([]byte(`{"steps": [
		{"action": "drag", "enabled": true},
		{"action": "capture", "label": "dragging"},
		{"action": "wait", "frames": 1},
		{"action": "drag"},
		{"action": "auto"}
	]}`))
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	c, s, clock := newTestController()
	c.SetImage(gradientImage(2, 2))

	got := slices.Clone(r.Step(c))
	if !slices.Equal(got, []string{"dragging"}) {
		t.Errorf("captures = %v, want [dragging]", got)
	}
	if _, ok := c.Snapshot().State().(Dragging); !ok {
		t.Errorf("State() = %T, want Dragging", c.Snapshot().State())
	}

	clock.Tick()
	s.Advance()
	r.Step(c)
	if _, ok := c.Snapshot().State().(Ready); !ok {
		t.Errorf("State() = %T, want Ready", c.Snapshot().State())
	}
	if c.Auto() || c.Animating() {
		t.Error("auto step without enabled should stop the oscillator")
	}
	if !r.Done() {
		t.Error("script should be done")
	}
}
