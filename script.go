package unmagic

import (
	"encoding/json"
	"fmt"
)

// scriptStep is a single action in a script.
type scriptStep struct {
	Action  string  `json:"action"`
	Param   string  `json:"param,omitempty"`
	Value   float64 `json:"value,omitempty"`
	Enabled bool    `json:"enabled,omitempty"`
	Label   string  `json:"label,omitempty"`
	Frames  int     `json:"frames,omitempty"`
}

// script is the top-level JSON structure for a script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

// Script actions.
const (
	ActionSet     = "set"     // set param to value (offset counts as a manual change)
	ActionAuto    = "auto"    // switch auto mode to enabled
	ActionDrag    = "drag"    // set the drag-in-progress flag to enabled
	ActionWait    = "wait"    // let frames frames pass
	ActionCapture = "capture" // capture the next rendered frame under label
)

// Script parameter names accepted by ActionSet.
const (
	ParamOffset          = "offset"
	ParamOffsetMagnitude = "offsetMagnitude"
	ParamSlant           = "slant"
	ParamStretch         = "stretch"
)

// ScriptRunner replays control changes and frame captures against a
// Controller, one frame at a time. It drives the headless renderer and
// end-to-end tests.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	captures  []string
}

// LoadScript parses a JSON script and validates every step.
//
//	{"steps": [
//		{"action": "set", "param": "slant", "value": -20},
//		{"action": "wait", "frames": 30},
//		{"action": "capture", "label": "tilted"}
//	]}
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var s script
	if err := json.Unmarshal(jsonData, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("parse script: step %d: %w", i, err)
		}
	}
	return &ScriptRunner{steps: s.Steps}, nil
}

func (st scriptStep) validate() error {
	switch st.Action {
	case ActionSet:
		switch st.Param {
		case ParamOffset, ParamOffsetMagnitude, ParamSlant, ParamStretch:
			return nil
		}
		return fmt.Errorf("unknown param %q", st.Param)
	case ActionAuto, ActionDrag, ActionCapture:
		return nil
	case ActionWait:
		if st.Frames < 0 {
			return fmt.Errorf("negative frame count %d", st.Frames)
		}
		return nil
	}
	return fmt.Errorf("unknown action %q", st.Action)
}

// Done reports whether every step has been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Step advances the script by one frame. Steps run back to back until a
// wait is reached or the script ends. It returns the capture labels queued
// for this frame; the host captures them after rendering.
func (r *ScriptRunner) Step(ctrl *Controller) []string {
	r.captures = r.captures[:0]
	if r.done {
		return r.captures
	}
	if r.waitCount > 0 {
		r.waitCount--
		if r.waitCount == 0 && r.cursor >= len(r.steps) {
			r.done = true
		}
		return r.captures
	}

	for r.cursor < len(r.steps) {
		st := r.steps[r.cursor]
		r.cursor++
		if st.Action == ActionWait {
			if st.Frames > 0 {
				r.waitCount = st.Frames - 1 // this frame counts as one
			}
			break
		}
		r.apply(ctrl, st)
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
	return r.captures
}

func (r *ScriptRunner) apply(ctrl *Controller, st scriptStep) {
	switch st.Action {
	case ActionSet:
		switch st.Param {
		case ParamOffset:
			ctrl.SetOffset(st.Value)
		case ParamOffsetMagnitude:
			ctrl.SetOffsetMagnitude(st.Value)
		case ParamSlant:
			ctrl.SetSlant(st.Value)
		case ParamStretch:
			ctrl.SetStretch(st.Value)
		}
	case ActionAuto:
		ctrl.SetAuto(st.Enabled)
	case ActionDrag:
		ctrl.SetDrag(st.Enabled)
	case ActionCapture:
		r.captures = append(r.captures, st.Label)
	}
}
