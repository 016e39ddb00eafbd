// OSPilot - Desktop task agent runner
// License: MIT
//
// Copyright (c) 2026 OSPilot contributors

package action

import (
	"fmt"
	"sort"
)

// Canonical action names. Every dialect parser maps its provider-specific
// vocabulary into this closed set; the dispatcher resolves these names
// against device capabilities.
const (
	Click           = "click"
	DoubleClick     = "double_click"
	DragMouse       = "drag_mouse"
	MoveMouse       = "move_mouse"
	TypeText        = "type_text"
	HotKey          = "hot_key"
	Scroll          = "scroll"
	Wait            = "wait"
	TakeScreenshots = "take_screenshots"
	Result          = "result"
)

// requiredParams lists the parameter keys that must be present for each
// canonical action. Keys not listed here are optional and pass through
// to the device untouched.
var requiredParams = map[string][]string{
	Click:           {"x", "y", "button"},
	DoubleClick:     {"x", "y"},
	DragMouse:       {"x", "y"},
	MoveMouse:       {"x", "y"},
	TypeText:        {"text"},
	HotKey:          {"keys"},
	Scroll:          {"clicks"},
	Wait:            {"seconds"},
	TakeScreenshots: {},
	Result:          {"value"},
}

// Action is the normalized representation of one device operation.
// Parameter semantics: coordinates are absolute pixels in the device's
// screen space; scroll clicks are signed with positive meaning scroll up;
// hot_key keys are pressed in order and released in reverse order.
type Action struct {
	Name       string                 `json:"name"`
	Parameters map[string]interface{} `json:"parameters"`
}

// New builds an action with a non-nil parameter map.
func New(name string, params map[string]interface{}) Action {
	if params == nil {
		params = map[string]interface{}{}
	}
	return Action{Name: name, Parameters: params}
}

// IsTerminal reports whether the action ends the task.
func (a Action) IsTerminal() bool {
	return a.Name == Result
}

// Known reports whether name belongs to the canonical vocabulary.
func Known(name string) bool {
	_, ok := requiredParams[name]
	return ok
}

// Names returns the canonical vocabulary in sorted order.
func Names() []string {
	names := make([]string, 0, len(requiredParams))
	for name := range requiredParams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the action name against the canonical vocabulary and
// verifies all required parameters are present.
func (a Action) Validate() error {
	required, ok := requiredParams[a.Name]
	if !ok {
		return fmt.Errorf("unknown canonical action %q", a.Name)
	}
	for _, key := range required {
		if _, present := a.Parameters[key]; !present {
			return fmt.Errorf("action %q missing required parameter %q", a.Name, key)
		}
	}
	return nil
}

// Int coerces a parameter to int, handling the float64 that JSON decoding
// produces for every number.
func (a Action) Int(key string) (int, bool) {
	switch v := a.Parameters[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// String returns a string parameter.
func (a Action) String(key string) (string, bool) {
	s, ok := a.Parameters[key].(string)
	return s, ok
}

// FloorDiv divides a by b rounding toward negative infinity, matching the
// semantics the scroll unit conversions are specified in. Go's integer
// division truncates toward zero, which differs for negative operands
// (-25/10 is -2 truncated but -3 floored).
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
