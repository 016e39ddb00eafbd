// OSPilot - Desktop task agent runner
// License: MIT
//
// Copyright (c) 2026 OSPilot contributors

package device

import (
	"context"
	"fmt"
)

// Screenshot is one captured frame, base64-encoded.
type Screenshot struct {
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// Info describes the target surface. Coordinates in actions are absolute
// pixels within this screen space.
type Info struct {
	ScreenWidth  int `json:"screen_width"`
	ScreenHeight int `json:"screen_height"`
}

// Device abstracts the remote desktop. Implementations execute canonical
// actions; they never see dialect vocabulary.
type Device interface {
	// Info returns the screen geometry.
	Info(ctx context.Context) (*Info, error)

	// Capabilities lists the canonical action names the device can execute.
	Capabilities(ctx context.Context) ([]string, error)

	// Perform executes one action and returns any textual output.
	Perform(ctx context.Context, name string, params map[string]interface{}) (string, error)

	// Screenshot captures the current frame.
	Screenshot(ctx context.Context) (*Screenshot, error)
}

// CapabilityError reports an action the device cannot execute. The action
// vocabulary is fixed per run, so retrying cannot help.
type CapabilityError struct {
	Action string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("device has no capability for action %q", e.Action)
}

// Fatal marks the error as non-retryable.
func (e *CapabilityError) Fatal() bool { return true }
