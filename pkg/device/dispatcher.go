package device

import (
	"context"
	"fmt"
	"time"

	"github.com/ospilot/ospilot/pkg/action"
	"github.com/ospilot/ospilot/pkg/logger"
)

// DispatchResult is the outcome of executing one action: the device's
// textual output (often empty) and the screenshot taken afterwards.
type DispatchResult struct {
	Output     string
	Screenshot *Screenshot
}

// Dispatcher resolves canonical actions against device capabilities and
// executes them. Every dispatch ends with a fresh screenshot so the next
// model turn always observes the post-action screen.
type Dispatcher struct {
	device       Device
	capabilities map[string]bool
}

func NewDispatcher(device Device) *Dispatcher {
	return &Dispatcher{device: device}
}

func (d *Dispatcher) ensureCapabilities(ctx context.Context) error {
	if d.capabilities != nil {
		return nil
	}
	names, err := d.device.Capabilities(ctx)
	if err != nil {
		return fmt.Errorf("query device capabilities: %w", err)
	}
	d.capabilities = make(map[string]bool, len(names))
	for _, name := range names {
		d.capabilities[name] = true
	}
	return nil
}

// Dispatch executes one canonical action. take_screenshots performs no
// device operation of its own since a screenshot is captured afterwards
// regardless. The terminal result action is never dispatched here.
func (d *Dispatcher) Dispatch(ctx context.Context, a action.Action) (*DispatchResult, error) {
	if a.IsTerminal() {
		return nil, fmt.Errorf("terminal action %q cannot be dispatched", a.Name)
	}
	if err := d.ensureCapabilities(ctx); err != nil {
		return nil, err
	}
	if !d.capabilities[a.Name] {
		return nil, &CapabilityError{Action: a.Name}
	}

	result := &DispatchResult{}
	if a.Name != action.TakeScreenshots {
		start := time.Now()
		output, err := d.device.Perform(ctx, a.Name, a.Parameters)
		if err != nil {
			return nil, fmt.Errorf("perform %s: %w", a.Name, err)
		}
		result.Output = output
		logger.DebugCF("device", "Action performed", map[string]interface{}{
			"action":      a.Name,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}

	shot, err := d.device.Screenshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("screenshot after %s: %w", a.Name, err)
	}
	result.Screenshot = shot
	return result, nil
}
