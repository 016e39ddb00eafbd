package device

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ospilot/ospilot/pkg/action"
)

type fakeDevice struct {
	capabilities []string
	performed    []string
	screenshots  int
	performErr   error
}

func (f *fakeDevice) Info(ctx context.Context) (*Info, error) {
	return &Info{ScreenWidth: 1920, ScreenHeight: 1080}, nil
}

func (f *fakeDevice) Capabilities(ctx context.Context) ([]string, error) {
	return f.capabilities, nil
}

func (f *fakeDevice) Perform(ctx context.Context, name string, params map[string]interface{}) (string, error) {
	if f.performErr != nil {
		return "", f.performErr
	}
	f.performed = append(f.performed, name)
	return "", nil
}

func (f *fakeDevice) Screenshot(ctx context.Context) (*Screenshot, error) {
	f.screenshots++
	return &Screenshot{MediaType: "image/png", Data: "aGVsbG8="}, nil
}

func allCapabilities() []string {
	names := action.Names()
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != action.Result {
			out = append(out, n)
		}
	}
	return out
}

func TestDispatchPerformsAndScreenshots(t *testing.T) {
	dev := &fakeDevice{capabilities: allCapabilities()}
	d := NewDispatcher(dev)

	result, err := d.Dispatch(context.Background(), action.New(action.Click, map[string]interface{}{
		"x": 10, "y": 20, "button": "left",
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{action.Click}, dev.performed)
	assert.Equal(t, 1, dev.screenshots)
	require.NotNil(t, result.Screenshot)
	assert.Equal(t, "image/png", result.Screenshot.MediaType)
}

func TestDispatchScreenshotActionSkipsPerform(t *testing.T) {
	dev := &fakeDevice{capabilities: allCapabilities()}
	d := NewDispatcher(dev)

	result, err := d.Dispatch(context.Background(), action.New(action.TakeScreenshots, nil))
	require.NoError(t, err)
	assert.Empty(t, dev.performed)
	assert.Equal(t, 1, dev.screenshots)
	assert.NotNil(t, result.Screenshot)
}

func TestDispatchMissingCapabilityIsFatal(t *testing.T) {
	dev := &fakeDevice{capabilities: []string{action.Click}}
	d := NewDispatcher(dev)

	_, err := d.Dispatch(context.Background(), action.New(action.Scroll, map[string]interface{}{"clicks": 2}))
	require.Error(t, err)

	var capErr *CapabilityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, action.Scroll, capErr.Action)
	assert.True(t, capErr.Fatal())
	assert.Equal(t, 0, dev.screenshots)
}

func TestDispatchRejectsTerminalAction(t *testing.T) {
	dev := &fakeDevice{capabilities: allCapabilities()}
	d := NewDispatcher(dev)

	_, err := d.Dispatch(context.Background(), action.New(action.Result, map[string]interface{}{"value": "done"}))
	assert.Error(t, err)
	assert.Empty(t, dev.performed)
}

func TestDispatchPropagatesPerformError(t *testing.T) {
	dev := &fakeDevice{capabilities: allCapabilities(), performErr: errors.New("display locked")}
	d := NewDispatcher(dev)

	_, err := d.Dispatch(context.Background(), action.New(action.TypeText, map[string]interface{}{"text": "hi"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display locked")
	assert.Equal(t, 0, dev.screenshots)
}
