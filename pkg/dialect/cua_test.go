package dialect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ospilot/ospilot/pkg/action"
	"github.com/ospilot/ospilot/pkg/providers/protocoltypes"
)

func cuaResponse(name string, args map[string]interface{}) *protocoltypes.ModelResponse {
	return &protocoltypes.ModelResponse{
		StopReason: protocoltypes.StopToolUse,
		ToolCalls: []protocoltypes.ToolCall{
			{ID: "call_abc", Name: name, Arguments: args},
		},
	}
}

func TestCUAParseClickDefaultsLeftButton(t *testing.T) {
	p := &CUAParser{}
	result, err := p.Parse(cuaResponse("click", map[string]interface{}{
		"x": float64(24), "y": float64(150),
	}))
	require.NoError(t, err)

	a := result.Actions[0]
	assert.Equal(t, action.Click, a.Name)
	assert.Equal(t, 24, a.Parameters["x"])
	assert.Equal(t, 150, a.Parameters["y"])
	assert.Equal(t, "left", a.Parameters["button"])
	assert.NoError(t, a.Validate())
}

func TestCUAParseDragPicksSecondPathPoint(t *testing.T) {
	p := &CUAParser{}
	result, err := p.Parse(cuaResponse("drag", map[string]interface{}{
		"path": []interface{}{
			[]interface{}{float64(24), float64(150)},
			[]interface{}{float64(100), float64(200)},
		},
	}))
	require.NoError(t, err)

	a := result.Actions[0]
	assert.Equal(t, action.DragMouse, a.Name)
	assert.Equal(t, 100, a.Parameters["x"])
	assert.Equal(t, 200, a.Parameters["y"])
}

func TestCUAParseDragSinglePointPath(t *testing.T) {
	p := &CUAParser{}
	result, err := p.Parse(cuaResponse("drag", map[string]interface{}{
		"path": []interface{}{
			map[string]interface{}{"x": float64(24), "y": float64(150)},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, 24, result.Actions[0].Parameters["x"])
	assert.Equal(t, 150, result.Actions[0].Parameters["y"])
}

func TestCUAParseScrollFlipsSignAndDividesByTen(t *testing.T) {
	p := &CUAParser{}

	result, err := p.Parse(cuaResponse("scroll", map[string]interface{}{
		"scroll_y": float64(-30),
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Actions[0].Parameters["clicks"])

	result, err = p.Parse(cuaResponse("scroll", map[string]interface{}{
		"scroll_y": float64(23),
	}))
	require.NoError(t, err)
	assert.Equal(t, -2, result.Actions[0].Parameters["clicks"])
}

func TestCUAParseKeypressResolvesAliases(t *testing.T) {
	p := &CUAParser{}
	result, err := p.Parse(cuaResponse("keypress", map[string]interface{}{
		"keys": []interface{}{"CTRL", "C"},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"ctrl", "c"}, result.Actions[0].Parameters["keys"])

	result, err = p.Parse(cuaResponse("keypress", map[string]interface{}{
		"keys": []interface{}{"esc", "ArrowDown", "super"},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"escape", "down", "command"}, result.Actions[0].Parameters["keys"])
}

func TestCUAParseWaitConvertsMilliseconds(t *testing.T) {
	p := &CUAParser{}
	result, err := p.Parse(cuaResponse("wait", map[string]interface{}{"ms": float64(2000)}))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Actions[0].Parameters["seconds"])

	result, err = p.Parse(cuaResponse("wait", map[string]interface{}{}))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Actions[0].Parameters["seconds"])
}

func TestCUAParseMessageOnlyIsTerminal(t *testing.T) {
	p := &CUAParser{}
	result, err := p.Parse(&protocoltypes.ModelResponse{
		Text:       "All done, the file is renamed.",
		StopReason: protocoltypes.StopEndTurn,
	})
	require.NoError(t, err)
	require.Len(t, result.Actions, 1)
	assert.Equal(t, action.Result, result.Actions[0].Name)
	assert.Equal(t, "All done, the file is renamed.", result.Actions[0].Parameters["value"])
}

func TestCUAParseEmptyResponseYieldsNoActions(t *testing.T) {
	p := &CUAParser{}
	result, err := p.Parse(&protocoltypes.ModelResponse{StopReason: protocoltypes.StopEndTurn})
	require.NoError(t, err)
	assert.Empty(t, result.Actions)
}

func TestCUAParseUnknownActionIsFatal(t *testing.T) {
	p := &CUAParser{}
	_, err := p.Parse(cuaResponse("teleport", map[string]interface{}{}))
	require.Error(t, err)

	var unknown *UnknownActionError
	require.True(t, errors.As(err, &unknown))
	assert.True(t, unknown.Fatal())
}
