package dialect

import (
	"github.com/ospilot/ospilot/pkg/action"
	"github.com/ospilot/ospilot/pkg/providers/protocoltypes"
)

// QwenParser decodes the Qwen computer_use convention: the model emits
// <tool_call> JSON blocks inline in its text, with any prose before the
// first block serving as the thought.
type QwenParser struct{}

func (p *QwenParser) Name() string { return DialectQwen }

func (p *QwenParser) Parse(resp *protocoltypes.ModelResponse) (*ParseResult, error) {
	calls, thought := protocoltypes.ExtractTaggedToolCalls(resp.Text)
	calls = append(calls, resp.ToolCalls...)

	result := &ParseResult{Thought: thought}
	for _, tc := range calls {
		a, err := p.parseOne(tc.Arguments, thought)
		if err != nil {
			return nil, err
		}
		result.Actions = append(result.Actions, a)
	}
	return result, nil
}

func (p *QwenParser) parseOne(args map[string]interface{}, thought string) (action.Action, error) {
	name, _ := strArg(args, "action")
	params := map[string]interface{}{}

	putCoordinate := func() {
		if x, y, ok := coordPair(args["coordinate"]); ok {
			params["x"] = x
			params["y"] = y
		}
	}

	switch name {
	case "key":
		params["keys"] = action.NormalizeKeys(strSlice(args["keys"]))
		return action.New(action.HotKey, params), nil

	case "type":
		text, _ := strArg(args, "text")
		params["text"] = text
		return action.New(action.TypeText, params), nil

	case "mouse_move":
		putCoordinate()
		return action.New(action.MoveMouse, params), nil

	case "left_click", "right_click", "middle_click":
		params["button"] = map[string]string{
			"left_click":   "left",
			"right_click":  "right",
			"middle_click": "middle",
		}[name]
		putCoordinate()
		return action.New(action.Click, params), nil

	case "double_click":
		params["button"] = "left"
		putCoordinate()
		return action.New(action.DoubleClick, params), nil

	case "left_click_drag":
		putCoordinate()
		return action.New(action.DragMouse, params), nil

	case "scroll":
		// Pixels are positive up, same sign convention as canonical
		// clicks, so only the unit conversion applies.
		pixels, _ := intArg(args, "pixels")
		params["clicks"] = action.FloorDiv(pixels, 10)
		return action.New(action.Scroll, params), nil

	case "wait":
		seconds, _ := intArg(args, "time")
		params["seconds"] = seconds
		return action.New(action.Wait, params), nil

	case "terminate":
		status, _ := strArg(args, "status")
		params["value"] = "Status: " + status + " " + thought
		return action.New(action.Result, params), nil

	default:
		return action.Action{}, &UnknownActionError{Dialect: DialectQwen, Action: name}
	}
}
