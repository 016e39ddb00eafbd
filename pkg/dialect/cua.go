package dialect

import (
	"github.com/ospilot/ospilot/pkg/action"
	"github.com/ospilot/ospilot/pkg/providers/protocoltypes"
)

// CUAParser decodes OpenAI computer-use action objects. Tool call names
// carry the action type directly (click, drag, keypress, ...). A response
// with no computer calls but assistant text is the model's final answer.
type CUAParser struct{}

func (p *CUAParser) Name() string { return DialectCUA }

func (p *CUAParser) Parse(resp *protocoltypes.ModelResponse) (*ParseResult, error) {
	result := &ParseResult{Thought: resp.Reasoning}
	if result.Thought == "" {
		result.Thought = resp.Text
	}

	if len(resp.ToolCalls) == 0 {
		if resp.Text != "" {
			result.Actions = append(result.Actions,
				action.New(action.Result, map[string]interface{}{"value": resp.Text}))
		}
		return result, nil
	}

	for _, tc := range resp.ToolCalls {
		a, err := p.parseOne(tc)
		if err != nil {
			return nil, err
		}
		result.Actions = append(result.Actions, a)
	}
	return result, nil
}

func (p *CUAParser) parseOne(tc protocoltypes.ToolCall) (action.Action, error) {
	args := tc.Arguments
	switch tc.Name {
	case "click":
		x, _ := intArg(args, "x")
		y, _ := intArg(args, "y")
		button, ok := strArg(args, "button")
		if !ok {
			button = "left"
		}
		return action.New(action.Click, map[string]interface{}{
			"x": x, "y": y, "button": button,
		}), nil

	case "double_click":
		x, _ := intArg(args, "x")
		y, _ := intArg(args, "y")
		return action.New(action.DoubleClick, map[string]interface{}{"x": x, "y": y}), nil

	case "scroll":
		// The dialect reports a pixel delta with positive meaning down;
		// canonical clicks are positive up, ten pixels per click.
		scrollY, _ := intArg(args, "scroll_y")
		return action.New(action.Scroll, map[string]interface{}{
			"clicks": -action.FloorDiv(scrollY, 10),
		}), nil

	case "type":
		text, _ := strArg(args, "text")
		return action.New(action.TypeText, map[string]interface{}{"text": text}), nil

	case "move":
		x, _ := intArg(args, "x")
		y, _ := intArg(args, "y")
		return action.New(action.MoveMouse, map[string]interface{}{"x": x, "y": y}), nil

	case "keypress":
		keys := action.NormalizeKeys(strSlice(args["keys"]))
		return action.New(action.HotKey, map[string]interface{}{"keys": keys}), nil

	case "drag":
		// The first path point is the drag origin, already under the
		// cursor; the destination is the second point when present.
		path, _ := args["path"].([]interface{})
		if len(path) == 0 {
			return action.Action{}, &UnknownActionError{Dialect: DialectCUA, Action: "drag(empty path)"}
		}
		target := path[0]
		if len(path) > 1 {
			target = path[1]
		}
		x, y, _ := coordPair(target)
		return action.New(action.DragMouse, map[string]interface{}{"x": x, "y": y}), nil

	case "wait":
		seconds := 1
		if ms, ok := intArg(args, "ms"); ok {
			seconds = ms / 1000
		}
		return action.New(action.Wait, map[string]interface{}{"seconds": seconds}), nil

	case "screenshot":
		return action.New(action.TakeScreenshots, nil), nil

	default:
		return action.Action{}, &UnknownActionError{Dialect: DialectCUA, Action: tc.Name}
	}
}
