package dialect

import (
	"github.com/ospilot/ospilot/pkg/action"
	"github.com/ospilot/ospilot/pkg/providers/protocoltypes"
)

// claudeActions maps the Anthropic computer-use tool vocabulary onto the
// canonical action set.
var claudeActions = map[string]string{
	"key":             action.HotKey,
	"type":            action.TypeText,
	"mouse_move":      action.MoveMouse,
	"left_click":      action.Click,
	"left_click_drag": action.DragMouse,
	"right_click":     action.Click,
	"middle_click":    action.Click,
	"double_click":    action.DoubleClick,
	"screenshot":      action.TakeScreenshots,
	"scroll":          action.Scroll,
	"wait":            action.Wait,
}

// ClaudeParser decodes Anthropic computer-use tool calls. The model signals
// completion by ending its turn without requesting a tool, so an end_turn
// stop reason becomes the terminal result action.
type ClaudeParser struct{}

func (p *ClaudeParser) Name() string { return DialectClaude }

func (p *ClaudeParser) Parse(resp *protocoltypes.ModelResponse) (*ParseResult, error) {
	if resp.StopReason == protocoltypes.StopEndTurn {
		return &ParseResult{
			Thought: resp.Text,
			Actions: []action.Action{
				action.New(action.Result, map[string]interface{}{"value": resp.Text}),
			},
		}, nil
	}

	result := &ParseResult{Thought: resp.Text}
	for _, tc := range resp.ToolCalls {
		name, _ := strArg(tc.Arguments, "action")
		canonical, ok := claudeActions[name]
		if !ok {
			return nil, &UnknownActionError{Dialect: DialectClaude, Action: name}
		}

		params := map[string]interface{}{}
		for k, v := range tc.Arguments {
			if k != "action" {
				params[k] = v
			}
		}

		if x, y, ok := coordPair(params["coordinate"]); ok {
			params["x"] = x
			params["y"] = y
			delete(params, "coordinate")
		}

		switch canonical {
		case action.Click:
			switch name {
			case "right_click":
				params["button"] = "right"
			case "middle_click":
				params["button"] = "middle"
			default:
				params["button"] = "left"
			}
		case action.HotKey:
			// The tool delivers chords as "+"-joined text ("ctrl+c").
			if text, ok := strArg(params, "text"); ok {
				params["keys"] = action.SplitHotKeys(text)
				delete(params, "text")
			} else if keys := strSlice(params["keys"]); keys != nil {
				params["keys"] = action.NormalizeKeys(keys)
			}
		case action.Scroll:
			amount, _ := intArg(params, "scroll_amount")
			direction, _ := strArg(params, "scroll_direction")
			clicks := amount
			if direction == "down" {
				clicks = -amount
			}
			params = map[string]interface{}{"clicks": clicks}
			if x, y, ok := coordPair(tc.Arguments["coordinate"]); ok {
				params["x"] = x
				params["y"] = y
			}
		case action.Wait:
			if seconds, ok := intArg(params, "duration"); ok {
				params["seconds"] = seconds
				delete(params, "duration")
			}
		}

		result.Actions = append(result.Actions, action.New(canonical, params))
	}

	return result, nil
}
