// OSPilot - Desktop task agent runner
// License: MIT
//
// Copyright (c) 2026 OSPilot contributors

package openaiprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"

	"github.com/ospilot/ospilot/pkg/logger"
	"github.com/ospilot/ospilot/pkg/providers/protocoltypes"
)

const defaultModel = "gpt-5.2"

// Provider drives OpenAI models through the Responses API. The desktop
// vocabulary is declared as one function tool per action; the cua
// dialect parser canonicalizes the calls.
type Provider struct {
	client *openai.Client
	model  string
	screen protocoltypes.ScreenInfo
}

func NewProvider(token, apiBase, model string, screen protocoltypes.ScreenInfo) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(token)}
	if apiBase != "" {
		opts = append(opts, option.WithBaseURL(apiBase))
	}
	client := openai.NewClient(opts...)
	if model == "" {
		model = defaultModel
	}
	return &Provider{client: &client, model: model, screen: screen}
}

// NewProviderWithClient is used by tests to point at a stub server.
func NewProviderWithClient(client *openai.Client, model string, screen protocoltypes.ScreenInfo) *Provider {
	if model == "" {
		model = defaultModel
	}
	return &Provider{client: client, model: model, screen: screen}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Generate(ctx context.Context, system string, history []protocoltypes.Message) (*protocoltypes.ModelResponse, error) {
	params := responses.ResponseNewParams{
		Model: p.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: translateHistory(history),
		},
		Tools: actionTools(p.screen),
		Store: openai.Opt(false),
	}
	if system != "" {
		params.Instructions = openai.Opt(system)
	}

	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai API call: %w", err)
	}
	return parseResponse(resp), nil
}

func translateHistory(history []protocoltypes.Message) responses.ResponseInputParam {
	var items responses.ResponseInputParam
	for _, msg := range history {
		switch msg.Role {
		case "user":
			if msg.ToolCallID != "" {
				// Function outputs are text-only; the screenshot rides
				// along as a separate user image message.
				items = append(items, responses.ResponseInputItemUnionParam{
					OfFunctionCallOutput: &responses.ResponseInputItemFunctionCallOutputParam{
						CallID: msg.ToolCallID,
						Output: responses.ResponseInputItemFunctionCallOutputOutputUnionParam{
							OfString: openai.Opt(functionOutputText(msg)),
						},
					},
				})
			}
			if content := userContent(msg); content != nil {
				items = append(items, responses.ResponseInputItemUnionParam{
					OfMessage: &responses.EasyInputMessageParam{
						Role:    responses.EasyInputMessageRoleUser,
						Content: responses.EasyInputMessageContentUnionParam{OfInputItemContentList: content},
						Type:    responses.EasyInputMessageTypeMessage,
					},
				})
			}
		case "assistant":
			if msg.Content != "" {
				items = append(items, responses.ResponseInputItemUnionParam{
					OfMessage: &responses.EasyInputMessageParam{
						Role:    responses.EasyInputMessageRoleAssistant,
						Content: responses.EasyInputMessageContentUnionParam{OfString: openai.Opt(msg.Content)},
						Type:    responses.EasyInputMessageTypeMessage,
					},
				})
			}
			for _, tc := range msg.ToolCalls {
				argsJSON, err := json.Marshal(tc.Arguments)
				if err != nil {
					logger.WarnCF("provider", "Skipping unmarshalable tool call in history", map[string]interface{}{
						"call_id": tc.ID,
					})
					continue
				}
				items = append(items, responses.ResponseInputItemUnionParam{
					OfFunctionCall: &responses.ResponseFunctionToolCallParam{
						CallID:    tc.ID,
						Name:      tc.Name,
						Arguments: string(argsJSON),
					},
				})
			}
		}
	}
	return items
}

func functionOutputText(msg protocoltypes.Message) string {
	if msg.Content != "" {
		return msg.Content
	}
	return "done"
}

func userContent(msg protocoltypes.Message) responses.ResponseInputMessageContentListParam {
	var content responses.ResponseInputMessageContentListParam
	if msg.Content != "" && msg.ToolCallID == "" {
		content = append(content, responses.ResponseInputContentUnionParam{
			OfInputText: &responses.ResponseInputTextParam{Text: msg.Content},
		})
	}
	for _, img := range msg.Images {
		if img.Removed {
			continue
		}
		content = append(content, responses.ResponseInputContentUnionParam{
			OfInputImage: &responses.ResponseInputImageParam{
				ImageURL: openai.Opt(fmt.Sprintf("data:%s;base64,%s", img.MediaType, img.Data)),
				Detail:   responses.ResponseInputImageDetailAuto,
			},
		})
	}
	return content
}

type toolSpec struct {
	name        string
	description string
	properties  map[string]interface{}
	required    []string
}

func actionTools(screen protocoltypes.ScreenInfo) []responses.ToolUnionParam {
	coord := func(axis string) map[string]interface{} {
		return map[string]interface{}{
			"type":        "integer",
			"description": fmt.Sprintf("%s pixel coordinate on the %dx%d screen", axis, screen.Width, screen.Height),
		}
	}
	specs := []toolSpec{
		{
			name:        "click",
			description: "Click the mouse at a coordinate.",
			properties: map[string]interface{}{
				"x": coord("x"), "y": coord("y"),
				"button": map[string]interface{}{"type": "string", "enum": []string{"left", "right", "middle"}},
			},
			required: []string{"x", "y"},
		},
		{
			name:        "double_click",
			description: "Double-click the left mouse button at a coordinate.",
			properties:  map[string]interface{}{"x": coord("x"), "y": coord("y")},
			required:    []string{"x", "y"},
		},
		{
			name:        "scroll",
			description: "Scroll the mouse wheel. Positive scroll_y scrolls down.",
			properties: map[string]interface{}{
				"x": coord("x"), "y": coord("y"),
				"scroll_x": map[string]interface{}{"type": "integer"},
				"scroll_y": map[string]interface{}{"type": "integer"},
			},
			required: []string{"scroll_y"},
		},
		{
			name:        "type",
			description: "Type a string of text.",
			properties:  map[string]interface{}{"text": map[string]interface{}{"type": "string"}},
			required:    []string{"text"},
		},
		{
			name:        "move",
			description: "Move the cursor to a coordinate.",
			properties:  map[string]interface{}{"x": coord("x"), "y": coord("y")},
			required:    []string{"x", "y"},
		},
		{
			name:        "keypress",
			description: "Press a key chord, e.g. [\"CTRL\", \"C\"].",
			properties: map[string]interface{}{
				"keys": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			},
			required: []string{"keys"},
		},
		{
			name:        "drag",
			description: "Drag along a path of [x, y] points.",
			properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "integer"},
					},
				},
			},
			required: []string{"path"},
		},
		{
			name:        "wait",
			description: "Wait for the screen to settle.",
			properties:  map[string]interface{}{"ms": map[string]interface{}{"type": "integer"}},
		},
		{
			name:        "screenshot",
			description: "Capture the current screen.",
			properties:  map[string]interface{}{},
		},
	}

	tools := make([]responses.ToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name: spec.name,
				Parameters: map[string]interface{}{
					"type":       "object",
					"properties": spec.properties,
					"required":   spec.required,
				},
				Description: openai.Opt(spec.description),
				Strict:      openai.Opt(false),
			},
		})
	}
	return tools
}

func parseResponse(resp *responses.Response) *protocoltypes.ModelResponse {
	out := &protocoltypes.ModelResponse{}
	var text strings.Builder

	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			for _, c := range item.Content {
				if c.Type == "output_text" {
					text.WriteString(c.Text)
				}
			}
		case "function_call":
			var args map[string]interface{}
			if err := json.Unmarshal([]byte(item.Arguments), &args); err != nil {
				args = map[string]interface{}{}
			}
			out.ToolCalls = append(out.ToolCalls, protocoltypes.ToolCall{
				ID:        item.CallID,
				Name:      item.Name,
				Arguments: args,
			})
		}
	}

	out.Text = text.String()
	out.StopReason = protocoltypes.StopEndTurn
	if len(out.ToolCalls) > 0 {
		out.StopReason = protocoltypes.StopToolUse
	}
	if resp.Status == "incomplete" {
		out.StopReason = protocoltypes.StopLength
	}
	if resp.Usage.TotalTokens > 0 {
		out.Usage = &protocoltypes.UsageInfo{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		}
	}
	return out
}
