// OSPilot - Desktop task agent runner
// License: MIT
//
// Copyright (c) 2026 OSPilot contributors

package anthropicprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ospilot/ospilot/pkg/logger"
	"github.com/ospilot/ospilot/pkg/providers/protocoltypes"
)

const defaultBaseURL = "https://api.anthropic.com"
const defaultModel = "claude-sonnet-4-5"

// Provider drives Anthropic models with a computer tool declared as a
// plain function tool. The model answers with tool_use blocks carrying
// the computer-use action vocabulary, which the claude dialect parser
// canonicalizes.
type Provider struct {
	client *anthropic.Client
	model  string
	screen protocoltypes.ScreenInfo
}

func NewProvider(token, apiBase, model string, screen protocoltypes.ScreenInfo) *Provider {
	client := anthropic.NewClient(
		option.WithAPIKey(token),
		option.WithBaseURL(normalizeBaseURL(apiBase)),
	)
	if model == "" {
		model = defaultModel
	}
	return &Provider{client: &client, model: model, screen: screen}
}

// NewProviderWithClient is used by tests to point at a stub server.
func NewProviderWithClient(client *anthropic.Client, model string, screen protocoltypes.ScreenInfo) *Provider {
	if model == "" {
		model = defaultModel
	}
	return &Provider{client: client, model: model, screen: screen}
}

func (p *Provider) Name() string { return "anthropic" }

func (p *Provider) Generate(ctx context.Context, system string, history []protocoltypes.Message) (*protocoltypes.ModelResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 4096,
		Messages:  translateHistory(history),
		Tools:     []anthropic.ToolUnionParam{p.computerTool()},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}
	return parseResponse(resp), nil
}

// computerTool declares the computer-use action vocabulary as a function
// tool so it works against any Messages-compatible endpoint.
func (p *Provider) computerTool() anthropic.ToolUnionParam {
	tool := anthropic.ToolParam{
		Name: "computer",
		Description: anthropic.String(fmt.Sprintf(
			"Control a desktop of size %dx%d with mouse and keyboard actions.",
			p.screen.Width, p.screen.Height)),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]interface{}{
				"action": map[string]interface{}{
					"type": "string",
					"enum": []string{
						"key", "type", "mouse_move", "left_click", "left_click_drag",
						"right_click", "middle_click", "double_click", "screenshot",
						"scroll", "wait",
					},
				},
				"coordinate": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "integer"},
					"description": "[x, y] pixel coordinate on the screen",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Text to type, or a '+'-joined key chord for the key action",
				},
				"scroll_direction": map[string]interface{}{
					"type": "string",
					"enum": []string{"up", "down"},
				},
				"scroll_amount": map[string]interface{}{"type": "integer"},
				"duration":      map[string]interface{}{"type": "integer"},
			},
			Required: []string{"action"},
		},
	}
	return anthropic.ToolUnionParam{OfTool: &tool}
}

func translateHistory(history []protocoltypes.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for _, msg := range history {
		switch msg.Role {
		case "user":
			if msg.ToolCallID != "" {
				out = append(out, anthropic.NewUserMessage(anthropic.ContentBlockParamUnion{
					OfToolResult: &anthropic.ToolResultBlockParam{
						ToolUseID: msg.ToolCallID,
						Content:   toolResultContent(msg),
					},
				}))
				continue
			}
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, img := range msg.Images {
				if img.Removed {
					continue
				}
				blocks = append(blocks, anthropic.NewImageBlockBase64(img.MediaType, img.Data))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewUserMessage(blocks...))
			}
		case "assistant":
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, tc.Arguments, tc.Name))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		}
	}
	return out
}

func toolResultContent(msg protocoltypes.Message) []anthropic.ToolResultBlockParamContentUnion {
	var content []anthropic.ToolResultBlockParamContentUnion
	if msg.Content != "" {
		content = append(content, anthropic.ToolResultBlockParamContentUnion{
			OfText: &anthropic.TextBlockParam{Text: msg.Content},
		})
	}
	for _, img := range msg.Images {
		if img.Removed {
			continue
		}
		content = append(content, anthropic.ToolResultBlockParamContentUnion{
			OfImage: &anthropic.ImageBlockParam{
				Source: anthropic.ImageBlockParamSourceUnion{
					OfBase64: &anthropic.Base64ImageSourceParam{
						MediaType: anthropic.Base64ImageSourceMediaType(img.MediaType),
						Data:      img.Data,
					},
				},
			},
		})
	}
	if len(content) == 0 {
		// Trimmed screenshot; the API rejects empty tool results.
		content = append(content, anthropic.ToolResultBlockParamContentUnion{
			OfText: &anthropic.TextBlockParam{Text: "screenshot removed to save context"},
		})
	}
	return content
}

func parseResponse(resp *anthropic.Message) *protocoltypes.ModelResponse {
	out := &protocoltypes.ModelResponse{
		Usage: &protocoltypes.UsageInfo{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			out.Text += block.AsText().Text
		case "tool_use":
			tu := block.AsToolUse()
			var args map[string]interface{}
			if err := json.Unmarshal(tu.Input, &args); err != nil {
				logger.WarnCF("provider", "Undecodable tool input", map[string]interface{}{
					"tool":  tu.Name,
					"error": err.Error(),
				})
				args = map[string]interface{}{}
			}
			out.ToolCalls = append(out.ToolCalls, protocoltypes.ToolCall{
				ID:        tu.ID,
				Name:      tu.Name,
				Arguments: args,
			})
		}
	}

	switch resp.StopReason {
	case anthropic.StopReasonToolUse:
		out.StopReason = protocoltypes.StopToolUse
	case anthropic.StopReasonMaxTokens:
		out.StopReason = protocoltypes.StopLength
	default:
		out.StopReason = protocoltypes.StopEndTurn
	}
	return out
}

func normalizeBaseURL(apiBase string) string {
	base := strings.TrimSpace(apiBase)
	if base == "" {
		return defaultBaseURL
	}
	base = strings.TrimRight(base, "/")
	base = strings.TrimSuffix(base, "/v1")
	if base == "" {
		return defaultBaseURL
	}
	return base
}
