// OSPilot - Desktop task agent runner
// License: MIT
//
// Copyright (c) 2026 OSPilot contributors

package compatprovider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/ospilot/ospilot/pkg/providers/protocoltypes"
)

const defaultModel = "qwen2.5-vl-72b-instruct"

// computerUseInstructions teaches text-tool-call models the computer_use
// convention: actions are emitted as <tool_call> JSON blocks inline in
// the response, which the qwen dialect parser decodes.
const computerUseInstructions = `

# Tools

You may call the computer_use function to operate the desktop. Emit each call as:
<tool_call>
{"name": "computer_use", "arguments": {"action": "...", ...}}
</tool_call>

Actions and their arguments:
* key: {"keys": ["ctrl", "c"]} press keys in order, release in reverse
* type: {"text": "..."} type a string
* mouse_move: {"coordinate": [x, y]}
* left_click / right_click / middle_click / double_click: {"coordinate": [x, y]}
* left_click_drag: {"coordinate": [x, y]} drag to the coordinate
* scroll: {"pixels": n} positive scrolls up, negative scrolls down
* wait: {"time": seconds}
* terminate: {"status": "success" | "failure"} end the task

Write your reasoning before the first tool call.`

// Provider drives any OpenAI-compatible chat completions endpoint
// (DashScope, vLLM, LM Studio) serving a vision model that follows the
// computer_use text convention.
type Provider struct {
	client *openai.Client
	model  string
}

func NewProvider(token, apiBase, model string) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(token)}
	if apiBase != "" {
		opts = append(opts, option.WithBaseURL(apiBase))
	}
	client := openai.NewClient(opts...)
	if model == "" {
		model = defaultModel
	}
	return &Provider{client: &client, model: model}
}

// NewProviderWithClient is used by tests to point at a stub server.
func NewProviderWithClient(client *openai.Client, model string) *Provider {
	if model == "" {
		model = defaultModel
	}
	return &Provider{client: client, model: model}
}

func (p *Provider) Name() string { return "compat" }

func (p *Provider) Generate(ctx context.Context, system string, history []protocoltypes.Message) (*protocoltypes.ModelResponse, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system + computerUseInstructions),
	}
	for _, msg := range history {
		switch msg.Role {
		case "user":
			messages = append(messages, openai.UserMessage(userParts(msg)))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completions call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completions call: empty choices")
	}

	out := &protocoltypes.ModelResponse{
		Text:       resp.Choices[0].Message.Content,
		StopReason: protocoltypes.StopEndTurn,
	}
	if resp.Choices[0].FinishReason == "length" {
		out.StopReason = protocoltypes.StopLength
	}
	if resp.Usage.TotalTokens > 0 {
		out.Usage = &protocoltypes.UsageInfo{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		}
	}
	return out, nil
}

func userParts(msg protocoltypes.Message) []openai.ChatCompletionContentPartUnionParam {
	var parts []openai.ChatCompletionContentPartUnionParam
	if msg.Content != "" {
		parts = append(parts, openai.TextContentPart(msg.Content))
	}
	for _, img := range msg.Images {
		if img.Removed {
			continue
		}
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: fmt.Sprintf("data:%s;base64,%s", img.MediaType, img.Data),
		}))
	}
	if len(parts) == 0 {
		parts = append(parts, openai.TextContentPart("(screenshot removed to save context)"))
	}
	return parts
}
