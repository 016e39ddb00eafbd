// OSPilot - Desktop task agent runner
// License: MIT
//
// Copyright (c) 2026 OSPilot contributors

package protocoltypes

// Image is an opaque screenshot blob carried inside a conversation turn.
// The context window manager marks old images Removed instead of deleting
// the turn, so the surrounding text and ordering survive trimming.
type Image struct {
	MediaType string `json:"media_type"`
	Data      string `json:"data"` // base64
	Removed   bool   `json:"removed,omitempty"`
}

// ToolCall is one provider-emitted action request, decoded into the
// dialect's own vocabulary. Dialect parsers translate these into
// canonical actions.
type ToolCall struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Message is one turn of the observation history. User turns carry text
// and/or screenshots (and a ToolCallID when the turn is an action result);
// assistant turns carry text and/or action requests.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	Images     []Image    `json:"images,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ScreenInfo tells a provider how to declare the computer tool to its API.
type ScreenInfo struct {
	Width  int
	Height int
}

// UsageInfo carries the token accounting a provider reports per call.
type UsageInfo struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Stop reasons normalized across providers.
const (
	StopEndTurn = "end_turn"
	StopToolUse = "tool_use"
	StopLength  = "length"
)

// ModelResponse is a provider response normalized to a dialect-neutral
// shape. Text and ToolCalls keep the provider's own action vocabulary;
// the dialect parser is responsible for canonicalization.
type ModelResponse struct {
	Text       string     `json:"text"`
	Reasoning  string     `json:"reasoning,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	StopReason string     `json:"stop_reason"`
	Usage      *UsageInfo `json:"usage,omitempty"`
}

// TextMessage builds a plain text turn.
func TextMessage(role, content string) Message {
	return Message{Role: role, Content: content}
}

// ScreenshotMessage builds a user turn carrying one screenshot, optionally
// correlated to the action request it answers.
func ScreenshotMessage(toolCallID, mediaType, data string) Message {
	return Message{
		Role:       "user",
		ToolCallID: toolCallID,
		Images:     []Image{{MediaType: mediaType, Data: data}},
	}
}

// CountImages returns the number of images still present (not removed)
// across the history.
func CountImages(history []Message) int {
	total := 0
	for _, msg := range history {
		for _, img := range msg.Images {
			if !img.Removed {
				total++
			}
		}
	}
	return total
}
