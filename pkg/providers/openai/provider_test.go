package openaiprovider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ospilot/ospilot/pkg/providers/protocoltypes"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := openai.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
	)
	return NewProviderWithClient(&client, "gpt-5.2", protocoltypes.ScreenInfo{Width: 1280, Height: 800})
}

func TestGenerateParsesFunctionCalls(t *testing.T) {
	var gotBody map[string]interface{}
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "resp_01",
			"object": "response",
			"status": "completed",
			"model": "gpt-5.2",
			"output": [
				{"type": "function_call", "id": "fc_01", "call_id": "call_01",
				 "name": "click", "arguments": "{\"x\": 24, \"y\": 150}"}
			],
			"usage": {"input_tokens": 200, "output_tokens": 15, "total_tokens": 215}
		}`))
	})

	resp, err := provider.Generate(context.Background(), "drive the desktop", []protocoltypes.Message{
		protocoltypes.TextMessage("user", "click the icon"),
	})
	require.NoError(t, err)

	assert.Equal(t, protocoltypes.StopToolUse, resp.StopReason)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_01", resp.ToolCalls[0].ID)
	assert.Equal(t, "click", resp.ToolCalls[0].Name)
	assert.Equal(t, float64(24), resp.ToolCalls[0].Arguments["x"])
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 200, resp.Usage.InputTokens)

	// Every desktop action is declared as a function tool.
	tools := gotBody["tools"].([]interface{})
	names := map[string]bool{}
	for _, tool := range tools {
		names[tool.(map[string]interface{})["name"].(string)] = true
	}
	for _, want := range []string{"click", "double_click", "scroll", "type", "move", "keypress", "drag", "wait", "screenshot"} {
		assert.True(t, names[want], "missing tool %s", want)
	}
}

func TestGenerateMessageOnly(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "resp_02",
			"object": "response",
			"status": "completed",
			"model": "gpt-5.2",
			"output": [
				{"type": "message", "id": "msg_01", "role": "assistant", "status": "completed",
				 "content": [{"type": "output_text", "text": "The file has been renamed."}]}
			],
			"usage": {"input_tokens": 90, "output_tokens": 8, "total_tokens": 98}
		}`))
	})

	resp, err := provider.Generate(context.Background(), "", []protocoltypes.Message{
		protocoltypes.TextMessage("user", "rename done?"),
	})
	require.NoError(t, err)
	assert.Equal(t, "The file has been renamed.", resp.Text)
	assert.Equal(t, protocoltypes.StopEndTurn, resp.StopReason)
	assert.Empty(t, resp.ToolCalls)
}

func TestGenerateSendsFunctionOutputAndScreenshot(t *testing.T) {
	var gotBody map[string]interface{}
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "resp_03", "object": "response", "status": "completed", "model": "gpt-5.2",
			"output": [], "usage": {"input_tokens": 1, "output_tokens": 1, "total_tokens": 2}
		}`))
	})

	history := []protocoltypes.Message{
		protocoltypes.TextMessage("user", "open a terminal"),
		{
			Role: "assistant",
			ToolCalls: []protocoltypes.ToolCall{
				{ID: "call_01", Name: "click", Arguments: map[string]interface{}{"x": 1, "y": 2}},
			},
		},
		protocoltypes.ScreenshotMessage("call_01", "image/png", "c2NyZWVu"),
	}
	_, err := provider.Generate(context.Background(), "", history)
	require.NoError(t, err)

	input := gotBody["input"].([]interface{})
	var types []string
	for _, item := range input {
		types = append(types, item.(map[string]interface{})["type"].(string))
	}
	// History unrolls into: user message, function call, its output, and
	// a user message carrying the screenshot.
	assert.Contains(t, types, "function_call")
	assert.Contains(t, types, "function_call_output")

	last := input[len(input)-1].(map[string]interface{})
	content := last["content"].([]interface{})
	image := content[0].(map[string]interface{})
	assert.Equal(t, "input_image", image["type"])
}

func TestGenerateAPIError(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "invalid model", "type": "invalid_request_error"}}`))
	})

	_, err := provider.Generate(context.Background(), "", []protocoltypes.Message{
		protocoltypes.TextMessage("user", "hi"),
	})
	assert.Error(t, err)
}
