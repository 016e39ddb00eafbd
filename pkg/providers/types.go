package providers

import (
	"context"

	"github.com/ospilot/ospilot/pkg/providers/protocoltypes"
)

type Message = protocoltypes.Message
type Image = protocoltypes.Image
type ToolCall = protocoltypes.ToolCall
type ModelResponse = protocoltypes.ModelResponse
type UsageInfo = protocoltypes.UsageInfo
type ScreenInfo = protocoltypes.ScreenInfo

// ModelClient is one provider connection. Generate sends the system prompt
// and the full observation history and returns the next normalized
// response. Implementations translate the neutral history into their own
// wire shape; they never interpret actions.
type ModelClient interface {
	Name() string
	Generate(ctx context.Context, system string, history []Message) (*ModelResponse, error)
}
