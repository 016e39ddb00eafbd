package providers

import (
	"fmt"

	anthropicprovider "github.com/ospilot/ospilot/pkg/providers/anthropic"
	compatprovider "github.com/ospilot/ospilot/pkg/providers/compat"
	openaiprovider "github.com/ospilot/ospilot/pkg/providers/openai"
)

// Provider names accepted by NewClient.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderCompat    = "compat"
)

// NewClient builds a model client by provider name.
func NewClient(provider, token, apiBase, model string, screen ScreenInfo) (ModelClient, error) {
	switch provider {
	case ProviderAnthropic:
		return anthropicprovider.NewProvider(token, apiBase, model, screen), nil
	case ProviderOpenAI:
		return openaiprovider.NewProvider(token, apiBase, model, screen), nil
	case ProviderCompat:
		return compatprovider.NewProvider(token, apiBase, model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: %s, %s, %s)",
			provider, ProviderAnthropic, ProviderOpenAI, ProviderCompat)
	}
}

// ForDialect returns the provider conventionally paired with a dialect.
func ForDialect(dialect string) string {
	switch dialect {
	case "claude":
		return ProviderAnthropic
	case "cua":
		return ProviderOpenAI
	case "qwen":
		return ProviderCompat
	default:
		return ""
	}
}
