package inference

import (
	"github.com/openai/openai-go/v3/option"
)

// NewGrokInferencer returns an OpenAI-compatible inferencer pointed at the
// x.ai endpoint.
func NewGrokInferencer(apiKey string, model string) *OpenAIInferencer {
	if model == "" {
		model = "grok-4-fast-reasoning"
	}
	client := newClientWith(
		option.WithBaseURL("https://api.x.ai/v1"),
		option.WithAPIKey(apiKey),
	)
	return &OpenAIInferencer{
		client: client,
		apiKey: apiKey,
		model:  model,
	}
}
