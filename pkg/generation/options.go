package generation

import (
	"ai-support-be/internal/entity"
	"ai-support-be/pkg/llm"
)

var messageTypeOverrides = map[string][]llm.Option{
	"greeting":     {llm.WithMaxTokens(256), llm.WithTemperature(0.6)},
	"complaint":    {llm.WithTemperature(0.4)},
	"order_status": {llm.WithTemperature(0.3)},
}

// Options layers company settings and then message-type overrides over the llm defaults.
func Options(messageType string, s entity.GenerationSettings) []llm.Option {
	var opts []llm.Option
	if s.Temperature > 0 {
		opts = append(opts, llm.WithTemperature(s.Temperature))
	}
	if s.TopK > 0 {
		opts = append(opts, llm.WithTopK(s.TopK))
	}
	if s.TopP > 0 {
		opts = append(opts, llm.WithTopP(s.TopP))
	}
	if s.MaxOutputTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(s.MaxOutputTokens))
	}
	return append(opts, messageTypeOverrides[messageType]...)
}
