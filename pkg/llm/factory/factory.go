package factory

import (
	"ai-support-be/pkg/llm"
	"ai-support-be/pkg/llm/gemini"
	"ai-support-be/pkg/llm/ollama"
	openaiprovider "ai-support-be/pkg/llm/openai"
	"fmt"
	"sync"
)

func NewLLMProvider(providerType, modelName, baseURL string) (llm.LLMProvider, error) {
	switch providerType {
	case gemini.ProviderName:
		return gemini.NewGeminiProvider(modelName), nil
	case openaiprovider.ProviderName:
		return openaiprovider.NewOpenAIProvider(baseURL, modelName), nil
	case ollama.ProviderName:
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

// Registry hands out one provider instance per backend name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]llm.LLMProvider
	fallback  string
}

// NewRegistry registers providers by their Name(). fallback serves keys that name no provider.
func NewRegistry(fallback string, providers ...llm.LLMProvider) *Registry {
	r := &Registry{
		providers: make(map[string]llm.LLMProvider, len(providers)),
		fallback:  fallback,
	}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

func (r *Registry) Register(p llm.LLMProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

func (r *Registry) Get(name string) (llm.LLMProvider, error) {
	if name == "" {
		name = r.fallback
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unsupported LLM provider: %s", name)
	}
	return p, nil
}
