package llm

import (
	"context"
	"fmt"
	"time"
)

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Model       string // Override default model
	APIKey      string // Credential selected for this call
	Temperature float64
	TopK        int
	TopP        float64
	MaxTokens   int
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithTopK(k int) Option {
	return func(o *Options) {
		o.TopK = k
	}
}

func WithTopP(p float64) Option {
	return func(o *Options) {
		o.TopP = p
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithAPIKey(key string) Option {
	return func(o *Options) {
		o.APIKey = key
	}
}

// Apply resolves opts on top of the package defaults.
func Apply(opts ...Option) *Options {
	options := &Options{
		Temperature: 0.7,
		TopK:        40,
		TopP:        0.95,
		MaxTokens:   1024,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is a provider-agnostic generation result.
type Response struct {
	Text         string
	Usage        Usage
	FinishReason string
	Blocked      bool   // prompt or every candidate stopped by a safety filter
	BlockReason  string
	Candidates   int
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	Name() string

	// Generate sends a single prompt to the model
	Generate(ctx context.Context, prompt string, options ...Option) (*Response, error)
}

// ProviderError is a failed provider call with whatever the backend told us.
type ProviderError struct {
	Provider   string
	StatusCode int    // HTTP status, 0 when unknown
	Status     string // backend status string, e.g. RESOURCE_EXHAUSTED
	Message    string
	RetryAfter time.Duration // server hint, 0 when absent
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s error %d (%s): %s", e.Provider, e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
