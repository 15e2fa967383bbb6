package openai

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"ai-support-be/pkg/llm"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const ProviderName = "openai"

// OpenAIProvider talks to the OpenAI chat completions API or any compatible endpoint.
type OpenAIProvider struct {
	BaseURL   string
	ModelName string

	mu      sync.Mutex
	clients map[string]*openai.Client
}

// Ensure OpenAIProvider implements LLMProvider
var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(baseURL, modelName string) *OpenAIProvider {
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	return &OpenAIProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		clients:   make(map[string]*openai.Client),
	}
}

func (o *OpenAIProvider) Name() string {
	return ProviderName
}

func (o *OpenAIProvider) client(apiKey string) *openai.Client {
	o.mu.Lock()
	defer o.mu.Unlock()
	if c, ok := o.clients[apiKey]; ok {
		return c
	}

	// Retries belong to the generation loop, which rotates keys between attempts.
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(o.BaseURL))
	}
	clientValue := openai.NewClient(opts...)
	o.clients[apiKey] = &clientValue
	return &clientValue
}

func (o *OpenAIProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Response, error) {
	options := llm.Apply(opts...)
	if options.APIKey == "" {
		return nil, &llm.ProviderError{Provider: ProviderName, StatusCode: 401, Message: "missing API key"}
	}

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	resp, err := o.client(options.APIKey).Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		MaxTokens:   openai.Int(int64(options.MaxTokens)),
		Temperature: openai.Float(options.Temperature),
		TopP:        openai.Float(options.TopP),
	})
	if err != nil {
		return nil, toProviderError(err)
	}

	out := &llm.Response{
		Candidates: len(resp.Choices),
		Usage: llm.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		out.Text = choice.Message.Content
		out.FinishReason = string(choice.FinishReason)
		if choice.FinishReason == "content_filter" {
			out.Blocked = true
			out.BlockReason = "content_filter"
		}
	}
	return out, nil
}

func toProviderError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("openai request failed: %w", err)
	}

	pe := &llm.ProviderError{
		Provider:   ProviderName,
		StatusCode: apiErr.StatusCode,
		Status:     apiErr.Code,
		Message:    apiErr.Message,
		Err:        err,
	}
	if apiErr.Response != nil {
		pe.RetryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
	}
	return pe
}

// parseRetryAfter accepts the delay-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return 0
}
