package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ai-support-be/pkg/llm"

	"google.golang.org/genai"
)

const ProviderName = "gemini"

// GeminiProvider calls the Gemini API. Clients are created lazily per API key
// because every attempt may use a different key.
type GeminiProvider struct {
	ModelName string

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// Ensure GeminiProvider implements LLMProvider
var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	return &GeminiProvider{
		ModelName: modelName,
		clients:   make(map[string]*genai.Client),
	}
}

func (g *GeminiProvider) Name() string {
	return ProviderName
}

func (g *GeminiProvider) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, &llm.ProviderError{Provider: ProviderName, StatusCode: 401, Message: "missing API key"}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients[apiKey]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	g.clients[apiKey] = c
	return c, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Response, error) {
	options := llm.Apply(opts...)

	client, err := g.client(ctx, options.APIKey)
	if err != nil {
		return nil, err
	}

	model := g.ModelName
	if options.Model != "" {
		model = options.Model
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(options.Temperature)),
		TopP:            genai.Ptr(float32(options.TopP)),
		MaxOutputTokens: int32(options.MaxTokens),
	}
	if options.TopK > 0 {
		config.TopK = genai.Ptr(float32(options.TopK))
	}

	resp, err := client.Models.GenerateContent(ctx, model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		config,
	)
	if err != nil {
		return nil, toProviderError(err)
	}

	out := &llm.Response{
		Text:       resp.Text(),
		Candidates: len(resp.Candidates),
	}
	if resp.UsageMetadata != nil {
		out.Usage = llm.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		out.Blocked = true
		out.BlockReason = string(resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) > 0 {
		out.FinishReason = string(resp.Candidates[0].FinishReason)
		if strings.TrimSpace(out.Text) == "" && isSafetyStop(resp.Candidates[0].FinishReason) {
			out.Blocked = true
			out.BlockReason = out.FinishReason
		}
	}
	return out, nil
}

func isSafetyStop(reason genai.FinishReason) bool {
	switch reason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist, genai.FinishReasonSPII:
		return true
	}
	return false
}

// toProviderError maps a genai.APIError to llm.ProviderError, keeping any RetryInfo delay.
func toProviderError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var apiErrPtr *genai.APIError
		if !errors.As(err, &apiErrPtr) || apiErrPtr == nil {
			return fmt.Errorf("gemini request failed: %w", err)
		}
		apiErr = *apiErrPtr
	}

	return &llm.ProviderError{
		Provider:   ProviderName,
		StatusCode: apiErr.Code,
		Status:     apiErr.Status,
		Message:    apiErr.Message,
		RetryAfter: retryDelay(apiErr.Details),
		Err:        err,
	}
}

// retryDelay reads google.rpc.RetryInfo.retryDelay (e.g. "23s") from error details.
func retryDelay(details []map[string]any) time.Duration {
	for _, d := range details {
		t, _ := d["@type"].(string)
		if !strings.HasSuffix(t, "google.rpc.RetryInfo") {
			continue
		}
		raw, _ := d["retryDelay"].(string)
		if delay, err := time.ParseDuration(raw); err == nil {
			return delay
		}
	}
	return 0
}
