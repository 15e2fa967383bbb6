package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"ai-support-be/internal/entity"
	"ai-support-be/internal/pkg/logger"
	"ai-support-be/pkg/cache"
	"ai-support-be/pkg/keys"
	"ai-support-be/pkg/llm"
	"ai-support-be/pkg/queue"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	minRetries     = 3
	enqueueTimeout = 5 * time.Second
)

// KeyManager is the key-rotation collaborator; see keys.Manager.
type KeyManager interface {
	GetNextKey(ctx context.Context, companyId uuid.UUID) (*keys.KeyConfig, error)
	MarkKeyFailed(keyId uuid.UUID, reason string, cooldown time.Duration)
	InvalidateKey(ctx context.Context, keyId uuid.UUID, reason string)
	DisableModel(model, reason string)
	TotalKeys(ctx context.Context, companyId uuid.UUID) int
}

// ProviderSource returns the backend for a key's provider name; see factory.Registry.
type ProviderSource interface {
	Get(name string) (llm.LLMProvider, error)
}

type Config struct {
	MinResponseLength     int
	ShortResponseCooldown time.Duration
	RateLimitCooldown     time.Duration
	CacheableMessageTypes []string
}

type Request struct {
	CompanyID      uuid.UUID
	ConversationID string
	Prompt         string
	MessageType    string
	Settings       entity.GenerationSettings
	ForceFresh     bool // skip the response cache lookup
}

// Result is always returned. Content is nil when the turn should be suppressed,
// and SilentReason then says why.
type Result struct {
	Content        *string
	SilentReason   string
	KeyUsed        uuid.UUID
	ModelUsed      string
	ProviderUsed   string
	ProcessingTime time.Duration
	Attempts       int
	FromCache      bool
	Usage          llm.Usage
}

func (r *Result) OK() bool {
	return r.Content != nil
}

type Option func(*Generator)

func WithSleep(sleep SleepFunc) Option {
	return func(g *Generator) { g.sleep = sleep }
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithJitter replaces the random source for backoff jitter; n is the exclusive upper bound.
func WithJitter(jitter func(n int64) int64) Option {
	return func(g *Generator) { g.jitter = jitter }
}

// Generator turns an assembled prompt into a reply, rotating keys and models as they fail.
type Generator struct {
	keys      KeyManager
	providers ProviderSource
	cache     cache.ResponseCache
	jobs      queue.Enqueuer
	logger    logger.ILogger
	tracer    trace.Tracer
	cfg       Config
	cacheable map[string]bool

	sleep  SleepFunc
	now    func() time.Time
	jitter func(n int64) int64

	wg sync.WaitGroup
}

// NewGenerator wires the loop. responses and jobs may be nil.
func NewGenerator(km KeyManager, providers ProviderSource, responses cache.ResponseCache, jobs queue.Enqueuer, log logger.ILogger, cfg Config, opts ...Option) *Generator {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if jobs == nil {
		jobs = queue.NopEnqueuer{}
	}
	g := &Generator{
		keys:      km,
		providers: providers,
		cache:     responses,
		jobs:      jobs,
		logger:    log,
		tracer:    otel.Tracer("ai-support-be/generation"),
		cfg:       cfg,
		cacheable: make(map[string]bool, len(cfg.CacheableMessageTypes)),
		sleep:     sleepContext,
		now:       time.Now,
	}
	for _, t := range cfg.CacheableMessageTypes {
		g.cacheable[t] = true
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate never fails; see Result.
func (g *Generator) Generate(ctx context.Context, req *Request) (res *Result) {
	start := g.now()
	ctx, span := g.tracer.Start(ctx, "generation.Generate", trace.WithAttributes(
		attribute.String("company.id", req.CompanyID.String()),
		attribute.String("message.type", req.MessageType),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error(logger.ModuleGeneration, "Generation panicked", map[string]interface{}{
				"companyId": req.CompanyID.String(),
				"panic":     fmt.Sprint(r),
			})
			res = &Result{SilentReason: ReasonInternal}
		}
		res.ProcessingTime = g.now().Sub(start)
		span.SetAttributes(
			attribute.Int("generation.attempts", res.Attempts),
			attribute.Bool("generation.from_cache", res.FromCache),
			attribute.String("generation.model", res.ModelUsed),
			attribute.String("generation.key", res.KeyUsed.String()),
		)
		g.logInteraction(req, res)
	}()

	return g.run(ctx, req)
}

// Wait blocks until every enqueued background job has been handed off.
func (g *Generator) Wait() {
	g.wg.Wait()
}

func (g *Generator) run(ctx context.Context, req *Request) *Result {
	if text, ok := g.cached(ctx, req); ok {
		return &Result{Content: &text, FromCache: true}
	}

	total := g.keys.TotalKeys(ctx, req.CompanyID)
	maxRetries := max(total, minRetries)
	opts := Options(req.MessageType, req.Settings)
	tried := make(map[uuid.UUID]bool, maxRetries)
	res := &Result{}

	// wait returns false when the context ended while sleeping.
	wait := func(attempt int, d time.Duration) bool {
		if attempt >= maxRetries {
			return true
		}
		return g.sleep(ctx, d) == nil
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return g.silent(res, ReasonCanceled)
		}

		key, err := g.keys.GetNextKey(ctx, req.CompanyID)
		if err != nil {
			var unavailable *keys.AllKeysUnavailableError
			switch {
			case errors.As(err, &unavailable):
				return g.silent(res, ReasonAllKeysUnavailable)
			case errors.Is(err, keys.ErrNoKeyAvailable):
				if !wait(attempt, rotateDelay) {
					return g.silent(res, ReasonCanceled)
				}
				continue
			case errors.Is(err, keys.ErrNoKeysConfigured):
				return g.silent(res, ReasonNoKeysConfigured)
			default:
				g.logger.Error(logger.ModuleGeneration, "Key lookup failed", map[string]interface{}{
					"companyId": req.CompanyID.String(),
					"error":     err.Error(),
				})
				return g.silent(res, ReasonKeyLookupFailed)
			}
		}

		tried[key.KeyID] = true
		res.Attempts = attempt
		res.KeyUsed = key.KeyID
		res.ModelUsed = key.Model
		res.ProviderUsed = key.Provider

		provider, err := g.providers.Get(key.Provider)
		if err != nil {
			// Config error, not a bad key: cool it down, never invalidate.
			g.logger.Error(logger.ModuleGeneration, "No provider registered for key", map[string]interface{}{
				"companyId": req.CompanyID.String(),
				"keyId":     key.KeyID.String(),
				"provider":  key.Provider,
				"error":     err.Error(),
			})
			g.keys.MarkKeyFailed(key.KeyID, err.Error(), unknownProviderCooldown)
			continue
		}

		callOpts := append(append([]llm.Option{}, opts...), llm.WithModel(key.Model), llm.WithAPIKey(key.Secret))
		resp, err := provider.Generate(ctx, req.Prompt, callOpts...)
		if err != nil {
			if ctx.Err() != nil {
				return g.silent(res, ReasonCanceled)
			}
			d := Classify(err, g.cfg.RateLimitCooldown)
			g.logger.Warn(logger.ModuleGeneration, "Provider call failed", map[string]interface{}{
				"companyId": req.CompanyID.String(),
				"attempt":   attempt,
				"keyId":     key.KeyID.String(),
				"model":     key.Model,
				"action":    d.Action.String(),
				"error":     err.Error(),
			})

			switch d.Action {
			case ActionFatal:
				return g.silent(res, ReasonRequestRejected)
			case ActionRotate:
				g.keys.MarkKeyFailed(key.KeyID, d.Reason, d.Cooldown)
			case ActionInvalidateKey:
				g.keys.InvalidateKey(ctx, key.KeyID, d.Reason)
				continue
			case ActionDisableModel:
				g.keys.DisableModel(key.Model, d.Reason)
				continue
			}
			if !wait(attempt, Backoff(attempt, len(tried) < total, g.jitter)) {
				return g.silent(res, ReasonCanceled)
			}
			continue
		}

		if resp.Blocked {
			g.logger.Warn(logger.ModuleGeneration, "Response blocked by safety filter", map[string]interface{}{
				"companyId":   req.CompanyID.String(),
				"blockReason": resp.BlockReason,
			})
			return g.silent(res, ReasonSafetyBlocked)
		}

		text := strings.TrimSpace(resp.Text)
		if utf8.RuneCountInString(text) < g.cfg.MinResponseLength {
			g.keys.MarkKeyFailed(key.KeyID, "short response", g.cfg.ShortResponseCooldown)
			if !wait(attempt, Backoff(attempt, len(tried) < total, g.jitter)) {
				return g.silent(res, ReasonCanceled)
			}
			continue
		}

		res.Content = &text
		res.Usage = resp.Usage
		g.store(ctx, req, key.Model, text)
		g.enqueue(queue.QueueAIUsage, queue.JobRecordUsage, map[string]interface{}{
			"companyId":        req.CompanyID.String(),
			"keyId":            key.KeyID.String(),
			"provider":         key.Provider,
			"model":            key.Model,
			"promptTokens":     resp.Usage.PromptTokens,
			"completionTokens": resp.Usage.CompletionTokens,
			"totalTokens":      resp.Usage.TotalTokens,
		})
		return res
	}

	g.logger.Error(logger.ModuleGeneration, "Retries exhausted", map[string]interface{}{
		"companyId":  req.CompanyID.String(),
		"maxRetries": maxRetries,
	})
	return g.silent(res, ReasonRetriesExhausted)
}

func (g *Generator) silent(res *Result, reason string) *Result {
	res.Content = nil
	res.SilentReason = reason
	return res
}

func (g *Generator) cached(ctx context.Context, req *Request) (string, bool) {
	if g.cache == nil || req.ForceFresh {
		return "", false
	}
	text, ok, err := g.cache.Get(ctx, req.Prompt, req.CompanyID, "")
	if err != nil {
		g.logger.Warn(logger.ModuleCache, "Response cache read failed", map[string]interface{}{
			"companyId": req.CompanyID.String(),
			"error":     err.Error(),
		})
		return "", false
	}
	return text, ok
}

func (g *Generator) store(ctx context.Context, req *Request, model, text string) {
	if g.cache == nil || !g.cacheable[req.MessageType] {
		return
	}
	if err := g.cache.Set(ctx, req.Prompt, text, req.CompanyID, model); err != nil {
		g.logger.Warn(logger.ModuleCache, "Response cache write failed", map[string]interface{}{
			"companyId": req.CompanyID.String(),
			"error":     err.Error(),
		})
	}
}

func (g *Generator) logInteraction(req *Request, res *Result) {
	payload := map[string]interface{}{
		"companyId":        req.CompanyID.String(),
		"conversationId":   req.ConversationID,
		"messageType":      req.MessageType,
		"provider":         res.ProviderUsed,
		"model":            res.ModelUsed,
		"success":          res.OK(),
		"fromCache":        res.FromCache,
		"silentReason":     res.SilentReason,
		"attempts":         res.Attempts,
		"processingMs":     res.ProcessingTime.Milliseconds(),
		"promptChars":      utf8.RuneCountInString(req.Prompt),
		"promptTokens":     res.Usage.PromptTokens,
		"completionTokens": res.Usage.CompletionTokens,
	}
	if res.KeyUsed != uuid.Nil {
		payload["keyId"] = res.KeyUsed.String()
	}
	if res.Content != nil {
		payload["responseChars"] = utf8.RuneCountInString(*res.Content)
	}
	g.enqueue(queue.QueueAIInteractions, queue.JobLogInteraction, payload)
}

// enqueue hands the job off in the background; failures are only logged.
func (g *Generator) enqueue(queueName, job string, payload map[string]interface{}) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
		defer cancel()
		if err := g.jobs.Enqueue(ctx, queueName, job, payload); err != nil {
			g.logger.Warn(logger.ModuleQueue, "Failed to enqueue job", map[string]interface{}{
				"queue": queueName,
				"job":   job,
				"error": err.Error(),
			})
		}
	}()
}
