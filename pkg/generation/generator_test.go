package generation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ai-support-be/internal/entity"
	"ai-support-be/pkg/cache"
	"ai-support-be/pkg/keys"
	"ai-support-be/pkg/llm"
	"ai-support-be/pkg/queue"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failure struct {
	keyId    uuid.UUID
	reason   string
	cooldown time.Duration
}

type fakeKeys struct {
	mu       sync.Mutex
	keys     []*keys.KeyConfig
	err      error
	cursor   int
	selects  int
	failed   []failure
	invalid  map[uuid.UUID]string
	disabled map[string]string
}

func newFakeKeys(n int, model string) *fakeKeys {
	f := &fakeKeys{invalid: map[uuid.UUID]string{}, disabled: map[string]string{}}
	for i := 0; i < n; i++ {
		f.keys = append(f.keys, &keys.KeyConfig{
			KeyID:    uuid.New(),
			Provider: "fake",
			Model:    model,
			Secret:   fmt.Sprintf("secret-%d", i),
		})
	}
	return f
}

func (f *fakeKeys) GetNextKey(_ context.Context, _ uuid.UUID) (*keys.KeyConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selects++
	if f.err != nil {
		return nil, f.err
	}
	for i := 0; i < len(f.keys); i++ {
		k := f.keys[(f.cursor+i)%len(f.keys)]
		if _, bad := f.invalid[k.KeyID]; bad {
			continue
		}
		if _, off := f.disabled[k.Model]; off {
			continue
		}
		f.cursor = (f.cursor + i + 1) % len(f.keys)
		return k, nil
	}
	return nil, keys.ErrNoKeysConfigured
}

func (f *fakeKeys) MarkKeyFailed(keyId uuid.UUID, reason string, cooldown time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, failure{keyId: keyId, reason: reason, cooldown: cooldown})
}

func (f *fakeKeys) InvalidateKey(_ context.Context, keyId uuid.UUID, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalid[keyId] = reason
}

func (f *fakeKeys) DisableModel(model, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabled[model] = reason
}

func (f *fakeKeys) TotalKeys(_ context.Context, _ uuid.UUID) int {
	return len(f.keys)
}

type step struct {
	resp *llm.Response
	err  error
}

type fakeProvider struct {
	mu      sync.Mutex
	steps   []step
	calls   int
	options []*llm.Options
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Generate(_ context.Context, _ string, opts ...llm.Option) (*llm.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.options = append(p.options, llm.Apply(opts...))
	i := p.calls
	p.calls++
	if i >= len(p.steps) {
		i = len(p.steps) - 1
	}
	return p.steps[i].resp, p.steps[i].err
}

type providers map[string]llm.LLMProvider

func (p providers) Get(name string) (llm.LLMProvider, error) {
	if pr, ok := p[name]; ok {
		return pr, nil
	}
	return nil, fmt.Errorf("unsupported LLM provider: %s", name)
}

type recordedSleeps struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

func ok(text string) step {
	return step{resp: &llm.Response{Text: text, Usage: llm.Usage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120}}}
}

func status(code int) step {
	return step{err: &llm.ProviderError{Provider: "fake", StatusCode: code, Message: "boom"}}
}

type harness struct {
	gen      *Generator
	keys     *fakeKeys
	provider *fakeProvider
	sleeps   *recordedSleeps
	jobs     *queue.Recorder
	cache    *cache.MemoryCache
}

func newHarness(km *fakeKeys, steps ...step) *harness {
	h := &harness{
		keys:     km,
		provider: &fakeProvider{steps: steps},
		sleeps:   &recordedSleeps{},
		jobs:     &queue.Recorder{},
		cache:    cache.NewMemoryCache(time.Hour),
	}
	h.gen = NewGenerator(km, providers{"fake": h.provider}, h.cache, h.jobs, nil, Config{
		MinResponseLength:     2,
		ShortResponseCooldown: 30 * time.Second,
		RateLimitCooldown:     time.Minute,
		CacheableMessageTypes: []string{"general", "greeting"},
	}, WithSleep(h.sleeps.sleep), WithJitter(func(int64) int64 { return 0 }))
	return h
}

func request(prompt, messageType string) *Request {
	return &Request{CompanyID: uuid.New(), ConversationID: "conv-1", Prompt: prompt, MessageType: messageType}
}

func TestGenerate_RotatesPastRateLimitedKeys(t *testing.T) {
	km := newFakeKeys(4, "gemini-2.0-flash")
	h := newHarness(km, status(429), status(429), status(429), ok("أهلا بيك، التيشرت متاح بكل المقاسات"))

	res := h.gen.Generate(context.Background(), request("prompt", "product_inquiry"))
	h.gen.Wait()

	require.True(t, res.OK(), res.SilentReason)
	assert.Equal(t, "أهلا بيك، التيشرت متاح بكل المقاسات", *res.Content)
	assert.Equal(t, 4, res.Attempts)
	assert.Equal(t, km.keys[3].KeyID, res.KeyUsed)
	assert.Equal(t, "gemini-2.0-flash", res.ModelUsed)
	assert.Equal(t, "fake", res.ProviderUsed)
	assert.False(t, res.FromCache)

	require.Len(t, km.failed, 3)
	for i, f := range km.failed {
		assert.Equal(t, km.keys[i].KeyID, f.keyId)
		assert.Equal(t, time.Minute, f.cooldown)
	}
	assert.Equal(t, []time.Duration{rotateDelay, rotateDelay, rotateDelay}, h.sleeps.delays)
}

func TestGenerate_RetryAfterHintSetsCooldown(t *testing.T) {
	km := newFakeKeys(2, "m1")
	h := newHarness(km,
		step{err: &llm.ProviderError{StatusCode: 429, RetryAfter: 17 * time.Second}},
		ok("تمام"),
	)

	res := h.gen.Generate(context.Background(), request("prompt", "general"))
	h.gen.Wait()

	require.True(t, res.OK())
	require.Len(t, km.failed, 1)
	assert.Equal(t, 17*time.Second, km.failed[0].cooldown)
}

func TestGenerate_TerminatesWhenNoKeyIsEverAvailable(t *testing.T) {
	km := newFakeKeys(0, "m1")
	km.err = keys.ErrNoKeyAvailable
	h := newHarness(km, ok("unused"))

	res := h.gen.Generate(context.Background(), request("prompt", "general"))
	h.gen.Wait()

	assert.False(t, res.OK())
	assert.Equal(t, ReasonRetriesExhausted, res.SilentReason)
	assert.Equal(t, 3, km.selects)
	assert.Equal(t, 0, h.provider.calls)
	assert.Len(t, h.sleeps.delays, 2, "no sleep after the last attempt")
}

func TestGenerate_TerminatesWhenEveryAttemptFails(t *testing.T) {
	km := newFakeKeys(5, "m1")
	h := newHarness(km, status(500))

	res := h.gen.Generate(context.Background(), request("prompt", "general"))
	h.gen.Wait()

	assert.False(t, res.OK())
	assert.Equal(t, ReasonRetriesExhausted, res.SilentReason)
	assert.Equal(t, 5, km.selects)
	assert.Equal(t, 5, h.provider.calls)
	assert.Equal(t, 5, res.Attempts)
	assert.Empty(t, km.failed, "server errors do not cool keys down")
}

func TestGenerate_BadRequestIsFatal(t *testing.T) {
	km := newFakeKeys(3, "m1")
	h := newHarness(km, status(400), ok("unused"))

	res := h.gen.Generate(context.Background(), request("prompt", "general"))
	h.gen.Wait()

	assert.False(t, res.OK())
	assert.Equal(t, ReasonRequestRejected, res.SilentReason)
	assert.Equal(t, 1, h.provider.calls)
	assert.Equal(t, 1, res.Attempts)
}

func TestGenerate_SafetyBlockIsFatal(t *testing.T) {
	km := newFakeKeys(3, "m1")
	h := newHarness(km, step{resp: &llm.Response{Blocked: true, BlockReason: "SAFETY"}}, ok("unused"))

	res := h.gen.Generate(context.Background(), request("prompt", "general"))
	h.gen.Wait()

	assert.False(t, res.OK())
	assert.Equal(t, ReasonSafetyBlocked, res.SilentReason)
	assert.Equal(t, 1, h.provider.calls)
	assert.Empty(t, km.failed)
}

func TestGenerate_UnknownProviderParksKey(t *testing.T) {
	km := newFakeKeys(2, "m1")
	km.keys[0].Provider = "gemni"
	h := newHarness(km, ok("تمام، الطلب هيوصل بكرة"))

	res := h.gen.Generate(context.Background(), request("prompt", "order_status"))
	h.gen.Wait()

	require.True(t, res.OK(), res.SilentReason)
	assert.Equal(t, km.keys[1].KeyID, res.KeyUsed)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 1, h.provider.calls)

	assert.Empty(t, km.invalid, "a config mistake must not invalidate the key")
	require.Len(t, km.failed, 1)
	assert.Equal(t, km.keys[0].KeyID, km.failed[0].keyId)
	assert.Equal(t, unknownProviderCooldown, km.failed[0].cooldown)
	assert.Contains(t, km.failed[0].reason, "gemni")
}

func TestGenerate_ShortResponseRetriesOnAnotherKey(t *testing.T) {
	km := newFakeKeys(2, "m1")
	h := newHarness(km, ok("  .  "), ok("تمام يا فندم"))

	res := h.gen.Generate(context.Background(), request("prompt", "general"))
	h.gen.Wait()

	require.True(t, res.OK())
	assert.Equal(t, "تمام يا فندم", *res.Content)
	assert.Equal(t, 2, res.Attempts)
	require.Len(t, km.failed, 1)
	assert.Equal(t, km.keys[0].KeyID, km.failed[0].keyId)
	assert.Equal(t, 30*time.Second, km.failed[0].cooldown)
}

func TestGenerate_ForbiddenInvalidatesKey(t *testing.T) {
	km := newFakeKeys(2, "m1")
	h := newHarness(km, status(403), ok("تمام"))

	res := h.gen.Generate(context.Background(), request("prompt", "general"))
	h.gen.Wait()

	require.True(t, res.OK())
	assert.Contains(t, km.invalid, km.keys[0].KeyID)
	assert.Equal(t, km.keys[1].KeyID, res.KeyUsed)
	assert.Empty(t, h.sleeps.delays)
}

func TestGenerate_NotFoundDisablesModel(t *testing.T) {
	km := newFakeKeys(1, "gemini-1.0-pro")
	km.keys = append(km.keys, &keys.KeyConfig{KeyID: uuid.New(), Provider: "fake", Model: "gemini-2.0-flash"})
	h := newHarness(km, status(404), ok("تمام"))

	res := h.gen.Generate(context.Background(), request("prompt", "general"))
	h.gen.Wait()

	require.True(t, res.OK())
	assert.Contains(t, km.disabled, "gemini-1.0-pro")
	assert.Equal(t, "gemini-2.0-flash", res.ModelUsed)
}

func TestGenerate_AllKeysCoolingIsFatal(t *testing.T) {
	km := newFakeKeys(3, "m1")
	km.err = &keys.AllKeysUnavailableError{RetryAfter: time.Minute}
	h := newHarness(km, ok("unused"))

	res := h.gen.Generate(context.Background(), request("prompt", "general"))
	h.gen.Wait()

	assert.False(t, res.OK())
	assert.Equal(t, ReasonAllKeysUnavailable, res.SilentReason)
	assert.Equal(t, 1, km.selects)
}

func TestGenerate_NoKeysConfigured(t *testing.T) {
	km := newFakeKeys(0, "m1")
	km.err = keys.ErrNoKeysConfigured
	h := newHarness(km)

	res := h.gen.Generate(context.Background(), request("prompt", "general"))
	h.gen.Wait()

	assert.Equal(t, ReasonNoKeysConfigured, res.SilentReason)
}

func TestGenerate_UnknownProviderInvalidatesKey(t *testing.T) {
	km := newFakeKeys(2, "m1")
	km.keys[0].Provider = "anthropic"
	h := newHarness(km, ok("تمام"))

	res := h.gen.Generate(context.Background(), request("prompt", "general"))
	h.gen.Wait()

	require.True(t, res.OK())
	assert.Contains(t, km.invalid, km.keys[0].KeyID)
}

func TestGenerate_ResponseCache(t *testing.T) {
	km := newFakeKeys(1, "m1")
	h := newHarness(km, ok("أهلا وسهلا"))
	req := request("Hello  there", "greeting")

	first := h.gen.Generate(context.Background(), req)
	require.True(t, first.OK())
	assert.False(t, first.FromCache)

	second := h.gen.Generate(context.Background(), &Request{CompanyID: req.CompanyID, Prompt: "hello there", MessageType: "greeting"})
	require.True(t, second.OK())
	assert.True(t, second.FromCache)
	assert.Equal(t, "أهلا وسهلا", *second.Content)
	assert.Equal(t, 0, second.Attempts)
	assert.Equal(t, 1, h.provider.calls)

	fresh := h.gen.Generate(context.Background(), &Request{CompanyID: req.CompanyID, Prompt: "hello there", MessageType: "greeting", ForceFresh: true})
	h.gen.Wait()
	require.True(t, fresh.OK())
	assert.False(t, fresh.FromCache)
	assert.Equal(t, 2, h.provider.calls)
}

func TestGenerate_NonCacheableTypeIsNotStored(t *testing.T) {
	km := newFakeKeys(1, "m1")
	h := newHarness(km, ok("طلبك في الطريق"))
	req := request("where is my order", "order_status")

	require.True(t, h.gen.Generate(context.Background(), req).OK())
	h.gen.Wait()

	_, found, err := h.cache.Get(context.Background(), req.Prompt, req.CompanyID, "")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGenerate_EnqueuesUsageAndInteraction(t *testing.T) {
	km := newFakeKeys(1, "m1")
	h := newHarness(km, ok("تمام"))
	req := request("prompt", "general")

	h.gen.Generate(context.Background(), req)
	h.gen.Wait()

	usage := h.jobs.Find(queue.JobRecordUsage)
	require.Len(t, usage, 1)
	assert.Equal(t, queue.QueueAIUsage, usage[0].Queue)
	assert.Equal(t, 120, usage[0].Payload["totalTokens"])

	logs := h.jobs.Find(queue.JobLogInteraction)
	require.Len(t, logs, 1)
	assert.Equal(t, true, logs[0].Payload["success"])
	assert.Equal(t, "conv-1", logs[0].Payload["conversationId"])
	assert.Equal(t, km.keys[0].KeyID.String(), logs[0].Payload["keyId"])
}

func TestGenerate_FailureLogsSilentReason(t *testing.T) {
	km := newFakeKeys(1, "m1")
	h := newHarness(km, status(400))

	h.gen.Generate(context.Background(), request("prompt", "general"))
	h.gen.Wait()

	assert.Empty(t, h.jobs.Find(queue.JobRecordUsage))
	logs := h.jobs.Find(queue.JobLogInteraction)
	require.Len(t, logs, 1)
	assert.Equal(t, false, logs[0].Payload["success"])
	assert.Equal(t, ReasonRequestRejected, logs[0].Payload["silentReason"])
}

func TestGenerate_EnqueueFailureDoesNotAffectResult(t *testing.T) {
	km := newFakeKeys(1, "m1")
	h := newHarness(km, ok("تمام"))
	h.jobs.Err = errors.New("nats down")

	res := h.gen.Generate(context.Background(), request("prompt", "general"))
	h.gen.Wait()

	assert.True(t, res.OK())
}

func TestGenerate_CanceledContext(t *testing.T) {
	km := newFakeKeys(2, "m1")
	h := newHarness(km, ok("unused"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := h.gen.Generate(ctx, request("prompt", "general"))
	h.gen.Wait()

	assert.Equal(t, ReasonCanceled, res.SilentReason)
	assert.Equal(t, 0, h.provider.calls)
}

func TestGenerate_PassesKeyAndMessageTypeOptions(t *testing.T) {
	km := newFakeKeys(1, "gemini-2.0-flash")
	h := newHarness(km, ok("أهلا"))
	req := request("prompt", "greeting")
	req.Settings = entity.GenerationSettings{TopK: 20, MaxOutputTokens: 2048}

	h.gen.Generate(context.Background(), req)
	h.gen.Wait()

	require.Len(t, h.provider.options, 1)
	o := h.provider.options[0]
	assert.Equal(t, "gemini-2.0-flash", o.Model)
	assert.Equal(t, "secret-0", o.APIKey)
	assert.Equal(t, 20, o.TopK)
	assert.Equal(t, 256, o.MaxTokens, "greeting override wins over company settings")
	assert.InDelta(t, 0.6, o.Temperature, 1e-9)
	assert.InDelta(t, 0.95, o.TopP, 1e-9)
}

func TestGenerate_ExponentialBackoffOnceKeysAreExhausted(t *testing.T) {
	km := newFakeKeys(1, "m1")
	h := newHarness(km, status(503), status(503), ok("تمام"))

	res := h.gen.Generate(context.Background(), request("prompt", "general"))
	h.gen.Wait()

	require.True(t, res.OK())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, h.sleeps.delays)
}
