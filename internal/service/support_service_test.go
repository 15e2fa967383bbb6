package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-support-be/internal/dto"
	"ai-support-be/internal/entity"
	"ai-support-be/internal/pkg/logger"
	"ai-support-be/pkg/generation"
	"ai-support-be/pkg/prompt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuilder struct {
	inputs []*prompt.Input
}

func (b *fakeBuilder) Build(_ context.Context, in *prompt.Input) string {
	b.inputs = append(b.inputs, in)
	return "PROMPT:" + in.Message
}

type fakeGenerator struct {
	requests []*generation.Request
	result   *generation.Result
}

func (g *fakeGenerator) Generate(_ context.Context, req *generation.Request) *generation.Result {
	g.requests = append(g.requests, req)
	return g.result
}

type fakeSettings struct {
	settings *entity.CompanySettings
	err      error
}

func (s *fakeSettings) CompanySettings(context.Context, uuid.UUID) (*entity.CompanySettings, error) {
	return s.settings, s.err
}

func strPtr(s string) *string { return &s }

func TestSupportService_Reply(t *testing.T) {
	companyId := uuid.New()
	keyId := uuid.New()

	t.Run("Infers intent and forwards company sampling settings", func(t *testing.T) {
		builder := &fakeBuilder{}
		gen := &fakeGenerator{result: &generation.Result{
			Content:        strPtr("sorry about that"),
			KeyUsed:        keyId,
			ModelUsed:      "gemini-2.0-flash",
			ProviderUsed:   "gemini",
			ProcessingTime: 1500 * time.Millisecond,
			Attempts:       2,
		}}
		settings := &fakeSettings{settings: &entity.CompanySettings{
			CompanyId:         companyId,
			PersonalityPrompt: "friendly",
			Generation:        entity.GenerationSettings{Temperature: 0.9},
		}}
		svc := NewSupportService(builder, gen, settings, logger.NewNopLogger())

		res, err := svc.Reply(context.Background(), companyId, &dto.ReplyRequest{
			CompanyId:      companyId.String(),
			ConversationId: "conv-1",
			Message:        "the product arrived broken",
		})
		require.NoError(t, err)

		require.Len(t, gen.requests, 1)
		req := gen.requests[0]
		assert.Equal(t, string(prompt.IntentComplaint), req.MessageType)
		assert.Equal(t, "PROMPT:the product arrived broken", req.Prompt)
		assert.Equal(t, "conv-1", req.ConversationID)
		assert.InDelta(t, 0.9, req.Settings.Temperature, 1e-9)

		require.Len(t, builder.inputs, 1)
		assert.Equal(t, prompt.IntentComplaint, builder.inputs[0].Meta.Intent)
		require.NotNil(t, builder.inputs[0].Company)
		assert.Equal(t, "friendly", builder.inputs[0].Company.PersonalityPrompt)

		require.NotNil(t, res.Reply)
		assert.Equal(t, "sorry about that", *res.Reply)
		assert.Equal(t, keyId.String(), res.KeyUsed)
		assert.Equal(t, int64(1500), res.ProcessingTimeMs)
		assert.Equal(t, "complaint", res.Intent)
	})

	t.Run("Explicit intent wins over inference", func(t *testing.T) {
		gen := &fakeGenerator{result: &generation.Result{Content: strPtr("hi")}}
		svc := NewSupportService(&fakeBuilder{}, gen, &fakeSettings{}, logger.NewNopLogger())

		_, err := svc.Reply(context.Background(), companyId, &dto.ReplyRequest{
			Message: "the product arrived broken",
			Intent:  "order_status",
		})
		require.NoError(t, err)
		assert.Equal(t, "order_status", gen.requests[0].MessageType)
	})

	t.Run("Settings failure still replies with defaults", func(t *testing.T) {
		builder := &fakeBuilder{}
		gen := &fakeGenerator{result: &generation.Result{Content: strPtr("ok")}}
		svc := NewSupportService(builder, gen, &fakeSettings{err: errors.New("db down")}, logger.NewNopLogger())

		res, err := svc.Reply(context.Background(), companyId, &dto.ReplyRequest{Message: "hello"})
		require.NoError(t, err)
		assert.Nil(t, builder.inputs[0].Company)
		assert.Equal(t, entity.GenerationSettings{}, gen.requests[0].Settings)
		assert.Equal(t, "ok", *res.Reply)
	})

	t.Run("Silent result maps to a null reply", func(t *testing.T) {
		gen := &fakeGenerator{result: &generation.Result{SilentReason: generation.ReasonAllKeysUnavailable, Attempts: 3}}
		svc := NewSupportService(&fakeBuilder{}, gen, &fakeSettings{}, logger.NewNopLogger())

		res, err := svc.Reply(context.Background(), companyId, &dto.ReplyRequest{Message: "hello"})
		require.NoError(t, err)
		assert.Nil(t, res.Reply)
		assert.Equal(t, generation.ReasonAllKeysUnavailable, res.SilentReason)
		assert.Empty(t, res.KeyUsed)
		assert.Equal(t, 3, res.Attempts)
	})

	t.Run("ForceFresh reaches the generator", func(t *testing.T) {
		gen := &fakeGenerator{result: &generation.Result{Content: strPtr("ok")}}
		svc := NewSupportService(&fakeBuilder{}, gen, &fakeSettings{}, logger.NewNopLogger())

		_, err := svc.Reply(context.Background(), companyId, &dto.ReplyRequest{Message: "hello", ForceFresh: true})
		require.NoError(t, err)
		assert.True(t, gen.requests[0].ForceFresh)
	})
}

func TestSupportService_Preview(t *testing.T) {
	companyId := uuid.New()
	builder := &fakeBuilder{}
	gen := &fakeGenerator{}
	svc := NewSupportService(builder, gen, &fakeSettings{}, logger.NewNopLogger())

	res, err := svc.Preview(context.Background(), companyId, &dto.ReplyRequest{
		Message:  "my order status please",
		Platform: "whatsapp",
		History: []dto.ConversationTurn{
			{IsFromCustomer: true, Content: "hi"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "PROMPT:my order status please", res.Prompt)
	assert.Equal(t, string(prompt.IntentOrderStatus), res.Intent)
	assert.Empty(t, gen.requests, "preview must not call a model")

	require.Len(t, builder.inputs, 1)
	in := builder.inputs[0]
	assert.Equal(t, companyId, in.CompanyID)
	assert.Equal(t, prompt.Platform("whatsapp"), in.Meta.Platform)
	require.Len(t, in.History, 1)
	assert.True(t, in.History[0].IsFromCustomer)
}
