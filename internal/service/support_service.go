package service

import (
	"context"

	"ai-support-be/internal/dto"
	"ai-support-be/internal/entity"
	"ai-support-be/internal/mapper"
	"ai-support-be/internal/pkg/logger"
	"ai-support-be/pkg/generation"
	"ai-support-be/pkg/prompt"

	"github.com/google/uuid"
)

type ISupportService interface {
	Reply(ctx context.Context, companyId uuid.UUID, req *dto.ReplyRequest) (*dto.ReplyResponse, error)
	Preview(ctx context.Context, companyId uuid.UUID, req *dto.ReplyRequest) (*dto.PreviewPromptResponse, error)
}

type PromptBuilder interface {
	Build(ctx context.Context, in *prompt.Input) string
}

type ReplyGenerator interface {
	Generate(ctx context.Context, req *generation.Request) *generation.Result
}

type SettingsSource interface {
	CompanySettings(ctx context.Context, companyId uuid.UUID) (*entity.CompanySettings, error)
}

type supportService struct {
	builder   PromptBuilder
	generator ReplyGenerator
	settings  SettingsSource
	mapper    *mapper.SupportMapper
	logger    logger.ILogger
}

func NewSupportService(builder PromptBuilder, generator ReplyGenerator, settings SettingsSource, log logger.ILogger) ISupportService {
	return &supportService{
		builder:   builder,
		generator: generator,
		settings:  settings,
		mapper:    mapper.NewSupportMapper(),
		logger:    log,
	}
}

func (s *supportService) Reply(ctx context.Context, companyId uuid.UUID, req *dto.ReplyRequest) (*dto.ReplyResponse, error) {
	settings := s.companySettings(ctx, companyId)
	in, intent := s.input(companyId, req, settings)

	genReq := &generation.Request{
		CompanyID:      companyId,
		ConversationID: req.ConversationId,
		Prompt:         s.builder.Build(ctx, in),
		MessageType:    string(intent),
		ForceFresh:     req.ForceFresh,
	}
	if settings != nil {
		genReq.Settings = settings.Generation
	}

	res := s.generator.Generate(ctx, genReq)
	if !res.OK() {
		s.logger.Warn(logger.ModuleGeneration, "Reply suppressed", map[string]interface{}{
			"companyId":      companyId.String(),
			"conversationId": req.ConversationId,
			"reason":         res.SilentReason,
			"attempts":       res.Attempts,
		})
	}
	return s.mapper.ToReplyResponse(res, intent), nil
}

func (s *supportService) Preview(ctx context.Context, companyId uuid.UUID, req *dto.ReplyRequest) (*dto.PreviewPromptResponse, error) {
	in, intent := s.input(companyId, req, s.companySettings(ctx, companyId))
	return &dto.PreviewPromptResponse{
		Prompt: s.builder.Build(ctx, in),
		Intent: string(intent),
	}, nil
}

// input resolves the intent up front so the prompt and the generation overrides agree on it.
func (s *supportService) input(companyId uuid.UUID, req *dto.ReplyRequest, settings *entity.CompanySettings) (*prompt.Input, prompt.Intent) {
	in := s.mapper.ToPromptInput(companyId, req, settings)
	if in.Meta.Intent == "" {
		in.Meta.Intent = prompt.InferIntent(req.Message)
	}
	return in, in.Meta.Intent
}

func (s *supportService) companySettings(ctx context.Context, companyId uuid.UUID) *entity.CompanySettings {
	settings, err := s.settings.CompanySettings(ctx, companyId)
	if err != nil {
		s.logger.Warn(logger.ModuleTemplate, "Company settings unavailable, using defaults", map[string]interface{}{
			"companyId": companyId.String(),
			"error":     err.Error(),
		})
		return nil
	}
	return settings
}
