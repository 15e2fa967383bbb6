package mapper

import (
	"ai-support-be/internal/dto"
	"ai-support-be/internal/entity"
	"ai-support-be/pkg/generation"
	"ai-support-be/pkg/prompt"
	"ai-support-be/pkg/prompt/resolver"

	"github.com/google/uuid"
)

type SupportMapper struct{}

func NewSupportMapper() *SupportMapper {
	return &SupportMapper{}
}

// ToPromptInput copies the request into builder input; company prompts are filled in by the caller.
func (m *SupportMapper) ToPromptInput(companyId uuid.UUID, req *dto.ReplyRequest, settings *entity.CompanySettings) *prompt.Input {
	in := &prompt.Input{
		CompanyID: companyId,
		Message:   req.Message,
		Meta: &prompt.MessageData{
			Platform:    prompt.Platform(req.Platform),
			Intent:      prompt.Intent(req.Intent),
			PostText:    req.PostText,
			ProductHint: req.ProductHint,
		},
	}

	if settings != nil {
		in.Company = &prompt.CompanyPrompts{
			PersonalityPrompt: settings.PersonalityPrompt,
			ResponsePrompt:    settings.ResponsePrompt,
			ResponseRules:     settings.ResponseRules,
		}
	}

	if req.ReplyTo != nil {
		in.Meta.ReplyTo = &prompt.QuotedMessage{
			FromCustomer: req.ReplyTo.FromCustomer,
			Content:      req.ReplyTo.Content,
		}
	}

	if len(req.History) > 0 {
		in.History = make([]resolver.ConversationTurn, 0, len(req.History))
		for _, t := range req.History {
			in.History = append(in.History, resolver.ConversationTurn{
				IsFromCustomer: t.IsFromCustomer,
				Content:        t.Content,
				CreatedAt:      t.CreatedAt,
			})
		}
	}

	if len(req.RAG) > 0 {
		in.RAG = make([]resolver.RAGItem, 0, len(req.RAG))
		for _, item := range req.RAG {
			in.RAG = append(in.RAG, resolver.RAGItem{
				Type:     resolver.RAGType(item.Type),
				Content:  item.Content,
				Metadata: item.Metadata,
			})
		}
	}

	if req.Customer != nil {
		in.Customer = &resolver.CustomerData{
			Name:       req.Customer.Name,
			Phone:      req.Customer.Phone,
			City:       req.Customer.City,
			OrderCount: req.Customer.OrderCount,
		}
	}
	return in
}

func (m *SupportMapper) ToReplyResponse(res *generation.Result, intent prompt.Intent) *dto.ReplyResponse {
	out := &dto.ReplyResponse{
		Reply:            res.Content,
		SilentReason:     res.SilentReason,
		ModelUsed:        res.ModelUsed,
		ProviderUsed:     res.ProviderUsed,
		ProcessingTimeMs: res.ProcessingTime.Milliseconds(),
		Attempts:         res.Attempts,
		FromCache:        res.FromCache,
		Intent:           string(intent),
	}
	if res.KeyUsed != uuid.Nil {
		out.KeyUsed = res.KeyUsed.String()
	}
	return out
}

func (m *SupportMapper) ToTemplateResponse(t *entity.PromptTemplate) *dto.TemplateResponse {
	if t == nil {
		return nil
	}
	return &dto.TemplateResponse{
		Id:        t.Id,
		CompanyId: t.CompanyId,
		Key:       t.Key,
		Content:   t.Content,
		Category:  t.Category,
		IsActive:  t.IsActive,
		UpdatedAt: t.UpdatedAt,
	}
}

func (m *SupportMapper) ToSettingsEntity(companyId uuid.UUID, req *dto.CompanySettingsRequest) *entity.CompanySettings {
	return &entity.CompanySettings{
		CompanyId:               companyId,
		PersonalityPrompt:       req.PersonalityPrompt,
		ResponsePrompt:          req.ResponsePrompt,
		ResponseRules:           req.ResponseRules,
		DisableDefaultTemplates: req.DisableDefaultTemplates,
		Generation: entity.GenerationSettings{
			Temperature:     req.Temperature,
			TopK:            req.TopK,
			TopP:            req.TopP,
			MaxOutputTokens: req.MaxOutputTokens,
		},
	}
}

func (m *SupportMapper) ToSettingsResponse(s *entity.CompanySettings) *dto.CompanySettingsResponse {
	if s == nil {
		return nil
	}
	return &dto.CompanySettingsResponse{
		CompanyId:               s.CompanyId,
		PersonalityPrompt:       s.PersonalityPrompt,
		ResponsePrompt:          s.ResponsePrompt,
		ResponseRules:           s.ResponseRules,
		DisableDefaultTemplates: s.DisableDefaultTemplates,
		Temperature:             s.Generation.Temperature,
		TopK:                    s.Generation.TopK,
		TopP:                    s.Generation.TopP,
		MaxOutputTokens:         s.Generation.MaxOutputTokens,
		UpdatedAt:               s.UpdatedAt,
	}
}

// ToInteractionLog converts a queued log_interaction payload into an entity.
func (m *SupportMapper) ToInteractionLog(job *dto.InteractionJob) (*entity.AiInteractionLog, error) {
	companyId, err := uuid.Parse(job.CompanyId)
	if err != nil {
		return nil, err
	}

	log := &entity.AiInteractionLog{
		Id:               uuid.New(),
		CompanyId:        companyId,
		ConversationId:   job.ConversationId,
		MessageType:      job.MessageType,
		Provider:         job.Provider,
		Model:            job.Model,
		Success:          job.Success,
		FromCache:        job.FromCache,
		SilentReason:     job.SilentReason,
		Attempts:         job.Attempts,
		ProcessingMs:     job.ProcessingMs,
		PromptChars:      job.PromptChars,
		ResponseChars:    job.ResponseChars,
		PromptTokens:     job.PromptTokens,
		CompletionTokens: job.CompletionTokens,
	}
	if job.KeyId != "" {
		if keyId, err := uuid.Parse(job.KeyId); err == nil {
			log.KeyId = &keyId
		}
	}
	return log, nil
}
