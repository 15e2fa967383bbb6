package implementation

import (
	"context"

	"ai-support-be/internal/entity"
	"ai-support-be/internal/model"
	"ai-support-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type aiInteractionRepository struct {
	db *gorm.DB
}

func NewAiInteractionRepository(db *gorm.DB) contract.IAiInteractionRepository {
	return &aiInteractionRepository{db: db}
}

func (r *aiInteractionRepository) Create(ctx context.Context, log *entity.AiInteractionLog) error {
	if log.Id == uuid.Nil {
		log.Id = uuid.New()
	}
	m := &model.AiInteractionLog{
		Id:               log.Id,
		CompanyId:        log.CompanyId,
		ConversationId:   log.ConversationId,
		MessageType:      log.MessageType,
		KeyId:            log.KeyId,
		Provider:         log.Provider,
		Model:            log.Model,
		Success:          log.Success,
		FromCache:        log.FromCache,
		SilentReason:     log.SilentReason,
		Attempts:         log.Attempts,
		ProcessingMs:     log.ProcessingMs,
		PromptChars:      log.PromptChars,
		ResponseChars:    log.ResponseChars,
		PromptTokens:     log.PromptTokens,
		CompletionTokens: log.CompletionTokens,
		CreatedAt:        log.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(m).Error
}
