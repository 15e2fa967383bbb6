package contract

import (
	"context"

	"ai-support-be/internal/entity"
)

type IAiInteractionRepository interface {
	Create(ctx context.Context, log *entity.AiInteractionLog) error
}
