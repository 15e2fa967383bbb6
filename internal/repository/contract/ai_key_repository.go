package contract

import (
	"context"

	"ai-support-be/internal/entity"

	"github.com/google/uuid"
)

type IAiKeyRepository interface {
	// FindUsableKeys returns the company's active keys, or the platform keys when the company has none.
	FindUsableKeys(ctx context.Context, companyId uuid.UUID) ([]*entity.AiApiKey, error)
	MarkInvalid(ctx context.Context, id uuid.UUID, reason string) error
	Create(ctx context.Context, key *entity.AiApiKey) error
}
