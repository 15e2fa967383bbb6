package unitofwork

import (
	"context"

	"ai-support-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	PromptTemplateRepository() contract.IPromptTemplateRepository
	ShippingZoneRepository() contract.IShippingZoneRepository
	AiKeyRepository() contract.IAiKeyRepository
	AiInteractionRepository() contract.IAiInteractionRepository
}
