package contract

import (
	"context"

	"ai-support-be/internal/entity"
	"ai-support-be/internal/repository/specification"

	"github.com/google/uuid"
)

// IPromptTemplateRepository defines template and company settings persistence
type IPromptTemplateRepository interface {
	// FindTemplate returns the active row for (companyId, key); nil companyId looks up the global default.
	// Returns (nil, nil) when no row exists.
	FindTemplate(ctx context.Context, companyId *uuid.UUID, key string) (*entity.PromptTemplate, error)
	FindAllTemplates(ctx context.Context, specs ...specification.Specification) ([]*entity.PromptTemplate, error)
	UpsertTemplate(ctx context.Context, template *entity.PromptTemplate) error

	FindCompanySettings(ctx context.Context, companyId uuid.UUID) (*entity.CompanySettings, error)
	SaveCompanySettings(ctx context.Context, settings *entity.CompanySettings) error
}
