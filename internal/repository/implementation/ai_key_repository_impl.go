package implementation

import (
	"context"

	"ai-support-be/internal/entity"
	"ai-support-be/internal/model"
	"ai-support-be/internal/repository/contract"
	"ai-support-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type aiKeyRepository struct {
	db *gorm.DB
}

func NewAiKeyRepository(db *gorm.DB) contract.IAiKeyRepository {
	return &aiKeyRepository{db: db}
}

func (r *aiKeyRepository) findActive(ctx context.Context, companyId *uuid.UUID) ([]model.AiApiKey, error) {
	var models []model.AiApiKey
	query := r.db.WithContext(ctx)
	for _, spec := range []specification.Specification{
		specification.ByCompanyID{CompanyID: companyId},
		specification.ByStatus{Status: entity.AiKeyStatusActive},
		specification.OrderBy{Field: "priority", Desc: true},
		specification.OrderBy{Field: "created_at", Desc: false},
	} {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}

func (r *aiKeyRepository) FindUsableKeys(ctx context.Context, companyId uuid.UUID) ([]*entity.AiApiKey, error) {
	models, err := r.findActive(ctx, &companyId)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		// Fall back to platform-wide keys
		if models, err = r.findActive(ctx, nil); err != nil {
			return nil, err
		}
	}

	keys := make([]*entity.AiApiKey, len(models))
	for i := range models {
		keys[i] = aiKeyModelToEntity(&models[i])
	}
	return keys, nil
}

func (r *aiKeyRepository) MarkInvalid(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).Model(&model.AiApiKey{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         entity.AiKeyStatusInvalid,
			"invalid_reason": reason,
		}).Error
}

func (r *aiKeyRepository) Create(ctx context.Context, key *entity.AiApiKey) error {
	if key.Id == uuid.Nil {
		key.Id = uuid.New()
	}
	if key.Status == "" {
		key.Status = entity.AiKeyStatusActive
	}
	m := &model.AiApiKey{
		Id:                key.Id,
		CompanyId:         key.CompanyId,
		Provider:          key.Provider,
		Secret:            key.Secret,
		Models:            datatypes.JSONSlice[string](key.Models),
		Priority:          key.Priority,
		Status:            key.Status,
		RequestsPerMinute: key.RequestsPerMinute,
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func aiKeyModelToEntity(m *model.AiApiKey) *entity.AiApiKey {
	return &entity.AiApiKey{
		Id:                m.Id,
		CompanyId:         m.CompanyId,
		Provider:          m.Provider,
		Secret:            m.Secret,
		Models:            []string(m.Models),
		Priority:          m.Priority,
		Status:            m.Status,
		InvalidReason:     m.InvalidReason,
		RequestsPerMinute: m.RequestsPerMinute,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
