package implementation

import (
	"context"
	"encoding/json"
	"errors"

	"ai-support-be/internal/entity"
	"ai-support-be/internal/model"
	"ai-support-be/internal/repository/contract"
	"ai-support-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type promptTemplateRepository struct {
	db *gorm.DB
}

// NewPromptTemplateRepository creates a new prompt template repository
func NewPromptTemplateRepository(db *gorm.DB) contract.IPromptTemplateRepository {
	return &promptTemplateRepository{db: db}
}

func (r *promptTemplateRepository) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// ============================================================================
// Template Methods
// ============================================================================

func (r *promptTemplateRepository) FindTemplate(ctx context.Context, companyId *uuid.UUID, key string) (*entity.PromptTemplate, error) {
	var m model.PromptTemplate
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByCompanyID{CompanyID: companyId},
		specification.ByKey{Key: key},
		specification.IsActive{},
	)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return templateModelToEntity(&m), nil
}

func (r *promptTemplateRepository) FindAllTemplates(ctx context.Context, specs ...specification.Specification) ([]*entity.PromptTemplate, error) {
	var models []model.PromptTemplate
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Order("key ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.PromptTemplate, len(models))
	for i := range models {
		entities[i] = templateModelToEntity(&models[i])
	}
	return entities, nil
}

// UpsertTemplate updates the (companyId, key) row in place or creates it.
// Lookup-then-write instead of ON CONFLICT: global rows have a NULL company_id,
// which never conflicts in a unique index.
func (r *promptTemplateRepository) UpsertTemplate(ctx context.Context, template *entity.PromptTemplate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.PromptTemplate
		err := r.applySpecifications(tx,
			specification.ByCompanyID{CompanyID: template.CompanyId},
			specification.ByKey{Key: template.Key},
		).First(&existing).Error

		switch {
		case err == nil:
			template.Id = existing.Id
			return tx.Model(&existing).Updates(map[string]interface{}{
				"content":   template.Content,
				"is_active": template.IsActive,
				"category":  template.Category,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			if template.Id == uuid.Nil {
				template.Id = uuid.New()
			}
			return tx.Create(templateEntityToModel(template)).Error
		default:
			return err
		}
	})
}

// ============================================================================
// Company Settings
// ============================================================================

func (r *promptTemplateRepository) FindCompanySettings(ctx context.Context, companyId uuid.UUID) (*entity.CompanySettings, error) {
	var m model.CompanyAiSettings
	if err := r.db.WithContext(ctx).Where("company_id = ?", companyId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return settingsModelToEntity(&m), nil
}

func (r *promptTemplateRepository) SaveCompanySettings(ctx context.Context, settings *entity.CompanySettings) error {
	m := settingsEntityToModel(settings)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "company_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"personality_prompt", "response_prompt", "response_rules", "disable_default_templates",
			"temperature", "top_k", "top_p", "max_output_tokens", "updated_at",
		}),
	}).Create(m).Error
}

// ============================================================================
// Mappers
// ============================================================================

func templateModelToEntity(m *model.PromptTemplate) *entity.PromptTemplate {
	return &entity.PromptTemplate{
		Id:        m.Id,
		CompanyId: m.CompanyId,
		Key:       m.Key,
		Content:   m.Content,
		IsActive:  m.IsActive,
		Category:  m.Category,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func templateEntityToModel(e *entity.PromptTemplate) *model.PromptTemplate {
	return &model.PromptTemplate{
		Id:        e.Id,
		CompanyId: e.CompanyId,
		Key:       e.Key,
		Content:   e.Content,
		IsActive:  e.IsActive,
		Category:  e.Category,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func settingsModelToEntity(m *model.CompanyAiSettings) *entity.CompanySettings {
	return &entity.CompanySettings{
		CompanyId:               m.CompanyId,
		PersonalityPrompt:       m.PersonalityPrompt,
		ResponsePrompt:          m.ResponsePrompt,
		ResponseRules:           json.RawMessage(m.ResponseRules),
		DisableDefaultTemplates: m.DisableDefaultTemplates,
		Generation: entity.GenerationSettings{
			Temperature:     m.Temperature,
			TopK:            m.TopK,
			TopP:            m.TopP,
			MaxOutputTokens: m.MaxOutputTokens,
		},
		UpdatedAt: m.UpdatedAt,
	}
}

func settingsEntityToModel(e *entity.CompanySettings) *model.CompanyAiSettings {
	return &model.CompanyAiSettings{
		CompanyId:               e.CompanyId,
		PersonalityPrompt:       e.PersonalityPrompt,
		ResponsePrompt:          e.ResponsePrompt,
		ResponseRules:           datatypes.JSON(e.ResponseRules),
		DisableDefaultTemplates: e.DisableDefaultTemplates,
		Temperature:             e.Generation.Temperature,
		TopK:                    e.Generation.TopK,
		TopP:                    e.Generation.TopP,
		MaxOutputTokens:         e.Generation.MaxOutputTokens,
		UpdatedAt:               e.UpdatedAt,
	}
}
