package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"ai-support-be/internal/dto"
	"ai-support-be/internal/entity"
	"ai-support-be/internal/mapper"
	"ai-support-be/internal/pkg/logger"
	"ai-support-be/internal/repository/contract"
	"ai-support-be/internal/repository/specification"
	"ai-support-be/pkg/prompt/rules"
	"ai-support-be/pkg/prompt/template"

	"github.com/google/uuid"
)

var (
	ErrUnknownTemplateKey = errors.New("unknown template key")
	ErrInvalidRules       = errors.New("invalid response rules")
)

type ITemplateService interface {
	List(ctx context.Context, companyId uuid.UUID) ([]*dto.TemplateResponse, error)
	Upsert(ctx context.Context, companyId uuid.UUID, key string, req *dto.UpsertTemplateRequest) (*dto.TemplateResponse, error)
	ClearCache(companyId uuid.UUID) *dto.ClearCacheResponse
	GetSettings(ctx context.Context, companyId uuid.UUID) (*dto.CompanySettingsResponse, error)
	SaveSettings(ctx context.Context, companyId uuid.UUID, req *dto.CompanySettingsRequest) (*dto.CompanySettingsResponse, error)
}

// CacheClearer drops a company's cached templates and settings; see template.Store.
type CacheClearer interface {
	ClearCache(companyId uuid.UUID) int
}

type templateService struct {
	repo   contract.IPromptTemplateRepository
	cache  CacheClearer
	mapper *mapper.SupportMapper
	logger logger.ILogger
}

func NewTemplateService(repo contract.IPromptTemplateRepository, cache CacheClearer, log logger.ILogger) ITemplateService {
	return &templateService{
		repo:   repo,
		cache:  cache,
		mapper: mapper.NewSupportMapper(),
		logger: log,
	}
}

func (s *templateService) List(ctx context.Context, companyId uuid.UUID) ([]*dto.TemplateResponse, error) {
	rows, err := s.repo.FindAllTemplates(ctx, specification.ByCompanyOrGlobal{CompanyID: companyId})
	if err != nil {
		return nil, err
	}
	out := make([]*dto.TemplateResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, s.mapper.ToTemplateResponse(r))
	}
	return out, nil
}

func (s *templateService) Upsert(ctx context.Context, companyId uuid.UUID, key string, req *dto.UpsertTemplateRequest) (*dto.TemplateResponse, error) {
	if !knownTemplateKey(key) {
		return nil, ErrUnknownTemplateKey
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	category := req.Category
	if category == "" && strings.HasPrefix(key, template.FallbackPrefix) {
		category = entity.TemplateCategoryFallback
	}

	now := time.Now()
	t := &entity.PromptTemplate{
		Id:        uuid.New(),
		CompanyId: &companyId,
		Key:       key,
		Content:   req.Content,
		IsActive:  active,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.UpsertTemplate(ctx, t); err != nil {
		return nil, err
	}

	removed := s.cache.ClearCache(companyId)
	s.logger.Info(logger.ModuleTemplate, "Template saved", map[string]interface{}{
		"companyId":      companyId.String(),
		"key":            key,
		"active":         active,
		"cacheEvictions": removed,
	})
	return s.mapper.ToTemplateResponse(t), nil
}

func (s *templateService) ClearCache(companyId uuid.UUID) *dto.ClearCacheResponse {
	return &dto.ClearCacheResponse{Removed: s.cache.ClearCache(companyId)}
}

func (s *templateService) GetSettings(ctx context.Context, companyId uuid.UUID) (*dto.CompanySettingsResponse, error) {
	settings, err := s.repo.FindCompanySettings(ctx, companyId)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, nil
	}
	return s.mapper.ToSettingsResponse(settings), nil
}

func (s *templateService) SaveSettings(ctx context.Context, companyId uuid.UUID, req *dto.CompanySettingsRequest) (*dto.CompanySettingsResponse, error) {
	if _, err := rules.Parse(req.ResponseRules); err != nil {
		return nil, errors.Join(ErrInvalidRules, err)
	}

	settings := s.mapper.ToSettingsEntity(companyId, req)
	settings.UpdatedAt = time.Now()
	if err := s.repo.SaveCompanySettings(ctx, settings); err != nil {
		return nil, err
	}
	s.cache.ClearCache(companyId)
	return s.mapper.ToSettingsResponse(settings), nil
}

func knownTemplateKey(key string) bool {
	if strings.HasPrefix(key, template.FallbackPrefix) && len(key) > len(template.FallbackPrefix) {
		return true
	}
	_, ok := template.Default(key)
	return ok
}
