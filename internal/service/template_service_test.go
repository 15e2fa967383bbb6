package service

import (
	"context"
	"encoding/json"
	"testing"

	"ai-support-be/internal/dto"
	"ai-support-be/internal/entity"
	"ai-support-be/internal/pkg/logger"
	"ai-support-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTemplateRepo struct {
	templates []*entity.PromptTemplate
	settings  map[uuid.UUID]*entity.CompanySettings
	specs     []specification.Specification
}

func (r *fakeTemplateRepo) FindTemplate(_ context.Context, companyId *uuid.UUID, key string) (*entity.PromptTemplate, error) {
	for _, t := range r.templates {
		if t.Key == key && ((companyId == nil && t.CompanyId == nil) || (companyId != nil && t.CompanyId != nil && *t.CompanyId == *companyId)) {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTemplateRepo) FindAllTemplates(_ context.Context, specs ...specification.Specification) ([]*entity.PromptTemplate, error) {
	r.specs = specs
	return r.templates, nil
}

func (r *fakeTemplateRepo) UpsertTemplate(_ context.Context, t *entity.PromptTemplate) error {
	r.templates = append(r.templates, t)
	return nil
}

func (r *fakeTemplateRepo) FindCompanySettings(_ context.Context, companyId uuid.UUID) (*entity.CompanySettings, error) {
	return r.settings[companyId], nil
}

func (r *fakeTemplateRepo) SaveCompanySettings(_ context.Context, s *entity.CompanySettings) error {
	if r.settings == nil {
		r.settings = map[uuid.UUID]*entity.CompanySettings{}
	}
	r.settings[s.CompanyId] = s
	return nil
}

type fakeClearer struct {
	cleared []uuid.UUID
}

func (c *fakeClearer) ClearCache(companyId uuid.UUID) int {
	c.cleared = append(c.cleared, companyId)
	return 4
}

func TestTemplateService_Upsert(t *testing.T) {
	companyId := uuid.New()

	t.Run("Known key is stored and the company cache is cleared", func(t *testing.T) {
		repo := &fakeTemplateRepo{}
		cache := &fakeClearer{}
		svc := NewTemplateService(repo, cache, logger.NewNopLogger())

		res, err := svc.Upsert(context.Background(), companyId, "personality_default", &dto.UpsertTemplateRequest{
			Content:  "You sell shoes.",
			Category: entity.TemplateCategoryPersonality,
		})
		require.NoError(t, err)

		require.Len(t, repo.templates, 1)
		assert.Equal(t, "You sell shoes.", repo.templates[0].Content)
		assert.True(t, repo.templates[0].IsActive)
		assert.Equal(t, companyId, *res.CompanyId)
		assert.Equal(t, []uuid.UUID{companyId}, cache.cleared)
	})

	t.Run("Fallback namespace defaults its category", func(t *testing.T) {
		repo := &fakeTemplateRepo{}
		svc := NewTemplateService(repo, &fakeClearer{}, logger.NewNopLogger())

		inactive := false
		res, err := svc.Upsert(context.Background(), companyId, "fallback_custom_thing", &dto.UpsertTemplateRequest{
			Content:  "We will call you back.",
			IsActive: &inactive,
		})
		require.NoError(t, err)
		assert.Equal(t, entity.TemplateCategoryFallback, res.Category)
		assert.False(t, res.IsActive)
	})

	t.Run("Unknown key is rejected", func(t *testing.T) {
		repo := &fakeTemplateRepo{}
		cache := &fakeClearer{}
		svc := NewTemplateService(repo, cache, logger.NewNopLogger())

		for _, key := range []string{"not_a_template", "fallback_"} {
			_, err := svc.Upsert(context.Background(), companyId, key, &dto.UpsertTemplateRequest{Content: "x"})
			assert.ErrorIs(t, err, ErrUnknownTemplateKey, key)
		}
		assert.Empty(t, repo.templates)
		assert.Empty(t, cache.cleared)
	})
}

func TestTemplateService_List(t *testing.T) {
	companyId := uuid.New()
	repo := &fakeTemplateRepo{templates: []*entity.PromptTemplate{
		{Id: uuid.New(), Key: "rag_header", Content: "global"},
		{Id: uuid.New(), CompanyId: &companyId, Key: "rag_header", Content: "company"},
	}}
	svc := NewTemplateService(repo, &fakeClearer{}, logger.NewNopLogger())

	out, err := svc.List(context.Background(), companyId)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	require.Len(t, repo.specs, 1)
	assert.Equal(t, specification.ByCompanyOrGlobal{CompanyID: companyId}, repo.specs[0])
}

func TestTemplateService_ClearCache(t *testing.T) {
	companyId := uuid.New()
	cache := &fakeClearer{}
	svc := NewTemplateService(&fakeTemplateRepo{}, cache, logger.NewNopLogger())

	res := svc.ClearCache(companyId)
	assert.Equal(t, 4, res.Removed)
	assert.Equal(t, []uuid.UUID{companyId}, cache.cleared)
}

func TestTemplateService_Settings(t *testing.T) {
	companyId := uuid.New()

	t.Run("Missing settings return nil", func(t *testing.T) {
		svc := NewTemplateService(&fakeTemplateRepo{}, &fakeClearer{}, logger.NewNopLogger())
		res, err := svc.GetSettings(context.Background(), companyId)
		assert.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("Valid rules are saved and evict the cache", func(t *testing.T) {
		repo := &fakeTemplateRepo{}
		cache := &fakeClearer{}
		svc := NewTemplateService(repo, cache, logger.NewNopLogger())

		res, err := svc.SaveSettings(context.Background(), companyId, &dto.CompanySettingsRequest{
			PersonalityPrompt: "calm",
			ResponseRules:     json.RawMessage(`{"fallbacks":{"fallback_no_data":"one moment"}}`),
			Temperature:       0.4,
		})
		require.NoError(t, err)
		assert.Equal(t, "calm", res.PersonalityPrompt)
		assert.InDelta(t, 0.4, res.Temperature, 1e-9)
		assert.False(t, res.UpdatedAt.IsZero())
		assert.Equal(t, []uuid.UUID{companyId}, cache.cleared)

		got, err := svc.GetSettings(context.Background(), companyId)
		require.NoError(t, err)
		assert.Equal(t, "calm", got.PersonalityPrompt)
	})

	t.Run("Malformed rules are rejected", func(t *testing.T) {
		repo := &fakeTemplateRepo{}
		svc := NewTemplateService(repo, &fakeClearer{}, logger.NewNopLogger())

		_, err := svc.SaveSettings(context.Background(), companyId, &dto.CompanySettingsRequest{
			ResponseRules: json.RawMessage(`{"responseLength":"epic"}`),
		})
		assert.ErrorIs(t, err, ErrInvalidRules)
		assert.Empty(t, repo.settings)

		_, err = svc.SaveSettings(context.Background(), companyId, &dto.CompanySettingsRequest{
			ResponseRules: json.RawMessage(`{not json`),
		})
		assert.ErrorIs(t, err, ErrInvalidRules)
	})
}
