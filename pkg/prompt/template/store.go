package template

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-support-be/internal/entity"
	"ai-support-be/internal/pkg/logger"

	"github.com/google/uuid"
)

const (
	globalScope    = "global"
	settingsSuffix = "__settings"
)

// Repository is the persistence the store reads from.
// Both finders return (nil, nil) when nothing matches.
type Repository interface {
	FindTemplate(ctx context.Context, companyId *uuid.UUID, key string) (*entity.PromptTemplate, error)
	FindCompanySettings(ctx context.Context, companyId uuid.UUID) (*entity.CompanySettings, error)
}

// Cache holds resolved template content and company settings.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	DeletePrefix(prefix string) int
}

// Store resolves named prompt fragments for a company.
type Store struct {
	repo       Repository
	cache      Cache
	logger     logger.ILogger
	strategies []strategy
}

func NewStore(repo Repository, cache Cache, log logger.ILogger) *Store {
	if log == nil {
		log = logger.NewNopLogger()
	}
	s := &Store{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
	s.strategies = s.defaultChain()
	return s
}

// Resolve returns the content for key with vars substituted. It never fails:
// any lookup error degrades to the hardcoded default, and an unknown key yields "".
func (s *Store) Resolve(ctx context.Context, companyId *uuid.UUID, key string, vars Vars) (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(logger.ModuleTemplate, "Template resolution panicked", map[string]interface{}{
				"key":   key,
				"panic": fmt.Sprint(r),
			})
			out = renderDefault(key, vars)
		}
	}()

	req := &request{companyId: companyId, key: key}
	for _, st := range s.strategies {
		content, ok, err := st.resolve(ctx, req)
		if err != nil {
			s.logger.Warn(logger.ModuleTemplate, "Template lookup failed, using hardcoded default", map[string]interface{}{
				"key":      key,
				"company":  scopeOf(companyId),
				"strategy": st.name,
				"error":    err.Error(),
			})
			return renderDefault(key, vars)
		}
		if ok {
			return Render(content, vars)
		}
	}
	return ""
}

// ClearCache drops every cached template and the cached settings of a company.
func (s *Store) ClearCache(companyId uuid.UUID) int {
	removed := s.cache.DeletePrefix(companyId.String() + ":")
	s.logger.Info(logger.ModuleTemplate, "Template cache cleared", map[string]interface{}{
		"company": companyId.String(),
		"removed": removed,
	})
	return removed
}

// request carries per-call state shared by the strategies.
type request struct {
	companyId *uuid.UUID
	key       string

	settingsLoaded bool
	settings       *entity.CompanySettings
}

// strategy returns ok=true to stop the chain with content (which may be empty).
type strategy struct {
	name    string
	resolve func(ctx context.Context, req *request) (content string, ok bool, err error)
}

func (s *Store) defaultChain() []strategy {
	return []strategy{
		{name: "cache", resolve: s.fromCache},
		{name: "company_row", resolve: s.fromCompanyRow},
		{name: "company_fallback", resolve: s.fromCompanyFallback},
		{name: "defaults_disabled", resolve: s.stopIfDefaultsDisabled},
		{name: "global_row", resolve: s.fromGlobalRow},
		{name: "hardcoded", resolve: s.fromHardcoded},
	}
}

func (s *Store) fromCache(_ context.Context, req *request) (string, bool, error) {
	v, found := s.cache.Get(cacheKey(req.companyId, req.key))
	if !found {
		return "", false, nil
	}
	content, ok := v.(string)
	return content, ok, nil
}

func (s *Store) fromCompanyRow(ctx context.Context, req *request) (string, bool, error) {
	if req.companyId == nil {
		return "", false, nil
	}
	tpl, err := s.repo.FindTemplate(ctx, req.companyId, req.key)
	if err != nil {
		return "", false, fmt.Errorf("find company template: %w", err)
	}
	if tpl == nil || !tpl.IsActive {
		return "", false, nil
	}
	s.cache.Set(cacheKey(req.companyId, req.key), tpl.Content)
	return tpl.Content, true, nil
}

func (s *Store) fromCompanyFallback(ctx context.Context, req *request) (string, bool, error) {
	if req.companyId == nil || !strings.HasPrefix(req.key, FallbackPrefix) {
		return "", false, nil
	}
	settings, err := s.companySettings(ctx, req)
	if err != nil {
		return "", false, err
	}
	if settings == nil || len(settings.ResponseRules) == 0 {
		return "", false, nil
	}

	var rules entity.ResponseRulesFallbacks
	if err := json.Unmarshal(settings.ResponseRules, &rules); err != nil {
		// A broken rules blob only disables the fallback lookup.
		s.logger.Warn(logger.ModuleTemplate, "Response rules are not valid JSON", map[string]interface{}{
			"company": req.companyId.String(),
			"error":   err.Error(),
		})
		return "", false, nil
	}
	content, ok := rules.Fallbacks[req.key]
	if !ok || strings.TrimSpace(content) == "" {
		return "", false, nil
	}
	return content, true, nil
}

func (s *Store) stopIfDefaultsDisabled(ctx context.Context, req *request) (string, bool, error) {
	if req.companyId == nil {
		return "", false, nil
	}
	settings, err := s.companySettings(ctx, req)
	if err != nil {
		return "", false, err
	}
	if settings != nil && settings.DisableDefaultTemplates {
		return "", true, nil
	}
	return "", false, nil
}

func (s *Store) fromGlobalRow(ctx context.Context, req *request) (string, bool, error) {
	if req.companyId != nil {
		// Global rows are cached once under "global:" and shared by every company.
		if v, found := s.cache.Get(cacheKey(nil, req.key)); found {
			if content, ok := v.(string); ok {
				return content, true, nil
			}
		}
	}
	tpl, err := s.repo.FindTemplate(ctx, nil, req.key)
	if err != nil {
		return "", false, fmt.Errorf("find global template: %w", err)
	}
	if tpl == nil || !tpl.IsActive {
		return "", false, nil
	}
	s.cache.Set(cacheKey(nil, req.key), tpl.Content)
	return tpl.Content, true, nil
}

func (s *Store) fromHardcoded(_ context.Context, req *request) (string, bool, error) {
	content, ok := Default(req.key)
	if !ok {
		s.logger.Warn(logger.ModuleTemplate, "No template found for key", map[string]interface{}{
			"key":     req.key,
			"company": scopeOf(req.companyId),
		})
		return "", true, nil
	}
	return content, true, nil
}

// CompanySettings returns the settings of a company through the template cache.
// A nil result with nil error means the company has no settings row.
func (s *Store) CompanySettings(ctx context.Context, companyId uuid.UUID) (*entity.CompanySettings, error) {
	req := &request{companyId: &companyId}
	return s.companySettings(ctx, req)
}

func (s *Store) companySettings(ctx context.Context, req *request) (*entity.CompanySettings, error) {
	if req.settingsLoaded {
		return req.settings, nil
	}
	key := req.companyId.String() + ":" + settingsSuffix
	if v, found := s.cache.Get(key); found {
		if settings, ok := v.(*entity.CompanySettings); ok {
			req.settings, req.settingsLoaded = settings, true
			return settings, nil
		}
	}

	settings, err := s.repo.FindCompanySettings(ctx, *req.companyId)
	if err != nil {
		return nil, fmt.Errorf("find company settings: %w", err)
	}
	s.cache.Set(key, settings)
	req.settings, req.settingsLoaded = settings, true
	return settings, nil
}

func renderDefault(key string, vars Vars) string {
	content, _ := Default(key)
	return Render(content, vars)
}

func cacheKey(companyId *uuid.UUID, key string) string {
	return scopeOf(companyId) + ":" + key
}

func scopeOf(companyId *uuid.UUID) string {
	if companyId == nil {
		return globalScope
	}
	return companyId.String()
}
