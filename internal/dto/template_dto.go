package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type UpsertTemplateRequest struct {
	Content  string `json:"content" validate:"required,max=20000"`
	Category string `json:"category" validate:"omitempty,oneof=personality context shipping customer history rag guardrail fallback"`
	IsActive *bool  `json:"is_active"`
}

type TemplateResponse struct {
	Id        uuid.UUID  `json:"id"`
	CompanyId *uuid.UUID `json:"company_id"`
	Key       string     `json:"key"`
	Content   string     `json:"content"`
	Category  string     `json:"category"`
	IsActive  bool       `json:"is_active"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type ClearCacheResponse struct {
	Removed int `json:"removed"`
}

type CompanySettingsRequest struct {
	PersonalityPrompt       string          `json:"personality_prompt" validate:"max=10000"`
	ResponsePrompt          string          `json:"response_prompt" validate:"max=10000"`
	ResponseRules           json.RawMessage `json:"response_rules"`
	DisableDefaultTemplates bool            `json:"disable_default_templates"`
	Temperature             float64         `json:"temperature" validate:"gte=0,lte=2"`
	TopK                    int             `json:"top_k" validate:"gte=0,lte=100"`
	TopP                    float64         `json:"top_p" validate:"gte=0,lte=1"`
	MaxOutputTokens         int             `json:"max_output_tokens" validate:"gte=0,lte=8192"`
}

type CompanySettingsResponse struct {
	CompanyId               uuid.UUID       `json:"company_id"`
	PersonalityPrompt       string          `json:"personality_prompt"`
	ResponsePrompt          string          `json:"response_prompt"`
	ResponseRules           json.RawMessage `json:"response_rules,omitempty"`
	DisableDefaultTemplates bool            `json:"disable_default_templates"`
	Temperature             float64         `json:"temperature"`
	TopK                    int             `json:"top_k"`
	TopP                    float64         `json:"top_p"`
	MaxOutputTokens         int             `json:"max_output_tokens"`
	UpdatedAt               time.Time       `json:"updated_at"`
}
