package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CompanySettings carries the per-company AI behaviour configuration.
type CompanySettings struct {
	CompanyId               uuid.UUID
	PersonalityPrompt       string
	ResponsePrompt          string          // legacy free-text override
	ResponseRules           json.RawMessage // rule selection plus optional "fallbacks" map
	DisableDefaultTemplates bool
	Generation              GenerationSettings
	UpdatedAt               time.Time
}

// GenerationSettings are the base sampling parameters for a company.
// Zero values mean "use the platform default".
type GenerationSettings struct {
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
}

// ResponseRulesFallbacks is the shape of the "fallbacks" map inside ResponseRules.
type ResponseRulesFallbacks struct {
	Fallbacks map[string]string `json:"fallbacks"`
}
