package entity

import (
	"time"

	"github.com/google/uuid"
)

// PromptTemplate is a named prompt fragment. CompanyId nil marks the global default row.
type PromptTemplate struct {
	Id        uuid.UUID
	CompanyId *uuid.UUID
	Key       string // e.g. "shipping_response", "critical_constraints"
	Content   string // XML-ish text with {{placeholders}}
	IsActive  bool
	Category  string // "personality", "shipping", "history", "rag", "guardrail", "fallback"
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category constants for PromptTemplate
const (
	TemplateCategoryPersonality = "personality"
	TemplateCategoryContext     = "context"
	TemplateCategoryShipping    = "shipping"
	TemplateCategoryCustomer    = "customer"
	TemplateCategoryHistory     = "history"
	TemplateCategoryRAG         = "rag"
	TemplateCategoryGuardrail   = "guardrail"
	TemplateCategoryFallback    = "fallback"
)
