package entity

import (
	"time"

	"github.com/google/uuid"
)

// AiApiKey is a provider credential. CompanyId nil marks a platform-wide key
// shared by every company without keys of its own.
type AiApiKey struct {
	Id                uuid.UUID
	CompanyId         *uuid.UUID
	Provider          string   // "gemini", "openai", "ollama"
	Secret            string   // the API key itself
	Models            []string // preferred order
	Priority          int
	Status            string
	InvalidReason     string
	RequestsPerMinute int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const (
	AiKeyStatusActive  = "active"
	AiKeyStatusInvalid = "invalid"
)
