package entity

import (
	"time"

	"github.com/google/uuid"
)

// AiInteractionLog records one generation call, successful or not.
type AiInteractionLog struct {
	Id               uuid.UUID
	CompanyId        uuid.UUID
	ConversationId   string
	MessageType      string
	KeyId            *uuid.UUID
	Provider         string
	Model            string
	Success          bool
	FromCache        bool
	SilentReason     string
	Attempts         int
	ProcessingMs     int64
	PromptChars      int
	ResponseChars    int
	PromptTokens     int
	CompletionTokens int
	CreatedAt        time.Time
}
