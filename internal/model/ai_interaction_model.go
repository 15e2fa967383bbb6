package model

import (
	"time"

	"github.com/google/uuid"
)

type AiInteractionLog struct {
	Id               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyId        uuid.UUID  `gorm:"type:uuid;not null;index"`
	ConversationId   string     `gorm:"type:varchar(100);index"`
	MessageType      string     `gorm:"type:varchar(50)"`
	KeyId            *uuid.UUID `gorm:"type:uuid"`
	Provider         string     `gorm:"type:varchar(30)"`
	Model            string     `gorm:"type:varchar(100)"`
	Success          bool       `gorm:"index"`
	FromCache        bool
	SilentReason     string `gorm:"type:text"`
	Attempts         int
	ProcessingMs     int64
	PromptChars      int
	ResponseChars    int
	PromptTokens     int
	CompletionTokens int
	CreatedAt        time.Time `gorm:"autoCreateTime;index"`
}

func (AiInteractionLog) TableName() string {
	return "ai_interaction_logs"
}
