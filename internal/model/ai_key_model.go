package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AiApiKey struct {
	Id                uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyId         *uuid.UUID                  `gorm:"type:uuid;index"`
	Provider          string                      `gorm:"type:varchar(30);not null;default:'gemini'"`
	Secret            string                      `gorm:"type:text;not null"`
	Models            datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Priority          int                         `gorm:"default:0"`
	Status            string                      `gorm:"type:varchar(20);not null;default:'active';index"`
	InvalidReason     string                      `gorm:"type:text"`
	RequestsPerMinute int                         `gorm:"default:0"`
	CreatedAt         time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt         time.Time                   `gorm:"autoUpdateTime"`
	DeletedAt         gorm.DeletedAt              `gorm:"index"`
}

func (AiApiKey) TableName() string {
	return "ai_api_keys"
}
