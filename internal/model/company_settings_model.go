package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CompanyAiSettings struct {
	CompanyId               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	PersonalityPrompt       string         `gorm:"type:text"`
	ResponsePrompt          string         `gorm:"type:text"`
	ResponseRules           datatypes.JSON `gorm:"type:jsonb"`
	DisableDefaultTemplates bool           `gorm:"default:false"`
	Temperature             float64        `gorm:"default:0"`
	TopK                    int            `gorm:"default:0"`
	TopP                    float64        `gorm:"default:0"`
	MaxOutputTokens         int            `gorm:"default:0"`
	CreatedAt               time.Time      `gorm:"autoCreateTime"`
	UpdatedAt               time.Time      `gorm:"autoUpdateTime"`
}

func (CompanyAiSettings) TableName() string {
	return "company_ai_settings"
}
