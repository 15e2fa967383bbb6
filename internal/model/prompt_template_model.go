package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromptTemplate stores company overrides and global defaults for prompt fragments
type PromptTemplate struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyId *uuid.UUID     `gorm:"type:uuid;uniqueIndex:idx_prompt_template_company_key,priority:1"`
	Key       string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_prompt_template_company_key,priority:2"`
	Content   string         `gorm:"type:text;not null"`
	IsActive  bool           `gorm:"default:true;index"`
	Category  string         `gorm:"type:varchar(50);not null;default:'general';index"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (PromptTemplate) TableName() string {
	return "prompt_templates"
}
