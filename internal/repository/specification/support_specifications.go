package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByCompanyID filters by owning company. A nil CompanyID selects global rows.
type ByCompanyID struct {
	CompanyID *uuid.UUID
}

func (s ByCompanyID) Apply(db *gorm.DB) *gorm.DB {
	if s.CompanyID == nil {
		return db.Where("company_id IS NULL")
	}
	return db.Where("company_id = ?", *s.CompanyID)
}

// ByCompanyOrGlobal selects the company's rows together with global (NULL company) rows
type ByCompanyOrGlobal struct {
	CompanyID uuid.UUID
}

func (s ByCompanyOrGlobal) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("company_id = ? OR company_id IS NULL", s.CompanyID)
}

// ByKey filters templates by their key
type ByKey struct {
	Key string
}

func (s ByKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("key = ?", s.Key)
}

// IsActive keeps only active rows
type IsActive struct{}

func (s IsActive) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// ByStatus filters by a status column
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
