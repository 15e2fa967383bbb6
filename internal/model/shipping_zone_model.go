package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ShippingZone struct {
	Id           uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyId    uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Governorates datatypes.JSONSlice[string] `gorm:"type:jsonb;not null"`
	Price        float64                     `gorm:"type:numeric(10,2);not null;default:0"`
	DeliveryTime string                      `gorm:"type:varchar(100)"`
	IsActive     bool                        `gorm:"default:true;index"`
	CreatedAt    time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt    time.Time                   `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt              `gorm:"index"`
}

func (ShippingZone) TableName() string {
	return "shipping_zones"
}
