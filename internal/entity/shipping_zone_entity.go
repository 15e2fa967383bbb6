package entity

import (
	"time"

	"github.com/google/uuid"
)

type ShippingZone struct {
	Id           uuid.UUID
	CompanyId    uuid.UUID
	Governorates []string // spelling variants, e.g. ["القاهرة", "القاهره", "Cairo"]
	Price        float64
	DeliveryTime string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
