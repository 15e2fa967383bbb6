package contract

import (
	"context"

	"ai-support-be/internal/entity"

	"github.com/google/uuid"
)

type IShippingZoneRepository interface {
	FindShippingZones(ctx context.Context, companyId uuid.UUID) ([]*entity.ShippingZone, error)
}
