package implementation

import (
	"context"

	"ai-support-be/internal/entity"
	"ai-support-be/internal/model"
	"ai-support-be/internal/repository/contract"
	"ai-support-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type shippingZoneRepository struct {
	db *gorm.DB
}

func NewShippingZoneRepository(db *gorm.DB) contract.IShippingZoneRepository {
	return &shippingZoneRepository{db: db}
}

// FindShippingZones returns every zone of the company, inactive ones included:
// the resolver needs them to tell "unknown governorate" from "not delivered there".
func (r *shippingZoneRepository) FindShippingZones(ctx context.Context, companyId uuid.UUID) ([]*entity.ShippingZone, error) {
	var models []model.ShippingZone
	query := specification.OrderBy{Field: "price", Desc: false}.Apply(
		specification.ByCompanyID{CompanyID: &companyId}.Apply(r.db.WithContext(ctx)),
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	zones := make([]*entity.ShippingZone, len(models))
	for i, m := range models {
		zones[i] = &entity.ShippingZone{
			Id:           m.Id,
			CompanyId:    m.CompanyId,
			Governorates: []string(m.Governorates),
			Price:        m.Price,
			DeliveryTime: m.DeliveryTime,
			IsActive:     m.IsActive,
			CreatedAt:    m.CreatedAt,
			UpdatedAt:    m.UpdatedAt,
		}
	}
	return zones, nil
}
