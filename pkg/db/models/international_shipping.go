package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warebound/fulfillment-backend/pkg/enums"
)

// InternationalShipping extends the shipping record with customs stages and
// landed-cost components. TotalCost is recomputed from the cost columns on
// every cost mutation.
type InternationalShipping struct {
	ID                       uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID                  uuid.UUID            `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	OriginCountry            string               `gorm:"column:origin_country;not null"`
	DestinationCountry       string               `gorm:"column:destination_country;not null"`
	DestinationCity          string               `gorm:"column:destination_city;not null"`
	ShippingMethod           enums.ShippingMethod `gorm:"column:shipping_method;type:text;not null"`
	TrackingNumber           *string              `gorm:"column:tracking_number"`
	ShippingCost             decimal.Decimal      `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	CustomsDuty              decimal.Decimal      `gorm:"column:customs_duty;type:numeric(12,2);not null"`
	ImportTax                decimal.Decimal      `gorm:"column:import_tax;type:numeric(12,2);not null"`
	HandlingFee              decimal.Decimal      `gorm:"column:handling_fee;type:numeric(12,2);not null"`
	TotalCost                decimal.Decimal      `gorm:"column:total_cost;type:numeric(12,2);not null"`
	CustomsDeclarationNumber *string              `gorm:"column:customs_declaration_number"`
	Status                   enums.ShippingStatus `gorm:"column:status;type:text;not null;default:'preparing'"`
	ShippedAt                *time.Time           `gorm:"column:shipped_at"`
	InCustomsAt              *time.Time           `gorm:"column:in_customs_at"`
	ClearedAt                *time.Time           `gorm:"column:cleared_at"`
	DeliveredAt              *time.Time           `gorm:"column:delivered_at"`
	IsDeleted                bool                 `gorm:"column:is_deleted;not null;default:false"`
	Version                  int                  `gorm:"column:version;not null;default:0"`
	CreatedAt                time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// RecomputeTotalCost refreshes TotalCost from the cost components.
func (s *InternationalShipping) RecomputeTotalCost() {
	s.TotalCost = s.ShippingCost.Add(s.CustomsDuty).Add(s.ImportTax).Add(s.HandlingFee)
}
