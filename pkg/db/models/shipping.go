package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/warebound/fulfillment-backend/pkg/enums"
)

// Shipping is the domestic carrier record for one order.
type Shipping struct {
	ID                    uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID               uuid.UUID            `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Provider              string               `gorm:"column:provider;not null"`
	CostCents             int                  `gorm:"column:cost_cents;not null;default:0"`
	TrackingNumber        *string              `gorm:"column:tracking_number"`
	Status                enums.ShippingStatus `gorm:"column:status;type:text;not null;default:'preparing'"`
	ShippedDate           *time.Time           `gorm:"column:shipped_date"`
	EstimatedDeliveryDate *time.Time           `gorm:"column:estimated_delivery_date"`
	DeliveredDate         *time.Time           `gorm:"column:delivered_date"`
	Version               int                  `gorm:"column:version;not null;default:0"`
	CreatedAt             time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
