package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/warebound/fulfillment-backend/pkg/enums"
)

// Order is the sales order the fulfillment flow mirrors status onto. Only the
// status and shipping date columns are written from this service.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string            `gorm:"column:order_number;not null;uniqueIndex"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	ShippedDate   *time.Time        `gorm:"column:shipped_date"`
	DeliveredDate *time.Time        `gorm:"column:delivered_date"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is one ordered product line.
type OrderItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Qty       int       `gorm:"column:qty;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
