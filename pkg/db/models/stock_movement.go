package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/warebound/fulfillment-backend/pkg/enums"
)

// StockMovement is one immutable ledger row. QuantityAfter always equals
// QuantityBefore + Quantity and matches the balance snapshot the row was
// written with.
type StockMovement struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InventoryID     uuid.UUID          `gorm:"column:inventory_id;type:uuid;not null;index"`
	ProductID       uuid.UUID          `gorm:"column:product_id;type:uuid;not null;index"`
	WarehouseID     uuid.UUID          `gorm:"column:warehouse_id;type:uuid;not null;index"`
	Type            enums.MovementType `gorm:"column:type;type:text;not null"`
	Quantity        int                `gorm:"column:quantity;not null"`
	QuantityBefore  int                `gorm:"column:quantity_before;not null"`
	QuantityAfter   int                `gorm:"column:quantity_after;not null"`
	Reference       *string            `gorm:"column:reference"`
	FromWarehouseID *uuid.UUID         `gorm:"column:from_warehouse_id;type:uuid"`
	ToWarehouseID   *uuid.UUID         `gorm:"column:to_warehouse_id;type:uuid"`
	PerformedBy     uuid.UUID          `gorm:"column:performed_by;type:uuid;not null"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
}
