package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryBalance is the current on-hand quantity per (product, warehouse).
// Balances are adjusted only through the stock ledger and are never deleted.
type InventoryBalance struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_inventory_product_warehouse"`
	WarehouseID uuid.UUID `gorm:"column:warehouse_id;type:uuid;not null;uniqueIndex:idx_inventory_product_warehouse"`
	Quantity    int       `gorm:"column:quantity;not null;default:0"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
