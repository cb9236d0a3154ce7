package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/warebound/fulfillment-backend/pkg/enums"
)

// PickPack is the warehouse work order for one sales order. At most one
// active record exists per order. Version guards against lost updates.
type PickPack struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID            `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	WarehouseID  uuid.UUID            `gorm:"column:warehouse_id;type:uuid;not null"`
	PackNumber   string               `gorm:"column:pack_number;not null;uniqueIndex"`
	Status       enums.PickPackStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Notes        *string              `gorm:"column:notes"`
	WeightGrams  *int                 `gorm:"column:weight_grams"`
	Dimensions   *string              `gorm:"column:dimensions"`
	PackageCount int                  `gorm:"column:package_count;not null;default:1"`
	PickedBy     *uuid.UUID           `gorm:"column:picked_by;type:uuid"`
	PickedAt     *time.Time           `gorm:"column:picked_at"`
	PackedBy     *uuid.UUID           `gorm:"column:packed_by;type:uuid"`
	PackedAt     *time.Time           `gorm:"column:packed_at"`
	ShippedAt    *time.Time           `gorm:"column:shipped_at"`
	Version      int                  `gorm:"column:version;not null;default:0"`
	Items        []PickPackItem       `gorm:"foreignKey:PickPackID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// PickPackItem is one order line inside a pick/pack work order.
type PickPackItem struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PickPackID  uuid.UUID  `gorm:"column:pick_pack_id;type:uuid;not null;index"`
	OrderItemID uuid.UUID  `gorm:"column:order_item_id;type:uuid;not null"`
	ProductID   uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	Quantity    int        `gorm:"column:quantity;not null"`
	IsPicked    bool       `gorm:"column:is_picked;not null;default:false"`
	PickedAt    *time.Time `gorm:"column:picked_at"`
	IsPacked    bool       `gorm:"column:is_packed;not null;default:false"`
	PackedAt    *time.Time `gorm:"column:packed_at"`
	Location    *string    `gorm:"column:location"`
	IsDeleted   bool       `gorm:"column:is_deleted;not null;default:false"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
