package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warebound/fulfillment-backend/pkg/db/models"
	"github.com/warebound/fulfillment-backend/pkg/enums"
)

// Views shape persistence models into API payloads. Database-only fields such
// as soft-delete flags stay out of the wire format.

type balanceView struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Quantity    int       `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newBalanceView(balance *models.InventoryBalance) balanceView {
	return balanceView{
		ID:          balance.ID,
		ProductID:   balance.ProductID,
		WarehouseID: balance.WarehouseID,
		Quantity:    balance.Quantity,
		UpdatedAt:   balance.UpdatedAt,
	}
}

type movementView struct {
	ID              uuid.UUID          `json:"id"`
	InventoryID     uuid.UUID          `json:"inventory_id"`
	ProductID       uuid.UUID          `json:"product_id"`
	WarehouseID     uuid.UUID          `json:"warehouse_id"`
	Type            enums.MovementType `json:"type"`
	Quantity        int                `json:"quantity"`
	QuantityBefore  int                `json:"quantity_before"`
	QuantityAfter   int                `json:"quantity_after"`
	Reference       *string            `json:"reference,omitempty"`
	FromWarehouseID *uuid.UUID         `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   *uuid.UUID         `json:"to_warehouse_id,omitempty"`
	PerformedBy     uuid.UUID          `json:"performed_by"`
	CreatedAt       time.Time          `json:"created_at"`
}

func newMovementView(movement models.StockMovement) movementView {
	return movementView{
		ID:              movement.ID,
		InventoryID:     movement.InventoryID,
		ProductID:       movement.ProductID,
		WarehouseID:     movement.WarehouseID,
		Type:            movement.Type,
		Quantity:        movement.Quantity,
		QuantityBefore:  movement.QuantityBefore,
		QuantityAfter:   movement.QuantityAfter,
		Reference:       movement.Reference,
		FromWarehouseID: movement.FromWarehouseID,
		ToWarehouseID:   movement.ToWarehouseID,
		PerformedBy:     movement.PerformedBy,
		CreatedAt:       movement.CreatedAt,
	}
}

func newMovementViews(movements []models.StockMovement) []movementView {
	views := make([]movementView, 0, len(movements))
	for _, movement := range movements {
		views = append(views, newMovementView(movement))
	}
	return views
}

type movementListView struct {
	Movements  []movementView `json:"movements"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type pickPackItemView struct {
	ID          uuid.UUID  `json:"id"`
	OrderItemID uuid.UUID  `json:"order_item_id"`
	ProductID   uuid.UUID  `json:"product_id"`
	Quantity    int        `json:"quantity"`
	IsPicked    bool       `json:"is_picked"`
	PickedAt    *time.Time `json:"picked_at,omitempty"`
	IsPacked    bool       `json:"is_packed"`
	PackedAt    *time.Time `json:"packed_at,omitempty"`
	Location    *string    `json:"location,omitempty"`
}

func newPickPackItemView(item models.PickPackItem) pickPackItemView {
	return pickPackItemView{
		ID:          item.ID,
		OrderItemID: item.OrderItemID,
		ProductID:   item.ProductID,
		Quantity:    item.Quantity,
		IsPicked:    item.IsPicked,
		PickedAt:    item.PickedAt,
		IsPacked:    item.IsPacked,
		PackedAt:    item.PackedAt,
		Location:    item.Location,
	}
}

type pickPackView struct {
	ID           uuid.UUID            `json:"id"`
	OrderID      uuid.UUID            `json:"order_id"`
	WarehouseID  uuid.UUID            `json:"warehouse_id"`
	PackNumber   string               `json:"pack_number"`
	Status       enums.PickPackStatus `json:"status"`
	Notes        *string              `json:"notes,omitempty"`
	WeightGrams  *int                 `json:"weight_grams,omitempty"`
	Dimensions   *string              `json:"dimensions,omitempty"`
	PackageCount int                  `json:"package_count"`
	PickedBy     *uuid.UUID           `json:"picked_by,omitempty"`
	PickedAt     *time.Time           `json:"picked_at,omitempty"`
	PackedBy     *uuid.UUID           `json:"packed_by,omitempty"`
	PackedAt     *time.Time           `json:"packed_at,omitempty"`
	ShippedAt    *time.Time           `json:"shipped_at,omitempty"`
	Items        []pickPackItemView   `json:"items"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func newPickPackView(pickPack *models.PickPack) pickPackView {
	view := pickPackView{
		ID:           pickPack.ID,
		OrderID:      pickPack.OrderID,
		WarehouseID:  pickPack.WarehouseID,
		PackNumber:   pickPack.PackNumber,
		Status:       pickPack.Status,
		Notes:        pickPack.Notes,
		WeightGrams:  pickPack.WeightGrams,
		Dimensions:   pickPack.Dimensions,
		PackageCount: pickPack.PackageCount,
		PickedBy:     pickPack.PickedBy,
		PickedAt:     pickPack.PickedAt,
		PackedBy:     pickPack.PackedBy,
		PackedAt:     pickPack.PackedAt,
		ShippedAt:    pickPack.ShippedAt,
		Items:        []pickPackItemView{},
		CreatedAt:    pickPack.CreatedAt,
		UpdatedAt:    pickPack.UpdatedAt,
	}
	for _, item := range pickPack.Items {
		view.Items = append(view.Items, newPickPackItemView(item))
	}
	return view
}

type pickPackListView struct {
	PickPacks  []pickPackView `json:"pick_packs"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type shippingView struct {
	ID                    uuid.UUID            `json:"id"`
	OrderID               uuid.UUID            `json:"order_id"`
	Provider              string               `json:"provider"`
	CostCents             int                  `json:"cost_cents"`
	TrackingNumber        *string              `json:"tracking_number,omitempty"`
	Status                enums.ShippingStatus `json:"status"`
	ShippedDate           *time.Time           `json:"shipped_date,omitempty"`
	EstimatedDeliveryDate *time.Time           `json:"estimated_delivery_date,omitempty"`
	DeliveredDate         *time.Time           `json:"delivered_date,omitempty"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

func newShippingView(shipping *models.Shipping) shippingView {
	return shippingView{
		ID:                    shipping.ID,
		OrderID:               shipping.OrderID,
		Provider:              shipping.Provider,
		CostCents:             shipping.CostCents,
		TrackingNumber:        shipping.TrackingNumber,
		Status:                shipping.Status,
		ShippedDate:           shipping.ShippedDate,
		EstimatedDeliveryDate: shipping.EstimatedDeliveryDate,
		DeliveredDate:         shipping.DeliveredDate,
		CreatedAt:             shipping.CreatedAt,
		UpdatedAt:             shipping.UpdatedAt,
	}
}

type internationalShippingView struct {
	ID                       uuid.UUID            `json:"id"`
	OrderID                  uuid.UUID            `json:"order_id"`
	OriginCountry            string               `json:"origin_country"`
	DestinationCountry       string               `json:"destination_country"`
	DestinationCity          string               `json:"destination_city"`
	ShippingMethod           enums.ShippingMethod `json:"shipping_method"`
	TrackingNumber           *string              `json:"tracking_number,omitempty"`
	ShippingCost             decimal.Decimal      `json:"shipping_cost"`
	CustomsDuty              decimal.Decimal      `json:"customs_duty"`
	ImportTax                decimal.Decimal      `json:"import_tax"`
	HandlingFee              decimal.Decimal      `json:"handling_fee"`
	TotalCost                decimal.Decimal      `json:"total_cost"`
	CustomsDeclarationNumber *string              `json:"customs_declaration_number,omitempty"`
	Status                   enums.ShippingStatus `json:"status"`
	ShippedAt                *time.Time           `json:"shipped_at,omitempty"`
	InCustomsAt              *time.Time           `json:"in_customs_at,omitempty"`
	ClearedAt                *time.Time           `json:"cleared_at,omitempty"`
	DeliveredAt              *time.Time           `json:"delivered_at,omitempty"`
	CreatedAt                time.Time            `json:"created_at"`
	UpdatedAt                time.Time            `json:"updated_at"`
}

func newInternationalShippingView(shipping *models.InternationalShipping) internationalShippingView {
	return internationalShippingView{
		ID:                       shipping.ID,
		OrderID:                  shipping.OrderID,
		OriginCountry:            shipping.OriginCountry,
		DestinationCountry:       shipping.DestinationCountry,
		DestinationCity:          shipping.DestinationCity,
		ShippingMethod:           shipping.ShippingMethod,
		TrackingNumber:           shipping.TrackingNumber,
		ShippingCost:             shipping.ShippingCost,
		CustomsDuty:              shipping.CustomsDuty,
		ImportTax:                shipping.ImportTax,
		HandlingFee:              shipping.HandlingFee,
		TotalCost:                shipping.TotalCost,
		CustomsDeclarationNumber: shipping.CustomsDeclarationNumber,
		Status:                   shipping.Status,
		ShippedAt:                shipping.ShippedAt,
		InCustomsAt:              shipping.InCustomsAt,
		ClearedAt:                shipping.ClearedAt,
		DeliveredAt:              shipping.DeliveredAt,
		CreatedAt:                shipping.CreatedAt,
		UpdatedAt:                shipping.UpdatedAt,
	}
}

type notificationView struct {
	ID        uuid.UUID              `json:"id"`
	OrderID   uuid.UUID              `json:"order_id"`
	Type      enums.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

func newNotificationViews(notifications []models.Notification) []notificationView {
	views := make([]notificationView, 0, len(notifications))
	for _, notification := range notifications {
		views = append(views, notificationView{
			ID:        notification.ID,
			OrderID:   notification.OrderID,
			Type:      notification.Type,
			Title:     notification.Title,
			Message:   notification.Message,
			ReadAt:    notification.ReadAt,
			CreatedAt: notification.CreatedAt,
		})
	}
	return views
}

type warehouseView struct {
	ID       uuid.UUID `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	IsActive bool      `json:"is_active"`
}
