package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warebound/fulfillment-backend/pkg/db/models"
	"github.com/warebound/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
)

// Repository reads sales orders and mirrors fulfillment status back onto them.
// The order itself is owned by the order service; only status and the two
// shipping dates are written from here.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
	MarkShipped(ctx context.Context, orderID uuid.UUID, shippedAt time.Time) error
	MarkDelivered(ctx context.Context, orderID uuid.UUID, deliveredAt time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	return r.updateColumns(ctx, orderID, map[string]any{"status": status})
}

func (r *repository) MarkShipped(ctx context.Context, orderID uuid.UUID, shippedAt time.Time) error {
	return r.updateColumns(ctx, orderID, map[string]any{
		"status":       enums.OrderStatusShipped,
		"shipped_date": shippedAt,
	})
}

func (r *repository) MarkDelivered(ctx context.Context, orderID uuid.UUID, deliveredAt time.Time) error {
	return r.updateColumns(ctx, orderID, map[string]any{
		"status":         enums.OrderStatusDelivered,
		"delivered_date": deliveredAt,
	})
}

func (r *repository) updateColumns(ctx context.Context, orderID uuid.UUID, columns map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}
