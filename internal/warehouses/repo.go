package warehouses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warebound/fulfillment-backend/pkg/db/models"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
)

// Repository reads warehouse records. Warehouses are managed elsewhere; the
// fulfillment flow only needs lookups and the active flag.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, warehouseID uuid.UUID) (*models.Warehouse, error)
	ListActive(ctx context.Context) ([]models.Warehouse, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a warehouse repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, warehouseID uuid.UUID) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	err := r.db.WithContext(ctx).
		Where("id = ?", warehouseID).
		First(&warehouse).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
		}
		return nil, err
	}
	return &warehouse, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.Warehouse, error) {
	var warehouses []models.Warehouse
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("code ASC").
		Find(&warehouses).Error; err != nil {
		return nil, err
	}
	return warehouses, nil
}
