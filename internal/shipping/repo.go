package shipping

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warebound/fulfillment-backend/pkg/db/models"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
)

// Repository manages domestic shipping records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shipping *models.Shipping) error
	FindByID(ctx context.Context, shippingID uuid.UUID) (*models.Shipping, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Shipping, error)
	UpdateVersioned(ctx context.Context, shippingID uuid.UUID, version int, columns map[string]any) error
}

// InternationalRepository manages international shipping records. Deleted
// records stay in the table behind the is_deleted flag.
type InternationalRepository interface {
	WithTx(tx *gorm.DB) InternationalRepository
	Create(ctx context.Context, shipping *models.InternationalShipping) error
	FindByID(ctx context.Context, shippingID uuid.UUID) (*models.InternationalShipping, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.InternationalShipping, error)
	UpdateVersioned(ctx context.Context, shippingID uuid.UUID, version int, columns map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a domestic shipping repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, shipping *models.Shipping) error {
	return r.db.WithContext(ctx).Create(shipping).Error
}

func (r *repository) FindByID(ctx context.Context, shippingID uuid.UUID) (*models.Shipping, error) {
	var shipping models.Shipping
	err := r.db.WithContext(ctx).
		Where("id = ?", shippingID).
		First(&shipping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping not found")
		}
		return nil, err
	}
	return &shipping, nil
}

func (r *repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Shipping, error) {
	var shipping models.Shipping
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&shipping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping not found")
		}
		return nil, err
	}
	return &shipping, nil
}

func (r *repository) UpdateVersioned(ctx context.Context, shippingID uuid.UUID, version int, columns map[string]any) error {
	columns["version"] = gorm.Expr("version + 1")
	result := r.db.WithContext(ctx).
		Model(&models.Shipping{}).
		Where("id = ? AND version = ?", shippingID, version).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConcurrency, "shipping was modified concurrently")
	}
	return nil
}

type internationalRepository struct {
	db *gorm.DB
}

// NewInternationalRepository returns an international shipping repository.
func NewInternationalRepository(db *gorm.DB) InternationalRepository {
	return &internationalRepository{db: db}
}

func (r *internationalRepository) WithTx(tx *gorm.DB) InternationalRepository {
	if tx == nil {
		return r
	}
	return &internationalRepository{db: tx}
}

func (r *internationalRepository) Create(ctx context.Context, shipping *models.InternationalShipping) error {
	return r.db.WithContext(ctx).Create(shipping).Error
}

func (r *internationalRepository) FindByID(ctx context.Context, shippingID uuid.UUID) (*models.InternationalShipping, error) {
	return r.findOne(ctx, "id = ?", shippingID)
}

func (r *internationalRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.InternationalShipping, error) {
	return r.findOne(ctx, "order_id = ?", orderID)
}

func (r *internationalRepository) findOne(ctx context.Context, cond string, value uuid.UUID) (*models.InternationalShipping, error) {
	var shipping models.InternationalShipping
	err := r.db.WithContext(ctx).
		Where(cond, value).
		Where("is_deleted = ?", false).
		First(&shipping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "international shipping not found")
		}
		return nil, err
	}
	return &shipping, nil
}

func (r *internationalRepository) UpdateVersioned(ctx context.Context, shippingID uuid.UUID, version int, columns map[string]any) error {
	columns["version"] = gorm.Expr("version + 1")
	result := r.db.WithContext(ctx).
		Model(&models.InternationalShipping{}).
		Where("id = ? AND version = ?", shippingID, version).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConcurrency, "international shipping was modified concurrently")
	}
	return nil
}
