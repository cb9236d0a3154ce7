package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warebound/fulfillment-backend/pkg/db/models"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
	"github.com/warebound/fulfillment-backend/pkg/pagination"
)

// Repository manages inventory balances and the stock movement ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBalance(ctx context.Context, productID, warehouseID uuid.UUID) (*models.InventoryBalance, error)
	CreateBalance(ctx context.Context, balance *models.InventoryBalance) error
	AdjustBalance(ctx context.Context, balanceID uuid.UUID, from, to int) error
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, filter MovementFilter, params pagination.Params) ([]models.StockMovement, error)
}

// MovementFilter narrows ledger listings. Zero-value fields are ignored.
type MovementFilter struct {
	InventoryID uuid.UUID
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindBalance(ctx context.Context, productID, warehouseID uuid.UUID) (*models.InventoryBalance, error) {
	var balance models.InventoryBalance
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory balance not found")
		}
		return nil, err
	}
	return &balance, nil
}

func (r *repository) CreateBalance(ctx context.Context, balance *models.InventoryBalance) error {
	return r.db.WithContext(ctx).Create(balance).Error
}

// AdjustBalance applies the new quantity only when the stored quantity still
// matches the value read earlier in the transaction. A zero row count means a
// concurrent writer got there first.
func (r *repository) AdjustBalance(ctx context.Context, balanceID uuid.UUID, from, to int) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryBalance{}).
		Where("id = ? AND quantity = ?", balanceID, from).
		Update("quantity", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConcurrency, "inventory balance changed concurrently")
	}
	return nil
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, filter MovementFilter, params pagination.Params) ([]models.StockMovement, error) {
	query := r.db.WithContext(ctx).Model(&models.StockMovement{})

	if filter.InventoryID != uuid.Nil {
		query = query.Where("inventory_id = ?", filter.InventoryID)
	}
	if filter.ProductID != uuid.Nil {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.WarehouseID != uuid.Nil {
		query = query.Where("warehouse_id = ?", filter.WarehouseID)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var movements []models.StockMovement
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}
