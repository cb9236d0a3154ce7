package pickpack

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warebound/fulfillment-backend/pkg/db/models"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
	"github.com/warebound/fulfillment-backend/pkg/pagination"
)

// Repository manages pick/pack work orders and their item lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, pickPack *models.PickPack) error
	FindByID(ctx context.Context, pickPackID uuid.UUID) (*models.PickPack, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.PickPack, error)
	ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	UpdateVersioned(ctx context.Context, pickPackID uuid.UUID, version int, columns map[string]any) error
	FindItem(ctx context.Context, pickPackID, itemID uuid.UUID) (*models.PickPackItem, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, columns map[string]any) error
	CountItems(ctx context.Context, pickPackID uuid.UUID) (picked int64, packed int64, total int64, err error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
	List(ctx context.Context, filter Filter, params pagination.Params) ([]models.PickPack, error)
}

// Filter narrows pick/pack listings. Zero-value fields are ignored.
type Filter struct {
	WarehouseID uuid.UUID
	Status      string
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a pick/pack repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create persists the header and its item lines in one insert so a work order
// never exists without lines.
func (r *repository) Create(ctx context.Context, pickPack *models.PickPack) error {
	return r.db.WithContext(ctx).Create(pickPack).Error
}

func (r *repository) FindByID(ctx context.Context, pickPackID uuid.UUID) (*models.PickPack, error) {
	return r.findOne(ctx, "id = ?", pickPackID)
}

func (r *repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.PickPack, error) {
	return r.findOne(ctx, "order_id = ?", orderID)
}

func (r *repository) findOne(ctx context.Context, cond string, value uuid.UUID) (*models.PickPack, error) {
	var pickPack models.PickPack
	err := r.db.WithContext(ctx).
		Preload("Items", "is_deleted = ?", false).
		Where(cond, value).
		First(&pickPack).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pick pack not found")
		}
		return nil, err
	}
	return &pickPack, nil
}

func (r *repository) ExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PickPack{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateVersioned applies columns only when the stored version still matches
// the one the caller read. The version column advances on every write.
func (r *repository) UpdateVersioned(ctx context.Context, pickPackID uuid.UUID, version int, columns map[string]any) error {
	columns["version"] = gorm.Expr("version + 1")
	result := r.db.WithContext(ctx).
		Model(&models.PickPack{}).
		Where("id = ? AND version = ?", pickPackID, version).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConcurrency, "pick pack was modified concurrently")
	}
	return nil
}

func (r *repository) FindItem(ctx context.Context, pickPackID, itemID uuid.UUID) (*models.PickPackItem, error) {
	var item models.PickPackItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND pick_pack_id = ? AND is_deleted = ?", itemID, pickPackID, false).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pick pack item not found")
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateItem(ctx context.Context, itemID uuid.UUID, columns map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.PickPackItem{}).
		Where("id = ?", itemID).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "pick pack item not found")
	}
	return nil
}

// CountItems returns picked/packed/total counts over the live item lines. The
// completion gates read these persisted counts rather than in-memory state.
func (r *repository) CountItems(ctx context.Context, pickPackID uuid.UUID) (int64, int64, int64, error) {
	type counts struct {
		Picked int64
		Packed int64
		Total  int64
	}
	var c counts
	err := r.db.WithContext(ctx).
		Model(&models.PickPackItem{}).
		Select(
			"COUNT(CASE WHEN is_picked THEN 1 END) AS picked, "+
				"COUNT(CASE WHEN is_packed THEN 1 END) AS packed, "+
				"COUNT(*) AS total",
		).
		Where("pick_pack_id = ? AND is_deleted = ?", pickPackID, false).
		Scan(&c).Error
	if err != nil {
		return 0, 0, 0, err
	}
	return c.Picked, c.Packed, c.Total, nil
}

func (r *repository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PickPack{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *repository) List(ctx context.Context, filter Filter, params pagination.Params) ([]models.PickPack, error) {
	query := r.db.WithContext(ctx).Model(&models.PickPack{})

	if filter.WarehouseID != uuid.Nil {
		query = query.Where("warehouse_id = ?", filter.WarehouseID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
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

	var pickPacks []models.PickPack
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&pickPacks).Error
	if err != nil {
		return nil, err
	}
	return pickPacks, nil
}
