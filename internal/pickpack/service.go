package pickpack

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warebound/fulfillment-backend/internal/orders"
	"github.com/warebound/fulfillment-backend/internal/warehouses"
	"github.com/warebound/fulfillment-backend/pkg/db"
	"github.com/warebound/fulfillment-backend/pkg/db/models"
	"github.com/warebound/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
	"github.com/warebound/fulfillment-backend/pkg/logger"
	"github.com/warebound/fulfillment-backend/pkg/metrics"
	"github.com/warebound/fulfillment-backend/pkg/pagination"
)

const metricEntity = "pick_pack"

// TxRunner executes fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Notifier receives fulfillment events after they commit.
type Notifier interface {
	PickPackCompleted(ctx context.Context, orderID uuid.UUID, packNumber string)
}

// Service drives the warehouse pick/pack workflow for an order.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.PickPack, error)
	GetByID(ctx context.Context, pickPackID uuid.UUID) (*models.PickPack, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.PickPack, error)
	List(ctx context.Context, filter Filter, params pagination.Params) (*Page, error)
	StartPicking(ctx context.Context, pickPackID, actorID uuid.UUID) (*models.PickPack, error)
	CompletePicking(ctx context.Context, pickPackID, actorID uuid.UUID) (*models.PickPack, error)
	StartPacking(ctx context.Context, pickPackID, actorID uuid.UUID) (*models.PickPack, error)
	CompletePacking(ctx context.Context, pickPackID, actorID uuid.UUID, details PackDetails) (*models.PickPack, error)
	MarkAsShipped(ctx context.Context, pickPackID, actorID uuid.UUID) (*models.PickPack, error)
	Cancel(ctx context.Context, pickPackID, actorID uuid.UUID, reason *string) (*models.PickPack, error)
	UpdateItemStatus(ctx context.Context, input UpdateItemInput) (*models.PickPackItem, error)
}

// CreateInput opens a work order for an order at a warehouse.
type CreateInput struct {
	OrderID     uuid.UUID
	WarehouseID uuid.UUID
	Notes       *string
}

// PackDetails carries the physical package attributes recorded when packing
// finishes.
type PackDetails struct {
	WeightGrams  *int
	Dimensions   *string
	PackageCount int
}

// UpdateItemInput toggles pick/pack state on a single item line. Nil fields
// are left untouched.
type UpdateItemInput struct {
	PickPackID uuid.UUID
	ItemID     uuid.UUID
	Picked     *bool
	Packed     *bool
	Location   *string
}

// Page is one page of work orders, newest first.
type Page struct {
	PickPacks  []models.PickPack
	NextCursor string
}

type service struct {
	tx         TxRunner
	repo       Repository
	orders     orders.Repository
	warehouses warehouses.Repository
	numbers    *NumberGenerator
	notifier   Notifier
	metrics    *metrics.FulfillmentMetrics
	logg       *logger.Logger
	maxRetries int
	now        func() time.Time
}

// NewService wires the pick/pack service with its dependencies. notifier may
// be nil.
func NewService(
	tx TxRunner,
	repo Repository,
	ordersRepo orders.Repository,
	warehouseRepo warehouses.Repository,
	numbers *NumberGenerator,
	notifier Notifier,
	m *metrics.FulfillmentMetrics,
	logg *logger.Logger,
	maxRetries int,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("pick pack repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if warehouseRepo == nil {
		return nil, fmt.Errorf("warehouse repository required")
	}
	if numbers == nil {
		return nil, fmt.Errorf("pack number generator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}
	return &service{
		tx:         tx,
		repo:       repo,
		orders:     ordersRepo,
		warehouses: warehouseRepo,
		numbers:    numbers,
		notifier:   notifier,
		metrics:    m,
		logg:       logg,
		maxRetries: maxRetries,
		now:        time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.PickPack, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.WarehouseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id is required")
	}

	order, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if len(order.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no items to fulfill")
	}

	warehouse, err := s.warehouses.FindByID(ctx, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if !warehouse.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "warehouse is not active")
	}

	if exists, err := s.repo.ExistsForOrder(ctx, input.OrderID); err != nil {
		return nil, err
	} else if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "pick pack already exists for order")
	}

	var created *models.PickPack
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		packNumber, err := s.numbers.Next(ctx)
		if err != nil {
			return nil, err
		}

		pickPack := buildPickPack(order, input, packNumber)
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if exists, err := repo.ExistsForOrder(ctx, input.OrderID); err != nil {
				return err
			} else if exists {
				return pkgerrors.New(pkgerrors.CodeConflict, "pick pack already exists for order")
			}
			return repo.Create(ctx, pickPack)
		})
		if err == nil {
			created = pickPack
			break
		}
		// A duplicate pack number means the fallback sequence raced another
		// writer; regenerate and try again.
		if db.IsUniqueViolation(err, "pack_number") && attempt < s.maxRetries-1 {
			continue
		}
		return nil, err
	}
	if created == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a unique pack number")
	}

	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())
	s.logg.Info(ctx, fmt.Sprintf("pick pack %s created with %d items", created.PackNumber, len(created.Items)))
	s.metrics.IncTransition(metricEntity, created.Status.String())
	return created, nil
}

func buildPickPack(order *models.Order, input CreateInput, packNumber string) *models.PickPack {
	pickPack := &models.PickPack{
		ID:           uuid.New(),
		OrderID:      order.ID,
		WarehouseID:  input.WarehouseID,
		PackNumber:   packNumber,
		Status:       enums.PickPackStatusPending,
		Notes:        input.Notes,
		PackageCount: 1,
	}
	for _, line := range order.Items {
		pickPack.Items = append(pickPack.Items, models.PickPackItem{
			ID:          uuid.New(),
			PickPackID:  pickPack.ID,
			OrderItemID: line.ID,
			ProductID:   line.ProductID,
			Quantity:    line.Qty,
		})
	}
	return pickPack
}

func (s *service) GetByID(ctx context.Context, pickPackID uuid.UUID) (*models.PickPack, error) {
	return s.repo.FindByID(ctx, pickPackID)
}

func (s *service) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.PickPack, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

func (s *service) List(ctx context.Context, filter Filter, params pagination.Params) (*Page, error) {
	pickPacks, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &Page{PickPacks: pickPacks}
	if len(pickPacks) > limit {
		page.PickPacks = pickPacks[:limit]
		last := page.PickPacks[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) StartPicking(ctx context.Context, pickPackID, actorID uuid.UUID) (*models.PickPack, error) {
	return s.transition(ctx, pickPackID, actorID, enums.PickPackStatusPending, enums.PickPackStatusPicking, nil, nil)
}

// CompletePicking closes the picking phase. The gate reads the persisted item
// counts so a stale in-memory snapshot can never pass it.
func (s *service) CompletePicking(ctx context.Context, pickPackID, actorID uuid.UUID) (*models.PickPack, error) {
	now := s.now().UTC()
	return s.transition(ctx, pickPackID, actorID, enums.PickPackStatusPicking, enums.PickPackStatusPacked,
		func(ctx context.Context) error {
			picked, _, total, err := s.repo.CountItems(ctx, pickPackID)
			if err != nil {
				return err
			}
			if total == 0 {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "pick pack has no items")
			}
			if picked < total {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "unpicked items remain").
					WithDetails(map[string]any{"picked": picked, "total": total})
			}
			return nil
		},
		map[string]any{"picked_by": actorID, "picked_at": now},
	)
}

func (s *service) StartPacking(ctx context.Context, pickPackID, actorID uuid.UUID) (*models.PickPack, error) {
	return s.transition(ctx, pickPackID, actorID, enums.PickPackStatusPacked, enums.PickPackStatusPacking, nil, nil)
}

// CompletePacking records the package attributes, stamps the packing
// completion and moves the pick pack to shipped. MarkAsShipped stamps the
// hand-off time afterwards.
func (s *service) CompletePacking(ctx context.Context, pickPackID, actorID uuid.UUID, details PackDetails) (*models.PickPack, error) {
	if details.PackageCount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "package count must be positive")
	}
	if details.WeightGrams != nil && *details.WeightGrams <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "weight must be positive")
	}

	pickPack, err := s.repo.FindByID(ctx, pickPackID)
	if err != nil {
		return nil, err
	}
	if pickPack.Status != enums.PickPackStatusPacking {
		return nil, transitionError(pickPack.Status, enums.PickPackStatusPacking)
	}

	_, packed, total, err := s.repo.CountItems(ctx, pickPackID)
	if err != nil {
		return nil, err
	}
	if packed < total {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "unpacked items remain").
			WithDetails(map[string]any{"packed": packed, "total": total})
	}

	now := s.now().UTC()
	columns := map[string]any{
		"status":        enums.PickPackStatusShipped,
		"packed_by":     actorID,
		"packed_at":     now,
		"package_count": details.PackageCount,
	}
	if details.WeightGrams != nil {
		columns["weight_grams"] = *details.WeightGrams
	}
	if details.Dimensions != nil {
		columns["dimensions"] = *details.Dimensions
	}

	if err := s.updateVersioned(ctx, pickPack, columns); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.PickPackCompleted(ctx, pickPack.OrderID, pickPack.PackNumber)
	}
	s.metrics.IncTransition(metricEntity, enums.PickPackStatusShipped.String())
	ctx = s.logg.WithOrderID(ctx, pickPack.OrderID.String())
	s.logg.Info(ctx, fmt.Sprintf("pick pack %s fully packed", pickPack.PackNumber))
	return s.repo.FindByID(ctx, pickPackID)
}

// MarkAsShipped stamps the carrier hand-off time on an already shipped pick
// pack. Re-stamping keeps the original timestamp.
func (s *service) MarkAsShipped(ctx context.Context, pickPackID, actorID uuid.UUID) (*models.PickPack, error) {
	pickPack, err := s.repo.FindByID(ctx, pickPackID)
	if err != nil {
		return nil, err
	}
	if pickPack.Status != enums.PickPackStatusShipped {
		return nil, transitionError(pickPack.Status, enums.PickPackStatusShipped)
	}
	if pickPack.ShippedAt != nil {
		return pickPack, nil
	}

	now := s.now().UTC()
	if err := s.updateVersioned(ctx, pickPack, map[string]any{"shipped_at": now}); err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, pickPack.OrderID.String())
	s.logg.Info(ctx, fmt.Sprintf("pick pack %s shipped", pickPack.PackNumber))
	return s.repo.FindByID(ctx, pickPackID)
}

func (s *service) Cancel(ctx context.Context, pickPackID, actorID uuid.UUID, reason *string) (*models.PickPack, error) {
	pickPack, err := s.repo.FindByID(ctx, pickPackID)
	if err != nil {
		return nil, err
	}
	if pickPack.Status.IsTerminal() {
		return nil, transitionError(pickPack.Status, enums.PickPackStatusCancelled)
	}

	columns := map[string]any{"status": enums.PickPackStatusCancelled}
	if reason != nil {
		columns["notes"] = *reason
	}
	if err := s.updateVersioned(ctx, pickPack, columns); err != nil {
		return nil, err
	}

	s.metrics.IncTransition(metricEntity, enums.PickPackStatusCancelled.String())
	ctx = s.logg.WithOrderID(ctx, pickPack.OrderID.String())
	s.logg.Info(ctx, fmt.Sprintf("pick pack %s cancelled", pickPack.PackNumber))
	return s.repo.FindByID(ctx, pickPackID)
}

// UpdateItemStatus toggles pick/pack flags on an item line. Marking an already
// marked line again keeps the original timestamp.
func (s *service) UpdateItemStatus(ctx context.Context, input UpdateItemInput) (*models.PickPackItem, error) {
	if input.PickPackID == uuid.Nil || input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pick pack id and item id are required")
	}

	pickPack, err := s.repo.FindByID(ctx, input.PickPackID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindItem(ctx, input.PickPackID, input.ItemID)
	if err != nil {
		return nil, err
	}

	columns := map[string]any{}
	now := s.now().UTC()

	if input.Picked != nil {
		if pickPack.Status != enums.PickPackStatusPicking {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "items can only be picked while picking is in progress")
		}
		if *input.Picked && !item.IsPicked {
			columns["is_picked"] = true
			columns["picked_at"] = now
		}
		if !*input.Picked && item.IsPicked {
			columns["is_picked"] = false
			columns["picked_at"] = nil
		}
	}

	if input.Packed != nil {
		if pickPack.Status != enums.PickPackStatusPacking {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "items can only be packed while packing is in progress")
		}
		if *input.Packed && !item.IsPacked {
			if !item.IsPicked {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item must be picked before packing")
			}
			columns["is_packed"] = true
			columns["packed_at"] = now
		}
		if !*input.Packed && item.IsPacked {
			columns["is_packed"] = false
			columns["packed_at"] = nil
		}
	}

	if input.Location != nil {
		columns["location"] = *input.Location
	}

	if len(columns) == 0 {
		return item, nil
	}
	if err := s.repo.UpdateItem(ctx, item.ID, columns); err != nil {
		return nil, err
	}
	return s.repo.FindItem(ctx, input.PickPackID, input.ItemID)
}

// transition performs a guarded status move. gate runs after the status check
// and before the write; extra columns ride along with the status change.
func (s *service) transition(
	ctx context.Context,
	pickPackID, actorID uuid.UUID,
	from, to enums.PickPackStatus,
	gate func(ctx context.Context) error,
	extra map[string]any,
) (*models.PickPack, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id is required")
	}

	pickPack, err := s.repo.FindByID(ctx, pickPackID)
	if err != nil {
		return nil, err
	}
	if pickPack.Status != from {
		return nil, transitionError(pickPack.Status, to)
	}
	if gate != nil {
		if err := gate(ctx); err != nil {
			return nil, err
		}
	}

	columns := map[string]any{"status": to}
	for k, v := range extra {
		columns[k] = v
	}
	if err := s.updateVersioned(ctx, pickPack, columns); err != nil {
		return nil, err
	}

	s.metrics.IncTransition(metricEntity, to.String())
	ctx = s.logg.WithOrderID(ctx, pickPack.OrderID.String())
	s.logg.Info(ctx, fmt.Sprintf("pick pack %s moved to %s", pickPack.PackNumber, to))
	return s.repo.FindByID(ctx, pickPackID)
}

func (s *service) updateVersioned(ctx context.Context, pickPack *models.PickPack, columns map[string]any) error {
	err := s.repo.UpdateVersioned(ctx, pickPack.ID, pickPack.Version, columns)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConcurrency {
			s.metrics.IncConflict(metricEntity)
		}
	}
	return err
}

func transitionError(from, to enums.PickPackStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot move pick pack from %s to %s", from, to))
}
