package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warebound/fulfillment-backend/pkg/db/models"
	"github.com/warebound/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
	"github.com/warebound/fulfillment-backend/pkg/logger"
	"github.com/warebound/fulfillment-backend/pkg/metrics"
	"github.com/warebound/fulfillment-backend/pkg/pagination"
)

// TxRunner executes fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the stock ledger operations. Every balance change goes
// through here so the movement history stays complete.
type Service interface {
	AdjustStock(ctx context.Context, input AdjustStockInput) (*models.StockMovement, error)
	TransferStock(ctx context.Context, input TransferStockInput) ([]models.StockMovement, error)
	GetBalance(ctx context.Context, productID, warehouseID uuid.UUID) (*models.InventoryBalance, error)
	ListMovements(ctx context.Context, filter MovementFilter, params pagination.Params) (*MovementPage, error)
}

type service struct {
	tx      TxRunner
	repo    Repository
	metrics *metrics.FulfillmentMetrics
	logg    *logger.Logger
}

// AdjustStockInput captures one balance adjustment. Quantity is a positive
// magnitude except for adjustments, which may carry either sign.
type AdjustStockInput struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Type        enums.MovementType
	Quantity    int
	Reference   *string
	PerformedBy uuid.UUID
}

// TransferStockInput moves quantity between two warehouses atomically.
type TransferStockInput struct {
	ProductID       uuid.UUID
	FromWarehouseID uuid.UUID
	ToWarehouseID   uuid.UUID
	Quantity        int
	Reference       *string
	PerformedBy     uuid.UUID
}

// MovementPage is one page of ledger history, newest first.
type MovementPage struct {
	Movements  []models.StockMovement
	NextCursor string
}

// NewService wires the ledger service with its dependencies.
func NewService(tx TxRunner, repo Repository, m *metrics.FulfillmentMetrics, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, repo: repo, metrics: m, logg: logg}, nil
}

func (s *service) AdjustStock(ctx context.Context, input AdjustStockInput) (*models.StockMovement, error) {
	delta, err := validateAdjustInput(input)
	if err != nil {
		return nil, err
	}

	var movement *models.StockMovement
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		movement, err = applyDelta(ctx, repo, deltaInput{
			productID:   input.ProductID,
			warehouseID: input.WarehouseID,
			movType:     input.Type,
			delta:       delta,
			reference:   input.Reference,
			performedBy: input.PerformedBy,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncMovement(input.Type.String())
	ctx = s.logg.WithWarehouseID(ctx, input.WarehouseID.String())
	s.logg.Info(ctx, fmt.Sprintf("stock %s recorded: product %s qty %+d", input.Type, input.ProductID, delta))
	return movement, nil
}

func (s *service) TransferStock(ctx context.Context, input TransferStockInput) ([]models.StockMovement, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.FromWarehouseID == uuid.Nil || input.ToWarehouseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "both warehouses are required")
	}
	if input.FromWarehouseID == input.ToWarehouseID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer requires two distinct warehouses")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer quantity must be positive")
	}
	if input.PerformedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "performed by is required")
	}

	var outbound, inbound *models.StockMovement
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		outbound, err = applyDelta(ctx, repo, deltaInput{
			productID:   input.ProductID,
			warehouseID: input.FromWarehouseID,
			movType:     enums.MovementTypeTransfer,
			delta:       -input.Quantity,
			reference:   input.Reference,
			performedBy: input.PerformedBy,
			fromID:      &input.FromWarehouseID,
			toID:        &input.ToWarehouseID,
		})
		if err != nil {
			return err
		}

		inbound, err = applyDelta(ctx, repo, deltaInput{
			productID:   input.ProductID,
			warehouseID: input.ToWarehouseID,
			movType:     enums.MovementTypeTransfer,
			delta:       input.Quantity,
			reference:   input.Reference,
			performedBy: input.PerformedBy,
			fromID:      &input.FromWarehouseID,
			toID:        &input.ToWarehouseID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncMovement(enums.MovementTypeTransfer.String())
	s.logg.Info(ctx, fmt.Sprintf("stock transfer recorded: product %s qty %d %s -> %s",
		input.ProductID, input.Quantity, input.FromWarehouseID, input.ToWarehouseID))
	return []models.StockMovement{*outbound, *inbound}, nil
}

func (s *service) GetBalance(ctx context.Context, productID, warehouseID uuid.UUID) (*models.InventoryBalance, error) {
	if productID == uuid.Nil || warehouseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id and warehouse id are required")
	}
	return s.repo.FindBalance(ctx, productID, warehouseID)
}

func (s *service) ListMovements(ctx context.Context, filter MovementFilter, params pagination.Params) (*MovementPage, error) {
	movements, err := s.repo.ListMovements(ctx, filter, params)
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &MovementPage{Movements: movements}
	if len(movements) > limit {
		page.Movements = movements[:limit]
		last := page.Movements[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

type deltaInput struct {
	productID   uuid.UUID
	warehouseID uuid.UUID
	movType     enums.MovementType
	delta       int
	reference   *string
	performedBy uuid.UUID
	fromID      *uuid.UUID
	toID        *uuid.UUID
}

// applyDelta reads the balance, verifies the result stays non-negative, writes
// the new quantity with an optimistic guard, and appends the ledger row. The
// snapshot columns always satisfy after = before + delta.
func applyDelta(ctx context.Context, repo Repository, in deltaInput) (*models.StockMovement, error) {
	balance, err := repo.FindBalance(ctx, in.productID, in.warehouseID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			if in.delta < 0 {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no stock at warehouse for product")
			}
			balance = &models.InventoryBalance{
				ID:          uuid.New(),
				ProductID:   in.productID,
				WarehouseID: in.warehouseID,
				Quantity:    0,
			}
			if err := repo.CreateBalance(ctx, balance); err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}

	before := balance.Quantity
	after := before + in.delta
	if after < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").
			WithDetails(map[string]any{"available": before, "requested": -in.delta})
	}

	if err := repo.AdjustBalance(ctx, balance.ID, before, after); err != nil {
		return nil, err
	}

	movement := &models.StockMovement{
		ID:              uuid.New(),
		InventoryID:     balance.ID,
		ProductID:       in.productID,
		WarehouseID:     in.warehouseID,
		Type:            in.movType,
		Quantity:        in.delta,
		QuantityBefore:  before,
		QuantityAfter:   after,
		Reference:       in.reference,
		FromWarehouseID: in.fromID,
		ToWarehouseID:   in.toID,
		PerformedBy:     in.performedBy,
	}
	if err := repo.CreateMovement(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

func validateAdjustInput(input AdjustStockInput) (int, error) {
	if input.ProductID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.WarehouseID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id is required")
	}
	if input.PerformedBy == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "performed by is required")
	}
	if !input.Type.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid movement type %q", input.Type))
	}
	if input.Quantity == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-zero")
	}

	switch input.Type {
	case enums.MovementTypeInbound, enums.MovementTypeReturn:
		if input.Quantity < 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		return input.Quantity, nil
	case enums.MovementTypeOutbound:
		if input.Quantity < 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		return -input.Quantity, nil
	case enums.MovementTypeAdjustment:
		return input.Quantity, nil
	case enums.MovementTypeTransfer:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "transfers go through TransferStock")
	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid movement type %q", input.Type))
	}
}
