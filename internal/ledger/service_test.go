package ledger

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warebound/fulfillment-backend/pkg/db/models"
	"github.com/warebound/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
	"github.com/warebound/fulfillment-backend/pkg/logger"
	"github.com/warebound/fulfillment-backend/pkg/metrics"
	"github.com/warebound/fulfillment-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepository struct {
	balances  map[string]*models.InventoryBalance
	movements []*models.StockMovement
	adjustErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{balances: map[string]*models.InventoryBalance{}}
}

func balanceKey(productID, warehouseID uuid.UUID) string {
	return productID.String() + "/" + warehouseID.String()
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) FindBalance(_ context.Context, productID, warehouseID uuid.UUID) (*models.InventoryBalance, error) {
	if balance, ok := f.balances[balanceKey(productID, warehouseID)]; ok {
		copied := *balance
		return &copied, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory balance not found")
}

func (f *fakeRepository) CreateBalance(_ context.Context, balance *models.InventoryBalance) error {
	f.balances[balanceKey(balance.ProductID, balance.WarehouseID)] = balance
	return nil
}

func (f *fakeRepository) AdjustBalance(_ context.Context, balanceID uuid.UUID, from, to int) error {
	if f.adjustErr != nil {
		return f.adjustErr
	}
	for _, balance := range f.balances {
		if balance.ID == balanceID {
			if balance.Quantity != from {
				return pkgerrors.New(pkgerrors.CodeConcurrency, "inventory balance changed concurrently")
			}
			balance.Quantity = to
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "inventory balance not found")
}

func (f *fakeRepository) CreateMovement(_ context.Context, movement *models.StockMovement) error {
	f.movements = append(f.movements, movement)
	return nil
}

func (f *fakeRepository) ListMovements(_ context.Context, _ MovementFilter, params pagination.Params) ([]models.StockMovement, error) {
	out := []models.StockMovement{}
	for i := len(f.movements) - 1; i >= 0; i-- {
		out = append(out, *f.movements[i])
	}
	buffered := pagination.LimitWithBuffer(params.Limit)
	if len(out) > buffered {
		out = out[:buffered]
	}
	return out, nil
}

func (f *fakeRepository) seed(productID, warehouseID uuid.UUID, qty int) *models.InventoryBalance {
	balance := &models.InventoryBalance{
		ID:          uuid.New(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    qty,
	}
	f.balances[balanceKey(productID, warehouseID)] = balance
	return balance
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "ledger-test", Output: io.Discard})
	svc, err := NewService(stubTxRunner{}, repo, metrics.NewFulfillmentMetrics(nil), logg)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestService_AdjustStockInbound(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	productID := uuid.New()
	warehouseID := uuid.New()
	repo.seed(productID, warehouseID, 5)

	movement, err := svc.AdjustStock(context.Background(), AdjustStockInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        enums.MovementTypeInbound,
		Quantity:    3,
		PerformedBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("AdjustStock error: %v", err)
	}
	if movement.QuantityBefore != 5 || movement.QuantityAfter != 8 || movement.Quantity != 3 {
		t.Fatalf("unexpected movement snapshot: %+v", movement)
	}
	if got := repo.balances[balanceKey(productID, warehouseID)].Quantity; got != 8 {
		t.Fatalf("expected balance 8, got %d", got)
	}
}

func TestService_AdjustStockOutboundAppliesNegativeDelta(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	productID := uuid.New()
	warehouseID := uuid.New()
	repo.seed(productID, warehouseID, 5)

	movement, err := svc.AdjustStock(context.Background(), AdjustStockInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        enums.MovementTypeOutbound,
		Quantity:    2,
		PerformedBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("AdjustStock error: %v", err)
	}
	if movement.Quantity != -2 || movement.QuantityAfter != 3 {
		t.Fatalf("unexpected movement snapshot: %+v", movement)
	}
}

func TestService_AdjustStockRejectsNegativeResult(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	productID := uuid.New()
	warehouseID := uuid.New()
	repo.seed(productID, warehouseID, 1)

	_, err := svc.AdjustStock(context.Background(), AdjustStockInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        enums.MovementTypeOutbound,
		Quantity:    2,
		PerformedBy: uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.movements) != 0 {
		t.Fatalf("no movement should be recorded on failure")
	}
}

func TestService_AdjustStockCreatesBalanceForFirstInbound(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	productID := uuid.New()
	warehouseID := uuid.New()

	movement, err := svc.AdjustStock(context.Background(), AdjustStockInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        enums.MovementTypeInbound,
		Quantity:    4,
		PerformedBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("AdjustStock error: %v", err)
	}
	if movement.QuantityBefore != 0 || movement.QuantityAfter != 4 {
		t.Fatalf("unexpected movement snapshot: %+v", movement)
	}
}

func TestService_AdjustStockOutboundMissingBalance(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	_, err := svc.AdjustStock(context.Background(), AdjustStockInput{
		ProductID:   uuid.New(),
		WarehouseID: uuid.New(),
		Type:        enums.MovementTypeOutbound,
		Quantity:    1,
		PerformedBy: uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestService_AdjustStockConcurrencyConflictBubbles(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	productID := uuid.New()
	warehouseID := uuid.New()
	repo.seed(productID, warehouseID, 5)
	repo.adjustErr = pkgerrors.New(pkgerrors.CodeConcurrency, "inventory balance changed concurrently")

	_, err := svc.AdjustStock(context.Background(), AdjustStockInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        enums.MovementTypeInbound,
		Quantity:    1,
		PerformedBy: uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConcurrency {
		t.Fatalf("expected concurrency error, got %v", err)
	}
}

func TestService_AdjustStockValidation(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	tests := []struct {
		name  string
		input AdjustStockInput
	}{
		{
			name: "missing product",
			input: AdjustStockInput{
				WarehouseID: uuid.New(),
				Type:        enums.MovementTypeInbound,
				Quantity:    1,
				PerformedBy: uuid.New(),
			},
		},
		{
			name: "missing warehouse",
			input: AdjustStockInput{
				ProductID:   uuid.New(),
				Type:        enums.MovementTypeInbound,
				Quantity:    1,
				PerformedBy: uuid.New(),
			},
		},
		{
			name: "missing actor",
			input: AdjustStockInput{
				ProductID:   uuid.New(),
				WarehouseID: uuid.New(),
				Type:        enums.MovementTypeInbound,
				Quantity:    1,
			},
		},
		{
			name: "zero quantity",
			input: AdjustStockInput{
				ProductID:   uuid.New(),
				WarehouseID: uuid.New(),
				Type:        enums.MovementTypeInbound,
				PerformedBy: uuid.New(),
			},
		},
		{
			name: "negative inbound",
			input: AdjustStockInput{
				ProductID:   uuid.New(),
				WarehouseID: uuid.New(),
				Type:        enums.MovementTypeInbound,
				Quantity:    -1,
				PerformedBy: uuid.New(),
			},
		},
		{
			name: "transfer type",
			input: AdjustStockInput{
				ProductID:   uuid.New(),
				WarehouseID: uuid.New(),
				Type:        enums.MovementTypeTransfer,
				Quantity:    1,
				PerformedBy: uuid.New(),
			},
		},
		{
			name: "unknown type",
			input: AdjustStockInput{
				ProductID:   uuid.New(),
				WarehouseID: uuid.New(),
				Type:        enums.MovementType("not_real"),
				Quantity:    1,
				PerformedBy: uuid.New(),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.AdjustStock(context.Background(), tc.input); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestService_TransferStockConservesQuantity(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	productID := uuid.New()
	source := uuid.New()
	destination := uuid.New()
	repo.seed(productID, source, 10)
	repo.seed(productID, destination, 2)

	movements, err := svc.TransferStock(context.Background(), TransferStockInput{
		ProductID:       productID,
		FromWarehouseID: source,
		ToWarehouseID:   destination,
		Quantity:        4,
		PerformedBy:     uuid.New(),
	})
	if err != nil {
		t.Fatalf("TransferStock error: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("expected two ledger rows, got %d", len(movements))
	}
	if movements[0].Quantity+movements[1].Quantity != 0 {
		t.Fatalf("transfer legs must net to zero: %+v", movements)
	}
	if got := repo.balances[balanceKey(productID, source)].Quantity; got != 6 {
		t.Fatalf("expected source balance 6, got %d", got)
	}
	if got := repo.balances[balanceKey(productID, destination)].Quantity; got != 6 {
		t.Fatalf("expected destination balance 6, got %d", got)
	}
}

func TestService_TransferStockInsufficientSource(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	productID := uuid.New()
	source := uuid.New()
	repo.seed(productID, source, 1)

	_, err := svc.TransferStock(context.Background(), TransferStockInput{
		ProductID:       productID,
		FromWarehouseID: source,
		ToWarehouseID:   uuid.New(),
		Quantity:        3,
		PerformedBy:     uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_TransferStockSameWarehouse(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	warehouseID := uuid.New()
	_, err := svc.TransferStock(context.Background(), TransferStockInput{
		ProductID:       uuid.New(),
		FromWarehouseID: warehouseID,
		ToWarehouseID:   warehouseID,
		Quantity:        1,
		PerformedBy:     uuid.New(),
	})
	if err == nil {
		t.Fatal("expected error for same-warehouse transfer")
	}
}

func TestService_ListMovementsPaginates(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(t, repo)

	productID := uuid.New()
	warehouseID := uuid.New()
	repo.seed(productID, warehouseID, 0)
	for i := 0; i < 4; i++ {
		_, err := svc.AdjustStock(context.Background(), AdjustStockInput{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Type:        enums.MovementTypeInbound,
			Quantity:    1,
			PerformedBy: uuid.New(),
		})
		if err != nil {
			t.Fatalf("seed movement: %v", err)
		}
	}

	page, err := svc.ListMovements(context.Background(), MovementFilter{}, pagination.Params{Limit: 3})
	if err != nil {
		t.Fatalf("ListMovements error: %v", err)
	}
	if len(page.Movements) != 3 {
		t.Fatalf("expected 3 movements, got %d", len(page.Movements))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor when more rows remain")
	}
}
