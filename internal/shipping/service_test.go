package shipping

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/warebound/fulfillment-backend/internal/orders"
	"github.com/warebound/fulfillment-backend/pkg/db/models"
	"github.com/warebound/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
	"github.com/warebound/fulfillment-backend/pkg/logger"
	"github.com/warebound/fulfillment-backend/pkg/metrics"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type memoryShippingRepo struct {
	records map[uuid.UUID]*models.Shipping
}

func newMemoryShippingRepo() *memoryShippingRepo {
	return &memoryShippingRepo{records: map[uuid.UUID]*models.Shipping{}}
}

func (m *memoryShippingRepo) WithTx(tx *gorm.DB) Repository { return m }

func (m *memoryShippingRepo) Create(_ context.Context, shipping *models.Shipping) error {
	copied := *shipping
	m.records[shipping.ID] = &copied
	return nil
}

func (m *memoryShippingRepo) FindByID(_ context.Context, shippingID uuid.UUID) (*models.Shipping, error) {
	if record, ok := m.records[shippingID]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping not found")
}

func (m *memoryShippingRepo) FindByOrderID(_ context.Context, orderID uuid.UUID) (*models.Shipping, error) {
	for _, record := range m.records {
		if record.OrderID == orderID {
			copied := *record
			return &copied, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping not found")
}

func (m *memoryShippingRepo) UpdateVersioned(_ context.Context, shippingID uuid.UUID, version int, columns map[string]any) error {
	record, ok := m.records[shippingID]
	if !ok || record.Version != version {
		return pkgerrors.New(pkgerrors.CodeConcurrency, "shipping was modified concurrently")
	}
	applyShippingColumns(record, columns)
	record.Version++
	return nil
}

func applyShippingColumns(record *models.Shipping, columns map[string]any) {
	for column, value := range columns {
		switch column {
		case "status":
			record.Status = value.(enums.ShippingStatus)
		case "tracking_number":
			tracking := value.(string)
			record.TrackingNumber = &tracking
		case "shipped_date":
			shipped := value.(time.Time)
			record.ShippedDate = &shipped
		case "estimated_delivery_date":
			estimated := value.(time.Time)
			record.EstimatedDeliveryDate = &estimated
		case "delivered_date":
			delivered := value.(time.Time)
			record.DeliveredDate = &delivered
		}
	}
}

type fakeOrdersRepo struct {
	orders       map[uuid.UUID]*models.Order
	shippedAt    map[uuid.UUID]time.Time
	deliveredAt  map[uuid.UUID]time.Time
	markShipErr  error
	markDelivErr error
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{
		orders:      map[uuid.UUID]*models.Order{},
		shippedAt:   map[uuid.UUID]time.Time{},
		deliveredAt: map[uuid.UUID]time.Time{},
	}
}

func (f *fakeOrdersRepo) seed() *models.Order {
	order := &models.Order{
		ID:     uuid.New(),
		Status: enums.OrderStatusProcessing,
		Items: []models.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), Qty: 2},
		},
	}
	f.orders[order.ID] = order
	return order
}

func (f *fakeOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return f }

func (f *fakeOrdersRepo) FindByID(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	if order, ok := f.orders[orderID]; ok {
		return order, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (f *fakeOrdersRepo) FindItems(_ context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	if order, ok := f.orders[orderID]; ok {
		return order.Items, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (f *fakeOrdersRepo) UpdateStatus(_ context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	if order, ok := f.orders[orderID]; ok {
		order.Status = status
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (f *fakeOrdersRepo) MarkShipped(_ context.Context, orderID uuid.UUID, shippedAt time.Time) error {
	if f.markShipErr != nil {
		return f.markShipErr
	}
	order, ok := f.orders[orderID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	order.Status = enums.OrderStatusShipped
	f.shippedAt[orderID] = shippedAt
	return nil
}

func (f *fakeOrdersRepo) MarkDelivered(_ context.Context, orderID uuid.UUID, deliveredAt time.Time) error {
	if f.markDelivErr != nil {
		return f.markDelivErr
	}
	order, ok := f.orders[orderID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	order.Status = enums.OrderStatusDelivered
	f.deliveredAt[orderID] = deliveredAt
	return nil
}

type recordingNotifier struct {
	shipped   []uuid.UUID
	delivered []uuid.UUID
	held      []uuid.UUID
	cleared   []uuid.UUID
	tracking  []string
}

func (r *recordingNotifier) OrderShipped(_ context.Context, orderID uuid.UUID, trackingNumber string) {
	r.shipped = append(r.shipped, orderID)
	r.tracking = append(r.tracking, trackingNumber)
}

func (r *recordingNotifier) OrderDelivered(_ context.Context, orderID uuid.UUID) {
	r.delivered = append(r.delivered, orderID)
}

func (r *recordingNotifier) CustomsHold(_ context.Context, orderID uuid.UUID) {
	r.held = append(r.held, orderID)
}

func (r *recordingNotifier) CustomsCleared(_ context.Context, orderID uuid.UUID) {
	r.cleared = append(r.cleared, orderID)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "shipping-test", Output: io.Discard})
}

func newTestService(t *testing.T, repo Repository, ordersRepo orders.Repository, notifier Notifier) Service {
	t.Helper()
	svc, err := NewService(stubTxRunner{}, repo, ordersRepo, notifier, metrics.NewFulfillmentMetrics(nil), testLogger(), 3)
	require.NoError(t, err)
	return svc
}

func TestService_CreateRejectsDuplicateOrder(t *testing.T) {
	repo := newMemoryShippingRepo()
	ordersRepo := newFakeOrdersRepo()
	order := ordersRepo.seed()
	svc := newTestService(t, repo, ordersRepo, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{OrderID: order.ID, Provider: "fastship", CostCents: 500})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{OrderID: order.ID, Provider: "fastship", CostCents: 500})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestService_CreateValidation(t *testing.T) {
	repo := newMemoryShippingRepo()
	ordersRepo := newFakeOrdersRepo()
	order := ordersRepo.seed()
	svc := newTestService(t, repo, ordersRepo, nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"missing order id", CreateInput{Provider: "fastship"}},
		{"blank provider", CreateInput{OrderID: order.ID, Provider: "  "}},
		{"negative cost", CreateInput{OrderID: order.ID, Provider: "fastship", CostCents: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestService_CreateUnknownOrder(t *testing.T) {
	svc := newTestService(t, newMemoryShippingRepo(), newFakeOrdersRepo(), nil)

	_, err := svc.Create(context.Background(), CreateInput{OrderID: uuid.New(), Provider: "fastship"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestService_UpdateTrackingShipsAndMirrorsOrder(t *testing.T) {
	repo := newMemoryShippingRepo()
	ordersRepo := newFakeOrdersRepo()
	order := ordersRepo.seed()
	notifier := &recordingNotifier{}
	svc := newTestService(t, repo, ordersRepo, notifier)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{OrderID: order.ID, Provider: "fastship", CostCents: 500})
	require.NoError(t, err)

	updated, err := svc.UpdateTracking(ctx, created.ID, "TRK-1234")
	require.NoError(t, err)
	assert.Equal(t, enums.ShippingStatusShipped, updated.Status)
	require.NotNil(t, updated.TrackingNumber)
	assert.Equal(t, "TRK-1234", *updated.TrackingNumber)
	require.NotNil(t, updated.ShippedDate)
	require.NotNil(t, updated.EstimatedDeliveryDate)
	assert.Equal(t,
		updated.ShippedDate.AddDate(0, 0, 3),
		*updated.EstimatedDeliveryDate)

	assert.Equal(t, enums.OrderStatusShipped, order.Status)
	require.Len(t, notifier.shipped, 1)
	assert.Equal(t, order.ID, notifier.shipped[0])
	assert.Equal(t, "TRK-1234", notifier.tracking[0])
}

func TestService_UpdateTrackingOnlyWhilePreparing(t *testing.T) {
	repo := newMemoryShippingRepo()
	ordersRepo := newFakeOrdersRepo()
	order := ordersRepo.seed()
	svc := newTestService(t, repo, ordersRepo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{OrderID: order.ID, Provider: "fastship"})
	require.NoError(t, err)
	_, err = svc.UpdateTracking(ctx, created.ID, "TRK-1")
	require.NoError(t, err)

	_, err = svc.UpdateTracking(ctx, created.ID, "TRK-2")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestService_UpdateTrackingRollsBackWhenOrderMirrorFails(t *testing.T) {
	repo := newMemoryShippingRepo()
	ordersRepo := newFakeOrdersRepo()
	order := ordersRepo.seed()
	ordersRepo.markShipErr = pkgerrors.New(pkgerrors.CodeInternal, "orders table unavailable")
	notifier := &recordingNotifier{}
	svc := newTestService(t, repo, ordersRepo, notifier)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{OrderID: order.ID, Provider: "fastship"})
	require.NoError(t, err)

	_, err = svc.UpdateTracking(ctx, created.ID, "TRK-1")
	require.Error(t, err)
	assert.Empty(t, notifier.shipped)
}

func TestService_UpdateStatusFollowsTransitionTable(t *testing.T) {
	repo := newMemoryShippingRepo()
	ordersRepo := newFakeOrdersRepo()
	order := ordersRepo.seed()
	svc := newTestService(t, repo, ordersRepo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{OrderID: order.ID, Provider: "fastship"})
	require.NoError(t, err)

	// A preparing shipment has no carrier yet.
	_, err = svc.UpdateStatus(ctx, created.ID, enums.ShippingStatusInTransit)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []enums.ShippingStatus{enums.ShippingStatusShipped}, details["allowed"])

	_, err = svc.UpdateTracking(ctx, created.ID, "TRK-1")
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, created.ID, enums.ShippingStatusInTransit)
	require.NoError(t, err)
	assert.Equal(t, enums.ShippingStatusInTransit, updated.Status)

	updated, err = svc.UpdateStatus(ctx, created.ID, enums.ShippingStatusOutForDelivery)
	require.NoError(t, err)
	assert.Equal(t, enums.ShippingStatusOutForDelivery, updated.Status)
}

func TestService_UpdateStatusDeliveredStampsDateAndNotifies(t *testing.T) {
	repo := newMemoryShippingRepo()
	ordersRepo := newFakeOrdersRepo()
	order := ordersRepo.seed()
	notifier := &recordingNotifier{}
	svc := newTestService(t, repo, ordersRepo, notifier)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{OrderID: order.ID, Provider: "fastship"})
	require.NoError(t, err)
	_, err = svc.UpdateTracking(ctx, created.ID, "TRK-1")
	require.NoError(t, err)

	delivered, err := svc.UpdateStatus(ctx, created.ID, enums.ShippingStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, enums.ShippingStatusDelivered, delivered.Status)
	require.NotNil(t, delivered.DeliveredDate)

	assert.Equal(t, enums.OrderStatusDelivered, order.Status)
	require.Len(t, notifier.delivered, 1)
	assert.Equal(t, order.ID, notifier.delivered[0])

	// Delivered is terminal.
	_, err = svc.UpdateStatus(ctx, created.ID, enums.ShippingStatusInTransit)
	require.Error(t, err)
}

func TestService_UpdateStatusInvalidValue(t *testing.T) {
	svc := newTestService(t, newMemoryShippingRepo(), newFakeOrdersRepo(), nil)

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), enums.ShippingStatus("teleported"))
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
