package shipping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/warebound/fulfillment-backend/internal/orders"
	"github.com/warebound/fulfillment-backend/pkg/db/models"
	"github.com/warebound/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
	"github.com/warebound/fulfillment-backend/pkg/logger"
	"github.com/warebound/fulfillment-backend/pkg/metrics"
)

const metricEntity = "shipping"

// TxRunner executes fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Notifier receives shipping events after they commit.
type Notifier interface {
	OrderShipped(ctx context.Context, orderID uuid.UUID, trackingNumber string)
	OrderDelivered(ctx context.Context, orderID uuid.UUID)
	CustomsHold(ctx context.Context, orderID uuid.UUID)
	CustomsCleared(ctx context.Context, orderID uuid.UUID)
}

// Service drives the domestic shipping lifecycle and mirrors progress onto
// the order.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Shipping, error)
	GetByID(ctx context.Context, shippingID uuid.UUID) (*models.Shipping, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Shipping, error)
	UpdateTracking(ctx context.Context, shippingID uuid.UUID, trackingNumber string) (*models.Shipping, error)
	UpdateStatus(ctx context.Context, shippingID uuid.UUID, status enums.ShippingStatus) (*models.Shipping, error)
}

// CreateInput opens a shipping record for an order.
type CreateInput struct {
	OrderID   uuid.UUID
	Provider  string
	CostCents int
}

type service struct {
	tx           TxRunner
	repo         Repository
	orders       orders.Repository
	notifier     Notifier
	metrics      *metrics.FulfillmentMetrics
	logg         *logger.Logger
	deliveryDays int
	now          func() time.Time
}

// NewService wires the domestic shipping service. notifier may be nil.
func NewService(
	tx TxRunner,
	repo Repository,
	ordersRepo orders.Repository,
	notifier Notifier,
	m *metrics.FulfillmentMetrics,
	logg *logger.Logger,
	deliveryDays int,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("shipping repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deliveryDays <= 0 {
		deliveryDays = 3
	}
	return &service{
		tx:           tx,
		repo:         repo,
		orders:       ordersRepo,
		notifier:     notifier,
		metrics:      m,
		logg:         logg,
		deliveryDays: deliveryDays,
		now:          time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Shipping, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if strings.TrimSpace(input.Provider) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider is required")
	}
	if input.CostCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost must not be negative")
	}

	if _, err := s.orders.FindByID(ctx, input.OrderID); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByOrderID(ctx, input.OrderID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "shipping already exists for order")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		return nil, err
	}

	shipping := &models.Shipping{
		ID:        uuid.New(),
		OrderID:   input.OrderID,
		Provider:  input.Provider,
		CostCents: input.CostCents,
		Status:    enums.ShippingStatusPreparing,
	}
	if err := s.repo.Create(ctx, shipping); err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())
	s.logg.Info(ctx, fmt.Sprintf("shipping created with provider %s", input.Provider))
	return shipping, nil
}

func (s *service) GetByID(ctx context.Context, shippingID uuid.UUID) (*models.Shipping, error) {
	return s.repo.FindByID(ctx, shippingID)
}

func (s *service) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Shipping, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

// UpdateTracking records the carrier handoff. The tracking number, the move to
// shipped, the delivery estimate, and the order mirror all land in one
// transaction; the notification goes out only after it commits.
func (s *service) UpdateTracking(ctx context.Context, shippingID uuid.UUID, trackingNumber string) (*models.Shipping, error) {
	if strings.TrimSpace(trackingNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number is required")
	}

	shipping, err := s.repo.FindByID(ctx, shippingID)
	if err != nil {
		return nil, err
	}
	if shipping.Status != enums.ShippingStatusPreparing {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("tracking can only be set while preparing, current status is %s", shipping.Status))
	}

	now := s.now().UTC()
	estimated := now.AddDate(0, 0, s.deliveryDays)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateVersioned(ctx, shipping.ID, shipping.Version, map[string]any{
			"tracking_number":         trackingNumber,
			"status":                  enums.ShippingStatusShipped,
			"shipped_date":            now,
			"estimated_delivery_date": estimated,
		}); err != nil {
			return err
		}
		return s.orders.WithTx(tx).MarkShipped(ctx, shipping.OrderID, now)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConcurrency {
			s.metrics.IncConflict(metricEntity)
		}
		return nil, err
	}

	s.metrics.IncTransition(metricEntity, enums.ShippingStatusShipped.String())
	if s.notifier != nil {
		s.notifier.OrderShipped(ctx, shipping.OrderID, trackingNumber)
	}
	ctx = s.logg.WithOrderID(ctx, shipping.OrderID.String())
	s.logg.Info(ctx, fmt.Sprintf("shipment handed to %s with tracking %s", shipping.Provider, trackingNumber))
	return s.repo.FindByID(ctx, shippingID)
}

// UpdateStatus applies a carrier scan event. Legal moves come from the
// transition table; a delivered scan also stamps the date and mirrors the
// order in the same transaction.
func (s *service) UpdateStatus(ctx context.Context, shippingID uuid.UUID, status enums.ShippingStatus) (*models.Shipping, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid shipping status %q", status))
	}

	shipping, err := s.repo.FindByID(ctx, shippingID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(shipping.Status, status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move shipping from %s to %s", shipping.Status, status)).
			WithDetails(map[string]any{"allowed": AllowedTransitions(shipping.Status)})
	}

	now := s.now().UTC()
	columns := map[string]any{"status": status}
	delivered := status == enums.ShippingStatusDelivered
	if delivered {
		columns["delivered_date"] = now
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateVersioned(ctx, shipping.ID, shipping.Version, columns); err != nil {
			return err
		}
		if delivered {
			return s.orders.WithTx(tx).MarkDelivered(ctx, shipping.OrderID, now)
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConcurrency {
			s.metrics.IncConflict(metricEntity)
		}
		return nil, err
	}

	s.metrics.IncTransition(metricEntity, status.String())
	if delivered && s.notifier != nil {
		s.notifier.OrderDelivered(ctx, shipping.OrderID)
	}
	ctx = s.logg.WithOrderID(ctx, shipping.OrderID.String())
	s.logg.Info(ctx, fmt.Sprintf("shipping moved to %s", status))
	return s.repo.FindByID(ctx, shippingID)
}
