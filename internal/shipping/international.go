package shipping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/warebound/fulfillment-backend/internal/orders"
	"github.com/warebound/fulfillment-backend/pkg/db/models"
	"github.com/warebound/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
	"github.com/warebound/fulfillment-backend/pkg/logger"
	"github.com/warebound/fulfillment-backend/pkg/metrics"
)

const internationalEntity = "international_shipping"

// InternationalService drives cross-border shipments through their customs
// stages. A customs hold is a timestamp on the shipment, not a status of its
// own, so carrier progress and customs progress stay independent.
type InternationalService interface {
	Create(ctx context.Context, input CreateInternationalInput) (*models.InternationalShipping, error)
	GetByID(ctx context.Context, shippingID uuid.UUID) (*models.InternationalShipping, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.InternationalShipping, error)
	MarkAsShipped(ctx context.Context, shippingID uuid.UUID, trackingNumber string) (*models.InternationalShipping, error)
	MarkAsInCustoms(ctx context.Context, shippingID uuid.UUID, declarationNumber string) (*models.InternationalShipping, error)
	MarkAsClearedFromCustoms(ctx context.Context, shippingID uuid.UUID) (*models.InternationalShipping, error)
	MarkAsOutForDelivery(ctx context.Context, shippingID uuid.UUID) (*models.InternationalShipping, error)
	MarkAsDelivered(ctx context.Context, shippingID uuid.UUID) (*models.InternationalShipping, error)
	UpdateCosts(ctx context.Context, shippingID uuid.UUID, input UpdateCostsInput) (*models.InternationalShipping, error)
	MarkAsDeleted(ctx context.Context, shippingID uuid.UUID) error
}

// CreateInternationalInput opens an international shipping record.
type CreateInternationalInput struct {
	OrderID            uuid.UUID
	OriginCountry      string
	DestinationCountry string
	DestinationCity    string
	ShippingMethod     enums.ShippingMethod
	ShippingCost       decimal.Decimal
	CustomsDuty        decimal.Decimal
	ImportTax          decimal.Decimal
	HandlingFee        decimal.Decimal
}

// UpdateCostsInput adjusts landed-cost components. Nil fields are untouched.
type UpdateCostsInput struct {
	ShippingCost *decimal.Decimal
	CustomsDuty  *decimal.Decimal
	ImportTax    *decimal.Decimal
	HandlingFee  *decimal.Decimal
}

type internationalService struct {
	tx       TxRunner
	repo     InternationalRepository
	orders   orders.Repository
	notifier Notifier
	metrics  *metrics.FulfillmentMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewInternationalService wires the international shipping service. notifier
// may be nil.
func NewInternationalService(
	tx TxRunner,
	repo InternationalRepository,
	ordersRepo orders.Repository,
	notifier Notifier,
	m *metrics.FulfillmentMetrics,
	logg *logger.Logger,
) (InternationalService, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("international shipping repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &internationalService{
		tx:       tx,
		repo:     repo,
		orders:   ordersRepo,
		notifier: notifier,
		metrics:  m,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *internationalService) Create(ctx context.Context, input CreateInternationalInput) (*models.InternationalShipping, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if strings.TrimSpace(input.OriginCountry) == "" || strings.TrimSpace(input.DestinationCountry) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "origin and destination countries are required")
	}
	if strings.TrimSpace(input.DestinationCity) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "destination city is required")
	}
	if !input.ShippingMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid shipping method %q", input.ShippingMethod))
	}
	for name, cost := range map[string]decimal.Decimal{
		"shipping cost": input.ShippingCost,
		"customs duty":  input.CustomsDuty,
		"import tax":    input.ImportTax,
		"handling fee":  input.HandlingFee,
	} {
		if cost.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, name+" must not be negative")
		}
	}

	if _, err := s.orders.FindByID(ctx, input.OrderID); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByOrderID(ctx, input.OrderID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "international shipping already exists for order")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		return nil, err
	}

	shipping := &models.InternationalShipping{
		ID:                 uuid.New(),
		OrderID:            input.OrderID,
		OriginCountry:      input.OriginCountry,
		DestinationCountry: input.DestinationCountry,
		DestinationCity:    input.DestinationCity,
		ShippingMethod:     input.ShippingMethod,
		ShippingCost:       input.ShippingCost,
		CustomsDuty:        input.CustomsDuty,
		ImportTax:          input.ImportTax,
		HandlingFee:        input.HandlingFee,
		Status:             enums.ShippingStatusPreparing,
	}
	shipping.RecomputeTotalCost()

	if err := s.repo.Create(ctx, shipping); err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, input.OrderID.String())
	s.logg.Info(ctx, fmt.Sprintf("international shipping created %s -> %s via %s",
		input.OriginCountry, input.DestinationCountry, input.ShippingMethod))
	return shipping, nil
}

func (s *internationalService) GetByID(ctx context.Context, shippingID uuid.UUID) (*models.InternationalShipping, error) {
	return s.repo.FindByID(ctx, shippingID)
}

func (s *internationalService) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.InternationalShipping, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

// MarkAsShipped hands the shipment to the carrier. Only a preparing shipment
// can be shipped.
func (s *internationalService) MarkAsShipped(ctx context.Context, shippingID uuid.UUID, trackingNumber string) (*models.InternationalShipping, error) {
	if strings.TrimSpace(trackingNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number is required")
	}

	shipping, err := s.repo.FindByID(ctx, shippingID)
	if err != nil {
		return nil, err
	}
	if shipping.Status != enums.ShippingStatusPreparing {
		return nil, s.transitionError(shipping.Status, enums.ShippingStatusShipped)
	}

	now := s.now().UTC()
	if err := s.updateVersioned(ctx, shipping, map[string]any{
		"status":          enums.ShippingStatusShipped,
		"tracking_number": trackingNumber,
		"shipped_at":      now,
	}); err != nil {
		return nil, err
	}

	s.metrics.IncTransition(internationalEntity, enums.ShippingStatusShipped.String())
	if s.notifier != nil {
		s.notifier.OrderShipped(ctx, shipping.OrderID, trackingNumber)
	}
	return s.repo.FindByID(ctx, shippingID)
}

// MarkAsInCustoms records that the shipment entered customs. Only the
// timestamp and declaration number are stamped; the carrier status is left
// alone so a later clearance can resume from where transit stopped.
func (s *internationalService) MarkAsInCustoms(ctx context.Context, shippingID uuid.UUID, declarationNumber string) (*models.InternationalShipping, error) {
	shipping, err := s.repo.FindByID(ctx, shippingID)
	if err != nil {
		return nil, err
	}
	if shipping.Status != enums.ShippingStatusShipped && shipping.Status != enums.ShippingStatusInTransit {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("shipment cannot enter customs while %s", shipping.Status))
	}
	if shipping.InCustomsAt != nil && shipping.ClearedAt == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shipment is already in customs")
	}

	now := s.now().UTC()
	columns := map[string]any{
		"in_customs_at": now,
		"cleared_at":    nil,
	}
	if strings.TrimSpace(declarationNumber) != "" {
		columns["customs_declaration_number"] = declarationNumber
	}
	if err := s.updateVersioned(ctx, shipping, columns); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.CustomsHold(ctx, shipping.OrderID)
	}
	ctx = s.logg.WithOrderID(ctx, shipping.OrderID.String())
	s.logg.Info(ctx, "shipment entered customs")
	return s.repo.FindByID(ctx, shippingID)
}

// MarkAsClearedFromCustoms releases a held shipment back into transit.
func (s *internationalService) MarkAsClearedFromCustoms(ctx context.Context, shippingID uuid.UUID) (*models.InternationalShipping, error) {
	shipping, err := s.repo.FindByID(ctx, shippingID)
	if err != nil {
		return nil, err
	}
	if shipping.InCustomsAt == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shipment never entered customs")
	}
	if shipping.ClearedAt != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shipment already cleared customs")
	}

	now := s.now().UTC()
	if err := s.updateVersioned(ctx, shipping, map[string]any{
		"status":     enums.ShippingStatusInTransit,
		"cleared_at": now,
	}); err != nil {
		return nil, err
	}

	s.metrics.IncTransition(internationalEntity, enums.ShippingStatusInTransit.String())
	if s.notifier != nil {
		s.notifier.CustomsCleared(ctx, shipping.OrderID)
	}
	ctx = s.logg.WithOrderID(ctx, shipping.OrderID.String())
	s.logg.Info(ctx, "shipment cleared customs")
	return s.repo.FindByID(ctx, shippingID)
}

func (s *internationalService) MarkAsOutForDelivery(ctx context.Context, shippingID uuid.UUID) (*models.InternationalShipping, error) {
	shipping, err := s.repo.FindByID(ctx, shippingID)
	if err != nil {
		return nil, err
	}
	if shipping.Status != enums.ShippingStatusInTransit {
		return nil, s.transitionError(shipping.Status, enums.ShippingStatusOutForDelivery)
	}
	if s.heldInCustoms(shipping) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shipment is held in customs")
	}

	if err := s.updateVersioned(ctx, shipping, map[string]any{
		"status": enums.ShippingStatusOutForDelivery,
	}); err != nil {
		return nil, err
	}

	s.metrics.IncTransition(internationalEntity, enums.ShippingStatusOutForDelivery.String())
	return s.repo.FindByID(ctx, shippingID)
}

// MarkAsDelivered completes the shipment and mirrors the order in the same
// transaction. A shipment still held in customs cannot be delivered.
func (s *internationalService) MarkAsDelivered(ctx context.Context, shippingID uuid.UUID) (*models.InternationalShipping, error) {
	shipping, err := s.repo.FindByID(ctx, shippingID)
	if err != nil {
		return nil, err
	}
	if shipping.Status != enums.ShippingStatusInTransit && shipping.Status != enums.ShippingStatusOutForDelivery {
		return nil, s.transitionError(shipping.Status, enums.ShippingStatusDelivered)
	}
	if s.heldInCustoms(shipping) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "shipment is held in customs")
	}

	now := s.now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateVersioned(ctx, shipping.ID, shipping.Version, map[string]any{
			"status":       enums.ShippingStatusDelivered,
			"delivered_at": now,
		}); err != nil {
			return err
		}
		return s.orders.WithTx(tx).MarkDelivered(ctx, shipping.OrderID, now)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConcurrency {
			s.metrics.IncConflict(internationalEntity)
		}
		return nil, err
	}

	s.metrics.IncTransition(internationalEntity, enums.ShippingStatusDelivered.String())
	if s.notifier != nil {
		s.notifier.OrderDelivered(ctx, shipping.OrderID)
	}
	ctx = s.logg.WithOrderID(ctx, shipping.OrderID.String())
	s.logg.Info(ctx, "international shipment delivered")
	return s.repo.FindByID(ctx, shippingID)
}

// UpdateCosts adjusts landed-cost components at any stage; customs often
// reassesses duties mid-flight. The stored total always equals the component
// sum.
func (s *internationalService) UpdateCosts(ctx context.Context, shippingID uuid.UUID, input UpdateCostsInput) (*models.InternationalShipping, error) {
	shipping, err := s.repo.FindByID(ctx, shippingID)
	if err != nil {
		return nil, err
	}

	if input.ShippingCost != nil {
		shipping.ShippingCost = *input.ShippingCost
	}
	if input.CustomsDuty != nil {
		shipping.CustomsDuty = *input.CustomsDuty
	}
	if input.ImportTax != nil {
		shipping.ImportTax = *input.ImportTax
	}
	if input.HandlingFee != nil {
		shipping.HandlingFee = *input.HandlingFee
	}
	for name, cost := range map[string]decimal.Decimal{
		"shipping cost": shipping.ShippingCost,
		"customs duty":  shipping.CustomsDuty,
		"import tax":    shipping.ImportTax,
		"handling fee":  shipping.HandlingFee,
	} {
		if cost.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, name+" must not be negative")
		}
	}
	shipping.RecomputeTotalCost()

	if err := s.updateVersioned(ctx, shipping, map[string]any{
		"shipping_cost": shipping.ShippingCost,
		"customs_duty":  shipping.CustomsDuty,
		"import_tax":    shipping.ImportTax,
		"handling_fee":  shipping.HandlingFee,
		"total_cost":    shipping.TotalCost,
	}); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, shippingID)
}

// MarkAsDeleted soft-deletes the record. Delivered shipments are part of the
// order's financial history and stay.
func (s *internationalService) MarkAsDeleted(ctx context.Context, shippingID uuid.UUID) error {
	shipping, err := s.repo.FindByID(ctx, shippingID)
	if err != nil {
		return err
	}
	if shipping.Status == enums.ShippingStatusDelivered {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "delivered shipments cannot be deleted")
	}

	if err := s.updateVersioned(ctx, shipping, map[string]any{"is_deleted": true}); err != nil {
		return err
	}
	ctx = s.logg.WithOrderID(ctx, shipping.OrderID.String())
	s.logg.Info(ctx, "international shipping deleted")
	return nil
}

func (s *internationalService) heldInCustoms(shipping *models.InternationalShipping) bool {
	return shipping.InCustomsAt != nil && shipping.ClearedAt == nil
}

func (s *internationalService) updateVersioned(ctx context.Context, shipping *models.InternationalShipping, columns map[string]any) error {
	err := s.repo.UpdateVersioned(ctx, shipping.ID, shipping.Version, columns)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConcurrency {
			s.metrics.IncConflict(internationalEntity)
		}
	}
	return err
}

func (s *internationalService) transitionError(from, to enums.ShippingStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("cannot move international shipping from %s to %s", from, to))
}
