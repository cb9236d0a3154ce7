package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/warebound/fulfillment-backend/pkg/db/models"
	"github.com/warebound/fulfillment-backend/pkg/enums"
	"github.com/warebound/fulfillment-backend/pkg/logger"
)

const publishTimeout = 15 * time.Second

// Publisher delivers one event message to the fulfillment topic.
type Publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) PublishResult
}

// PublishResult resolves when the broker acknowledges the message.
type PublishResult interface {
	Get(ctx context.Context) (string, error)
}

// Service records fulfillment events as in-app notifications and fans them out
// to the event topic. Emission happens after the triggering transaction
// commits, so every method is best effort: failures are logged, never
// propagated back into the fulfillment flow.
type Service interface {
	OrderShipped(ctx context.Context, orderID uuid.UUID, trackingNumber string)
	OrderDelivered(ctx context.Context, orderID uuid.UUID)
	CustomsHold(ctx context.Context, orderID uuid.UUID)
	CustomsCleared(ctx context.Context, orderID uuid.UUID)
	PickPackCompleted(ctx context.Context, orderID uuid.UUID, packNumber string)
	ListByOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID) error
}

type service struct {
	repo      Repository
	publisher Publisher
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the notification service. publisher may be nil when no
// event topic is configured; notifications are then stored only.
func NewService(repo Repository, publisher Publisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		publisher: publisher,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) OrderShipped(ctx context.Context, orderID uuid.UUID, trackingNumber string) {
	s.emit(ctx, orderID, enums.NotificationTypeOrderShipped,
		"Order shipped",
		fmt.Sprintf("Your order is on its way. Tracking number %s.", trackingNumber),
		map[string]any{"tracking_number": trackingNumber})
}

func (s *service) OrderDelivered(ctx context.Context, orderID uuid.UUID) {
	s.emit(ctx, orderID, enums.NotificationTypeOrderDelivered,
		"Order delivered",
		"Your order has been delivered.",
		nil)
}

func (s *service) CustomsHold(ctx context.Context, orderID uuid.UUID) {
	s.emit(ctx, orderID, enums.NotificationTypeCustomsHold,
		"Shipment held in customs",
		"Your shipment entered customs inspection. Delivery may be delayed.",
		nil)
}

func (s *service) CustomsCleared(ctx context.Context, orderID uuid.UUID) {
	s.emit(ctx, orderID, enums.NotificationTypeCustomsCleared,
		"Shipment cleared customs",
		"Your shipment cleared customs and is back in transit.",
		nil)
}

func (s *service) PickPackCompleted(ctx context.Context, orderID uuid.UUID, packNumber string) {
	s.emit(ctx, orderID, enums.NotificationTypePickPackComplete,
		"Order packed",
		fmt.Sprintf("Your order has been packed under %s and is ready for the carrier.", packNumber),
		map[string]any{"pack_number": packNumber})
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]models.Notification, error) {
	return s.repo.ListByOrder(ctx, orderID, limit)
}

func (s *service) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	return s.repo.MarkRead(ctx, notificationID, s.now().UTC())
}

func (s *service) emit(ctx context.Context, orderID uuid.UUID, kind enums.NotificationType, title, message string, extra map[string]any) {
	payload := map[string]any{
		"order_id": orderID.String(),
		"type":     kind.String(),
	}
	for k, v := range extra {
		payload[k] = v
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logg.Error(ctx, "marshal notification payload", err)
		return
	}

	notification := &models.Notification{
		ID:      uuid.New(),
		OrderID: orderID,
		Type:    kind,
		Title:   title,
		Message: message,
		Payload: data,
	}

	var errs error
	if err := s.repo.Create(ctx, notification); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("store notification: %w", err))
	}
	if err := s.publish(ctx, notification, data); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("publish notification: %w", err))
	}
	if errs != nil {
		ctx = s.logg.WithOrderID(ctx, orderID.String())
		ctx = s.logg.WithField(ctx, "notification_type", kind.String())
		s.logg.Error(ctx, "notification emission incomplete", errs)
	}
}

func (s *service) publish(ctx context.Context, notification *models.Notification, data []byte) error {
	if s.publisher == nil {
		return nil
	}

	msg := &gcppubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"notification_id":   notification.ID.String(),
			"notification_type": notification.Type.String(),
			"order_id":          notification.OrderID.String(),
		},
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	result := s.publisher.Publish(publishCtx, msg)
	if result == nil {
		return errors.New("publisher returned nil result")
	}
	_, err := result.Get(publishCtx)
	return err
}

// NewGCPPublisher adapts a Pub/Sub publisher handle to the Publisher interface.
func NewGCPPublisher(p *gcppubsub.Publisher) Publisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{publisher: p}
}

type gcpPublisher struct {
	publisher *gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) PublishResult {
	if p == nil || p.publisher == nil {
		return nil
	}
	return p.publisher.Publish(ctx, msg)
}
