package enums

import "fmt"

// NotificationType identifies the fulfillment event a notification describes.
type NotificationType string

const (
	NotificationTypeOrderShipped     NotificationType = "order_shipped"
	NotificationTypeOrderDelivered   NotificationType = "order_delivered"
	NotificationTypeCustomsHold      NotificationType = "customs_hold"
	NotificationTypeCustomsCleared   NotificationType = "customs_cleared"
	NotificationTypePickPackComplete NotificationType = "pick_pack_complete"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrderShipped,
	NotificationTypeOrderDelivered,
	NotificationTypeCustomsHold,
	NotificationTypeCustomsCleared,
	NotificationTypePickPackComplete,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
