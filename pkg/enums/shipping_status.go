package enums

import "fmt"

// ShippingStatus tracks carrier progress for a shipment, domestic or
// international. Customs holds are recorded as a timestamp on the shipment,
// not as a status value.
type ShippingStatus string

const (
	ShippingStatusPreparing      ShippingStatus = "preparing"
	ShippingStatusShipped        ShippingStatus = "shipped"
	ShippingStatusInTransit      ShippingStatus = "in_transit"
	ShippingStatusOutForDelivery ShippingStatus = "out_for_delivery"
	ShippingStatusDelivered      ShippingStatus = "delivered"
)

var validShippingStatuses = []ShippingStatus{
	ShippingStatusPreparing,
	ShippingStatusShipped,
	ShippingStatusInTransit,
	ShippingStatusOutForDelivery,
	ShippingStatusDelivered,
}

// String implements fmt.Stringer.
func (s ShippingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShippingStatus.
func (s ShippingStatus) IsValid() bool {
	for _, candidate := range validShippingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseShippingStatus converts raw input into a ShippingStatus.
func ParseShippingStatus(value string) (ShippingStatus, error) {
	for _, candidate := range validShippingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping status %q", value)
}
