package shipping

import "github.com/warebound/fulfillment-backend/pkg/enums"

// domesticTransitions is the single source of truth for which carrier status
// moves are legal. Skipping intermediate scan events is allowed because
// carriers do not report every hop.
var domesticTransitions = map[enums.ShippingStatus][]enums.ShippingStatus{
	enums.ShippingStatusPreparing: {
		enums.ShippingStatusShipped,
	},
	enums.ShippingStatusShipped: {
		enums.ShippingStatusInTransit,
		enums.ShippingStatusOutForDelivery,
		enums.ShippingStatusDelivered,
	},
	enums.ShippingStatusInTransit: {
		enums.ShippingStatusOutForDelivery,
		enums.ShippingStatusDelivered,
	},
	enums.ShippingStatusOutForDelivery: {
		enums.ShippingStatusDelivered,
	},
	enums.ShippingStatusDelivered: {},
}

// CanTransition reports whether a shipment may move from one status to
// another.
func CanTransition(from, to enums.ShippingStatus) bool {
	for _, allowed := range domesticTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the legal next statuses from the given status.
func AllowedTransitions(from enums.ShippingStatus) []enums.ShippingStatus {
	allowed := domesticTransitions[from]
	out := make([]enums.ShippingStatus, len(allowed))
	copy(out, allowed)
	return out
}
