package shipping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warebound/fulfillment-backend/pkg/enums"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    enums.ShippingStatus
		to      enums.ShippingStatus
		allowed bool
	}{
		{enums.ShippingStatusPreparing, enums.ShippingStatusShipped, true},
		{enums.ShippingStatusPreparing, enums.ShippingStatusInTransit, false},
		{enums.ShippingStatusPreparing, enums.ShippingStatusDelivered, false},
		{enums.ShippingStatusShipped, enums.ShippingStatusInTransit, true},
		{enums.ShippingStatusShipped, enums.ShippingStatusOutForDelivery, true},
		{enums.ShippingStatusShipped, enums.ShippingStatusDelivered, true},
		{enums.ShippingStatusShipped, enums.ShippingStatusPreparing, false},
		{enums.ShippingStatusInTransit, enums.ShippingStatusOutForDelivery, true},
		{enums.ShippingStatusInTransit, enums.ShippingStatusDelivered, true},
		{enums.ShippingStatusInTransit, enums.ShippingStatusShipped, false},
		{enums.ShippingStatusOutForDelivery, enums.ShippingStatusDelivered, true},
		{enums.ShippingStatusOutForDelivery, enums.ShippingStatusInTransit, false},
		{enums.ShippingStatusDelivered, enums.ShippingStatusShipped, false},
		{enums.ShippingStatusDelivered, enums.ShippingStatusDelivered, false},
	}

	for _, tc := range cases {
		got := CanTransition(tc.from, tc.to)
		assert.Equalf(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestAllowedTransitionsDeliveredIsTerminal(t *testing.T) {
	assert.Empty(t, AllowedTransitions(enums.ShippingStatusDelivered))
}

func TestAllowedTransitionsReturnsCopy(t *testing.T) {
	first := AllowedTransitions(enums.ShippingStatusShipped)
	first[0] = enums.ShippingStatusPreparing

	second := AllowedTransitions(enums.ShippingStatusShipped)
	assert.Equal(t, enums.ShippingStatusInTransit, second[0])
}
