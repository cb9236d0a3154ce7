package enums

import "fmt"

// PickPackStatus tracks warehouse progress for one order's pick/pack record.
//
// The ordering is historical: "packed" marks the end of picking and "packing"
// the active packing step. Downstream consumers key on the literal strings,
// so the names are kept as-is.
type PickPackStatus string

const (
	PickPackStatusPending   PickPackStatus = "pending"
	PickPackStatusPicking   PickPackStatus = "picking"
	PickPackStatusPacked    PickPackStatus = "packed"
	PickPackStatusPacking   PickPackStatus = "packing"
	PickPackStatusShipped   PickPackStatus = "shipped"
	PickPackStatusCancelled PickPackStatus = "cancelled"
)

var validPickPackStatuses = []PickPackStatus{
	PickPackStatusPending,
	PickPackStatusPicking,
	PickPackStatusPacked,
	PickPackStatusPacking,
	PickPackStatusShipped,
	PickPackStatusCancelled,
}

// String implements fmt.Stringer.
func (p PickPackStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PickPackStatus.
func (p PickPackStatus) IsValid() bool {
	for _, candidate := range validPickPackStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (p PickPackStatus) IsTerminal() bool {
	return p == PickPackStatusShipped || p == PickPackStatusCancelled
}

// ParsePickPackStatus converts raw input into a PickPackStatus.
func ParsePickPackStatus(value string) (PickPackStatus, error) {
	for _, candidate := range validPickPackStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pick pack status %q", value)
}
