package enums

import "fmt"

// PaymentKind classifies how a sale settles: one method, a split across several
// methods, or deferred store credit (fiado). Decided once at the API boundary.
type PaymentKind string

const (
	PaymentKindSingle PaymentKind = "single"
	PaymentKindSplit  PaymentKind = "split"
	PaymentKindFiado  PaymentKind = "fiado"
)

var validPaymentKinds = []PaymentKind{
	PaymentKindSingle,
	PaymentKindSplit,
	PaymentKindFiado,
}

// String implements fmt.Stringer.
func (p PaymentKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentKind.
func (p PaymentKind) IsValid() bool {
	for _, candidate := range validPaymentKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentKind converts raw input into a PaymentKind.
func ParsePaymentKind(value string) (PaymentKind, error) {
	for _, candidate := range validPaymentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment kind %q", value)
}
