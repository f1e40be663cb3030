package enums

import "fmt"

// StockMovementReason records why a product's stock changed.
type StockMovementReason string

const (
	StockMovementReasonSale         StockMovementReason = "sale"
	StockMovementReasonRefund       StockMovementReason = "refund"
	StockMovementReasonManualAdd    StockMovementReason = "manual_add"
	StockMovementReasonManualRemove StockMovementReason = "manual_remove"
	StockMovementReasonManualSet    StockMovementReason = "manual_set"
)

var validStockMovementReasons = []StockMovementReason{
	StockMovementReasonSale,
	StockMovementReasonRefund,
	StockMovementReasonManualAdd,
	StockMovementReasonManualRemove,
	StockMovementReasonManualSet,
}

// String implements fmt.Stringer.
func (s StockMovementReason) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockMovementReason.
func (s StockMovementReason) IsValid() bool {
	for _, candidate := range validStockMovementReasons {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockMovementReason converts raw input into a StockMovementReason.
func ParseStockMovementReason(value string) (StockMovementReason, error) {
	for _, candidate := range validStockMovementReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock movement reason %q", value)
}
