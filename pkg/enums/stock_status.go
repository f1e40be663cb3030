package enums

// StockStatus is the derived replenishment classification of a product. It is
// computed from stock/minStock on every read and never stored.
type StockStatus string

const (
	StockStatusOK       StockStatus = "ok"
	StockStatusLow      StockStatus = "low"
	StockStatusCritical StockStatus = "critical"
)

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// NeedsReplenishment reports whether the product should appear in replenishment
// mode listings.
func (s StockStatus) NeedsReplenishment() bool {
	return s == StockStatusLow || s == StockStatusCritical
}
