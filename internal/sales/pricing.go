package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
	pkgerrors "github.com/andreviana/cellshop-pos-backend/pkg/errors"
)

// SaleLineInput is one line of a draft sale. ProductID is nil for ad-hoc lines
// (services, parts not in the catalog), which carry no stock impact.
type SaleLineInput struct {
	ProductID *uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Qty       int
}

// PaymentInput is one entry of a split payment.
type PaymentInput struct {
	Method enums.PaymentMethod
	Amount decimal.Decimal
}

// Pricing holds the computed totals of a draft sale.
type Pricing struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// splitTolerance is the accepted rounding slack between a sale total and the
// sum of its split payments.
var splitTolerance = decimal.NewFromFloat(0.01)

// ComputePricing derives subtotal, effective discount, and total for the given
// lines. The discount is clamped to [0, subtotal], so the total never goes
// negative.
func ComputePricing(lines []SaleLineInput, discount decimal.Decimal) Pricing {
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Qty <= 0 || line.UnitPrice.IsNegative() {
			continue
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Qty))))
	}

	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	return Pricing{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}
}

// PaymentTerms is the payment side of a draft sale, validated as a whole
// against the computed total.
type PaymentTerms struct {
	Kind        enums.PaymentKind
	Method      *enums.PaymentMethod
	Payments    []PaymentInput
	ClientName  string
	ClientPhone string
	DueDate     *time.Time
}

// ValidatePaymentTerms checks the payment side of a draft sale. Split payments
// must balance the total within the rounding tolerance; fiado sales must name
// the debtor and a due date and carry no method until settlement.
func ValidatePaymentTerms(terms PaymentTerms, total decimal.Decimal) error {
	switch terms.Kind {
	case enums.PaymentKindSingle:
		if terms.Method == nil || !terms.Method.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
		}
		if len(terms.Payments) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "split entries not allowed on a single-method sale")
		}
	case enums.PaymentKindSplit:
		if len(terms.Payments) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "split sale requires at least one payment entry")
		}
		sum := decimal.Zero
		for _, p := range terms.Payments {
			if !p.Method.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method in split")
			}
			if !p.Amount.IsPositive() {
				return pkgerrors.New(pkgerrors.CodeValidation, "split amounts must be positive")
			}
			sum = sum.Add(p.Amount)
		}
		if diff := sum.Sub(total); diff.Abs().GreaterThan(splitTolerance) {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("split payments must equal the sale total (difference of %s)", diff.StringFixed(2)))
		}
	case enums.PaymentKindFiado:
		if terms.Method != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "fiado sale carries no payment method until settlement")
		}
		if strings.TrimSpace(terms.ClientName) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "client name is required for fiado")
		}
		if strings.TrimSpace(terms.ClientPhone) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "client phone is required for fiado")
		}
		if terms.DueDate == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "due date is required for fiado")
		}
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment kind")
	}
	return nil
}
