// services/pricing.go
package services

import (
	"math"

	"photostudio-backend/models"
)

// Discount types
const (
	DiscountTypeFixed      = "fixed"
	DiscountTypePercentage = "percentage"
)

// LineInput is the pricing-relevant slice of a quotation or invoice line.
type LineInput struct {
	Quantity   int
	Days       int
	RatePerDay float64
}

// Totals is the computed money summary of a document.
type Totals struct {
	Subtotal   float64
	Tax        float64
	GrandTotal float64
}

// ComputeLineTotal prices one line. Missing or out-of-range factors clamp to
// safe defaults (quantity 1, days 1, rate 0) instead of failing.
func ComputeLineTotal(quantity, days int, ratePerDay float64) float64 {
	if quantity < 1 {
		quantity = 1
	}
	if days < 1 {
		days = 1
	}
	if ratePerDay < 0 {
		ratePerDay = 0
	}
	return float64(quantity) * float64(days) * ratePerDay
}

// ComputeTotals derives subtotal, tax and grand total from line items and the
// discount/tax fields. Pure function with no side effects; callers persist the
// result whenever any input changes. Amounts are rounded to whole rupees.
//
// A percentage discount applies to the subtotal; a fixed discount is an
// absolute amount. Either way the discount is clamped to [0, subtotal] so a
// document can never total negative.
func ComputeTotals(items []LineInput, discount float64, discountType string, taxPercentage float64) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += ComputeLineTotal(item.Quantity, item.Days, item.RatePerDay)
	}

	if discount < 0 {
		discount = 0
	}
	if taxPercentage < 0 {
		taxPercentage = 0
	}
	if taxPercentage > 100 {
		taxPercentage = 100
	}

	discountAmount := discount
	if discountType == DiscountTypePercentage {
		discountAmount = subtotal * discount / 100
	}
	if discountAmount > subtotal {
		discountAmount = subtotal
	}

	taxable := subtotal - discountAmount
	tax := math.Round(taxable * taxPercentage / 100)
	grandTotal := math.Round(taxable + tax)

	return Totals{Subtotal: subtotal, Tax: tax, GrandTotal: grandTotal}
}

// DerivePaymentStatus classifies an invoice from its received amount. The
// authoritative value is always compare(sum(payments), grandTotal); the field
// stored on the invoice is only a cache of this derivation.
func DerivePaymentStatus(totalReceived, grandTotal float64) string {
	switch {
	case totalReceived <= 0:
		return models.PaymentStatusUnpaid
	case totalReceived >= grandTotal:
		return models.PaymentStatusPaid
	default:
		return models.PaymentStatusPartiallyPaid
	}
}
