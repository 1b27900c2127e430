package services

import (
	"testing"

	"photostudio-backend/models"
)

func TestComputeTotalsFixedDiscount(t *testing.T) {
	items := []LineInput{
		{Quantity: 1, Days: 2, RatePerDay: 15000},
		{Quantity: 1, Days: 1, RatePerDay: 8000},
	}

	totals := ComputeTotals(items, 5000, DiscountTypeFixed, 18)

	if totals.Subtotal != 38000 {
		t.Fatalf("subtotal = %v, want 38000", totals.Subtotal)
	}
	if totals.Tax != 5940 {
		t.Fatalf("tax = %v, want 5940", totals.Tax)
	}
	if totals.GrandTotal != 38940 {
		t.Fatalf("grand total = %v, want 38940", totals.GrandTotal)
	}
}

func TestComputeTotalsPercentageDiscount(t *testing.T) {
	items := []LineInput{
		{Quantity: 1, Days: 2, RatePerDay: 15000},
		{Quantity: 1, Days: 1, RatePerDay: 8000},
	}

	// 10% of 38000 = 3800, taxable 34200, tax 6156
	totals := ComputeTotals(items, 10, DiscountTypePercentage, 18)

	if totals.Subtotal != 38000 {
		t.Fatalf("subtotal = %v, want 38000", totals.Subtotal)
	}
	if totals.Tax != 6156 {
		t.Fatalf("tax = %v, want 6156", totals.Tax)
	}
	if totals.GrandTotal != 40356 {
		t.Fatalf("grand total = %v, want 40356", totals.GrandTotal)
	}
}

func TestComputeTotalsDiscountClampedToSubtotal(t *testing.T) {
	items := []LineInput{{Quantity: 1, Days: 1, RatePerDay: 10000}}

	totals := ComputeTotals(items, 50000, DiscountTypeFixed, 18)

	if totals.GrandTotal != 0 {
		t.Fatalf("grand total = %v, want 0 (discount must clamp to subtotal)", totals.GrandTotal)
	}
	if totals.Tax != 0 {
		t.Fatalf("tax = %v, want 0", totals.Tax)
	}
}

func TestComputeTotalsNegativeInputsClamp(t *testing.T) {
	items := []LineInput{{Quantity: 1, Days: 1, RatePerDay: 1000}}

	totals := ComputeTotals(items, -500, DiscountTypeFixed, -10)
	if totals.GrandTotal != 1000 {
		t.Fatalf("grand total = %v, want 1000 (negative discount and tax ignored)", totals.GrandTotal)
	}

	totals = ComputeTotals(items, 0, DiscountTypeFixed, 150)
	if totals.Tax != 1000 {
		t.Fatalf("tax = %v, want 1000 (tax capped at 100%%)", totals.Tax)
	}
}

func TestComputeTotalsNoItems(t *testing.T) {
	totals := ComputeTotals(nil, 100, DiscountTypeFixed, 18)
	if totals.Subtotal != 0 || totals.Tax != 0 || totals.GrandTotal != 0 {
		t.Fatalf("empty document totals = %+v, want all zero", totals)
	}
}

func TestComputeLineTotalClamps(t *testing.T) {
	cases := []struct {
		name     string
		quantity int
		days     int
		rate     float64
		want     float64
	}{
		{"normal", 2, 3, 1000, 6000},
		{"zero quantity treated as one", 0, 3, 1000, 3000},
		{"zero days treated as one", 2, 0, 1000, 2000},
		{"negative rate treated as zero", 2, 3, -500, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeLineTotal(tc.quantity, tc.days, tc.rate); got != tc.want {
				t.Fatalf("ComputeLineTotal(%d, %d, %v) = %v, want %v", tc.quantity, tc.days, tc.rate, got, tc.want)
			}
		})
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	cases := []struct {
		name     string
		received float64
		grand    float64
		want     string
	}{
		{"nothing received", 0, 100000, models.PaymentStatusUnpaid},
		{"negative received", -1, 100000, models.PaymentStatusUnpaid},
		{"partial", 40000, 100000, models.PaymentStatusPartiallyPaid},
		{"exact", 100000, 100000, models.PaymentStatusPaid},
		{"overpaid", 120000, 100000, models.PaymentStatusPaid},
		{"zero total invoice", 0, 0, models.PaymentStatusUnpaid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DerivePaymentStatus(tc.received, tc.grand); got != tc.want {
				t.Fatalf("DerivePaymentStatus(%v, %v) = %q, want %q", tc.received, tc.grand, got, tc.want)
			}
		})
	}
}

func TestDerivePaymentStatusIdempotent(t *testing.T) {
	// Re-deriving from the same ledger must always give the same answer.
	for i := 0; i < 3; i++ {
		if got := DerivePaymentStatus(40000, 100000); got != models.PaymentStatusPartiallyPaid {
			t.Fatalf("derivation %d = %q, want %q", i, got, models.PaymentStatusPartiallyPaid)
		}
	}
}
