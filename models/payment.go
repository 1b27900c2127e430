package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment methods
const (
	PaymentMethodCash         = "Cash"
	PaymentMethodBankTransfer = "Bank Transfer"
	PaymentMethodUPI          = "UPI"
	PaymentMethodCreditCard   = "Credit Card"
	PaymentMethodCheque       = "Cheque"
	PaymentMethodOther        = "Other"
)

func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodUPI,
		PaymentMethodCreditCard, PaymentMethodCheque, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is an append-only ledger row against one invoice. Rows are never
// mutated or deleted in normal flow; the model carries no UpdatedAt.
type Payment struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID     uuid.UUID `gorm:"type:uuid;index;not null" json:"invoiceId"`
	ClientID      uuid.UUID `gorm:"type:uuid;index;not null" json:"clientId"`
	Amount        float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentDate   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"paymentDate"`
	PaymentMethod string    `gorm:"not null" json:"paymentMethod"`
	TransactionID string    `json:"transactionId"`
	Notes         string    `json:"notes"`

	CreatedAt time.Time `json:"createdAt"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
