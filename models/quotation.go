package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Quotation lifecycle statuses
const (
	QuotationStatusDraft    = "Draft"
	QuotationStatusSent     = "Sent"
	QuotationStatusAccepted = "Accepted"
	QuotationStatusRejected = "Rejected"
)

// Event types
const (
	EventTypeWedding    = "Wedding"
	EventTypePreWedding = "Pre-wedding"
	EventTypeOther      = "Other"
)

const (
	DefaultPaymentTerms      = "50% advance, 50% on event date"
	DefaultQuotationThankYou = "Thank you for choosing us. We look forward to capturing your special moments!"
	DefaultInvoiceThankYou   = "Thank you for your business. We appreciate your support!"
)

func IsValidQuotationStatus(s string) bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusAccepted, QuotationStatusRejected:
		return true
	}
	return false
}

func IsValidEventType(s string) bool {
	switch s {
	case EventTypeWedding, EventTypePreWedding, EventTypeOther:
		return true
	}
	return false
}

type Quotation struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	QuotationNumber string    `gorm:"uniqueIndex;not null" json:"quotationNumber"`
	ClientID        uuid.UUID `gorm:"type:uuid;index;not null" json:"clientId"`
	EventType       string    `gorm:"not null" json:"eventType"`
	QuotationDate   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"quotationDate"`
	EventDate       time.Time `gorm:"not null" json:"eventDate"`
	ValidityDate    time.Time `gorm:"not null" json:"validityDate"`

	Items []QuotationItem `gorm:"foreignKey:QuotationID" json:"items"`

	Subtotal      float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Discount      float64 `gorm:"type:decimal(12,2);default:0.0" json:"discount"`
	DiscountType  string  `gorm:"default:'fixed'" json:"discountType"` // fixed, percentage
	TaxPercentage float64 `gorm:"type:decimal(5,2);default:0.0" json:"taxPercentage"`
	Tax           float64 `gorm:"type:decimal(12,2);default:0.0" json:"tax"`
	GrandTotal    float64 `gorm:"type:decimal(12,2);not null" json:"grandTotal"`

	PaymentTerms    string `json:"paymentTerms"`
	Notes           string `json:"notes"`
	ThankYouMessage string `json:"thankYouMessage"`

	Status string `gorm:"default:'Draft'" json:"status"`

	// Set exactly once when the quotation is converted into an invoice.
	ConvertedToInvoice bool       `gorm:"default:false" json:"convertedToInvoice"`
	InvoiceID          *uuid.UUID `gorm:"type:uuid" json:"invoiceId"`

	Client Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (q *Quotation) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// QuotationItem is a quoted service occurrence. ServiceName and RatePerDay
// are snapshots taken from the catalog when the line is authored.
type QuotationItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	QuotationID uuid.UUID `gorm:"type:uuid;index;not null" json:"quotationId"`
	ServiceID   uuid.UUID `gorm:"type:uuid;index;not null" json:"serviceId"`
	ServiceName string    `json:"serviceName"`
	Quantity    int       `gorm:"default:1" json:"quantity"`
	Days        int       `gorm:"default:1" json:"days"`
	RatePerDay  float64   `gorm:"type:decimal(12,2);not null" json:"ratePerDay"`
	Total       float64   `gorm:"type:decimal(12,2);not null" json:"total"`
}

func (qi *QuotationItem) BeforeCreate(tx *gorm.DB) error {
	if qi.ID == uuid.Nil {
		qi.ID = uuid.New()
	}
	return nil
}
