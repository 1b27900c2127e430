package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice payment statuses, derived from the payment ledger.
const (
	PaymentStatusUnpaid        = "Unpaid"
	PaymentStatusPartiallyPaid = "Partially Paid"
	PaymentStatusPaid          = "Paid"
)

type Invoice struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNumber string     `gorm:"uniqueIndex;not null" json:"invoiceNumber"`
	ClientID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"clientId"`
	QuotationID   *uuid.UUID `gorm:"type:uuid;index" json:"quotationId"`
	EventType     string     `gorm:"not null" json:"eventType"`
	InvoiceDate   time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"invoiceDate"`
	EventDate     time.Time  `gorm:"not null" json:"eventDate"`
	DueDate       time.Time  `gorm:"not null" json:"dueDate"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`

	Subtotal      float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Discount      float64 `gorm:"type:decimal(12,2);default:0.0" json:"discount"`
	DiscountType  string  `gorm:"default:'fixed'" json:"discountType"`
	TaxPercentage float64 `gorm:"type:decimal(5,2);default:0.0" json:"taxPercentage"`
	Tax           float64 `gorm:"type:decimal(12,2);default:0.0" json:"tax"`
	GrandTotal    float64 `gorm:"type:decimal(12,2);not null" json:"grandTotal"`

	// Cached derivation from the payment ledger: compare(sum(payments),
	// grandTotal). Re-derived and persisted after every payment write.
	PaymentStatus string `gorm:"default:'Unpaid'" json:"paymentStatus"`

	BankDetails     BankDetails `gorm:"embedded;embeddedPrefix:bank_" json:"bankDetails"`
	Notes           string      `json:"notes"`
	ThankYouMessage string      `json:"thankYouMessage"`

	Client    Client     `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Quotation *Quotation `gorm:"foreignKey:QuotationID" json:"quotation,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type BankDetails struct {
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	IFSCCode      string `json:"ifscCode"`
	UPIID         string `json:"upiId"`
}

type InvoiceItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID   uuid.UUID `gorm:"type:uuid;index;not null" json:"invoiceId"`
	ServiceID   uuid.UUID `gorm:"type:uuid;index;not null" json:"serviceId"`
	ServiceName string    `json:"serviceName"`
	Quantity    int       `gorm:"default:1" json:"quantity"`
	Days        int       `gorm:"default:1" json:"days"`
	RatePerDay  float64   `gorm:"type:decimal(12,2);not null" json:"ratePerDay"`
	Total       float64   `gorm:"type:decimal(12,2);not null" json:"total"`
}

func (ii *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if ii.ID == uuid.Nil {
		ii.ID = uuid.New()
	}
	return nil
}
