package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client categories
const (
	ClientCategoryRegular    = "Regular"
	ClientCategoryVIP        = "VIP"
	ClientCategoryNewInquiry = "New Inquiry"
)

type Client struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name    string    `gorm:"not null" json:"name"`
	Email   string    `gorm:"not null" json:"email"`
	Phone   string    `gorm:"not null" json:"phone"`
	Address string    `json:"address"`
	City    string    `json:"city"`
	State   string    `json:"state"`
	ZipCode string    `json:"zipCode"`

	Category string     `gorm:"default:'New Inquiry'" json:"category"`
	Tags     StringList `gorm:"type:text" json:"tags"`
	Notes    string     `json:"notes"`

	// Cached ledger aggregates. Recomputed from invoices and payments inside
	// the same transaction as every invoice/payment write, never incremented
	// in place.
	TotalBilled   float64 `gorm:"type:decimal(12,2);default:0.0" json:"totalBilled"`
	TotalPaid     float64 `gorm:"type:decimal(12,2);default:0.0" json:"totalPaid"`
	PendingAmount float64 `gorm:"type:decimal(12,2);default:0.0" json:"pendingAmount"`

	Quotations []Quotation `gorm:"foreignKey:ClientID" json:"quotations,omitempty"`
	Invoices   []Invoice   `gorm:"foreignKey:ClientID" json:"invoices,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (cl *Client) BeforeCreate(tx *gorm.DB) error {
	if cl.ID == uuid.Nil {
		cl.ID = uuid.New()
	}
	return nil
}

// StringList stores a list of tags as a JSON-encoded text column so the same
// model works on postgres and sqlite.
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	return string(b), err
}

func (s *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	case nil:
		*s = nil
		return nil
	}
	return errors.New("unsupported type for StringList")
}
