package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderLog records every payment reminder sent for an overdue invoice.
type ReminderLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null" json:"invoiceId"`
	ClientID  uuid.UUID `gorm:"type:uuid;index;not null" json:"clientId"`

	Message      string    `json:"message"`
	Channel      string    `json:"channel"` // "sms" or "whatsapp"
	Status       string    `json:"status"`  // "sent" or "failed"
	ErrorMessage string    `json:"errorMessage"`
	SentAt       time.Time `json:"sentAt"`
}

func (rl *ReminderLog) BeforeCreate(tx *gorm.DB) error {
	if rl.ID == uuid.Nil {
		rl.ID = uuid.New()
	}
	return nil
}
