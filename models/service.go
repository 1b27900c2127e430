package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is a catalog entry the studio offers (photography, video, drone...).
// Quotation and invoice line items snapshot its name and rate at authoring
// time, so editing the catalog never changes an issued document.
type Service struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Category    string    `gorm:"default:'photography'" json:"category"` // photography, video, drone, product, other
	RatePerDay  float64   `gorm:"type:decimal(12,2);not null" json:"ratePerDay"`
	RatePerUnit float64   `gorm:"type:decimal(12,2);default:0.0" json:"ratePerUnit"`
	IsActive    bool      `gorm:"default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
