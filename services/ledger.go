// services/ledger.go
package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"photostudio-backend/models"
)

// RecalculateClientLedger refreshes a client's cached billed/paid/pending
// totals from the invoices and payments actually on record. It must run inside
// the same transaction as the invoice or payment write that made the cache
// stale, so the trio can never drift apart.
func RecalculateClientLedger(tx *gorm.DB, clientID uuid.UUID) error {
	var billed float64
	if err := tx.Model(&models.Invoice{}).
		Where("client_id = ?", clientID).
		Select("COALESCE(SUM(grand_total), 0)").
		Scan(&billed).Error; err != nil {
		return err
	}

	var paid float64
	if err := tx.Model(&models.Payment{}).
		Where("client_id = ?", clientID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&paid).Error; err != nil {
		return err
	}

	return tx.Model(&models.Client{}).
		Where("id = ?", clientID).
		Updates(map[string]interface{}{
			"total_billed":   billed,
			"total_paid":     paid,
			"pending_amount": billed - paid,
		}).Error
}

// InvoiceAmountReceived sums the payment ledger for one invoice.
func InvoiceAmountReceived(tx *gorm.DB, invoiceID uuid.UUID) (float64, error) {
	var received float64
	err := tx.Model(&models.Payment{}).
		Where("invoice_id = ?", invoiceID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&received).Error
	return received, err
}
