// services/numbering.go
package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Document number prefixes
const (
	DocTypeQuotation = "QT"
	DocTypeInvoice   = "INV"
)

// NextDocumentNumber reserves the next number for a document type in the
// current year-month, e.g. QT-202608-00001. The counter row is advanced with a
// single upsert so two concurrent creates can never be handed the same number.
// Must be called inside the transaction that creates the document, so an
// aborted create does not burn a visible gap beyond the rolled-back reservation.
func NextDocumentNumber(tx *gorm.DB, docType string, now time.Time) (string, error) {
	period := now.Format("200601")

	var counter int64
	err := tx.Raw(`
		INSERT INTO document_sequences (doc_type, period, counter)
		VALUES (?, ?, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET counter = document_sequences.counter + 1
		RETURNING counter
	`, docType, period).Scan(&counter).Error
	if err != nil {
		return "", fmt.Errorf("reserve %s number: %w", docType, err)
	}

	return fmt.Sprintf("%s-%s-%05d", docType, period, counter), nil
}
