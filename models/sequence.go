package models

// DocumentSequence backs document numbering (QT-YYYYMM-NNNNN,
// INV-YYYYMM-NNNNN). One row per document type and year-month; the counter is
// advanced with a single atomic upsert so concurrent creates never collide.
type DocumentSequence struct {
	DocType string `gorm:"primaryKey;size:8"`
	Period  string `gorm:"primaryKey;size:6"` // YYYYMM
	Counter int64  `gorm:"not null;default:0"`
}
