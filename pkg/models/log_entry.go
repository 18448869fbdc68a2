package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// LogEntry is a single deposit or withdrawal in the ledger log.
//
// The ID reflects the insertion order. EnvelopeID is a plain reference,
// the log keeps its entries even if the envelope is gone.
type LogEntry struct {
	ID            uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	EnvelopeID    uint      `json:"envelopeId" gorm:"index;not null"`
	EffectiveTime int64     `json:"effectiveTime" gorm:"not null"` // Epoch milliseconds
	Description   string    `json:"description"`
	AmountCents   int64     `json:"amountCents" gorm:"not null"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Effective returns the effective time of the entry in UTC.
func (l LogEntry) Effective() time.Time {
	return time.UnixMilli(l.EffectiveTime).In(time.UTC)
}

// BeforeSave trims whitespace from the description.
func (l *LogEntry) BeforeSave(_ *gorm.DB) error {
	l.Description = strings.TrimSpace(l.Description)
	return nil
}
