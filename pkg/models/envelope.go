package models

import (
	"strings"

	"gorm.io/gorm"
)

// Envelope is a named bucket holding a portion of the budgeted money.
//
// Both balances are a cache derived from the log. CurrentCents only
// contains entries that are already effective, ProjectedCents contains
// all entries regardless of their effective time.
type Envelope struct {
	ID             uint   `json:"id" gorm:"primaryKey;autoIncrement" example:"3"`
	Name           string `json:"name" example:"Groceries"`
	CurrentCents   int64  `json:"currentCents" gorm:"not null;default:0" example:"30000"`
	ProjectedCents int64  `json:"projectedCents" gorm:"not null;default:0" example:"130000"`
	Timestamps
}

// BeforeSave trims whitespace from the name and rejects empty names.
func (e *Envelope) BeforeSave(_ *gorm.DB) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return ErrEnvelopeNameRequired
	}

	return nil
}
