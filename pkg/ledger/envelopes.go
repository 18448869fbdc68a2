package ledger

import (
	"context"
	"errors"

	"github.com/envelope-zero/ledger/pkg/models"
	"gorm.io/gorm"
)

// Envelopes returns all envelopes ordered by ID.
func (s *Store) Envelopes(ctx context.Context) ([]models.Envelope, error) {
	var envelopes []models.Envelope
	err := s.db.WithContext(ctx).Order("id ASC").Find(&envelopes).Error
	if err != nil {
		return nil, storeError(err)
	}

	return envelopes, nil
}

// Envelope returns a single envelope.
func (s *Store) Envelope(ctx context.Context, id uint) (models.Envelope, error) {
	var envelope models.Envelope
	err := s.db.WithContext(ctx).First(&envelope, id).Error
	if errors.Is(err, models.ErrResourceNotFound) {
		return models.Envelope{}, ErrEnvelopeNotFound
	}
	if err != nil {
		return models.Envelope{}, storeError(err)
	}

	return envelope, nil
}

// CreateEnvelope creates a new envelope with zero balances.
func (s *Store) CreateEnvelope(ctx context.Context, name string) (models.Envelope, error) {
	envelope := models.Envelope{Name: name}
	err := s.Transaction(ctx, OperationCreateEnvelope, func(tx *Tx) error {
		return tx.db.Create(&envelope).Error
	})
	if err != nil {
		return models.Envelope{}, err
	}

	return envelope, nil
}

// RenameEnvelope changes the name of an envelope. Balances are not touched.
func (s *Store) RenameEnvelope(ctx context.Context, id uint, name string) (models.Envelope, error) {
	var envelope models.Envelope
	err := s.Transaction(ctx, OperationRenameEnvelope, func(tx *Tx) error {
		err := tx.db.First(&envelope, id).Error
		if errors.Is(err, models.ErrResourceNotFound) {
			return ErrEnvelopeNotFound
		}
		if err != nil {
			return err
		}

		envelope.Name = name
		return tx.db.Select("name", "updated_at").Save(&envelope).Error
	})
	if err != nil {
		return models.Envelope{}, err
	}

	return envelope, nil
}

// LogFilter restricts the log entries returned by LogEntries.
type LogFilter struct {
	EnvelopeID uint // Only entries for this envelope. 0 means all envelopes
	Offset     int
	Limit      int // Maximum number of entries. -1 means no limit
}

// LogEntries returns a page of log entries in insertion order together
// with the total number of entries matching the filter.
func (s *Store) LogEntries(ctx context.Context, filter LogFilter) ([]models.LogEntry, int64, error) {
	// Count and Find need separate statements
	query := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.LogEntry{})
		if filter.EnvelopeID != 0 {
			q = q.Where("envelope_id = ?", filter.EnvelopeID)
		}
		return q
	}

	var total int64
	err := query().Count(&total).Error
	if err != nil {
		return nil, 0, storeError(err)
	}

	entries := []models.LogEntry{}
	if filter.Limit == 0 {
		return entries, total, nil
	}

	err = query().Order("id ASC").Offset(filter.Offset).Limit(filter.Limit).Find(&entries).Error
	if err != nil {
		return nil, 0, storeError(err)
	}

	return entries, total, nil
}
