package ledger

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/envelope-zero/ledger/pkg/notify"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Operation names, used for notifications and metrics.
const (
	OperationDeposit        = "deposit"
	OperationReplay         = "replay"
	OperationCreateEnvelope = "create-envelope"
	OperationRenameEnvelope = "rename-envelope"
)

// DefaultNotifyURI identifies the ledger in notifications if no URI is configured.
const DefaultNotifyURI = "ledger://envelopes"

// StoreOptions configures a Store.
type StoreOptions struct {
	Notifier  notify.Notifier // Called once after every committed operation. Defaults to notify.Nop
	NotifyURI string          // Sent with every event. Defaults to DefaultNotifyURI
}

// Store holds the envelope balances and the transaction log.
type Store struct {
	db       *gorm.DB
	notifier notify.Notifier
	uri      string
}

// NewStore returns a Store using db.
func NewStore(db *gorm.DB, opts StoreOptions) *Store {
	s := &Store{
		db:       db,
		notifier: opts.Notifier,
		uri:      opts.NotifyURI,
	}

	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}

	if s.uri == "" {
		s.uri = DefaultNotifyURI
	}

	return s
}

// DB returns the underlying database.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn inside a database transaction.
//
// If fn returns an error or panics, the transaction is rolled back.
// Otherwise, it is committed and the notifier is called exactly once.
func (s *Store) Transaction(ctx context.Context, operation string, fn func(tx *Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&Tx{db: db})
	})
	if err != nil {
		return storeError(err)
	}

	event := notify.NewEvent(s.uri, operation)
	if err := s.notifier.Notify(ctx, event); err != nil {
		log.Error().Err(err).Str("operation", operation).Str("event", event.ID.String()).Msg("Ledger change notification failed")
	}

	return nil
}

// Tx gives access to the storage primitives inside a transaction.
type Tx struct {
	db *gorm.DB
}

// Balances returns the balances for an envelope.
//
// The row is locked for the rest of the transaction on databases
// that support row-level locking.
func (t *Tx) Balances(envelopeID uint) (current, projected int64, err error) {
	var envelope models.Envelope
	err = t.db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "current_cents", "projected_cents").
		First(&envelope, envelopeID).
		Error
	if errors.Is(err, models.ErrResourceNotFound) {
		return 0, 0, ErrEnvelopeNotFound
	}
	if err != nil {
		return 0, 0, storeError(err)
	}

	return envelope.CurrentCents, envelope.ProjectedCents, nil
}

// SetBalances overwrites the balances of an envelope.
func (t *Tx) SetBalances(envelopeID uint, current, projected int64) error {
	err := t.db.
		Model(&models.Envelope{}).
		Where("id = ?", envelopeID).
		UpdateColumns(map[string]any{
			"current_cents":   current,
			"projected_cents": projected,
			"updated_at":      time.Now().In(time.UTC),
		}).
		Error

	return storeError(err)
}

// AppendLogEntry adds an entry to the end of the log.
func (t *Tx) AppendLogEntry(entry models.LogEntry) error {
	return storeError(t.db.Create(&entry).Error)
}

// LogEntries iterates over all log entries in insertion order.
//
// Entries are read lazily from a database cursor. Every iteration opens a
// new cursor, so the sequence can be ranged over multiple times. If reading
// fails, the error is yielded and the iteration stops.
func (t *Tx) LogEntries() iter.Seq2[models.LogEntry, error] {
	return func(yield func(models.LogEntry, error) bool) {
		rows, err := t.db.Model(&models.LogEntry{}).Order("id ASC").Rows()
		if err != nil {
			yield(models.LogEntry{}, storeError(err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var entry models.LogEntry
			if err := t.db.ScanRows(rows, &entry); err != nil {
				yield(models.LogEntry{}, storeError(err))
				return
			}

			if !yield(entry, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(models.LogEntry{}, storeError(err))
		}
	}
}

// EnvelopeIDs returns the IDs of all existing envelopes.
func (t *Tx) EnvelopeIDs() (map[uint]struct{}, error) {
	var ids []uint
	err := t.db.Model(&models.Envelope{}).Pluck("id", &ids).Error
	if err != nil {
		return nil, storeError(err)
	}

	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set, nil
}

// ResetCurrentBalances sets the current balance of every envelope to zero.
func (t *Tx) ResetCurrentBalances() error {
	err := t.db.
		Model(&models.Envelope{}).
		Where("1 = 1").
		UpdateColumn("current_cents", 0).
		Error

	return storeError(err)
}
