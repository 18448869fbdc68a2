// Package ledger implements the envelope ledger.
//
// Every deposit and withdrawal is appended to a log. The balances stored
// with each envelope are a cache of sums over that log: the current
// balance contains all entries that are already effective, the projected
// balance contains all entries. The Engine keeps the cache up to date
// incrementally and can recompute it from the full log.
package ledger

import (
	"context"
	"time"

	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/slices"
)

const tracerName = "github.com/envelope-zero/ledger/pkg/ledger"

// Engine applies deposits to the ledger and replays the log.
type Engine struct {
	store  *Store
	now    func() time.Time
	tracer trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the function used to determine the current time.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithTracer sets the tracer used for spans. Defaults to the global tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// NewEngine returns an Engine working on store.
func NewEngine(store *Store, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		now:    time.Now,
		tracer: otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Store returns the store of the engine.
func (e *Engine) Store() *Store {
	return e.store
}

// Deposit adds amountCents to an envelope, effective immediately.
// Negative amounts are withdrawals.
func (e *Engine) Deposit(ctx context.Context, envelopeID uint, amountCents int64, description string) error {
	return e.DepositAt(ctx, envelopeID, amountCents, description, e.now())
}

// DepositAt adds amountCents to an envelope, effective at the given time.
//
// The projected balance always changes immediately. The current balance
// only changes if the effective time is not in the future, delayed entries
// reach it with the first full replay after their effective time.
//
// A zero amount does not change anything and is not logged.
func (e *Engine) DepositAt(ctx context.Context, envelopeID uint, amountCents int64, description string, effective time.Time) (err error) {
	ctx, span := e.tracer.Start(ctx, "ledger.Deposit", trace.WithAttributes(
		attribute.Int64("ledger.envelope_id", int64(envelopeID)),
		attribute.Int64("ledger.amount_cents", amountCents),
		attribute.String("ledger.effective_time", effective.UTC().Format(time.RFC3339Nano)),
	))
	defer func() { end(span, OperationDeposit, err) }()

	effectiveMillis := effective.UnixMilli()
	delayed := effectiveMillis > e.now().UnixMilli()
	span.SetAttributes(attribute.Bool("ledger.delayed", delayed))

	err = e.store.Transaction(ctx, OperationDeposit, func(tx *Tx) error {
		if amountCents == 0 {
			return nil
		}

		current, projected, err := tx.Balances(envelopeID)
		if err != nil {
			return err
		}

		if !delayed {
			current, err = add(current, amountCents)
			if err != nil {
				return err
			}
		}

		projected, err = add(projected, amountCents)
		if err != nil {
			return err
		}

		err = tx.SetBalances(envelopeID, current, projected)
		if err != nil {
			return err
		}

		return tx.AppendLogEntry(models.LogEntry{
			EnvelopeID:    envelopeID,
			EffectiveTime: effectiveMillis,
			Description:   description,
			AmountCents:   amountCents,
		})
	})
	if err != nil {
		return err
	}

	if amountCents != 0 {
		kind := "current"
		if delayed {
			kind = "delayed"
		}
		deposits.WithLabelValues(kind).Inc()
	}

	return nil
}

// ReplayResult summarizes a full replay.
type ReplayResult struct {
	Entries   int `json:"entries" example:"1274"` // Number of log entries processed
	Envelopes int `json:"envelopes" example:"8"`  // Number of envelopes whose balances were written
	Skipped   int `json:"skipped" example:"0"`    // Number of envelopes referenced by the log that do not exist anymore
}

// FullReplay recomputes all balances from the log as of now.
func (e *Engine) FullReplay(ctx context.Context) (ReplayResult, error) {
	return e.FullReplayAt(ctx, e.now())
}

// FullReplayAt recomputes all balances from the log.
//
// Entries with an effective time up to and including asOf count towards
// the current balance, all entries count towards the projected balance.
// Envelopes without any log entries keep their projected balance and get
// a current balance of zero.
func (e *Engine) FullReplayAt(ctx context.Context, asOf time.Time) (result ReplayResult, err error) {
	ctx, span := e.tracer.Start(ctx, "ledger.FullReplay", trace.WithAttributes(
		attribute.String("ledger.as_of", asOf.UTC().Format(time.RFC3339Nano)),
	))
	defer func() { end(span, OperationReplay, err) }()

	cutoff := asOf.UnixMilli()

	err = e.store.Transaction(ctx, OperationReplay, func(tx *Tx) error {
		result = ReplayResult{}

		err := tx.ResetCurrentBalances()
		if err != nil {
			return err
		}

		currentSum := make(map[uint]int64)
		projectedSum := make(map[uint]int64)

		for entry, err := range tx.LogEntries() {
			if err != nil {
				return err
			}

			result.Entries++
			if entry.EffectiveTime <= cutoff {
				currentSum[entry.EnvelopeID], err = add(currentSum[entry.EnvelopeID], entry.AmountCents)
				if err != nil {
					return err
				}
			}

			projectedSum[entry.EnvelopeID], err = add(projectedSum[entry.EnvelopeID], entry.AmountCents)
			if err != nil {
				return err
			}
		}

		existing, err := tx.EnvelopeIDs()
		if err != nil {
			return err
		}

		ids := make([]uint, 0, len(projectedSum))
		for id := range projectedSum {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		for _, id := range ids {
			// Entries of envelopes that have been removed are dropped.
			// Envelopes are never deleted by the ledger itself.
			if _, ok := existing[id]; !ok {
				log.Debug().Uint("envelope", id).Int64("projectedCents", projectedSum[id]).Msg("Replay skipped balances for missing envelope")
				result.Skipped++
				continue
			}

			err := tx.SetBalances(id, currentSum[id], projectedSum[id])
			if err != nil {
				return err
			}
			result.Envelopes++
		}

		return nil
	})
	if err != nil {
		return ReplayResult{}, err
	}

	span.SetAttributes(
		attribute.Int("ledger.entries", result.Entries),
		attribute.Int("ledger.envelopes", result.Envelopes),
		attribute.Int("ledger.skipped", result.Skipped),
	)
	replays.Inc()
	replayEntries.Observe(float64(result.Entries))

	log.Info().Time("asOf", asOf).Int("entries", result.Entries).Int("envelopes", result.Envelopes).Int("skipped", result.Skipped).Msg("Ledger replayed")
	return result, nil
}

// end records the outcome of an operation on its span and ends it.
func end(span trace.Span, operation string, err error) {
	if err != nil {
		operationErrors.WithLabelValues(operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
