// Package scheduler periodically replays the ledger.
//
// Delayed deposits only count towards the current balance after a full
// replay has passed their effective time. The scheduler makes sure this
// happens regularly without any user interaction.
package scheduler

import (
	"context"
	"time"

	"github.com/envelope-zero/ledger/pkg/ledger"
	"github.com/rs/zerolog/log"
)

// Replayer recomputes the ledger balances.
type Replayer interface {
	FullReplay(ctx context.Context) (ledger.ReplayResult, error)
}

// Scheduler runs full replays in a fixed interval.
type Scheduler struct {
	replayer Replayer
	interval time.Duration
}

// New returns a Scheduler. An interval of 0 disables it.
func New(replayer Replayer, interval time.Duration) *Scheduler {
	return &Scheduler{
		replayer: replayer,
		interval: interval,
	}
}

// Run replays once immediately and then in every interval until ctx is
// cancelled. Failed replays are logged and retried in the next interval.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		log.Info().Msg("Scheduled replays are disabled")
		return nil
	}

	log.Info().Dur("interval", s.interval).Msg("Scheduled replays enabled")

	s.replay(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stopping scheduled replays")
			return ctx.Err()
		case <-ticker.C:
			s.replay(ctx)
		}
	}
}

func (s *Scheduler) replay(ctx context.Context) {
	_, err := s.replayer.FullReplay(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Scheduled replay failed")
	}
}
