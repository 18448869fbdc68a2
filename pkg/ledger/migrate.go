package ledger

import (
	"context"
	"fmt"

	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/rs/zerolog/log"
)

// Migrate migrates the schema of the engine's database.
//
// When the migration leaves stale balances behind, the log is replayed
// once so that the balances match the new schema.
func Migrate(ctx context.Context, engine *Engine, defaults []string) (models.MigrationResult, error) {
	result, err := models.Migrate(engine.Store().DB().WithContext(ctx), defaults)
	if err != nil {
		return models.MigrationResult{}, err
	}

	if result.Created {
		log.Info().Strs("envelopes", defaults).Msg("Created ledger with default envelopes")
	}

	if result.ReplayRequired {
		log.Info().Msg("Schema upgraded, replaying the ledger")

		_, err := engine.FullReplay(ctx)
		if err != nil {
			return models.MigrationResult{}, fmt.Errorf("error when replaying the ledger after migration: %w", err)
		}
	}

	return result, nil
}
