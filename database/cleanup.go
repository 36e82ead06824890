package database

import (
	"context"
	"fmt"
	"time"

	"faction-oc-bot/utils"

	"github.com/rs/zerolog/log"
)

// CleanupExpiredAlerts deletes alert records older than the cooldown. An expired
// record and a missing record both allow the next alert, so pruning never changes
// which alerts are sent.
func CleanupExpiredAlerts(ctx context.Context, store Store, now time.Time, cooldown time.Duration) {
	log.Info().Msg("Starting cleanup of expired alert records...")

	pruned, err := store.PruneAlerts(ctx, now.Add(-cooldown))
	if err != nil {
		log.Error().Err(err).Msg("Error pruning alert records")
		return
	}

	log.Info().Int64("pruned", pruned).Msg("Finished cleanup of expired alert records")
	if pruned > 0 {
		utils.Info("CleanupExpiredAlerts", "Cleanup", fmt.Sprintf("Successfully cleaned up %d expired alert records", pruned))
	}
}
