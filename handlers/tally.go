package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"faction-oc-bot/database"

	"github.com/rs/zerolog/log"
)

// TallyReport lists members with a positive infraction tally, highest first.
func TallyReport(ctx context.Context, store database.Store) string {
	members, err := store.Members(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load members for tally")
		return "Failed to load infraction tally."
	}

	type entry struct {
		name  string
		tally int
	}
	var entries []entry
	for _, m := range members {
		if m.InfractionTally > 0 {
			entries = append(entries, entry{m.Name, m.InfractionTally})
		}
	}
	if len(entries) == 0 {
		return "No infractions recorded."
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].tally != entries[b].tally {
			return entries[a].tally > entries[b].tally
		}
		return entries[a].name < entries[b].name
	})

	var sb strings.Builder
	sb.WriteString("**Infraction Tally**")
	for _, e := range entries {
		fmt.Fprintf(&sb, "\n• %s: %d", e.name, e.tally)
	}
	return sb.String()
}
