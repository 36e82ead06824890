// Package tracker runs the OC update cycle: it reconciles the faction roster
// against stored state, escalates long absences and keeps the status message current.
package tracker

import (
	"context"
	"sync"
	"time"

	"faction-oc-bot/clock"
	"faction-oc-bot/database"
	"faction-oc-bot/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Fetcher returns the current faction roster.
type Fetcher interface {
	FetchMembers(ctx context.Context, apiKey string) ([]models.FactionMember, error)
}

// Outcome summarises how a cycle ended.
type Outcome string

const (
	OutcomeNoAPIKey      Outcome = "no_api_key"
	OutcomeNoChannel     Outcome = "no_channel"
	OutcomeFetchFailed   Outcome = "fetch_failed"
	OutcomeStoreFailed   Outcome = "store_failed"
	OutcomeBootstrapped  Outcome = "bootstrapped"
	OutcomePublished     Outcome = "published"
	OutcomePublishFailed Outcome = "publish_failed"
)

// Options configures a Tracker.
type Options struct {
	// DefaultAPIKey takes precedence over the stored torn_api_key when set.
	DefaultAPIKey  string
	Policy         Policy
	ReactionWindow time.Duration
	AlertMention   string
}

// Status describes the most recent cycle.
type Status struct {
	CycleID     string
	LastCycle   time.Time
	LastOutcome Outcome
}

// Tracker owns the update cycle. Cycles are serialized; command handlers share its store.
type Tracker struct {
	store      database.Store
	fetcher    Fetcher
	messenger  Messenger
	clock      clock.Clock
	collectors *Collectors
	opts       Options

	cycleMu sync.Mutex

	statusMu sync.RWMutex
	status   Status
}

// New creates a Tracker. Zero-valued options fall back to the 24h/24h policy and a 5 minute window.
func New(store database.Store, fetcher Fetcher, messenger Messenger, clk clock.Clock, opts Options) *Tracker {
	if opts.Policy.AlertThreshold <= 0 {
		opts.Policy.AlertThreshold = DefaultPolicy.AlertThreshold
	}
	if opts.Policy.AlertCooldown <= 0 {
		opts.Policy.AlertCooldown = DefaultPolicy.AlertCooldown
	}
	if opts.ReactionWindow <= 0 {
		opts.ReactionWindow = 5 * time.Minute
	}
	return &Tracker{
		store:      store,
		fetcher:    fetcher,
		messenger:  messenger,
		clock:      clk,
		collectors: NewCollectors(clk),
		opts:       opts,
	}
}

// Status returns the result of the most recent cycle.
func (t *Tracker) Status() Status {
	t.statusMu.RLock()
	defer t.statusMu.RUnlock()
	return t.status
}

// Store returns the store shared with the command handlers.
func (t *Tracker) Store() database.Store {
	return t.store
}

// RunCycle performs one update. It never panics on external failures: every
// fetch, store and chat call is guarded and the next tick acts as the retry.
func (t *Tracker) RunCycle(ctx context.Context) Outcome {
	t.cycleMu.Lock()
	defer t.cycleMu.Unlock()

	now := t.clock.Now()
	cycleID := uuid.NewString()
	logger := log.With().Str("cycle", cycleID).Logger()

	outcome := t.runCycle(ctx, now, logger)
	logger.Debug().Str("outcome", string(outcome)).Msg("OC update finished")

	t.statusMu.Lock()
	t.status = Status{CycleID: cycleID, LastCycle: now, LastOutcome: outcome}
	t.statusMu.Unlock()
	return outcome
}

func (t *Tracker) runCycle(ctx context.Context, now time.Time, logger zerolog.Logger) Outcome {
	apiKey := t.opts.DefaultAPIKey
	if apiKey == "" {
		// Fall back to the key set with !setapikey.
		value, _, err := t.store.GetConfig(ctx, models.KeyTornAPIKey)
		if err != nil {
			logger.Error().Err(err).Msg("Could not read Torn API key")
		}
		apiKey = value
	}
	if apiKey == "" {
		logger.Warn().Msg("No Torn API key set. Skipping OC check.")
		return OutcomeNoAPIKey
	}

	channelID, _, err := t.store.GetConfig(ctx, models.KeyUpdateChannel)
	if err != nil {
		logger.Error().Err(err).Msg("Could not read update channel")
	}
	if channelID == "" {
		logger.Info().Msg("Update channel not set.")
		return OutcomeNoChannel
	}

	fetched, err := t.fetcher.FetchMembers(ctx, apiKey)
	if err != nil {
		logger.Error().Err(err).Msg("Torn API fetch error")
		return OutcomeFetchFailed
	}

	count, err := t.store.CountMembers(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Could not count stored members")
		return OutcomeStoreFailed
	}
	var prev map[int64]models.Member
	if count > 0 {
		if prev, err = t.store.Members(ctx); err != nil {
			logger.Error().Err(err).Msg("Could not load stored members")
			return OutcomeStoreFailed
		}
	}

	alerts, err := t.store.Alerts(ctx)
	alertsLoaded := err == nil
	if err != nil {
		logger.Error().Err(err).Msg("Could not load alert records, skipping escalation this cycle")
	}

	plan := Reconcile(prev, alerts, fetched, now, t.opts.Policy)
	for _, m := range plan.Members {
		if err := t.store.UpsertMember(ctx, m); err != nil {
			logger.Error().Err(err).Int64("member", m.ID).Msg("Could not save member")
		}
	}

	if plan.Bootstrap {
		logger.Info().Int("members", len(plan.Members)).Msg("Imported users from Torn API.")
		return OutcomeBootstrapped
	}

	if alertsLoaded {
		for _, candidate := range plan.Alerts {
			t.escalate(ctx, channelID, candidate, now, logger)
		}
	}

	return t.publish(ctx, channelID, RenderSummary(plan.Summary, now), logger)
}

// publish edits the stored status message, or sends a new one and remembers its id.
func (t *Tracker) publish(ctx context.Context, channelID, content string, logger zerolog.Logger) Outcome {
	messageID, _, err := t.store.GetConfig(ctx, models.KeyUpdateMessage)
	if err != nil {
		logger.Error().Err(err).Msg("Could not read status message id")
	}

	if messageID != "" {
		err := t.messenger.Edit(ctx, channelID, messageID, content)
		if err == nil {
			return OutcomePublished
		}
		logger.Warn().Err(err).Str("message", messageID).Msg("Could not edit status message, sending a new one")
	}

	newID, err := t.messenger.Send(ctx, channelID, content)
	if err != nil {
		logger.Error().Err(err).Str("channel", channelID).Msg("Could not send status message")
		return OutcomePublishFailed
	}
	if err := t.store.SetConfig(ctx, models.KeyUpdateMessage, newID); err != nil {
		logger.Error().Err(err).Msg("Could not save status message id")
	}
	return OutcomePublished
}

// escalate posts a 24h alert, records the cooldown and opens a reaction window.
func (t *Tracker) escalate(ctx context.Context, channelID string, candidate AlertCandidate, now time.Time, logger zerolog.Logger) {
	logger = logger.With().Int64("member", candidate.MemberID).Str("name", candidate.Name).Logger()

	messageID, err := t.messenger.Send(ctx, channelID, AlertText(t.opts.AlertMention, candidate.Name))
	if err != nil {
		logger.Error().Err(err).Msg("Could not send OC alert")
		return
	}
	if err := t.store.RecordAlert(ctx, candidate.MemberID, now); err != nil {
		logger.Error().Err(err).Msg("Could not record OC alert")
	}
	for _, emoji := range []string{EmojiApprove, EmojiDismiss} {
		if err := t.messenger.React(ctx, channelID, messageID, emoji); err != nil {
			logger.Warn().Err(err).Str("emoji", emoji).Msg("Could not add reaction to OC alert")
		}
	}

	t.collectors.Open(messageID, t.opts.ReactionWindow, func(v Verdict) {
		t.closeAlert(channelID, messageID, candidate, v, logger)
	})
	logger.Info().Str("alert", messageID).Msg("Sent OC alert")
}

// closeAlert runs once per alert, outside any cycle.
func (t *Tracker) closeAlert(channelID, messageID string, candidate AlertCandidate, v Verdict, logger zerolog.Logger) {
	ctx := context.Background()
	if v == VerdictApprove {
		if err := t.store.IncrementInfractions(ctx, candidate.MemberID, 1); err != nil {
			logger.Error().Err(err).Msg("Could not increment infraction tally")
		} else {
			logger.Info().Msg("Infraction tally incremented")
		}
	}
	if err := t.messenger.Delete(ctx, channelID, messageID); err != nil {
		logger.Debug().Err(err).Msg("Could not delete OC alert")
	}
}

// HandleReaction routes a reaction on messageID to its alert window. Reactions
// from bots must be filtered by the caller.
func (t *Tracker) HandleReaction(messageID, emoji string) bool {
	return t.collectors.Collect(messageID, emoji)
}

// OpenAlerts returns the number of alerts still awaiting a reaction.
func (t *Tracker) OpenAlerts() int {
	return t.collectors.Len()
}
