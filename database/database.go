package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"faction-oc-bot/models"
)

// ErrUnknownDriver is returned by Open for an unsupported database.driver.
var ErrUnknownDriver = errors.New("unknown database driver")

// Store is the persistent state shared by the update cycle and the command handlers.
// Config entries and alert records are upserted, never deleted by the cycle.
type Store interface {
	// GetConfig returns the value for key and whether it was present.
	GetConfig(ctx context.Context, key string) (string, bool, error)
	SetConfig(ctx context.Context, key, value string) error

	CountMembers(ctx context.Context) (int, error)
	Members(ctx context.Context) (map[int64]models.Member, error)
	// UpsertMember writes every field except the infraction tally, which is
	// initialised to zero on insert and otherwise left untouched.
	UpsertMember(ctx context.Context, m models.Member) error
	IncrementInfractions(ctx context.Context, memberID int64, by int) error

	Alerts(ctx context.Context) (map[int64]models.AlertRecord, error)
	RecordAlert(ctx context.Context, memberID int64, at time.Time) error
	// PruneAlerts deletes alert records last sent before cutoff.
	PruneAlerts(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}

// Open connects to the store selected by cfg.Driver.
func Open(cfg models.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite", "sqlite3":
		return OpenSQLite(cfg.Path)
	case "postgres":
		return OpenPostgres(cfg.DSN)
	case "bolt", "bbolt":
		return OpenBolt(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// ensureDir creates the parent directory of a database file.
func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}
