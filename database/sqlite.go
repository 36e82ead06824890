package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"faction-oc-bot/models"

	_ "github.com/mattn/go-sqlite3" // Import the SQLite3 driver
	"github.com/rs/zerolog/log"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS members (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    last_action_timestamp INTEGER NOT NULL,
    last_action_status TEXT NOT NULL,
    is_in_oc BOOLEAN NOT NULL,
    not_in_oc_since INTEGER,
    infraction_tally INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS alerts (
    member_id INTEGER PRIMARY KEY,
    last_alert INTEGER NOT NULL
);`

// SQLiteStore is the default Store, raw SQL over mattn/go-sqlite3.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite database at dbPath and ensures the schema.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	// Open the SQLite database. It will be created if it doesn't exist.
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Reaction callbacks write concurrently with the cycle; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("Successfully connected to the database")
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) GetConfig(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read config %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return fmt.Errorf("failed to save config %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) CountMembers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Members(ctx context.Context) (map[int64]models.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
    SELECT id, name, last_action_timestamp, last_action_status, is_in_oc, not_in_oc_since, infraction_tally
    FROM members`)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	members := make(map[int64]models.Member)
	for rows.Next() {
		var m models.Member
		var since sql.NullInt64
		if err := rows.Scan(&m.ID, &m.Name, &m.LastActionTimestamp, &m.LastActionStatus, &m.IsInOC, &since, &m.InfractionTally); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		if since.Valid {
			t := time.Unix(since.Int64, 0)
			m.NotInOCSince = &t
		}
		members[m.ID] = m
	}
	return members, rows.Err()
}

func (s *SQLiteStore) UpsertMember(ctx context.Context, m models.Member) error {
	query := `
    INSERT INTO members (id, name, last_action_timestamp, last_action_status, is_in_oc, not_in_oc_since, infraction_tally)
    VALUES (?, ?, ?, ?, ?, ?, 0)
    ON CONFLICT(id) DO UPDATE SET
        name = excluded.name,
        last_action_timestamp = excluded.last_action_timestamp,
        last_action_status = excluded.last_action_status,
        is_in_oc = excluded.is_in_oc,
        not_in_oc_since = excluded.not_in_oc_since;`

	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for upserting member: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, m.ID, m.Name, m.LastActionTimestamp, m.LastActionStatus, m.IsInOC, unixOrNil(m.NotInOCSince))
	if err != nil {
		return fmt.Errorf("failed to execute statement for upserting member %d: %w", m.ID, err)
	}
	return nil
}

func (s *SQLiteStore) IncrementInfractions(ctx context.Context, memberID int64, by int) error {
	_, err := s.db.ExecContext(ctx, `UPDATE members SET infraction_tally = infraction_tally + ? WHERE id = ?`, by, memberID)
	if err != nil {
		return fmt.Errorf("failed to increment infractions for member %d: %w", memberID, err)
	}
	return nil
}

func (s *SQLiteStore) Alerts(ctx context.Context) (map[int64]models.AlertRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT member_id, last_alert FROM alerts`)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make(map[int64]models.AlertRecord)
	for rows.Next() {
		var id, last int64
		if err := rows.Scan(&id, &last); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts[id] = models.AlertRecord{MemberID: id, LastAlert: time.Unix(last, 0)}
	}
	return alerts, rows.Err()
}

func (s *SQLiteStore) RecordAlert(ctx context.Context, memberID int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO alerts (member_id, last_alert) VALUES (?, ?)`, memberID, at.Unix())
	if err != nil {
		return fmt.Errorf("failed to record alert for member %d: %w", memberID, err)
	}
	return nil
}

func (s *SQLiteStore) PruneAlerts(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM alerts WHERE last_alert < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune alerts: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
