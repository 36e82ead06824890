package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"faction-oc-bot/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type configRow struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

func (configRow) TableName() string { return "config" }

type memberRow struct {
	ID                  int64  `gorm:"primaryKey;autoIncrement:false"`
	Name                string `gorm:"not null"`
	LastActionTimestamp int64  `gorm:"not null"`
	LastActionStatus    string `gorm:"not null"`
	IsInOC              bool   `gorm:"column:is_in_oc;not null"`
	NotInOCSince        *int64 `gorm:"column:not_in_oc_since"`
	InfractionTally     int    `gorm:"not null;default:0"`
}

func (memberRow) TableName() string { return "members" }

type alertRow struct {
	MemberID  int64 `gorm:"primaryKey;autoIncrement:false"`
	LastAlert int64 `gorm:"not null"`
}

func (alertRow) TableName() string { return "alerts" }

// GormStore is the Postgres Store, using the same three tables as SQLiteStore.
type GormStore struct {
	db *gorm.DB
}

// OpenPostgres connects with gorm to the Postgres database at dsn and migrates the schema.
func OpenPostgres(dsn string) (*GormStore, error) {
	if dsn == "" {
		return nil, errors.New("database.dsn is required for the postgres driver")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return newGormStore(db)
}

func newGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&configRow{}, &memberRow{}, &alertRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}
	log.Info().Str("dialect", db.Dialector.Name()).Msg("Connected to DB")
	return &GormStore{db: db}, nil
}

func (s *GormStore) GetConfig(ctx context.Context, key string) (string, bool, error) {
	var row configRow
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read config %s: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *GormStore) SetConfig(ctx context.Context, key, value string) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&configRow{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("failed to save config %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) CountMembers(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&memberRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return int(n), nil
}

func (s *GormStore) Members(ctx context.Context) (map[int64]models.Member, error) {
	var rows []memberRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	members := make(map[int64]models.Member, len(rows))
	for _, r := range rows {
		m := models.Member{
			ID:                  r.ID,
			Name:                r.Name,
			LastActionTimestamp: r.LastActionTimestamp,
			LastActionStatus:    r.LastActionStatus,
			IsInOC:              r.IsInOC,
			InfractionTally:     r.InfractionTally,
		}
		if r.NotInOCSince != nil {
			t := time.Unix(*r.NotInOCSince, 0)
			m.NotInOCSince = &t
		}
		members[m.ID] = m
	}
	return members, nil
}

func (s *GormStore) UpsertMember(ctx context.Context, m models.Member) error {
	row := memberRow{
		ID:                  m.ID,
		Name:                m.Name,
		LastActionTimestamp: m.LastActionTimestamp,
		LastActionStatus:    m.LastActionStatus,
		IsInOC:              m.IsInOC,
	}
	if m.NotInOCSince != nil {
		since := m.NotInOCSince.Unix()
		row.NotInOCSince = &since
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "last_action_timestamp", "last_action_status", "is_in_oc", "not_in_oc_since",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert member %d: %w", m.ID, err)
	}
	return nil
}

func (s *GormStore) IncrementInfractions(ctx context.Context, memberID int64, by int) error {
	err := s.db.WithContext(ctx).Model(&memberRow{}).Where("id = ?", memberID).
		UpdateColumn("infraction_tally", gorm.Expr("infraction_tally + ?", by)).Error
	if err != nil {
		return fmt.Errorf("failed to increment infractions for member %d: %w", memberID, err)
	}
	return nil
}

func (s *GormStore) Alerts(ctx context.Context) (map[int64]models.AlertRecord, error) {
	var rows []alertRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	alerts := make(map[int64]models.AlertRecord, len(rows))
	for _, r := range rows {
		alerts[r.MemberID] = models.AlertRecord{MemberID: r.MemberID, LastAlert: time.Unix(r.LastAlert, 0)}
	}
	return alerts, nil
}

func (s *GormStore) RecordAlert(ctx context.Context, memberID int64, at time.Time) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_alert"}),
	}).Create(&alertRow{MemberID: memberID, LastAlert: at.Unix()}).Error
	if err != nil {
		return fmt.Errorf("failed to record alert for member %d: %w", memberID, err)
	}
	return nil
}

func (s *GormStore) PruneAlerts(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("last_alert < ?", cutoff.Unix()).Delete(&alertRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune alerts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
