package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"faction-oc-bot/models"

	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketConfig  = []byte("config")
	bucketMembers = []byte("members")
	bucketAlerts  = []byte("alerts")
)

// BoltStore keeps each table in its own bbolt bucket with JSON-encoded values.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens the bbolt file at dbPath and creates the buckets.
func OpenBolt(dbPath string) (*BoltStore, error) {
	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketConfig, bucketMembers, bucketAlerts} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}
	log.Info().Str("path", dbPath).Msg("Successfully opened bolt database")
	return &BoltStore{db: db}, nil
}

func idKey(id int64) []byte {
	return []byte(strconv.FormatInt(id, 10))
}

func (s *BoltStore) GetConfig(_ context.Context, key string) (value string, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketConfig).Get([]byte(key))
		if v != nil {
			value, ok = string(v), true
		}
		return nil
	})
	return value, ok, err
}

func (s *BoltStore) SetConfig(_ context.Context, key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketConfig).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to save config %s: %w", key, err)
	}
	return nil
}

func (s *BoltStore) CountMembers(_ context.Context) (n int, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketMembers).Stats().KeyN
		return nil
	})
	return n, err
}

func (s *BoltStore) Members(_ context.Context) (map[int64]models.Member, error) {
	members := make(map[int64]models.Member)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMembers).ForEach(func(_, v []byte) error {
			var m models.Member
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			members[m.ID] = m
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read members: %w", err)
	}
	return members, nil
}

func (s *BoltStore) UpsertMember(_ context.Context, m models.Member) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMembers)
		m.InfractionTally = 0
		if v := b.Get(idKey(m.ID)); v != nil {
			var old models.Member
			if err := json.Unmarshal(v, &old); err != nil {
				return err
			}
			m.InfractionTally = old.InfractionTally
		}
		bts, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return b.Put(idKey(m.ID), bts)
	})
	if err != nil {
		return fmt.Errorf("failed to upsert member %d: %w", m.ID, err)
	}
	return nil
}

func (s *BoltStore) IncrementInfractions(_ context.Context, memberID int64, by int) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketMembers)
		v := b.Get(idKey(memberID))
		if v == nil {
			return nil
		}
		var m models.Member
		if err := json.Unmarshal(v, &m); err != nil {
			return err
		}
		m.InfractionTally += by
		bts, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return b.Put(idKey(memberID), bts)
	})
	if err != nil {
		return fmt.Errorf("failed to increment infractions for member %d: %w", memberID, err)
	}
	return nil
}

func (s *BoltStore) Alerts(_ context.Context) (map[int64]models.AlertRecord, error) {
	alerts := make(map[int64]models.AlertRecord)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAlerts).ForEach(func(_, v []byte) error {
			var a models.AlertRecord
			if err := json.Unmarshal(v, &a); err != nil {
				return err
			}
			alerts[a.MemberID] = a
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read alerts: %w", err)
	}
	return alerts, nil
}

func (s *BoltStore) RecordAlert(_ context.Context, memberID int64, at time.Time) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bts, err := json.Marshal(models.AlertRecord{MemberID: memberID, LastAlert: at})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketAlerts).Put(idKey(memberID), bts)
	})
	if err != nil {
		return fmt.Errorf("failed to record alert for member %d: %w", memberID, err)
	}
	return nil
}

func (s *BoltStore) PruneAlerts(_ context.Context, cutoff time.Time) (int64, error) {
	var pruned int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAlerts)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var a models.AlertRecord
			if err := json.Unmarshal(v, &a); err != nil {
				return err
			}
			if a.LastAlert.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
			pruned++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune alerts: %w", err)
	}
	return pruned, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
