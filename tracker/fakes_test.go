package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"faction-oc-bot/models"
)

type memStore struct {
	mu      sync.Mutex
	config  map[string]string
	members map[int64]models.Member
	alerts  map[int64]models.AlertRecord
	failSet bool
}

func newMemStore() *memStore {
	return &memStore{
		config:  map[string]string{},
		members: map[int64]models.Member{},
		alerts:  map[int64]models.AlertRecord{},
	}
}

func (s *memStore) GetConfig(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.config[key]
	return v, ok, nil
}

func (s *memStore) SetConfig(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet {
		return errors.New("store is read-only")
	}
	s.config[key] = value
	return nil
}

func (s *memStore) CountMembers(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members), nil
}

func (s *memStore) Members(context.Context) (map[int64]models.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]models.Member, len(s.members))
	for k, v := range s.members {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) UpsertMember(_ context.Context, m models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.InfractionTally = s.members[m.ID].InfractionTally
	s.members[m.ID] = m
	return nil
}

func (s *memStore) IncrementInfractions(_ context.Context, id int64, by int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.members[id]; ok {
		m.InfractionTally += by
		s.members[id] = m
	}
	return nil
}

func (s *memStore) Alerts(context.Context) (map[int64]models.AlertRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]models.AlertRecord, len(s.alerts))
	for k, v := range s.alerts {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) RecordAlert(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[id] = models.AlertRecord{MemberID: id, LastAlert: at}
	return nil
}

func (s *memStore) PruneAlerts(_ context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (s *memStore) Close() error { return nil }

type fakeFetcher struct {
	members []models.FactionMember
	err     error
	keys    []string
}

func (f *fakeFetcher) FetchMembers(_ context.Context, apiKey string) ([]models.FactionMember, error) {
	f.keys = append(f.keys, apiKey)
	if f.err != nil {
		return nil, f.err
	}
	return f.members, nil
}

type op struct {
	kind      string
	channelID string
	messageID string
	content   string
}

type fakeMessenger struct {
	mu       sync.Mutex
	ops      []op
	next     int
	existing map[string]bool
	failSend bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{existing: map[string]bool{}}
}

func (f *fakeMessenger) Send(_ context.Context, channelID, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return "", errors.New("missing access")
	}
	f.next++
	id := fmt.Sprintf("msg-%d", f.next)
	f.existing[id] = true
	f.ops = append(f.ops, op{"send", channelID, id, content})
	return id, nil
}

func (f *fakeMessenger) Edit(_ context.Context, channelID, messageID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.existing[messageID] {
		return errors.New("unknown message")
	}
	f.ops = append(f.ops, op{"edit", channelID, messageID, content})
	return nil
}

func (f *fakeMessenger) Delete(_ context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.existing, messageID)
	f.ops = append(f.ops, op{"delete", channelID, messageID, ""})
	return nil
}

func (f *fakeMessenger) React(_ context.Context, channelID, messageID, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op{"react", channelID, messageID, emoji})
	return nil
}

func (f *fakeMessenger) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, o := range f.ops {
		if o.kind == kind {
			n++
		}
	}
	return n
}

func (f *fakeMessenger) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = nil
}
