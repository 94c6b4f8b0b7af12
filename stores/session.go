package stores

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/agribridge/agribridge/models"
	"github.com/agribridge/agribridge/storage"
)

// SessionKey is the logical storage key for the session record in both tiers.
const SessionKey = "agri_user"

// SessionStore holds the single active SessionRecord across two tiers: an
// ephemeral in-memory tier that dies with the process and a durable tier on
// the configured backend that survives restarts. When both tiers hold a
// record the ephemeral one wins; the stale durable copy is tolerated and
// ignored until the next Persist or Destroy.
type SessionStore struct {
	ephemeral storage.KV
	durable   storage.KV

	mu       sync.Mutex
	subs     []func(*models.SessionRecord)
	lastSeen []byte // last durable blob observed, for external change detection
}

// NewSessionStore creates a session store; durable is the shared backend,
// the ephemeral tier is always process-local memory.
func NewSessionStore(durable storage.KV) *SessionStore {
	return &SessionStore{ephemeral: storage.NewMemory(), durable: durable}
}

// Persist stores rec in the durable tier when durable is true, else in the
// ephemeral tier, and notifies subscribers. A durable write also clears the
// ephemeral tier so the new login is not shadowed by a stale session.
func (s *SessionStore) Persist(rec models.SessionRecord, durable bool) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if durable {
		if err := s.durable.Set(SessionKey, b); err != nil {
			return err
		}
		// Our own writes are not "external" changes.
		s.mu.Lock()
		s.lastSeen = b
		s.mu.Unlock()
		// A durable login supersedes whatever ephemeral session existed.
		_ = s.ephemeral.Remove(SessionKey)
	} else {
		if err := s.ephemeral.Set(SessionKey, b); err != nil {
			return err
		}
	}
	s.notify(&rec)
	return nil
}

// Current returns the active session, preferring the ephemeral tier over the
// durable one. A corrupt blob in either tier reads as absent.
func (s *SessionStore) Current() (*models.SessionRecord, bool) {
	if rec := decodeSession(s.ephemeral); rec != nil {
		return rec, true
	}
	if rec := decodeSession(s.durable); rec != nil {
		return rec, true
	}
	return nil, false
}

// Destroy clears both tiers and notifies subscribers with a nil record.
func (s *SessionStore) Destroy() error {
	if err := s.ephemeral.Remove(SessionKey); err != nil {
		return err
	}
	if err := s.durable.Remove(SessionKey); err != nil {
		return err
	}
	s.mu.Lock()
	s.lastSeen = nil
	s.mu.Unlock()
	s.notify(nil)
	return nil
}

// Subscribe registers fn to run after every session change, including changes
// to the durable tier made by another process and picked up by the watcher.
// The record is nil when the session was destroyed.
func (s *SessionStore) Subscribe(fn func(*models.SessionRecord)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// StartWatch polls the durable tier until ctx is done and notifies
// subscribers when its content changed outside this process. This is the
// fallback-poll half of the notify-and-reread pattern; in-process changes
// notify synchronously from Persist/Destroy.
func (s *SessionStore) StartWatch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.pollDurable()
			}
		}
	}()
}

func (s *SessionStore) pollDurable() {
	b, err := s.durable.Get(SessionKey)
	if err != nil {
		b = nil
	}
	s.mu.Lock()
	changed := !bytes.Equal(b, s.lastSeen)
	s.lastSeen = b
	s.mu.Unlock()
	if !changed {
		return
	}
	rec, _ := s.Current()
	s.notify(rec)
}

func (s *SessionStore) notify(rec *models.SessionRecord) {
	s.mu.Lock()
	subs := make([]func(*models.SessionRecord), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(rec)
	}
}

func decodeSession(kv storage.KV) *models.SessionRecord {
	b, err := kv.Get(SessionKey)
	if err != nil {
		return nil
	}
	var rec models.SessionRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil
	}
	return &rec
}
