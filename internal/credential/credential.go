// Package credential manages the single API key the fetchers spend:
// its value, its two validity phases and its persistence.
package credential

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"findoss/internal/storage"
)

// Credential is the API key plus its validity state. AssumedValid is
// the optimistic hint flipped whenever a non-empty key is set; Valid
// is authoritative and changes only after a round-trip to the API.
type Credential struct {
	Value           string     `json:"value"`
	AssumedValid    bool       `json:"assumedValid"`
	Valid           bool       `json:"valid"`
	LastValidatedAt *time.Time `json:"lastValidatedAt,omitempty"`
}

// Usable reports whether fetchers may spend the key on a request.
func (c Credential) Usable() bool {
	return c.Valid || c.AssumedValid
}

// Prober issues the minimal authenticated request used to check a key
// against the live API.
type Prober interface {
	Probe(ctx context.Context, key string) error
}

// Store owns the credential and persists it under storage.KeyAPIKey
// on every change.
type Store struct {
	mu     sync.Mutex
	store  storage.Store
	cur    Credential
	loaded bool
}

func NewStore(st storage.Store) *Store {
	return &Store{store: st}
}

// Get returns the current credential, reading the persisted entry on
// first use. A read or parse failure falls back to the empty default
// silently; it is logged, never surfaced.
func (s *Store) Get() Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() Credential {
	if s.loaded {
		return s.cur
	}
	s.loaded = true
	raw, ok, err := s.store.Get(storage.KeyAPIKey)
	if err != nil {
		slog.Error("credential: read failed, using empty default", "err", err)
		return s.cur
	}
	if !ok {
		return s.cur
	}
	if err := json.Unmarshal(raw, &s.cur); err != nil {
		slog.Warn("credential: stored entry is corrupt, using empty default", "err", err)
		s.cur = Credential{}
	}
	return s.cur
}

// Set stores the key verbatim (empty string permitted) and persists
// immediately. A non-empty key is assumed usable until Validate says
// otherwise; the authoritative Valid flag resets to false.
func (s *Store) Set(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.cur = Credential{Value: value, AssumedValid: value != ""}
	s.persistLocked()
}

// Clear resets to the empty credential and removes the persisted
// entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.cur = Credential{}
	if err := s.store.Delete(storage.KeyAPIKey); err != nil {
		slog.Error("credential: delete failed", "err", err)
	}
}

// Validate probes the API with the stored key and updates the
// authoritative Valid flag. It resolves to a plain bool: transport
// failures and non-2xx responses both mean false, never an error.
// With no key set it returns false without touching the network.
// Idempotent; repeated calls simply re-probe.
func (s *Store) Validate(ctx context.Context, p Prober) bool {
	s.mu.Lock()
	cur := s.loadLocked()
	s.mu.Unlock()

	if cur.Value == "" {
		return false
	}

	err := p.Probe(ctx, cur.Value)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		slog.Warn("credential: validation failed", "err", err)
		s.cur.Valid = false
		s.persistLocked()
		return false
	}
	s.cur.Valid = true
	s.cur.LastValidatedAt = &now
	s.persistLocked()
	return true
}

func (s *Store) persistLocked() {
	raw, err := json.Marshal(s.cur)
	if err == nil {
		err = s.store.Set(storage.KeyAPIKey, raw)
	}
	if err != nil {
		slog.Error("credential: persist failed", "err", err)
	}
}
