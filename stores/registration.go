package stores

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/agribridge/agribridge/models"
	"github.com/agribridge/agribridge/storage"
)

// RegistrationsKey is the logical storage key for the registration list.
const RegistrationsKey = "agri_bridge_registrations_v1"

// RegistrationStore appends RegistrationRecords to a single JSON array. The
// array is read, extended and rewritten as a unit on every append; the mutex
// serializes those cycles so concurrent appends cannot lose records.
type RegistrationStore struct {
	kv storage.KV
	mu sync.Mutex

	lastID int64
}

// NewRegistrationStore creates a store over the given backend.
func NewRegistrationStore(kv storage.KV) *RegistrationStore {
	return &RegistrationStore{kv: kv}
}

// EnsureInitialized writes an empty array when the backing blob is absent so
// the collection exists from process start.
func (s *RegistrationStore) EnsureInitialized() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.kv.Get(RegistrationsKey); err == nil {
		return nil
	}
	return s.kv.Set(RegistrationsKey, []byte("[]"))
}

// Append validates the input, assigns an id and timestamp, stores the record
// and returns it. Name and email are required; role defaults to farmer and
// region to empty.
func (s *RegistrationStore) Append(in models.RegistrationInput) (models.RegistrationRecord, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" {
		return models.RegistrationRecord{}, fmt.Errorf("%w: name and email required", ErrValidation)
	}

	role := in.Role
	if !models.ValidRole(role) {
		role = models.RoleFarmer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	regs := s.readLocked()

	now := time.Now()
	id := now.UnixMilli()
	// Keep ids strictly increasing even when two appends land in the same
	// millisecond.
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	rec := models.RegistrationRecord{
		ID:        id,
		Role:      role,
		Name:      name,
		Email:     email,
		Region:    in.Region,
		CreatedAt: now.UTC().Format(time.RFC3339),
	}

	regs = append(regs, rec)
	if err := s.writeLocked(regs); err != nil {
		return models.RegistrationRecord{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return rec, nil
}

// ListAll returns every registration in storage order.
func (s *RegistrationStore) ListAll() []models.RegistrationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// readLocked loads the array, treating a missing or corrupt blob as empty so
// the process keeps serving.
func (s *RegistrationStore) readLocked() []models.RegistrationRecord {
	b, err := s.kv.Get(RegistrationsKey)
	if err != nil {
		return []models.RegistrationRecord{}
	}
	var regs []models.RegistrationRecord
	if err := json.Unmarshal(b, &regs); err != nil {
		return []models.RegistrationRecord{}
	}
	return regs
}

func (s *RegistrationStore) writeLocked(regs []models.RegistrationRecord) error {
	b, err := json.Marshal(regs)
	if err != nil {
		return err
	}
	return s.kv.Set(RegistrationsKey, b)
}
