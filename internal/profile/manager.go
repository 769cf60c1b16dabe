package profile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ProfileStore defines the storage operations the Manager needs.
// Implemented by storage.Store.
type ProfileStore interface {
	SetProfileKey(key, value string) error
	GetProfileKey(key string) (string, error)
	GetAllProfileKeys() (map[string]string, error)
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Manager provides cached, structured access to the candidate profile stored
// in SQLite. Profile edits are rare (CLI/admin only), so a short TTL cache
// keeps persona compilation off the database on every turn.
type Manager struct {
	store ProfileStore
	clock Clock
	ttl   time.Duration

	mu       sync.RWMutex
	cached   *Profile
	cachedAt time.Time
}

// NewManager creates a Manager with a 60-second cache TTL.
func NewManager(store ProfileStore) *Manager {
	return &Manager{
		store: store,
		clock: realClock{},
		ttl:   60 * time.Second,
	}
}

// NewManagerWithClock creates a Manager with a custom clock (for testing).
func NewManagerWithClock(store ProfileStore, clock Clock, ttl time.Duration) *Manager {
	return &Manager{
		store: store,
		clock: clock,
		ttl:   ttl,
	}
}

// Get reads all profile keys from storage (or cache) and assembles a
// structured Profile. Returns a zero-value Profile on an empty store.
func (m *Manager) Get() (Profile, error) {
	// Fast path: read lock for cache hit.
	m.mu.RLock()
	if m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl)) {
		p := *m.cached
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	// Slow path: write lock for cache miss.
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock.
	if m.cached != nil && m.clock.Now().Before(m.cachedAt.Add(m.ttl)) {
		return *m.cached, nil
	}

	keys, err := m.store.GetAllProfileKeys()
	if err != nil {
		return Profile{}, fmt.Errorf("loading profile keys: %w", err)
	}

	p := buildProfile(keys)
	m.cached = &p
	m.cachedAt = m.clock.Now()
	return p, nil
}

// SetField persists a profile key and invalidates the cache. Non-string
// values are stored as JSON.
func (m *Manager) SetField(key string, value any) error {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshalling value for key %q: %w", key, err)
		}
		str = string(b)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.SetProfileKey(key, str); err != nil {
		return fmt.Errorf("setting profile key %q: %w", key, err)
	}

	m.cached = nil
	return nil
}

// Import replaces the stored profile with p, writing every field under its
// canonical key.
func (m *Manager) Import(p Profile) error {
	fields := map[string]any{
		"name":       p.Name,
		"title":      p.Title,
		"summary":    p.Summary,
		"avatar":     p.Avatar,
		"linkedin":   p.LinkedIn,
		"email":      p.Email,
		"phone":      p.Phone,
		"skills":     p.Skills,
		"languages":  p.Languages,
		"experience": p.Experience,
		"education":  p.Education,
		"awards":     p.Awards,
		"projects":   p.Projects,
		"cv.extra":   p.ExtraFacts,
	}
	for key, value := range fields {
		if err := m.SetField(key, value); err != nil {
			return err
		}
	}
	return nil
}

// buildProfile assembles a Profile from flat key-value pairs. Keys use
// dot-notation where nested; list/map values are stored as JSON.
func buildProfile(keys map[string]string) Profile {
	var p Profile

	if v, ok := keys["name"]; ok {
		p.Name = v
	}
	if v, ok := keys["title"]; ok {
		p.Title = v
	}
	if v, ok := keys["summary"]; ok {
		p.Summary = v
	}
	if v, ok := keys["avatar"]; ok {
		p.Avatar = v
	}
	if v, ok := keys["linkedin"]; ok {
		p.LinkedIn = v
	}
	if v, ok := keys["email"]; ok {
		p.Email = v
	}
	if v, ok := keys["phone"]; ok {
		p.Phone = v
	}
	if v, ok := keys["cv.extra"]; ok {
		p.ExtraFacts = v
	}

	unmarshalProfileKey(keys, "skills", &p.Skills)
	unmarshalProfileKey(keys, "languages", &p.Languages)
	unmarshalProfileKey(keys, "experience", &p.Experience)
	unmarshalProfileKey(keys, "education", &p.Education)
	unmarshalProfileKey(keys, "awards", &p.Awards)
	unmarshalProfileKey(keys, "projects", &p.Projects)

	return p
}

// unmarshalProfileKey unmarshals a JSON value from keys into target, logging
// a warning if the value is present but malformed.
func unmarshalProfileKey(keys map[string]string, key string, target any) {
	v, ok := keys[key]
	if !ok {
		return
	}
	if err := json.Unmarshal([]byte(v), target); err != nil {
		slog.Warn("malformed profile key, skipping", "key", key, "error", err)
	}
}
