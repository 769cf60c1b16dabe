package profile

import (
	"errors"
	"testing"
	"time"
)

// fakeStore is an in-memory ProfileStore that counts reads.
type fakeStore struct {
	keys  map[string]string
	reads int
}

func newFakeStore() *fakeStore {
	return &fakeStore{keys: make(map[string]string)}
}

func (f *fakeStore) SetProfileKey(key, value string) error {
	f.keys[key] = value
	return nil
}

func (f *fakeStore) GetProfileKey(key string) (string, error) {
	v, ok := f.keys[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (f *fakeStore) GetAllProfileKeys() (map[string]string, error) {
	f.reads++
	out := make(map[string]string, len(f.keys))
	for k, v := range f.keys {
		out[k] = v
	}
	return out, nil
}

// fakeClock is a controllable Clock.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func TestGetAssemblesProfile(t *testing.T) {
	store := newFakeStore()
	store.keys["name"] = "Jan Bruckner"
	store.keys["title"] = "Full-Stack Developer"
	store.keys["skills"] = `{"backend":["Go","PostgreSQL"]}`
	store.keys["projects"] = `[{"name":"baito","url":"https://baito.de","description":"Job platform"}]`

	m := NewManager(store)
	p, err := m.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Name != "Jan Bruckner" {
		t.Errorf("name = %q", p.Name)
	}
	if len(p.Skills["backend"]) != 2 {
		t.Errorf("skills not decoded: %v", p.Skills)
	}
	if len(p.Projects) != 1 || p.Projects[0].Name != "baito" {
		t.Errorf("projects not decoded: %v", p.Projects)
	}
}

func TestGetMalformedKeySkipped(t *testing.T) {
	store := newFakeStore()
	store.keys["name"] = "Jan"
	store.keys["projects"] = `{not json`

	m := NewManager(store)
	p, err := m.Get()
	if err != nil {
		t.Fatalf("get should not fail on a malformed key: %v", err)
	}
	if p.Name != "Jan" {
		t.Errorf("valid keys must survive, name = %q", p.Name)
	}
	if p.Projects != nil {
		t.Errorf("malformed projects should stay nil, got %v", p.Projects)
	}
}

func TestCacheAndInvalidation(t *testing.T) {
	store := newFakeStore()
	store.keys["name"] = "Jan"
	clock := &fakeClock{now: time.Unix(1000, 0)}
	m := NewManagerWithClock(store, clock, time.Minute)

	if _, err := m.Get(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(); err != nil {
		t.Fatal(err)
	}
	if store.reads != 1 {
		t.Errorf("expected 1 store read with warm cache, got %d", store.reads)
	}

	// TTL expiry forces a reload.
	clock.now = clock.now.Add(2 * time.Minute)
	if _, err := m.Get(); err != nil {
		t.Fatal(err)
	}
	if store.reads != 2 {
		t.Errorf("expected reload after TTL, got %d reads", store.reads)
	}

	// SetField invalidates.
	if err := m.SetField("name", "Jan B."); err != nil {
		t.Fatal(err)
	}
	p, err := m.Get()
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Jan B." {
		t.Errorf("expected updated name after invalidation, got %q", p.Name)
	}
}

func TestImportRoundTrip(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)

	in := Profile{
		Name:      "Jan Bruckner",
		Email:     "jan@example.com",
		Skills:    map[string][]string{"devops": {"Docker"}},
		Languages: map[string]string{"german": "Muttersprache", "english": "fließend"},
		Experience: []Experience{
			{Title: "Developer", Company: "ACME", Period: "2020-2024", Highlights: []string{"shipped things"}},
		},
	}
	if err := m.Import(in); err != nil {
		t.Fatalf("import: %v", err)
	}

	out, err := m.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Name != in.Name || out.Email != in.Email {
		t.Errorf("scalar fields lost: %+v", out)
	}
	if out.Languages["english"] != "fließend" {
		t.Errorf("languages lost: %v", out.Languages)
	}
	if len(out.Experience) != 1 || out.Experience[0].Company != "ACME" {
		t.Errorf("experience lost: %v", out.Experience)
	}
}
