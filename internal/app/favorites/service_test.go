package favorites

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"starwarsapi/internal/models"
	"starwarsapi/internal/store"
)

// memStore mimics the favorites table. Its add path deliberately yields
// between the lookup and the insert so that unsynchronised callers would race.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	rows   []models.Favorite

	err error
}

func (m *memStore) AddFavorite(ctx context.Context, userID int64, target models.Target) (models.Favorite, bool, error) {
	if m.err != nil {
		return models.Favorite{}, false, m.err
	}
	m.mu.Lock()
	existing, ok := m.find(userID, target)
	m.mu.Unlock()
	if ok {
		return existing, false, nil
	}

	runtime.Gosched()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	fav := models.Favorite{ID: m.nextID, UserID: userID, Target: target, CreatedAt: time.Unix(m.nextID, 0)}
	m.rows = append(m.rows, fav)
	return fav, true, nil
}

func (m *memStore) RemoveFavorite(ctx context.Context, userID int64, target models.Target) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, fav := range m.rows {
		if fav.UserID == userID && fav.Target == target {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) FavoritesByUser(ctx context.Context, userID int64) ([]models.Favorite, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Favorite{}
	for _, fav := range m.rows {
		if fav.UserID == userID {
			out = append(out, fav)
		}
	}
	return out, nil
}

func (m *memStore) IsFavorite(ctx context.Context, userID int64, target models.Target) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.find(userID, target)
	return ok, nil
}

func (m *memStore) find(userID int64, target models.Target) (models.Favorite, bool) {
	for _, fav := range m.rows {
		if fav.UserID == userID && fav.Target == target {
			return fav, true
		}
	}
	return models.Favorite{}, false
}

func (m *memStore) count(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, fav := range m.rows {
		if fav.UserID == userID {
			n++
		}
	}
	return n
}

type memCatalog struct {
	characters map[int64]string
	planets    map[int64]string

	err error
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		characters: map[int64]string{1: "Luke Skywalker", 4: "Darth Vader"},
		planets:    map[int64]string{1: "Tatooine", 42: "Tatooine", 2: "Alderaan"},
	}
}

func (c *memCatalog) GetCharacter(ctx context.Context, id int64) (models.Character, error) {
	if c.err != nil {
		return models.Character{}, c.err
	}
	name, ok := c.characters[id]
	if !ok {
		return models.Character{}, store.ErrCharacterNotFound
	}
	return models.Character{ID: id, Name: name}, nil
}

func (c *memCatalog) GetPlanet(ctx context.Context, id int64) (models.Planet, error) {
	if c.err != nil {
		return models.Planet{}, c.err
	}
	name, ok := c.planets[id]
	if !ok {
		return models.Planet{}, store.ErrPlanetNotFound
	}
	return models.Planet{ID: id, Name: name}, nil
}

func (c *memCatalog) CharacterNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	return c.names(c.characters, ids)
}

func (c *memCatalog) PlanetNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	return c.names(c.planets, ids)
}

func (c *memCatalog) names(src map[int64]string, ids []int64) (map[int64]string, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := make(map[int64]string, len(ids))
	for _, id := range ids {
		if name, ok := src[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func names(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestAddPlanetFavoriteThenList(t *testing.T) {
	st := &memStore{}
	svc := New(st, newMemCatalog())
	ctx := context.Background()

	res, err := svc.AddPlanetFavorite(ctx, 7, 42)
	if err != nil {
		t.Fatalf("AddPlanetFavorite: %v", err)
	}
	if res.Outcome != Created {
		t.Fatalf("expected Created, got %s", res.Outcome)
	}
	if res.Favorite.UserID != 7 || res.Favorite.Target != models.PlanetTarget(42) {
		t.Fatalf("unexpected favorite %+v", res.Favorite)
	}

	entries, err := svc.ListForUser(ctx, 7)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if got := names(entries); len(got) != 1 || got[0] != "Tatooine" {
		t.Fatalf("unexpected names %v", got)
	}
}

func TestAddIsIdempotent(t *testing.T) {
	st := &memStore{}
	svc := New(st, newMemCatalog())
	ctx := context.Background()

	first, err := svc.AddPlanetFavorite(ctx, 7, 42)
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	second, err := svc.AddPlanetFavorite(ctx, 7, 42)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if second.Outcome != AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %s", second.Outcome)
	}
	if second.Favorite.ID != first.Favorite.ID {
		t.Fatalf("expected existing favorite %d, got %d", first.Favorite.ID, second.Favorite.ID)
	}
	if n := st.count(7); n != 1 {
		t.Fatalf("expected 1 stored favorite, got %d", n)
	}
}

func TestAddUnknownEntity(t *testing.T) {
	st := &memStore{}
	svc := New(st, newMemCatalog())
	ctx := context.Background()

	if _, err := svc.AddCharacterFavorite(ctx, 7, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.AddPlanetFavorite(ctx, 7, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.AddCharacterFavorite(ctx, 7, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for zero id, got %v", err)
	}
	if n := st.count(7); n != 0 {
		t.Fatalf("expected no favorites, got %d", n)
	}
}

func TestRemoveOutcomes(t *testing.T) {
	st := &memStore{}
	svc := New(st, newMemCatalog())
	ctx := context.Background()

	if _, err := svc.AddPlanetFavorite(ctx, 7, 42); err != nil {
		t.Fatalf("add: %v", err)
	}

	outcome, err := svc.RemovePlanetFavorite(ctx, 7, 42)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if outcome != Removed {
		t.Fatalf("expected Removed, got %s", outcome)
	}

	outcome, err = svc.RemovePlanetFavorite(ctx, 7, 42)
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if outcome != AlreadyAbsent {
		t.Fatalf("expected AlreadyAbsent, got %s", outcome)
	}

	outcome, err = svc.RemoveCharacterFavorite(ctx, 7, 999)
	if err != nil {
		t.Fatalf("remove unknown character: %v", err)
	}
	if outcome != AlreadyAbsent {
		t.Fatalf("expected AlreadyAbsent for unknown character, got %s", outcome)
	}
}

func TestRemoveIsScopedToActor(t *testing.T) {
	st := &memStore{}
	svc := New(st, newMemCatalog())
	ctx := context.Background()

	for _, user := range []int64{1, 2} {
		if _, err := svc.AddCharacterFavorite(ctx, user, 4); err != nil {
			t.Fatalf("add for user %d: %v", user, err)
		}
	}

	outcome, err := svc.RemoveCharacterFavorite(ctx, 1, 4)
	if err != nil || outcome != Removed {
		t.Fatalf("expected Removed, got %s (%v)", outcome, err)
	}

	entries, err := svc.ListForUser(ctx, 2)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if got := names(entries); len(got) != 1 || got[0] != "Darth Vader" {
		t.Fatalf("user 2 favorites changed: %v", got)
	}

	outcome, err = svc.RemoveCharacterFavorite(ctx, 1, 4)
	if err != nil || outcome != AlreadyAbsent {
		t.Fatalf("expected AlreadyAbsent for user 1, got %s (%v)", outcome, err)
	}
	if n := st.count(2); n != 1 {
		t.Fatalf("user 2 should still have 1 favorite, got %d", n)
	}
}

func TestUnauthorizedActor(t *testing.T) {
	st := &memStore{}
	svc := New(st, newMemCatalog())
	ctx := context.Background()

	cases := []struct {
		name string
		call func() error
	}{
		{"add character", func() error { _, err := svc.AddCharacterFavorite(ctx, 0, 1); return err }},
		{"add planet", func() error { _, err := svc.AddPlanetFavorite(ctx, -1, 1); return err }},
		{"remove character", func() error { _, err := svc.RemoveCharacterFavorite(ctx, 0, 1); return err }},
		{"remove planet", func() error { _, err := svc.RemovePlanetFavorite(ctx, 0, 1); return err }},
		{"is favorite", func() error { _, err := svc.IsFavorite(ctx, 0, models.PlanetTarget(1)); return err }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
	if n := st.count(0); n != 0 {
		t.Fatalf("unauthorized calls must not write, got %d rows", n)
	}
}

func TestStorageFailuresAreUnavailable(t *testing.T) {
	boom := errors.New("connection refused")
	ctx := context.Background()

	svc := New(&memStore{err: boom}, newMemCatalog())
	if _, err := svc.AddCharacterFavorite(ctx, 7, 1); !errors.Is(err, ErrUnavailable) || errors.Is(err, ErrNotFound) {
		t.Fatalf("add: expected ErrUnavailable, got %v", err)
	}
	if _, err := svc.RemovePlanetFavorite(ctx, 7, 1); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("remove: expected ErrUnavailable, got %v", err)
	}
	if _, err := svc.ListForUser(ctx, 7); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("list: expected ErrUnavailable, got %v", err)
	}
	if _, err := svc.IsFavorite(ctx, 7, models.PlanetTarget(1)); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("is favorite: expected ErrUnavailable, got %v", err)
	}

	catalog := newMemCatalog()
	catalog.err = boom
	svc = New(&memStore{}, catalog)
	_, err := svc.AddPlanetFavorite(ctx, 7, 42)
	if !errors.Is(err, ErrUnavailable) || errors.Is(err, ErrNotFound) {
		t.Fatalf("catalog failure: expected ErrUnavailable, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected underlying error to be wrapped, got %v", err)
	}
}

func TestCancelledContextPassesThrough(t *testing.T) {
	svc := New(&memStore{}, newMemCatalog())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.AddCharacterFavorite(ctx, 7, 1)
	if !errors.Is(err, context.Canceled) || errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := svc.ListForUser(ctx, 7); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestListForUser(t *testing.T) {
	st := &memStore{}
	catalog := newMemCatalog()
	svc := New(st, catalog)
	ctx := context.Background()

	entries, err := svc.ListForUser(ctx, 3)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", entries)
	}

	mustAdd := func(res Result, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	mustAdd(svc.AddCharacterFavorite(ctx, 3, 1))
	mustAdd(svc.AddPlanetFavorite(ctx, 3, 2))
	mustAdd(svc.AddCharacterFavorite(ctx, 3, 4))

	// A catalog row vanishing leaves a dangling favorite that is skipped.
	delete(catalog.characters, 4)

	entries, err = svc.ListForUser(ctx, 3)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	got := names(entries)
	want := []string{"Luke Skywalker", "Alderaan"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	entries, err = svc.ListForUser(ctx, 0)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty list for invalid user, got %v (%v)", entries, err)
	}
}

func TestIsFavorite(t *testing.T) {
	svc := New(&memStore{}, newMemCatalog())
	ctx := context.Background()

	ok, err := svc.IsFavorite(ctx, 7, models.CharacterTarget(1))
	if err != nil || ok {
		t.Fatalf("expected false, got %v (%v)", ok, err)
	}
	if _, err := svc.AddCharacterFavorite(ctx, 7, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	ok, err = svc.IsFavorite(ctx, 7, models.CharacterTarget(1))
	if err != nil || !ok {
		t.Fatalf("expected true, got %v (%v)", ok, err)
	}
	ok, err = svc.IsFavorite(ctx, 7, models.PlanetTarget(1))
	if err != nil || ok {
		t.Fatalf("planet 1 should not be a favorite, got %v (%v)", ok, err)
	}
}

func TestConcurrentAddsCreateOneRecord(t *testing.T) {
	st := &memStore{}
	svc := New(st, newMemCatalog()).(*service)
	ctx := context.Background()

	const workers = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := svc.AddCharacterFavorite(ctx, 9, 1)
			if err != nil {
				t.Errorf("add: %v", err)
				return
			}
			if res.Outcome == Created {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	if created != 1 {
		t.Fatalf("expected exactly one Created outcome, got %d", created)
	}
	if n := st.count(9); n != 1 {
		t.Fatalf("expected exactly one stored favorite, got %d", n)
	}
	if n := svc.locks.size(); n != 0 {
		t.Fatalf("expected idle locks to be released, %d remain", n)
	}
}

func TestOutcomeString(t *testing.T) {
	cases := map[Outcome]string{
		Created:       "created",
		AlreadyExists: "already_exists",
		Removed:       "removed",
		AlreadyAbsent: "already_absent",
		Outcome(0):    "outcome(0)",
	}
	for outcome, want := range cases {
		if got := outcome.String(); got != want {
			t.Fatalf("Outcome(%d).String() = %q, want %q", int(outcome), got, want)
		}
	}
}
