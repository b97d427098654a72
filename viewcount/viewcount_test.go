package viewcount

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
)

type countingStore struct {
	mu     sync.Mutex
	calls  map[string]int
	counts map[string]int64
	fail   error
}

func newCountingStore() *countingStore {
	return &countingStore{calls: map[string]int{}, counts: map[string]int64{}}
}

func (s *countingStore) Increment(_ context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[slug]++
	if s.fail != nil {
		return transient("increment", slug, s.fail)
	}
	s.counts[slug]++
	return nil
}

func (s *countingStore) Count(_ context.Context, slug string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[slug], nil
}

func (s *countingStore) Close() error { return nil }

func TestTrackerIncrementsOncePerSession(t *testing.T) {
	store := newCountingStore()
	tr := NewTracker(store)
	ctx := context.Background()

	sent, err := tr.Visit(ctx, "post-1")
	if err != nil || !sent {
		t.Fatalf("first Visit = %v, %v; want true, nil", sent, err)
	}
	sent, err = tr.Visit(ctx, "post-1")
	if err != nil || sent {
		t.Fatalf("second Visit = %v, %v; want false, nil", sent, err)
	}
	if store.calls["post-1"] != 1 {
		t.Fatalf("increment calls = %d, want 1", store.calls["post-1"])
	}
	if !tr.Visited("post-1") || tr.Visited("post-2") {
		t.Fatal("Visited reports wrong slugs")
	}

	// A separate session counts again.
	if _, err := NewTracker(store).Visit(ctx, "post-1"); err != nil {
		t.Fatal(err)
	}
	n, _ := tr.Count(ctx, "post-1")
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
}

func TestTrackerConcurrentVisits(t *testing.T) {
	store := newCountingStore()
	tr := NewTracker(store)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = tr.Visit(context.Background(), "post-1")
		}()
	}
	wg.Wait()
	if store.calls["post-1"] != 1 {
		t.Fatalf("increment calls = %d, want 1", store.calls["post-1"])
	}
}

func TestTrackerRetriesAfterFailure(t *testing.T) {
	store := newCountingStore()
	store.fail = errors.New("connection refused")
	tr := NewTracker(store)
	ctx := context.Background()

	_, err := tr.Visit(ctx, "post-1")
	if !IsTransient(err) {
		t.Fatalf("Visit error = %v, want transient", err)
	}
	if tr.Visited("post-1") {
		t.Fatal("failed increment must not be remembered")
	}

	store.fail = nil
	sent, err := tr.Visit(ctx, "post-1")
	if err != nil || !sent {
		t.Fatalf("retry Visit = %v, %v; want true, nil", sent, err)
	}
	if store.calls["post-1"] != 2 {
		t.Fatalf("increment calls = %d, want 2", store.calls["post-1"])
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "data", "views.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	n, err := s.Count(ctx, "never-seen")
	if err != nil || n != 0 {
		t.Fatalf("Count(never-seen) = %d, %v; want 0, nil", n, err)
	}

	for i := 0; i < 3; i++ {
		if err := s.Increment(ctx, "hello"); err != nil {
			t.Fatalf("Increment: %v", err)
		}
	}
	if err := s.Increment(ctx, "other"); err != nil {
		t.Fatalf("Increment: %v", err)
	}

	n, err = s.Count(ctx, "hello")
	if err != nil || n != 3 {
		t.Fatalf("Count(hello) = %d, %v; want 3, nil", n, err)
	}
	n, _ = s.Count(ctx, "other")
	if n != 1 {
		t.Fatalf("Count(other) = %d, want 1", n)
	}
}

func TestSQLiteStoreClosedIsTransient(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "views.db"))
	if err != nil {
		t.Fatal(err)
	}
	s.Close()
	if err := s.Increment(context.Background(), "x"); !IsTransient(err) {
		t.Fatalf("Increment on closed db = %v, want transient", err)
	}
}

func TestNewRemoteRequiresCredentials(t *testing.T) {
	for _, cfg := range []RemoteConfig{
		{},
		{URL: "https://example.test"},
		{Key: "k"},
		{URL: "  ", Key: "k"},
	} {
		if _, err := NewRemote(cfg); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("NewRemote(%+v) = %v, want ErrMissingCredentials", cfg, err)
		}
	}
	if _, err := NewRemote(RemoteConfig{URL: "not a url", Key: "k"}); err == nil {
		t.Error("expected error for invalid url")
	}
}

type fakeBackend struct {
	mu     sync.Mutex
	counts map[string]int64
	status int
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("apikey") != "secret" || r.Header.Get("Authorization") != "Bearer secret" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status != 0 {
		http.Error(w, "boom", b.status)
		return
	}
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/rpc/increment":
		var body struct {
			Slug string `json:"slug_text"`
		}
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &body); err != nil || body.Slug == "" {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		b.counts[body.Slug]++
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/views":
		if r.URL.Query().Get("select") != "count" {
			http.Error(w, "bad select", http.StatusBadRequest)
			return
		}
		slug := r.URL.Query().Get("slug")
		if len(slug) < 3 || slug[:3] != "eq." {
			http.Error(w, "bad filter", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		n, ok := b.counts[slug[3:]]
		if !ok {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]int64{{"count": n}})
	default:
		http.NotFound(w, r)
	}
}

func TestRemoteStore(t *testing.T) {
	backend := &fakeBackend{counts: map[string]int64{}}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	s, err := NewRemote(RemoteConfig{URL: srv.URL + "/", Key: "secret"})
	if err != nil {
		t.Fatalf("NewRemote: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	n, err := s.Count(ctx, "fresh")
	if err != nil || n != 0 {
		t.Fatalf("Count(fresh) = %d, %v; want 0, nil", n, err)
	}
	if err := s.Increment(ctx, "fresh"); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if err := s.Increment(ctx, "fresh"); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	n, err = s.Count(ctx, "fresh")
	if err != nil || n != 2 {
		t.Fatalf("Count(fresh) = %d, %v; want 2, nil", n, err)
	}
}

func TestRemoteStoreFailuresAreTransient(t *testing.T) {
	backend := &fakeBackend{counts: map[string]int64{}, status: http.StatusInternalServerError}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	s, err := NewRemote(RemoteConfig{URL: srv.URL, Key: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Increment(context.Background(), "a"); !IsTransient(err) {
		t.Fatalf("Increment = %v, want transient", err)
	}
	if _, err := s.Count(context.Background(), "a"); !IsTransient(err) {
		t.Fatalf("Count = %v, want transient", err)
	}

	srv.Close()
	if err := s.Increment(context.Background(), "a"); !IsTransient(err) {
		t.Fatalf("Increment on closed server = %v, want transient", err)
	}
}
