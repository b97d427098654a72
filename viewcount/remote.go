package viewcount

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RemoteConfig configures the hosted REST backend.
type RemoteConfig struct {
	URL     string // project base URL, e.g. https://xyz.example.co
	Key     string // API key sent as apikey and bearer token
	Timeout time.Duration
	Client  *http.Client
}

// RemoteStore talks to a PostgREST-style backend exposing an "increment"
// RPC and a "views" table.
type RemoteStore struct {
	base   *url.URL
	key    string
	client *http.Client
}

// NewRemote validates cfg and returns a RemoteStore. It returns
// ErrMissingCredentials when the URL or key is empty.
func NewRemote(cfg RemoteConfig) (*RemoteStore, error) {
	if strings.TrimSpace(cfg.URL) == "" || strings.TrimSpace(cfg.Key) == "" {
		return nil, ErrMissingCredentials
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("viewcount: invalid backend url %q", cfg.URL)
	}
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &RemoteStore{base: base, key: cfg.Key, client: client}, nil
}

// Increment calls the increment RPC for slug.
func (s *RemoteStore) Increment(ctx context.Context, slug string) error {
	body, err := json.Marshal(map[string]string{"slug_text": slug})
	if err != nil {
		return err
	}
	req, err := s.newRequest(ctx, http.MethodPost, "/rest/v1/rpc/increment", nil, bytes.NewReader(body))
	if err != nil {
		return transient("increment", slug, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return transient("increment", slug, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return transient("increment", slug, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Count reads the counter row for slug. A missing row counts as zero.
func (s *RemoteStore) Count(ctx context.Context, slug string) (int64, error) {
	q := url.Values{}
	q.Set("slug", "eq."+slug)
	q.Set("select", "count")
	req, err := s.newRequest(ctx, http.MethodGet, "/rest/v1/views", q, nil)
	if err != nil {
		return 0, transient("count", slug, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, transient("count", slug, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return 0, transient("count", slug, err)
	}

	var rows []struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return 0, transient("count", slug, fmt.Errorf("decode response: %w", err))
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Count, nil
}

// Close releases idle connections.
func (s *RemoteStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *RemoteStore) newRequest(ctx context.Context, method, path string, q url.Values, body io.Reader) (*http.Request, error) {
	u := *s.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if q != nil {
		u.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	return req, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("backend returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
}
