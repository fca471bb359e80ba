package offset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// KVStore stores the offset in a REST key-value facade:
// GET {url}/get/{key} returns {"result": string|null}; POST {url}/set/{key} stores
// the raw request body.
type KVStore struct {
	baseURL string
	token   string
	key     string
	http    *http.Client
}

// NewKVStore creates a store for one key.
func NewKVStore(baseURL, token, key string, client *http.Client) *KVStore {
	return &KVStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		key:     key,
		http:    client,
	}
}

type kvResult struct {
	Result *string `json:"result"`
}

func (s *KVStore) request(ctx context.Context, method, op string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+"/"+op+"/"+url.PathEscape(s.key), body)
	if err != nil {
		return nil, err
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "text/plain")
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("offset: kv %s failed: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("offset: kv %s: status %d: %s", op, resp.StatusCode, msg)
	}
	return resp, nil
}

// Load reads the counter. A missing or garbled value counts as zero.
func (s *KVStore) Load(ctx context.Context) (int, error) {
	resp, err := s.request(ctx, http.MethodGet, "get", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var res kvResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return 0, fmt.Errorf("offset: failed to decode kv response: %w", err)
	}
	if res.Result == nil {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*res.Result))
	if err != nil || n < 0 {
		// A garbled counter restarts the round robin.
		return 0, nil
	}
	return n, nil
}

// Advance compares and sets in two separate calls; a concurrent writer between
// them is not detected.
func (s *KVStore) Advance(ctx context.Context, prev, next int) error {
	current, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if current != prev {
		return ErrConflict
	}
	resp, err := s.request(ctx, http.MethodPost, "set", strings.NewReader(strconv.Itoa(next)))
	if err != nil {
		return err
	}
	return resp.Body.Close()
}
