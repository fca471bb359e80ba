package syscara

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"vehicle-sync/core/metrics"
)

const (
	breakerName      = "syscara-api"
	maxErrorBodySize = 64 * 1024
)

var (
	// ErrNotFound is returned when a single listing does not exist.
	ErrNotFound = errors.New("syscara: listing not found")
	// ErrMediaNotFound is returned when the media service does not know the id.
	ErrMediaNotFound = errors.New("syscara: media not found")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status int
	Body   string
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("syscara: status %d: %s", e.Status, e.Body)
}

// MediaInfo describes a file in the media service.
type MediaInfo struct {
	ID        string `json:"id"`
	FileName  string `json:"fileName"`
	PublicURL string `json:"publicUrl"`
}

// MediaStream is an open media download. The caller must close Body.
type MediaStream struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Client talks to the Syscara API with basic auth.
type Client struct {
	baseURL string
	user    string
	pass    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	logger  *zap.Logger
}

// NewClient creates a client from configuration.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		user:    cfg.User,
		pass:    cfg.Pass,
		http:    &http.Client{Timeout: timeout},
		breaker: newBreaker(logger),
		logger:  logger,
	}
}

func newBreaker(logger *zap.Logger) *gobreaker.CircuitBreaker[*http.Response] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < http.StatusInternalServerError
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// get performs an authenticated GET and returns the open response on 2xx.
// Any other status is drained into an APIError.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	return c.breaker.Execute(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.SetBasicAuth(c.user, c.pass)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			metrics.UpstreamRequests.WithLabelValues("syscara", metrics.StatusClass(0)).Inc()
			return nil, fmt.Errorf("syscara request failed: %w", err)
		}
		metrics.UpstreamRequests.WithLabelValues("syscara", metrics.StatusClass(resp.StatusCode)).Inc()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			defer resp.Body.Close()
			return nil, &APIError{Status: resp.StatusCode, Body: string(readBodyForError(resp.Body))}
		}
		return resp, nil
	})
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode syscara response: %w", err)
	}
	return nil
}

// FetchAll loads every sale listing. The result is ordered by key with numeric keys
// first in ascending order, so batches over it are stable between runs.
func (c *Client) FetchAll(ctx context.Context) ([]Entry, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, c.baseURL+"/sale/ads/", &raw); err != nil {
		return nil, err
	}
	entries, err := DecodeCollection(raw)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Err != nil {
			c.logger.Warn("Listing does not decode", zap.String("fahrzeug_id", e.Key), zap.Error(e.Err))
		}
	}
	c.logger.Debug("Fetched listings", zap.Int("count", len(entries)))
	return entries, nil
}

// FetchOne loads a single listing by id.
func (c *Client) FetchOne(ctx context.Context, id string) (Entry, error) {
	var raw json.RawMessage
	err := c.getJSON(ctx, c.baseURL+"/sale/ads/"+url.PathEscape(id), &raw)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return DecodeSingle(id, raw)
}

// DecodeCollection normalizes a collection payload into entries. It accepts the
// keyed object form and a plain array of listings. Only a malformed envelope is an
// error; a listing that does not decode is returned with Entry.Err set.
func DecodeCollection(raw json.RawMessage) ([]Entry, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("failed to decode listing array: %w", err)
		}
		entries := make([]Entry, 0, len(items))
		for _, item := range items {
			entries = append(entries, decodeEntry("", item))
		}
		return entries, nil
	}

	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, fmt.Errorf("failed to decode listing collection: %w", err)
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, decodeEntry(k, keyed[k]))
	}
	return entries, nil
}

// DecodeSingle normalizes a single-listing payload. The API answers either with the
// listing itself or with an object keyed by the listing id.
func DecodeSingle(id string, raw json.RawMessage) (Entry, error) {
	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return Entry{}, fmt.Errorf("failed to decode listing: %w", err)
	}
	if inner, ok := keyed[id]; ok && strings.HasPrefix(strings.TrimSpace(string(inner)), "{") {
		return decodeEntry(id, inner), nil
	}
	if len(keyed) == 0 {
		return Entry{}, ErrNotFound
	}
	return decodeEntry(id, raw), nil
}

// decodeEntry never fails; a listing with unexpected field types keeps its key and
// raw payload and carries the decode error.
func decodeEntry(key string, raw json.RawMessage) Entry {
	var ad Ad
	if err := json.Unmarshal(raw, &ad); err != nil {
		if key == "" {
			key = peekID(raw)
		}
		return Entry{
			Key: key,
			Ad:  Ad{ID: ID(key)},
			Raw: raw,
			Err: fmt.Errorf("failed to decode listing: %w", err),
		}
	}
	if ad.ID == "" {
		ad.ID = ID(key)
	}
	return Entry{Key: ad.ID.String(), Ad: ad, Raw: raw}
}

// peekID reads only the id of a listing whose other fields do not decode.
func peekID(raw json.RawMessage) string {
	var head struct {
		ID ID `json:"id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return ""
	}
	return head.ID.String()
}

// LookupMedia resolves a media id to its file name and public URL.
func (c *Client) LookupMedia(ctx context.Context, id string) (MediaInfo, error) {
	q := url.Values{}
	q.Set("media_id", id)
	q.Set("file", "path")

	var files map[string]struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/data/media/?"+q.Encode(), &files); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return MediaInfo{}, ErrMediaNotFound
		}
		return MediaInfo{}, err
	}

	file, ok := files[id]
	if !ok || file.Name == "" {
		return MediaInfo{}, ErrMediaNotFound
	}
	return MediaInfo{
		ID:        id,
		FileName:  file.Name,
		PublicURL: c.baseURL + "/data/media/" + strings.TrimLeft(file.Name, "/"),
	}, nil
}

// OpenMedia starts the download of a resolved media file.
func (c *Client) OpenMedia(ctx context.Context, info MediaInfo) (*MediaStream, error) {
	resp, err := c.get(ctx, info.PublicURL)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &MediaStream{Body: resp.Body, ContentType: contentType, Size: resp.ContentLength}, nil
}

// readBodyForError reads at most 64KB of an error response.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}
