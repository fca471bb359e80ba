package webflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"vehicle-sync/core/metrics"
)

const (
	// PageSize is the fixed page size used for collection listing.
	PageSize = 100

	maxRetries       = 3
	maxErrorBodySize = 64 * 1024
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

// Error implements error.
func (e *APIError) Error() string {
	return fmt.Sprintf("webflow: %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Item is a collection item.
type Item struct {
	ID         string         `json:"id,omitempty"`
	FieldData  map[string]any `json:"fieldData"`
	IsDraft    bool           `json:"isDraft"`
	IsArchived bool           `json:"isArchived"`
}

// Field returns a field value rendered as string, or "" if absent.
func (i Item) Field(name string) string {
	switch v := i.FieldData[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

type listResponse struct {
	Items []Item `json:"items"`
}

// Client is a throttled Webflow API client.
type Client struct {
	baseURL     string
	token       string
	legacyBatch bool
	http        *http.Client
	limiter     *rate.Limiter
	logger      *zap.Logger
	backoff     time.Duration
}

// NewClient creates a client from configuration.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		token:       cfg.Token,
		legacyBatch: cfg.LegacyBatch,
		http:        &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logger,
		backoff:     time.Second,
	}
}

// do sends a JSON request and decodes the JSON response into out when out is non-nil.
// 429 responses are retried with exponential backoff.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	delay := c.backoff
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		resp, err := c.send(ctx, method, path, payload)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries {
			_ = resp.Body.Close()
			c.logger.Warn("Webflow rate limited, backing off",
				zap.String("path", path), zap.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			continue
		}

		return decodeResponse(resp, method, path, out)
	}
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var reader io.Reader = http.NoBody
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("webflow", metrics.StatusClass(0)).Inc()
		return nil, fmt.Errorf("webflow request failed: %w", err)
	}
	metrics.UpstreamRequests.WithLabelValues("webflow", metrics.StatusClass(resp.StatusCode)).Inc()
	return resp, nil
}

func decodeResponse(resp *http.Response, method, path string, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: string(body)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func itemsPath(collection string) string {
	return "/collections/" + url.PathEscape(collection) + "/items"
}

// ListItems loads every item of a collection page by page.
func (c *Client) ListItems(ctx context.Context, collection string) ([]Item, error) {
	var all []Item
	for offset := 0; ; offset += PageSize {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(PageSize))
		q.Set("offset", strconv.Itoa(offset))

		var page listResponse
		if err := c.do(ctx, http.MethodGet, itemsPath(collection)+"?"+q.Encode(), nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if len(page.Items) < PageSize {
			return all, nil
		}
	}
}

// LoadReferences builds the slug to item id map of a reference collection.
// Items without a slug are skipped.
func (c *Client) LoadReferences(ctx context.Context, collection string) (map[string]string, error) {
	items, err := c.ListItems(ctx, collection)
	if err != nil {
		return nil, err
	}
	refs := make(map[string]string, len(items))
	for _, item := range items {
		if slug := item.Field("slug"); slug != "" && item.ID != "" {
			refs[slug] = item.ID
		}
	}
	return refs, nil
}

type legacyCreate struct {
	Items []legacyItem `json:"items"`
}

type legacyItem struct {
	FieldData map[string]any `json:"fieldData"`
}

// CreateItem creates a live, non-archived item and returns it with its new id.
func (c *Client) CreateItem(ctx context.Context, collection string, fields map[string]any) (Item, error) {
	if c.legacyBatch {
		var resp struct {
			Item
			Items []Item `json:"items"`
		}
		body := legacyCreate{Items: []legacyItem{{FieldData: fields}}}
		if err := c.do(ctx, http.MethodPost, itemsPath(collection), body, &resp); err != nil {
			return Item{}, err
		}
		if len(resp.Items) > 0 {
			return resp.Items[0], nil
		}
		return resp.Item, nil
	}

	var created Item
	body := Item{FieldData: fields}
	if err := c.do(ctx, http.MethodPost, itemsPath(collection), body, &created); err != nil {
		return Item{}, err
	}
	return created, nil
}

// UpdateItem replaces the fields of an existing item.
func (c *Client) UpdateItem(ctx context.Context, collection, id string, fields map[string]any) (Item, error) {
	var updated Item
	body := Item{FieldData: fields}
	if err := c.do(ctx, http.MethodPatch, itemsPath(collection)+"/"+url.PathEscape(id), body, &updated); err != nil {
		return Item{}, err
	}
	return updated, nil
}

// DeleteItem removes an item from the collection.
func (c *Client) DeleteItem(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, itemsPath(collection)+"/"+url.PathEscape(id), nil, nil)
}

// PublishItems publishes staged items.
func (c *Client) PublishItems(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	body := map[string][]string{"itemIds": ids}
	return c.do(ctx, http.MethodPost, itemsPath(collection)+"/publish", body, nil)
}

// UnpublishLiveItem removes an item from the live site. Items that were never
// published are not an error.
func (c *Client) UnpublishLiveItem(ctx context.Context, collection, id string) error {
	err := c.do(ctx, http.MethodDelete, itemsPath(collection)+"/"+url.PathEscape(id)+"/live", nil, nil)
	if IsNotFound(err) {
		return nil
	}
	return err
}
