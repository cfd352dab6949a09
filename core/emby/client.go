package emby

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// TokenHeader carries the API key on every request.
const TokenHeader = "X-Emby-Token"

// ErrUnreachable marks transport failures: refused connections, timeouts and
// exhausted retries. Callers test for it with errors.Is.
var ErrUnreachable = errors.New("emby server unreachable")

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("emby %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client talks to one Emby server.
type Client struct {
	baseURL string
	apiKey  string
	http    *retryablehttp.Client
}

// Option customizes a Client.
type Option func(*retryablehttp.Client)

// WithLogger routes retry diagnostics to the given logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *retryablehttp.Client) {
		c.Logger = leveledLogger{s: l.Sugar()}
	}
}

// WithRetryWait overrides the backoff bounds between attempts.
func WithRetryWait(min, max time.Duration) Option {
	return func(c *retryablehttp.Client) {
		c.RetryWaitMin = min
		c.RetryWaitMax = max
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL, apiKey string, cfg Config, opts ...Option) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds
	}
	retries := cfg.RetryMax
	if retries < 0 {
		retries = defaultRetryMax
	}

	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = retries
	rc.HTTPClient.Timeout = time.Duration(timeout) * time.Second
	// Keep the last response so a final 5xx surfaces as a StatusError.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	for _, opt := range opts {
		opt(rc)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    rc,
	}
}

// BaseURL returns the server URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get performs a GET request and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set(TokenHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnreachable, http.MethodGet, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method:     http.MethodGet,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), 200),
		}
	}
	return body, nil
}

// ListItems fetches every item matching the query.
func (c *Client) ListItems(ctx context.Context, q ItemQuery) ([]Item, error) {
	params := url.Values{}
	if q.Recursive {
		params.Set("Recursive", "true")
	}
	if len(q.IncludeItemTypes) > 0 {
		params.Set("IncludeItemTypes", strings.Join(q.IncludeItemTypes, ","))
	}
	if len(q.Fields) > 0 {
		params.Set("Fields", strings.Join(q.Fields, ","))
	}
	if q.SortBy != "" {
		params.Set("SortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		params.Set("SortOrder", q.SortOrder)
	}
	if q.ParentID != "" {
		params.Set("ParentId", q.ParentID)
	}

	body, err := c.get(ctx, "/Items", params)
	if err != nil {
		return nil, err
	}

	var page struct {
		Items []Item `json:"Items"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	if page.Items == nil {
		page.Items = []Item{}
	}
	return page.Items, nil
}

// SystemInfo fetches the server identity from GET /System/Info.
func (c *Client) SystemInfo(ctx context.Context) (*SystemInfo, error) {
	body, err := c.get(ctx, "/System/Info", nil)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("failed to decode system info: invalid JSON")
	}

	fields := gjson.GetManyBytes(body, "ServerName", "Version", "Id", "OperatingSystem")
	return &SystemInfo{
		ServerName:      fields[0].String(),
		Version:         fields[1].String(),
		ID:              fields[2].String(),
		OperatingSystem: fields[3].String(),
	}, nil
}

// TestConnection verifies the URL and API key by reading the system info.
func (c *Client) TestConnection(ctx context.Context) (*SystemInfo, error) {
	info, err := c.SystemInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("connection test failed: %w", err)
	}
	return info, nil
}

// AdminUserID returns the id of the first administrator account, or "" if
// the server has none.
func (c *Client) AdminUserID(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "/Users", nil)
	if err != nil {
		return "", err
	}

	// /Users returns a bare array; /Users/Query wraps it in Items.
	users := gjson.ParseBytes(body)
	if users.IsObject() {
		users = users.Get("Items")
	}

	for _, u := range users.Array() {
		if u.Get("Policy.IsAdministrator").Bool() {
			return u.Get("Id").String(), nil
		}
	}
	return "", nil
}

// ImageURL builds the URL of an item image. kind defaults to "Primary" and
// width to 400.
func (c *Client) ImageURL(itemID, tag, kind string, width int) string {
	if kind == "" {
		kind = "Primary"
	}
	if width <= 0 {
		width = 400
	}
	return fmt.Sprintf("%s/Items/%s/Images/%s?maxWidth=%s&tag=%s",
		c.baseURL, url.PathEscape(itemID), kind, strconv.Itoa(width), url.QueryEscape(tag))
}

// BackdropURL builds the URL of an item backdrop. width defaults to 1280.
func (c *Client) BackdropURL(itemID, tag string, width int) string {
	if width <= 0 {
		width = 1280
	}
	return c.ImageURL(itemID, tag, "Backdrop", width)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// leveledLogger adapts zap to retryablehttp.LeveledLogger.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Infow(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
