package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	DefaultDeviceID     = "smart_tent_001"
	DefaultPollInterval = 10 * time.Second

	// isoMillis matches the timestamp format browsers emit for Date.toISOString.
	isoMillis = "2006-01-02T15:04:05.000Z"
)

// Config is fixed at construction time.
type Config struct {
	Origin       string // e.g. "http://localhost:5000"; the API lives under /api
	DeviceID     string
	PollInterval time.Duration
}

// Client polls the relay for one device and caches the latest snapshot
// together with the connectivity flag. Both are overwritten by every fetch:
// the last response to arrive wins.
type Client struct {
	apiURL   string
	deviceID string
	interval time.Duration
	http     *http.Client
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.RWMutex
	connected bool
	latest    *Snapshot
}

type Option func(*Client)

// WithHTTPClient replaces the transport. The default client has no timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock overrides the source of submission timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(cfg Config, opts ...Option) *Client {
	deviceID := cfg.DeviceID
	if deviceID == "" {
		deviceID = DefaultDeviceID
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	c := &Client{
		apiURL:   strings.TrimRight(cfg.Origin, "/") + "/api",
		deviceID: deviceID,
		interval: interval,
		http:     &http.Client{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger.Info("telemetry client ready", "api_url", c.apiURL, "device_id", c.deviceID)
	return c
}

func (c *Client) APIURL() string              { return c.apiURL }
func (c *Client) DeviceID() string            { return c.deviceID }
func (c *Client) PollInterval() time.Duration { return c.interval }

// Connected reports whether the most recent fetch succeeded.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Latest returns the most recently fetched snapshot, or nil.
func (c *Client) Latest() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

// FetchSnapshot reads the device's latest snapshot. Failures are logged and
// reported as a nil snapshot; the connectivity flag records the outcome.
func (c *Client) FetchSnapshot(ctx context.Context) *Snapshot {
	snap, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("fetch snapshot failed", "device_id", c.deviceID, "error", err)
		c.setConnected(false)
		return nil
	}

	c.mu.Lock()
	c.latest = snap
	c.connected = true
	c.mu.Unlock()
	return snap
}

func (c *Client) fetch(ctx context.Context) (*Snapshot, error) {
	endpoint := c.apiURL + "/data/" + url.PathEscape(c.deviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("get %s: unexpected status %d", endpoint, resp.StatusCode)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// SubmitReading posts a reading for this device. The body carries device_id
// and a send-time timestamp, followed by the payload's own fields, which take
// precedence on key collisions. It returns true only for a 2xx response.
func (c *Client) SubmitReading(ctx context.Context, payload map[string]any) bool {
	body := make(map[string]any, len(payload)+2)
	body["device_id"] = c.deviceID
	body["timestamp"] = c.now().UTC().Format(isoMillis)
	for k, v := range payload {
		body[k] = v
	}

	raw, err := json.Marshal(body)
	if err != nil {
		c.logger.Error("submit reading: encode payload", "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/data", bytes.NewReader(raw))
	if err != nil {
		c.logger.Error("submit reading: build request", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("submit reading failed", "device_id", c.deviceID, "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	if !ok {
		c.logger.Warn("submit reading rejected", "device_id", c.deviceID, "status", resp.StatusCode)
	}
	return ok
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}
