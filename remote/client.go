// Package remote implements dashboard.RemoteClient against the preference
// service's HTTP API.
package remote

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

	"go.uber.org/zap"

	"dashprefs/dashboard"
	"dashprefs/preference"
)

const DefaultTimeout = 5 * time.Second

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New returns a client for the service at baseURL. Every request is bounded
// by timeout; zero means DefaultTimeout.
func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *Client) preferencesURL(userID string) string {
	return c.baseURL + "/api/users/" + url.PathEscape(userID) + "/preferences"
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", dashboard.ErrRemoteUnavailable, fmt.Sprintf(format, args...))
}

func malformed(format string, args ...any) dashboard.FetchResult {
	return dashboard.FetchResult{
		Status: dashboard.FetchAbsent,
		Err:    fmt.Errorf("%w: %s", dashboard.ErrMalformedPayload, fmt.Sprintf(format, args...)),
	}
}

// Fetch reads the user's dashboard section. A response without one is
// FetchAbsent; so is one whose dashboard section cannot be decoded.
func (c *Client) Fetch(ctx context.Context, userID string) dashboard.FetchResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.preferencesURL(userID), nil)
	if err != nil {
		return dashboard.FetchResult{Status: dashboard.FetchFailed, Err: unavailable("build request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return dashboard.FetchResult{Status: dashboard.FetchFailed, Err: unavailable("%v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return dashboard.FetchResult{Status: dashboard.FetchFailed, Err: unavailable("GET preferences: %s", resp.Status)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return dashboard.FetchResult{Status: dashboard.FetchFailed, Err: unavailable("read body: %v", err)}
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(body, &sections); err != nil {
		return malformed("response is not a JSON object: %v", err)
	}
	raw, ok := sections[preference.SectionDashboard]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return dashboard.FetchResult{Status: dashboard.FetchAbsent}
	}

	cfg, err := dashboard.DecodeConfiguration(raw)
	if err != nil {
		return malformed("dashboard section: %v", err)
	}
	c.log.Debug("fetched dashboard preferences",
		zap.String("user", userID), zap.String("etag", resp.Header.Get("ETag")))
	return dashboard.FetchResult{Status: dashboard.FetchFound, Config: cfg}
}

// Put stores cfg under the dashboard key only, leaving the user's other
// preference sections untouched.
func (c *Client) Put(ctx context.Context, userID string, cfg dashboard.Configuration) error {
	body, err := json.Marshal(map[string]dashboard.Configuration{preference.SectionDashboard: cfg.Clone()})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.preferencesURL(userID), bytes.NewReader(body))
	if err != nil {
		return unavailable("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return unavailable("%v", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return unavailable("PUT preferences: %s", resp.Status)
	}
	return nil
}
