// Package httpx is the REST client for the platform's admin API. Sessions
// are cookie-based; a 401 on any call triggers exactly one silent refresh
// and a replay of the original request.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/toky-team/toky-admin/internal/apierr"
	"github.com/toky-team/toky-admin/internal/config"
)

// StatusError is returned for non-2xx responses whose body did not carry a
// structured error payload.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// sessionJar is a cookie jar whose contents can be dropped in place, so a
// websocket registry sharing it sees a Logout immediately instead of
// dialing with a stale session.
type sessionJar struct {
	mu  sync.Mutex
	jar http.CookieJar
}

func newSessionJar() (*sessionJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &sessionJar{jar: jar}, nil
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

func (j *sessionJar) reset() {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return
	}
	j.mu.Lock()
	j.jar = jar
	j.mu.Unlock()
}

type Client struct {
	base *url.URL
	hc   *http.Client
	jar  *sessionJar
	log  *zap.Logger

	refreshMu sync.Mutex
	expired   atomic.Bool
}

func New(cfg config.Config, log *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.APIURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	jar, err := newSessionJar()
	if err != nil {
		return nil, err
	}
	return &Client{
		base: base,
		hc: &http.Client{
			Jar:     jar,
			Timeout: cfg.RequestTimeout,
		},
		jar: jar,
		log: log.Named("httpx"),
	}, nil
}

// SessionExpired reports whether a refresh has failed since the last
// successful login. Callers use it to force re-login.
func (c *Client) SessionExpired() bool { return c.expired.Load() }

// Jar exposes the cookie jar so the websocket dialer can share the session.
// The same jar instance stays valid across Logout.
func (c *Client) Jar() http.CookieJar { return c.jar }

// Logout drops all session cookies, including for holders of Jar().
func (c *Client) Logout() {
	c.jar.reset()
	c.expired.Store(false)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request and decodes the JSON response into out (when out is
// non-nil). body may be nil; contentType applies only when body is set.
// On a 401 it refreshes the session once and replays; refresh calls
// themselves are never replayed.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body []byte, out any) error {
	resp, err := c.send(ctx, method, path, query, contentType, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && path != "/auth/refresh" {
		drain(resp)
		if rerr := c.Refresh(ctx); rerr != nil {
			c.expired.Store(true)
			c.log.Warn("session refresh failed", zap.Error(rerr))
			return &StatusError{Status: http.StatusUnauthorized}
		}
		resp, err = c.send(ctx, method, path, query, contentType, body)
		if err != nil {
			return err
		}
	}

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if apiErr, ok := apierr.Parse(data); ok {
			return apiErr
		}
		return &StatusError{Status: resp.StatusCode, Body: string(data)}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, contentType string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), rd)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug("request", zap.String("method", method), zap.String("path", path))
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// Refresh rotates the session cookie. Concurrent callers are serialized so
// a burst of 401s produces a single refresh round-trip chain.
func (c *Client) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.do(ctx, http.MethodPost, "/auth/refresh", nil, "", nil, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, "", nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, query url.Values, in, out any) error {
	body, contentType, err := encodeJSON(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, query, contentType, body, out)
}

func (c *Client) patchJSON(ctx context.Context, path string, query url.Values, in, out any) error {
	body, contentType, err := encodeJSON(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, path, query, contentType, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil, nil)
}

func encodeJSON(in any) ([]byte, string, error) {
	if in == nil {
		return []byte("{}"), "application/json", nil
	}
	body, err := json.Marshal(in)
	if err != nil {
		return nil, "", fmt.Errorf("encode request: %w", err)
	}
	return body, "application/json", nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
