package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/toky-team/toky-admin/internal/apierr"
	"github.com/toky-team/toky-admin/internal/config"
)

// Registry owns at most one live Conn per namespace. It is constructed
// explicitly and passed to whoever needs it; there is no package-level
// instance.
type Registry struct {
	baseURL      string
	hc           *http.Client
	writeTimeout time.Duration
	log          *zap.Logger

	mu      sync.Mutex
	conns   map[string]*Conn
	dialing map[string]*sync.Mutex
}

// NewRegistry builds a registry. jar carries the session cookies issued by
// the REST login flow so namespace handshakes authenticate; it may be nil
// for anonymous namespaces.
func NewRegistry(cfg config.Config, jar http.CookieJar, log *zap.Logger) *Registry {
	return &Registry{
		baseURL:      strings.TrimSuffix(cfg.WSURL, "/"),
		hc:           &http.Client{Jar: jar},
		writeTimeout: cfg.WriteTimeout,
		log:          log,
		conns:        make(map[string]*Conn),
		dialing:      make(map[string]*sync.Mutex),
	}
}

// namespaceMu returns the dial lock for one namespace, so concurrent
// Connect calls for different namespaces never serialize behind each
// other's dial.
func (r *Registry) namespaceMu(namespace string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	mu, ok := r.dialing[namespace]
	if !ok {
		mu = &sync.Mutex{}
		r.dialing[namespace] = mu
	}
	return mu
}

// Connect returns the live connection for a namespace, dialing one when
// none exists. A dead cached connection is kept until a redial succeeds:
// its handlers and room refcounts are carried over to the replacement and
// joins replayed, so subscription state survives any number of failed
// redials in between.
func (r *Registry) Connect(ctx context.Context, namespace string) (*Conn, error) {
	nsMu := r.namespaceMu(namespace)
	nsMu.Lock()
	defer nsMu.Unlock()

	r.mu.Lock()
	existing := r.conns[namespace]
	r.mu.Unlock()
	if existing != nil && existing.Connected() {
		return existing, nil
	}

	conn, err := r.dial(ctx, namespace)
	if err != nil {
		if existing != nil {
			existing.dispatch(EventConnectError, connectErrorData(err))
		}
		return nil, err
	}
	if existing != nil {
		conn.adopt(existing)
	}
	r.mu.Lock()
	r.conns[namespace] = conn
	r.mu.Unlock()
	go conn.run()
	return conn, nil
}

// Get returns the cached connection for a namespace or nil.
func (r *Registry) Get(namespace string) *Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conns[namespace]
}

// Disconnect closes and evicts a namespace's connection. Unknown
// namespaces are a no-op.
func (r *Registry) Disconnect(namespace string) {
	r.mu.Lock()
	conn, ok := r.conns[namespace]
	if ok {
		delete(r.conns, namespace)
	}
	r.mu.Unlock()

	if ok {
		conn.close()
		r.log.Info("namespace disconnected", zap.String("namespace", namespace))
	}
}

// Close tears down every connection.
func (r *Registry) Close() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]*Conn)
	r.mu.Unlock()

	for _, conn := range conns {
		conn.close()
	}
}

func (r *Registry) dial(ctx context.Context, namespace string) (*Conn, error) {
	url := fmt.Sprintf("%s/ws/%s", r.baseURL, namespace)
	ws, resp, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPClient: r.hc,
	})
	if err != nil {
		// Handshake rejections carry the platform's structured error in the
		// response body; surface it verbatim when parseable.
		if resp != nil && resp.Body != nil {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if apiErr, ok := apierr.Parse(body); ok {
				return nil, apiErr
			}
		}
		return nil, fmt.Errorf("connect %s: %w", namespace, err)
	}
	r.log.Info("namespace connected", zap.String("namespace", namespace))
	return newConn(namespace, ws, r.writeTimeout, r.log), nil
}

// connectErrorData builds a connect_error payload: the structured error
// JSON-stringified when the dial surfaced one, the plain error text
// otherwise.
func connectErrorData(err error) json.RawMessage {
	msg := err.Error()
	var apiErr *apierr.APIError
	if errors.As(err, &apiErr) {
		if raw, merr := json.Marshal(apiErr); merr == nil {
			msg = string(raw)
		}
	}
	data, merr := json.Marshal(ConnectErrorPayload{Message: msg})
	if merr != nil {
		return nil
	}
	return data
}
