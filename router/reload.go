package router

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/detour-dev/detour/pkg/config"
	"github.com/detour-dev/detour/pkg/proxyurl"
)

// Source supplies the current provider configuration. Implementations
// return a wrapped config.ErrUnavailable when nothing is configured at all.
type Source interface {
	Load(ctx context.Context) (*config.ProviderConfig, error)
}

// Router owns the published routing table. Resolution reads the table
// through an atomic pointer; Reload replaces the pointer wholesale, so
// concurrent resolves always observe either the fully-old or the fully-new
// table.
type Router struct {
	source     Source
	log        *zap.Logger
	level      *zap.AtomicLevel
	forceDebug bool

	table atomic.Pointer[Table]

	mu         sync.Mutex // serializes Reload and guards the fields below
	lastReload time.Time
	lastErr    error
}

// Option configures a Router.
type Option func(*Router)

// WithLevel hands the Router control of the logger's level, so reloads can
// toggle per-request decision logging with the configuration's debug flag.
func WithLevel(level zap.AtomicLevel) Option {
	return func(r *Router) {
		r.level = &level
	}
}

// WithForceDebug keeps decision logging on regardless of the configured
// debug flag. The --debug CLI flag maps to this.
func WithForceDebug(force bool) Option {
	return func(r *Router) {
		r.forceDebug = force
	}
}

// New creates a Router with no table published. Call Reload to load one;
// until then every request resolves to a direct connection.
func New(source Source, log *zap.Logger, opts ...Option) *Router {
	r := &Router{
		source: source,
		log:    log.Named("detour"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reload fetches the current configuration and republishes the routing
// table. On any failure the previously published table stays active; the
// router never transitions from active to inert because a reload went
// wrong. Reloading an unchanged configuration is a no-op that keeps the
// current generation. Safe for concurrent use; reloads are serialized.
func (r *Router) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastReload = time.Now()

	cfg, err := r.source.Load(ctx)
	if err != nil {
		prev := r.table.Load()
		switch {
		case errors.Is(err, config.ErrUnavailable) && prev == nil:
			// Nothing configured yet: stay inert. This is the valid
			// "no proxying configured" steady state, not an error.
			r.lastErr = nil
			r.log.Info("no provider configuration, proxying disabled")
			return nil
		case prev != nil:
			r.lastErr = err
			r.log.Warn("reload failed, keeping previous table",
				zap.String("generation", prev.generation),
				zap.Error(err),
			)
		default:
			r.lastErr = err
			r.log.Warn("provider configuration rejected, proxying disabled",
				zap.Error(err),
			)
		}
		return err
	}

	if prev := r.table.Load(); prev != nil && prev.cfg.Equal(cfg) {
		r.lastErr = nil
		r.log.Debug("configuration unchanged", zap.String("generation", prev.generation))
		return nil
	}

	t := Compile(cfg, r.log)
	r.table.Store(t)
	r.lastErr = nil
	r.applyLevel(cfg.Debug)

	r.log.Info("routing table published",
		zap.String("generation", t.generation),
		zap.Int("rules", len(t.rules)),
		zap.Bool("debug", cfg.Debug),
	)
	return nil
}

func (r *Router) applyLevel(debug bool) {
	if r.level == nil {
		return
	}
	if debug || r.forceDebug {
		r.level.SetLevel(zap.DebugLevel)
	} else {
		r.level.SetLevel(zap.InfoLevel)
	}
}

// Resolve returns the routing decision for one outgoing request URL against
// the currently published table, logging the decision when debug logging is
// enabled.
func (r *Router) Resolve(rawURL string) Decision {
	d := Resolve(rawURL, r.table.Load())

	if ce := r.log.Check(zap.DebugLevel, "resolved"); ce != nil {
		fields := []zap.Field{zap.String("url", truncate(rawURL, maxLoggedURL))}
		if d.Direct() {
			fields = append(fields, zap.String("action", "direct"))
		} else {
			fields = append(fields,
				zap.String("action", "proxy"),
				zap.String("provider", d.Provider),
				zap.String("proxy", proxyurl.Redact(d.ProxyURL)),
			)
		}
		ce.Write(fields...)
	}

	return d
}

// ProxyFunc adapts the router to the http.Transport.Proxy contract. While
// no table is published it returns (nil, nil) for every request, leaving
// the transport fully direct. Note socks4 proxy URLs cannot be expressed
// through Transport.Proxy; use NewTransport when socks4 is in play.
func (r *Router) ProxyFunc() func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		d := r.Resolve(req.URL.String())
		if d.Direct() {
			return nil, nil
		}
		u, err := url.Parse(d.ProxyURL)
		if err != nil {
			// Compiled URLs are canonical and always parse; fall back to
			// direct rather than failing the request.
			return nil, nil
		}
		return u, nil
	}
}

// Table returns the currently published table, nil while inert.
func (r *Router) Table() *Table {
	return r.table.Load()
}

// Status describes the router's published state for the inspect API.
type Status struct {
	Active     bool      `json:"active"`
	Generation string    `json:"generation,omitempty"`
	CompiledAt time.Time `json:"compiled_at,omitempty"`
	Rules      int       `json:"rules"`
	Debug      bool      `json:"debug"`
	LastReload time.Time `json:"last_reload,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
}

// Status reports the current table generation and the outcome of the most
// recent reload.
func (r *Router) Status() Status {
	r.mu.Lock()
	lastReload, lastErr := r.lastReload, r.lastErr
	r.mu.Unlock()

	s := Status{LastReload: lastReload}
	if lastErr != nil {
		s.LastError = lastErr.Error()
	}

	if t := r.table.Load(); t != nil {
		s.Active = true
		s.Generation = t.generation
		s.CompiledAt = t.compiledAt
		s.Rules = len(t.rules)
		s.Debug = t.cfg.Debug
	}

	return s
}
