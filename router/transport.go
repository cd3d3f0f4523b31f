package router

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/proxy"
	"h12.io/socks"

	"github.com/detour-dev/detour/pkg/proxyurl"
)

func init() {
	// Teach x/net/proxy the socks4 scheme. socks5 it speaks natively;
	// the socks4 handshake comes from h12.io/socks.
	proxy.RegisterDialerType("socks4", newSOCKS4Dialer)
}

func newSOCKS4Dialer(u *url.URL, _ proxy.Dialer) (proxy.Dialer, error) {
	return socks4Dialer{dial: socks.Dial(u.String())}, nil
}

type socks4Dialer struct {
	dial func(network, addr string) (net.Conn, error)
}

func (d socks4Dialer) Dial(network, addr string) (net.Conn, error) {
	return d.dial(network, addr)
}

// Transport is an http.RoundTripper that routes every request through the
// proxy resolved for that request's URL. When the proxied attempt cannot be
// made or fails, it falls back to a single direct attempt if the request
// can be replayed: a broken proxy degrades to direct traffic, it never
// fails the caller's request outright.
type Transport struct {
	router *Router
	base   *http.Transport
	direct http.RoundTripper
	log    *zap.Logger

	mu     sync.Mutex
	perURL map[string]http.RoundTripper
}

// NewTransport wraps base in proxy routing. A nil base starts from
// http.DefaultTransport. One derived transport is built and cached per
// distinct proxy URL, so connection pools are reused across requests.
func (r *Router) NewTransport(base *http.Transport) *Transport {
	if base == nil {
		if t, ok := http.DefaultTransport.(*http.Transport); ok {
			base = t
		} else {
			base = &http.Transport{}
		}
	}

	// The direct path ignores proxy environment variables: a direct
	// decision means no intermediary at all.
	direct := base.Clone()
	direct.Proxy = nil

	return &Transport{
		router: r,
		base:   base,
		direct: direct,
		log:    r.log,
		perURL: make(map[string]http.RoundTripper),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	decision := t.router.Resolve(req.URL.String())
	if decision.Direct() {
		return t.direct.RoundTrip(req)
	}

	rt, err := t.transportFor(decision.ProxyURL)
	if err != nil {
		t.log.Warn("proxy transport unavailable, connecting direct",
			zap.String("proxy", proxyurl.Redact(decision.ProxyURL)),
			zap.Error(err),
		)
		return t.direct.RoundTrip(req)
	}

	resp, err := rt.RoundTrip(req)
	if err == nil {
		return resp, nil
	}
	if req.Context().Err() != nil {
		return nil, err
	}

	retry, rerr := replay(req)
	if rerr != nil {
		return nil, err
	}

	t.log.Warn("proxied attempt failed, retrying direct",
		zap.String("proxy", proxyurl.Redact(decision.ProxyURL)),
		zap.String("url", truncate(req.URL.String(), maxLoggedURL)),
		zap.Error(err),
	)
	return t.direct.RoundTrip(retry)
}

// transportFor returns the cached transport for a canonical proxy URL,
// building it on first use. http, https, and socks5 proxies go through
// Transport.Proxy; socks4 needs a custom dialer.
func (t *Transport) transportFor(canonical string) (http.RoundTripper, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rt, ok := t.perURL[canonical]; ok {
		return rt, nil
	}

	d, err := proxyurl.Parse(canonical)
	if err != nil {
		return nil, err
	}

	tr := t.base.Clone()
	tr.Proxy = nil

	switch d.Scheme {
	case proxyurl.SchemeSOCKS4:
		dialer, err := proxy.FromURL(d.URL(), &net.Dialer{Timeout: 30 * time.Second})
		if err != nil {
			return nil, fmt.Errorf("building socks4 dialer: %w", err)
		}
		tr.DialContext = dialContext(dialer)
	default:
		tr.Proxy = http.ProxyURL(d.URL())
	}

	t.perURL[canonical] = tr
	return tr, nil
}

func dialContext(d proxy.Dialer) func(context.Context, string, string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}
}

// replay clones req with a fresh body for the direct retry. Requests whose
// body cannot be reproduced return an error and the proxied failure stands.
func replay(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body cannot be replayed")
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("reopening request body: %w", err)
	}
	clone.Body = body
	return clone, nil
}
