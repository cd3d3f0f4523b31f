package router

import (
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// Interceptor installs the routing transport onto an http.Client with an
// explicit install/uninstall lifecycle. Installation is idempotent:
// repeated attempts, or attempts against a client some other handle already
// wrapped, are detected and skipped so the transport is never
// double-wrapped.
type Interceptor struct {
	router *Router
	client *http.Client
	log    *zap.Logger

	mu        sync.Mutex
	installed bool
	prev      http.RoundTripper
}

// NewInterceptor prepares an interceptor for client. A nil client targets
// http.DefaultClient.
func (r *Router) NewInterceptor(client *http.Client) *Interceptor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Interceptor{
		router: r,
		client: client,
		log:    r.log,
	}
}

// Install wraps the client's transport in proxy routing. It reports whether
// installation happened; false means the client was already wrapped.
func (i *Interceptor) Install() bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.installed {
		i.log.Debug("interceptor already installed, skipping")
		return false
	}
	if _, ok := i.client.Transport.(*Transport); ok {
		i.log.Debug("client transport already routed, skipping")
		return false
	}

	i.prev = i.client.Transport
	base, _ := i.prev.(*http.Transport)
	i.client.Transport = i.router.NewTransport(base)
	i.installed = true

	i.log.Debug("interceptor installed")
	return true
}

// Uninstall restores the client's original transport. It reports whether an
// installation was removed.
func (i *Interceptor) Uninstall() bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.installed {
		return false
	}

	i.client.Transport = i.prev
	i.prev = nil
	i.installed = false

	i.log.Debug("interceptor uninstalled")
	return true
}
