package router

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testRouter returns a router with the given provider configuration
// already published.
func testRouter(t *testing.T, raw map[string]any) *Router {
	t.Helper()
	src := &staticSource{}
	src.set(testConfig(t, raw), nil)

	r := New(src, zap.NewNop())
	require.NoError(t, r.Reload(context.Background()))
	return r
}

func TestTransportConnectsDirectWithoutMatch(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, "ok")
	}))
	defer backend.Close()

	r := testRouter(t, map[string]any{"anthropic": "http://127.0.0.1:9100"})
	client := &http.Client{Transport: r.NewTransport(nil)}

	// The backend's loopback URL matches no provider pattern.
	resp, err := client.Get(backend.URL + "/plain")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestTransportDirectIgnoresProxyEnvironment(t *testing.T) {
	t.Setenv("HTTP_PROXY", "http://127.0.0.1:1")
	t.Setenv("HTTPS_PROXY", "http://127.0.0.1:1")

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, "ok")
	}))
	defer backend.Close()

	r := testRouter(t, map[string]any{"anthropic": "http://127.0.0.1:9100"})
	client := &http.Client{Transport: r.NewTransport(nil)}

	resp, err := client.Get(backend.URL + "/plain")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestTransportRoutesMatchedRequestsThroughProxy(t *testing.T) {
	var proxiedHost string
	proxySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// A forward-proxy client sends the absolute request form; Host
		// names origin, not this proxy.
		proxiedHost = req.Host
		fmt.Fprint(w, "proxied")
	}))
	defer proxySrv.Close()

	backendHit := false
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		backendHit = true
		fmt.Fprint(w, "ok")
	}))
	defer backend.Close()

	r := testRouter(t, map[string]any{"anthropic": proxySrv.URL})
	client := &http.Client{Transport: r.NewTransport(nil)}

	// Matching runs over the whole URL, so the path carries the pattern.
	resp, err := client.Get(backend.URL + "/api.anthropic.com")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "proxied", string(body))
	assert.Contains(t, backend.URL, proxiedHost)
	assert.False(t, backendHit)
}

func TestTransportFallsBackToDirectWhenProxyUnreachable(t *testing.T) {
	var gotPath string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		fmt.Fprint(w, "ok")
	}))
	defer backend.Close()

	// Nothing listens on port 1; the proxied attempt fails to connect.
	r := testRouter(t, map[string]any{"anthropic": "http://127.0.0.1:1"})
	client := &http.Client{Transport: r.NewTransport(nil)}

	resp, err := client.Get(backend.URL + "/api.anthropic.com")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, "/api.anthropic.com", gotPath)
}

func TestTransportReplaysBodyOnFallback(t *testing.T) {
	var gotBody string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		gotBody = string(b)
		fmt.Fprint(w, "ok")
	}))
	defer backend.Close()

	r := testRouter(t, map[string]any{"anthropic": "http://127.0.0.1:1"})
	client := &http.Client{Transport: r.NewTransport(nil)}

	resp, err := client.Post(backend.URL+"/api.anthropic.com", "application/json",
		strings.NewReader(`{"model":"test"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, `{"model":"test"}`, gotBody)
}

// opaqueReader hides the concrete reader type so http.NewRequest cannot
// derive GetBody.
type opaqueReader struct{ io.Reader }

func TestTransportDoesNotRetryUnreplayableBody(t *testing.T) {
	backendHit := false
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		backendHit = true
	}))
	defer backend.Close()

	r := testRouter(t, map[string]any{"anthropic": "http://127.0.0.1:1"})
	client := &http.Client{Transport: r.NewTransport(nil)}

	req, err := http.NewRequest(http.MethodPost, backend.URL+"/api.anthropic.com",
		opaqueReader{strings.NewReader("payload")})
	require.NoError(t, err)
	require.Nil(t, req.GetBody)

	_, err = client.Do(req)

	// The proxied failure stands; no silent direct retry with a consumed
	// body.
	require.Error(t, err)
	assert.False(t, backendHit)
}

func TestTransportCachesPerProxyURL(t *testing.T) {
	r := testRouter(t, map[string]any{"anthropic": "http://127.0.0.1:9100"})
	tr := r.NewTransport(nil)

	a, err := tr.transportFor("http://127.0.0.1:9100")
	require.NoError(t, err)
	b, err := tr.transportFor("http://127.0.0.1:9100")
	require.NoError(t, err)
	assert.Same(t, a, b)

	c, err := tr.transportFor("http://127.0.0.1:9200")
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}

func TestTransportBuildsSOCKS4Dialer(t *testing.T) {
	r := testRouter(t, map[string]any{"anthropic": "socks4://127.0.0.1:1080"})
	tr := r.NewTransport(nil)

	rt, err := tr.transportFor("socks4://127.0.0.1:1080")
	require.NoError(t, err)

	ht, ok := rt.(*http.Transport)
	require.True(t, ok)
	assert.Nil(t, ht.Proxy)
	assert.NotNil(t, ht.DialContext)
}

func TestTransportUsesProxyURLForSOCKS5(t *testing.T) {
	r := testRouter(t, map[string]any{"anthropic": "socks5://127.0.0.1:1080"})
	tr := r.NewTransport(nil)

	rt, err := tr.transportFor("socks5://127.0.0.1:1080")
	require.NoError(t, err)

	ht, ok := rt.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, ht.Proxy)

	u, err := ht.Proxy(httptest.NewRequest(http.MethodGet, "https://api.anthropic.com/v1/messages", nil))
	require.NoError(t, err)
	assert.Equal(t, "socks5://127.0.0.1:1080", u.String())
}
