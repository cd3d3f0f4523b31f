// Package api provides an HTTP server for inspecting and managing the
// routing engine.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":7979")
	ListenAddr string
}
