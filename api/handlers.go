package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/detour-dev/detour/pkg/proxyurl"
	"github.com/detour-dev/detour/router"
)

// ErrorResponse is the error payload returned by all handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoutesResponse lists the rules of the active routing table.
type RoutesResponse struct {
	Generation string            `json:"generation,omitempty"`
	Count      int               `json:"count"`
	Routes     []router.RuleInfo `json:"routes"`
}

// ResolveResponse reports how one URL would route.
type ResolveResponse struct {
	URL      string `json:"url"`
	Action   string `json:"action"`
	Provider string `json:"provider,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
	ProxyURL string `json:"proxy_url,omitempty"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleStatus returns the router's published state and the outcome of the
// most recent reload.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.router.Status())
}

// handleRoutes returns the active rules in scan order, credentials
// redacted.
func (s *Server) handleRoutes(c *fiber.Ctx) error {
	resp := RoutesResponse{Routes: []router.RuleInfo{}}
	if t := s.router.Table(); t != nil {
		resp.Generation = t.Generation()
		resp.Routes = t.Rules()
		resp.Count = len(resp.Routes)
	}
	return c.JSON(resp)
}

// handleResolve reports the routing decision for the url query parameter
// without contacting anything.
func (s *Server) handleResolve(c *fiber.Ctx) error {
	rawURL := c.Query("url")
	if rawURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "url query parameter required"})
	}

	d := s.router.Resolve(rawURL)
	resp := ResolveResponse{URL: rawURL, Action: "direct"}
	if !d.Direct() {
		resp.Action = "proxy"
		resp.Provider = d.Provider
		resp.Pattern = d.Pattern
		resp.ProxyURL = proxyurl.Redact(d.ProxyURL)
	}

	return c.JSON(resp)
}

// handleReload reloads the configuration and republishes the routing
// table. A rejected configuration leaves the previous table active.
func (s *Server) handleReload(c *fiber.Ctx) error {
	if err := s.router.Reload(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(s.router.Status())
}
