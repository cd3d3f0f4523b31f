package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/detour-dev/detour/router"
)

// Server is the API server for inspecting routing decisions.
type Server struct {
	config Config
	router *router.Router
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The router is injected so the API observes the same live table as the
// transports resolving requests against it.
func NewServer(config Config, rt *router.Router, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		router: rt,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/v1/status", s.handleStatus)
	app.Get("/v1/routes", s.handleRoutes)
	app.Get("/v1/resolve", s.handleResolve)
	app.Post("/v1/reload", s.handleReload)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
