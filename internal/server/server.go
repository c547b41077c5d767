package server

import (
	"time"

	"lyrics-search/internal/config"
	"lyrics-search/internal/metrics"
	"lyrics-search/internal/search"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
)

// Server is the HTTP server for the lyrics endpoint.
type Server struct {
	app  *fiber.App
	addr string
}

// New builds the fiber app. m may be nil.
func New(cfg config.ServerConfig, service *search.Service, m *metrics.Metrics) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "lyrics-search",
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Debug,
	})

	app.Use(RequestLogger(m))
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.Debug}))

	RegisterRoutes(app, NewHandler(service))

	return &Server{app: app, addr: cfg.Addr()}
}

// RegisterRoutes registers the lyrics routes.
func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Post("/search-lyrics", handler.SearchLyrics)
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	log.Info().Str("addr", s.addr).Msg("Lyrics search server listening")
	return s.app.Listen(s.addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}
