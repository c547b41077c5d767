package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Server exposes the registry on its own listener, away from the lyrics
// endpoint.
type Server struct {
	app  *fiber.App
	addr string
}

func NewServer(m *Metrics, addr string) *Server {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{
		Registry: m.Registry,
	})))
	return &Server{app: app, addr: addr}
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Start blocks serving /metrics until Shutdown.
func (s *Server) Start() error {
	log.Info().Str("addr", s.addr).Msg("Metrics server listening")
	return s.app.Listen(s.addr)
}

func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}
