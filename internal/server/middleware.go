package server

import (
	"errors"
	"strconv"
	"time"

	"lyrics-search/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const requestIDHeader = "X-Request-ID"

type errorResponse struct {
	Error string `json:"error"`
}

// errorKind maps an error to the status and the "error" field of the body.
func errorKind(err error) (int, string) {
	if errors.Is(err, errSearchFailed) {
		return fiber.StatusInternalServerError, "search_failed"
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			return fiber.StatusBadRequest, "invalid_request"
		case fiber.StatusNotFound:
			return fe.Code, "not_found"
		case fiber.StatusMethodNotAllowed:
			return fe.Code, "method_not_allowed"
		case fiber.StatusRequestEntityTooLarge:
			return fe.Code, "request_too_large"
		}
	}
	return fiber.StatusInternalServerError, "internal_error"
}

// errorHandler renders every failure as {"error": "<kind>"}.
func errorHandler(c *fiber.Ctx, err error) error {
	status, kind := errorKind(err)

	logger := zerolog.Ctx(c.UserContext())
	if status >= fiber.StatusInternalServerError {
		logger.Error().Err(err).Str("kind", kind).Msg("Request failed")
	} else {
		logger.Debug().Err(err).Str("kind", kind).Msg("Request rejected")
	}

	return c.Status(status).JSON(errorResponse{Error: kind})
}

// RequestLogger tags each request with an id, attaches a request logger to
// the user context and writes one access log line per request.
func RequestLogger(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDHeader, requestID)

		logger := log.With().Str("request_id", requestID).Logger()
		c.SetUserContext(logger.WithContext(c.UserContext()))

		// Render errors here so the access line sees the final status.
		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		took := time.Since(start)
		if m != nil {
			m.ObserveRequest(strconv.Itoa(status), took)
		}

		logger.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", took).
			Str("ip", c.IP()).
			Msg("Request handled")
		return nil
	}
}
