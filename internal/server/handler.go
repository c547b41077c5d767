package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"lyrics-search/internal/search"

	"github.com/gofiber/fiber/v2"
)

var errSearchFailed = errors.New("search_failed")

type searchLyricsRequest struct {
	Track    string          `json:"track"`
	Artist   string          `json:"artist"`
	Enhanced json.RawMessage `json:"enhanced"`
}

// enhanced defaults to true when the field is absent. An explicit null
// counts as false.
func (r searchLyricsRequest) enhanced() (bool, error) {
	raw := bytes.TrimSpace(r.Enhanced)
	switch {
	case len(raw) == 0:
		return true, nil
	case bytes.Equal(raw, []byte("null")):
		return false, nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, fmt.Errorf("enhanced: %w", err)
	}
	return v, nil
}

type searchLyricsResponse struct {
	Lyrics *string `json:"lyrics"`
}

// Handler serves the lyrics search route.
type Handler struct {
	service *search.Service
}

func NewHandler(service *search.Service) *Handler {
	return &Handler{service: service}
}

// SearchLyrics handles POST /search-lyrics
func (h *Handler) SearchLyrics(c *fiber.Ctx) error {
	if raw := bytes.TrimSpace(c.Body()); len(raw) == 0 || raw[0] != '{' {
		return fiber.NewError(fiber.StatusBadRequest, "request body must be a JSON object")
	}

	var body searchLyricsRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	enhanced, err := body.enhanced()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	req := search.Request{
		Track:    body.Track,
		Artist:   body.Artist,
		Enhanced: enhanced,
	}

	lyrics, err := h.service.SearchLyrics(c.UserContext(), req)
	if err != nil {
		return fmt.Errorf("%w: %w", errSearchFailed, err)
	}

	return c.JSON(searchLyricsResponse{Lyrics: lyrics})
}
