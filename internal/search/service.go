package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lyrics-search/pkg/music"

	"github.com/rs/zerolog"
)

// Request is one lyrics lookup as received by the endpoint.
type Request struct {
	Track    string
	Artist   string
	Enhanced bool
}

// Query joins track and artist into the free-text query. A missing field
// leaves an empty placeholder.
func (r Request) Query() string {
	return strings.TrimSpace(r.Track + " " + r.Artist)
}

// Observer receives one event per searcher call.
type Observer interface {
	ObserveLookup(enhanced, returned bool)
}

// Service drives the lyrics searcher for the endpoint.
type Service struct {
	searcher      music.Searcher
	warmBothModes bool
	observer      Observer
}

func NewService(searcher music.Searcher, warmBothModes bool, observer Observer) *Service {
	return &Service{
		searcher:      searcher,
		warmBothModes: warmBothModes,
		observer:      observer,
	}
}

// SearchLyrics returns the lyrics for req, or nil when nothing matched.
//
// With warmBothModes the searcher is called three times: enhanced, plain,
// then the requested mode. Only the last result is returned. A fault on any
// call fails the request; a miss on the first two is ignored.
func (s *Service) SearchLyrics(ctx context.Context, req Request) (*string, error) {
	zerolog.Ctx(ctx).Info().
		Str("track", req.Track).
		Str("artist", req.Artist).
		Bool("enhanced", req.Enhanced).
		Msg("Searching for lyrics")

	query := req.Query()
	ctx = music.WithParseMemo(ctx)

	if s.warmBothModes {
		for _, enhanced := range []bool{true, false} {
			if _, err := s.lookup(ctx, query, enhanced, false); err != nil {
				return nil, err
			}
		}
	}

	return s.lookup(ctx, query, req.Enhanced, true)
}

func (s *Service) lookup(ctx context.Context, query string, enhanced, returned bool) (*string, error) {
	if s.observer != nil {
		s.observer.ObserveLookup(enhanced, returned)
	}

	text, err := s.searcher.Search(ctx, query, enhanced)
	if errors.Is(err, music.ErrNotFound) {
		zerolog.Ctx(ctx).Debug().Str("query", query).Bool("enhanced", enhanced).Msg("No lyrics found")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lyrics search for '%s' (enhanced=%t): %w", query, enhanced, err)
	}
	return &text, nil
}
