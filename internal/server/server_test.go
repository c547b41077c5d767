package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lyrics-search/internal/config"
	"lyrics-search/internal/metrics"
	"lyrics-search/internal/search"
	"lyrics-search/pkg/music"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchCall struct {
	query    string
	enhanced bool
}

// stubSearcher returns lyricsFor(enhanced) or err on call failOn (1-based).
type stubSearcher struct {
	calls  []searchCall
	lyrics map[bool]string
	err    error
	failOn int
	panic  bool
}

func (s *stubSearcher) Search(ctx context.Context, query string, enhanced bool) (string, error) {
	s.calls = append(s.calls, searchCall{query, enhanced})
	if s.panic {
		panic("collaborator blew up")
	}
	if s.err != nil && len(s.calls) == s.failOn {
		return "", s.err
	}
	text, ok := s.lyrics[enhanced]
	if !ok {
		return "", music.ErrNotFound
	}
	return text, nil
}

func newTestServer(searcher music.Searcher) *Server {
	svc := search.NewService(searcher, true, nil)
	return New(config.Default().Server, svc, metrics.New())
}

func post(t *testing.T, s *Server, body string) (int, map[string]any, *http.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/search-lyrics", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out, resp
}

func TestSearchLyricsPlain(t *testing.T) {
	searcher := &stubSearcher{lyrics: map[bool]string{
		true:  "[00:01.00]Yesterday",
		false: "plain lyrics text...",
	}}
	s := newTestServer(searcher)

	status, body, resp := post(t, s, `{"track": "Yesterday", "artist": "The Beatles", "enhanced": false}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"lyrics": "plain lyrics text..."}, body)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
	assert.Equal(t, []searchCall{
		{"Yesterday The Beatles", true},
		{"Yesterday The Beatles", false},
		{"Yesterday The Beatles", false},
	}, searcher.calls)
}

func TestSearchLyricsDefaultsToEnhanced(t *testing.T) {
	searcher := &stubSearcher{lyrics: map[bool]string{
		true:  "[00:01.00] <00:01.00> Yesterday <00:02.00>",
		false: "Yesterday",
	}}
	s := newTestServer(searcher)

	status, body, _ := post(t, s, `{"track": "Yesterday", "artist": "The Beatles"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[00:01.00] <00:01.00> Yesterday <00:02.00>", body["lyrics"])
	require.Len(t, searcher.calls, 3)
	assert.True(t, searcher.calls[2].enhanced)
}

func TestSearchLyricsNoMatchIsNull(t *testing.T) {
	s := newTestServer(&stubSearcher{})

	status, body, _ := post(t, s, `{"track": "Nonexistent", "artist": "Nobody"}`)

	assert.Equal(t, http.StatusOK, status)
	v, ok := body["lyrics"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestSearchLyricsMissingArtist(t *testing.T) {
	searcher := &stubSearcher{lyrics: map[bool]string{true: "x", false: "y"}}
	s := newTestServer(searcher)

	status, _, _ := post(t, s, `{"track": "Yesterday"}`)

	assert.Equal(t, http.StatusOK, status)
	require.Len(t, searcher.calls, 3)
	for _, c := range searcher.calls {
		assert.Equal(t, "Yesterday", c.query)
	}
}

func TestSearchLyricsCollaboratorFault(t *testing.T) {
	for failOn := 1; failOn <= 3; failOn++ {
		searcher := &stubSearcher{
			lyrics: map[bool]string{true: "x", false: "y"},
			err:    errors.New("all providers failed"),
			failOn: failOn,
		}
		s := newTestServer(searcher)

		status, body, _ := post(t, s, `{"track": "Yesterday", "artist": "The Beatles"}`)

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, map[string]any{"error": "search_failed"}, body)
		assert.NotContains(t, body, "lyrics")
	}
}

func TestSearchLyricsPanic(t *testing.T) {
	s := newTestServer(&stubSearcher{panic: true})

	status, body, _ := post(t, s, `{"track": "Yesterday", "artist": "The Beatles"}`)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, map[string]any{"error": "internal_error"}, body)
}

func TestSearchLyricsInvalidBody(t *testing.T) {
	searcher := &stubSearcher{}
	s := newTestServer(searcher)

	bodies := []string{
		`not json`,
		`[1,2]`,
		`{"track": 5}`,
		``,
		`null`,
		` null `,
		`"Yesterday"`,
		`{"track": "a", "enhanced": "yes"}`,
	}
	for _, body := range bodies {
		status, out, _ := post(t, s, body)
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, map[string]any{"error": "invalid_request"}, out, body)
	}
	assert.Empty(t, searcher.calls)
}

func TestSearchLyricsNullEnhancedIsPlain(t *testing.T) {
	searcher := &stubSearcher{lyrics: map[bool]string{true: "[00:01.00]Yesterday", false: "Yesterday"}}
	s := newTestServer(searcher)

	status, body, _ := post(t, s, `{"track": "Yesterday", "artist": "The Beatles", "enhanced": null}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Yesterday", body["lyrics"])
	require.Len(t, searcher.calls, 3)
	assert.False(t, searcher.calls[2].enhanced)
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(&stubSearcher{})

	req := httptest.NewRequest(http.MethodPost, "/search-lyrics", strings.NewReader(`{"track":"a"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, "abc-123")

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(requestIDHeader))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(&stubSearcher{})

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/lyrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
