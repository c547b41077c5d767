package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveLookup(true, true)

	s := NewServer(m, "127.0.0.1:9100")
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `lyrics_search_lookups_total{enhanced="true",returned="true"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
