package netease

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lyrics-search/pkg/music"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	searchBody = `{"code":200,"result":{"songs":[
		{"id":11,"name":"Yesterday Once More","artists":[{"name":"Carpenters"}]},
		{"id":22,"name":"Yesterday","artists":[{"name":"The Beatles"}]}
	]}}`
	lyricBody = `{"code":200,
		"lrc":{"lyric":"[00:01.00]Yesterday\n[00:04.00]All my troubles\n"},
		"yrc":{"lyric":"{\"t\":0,\"c\":[{\"tx\":\"作词: \"}]}\n[1000,2500](1000,800,0)Yester(1800,700,0)day\n"}}`
)

func newTestServer(t *testing.T, lyric string) (*Client, *[]string) {
	t.Helper()
	var requested []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/search/get/web", func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, "search:"+r.URL.Query().Get("s"))
		w.Write([]byte(searchBody))
	})
	mux.HandleFunc("/api/song/lyric/v1", func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, "lyric:"+r.URL.Query().Get("id"))
		assert.Equal(t, "-1", r.URL.Query().Get("yv"))
		w.Write([]byte(lyric))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(time.Second).WithBaseURL(server.URL)
	client.cookie = ""
	return client, &requested
}

func TestSearchEnhancedUsesYRC(t *testing.T) {
	client, requested := newTestServer(t, lyricBody)

	lyrics, err := client.Search(context.Background(), music.Query{Text: "Yesterday The Beatles"}, true)
	require.NoError(t, err)

	assert.Equal(t, "[00:01.00] <00:01.00> Yester <00:01.80> day <00:03.50>", lyrics)
	assert.Equal(t, []string{"search:Yesterday The Beatles", "lyric:22"}, *requested)
}

func TestSearchPlain(t *testing.T) {
	client, _ := newTestServer(t, lyricBody)

	lyrics, err := client.Search(context.Background(), music.Query{Text: "Yesterday The Beatles"}, false)
	require.NoError(t, err)
	assert.Equal(t, "Yesterday\nAll my troubles", lyrics)
}

func TestSearchEnhancedFallsBackToLRC(t *testing.T) {
	client, _ := newTestServer(t, `{"code":200,"lrc":{"lyric":"[00:01.00]Yesterday"},"yrc":{"lyric":""}}`)

	lyrics, err := client.Search(context.Background(), music.Query{Title: "Yesterday", Artist: "The Beatles"}, true)
	require.NoError(t, err)
	assert.Equal(t, "[00:01.00]Yesterday", lyrics)
}

func TestSearchNoLyric(t *testing.T) {
	client, _ := newTestServer(t, `{"code":200,"nolyric":true}`)

	_, err := client.Search(context.Background(), music.Query{Text: "Yesterday The Beatles"}, true)
	assert.ErrorIs(t, err, music.ErrNotFound)
}

func TestSearchNoMatchingSong(t *testing.T) {
	client, requested := newTestServer(t, lyricBody)

	_, err := client.Search(context.Background(), music.Query{Text: "Bohemian Rhapsody Queen"}, false)
	assert.ErrorIs(t, err, music.ErrNotFound)
	assert.Len(t, *requested, 1)
}

func TestSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(time.Second).WithBaseURL(server.URL)
	_, err := client.Search(context.Background(), music.Query{Text: "Yesterday"}, false)
	require.Error(t, err)
	assert.NotErrorIs(t, err, music.ErrNotFound)
}

// TestSearchAPIRefusal 接口返回非200的code时应视为错误，而不是没有歌词
func TestSearchAPIRefusal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":-460,"message":"Cheating","result":{}}`))
	}))
	defer server.Close()

	client := NewClient(time.Second).WithBaseURL(server.URL)
	_, err := client.Search(context.Background(), music.Query{Text: "Yesterday The Beatles"}, true)
	require.Error(t, err)
	assert.NotErrorIs(t, err, music.ErrNotFound)
	assert.Contains(t, err.Error(), "-460")
}

func TestLyricAPIRefusal(t *testing.T) {
	client, requested := newTestServer(t, `{"code":-460}`)

	_, err := client.Search(context.Background(), music.Query{Text: "Yesterday The Beatles"}, true)
	require.Error(t, err)
	assert.NotErrorIs(t, err, music.ErrNotFound)
	assert.Len(t, *requested, 2)
}

// TestTimeout 测试超时机制
func TestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(100 * time.Millisecond).WithBaseURL(server.URL)
	_, err := client.Search(context.Background(), music.Query{Text: "Yesterday"}, false)
	assert.Error(t, err)
}

func TestConvertYRC(t *testing.T) {
	yrc := "{\"t\":0,\"c\":[{\"tx\":\"meta\"}]}\n" +
		"[16210,3460](16210,670,0)Some (16880,410,0)thing\n" +
		"[20000,1000]\n"

	assert.Equal(t, "[00:16.21] <00:16.21> Some <00:16.88> thing <00:19.67>", ConvertYRC(yrc))
}
