package lrclib

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lyrics-search/internal/lyrics"
	"lyrics-search/pkg/music"

	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL = "https://lrclib.net/api"
	userAgent      = "lyrics-search/1.0"
)

// Client LRCLib客户端
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Response LRCLib API响应结构
type Response struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// NewClient 创建新的LRCLib客户端
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    DefaultBaseURL,
	}
}

// WithBaseURL points the client at another LRCLib deployment.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Name 返回提供商名称
func (c *Client) Name() string {
	return "LRCLib"
}

// Search 通过 /search 接口查询歌词
func (c *Client) Search(ctx context.Context, q music.Query, enhanced bool) (string, error) {
	params := url.Values{}
	if q.Structured() {
		params.Set("track_name", q.Title)
		if q.Artist != "" {
			params.Set("artist_name", q.Artist)
		}
	} else {
		params.Set("q", q.Text)
	}
	searchURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("lrclib request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", music.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lrclib request returned status %d", resp.StatusCode)
	}

	var results []Response
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	log.Debug().Str("provider", "lrclib").Int("results", len(results)).Str("query", q.Text).Msg("Search finished")

	best := findBestMatch(results, q)
	if best == nil {
		return "", music.ErrNotFound
	}
	return pickLyrics(best, enhanced)
}

// pickLyrics 按模式选择同步或纯文本歌词
func pickLyrics(r *Response, enhanced bool) (string, error) {
	switch {
	case enhanced && r.SyncedLyrics != "":
		return r.SyncedLyrics, nil
	case r.PlainLyrics != "":
		return r.PlainLyrics, nil
	case r.SyncedLyrics != "":
		return lyrics.Plain(r.SyncedLyrics), nil
	default:
		return "", music.ErrNotFound
	}
}

// findBestMatch 从搜索结果中找到最佳匹配的歌词，跳过纯音乐和空歌词
func findBestMatch(results []Response, q music.Query) *Response {
	var usable []*Response
	for i := range results {
		r := &results[i]
		if r.Instrumental || (r.PlainLyrics == "" && r.SyncedLyrics == "") {
			continue
		}
		usable = append(usable, r)
	}
	if len(usable) == 0 {
		return nil
	}
	if !q.Structured() {
		return usable[0]
	}

	var titleMatch *Response
	for _, r := range usable {
		if !containsIgnoreCase(r.TrackName, q.Title) {
			continue
		}
		if q.Artist == "" || containsIgnoreCase(r.ArtistName, q.Artist) {
			return r
		}
		if titleMatch == nil {
			titleMatch = r
		}
	}
	if titleMatch != nil {
		return titleMatch
	}
	return usable[0]
}

// containsIgnoreCase 忽略大小写检查包含关系
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
