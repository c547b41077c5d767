package qqmusic

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"lyrics-search/internal/lyrics"
	"lyrics-search/pkg/music"

	"github.com/rs/zerolog/log"
)

const DefaultBaseURL = "https://c.y.qq.com"

// SearchResponse QQ音乐搜索API响应
type SearchResponse struct {
	Code int `json:"code"`
	Data struct {
		Song struct {
			List []struct {
				SongMID  string `json:"songmid"`
				SongName string `json:"songname"`
				Singer   []struct {
					Name string `json:"name"`
				} `json:"singer"`
			} `json:"list"`
		} `json:"song"`
	} `json:"data"`
}

// LyricResponse QQ音乐歌词API响应（nobase64=1 时为明文）
type LyricResponse struct {
	RetCode int    `json:"retcode"`
	Code    int    `json:"code"`
	Lyric   string `json:"lyric"`
}

// Client QQ音乐客户端
type Client struct {
	httpClient *http.Client
	baseURL    string
	cookie     string
}

// NewClient 创建新的QQ音乐客户端
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    DefaultBaseURL,
		cookie:     os.Getenv("QQMUSIC_COOKIE"),
	}
}

// WithBaseURL points the client at another API host.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Name 获取提供商名称
func (c *Client) Name() string {
	return "QQ Music"
}

// Search 搜索歌曲并获取歌词。QQ音乐只提供逐行歌词。
func (c *Client) Search(ctx context.Context, q music.Query, enhanced bool) (string, error) {
	songMID, err := c.searchSong(ctx, q)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("songmid", songMID)
	params.Set("format", "json")
	params.Set("nobase64", "1")
	params.Set("g_tk", "5381")
	lyricURL := fmt.Sprintf("%s/lyric/fcgi-bin/fcg_query_lyric_new.fcg?%s", c.baseURL, params.Encode())
	log.Debug().Str("provider", "qqmusic").Str("songmid", songMID).Msg("Fetching lyrics")

	var lyricResp LyricResponse
	if err := c.getJSON(ctx, lyricURL, &lyricResp); err != nil {
		return "", fmt.Errorf("qqmusic lyric request failed: %w", err)
	}

	// 歌词中的标点会被转义为 &#58; 之类的实体
	text := strings.TrimSpace(html.UnescapeString(lyricResp.Lyric))
	if text == "" {
		return "", music.ErrNotFound
	}
	if enhanced {
		return text, nil
	}
	return lyrics.Plain(text), nil
}

func (c *Client) searchSong(ctx context.Context, q music.Query) (string, error) {
	keywords := q.Text
	if q.Structured() {
		keywords = strings.TrimSpace(q.Title + " " + q.Artist)
	}

	params := url.Values{}
	params.Set("w", keywords)
	params.Set("format", "json")
	params.Set("p", "1")
	params.Set("n", "20")
	searchURL := fmt.Sprintf("%s/soso/fcgi-bin/client_search_cp?%s", c.baseURL, params.Encode())
	log.Debug().Str("provider", "qqmusic").Str("keywords", keywords).Msg("Searching for song")

	var searchResp SearchResponse
	if err := c.getJSON(ctx, searchURL, &searchResp); err != nil {
		return "", fmt.Errorf("qqmusic search failed: %w", err)
	}
	if searchResp.Code != 0 {
		return "", fmt.Errorf("qqmusic search returned code %d", searchResp.Code)
	}

	songs := searchResp.Data.Song.List
	if len(songs) == 0 {
		return "", music.ErrNotFound
	}

	title, artist := q.Title, q.Artist
	if !q.Structured() {
		title, artist = q.Text, q.Text
	}
	lowerTitle, lowerArtist := strings.ToLower(title), strings.ToLower(artist)

	first := ""
	for _, song := range songs {
		name := strings.ToLower(song.SongName)
		if name == "" || !(strings.Contains(lowerTitle, name) || strings.Contains(name, lowerTitle)) {
			continue
		}
		if first == "" {
			first = song.SongMID
		}
		for _, singer := range song.Singer {
			s := strings.ToLower(singer.Name)
			if s != "" && (strings.Contains(lowerArtist, s) || strings.Contains(s, lowerArtist)) {
				return song.SongMID, nil
			}
		}
	}
	if first == "" {
		return "", music.ErrNotFound
	}
	return first, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// 歌词接口校验 Referer
	req.Header.Set("Referer", "https://y.qq.com/portal/player.html")
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
