package netease

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"lyrics-search/internal/lyrics"
	"lyrics-search/pkg/music"

	"github.com/rs/zerolog/log"
)

const DefaultBaseURL = "https://music.163.com"

// SearchResponse 网易云搜索API响应
type SearchResponse struct {
	Code   int `json:"code"`
	Result struct {
		Songs []struct {
			ID      int    `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"songs"`
	} `json:"result"`
}

// LyricResponse 网易云歌词API响应，yrc 为逐字歌词
type LyricResponse struct {
	Code    int  `json:"code"`
	NoLyric bool `json:"nolyric"`
	Lrc     struct {
		Lyric string `json:"lyric"`
	} `json:"lrc"`
	Yrc struct {
		Lyric string `json:"lyric"`
	} `json:"yrc"`
}

// Client 网易云音乐客户端
type Client struct {
	httpClient *http.Client
	baseURL    string
	cookie     string
}

// NewClient 创建新的网易云音乐客户端
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    DefaultBaseURL,
		cookie:     os.Getenv("NETEASE_COOKIE"),
	}
}

// WithBaseURL points the client at another API host.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Name 获取提供商名称
func (c *Client) Name() string {
	return "NetEase Cloud Music"
}

// Search 搜索歌曲并获取歌词
func (c *Client) Search(ctx context.Context, q music.Query, enhanced bool) (string, error) {
	songID, err := c.searchSong(ctx, q)
	if err != nil {
		return "", err
	}

	resp, err := c.getLyrics(ctx, songID)
	if err != nil {
		return "", err
	}
	if resp.NoLyric {
		return "", music.ErrNotFound
	}

	if enhanced {
		if yrc := strings.TrimSpace(resp.Yrc.Lyric); yrc != "" {
			if converted := ConvertYRC(yrc); converted != "" {
				return converted, nil
			}
		}
		if lrc := strings.TrimSpace(resp.Lrc.Lyric); lrc != "" {
			return lrc, nil
		}
		return "", music.ErrNotFound
	}

	plain := lyrics.Plain(resp.Lrc.Lyric)
	if plain == "" {
		return "", music.ErrNotFound
	}
	return plain, nil
}

func (c *Client) searchSong(ctx context.Context, q music.Query) (int, error) {
	keywords := q.Text
	if q.Structured() {
		keywords = strings.TrimSpace(q.Title + " " + q.Artist)
	}

	params := url.Values{}
	params.Set("s", keywords)
	params.Set("type", "1")
	params.Set("limit", "30")
	searchURL := fmt.Sprintf("%s/api/search/get/web?%s", c.baseURL, params.Encode())
	log.Debug().Str("provider", "netease").Str("url", searchURL).Msg("Searching for song")

	var searchResp SearchResponse
	if err := c.getJSON(ctx, searchURL, &searchResp); err != nil {
		return 0, fmt.Errorf("netease search failed: %w", err)
	}
	if searchResp.Code != http.StatusOK {
		return 0, fmt.Errorf("netease search refused with code %d", searchResp.Code)
	}

	if len(searchResp.Result.Songs) == 0 {
		return 0, music.ErrNotFound
	}

	songID := findBestMatch(searchResp, q)
	if songID == 0 {
		return 0, music.ErrNotFound
	}
	return songID, nil
}

func (c *Client) getLyrics(ctx context.Context, songID int) (*LyricResponse, error) {
	params := url.Values{}
	params.Set("id", strconv.Itoa(songID))
	for _, k := range []string{"lv", "kv", "tv", "yv"} {
		params.Set(k, "-1")
	}
	lyricURL := fmt.Sprintf("%s/api/song/lyric/v1?%s", c.baseURL, params.Encode())
	log.Debug().Str("provider", "netease").Str("url", lyricURL).Msg("Fetching lyrics")

	var lyricResp LyricResponse
	if err := c.getJSON(ctx, lyricURL, &lyricResp); err != nil {
		return nil, fmt.Errorf("netease lyric request failed: %w", err)
	}
	if lyricResp.Code != http.StatusOK {
		return nil, fmt.Errorf("netease lyric request refused with code %d", lyricResp.Code)
	}
	return &lyricResp, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Referer", "https://music.163.com/")
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

// findBestMatch 找到最佳匹配的歌曲。
// 未解析的自由文本查询时，要求歌名（和歌手）出现在查询文本中。
func findBestMatch(resp SearchResponse, q music.Query) int {
	targetTitle, targetArtist := q.Title, q.Artist
	if !q.Structured() {
		targetTitle, targetArtist = q.Text, q.Text
	}

	firstTitleMatch := 0
	for _, song := range resp.Result.Songs {
		if !containsIgnoreCase(song.Name, targetTitle) {
			continue
		}
		if firstTitleMatch == 0 {
			firstTitleMatch = song.ID
		}
		if targetArtist == "" {
			return song.ID
		}
		// artists 可能有多个，只要一个满足就算
		for _, artist := range song.Artists {
			if containsIgnoreCase(artist.Name, targetArtist) {
				log.Debug().Str("provider", "netease").Str("song", song.Name).Int("id", song.ID).Msg("Found matching song")
				return song.ID
			}
		}
	}

	return firstTitleMatch
}

var (
	yrcLineRe = regexp.MustCompile(`^\[(\d+),(\d+)\]`)
	yrcWordRe = regexp.MustCompile(`\((\d+),(\d+),-?\d+\)`)
)

// ConvertYRC 把网易云逐字歌词转换为增强LRC格式:
//
//	[16210,3460](16210,670,0)Some (16880,410,0)thing
//	=> [00:16.21] <00:16.21> Some <00:16.88> thing <00:19.67>
func ConvertYRC(yrc string) string {
	var out []string
	for _, raw := range strings.Split(yrc, "\n") {
		line := strings.TrimSpace(raw)
		head := yrcLineRe.FindStringSubmatch(line)
		if head == nil {
			// 元数据行是 JSON 格式 {"t":0,"c":[...]}
			continue
		}
		start, _ := strconv.Atoi(head[1])
		dur, _ := strconv.Atoi(head[2])
		body := line[len(head[0]):]

		idx := yrcWordRe.FindAllStringSubmatchIndex(body, -1)
		words := make([]lyrics.Word, 0, len(idx))
		for i, m := range idx {
			wordStart, _ := strconv.Atoi(body[m[2]:m[3]])
			end := len(body)
			if i+1 < len(idx) {
				end = idx[i+1][0]
			}
			words = append(words, lyrics.Word{
				Start: float64(wordStart) / 1000,
				Text:  body[m[1]:end],
			})
		}
		if len(words) == 0 {
			continue
		}
		out = append(out, lyrics.EnhancedLine(float64(start)/1000, words, float64(start+dur)/1000))
	}
	return strings.Join(out, "\n")
}

// normalizeString 标准化字符串（转小写，去空格）
func normalizeString(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}

// containsIgnoreCase 忽略大小写和空格的包含关系检查
func containsIgnoreCase(s1, s2 string) bool {
	norm1, norm2 := normalizeString(s1), normalizeString(s2)
	if norm1 == "" || norm2 == "" {
		return false
	}
	return strings.Contains(norm1, norm2) || strings.Contains(norm2, norm1)
}
