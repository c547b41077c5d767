package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lyrics-search/pkg/music"
)

var _ music.QueryParser = (*QueryParser)(nil)

var errNotSong = errors.New("model says the query is not a song")

// SongInfo 模型返回的歌曲信息
type SongInfo struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	IsSong bool   `json:"is_song"`
}

// QueryParser asks a model to split a free-text query into title and artist.
type QueryParser struct {
	client AiInterface
}

func NewQueryParser(client AiInterface) *QueryParser {
	return &QueryParser{client: client}
}

func formatQuerySong(query string) string {
	return fmt.Sprintf(`Extract the song from the search query below and answer with exactly this JSON: {"is_song": true, "title": "song title", "artist": "performer"}. If the query does not name a song, answer {"is_song": false}. Keep title and artist exactly as written, leave artist empty if the query has none, and never wrap the answer in markdown. Query: %s`, query)
}

func (p *QueryParser) Parse(ctx context.Context, text string) (string, string, error) {
	raw, err := p.client.HandleText(ctx, formatQuerySong(text))
	if err != nil {
		return "", "", fmt.Errorf("failed to query %s: %w", p.client.Name(), err)
	}

	info, err := decodeSongInfo(raw)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse %s response: %w", p.client.Name(), err)
	}
	if !info.IsSong || strings.TrimSpace(info.Title) == "" {
		return "", "", errNotSong
	}
	return info.Title, info.Artist, nil
}

// decodeSongInfo tolerates models that wrap the JSON in a markdown fence.
func decodeSongInfo(raw string) (SongInfo, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	var info SongInfo
	err := json.Unmarshal([]byte(strings.TrimSpace(s)), &info)
	return info, err
}
