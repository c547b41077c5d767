package music

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ProviderName 歌词提供商类型
type ProviderName string

const (
	// ProviderLRCLib LRCLib歌词库
	ProviderLRCLib ProviderName = "lrclib"
	// ProviderNetEase 网易云音乐
	ProviderNetEase ProviderName = "netease"
	// ProviderQQMusic QQ音乐
	ProviderQQMusic ProviderName = "qqmusic"
)

func logger() *zerolog.Logger {
	l := log.With().Str("component", "music-manager").Logger()
	return &l
}

// CallObserver 记录每一次提供商调用的结果
type CallObserver interface {
	ObserveProviderCall(provider string, enhanced bool, outcome string)
}

// Outcome values passed to CallObserver.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Manager 按顺序尝试多个提供商
type Manager struct {
	providers []Provider
	parser    QueryParser
	observer  CallObserver
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithQueryParser 使用解析器在搜索前拆分查询
func WithQueryParser(p QueryParser) ManagerOption {
	return func(m *Manager) { m.parser = p }
}

// WithObserver reports every provider call to o.
func WithObserver(o CallObserver) ManagerOption {
	return func(m *Manager) { m.observer = o }
}

// NewManager 创建新的歌词管理器
func NewManager(providers []Provider, opts ...ManagerOption) *Manager {
	m := &Manager{providers: providers}
	for _, opt := range opts {
		opt(m)
	}

	if len(providers) == 0 {
		logger().Warn().Msg("No lyrics providers configured")
		return m
	}

	logger().Info().
		Int("provider_count", len(providers)).
		Strs("providers", m.ProviderNames()).
		Bool("query_parser", m.parser != nil).
		Msg("Lyrics manager initialized")
	return m
}

// Search 搜索歌词，支持多提供商回退。
// 只要有一个提供商明确返回 ErrNotFound，整体结果就是 ErrNotFound；
// 只有全部提供商都出错时才返回错误。
func (m *Manager) Search(ctx context.Context, query string, enhanced bool) (string, error) {
	if len(m.providers) == 0 {
		return "", errors.New("no lyrics providers available")
	}

	q := m.buildQuery(ctx, query)
	if q.Text == "" {
		logger().Debug().Msg("Empty query, nothing to search")
		return "", ErrNotFound
	}

	var (
		lastErr  error
		notFound bool
	)
	for i, provider := range m.providers {
		logger().Debug().
			Str("provider", provider.Name()).
			Str("query", q.Text).
			Bool("enhanced", enhanced).
			Int("attempt", i+1).
			Int("total_providers", len(m.providers)).
			Msg("Trying provider")

		text, err := provider.Search(ctx, q, enhanced)
		if err == nil && strings.TrimSpace(text) != "" {
			m.observe(provider.Name(), enhanced, OutcomeFound)
			logger().Info().
				Str("provider", provider.Name()).
				Bool("enhanced", enhanced).
				Int("length", len(text)).
				Msg("Successfully got lyrics")
			return text, nil
		}

		if err == nil || errors.Is(err, ErrNotFound) {
			m.observe(provider.Name(), enhanced, OutcomeNotFound)
			notFound = true
			continue
		}

		m.observe(provider.Name(), enhanced, OutcomeError)
		logger().Warn().
			Str("provider", provider.Name()).
			Err(err).
			Msg("Provider failed")
		lastErr = err

		if ctx.Err() != nil {
			return "", fmt.Errorf("search for '%s' aborted: %w", q.Text, ctx.Err())
		}
	}

	if notFound {
		return "", ErrNotFound
	}
	return "", fmt.Errorf("all providers failed for '%s', last error: %w", q.Text, lastErr)
}

type parseMemoKey struct{}

type parseMemo struct {
	mu     sync.Mutex
	parsed map[string]Query
}

// WithParseMemo 返回的上下文中，同一查询文本只会被 QueryParser 解析一次
func WithParseMemo(ctx context.Context) context.Context {
	return context.WithValue(ctx, parseMemoKey{}, &parseMemo{parsed: make(map[string]Query)})
}

func (m *Manager) buildQuery(ctx context.Context, text string) Query {
	q := Query{Text: strings.TrimSpace(text)}
	if m.parser == nil || q.Text == "" {
		return q
	}

	memo, _ := ctx.Value(parseMemoKey{}).(*parseMemo)
	if memo != nil {
		memo.mu.Lock()
		defer memo.mu.Unlock()
		if cached, ok := memo.parsed[q.Text]; ok {
			return cached
		}
	}

	title, artist, err := m.parser.Parse(ctx, q.Text)
	if err != nil {
		logger().Warn().Err(err).Str("query", q.Text).Msg("Query parser failed, using free text")
	} else {
		q.Title, q.Artist = strings.TrimSpace(title), strings.TrimSpace(artist)
		logger().Debug().Str("title", q.Title).Str("artist", q.Artist).Msg("Parsed query")
	}

	if memo != nil {
		memo.parsed[q.Text] = q
	}
	return q
}

func (m *Manager) observe(provider string, enhanced bool, outcome string) {
	if m.observer != nil {
		m.observer.ObserveProviderCall(provider, enhanced, outcome)
	}
}

// ProviderNames 获取所有提供商名称
func (m *Manager) ProviderNames() []string {
	names := make([]string, len(m.providers))
	for i, provider := range m.providers {
		names[i] = provider.Name()
	}
	return names
}
