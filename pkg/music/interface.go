package music

import (
	"context"
	"errors"
)

// ErrNotFound 提供商没有找到匹配的歌词
var ErrNotFound = errors.New("lyrics not found")

// Query 一次歌词搜索的查询条件
type Query struct {
	// Text 原始的自由文本查询，例如 "Yesterday The Beatles"
	Text string
	// Title/Artist 由 QueryParser 解析得到，可能为空
	Title  string
	Artist string
}

// Structured 是否已解析出标题
func (q Query) Structured() bool {
	return q.Title != ""
}

// Provider 歌词提供商通用接口
type Provider interface {
	// Search 搜索歌词。enhanced 为 true 时优先返回时间同步歌词，否则返回纯文本。
	// 没有结果时返回 ErrNotFound。
	Search(ctx context.Context, q Query, enhanced bool) (string, error)

	// Name 获取提供商名称
	Name() string
}

// Searcher 对外暴露的歌词搜索能力
type Searcher interface {
	Search(ctx context.Context, query string, enhanced bool) (string, error)
}

// QueryParser 把自由文本拆分为标题和歌手
type QueryParser interface {
	Parse(ctx context.Context, text string) (title, artist string, err error)
}
