package providers

import (
	"fmt"
	"strings"
	"time"

	"lyrics-search/pkg/lrclib"
	"lyrics-search/pkg/music"
	"lyrics-search/pkg/netease"
	"lyrics-search/pkg/qqmusic"

	"github.com/rs/zerolog/log"
)

// DefaultOrder 默认的提供商优先级
var DefaultOrder = []music.ProviderName{
	music.ProviderLRCLib,  // LRCLib 同时提供同步和纯文本歌词
	music.ProviderNetEase, // 网易云作为备选，支持逐字歌词
}

// Create 创建歌词提供商客户端
func Create(provider music.ProviderName, timeout time.Duration) (music.Provider, error) {
	switch provider {
	case music.ProviderLRCLib:
		log.Debug().Msg("Creating LRCLib client")
		return lrclib.NewClient(timeout), nil
	case music.ProviderNetEase:
		log.Debug().Msg("Creating NetEase music client")
		return netease.NewClient(timeout), nil
	case music.ProviderQQMusic:
		log.Debug().Msg("Creating QQ Music client")
		return qqmusic.NewClient(timeout), nil
	default:
		return nil, fmt.Errorf("unknown lyrics provider: %s", provider)
	}
}

// ByName 根据名称获取提供商
func ByName(name string) (music.ProviderName, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lrclib":
		return music.ProviderLRCLib, nil
	case "netease", "网易云", "163":
		return music.ProviderNetEase, nil
	case "qqmusic", "qq", "腾讯":
		return music.ProviderQQMusic, nil
	default:
		return "", fmt.Errorf("unknown provider name: %s", name)
	}
}

// CreateAll builds providers in the given order. Unknown names are an error;
// an empty list means DefaultOrder.
func CreateAll(names []string, timeout time.Duration) ([]music.Provider, error) {
	order := DefaultOrder
	if len(names) > 0 {
		order = make([]music.ProviderName, 0, len(names))
		for _, name := range names {
			p, err := ByName(name)
			if err != nil {
				return nil, err
			}
			order = append(order, p)
		}
	}

	result := make([]music.Provider, 0, len(order))
	seen := make(map[music.ProviderName]bool, len(order))
	for _, name := range order {
		if seen[name] {
			continue
		}
		seen[name] = true

		p, err := Create(name, timeout)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}
