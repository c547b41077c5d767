package providers

import (
	"testing"
	"time"

	"lyrics-search/pkg/music"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	tests := []struct {
		in   string
		want music.ProviderName
	}{
		{"lrclib", music.ProviderLRCLib},
		{" LRCLib ", music.ProviderLRCLib},
		{"163", music.ProviderNetEase},
		{"netease", music.ProviderNetEase},
		{"qq", music.ProviderQQMusic},
	}
	for _, tt := range tests {
		got, err := ByName(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ByName("kugou")
	assert.Error(t, err)
}

func TestCreateAll(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		list, err := CreateAll(nil, time.Second)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "LRCLib", list[0].Name())
		assert.Equal(t, "NetEase Cloud Music", list[1].Name())
	})

	t.Run("CustomOrderDeduplicated", func(t *testing.T) {
		list, err := CreateAll([]string{"qq", "lrclib", "qqmusic"}, time.Second)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "QQ Music", list[0].Name())
		assert.Equal(t, "LRCLib", list[1].Name())
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := CreateAll([]string{"lrclib", "kugou"}, time.Second)
		assert.Error(t, err)
	})
}
