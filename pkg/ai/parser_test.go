package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeModel) Name() string { return "fake" }

func (f *fakeModel) HandleText(ctx context.Context, msg string) (string, error) {
	f.prompt = msg
	return f.reply, f.err
}

func TestQueryParser(t *testing.T) {
	ctx := context.Background()

	t.Run("PlainJSON", func(t *testing.T) {
		model := &fakeModel{reply: `{"is_song": true, "title": "Yesterday", "artist": "The Beatles"}`}
		title, artist, err := NewQueryParser(model).Parse(ctx, "Yesterday The Beatles")

		require.NoError(t, err)
		assert.Equal(t, "Yesterday", title)
		assert.Equal(t, "The Beatles", artist)
		assert.Contains(t, model.prompt, "Query: Yesterday The Beatles")
	})

	t.Run("FencedJSON", func(t *testing.T) {
		model := &fakeModel{reply: "```json\n{\"is_song\": true, \"title\": \"Hey Jude\", \"artist\": \"\"}\n```"}
		title, artist, err := NewQueryParser(model).Parse(ctx, "Hey Jude")

		require.NoError(t, err)
		assert.Equal(t, "Hey Jude", title)
		assert.Empty(t, artist)
	})

	t.Run("NotASong", func(t *testing.T) {
		model := &fakeModel{reply: `{"is_song": false}`}
		_, _, err := NewQueryParser(model).Parse(ctx, "weather tomorrow")
		assert.ErrorIs(t, err, errNotSong)
	})

	t.Run("Garbage", func(t *testing.T) {
		model := &fakeModel{reply: "I think it is Yesterday"}
		_, _, err := NewQueryParser(model).Parse(ctx, "Yesterday")
		assert.Error(t, err)
	})

	t.Run("ModelError", func(t *testing.T) {
		cause := errors.New("quota")
		_, _, err := NewQueryParser(&fakeModel{err: cause}).Parse(ctx, "Yesterday")
		assert.ErrorIs(t, err, cause)
	})
}
