package ws_test

import (
	"testing"
	"time"

	"github.com/larksuite/oapi-client/pkg/ws"
	"github.com/stretchr/testify/assert"
)

func TestChunkBuffer(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)

	t.Run("single part passes through", func(t *testing.T) {
		t.Parallel()

		b := ws.NewChunkBuffer(5 * time.Second)
		data, ok := b.Add("m", 1, 0, []byte("x"), now)
		assert.True(t, ok)
		assert.Equal(t, []byte("x"), data)
		assert.Zero(t, b.Pending())
	})

	t.Run("parts joined in seq order", func(t *testing.T) {
		t.Parallel()

		b := ws.NewChunkBuffer(5 * time.Second)

		_, ok := b.Add("m", 3, 2, []byte("c"), now)
		assert.False(t, ok)
		_, ok = b.Add("m", 3, 0, []byte("a"), now)
		assert.False(t, ok)
		assert.Equal(t, 1, b.Pending())

		data, ok := b.Add("m", 3, 1, []byte("b"), now)
		assert.True(t, ok)
		assert.Equal(t, []byte("abc"), data)
		assert.Zero(t, b.Pending())
	})

	t.Run("duplicate part does not complete", func(t *testing.T) {
		t.Parallel()

		b := ws.NewChunkBuffer(5 * time.Second)

		_, ok := b.Add("m", 2, 0, []byte("a"), now)
		assert.False(t, ok)
		_, ok = b.Add("m", 2, 0, []byte("a"), now)
		assert.False(t, ok)
	})

	t.Run("expired parts dropped", func(t *testing.T) {
		t.Parallel()

		b := ws.NewChunkBuffer(5 * time.Second)

		_, ok := b.Add("old", 2, 0, []byte("a"), now)
		assert.False(t, ok)

		_, ok = b.Add("new", 2, 0, []byte("x"), now.Add(6*time.Second))
		assert.False(t, ok)
		assert.Equal(t, 1, b.Pending())

		_, ok = b.Add("old", 2, 1, []byte("b"), now.Add(6*time.Second))
		assert.False(t, ok)
	})

	t.Run("out of range seq ignored", func(t *testing.T) {
		t.Parallel()

		b := ws.NewChunkBuffer(5 * time.Second)

		_, ok := b.Add("m", 2, 2, []byte("a"), now)
		assert.False(t, ok)
		assert.Zero(t, b.Pending())
	})
}
