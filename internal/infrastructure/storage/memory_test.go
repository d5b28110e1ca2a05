package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("upload then exists and read back", func(t *testing.T) {
		store := NewMemoryObjectStorage()

		err := store.Upload(ctx, "invoices/0001-00000001.pdf", []byte("%PDF-1.4"), "application/pdf")
		require.NoError(t, err)

		exists, err := store.ObjectExists(ctx, "invoices/0001-00000001.pdf")
		require.NoError(t, err)
		assert.True(t, exists)

		data, ok := store.Object("invoices/0001-00000001.pdf")
		require.True(t, ok)
		assert.Equal(t, []byte("%PDF-1.4"), data)
	})

	t.Run("upload copies the caller's buffer", func(t *testing.T) {
		store := NewMemoryObjectStorage()
		buf := []byte("original")
		require.NoError(t, store.Upload(ctx, "k", buf, "text/plain"))

		buf[0] = 'X'
		data, _ := store.Object("k")
		assert.Equal(t, []byte("original"), data)
	})

	t.Run("download URL includes the key", func(t *testing.T) {
		store := NewMemoryObjectStorage()
		url, expiresAt, err := store.GenerateDownloadURL(ctx, "invoices/a.pdf", time.Hour)
		require.NoError(t, err)
		assert.Contains(t, url, "invoices/a.pdf")
		assert.True(t, expiresAt.After(time.Now()))
	})

	t.Run("delete removes the object", func(t *testing.T) {
		store := NewMemoryObjectStorage()
		require.NoError(t, store.Upload(ctx, "k", []byte("x"), "text/plain"))
		require.NoError(t, store.DeleteObject(ctx, "k"))

		exists, err := store.ObjectExists(ctx, "k")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("empty key is rejected everywhere", func(t *testing.T) {
		store := NewMemoryObjectStorage()
		assert.ErrorIs(t, store.Upload(ctx, "", nil, ""), ErrEmptyKey)
		_, _, err := store.GenerateDownloadURL(ctx, "", time.Hour)
		assert.ErrorIs(t, err, ErrEmptyKey)
		_, err = store.ObjectExists(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyKey)
		assert.ErrorIs(t, store.DeleteObject(ctx, ""), ErrEmptyKey)
	})
}
