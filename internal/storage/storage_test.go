package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	key := NewKey(PrefixDocuments, "Lab Results.PDF")
	assert.True(t, strings.HasPrefix(key, "documents/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.True(t, validKey(key))

	assert.False(t, strings.Contains(NewKey(PrefixProfile, "noext"), "."))
}

func TestValidKey(t *testing.T) {
	assert.False(t, validKey(""))
	assert.False(t, validKey("../etc/passwd"))
	assert.False(t, validKey("/etc/passwd"))
	assert.False(t, validKey(`documents\..\x`))
	assert.True(t, validKey("profile/abc.png"))
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	key := NewKey(PrefixDocuments, "notes.txt")
	require.NoError(t, store.Save(ctx, key, strings.NewReader("hello"), 5, "text/plain"))

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Delete(ctx, key))

	assert.ErrorIs(t, store.Save(ctx, "../escape", strings.NewReader("x"), 1, ""), ErrInvalidKey)
}
