package storage

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveStreamWritesWithinLimit(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	name := GenerateName("profile", ".PNG")
	assert.True(t, strings.HasSuffix(name, ".png"))

	n, err := store.SaveStream(name, strings.NewReader("hello"), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	path, err := store.Path(name)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete(name))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveStreamRejectsOversizedInput(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.SaveStream("big.bin", strings.NewReader("0123456789abc"), 10)
	require.ErrorIs(t, err, ErrTooLarge)

	path, _ := store.Path("big.bin")
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestResolveRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Path("../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidName)
}
