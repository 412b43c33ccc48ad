package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/menuboard/display-server-go/internal/errors"
)

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func upload(content []byte) memFile {
	return memFile{bytes.NewReader(content)}
}

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	mp4Bytes = append([]byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom"), bytes.Repeat([]byte{0}, 64)...)
)

func newTestStore(t *testing.T) *MediaStore {
	t.Helper()
	store, err := NewMediaStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestMediaStore_SaveImage(t *testing.T) {
	t.Run("stores png and returns uploads url", func(t *testing.T) {
		store := newTestStore(t)

		url, err := store.SaveImage(upload(pngBytes))

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, URLPrefix))
		assert.True(t, strings.HasSuffix(url, ".png"))

		name := strings.TrimPrefix(url, URLPrefix)
		stored, err := os.ReadFile(filepath.Join(store.Dir(), name))
		require.NoError(t, err)
		assert.Equal(t, pngBytes, stored)
	})

	t.Run("rejects video uploads", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.SaveImage(upload(mp4Bytes))

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeUnsupportedMedia, err.(*apperrors.AppError).Code)

		// rejected file must not linger on disk
		entries, err := os.ReadDir(store.Dir())
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("sniffs content, ignores declared type", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.SaveImage(upload([]byte("just some text pretending to be a png")))

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeUnsupportedMedia, err.(*apperrors.AppError).Code)
	})
}

func TestMediaStore_SaveMedia(t *testing.T) {
	t.Run("classifies png as image", func(t *testing.T) {
		store := newTestStore(t)

		url, mediaType, err := store.SaveMedia(upload(pngBytes))

		require.NoError(t, err)
		assert.Equal(t, "image", mediaType)
		assert.True(t, strings.HasSuffix(url, ".png"))
	})

	t.Run("classifies mp4 as video", func(t *testing.T) {
		store := newTestStore(t)

		url, mediaType, err := store.SaveMedia(upload(mp4Bytes))

		require.NoError(t, err)
		assert.Equal(t, "video", mediaType)
		assert.True(t, strings.HasSuffix(url, ".mp4"))
	})

	t.Run("rejects unsupported formats", func(t *testing.T) {
		store := newTestStore(t)

		_, _, err := store.SaveMedia(upload([]byte("%PDF-1.4 not a menu")))

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeUnsupportedMedia, err.(*apperrors.AppError).Code)
	})
}

func TestMediaStore_Remove(t *testing.T) {
	t.Run("deletes the stored file", func(t *testing.T) {
		store := newTestStore(t)
		url, err := store.SaveImage(upload(pngBytes))
		require.NoError(t, err)

		store.Remove(url)

		entries, err := os.ReadDir(store.Dir())
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("ignores urls outside the uploads prefix", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.SaveImage(upload(pngBytes))
		require.NoError(t, err)

		store.Remove("/etc/passwd")
		store.Remove(URLPrefix + "../escape.png")
		store.Remove("")

		entries, err := os.ReadDir(store.Dir())
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		store := newTestStore(t)

		store.Remove(URLPrefix + "never-existed.png")
	})
}

func TestMediaStore_ListURLs(t *testing.T) {
	t.Run("lists stored files as public urls", func(t *testing.T) {
		store := newTestStore(t)
		first, err := store.SaveImage(upload(pngBytes))
		require.NoError(t, err)
		second, _, err := store.SaveMedia(upload(mp4Bytes))
		require.NoError(t, err)

		urls, err := store.ListURLs(0)

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{first, second}, urls)
	})

	t.Run("empty store lists nothing", func(t *testing.T) {
		store := newTestStore(t)

		urls, err := store.ListURLs(0)

		require.NoError(t, err)
		assert.Empty(t, urls)
	})

	t.Run("minAge skips freshly written files", func(t *testing.T) {
		store := newTestStore(t)
		fresh, err := store.SaveImage(upload(pngBytes))
		require.NoError(t, err)
		old, _, err := store.SaveMedia(upload(mp4Bytes))
		require.NoError(t, err)
		backdate(t, store, old, -time.Hour)

		urls, err := store.ListURLs(15 * time.Minute)

		require.NoError(t, err)
		assert.Equal(t, []string{old}, urls)
		assert.NotContains(t, urls, fresh)
	})
}

// backdate rewrites a stored file's mtime by the given offset.
func backdate(t *testing.T, store *MediaStore, url string, offset time.Duration) {
	t.Helper()
	name := strings.TrimPrefix(url, URLPrefix)
	when := time.Now().Add(offset)
	require.NoError(t, os.Chtimes(filepath.Join(store.Dir(), name), when, when))
}
