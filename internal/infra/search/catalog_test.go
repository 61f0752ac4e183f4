package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFeedCatalog(t *testing.T) {
	t.Run("valid catalog", func(t *testing.T) {
		path := writeCatalog(t, `
feeds:
  - name: city-parks
    url: https://example.org/parks/events.rss
    confidence: 0.7
  - name: library
    url: https://example.org/library.atom
`)
		feeds, err := LoadFeedCatalog(path)
		require.NoError(t, err)
		require.Len(t, feeds, 2)

		assert.Equal(t, "city-parks", feeds[0].Name)
		assert.Equal(t, 0.7, feeds[0].Confidence)
		assert.Equal(t, 0.6, feeds[1].Confidence)
	})

	t.Run("missing url rejected", func(t *testing.T) {
		path := writeCatalog(t, "feeds:\n  - name: broken\n")
		_, err := LoadFeedCatalog(path)
		assert.Error(t, err)
	})

	t.Run("out of range confidence defaults", func(t *testing.T) {
		path := writeCatalog(t, `
feeds:
  - name: weird
    url: https://example.org/feed
    confidence: 3.5
`)
		feeds, err := LoadFeedCatalog(path)
		require.NoError(t, err)
		assert.Equal(t, 0.6, feeds[0].Confidence)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFeedCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeCatalog(t, "feeds: [}{")
		_, err := LoadFeedCatalog(path)
		assert.Error(t, err)
	})
}
