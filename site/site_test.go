package site

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plate "github.com/weegigs/steel-plate-go"
)

func TestEmbeddedSite(t *testing.T) {
	content, err := Load()
	require.NoError(t, err)

	t.Run("serves the bundled assets", func(t *testing.T) {
		for _, name := range []string{"src/app.js", "src/style.css", "src/favicon.png"} {
			data, ok := content.Asset(name)
			assert.True(t, ok, name)
			assert.NotEmpty(t, data, name)
		}
	})

	t.Run("renders the total into the index", func(t *testing.T) {
		page, err := content.RenderIndex(plate.Total(4294967295))
		require.NoError(t, err)
		assert.Contains(t, string(page), "4294967295")
		assert.Contains(t, string(page), "<!DOCTYPE html>")
	})
}

func TestSite(t *testing.T) {
	t.Run("requires an index template", func(t *testing.T) {
		_, err := New(fstest.MapFS{"src/a.js": {Data: []byte("a")}})
		assert.Error(t, err)
	})

	t.Run("rejects a broken template", func(t *testing.T) {
		_, err := New(fstest.MapFS{IndexTemplate: {Data: []byte("{{ .Total ")}})
		assert.Error(t, err)
	})

	t.Run("reports missing and invalid asset names", func(t *testing.T) {
		content, err := New(fstest.MapFS{
			IndexTemplate: {Data: []byte("<p>{{.}}</p>")},
			"src/a.js":    {Data: []byte("a")},
		})
		require.NoError(t, err)

		_, ok := content.Asset("src/missing.js")
		assert.False(t, ok)

		_, ok = content.Asset("../src/a.js")
		assert.False(t, ok)

		_, ok = content.Asset("src")
		assert.False(t, ok)

		data, ok := content.Asset("src/a.js")
		assert.True(t, ok)
		assert.Equal(t, []byte("a"), data)
	})

	t.Run("renders with any template", func(t *testing.T) {
		content, err := New(fstest.MapFS{IndexTemplate: {Data: []byte("<p>{{.}}</p>")}})
		require.NoError(t, err)

		page, err := content.RenderIndex(17)
		require.NoError(t, err)
		assert.Equal(t, "<p>17</p>", string(page))
	})
}
