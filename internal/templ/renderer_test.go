package templ

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderURL(t *testing.T) {
	r := NewURLRenderer()

	link := "https://cdn.example/public/{{ .Path }}/{{ .FileName }}"
	out, err := r.RenderURL(link, map[string]string{"Path": "4.0.1", "FileName": "a.zip"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/public/4.0.1/a.zip", out)

	t.Run("cached template renders new data", func(t *testing.T) {
		out, err := r.RenderURL(link, struct{ Path, FileName string }{"4.0.2", "b.zip"})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/public/4.0.2/b.zip", out)
	})

	t.Run("missing keys are errors", func(t *testing.T) {
		_, err := r.RenderURL(link, map[string]string{"Path": "4.0.1"})
		assert.Error(t, err)
	})

	t.Run("parse errors", func(t *testing.T) {
		_, err := r.RenderURL("{{ .Path", nil)
		assert.ErrorContains(t, err, "parse url template")
	})

	t.Run("result must be an absolute http url", func(t *testing.T) {
		for _, text := range []string{"{{ .Path }}/a.zip", "ftp://cdn.example/{{ .Path }}", "https:///{{ .Path }}"} {
			_, err := r.RenderURL(text, map[string]string{"Path": "4.0.1"})
			assert.ErrorContains(t, err, "not an absolute http(s) url", text)
		}
	})
}
