package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type values = map[string]any

func TestOverlay(t *testing.T) {
	t.Run("overrides add and replace keys", func(t *testing.T) {
		base := values{"checksumSuffix": ".sha2", "product": "Azure.Functions.Cli"}
		merged := Overlay(base, values{"checksumSuffix": ".sha256", "minifiedMarker": "_min"})
		assert.Equal(t, values{
			"checksumSuffix": ".sha256",
			"product":        "Azure.Functions.Cli",
			"minifiedMarker": "_min",
		}, merged)
	})

	t.Run("mappings merge recursively", func(t *testing.T) {
		base := values{"platforms": values{"operatingSystems": values{"Linux": "linux", "Windows": "win"}}}
		merged := Overlay(base, values{"platforms": values{"operatingSystems": values{"FreeBSD": "freebsd"}}})
		assert.Equal(t, values{"platforms": values{"operatingSystems": values{
			"Linux": "linux", "Windows": "win", "FreeBSD": "freebsd",
		}}}, merged)
	})

	t.Run("later overrides win", func(t *testing.T) {
		merged := Overlay(values{"a": 1}, values{"a": 2}, values{"a": 3})
		assert.Equal(t, values{"a": 3}, merged)
	})

	t.Run("lists are replaced", func(t *testing.T) {
		merged := Overlay(values{"feeds": []any{"a.json", "b.json"}}, values{"feeds": []any{"c.json"}})
		assert.Equal(t, values{"feeds": []any{"c.json"}}, merged)
	})

	t.Run("null removes a key", func(t *testing.T) {
		base := values{"architectures": values{"x64": "x64", "arm64": "arm64"}}
		merged := Overlay(base, values{"architectures": values{"arm64": nil}})
		assert.Equal(t, values{"architectures": values{"x64": "x64"}}, merged)
	})

	t.Run("a mapping replaces a scalar", func(t *testing.T) {
		merged := Overlay(values{"links": "none"}, values{"links": values{"download": "x"}})
		assert.Equal(t, values{"links": values{"download": "x"}}, merged)
	})

	t.Run("inputs are not modified", func(t *testing.T) {
		base := values{"tags": values{"v4": "x"}}
		override := values{"tags": values{"v5": "y"}}

		merged := Overlay(base, override)
		merged["tags"].(values)["v6"] = "z"

		assert.Equal(t, values{"tags": values{"v4": "x"}}, base)
		assert.Equal(t, values{"tags": values{"v5": "y"}}, override)
	})
}
