package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sap-gg/clifeed/internal/jsonobj"
)

type platformView struct {
	OS           string `json:"OS,omitempty"`
	DownloadLink string `json:"downloadLink,omitempty"`
	Sha2         string `json:"sha2,omitempty"`
	Size         string `json:"size,omitempty"`
}

func mustParse(t *testing.T, s string) *jsonobj.Object {
	t.Helper()
	o, err := jsonobj.Parse([]byte(s))
	require.NoError(t, err)
	return o
}

func marshal(t *testing.T, o *jsonobj.Object) string {
	t.Helper()
	data, err := o.MarshalJSON()
	require.NoError(t, err)
	return string(data)
}

func TestSelective(t *testing.T) {
	t.Run("refreshes only existing members", func(t *testing.T) {
		target := mustParse(t, `{"OS":"Linux","downloadLink":"old","custom":{"keep":1},"sha2":"old"}`)
		computed := platformView{OS: "Linux", DownloadLink: "new", Sha2: "abc", Size: "full"}

		require.NoError(t, Selective(target, computed))

		assert.Equal(t,
			`{"OS":"Linux","downloadLink":"new","custom":{"keep":1},"sha2":"abc"}`,
			marshal(t, target))
		assert.False(t, target.Has("size"), "fields missing from the target must not be added")
	})

	t.Run("matches names case-insensitively", func(t *testing.T) {
		target := mustParse(t, `{"DownloadLink":"old","SHA2":"old"}`)
		require.NoError(t, Selective(target, platformView{DownloadLink: "new", Sha2: "abc"}))
		assert.Equal(t, `{"DownloadLink":"new","SHA2":"abc"}`, marshal(t, target))
	})

	t.Run("empty computed fields leave the target alone", func(t *testing.T) {
		target := mustParse(t, `{"size":"minified","sha2":"old"}`)
		require.NoError(t, Selective(target, platformView{Sha2: "abc"}))
		assert.Equal(t, `{"size":"minified","sha2":"abc"}`, marshal(t, target))
	})

	t.Run("no matching names leaves the target byte-for-byte unchanged", func(t *testing.T) {
		input := `{"a":1.50,"b":{"c":[1, 2]}}`
		target := mustParse(t, input)
		require.NoError(t, Selective(target, platformView{DownloadLink: "x", Sha2: "y"}))
		assert.Equal(t, input, marshal(t, target))
	})

	t.Run("is idempotent", func(t *testing.T) {
		once := mustParse(t, `{"OS":"Windows","downloadLink":"old","extra":true}`)
		twice := once.Clone()
		computed := platformView{OS: "Windows", DownloadLink: "new"}

		require.NoError(t, Selective(once, computed))
		require.NoError(t, Selective(twice, computed))
		require.NoError(t, Selective(twice, computed))

		assert.Equal(t, marshal(t, once), marshal(t, twice))
	})

	t.Run("accepts nested objects as computed values", func(t *testing.T) {
		nested := mustParse(t, `{"net8-isolated":{"itemTemplates":"x","sdk":"1.0"}}`)
		target := mustParse(t, `{"dotnet":{},"python":{}}`)
		require.NoError(t, Selective(target, map[string]any{"dotnet": nested}))
		assert.Equal(t, `{"dotnet":{"net8-isolated":{"itemTemplates":"x","sdk":"1.0"}},"python":{}}`, marshal(t, target))
	})

	t.Run("rejects non-object computed values", func(t *testing.T) {
		target := mustParse(t, `{"a":1}`)
		assert.Error(t, Selective(target, []string{"a"}))
	})
}
