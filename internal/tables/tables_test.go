package tables

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTables(t *testing.T) {
	tbl, err := Default(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "osx", tbl.Platforms.OperatingSystems["macos"])
	assert.Equal(t, "arm64", tbl.Platforms.Architectures["arm64"])
	assert.Equal(t, ".sha2", tbl.Platforms.ChecksumSuffix)

	assert.Equal(t, "Microsoft.Azure.Functions.Worker.ItemTemplates.NetCore", tbl.Templates.Dotnet.Item["net6-isolated"])
	assert.Equal(t, "Microsoft.Azure.Functions.Worker.ProjectTemplates", tbl.Templates.Dotnet.Project["net6-isolated"])

	t.Run("feed identity table", func(t *testing.T) {
		current, ok := tbl.Feed("cli-feed-v4.json")
		require.True(t, ok)
		assert.Equal(t, FormatCurrent, current.Format)
		assert.Equal(t, []string{"v4", "v4-inproc"}, current.TagsFor(4))

		limited, ok := tbl.Feed("cli-feed-v3-2.json")
		require.True(t, ok)
		assert.Equal(t, FormatLegacy, limited.Format)
		assert.Equal(t, []string{"v2"}, limited.TagsFor(2))
		assert.Nil(t, limited.TagsFor(3))

		_, ok = tbl.Feed("unknown.json")
		assert.False(t, ok)
	})

	t.Run("tag options", func(t *testing.T) {
		inproc := tbl.Tag("v4-inproc")
		assert.True(t, inproc.InprocVersion)
		assert.Equal(t, "-inproc", inproc.VersionSuffix)
		assert.Equal(t, "_inproc", inproc.FileSuffix)
		assert.Equal(t, "v4-inproc-prerelease", inproc.PrereleaseName())

		plain := tbl.Tag("v4")
		assert.Equal(t, TagOptions{}, plain.TagOptions)
	})
}

func TestLoadOverride(t *testing.T) {
	ctx := context.Background()

	t.Run("YAML override merges maps and replaces lists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tables.yaml")
		content := `
templates:
  dotnet:
    item:
      net10-isolated: Example.ItemTemplates
    project:
      net10-isolated: Example.ProjectTemplates
feeds:
  - name: cli-feed-v5.json
    format: current
    streams:
      - major: 5
        tags: [v5]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		tbl, err := Load(ctx, path)
		require.NoError(t, err)

		assert.Equal(t, "Example.ItemTemplates", tbl.Templates.Dotnet.Item["net10-isolated"])
		assert.Equal(t, "Microsoft.Azure.Functions.Worker.ItemTemplates.NetCore", tbl.Templates.Dotnet.Item["net8-isolated"])
		require.Len(t, tbl.Feeds, 1)
		assert.Equal(t, "cli-feed-v5.json", tbl.Feeds[0].Name)
	})

	t.Run("TOML override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tables.toml")
		content := `
[links]
packageIndex = "http://127.0.0.1:8080/flat"

[platforms.architectures]
riscv64 = "riscv64"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		tbl, err := Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:8080/flat", tbl.Links.PackageIndex)
		assert.Equal(t, "riscv64", tbl.Platforms.Architectures["riscv64"])
		assert.Equal(t, "x64", tbl.Platforms.Architectures["x64"])
	})

	t.Run("invalid feed format fails validation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tables.yaml")
		content := `
feeds:
  - name: cli-feed-v9.json
    format: future
    streams:
      - major: 9
        tags: [v9]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		_, err := Load(ctx, path)
		assert.Error(t, err)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tables.yaml")
		require.NoError(t, os.WriteFile(path, []byte("platfroms: {}\n"), 0o644))

		_, err := Load(ctx, path)
		assert.Error(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tables.ini")
		require.NoError(t, os.WriteFile(path, []byte("x=1"), 0o644))

		_, err := Load(ctx, path)
		assert.ErrorContains(t, err, "unsupported tables override format")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(ctx, filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
