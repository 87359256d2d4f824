package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sap-gg/clifeed/internal/tables"
)

func newMapper(t *testing.T) *Mapper {
	t.Helper()
	tbl, err := tables.Default(context.Background())
	require.NoError(t, err)
	return NewMapper(tbl.Platforms)
}

func TestResolve(t *testing.T) {
	m := newMapper(t)

	testCases := []struct {
		os, arch string
		minified bool
		expected string
	}{
		{"linux", "x64", false, "linux-x64"},
		{"Linux", "x64", false, "linux-x64"},
		{"MacOS", "arm64", false, "osx-arm64"},
		{"macos", "x64", false, "osx-x64"},
		{"Windows", "x86", true, "min.win-x86"},
		{"windows", "x64", true, "min.win-x64"},
		{"WINDOWS", "arm64", false, "win-arm64"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			rid, err := m.Resolve(tc.os, tc.arch, tc.minified)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, rid)

			again, err := m.Resolve(tc.os, tc.arch, tc.minified)
			require.NoError(t, err)
			assert.Equal(t, rid, again)
		})
	}
}

func TestResolveTotalOverEnumerations(t *testing.T) {
	m := newMapper(t)
	for _, os := range []string{"linux", "macos", "windows"} {
		for _, arch := range []string{"x64", "x86", "arm64"} {
			for _, minified := range []bool{false, true} {
				rid, err := m.Resolve(os, arch, minified)
				require.NoError(t, err)
				assert.NotEmpty(t, rid)
			}
		}
	}
}

func TestResolveUnmapped(t *testing.T) {
	m := newMapper(t)

	for _, tc := range []struct{ os, arch string }{
		{"freebsd", "x64"},
		{"linux", "riscv64"},
		{"", "x64"},
		{"linux", ""},
	} {
		rid, err := m.Resolve(tc.os, tc.arch, true)
		assert.ErrorIs(t, err, ErrUnmappedPlatform)
		assert.Empty(t, rid)
	}
}

func TestArtifactFileName(t *testing.T) {
	m := newMapper(t)

	name, err := m.ArtifactFileName("Linux", "x64", "4.0.5504", false, "")
	require.NoError(t, err)
	assert.Equal(t, "Azure.Functions.Cli.linux-x64.4.0.5504.zip", name)
	assert.Equal(t, "Azure.Functions.Cli.linux-x64.4.0.5504.zip.sha2", m.ChecksumFileName(name))

	name, err = m.ArtifactFileName("Windows", "x86", "4.0.5504", true, "_inproc")
	require.NoError(t, err)
	assert.Equal(t, "Azure.Functions.Cli.min.win-x86_inproc.4.0.5504.zip", name)

	_, err = m.ArtifactFileName("solaris", "x64", "4.0.5504", false, "")
	assert.ErrorIs(t, err, ErrUnmappedPlatform)
}
