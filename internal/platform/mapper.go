// Package platform maps feed platform names to runtime identifiers and
// artifact file names.
package platform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sap-gg/clifeed/internal/tables"
)

// ErrUnmappedPlatform is returned for operating systems or architectures
// missing from the platform tables.
var ErrUnmappedPlatform = errors.New("unmapped platform")

// Mapper resolves (os, architecture) pairs against fixed tables.
type Mapper struct {
	operatingSystems map[string]string
	architectures    map[string]string
	product          string
	minifiedMarker   string
	checksumSuffix   string
}

// NewMapper creates a Mapper from the platform tables. Lookups are case-insensitive.
func NewMapper(t tables.Platforms) *Mapper {
	return &Mapper{
		operatingSystems: lowerKeys(t.OperatingSystems),
		architectures:    lowerKeys(t.Architectures),
		product:          t.Product,
		minifiedMarker:   t.MinifiedMarker,
		checksumSuffix:   t.ChecksumSuffix,
	}
}

// Resolve returns the runtime identifier, e.g. "linux-x64" or "min.win-x86".
func (m *Mapper) Resolve(os, architecture string, minified bool) (string, error) {
	osValue, ok := m.operatingSystems[strings.ToLower(os)]
	if !ok {
		return "", fmt.Errorf("%w: operating system %q", ErrUnmappedPlatform, os)
	}
	archValue, ok := m.architectures[strings.ToLower(architecture)]
	if !ok {
		return "", fmt.Errorf("%w: architecture %q", ErrUnmappedPlatform, architecture)
	}

	rid := osValue + "-" + archValue
	if minified {
		rid = m.minifiedMarker + rid
	}
	return rid, nil
}

// ArtifactFileName returns "<product>.<rid><suffix>.<version>.zip".
func (m *Mapper) ArtifactFileName(os, architecture, version string, minified bool, suffix string) (string, error) {
	rid, err := m.Resolve(os, architecture, minified)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.%s%s.%s.zip", m.product, rid, suffix, version), nil
}

// ChecksumFileName returns the sidecar file name for an artifact file name.
func (m *Mapper) ChecksumFileName(artifactFileName string) string {
	return artifactFileName + m.checksumSuffix
}

func lowerKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}
