// Package artifact reads checksum sidecars of built artifacts and builds
// their download links.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrMissingChecksumFile is returned when an artifact has no checksum sidecar.
var ErrMissingChecksumFile = errors.New("missing checksum file")

// Checksums reads checksum sidecar files from the artifacts directory.
type Checksums struct {
	dir    string
	verify bool
}

// NewChecksums creates a reader for dir. With verify set, the sidecar content
// is compared against the artifact's actual SHA256 whenever the artifact
// itself is present.
func NewChecksums(dir string, verify bool) *Checksums {
	return &Checksums{dir: dir, verify: verify}
}

// Read returns the checksum recorded for artifactFile in checksumFile.
func (c *Checksums) Read(artifactFile, checksumFile string) (string, error) {
	path := filepath.Join(c.dir, checksumFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrMissingChecksumFile, path)
		}
		return "", fmt.Errorf("read checksum file %q: %w", path, err)
	}
	sum := strings.TrimSpace(string(data))

	if c.verify {
		if err := c.verifyArtifact(filepath.Join(c.dir, artifactFile), sum); err != nil {
			return "", err
		}
	}
	return sum, nil
}

func (c *Checksums) verifyArtifact(path, expected string) error {
	actual, err := FileSHA256(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("path", path).Msg("artifact not present, skipping checksum verification")
			return nil
		}
		return fmt.Errorf("computing hash for %q: %w", path, err)
	}
	if !strings.EqualFold(actual, expected) {
		return fmt.Errorf("checksum mismatch for %q: sidecar has %s, file has %s", path, expected, actual)
	}
	log.Debug().Str("path", path).Msg("artifact checksum verified")
	return nil
}

// FileSHA256 computes the SHA256 hash of the file at the specified path and returns it as a hex string.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
