package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sap-gg/clifeed/internal"
)

// Source loads feed documents from a base location, either an http(s) URL
// or a local directory.
type Source struct {
	base   string
	client *http.Client
}

// NewSource creates a Source for base.
func NewSource(base string, client *http.Client) *Source {
	if client == nil {
		client = http.DefaultClient
	}
	return &Source{base: base, client: client}
}

// Location returns where the feed file name is read from.
func (s *Source) Location(name string) string {
	if internal.IsHTTPLocation(s.base) {
		return strings.TrimRight(s.base, "/") + "/" + name
	}
	return filepath.Join(s.base, name)
}

// Load reads and parses the named feed.
func (s *Source) Load(ctx context.Context, name string) (*Document, error) {
	location := s.Location(name)
	log.Debug().Str("location", location).Msg("loading feed")

	var (
		data []byte
		err  error
	)
	if internal.IsHTTPLocation(location) {
		data, err = s.fetch(ctx, location)
	} else {
		data, err = os.ReadFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("load feed %s: %w", location, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return doc, nil
}

func (s *Source) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating http request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected http status: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// Store writes doc to path as indented JSON. The document is written to a
// temporary file in the same directory first and then renamed over path.
func Store(path string, doc *Document) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating feed directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for feed: %w", err)
	}
	defer os.Remove(tmpFile.Name()) // clean up if it didn't get moved
	defer tmpFile.Close()

	if err := internal.NewJSONEncoder(tmpFile).Encode(doc); err != nil {
		return fmt.Errorf("encoding feed: %w", err)
	}
	if err := tmpFile.Chmod(internal.FeedFileMode); err != nil {
		return fmt.Errorf("setting feed file mode: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp feed file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("moving feed into place: %w", err)
	}

	log.Info().Str("path", path).Msg("feed written")
	return nil
}
