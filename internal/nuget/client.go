// Package nuget resolves template package versions against a NuGet flat
// container index.
package nuget

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/rs/zerolog/log"
)

type urlRenderer interface {
	RenderURL(content string, data any) (string, error)
}

type cacheKey struct {
	id    string
	major int
}

// Client looks up the latest version of a package within a major version and
// builds its download URL. Lookups are memoized for the lifetime of the client.
type Client struct {
	indexURL        string
	packageTemplate string
	renderer        urlRenderer
	http            *http.Client
	cache           map[cacheKey]string
}

// NewClient creates a Client. indexURL is the flat container base, e.g.
// "https://api.nuget.org/v3-flatcontainer"; packageTemplate is rendered with
// .PackageID and .Version.
func NewClient(indexURL, packageTemplate string, renderer urlRenderer, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		indexURL:        strings.TrimRight(indexURL, "/"),
		packageTemplate: packageTemplate,
		renderer:        renderer,
		http:            httpClient,
		cache:           make(map[cacheKey]string),
	}
}

type versionIndex struct {
	Versions []string `json:"versions"`
}

// LatestVersion returns the greatest published version of id whose major
// component equals major.
func (c *Client) LatestVersion(ctx context.Context, id string, major int) (string, error) {
	key := cacheKey{id: strings.ToLower(id), major: major}
	if v, ok := c.cache[key]; ok {
		return v, nil
	}

	url := fmt.Sprintf("%s/%s/index.json", c.indexURL, key.id)
	log.Debug().Str("url", url).Msg("fetching package index")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating http request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching package index of %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching package index of %s: unexpected http status: %s", id, resp.Status)
	}

	var index versionIndex
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return "", fmt.Errorf("decoding package index of %s: %w", id, err)
	}

	var latest *version.Version
	for _, raw := range index.Versions {
		v, err := version.NewVersion(raw)
		if err != nil {
			log.Trace().Str("package", id).Str("version", raw).Msg("skipping unparseable package version")
			continue
		}
		if v.Segments()[0] != major {
			continue
		}
		if latest == nil || v.GreaterThan(latest) {
			latest = v
		}
	}
	if latest == nil {
		return "", fmt.Errorf("package %s has no version with major %d", id, major)
	}

	c.cache[key] = latest.Original()
	return latest.Original(), nil
}

// TemplateURL returns the download URL of the latest version of id within major.
func (c *Client) TemplateURL(ctx context.Context, id string, major int) (string, error) {
	v, err := c.LatestVersion(ctx, id, major)
	if err != nil {
		return "", err
	}
	return c.renderer.RenderURL(c.packageTemplate, struct {
		PackageID string
		Version   string
	}{PackageID: id, Version: v})
}
