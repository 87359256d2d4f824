// Package strategy recomputes the derived fields of a release entry for each
// feed schema generation.
package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/sap-gg/clifeed/internal/build"
	"github.com/sap-gg/clifeed/internal/jsonobj"
	"github.com/sap-gg/clifeed/internal/platform"
	"github.com/sap-gg/clifeed/internal/tables"
)

// ErrUnknownRuntimeLabel means a worker runtime label in the feed has no
// template package in the lookup tables, which are then stale.
var ErrUnknownRuntimeLabel = errors.New("unknown worker runtime label")

// FormatStrategy updates a cloned release entry of one schema generation.
type FormatStrategy interface {
	// Name returns a human-friendly strategy name for logging.
	Name() string

	// Update recomputes download links, checksums and template URLs of entry
	// for the build published under tag. Members it does not compute are
	// left as they are.
	Update(ctx context.Context, entry *jsonobj.Object, info *build.Info, tag tables.Tag) (*jsonobj.Object, error)
}

// ChecksumSource reads the recorded checksum of an artifact.
type ChecksumSource interface {
	Read(artifactFile, checksumFile string) (string, error)
}

// LinkBuilder returns the validated download link of an artifact file.
type LinkBuilder interface {
	Download(ctx context.Context, path, fileName string) (string, error)
}

// TemplateLocator returns the download URL of a template package for a major version.
type TemplateLocator interface {
	TemplateURL(ctx context.Context, packageID string, major int) (string, error)
}

// Toolkit bundles the collaborators the strategies compute fields with.
type Toolkit struct {
	Mapper    *platform.Mapper
	Checksums ChecksumSource
	Links     LinkBuilder
	Templates TemplateLocator
}

// artifactRequest identifies one artifact of a build.
type artifactRequest struct {
	OS           string
	Architecture string
	Version      string
	Path         string
	Suffix       string
	Minified     bool
}

// locate returns the download link and checksum of the requested artifact.
func (k *Toolkit) locate(ctx context.Context, req artifactRequest) (link, sha2 string, err error) {
	file, err := k.Mapper.ArtifactFileName(req.OS, req.Architecture, req.Version, req.Minified, req.Suffix)
	if err != nil {
		return "", "", err
	}
	sha2, err = k.Checksums.Read(file, k.Mapper.ChecksumFileName(file))
	if err != nil {
		return "", "", err
	}
	link, err = k.Links.Download(ctx, req.Path, file)
	if err != nil {
		return "", "", err
	}
	return link, sha2, nil
}

// Registry maps feed formats to strategies.
type Registry struct {
	byFormat map[tables.Format]FormatStrategy
}

// NewRegistry constructs a registry.
func NewRegistry(mappings map[tables.Format]FormatStrategy) (*Registry, error) {
	byFormat := make(map[tables.Format]FormatStrategy, len(mappings))
	for format, s := range mappings {
		if format == "" {
			return nil, fmt.Errorf("empty format key for strategy")
		}
		if s == nil {
			return nil, fmt.Errorf("strategy for format %q cannot be nil", format)
		}
		byFormat[format] = s
	}
	return &Registry{byFormat: byFormat}, nil
}

// NewDefaultRegistry registers the legacy and current strategies.
func NewDefaultRegistry(kit Toolkit, templates tables.Templates) (*Registry, error) {
	return NewRegistry(map[tables.Format]FormatStrategy{
		tables.FormatLegacy:  NewLegacyStrategy(kit, templates.Legacy),
		tables.FormatCurrent: NewCurrentStrategy(kit, templates.Dotnet),
	})
}

// For returns the strategy for a feed format.
func (r *Registry) For(format tables.Format) (FormatStrategy, bool) {
	s, ok := r.byFormat[format]
	return s, ok
}
