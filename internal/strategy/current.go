package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sap-gg/clifeed/internal/build"
	"github.com/sap-gg/clifeed/internal/jsonobj"
	"github.com/sap-gg/clifeed/internal/merge"
	"github.com/sap-gg/clifeed/internal/tables"
)

var _ FormatStrategy = (*CurrentStrategy)(nil)

const (
	dotnetRuntime = "dotnet"
	sizeMinified  = "minified"
)

// CurrentStrategy updates entries of the multi-section feed format.
type CurrentStrategy struct {
	kit       Toolkit
	templates tables.DotnetTemplates
}

// NewCurrentStrategy creates a CurrentStrategy.
func NewCurrentStrategy(kit Toolkit, templates tables.DotnetTemplates) *CurrentStrategy {
	return &CurrentStrategy{kit: kit, templates: templates}
}

// Name returns the name of the strategy.
func (s *CurrentStrategy) Name() string {
	return "current"
}

// Update recomputes every core tools entry and the template URLs of every
// dotnet runtime label. The tag selects the artifact version and file suffix.
func (s *CurrentStrategy) Update(ctx context.Context, entry *jsonobj.Object, info *build.Info, tag tables.Tag) (*jsonobj.Object, error) {
	var view CurrentEntry
	if err := entry.Decode(&view); err != nil {
		return nil, fmt.Errorf("decode current entry: %w", err)
	}

	version, err := info.VersionFor(tag.InprocVersion)
	if err != nil {
		return nil, err
	}
	path := info.CDNPath(version)

	locate := func(p *PlatformEntry, minified bool) (artifactRef, error) {
		link, sha2, err := s.kit.locate(ctx, artifactRequest{
			OS:           p.OSName(),
			Architecture: p.Architecture,
			Version:      version,
			Path:         path,
			Suffix:       tag.FileSuffix,
			Minified:     minified,
		})
		return artifactRef{DownloadLink: link, Sha2: sha2}, err
	}
	if err := updatePlatforms(view.CoreTools, "coreTools", currentMinified, locate); err != nil {
		return nil, err
	}

	if view.WorkerRuntimes == nil || !view.WorkerRuntimes.Has(dotnetRuntime) {
		return nil, fmt.Errorf("could not find %q worker runtime information in the feed", dotnetRuntime)
	}
	dotnet, err := view.WorkerRuntimes.Object(dotnetRuntime)
	if err != nil {
		return nil, fmt.Errorf("workerRuntimes: %w", err)
	}
	if err := s.updateDotnet(ctx, dotnet, info.MajorVersion); err != nil {
		return nil, err
	}
	if err := view.WorkerRuntimes.SetValue(dotnetRuntime, dotnet); err != nil {
		return nil, err
	}

	if err := merge.Selective(entry, &view); err != nil {
		return nil, err
	}
	log.Debug().Str("strategy", s.Name()).Str("version", version).Str("path", path).
		Int("coreTools", len(view.CoreTools)).Int("labels", dotnet.Len()).Msg("updated release entry")
	return entry, nil
}

// updateDotnet merges fresh template URLs into every runtime label object so
// the label's other members stay as they are.
func (s *CurrentStrategy) updateDotnet(ctx context.Context, dotnet *jsonobj.Object, major int) error {
	for _, label := range dotnet.Keys() {
		itemID, ok := s.templates.Item[label]
		if !ok {
			return fmt.Errorf("%w: %q has no item template package", ErrUnknownRuntimeLabel, label)
		}
		projectID, ok := s.templates.Project[label]
		if !ok {
			return fmt.Errorf("%w: %q has no project template package", ErrUnknownRuntimeLabel, label)
		}

		labelEntry, err := dotnet.Object(label)
		if err != nil {
			return fmt.Errorf("dotnet: %w", err)
		}

		var update DotnetEntry
		if update.ItemTemplates, err = s.kit.Templates.TemplateURL(ctx, itemID, major); err != nil {
			return fmt.Errorf("dotnet %s item templates: %w", label, err)
		}
		if update.ProjectTemplates, err = s.kit.Templates.TemplateURL(ctx, projectID, major); err != nil {
			return fmt.Errorf("dotnet %s project templates: %w", label, err)
		}

		if err := merge.Selective(labelEntry, update); err != nil {
			return fmt.Errorf("merge dotnet %s: %w", label, err)
		}
		if err := dotnet.SetValue(label, labelEntry); err != nil {
			return err
		}
	}
	return nil
}

// currentMinified reports whether the entry's size classifier says minified.
func currentMinified(p *PlatformEntry) bool {
	return strings.EqualFold(p.Size, sizeMinified)
}
