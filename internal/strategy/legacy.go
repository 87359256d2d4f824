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

var _ FormatStrategy = (*LegacyStrategy)(nil)

// The top-level cli link of legacy entries always points at this artifact.
const (
	legacyCliOS           = "windows"
	legacyCliArchitecture = "x86"
)

// LegacyStrategy updates entries of the single-array feed format.
type LegacyStrategy struct {
	kit       Toolkit
	templates tables.LegacyTemplates
}

// NewLegacyStrategy creates a LegacyStrategy.
func NewLegacyStrategy(kit Toolkit, templates tables.LegacyTemplates) *LegacyStrategy {
	return &LegacyStrategy{kit: kit, templates: templates}
}

// Name returns the name of the strategy.
func (s *LegacyStrategy) Name() string {
	return "legacy"
}

// Update recomputes the cli link, its checksum, every standalone cli entry and
// both template URLs.
func (s *LegacyStrategy) Update(ctx context.Context, entry *jsonobj.Object, info *build.Info, tag tables.Tag) (*jsonobj.Object, error) {
	var view LegacyEntry
	if err := entry.Decode(&view); err != nil {
		return nil, fmt.Errorf("decode legacy entry: %w", err)
	}

	version, err := info.VersionFor(tag.InprocVersion)
	if err != nil {
		return nil, err
	}
	locate := func(p *PlatformEntry, minified bool) (artifactRef, error) {
		link, sha2, err := s.kit.locate(ctx, artifactRequest{
			OS:           p.OSName(),
			Architecture: p.Architecture,
			Version:      version,
			Path:         version,
			Suffix:       tag.FileSuffix,
			Minified:     minified,
		})
		return artifactRef{DownloadLink: link, Sha2: sha2}, err
	}

	cli, err := locate(&PlatformEntry{OS: legacyCliOS, Architecture: legacyCliArchitecture}, true)
	if err != nil {
		return nil, fmt.Errorf("cli: %w", err)
	}
	view.Cli, view.Sha2 = cli.DownloadLink, cli.Sha2

	if err := updatePlatforms(view.StandaloneCli, "standaloneCli", legacyMinified, locate); err != nil {
		return nil, err
	}

	if view.ItemTemplates, err = s.kit.Templates.TemplateURL(ctx, s.templates.Item, info.MajorVersion); err != nil {
		return nil, fmt.Errorf("item templates: %w", err)
	}
	if view.ProjectTemplates, err = s.kit.Templates.TemplateURL(ctx, s.templates.Project, info.MajorVersion); err != nil {
		return nil, fmt.Errorf("project templates: %w", err)
	}

	if err := merge.Selective(entry, &view); err != nil {
		return nil, err
	}
	log.Debug().Str("strategy", s.Name()).Str("version", version).
		Int("standalone", len(view.StandaloneCli)).Msg("updated release entry")
	return entry, nil
}

// legacyMinified reports whether a standalone entry ships the minified build;
// only windows/x64 does.
func legacyMinified(p *PlatformEntry) bool {
	return strings.EqualFold(p.OSName(), "windows") && strings.EqualFold(p.Architecture, "x64")
}
