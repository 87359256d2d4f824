// Package tables holds the lookup data the feed engine runs on: platform
// names, artifact naming, URL templates, template package ids, tag options
// and the feed identity table.
//
// The defaults are embedded; an override file is deep-merged on top so new
// feed generations can be described without rebuilding.
package tables

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/sap-gg/clifeed/internal"
	"github.com/sap-gg/clifeed/internal/merge"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Format selects the schema generation of a feed document.
type Format string

const (
	// FormatLegacy is the single-array feed shape (cli, sha2, standaloneCli).
	FormatLegacy Format = "legacy"
	// FormatCurrent is the multi-section feed shape (coreTools, workerRuntimes).
	FormatCurrent Format = "current"
)

// Tables is the complete set of lookup data.
type Tables struct {
	Platforms Platforms             `yaml:"platforms"`
	Links     Links                 `yaml:"links"`
	Templates Templates             `yaml:"templates"`
	Tags      map[string]TagOptions `yaml:"tags"`
	Feeds     []Feed                `yaml:"feeds" validate:"required,min=1,dive"`
}

// Platforms maps feed platform names to runtime identifier parts and
// describes how artifact files are named.
type Platforms struct {
	Product          string            `yaml:"product" validate:"required"`
	MinifiedMarker   string            `yaml:"minifiedMarker"`
	ChecksumSuffix   string            `yaml:"checksumSuffix" validate:"required"`
	OperatingSystems map[string]string `yaml:"operatingSystems" validate:"required,min=1"`
	Architectures    map[string]string `yaml:"architectures" validate:"required,min=1"`
}

// Links holds the URL templates.
type Links struct {
	// Download is rendered with .Path and .FileName.
	Download string `yaml:"download" validate:"required"`
	// Package is rendered with .PackageID and .Version.
	Package      string `yaml:"package" validate:"required"`
	PackageIndex string `yaml:"packageIndex" validate:"required,url"`
}

// Templates names the template packages each format publishes.
type Templates struct {
	Legacy LegacyTemplates `yaml:"legacy"`
	Dotnet DotnetTemplates `yaml:"dotnet"`
}

// LegacyTemplates are the fixed template packages of the legacy format.
type LegacyTemplates struct {
	Item    string `yaml:"item" validate:"required"`
	Project string `yaml:"project" validate:"required"`
}

// DotnetTemplates map a dotnet worker runtime label to its template packages.
type DotnetTemplates struct {
	Item    map[string]string `yaml:"item" validate:"required,min=1"`
	Project map[string]string `yaml:"project" validate:"required,min=1"`
}

// TagOptions describe how a tag differs from a plain release stream.
type TagOptions struct {
	// VersionSuffix is appended to the computed release key.
	VersionSuffix string `yaml:"versionSuffix"`
	// FileSuffix is appended to the runtime identifier in artifact file names.
	FileSuffix string `yaml:"fileSuffix"`
	// InprocVersion makes the tag publish the build's in-process version.
	InprocVersion bool `yaml:"inprocVersion"`
}

// Tag is a named release tag together with its options.
type Tag struct {
	Name string
	TagOptions
}

// PrereleaseName is the tag that gets repointed to newly published entries.
func (t Tag) PrereleaseName() string {
	return t.Name + "-prerelease"
}

// Feed is one row of the feed identity table.
type Feed struct {
	Name    string   `yaml:"name" validate:"required"`
	Format  Format   `yaml:"format" validate:"required,oneof=legacy current"`
	Streams []Stream `yaml:"streams" validate:"required,min=1,dive"`
}

// Stream lists the tags a feed publishes for one major version.
type Stream struct {
	Major int      `yaml:"major" validate:"required,min=1"`
	Tags  []string `yaml:"tags" validate:"required,min=1"`
}

// TagsFor returns the tags the feed publishes for major, or nil.
func (f *Feed) TagsFor(major int) []string {
	for _, s := range f.Streams {
		if s.Major == major {
			return s.Tags
		}
	}
	return nil
}

// Tag returns the named tag with its options; tags without options are plain.
func (t *Tables) Tag(name string) Tag {
	return Tag{Name: name, TagOptions: t.Tags[name]}
}

// Feed looks up a feed by file name.
func (t *Tables) Feed(name string) (*Feed, bool) {
	for i := range t.Feeds {
		if t.Feeds[i].Name == name {
			return &t.Feeds[i], true
		}
	}
	return nil, false
}

// Default returns the embedded tables.
func Default(ctx context.Context) (*Tables, error) {
	return Load(ctx, "")
}

// Load returns the embedded tables with the override file at path layered on
// top with merge.Overlay. An empty path loads the defaults.
func Load(ctx context.Context, path string) (*Tables, error) {
	var base map[string]any
	if err := yaml.Unmarshal(defaultsYAML, &base); err != nil {
		return nil, fmt.Errorf("parse default tables: %w", err)
	}

	merged := base
	if path != "" {
		override, err := readOverride(path)
		if err != nil {
			return nil, err
		}
		merged = merge.Overlay(base, override)
	}

	data, err := yaml.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode merged tables: %w", err)
	}

	var t Tables
	if err := internal.NewYAMLDecoder(bytes.NewReader(data)).DecodeContext(ctx, &t); err != nil {
		if internal.IsDecodeErrorAndPrint(err) {
			return nil, fmt.Errorf("parsing tables")
		}
		return nil, fmt.Errorf("decode tables: %w", err)
	}
	return &t, nil
}

func readOverride(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tables override %q: %w", path, err)
	}

	var override map[string]any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &override)
	case ".toml":
		err = toml.Unmarshal(data, &override)
	default:
		return nil, fmt.Errorf("unsupported tables override format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse tables override %q: %w", path, err)
	}
	return override, nil
}
