package cmd

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sap-gg/clifeed/internal/artifact"
	"github.com/sap-gg/clifeed/internal/assembly"
	"github.com/sap-gg/clifeed/internal/build"
	"github.com/sap-gg/clifeed/internal/diff"
	"github.com/sap-gg/clifeed/internal/feed"
	"github.com/sap-gg/clifeed/internal/nuget"
	"github.com/sap-gg/clifeed/internal/platform"
	"github.com/sap-gg/clifeed/internal/release"
	"github.com/sap-gg/clifeed/internal/strategy"
	"github.com/sap-gg/clifeed/internal/tables"
	"github.com/sap-gg/clifeed/internal/templ"
)

var generateFlags = struct {
	dryRun bool
}{}

// generateCmd publishes one build into every feed of its major version.
var generateCmd = &cobra.Command{
	Use:     "generate <artifacts-dir>",
	Short:   "Adds a new release for a build to the tooling feeds.",
	Long:    generateLongDescription,
	Example: generateExample,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		artifactsDir := args[0]

		spec, err := readBuildSpec(ctx, artifactsDir)
		if err != nil {
			return err
		}
		info, err := build.New(*spec, artifactsDir)
		if err != nil {
			return fmt.Errorf("reading build metadata: %w", err)
		}
		log.Info().
			Str("version", info.Version).
			Str("inprocVersion", info.InprocVersion).
			Int("major", info.MajorVersion).
			Msg("publishing build")

		engine, err := newEngine(ctx, artifactsDir, generateFlags.dryRun)
		if err != nil {
			return err
		}

		results, runErr := engine.PublishAll(ctx, info)
		for _, result := range results {
			if err := printFeedReport(result); err != nil {
				return err
			}
		}
		if runErr != nil {
			return fmt.Errorf("publishing feeds: %w", runErr)
		}

		if generateFlags.dryRun {
			log.Info().Msg("dry run, no feed was written")
		}
		return nil
	},
}

// readBuildSpec reads the build-info file, if any, and lets flags override it.
// A relative build-info path is resolved against the artifacts directory.
func readBuildSpec(ctx context.Context, artifactsDir string) (*build.Spec, error) {
	spec := &build.Spec{}
	if path := viper.GetString(BuildInfoKey); path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(artifactsDir, path)
		}
		fromFile, err := build.ReadSpec(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("reading build info: %w", err)
		}
		spec = fromFile
		log.Debug().Str("path", path).Msg("loaded build info")
	}

	if v := viper.GetString(BuildVersionKey); v != "" {
		spec.Version = v
	}
	if v := viper.GetString(BuildInprocVersionKey); v != "" {
		spec.InprocVersion = v
	}
	if v := viper.GetString(BuildIDKey); v != "" {
		spec.BuildID = v
	}

	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid build metadata: %w", err)
	}
	return spec, nil
}

// newEngine wires the publish engine from configuration.
func newEngine(ctx context.Context, artifactsDir string, dryRun bool) (*assembly.Engine, error) {
	tbl, err := tables.Load(ctx, viper.GetString(TablesFileKey))
	if err != nil {
		return nil, fmt.Errorf("loading lookup tables: %w", err)
	}

	bypass := bypassLinkValidation()
	if bypass {
		log.Warn().Msg("download link validation is bypassed")
	}

	renderer := templ.NewURLRenderer()
	kit := strategy.Toolkit{
		Mapper:    platform.NewMapper(tbl.Platforms),
		Checksums: artifact.NewChecksums(artifactsDir, viper.GetBool(ChecksumsVerifyKey)),
		Links: artifact.NewLinks(renderer, tbl.Links.Download,
			artifact.NewLinkValidator(http.DefaultClient, bypass)),
		Templates: nuget.NewClient(tbl.Links.PackageIndex, tbl.Links.Package, renderer, http.DefaultClient),
	}

	registry, err := strategy.NewDefaultRegistry(kit, tbl.Templates)
	if err != nil {
		return nil, fmt.Errorf("creating strategy registry: %w", err)
	}

	source := feed.NewSource(viper.GetString(FeedsSourceKey), http.DefaultClient)
	engine, err := assembly.NewEngine(tbl, registry, release.NewResolver(), source, dryRun)
	if err != nil {
		return nil, fmt.Errorf("creating publish engine: %w", err)
	}
	return engine, nil
}

func printFeedReport(result *assembly.Result) error {
	if result.Before == nil || result.After == nil {
		color.HiRed("! %s (not loaded)", result.Feed)
		return nil
	}

	report, err := diff.Compare(result.Before, result.After)
	if err != nil {
		return fmt.Errorf("comparing %s: %w", result.Feed, err)
	}

	switch result.State {
	case assembly.StatePersisted:
		color.Cyan("%s -> %s", result.Feed, result.Path)
	case assembly.StateAborted:
		color.HiRed("%s (discarded)", result.Feed)
	default:
		color.Cyan("%s (%s)", result.Feed, result.State)
	}

	for _, path := range report.SortedPaths() {
		change := report.Changes[path]
		switch change.Type {
		case diff.Created:
			color.Green("  + %s", path)
		case diff.Modified:
			if change.Old != change.New {
				color.Yellow("  ~ %s (%s -> %s)", path, change.Old, change.New)
			} else {
				color.Yellow("  ~ %s", path)
			}
		case diff.Removed:
			color.Red("  - %s", path)
		case diff.Unchanged:
			// do nothing
		}
	}

	for _, tag := range result.Tags {
		if tag.Err != nil {
			color.Red("  ! %s: %v", tag.Tag, tag.Err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("version", "", "core tools version of the build, e.g. 4.0.5504")
	_ = viper.BindPFlag(BuildVersionKey, generateCmd.Flags().Lookup("version"))

	generateCmd.Flags().String("inproc-version", "", "in-process variant version of the build")
	_ = viper.BindPFlag(BuildInprocVersionKey, generateCmd.Flags().Lookup("inproc-version"))

	generateCmd.Flags().String("build-id", "", "numeric build id used in CDN paths")
	_ = viper.BindPFlag(BuildIDKey, generateCmd.Flags().Lookup("build-id"))

	generateCmd.Flags().StringP("build-info", "b", "",
		"build info file (json, yaml, toml or properties), relative to the artifacts directory")
	_ = viper.BindPFlag(BuildInfoKey, generateCmd.Flags().Lookup("build-info"))

	generateCmd.Flags().Bool("verify-checksums", false,
		"compare checksum sidecars with the artifacts next to them")
	_ = viper.BindPFlag(ChecksumsVerifyKey, generateCmd.Flags().Lookup("verify-checksums"))

	generateCmd.Flags().String(bypassValidationFlag, "",
		"set to 1 to skip the download link reachability check")
	generateCmd.Flags().Lookup(bypassValidationFlag).NoOptDefVal = "1"
	_ = viper.BindPFlag(BypassValidationKey, generateCmd.Flags().Lookup(bypassValidationFlag))

	generateCmd.Flags().BoolVarP(&generateFlags.dryRun, "dry-run", "n", false,
		"run the full update and print the changes without writing any feed")
}

const (
	generateLongDescription = `The generate command adds a release for a freshly built core tools version to
every feed that carries its major version.

For each feed and each tag of the major version it clones the entry the tag
currently points at, recomputes download links, checksums and template URLs,
inserts it under the next release key and repoints "<tag>-prerelease" to it.
A feed is written to <artifacts-dir>/<feed name> only if all of its tags
succeeded.`

	generateExample = `
# Publish build 4.0.5504 with its in-process variant
clifeed generate ./artifacts --version 4.0.5504 --inproc-version 4.0.5505 --build-id 6789

# Read the build metadata from a file and preview the changes
clifeed generate ./artifacts -b build.yaml --dry-run`
)
