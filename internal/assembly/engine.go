// Package assembly publishes a build into every feed document that carries
// its major version.
package assembly

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/sap-gg/clifeed/internal/build"
	"github.com/sap-gg/clifeed/internal/feed"
	"github.com/sap-gg/clifeed/internal/release"
	"github.com/sap-gg/clifeed/internal/strategy"
	"github.com/sap-gg/clifeed/internal/tables"
)

// Loader loads a feed document by file name.
type Loader interface {
	Load(ctx context.Context, name string) (*feed.Document, error)
}

// Engine performs the publish run over the feed identity table.
type Engine struct {
	tables   *tables.Tables
	registry *strategy.Registry
	resolver *release.Resolver
	loader   Loader
	dryRun   bool
}

// NewEngine creates a new publish engine. All parameters are required.
func NewEngine(
	tbl *tables.Tables,
	registry *strategy.Registry,
	resolver *release.Resolver,
	loader Loader,
	dryRun bool,
) (*Engine, error) {
	if tbl == nil {
		return nil, fmt.Errorf("tables are required")
	}
	if registry == nil {
		return nil, fmt.Errorf("strategy registry is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("version resolver is required")
	}
	if loader == nil {
		return nil, fmt.Errorf("feed loader is required")
	}
	return &Engine{
		tables:   tbl,
		registry: registry,
		resolver: resolver,
		loader:   loader,
		dryRun:   dryRun,
	}, nil
}

// PublishAll publishes info into every feed that lists tags for its major
// version. Feeds are independent: it continues with the others when one
// fails, and returns a combined error.
func (e *Engine) PublishAll(ctx context.Context, info *build.Info) ([]*Result, error) {
	var (
		results  []*Result
		combined error
	)
	for i := range e.tables.Feeds {
		f := &e.tables.Feeds[i]
		if len(f.TagsFor(info.MajorVersion)) == 0 {
			log.Debug().Str("feed", f.Name).Int("major", info.MajorVersion).
				Msg("feed does not publish this major version, skipping")
			continue
		}

		result, err := e.Publish(ctx, f, info)
		results = append(results, result)
		if err != nil {
			log.Warn().Err(err).Str("feed", f.Name).Int("major", info.MajorVersion).
				Msg("feed discarded")
			combined = errors.Join(combined, fmt.Errorf("feed %s: %w", f.Name, err))
		} else {
			log.Info().Str("feed", f.Name).Msgf("feed %s", result.State)
		}
	}
	return results, combined
}

// Publish loads one feed, applies every tag of info's major version to a copy
// and writes the copy only when all tags succeeded.
func (e *Engine) Publish(ctx context.Context, f *tables.Feed, info *build.Info) (*Result, error) {
	result := &Result{
		Feed:  f.Name,
		State: StateLoaded,
		Path:  filepath.Join(info.ArtifactsDir, f.Name),
	}

	s, ok := e.registry.For(f.Format)
	if !ok {
		result.State = StateAborted
		return result, fmt.Errorf("no strategy for feed format %q", f.Format)
	}

	doc, err := e.loader.Load(ctx, f.Name)
	if err != nil {
		result.State = StateAborted
		return result, err
	}
	result.Before = doc

	// the loaded document stays untouched until every tag succeeded
	work := doc.Clone()
	for _, name := range f.TagsFor(info.MajorVersion) {
		outcome := &TagOutcome{Tag: name, Major: info.MajorVersion, State: StateLoaded}
		result.Tags = append(result.Tags, outcome)

		if err := e.publishTag(ctx, work, f, s, info, e.tables.Tag(name), outcome); err != nil {
			log.Warn().Err(err).
				Str("feed", f.Name).
				Str("tag", name).
				Int("major", info.MajorVersion).
				Stringer("state", outcome.Failed).
				Msg("tag aborted")
			continue
		}
		log.Info().
			Str("feed", f.Name).
			Str("tag", name).
			Str("release", outcome.Version).
			Msg("release inserted")
	}
	result.After = work

	if !result.Complete() {
		result.State = StateAborted
		return result, result.Err()
	}

	result.State = StateInserted
	if e.dryRun {
		log.Info().Str("feed", f.Name).Str("path", result.Path).Msg("dry run, not writing feed")
		return result, nil
	}
	if err := feed.Store(result.Path, work); err != nil {
		result.State = StateAborted
		return result, err
	}
	result.State = StatePersisted
	return result, nil
}

func (e *Engine) publishTag(
	ctx context.Context,
	work *feed.Document,
	f *tables.Feed,
	s strategy.FormatStrategy,
	info *build.Info,
	tag tables.Tag,
	outcome *TagOutcome,
) error {
	current, err := work.CurrentRelease(tag.Name)
	if err != nil {
		return outcome.abort(err)
	}
	entry, err := work.Entry(current)
	if err != nil {
		return outcome.abort(fmt.Errorf("%w: %v", feed.ErrMissingTagPointer, err))
	}
	outcome.advance(StateEntryLocated)
	log.Debug().Str("feed", f.Name).Str("tag", tag.Name).Str("from", current).
		Str("strategy", s.Name()).Msg("updating release entry")

	updated, err := s.Update(ctx, entry, info, tag)
	if err != nil {
		return outcome.abort(err)
	}
	outcome.advance(StateEntryUpdated)

	next, ok := e.resolver.NextVersion(f.Name, work.ReleaseKeys(), info.MajorVersion)
	if !ok {
		return outcome.abort(fmt.Errorf("%w: major %d in %s", release.ErrNoReleaseStream, info.MajorVersion, f.Name))
	}
	outcome.Version = next + tag.VersionSuffix
	outcome.advance(StateVersionAssigned)

	if err := work.Insert(outcome.Version, updated); err != nil {
		return outcome.abort(err)
	}
	if err := work.PointTag(tag.PrereleaseName(), outcome.Version); err != nil {
		return outcome.abort(err)
	}
	outcome.advance(StateInserted)
	return nil
}

// NextVersion returns the release key the next publish of major into the
// named feed would use, without changing anything.
func (e *Engine) NextVersion(ctx context.Context, name string, major int) (string, error) {
	doc, err := e.loader.Load(ctx, name)
	if err != nil {
		return "", err
	}
	next, ok := e.resolver.NextVersion(name, doc.ReleaseKeys(), major)
	if !ok {
		return "", fmt.Errorf("%w: major %d in %s", release.ErrNoReleaseStream, major, name)
	}
	return next, nil
}
