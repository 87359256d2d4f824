// Package release computes the next release key of a release stream.
package release

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-version"
	"github.com/rs/zerolog/log"
)

// ErrNoReleaseStream means a feed has no release for the requested major
// version, so the next one cannot be derived and must be seeded by hand.
var ErrNoReleaseStream = errors.New("no release stream to extend")

// Next returns the release key that follows the greatest existing key of the
// given major version: the minor component is bumped and patch reset to 0.
// Pre-release suffixes such as "-inproc" are ignored for ordering. It returns
// false when no key belongs to major.
func Next(keys []string, major int) (string, bool) {
	var (
		best  []int
		found bool
	)
	for _, key := range keys {
		v, err := version.NewVersion(key)
		if err != nil {
			log.Debug().Str("key", key).Err(err).Msg("skipping unparseable release key")
			continue
		}
		segments := v.Segments()
		if segments[0] != major {
			continue
		}
		if !found || compareTriple(segments, best) > 0 {
			best = segments
			found = true
		}
	}
	if !found {
		return "", false
	}
	return fmt.Sprintf("%d.%d.0", major, best[1]+1), true
}

// compareTriple orders by (major, minor, patch); go-version pads segments to three.
func compareTriple(a, b []int) int {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

type cacheKey struct {
	scope string
	major int
}

type outcome struct {
	version string
	ok      bool
}

// Resolver memoizes Next per (scope, major) for the lifetime of a run, so that
// every tag of one major version in one feed lands on the same new key.
type Resolver struct {
	cache map[cacheKey]outcome
}

// NewResolver creates an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{cache: make(map[cacheKey]outcome)}
}

// NextVersion returns the cached result for (scope, major), computing it from
// keys on first use. scope is usually the feed file name.
func (r *Resolver) NextVersion(scope string, keys []string, major int) (string, bool) {
	key := cacheKey{scope: scope, major: major}
	if cached, ok := r.cache[key]; ok {
		return cached.version, cached.ok
	}
	v, ok := Next(keys, major)
	r.cache[key] = outcome{version: v, ok: ok}
	return v, ok
}
