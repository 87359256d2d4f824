// Package diff reports what a publish run changed in a feed document.
package diff

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/sap-gg/clifeed/internal/feed"
)

// Type represents the kind of Change detected for a release or tag.
type Type int

const (
	Unchanged Type = iota
	Created
	Modified
	Removed
)

// Change represents the state change for a single release or tag.
// For tags, Old and New are the release keys pointed at.
type Change struct {
	Type Type
	Path string
	Old  string
	New  string
}

// Report contains the results of a diff operation.
type Report struct {
	Changes    map[string]*Change
	hasChanges bool
}

// HasChanges returns true if there are any changes (created, modified, removed entries).
func (r *Report) HasChanges() bool {
	return r.hasChanges
}

// SortedPaths returns a sorted list of the change paths in the report.
func (r *Report) SortedPaths() []string {
	paths := make([]string, 0, len(r.Changes))
	for path := range r.Changes {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Compare reports created, modified and removed releases ("releases/<key>")
// and repointed tags ("tags/<name>") between two versions of a feed.
func Compare(before, after *feed.Document) (*Report, error) {
	report := &Report{
		Changes: make(map[string]*Change),
	}

	beforeReleases := keySet(before.ReleaseKeys())
	afterReleases := keySet(after.ReleaseKeys())
	for _, key := range getUnionKeys(beforeReleases, afterReleases) {
		path := "releases/" + key
		_, inBefore := beforeReleases[key]
		_, inAfter := afterReleases[key]

		switch {
		case inBefore && inAfter:
			same, err := sameEntry(before, after, key)
			if err != nil {
				return nil, err
			}
			if !same {
				report.add(Modified, path, key, key)
			}
		case inAfter:
			report.add(Created, path, "", key)
		default:
			report.add(Removed, path, key, "")
		}
	}

	beforeTags := keySet(before.TagNames())
	afterTags := keySet(after.TagNames())
	for _, name := range getUnionKeys(beforeTags, afterTags) {
		path := "tags/" + name
		oldRelease, inBefore := before.TagRelease(name)
		newRelease, inAfter := after.TagRelease(name)

		switch {
		case inBefore && inAfter:
			if oldRelease != newRelease {
				report.add(Modified, path, oldRelease, newRelease)
			}
		case inAfter:
			report.add(Created, path, "", newRelease)
		case inBefore:
			report.add(Removed, path, oldRelease, "")
		}
	}

	return report, nil
}

func sameEntry(before, after *feed.Document, key string) (bool, error) {
	a, err := before.Entry(key)
	if err != nil {
		return false, err
	}
	b, err := after.Entry(key)
	if err != nil {
		return false, err
	}
	aData, err := a.MarshalJSON()
	if err != nil {
		return false, fmt.Errorf("marshal release %s: %w", key, err)
	}
	bData, err := b.MarshalJSON()
	if err != nil {
		return false, fmt.Errorf("marshal release %s: %w", key, err)
	}
	return bytes.Equal(aData, bData), nil
}

func (r *Report) add(t Type, path, oldValue, newValue string) {
	if t == Unchanged {
		return
	}
	r.Changes[path] = &Change{
		Type: t,
		Path: path,
		Old:  oldValue,
		New:  newValue,
	}
	r.hasChanges = true
}

func keySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// getUnionKeys returns a slice of all unique keys present in either of the two maps.
func getUnionKeys[K comparable, V1, V2 any, M1 ~map[K]V1, M2 ~map[K]V2](m1 M1, m2 M2) []K {
	keySet := make(map[K]struct{})
	for k := range m1 {
		keySet[k] = struct{}{}
	}
	for k := range m2 {
		keySet[k] = struct{}{}
	}
	keys := make([]K, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	return keys
}
