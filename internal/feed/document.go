// Package feed reads, edits and writes feed documents.
package feed

import (
	"errors"
	"fmt"

	"github.com/sap-gg/clifeed/internal/jsonobj"
)

// ErrMissingTagPointer means a tag is absent or points at a release key that
// does not exist.
var ErrMissingTagPointer = errors.New("missing tag pointer")

const (
	releasesKey = "releases"
	tagsKey     = "tags"
	releaseKey  = "release"
)

// Document is a feed document. releases and tags are held apart from root and
// written back on marshal; every other top-level member is kept as read.
type Document struct {
	root     *jsonobj.Object
	releases *jsonobj.Object
	tags     *jsonobj.Object
}

// Parse decodes a feed document; both "releases" and "tags" are required.
func Parse(data []byte) (*Document, error) {
	root, err := jsonobj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	releases, err := root.Object(releasesKey)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	tags, err := root.Object(tagsKey)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return &Document{root: root, releases: releases, tags: tags}, nil
}

// Clone returns an independent copy of d.
func (d *Document) Clone() *Document {
	return &Document{
		root:     d.root.Clone(),
		releases: d.releases.Clone(),
		tags:     d.tags.Clone(),
	}
}

// ReleaseKeys returns the release version keys in document order.
func (d *Document) ReleaseKeys() []string {
	return d.releases.Keys()
}

// HasRelease reports whether a release with the given key exists.
func (d *Document) HasRelease(version string) bool {
	return d.releases.Has(version)
}

// TagNames returns the tag names in document order.
func (d *Document) TagNames() []string {
	return d.tags.Keys()
}

type tagPointer struct {
	Release string `json:"release"`
}

// TagRelease returns the release key the tag points at, without checking
// that the release exists.
func (d *Document) TagRelease(tag string) (string, bool) {
	obj, err := d.tags.Object(tag)
	if err != nil {
		return "", false
	}
	var p tagPointer
	if err := obj.Decode(&p); err != nil || p.Release == "" {
		return "", false
	}
	return p.Release, true
}

// CurrentRelease resolves tags[tag].release to an existing release key.
func (d *Document) CurrentRelease(tag string) (string, error) {
	version, ok := d.TagRelease(tag)
	if !ok {
		return "", fmt.Errorf("%w: tag %q has no release", ErrMissingTagPointer, tag)
	}
	if !d.releases.Has(version) {
		return "", fmt.Errorf("%w: tag %q points at unknown release %q", ErrMissingTagPointer, tag, version)
	}
	return version, nil
}

// Entry returns a copy of the release entry at version.
func (d *Document) Entry(version string) (*jsonobj.Object, error) {
	entry, err := d.releases.Object(version)
	if err != nil {
		return nil, fmt.Errorf("release %s: %w", version, err)
	}
	return entry, nil
}

// Insert adds entry under a new release key. Existing releases are never replaced.
func (d *Document) Insert(version string, entry *jsonobj.Object) error {
	if d.releases.Has(version) {
		return fmt.Errorf("release %s already exists", version)
	}
	return d.releases.SetValue(version, entry)
}

// PointTag sets tags[tag].release to version. Both must exist.
func (d *Document) PointTag(tag, version string) error {
	if !d.releases.Has(version) {
		return fmt.Errorf("%w: release %q does not exist", ErrMissingTagPointer, version)
	}
	obj, err := d.tags.Object(tag)
	if err != nil {
		return fmt.Errorf("%w: tag %q: %v", ErrMissingTagPointer, tag, err)
	}
	if err := obj.SetValue(releaseKey, version); err != nil {
		return err
	}
	return d.tags.SetValue(tag, obj)
}

// MarshalJSON writes the document with releases and tags in their original positions.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := d.root.Clone()
	if err := out.SetValue(releasesKey, d.releases); err != nil {
		return nil, err
	}
	if err := out.SetValue(tagsKey, d.tags); err != nil {
		return nil, err
	}
	return out.MarshalJSON()
}
