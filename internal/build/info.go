// Package build describes the artifact build being published.
package build

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-version"
)

// ErrUnparseableBuildVersion is fatal to a run: nothing can be published
// without a valid build version.
var ErrUnparseableBuildVersion = errors.New("unparseable build version")

// Spec is the raw build description, as given on the command line or in a
// build-info file.
type Spec struct {
	Version       string `json:"version" yaml:"version" toml:"version" validate:"required"`
	InprocVersion string `json:"inprocVersion,omitempty" yaml:"inprocVersion,omitempty" toml:"inprocVersion,omitempty"`
	BuildID       string `json:"buildId,omitempty" yaml:"buildId,omitempty" toml:"buildId,omitempty" validate:"omitempty,number"`
}

// Info is the validated, immutable description of one build.
type Info struct {
	Version       string
	InprocVersion string
	MajorVersion  int
	ArtifactsDir  string
	BuildID       string
}

// New validates spec and derives the major version from its version string.
func New(spec Spec, artifactsDir string) (*Info, error) {
	if artifactsDir == "" {
		return nil, fmt.Errorf("artifacts directory is required")
	}

	v, err := version.NewVersion(spec.Version)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnparseableBuildVersion, spec.Version, err)
	}
	if spec.InprocVersion != "" {
		if _, err := version.NewVersion(spec.InprocVersion); err != nil {
			return nil, fmt.Errorf("%w: in-process version %q: %v", ErrUnparseableBuildVersion, spec.InprocVersion, err)
		}
	}

	return &Info{
		Version:       spec.Version,
		InprocVersion: spec.InprocVersion,
		MajorVersion:  v.Segments()[0],
		ArtifactsDir:  artifactsDir,
		BuildID:       spec.BuildID,
	}, nil
}

// VersionFor returns the artifact version a tag publishes: the in-process
// version when inproc is set, the primary version otherwise.
func (i *Info) VersionFor(inproc bool) (string, error) {
	if !inproc {
		return i.Version, nil
	}
	if i.InprocVersion == "" {
		return "", fmt.Errorf("build %s has no in-process version", i.Version)
	}
	return i.InprocVersion, nil
}

// CDNPath returns the CDN directory of an artifact version: "<major>.0.<buildId>"
// when the build id is known, the version itself otherwise.
func (i *Info) CDNPath(artifactVersion string) string {
	if i.BuildID != "" {
		return fmt.Sprintf("%d.0.%s", i.MajorVersion, i.BuildID)
	}
	return artifactVersion
}
