package strategy

import (
	"encoding/json"
	"fmt"

	"github.com/sap-gg/clifeed/internal/jsonobj"
	"github.com/sap-gg/clifeed/internal/merge"
)

// PlatformEntry is the typed view of one platform entry. The operating system
// arrives as "OS" in newer entries and as "OperatingSystem" in older ones.
type PlatformEntry struct {
	OperatingSystem string          `json:"OperatingSystem,omitempty"`
	OS              string          `json:"OS,omitempty"`
	Architecture    string          `json:"Architecture,omitempty"`
	DownloadLink    string          `json:"downloadLink,omitempty"`
	Sha2            string          `json:"sha2,omitempty"`
	Size            string          `json:"size,omitempty"`
	Default         json.RawMessage `json:"default,omitempty"`
}

// OSName returns the operating system, preferring "OS" over "OperatingSystem".
func (p *PlatformEntry) OSName() string {
	if p.OS != "" {
		return p.OS
	}
	return p.OperatingSystem
}

// artifactRef holds the members computed for a platform entry.
type artifactRef struct {
	DownloadLink string `json:"downloadLink"`
	Sha2         string `json:"sha2"`
}

// LegacyEntry is the typed view of a legacy release entry.
type LegacyEntry struct {
	Cli              string            `json:"cli,omitempty"`
	Sha2             string            `json:"sha2,omitempty"`
	ItemTemplates    string            `json:"itemTemplates,omitempty"`
	ProjectTemplates string            `json:"projectTemplates,omitempty"`
	StandaloneCli    []*jsonobj.Object `json:"standaloneCli,omitempty"`
}

// CurrentEntry is the typed view of a current release entry.
type CurrentEntry struct {
	CoreTools      []*jsonobj.Object `json:"coreTools,omitempty"`
	WorkerRuntimes *jsonobj.Object   `json:"workerRuntimes,omitempty"`
}

// DotnetEntry holds the members computed for one dotnet runtime label.
type DotnetEntry struct {
	ItemTemplates    string `json:"itemTemplates,omitempty"`
	ProjectTemplates string `json:"projectTemplates,omitempty"`
}

// updatePlatforms refreshes every platform entry in place. minified decides
// the artifact variant per entry.
func updatePlatforms(
	entries []*jsonobj.Object,
	field string,
	minified func(*PlatformEntry) bool,
	locate func(p *PlatformEntry, minified bool) (artifactRef, error),
) error {
	for i, raw := range entries {
		if raw == nil {
			return fmt.Errorf("%s[%d] is null", field, i)
		}
		var p PlatformEntry
		if err := raw.Decode(&p); err != nil {
			return fmt.Errorf("decode %s[%d]: %w", field, i, err)
		}
		ref, err := locate(&p, minified(&p))
		if err != nil {
			return fmt.Errorf("%s[%d] (%s/%s): %w", field, i, p.OSName(), p.Architecture, err)
		}
		if err := merge.Selective(raw, ref); err != nil {
			return fmt.Errorf("merge %s[%d]: %w", field, i, err)
		}
	}
	return nil
}
