package build

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/magiconair/properties"
	"github.com/pelletier/go-toml/v2"

	"github.com/sap-gg/clifeed/internal"
)

// ReadSpec reads a build-info file. The format follows the extension:
// .json, .yaml/.yml, .toml or .properties.
func ReadSpec(ctx context.Context, path string) (*Spec, error) {
	var spec Spec

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open build info %q: %w", path, err)
		}
		defer f.Close()

		// the YAML decoder validates on its own
		if err := internal.NewYAMLDecoder(f).DecodeContext(ctx, &spec); err != nil {
			if internal.IsDecodeErrorAndPrint(err) {
				return nil, fmt.Errorf("parsing build info")
			}
			return nil, fmt.Errorf("decode build info %q: %w", path, err)
		}
		return &spec, nil

	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read build info %q: %w", path, err)
		}
		if err := json.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("decode build info %q: %w", path, err)
		}

	case ".toml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read build info %q: %w", path, err)
		}
		if err := toml.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("decode build info %q: %w", path, err)
		}

	case ".properties":
		p, err := properties.LoadFile(path, properties.UTF8)
		if err != nil {
			return nil, fmt.Errorf("load build info %q: %w", path, err)
		}
		spec.Version = p.GetString("version", "")
		spec.InprocVersion = p.GetString("inprocVersion", "")
		spec.BuildID = p.GetString("buildId", "")

	default:
		return nil, fmt.Errorf("unsupported build info format %q", ext)
	}

	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("validate build info %q: %w", path, err)
	}
	return &spec, nil
}

// Validate checks required fields and the build id format.
func (s *Spec) Validate() error {
	return validator.New().Struct(s)
}
