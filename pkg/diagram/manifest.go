package diagram

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tenon/pkg/errors"
)

// Format identifies a manifest encoding.
type Format string

// Supported manifest formats.
const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// DetectFormat derives the manifest format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot detect manifest format from %q (want .toml or .json)", filepath.Base(path))
	}
}

// Parse decodes and validates a manifest.
func Parse(data []byte, format Format) (*Definition, error) {
	var def Definition
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &def); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "invalid TOML manifest")
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "invalid JSON manifest")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest format: %q", format)
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// ParseFile reads a manifest from disk, detecting the format from the
// file extension.
func ParseFile(path string) (*Definition, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest not found: %s", path)
		}
		return nil, err
	}
	return Parse(data, format)
}

// Encode serializes a definition. Equations are not representable and
// are never present in a Definition, so every definition round-trips.
func Encode(def *Definition, format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(def); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode TOML manifest")
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode JSON manifest")
		}
		return data, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest format: %q", format)
	}
}
