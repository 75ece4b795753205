package config

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"go.viam.com/opplanner/logging"
)

// Format is the encoding of a parameter file.
type Format string

// The supported parameter file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension. Unknown extensions are read as JSON.
func FormatFromPath(filePath string) Format {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Read reads planning parameters from the given file. Environment variables referenced in the file
// are substituted before decoding.
func Read(
	ctx context.Context,
	filePath string,
	logger logging.Logger,
) (*PlanningParams, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(ctx, filePath, FormatFromPath(filePath), bytes.NewReader(buf), logger)
}

// FromReader reads planning parameters from the given reader and specifies
// where, if applicable, the file the reader originated from. Fields missing
// from the input keep their default values.
func FromReader(
	ctx context.Context,
	originalPath string,
	format Format,
	r io.Reader,
	logger logging.Logger,
) (*PlanningParams, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	params := DefaultPlanningParams()
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrapf(err, "failed to decode PlanningParams from yaml")
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&params); err != nil {
			return nil, errors.Wrapf(err, "failed to decode PlanningParams from json")
		}
	default:
		return nil, errors.Errorf("unsupported config format %q", format)
	}

	warnings, err := params.Validate(originalPath)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warnw("planning params", "path", originalPath, "warning", w)
	}
	return &params, nil
}
