// Package pipeline provides the core solve pipeline for Tenon.
//
// This package implements the complete parse → solve → render pipeline that
// can be used by CLI and API components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Decode and validate a diagram manifest (TOML or JSON)
//  2. Solve: Build the constraint system, apply pins, resolve to a fixed point
//  3. Render: Export the constraint network (DOT, SVG, PNG)
//
// Solves are deterministic, so solutions and artifacts are cached keyed by
// the manifest hash and pins.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    ManifestPath: "examples/box.toml",
//	    Sets:         map[string]float64{"right": 20},
//	    Formats:      []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tenon/pkg/diagram"
	"github.com/matzehuels/tenon/pkg/errors"
	"github.com/matzehuels/tenon/pkg/export"
)

// Format constants for output formats.
const (
	FormatDOT = export.FormatDOT
	FormatSVG = export.FormatSVG
	FormatPNG = export.FormatPNG
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
}

// Options contains all configuration for the solve pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options. Exactly one of ManifestPath or Manifest must be set.
	ManifestPath   string `json:"manifest_path,omitempty"`
	Manifest       string `json:"manifest,omitempty"`        // inline manifest content
	ManifestFormat string `json:"manifest_format,omitempty"` // required with inline content

	// Solve options
	Sets    map[string]float64 `json:"sets,omitempty"` // variable pins applied before solving
	Refresh bool               `json:"refresh,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // include values/strengths in labels

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Definition is the parsed manifest.
	Definition *diagram.Definition

	// ManifestHash is the content hash of the manifest bytes.
	ManifestHash string

	// Solution maps every variable name to its solved value.
	Solution map[string]float64

	// Diagnostics lists recoverable solver problems (non-convergence,
	// unresolved required conflicts). Empty on a clean solve.
	Diagnostics []string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	VariableCount   int
	ConstraintCount int
	SolveTime       time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SolutionHit bool // Whether the solution came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.ManifestPath == "" && o.Manifest == "" {
		return errors.New(errors.ErrCodeInvalidInput, "manifest_path or manifest is required")
	}
	if o.ManifestPath != "" && o.Manifest != "" {
		return errors.New(errors.ErrCodeInvalidInput, "manifest_path and manifest are mutually exclusive")
	}
	if o.Manifest != "" && o.ManifestFormat == "" {
		return errors.New(errors.ErrCodeInvalidInput, "manifest_format is required with inline manifests")
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}
