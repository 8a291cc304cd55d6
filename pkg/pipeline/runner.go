package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tenon/pkg/cache"
	"github.com/matzehuels/tenon/pkg/diagram"
	"github.com/matzehuels/tenon/pkg/errors"
	"github.com/matzehuels/tenon/pkg/export"
	"github.com/matzehuels/tenon/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// solvedState is the cached form of a solve result.
type solvedState struct {
	Solution    map[string]float64 `json:"solution"`
	Diagnostics []string           `json:"diagnostics,omitempty"`
}

// Execute runs the complete parse → solve → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	// Stage 1: Parse
	data, format, err := r.loadManifest(opts)
	if err != nil {
		return nil, err
	}
	def, err := diagram.Parse(data, format)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Definition:   def,
		ManifestHash: cache.Hash(data),
		Artifacts:    make(map[string][]byte),
	}
	result.Stats.VariableCount = len(def.Variables)
	result.Stats.ConstraintCount = len(def.Constraints)

	d, err := diagram.Build(def)
	if err != nil {
		return nil, err
	}
	for name, value := range opts.Sets {
		if err := d.SetValue(name, value); err != nil {
			return nil, err
		}
	}

	// Stage 2: Solve
	solveStart := time.Now()
	state, solveHit, err := r.solve(ctx, d, result.ManifestHash, opts)
	if err != nil {
		return nil, err
	}
	result.Solution = state.Solution
	result.Diagnostics = state.Diagnostics
	result.Stats.SolveTime = time.Since(solveStart)
	result.CacheInfo.SolutionHit = solveHit

	opts.Logger.Info("solved diagram",
		"variables", result.Stats.VariableCount,
		"constraints", result.Stats.ConstraintCount,
		"cached", solveHit,
		"duration", result.Stats.SolveTime)

	// Stage 3: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, renderHit, err := r.render(ctx, d, result.ManifestHash, opts)
		if err != nil {
			return nil, err
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.RenderHit = renderHit

		opts.Logger.Info("rendered outputs",
			"formats", opts.Formats,
			"cached", renderHit,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// loadManifest returns the raw manifest bytes and their format.
func (r *Runner) loadManifest(opts Options) ([]byte, diagram.Format, error) {
	if opts.Manifest != "" {
		return []byte(opts.Manifest), diagram.Format(opts.ManifestFormat), nil
	}

	format, err := diagram.DetectFormat(opts.ManifestPath)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(opts.ManifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest not found: %s", opts.ManifestPath)
		}
		return nil, "", err
	}
	return data, format, nil
}

// solve resolves the diagram, consulting the solution cache first. On a
// cache hit the diagram is fast-forwarded to the cached solution so a
// later render stage sees solved values.
func (r *Runner) solve(ctx context.Context, d *diagram.Diagram, manifestHash string, opts Options) (solvedState, bool, error) {
	cacheKey := r.Keyer.SolutionKey(manifestHash, cache.SolutionKeyOpts{Sets: opts.Sets})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var state solvedState
			if err := json.Unmarshal(data, &state); err == nil {
				observability.Cache().OnCacheHit(ctx, "solution")
				for name, value := range state.Solution {
					_ = d.SetValue(name, value)
				}
				return state, true, nil
			}
			// Corrupt entry - recompute
			_ = r.Cache.Delete(ctx, cacheKey)
		}
		observability.Cache().OnCacheMiss(ctx, "solution")
	}

	var state solvedState
	if err := d.Resolve(); err != nil {
		// Non-convergence is recoverable: the engine applied its best
		// estimates, so the snapshot is still useful. Surface the
		// problem as a diagnostic instead of failing the run.
		if !errors.Is(err, errors.ErrCodeNonConvergence) {
			return state, false, err
		}
		state.Diagnostics = append(state.Diagnostics, errors.UserMessage(err))
		opts.Logger.Warn("solve did not fully converge", "err", err)
	}
	state.Solution = d.Snapshot()

	if data, err := json.Marshal(state); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLSolution)
		observability.Cache().OnCacheSet(ctx, "solution", len(data))
	}
	return state, false, nil
}

// render exports the requested formats, consulting the artifact cache first.
func (r *Runner) render(ctx context.Context, d *diagram.Diagram, manifestHash string, opts Options) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	allCached := !opts.Refresh
	if allCached {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(manifestHash, cache.ArtifactKeyOpts{Format: format, Sets: opts.Sets})
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				allCached = false
				break
			}
			artifacts[format] = data
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	for _, format := range opts.Formats {
		data, err := export.Render(d, format, export.Options{Detailed: opts.Detailed})
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data

		cacheKey := r.Keyer.ArtifactKey(manifestHash, cache.ArtifactKeyOpts{Format: format, Sets: opts.Sets})
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return artifacts, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
