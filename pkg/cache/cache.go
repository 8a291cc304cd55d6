// Package cache provides caching for solved diagrams and rendered artifacts.
//
// A solve is deterministic: the same manifest and the same set of pinned
// values always produce the same solution. That makes solutions ideal cache
// material, keyed by a hash of the manifest plus the pins. Rendered artifacts
// (DOT, SVG, PNG) are keyed the same way with the output format mixed in.
//
// Backends:
//   - FileCache: on-disk cache for CLI usage
//   - MemoryCache: in-process cache for the API server and tests
//   - RedisCache: shared cache for multi-instance deployments
//   - NullCache: disabled caching
package cache

import (
	"context"
	"time"
)

// Default TTLs per cacheable stage.
const (
	// TTLSolution is the lifetime of cached solve results.
	TTLSolution = 24 * time.Hour

	// TTLArtifact is the lifetime of cached rendered artifacts.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the interface for cache backends.
type Cache interface {
	// Get retrieves a value. Returns (nil, false, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// SolutionKeyOpts carries the inputs that change a solve result.
type SolutionKeyOpts struct {
	// Sets are the variable pins applied before solving, name -> value.
	Sets map[string]float64
}

// ArtifactKeyOpts carries the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	// Format is the output format (dot, svg, png).
	Format string
	// Sets are the variable pins applied before solving.
	Sets map[string]float64
}

// Keyer generates cache keys for the different cacheable stages.
type Keyer interface {
	// SolutionKey generates a key for a solved diagram.
	// manifestHash is the hash of the raw manifest bytes.
	SolutionKey(manifestHash string, opts SolutionKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact.
	ArtifactKey(manifestHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SolutionKey generates a key for a solved diagram.
func (k *DefaultKeyer) SolutionKey(manifestHash string, opts SolutionKeyOpts) string {
	return hashKey("solution", manifestHash, sortedPins(opts.Sets))
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(manifestHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", manifestHash, opts.Format, sortedPins(opts.Sets))
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
