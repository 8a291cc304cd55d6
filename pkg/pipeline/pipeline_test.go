package pipeline

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/tenon/pkg/cache"
	"github.com/matzehuels/tenon/pkg/errors"
	"github.com/matzehuels/tenon/pkg/solver"
)

const boxManifest = `
name = "box"

[[variable]]
name = "left"
value = 0
strength = "strong"

[[variable]]
name = "right"
value = 10
strength = "strong"

[[variable]]
name = "mid"
value = 0
strength = "weak"

[[constraint]]
kind = "center"
a = "left"
b = "right"
center = "mid"
`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"inline manifest", Options{Manifest: boxManifest, ManifestFormat: "toml"}, false},
		{"manifest path", Options{ManifestPath: "examples/box.toml"}, false},
		{"nothing", Options{}, true},
		{"both sources", Options{ManifestPath: "a.toml", Manifest: "x"}, true},
		{"inline without format", Options{Manifest: boxManifest}, true},
		{"bad format", Options{Manifest: boxManifest, ManifestFormat: "toml", Formats: []string{"gif"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExecuteSolves(t *testing.T) {
	r := NewRunner(cache.NewMemoryCache(), nil, nil)
	defer r.Close()

	result, err := r.Execute(context.Background(), Options{
		Manifest:       boxManifest,
		ManifestFormat: "toml",
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if math.Abs(result.Solution["mid"]-5) >= solver.Tolerance {
		t.Errorf("mid = %g, want 5", result.Solution["mid"])
	}
	if result.Stats.VariableCount != 3 || result.Stats.ConstraintCount != 1 {
		t.Errorf("Stats = %+v", result.Stats)
	}
	if result.CacheInfo.SolutionHit {
		t.Error("first run should not hit the cache")
	}
	if len(result.Diagnostics) != 0 {
		t.Errorf("Diagnostics = %v, want none", result.Diagnostics)
	}
	if result.ManifestHash == "" {
		t.Error("ManifestHash should be set")
	}
}

func TestExecuteSets(t *testing.T) {
	r := NewRunner(cache.NewMemoryCache(), nil, nil)
	defer r.Close()

	result, err := r.Execute(context.Background(), Options{
		Manifest:       boxManifest,
		ManifestFormat: "toml",
		Sets:           map[string]float64{"right": 20},
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if math.Abs(result.Solution["mid"]-10) >= solver.Tolerance {
		t.Errorf("mid = %g, want 10", result.Solution["mid"])
	}
}

func TestExecuteSetsUnknownVariable(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	_, err := r.Execute(context.Background(), Options{
		Manifest:       boxManifest,
		ManifestFormat: "toml",
		Sets:           map[string]float64{"nope": 1},
	})
	if !errors.Is(err, errors.ErrCodeInvalidVariable) {
		t.Fatalf("err = %v, want INVALID_VARIABLE", err)
	}
}

func TestExecuteSolutionCache(t *testing.T) {
	c := cache.NewMemoryCache()
	r := NewRunner(c, nil, nil)
	defer r.Close()

	opts := Options{Manifest: boxManifest, ManifestFormat: "toml"}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}

	if first.CacheInfo.SolutionHit {
		t.Error("first run should miss")
	}
	if !second.CacheInfo.SolutionHit {
		t.Error("second run should hit")
	}
	if second.Solution["mid"] != first.Solution["mid"] {
		t.Errorf("cached solution differs: %v vs %v", second.Solution, first.Solution)
	}

	// Different pins occupy a different cache entry.
	third, err := r.Execute(context.Background(), Options{
		Manifest:       boxManifest,
		ManifestFormat: "toml",
		Sets:           map[string]float64{"right": 20},
	})
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.SolutionHit {
		t.Error("run with different pins should miss")
	}

	// Refresh bypasses the cache.
	fourth, err := r.Execute(context.Background(), Options{
		Manifest:       boxManifest,
		ManifestFormat: "toml",
		Refresh:        true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.SolutionHit {
		t.Error("refresh run should not report a cache hit")
	}
}

func TestExecuteRendersDOT(t *testing.T) {
	r := NewRunner(cache.NewMemoryCache(), nil, nil)
	defer r.Close()

	opts := Options{
		Manifest:       boxManifest,
		ManifestFormat: "toml",
		Formats:        []string{FormatDOT},
	}

	result, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	dot := string(result.Artifacts[FormatDOT])
	if !strings.Contains(dot, `"mid"`) {
		t.Errorf("DOT artifact missing variables:\n%s", dot)
	}
	if result.CacheInfo.RenderHit {
		t.Error("first render should miss")
	}

	again, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.RenderHit {
		t.Error("second render should hit")
	}
	if string(again.Artifacts[FormatDOT]) != dot {
		t.Error("cached artifact differs")
	}
}

func TestExecuteMissingManifest(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	_, err := r.Execute(context.Background(), Options{ManifestPath: "does/not/exist.toml"})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("err = %v, want FILE_NOT_FOUND", err)
	}
}
