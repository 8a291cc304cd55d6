// Package pkg provides the core libraries for Tenon constraint solving.
//
// # Overview
//
// Tenon keeps the variables of a diagram consistent under a set of declared
// constraints, re-solving incrementally as values change. The pkg directory
// is organized into four main areas:
//
//  1. [solver] and [constraint] - the solving core (variables, strength
//     tiers, constraint kinds, the fixed-point engine)
//  2. [diagram] - declarative manifests (TOML/JSON) bound into live systems
//  3. [pipeline] and [export] - orchestration (parse → solve → render) and
//     Graphviz output
//  4. [cache], [store], [errors], [observability] - infrastructure
//
// # Architecture
//
// The typical data flow through Tenon:
//
//	Manifest (TOML/JSON)
//	         ↓
//	    [diagram] package (validate + bind)
//	         ↓
//	    [solver] package (fixed-point resolution)
//	         ↓
//	    [export] package (DOT/SVG/PNG)
//
// # Quick Start
//
// Solve a manifest and render its constraint network:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/tenon/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    ManifestPath: "box.toml",
//	    Formats:      []string{pipeline.FormatSVG},
//	})
//
// The solving core can also be used directly; see the [solver] and
// [constraint] package documentation.
package pkg
