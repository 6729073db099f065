// Package pkg provides the core libraries for Shapegrid table recovery.
//
// # Overview
//
// Shapegrid takes a tree of positioned shapes, as drawn by a slide or
// diagram editor, and recovers the row/column grid a person reading the
// picture would see. Shapes may be nested, rotated, scaled, skewed or
// flipped; everything is projected into a common container space before the
// grid is inferred.
//
// # Architecture
//
// The typical data flow:
//
//	Scene document (JSON, TOML, YAML)
//	         ↓
//	    [scene] package (decode, validate, build the shape tree)
//	         ↓
//	    [shape] + [geom] packages (affine transforms between shape spaces)
//	         ↓
//	    [grid] package (boundaries, cell assembly, gap filling)
//	         ↓
//	    [sink] package (SVG, PDF, PNG, JSON, XLSX)
//
// [pipeline] ties these together behind a cache, and [render/tree] draws the
// shape tree itself for debugging.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/shapegrid/pkg/pipeline"
//	    "github.com/matzehuels/shapegrid/pkg/scene"
//	)
//
//	s, _ := scene.Load("invoice.yaml")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(ctx, s, pipeline.Options{Formats: []string{"svg", "xlsx"}})
//	os.WriteFile("invoice.xlsx", result.Artifacts["xlsx"], 0644)
//
// # Packages
//
// [geom] - Points, rectangles and 2D affine matrices.
//
// [shape] - The shape tree and conversion of points and rectangles between
// any two shapes' coordinate spaces.
//
// [grid] - Grid synthesis. Boundaries of every candidate are merged within a
// tolerance, shapes are placed on the resulting lattice, overlaps are
// reported and uncovered regions become synthetic cells.
//
// [scene] - Scene documents and their codecs.
//
// [sink] - Table exporters.
//
// [render] - SVG to PDF/PNG conversion; [render/tree] renders shape trees
// with Graphviz.
//
// [cache] - File, Redis and MongoDB caches for tables and artifacts.
//
// [observability] - Hooks for metrics and tracing.
//
// [errors] - Coded errors shared by every package.
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/shapegrid/pkg/geom
// [shape]: https://pkg.go.dev/github.com/matzehuels/shapegrid/pkg/shape
// [grid]: https://pkg.go.dev/github.com/matzehuels/shapegrid/pkg/grid
// [scene]: https://pkg.go.dev/github.com/matzehuels/shapegrid/pkg/scene
// [sink]: https://pkg.go.dev/github.com/matzehuels/shapegrid/pkg/sink
// [render]: https://pkg.go.dev/github.com/matzehuels/shapegrid/pkg/render
// [render/tree]: https://pkg.go.dev/github.com/matzehuels/shapegrid/pkg/render/tree
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/shapegrid/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/shapegrid/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/shapegrid/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/shapegrid/pkg/errors
package pkg
