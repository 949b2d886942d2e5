// Package pkg provides the core libraries for Plategen plate layouts.
//
// # Overview
//
// Plategen places sample × reagent replicates onto 96- or 384-well plates and
// assigns each reagent a colour for the plate key. The pkg directory is
// organized into a few areas:
//
//  1. [plate] - Domain logic (replicate matrices, splitting, packing, colours)
//  2. [io] - Experiments input (JSON, TOML, YAML) and the layout document
//  3. [pipeline] - Orchestration (layout → render) with caching
//  4. [render] - SVG, HTML, text, PNG and PDF output
//  5. [cache] - File, Redis and no-op cache backends
//
// # Architecture
//
// The typical data flow through Plategen:
//
//	Experiments file
//	       ↓
//	  [io] package (decode + validate)
//	       ↓
//	  [plate] package (build matrices, split, pack, colour)
//	       ↓
//	  [io] package (export layout document)
//	       ↓
//	  [render/sink] package (SVG/HTML/text)
//	       ↓
//	  SVG/HTML/PNG/PDF/JSON/text output
//
// # Quick Start
//
//	import (
//	    plateio "github.com/matzehuels/plategen/pkg/io"
//	    "github.com/matzehuels/plategen/pkg/pipeline"
//	    "github.com/matzehuels/plategen/pkg/render/sink"
//	)
//
//	req, _ := plateio.ImportFile("experiments.yaml")
//	layout, _ := pipeline.GenerateLayout(req, pipeline.Options{Seed: 1})
//	svg := sink.RenderSVG(layout)
//
// For repeated runs, [pipeline.Runner] caches placements and rendered
// artifacts in any [cache.Cache].
//
// [plate]: https://pkg.go.dev/github.com/matzehuels/plategen/pkg/plate
// [io]: https://pkg.go.dev/github.com/matzehuels/plategen/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/plategen/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/plategen/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/plategen/pkg/render/sink
// [cache]: https://pkg.go.dev/github.com/matzehuels/plategen/pkg/cache
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/plategen/pkg/pipeline#Runner
// [cache.Cache]: https://pkg.go.dev/github.com/matzehuels/plategen/pkg/cache#Cache
package pkg
