// Package pkg provides the core libraries for heightcompare height-comparison charts.
//
// # Overview
//
// heightcompare lines people and characters up side by side against a ruler,
// picking a display unit and window that fit every figure. The pkg directory
// is organized into a few areas:
//
//  1. Measurement - [units], [scale] and [ruler] parse heights, choose the
//     display unit and window, and generate ruler marks.
//  2. Domain - [entity] holds the people charted on a board and [catalog]
//     the reference characters they can be drawn from.
//  3. Rendering - [render/chart/layout] and [render/chart/sink] draw a board
//     as SVG, PNG, PDF or JSON; [render/taxonomy] draws the category tree.
//  4. Orchestration - [pipeline] runs resolve, layout and render with an
//     artifact cache; [session] stores boards.
//  5. Infrastructure - [cache], [config], [errors], [observability],
//     [integrations] and [server].
//
// # Architecture
//
// The typical data flow:
//
//	Board file / stored board / catalog sample
//	         ↓
//	    [entity] collection (validated people)
//	         ↓
//	    [scale] + [ruler] (unit, window, marks)
//	         ↓
//	    [render/chart/layout] (figure and label geometry)
//	         ↓
//	    [render/chart/sink] (SVG/PNG/PDF/JSON)
//
// # Quick Start
//
// Render a board file:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/heightcompare/pkg/cache"
//	    hcio "github.com/matzehuels/heightcompare/pkg/io"
//	    "github.com/matzehuels/heightcompare/pkg/pipeline"
//	)
//
//	board, _ := hcio.ImportBoard("team.yaml")
//	people, _ := board.Collection()
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, _ := runner.Render(context.Background(), people.List(), pipeline.Options{
//	    Mode:    board.Mode,
//	    Formats: []string{"svg", "png"},
//	    Title:   board.Name,
//	})
//	// result.Artifacts["svg"], result.Artifacts["png"]
//
// # Catalog Backends
//
// The character catalog is read from Supabase through [integrations/supabase],
// or from a local [catalog/sqlite] database, a [catalog/mongo] collection or a
// YAML [catalog/seed] file. [catalog.Memo] snapshots any of them in memory.
//
// [units]: github.com/matzehuels/heightcompare/pkg/units
// [scale]: github.com/matzehuels/heightcompare/pkg/scale
// [ruler]: github.com/matzehuels/heightcompare/pkg/ruler
// [entity]: github.com/matzehuels/heightcompare/pkg/entity
// [catalog]: github.com/matzehuels/heightcompare/pkg/catalog
// [catalog.Memo]: github.com/matzehuels/heightcompare/pkg/catalog#Memo
// [catalog/sqlite]: github.com/matzehuels/heightcompare/pkg/catalog/sqlite
// [catalog/mongo]: github.com/matzehuels/heightcompare/pkg/catalog/mongo
// [catalog/seed]: github.com/matzehuels/heightcompare/pkg/catalog/seed
// [render/chart/layout]: github.com/matzehuels/heightcompare/pkg/render/chart/layout
// [render/chart/sink]: github.com/matzehuels/heightcompare/pkg/render/chart/sink
// [render/taxonomy]: github.com/matzehuels/heightcompare/pkg/render/taxonomy
// [pipeline]: github.com/matzehuels/heightcompare/pkg/pipeline
// [session]: github.com/matzehuels/heightcompare/pkg/session
// [cache]: github.com/matzehuels/heightcompare/pkg/cache
// [config]: github.com/matzehuels/heightcompare/pkg/config
// [errors]: github.com/matzehuels/heightcompare/pkg/errors
// [observability]: github.com/matzehuels/heightcompare/pkg/observability
// [integrations]: github.com/matzehuels/heightcompare/pkg/integrations
// [integrations/supabase]: github.com/matzehuels/heightcompare/pkg/integrations/supabase
// [server]: github.com/matzehuels/heightcompare/pkg/server
package pkg
