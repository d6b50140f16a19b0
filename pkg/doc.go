// Package pkg provides the core libraries for AdForge creative authoring.
//
// # Overview
//
// AdForge turns annotated HTML templates into localized, deliverable ad
// creatives. The pkg directory is organized into these areas:
//
//  1. [template] - Template parsing, field discovery, and DOM helpers
//  2. [field] - Field classification (what kind of control a field is)
//  3. [binding] - The editor state machine projecting values into the DOM
//  4. [render] - Materialization, rasterization, rescaling, and muxing
//  5. [translate] - Copy translation with backend fallback
//  6. [export] - Archive assembly across languages, sizes, and kinds
//  7. [cache], [httputil], [errors], [observability] - shared infrastructure
//
// # Architecture
//
// The typical data flow through AdForge:
//
//	Annotated HTML template
//	         ↓
//	    [binding] package (bind field values, keep preview in sync)
//	         ↓
//	    [translate] package (localize copy per target language)
//	         ↓
//	    [render] package (self-contained HTML → screenshot → sizes)
//	         ↓
//	    [export] package (zip archives of images, bundles, videos)
//
// # Quick Start
//
//	loader := template.NewFSLoader(os.DirFS("templates"))
//	engine := binding.NewEngine(loader)
//	if err := engine.Load(ctx, "promo"); err != nil {
//	    return err
//	}
//	snapshot, _ := engine.Snapshot()
//	doc, _ := render.Materialize(engine.Template(), snapshot)
package pkg
