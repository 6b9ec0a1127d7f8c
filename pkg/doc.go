// Package pkg provides the core libraries for Jengatower.
//
// # Overview
//
// Jengatower stacks countries into a tower of blocks. Each country becomes one
// layer, layers are ordered by a metric (number of companies, PageRank or
// betweenness centrality), and each layer holds one to three bricks depending
// on how central the country is in the trade network. The tower is simulated
// with rigid bodies and can be reconfigured to a different ordering, with
// blocks flying to their new places while keeping their identity.
//
// # Architecture
//
// The typical data flow through Jengatower:
//
//	Countries + links (CSV, HTTP, S3, Postgres)
//	         ↓
//	    [dataset] package (load, validate, index neighbours)
//	         ↓
//	    [tower/layout] package (sort, quantize, place bricks)
//	         ↓
//	    [tower/blocks] package (bodies + meshes per block)
//	         ↓
//	    [tower] engine (physics stepping, reconfiguration, drag)
//	         ↓
//	    Viewer, HTTP server, JSON export
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/jengatower/pkg/dataset"
//	    pmem "github.com/matzehuels/jengatower/pkg/physics/memory"
//	    rmem "github.com/matzehuels/jengatower/pkg/render/memory"
//	    "github.com/matzehuels/jengatower/pkg/tower"
//	    "github.com/matzehuels/jengatower/pkg/tower/layout"
//	)
//
//	ds, _ := dataset.Load(ctx, dataset.LoadOptions{
//	    Countries: "./data/results_semicon.csv",
//	    Links:     "./data/links_semicon.csv",
//	})
//	eng := tower.New(rmem.New(), pmem.New(), ds)
//	_ = eng.Build(layout.DefaultSortKey())
//	eng.SetPhysics(true)
//	for range 120 {
//	    eng.Tick(time.Second / 60)
//	}
//
// # Main Packages
//
// ## Domain
//
// [dataset] - Country and link records, tabular sources and validation.
//
// [tower/layout] - Pure layout generation: sort key, centrality buckets,
// slot tables and brick transforms.
//
// [tower/blocks] - The block manager pairing each block with a physics body
// and a scene mesh.
//
// [tower/reconfig] - The reconfiguration state machine: matching, animation
// and rebuild.
//
// [tower/sim] - Fixed-divisor physics stepping with slow motion.
//
// [tower] - The engine tying the above together, plus drag and snapshots.
//
// ## Collaborators
//
// [physics] and [render] - The world and scene interfaces the engine
// drives, with in-memory implementations for headless use and tests.
//
// [render/nodelink] - Trade-link network diagrams using Graphviz.
//
// ## Infrastructure
//
// [pipeline] - Load → layout → export, shared by the CLI and the server.
//
// [cache] - File, Redis and MongoDB caches for datasets, layouts and
// rendered artifacts.
//
// [config] - TOML/YAML configuration with environment overrides.
//
// [observability] and [metrics] - Event hooks and their Prometheus
// implementation.
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/tower/...              # Specific package
//	go test -run Example                 # Examples only
//
// [dataset]: https://pkg.go.dev/github.com/matzehuels/jengatower/pkg/dataset
// [tower]: https://pkg.go.dev/github.com/matzehuels/jengatower/pkg/tower
// [tower/layout]: https://pkg.go.dev/github.com/matzehuels/jengatower/pkg/tower/layout
// [tower/blocks]: https://pkg.go.dev/github.com/matzehuels/jengatower/pkg/tower/blocks
// [tower/reconfig]: https://pkg.go.dev/github.com/matzehuels/jengatower/pkg/tower/reconfig
// [tower/sim]: https://pkg.go.dev/github.com/matzehuels/jengatower/pkg/tower/sim
// [physics]: https://pkg.go.dev/github.com/matzehuels/jengatower/pkg/physics
// [render]: https://pkg.go.dev/github.com/matzehuels/jengatower/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/jengatower/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/jengatower/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/jengatower/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/jengatower/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/jengatower/pkg/observability
// [metrics]: https://pkg.go.dev/github.com/matzehuels/jengatower/pkg/metrics
// [errors]: https://pkg.go.dev/github.com/matzehuels/jengatower/pkg/errors
package pkg
