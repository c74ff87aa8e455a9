// Package pkg provides the libraries behind deskgrid, a launcher home
// screen layout engine.
//
// # Overview
//
// deskgrid keeps apps, widgets and folders on fixed-size pages of a grid.
// Every change goes through an in-memory layout and is then written to a
// durable row store in the background. The pkg directory is organized into
// three areas:
//
//  1. Layout logic ([layout], [bitset]) - placement, migration, compaction
//     and folders as pure functions over a snapshot
//  2. Runtime ([desktop], [store], [cache]) - the engine that owns a
//     snapshot, the row stores it persists to and the label cache
//  3. Surfaces ([config], [server], [observability]) - configuration, the
//     HTTP event source and instrumentation hooks
//
// # Architecture
//
// The typical data flow:
//
//	install / uninstall / badge event
//	         ↓
//	    [desktop] Engine (serializes access, tracks the current page)
//	         ↓
//	    [layout] operations on a Snapshot (bitset occupancy per page)
//	         ↓
//	    [store] Synchronizer (coalesced full rewrites)
//	         ↓
//	    SQLite, MongoDB or memory rows
//
// # Quick Start
//
//	rs, _ := store.Open(ctx, store.Options{Driver: store.DriverSQLite, Path: "layout.db"})
//	eng, _ := desktop.New(store.NewSynchronizer(rs, nil), desktop.Options{Rows: 5, Columns: 4})
//	_ = eng.Load(ctx)
//
//	it, _ := eng.PlaceItem(layout.NewApp("com.example.mail", "MainAbility", "entry"), layout.Bulk)
//	_ = eng.ChangeGridDimensions(6, 4)
//	_ = eng.Flush(ctx)
//
// # Main Packages
//
// [layout] - Items, snapshots and every layout operation: bulk and
// interactive placement, migration onto a new grid, page compaction,
// folders, badges, validation and repair of stored layouts.
//
// [bitset] - Fixed-width occupancy bitsets with run search, used for one
// page row at a time.
//
// [desktop] - The stateful Engine used by the CLI and the HTTP server.
//
// [store] - Row stores (SQLite, MongoDB, memory) and the Synchronizer that
// writes snapshots to them without blocking the caller.
//
// [cache] - Display label cache with memory, file and Redis tiers.
//
// [config] - TOML configuration with grid presets.
//
// [server] - chi router exposing the engine as a JSON API.
//
// [observability] - Hook interfaces for layout, persistence, cache and HTTP
// events.
//
// [errors] - Coded errors shared by all packages.
package pkg
