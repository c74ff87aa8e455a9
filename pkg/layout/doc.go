// Package layout computes where launcher items sit on a paginated grid.
//
// # Overview
//
// A layout is a [Snapshot]: a [Descriptor] (page count, rows, columns), the
// ordered top-level items, and the ordered members of each folder. Items are
// apps, widgets or folders, modelled as a closed [Payload] variant so that
// every kind carries only the fields it needs.
//
// Every function in this package mutates the snapshot in place and performs
// no I/O. Persisting the result is the job of package store; sequencing
// calls is the job of package desktop.
//
// # Placement
//
// [Place] is a first-fit search. In [Bulk] mode every page is scanned in
// order, rows then columns, and the first cell where the item's rectangle
// stays inside the grid and overlaps no other top-level item wins. When no
// page admits the item a page is appended:
//
//	s := layout.NewSnapshot(4, 4, 1)
//	it := layout.NewApp("com.example.mail", "MainAbility", "entry")
//	if err := layout.Place(s, &it, layout.Bulk); err != nil {
//	    return err
//	}
//	s.Items = append(s.Items, it)
//
// [Interactive] mode only looks at the current page and the next one, and
// opens a page right after the current one when both are full.
//
// Items wider or taller than the grid are rejected up front with an
// ITEM_TOO_LARGE_FOR_GRID error; placement never loops.
//
// # Migration
//
// When the grid dimensions change, [Migrate] re-flows every item with a
// page-local bitset occupancy map. Items keep their storage order
// and a new output page starts whenever an item's original page changes or
// it does not fit. This preserves the user's arrangement at the cost of
// leaving gaps; minimal page count is not a goal.
//
// # Page Lifecycle
//
// After removals, [Compact] drops pages that the removal emptied and shifts
// later pages down in a single pass computed against the original
// numbering. The last page is never dropped. [AddBlankPage],
// [DeleteBlankPage] and [InsertPage] handle explicit page edits.
//
// # Folders
//
// A folder is a regular top-level item. Its members live in
// [Snapshot.Folders] and have no authoritative position of their own; only
// their order matters. [CreateFolder], [AddToFolder], [RemoveFromFolder],
// [DeleteFolder] and [RemoveBundle] keep the grid and membership lists
// consistent, dissolving folders that drop to a single member.
//
// # Validation
//
// [Validate] lists the inconsistencies of a snapshot read from a store, and
// [Reconcile] repairs them by migrating to the configured dimensions or by
// re-placing the de-duplicated items in bulk mode.
package layout
