// Package store persists layout snapshots as flat rows.
//
// # Row Model
//
// Each item becomes one [Row]: kind, area encoded as "W,H", page, row,
// column, identity fields and badge count. Grid items carry container
// [layout.TopLevel] (-100); folder members carry the store-assigned id of
// their folder's row. The grid descriptor lives in a separate single-row
// table.
//
// # Backends
//
// [RowStore] abstracts the table. Three implementations ship:
//
//   - [SQLiteStore]: modernc.org/sqlite, WAL journal, the default
//   - [MongoStore]: a MongoDB collection with an integer id counter
//   - [MemoryStore]: process memory, for tests and ephemeral sessions
//
// Use [Open] to pick one by driver name.
//
// # Synchronizer
//
// [Synchronizer] owns every write. Each write deletes all rows and
// reinserts the snapshot in two phases: top-level rows first, collecting the
// id assigned to each folder, then each folder's members pointing at it.
// Asynchronous writes go through one worker goroutine with a one-slot
// mailbox, so at most one rewrite runs at a time and a burst of
// submissions collapses into the newest snapshot:
//
//	syncer := store.NewSynchronizer(rs, logger)
//	defer syncer.Close()
//
//	syncer.Submit(snap)           // returns immediately
//	err := syncer.Flush(ctx)      // waits for the write
//
// A failed write is logged, reported through observability hooks and marks
// the store stale; the in-memory snapshot stays authoritative and nothing
// is retried.
package store
