// Package desktop exposes the launcher layout as one engine object.
//
// An [Engine] is built once at startup around a [store.Synchronizer] and
// handed to whatever delivers events: the CLI, the HTTP server, tests.
// It holds the authoritative in-memory snapshot and the current page,
// applies each request through package layout, and submits the result for
// an asynchronous full rewrite of the store.
//
//	syncer := store.NewSynchronizer(rs, logger)
//	eng, err := desktop.New(syncer, desktop.Options{Rows: 5, Columns: 4, Logger: logger})
//	if err != nil {
//	    return err
//	}
//	if err := eng.Load(ctx); err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	_, err = eng.PlaceItem(layout.NewApp("com.example.mail", "MainAbility", "entry"), layout.Interactive(eng.CurrentPage()))
//
// Mutations never block on the store. [Engine.Flush] waits for the writes
// submitted so far, and [Engine.Stale] reports a failed write.
package desktop
