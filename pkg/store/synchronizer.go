package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deskgrid/pkg/errors"
	"github.com/matzehuels/deskgrid/pkg/layout"
	"github.com/matzehuels/deskgrid/pkg/observability"
)

// Synchronizer mirrors layout snapshots into a RowStore.
//
// Every write is a full replace: all rows are deleted, then the top-level
// items are inserted, then each folder's members are inserted with the
// folder row's freshly assigned id as their container. A single worker
// goroutine performs asynchronous writes; [Synchronizer.Submit] hands it
// the latest snapshot without blocking, and a newer snapshot replaces one
// that has not started writing yet. Synchronous [Synchronizer.Rewrite]
// calls take the same writer lock, so rewrites never interleave.
//
// Failed writes are logged and leave the store stale until the next
// successful rewrite. There is no retry.
type Synchronizer struct {
	store  RowStore
	logger *log.Logger

	writeMu sync.Mutex

	mu        sync.Mutex
	pending   *layout.Snapshot
	submitted uint64
	written   uint64
	lastErr   error
	stale     bool
	changed   chan struct{}
	closed    bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// NewSynchronizer starts a synchronizer writing to rs. A nil logger uses
// log.Default().
func NewSynchronizer(rs RowStore, logger *log.Logger) *Synchronizer {
	if logger == nil {
		logger = log.Default()
	}
	s := &Synchronizer{
		store:   rs,
		logger:  logger,
		changed: make(chan struct{}),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Store returns the underlying row store.
func (s *Synchronizer) Store() RowStore { return s.store }

// Submit queues a copy of snap for writing and returns immediately.
func (s *Synchronizer) Submit(snap *layout.Snapshot) {
	c := snap.Clone()
	s.mu.Lock()
	if s.closed {
		s.stale = true
		s.mu.Unlock()
		s.logger.Error("layout write dropped: synchronizer closed", "items", len(c.Items))
		return
	}
	s.pending = c
	s.submitted++
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Flush waits until every snapshot submitted before the call is written
// and returns the error of the most recent rewrite.
func (s *Synchronizer) Flush(ctx context.Context) error {
	s.mu.Lock()
	target := s.submitted
	for s.written < target {
		ch := s.changed
		s.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		s.mu.Lock()
	}
	err := s.lastErr
	s.mu.Unlock()
	return err
}

// Stale reports whether the last rewrite failed, leaving the store behind
// the in-memory layout.
func (s *Synchronizer) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

// Close writes any pending snapshot and stops the worker. It does not
// close the row store.
func (s *Synchronizer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Synchronizer) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.done:
			s.drain()
			return
		}
	}
}

// drain writes the mailbox until it is empty.
func (s *Synchronizer) drain() {
	for {
		s.mu.Lock()
		snap, gen := s.pending, s.submitted
		s.pending = nil
		s.mu.Unlock()
		if snap == nil {
			return
		}

		_, err := s.Rewrite(context.Background(), snap)

		s.mu.Lock()
		s.written = gen
		close(s.changed)
		s.changed = make(chan struct{})
		s.mu.Unlock()
		if err != nil {
			s.logger.Error("layout write failed; store is stale", "err", err)
		}
	}
}

// Rewrite replaces the stored layout with snap and returns the number of
// rows written. Row-level failures do not stop the rewrite; they are
// reported together in the returned error.
func (s *Synchronizer) Rewrite(ctx context.Context, snap *layout.Snapshot) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	start := time.Now()
	observability.Persist().OnRewriteStart(ctx, len(snap.Items))

	var (
		n       int
		rowErrs []error
	)
	write := func(rs RowStore) error {
		var err error
		n, rowErrs, err = writeSnapshot(ctx, rs, snap)
		return err
	}
	var err error
	if tx, ok := s.store.(Transactor); ok {
		err = tx.InTx(ctx, write)
	} else {
		err = write(s.store)
	}
	if err == nil && len(rowErrs) > 0 {
		err = errors.Wrap(errors.ErrCodeStoreFailure, rowErrs[0], "%d rows failed to write", len(rowErrs))
	} else if err != nil {
		err = errors.Wrap(errors.ErrCodeStoreFailure, err, "rewrite layout")
	}
	for _, re := range rowErrs {
		s.logger.Warn("layout row not written", "err", re)
	}

	s.mu.Lock()
	s.lastErr = err
	s.stale = err != nil
	s.mu.Unlock()

	observability.Persist().OnRewriteComplete(ctx, n, time.Since(start), err)
	s.logger.Debug("layout written", "rows", n, "pages", snap.PageCount, "took", time.Since(start))
	return n, err
}

// writeSnapshot performs the two-phase insert. The first return is the
// number of rows written; row failures are collected separately from a
// failure that aborts the rewrite.
func writeSnapshot(ctx context.Context, rs RowStore, snap *layout.Snapshot) (int, []error, error) {
	if err := rs.DeleteAll(ctx); err != nil {
		return 0, nil, err
	}
	if err := rs.SaveDescriptor(ctx, snap.Descriptor); err != nil {
		return 0, nil, err
	}

	var (
		n      int
		errs   []error
		parent = make(map[string]int64)
	)

	// Phase 1: top-level rows; remember the id assigned to each folder.
	for _, it := range snap.Items {
		r := ToRow(it)
		r.Container = layout.TopLevel
		id, err := rs.Insert(ctx, r)
		if err != nil || id == InvalidID {
			errs = append(errs, insertError(r, err))
			continue
		}
		n++
		if it.Kind() == layout.KindFolder {
			parent[it.Key()] = id
		}
	}

	// Phase 2: folder members, pointing at their parent's new id.
	ids := make([]string, 0, len(snap.Folders))
	for id := range snap.Folders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, fid := range ids {
		members := snap.Folders[fid]
		pid, ok := parent[fid]
		if !ok {
			if len(members) > 0 {
				errs = append(errs, errors.New(errors.ErrCodeStoreFailure,
					"folder %q has no stored row; %d members skipped", fid, len(members)))
			}
			continue
		}
		for _, m := range members {
			r := ToRow(m)
			r.Container = pid
			if _, err := rs.Insert(ctx, r); err != nil {
				errs = append(errs, insertError(r, err))
				continue
			}
			n++
		}
	}
	return n, errs, nil
}

func insertError(r Row, err error) error {
	if err == nil {
		return errors.New(errors.ErrCodeStoreFailure, "insert %s: store returned no id", r.KeyName)
	}
	return err
}

// Load reads the stored layout. found is false when the store holds neither
// a descriptor nor any rows; the caller then starts from a default layout.
// def supplies the dimensions when rows exist without a descriptor.
func (s *Synchronizer) Load(ctx context.Context, def layout.Descriptor) (snap *layout.Snapshot, found bool, err error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	start := time.Now()
	defer func() {
		items := 0
		if snap != nil {
			items = len(snap.Items)
		}
		observability.Persist().OnLoad(ctx, items, time.Since(start), err)
	}()

	desc, ok, err := s.store.LoadDescriptor(ctx)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStoreFailure, err, "load layout")
	}
	top, err := s.store.QueryByContainer(ctx, layout.TopLevel)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStoreFailure, err, "load layout")
	}
	if !ok && len(top) == 0 {
		return nil, false, nil
	}
	if !ok || desc.Check() != nil {
		s.logger.Warn("stored grid descriptor missing or invalid, using default",
			"stored", desc, "default", def)
		desc = def
	}

	snap = layout.NewSnapshot(desc.Rows, desc.Columns, desc.PageCount)
	for _, r := range top {
		it, malformed, err := FromRow(r, desc.Rows, desc.Columns)
		if err != nil {
			s.logger.Warn("skipping stored row", "id", r.ID, "err", err)
			continue
		}
		if malformed != "" {
			s.logger.Warn("malformed stored row, loaded with zero area", "id", r.ID, "key", r.KeyName, "problem", malformed)
		}
		snap.Items = append(snap.Items, it)
		if it.Page >= snap.PageCount {
			snap.PageCount = it.Page + 1
		}

		if it.Kind() != layout.KindFolder {
			continue
		}
		rows, err := s.store.QueryByContainer(ctx, r.ID)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeStoreFailure, err, "load members of folder %q", it.Key())
		}
		members := make([]layout.Item, 0, len(rows))
		for _, mr := range rows {
			m, _, err := FromRow(mr, desc.Rows, desc.Columns)
			if err != nil {
				s.logger.Warn("skipping stored folder member", "id", mr.ID, "folder", it.Key(), "err", err)
				continue
			}
			// The parent row id is reassigned on the next rewrite.
			m.Container = layout.Detached
			members = append(members, m)
		}
		snap.Folders[it.Key()] = members
	}
	return snap, true, nil
}
