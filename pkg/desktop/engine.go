package desktop

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/deskgrid/pkg/errors"
	"github.com/matzehuels/deskgrid/pkg/layout"
	"github.com/matzehuels/deskgrid/pkg/store"
)

// Options configures an Engine.
type Options struct {
	// Rows and Columns are the configured grid. A fresh layout uses them and
	// a loaded layout with other dimensions is migrated to them.
	Rows    int
	Columns int
	// Pages is the page count of a fresh layout.
	Pages int

	FolderArea    layout.Area
	FolderPrefix  string
	FolderRows    int
	FolderColumns int

	// NewID returns folder ids. Defaults to uuid.NewString.
	NewID func() string

	Logger *log.Logger
}

func (o *Options) defaults() {
	if o.Pages < 1 {
		o.Pages = 1
	}
	if o.FolderArea.Width <= 0 || o.FolderArea.Height <= 0 {
		o.FolderArea = layout.Area{Width: 1, Height: 1}
	}
	if o.FolderPrefix == "" {
		o.FolderPrefix = "Folder"
	}
	if o.FolderRows <= 0 {
		o.FolderRows = 3
	}
	if o.FolderColumns <= 0 {
		o.FolderColumns = 3
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// Engine owns the in-memory layout and mirrors every change into the
// store through a Synchronizer.
//
// Engine is not safe for concurrent use. Callers deliver events from a
// single goroutine or serialize them, as the HTTP server does.
type Engine struct {
	opts    Options
	logger  *log.Logger
	syncer  *store.Synchronizer
	snap    *layout.Snapshot
	current int
}

// New returns an engine holding an empty layout of the configured size.
// Call Load to replace it with the stored layout.
func New(syncer *store.Synchronizer, opts Options) (*Engine, error) {
	opts.defaults()
	d := layout.Descriptor{PageCount: opts.Pages, Rows: opts.Rows, Columns: opts.Columns}
	if err := d.Check(); err != nil {
		return nil, err
	}
	return &Engine{
		opts:   opts,
		logger: opts.Logger,
		syncer: syncer,
		snap:   layout.NewSnapshot(opts.Rows, opts.Columns, opts.Pages),
	}, nil
}

func (e *Engine) defaultDescriptor() layout.Descriptor {
	return layout.Descriptor{PageCount: e.opts.Pages, Rows: e.opts.Rows, Columns: e.opts.Columns}
}

// =============================================================================
// Persistence
// =============================================================================

// Load reads the stored layout, falling back to an empty default layout
// when the store is empty. A stored layout that does not match the
// configured grid, or that fails validation, is repaired and written back.
func (e *Engine) Load(ctx context.Context) error {
	snap, found, err := e.syncer.Load(ctx, e.defaultDescriptor())
	if err != nil {
		return err
	}
	e.current = 0
	if !found {
		e.snap = layout.NewSnapshot(e.opts.Rows, e.opts.Columns, e.opts.Pages)
		e.logger.Info("no stored layout, starting empty", "rows", e.opts.Rows, "columns", e.opts.Columns)
		e.Persist()
		return nil
	}

	e.snap = snap
	repair, problems, err := layout.Reconcile(snap, e.opts.Rows, e.opts.Columns)
	for _, p := range problems {
		e.logger.Warn("stored layout problem", "problem", p.String())
	}
	if err != nil {
		e.logger.Warn("stored layout kept as is", "err", err)
		return nil
	}
	if repair != layout.RepairNone {
		e.logger.Info("stored layout repaired", "action", repair, "pages", snap.PageCount)
		e.Persist()
	}
	e.logger.Debug("layout loaded", "items", len(snap.Items), "folders", len(snap.Folders), "pages", snap.PageCount)
	return nil
}

// Persist submits the current layout for an asynchronous write.
func (e *Engine) Persist() {
	e.syncer.Submit(e.snap)
}

// Flush waits for pending writes and returns the last write error.
func (e *Engine) Flush(ctx context.Context) error {
	return e.syncer.Flush(ctx)
}

// Stale reports whether the store is behind the in-memory layout.
func (e *Engine) Stale() bool {
	return e.syncer.Stale()
}

// Close writes pending changes and stops the synchronizer.
func (e *Engine) Close() error {
	return e.syncer.Close()
}

// =============================================================================
// Queries
// =============================================================================

// Snapshot returns a deep copy of the layout.
func (e *Engine) Snapshot() *layout.Snapshot {
	return e.snap.Clone()
}

// Descriptor returns the grid descriptor.
func (e *Engine) Descriptor() layout.Descriptor {
	return e.snap.Descriptor
}

// Pages returns the top-level items grouped by page.
func (e *Engine) Pages() [][]layout.Item {
	return e.snap.Clone().Pages()
}

// CurrentPage returns the page interactive placements are anchored on.
func (e *Engine) CurrentPage() int {
	return e.current
}

// SetCurrentPage changes the page interactive placements are anchored on.
func (e *Engine) SetCurrentPage(page int) error {
	if page < 0 || page >= e.snap.PageCount {
		return errors.New(errors.ErrCodeNotFound, "page %d does not exist (layout has %d pages)", page, e.snap.PageCount)
	}
	e.current = page
	return nil
}

// Item returns the top-level item with the given key.
func (e *Engine) Item(key string) (layout.Item, bool) {
	it, ok := e.snap.Find(key)
	if !ok {
		return layout.Item{}, false
	}
	return *it, true
}

// =============================================================================
// Placement
// =============================================================================

// PlaceItem adds a new item to the grid and returns it with its assigned
// position. Items already present anywhere in the layout are rejected.
func (e *Engine) PlaceItem(it layout.Item, m layout.Mode) (layout.Item, error) {
	key := it.Key()
	if err := errors.ValidateKey(key); err != nil {
		return layout.Item{}, err
	}
	if e.snap.Contains(key) {
		return layout.Item{}, errors.New(errors.ErrCodeDuplicateItem, "item %q is already in the layout", key)
	}
	if it.Kind() == layout.KindFolder {
		return layout.Item{}, errors.New(errors.ErrCodeInvalidInput, "folders are created from apps, not placed directly")
	}
	it.Container = layout.TopLevel
	if err := layout.Place(e.snap, &it, m); err != nil {
		return layout.Item{}, err
	}
	e.snap.Items = append(e.snap.Items, it)
	e.logger.Info("placed item", "key", key, "kind", it.Kind(), "page", it.Page, "row", it.Row, "column", it.Column)
	e.Persist()
	return it, nil
}

// RemoveItems removes top-level items and compacts the pages they leave
// empty. Removing a folder discards its members. It returns the dropped
// pages, numbered as before the removal.
func (e *Engine) RemoveItems(keys ...string) ([]int, error) {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		if e.snap.Index(k) < 0 {
			return nil, errors.New(errors.ErrCodeNotFound, "item %q is not on the grid", k)
		}
		drop[k] = true
	}

	var removed []layout.Item
	kept := e.snap.Items[:0:0]
	for _, it := range e.snap.Items {
		if drop[it.Key()] {
			removed = append(removed, it)
			if it.Kind() == layout.KindFolder {
				delete(e.snap.Folders, it.Key())
			}
			continue
		}
		kept = append(kept, it)
	}
	e.snap.Items = kept

	dropped := layout.Compact(e.snap, removed)
	e.afterCompact(dropped)
	e.logger.Info("removed items", "count", len(removed), "dropped_pages", dropped)
	e.Persist()
	return dropped, nil
}

// UninstallBundle removes every app and widget of bundle, including folder
// members, and returns the removed top-level items.
func (e *Engine) UninstallBundle(bundle string) []layout.Item {
	removed, dropped := layout.RemoveBundle(e.snap, bundle)
	e.afterCompact(dropped)
	e.logger.Info("uninstalled bundle", "bundle", bundle, "removed", len(removed), "dropped_pages", dropped)
	e.Persist()
	return removed
}

// ChangeGridDimensions re-flows the layout onto rows×cols pages.
func (e *Engine) ChangeGridDimensions(rows, cols int) error {
	pages, err := layout.Migrate(e.snap.Items, rows, cols)
	if err != nil {
		return err
	}
	from := e.snap.Descriptor
	e.snap.Rows, e.snap.Columns, e.snap.PageCount = rows, cols, pages
	e.opts.Rows, e.opts.Columns = rows, cols
	e.current = min(e.current, pages-1)
	e.logger.Info("grid resized", "from", from, "rows", rows, "columns", cols, "pages", pages)
	e.Persist()
	return nil
}

// MoveItem drops a top-level item at (page, row, col). page may equal the
// page count to move the item onto a new last page. A page left empty by
// the move is compacted away.
func (e *Engine) MoveItem(key string, page, row, col int) (layout.Item, error) {
	i := e.snap.Index(key)
	if i < 0 {
		return layout.Item{}, errors.New(errors.ErrCodeNotFound, "item %q is not on the grid", key)
	}
	added := false
	if page == e.snap.PageCount {
		layout.AddBlankPage(e.snap)
		added = true
	}
	it := e.snap.Items[i]
	if !layout.FitsAt(e.snap, it, page, row, col) {
		if added {
			_ = layout.DeleteBlankPage(e.snap, page)
		}
		return layout.Item{}, errors.New(errors.ErrCodeInvalidInput, "item %q does not fit at page %d row %d column %d", key, page, row, col)
	}

	old := it
	e.snap.Items[i].Page, e.snap.Items[i].Row, e.snap.Items[i].Column = page, row, col
	dropped := layout.Compact(e.snap, []layout.Item{old})
	e.afterCompact(dropped)
	moved := e.snap.Items[i]
	e.logger.Info("moved item", "key", key, "page", moved.Page, "row", row, "column", col)
	e.Persist()
	return moved, nil
}

// =============================================================================
// Pages
// =============================================================================

// AddBlankPage appends an empty page, makes it current and returns it.
func (e *Engine) AddBlankPage() int {
	p := layout.AddBlankPage(e.snap)
	e.current = p
	e.Persist()
	return p
}

// DeleteBlankPage removes an empty page.
func (e *Engine) DeleteBlankPage(page int) error {
	if err := layout.DeleteBlankPage(e.snap, page); err != nil {
		return err
	}
	e.afterCompact([]int{page})
	e.Persist()
	return nil
}

// afterCompact keeps the current page pointing at the same content: it
// moves down by the dropped pages below it, and back one more page when
// the current page itself was dropped.
func (e *Engine) afterCompact(dropped []int) {
	cur := e.current
	for _, p := range dropped {
		if p <= e.current {
			cur--
		}
	}
	e.current = max(0, min(cur, e.snap.PageCount-1))
}

// =============================================================================
// Folders
// =============================================================================

// CreateFolder groups apps into a new folder. An empty name picks the next
// free "<prefix> N".
func (e *Engine) CreateFolder(name string, keys ...string) (layout.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = layout.NextFolderName(e.snap, e.opts.FolderPrefix)
	}
	f := layout.Folder{ID: e.opts.NewID(), Name: name}
	it, dropped, err := layout.CreateFolder(e.snap, f, e.opts.FolderArea, keys, layout.Interactive(e.current))
	if err != nil {
		return layout.Item{}, err
	}
	e.afterCompact(dropped)
	e.logger.Info("created folder", "id", f.ID, "name", name, "members", len(keys))
	e.Persist()
	return it, nil
}

// AddToFolder moves a top-level app into a folder.
func (e *Engine) AddToFolder(folderID, key string) error {
	dropped, err := layout.AddToFolder(e.snap, folderID, key)
	if err != nil {
		return err
	}
	e.afterCompact(dropped)
	e.Persist()
	return nil
}

// RemoveFromFolder puts a member back on the grid near the current page.
func (e *Engine) RemoveFromFolder(folderID, key string) error {
	dropped, err := layout.RemoveFromFolder(e.snap, folderID, key, layout.Interactive(e.current))
	if err != nil {
		return err
	}
	e.afterCompact(dropped)
	e.Persist()
	return nil
}

// DeleteFolder removes a folder, reparenting or discarding its members.
func (e *Engine) DeleteFolder(folderID string, policy layout.FolderPolicy) ([]layout.Item, error) {
	members, dropped, err := layout.DeleteFolder(e.snap, folderID, policy)
	if err != nil {
		return nil, err
	}
	e.afterCompact(dropped)
	e.logger.Info("deleted folder", "id", folderID, "policy", policy, "members", len(members))
	e.Persist()
	return members, nil
}

// RenameFolder changes a folder's name.
func (e *Engine) RenameFolder(folderID, name string) error {
	if err := layout.RenameFolder(e.snap, folderID, name); err != nil {
		return err
	}
	e.Persist()
	return nil
}

// Folder returns a copy of a folder's members.
func (e *Engine) Folder(folderID string) ([]layout.Item, bool) {
	members, ok := e.snap.Folders[folderID]
	if !ok {
		return nil, false
	}
	return append([]layout.Item(nil), members...), true
}

// FolderPages paginates a folder's members for the open-folder view.
func (e *Engine) FolderPages(folderID string) ([][]layout.Item, error) {
	members, ok := e.Folder(folderID)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "folder %q not found", folderID)
	}
	return layout.FolderPages(members, e.opts.FolderRows, e.opts.FolderColumns), nil
}

// =============================================================================
// Badges
// =============================================================================

// UpdateBadge sets the unread count shown on every app of bundle.
func (e *Engine) UpdateBadge(bundle string, count int) int {
	n := layout.UpdateBadge(e.snap, bundle, count)
	if n > 0 {
		e.Persist()
	}
	return n
}
