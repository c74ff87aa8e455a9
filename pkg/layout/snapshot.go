package layout

import (
	"sort"

	"github.com/matzehuels/deskgrid/pkg/errors"
)

// Descriptor describes the page grid every placement is computed against.
type Descriptor struct {
	PageCount int `json:"page_count"`
	Rows      int `json:"rows"`
	Columns   int `json:"columns"`
}

// Check reports a descriptor that cannot hold any item.
func (d Descriptor) Check() error {
	if d.PageCount < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "page count must be at least 1, got %d", d.PageCount)
	}
	if d.Rows <= 0 || d.Columns <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "grid must have positive dimensions, got %dx%d", d.Rows, d.Columns)
	}
	return nil
}

// Cells returns the number of cells on one page.
func (d Descriptor) Cells() int { return d.Rows * d.Columns }

// Snapshot is the complete in-memory layout: the grid descriptor, the ordered
// top-level items and, per folder id, the ordered folder members.
type Snapshot struct {
	Descriptor
	Items   []Item
	Folders map[string][]Item
}

// NewSnapshot returns an empty layout of the given dimensions.
func NewSnapshot(rows, cols, pages int) *Snapshot {
	if pages < 1 {
		pages = 1
	}
	return &Snapshot{
		Descriptor: Descriptor{PageCount: pages, Rows: rows, Columns: cols},
		Folders:    make(map[string][]Item),
	}
}

// Clone returns a deep copy that shares no slices or maps with s.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Descriptor: s.Descriptor,
		Items:      append([]Item(nil), s.Items...),
		Folders:    make(map[string][]Item, len(s.Folders)),
	}
	for id, members := range s.Folders {
		c.Folders[id] = append([]Item(nil), members...)
	}
	return c
}

// Index returns the position of the top-level item with the given key in
// s.Items, or -1.
func (s *Snapshot) Index(key string) int {
	for i := range s.Items {
		if s.Items[i].Key() == key {
			return i
		}
	}
	return -1
}

// Find returns a pointer to the top-level item with the given key.
func (s *Snapshot) Find(key string) (*Item, bool) {
	if i := s.Index(key); i >= 0 {
		return &s.Items[i], true
	}
	return nil, false
}

// FolderOf returns the id of the folder holding a member with the given key.
func (s *Snapshot) FolderOf(key string) (string, bool) {
	for _, id := range s.folderIDs() {
		for _, m := range s.Folders[id] {
			if m.Key() == key {
				return id, true
			}
		}
	}
	return "", false
}

// Contains reports whether key is present anywhere in the layout.
func (s *Snapshot) Contains(key string) bool {
	if s.Index(key) >= 0 {
		return true
	}
	_, ok := s.FolderOf(key)
	return ok
}

// ItemsOnPage returns the top-level items of one page in storage order.
func (s *Snapshot) ItemsOnPage(page int) []Item {
	var out []Item
	for _, it := range s.Items {
		if it.Page == page {
			out = append(out, it)
		}
	}
	return out
}

// PageEmpty reports whether no top-level item sits on page.
func (s *Snapshot) PageEmpty(page int) bool {
	for _, it := range s.Items {
		if it.Page == page {
			return false
		}
	}
	return true
}

// Pages groups the top-level items by page. The result always has
// PageCount entries; empty pages are nil.
func (s *Snapshot) Pages() [][]Item {
	n := s.PageCount
	for _, it := range s.Items {
		if it.Page >= n {
			n = it.Page + 1
		}
	}
	pages := make([][]Item, n)
	for _, it := range s.Items {
		if it.Page >= 0 {
			pages[it.Page] = append(pages[it.Page], it)
		}
	}
	return pages
}

// SortByPosition orders top-level items by page, row, then column.
// The sort is stable so items sharing a cell keep their storage order.
func (s *Snapshot) SortByPosition() {
	sort.SliceStable(s.Items, func(i, j int) bool {
		a, b := s.Items[i], s.Items[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Column < b.Column
	})
}

func (s *Snapshot) folderIDs() []string {
	ids := make([]string, 0, len(s.Folders))
	for id := range s.Folders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
