package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/deskgrid/pkg/errors"
)

// Detached is the container of a folder member whose parent row has not
// been written yet. The synchronizer replaces it with the parent's row id.
const Detached int64 = -1

// FolderPolicy decides what happens to members when their folder is deleted.
type FolderPolicy int

const (
	// Reparent places every member back on the main grid in bulk mode.
	Reparent FolderPolicy = iota
	// Discard drops the members together with the folder.
	Discard
)

func (p FolderPolicy) String() string {
	if p == Discard {
		return "discard"
	}
	return "reparent"
}

// ParseFolderPolicy maps "reparent" or "discard" to a policy.
func ParseFolderPolicy(s string) (FolderPolicy, error) {
	switch strings.ToLower(s) {
	case "", "reparent":
		return Reparent, nil
	case "discard":
		return Discard, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown folder policy %q (want reparent or discard)", s)
}

// CreateFolder groups the top-level apps named by keys into a new folder.
// The folder takes the cell of the first app when its footprint fits there,
// otherwise it is placed with m. Pages emptied by the grouping are compacted
// and their indices returned.
func CreateFolder(s *Snapshot, f Folder, area Area, keys []string, m Mode) (Item, []int, error) {
	if f.ID == "" {
		return Item{}, nil, errors.New(errors.ErrCodeInvalidInput, "folder id cannot be empty")
	}
	if len(keys) < 2 {
		return Item{}, nil, errors.New(errors.ErrCodeInvalidInput, "a folder needs at least two apps, got %d", len(keys))
	}
	if s.Contains(f.ID) {
		return Item{}, nil, errors.New(errors.ErrCodeDuplicateItem, "item %q already exists", f.ID)
	}

	folder := NewFolder(f.ID, f.Name, area)
	if err := CheckFits(folder, s.Rows, s.Columns); err != nil {
		return Item{}, nil, err
	}

	picked := make(map[string]bool, len(keys))
	first := -1
	for _, k := range keys {
		if picked[k] {
			return Item{}, nil, errors.New(errors.ErrCodeInvalidInput, "app %q listed twice", k)
		}
		i := s.Index(k)
		if i < 0 {
			return Item{}, nil, errors.New(errors.ErrCodeNotFound, "app %q is not on the grid", k)
		}
		if s.Items[i].Kind() != KindApp {
			return Item{}, nil, errors.New(errors.ErrCodeInvalidInput, "only apps can be grouped, %q is a %s", k, s.Items[i].Kind())
		}
		if first < 0 || i < first {
			first = i
		}
		picked[k] = true
	}
	anchor := s.Items[s.Index(keys[0])]

	var removed, members []Item
	for _, k := range keys {
		it := s.Items[s.Index(k)]
		removed = append(removed, it)
		members = append(members, asMember(it))
	}
	s.Items = filterItems(s.Items, func(it Item) bool { return !picked[it.Key()] })

	var drop []int
	atAnchor := FitsAt(s, folder, anchor.Page, anchor.Row, anchor.Column)
	if atAnchor {
		folder.Page, folder.Row, folder.Column = anchor.Page, anchor.Row, anchor.Column
	} else {
		// Compact before placing: an interactive placement may insert a
		// page and shift the pages the removed apps were counted on.
		drop = Compact(s, removed)
		if m.IsInteractive() {
			m = Interactive(m.Current() - pagesBelow(drop, m.Current()))
		}
		if err := Place(s, &folder, m); err != nil {
			return Item{}, nil, err
		}
	}
	folder.Badge = badgeSum(members)
	s.Items = insertItem(s.Items, first, folder)
	s.Folders[f.ID] = members
	if atAnchor {
		drop = Compact(s, removed)
	}

	placed, _ := s.Find(f.ID)
	return *placed, drop, nil
}

// AddToFolder moves a top-level app into an existing folder.
func AddToFolder(s *Snapshot, folderID, key string) ([]int, error) {
	if _, err := folderIndex(s, folderID); err != nil {
		return nil, err
	}
	i := s.Index(key)
	if i < 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "app %q is not on the grid", key)
	}
	it := s.Items[i]
	if it.Kind() != KindApp {
		return nil, errors.New(errors.ErrCodeInvalidInput, "only apps can be added to a folder, %q is a %s", key, it.Kind())
	}

	s.Items = append(s.Items[:i:i], s.Items[i+1:]...)
	s.Folders[folderID] = append(s.Folders[folderID], asMember(it))
	refreshFolderBadge(s, folderID)
	return Compact(s, []Item{it}), nil
}

// RemoveFromFolder takes a member out of its folder and places it on the
// grid with m. A folder left with a single member dissolves: that member
// takes the folder's cell on the grid.
func RemoveFromFolder(s *Snapshot, folderID, key string, m Mode) ([]int, error) {
	fi, err := folderIndex(s, folderID)
	if err != nil {
		return nil, err
	}
	members := s.Folders[folderID]
	mi := -1
	for i, it := range members {
		if it.Key() == key {
			mi = i
			break
		}
	}
	if mi < 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "folder %q has no member %q", folderID, key)
	}
	member := asTopLevel(members[mi])
	if err := CheckFits(member, s.Rows, s.Columns); err != nil {
		return nil, err
	}
	members = append(members[:mi:mi], members[mi+1:]...)

	folder := s.Items[fi]
	var removed []Item
	switch len(members) {
	case 0:
		s.Items = append(s.Items[:fi:fi], s.Items[fi+1:]...)
		delete(s.Folders, folderID)
		removed = append(removed, folder)
	case 1:
		s.Items[fi] = takeCell(asTopLevel(members[0]), folder)
		delete(s.Folders, folderID)
	default:
		s.Folders[folderID] = members
		refreshFolderBadge(s, folderID)
	}

	if err := Place(s, &member, m); err != nil {
		return nil, err
	}
	s.Items = append(s.Items, member)
	return Compact(s, removed), nil
}

// DeleteFolder removes a folder from the grid. With [Reparent] its members
// are placed back in bulk mode in membership order; with [Discard] they are
// dropped. The affected members are returned.
func DeleteFolder(s *Snapshot, folderID string, policy FolderPolicy) ([]Item, []int, error) {
	fi, err := folderIndex(s, folderID)
	if err != nil {
		return nil, nil, err
	}
	folder := s.Items[fi]
	members := s.Folders[folderID]
	s.Items = append(s.Items[:fi:fi], s.Items[fi+1:]...)
	delete(s.Folders, folderID)

	if policy == Reparent {
		for i := range members {
			it := asTopLevel(members[i])
			if err := Place(s, &it, Bulk); err != nil {
				return nil, nil, err
			}
			s.Items = append(s.Items, it)
			members[i] = it
		}
	}
	return members, Compact(s, []Item{folder}), nil
}

// RemoveBundle purges every app and widget of bundle from the grid and from
// folders, the way an uninstall does. Folders left with one member dissolve
// and folders left empty are deleted. It returns the removed top-level items
// and the dropped pages.
func RemoveBundle(s *Snapshot, bundle string) ([]Item, []int) {
	var removed []Item
	for _, id := range s.folderIDs() {
		members := s.Folders[id]
		kept := filterItems(members, func(it Item) bool { return it.Bundle() != bundle })
		if len(kept) == len(members) {
			continue
		}
		fi := s.Index(id)
		switch {
		case fi < 0:
			s.Folders[id] = kept
		case len(kept) == 0:
			removed = append(removed, s.Items[fi])
			s.Items = append(s.Items[:fi:fi], s.Items[fi+1:]...)
			delete(s.Folders, id)
		case len(kept) == 1:
			s.Items[fi] = takeCell(asTopLevel(kept[0]), s.Items[fi])
			delete(s.Folders, id)
		default:
			s.Folders[id] = kept
			refreshFolderBadge(s, id)
		}
	}

	s.Items = filterItems(s.Items, func(it Item) bool {
		if it.Bundle() == bundle {
			removed = append(removed, it)
			return false
		}
		return true
	})
	return removed, Compact(s, removed)
}

// RenameFolder changes a folder's display name.
func RenameFolder(s *Snapshot, folderID, name string) error {
	fi, err := folderIndex(s, folderID)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New(errors.ErrCodeInvalidInput, "folder name cannot be empty")
	}
	f := s.Items[fi].Payload.(Folder)
	f.Name = name
	s.Items[fi].Payload = f
	return nil
}

// NextFolderName returns "<prefix> N" for the lowest N ≥ 1 no folder uses.
func NextFolderName(s *Snapshot, prefix string) string {
	used := make(map[string]bool)
	for _, it := range s.Items {
		if f, ok := it.Payload.(Folder); ok {
			used[f.Name] = true
		}
	}
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s %d", prefix, n)
		if !used[name] {
			return name
		}
	}
}

// FolderPages splits folder members into pages of rows*cols entries, the
// way an open folder shows them.
func FolderPages(members []Item, rows, cols int) [][]Item {
	per := rows * cols
	if per <= 0 || len(members) == 0 {
		return nil
	}
	var pages [][]Item
	for i := 0; i < len(members); i += per {
		pages = append(pages, members[i:min(i+per, len(members))])
	}
	return pages
}

func folderIndex(s *Snapshot, id string) (int, error) {
	i := s.Index(id)
	if i < 0 || s.Items[i].Kind() != KindFolder {
		return -1, errors.New(errors.ErrCodeNotFound, "folder %q not found", id)
	}
	return i, nil
}

func asMember(it Item) Item {
	it.Container = Detached
	it.Page, it.Row, it.Column = 0, 0, 0
	return it
}

func asTopLevel(it Item) Item {
	it.Container = TopLevel
	if it.Area.Width <= 0 || it.Area.Height <= 0 {
		it.Area = Area{Width: 1, Height: 1}
	}
	return it
}

// takeCell moves it to the grid position of the item it replaces.
func takeCell(it, old Item) Item {
	it.Page, it.Row, it.Column = old.Page, old.Row, old.Column
	return it
}

func filterItems(items []Item, keep func(Item) bool) []Item {
	out := items[:0:0]
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func insertItem(items []Item, i int, it Item) []Item {
	if i < 0 || i > len(items) {
		i = len(items)
	}
	items = append(items, Item{})
	copy(items[i+1:], items[i:])
	items[i] = it
	return items
}
