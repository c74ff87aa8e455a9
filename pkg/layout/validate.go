package layout

import "fmt"

// Problem describes one inconsistency found by [Validate].
type Problem struct {
	Key    string
	Reason string
}

func (p Problem) String() string {
	if p.Key == "" {
		return p.Reason
	}
	return fmt.Sprintf("%s: %s", p.Key, p.Reason)
}

// Repair is the corrective action [Reconcile] applied.
type Repair int

const (
	RepairNone Repair = iota
	// RepairMigrated means the grid dimensions differed and every item was
	// re-flowed with [Migrate].
	RepairMigrated
	// RepairReplaced means duplicates were dropped and the remaining items
	// were re-placed in bulk mode in storage order.
	RepairReplaced
)

func (r Repair) String() string {
	switch r {
	case RepairMigrated:
		return "migrated"
	case RepairReplaced:
		return "replaced"
	default:
		return "none"
	}
}

// Validate checks a loaded snapshot against the expected grid dimensions.
// It reports dimension mismatches, out-of-bounds items, overlapping items,
// duplicate identities and member lists whose folder is gone.
func Validate(s *Snapshot, rows, cols int) []Problem {
	var probs []Problem
	if s.Rows != rows || s.Columns != cols {
		probs = append(probs, Problem{Reason: fmt.Sprintf("grid is %dx%d, expected %dx%d", s.Rows, s.Columns, rows, cols)})
	}
	if s.PageCount < 1 {
		probs = append(probs, Problem{Reason: fmt.Sprintf("page count %d", s.PageCount)})
	}

	seen := make(map[string]bool)
	for i, it := range s.Items {
		key := it.Key()
		if seen[key] {
			probs = append(probs, Problem{Key: key, Reason: "duplicate item"})
		}
		seen[key] = true
		if it.Page < 0 || it.Page >= s.PageCount {
			probs = append(probs, Problem{Key: key, Reason: fmt.Sprintf("page %d outside [0,%d)", it.Page, s.PageCount)})
		}
		if !it.InBounds(s.Rows, s.Columns) {
			probs = append(probs, Problem{Key: key, Reason: fmt.Sprintf("cell (%d,%d) span %s outside the grid", it.Row, it.Column, it.Area)})
		}
		for _, o := range s.Items[:i] {
			if it.Overlaps(o) {
				probs = append(probs, Problem{Key: key, Reason: fmt.Sprintf("overlaps %q", o.Key())})
			}
		}
	}
	for _, id := range s.folderIDs() {
		if i := s.Index(id); i < 0 || s.Items[i].Kind() != KindFolder {
			probs = append(probs, Problem{Key: id, Reason: "members without a folder"})
		}
		for _, m := range s.Folders[id] {
			if seen[m.Key()] {
				probs = append(probs, Problem{Key: m.Key(), Reason: "duplicate item"})
			}
			seen[m.Key()] = true
		}
	}
	return probs
}

// Reconcile repairs a snapshot that fails [Validate]. Duplicate and
// orphaned entries are dropped first (first occurrence wins). A dimension
// mismatch is then handled by migrating every item to rows×cols. Any other
// problem re-places the top-level items in bulk mode, in storage order, on a
// fresh grid. Items that cannot fit the grid at all are dropped and
// reported; zero-area items are kept at the origin of the first page.
func Reconcile(s *Snapshot, rows, cols int) (Repair, []Problem, error) {
	probs := Validate(s, rows, cols)
	if len(probs) == 0 {
		return RepairNone, nil, nil
	}
	dropDuplicates(s)

	if s.Rows != rows || s.Columns != cols {
		pages, err := Migrate(s.Items, rows, cols)
		if err != nil {
			return RepairNone, probs, err
		}
		s.Rows, s.Columns, s.PageCount = rows, cols, pages
		return RepairMigrated, probs, nil
	}

	items := s.Items
	s.Items = nil
	s.PageCount = 1
	for _, it := range items {
		if it.Area.Width <= 0 || it.Area.Height <= 0 {
			// Zero-area items collide with nothing; park them at the origin.
			it.Page, it.Row, it.Column = 0, 0, 0
			s.Items = append(s.Items, it)
			continue
		}
		if err := CheckFits(it, rows, cols); err != nil {
			probs = append(probs, Problem{Key: it.Key(), Reason: "dropped: " + err.Error()})
			continue
		}
		if err := Place(s, &it, Bulk); err != nil {
			return RepairReplaced, probs, err
		}
		s.Items = append(s.Items, it)
	}
	// A dropped folder leaves its member list behind.
	dropDuplicates(s)
	return RepairReplaced, probs, nil
}

// dropDuplicates keeps the first occurrence of every key across the grid
// and the member lists, and removes member lists whose folder is gone.
func dropDuplicates(s *Snapshot) {
	seen := make(map[string]bool)
	s.Items = filterItems(s.Items, func(it Item) bool {
		if seen[it.Key()] {
			return false
		}
		seen[it.Key()] = true
		return true
	})
	for _, id := range s.folderIDs() {
		if i := s.Index(id); i < 0 || s.Items[i].Kind() != KindFolder {
			delete(s.Folders, id)
			continue
		}
		s.Folders[id] = filterItems(s.Folders[id], func(m Item) bool {
			if seen[m.Key()] {
				return false
			}
			seen[m.Key()] = true
			return true
		})
	}
}
