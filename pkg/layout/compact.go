package layout

import (
	"sort"

	"github.com/matzehuels/deskgrid/pkg/observability"
)

// Compact drops the pages emptied by a removal and renumbers later pages.
//
// s.Items must already exclude removed. A page is dropped when it held
// items before the removal and holds none after it. Pages that were blank
// beforehand are left alone. Shifts are computed against the numbering
// before any page is dropped, so an item above two dropped pages moves down
// by two. At least one page always remains.
//
// The returned slice lists the dropped page indices in ascending order,
// numbered as they were before compaction.
func Compact(s *Snapshot, removed []Item) []int {
	// Per-page counts over the pre-removal set, minus the removed items,
	// leave exactly the survivors.
	counts := make(map[int]int)
	for _, it := range s.Items {
		counts[it.Page]++
	}

	var drop []int
	seen := make(map[int]bool)
	for _, it := range removed {
		p := it.Page
		if seen[p] || p < 0 || p >= s.PageCount || counts[p] != 0 {
			continue
		}
		seen[p] = true
		drop = append(drop, p)
	}
	sort.Ints(drop)
	if len(drop) >= s.PageCount {
		drop = drop[1:]
	}
	if len(drop) == 0 {
		return nil
	}

	for i := range s.Items {
		s.Items[i].Page -= pagesBelow(drop, s.Items[i].Page)
	}
	s.PageCount -= len(drop)
	observability.Layout().OnCompact(drop, s.PageCount)
	return drop
}

// pagesBelow counts the entries of the sorted slice drop that are less
// than page.
func pagesBelow(drop []int, page int) int {
	return sort.SearchInts(drop, page)
}
