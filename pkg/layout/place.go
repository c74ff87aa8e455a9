package layout

import (
	"fmt"

	"github.com/matzehuels/deskgrid/pkg/errors"
	"github.com/matzehuels/deskgrid/pkg/observability"
)

// Mode selects how [Place] searches for a free region.
type Mode struct {
	interactive bool
	current     int
}

// Bulk scans every page in order and appends a page when none admits the
// item. It is used for startup population and re-placement.
var Bulk = Mode{}

// Interactive restricts the search to the current page and the one after it.
// When neither admits the item a page is opened right after current.
func Interactive(current int) Mode {
	return Mode{interactive: true, current: current}
}

// IsInteractive reports whether m was built with [Interactive].
func (m Mode) IsInteractive() bool { return m.interactive }

// Current returns the page an interactive mode was anchored on.
func (m Mode) Current() int { return m.current }

func (m Mode) String() string {
	if m.interactive {
		return fmt.Sprintf("interactive(%d)", m.current)
	}
	return "bulk"
}

// CheckFits returns an error when an item can never be placed on a
// rows×cols page, either because its area is not positive or because it
// spans more cells than the page has in some direction.
func CheckFits(it Item, rows, cols int) error {
	if it.Area.Width <= 0 || it.Area.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "item %q has non-positive area %s", it.Key(), it.Area)
	}
	if it.Area.Width > cols || it.Area.Height > rows {
		return &errors.TooLargeError{
			Key:     it.Key(),
			Width:   it.Area.Width,
			Height:  it.Area.Height,
			Rows:    rows,
			Columns: cols,
		}
	}
	return nil
}

// Place assigns it a page, row and column in s using first-fit search.
//
// The item must not already be in s.Items; the caller appends it after a
// successful placement. Only it and s.PageCount change, except when an
// interactive placement opens a page: items on later pages then move down
// by one page so the opened page starts empty.
func Place(s *Snapshot, it *Item, m Mode) error {
	opened, err := place(s, it, m)
	page := it.Page
	if err != nil {
		page = -1
	}
	observability.Layout().OnPlace(it.Key(), m.String(), page, opened, err)
	return err
}

func place(s *Snapshot, it *Item, m Mode) (opened bool, err error) {
	if err := s.Descriptor.Check(); err != nil {
		return false, err
	}
	if err := CheckFits(*it, s.Rows, s.Columns); err != nil {
		return false, err
	}

	if !m.interactive {
		for p := 0; p < s.PageCount; p++ {
			if r, c, ok := firstFit(s, *it, p); ok {
				it.Page, it.Row, it.Column = p, r, c
				return false, nil
			}
		}
		it.Page, it.Row, it.Column = s.PageCount, 0, 0
		s.PageCount++
		return true, nil
	}

	cur := clampPage(m.current, s.PageCount)
	next := min(cur+1, s.PageCount-1)
	for _, p := range []int{cur, next} {
		if r, c, ok := firstFit(s, *it, p); ok {
			it.Page, it.Row, it.Column = p, r, c
			return false, nil
		}
	}
	it.Page, it.Row, it.Column = InsertPage(s, cur), 0, 0
	return true, nil
}

// firstFit scans page in row-major order for the first top-left cell where
// it fits without overlapping another top-level item.
func firstFit(s *Snapshot, it Item, page int) (row, col int, ok bool) {
	for r := 0; r+it.Area.Height <= s.Rows; r++ {
		for c := 0; c+it.Area.Width <= s.Columns; c++ {
			if fitsAt(s, it, page, r, c) {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// FitsAt reports whether it could sit at (page, row, col) of s. Items
// sharing its key are ignored, so an item already in the layout can be
// tested against its own destination.
func FitsAt(s *Snapshot, it Item, page, row, col int) bool {
	if page < 0 || page >= s.PageCount {
		return false
	}
	if row < 0 || col < 0 || row+it.Area.Height > s.Rows || col+it.Area.Width > s.Columns {
		return false
	}
	return fitsAt(s, it, page, row, col)
}

func fitsAt(s *Snapshot, it Item, page, row, col int) bool {
	key := it.Key()
	for _, o := range s.Items {
		if o.Page != page || o.Container != TopLevel || (key != "" && o.Key() == key) {
			continue
		}
		if rectsOverlap(row, col, it.Area.Height, it.Area.Width, o.Row, o.Column, o.Area.Height, o.Area.Width) {
			return false
		}
	}
	return true
}

// Occupant returns the top-level item covering the cell (page, row, col).
func Occupant(s *Snapshot, page, row, col int) (Item, bool) {
	for _, o := range s.Items {
		if o.Page == page && rectsOverlap(row, col, 1, 1, o.Row, o.Column, o.Area.Height, o.Area.Width) {
			return o, true
		}
	}
	return Item{}, false
}

// InsertPage opens an empty page right after page `after` and returns its
// index. Items on later pages move down by one.
func InsertPage(s *Snapshot, after int) int {
	after = clampPage(after, s.PageCount)
	for i := range s.Items {
		if s.Items[i].Page > after {
			s.Items[i].Page++
		}
	}
	s.PageCount++
	return after + 1
}

// AddBlankPage appends an empty page and returns its index.
func AddBlankPage(s *Snapshot) int {
	s.PageCount++
	return s.PageCount - 1
}

// DeleteBlankPage removes an empty page. Items on later pages move up by
// one. The last remaining page cannot be deleted.
func DeleteBlankPage(s *Snapshot, page int) error {
	if page < 0 || page >= s.PageCount {
		return errors.New(errors.ErrCodeNotFound, "page %d does not exist (layout has %d pages)", page, s.PageCount)
	}
	if !s.PageEmpty(page) {
		return errors.New(errors.ErrCodePageNotEmpty, "page %d still holds items", page)
	}
	if s.PageCount == 1 {
		return errors.New(errors.ErrCodeInvalidInput, "cannot delete the only page")
	}
	for i := range s.Items {
		if s.Items[i].Page > page {
			s.Items[i].Page--
		}
	}
	s.PageCount--
	return nil
}

func clampPage(p, count int) int {
	if p < 0 {
		return 0
	}
	if p >= count {
		return count - 1
	}
	return p
}
