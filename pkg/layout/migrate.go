package layout

import (
	"time"

	"github.com/matzehuels/deskgrid/pkg/bitset"
	"github.com/matzehuels/deskgrid/pkg/errors"
	"github.com/matzehuels/deskgrid/pkg/observability"
)

// Migrate re-flows items onto rows×cols pages and returns the resulting page
// count. Items keep their relative order: each is put at the first free
// cell of the page being filled, and a fresh page is started whenever the
// item came from a different original page than its predecessor or does not
// fit. The page count is not minimized.
//
// If any item is larger than the new grid nothing is changed and an
// ITEM_TOO_LARGE_FOR_GRID error is returned.
func Migrate(items []Item, rows, cols int) (int, error) {
	start := time.Now()
	pages, err := migrate(items, rows, cols)
	observability.Layout().OnMigrate(len(items), rows, cols, pages, time.Since(start), err)
	return pages, err
}

func migrate(items []Item, rows, cols int) (int, error) {
	if rows <= 0 || cols <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "grid must have positive dimensions, got %dx%d", rows, cols)
	}
	for _, it := range items {
		if it.Area.Width > cols || it.Area.Height > rows {
			return 0, &errors.TooLargeError{
				Key:     it.Key(),
				Width:   it.Area.Width,
				Height:  it.Area.Height,
				Rows:    rows,
				Columns: cols,
			}
		}
	}

	occ := bitset.New(rows * cols)
	page := 0
	used := false
	prevOrig := 0
	for i := range items {
		it := &items[i]
		orig := it.Page
		if i > 0 && orig != prevOrig && used {
			occ.ClearAll()
			page++
			used = false
		}
		prevOrig = orig

		h, w := max(it.Area.Height, 0), max(it.Area.Width, 0)
		r, c, ok := freeRegion(occ, rows, cols, h, w)
		if !ok {
			occ.ClearAll()
			page++
			r, c, _ = freeRegion(occ, rows, cols, h, w)
		}
		occ.SetRegion(rows, cols, r, c, h, w)
		it.Page, it.Row, it.Column = page, r, c
		used = true
	}
	return page + 1, nil
}

// freeRegion finds the first row-major top-left cell whose h×w rectangle of
// bits is clear.
func freeRegion(occ *bitset.Bitset, rows, cols, h, w int) (int, int, bool) {
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if occ.RegionFree(rows, cols, r, c, h, w) {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}
