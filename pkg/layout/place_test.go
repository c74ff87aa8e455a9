package layout

import (
	"fmt"
	"testing"

	"github.com/matzehuels/deskgrid/pkg/errors"
)

func app(n int) Item {
	return NewApp(fmt.Sprintf("com.example.app%02d", n), "MainAbility", "entry")
}

func widget(id int64, w, h int) Item {
	return NewWidget(Widget{CardID: id, Bundle: "com.example.clock", Ability: "FormAbility", Module: "entry", Dimension: 2}, w, h)
}

// fill bulk-places n unit apps into s.
func fill(t *testing.T, s *Snapshot, from, n int) {
	t.Helper()
	for i := from; i < from+n; i++ {
		it := app(i)
		if err := Place(s, &it, Bulk); err != nil {
			t.Fatalf("Place(app%02d): %v", i, err)
		}
		s.Items = append(s.Items, it)
	}
}

func assertConsistent(t *testing.T, s *Snapshot) {
	t.Helper()
	if s.PageCount < 1 {
		t.Fatalf("PageCount = %d, want >= 1", s.PageCount)
	}
	for i, a := range s.Items {
		if !a.InBounds(s.Rows, s.Columns) {
			t.Errorf("%v out of %dx%d bounds", a, s.Rows, s.Columns)
		}
		if a.Page < 0 || a.Page >= s.PageCount {
			t.Errorf("%v page outside [0,%d)", a, s.PageCount)
		}
		for _, b := range s.Items[i+1:] {
			if a.Overlaps(b) {
				t.Errorf("%v overlaps %v", a, b)
			}
		}
	}
}

func TestPlaceBulkFullPageOpensNext(t *testing.T) {
	s := NewSnapshot(4, 4, 1)
	fill(t, s, 0, 16)

	it := app(16)
	if err := Place(s, &it, Bulk); err != nil {
		t.Fatalf("Place: %v", err)
	}
	if it.Page != 1 || it.Row != 0 || it.Column != 0 {
		t.Errorf("17th item at p%d r%d c%d, want p1 r0 c0", it.Page, it.Row, it.Column)
	}
	if s.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", s.PageCount)
	}
}

func TestPlaceTooLarge(t *testing.T) {
	s := NewSnapshot(4, 4, 1)
	fill(t, s, 0, 3)
	before := s.Clone()

	it := widget(7, 5, 5)
	for _, m := range []Mode{Bulk, Interactive(0)} {
		t.Run(m.String(), func(t *testing.T) {
			err := Place(s, &it, m)
			if !errors.IsTooLarge(err) {
				t.Fatalf("Place() error = %v, want ITEM_TOO_LARGE_FOR_GRID", err)
			}
			if s.PageCount != before.PageCount {
				t.Errorf("PageCount changed to %d", s.PageCount)
			}
		})
	}
}

func TestPlaceRejectsNonPositiveArea(t *testing.T) {
	s := NewSnapshot(4, 4, 1)
	it := widget(1, 0, 2)
	err := Place(s, &it, Bulk)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("Place() error = %v, want INVALID_INPUT", err)
	}
}

func TestPlaceFirstFitRowMajor(t *testing.T) {
	s := NewSnapshot(4, 4, 1)
	// Occupy (0,0) with a 2x2 widget, then a unit app lands at (0,2).
	w := widget(1, 2, 2)
	if err := Place(s, &w, Bulk); err != nil {
		t.Fatal(err)
	}
	s.Items = append(s.Items, w)

	tests := []struct {
		name      string
		item      Item
		row, col  int
		wantPage  int
		wantCount int
	}{
		{"unit fills gap right of widget", app(1), 0, 2, 0, 1},
		{"wide widget goes below", widget(2, 4, 1), 2, 0, 0, 1},
		{"tall widget beside first", widget(3, 2, 2), 0, 2, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := tt.item
			if err := Place(s, &it, Bulk); err != nil {
				t.Fatal(err)
			}
			if it.Page != tt.wantPage || it.Row != tt.row || it.Column != tt.col {
				t.Errorf("placed at p%d r%d c%d, want p%d r%d c%d", it.Page, it.Row, it.Column, tt.wantPage, tt.row, tt.col)
			}
			if s.PageCount != tt.wantCount {
				t.Errorf("PageCount = %d, want %d", s.PageCount, tt.wantCount)
			}
		})
	}
}

func TestPlaceInteractive(t *testing.T) {
	t.Run("uses current page", func(t *testing.T) {
		s := NewSnapshot(2, 2, 3)
		it := app(0)
		if err := Place(s, &it, Interactive(2)); err != nil {
			t.Fatal(err)
		}
		if it.Page != 2 {
			t.Errorf("page = %d, want 2", it.Page)
		}
	})

	t.Run("falls through to next page", func(t *testing.T) {
		s := NewSnapshot(2, 2, 1)
		fill(t, s, 0, 4)
		AddBlankPage(s)
		it := app(9)
		if err := Place(s, &it, Interactive(0)); err != nil {
			t.Fatal(err)
		}
		if it.Page != 1 || s.PageCount != 2 {
			t.Errorf("page = %d count = %d, want page 1 count 2", it.Page, s.PageCount)
		}
	})

	t.Run("ignores free pages further away", func(t *testing.T) {
		// Pages 0 and 1 full, page 2 empty: current 0 opens page 1 anew.
		s := NewSnapshot(2, 2, 1)
		fill(t, s, 0, 8)
		AddBlankPage(s)
		if s.PageCount != 3 {
			t.Fatalf("setup PageCount = %d", s.PageCount)
		}
		it := app(20)
		if err := Place(s, &it, Interactive(0)); err != nil {
			t.Fatal(err)
		}
		if it.Page != 1 || it.Row != 0 || it.Column != 0 {
			t.Errorf("placed at p%d r%d c%d, want p1 r0 c0", it.Page, it.Row, it.Column)
		}
		if s.PageCount != 4 {
			t.Errorf("PageCount = %d, want 4", s.PageCount)
		}
		for _, o := range s.Items {
			if o.Key() == app(4).Key() && o.Page != 2 {
				t.Errorf("item from old page 1 now on page %d, want 2", o.Page)
			}
		}
		s.Items = append(s.Items, it)
		assertConsistent(t, s)
	})

	t.Run("last page current opens after it", func(t *testing.T) {
		s := NewSnapshot(1, 1, 1)
		fill(t, s, 0, 1)
		it := app(1)
		if err := Place(s, &it, Interactive(0)); err != nil {
			t.Fatal(err)
		}
		if it.Page != 1 || s.PageCount != 2 {
			t.Errorf("page = %d count = %d, want 1 and 2", it.Page, s.PageCount)
		}
	})
}

func TestFitsAtAndOccupant(t *testing.T) {
	s := NewSnapshot(4, 4, 1)
	w := widget(1, 2, 2)
	w.Row, w.Column = 1, 1
	s.Items = append(s.Items, w)

	if o, ok := Occupant(s, 0, 2, 2); !ok || o.Key() != w.Key() {
		t.Errorf("Occupant(0,2,2) = %v, %v", o, ok)
	}
	if _, ok := Occupant(s, 0, 0, 0); ok {
		t.Error("Occupant(0,0,0) should be empty")
	}

	tests := []struct {
		name           string
		item           Item
		page, row, col int
		want           bool
	}{
		{"free corner", app(1), 0, 0, 0, true},
		{"covered cell", app(1), 0, 1, 1, false},
		{"off grid", app(1), 0, 4, 0, false},
		{"missing page", app(1), 1, 0, 0, false},
		{"self move", w, 0, 2, 2, true},
		{"partial overlap", widget(9, 2, 2), 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitsAt(s, tt.item, tt.page, tt.row, tt.col); got != tt.want {
				t.Errorf("FitsAt = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlankPages(t *testing.T) {
	s := NewSnapshot(2, 2, 1)
	fill(t, s, 0, 5) // pages 0 and 1
	if got := AddBlankPage(s); got != 2 {
		t.Fatalf("AddBlankPage = %d, want 2", got)
	}
	if got := InsertPage(s, 0); got != 1 {
		t.Fatalf("InsertPage = %d, want 1", got)
	}
	if it, _ := s.Find(app(4).Key()); it.Page != 2 {
		t.Errorf("app04 page = %d, want 2", it.Page)
	}

	tests := []struct {
		name string
		page int
		code errors.Code
	}{
		{"occupied", 0, errors.ErrCodePageNotEmpty},
		{"missing", 9, errors.ErrCodeNotFound},
		{"blank", 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DeleteBlankPage(s, tt.page)
			if errors.GetCode(err) != tt.code {
				t.Errorf("DeleteBlankPage(%d) = %v, want code %q", tt.page, err, tt.code)
			}
		})
	}
	if s.PageCount != 3 {
		t.Errorf("PageCount = %d, want 3", s.PageCount)
	}
	if it, _ := s.Find(app(4).Key()); it.Page != 1 {
		t.Errorf("app04 page = %d, want 1", it.Page)
	}

	single := NewSnapshot(2, 2, 1)
	if err := DeleteBlankPage(single, 0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("deleting the only page: %v", err)
	}
}

func TestRandomSequenceKeepsInvariants(t *testing.T) {
	s := NewSnapshot(5, 4, 1)
	areas := []Area{{1, 1}, {2, 2}, {4, 1}, {1, 1}, {2, 1}, {4, 4}, {1, 2}, {3, 2}}
	for i := 0; i < 60; i++ {
		a := areas[i%len(areas)]
		it := widget(int64(i), a.Width, a.Height)
		m := Bulk
		if i%3 == 0 {
			m = Interactive(i % s.PageCount)
		}
		if err := Place(s, &it, m); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		s.Items = append(s.Items, it)
		if i%7 == 6 {
			victim := s.Items[i%len(s.Items)]
			s.Items = append(s.Items[:i%len(s.Items)], s.Items[i%len(s.Items)+1:]...)
			Compact(s, []Item{victim})
		}
		assertConsistent(t, s)
	}
}
