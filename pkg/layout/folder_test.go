package layout

import (
	"testing"

	"github.com/matzehuels/deskgrid/pkg/errors"
)

func keysOf(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key()
	}
	return out
}

func newFolderLayout(t *testing.T) (*Snapshot, Item) {
	t.Helper()
	s := NewSnapshot(4, 4, 1)
	fill(t, s, 0, 6)
	f, dropped, err := CreateFolder(s, Folder{ID: "f1", Name: "Work"}, Area{1, 1},
		[]string{app(1).Key(), app(3).Key(), app(4).Key()}, Interactive(0))
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if dropped != nil {
		t.Fatalf("dropped = %v", dropped)
	}
	return s, f
}

func TestCreateFolder(t *testing.T) {
	s, f := newFolderLayout(t)

	if f.Page != 0 || f.Row != 0 || f.Column != 1 {
		t.Errorf("folder at p%d r%d c%d, want the first member's cell (0,0,1)", f.Page, f.Row, f.Column)
	}
	got := keysOf(s.Folders["f1"])
	want := []string{app(1).Key(), app(3).Key(), app(4).Key()}
	if len(got) != len(want) {
		t.Fatalf("members = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("member %d = %s, want %s", i, got[i], want[i])
		}
	}
	for _, m := range s.Folders["f1"] {
		if m.Container != Detached {
			t.Errorf("member %s container = %d, want %d", m.Key(), m.Container, Detached)
		}
	}
	if s.Index(app(3).Key()) >= 0 {
		t.Error("member still on the grid")
	}
	// Folder keeps the storage slot of its earliest member.
	if s.Items[1].Key() != "f1" {
		t.Errorf("Items[1] = %s, want f1", s.Items[1].Key())
	}
	assertConsistent(t, s)
}

func TestCreateFolderErrors(t *testing.T) {
	s := NewSnapshot(4, 4, 1)
	fill(t, s, 0, 3)
	w := widget(5, 2, 1)
	w.Row = 1
	s.Items = append(s.Items, w)

	tests := []struct {
		name string
		f    Folder
		area Area
		keys []string
		code errors.Code
	}{
		{"no id", Folder{}, Area{1, 1}, []string{app(0).Key(), app(1).Key()}, errors.ErrCodeInvalidInput},
		{"single app", Folder{ID: "x"}, Area{1, 1}, []string{app(0).Key()}, errors.ErrCodeInvalidInput},
		{"missing app", Folder{ID: "x"}, Area{1, 1}, []string{app(0).Key(), "nope"}, errors.ErrCodeNotFound},
		{"widget member", Folder{ID: "x"}, Area{1, 1}, []string{app(0).Key(), w.Key()}, errors.ErrCodeInvalidInput},
		{"repeated app", Folder{ID: "x"}, Area{1, 1}, []string{app(0).Key(), app(0).Key()}, errors.ErrCodeInvalidInput},
		{"id taken", Folder{ID: app(2).Key()}, Area{1, 1}, []string{app(0).Key(), app(1).Key()}, errors.ErrCodeDuplicateItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(s.Items)
			_, _, err := CreateFolder(s, tt.f, tt.area, tt.keys, Bulk)
			if errors.GetCode(err) != tt.code {
				t.Errorf("CreateFolder() error = %v, want code %s", err, tt.code)
			}
			if len(s.Items) != before {
				t.Errorf("grid changed on error")
			}
		})
	}

	_, _, err := CreateFolder(s, Folder{ID: "big"}, Area{5, 5}, []string{app(0).Key(), app(1).Key()}, Bulk)
	if !errors.IsTooLarge(err) {
		t.Errorf("oversized folder error = %v", err)
	}
}

func TestCreateFolderCompactsEmptiedPage(t *testing.T) {
	s := NewSnapshot(1, 2, 1)
	fill(t, s, 0, 3) // page 0: 0,1  page 1: 2
	_, dropped, err := CreateFolder(s, Folder{ID: "f"}, Area{1, 1}, []string{app(0).Key(), app(2).Key()}, Bulk)
	if err != nil {
		t.Fatal(err)
	}
	if len(dropped) != 1 || dropped[0] != 1 {
		t.Errorf("dropped = %v, want [1]", dropped)
	}
	if s.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", s.PageCount)
	}
}

func TestCreateFolderOpeningPageDropsEmptiedPage(t *testing.T) {
	// 2x2 pages: p0 holds 0-3, p1 holds 4-7, p2 holds only 8, p3 holds 9.
	s := NewSnapshot(2, 2, 4)
	for i := 0; i < 10; i++ {
		it := app(i)
		switch {
		case i < 8:
			it.Page, it.Row, it.Column = i/4, (i%4)/2, i%2
		case i == 8:
			it.Page = 2
		default:
			it.Page = 3
		}
		s.Items = append(s.Items, it)
	}

	// A 2x2 folder cannot take app 0's cell, so it opens a page after p0.
	f, dropped, err := CreateFolder(s, Folder{ID: "f"}, Area{2, 2}, []string{app(0).Key(), app(8).Key()}, Interactive(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(dropped) != 1 || dropped[0] != 2 {
		t.Errorf("dropped = %v, want [2]", dropped)
	}
	if f.Page != 1 || f.Row != 0 || f.Column != 0 {
		t.Errorf("folder at p%d r%d c%d, want p1 r0 c0", f.Page, f.Row, f.Column)
	}
	if s.PageCount != 4 {
		t.Errorf("PageCount = %d, want 4", s.PageCount)
	}
	for p := 0; p < s.PageCount; p++ {
		if s.PageEmpty(p) {
			t.Errorf("page %d is empty", p)
		}
	}
	if it, _ := s.Find(app(9).Key()); it.Page != 3 {
		t.Errorf("app 9 on page %d, want 3", it.Page)
	}
	assertConsistent(t, s)
}

func TestCreateFolderAtAnchorKeepsAnchorPage(t *testing.T) {
	s := NewSnapshot(1, 2, 1)
	fill(t, s, 0, 4) // page 0: 0,1  page 1: 2,3
	f, dropped, err := CreateFolder(s, Folder{ID: "f"}, Area{1, 1}, []string{app(2).Key(), app(3).Key()}, Interactive(0))
	if err != nil {
		t.Fatal(err)
	}
	if dropped != nil || s.PageCount != 2 {
		t.Errorf("dropped = %v, PageCount = %d, want none and 2", dropped, s.PageCount)
	}
	if f.Page != 1 || f.Column != 0 {
		t.Errorf("folder at p%d c%d, want p1 c0", f.Page, f.Column)
	}
}

func TestAddAndRemoveFromFolder(t *testing.T) {
	s, _ := newFolderLayout(t)

	if _, err := AddToFolder(s, "f1", app(5).Key()); err != nil {
		t.Fatalf("AddToFolder: %v", err)
	}
	if n := len(s.Folders["f1"]); n != 4 {
		t.Fatalf("members = %d, want 4", n)
	}
	if _, err := AddToFolder(s, "nope", app(0).Key()); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("AddToFolder(missing folder) = %v", err)
	}
	if _, err := AddToFolder(s, "f1", "ghost"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("AddToFolder(missing app) = %v", err)
	}

	if _, err := RemoveFromFolder(s, "f1", app(3).Key(), Interactive(0)); err != nil {
		t.Fatalf("RemoveFromFolder: %v", err)
	}
	it, ok := s.Find(app(3).Key())
	if !ok || it.Container != TopLevel {
		t.Fatalf("removed member not back on the grid: %v", it)
	}
	if _, err := RemoveFromFolder(s, "f1", app(3).Key(), Bulk); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("removing a non-member = %v", err)
	}
	assertConsistent(t, s)
}

func TestRemoveFromFolderDissolves(t *testing.T) {
	s := NewSnapshot(4, 4, 1)
	fill(t, s, 0, 4)
	f, _, err := CreateFolder(s, Folder{ID: "f"}, Area{1, 1}, []string{app(2).Key(), app(3).Key()}, Bulk)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := RemoveFromFolder(s, "f", app(2).Key(), Interactive(0)); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Folders["f"]; ok {
		t.Error("folder should dissolve with one member left")
	}
	if s.Index("f") >= 0 {
		t.Error("folder item still on the grid")
	}
	last, ok := s.Find(app(3).Key())
	if !ok || last.Page != f.Page || last.Row != f.Row || last.Column != f.Column {
		t.Errorf("last member at %v, want the folder's cell", last)
	}
	if _, ok := s.Find(app(2).Key()); !ok {
		t.Error("removed member missing from the grid")
	}
	assertConsistent(t, s)
}

func TestDeleteFolder(t *testing.T) {
	t.Run("discard", func(t *testing.T) {
		s, _ := newFolderLayout(t)
		members, dropped, err := DeleteFolder(s, "f1", Discard)
		if err != nil {
			t.Fatal(err)
		}
		if len(members) != 3 || dropped != nil {
			t.Errorf("members = %d dropped = %v", len(members), dropped)
		}
		if len(s.Items) != 3 || len(s.Folders) != 0 {
			t.Errorf("items = %d folders = %d, want 3 and 0", len(s.Items), len(s.Folders))
		}
	})

	t.Run("reparent", func(t *testing.T) {
		s, _ := newFolderLayout(t)
		members, _, err := DeleteFolder(s, "f1", Reparent)
		if err != nil {
			t.Fatal(err)
		}
		if len(s.Items) != 6 {
			t.Fatalf("items = %d, want 6", len(s.Items))
		}
		for i, m := range members {
			got, ok := s.Find(m.Key())
			if !ok || got.Container != TopLevel {
				t.Errorf("member %d not reparented", i)
			}
		}
		// Bulk placement fills the folder's freed cell first.
		if got, _ := s.Find(app(1).Key()); got.Row != 0 || got.Column != 1 {
			t.Errorf("first member at r%d c%d, want r0 c1", got.Row, got.Column)
		}
		assertConsistent(t, s)
	})

	t.Run("missing", func(t *testing.T) {
		s := NewSnapshot(4, 4, 1)
		fill(t, s, 0, 1)
		if _, _, err := DeleteFolder(s, app(0).Key(), Discard); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("DeleteFolder(app) = %v, want NOT_FOUND", err)
		}
	})
}

func TestRemovingFolderOnlyCompactsEmptiedPage(t *testing.T) {
	// A folder with three members shares page 0 with another app: removing
	// it frees one slot but keeps the page.
	s := NewSnapshot(4, 4, 1)
	fill(t, s, 0, 4)
	if _, _, err := CreateFolder(s, Folder{ID: "f"}, Area{1, 1}, []string{app(1).Key(), app(2).Key(), app(3).Key()}, Bulk); err != nil {
		t.Fatal(err)
	}
	_, dropped, err := DeleteFolder(s, "f", Discard)
	if err != nil {
		t.Fatal(err)
	}
	if dropped != nil || s.PageCount != 1 || len(s.Items) != 1 {
		t.Errorf("dropped = %v pages = %d items = %d", dropped, s.PageCount, len(s.Items))
	}

	// Alone on page 1, the folder's removal drops the page.
	s = NewSnapshot(1, 1, 1)
	fill(t, s, 0, 3)
	if _, _, err := CreateFolder(s, Folder{ID: "g"}, Area{1, 1}, []string{app(1).Key(), app(2).Key()}, Bulk); err != nil {
		t.Fatal(err)
	}
	_, dropped, err = DeleteFolder(s, "g", Discard)
	if err != nil {
		t.Fatal(err)
	}
	if len(dropped) != 1 || s.PageCount != 1 {
		t.Errorf("dropped = %v pages = %d, want [1] and 1", dropped, s.PageCount)
	}
}

func TestRemoveBundle(t *testing.T) {
	s := NewSnapshot(4, 4, 1)
	mail := NewApp("com.example.mail", "MainAbility", "entry")
	mailCard := NewWidget(Widget{CardID: 9, Bundle: "com.example.mail"}, 2, 1)
	for _, it := range []Item{app(0), app(1), app(2), mail, mailCard} {
		if err := Place(s, &it, Bulk); err != nil {
			t.Fatal(err)
		}
		s.Items = append(s.Items, it)
	}
	if _, _, err := CreateFolder(s, Folder{ID: "pair"}, Area{1, 1}, []string{app(1).Key(), mail.Key()}, Bulk); err != nil {
		t.Fatal(err)
	}

	removed, _ := RemoveBundle(s, "com.example.mail")
	if len(removed) != 1 || removed[0].Key() != mailCard.Key() {
		t.Errorf("removed = %v, want the mail widget", keysOf(removed))
	}
	if len(s.Folders) != 0 {
		t.Errorf("folder with one member left should dissolve")
	}
	if got, ok := s.Find(app(1).Key()); !ok || got.Container != TopLevel {
		t.Errorf("surviving member not on the grid")
	}
	if s.Contains(mail.Key()) {
		t.Error("mail app still present")
	}
	assertConsistent(t, s)
}

func TestRenameAndNextFolderName(t *testing.T) {
	s, _ := newFolderLayout(t)
	if got := NextFolderName(s, "Folder"); got != "Folder 1" {
		t.Errorf("NextFolderName = %q, want Folder 1", got)
	}
	if err := RenameFolder(s, "f1", "Folder 1"); err != nil {
		t.Fatal(err)
	}
	if got := NextFolderName(s, "Folder"); got != "Folder 2" {
		t.Errorf("NextFolderName = %q, want Folder 2", got)
	}
	if err := RenameFolder(s, "f1", "   "); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("blank rename = %v", err)
	}
	if err := RenameFolder(s, "zz", "x"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("rename missing = %v", err)
	}
}

func TestFolderPages(t *testing.T) {
	members := make([]Item, 10)
	for i := range members {
		members[i] = app(i)
	}
	tests := []struct {
		rows, cols int
		want       []int
	}{
		{3, 3, []int{9, 1}},
		{2, 5, []int{10}},
		{1, 4, []int{4, 4, 2}},
		{0, 3, nil},
	}
	for _, tt := range tests {
		pages := FolderPages(members, tt.rows, tt.cols)
		if len(pages) != len(tt.want) {
			t.Errorf("FolderPages(%d,%d) = %d pages, want %d", tt.rows, tt.cols, len(pages), len(tt.want))
			continue
		}
		for i, p := range pages {
			if len(p) != tt.want[i] {
				t.Errorf("FolderPages(%d,%d)[%d] = %d members, want %d", tt.rows, tt.cols, i, len(p), tt.want[i])
			}
		}
	}
}

func TestParseFolderPolicy(t *testing.T) {
	for in, want := range map[string]FolderPolicy{"": Reparent, "reparent": Reparent, "DISCARD": Discard} {
		got, err := ParseFolderPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseFolderPolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFolderPolicy("shred"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
