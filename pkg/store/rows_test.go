package store

import (
	"testing"

	"github.com/matzehuels/deskgrid/pkg/layout"
)

func TestParseArea(t *testing.T) {
	tests := []struct {
		in      string
		want    layout.Area
		wantErr bool
	}{
		{"1,1", layout.Area{Width: 1, Height: 1}, false},
		{"4,2", layout.Area{Width: 4, Height: 2}, false},
		{" 2 , 3 ", layout.Area{Width: 2, Height: 3}, false},
		{"", layout.Area{}, true},
		{"2x2", layout.Area{}, true},
		{"a,1", layout.Area{}, true},
		{"1,-1", layout.Area{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseArea(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseArea(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseArea(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRowConversion(t *testing.T) {
	items := []layout.Item{
		layout.NewApp("com.example.mail", "MainAbility", "entry"),
		layout.NewWidget(layout.Widget{CardID: 77, Bundle: "com.example.clock", Ability: "Form", Module: "entry", Dimension: 2}, 2, 2),
		layout.NewFolder("9a1c", "Work", layout.Area{Width: 1, Height: 1}),
	}
	items[0].Page, items[0].Row, items[0].Column, items[0].Badge = 1, 2, 3, 4

	for _, it := range items {
		t.Run(it.Kind().String(), func(t *testing.T) {
			r := ToRow(it)
			if r.KeyName != it.Key() || r.TypeID != int(it.Kind()) {
				t.Errorf("row = %+v", r)
			}
			got, malformed, err := FromRow(r, 4, 4)
			if err != nil || malformed != "" {
				t.Fatalf("FromRow: %v %q", err, malformed)
			}
			if got != it {
				t.Errorf("FromRow(ToRow(x)) = %v, want %v", got, it)
			}
		})
	}
}

func TestFromRowMalformed(t *testing.T) {
	base := ToRow(layout.NewApp("com.example.mail", "MainAbility", "entry"))

	tests := []struct {
		name     string
		mutate   func(*Row)
		wantRow  int
		wantCol  int
		wantPage int
	}{
		{"bad area", func(r *Row) { r.Area = "wide"; r.GridRow = 1 }, 1, 0, 0},
		{"negative row", func(r *Row) { r.GridRow = -2; r.GridColumn = 1 }, 0, 1, 0},
		{"negative page", func(r *Row) { r.Page = -1 }, 0, 0, 0},
		{"outside grid", func(r *Row) { r.GridRow = 9; r.GridColumn = 9 }, 3, 3, 0},
		{"span past edge", func(r *Row) { r.Area = "2,1"; r.GridColumn = 3 }, 0, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)
			it, malformed, err := FromRow(r, 4, 4)
			if err != nil {
				t.Fatal(err)
			}
			if malformed == "" {
				t.Error("expected a malformed description")
			}
			if it.Area != (layout.Area{}) {
				t.Errorf("area = %v, want zero", it.Area)
			}
			if it.Row != tt.wantRow || it.Column != tt.wantCol || it.Page != tt.wantPage {
				t.Errorf("position p%d r%d c%d, want p%d r%d c%d", it.Page, it.Row, it.Column, tt.wantPage, tt.wantRow, tt.wantCol)
			}
		})
	}

	unknown := base
	unknown.TypeID = 7
	if _, _, err := FromRow(unknown, 4, 4); err == nil {
		t.Error("unknown type id should fail")
	}
	noID := ToRow(layout.NewFolder("x", "X", layout.Area{Width: 1, Height: 1}))
	noID.FolderID = ""
	if _, _, err := FromRow(noID, 4, 4); err == nil {
		t.Error("folder without id should fail")
	}
}

func TestMongoHelpers(t *testing.T) {
	f := containerFilter(layout.TopLevel)
	if len(f) != 1 || f[0].Key != "container" || f[0].Value != layout.TopLevel {
		t.Errorf("containerFilter = %v", f)
	}
	d := toDescriptorDoc(layout.Descriptor{PageCount: 3, Rows: 5, Columns: 4})
	if d.ID != mongoDescriptorID || d.PageCount != 3 || d.Rows != 5 || d.Columns != 4 {
		t.Errorf("toDescriptorDoc = %+v", d)
	}
}
