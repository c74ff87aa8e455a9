package bitset

import "testing"

func TestSetGetClear(t *testing.T) {
	b := New(130)
	if b.Len() != 130 {
		t.Fatalf("Len() = %d, want 130", b.Len())
	}
	for _, i := range []int{0, 63, 64, 129} {
		if b.Get(i) {
			t.Errorf("bit %d set on fresh bitset", i)
		}
		b.Set(i)
		if !b.Get(i) {
			t.Errorf("bit %d not set after Set", i)
		}
	}
	if got := b.Count(); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}
	b.Clear(63)
	if b.Get(63) {
		t.Error("bit 63 still set after Clear")
	}
	b.ClearAll()
	if b.Any() {
		t.Error("Any() = true after ClearAll")
	}
}

func TestOutOfRangePanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*Bitset)
	}{
		{"get negative", func(b *Bitset) { b.Get(-1) }},
		{"set past end", func(b *Bitset) { b.Set(8) }},
		{"clear past end", func(b *Bitset) { b.Clear(100) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn(New(8))
		})
	}
}

func TestRegion(t *testing.T) {
	const rows, cols = 4, 4
	b := New(rows * cols)

	if !b.RegionFree(rows, cols, 0, 0, 2, 2) {
		t.Fatal("empty grid should admit 2x2 at origin")
	}
	b.SetRegion(rows, cols, 0, 0, 2, 2)
	if b.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", b.Count())
	}

	tests := []struct {
		name       string
		r, c, h, w int
		want       bool
	}{
		{"overlapping", 1, 1, 2, 2, false},
		{"right of block", 0, 2, 2, 2, true},
		{"below block", 2, 0, 2, 2, true},
		{"out of bounds", 3, 3, 2, 2, false},
		{"full width row", 2, 0, 1, 4, true},
		{"zero area in bounds", 0, 0, 0, 0, true},
		{"zero area out of bounds", 4, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.RegionFree(rows, cols, tt.r, tt.c, tt.h, tt.w); got != tt.want {
				t.Errorf("RegionFree(%d,%d,%d,%d) = %v, want %v", tt.r, tt.c, tt.h, tt.w, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	b := New(5)
	b.Set(1)
	b.Set(4)
	if got := b.String(); got != "01001" {
		t.Errorf("String() = %q, want %q", got, "01001")
	}
}
