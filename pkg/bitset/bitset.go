// Package bitset provides a fixed-size bit vector used as a page-local
// occupancy map.
//
// A [Bitset] holds n bits addressed by index in [0, n). The region helpers
// interpret the same bits as a row-major rows×cols grid, which is how the
// layout migration tracks which cells of the page being filled are taken.
//
//	occ := bitset.New(rows * cols)
//	if occ.RegionFree(rows, cols, r, c, h, w) {
//	    occ.SetRegion(rows, cols, r, c, h, w)
//	}
//
// Indices outside the vector panic, the same way slice indexing does.
package bitset

import (
	"fmt"
	"math/bits"
	"strings"
)

const wordBits = 64

// Bitset is a fixed-size vector of bits. The zero value is an empty set of
// length 0.
type Bitset struct {
	words []uint64
	n     int
}

// New returns a cleared Bitset of n bits. It panics if n is negative.
func New(n int) *Bitset {
	if n < 0 {
		panic(fmt.Sprintf("bitset: negative length %d", n))
	}
	return &Bitset{
		words: make([]uint64, (n+wordBits-1)/wordBits),
		n:     n,
	}
}

// Len returns the number of bits in the set.
func (b *Bitset) Len() int { return b.n }

// Get reports whether bit i is set.
func (b *Bitset) Get(i int) bool {
	b.check(i)
	return b.words[i/wordBits]&(1<<uint(i%wordBits)) != 0
}

// Set sets bit i.
func (b *Bitset) Set(i int) {
	b.check(i)
	b.words[i/wordBits] |= 1 << uint(i%wordBits)
}

// Clear clears bit i.
func (b *Bitset) Clear(i int) {
	b.check(i)
	b.words[i/wordBits] &^= 1 << uint(i%wordBits)
}

// ClearAll clears every bit.
func (b *Bitset) ClearAll() {
	for i := range b.words {
		b.words[i] = 0
	}
}

// Count returns the number of set bits.
func (b *Bitset) Count() int {
	total := 0
	for _, w := range b.words {
		total += bits.OnesCount64(w)
	}
	return total
}

// Any reports whether at least one bit is set.
func (b *Bitset) Any() bool {
	for _, w := range b.words {
		if w != 0 {
			return true
		}
	}
	return false
}

// RegionFree reports whether the h×w rectangle with top-left cell (r, c)
// lies inside the rows×cols grid and none of its bits are set.
// A rectangle with a zero dimension is free wherever its corner is in bounds.
func (b *Bitset) RegionFree(rows, cols, r, c, h, w int) bool {
	if r < 0 || c < 0 || r+h > rows || c+w > cols || r >= rows || c >= cols {
		return false
	}
	for y := r; y < r+h; y++ {
		for x := c; x < c+w; x++ {
			if b.Get(y*cols + x) {
				return false
			}
		}
	}
	return true
}

// SetRegion sets every bit of the h×w rectangle with top-left cell (r, c) in
// the rows×cols grid. The caller must have checked the bounds.
func (b *Bitset) SetRegion(rows, cols, r, c, h, w int) {
	for y := r; y < r+h; y++ {
		for x := c; x < c+w; x++ {
			b.Set(y*cols + x)
		}
	}
}

// String renders the bits as 0/1 characters, lowest index first.
func (b *Bitset) String() string {
	var sb strings.Builder
	sb.Grow(b.n)
	for i := 0; i < b.n; i++ {
		if b.Get(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func (b *Bitset) check(i int) {
	if i < 0 || i >= b.n {
		panic(fmt.Sprintf("bitset: index %d out of range [0,%d)", i, b.n))
	}
}
