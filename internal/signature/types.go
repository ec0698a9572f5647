package signature

import (
	"fmt"
	"sort"
)

// Color is an 8-bit RGB colour with named channels.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

func (c Color) String() string {
	return fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B)
}

// ReferencePixel is a screen coordinate plus the colour expected there.
type ReferencePixel struct {
	X     int   `json:"x"`
	Y     int   `json:"y"`
	Color Color `json:"color"`
}

// Signature is the ordered set of reference pixels for one label. Matching
// ignores order; order only gives each pixel a stable index for removal.
type Signature []ReferencePixel

// Clone returns an independent copy.
func (s Signature) Clone() Signature {
	if s == nil {
		return nil
	}
	out := make(Signature, len(s))
	copy(out, s)
	return out
}

// Without returns a copy of s with the given indices removed and the indices
// that were actually removed, in descending order. Indices outside [0, len)
// and duplicates are ignored.
//
// Deletion runs from the highest index down so that removing a lower index
// never shifts a higher one that has not been processed yet.
func (s Signature) Without(indices []int) (Signature, []int) {
	out := s.Clone()
	desc := uniqueDescending(indices)
	removed := make([]int, 0, len(desc))
	for _, idx := range desc {
		if idx < 0 || idx >= len(out) {
			continue
		}
		out = append(out[:idx], out[idx+1:]...)
		removed = append(removed, idx)
	}
	return out, removed
}

func uniqueDescending(indices []int) []int {
	seen := make(map[int]struct{}, len(indices))
	out := make([]int, 0, len(indices))
	for _, idx := range indices {
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
