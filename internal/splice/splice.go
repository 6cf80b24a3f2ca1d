// Package splice applies byte-range text edits to source.
package splice

import (
	"fmt"
	"sort"
)

// Edit replaces Source[Start:End] with Text. Start == End inserts.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Overlaps reports whether two edits touch a common byte. Two insertions at
// the same offset overlap; an insertion at the boundary of a replacement does
// not.
func (e Edit) Overlaps(o Edit) bool {
	if e.Start == e.End && o.Start == o.End {
		return e.Start == o.Start
	}
	return e.Start < o.End && o.Start < e.End
}

// Apply returns source with all edits applied. Edits are applied
// back-to-front so earlier offsets stay valid. Overlapping or out-of-range
// edits are an error; callers are expected to resolve conflicts first.
func Apply(source []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return source, nil
	}
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	var last *Edit
	for i := range sorted {
		e := &sorted[i]
		if e.Start < 0 || e.End < e.Start || e.End > len(source) {
			return nil, fmt.Errorf("edit [%d,%d) out of range for %d bytes", e.Start, e.End, len(source))
		}
		if last != nil && last.Overlaps(*e) {
			return nil, fmt.Errorf("edit [%d,%d) overlaps [%d,%d)", e.Start, e.End, last.Start, last.End)
		}
		if last == nil || e.End >= last.End {
			last = e
		}
	}

	out := make([]byte, len(source))
	copy(out, source)
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		tail := append([]byte(e.Text), out[e.End:]...)
		out = append(out[:e.Start], tail...)
	}
	return out, nil
}
