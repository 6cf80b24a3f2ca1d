package defect

import (
	"fmt"
	"sort"

	"github.com/phobologic/pydocgen/internal/model"
	"github.com/phobologic/pydocgen/internal/splice"
)

// Repair replaces the token span of every defect with its suggestion. A
// defect overlapping one accepted before it is skipped and reported as a
// conflict. The source is not modified.
func Repair(source []byte, defects []model.Defect) ([]byte, []model.Defect, []model.FixConflict, error) {
	ordered := make([]model.Defect, len(defects))
	copy(ordered, defects)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		return ordered[i].End < ordered[j].End
	})

	var (
		applied   []model.Defect
		conflicts []model.FixConflict
		edits     []splice.Edit
	)
	for _, d := range ordered {
		if d.Suggestion == "" || d.Start >= d.End {
			continue
		}
		e := splice.Edit{Start: d.Start, End: d.End, Text: d.Suggestion}
		if n := len(edits); n > 0 && edits[n-1].Overlaps(e) {
			conflicts = append(conflicts, model.FixConflict{Skipped: d, Conflict: applied[n-1]})
			continue
		}
		edits = append(edits, e)
		applied = append(applied, d)
	}

	out, err := splice.Apply(source, edits)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("apply repairs: %w", err)
	}
	return out, applied, conflicts, nil
}
