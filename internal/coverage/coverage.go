// Package coverage computes documentation coverage over definitions.
package coverage

import (
	"math"
	"strings"

	"github.com/phobologic/pydocgen/internal/model"
)

// Eligibility decides whether a definition is counted.
type Eligibility func(def *model.Definition) bool

// Public counts definitions that have a body and whose name does not start
// with an underscore. Dunder methods such as __init__ are private by this
// rule.
func Public(def *model.Definition) bool {
	return def.HasBody && !strings.HasPrefix(def.Name, "_")
}

// All counts every definition that has a body.
func All(def *model.Definition) bool {
	return def.HasBody
}

// Compute counts eligible and documented definitions. defs is expected to
// be flat; children are not visited.
func Compute(defs []*model.Definition, eligible Eligibility) model.CoverageSnapshot {
	if eligible == nil {
		eligible = Public
	}
	var snap model.CoverageSnapshot
	for _, d := range defs {
		if !eligible(d) {
			continue
		}
		snap.Eligible++
		if d.Documented() {
			snap.Documented++
		}
	}
	snap.Percent = Percent(snap.Documented, snap.Eligible)
	return snap
}

// Percent returns documented/eligible as a percentage rounded to one
// decimal place. It is 0 when nothing is eligible.
func Percent(documented, eligible int) float64 {
	if eligible == 0 {
		return 0
	}
	return math.Round(float64(documented)*1000/float64(eligible)) / 10
}
