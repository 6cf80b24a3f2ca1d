// Package extract flattens a SourceUnit into queryable definition records.
package extract

import (
	"github.com/phobologic/pydocgen/internal/model"
)

// Definitions returns every definition in unit in pre-order: each outer
// definition precedes the definitions nested in it, siblings keep source
// order. Parent links are preserved.
func Definitions(unit *model.SourceUnit) []*model.Definition {
	var out []*model.Definition
	var walk func(defs []*model.Definition)
	walk = func(defs []*model.Definition) {
		for _, d := range defs {
			out = append(out, d)
			walk(d.Children)
		}
	}
	walk(unit.Defs)
	return out
}

// Find returns the definition with the given qualified name, or nil.
func Find(defs []*model.Definition, qualName string) *model.Definition {
	for _, d := range defs {
		if d.QualName == qualName {
			return d
		}
	}
	return nil
}

// Methods returns the methods a class owns directly.
func Methods(class *model.Definition) []*model.Definition {
	var out []*model.Definition
	for _, c := range class.Children {
		if c.Kind == model.Method {
			out = append(out, c)
		}
	}
	return out
}

// DocumentableParams returns the parameters that receive inferred
// descriptions. Receivers are excluded.
func DocumentableParams(def *model.Definition) []model.Parameter {
	var out []model.Parameter
	for _, p := range def.Params {
		if !p.IsReceiver {
			out = append(out, p)
		}
	}
	return out
}
