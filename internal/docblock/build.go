// Package docblock builds, renders and places docstrings.
package docblock

import (
	"strings"

	"github.com/phobologic/pydocgen/internal/config"
	"github.com/phobologic/pydocgen/internal/infer"
	"github.com/phobologic/pydocgen/internal/model"
)

// Build populates the structured docstring for def from its metadata alone.
// Existing docstring text is never consulted.
func Build(def *model.Definition, engine *infer.Engine, cfg config.Config) model.DocBlock {
	block := model.DocBlock{
		Kind:     def.Kind,
		Style:    cfg.Style,
		Summary:  engine.Describe(def),
		Extended: engine.Extended(def),
	}

	switch def.Kind {
	case model.Class:
		for _, a := range def.Attributes {
			if strings.HasPrefix(a.Name, "_") {
				continue
			}
			block.Attributes = append(block.Attributes, model.ParamDoc{
				Name:        a.Name,
				Type:        a.Type,
				Description: engine.Attribute(a),
			})
		}

	case model.Function, model.Method:
		for _, p := range def.Params {
			if p.IsReceiver && !cfg.DocumentReceiver {
				continue
			}
			block.Params = append(block.Params, model.ParamDoc{
				Name:        p.Variadic + p.Name,
				Type:        p.Type,
				Description: engine.Param(p),
				Default:     p.Default,
				Optional:    p.HasDefault,
			})
		}
		switch {
		case def.IsGenerator:
			typ := yieldType(def.Returns)
			block.Yields = &model.ReturnDoc{Type: typ, Description: engine.Yield(typ)}
		case !infer.IsVoid(def.Returns):
			block.Returns = &model.ReturnDoc{Type: def.Returns, Description: engine.Return(def.Returns, def.Name)}
		}
		for _, exc := range def.Raises {
			block.Raises = append(block.Raises, model.RaiseDoc{Exception: exc, Description: engine.Raise(exc)})
		}

	default:
		panic("docblock: unexpected definition kind " + string(def.Kind))
	}
	return block
}

var generatorTypes = map[string]bool{
	"Iterator": true, "Iterable": true, "Generator": true,
	"AsyncIterator": true, "AsyncIterable": true, "AsyncGenerator": true,
}

// yieldType returns the element type of a generator annotation:
// "Iterator[int]" and "Generator[int, None, None]" both yield "int".
func yieldType(annotation string) string {
	open := strings.IndexByte(annotation, '[')
	if open < 0 || !strings.HasSuffix(annotation, "]") {
		return ""
	}
	outer := annotation[:open]
	if i := strings.LastIndexByte(outer, '.'); i >= 0 {
		outer = outer[i+1:]
	}
	if !generatorTypes[outer] {
		return ""
	}
	inner := annotation[open+1 : len(annotation)-1]
	depth := 0
	for i, r := range inner {
		switch r {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				return strings.TrimSpace(inner[:i])
			}
		}
	}
	return strings.TrimSpace(inner)
}
