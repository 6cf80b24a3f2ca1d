package docblock

import (
	"bytes"
	"fmt"

	"github.com/phobologic/pydocgen/internal/config"
	"github.com/phobologic/pydocgen/internal/infer"
	"github.com/phobologic/pydocgen/internal/model"
	"github.com/phobologic/pydocgen/internal/splice"
)

// Action is what happened to one definition's docstring.
type Action string

const (
	Generated  Action = "generated"
	Normalized Action = "normalized"
)

// Change records a docstring written for one definition. Unchanged is set
// when normalization reproduced the existing text byte for byte.
type Change struct {
	QualName  string
	Action    Action
	Unchanged bool
}

// Result is the output of Generator.Apply.
type Result struct {
	Output  []byte
	Changes []Change
}

// Count returns the number of changes of kind a that altered the text.
func (r *Result) Count(a Action) int {
	n := 0
	for _, c := range r.Changes {
		if c.Action == a && !c.Unchanged {
			n++
		}
	}
	return n
}

// Touched returns the qualified names of every definition given a
// docstring, in source order.
func (r *Result) Touched() []string {
	out := make([]string, 0, len(r.Changes))
	for _, c := range r.Changes {
		out = append(out, c.QualName)
	}
	return out
}

// Generator places rendered docstrings into source.
type Generator struct {
	Engine *infer.Engine
}

// NewGenerator returns a Generator using engine, or the default engine when
// engine is nil.
func NewGenerator(engine *infer.Engine) *Generator {
	if engine == nil {
		engine = infer.New()
	}
	return &Generator{Engine: engine}
}

// Apply computes one edit per eligible definition in defs and applies them
// to the unit's source. Undocumented definitions, including those with an
// empty docstring, are generated; documented ones are rewritten only when
// cfg.NormalizeExistingDocstrings is set.
func (g *Generator) Apply(unit *model.SourceUnit, defs []*model.Definition, cfg config.Config) (*Result, error) {
	eligible := cfg.Eligibility()
	source := unit.Source
	res := &Result{}
	var edits []splice.Edit

	for _, def := range defs {
		if !eligible(def) {
			continue
		}
		var action Action
		switch {
		case !def.Documented():
			action = Generated
		case cfg.NormalizeExistingDocstrings:
			action = Normalized
		default:
			continue
		}

		literal := Render(Build(def, g.Engine, cfg), def.BodyIndent, cfg.MaxLineLength)
		var e splice.Edit
		if def.Doc != nil {
			e = replaceEdit(source, def, literal)
		} else {
			e = insertEdit(source, def, literal)
		}
		change := Change{QualName: def.QualName, Action: action}
		if e.Start != e.End && string(source[e.Start:e.End]) == e.Text {
			change.Unchanged = true
		} else {
			edits = append(edits, e)
		}
		res.Changes = append(res.Changes, change)
	}

	out, err := splice.Apply(source, edits)
	if err != nil {
		return nil, fmt.Errorf("placing docstrings in %s: %w", unit.Path, err)
	}
	res.Output = out
	return res, nil
}

// replaceEdit rewrites an existing docstring in place. A class docstring
// followed by another statement is left with exactly one blank line after
// it.
func replaceEdit(source []byte, def *model.Definition, literal string) splice.Edit {
	e := splice.Edit{Start: def.Doc.Span.StartByte, End: def.Doc.Span.EndByte, Text: literal}
	if def.Kind != model.Class || !def.HasFollowing {
		return e
	}
	eol, ok := restOfLineBlank(source, e.End)
	if !ok {
		return e
	}
	e.End = skipBlankLines(source, eol)
	e.Text = literal + "\n\n"
	return e
}

// insertEdit adds a docstring to a definition that has none. The literal
// goes on its own line directly after the header; an inline body is moved
// onto the following line.
func insertEdit(source []byte, def *model.Definition, literal string) splice.Edit {
	spacer := "\n"
	if def.Kind == model.Class && def.HasFollowing {
		spacer = "\n\n"
	}
	if def.InlineBody {
		return splice.Edit{
			Start: def.HeaderEnd,
			End:   def.BodyStart,
			Text:  "\n" + def.BodyIndent + literal + spacer + def.BodyIndent,
		}
	}

	at := def.HeaderEnd
	if eol := bytes.IndexByte(source[at:], '\n'); eol >= 0 {
		at += eol + 1
	} else {
		at = len(source)
	}
	e := splice.Edit{Start: at, End: at, Text: def.BodyIndent + literal + spacer}
	if at == len(source) && (at == 0 || source[at-1] != '\n') {
		e.Text = "\n" + e.Text
	}
	if spacer == "\n\n" {
		e.End = skipBlankLines(source, at)
	}
	return e
}

// restOfLineBlank reports whether only whitespace follows off on its line,
// and returns the offset just past that line's newline.
func restOfLineBlank(source []byte, off int) (int, bool) {
	for i := off; i < len(source); i++ {
		switch source[i] {
		case ' ', '\t', '\r':
		case '\n':
			return i + 1, true
		default:
			return 0, false
		}
	}
	return len(source), true
}

// skipBlankLines advances from a line start past whitespace-only lines.
func skipBlankLines(source []byte, off int) int {
	for off < len(source) {
		next, ok := restOfLineBlank(source, off)
		if !ok || next == off {
			break
		}
		off = next
	}
	return off
}
