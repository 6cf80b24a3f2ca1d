// Package style checks docstrings against a small set of pydocstyle rules.
package style

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phobologic/pydocgen/internal/model"
)

// Rule identifiers.
const (
	EndsWithPeriod      = "D400"
	FirstWordCapital    = "D403"
	BlankAfterClassDoc  = "D204"
	BlankBeforeSections = "D205"
)

type rule struct {
	id    string
	check func(def *model.Definition, lines []string) string // message, or "" when satisfied
}

var rules = []rule{
	{EndsWithPeriod, func(_ *model.Definition, lines []string) string {
		if !strings.HasSuffix(strings.TrimSpace(lines[0]), ".") {
			return "first line should end with a period"
		}
		return ""
	}},
	{FirstWordCapital, func(_ *model.Definition, lines []string) string {
		r, _ := utf8.DecodeRuneInString(strings.TrimSpace(lines[0]))
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return "first word of the first line should be capitalized"
		}
		return ""
	}},
	{BlankAfterClassDoc, func(def *model.Definition, _ []string) string {
		if def.Kind == model.Class && def.HasFollowing && def.Doc.BlankLinesAfter != 1 {
			return "class docstring should be followed by exactly one blank line"
		}
		return ""
	}},
	{BlankBeforeSections, func(_ *model.Definition, lines []string) string {
		s := sectionStart(lines)
		if s < 0 {
			return ""
		}
		if s < 2 || strings.TrimSpace(lines[s-1]) != "" || strings.TrimSpace(lines[s-2]) == "" {
			return "exactly one blank line required between description and parameter section"
		}
		return ""
	}},
}

// sectionStart returns the index of the first parameter section line, or -1.
func sectionStart(lines []string) int {
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "Args:" || line == "Arguments:" || line == "Parameters" || strings.HasPrefix(line, ":param ") {
			return i
		}
	}
	return -1
}

// Validate reports the rule violations of def's docstring. Undocumented
// definitions have none.
func Validate(def *model.Definition) []model.Violation {
	if def.Doc.Empty() {
		return nil
	}
	lines := strings.Split(def.Doc.Text, "\n")
	var out []model.Violation
	for _, r := range rules {
		if msg := r.check(def, lines); msg != "" {
			out = append(out, model.Violation{
				Rule:       r.id,
				Message:    msg,
				Definition: def.QualName,
				Line:       def.Doc.Span.StartLine,
			})
		}
	}
	return out
}

// ValidateAll validates the definitions whose qualified names are listed,
// in the order of defs. A nil names slice validates every definition.
func ValidateAll(defs []*model.Definition, names []string) []model.Violation {
	var want map[string]bool
	if names != nil {
		want = make(map[string]bool, len(names))
		for _, n := range names {
			want[n] = true
		}
	}
	var out []model.Violation
	for _, def := range defs {
		if want != nil && !want[def.QualName] {
			continue
		}
		out = append(out, Validate(def)...)
	}
	return out
}
