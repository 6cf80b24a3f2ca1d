package docblock

import (
	"strings"

	"github.com/phobologic/pydocgen/internal/model"
)

// sectionIndent indents entries under a section header.
const sectionIndent = "    "

// Render produces the docstring literal for block. The first line carries
// no indentation; the caller places it at indent, which is applied to every
// following line. A summary-only block becomes a one-liner when it fits in
// maxLineLength columns.
func Render(block model.DocBlock, indent string, maxLineLength int) string {
	summary := block.Summary
	if !block.HasSections() {
		one := quote(summary, `"""`+summary+`"""`)
		if maxLineLength <= 0 || len(indent)+len(one) <= maxLineLength {
			return one
		}
	}

	lines := []string{summary}
	var sections [][]string
	if block.Extended != "" {
		sections = append(sections, []string{block.Extended})
	}
	switch block.Style {
	case model.NumPy:
		sections = append(sections, numpySections(block)...)
	case model.ReST:
		if fields := restFields(block); len(fields) > 0 {
			sections = append(sections, fields)
		}
	default:
		sections = append(sections, googleSections(block)...)
	}
	for _, s := range sections {
		lines = append(lines, "")
		lines = append(lines, s...)
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
			if line != "" {
				b.WriteString(indent)
			}
		}
		b.WriteString(line)
	}
	b.WriteByte('\n')
	b.WriteString(indent)
	body := b.String()
	return quote(body, `"""`+body+`"""`)
}

// quote guards the literal against content that would end or alter it.
func quote(content, literal string) string {
	if strings.Contains(content, `"""`) {
		literal = `"""` + strings.ReplaceAll(content, `"""`, `'''`) + `"""`
	}
	if strings.Contains(content, `\`) {
		literal = "r" + literal
	}
	return literal
}

func googleSections(block model.DocBlock) [][]string {
	var out [][]string
	if len(block.Params) > 0 {
		out = append(out, googleEntries("Args:", block.Params))
	}
	if r := block.Returns; r != nil {
		out = append(out, []string{"Returns:", sectionIndent + typed(r.Type, r.Description)})
	}
	if y := block.Yields; y != nil {
		out = append(out, []string{"Yields:", sectionIndent + typed(y.Type, y.Description)})
	}
	if len(block.Raises) > 0 {
		sec := []string{"Raises:"}
		for _, r := range block.Raises {
			sec = append(sec, sectionIndent+r.Exception+": "+r.Description)
		}
		out = append(out, sec)
	}
	if len(block.Attributes) > 0 {
		out = append(out, googleEntries("Attributes:", block.Attributes))
	}
	return out
}

func googleEntries(header string, params []model.ParamDoc) []string {
	sec := []string{header}
	for _, p := range params {
		var qual []string
		if p.Type != "" {
			qual = append(qual, p.Type)
		}
		if p.Optional {
			qual = append(qual, "optional")
		}
		head := p.Name
		if len(qual) > 0 {
			head += " (" + strings.Join(qual, ", ") + ")"
		}
		sec = append(sec, sectionIndent+head+": "+withDefault(p))
	}
	return sec
}

func typed(typ, desc string) string {
	if typ == "" {
		return desc
	}
	return typ + ": " + desc
}

func withDefault(p model.ParamDoc) string {
	if p.Optional && p.Default != "" {
		return p.Description + " Defaults to " + p.Default + "."
	}
	return p.Description
}

func numpySections(block model.DocBlock) [][]string {
	var out [][]string
	header := func(title string) []string {
		return []string{title, strings.Repeat("-", len(title))}
	}
	entries := func(title string, params []model.ParamDoc) []string {
		sec := header(title)
		for _, p := range params {
			head := p.Name
			var qual []string
			if p.Type != "" {
				qual = append(qual, p.Type)
			}
			if p.Optional {
				qual = append(qual, "optional")
			}
			if len(qual) > 0 {
				head += " : " + strings.Join(qual, ", ")
			}
			sec = append(sec, head, sectionIndent+withDefault(p))
		}
		return sec
	}
	value := func(title string, r *model.ReturnDoc) []string {
		sec := header(title)
		if r.Type != "" {
			return append(sec, r.Type, sectionIndent+r.Description)
		}
		return append(sec, r.Description)
	}

	if len(block.Params) > 0 {
		out = append(out, entries("Parameters", block.Params))
	}
	if block.Returns != nil {
		out = append(out, value("Returns", block.Returns))
	}
	if block.Yields != nil {
		out = append(out, value("Yields", block.Yields))
	}
	if len(block.Raises) > 0 {
		sec := header("Raises")
		for _, r := range block.Raises {
			sec = append(sec, r.Exception, sectionIndent+r.Description)
		}
		out = append(out, sec)
	}
	if len(block.Attributes) > 0 {
		out = append(out, entries("Attributes", block.Attributes))
	}
	return out
}

func restFields(block model.DocBlock) []string {
	var out []string
	for _, p := range block.Params {
		out = append(out, ":param "+p.Name+": "+withDefault(p))
		if typ := restType(p); typ != "" {
			out = append(out, ":type "+p.Name+": "+typ)
		}
	}
	if r := block.Returns; r != nil {
		out = append(out, ":returns: "+r.Description)
		if r.Type != "" {
			out = append(out, ":rtype: "+r.Type)
		}
	}
	if y := block.Yields; y != nil {
		out = append(out, ":yields: "+y.Description)
		if y.Type != "" {
			out = append(out, ":ytype: "+y.Type)
		}
	}
	for _, r := range block.Raises {
		out = append(out, ":raises "+r.Exception+": "+r.Description)
	}
	for _, a := range block.Attributes {
		out = append(out, ":ivar "+a.Name+": "+a.Description)
		if a.Type != "" {
			out = append(out, ":vartype "+a.Name+": "+a.Type)
		}
	}
	return out
}

func restType(p model.ParamDoc) string {
	switch {
	case p.Type != "" && p.Optional:
		return p.Type + ", optional"
	case p.Type != "":
		return p.Type
	}
	return ""
}
