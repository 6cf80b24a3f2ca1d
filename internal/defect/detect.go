// Package defect finds identifiers that are probably misspellings of a nearby
// name and rewrites them.
package defect

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pydocgen/internal/lang"
	"github.com/phobologic/pydocgen/internal/model"
)

// MaxDistance is the largest edit distance still treated as a typo.
const MaxDistance = 2

var distParams = levenshtein.NewParams().MaxCost(MaxDistance)

// Detect reports references in unit that resolve to no binding but sit
// within a small edit distance of exactly one closest visible name. It does
// not modify the unit. Results are ordered by position.
func Detect(unit *model.SourceUnit) []model.Defect {
	root := unit.Root()
	if root == nil {
		return nil
	}
	b := bindAll(root, unit.Source)
	d := &detector{binder: b}
	d.visit(root, b.module)
	sort.SliceStable(d.found, func(i, j int) bool { return d.found[i].Start < d.found[j].Start })
	return d.found
}

type detector struct {
	*binder
	found []model.Defect
}

// candidate is a visible name and how far away it is.
type candidate struct {
	name  string
	dist  int
	depth int // 0 for the innermost scope; builtins rank last
}

func (d *detector) visit(n *sitter.Node, sc *scope) {
	switch n.Type() {
	case lang.NodeFunction:
		inner := d.scopeFor(n, sc)
		if params := n.ChildByFieldName("parameters"); params != nil {
			d.visitParams(params, sc)
		}
		if rt := n.ChildByFieldName("return_type"); rt != nil {
			d.visit(rt, sc)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			d.visit(body, inner)
		}
		return

	case lang.NodeClass:
		inner := d.scopeFor(n, sc)
		if bases := n.ChildByFieldName("superclasses"); bases != nil {
			d.visit(bases, sc)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			d.visit(body, inner)
		}
		return

	case lang.NodeLambda:
		inner := d.scopeFor(n, sc)
		if params := n.ChildByFieldName("parameters"); params != nil {
			d.visitParams(params, sc)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			d.visit(body, inner)
		}
		return

	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		// The first iterable is evaluated in the enclosing scope.
		inner := d.scopeFor(n, sc)
		first := true
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "for_in_clause" {
				d.visitTarget(child.ChildByFieldName("left"), inner)
				if right := child.ChildByFieldName("right"); right != nil {
					if first {
						d.visit(right, sc)
					} else {
						d.visit(right, inner)
					}
				}
				first = false
				continue
			}
			d.visit(child, inner)
		}
		return

	case lang.NodeAssignment, lang.NodeAugAssignment:
		d.visitTarget(n.ChildByFieldName("left"), sc)
		if typ := n.ChildByFieldName("type"); typ != nil {
			d.visit(typ, sc)
		}
		if right := n.ChildByFieldName("right"); right != nil {
			d.visit(right, sc)
		}
		return

	case "for_statement":
		d.visitTarget(n.ChildByFieldName("left"), sc)
		for _, field := range []string{"right", "body", "alternative"} {
			if child := n.ChildByFieldName(field); child != nil {
				d.visit(child, sc)
			}
		}
		return

	case "as_pattern":
		if n.NamedChildCount() > 0 {
			d.visit(n.NamedChild(0), sc)
		}
		return

	case "except_clause":
		afterAs := false
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if child.Type() == "as" {
				afterAs = true
				continue
			}
			if afterAs && child.Type() == lang.NodeIdentifier {
				afterAs = false
				continue
			}
			if child.IsNamed() {
				d.visit(child, sc)
			}
		}
		return

	case "named_expression":
		if value := n.ChildByFieldName("value"); value != nil {
			d.visit(value, sc)
		}
		return

	case lang.NodeKeywordArgument:
		if value := n.ChildByFieldName("value"); value != nil {
			d.visit(value, sc)
		}
		return

	case lang.NodeAttribute:
		obj := n.ChildByFieldName("object")
		if obj != nil {
			d.visit(obj, sc)
		}
		d.checkReceiverAttribute(n, obj, sc)
		return

	case "import_statement", "import_from_statement", "future_import_statement",
		"global_statement", "nonlocal_statement", "case_pattern", "dotted_name":
		return

	case lang.NodeIdentifier:
		d.checkName(n, sc)
		return
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		d.visit(n.NamedChild(i), sc)
	}
}

func (d *detector) scopeFor(n *sitter.Node, fallback *scope) *scope {
	if s, ok := d.scopes[keyOf(n)]; ok {
		return s
	}
	return fallback
}

// visitParams visits annotations and default values, which are evaluated
// in the enclosing scope. Parameter names themselves are bindings.
func (d *detector) visitParams(params *sitter.Node, sc *scope) {
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "typed_parameter":
			if typ := p.ChildByFieldName("type"); typ != nil {
				d.visit(typ, sc)
			}
		case "default_parameter":
			if value := p.ChildByFieldName("value"); value != nil {
				d.visit(value, sc)
			}
		case "typed_default_parameter":
			if typ := p.ChildByFieldName("type"); typ != nil {
				d.visit(typ, sc)
			}
			if value := p.ChildByFieldName("value"); value != nil {
				d.visit(value, sc)
			}
		}
	}
}

// visitTarget walks an assignment target. Bare names are bindings; the
// object and subscript parts of attribute and subscript targets are loads.
func (d *detector) visitTarget(t *sitter.Node, sc *scope) {
	if t == nil {
		return
	}
	switch t.Type() {
	case lang.NodeIdentifier:
		return
	case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "list",
		"expression_list", "parenthesized_expression", "list_splat_pattern", "list_splat":
		for i := 0; i < int(t.NamedChildCount()); i++ {
			d.visitTarget(t.NamedChild(i), sc)
		}
	case lang.NodeAttribute:
		if obj := t.ChildByFieldName("object"); obj != nil {
			d.visit(obj, sc)
		}
	default:
		d.visit(t, sc)
	}
}

func (d *detector) checkName(n *sitter.Node, sc *scope) {
	name := d.text(n)
	if d.starSeen || sc.resolves(name) || lang.IsBuiltin(name) {
		return
	}
	best, ok := closest(name, d.visibleNames(sc))
	if !ok {
		return
	}
	kind := model.UndefinedReference
	if m := sc.method(); m != nil && best.name == m.receiver {
		kind = model.NameTypo
	}
	d.report(n, kind, name, best, sc)
}

// checkReceiverAttribute flags attribute loads on a method receiver, or on a
// name of known builtin type, whose attribute is not a member of the class or
// type but is a near miss of one.
func (d *detector) checkReceiverAttribute(n, obj *sitter.Node, sc *scope) {
	attr := n.ChildByFieldName("attribute")
	if attr == nil || obj == nil || obj.Type() != lang.NodeIdentifier {
		return
	}
	name := d.text(attr)
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return
	}
	members := d.membersOf(d.text(obj), sc)
	if members == nil {
		return
	}
	i := sort.SearchStrings(members, name)
	if i < len(members) && members[i] == name {
		return
	}
	best, ok := closest(name, [][]string{members})
	if !ok {
		return
	}
	d.report(attr, model.NameTypo, name, best, sc)
}

// membersOf returns the sorted members of the value obj names in sc: the
// class of a method receiver, or the builtin type of an annotated or
// literal-assigned name. It returns nil when the members are not known in
// full.
func (d *detector) membersOf(obj string, sc *scope) []string {
	if m := sc.method(); m != nil && obj == m.receiver {
		if owner, _ := sc.lookup(obj); owner != m || m.class.inherits {
			return nil
		}
		members := make([]string, 0, len(m.class.members))
		for member := range m.class.members {
			members = append(members, member)
		}
		sort.Strings(members)
		return members
	}
	return lang.BuiltinMembers(sc.typeOf(obj))
}

func (d *detector) report(n *sitter.Node, kind model.DefectKind, token string, best candidate, sc *scope) {
	longest := len(token)
	if len(best.name) > longest {
		longest = len(best.name)
	}
	d.found = append(d.found, model.Defect{
		Kind:       kind,
		Line:       int(n.StartPoint().Row) + 1,
		Column:     int(n.StartPoint().Column) + 1,
		Start:      int(n.StartByte()),
		End:        int(n.EndByte()),
		Token:      token,
		Suggestion: best.name,
		Confidence: 1 - float64(best.dist)/float64(longest),
		Scope:      sc.qualName,
	})
}

// visibleNames lists candidate names innermost scope first, with builtins
// as the outermost tier.
func (d *detector) visibleNames(sc *scope) [][]string {
	var tiers [][]string
	for cur := sc; cur != nil; cur = cur.parent {
		if sc.sees(cur) {
			tiers = append(tiers, cur.order)
		}
	}
	return append(tiers, lang.BuiltinNames())
}

// closest returns the unique best candidate for token. Candidates are
// ranked by distance, then by scope depth; a tie on both is ambiguous and
// yields no suggestion.
func closest(token string, tiers [][]string) (candidate, bool) {
	limit := MaxDistance
	if half := len(token) / 2; half < limit {
		limit = half
	}
	if limit == 0 {
		return candidate{}, false
	}

	var best candidate
	found, ambiguous := false, false
	seen := make(map[string]struct{})
	for depth, names := range tiers {
		for _, name := range names {
			if name == token {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			dist := levenshtein.Distance(token, name, distParams)
			if dist > limit {
				continue
			}
			c := candidate{name: name, dist: dist, depth: depth}
			switch {
			case !found || c.dist < best.dist || (c.dist == best.dist && c.depth < best.depth):
				best, found, ambiguous = c, true, false
			case c.dist == best.dist && c.depth == best.depth:
				ambiguous = true
			}
		}
	}
	if !found || ambiguous {
		return candidate{}, false
	}
	return best, true
}
