package defect

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pydocgen/internal/lang"
)

type scopeKind int

const (
	moduleScope scopeKind = iota
	classScope
	functionScope
	lambdaScope
	comprehensionScope
)

// classInfo collects the names a class defines: class-level bindings,
// methods and attributes assigned through the receiver in any method.
// Members of an inheriting class are not known in full.
type classInfo struct {
	members  map[string]struct{}
	inherits bool
}

type scope struct {
	kind     scopeKind
	names    map[string]struct{}
	order    []string // binding order, for deterministic candidate lists
	parent   *scope
	qualName string

	// types holds the builtin type every binding of a name agrees on, or ""
	// when any binding is of unknown or different type.
	types map[string]string

	class    *classInfo // for class scopes and their methods
	receiver string     // receiver parameter name of a method
}

func newScope(kind scopeKind, parent *scope, qualName string) *scope {
	return &scope{
		kind:     kind,
		names:    make(map[string]struct{}),
		types:    make(map[string]string),
		parent:   parent,
		qualName: qualName,
	}
}

func (s *scope) bind(name string) {
	s.bindAs(name, "")
}

// bindAs binds name with a known builtin type, or "" for unknown.
func (s *scope) bindAs(name, typ string) {
	if name == "" {
		return
	}
	if _, ok := s.names[name]; ok {
		if s.types[name] != typ {
			s.types[name] = ""
		}
		return
	}
	s.names[name] = struct{}{}
	s.order = append(s.order, name)
	s.types[name] = typ
}

// sees reports whether names bound in cur are visible from s. A class body
// is not an enclosing scope for the functions, lambdas and comprehensions
// nested in it.
func (s *scope) sees(cur *scope) bool {
	return cur == s || cur.kind != classScope
}

// resolves reports whether name is bound in s or any enclosing scope
// visible from it.
func (s *scope) resolves(name string) bool {
	_, ok := s.lookup(name)
	return ok
}

// lookup returns the visible scope binding name.
func (s *scope) lookup(name string) (*scope, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if !s.sees(cur) {
			continue
		}
		if _, ok := cur.names[name]; ok {
			return cur, true
		}
	}
	return nil, false
}

// typeOf returns the builtin type name resolves to from s, or "".
func (s *scope) typeOf(name string) string {
	if owner, ok := s.lookup(name); ok {
		return owner.types[name]
	}
	return ""
}

// method returns the innermost enclosing method scope, or nil. Lambdas and
// comprehensions inside a method still see its receiver.
func (s *scope) method() *scope {
	for cur := s; cur != nil; cur = cur.parent {
		switch cur.kind {
		case functionScope:
			if cur.receiver != "" {
				return cur
			}
			return nil
		case classScope, moduleScope:
			return nil
		}
	}
	return nil
}

// enclosingFunction returns the nearest function or module scope; walrus
// targets bind there.
func (s *scope) enclosingFunction() *scope {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.kind == functionScope || cur.kind == moduleScope {
			return cur
		}
	}
	return s
}

type nodeKey struct {
	start, end uint32
	typ        string
}

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{start: n.StartByte(), end: n.EndByte(), typ: n.Type()}
}

// binder is the first pass: it creates a scope for every scope-introducing
// node and records every name bound in it.
type binder struct {
	source   []byte
	scopes   map[nodeKey]*scope
	module   *scope
	starSeen bool
}

func bindAll(root *sitter.Node, source []byte) *binder {
	b := &binder{source: source, scopes: make(map[nodeKey]*scope)}
	b.module = newScope(moduleScope, nil, "")
	b.scopes[keyOf(root)] = b.module
	b.walk(root, b.module)
	return b
}

func (b *binder) text(n *sitter.Node) string {
	return lang.NodeText(n, b.source)
}

func (b *binder) walk(n *sitter.Node, sc *scope) {
	switch n.Type() {
	case lang.NodeFunction:
		name := lang.DefinitionName(n, b.source)
		sc.bind(name)
		fn := newScope(functionScope, sc, qualify(sc, name))
		b.scopes[keyOf(n)] = fn
		if cls := lang.EnclosingClass(n); cls != nil && sc.kind == classScope {
			fn.class = sc.class
			if !hasDecorator(lang.Decorators(n, b.source), "staticmethod") {
				fn.receiver = firstParamName(n.ChildByFieldName("parameters"), b.source)
			}
			sc.class.members[name] = struct{}{}
		}
		if params := n.ChildByFieldName("parameters"); params != nil {
			b.bindParams(params, fn)
			b.walkChildren(params, sc)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			b.walk(body, fn)
		}
		return

	case lang.NodeClass:
		name := lang.DefinitionName(n, b.source)
		sc.bind(name)
		if sc.kind == classScope {
			sc.class.members[name] = struct{}{}
		}
		cls := newScope(classScope, sc, qualify(sc, name))
		cls.class = &classInfo{members: make(map[string]struct{}), inherits: b.inherits(n)}
		b.scopes[keyOf(n)] = cls
		if body := n.ChildByFieldName("body"); body != nil {
			b.walk(body, cls)
		}
		for name := range cls.names {
			cls.class.members[name] = struct{}{}
		}
		return

	case lang.NodeLambda:
		lam := newScope(lambdaScope, sc, sc.qualName)
		b.scopes[keyOf(n)] = lam
		if params := n.ChildByFieldName("parameters"); params != nil {
			b.bindParams(params, lam)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			b.walk(body, lam)
		}
		return

	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		comp := newScope(comprehensionScope, sc, sc.qualName)
		b.scopes[keyOf(n)] = comp
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "for_in_clause" {
				b.bindTarget(child.ChildByFieldName("left"), comp)
			}
		}
		b.walkChildren(n, comp)
		return

	case lang.NodeAssignment:
		left := n.ChildByFieldName("left")
		if left != nil && left.Type() == lang.NodeIdentifier {
			typ := ""
			if t := n.ChildByFieldName("type"); t != nil {
				typ = lang.BuiltinType(b.text(t))
			} else if right := n.ChildByFieldName("right"); right != nil {
				typ = b.valueType(right)
			}
			sc.bindAs(b.text(left), typ)
		} else {
			b.bindTarget(left, sc)
		}
	case lang.NodeAugAssignment:
		// x += y rebinds x without changing which builtin it is.
		if left := n.ChildByFieldName("left"); left != nil && left.Type() == lang.NodeIdentifier {
			if _, ok := sc.names[b.text(left)]; !ok {
				sc.bind(b.text(left))
			}
		} else {
			b.bindTarget(left, sc)
		}
	case "for_statement":
		b.bindTarget(n.ChildByFieldName("left"), sc)
	case "as_pattern":
		b.bindTarget(n.ChildByFieldName("alias"), sc)
	case "except_clause":
		b.bindExceptAlias(n, sc)
	case "named_expression":
		if name := n.ChildByFieldName("name"); name != nil {
			sc.bind(b.text(name))
			sc.enclosingFunction().bind(b.text(name))
		}
	case "import_statement":
		b.bindImports(n, sc, false)
		return
	case "import_from_statement":
		b.bindImports(n, sc, true)
		return
	case "future_import_statement":
		return
	case "global_statement", "nonlocal_statement":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if id := n.NamedChild(i); id.Type() == lang.NodeIdentifier {
				sc.bind(b.text(id))
				if n.Type() == "global_statement" {
					b.module.bind(b.text(id))
				}
			}
		}
		return
	case "case_pattern":
		b.bindAllIdentifiers(n, sc)
		return
	}
	b.walkChildren(n, sc)
}

func (b *binder) walkChildren(n *sitter.Node, sc *scope) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		b.walk(n.NamedChild(i), sc)
	}
}

// bindTarget binds the names an assignment-like target introduces.
// Attribute targets on a method's receiver register class attributes.
func (b *binder) bindTarget(t *sitter.Node, sc *scope) {
	if t == nil {
		return
	}
	switch t.Type() {
	case lang.NodeIdentifier:
		sc.bind(b.text(t))
	case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "list",
		"expression_list", "parenthesized_expression", "list_splat_pattern", "list_splat",
		"as_pattern_target":
		for i := 0; i < int(t.NamedChildCount()); i++ {
			b.bindTarget(t.NamedChild(i), sc)
		}
	case lang.NodeAttribute:
		obj := t.ChildByFieldName("object")
		attr := t.ChildByFieldName("attribute")
		if m := sc.method(); m != nil && obj != nil && attr != nil &&
			obj.Type() == lang.NodeIdentifier && b.text(obj) == m.receiver {
			m.class.members[b.text(attr)] = struct{}{}
		}
	}
}

func (b *binder) bindParams(params *sitter.Node, sc *scope) {
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		sc.bindAs(paramName(p, b.source), b.paramType(p))
	}
}

// paramType returns the builtin type a plain parameter is annotated with.
func (b *binder) paramType(p *sitter.Node) string {
	switch p.Type() {
	case "typed_parameter":
		if p.NamedChildCount() == 0 || p.NamedChild(0).Type() != lang.NodeIdentifier {
			return "" // *args: T and **kwargs: T
		}
	case "typed_default_parameter":
	default:
		return ""
	}
	if t := p.ChildByFieldName("type"); t != nil {
		return lang.BuiltinType(b.text(t))
	}
	return ""
}

// valueType returns the builtin type of a literal or builtin constructor
// call, or "".
func (b *binder) valueType(v *sitter.Node) string {
	switch v.Type() {
	case lang.NodeString, "concatenated_string":
		return "str"
	case "dictionary", "dictionary_comprehension":
		return "dict"
	case "list", "list_comprehension":
		return "list"
	case "set", "set_comprehension":
		return "set"
	case "tuple":
		return "tuple"
	case lang.NodeCall:
		if fn := v.ChildByFieldName("function"); fn != nil && fn.Type() == lang.NodeIdentifier {
			if name := b.text(fn); lang.BuiltinType(name) == name {
				return name
			}
		}
	}
	return ""
}

func (b *binder) bindExceptAlias(n *sitter.Node, sc *scope) {
	afterAs := false
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == "as" {
			afterAs = true
			continue
		}
		if afterAs && child.Type() == lang.NodeIdentifier {
			sc.bind(b.text(child))
			return
		}
	}
}

func (b *binder) bindImports(n *sitter.Node, sc *scope, from bool) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if from && i == 0 {
			continue // module name
		}
		switch child.Type() {
		case "dotted_name":
			if child.NamedChildCount() == 0 {
				continue
			}
			if from {
				last := child.NamedChild(int(child.NamedChildCount()) - 1)
				sc.bind(b.text(last))
			} else {
				sc.bind(b.text(child.NamedChild(0)))
			}
		case "aliased_import":
			if alias := child.ChildByFieldName("alias"); alias != nil {
				sc.bind(b.text(alias))
			}
		case "wildcard_import":
			b.starSeen = true
		}
	}
}

func (b *binder) bindAllIdentifiers(n *sitter.Node, sc *scope) {
	if n.Type() == lang.NodeIdentifier {
		sc.bind(b.text(n))
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		b.bindAllIdentifiers(n.NamedChild(i), sc)
	}
}

// trivialBases do not contribute members a class could reference.
var trivialBases = map[string]struct{}{"object": {}, "ABC": {}, "abc.ABC": {}}

func (b *binder) inherits(class *sitter.Node) bool {
	bases := class.ChildByFieldName("superclasses")
	if bases == nil {
		return false
	}
	for i := 0; i < int(bases.NamedChildCount()); i++ {
		base := bases.NamedChild(i)
		if base.Type() == lang.NodeKeywordArgument {
			continue
		}
		if _, ok := trivialBases[b.text(base)]; !ok {
			return true
		}
	}
	return false
}

func qualify(sc *scope, name string) string {
	if sc.qualName == "" {
		return name
	}
	return sc.qualName + "." + name
}

func hasDecorator(decorators []string, name string) bool {
	for _, d := range decorators {
		if d == name {
			return true
		}
	}
	return false
}

// paramName returns the name a parameter node binds, or "".
func paramName(p *sitter.Node, source []byte) string {
	switch p.Type() {
	case lang.NodeIdentifier:
		return lang.NodeText(p, source)
	case "typed_parameter":
		if p.NamedChildCount() > 0 {
			return paramName(p.NamedChild(0), source)
		}
	case "default_parameter", "typed_default_parameter":
		if name := p.ChildByFieldName("name"); name != nil {
			return lang.NodeText(name, source)
		}
	case "list_splat_pattern", "dictionary_splat_pattern":
		for i := 0; i < int(p.NamedChildCount()); i++ {
			if id := p.NamedChild(i); id.Type() == lang.NodeIdentifier {
				return lang.NodeText(id, source)
			}
		}
	}
	return ""
}

func firstParamName(params *sitter.Node, source []byte) string {
	if params == nil {
		return ""
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "list_splat_pattern", "dictionary_splat_pattern", "keyword_separator", "positional_separator":
			return ""
		}
		return paramName(p, source)
	}
	return ""
}
