// Package parse builds a structural tree of definitions from Python source
// using tree-sitter.
package parse

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/pydocgen/internal/lang"
	"github.com/phobologic/pydocgen/internal/model"
)

// ErrStructure is wrapped by every StructureError.
var ErrStructure = errors.New("malformed source structure")

// StructureError reports source text that cannot be parsed into a valid
// tree. It is fatal for a pipeline run.
type StructureError struct {
	Path   string
	Line   int
	Column int
	Reason string
}

func (e *StructureError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "<source>"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", loc, e.Line, e.Column)
	}
	return fmt.Sprintf("%s: %s", loc, e.Reason)
}

func (e *StructureError) Unwrap() error { return ErrStructure }

var captureKinds = map[string]model.SymbolKind{
	"definition.class":    model.Class,
	"definition.function": model.Function,
}

// Analyzer parses source files of one language. It holds a tree-sitter
// parser and must not be shared between goroutines.
type Analyzer struct {
	lang   *lang.Language
	parser *sitter.Parser
	query  *sitter.Query
}

// NewAnalyzer creates an Analyzer for l.
func NewAnalyzer(l *lang.Language) (*Analyzer, error) {
	q, err := l.DefinitionQuery()
	if err != nil {
		return nil, err
	}
	return &Analyzer{lang: l, parser: l.NewParser(), query: q}, nil
}

// Analyze parses Python source with a throwaway Analyzer.
func Analyze(ctx context.Context, source []byte, path string) (*model.SourceUnit, error) {
	a, err := NewAnalyzer(lang.Python)
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, source, path)
}

// Analyze parses source into a SourceUnit. A syntax error anywhere in the
// file yields a *StructureError and no unit. The caller owns the returned
// unit and must Close it.
func (a *Analyzer) Analyze(ctx context.Context, source []byte, path string) (*model.SourceUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	if !utf8.Valid(source) {
		return nil, &StructureError{Path: path, Reason: "content is not valid UTF-8"}
	}

	tree, err := a.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		serr := &StructureError{Path: path, Reason: "invalid syntax"}
		if bad := firstError(root); bad != nil {
			serr.Line = int(bad.StartPoint().Row) + 1
			serr.Column = int(bad.StartPoint().Column) + 1
			if bad.IsMissing() {
				serr.Reason = fmt.Sprintf("invalid syntax: missing %q", bad.Type())
			}
		}
		tree.Close()
		return nil, serr
	}

	unit := &model.SourceUnit{
		Path:   path,
		Source: source,
		Tree:   tree,
		Defs:   a.definitions(root, source),
	}
	return unit, nil
}

func firstError(node *sitter.Node) *sitter.Node {
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsMissing() {
			if bad := firstError(child); bad != nil {
				return bad
			}
		}
	}
	return nil
}

// definitions runs the definition query and links matches into a tree.
func (a *Analyzer) definitions(root *sitter.Node, source []byte) []*model.Definition {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(a.query, root)

	type found struct {
		node *sitter.Node
		kind model.SymbolKind
	}
	var nodes []found
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)
		for _, c := range match.Captures {
			if kind, ok := captureKinds[a.query.CaptureNameForId(c.Index)]; ok {
				nodes = append(nodes, found{node: c.Node, kind: kind})
			}
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].node.StartByte() < nodes[j].node.StartByte()
	})

	byStart := make(map[uint32]*model.Definition, len(nodes))
	var top []*model.Definition
	for _, f := range nodes {
		if _, dup := byStart[f.node.StartByte()]; dup {
			continue
		}
		def := buildDefinition(f.node, f.kind, source)

		if enclosing := lang.EnclosingDefinition(f.node); enclosing != nil {
			if parent, ok := byStart[enclosing.StartByte()]; ok {
				def.Parent = parent
				def.Depth = parent.Depth + 1
				def.QualName = parent.QualName + "." + def.Name
				parent.Children = append(parent.Children, def)
			}
		}
		if def.Parent == nil {
			top = append(top, def)
		}
		byStart[f.node.StartByte()] = def
	}

	for _, def := range byStart {
		if def.Kind == model.Class {
			def.Attributes = appendInitAttributes(def)
		}
	}
	return top
}

func buildDefinition(node *sitter.Node, kind model.SymbolKind, source []byte) *model.Definition {
	name := lang.DefinitionName(node, source)
	def := &model.Definition{
		Name:       name,
		QualName:   name,
		Kind:       kind,
		Decorators: lang.Decorators(node, source),
		Span: model.Span{
			StartByte: int(node.StartByte()),
			EndByte:   int(node.EndByte()),
			StartLine: int(node.StartPoint().Row) + 1,
			EndLine:   int(node.EndPoint().Row) + 1,
		},
		HeaderIndent: leadingWhitespace(source, int(node.StartByte())),
	}
	if kind == model.Function && lang.EnclosingClass(node) != nil {
		def.Kind = model.Method
	}
	if node.ChildCount() > 0 && node.Child(0).Type() == "async" {
		def.IsAsync = true
	}

	colon := headerColon(node)
	body := node.ChildByFieldName("body")
	stmts := statements(body)
	def.HasBody = len(stmts) > 0
	if colon != nil {
		def.HeaderEnd = int(colon.EndByte())
	}

	if len(stmts) > 0 {
		first := stmts[0]
		def.BodyStart = int(first.StartByte())
		def.InlineBody = colon != nil && first.StartPoint().Row == colon.EndPoint().Row
		if def.InlineBody {
			def.BodyIndent = nestedIndent(def.HeaderIndent)
		} else {
			def.BodyIndent = leadingWhitespace(source, def.BodyStart)
		}
		def.Doc = docString(first, source)
		if def.Doc != nil {
			def.HasFollowing = len(stmts) > 1
		} else {
			def.HasFollowing = true
		}
	} else if body != nil {
		def.BodyStart = int(body.StartByte())
		def.BodyIndent = nestedIndent(def.HeaderIndent)
	}

	switch def.Kind {
	case model.Class:
		def.Bases = classBases(node, source)
		def.Attributes = classAttributes(stmts, source)
	case model.Function, model.Method:
		def.Params = parameters(node.ChildByFieldName("parameters"), source)
		if rt := node.ChildByFieldName("return_type"); rt != nil {
			def.Returns = lang.CollapseWhitespace(lang.NodeText(rt, source))
		}
		if def.Kind == model.Method {
			markReceiver(def)
		}
		if body != nil {
			def.Raises, def.IsGenerator = scanBody(body, source)
		}
	default:
		panic(fmt.Sprintf("parse: unexpected definition kind %q", def.Kind))
	}
	return def
}

// headerColon returns the ':' token that ends a definition header.
func headerColon(node *sitter.Node) *sitter.Node {
	var colon *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == ":" {
			colon = child
		}
		if child.Type() == lang.NodeBlock {
			break
		}
	}
	return colon
}

// statements returns a block's statements, skipping comments.
func statements(block *sitter.Node) []*sitter.Node {
	if block == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(block.NamedChildCount()); i++ {
		child := block.NamedChild(i)
		if child.Type() == lang.NodeComment {
			continue
		}
		out = append(out, child)
	}
	return out
}

// docString returns the docstring held by stmt, or nil when stmt is not a
// plain string expression.
func docString(stmt *sitter.Node, source []byte) *model.DocString {
	if stmt.Type() != lang.NodeExprStatement || stmt.NamedChildCount() != 1 {
		return nil
	}
	str := stmt.NamedChild(0)
	if str.Type() != lang.NodeString {
		return nil
	}
	raw := lang.NodeText(str, source)
	prefix := strings.ToLower(raw[:strings.IndexAny(raw, `"'`)+1])
	if strings.ContainsAny(prefix, "fb") {
		return nil
	}
	return &model.DocString{
		Raw:  raw,
		Text: lang.StringContent(raw),
		Span: model.Span{
			StartByte: int(stmt.StartByte()),
			EndByte:   int(stmt.EndByte()),
			StartLine: int(stmt.StartPoint().Row) + 1,
			EndLine:   int(stmt.EndPoint().Row) + 1,
		},
		BlankLinesAfter: blankLinesAfter(source, int(stmt.EndByte())),
	}
}

func classBases(node *sitter.Node, source []byte) []string {
	args := node.ChildByFieldName("superclasses")
	if args == nil {
		return nil
	}
	var bases []string
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		switch arg.Type() {
		case lang.NodeIdentifier, lang.NodeAttribute, "subscript":
			bases = append(bases, lang.CollapseWhitespace(lang.NodeText(arg, source)))
		}
	}
	return bases
}

func classAttributes(stmts []*sitter.Node, source []byte) []model.Attribute {
	var attrs []model.Attribute
	for _, stmt := range stmts {
		if stmt.Type() != lang.NodeExprStatement || stmt.NamedChildCount() == 0 {
			continue
		}
		assign := stmt.NamedChild(0)
		if assign.Type() != lang.NodeAssignment {
			continue
		}
		left := assign.ChildByFieldName("left")
		if left == nil || left.Type() != lang.NodeIdentifier {
			continue
		}
		attr := model.Attribute{Name: lang.NodeText(left, source)}
		if t := assign.ChildByFieldName("type"); t != nil {
			attr.Type = lang.CollapseWhitespace(lang.NodeText(t, source))
		} else if right := assign.ChildByFieldName("right"); right != nil {
			attr.Type = literalType(right)
		}
		attrs = appendAttribute(attrs, attr)
	}
	return attrs
}

func appendInitAttributes(class *model.Definition) []model.Attribute {
	attrs := class.Attributes
	for _, child := range class.Children {
		if child.Name != "__init__" || child.Kind != model.Method {
			continue
		}
		for _, p := range child.Params {
			if p.IsReceiver || p.Variadic != "" {
				continue
			}
			attrs = appendAttribute(attrs, model.Attribute{Name: p.Name, Type: p.Type})
		}
	}
	return attrs
}

func appendAttribute(attrs []model.Attribute, attr model.Attribute) []model.Attribute {
	for _, a := range attrs {
		if a.Name == attr.Name {
			return attrs
		}
	}
	return append(attrs, attr)
}

func literalType(node *sitter.Node) string {
	switch node.Type() {
	case "list", "list_comprehension":
		return "list"
	case "dictionary", "dictionary_comprehension":
		return "dict"
	case "tuple":
		return "tuple"
	case "set", "set_comprehension":
		return "set"
	case lang.NodeString, "concatenated_string":
		return "str"
	case "integer":
		return "int"
	case "float":
		return "float"
	case "true", "false":
		return "bool"
	}
	return ""
}

func parameters(params *sitter.Node, source []byte) []model.Parameter {
	if params == nil {
		return nil
	}
	var out []model.Parameter
	for i := 0; i < int(params.NamedChildCount()); i++ {
		child := params.NamedChild(i)
		var p model.Parameter
		switch child.Type() {
		case lang.NodeIdentifier:
			p.Name = lang.NodeText(child, source)
		case "typed_parameter":
			p = splatName(child.NamedChild(0), source)
			if t := child.ChildByFieldName("type"); t != nil {
				p.Type = lang.CollapseWhitespace(lang.NodeText(t, source))
			}
		case "default_parameter", "typed_default_parameter":
			if n := child.ChildByFieldName("name"); n != nil {
				p.Name = lang.NodeText(n, source)
			}
			if t := child.ChildByFieldName("type"); t != nil {
				p.Type = lang.CollapseWhitespace(lang.NodeText(t, source))
			}
			if v := child.ChildByFieldName("value"); v != nil {
				p.HasDefault = true
				p.Default = lang.CollapseWhitespace(lang.NodeText(v, source))
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			p = splatName(child, source)
		default:
			continue
		}
		if p.Name == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func splatName(node *sitter.Node, source []byte) model.Parameter {
	if node == nil {
		return model.Parameter{}
	}
	var p model.Parameter
	switch node.Type() {
	case "list_splat_pattern":
		p.Variadic = "*"
	case "dictionary_splat_pattern":
		p.Variadic = "**"
	case lang.NodeIdentifier:
		p.Name = lang.NodeText(node, source)
		return p
	default:
		return p
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if id := node.NamedChild(i); id.Type() == lang.NodeIdentifier {
			p.Name = lang.NodeText(id, source)
			break
		}
	}
	return p
}

// markReceiver flags the implicit first parameter of a method.
func markReceiver(def *model.Definition) {
	if def.HasDecorator("staticmethod") || len(def.Params) == 0 {
		return
	}
	if def.Params[0].Variadic == "" {
		def.Params[0].IsReceiver = true
	}
}

// scanBody collects raised exception names and generator status without
// descending into nested scopes.
func scanBody(body *sitter.Node, source []byte) ([]string, bool) {
	var raises []string
	seen := make(map[string]struct{})
	generator := false

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case lang.NodeFunction, lang.NodeClass, lang.NodeLambda:
			return
		case lang.NodeYield:
			generator = true
		case lang.NodeRaise:
			if n.NamedChildCount() > 0 {
				exc := n.NamedChild(0)
				if exc.Type() == lang.NodeCall {
					if fn := exc.ChildByFieldName("function"); fn != nil {
						exc = fn
					}
				}
				name := lang.CollapseWhitespace(lang.NodeText(exc, source))
				if _, dup := seen[name]; !dup && name != "" {
					seen[name] = struct{}{}
					raises = append(raises, name)
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(body)
	return raises, generator
}

// nestedIndent returns one indentation level below header, keeping the
// header's choice of tabs or spaces.
func nestedIndent(header string) string {
	if strings.Contains(header, "\t") {
		return header + "\t"
	}
	return header + "    "
}

func lineStart(source []byte, off int) int {
	for off > 0 && source[off-1] != '\n' {
		off--
	}
	return off
}

func leadingWhitespace(source []byte, off int) string {
	start := lineStart(source, off)
	end := start
	for end < len(source) && (source[end] == ' ' || source[end] == '\t') {
		end++
	}
	return string(source[start:end])
}

// blankLinesAfter counts whitespace-only lines following the line that
// contains off.
func blankLinesAfter(source []byte, off int) int {
	i := off
	for i < len(source) && source[i] != '\n' {
		i++
	}
	count := 0
	for i < len(source) {
		i++ // past '\n'
		j := i
		for j < len(source) && (source[j] == ' ' || source[j] == '\t' || source[j] == '\r') {
			j++
		}
		if j >= len(source) || source[j] != '\n' {
			break
		}
		count++
		i = j
	}
	return count
}
