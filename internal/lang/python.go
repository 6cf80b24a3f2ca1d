package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Python is the registered Python language.
var Python = &Language{
	Name:       "python",
	Extensions: []string{".py"},
	lang:       python.GetLanguage(),
}

func init() {
	Languages[Python.Name] = Python
}

// Python grammar node types the analyzers switch on.
const (
	NodeModule          = "module"
	NodeClass           = "class_definition"
	NodeFunction        = "function_definition"
	NodeDecorated       = "decorated_definition"
	NodeDecorator       = "decorator"
	NodeBlock           = "block"
	NodeExprStatement   = "expression_statement"
	NodeString          = "string"
	NodeIdentifier      = "identifier"
	NodeAttribute       = "attribute"
	NodeCall            = "call"
	NodeComment         = "comment"
	NodeLambda          = "lambda"
	NodeRaise           = "raise_statement"
	NodeYield           = "yield"
	NodeAssignment      = "assignment"
	NodeAugAssignment   = "augmented_assignment"
	NodeKeywordArgument = "keyword_argument"
)

// EnclosingClass returns the class_definition a function belongs to directly,
// or nil when the function is not a method.
func EnclosingClass(funcNode *sitter.Node) *sitter.Node {
	parent := funcNode.Parent()
	if parent == nil {
		return nil
	}

	// Direct: func -> block -> class_definition
	if parent.Type() == NodeBlock && parent.Parent() != nil && parent.Parent().Type() == NodeClass {
		return parent.Parent()
	}

	// Decorated: func -> decorated_definition -> block -> class_definition
	if parent.Type() == NodeDecorated {
		gp := parent.Parent()
		if gp != nil && gp.Type() == NodeBlock && gp.Parent() != nil && gp.Parent().Type() == NodeClass {
			return gp.Parent()
		}
	}

	return nil
}

// EnclosingDefinition returns the nearest function_definition or
// class_definition strictly above node, or nil at module level.
func EnclosingDefinition(node *sitter.Node) *sitter.Node {
	for current := node.Parent(); current != nil; current = current.Parent() {
		switch current.Type() {
		case NodeFunction, NodeClass:
			return current
		}
	}
	return nil
}

// DefinitionName returns the identifier naming a class or function node.
func DefinitionName(node *sitter.Node, source []byte) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return NodeText(name, source)
	}
	return ""
}

// Decorators returns the decorator names attached to a definition node in
// source order. Call decorators are reduced to their callee
// ("@lru_cache(maxsize=2)" becomes "lru_cache").
func Decorators(defNode *sitter.Node, source []byte) []string {
	parent := defNode.Parent()
	if parent == nil || parent.Type() != NodeDecorated {
		return nil
	}
	var names []string
	seen := make(map[string]struct{})
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		dec := parent.NamedChild(i)
		if dec.Type() != NodeDecorator || dec.NamedChildCount() == 0 {
			continue
		}
		expr := dec.NamedChild(0)
		if expr.Type() == NodeCall {
			if fn := expr.ChildByFieldName("function"); fn != nil {
				expr = fn
			}
		}
		name := CollapseWhitespace(NodeText(expr, source))
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// OuterNode returns the decorated_definition wrapping defNode, or defNode
// itself when it is not decorated.
func OuterNode(defNode *sitter.Node) *sitter.Node {
	if parent := defNode.Parent(); parent != nil && parent.Type() == NodeDecorated {
		return parent
	}
	return defNode
}

// StringContent strips prefixes and quotes from a Python string literal and
// dedents the content the way inspect.cleandoc does.
func StringContent(literal string) string {
	s := strings.TrimLeft(literal, "rRuUbB")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			s = s[len(q) : len(s)-len(q)]
			break
		}
	}
	return CleanDoc(s)
}

// CleanDoc trims leading and trailing blank lines and removes the common
// indentation of every line after the first.
func CleanDoc(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\t", "        "), "\n")
	margin := -1
	for _, line := range lines[1:] {
		content := strings.TrimLeft(line, " ")
		if content == "" {
			continue
		}
		if indent := len(line) - len(content); margin < 0 || indent < margin {
			margin = indent
		}
	}
	lines[0] = strings.TrimSpace(lines[0])
	for i := 1; i < len(lines); i++ {
		if margin > 0 && len(lines[i]) >= margin {
			lines[i] = lines[i][margin:]
		}
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// IsBuiltin reports whether name is bound in Python's builtins module.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// BuiltinNames returns the builtin names. The slice is shared; callers must
// not modify it.
func BuiltinNames() []string {
	return builtinList
}

var builtinList = strings.Fields(`
abs aiter all anext any ascii bin bool breakpoint bytearray bytes callable
chr classmethod compile complex copyright credits delattr dict dir divmod
enumerate eval exec exit filter float format frozenset getattr globals
hasattr hash help hex id input int isinstance issubclass iter len license
list locals map max memoryview min next object oct open ord pow print
property quit range repr reversed round set setattr slice sorted
staticmethod str sum super tuple type vars zip
__import__ __name__ __file__ __doc__ __builtins__ __spec__ __loader__
__package__ __debug__ __build_class__ __class__ __annotations__
NotImplemented Ellipsis True False None
BaseException BaseExceptionGroup Exception ExceptionGroup ArithmeticError
AssertionError AttributeError BlockingIOError BrokenPipeError BufferError
BytesWarning ChildProcessError ConnectionAbortedError ConnectionError
ConnectionRefusedError ConnectionResetError DeprecationWarning EOFError
EncodingWarning EnvironmentError FileExistsError FileNotFoundError
FloatingPointError FutureWarning GeneratorExit IOError ImportError
ImportWarning IndentationError IndexError InterruptedError
IsADirectoryError KeyError KeyboardInterrupt LookupError MemoryError
ModuleNotFoundError NameError NotADirectoryError NotImplementedError
OSError OverflowError PendingDeprecationWarning PermissionError
ProcessLookupError RecursionError ReferenceError ResourceWarning
RuntimeError RuntimeWarning StopAsyncIteration StopIteration SyntaxError
SyntaxWarning SystemError SystemExit TabError TimeoutError TypeError
UnboundLocalError UnicodeDecodeError UnicodeEncodeError UnicodeError
UnicodeTranslateError UnicodeWarning UserWarning ValueError Warning
ZeroDivisionError
`)

var builtins = func() map[string]struct{} {
	m := make(map[string]struct{}, len(builtinList))
	for _, name := range builtinList {
		m[name] = struct{}{}
	}
	return m
}()

// builtinMembers lists the public methods of the builtin container and
// string types, sorted.
var builtinMembers = map[string][]string{
	"str": strings.Fields(`
capitalize casefold center count encode endswith expandtabs find format
format_map index isalnum isalpha isascii isdecimal isdigit isidentifier
islower isnumeric isprintable isspace istitle isupper join ljust lower lstrip
maketrans partition removeprefix removesuffix replace rfind rindex rjust
rpartition rsplit rstrip split splitlines startswith strip swapcase title
translate upper zfill`),
	"bytes": strings.Fields(`
capitalize center count decode endswith expandtabs find fromhex hex index
isalnum isalpha isascii isdigit islower isspace istitle isupper join ljust
lower lstrip maketrans partition removeprefix removesuffix replace rfind
rindex rjust rpartition rsplit rstrip split splitlines startswith strip
swapcase title translate upper zfill`),
	"dict": strings.Fields(`
clear copy fromkeys get items keys pop popitem setdefault update values`),
	"list": strings.Fields(`
append clear copy count extend index insert pop remove reverse sort`),
	"set": strings.Fields(`
add clear copy difference difference_update discard intersection
intersection_update isdisjoint issubset issuperset pop remove
symmetric_difference symmetric_difference_update union update`),
	"tuple": strings.Fields(`count index`),
}

// typingAliases maps the typing module's generic aliases to builtins.
var typingAliases = map[string]string{
	"Dict": "dict", "List": "list", "Set": "set", "Tuple": "tuple",
	"Text": "str", "AnyStr": "",
}

// BuiltinType returns the builtin type an annotation names, or "" when it
// names anything else. Subscripts are ignored: dict[str, int] and
// typing.Dict[str, int] are both dict. Optional and union annotations are not
// resolved.
func BuiltinType(annotation string) string {
	t := strings.TrimSpace(annotation)
	if i := strings.IndexByte(t, '['); i >= 0 {
		t = t[:i]
	}
	t = strings.TrimPrefix(t, "typing.")
	if alias, ok := typingAliases[t]; ok {
		return alias
	}
	if _, ok := builtinMembers[t]; ok {
		return t
	}
	return ""
}

// BuiltinMembers returns the sorted methods of a builtin type from
// BuiltinType, or nil. The slice is shared; callers must not modify it.
func BuiltinMembers(typ string) []string {
	return builtinMembers[typ]
}
