// Package infer derives natural-language descriptions from definition
// metadata.
//
// Every description comes from an ordered rule table: a list of
// (predicate, template) pairs evaluated top to bottom, first match wins. The
// engine holds no other state, so a given definition always yields the same
// text.
package infer

import (
	"strings"

	"github.com/phobologic/pydocgen/internal/model"
)

// ReceiverDescription is the fixed description of self and cls.
const ReceiverDescription = "The class or instance."

// facts is the view of a definition the rules match against.
type facts struct {
	def    *model.Definition
	words  []string // name tokens
	verb   string   // first token
	object string   // remaining tokens joined by spaces
	params []string // documentable parameter names
	shape  string   // return annotation shape ("list", "dict", ...)
	owner  string   // enclosing class phrase, if any
}

// Rule is one (predicate, template) entry of a table.
type Rule struct {
	Name  string
	match func(f *facts) bool
	text  func(f *facts) string
}

// Engine renders descriptions from its rule tables.
type Engine struct {
	functions []Rule
	classes   []Rule
}

// New returns an Engine with the default rule tables.
func New() *Engine {
	return &Engine{functions: functionRules, classes: classRules}
}

// Describe returns the one-line summary for def.
func (e *Engine) Describe(def *model.Definition) string {
	_, text := e.match(def)
	return text
}

// RuleFor returns the name of the rule that produces def's summary.
func (e *Engine) RuleFor(def *model.Definition) string {
	name, _ := e.match(def)
	return name
}

func (e *Engine) match(def *model.Definition) (string, string) {
	f := newFacts(def)
	var table []Rule
	switch def.Kind {
	case model.Class:
		table = e.classes
	case model.Function, model.Method:
		table = e.functions
	default:
		panic("infer: unexpected definition kind " + string(def.Kind))
	}
	for _, r := range table {
		if r.match(f) {
			return r.Name, r.text(f)
		}
	}
	return "none", "Execute the operation."
}

func newFacts(def *model.Definition) *facts {
	words := Words(def.Name)
	f := &facts{def: def, words: words, shape: typeShape(def.Returns)}
	if len(words) > 0 {
		f.verb = words[0]
		f.object = strings.Join(words[1:], " ")
	}
	for _, p := range def.Params {
		if !p.IsReceiver {
			f.params = append(f.params, p.Name)
		}
	}
	if def.Parent != nil && def.Parent.Kind == model.Class {
		f.owner = Phrase(def.Parent.Name)
	}
	return f
}

// Extended returns the optional extended description for def, or "".
func (e *Engine) Extended(def *model.Definition) string {
	var parts []string
	switch def.Kind {
	case model.Class:
		if def.HasDecorator("dataclass") || def.HasDecorator("dataclasses.dataclass") {
			parts = append(parts, "Instances are generated as a dataclass.")
		}
	case model.Function, model.Method:
		switch {
		case def.HasDecorator("property"):
			parts = append(parts, "This is accessed as a property.")
		case def.HasDecorator("staticmethod"):
			parts = append(parts, "This is a static method.")
		case def.HasDecorator("classmethod"):
			parts = append(parts, "This is a class method.")
		}
		if def.HasDecorator("abstractmethod") || def.HasDecorator("abc.abstractmethod") {
			parts = append(parts, "Subclasses must override this method.")
		}
		if def.IsAsync {
			parts = append(parts, "This is a coroutine and must be awaited.")
		}
	}
	return strings.Join(parts, " ")
}

func verbIs(verbs ...string) func(f *facts) bool {
	return func(f *facts) bool {
		for _, v := range verbs {
			if f.verb == v && len(f.words) > 0 {
				return true
			}
		}
		return false
	}
}

func objectOr(f *facts, template, fallback string) string {
	if f.object == "" {
		return fallback
	}
	return strings.ReplaceAll(template, "{what}", f.object)
}

var dunders = map[string]string{
	"__str__":      "Return the string representation.",
	"__repr__":     "Return the developer representation.",
	"__eq__":       "Compare for equality.",
	"__hash__":     "Return the hash value.",
	"__len__":      "Return the number of items.",
	"__iter__":     "Iterate over the items.",
	"__next__":     "Return the next item.",
	"__enter__":    "Enter the runtime context.",
	"__exit__":     "Exit the runtime context.",
	"__call__":     "Invoke the instance as a function.",
	"__getitem__":  "Return the item for a key.",
	"__setitem__":  "Set the item for a key.",
	"__contains__": "Check whether an item is contained.",
}

var functionRules = []Rule{
	{
		Name:  "init",
		match: func(f *facts) bool { return f.def.Name == "__init__" },
		text: func(f *facts) string {
			if f.owner != "" {
				return "Initialize the " + f.owner + " instance."
			}
			return "Initialize the instance."
		},
	},
	{
		Name:  "dunder",
		match: func(f *facts) bool { _, ok := dunders[f.def.Name]; return ok },
		text:  func(f *facts) string { return dunders[f.def.Name] },
	},
	{
		Name: "protocol",
		match: func(f *facts) bool {
			return strings.HasPrefix(f.def.Name, "__") && strings.HasSuffix(f.def.Name, "__")
		},
		text: func(f *facts) string { return "Implement the " + strings.Join(f.words, " ") + " protocol." },
	},
	{
		Name:  "get",
		match: verbIs("get", "fetch", "retrieve"),
		text:  func(f *facts) string { return objectOr(f, "Retrieve and return {what}.", "Retrieve and return data.") },
	},
	{
		Name:  "set",
		match: verbIs("set"),
		text: func(f *facts) string {
			if len(f.params) > 0 {
				return objectOr(f, "Set or update {what}.", "Set or update the value.")
			}
			return objectOr(f, "Set {what}.", "Set the value.")
		},
	},
	{
		Name:  "predicate",
		match: verbIs("is", "has", "can", "should"),
		text: func(f *facts) string {
			return objectOr(f, "Check if {what} and return a boolean result.", "Check a condition and return a boolean.")
		},
	},
	{
		Name:  "compute",
		match: verbIs("calculate", "compute", "count", "sum"),
		text:  func(f *facts) string { return objectOr(f, "Compute and return {what}.", "Compute and return a value.") },
	},
	{
		Name:  "process",
		match: verbIs("process", "handle"),
		text: func(f *facts) string {
			switch {
			case f.object != "":
				return "Process " + f.object + "."
			case len(f.params) > 0:
				return "Process a " + Phrase(f.params[0]) + "."
			}
			return "Process the provided input."
		},
	},
	{
		Name:  "validate",
		match: verbIs("validate", "check", "verify", "ensure"),
		text:  func(f *facts) string { return objectOr(f, "Validate or check {what}.", "Validate the input.") },
	},
	{
		Name:  "parse",
		match: verbIs("parse", "decode"),
		text:  func(f *facts) string { return objectOr(f, "Parse {what}.", "Parse the input.") },
	},
	{
		Name:  "to",
		match: verbIs("to", "as"),
		text:  func(f *facts) string { return objectOr(f, "Convert to {what}.", "Convert the value.") },
	},
	{
		Name:  "format",
		match: verbIs("format", "convert", "serialize", "encode"),
		text:  func(f *facts) string { return objectOr(f, "Format or convert {what}.", "Format or convert the input.") },
	},
	{
		Name:  "load",
		match: verbIs("load", "read", "open"),
		text:  func(f *facts) string { return objectOr(f, "Load {what}.", "Load data.") },
	},
	{
		Name:  "save",
		match: verbIs("save", "write", "store", "dump"),
		text:  func(f *facts) string { return objectOr(f, "Save {what}.", "Save data.") },
	},
	{
		Name:  "create",
		match: verbIs("create", "build", "make", "new"),
		text:  func(f *facts) string { return objectOr(f, "Create {what}.", "Create a new instance.") },
	},
	{
		Name:  "update",
		match: verbIs("update", "refresh"),
		text:  func(f *facts) string { return objectOr(f, "Update {what}.", "Update the state.") },
	},
	{
		Name:  "remove",
		match: verbIs("delete", "remove", "clear", "drop"),
		text:  func(f *facts) string { return objectOr(f, "Remove {what}.", "Remove the data.") },
	},
	{
		Name:  "add",
		match: verbIs("add", "append", "insert", "register"),
		text:  func(f *facts) string { return objectOr(f, "Add {what}.", "Add an item.") },
	},
	{
		Name:  "find",
		match: verbIs("find", "search", "lookup", "query"),
		text:  func(f *facts) string { return objectOr(f, "Find {what}.", "Find matching items.") },
	},
	{
		Name:  "run",
		match: verbIs("run", "execute", "start", "main"),
		text:  func(f *facts) string { return objectOr(f, "Run {what}.", "Run the operation.") },
	},
	{
		Name:  "render",
		match: verbIs("render", "display", "show", "print", "draw"),
		text:  func(f *facts) string { return objectOr(f, "Render {what}.", "Render the output.") },
	},
	{
		Name:  "action",
		match: func(f *facts) bool { return len(f.words) > 1 },
		text: func(f *facts) string {
			return strings.ToUpper(f.verb[:1]) + f.verb[1:] + " " + f.object + "."
		},
	},
	{
		Name:  "returns-list",
		match: func(f *facts) bool { return hasShape(f.shape, "list", "sequence", "iterable", "set", "frozenset") },
		text:  func(*facts) string { return "Return a list of results." },
	},
	{
		Name:  "returns-dict",
		match: func(f *facts) bool { return hasShape(f.shape, "dict", "mapping") },
		text:  func(*facts) string { return "Return a dictionary of results." },
	},
	{
		Name:  "returns-bool",
		match: func(f *facts) bool { return f.shape == "bool" },
		text:  func(*facts) string { return "Return a boolean result." },
	},
	{
		Name:  "returns-str",
		match: func(f *facts) bool { return f.shape == "str" },
		text:  func(*facts) string { return "Return a string result." },
	},
	{
		Name:  "params",
		match: func(f *facts) bool { return len(f.params) > 0 },
		text:  func(f *facts) string { return "Perform operation with " + strings.Join(f.params, " and ") + "." },
	},
	{
		Name:  "fallback",
		match: func(*facts) bool { return true },
		text:  func(*facts) string { return "Execute the operation." },
	},
}

func hasShape(shape string, set ...string) bool {
	for _, s := range set {
		if shape == s {
			return true
		}
	}
	return false
}

func lastWord(f *facts) string {
	if len(f.words) == 0 {
		return ""
	}
	return f.words[len(f.words)-1]
}

func allButLast(f *facts) string {
	if len(f.words) < 2 {
		return ""
	}
	return strings.Join(f.words[:len(f.words)-1], " ")
}

var classRules = []Rule{
	{
		Name:  "error",
		match: func(f *facts) bool { return hasShape(lastWord(f), "error", "exception") },
		text: func(f *facts) string {
			if rest := allButLast(f); rest != "" {
				return "Raised when a " + rest + " error occurs."
			}
			return "Represents a generic error."
		},
	},
	{
		Name: "test",
		match: func(f *facts) bool {
			return len(f.words) > 1 && (f.words[0] == "test" || hasShape(lastWord(f), "test", "tests"))
		},
		text: func(f *facts) string {
			rest := f.words
			if rest[0] == "test" {
				rest = rest[1:]
			} else {
				rest = rest[:len(rest)-1]
			}
			return "Tests for " + strings.Join(rest, " ") + "."
		},
	},
	{
		Name: "config",
		match: func(f *facts) bool {
			return len(f.words) > 1 && hasShape(lastWord(f), "config", "configuration", "settings", "options")
		},
		text: func(f *facts) string { return "Holds " + allButLast(f) + " configuration." },
	},
	{
		Name:  "mixin",
		match: func(f *facts) bool { return len(f.words) > 1 && lastWord(f) == "mixin" },
		text:  func(f *facts) string { return "Mixin providing " + allButLast(f) + " behavior." },
	},
	{
		Name: "enum",
		match: func(f *facts) bool {
			for _, b := range f.def.Bases {
				if hasShape(typeShape(b), "enum", "intenum", "strenum", "flag", "intflag") {
					return true
				}
			}
			return false
		},
		text: func(f *facts) string { return "Enumerates " + strings.Join(f.words, " ") + " values." },
	},
	{
		Name:  "manager",
		match: func(*facts) bool { return true },
		// The whole name, lowercased and unsplit: DataValidator gives
		// "datavalidator".
		text: func(f *facts) string { return "Manages " + strings.ToLower(f.def.Name) + " functionality." },
	},
}
