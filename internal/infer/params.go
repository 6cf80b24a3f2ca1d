package infer

import (
	"strings"

	"github.com/phobologic/pydocgen/internal/model"
)

type paramFacts struct {
	p     model.Parameter
	words []string
	name  string // words joined by spaces
	shape string
}

type paramRule struct {
	match func(f *paramFacts) bool
	text  func(f *paramFacts) string
}

func shapeIs(set ...string) func(f *paramFacts) bool {
	return func(f *paramFacts) bool { return hasShape(f.shape, set...) }
}

func nameHas(set ...string) func(f *paramFacts) bool {
	return func(f *paramFacts) bool { return hasAny(f.words, set...) }
}

var paramRules = []paramRule{
	{
		match: func(f *paramFacts) bool { return f.p.IsReceiver },
		text:  func(*paramFacts) string { return ReceiverDescription },
	},
	{
		match: func(f *paramFacts) bool { return f.p.Variadic == "*" },
		text:  func(*paramFacts) string { return "Additional positional arguments." },
	},
	{
		match: func(f *paramFacts) bool { return f.p.Variadic == "**" },
		text:  func(*paramFacts) string { return "Additional keyword arguments." },
	},
	{
		match: shapeIs("list", "sequence", "iterable", "tuple", "set"),
		text:  func(f *paramFacts) string { return "A list of " + f.name + "." },
	},
	{
		match: shapeIs("dict", "mapping"),
		text:  func(f *paramFacts) string { return "A dictionary containing " + f.name + "." },
	},
	{
		match: shapeIs("bool"),
		text: func(f *paramFacts) string {
			if len(f.words) > 1 && hasShape(f.words[0], "is", "has", "should", "can") {
				return "Whether " + f.name + "."
			}
			return "Whether to " + f.name + "."
		},
	},
	{
		match: shapeIs("str"),
		text:  func(f *paramFacts) string { return "The " + f.name + " as a string." },
	},
	{
		match: shapeIs("int"),
		text: func(f *paramFacts) string {
			if hasAny(f.words, "index", "count", "num", "number", "size") {
				return "The " + f.name + "."
			}
			return "The " + f.name + " value."
		},
	},
	{
		match: shapeIs("float"),
		text:  func(f *paramFacts) string { return "The " + f.name + " as a float." },
	},
	{
		match: shapeIs("callable"),
		text:  func(f *paramFacts) string { return "The " + f.name + " callable." },
	},
	{
		match: nameHas("data", "payload"),
		text:  func(f *paramFacts) string { return "The " + f.name + " to process." },
	},
	{
		match: nameHas("item", "element"),
		text:  func(f *paramFacts) string { return "A single " + f.name + "." },
	},
	{
		match: nameHas("index", "idx"),
		text:  func(f *paramFacts) string { return "The " + f.name + "." },
	},
	{
		match: nameHas("value", "val"),
		text:  func(f *paramFacts) string { return "The " + f.name + " to set." },
	},
	{
		match: nameHas("count", "num", "number"),
		text:  func(f *paramFacts) string { return "The number or " + f.name + "." },
	},
	{
		match: func(f *paramFacts) bool {
			return hasAny(f.words, "flag", "enabled", "enable") || (len(f.words) > 1 && f.words[0] == "is")
		},
		text: func(f *paramFacts) string {
			clean := strings.TrimPrefix(f.name, "is ")
			return "Whether to enable " + clean + "."
		},
	},
	{
		match: nameHas("path", "file", "filename", "dir", "directory"),
		text:  func(f *paramFacts) string { return "The file or directory " + f.name + "." },
	},
	{
		match: nameHas("callback", "fn", "func", "handler"),
		text:  func(f *paramFacts) string { return "The function to call for " + f.name + "." },
	},
	{
		match: func(*paramFacts) bool { return true },
		text:  func(f *paramFacts) string { return "The " + f.name + "." },
	},
}

// Param returns the description of one parameter. The phrase always names
// the parameter; its annotation selects the template when present.
func (e *Engine) Param(p model.Parameter) string {
	words := Words(p.Name)
	f := &paramFacts{p: p, words: words, name: strings.Join(words, " "), shape: typeShape(p.Type)}
	if f.name == "" {
		f.name = p.Name
	}
	for _, r := range paramRules {
		if r.match(f) {
			return r.text(f)
		}
	}
	return "The " + f.name + "."
}

// Attribute returns the description of a class attribute.
func (e *Engine) Attribute(a model.Attribute) string {
	return e.Param(model.Parameter{Name: a.Name, Type: a.Type})
}

// IsVoid reports whether a return annotation denotes no value.
func IsVoid(annotation string) bool {
	switch strings.TrimSpace(annotation) {
	case "", "None", "NoReturn", "Never", "typing.NoReturn", "typing.Never":
		return true
	}
	return false
}

// Return describes the value a function returns.
func (e *Engine) Return(annotation, funcName string) string {
	if annotation == "" {
		return "The result of the operation."
	}
	words := Words(funcName)
	shape := typeShape(annotation)

	switch {
	case isOptional(annotation) && shape != "":
		return "The " + shape + ", or None if not available."
	case isOptional(annotation):
		return "The result, or None if not available."
	case hasShape(shape, "iterator", "generator", "iterable"):
		return "An iterator over the results."
	case hasShape(shape, "list", "sequence"):
		return "A list of results."
	case hasShape(shape, "dict", "mapping"):
		return "A dictionary of results."
	case shape == "tuple":
		return "A tuple of results."
	case shape == "bool":
		return "True if successful, False otherwise."
	case shape == "str":
		if hasAny(words, "process", "format") {
			return "The processed or formatted string."
		}
		return "The resulting string."
	case shape == "int":
		return "The resulting integer value."
	case shape == "float":
		return "The resulting float value."
	case hasAny(words, "process"):
		return "The processed " + annotation + "."
	case hasAny(words, "calculate", "compute"):
		return "The calculated " + annotation + "."
	case hasAny(words, "get", "fetch"):
		return "The requested " + annotation + "."
	}
	return "The " + annotation + " result."
}

// Yield describes the values a generator yields.
func (e *Engine) Yield(annotation string) string {
	if annotation == "" {
		return "The next value."
	}
	return "The next " + annotation + " value."
}

// Raise describes the condition under which an exception is raised.
func (e *Engine) Raise(exception string) string {
	if i := strings.LastIndex(exception, "."); i >= 0 {
		exception = exception[i+1:]
	}
	var words []string
	for _, w := range Words(exception) {
		if w != "error" && w != "exception" {
			words = append(words, w)
		}
	}
	switch {
	case hasAny(words, "value"):
		return "If an invalid value is provided."
	case hasAny(words, "type"):
		return "If an incorrect type is provided."
	case hasAny(words, "key"):
		return "If a required key is missing."
	case hasAny(words, "attribute"):
		return "If an attribute does not exist."
	case hasAny(words, "index"):
		return "If an index is out of range."
	case hasAny(words, "argument", "arg"):
		return "If an invalid argument is provided."
	case hasAny(words, "not") && hasAny(words, "implemented"):
		return "If the operation is not implemented."
	case len(words) == 0:
		return "If an error occurs."
	}
	return "If a " + strings.Join(words, " ") + " error occurs."
}
