// Package model defines core data structures for pydocgen.
package model

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// SymbolKind indicates the syntactic kind of a definition.
type SymbolKind string

const (
	Class    SymbolKind = "class"
	Function SymbolKind = "function"
	Method   SymbolKind = "method"
)

// Style selects the docstring dialect.
type Style string

const (
	Google Style = "google"
	NumPy  Style = "numpy"
	ReST   Style = "rest"
)

// Styles lists the supported docstring styles in a stable order.
var Styles = []Style{Google, NumPy, ReST}

// Valid reports whether s is a supported style.
func (s Style) Valid() bool {
	switch s {
	case Google, NumPy, ReST:
		return true
	}
	return false
}

// Span locates a node in the source. Lines are 1-based, bytes are offsets.
type Span struct {
	StartByte int
	EndByte   int
	StartLine int
	EndLine   int
}

// Parameter is a single entry of a function's parameter list.
type Parameter struct {
	Name       string
	Type       string
	HasDefault bool
	Default    string
	// Variadic is "*" for *args, "**" for **kwargs and "" otherwise.
	Variadic   string
	IsReceiver bool
}

// Attribute is a class attribute discovered from class-level assignments or
// __init__ parameters.
type Attribute struct {
	Name string
	Type string
}

// DocString is an existing docstring literal found in the source.
type DocString struct {
	Raw  string // literal as written, quotes included
	Text string // cleaned content
	Span Span
	// BlankLinesAfter counts whitespace-only lines directly after the
	// docstring's line.
	BlankLinesAfter int
}

// Empty reports whether the docstring has no content.
func (d *DocString) Empty() bool {
	return d == nil || d.Text == ""
}

// Definition is a parsed function, method or class.
type Definition struct {
	Name       string
	QualName   string
	Kind       SymbolKind
	Params     []Parameter
	Returns    string
	Decorators []string
	Bases      []string
	Attributes []Attribute
	Raises     []string
	Doc        *DocString

	IsGenerator bool
	IsAsync     bool
	HasBody     bool

	Span     Span
	Depth    int
	Parent   *Definition
	Children []*Definition

	// HeaderIndent is the leading whitespace of the line holding the
	// definition keyword.
	HeaderIndent string
	// HeaderEnd is the byte offset just past the header's colon.
	HeaderEnd int
	// BodyStart is the byte offset of the first body statement.
	BodyStart int
	// BodyIndent is the indentation of the first body statement, or the
	// header indentation plus four spaces when the body is inline.
	BodyIndent string
	// InlineBody is set when the body starts on the header line.
	InlineBody bool
	// HasFollowing reports whether the body holds a statement after the
	// docstring (or after the insertion point when there is none).
	HasFollowing bool
}

// Documented reports whether the definition carries a non-empty docstring.
func (d *Definition) Documented() bool {
	return !d.Doc.Empty()
}

// Receiver returns the receiver parameter, if any.
func (d *Definition) Receiver() (Parameter, bool) {
	for _, p := range d.Params {
		if p.IsReceiver {
			return p, true
		}
	}
	return Parameter{}, false
}

// HasDecorator reports whether name is among the definition's decorators.
func (d *Definition) HasDecorator(name string) bool {
	for _, dec := range d.Decorators {
		if dec == name {
			return true
		}
	}
	return false
}

// SourceUnit is a parsed file: its bytes, its tree and its top-level
// definitions. It must not be modified after parsing.
type SourceUnit struct {
	Path   string
	Source []byte
	Tree   *sitter.Tree
	Defs   []*Definition
}

// Root returns the tree's root node.
func (u *SourceUnit) Root() *sitter.Node {
	return u.Tree.RootNode()
}

// Close releases the underlying tree.
func (u *SourceUnit) Close() {
	if u.Tree != nil {
		u.Tree.Close()
	}
}

// ParamDoc documents one parameter or attribute.
type ParamDoc struct {
	Name        string
	Type        string
	Description string
	Default     string
	Optional    bool
}

// ReturnDoc documents a return or yield value.
type ReturnDoc struct {
	Type        string
	Description string
}

// RaiseDoc documents one raised exception.
type RaiseDoc struct {
	Exception   string
	Description string
}

// DocBlock is a structured docstring prior to rendering.
type DocBlock struct {
	Kind       SymbolKind
	Style      Style
	Summary    string
	Extended   string
	Params     []ParamDoc
	Returns    *ReturnDoc
	Raises     []RaiseDoc
	Yields     *ReturnDoc
	Attributes []ParamDoc
}

// HasSections reports whether the block renders anything beyond its summary.
func (b *DocBlock) HasSections() bool {
	return b.Extended != "" || len(b.Params) > 0 || b.Returns != nil ||
		len(b.Raises) > 0 || b.Yields != nil || len(b.Attributes) > 0
}

// DefectKind classifies a detected defect.
type DefectKind string

const (
	UndefinedReference DefectKind = "undefined_reference"
	NameTypo           DefectKind = "name_typo"
)

// DefectKinds lists defect kinds in reporting order.
var DefectKinds = []DefectKind{UndefinedReference, NameTypo}

// Defect is a probable accidental misspelling.
type Defect struct {
	Kind       DefectKind `json:"kind" yaml:"kind"`
	Line       int        `json:"line" yaml:"line"`
	Column     int        `json:"column" yaml:"column"`
	Start      int        `json:"-" yaml:"-"`
	End        int        `json:"-" yaml:"-"`
	Token      string     `json:"token" yaml:"token"`
	Suggestion string     `json:"suggestion" yaml:"suggestion"`
	Confidence float64    `json:"confidence" yaml:"confidence"`
	Scope      string     `json:"scope,omitempty" yaml:"scope,omitempty"`
}

// FixConflict records a defect skipped because its span overlaps an earlier
// repair.
type FixConflict struct {
	Skipped  Defect `json:"skipped" yaml:"skipped"`
	Conflict Defect `json:"conflicts_with" yaml:"conflicts_with"`
}

// Violation is a style rule failure in a generated docstring.
type Violation struct {
	Rule       string `json:"rule" yaml:"rule"`
	Message    string `json:"message" yaml:"message"`
	Definition string `json:"definition" yaml:"definition"`
	Line       int    `json:"line" yaml:"line"`
}

// CoverageSnapshot counts documented eligible definitions.
type CoverageSnapshot struct {
	Eligible   int     `json:"eligible" yaml:"eligible"`
	Documented int     `json:"documented" yaml:"documented"`
	Percent    float64 `json:"percent" yaml:"percent"`
}

// FixSummary aggregates what a pipeline run did. DocstringsNormalized counts
// only existing docstrings whose text the normalizer changed; docstrings that
// were already in the configured style are not counted.
type FixSummary struct {
	DocstringsGenerated  int                `json:"docstrings_generated" yaml:"docstrings_generated"`
	DocstringsNormalized int                `json:"docstrings_normalized" yaml:"docstrings_normalized"`
	CodeErrorsFixed      map[DefectKind]int `json:"code_errors_fixed" yaml:"code_errors_fixed"`
	TyposFixed           int                `json:"typos_fixed" yaml:"typos_fixed"`
	CoverageBefore       float64            `json:"coverage_before" yaml:"coverage_before"`
	CoverageAfter        float64            `json:"coverage_after" yaml:"coverage_after"`
	Defects              []Defect           `json:"defects,omitempty" yaml:"defects,omitempty"`
	Conflicts            []FixConflict      `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Violations           []Violation        `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// FileReport is one file's row in a batch check.
type FileReport struct {
	Path    string      `json:"path" yaml:"path"`
	Pass    bool        `json:"pass" yaml:"pass"`
	Error   string      `json:"error,omitempty" yaml:"error,omitempty"`
	Summary *FixSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Changed bool        `json:"would_change" yaml:"would_change"`
}

// BatchReport is the result of checking many files.
type BatchReport struct {
	Root        string       `json:"root" yaml:"root"`
	MinCoverage float64      `json:"min_coverage" yaml:"min_coverage"`
	Files       []FileReport `json:"files" yaml:"files"`
}

// Passed reports whether every file passed.
func (r *BatchReport) Passed() bool {
	for _, f := range r.Files {
		if !f.Pass {
			return false
		}
	}
	return true
}
