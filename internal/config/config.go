// Package config loads pydocgen settings from the [tool.docgen] table of
// pyproject.toml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/phobologic/pydocgen/internal/coverage"
	"github.com/phobologic/pydocgen/internal/model"
)

// FileName is the project file searched for settings.
const FileName = "pyproject.toml"

// Config is the read-only configuration of one run.
type Config struct {
	Style                       model.Style `toml:"docstring_style" json:"docstring_style" yaml:"docstring_style"`
	FixCodeErrors               bool        `toml:"fix_code_errors" json:"fix_code_errors" yaml:"fix_code_errors"`
	NormalizeExistingDocstrings bool        `toml:"normalize_existing_docstrings" json:"normalize_existing_docstrings" yaml:"normalize_existing_docstrings"`
	MinCoverage                 float64     `toml:"min_coverage" json:"min_coverage" yaml:"min_coverage"`
	IncludePrivate              bool        `toml:"include_private" json:"include_private" yaml:"include_private"`
	DocumentReceiver            bool        `toml:"document_receiver" json:"document_receiver" yaml:"document_receiver"`
	MaxLineLength               int         `toml:"max_line_length" json:"max_line_length" yaml:"max_line_length"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Style:                       model.Google,
		FixCodeErrors:               true,
		NormalizeExistingDocstrings: true,
		MinCoverage:                 80,
		MaxLineLength:               88,
	}
}

// Error is a configuration problem: an undecodable file or an invalid value.
type Error struct {
	Path string // empty for values that did not come from a file
	Key  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Key != "" {
		msg = e.Key + ": " + msg
	}
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	return "config: " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validate checks value ranges.
func (c Config) Validate() error {
	if !c.Style.Valid() {
		return &Error{Key: "docstring_style", Err: fmt.Errorf("unknown style %q (want one of %v)", c.Style, model.Styles)}
	}
	if c.MinCoverage < 0 || c.MinCoverage > 100 {
		return &Error{Key: "min_coverage", Err: fmt.Errorf("%v is outside 0-100", c.MinCoverage)}
	}
	if c.MaxLineLength <= 0 {
		return &Error{Key: "max_line_length", Err: fmt.Errorf("%d must be positive", c.MaxLineLength)}
	}
	return nil
}

// Eligibility returns the coverage predicate the configuration selects.
func (c Config) Eligibility() coverage.Eligibility {
	if c.IncludePrivate {
		return coverage.All
	}
	return coverage.Public
}

type pyproject struct {
	Tool struct {
		Docgen Config `toml:"docgen"`
	} `toml:"tool"`
}

// Parse decodes pyproject.toml content. Keys absent from [tool.docgen], or
// the table itself, keep their defaults.
func Parse(data []byte) (Config, error) {
	var doc pyproject
	doc.Tool.Docgen = Default()
	if err := toml.Unmarshal(data, &doc); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, &Error{Err: fmt.Errorf("line %d column %d: %s", row, col, derr.Error())}
		}
		return Config{}, &Error{Err: err}
	}
	cfg := doc.Tool.Docgen
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		var cerr *Error
		if errors.As(err, &cerr) {
			cerr.Path = path
		}
		return Config{}, err
	}
	return cfg, nil
}

// Discover loads the first pyproject.toml found in dirs, in order. It
// returns the defaults and an empty path when none exists.
func Discover(dirs ...string) (Config, string, error) {
	seen := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = dir
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true

		path := filepath.Join(abs, FileName)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, "", fmt.Errorf("checking %s: %w", path, err)
		}
		cfg, err := Load(path)
		if err != nil {
			return Config{}, path, err
		}
		return cfg, path, nil
	}
	return Default(), "", nil
}
