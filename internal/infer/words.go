package infer

import (
	"regexp"
	"strings"
	"unicode"
)

// Words splits an identifier into lowercase tokens on underscores and
// camelCase boundaries. "parseHTTPResponse_v2" yields
// [parse http response v2].
func Words(name string) []string {
	var words []string
	for _, part := range strings.Split(name, "_") {
		words = append(words, splitCamel(part)...)
	}
	return words
}

func splitCamel(s string) []string {
	if s == "" {
		return nil
	}
	runes := []rune(s)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		boundary := false
		switch {
		case unicode.IsLower(prev) && unicode.IsUpper(cur):
			boundary = true
		case unicode.IsDigit(prev) && unicode.IsUpper(cur):
			boundary = true
		case unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
			boundary = true
		}
		if boundary {
			words = append(words, strings.ToLower(string(runes[start:i])))
			start = i
		}
	}
	words = append(words, strings.ToLower(string(runes[start:])))
	return words
}

// Phrase joins the words of an identifier with spaces.
func Phrase(name string) string {
	return strings.Join(Words(name), " ")
}

var typeTokenRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// wrapperTypes are skipped when looking for the shape of an annotation.
var wrapperTypes = map[string]struct{}{
	"optional": {}, "union": {}, "typing": {}, "annotated": {}, "final": {},
	"classvar": {}, "t": {},
}

// typeTokens returns the lowercase identifiers of an annotation in order.
func typeTokens(annotation string) []string {
	raw := typeTokenRe.FindAllString(annotation, -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		out = append(out, strings.ToLower(tok))
	}
	return out
}

// typeShape returns the first non-wrapper identifier of an annotation:
// "Optional[List[str]]" yields "list".
func typeShape(annotation string) string {
	for _, tok := range typeTokens(annotation) {
		if _, skip := wrapperTypes[tok]; !skip {
			return tok
		}
	}
	return ""
}

// isOptional reports whether annotation admits None.
func isOptional(annotation string) bool {
	toks := typeTokens(annotation)
	if len(toks) > 0 && toks[0] == "optional" {
		return true
	}
	for _, tok := range toks {
		if tok == "none" {
			return true
		}
	}
	return false
}

func hasAny(words []string, set ...string) bool {
	for _, w := range words {
		for _, s := range set {
			if w == s {
				return true
			}
		}
	}
	return false
}
