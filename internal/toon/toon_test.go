package toon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/pydocgen/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"true keyword", "true", `"true"`},
		{"True keyword", "True", `"True"`},
		{"false keyword", "false", `"false"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"zero", "0", "0"},
		{"leading zero invalid", "01", "01"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"bracket", "a[b", `"a[b"`},
		{"brace", "a{b", `"a{b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "src/main.py", "src/main.py"},
		{"dotted name", "Foo.__init__", "Foo.__init__"},
		{"error message", "parse error at line 3", "parse error at line 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, encodeValue(tt.in))
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	r := &model.BatchReport{
		Root:        "proj",
		MinCoverage: 80,
		Files: []model.FileReport{
			{
				Path: "pkg/counter.py",
				Pass: true,
				Summary: &model.FixSummary{
					DocstringsGenerated: 3,
					CodeErrorsFixed:     map[model.DefectKind]int{model.NameTypo: 1, model.UndefinedReference: 0},
					TyposFixed:          1,
					CoverageBefore:      0,
					CoverageAfter:       100,
					Defects: []model.Defect{
						{Kind: model.NameTypo, Line: 6, Token: "slef", Suggestion: "self"},
					},
				},
			},
			{
				Path:  "pkg/broken.py",
				Error: "pkg/broken.py:1:6: unbalanced parenthesis",
			},
		},
	}

	lines := strings.Split(Encode(r), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "root: proj", lines[0])
	assert.Equal(t, "min_coverage: 80.0", lines[1])
	assert.Equal(t, "files[2]{path,coverage_before,coverage_after,generated,normalized,fixed,status,error}:", lines[2])
	assert.Equal(t, `  pkg/counter.py,0.0,100.0,3,0,1,pass,""`, lines[3])
	assert.Equal(t, `  pkg/broken.py,"","","","","",fail,"pkg/broken.py:1:6: unbalanced parenthesis"`, lines[4])
	assert.Equal(t, "defects[1]{file,line,kind,token,suggestion}:", lines[5])
	assert.Equal(t, "  pkg/counter.py,6,name_typo,slef,self", lines[6])
}

func TestEncodeViolations(t *testing.T) {
	t.Parallel()

	r := &model.BatchReport{
		Root: "proj",
		Files: []model.FileReport{{
			Path: "a.py",
			Pass: true,
			Summary: &model.FixSummary{
				Violations: []model.Violation{{Rule: "D400", Definition: "Store.put", Line: 9}},
			},
		}},
	}
	got := Encode(r)
	assert.Contains(t, got, "violations[1]{file,line,rule,definition}:\n  a.py,9,D400,Store.put")
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	got := Encode(&model.BatchReport{Root: "empty"})
	assert.Contains(t, got, "files[0]{path,coverage_before,coverage_after,generated,normalized,fixed,status,error}:")
	assert.Contains(t, got, "defects[0]{file,line,kind,token,suggestion}:")
	assert.NotContains(t, got, "violations")
}
