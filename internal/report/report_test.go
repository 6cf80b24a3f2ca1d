package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/pydocgen/internal/model"
	"github.com/phobologic/pydocgen/internal/pipeline"
)

func sampleSummary() model.FixSummary {
	return model.FixSummary{
		DocstringsGenerated:  3,
		DocstringsNormalized: 1,
		CodeErrorsFixed:      map[model.DefectKind]int{model.UndefinedReference: 2, model.NameTypo: 1},
		TyposFixed:           1,
		CoverageBefore:       33.3,
		CoverageAfter:        100,
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, sampleSummary()))
	want := "Fix Summary\n" +
		"--------------------------------------------------\n" +
		"Docstrings generated: 3\n" +
		"Existing docstrings normalized: 1\n" +
		"Code errors fixed (undefined reference): 2\n" +
		"Typos fixed (name typo): 1\n" +
		"Coverage: 33.3% -> 100.0%\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteSummaryJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, JSON, sampleSummary()))
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 3.0, got["docstrings_generated"])
	assert.Equal(t, 100.0, got["coverage_after"])
	assert.Equal(t, map[string]any{"undefined_reference": 2.0, "name_typo": 1.0}, got["code_errors_fixed"])
	assert.NotContains(t, got, "defects")
}

func TestWriteSummaryYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, YAML, sampleSummary()))
	var got model.FixSummary
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleSummary(), got)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := ParseFormat("yaml", Text, JSON, YAML)
	require.NoError(t, err)
	assert.Equal(t, YAML, f)

	_, err = ParseFormat("toon", Text, JSON, YAML)
	assert.EqualError(t, err, `unsupported format "toon" (want one of text, json, yaml)`)
}

func TestDiff(t *testing.T) {
	t.Parallel()

	before := []byte("def f():\n    return 1\n")
	after := []byte("def f():\n    \"\"\"Return one.\"\"\"\n    return 1\n")
	got, err := Diff("f.py", "f_docgen.py", before, after)
	require.NoError(t, err)
	assert.Contains(t, got, "--- f.py\n+++ f_docgen.py\n")
	assert.Contains(t, got, "+    \"\"\"Return one.\"\"\"\n")
	assert.Contains(t, got, " def f():\n")

	same, err := Diff("f.py", "f.py", before, before)
	require.NoError(t, err)
	assert.Empty(t, same)
}

func TestBuildBatch(t *testing.T) {
	t.Parallel()

	results := []pipeline.FileResult{
		{
			Path:   "a.py",
			Source: []byte("x = 1\n"),
			Result: &pipeline.Result{Path: "a.py", Output: []byte("x = 1\n"), Pass: true, PassBefore: true, Summary: sampleSummary()},
		},
		{
			Path:   "b.py",
			Source: []byte("def f():\n    pass\n"),
			Result: &pipeline.Result{Path: "b.py", Output: []byte("changed"), Pass: true, PassBefore: false},
		},
		{Path: "c.py", Err: errors.New("c.py:1:1: syntax error")},
	}
	r := BuildBatch("proj", 80, results)
	require.Len(t, r.Files, 3)
	assert.True(t, r.Files[0].Pass)
	assert.False(t, r.Files[0].Changed)
	assert.Equal(t, 3, r.Files[0].Summary.DocstringsGenerated)
	assert.False(t, r.Files[1].Pass)
	assert.True(t, r.Files[1].Changed)
	assert.False(t, r.Files[2].Pass)
	assert.Nil(t, r.Files[2].Summary)
	assert.Equal(t, "c.py:1:1: syntax error", r.Files[2].Error)
	assert.False(t, r.Passed())

	var buf bytes.Buffer
	require.NoError(t, WriteBatch(&buf, TOON, r))
	assert.Contains(t, buf.String(), "root: proj\nmin_coverage: 80.0\nfiles[3]")
}
