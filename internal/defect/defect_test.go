package defect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/pydocgen/internal/model"
	"github.com/phobologic/pydocgen/internal/parse"
)

func detect(t *testing.T, source string) []model.Defect {
	t.Helper()
	unit, err := parse.Analyze(context.Background(), []byte(source), "test.py")
	require.NoError(t, err)
	t.Cleanup(unit.Close)
	return Detect(unit)
}

func TestDetectUndefinedReference(t *testing.T) {
	t.Parallel()

	defects := detect(t, "config = {}\nprint(confi)\n")
	require.Len(t, defects, 1)
	d := defects[0]
	assert.Equal(t, model.UndefinedReference, d.Kind)
	assert.Equal(t, "confi", d.Token)
	assert.Equal(t, "config", d.Suggestion)
	assert.Equal(t, 2, d.Line)
	assert.Equal(t, 7, d.Column)
	assert.InDelta(t, 1-1.0/6, d.Confidence, 1e-9)
}

func TestDetectPrefersInnermostScope(t *testing.T) {
	t.Parallel()

	// "iter" is a builtin at the same distance as the parameter.
	defects := detect(t, "def total(items):\n    return len(item)\n")
	require.Len(t, defects, 1)
	assert.Equal(t, "item", defects[0].Token)
	assert.Equal(t, "items", defects[0].Suggestion)
	assert.Equal(t, "total", defects[0].Scope)
}

func TestDetectReceiverTypo(t *testing.T) {
	t.Parallel()

	source := `class Box:
    def __init__(self, value):
        self.value = value

    def get(self):
        return slef.value
`
	defects := detect(t, source)
	require.Len(t, defects, 1)
	d := defects[0]
	assert.Equal(t, model.NameTypo, d.Kind)
	assert.Equal(t, "slef", d.Token)
	assert.Equal(t, "self", d.Suggestion)
	assert.Equal(t, "Box.get", d.Scope)
	assert.Equal(t, 6, d.Line)
}

func TestDetectMethodTypo(t *testing.T) {
	t.Parallel()

	source := `class Worker:
    def process(self):
        pass

    def run(self):
        self.proces()
`
	defects := detect(t, source)
	require.Len(t, defects, 1)
	assert.Equal(t, model.NameTypo, defects[0].Kind)
	assert.Equal(t, "proces", defects[0].Token)
	assert.Equal(t, "process", defects[0].Suggestion)
}

func TestDetectNoReport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
	}{
		{"no close candidate", "print(undefined_thing)\n"},
		{"imports and annotations", "import os\nfrom typing import List\nx: List[int] = [os.sep]\n"},
		{"star import", "from m import *\nconfig = 1\nprint(confi)\n"},
		{"ambiguous", "cat = 1\ncar = 2\nprint(caz)\n"},
		{"comprehension and lambda", "values = [v * 2 for v in range(3)]\nfn = lambda k: k + 1\n"},
		{"later definition", "def main():\n    return helper()\n\ndef helper():\n    return 1\n"},
		{"except and with", "try:\n    pass\nexcept ValueError as err:\n    print(err)\nwith open('f') as fh:\n    fh.read()\n"},
		{"keyword argument", "def f(width=1):\n    return width\nf(widht=2)\n"},
		{"untyped receiver", "def shout(text):\n    return text.uper()\n"},
		{"conflicting types", "v = []\nv = 'abc'\nv.uper()\n"},
		{"builtin member", "def shout(text: str) -> str:\n    return text.upper().strip()\n"},
		{"inherited members", `class Base:
    pass

class Worker(Base):
    def run(self):
        self.proces()

    def process(self):
        pass
`},
		{"attribute assigned elsewhere", `class Box:
    def fill(self):
        self.items = []

    def count(self):
        return len(self.items)
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Empty(t, detect(t, tt.source))
		})
	}
}

func TestDetectBuiltinMethodTypo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		source     string
		token      string
		suggestion string
	}{
		{"annotated parameter", "def shout(text: str) -> str:\n    return text.uper()\n", "uper", "upper"},
		{"typing alias", "from typing import Dict\n\ndef names(data: Dict[str, int]):\n    return data.kyes()\n", "kyes", "keys"},
		{"literal assignment", "def collect(x):\n    parts = []\n    parts.apend(x)\n    return parts\n", "apend", "append"},
		{"constructor call", "seen = set()\nseen.dicard(1)\n", "dicard", "discard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			defects := detect(t, tt.source)
			require.Len(t, defects, 1)
			assert.Equal(t, model.NameTypo, defects[0].Kind)
			assert.Equal(t, tt.token, defects[0].Token)
			assert.Equal(t, tt.suggestion, defects[0].Suggestion)
		})
	}
}

func TestDetectErrorsFixture(t *testing.T) {
	t.Parallel()

	source := `class DataValidator:
    #class example

    def __init__(self, config: dict):
        self.config = confi
        self.results = []

    def validate_string(self, text: str) -> bool:
        return text.uper().startswith("VALID")

    def check_length(self, items: list, min_length: int = 5) -> bool:
        return len(item) >= min_length

    def process_data(self, data: dict) -> dict:
        keys = data.kyes()
        return {k: v for k, v in data.items()}


def format_output(values, decimal_places: int = 2) -> str:
    return f"{values:.{decimal_places}f}"


def validate_email(email: str) -> bool:
    """Check if email is valid"""
    return "@" in email and email.lower().endswith(".com")
`
	defects := detect(t, source)
	require.Len(t, defects, 4)

	type found struct {
		kind       model.DefectKind
		token      string
		suggestion string
		scope      string
	}
	var got []found
	for _, d := range defects {
		got = append(got, found{d.Kind, d.Token, d.Suggestion, d.Scope})
	}
	assert.Equal(t, []found{
		{model.UndefinedReference, "confi", "config", "DataValidator.__init__"},
		{model.NameTypo, "uper", "upper", "DataValidator.validate_string"},
		{model.UndefinedReference, "item", "items", "DataValidator.check_length"},
		{model.NameTypo, "kyes", "keys", "DataValidator.process_data"},
	}, got)
}

func TestDetectClassScopeHidden(t *testing.T) {
	t.Parallel()

	// Class attributes are not visible from method bodies, so the only
	// remaining near miss is the builtin.
	source := "class Box:\n    limit = 5\n    def check(self, n):\n        return n < limt\n"
	for _, d := range detect(t, source) {
		assert.NotEqual(t, "limit", d.Suggestion)
	}

	tests := []struct {
		name   string
		source string
	}{
		{"method body", "class Box:\n    capacity = 5\n    def check(self, n):\n        return n < capacty\n"},
		{"lambda body", "class Box:\n    capacity = 5\n    check = lambda n: n < capacty\n"},
		{"comprehension first iterable", "class Box:\n    xs = [1]\n    ys = [x for x in xs]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Empty(t, detect(t, tt.source))
		})
	}
}

func TestDetectOrdering(t *testing.T) {
	t.Parallel()

	defects := detect(t, "config = {}\nprint(confi)\nprint(confg)\n")
	require.Len(t, defects, 2)
	assert.Less(t, defects[0].Start, defects[1].Start)
	assert.Equal(t, "confg", defects[1].Token)
}

func TestRepair(t *testing.T) {
	t.Parallel()

	source := `class Box:
    def __init__(self, value):
        self.value = value

    def get(self):
        return slef.value
`
	defects := detect(t, source)
	out, applied, conflicts, err := Repair([]byte(source), defects)
	require.NoError(t, err)
	assert.Len(t, applied, 1)
	assert.Empty(t, conflicts)
	assert.Contains(t, string(out), "        return self.value\n")
	assert.NotContains(t, string(out), "slef")

	again, err := parse.Analyze(context.Background(), out, "test.py")
	require.NoError(t, err)
	defer again.Close()
	assert.Empty(t, Detect(again))
}

func TestRepairConflict(t *testing.T) {
	t.Parallel()

	source := []byte("abcdefgh")
	defects := []model.Defect{
		{Kind: model.UndefinedReference, Start: 2, End: 6, Token: "cdef", Suggestion: "X"},
		{Kind: model.UndefinedReference, Start: 0, End: 4, Token: "abcd", Suggestion: "Y"},
	}
	out, applied, conflicts, err := Repair(source, defects)
	require.NoError(t, err)
	assert.Equal(t, "Yefgh", string(out))
	require.Len(t, applied, 1)
	assert.Equal(t, "abcd", applied[0].Token)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "cdef", conflicts[0].Skipped.Token)
	assert.Equal(t, "abcd", conflicts[0].Conflict.Token)
	assert.Equal(t, "abcdefgh", string(source))
}

func TestRepairNothing(t *testing.T) {
	t.Parallel()

	out, applied, conflicts, err := Repair([]byte("x = 1\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", string(out))
	assert.Empty(t, applied)
	assert.Empty(t, conflicts)
}
