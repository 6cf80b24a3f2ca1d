package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".py", "python"},
		{".go", ""},
		{".pyi", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ForExtension(tt.ext))
		})
	}
}

func TestLanguagesRegistered(t *testing.T) {
	t.Parallel()

	py, ok := Languages["python"]
	require.True(t, ok, "python language not registered")
	assert.Same(t, Python, py)
	assert.NotNil(t, py.NewParser())
}

func TestDefinitionQuery(t *testing.T) {
	t.Parallel()

	q, err := Python.DefinitionQuery()
	require.NoError(t, err)
	require.NotNil(t, q)

	again, err := Python.DefinitionQuery()
	require.NoError(t, err)
	assert.Same(t, q, again, "query is compiled once")
}

func TestStringContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"triple double", `"""Hello."""`, "Hello."},
		{"triple single", `'''Hello.'''`, "Hello."},
		{"single quotes", `'x'`, "x"},
		{"raw prefix", `r"""Raw \d."""`, `Raw \d.`},
		{"empty", `""""""`, ""},
		{"blank", `"""   """`, ""},
		{"multi line", "\"\"\"\n    Summary.\n\n    Body line.\n    \"\"\"", "Summary.\n\nBody line."},
		{"keeps relative indent", "\"\"\"Top.\n\n    Args:\n        x: y.\n    \"\"\"", "Top.\n\nArgs:\n    x: y."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StringContent(tt.in))
		})
	}
}

func TestIsBuiltin(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"len", "print", "ValueError", "__name__", "super"} {
		assert.True(t, IsBuiltin(name), name)
	}
	for _, name := range []string{"lenght", "self", "config", ""} {
		assert.False(t, IsBuiltin(name), name)
	}
}

func TestBuiltinType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"str", "str"},
		{" dict ", "dict"},
		{"dict[str, int]", "dict"},
		{"typing.List[int]", "list"},
		{"Tuple[int, ...]", "tuple"},
		{"Text", "str"},
		{"Optional[str]", ""},
		{"str | None", ""},
		{"MyDict", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BuiltinType(tt.in))
		})
	}
}

func TestBuiltinMembers(t *testing.T) {
	t.Parallel()

	assert.Contains(t, BuiltinMembers("str"), "upper")
	assert.Contains(t, BuiltinMembers("dict"), "keys")
	assert.Nil(t, BuiltinMembers("int"))
	for typ, members := range builtinMembers {
		assert.IsIncreasing(t, members, typ)
	}
}
