package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phobologic/pydocgen/internal/model"
)

func TestWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"get_user", []string{"get", "user"}},
		{"UserService", []string{"user", "service"}},
		{"parseHTTPResponse_v2", []string{"parse", "http", "response", "v2"}},
		{"__init__", []string{"init"}},
		{"_private", []string{"private"}},
		{"X", []string{"x"}},
		{"Base64Encoder", []string{"base64", "encoder"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Words(tt.in), tt.in)
	}
}

func TestDescribeFunction(t *testing.T) {
	t.Parallel()

	e := New()
	owner := &model.Definition{Name: "UserService", Kind: model.Class}
	tests := []struct {
		name string
		def  *model.Definition
		rule string
		want string
	}{
		{"init", &model.Definition{Name: "__init__", Kind: model.Method, Parent: owner}, "init", "Initialize the user service instance."},
		{"dunder", &model.Definition{Name: "__len__", Kind: model.Method, Parent: owner}, "dunder", "Return the number of items."},
		{"protocol", &model.Definition{Name: "__aenter__", Kind: model.Method}, "protocol", "Implement the aenter protocol."},
		{"get", &model.Definition{Name: "get_user", Kind: model.Function}, "get", "Retrieve and return user."},
		{"get bare", &model.Definition{Name: "get", Kind: model.Function}, "get", "Retrieve and return data."},
		{"set with params", &model.Definition{
			Name: "set_name", Kind: model.Method,
			Params: []model.Parameter{{Name: "self", IsReceiver: true}, {Name: "name"}},
		}, "set", "Set or update name."},
		{"predicate", &model.Definition{Name: "is_valid", Kind: model.Function}, "predicate", "Check if valid and return a boolean result."},
		{"compute", &model.Definition{Name: "calculateTotal", Kind: model.Function}, "compute", "Compute and return total."},
		{"process param", &model.Definition{
			Name: "process", Kind: model.Function, Params: []model.Parameter{{Name: "raw_data"}},
		}, "process", "Process a raw data."},
		{"to", &model.Definition{Name: "to_dict", Kind: model.Method}, "to", "Convert to dict."},
		{"action", &model.Definition{Name: "emit_event", Kind: model.Function}, "action", "Emit event."},
		{"returns list", &model.Definition{Name: "items", Kind: model.Function, Returns: "List[str]"}, "returns-list", "Return a list of results."},
		{"returns bool", &model.Definition{Name: "ready", Kind: model.Function, Returns: "bool"}, "returns-bool", "Return a boolean result."},
		{"params", &model.Definition{
			Name: "combine", Kind: model.Function, Params: []model.Parameter{{Name: "a"}, {Name: "b"}},
		}, "params", "Perform operation with a and b."},
		{"fallback", &model.Definition{Name: "main2", Kind: model.Function}, "fallback", "Execute the operation."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.rule, e.RuleFor(tt.def))
			assert.Equal(t, tt.want, e.Describe(tt.def))
		})
	}
}

func TestDescribeClass(t *testing.T) {
	t.Parallel()

	e := New()
	tests := []struct {
		def  *model.Definition
		want string
	}{
		{&model.Definition{Name: "UserService", Kind: model.Class}, "Manages userservice functionality."},
		{&model.Definition{Name: "DataValidator", Kind: model.Class}, "Manages datavalidator functionality."},
		{&model.Definition{Name: "HTTPClient", Kind: model.Class}, "Manages httpclient functionality."},
		{&model.Definition{Name: "ParseError", Kind: model.Class}, "Raised when a parse error occurs."},
		{&model.Definition{Name: "Error", Kind: model.Class}, "Represents a generic error."},
		{&model.Definition{Name: "TestParser", Kind: model.Class}, "Tests for parser."},
		{&model.Definition{Name: "AppConfig", Kind: model.Class}, "Holds app configuration."},
		{&model.Definition{Name: "JSONMixin", Kind: model.Class}, "Mixin providing json behavior."},
		{&model.Definition{Name: "Color", Kind: model.Class, Bases: []string{"enum.Enum"}}, "Enumerates color values."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.Describe(tt.def), tt.def.Name)
	}
}

func TestDescribeDeterministic(t *testing.T) {
	t.Parallel()

	def := &model.Definition{Name: "load_settings", Kind: model.Function, Params: []model.Parameter{{Name: "path", Type: "str"}}}
	first := New().Describe(def)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, New().Describe(def))
	}
	assert.Equal(t, "Load settings.", first)
}

func TestParam(t *testing.T) {
	t.Parallel()

	e := New()
	tests := []struct {
		p    model.Parameter
		want string
	}{
		{model.Parameter{Name: "self", IsReceiver: true}, ReceiverDescription},
		{model.Parameter{Name: "args", Variadic: "*"}, "Additional positional arguments."},
		{model.Parameter{Name: "kwargs", Variadic: "**"}, "Additional keyword arguments."},
		{model.Parameter{Name: "names", Type: "List[str]"}, "A list of names."},
		{model.Parameter{Name: "options", Type: "Dict[str, int]"}, "A dictionary containing options."},
		{model.Parameter{Name: "verbose", Type: "bool"}, "Whether to verbose."},
		{model.Parameter{Name: "is_ready", Type: "bool"}, "Whether is ready."},
		{model.Parameter{Name: "user_name", Type: "str"}, "The user name as a string."},
		{model.Parameter{Name: "offset", Type: "int"}, "The offset value."},
		{model.Parameter{Name: "retry_count", Type: "int"}, "The retry count."},
		{model.Parameter{Name: "ratio", Type: "Optional[float]"}, "The ratio as a float."},
		{model.Parameter{Name: "payload"}, "The payload to process."},
		{model.Parameter{Name: "output_path"}, "The file or directory output path."},
		{model.Parameter{Name: "widget"}, "The widget."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.Param(tt.p), tt.p.Name)
	}
}

func TestReturn(t *testing.T) {
	t.Parallel()

	e := New()
	tests := []struct {
		annotation, fn, want string
	}{
		{"", "run", "The result of the operation."},
		{"Optional[User]", "find_user", "The user, or None if not available."},
		{"Iterator[int]", "walk", "An iterator over the results."},
		{"list[str]", "names", "A list of results."},
		{"bool", "check", "True if successful, False otherwise."},
		{"str", "format_name", "The processed or formatted string."},
		{"str", "name", "The resulting string."},
		{"int", "size", "The resulting integer value."},
		{"Report", "get_report", "The requested Report."},
		{"Report", "build", "The Report result."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.Return(tt.annotation, tt.fn), tt.annotation+" "+tt.fn)
	}
}

func TestIsVoid(t *testing.T) {
	t.Parallel()

	for _, a := range []string{"", "None", "NoReturn", "typing.Never", " None "} {
		assert.True(t, IsVoid(a), a)
	}
	for _, a := range []string{"int", "Optional[None]", "str"} {
		assert.False(t, IsVoid(a), a)
	}
}

func TestRaise(t *testing.T) {
	t.Parallel()

	e := New()
	assert.Equal(t, "If an invalid value is provided.", e.Raise("ValueError"))
	assert.Equal(t, "If a required key is missing.", e.Raise("KeyError"))
	assert.Equal(t, "If the operation is not implemented.", e.Raise("NotImplementedError"))
	assert.Equal(t, "If an error occurs.", e.Raise("Exception"))
	assert.Equal(t, "If a connection timeout error occurs.", e.Raise("errors.ConnectionTimeoutError"))
}

func TestExtended(t *testing.T) {
	t.Parallel()

	e := New()
	prop := &model.Definition{Name: "name", Kind: model.Method, Decorators: []string{"property"}}
	assert.Equal(t, "This is accessed as a property.", e.Extended(prop))

	coro := &model.Definition{Name: "fetch", Kind: model.Function, IsAsync: true}
	assert.Equal(t, "This is a coroutine and must be awaited.", e.Extended(coro))

	dc := &model.Definition{Name: "Point", Kind: model.Class, Decorators: []string{"dataclass"}}
	assert.Equal(t, "Instances are generated as a dataclass.", e.Extended(dc))

	assert.Empty(t, e.Extended(&model.Definition{Name: "plain", Kind: model.Function}))
}
