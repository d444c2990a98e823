package capability

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoBinding() Binding {
	return BindingFunc(func(_ context.Context, args map[string]any) (any, error) {
		return args, nil
	})
}

func TestRegisterAndResolve(t *testing.T) {
	r := NewRegistry()

	spec := Spec{
		Name:        "query_database",
		Description: "Runs a read-only SQL query.",
		Params: map[string]Param{
			"query": {Type: "string", Description: "SQL to execute", Required: true},
		},
		Idempotent: true,
	}
	require.NoError(t, r.Register(spec, echoBinding()))

	binding, got, err := r.Resolve("query_database")
	require.NoError(t, err)
	assert.NotNil(t, binding)
	assert.Equal(t, "query_database", got.Name)
	assert.True(t, got.Idempotent)
}

func TestRegisterDuplicateName(t *testing.T) {
	r := NewRegistry()
	spec := Spec{Name: "translate_text", Description: "Translates text."}

	require.NoError(t, r.Register(spec, echoBinding()))

	err := r.Register(spec, echoBinding())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestResolveUnknown(t *testing.T) {
	r := NewRegistry()

	_, _, err := r.Resolve("does_not_exist")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestFreezeRejectsRegistration(t *testing.T) {
	r := NewRegistry()
	r.Freeze()
	assert.True(t, r.Frozen())

	err := r.Register(Spec{Name: "late", Description: "too late"}, echoBinding())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFrozen)
}

func TestRegisterValidatesSpec(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register(Spec{Description: "no name"}, echoBinding()))
	assert.Error(t, r.Register(Spec{Name: "no_description"}, echoBinding()))
	assert.Error(t, r.Register(Spec{
		Name:        "bad_param",
		Description: "has an unsupported param type",
		Params:      map[string]Param{"x": {Type: "tuple"}},
	}, echoBinding()))
	assert.Error(t, r.Register(Spec{Name: "nil_binding", Description: "no binding"}, nil))
}

func TestRegisterCompilesRawSchema(t *testing.T) {
	r := NewRegistry()

	valid := Spec{
		Name:        "with_schema",
		Description: "Carries its own schema.",
		RawSchema:   json.RawMessage(`{"type":"object","properties":{"n":{"type":"integer"}},"required":["n"]}`),
	}
	require.NoError(t, r.Register(valid, echoBinding()))
	require.NotNil(t, r.CompiledSchema("with_schema"))

	require.NoError(t, r.CompiledSchema("with_schema").Validate(map[string]any{"n": float64(3)}))
	assert.Error(t, r.CompiledSchema("with_schema").Validate(map[string]any{}))

	invalid := Spec{
		Name:        "broken_schema",
		Description: "Schema does not compile.",
		RawSchema:   json.RawMessage(`{"type": 42}`),
	}
	assert.Error(t, r.Register(invalid, echoBinding()))
}

func TestDescribeAllPreservesOrder(t *testing.T) {
	r := NewRegistry()
	names := []string{"alpha", "bravo", "charlie"}
	for _, n := range names {
		require.NoError(t, r.Register(Spec{Name: n, Description: n}, echoBinding()))
	}

	specs := r.DescribeAll()
	require.Len(t, specs, 3)
	for i, n := range names {
		assert.Equal(t, n, specs[i].Name)
	}
	assert.Equal(t, 3, r.Len())
}

func TestJSONSchemaFromParams(t *testing.T) {
	spec := Spec{
		Name:        "lookup",
		Description: "Looks things up.",
		Params: map[string]Param{
			"key":   {Type: "string", Description: "lookup key", Required: true},
			"limit": {Type: "integer"},
		},
	}

	schema := spec.JSONSchema()
	assert.Equal(t, "object", schema["type"])

	properties := schema["properties"].(map[string]any)
	require.Contains(t, properties, "key")
	require.Contains(t, properties, "limit")
	assert.Equal(t, "string", properties["key"].(map[string]any)["type"])

	required := schema["required"].([]string)
	assert.Equal(t, []string{"key"}, required)
}

func TestJSONSchemaPrefersRawSchema(t *testing.T) {
	spec := Spec{
		Name:        "raw",
		Description: "Raw schema wins.",
		Params:      map[string]Param{"ignored": {Type: "string"}},
		RawSchema:   json.RawMessage(`{"type":"object","properties":{"real":{"type":"boolean"}}}`),
	}

	schema := spec.JSONSchema()
	properties := schema["properties"].(map[string]any)
	assert.Contains(t, properties, "real")
	assert.NotContains(t, properties, "ignored")
}

func TestStructParams(t *testing.T) {
	type args struct {
		Query   string `json:"query" description:"SQL to execute"`
		Limit   int    `json:"limit,omitempty" description:"max rows"`
		Skipped string `json:"-"`
	}

	params := StructParams(args{})
	require.Contains(t, params, "query")
	require.Contains(t, params, "limit")
	assert.NotContains(t, params, "Skipped")

	assert.Equal(t, "string", params["query"].Type)
	assert.Equal(t, "SQL to execute", params["query"].Description)
	assert.True(t, params["query"].Required)
	assert.False(t, params["limit"].Required)
}
