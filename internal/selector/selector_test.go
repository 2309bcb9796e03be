package selector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jv "github.com/oakwood-commons/kvtree/pkg/jsonvalue"
)

func doc(t *testing.T) jv.Value {
	t.Helper()
	v, err := jv.ParseJSON([]byte(`{
		"name": "store",
		"count": 42,
		"items": [
			{"id": 1, "name": "apple", "available": true, "tags": ["fruit"]},
			{"id": 2, "name": "bread", "available": false},
			{"id": 3, "name": "cheese", "available": true}
		],
		"owner": {"email": "a@example.com"}
	}`))
	require.NoError(t, err)
	return v
}

func TestEvaluate(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name string
		expr string
		data any
		want any
	}{
		{"access field", "_.name", map[string]any{"name": "test"}, "test"},
		{"access number", "_.count", map[string]any{"count": 42}, int64(42)},
		{"array index", "_[0]", []any{"first", "second"}, "first"},
		{"boolean", "_.active", map[string]any{"active": true}, true},
		{"nested field", "_.user.email", map[string]any{"user": map[string]any{"email": "x@y"}}, "x@y"},
		{"equality", "_.x == 10", map[string]any{"x": 10}, true},
		{"size", "size(_)", []any{1, 2, 3}, int64(3)},
		{"string ext", "_.s.upperAscii()", map[string]any{"s": "abc"}, "ABC"},
		{"map macro", "_.map(x, x * 2)", []any{1, 2}, []any{int64(2), int64(4)}},
		{"null", "_.missing", map[string]any{"missing": nil}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(tt.expr, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)

	_, err = e.Evaluate("_.(", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compilation error")

	_, err = e.Evaluate("_.nope", map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eval error")
}

func TestSelect(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)
	v := doc(t)

	tests := []struct {
		name string
		expr string
		want string
	}{
		{"scalar", "_.name", `"store"`},
		{"index", "_.items[1].name", `"bread"`},
		{"object", "_.owner", `{"email":"a@example.com"}`},
		{"filter", "_.items.filter(x, x.available).map(x, x.id)", `[1,3]`},
		{"projection", "_.items.map(x, {'n': x.name, 'id': x.id})[0]", `{"id":1,"n":"apple"}`},
		{"count", "size(_.items)", `3`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Select(tt.expr, v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Compact())
		})
	}
}

func TestSelectRootKeepsOrder(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)
	v := doc(t)

	for _, expr := range []string{"", "  ", "_"} {
		got, err := e.Select(expr, v)
		require.NoError(t, err)
		assert.True(t, v.Equal(got))
	}
}

func TestSelectWrapsErrors(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)
	_, err = e.Select("_.missing.field", doc(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `select "_.missing.field"`)
}

func TestFunctions(t *testing.T) {
	e, err := NewEvaluator()
	require.NoError(t, err)
	funcs := e.Functions()
	assert.Greater(t, len(funcs), 10)

	joined := strings.Join(funcs, "\n")
	assert.Contains(t, joined, "upperAscii()")
	assert.Contains(t, joined, "filter() - macro")
	assert.NotContains(t, joined, "_==_")
}
