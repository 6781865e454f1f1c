package apiweave

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholderNames(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/users", nil},
		{"/users/:id", []string{"id"}},
		{"/users/:id/posts/:post_id", []string{"id", "post_id"}},
		{"/a/:x-y/b", []string{"x-y"}},
		{"/:a/:b/:c", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, placeholderNames(tt.path))
		})
	}
}

func TestBindPath_PositionalSuccess(t *testing.T) {
	d := Descriptor{Path: "/users/:id/posts/:post_id", Method: http.MethodGet}

	path, err := bindPath(d, []any{42, "hello world"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/users/42/posts/hello%20world", path)
}

func TestBindPath_PositionalMissing(t *testing.T) {
	d := Descriptor{Path: "/users/:id/posts/:post_id", Method: http.MethodDelete}

	_, err := bindPath(d, []any{42}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingPathArguments)

	var be *BindError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, []string{"post_id"}, be.Names)
}

func TestBindPath_PositionalAllMissingInTemplateOrder(t *testing.T) {
	d := Descriptor{Path: "/a/:first/:second/:third", Method: http.MethodGet}

	_, err := bindPath(d, nil, nil)

	var be *BindError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, []string{"first", "second", "third"}, be.Names)
}

func TestBindPath_PayloadSuccess(t *testing.T) {
	d := Descriptor{Path: "/users/:id", Method: http.MethodPut}

	path, err := bindPath(d, nil, map[string]any{"id": 7, "name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "/users/7", path)
}

func TestBindPath_PayloadMissingAndFalsy(t *testing.T) {
	d := Descriptor{Path: "/users/:id/items/:item", Method: http.MethodPost}

	// id present but falsy (zero), item absent: both reported.
	_, err := bindPath(d, nil, map[string]any{"id": 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingPayloadProperties)

	var be *BindError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, []string{"id", "item"}, be.Names)
}

func TestBindPath_StructPayload(t *testing.T) {
	type updateReq struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	d := Descriptor{Path: "/users/:id", Method: http.MethodPatch}

	path, err := bindPath(d, nil, updateReq{ID: 9, Name: "n"})
	require.NoError(t, err)
	assert.Equal(t, "/users/9", path)
}

func TestBindPath_TemplateNotMutatedAcrossCalls(t *testing.T) {
	d := Descriptor{Path: "/users/:id", Method: http.MethodGet}

	first, err := bindPath(d, []any{1}, nil)
	require.NoError(t, err)

	second, err := bindPath(d, []any{2}, nil)
	require.NoError(t, err)

	assert.Equal(t, "/users/1", first)
	assert.Equal(t, "/users/2", second)
	assert.Equal(t, "/users/:id", d.Path)
}

func TestIsFalsy(t *testing.T) {
	assert.True(t, isFalsy(nil))
	assert.True(t, isFalsy(0))
	assert.True(t, isFalsy(0.0))
	assert.True(t, isFalsy(""))
	assert.True(t, isFalsy(false))
	assert.False(t, isFalsy(1))
	assert.False(t, isFalsy("x"))
	assert.False(t, isFalsy(true))
	assert.False(t, isFalsy(map[string]any{}))
}

func TestIsObject(t *testing.T) {
	type s struct{}

	assert.True(t, isObject(map[string]any{}))
	assert.True(t, isObject(map[string]string{}))
	assert.True(t, isObject(s{}))
	assert.True(t, isObject(&s{}))
	assert.False(t, isObject(nil))
	assert.False(t, isObject(42))
	assert.False(t, isObject("str"))
	assert.False(t, isObject([]any{}))
}
