package amap

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upperTransform(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, errors.New("not a string")
	}
	return strings.ToUpper(s), nil
}

var (
	testChildSchema = NewSchema("Child", "name", "type")

	testParentSchema = NewSchema("Parent", "title", "child", "children", "location", "upper").
		Override("child", Nested(testChildSchema)).
		Override("children", NestedList(testChildSchema)).
		Override("location", Transform(locationTransform)).
		Override("upper", Transform(upperTransform))
)

func TestSchemaDecodePassthroughAndMissing(t *testing.T) {
	rec, err := testParentSchema.Decode(map[string]any{"title": "t", "extra": 1})
	require.NoError(t, err)
	assert.Equal(t, "t", rec.Str("title"))
	assert.Nil(t, rec.Value("extra"))
	assert.False(t, rec.Has("upper"))
	assert.False(t, rec.Has("location"))
}

func TestSchemaDecodeNested(t *testing.T) {
	rec, err := testParentSchema.Decode(map[string]any{
		"child":    map[string]any{"name": "a"},
		"children": []any{map[string]any{"name": "b"}, "junk", nil, map[string]any{"type": "c"}},
	})
	require.NoError(t, err)
	child := rec.Nested("child")
	require.NotNil(t, child)
	assert.Equal(t, "a", child.Str("name"))
	assert.False(t, child.Has("type"))

	kids := rec.List("children")
	require.Len(t, kids, 2)
	assert.Equal(t, "b", kids[0].Str("name"))
	assert.Equal(t, "c", kids[1].Str("type"))
}

func TestSchemaDecodeNestedAbsent(t *testing.T) {
	for _, raw := range []any{nil, "oops", []any{}} {
		rec, err := testParentSchema.Decode(map[string]any{"child": raw, "children": raw})
		require.NoError(t, err)
		child := rec.Nested("child")
		require.NotNil(t, child)
		assert.Equal(t, "Child", child.Schema().Name())
		assert.False(t, child.Has("name"))
		assert.False(t, child.Has("type"))
		assert.NotNil(t, rec.List("children"))
		assert.Empty(t, rec.List("children"))
	}
}

func TestSchemaDecodeTransform(t *testing.T) {
	rec, err := testParentSchema.Decode(map[string]any{"location": "116.481,39.99", "upper": "abc"})
	require.NoError(t, err)
	loc, ok := rec.Coordinate("location")
	require.True(t, ok)
	assert.Equal(t, Location{Lng: 116.481, Lat: 39.99}, loc)
	assert.Equal(t, "ABC", rec.Str("upper"))

	rec, err = testParentSchema.Decode(map[string]any{"location": "bad", "upper": 7})
	require.NoError(t, err)
	_, ok = rec.Coordinate("location")
	assert.False(t, ok)
	assert.False(t, rec.Has("upper"))
}

func TestSchemaDecodeNonMapping(t *testing.T) {
	_, err := testParentSchema.Decode([]any{1})
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Parent", se.Entity)

	rec, err := testParentSchema.Decode(nil)
	require.NoError(t, err)
	assert.False(t, rec.Has("title"))
}

func TestSchemaOverrideUndeclaredPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewSchema("X", "a").Override("b", Passthrough())
	})
}

func TestSchemaProperties(t *testing.T) {
	props := testChildSchema.Properties()
	assert.Equal(t, []string{"name", "type"}, props)
	props[0] = "mutated"
	assert.Equal(t, []string{"name", "type"}, testChildSchema.Properties())
}

func TestRecordMarshalJSONOrdered(t *testing.T) {
	rec, err := testParentSchema.Decode(map[string]any{"title": "t", "child": map[string]any{"name": "a"}})
	require.NoError(t, err)
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t,
		`{"title":"t","child":{"name":"a","type":null},"children":[],"location":null,"upper":null}`,
		string(b))
}

func TestRecordNilSafe(t *testing.T) {
	var rec *Record
	assert.False(t, rec.Has("x"))
	assert.Equal(t, "", rec.Str("x"))
	assert.Empty(t, rec.List("x"))
}
