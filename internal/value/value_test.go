package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAny(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"string", "x", String("x")},
		{"bool", true, Bool(true)},
		{"int", 42, Int(42)},
		{"whole float", float64(7), Int(7)},
		{"json number", json.Number("12"), Int(12)},
		{"list", []any{1, "a"}, List{Int(1), String("a")}},
		{"record", map[string]any{"n": 1, "tags": []any{"x"}}, Record{"n": Int(1), "tags": List{String("x")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAny_RejectsFloats(t *testing.T) {
	_, err := FromAny(1.5)
	assert.ErrorContains(t, err, "floats are not supported")

	_, err = FromAny(map[string]any{"price": 9.99})
	assert.ErrorContains(t, err, `["price"]`)

	_, err = FromAny(struct{}{})
	assert.ErrorContains(t, err, "unsupported type")
}

func TestToAny_RoundTrip(t *testing.T) {
	rec := Record{"n": Int(3), "ok": Bool(false), "name": String("a"), "tags": List{String("t")}, "none": Null{}}
	back, err := FromAny(ToAny(rec))
	require.NoError(t, err)
	assert.Equal(t, rec, back)
}

func TestRecord_With(t *testing.T) {
	base := Record{"a": Int(1), "b": Int(2)}
	patched := base.With(Record{"b": Int(3), "c": Int(4)})

	assert.Equal(t, Record{"a": Int(1), "b": Int(3), "c": Int(4)}, patched)
	assert.Equal(t, Int(2), base["b"], "original untouched")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNull, KindOf(nil))
	assert.Equal(t, KindRecord, KindOf(Record{}))
	assert.Equal(t, "string", KindOf(String("")).String())
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare(Int(1), Int(2)))
	assert.Equal(t, 1, Compare(String("b"), String("a")))
	assert.Equal(t, 0, Compare(List{Int(1)}, List{Int(1)}))
	assert.Equal(t, -1, Compare(List{Int(1)}, List{Int(1), Int(0)}))
	assert.Equal(t, -1, Compare(Bool(false), Bool(true)))
	assert.Equal(t, -1, Compare(Null{}, Int(0)), "kinds order before values")
	assert.Equal(t, -1, Compare(Int(100), String("0")))
	assert.Equal(t, 1, Compare(Record{"a": Int(2)}, Record{"a": Int(1)}))
	assert.True(t, Equal(Record{"a": Int(1)}, Record{"a": Int(1)}))
}

func TestMarshalCanonical(t *testing.T) {
	rec := Record{
		"b":    Int(2),
		"a":    String("<x & y>"),
		"list": List{Bool(true), Null{}},
	}
	data, err := MarshalCanonical(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"<x & y>","b":2,"list":[true,null]}`, string(data))
}

func TestMarshalCanonical_NormalizesStrings(t *testing.T) {
	// "e" + combining acute accent normalizes to the precomposed form.
	decomposed := String("e\u0301")
	precomposed := String("\u00e9")

	assert.Equal(t, MustCanonical(precomposed), MustCanonical(decomposed))
}

func TestRecordKeys_UTF16Order(t *testing.T) {
	// U+FF61 sorts after U+1F600 in UTF-8 byte order but before it in
	// UTF-16 code unit order (surrogates are 0xD800-0xDFFF).
	rec := Record{"\U0001F600": Int(1), "｡": Int(2)}
	assert.Equal(t, []string{"\U0001F600", "｡"}, rec.Keys())
}

func TestUnmarshalJSON(t *testing.T) {
	v, err := UnmarshalJSON([]byte(`{"n":9007199254740993,"s":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, Record{"n": Int(9007199254740993), "s": String("x")}, v)

	_, err = UnmarshalJSON([]byte(`1.25`))
	assert.Error(t, err)
}

func TestHash(t *testing.T) {
	h1, err := Hash(Record{"a": Int(1), "b": Int(2)})
	require.NoError(t, err)
	h2, err := Hash(Record{"b": Int(2), "a": Int(1)})
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "key order does not matter")
	assert.Len(t, h1, 64)

	s1, err := SnapshotHash(List{Int(1), Int(2)})
	require.NoError(t, err)
	s2, err := SnapshotHash(List{Int(2), Int(1)})
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2, "snapshot order matters")
}
