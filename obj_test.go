package quill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjConstructors(t *testing.T) {
	assert.Equal(t, "hello", NewString("hello").String())
	assert.Equal(t, "string", NewString("hello").Type())

	assert.Equal(t, "42", NewInt(42).String())
	assert.Equal(t, "int", NewInt(42).Type())

	assert.Equal(t, "2.5", NewDouble(2.5).String())
	assert.Equal(t, "double", NewDouble(2.5).Type())
	assert.Equal(t, "3.0", NewDouble(3).String())

	assert.Equal(t, "1", NewBool(true).String())
	assert.Equal(t, "0", NewBool(false).String())

	l := NewList(NewString("a"), NewInt(1))
	assert.Equal(t, "a 1", l.String())
	assert.Equal(t, "list", l.Type())

	d := NewDict(NewString("k"), NewString("v"))
	assert.Equal(t, "k v", d.String())
	assert.Equal(t, "dict", d.Type())
}

func TestObjShimmering(t *testing.T) {
	o := NewString("123")
	n, err := AsInt(o)
	require.NoError(t, err)
	assert.Equal(t, int64(123), n)
	assert.Equal(t, "int", o.Type(), "successful conversion caches the form")

	// Failed conversions must not install a form.
	s := NewString("not a number")
	_, err = AsInt(s)
	require.Error(t, err)
	assert.Equal(t, "string", s.Type())

	// At most one typed form exists at a time.
	o2 := NewString("1 2")
	_, err = AsList(o2)
	require.NoError(t, err)
	assert.Equal(t, "list", o2.Type())
	_, err = AsDict(o2)
	require.NoError(t, err)
	assert.Equal(t, "dict", o2.Type())
}

func TestObjIntParsing(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"0", 0},
		{"42", 42},
		{"-7", -7},
		{"+7", 7},
		{"0x1f", 31},
		{"0o17", 15},
		{"0b101", 5},
		{"0d42", 42},
		{"-0x10", -16},
		{"  12  ", 12},
	}
	for _, tt := range tests {
		n, err := AsInt(NewString(tt.input))
		require.NoError(t, err, "input: %q", tt.input)
		assert.Equal(t, tt.want, n, "input: %q", tt.input)
	}

	for _, bad := range []string{"", "abc", "1.5", "0xzz", "1 2"} {
		_, err := AsInt(NewString(bad))
		assert.Error(t, err, "input: %q", bad)
	}
}

func TestObjDoubleParsing(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1.5", 1.5},
		{"-2.25", -2.25},
		{"1e3", 1000},
		{"2", 2},
		{"1.5e-2", 0.015},
	}
	for _, tt := range tests {
		f, err := AsDouble(NewString(tt.input))
		require.NoError(t, err, "input: %q", tt.input)
		assert.Equal(t, tt.want, f, "input: %q", tt.input)
	}

	// Inf and NaN are accepted case-insensitively.
	f, err := AsDouble(NewString("Inf"))
	require.NoError(t, err)
	assert.True(t, f > 0 && f*2 == f)
	_, err = AsDouble(NewString("nan"))
	require.NoError(t, err)

	for _, bad := range []string{"", "abc", "1.5x", "0x1p3"} {
		_, err := AsDouble(NewString(bad))
		assert.Error(t, err, "input: %q", bad)
	}
}

func TestObjBool(t *testing.T) {
	truthy := []string{"1", "true", "yes", "on", "TRUE", "On", "7"}
	falsy := []string{"0", "false", "no", "off", "FALSE", "0.0"}

	for _, s := range truthy {
		b, err := AsBool(NewString(s))
		require.NoError(t, err, "input: %q", s)
		assert.True(t, b, "input: %q", s)
	}
	for _, s := range falsy {
		b, err := AsBool(NewString(s))
		require.NoError(t, err, "input: %q", s)
		assert.False(t, b, "input: %q", s)
	}
	_, err := AsBool(NewString("maybe"))
	assert.Error(t, err)
}

// TestFormCoherence checks the core Value invariant: for any value with a
// typed form, re-parsing its string image yields an equal typed form.
func TestFormCoherence(t *testing.T) {
	values := []*Obj{
		NewInt(-17),
		NewDouble(3.25),
		NewList(NewString("a b"), NewString("{c}"), NewInt(5)),
		NewDict(NewString("key one"), NewString("val one"), NewString("k2"), NewString("")),
	}

	for _, v := range values {
		image := v.String()
		reparsed := NewString(image)

		switch v.Type() {
		case "int":
			a, _ := AsInt(v)
			b, err := AsInt(reparsed)
			require.NoError(t, err)
			assert.Equal(t, a, b)
		case "double":
			a, _ := AsDouble(v)
			b, err := AsDouble(reparsed)
			require.NoError(t, err)
			assert.Equal(t, a, b)
		case "list":
			a, _ := AsList(v)
			b, err := AsList(reparsed)
			require.NoError(t, err)
			assert.Equal(t, listStrings(a), listStrings(b))
		case "dict":
			a, _ := AsDict(v)
			b, err := AsDict(reparsed)
			require.NoError(t, err)
			assert.Equal(t, a.Order, b.Order)
			for _, k := range a.Order {
				av, _ := a.Get(k)
				bv, _ := b.Get(k)
				assert.Equal(t, av.String(), bv.String())
			}
		}
	}
}

func TestObjEquality(t *testing.T) {
	assert.True(t, NewInt(5).Equal(NewString("5")))
	assert.True(t, NewString("a b").Equal(NewList(NewString("a"), NewString("b"))))
	assert.False(t, NewInt(5).Equal(NewString("05")))
}

func TestDictOrderPreserved(t *testing.T) {
	d := &DictType{Items: map[string]*Obj{}}
	for _, k := range []string{"z", "a", "m", "b"} {
		d.Put(k, NewString(k+"-val"))
	}
	assert.Equal(t, []string{"z", "a", "m", "b"}, d.Order)

	// Overwriting keeps the original position.
	d.Put("a", NewString("new"))
	assert.Equal(t, []string{"z", "a", "m", "b"}, d.Order)

	d.Remove("m")
	assert.Equal(t, []string{"z", "a", "b"}, d.Order)
}

func TestObjDup(t *testing.T) {
	orig := NewList(NewString("a"), NewString("b"))
	dup := orig.Dup()

	require.Equal(t, orig.String(), dup.String())

	// The duplicate's rep is independent.
	dupItems, _ := AsList(dup)
	origItems, _ := AsList(orig)
	assert.Equal(t, len(origItems), len(dupItems))
}
