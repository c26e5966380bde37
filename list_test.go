package quill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listStrings(items []*Obj) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.String()
	}
	return out
}

func TestParseListBasic(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"   ", nil},
		{"a", []string{"a"}},
		{"a b c", []string{"a", "b", "c"}},
		{"  a\tb\nc  ", []string{"a", "b", "c"}},
		{"{a b} c", []string{"a b", "c"}},
		{"{} {}", []string{"", ""}},
		{"{nested {braces here}}", []string{"nested {braces here}"}},
		{`"a b" c`, []string{"a b", "c"}},
		{`"with \t tab"`, []string{"with \t tab"}},
		{`a\ b c`, []string{"a b", "c"}},
		{`{a\}b}`, []string{`a\}b`}},
	}
	for _, tt := range tests {
		items, err := ParseList(tt.input)
		require.NoError(t, err, "input: %q", tt.input)
		assert.Equal(t, tt.want, func() []string {
			if len(items) == 0 {
				return nil
			}
			return listStrings(items)
		}(), "input: %q", tt.input)
	}
}

func TestParseListErrors(t *testing.T) {
	for _, input := range []string{
		"{unclosed",
		`"unclosed`,
		"{a}trailing",
		`"a"trailing`,
	} {
		_, err := ParseList(input)
		assert.Error(t, err, "input: %q", input)
	}
}

func TestFormatListElement(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"abc", "abc"},
		{"", "{}"},
		{"a b", "{a b}"},
		{"a\nb", "{a\nb}"},
		{"{balanced}", "{{balanced}}"},
		{"$var", "{$var}"},
		{"[cmd]", "{[cmd]}"},
		{"unbalanced{", `unbalanced\{`},
		{"}backwards{", `\}backwards\{`},
		{`trailing\`, `trailing\\`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatListElement(tt.input), "input: %q", tt.input)
	}
}

// TestListRoundTrip checks the round-trip property: parsing a formatted
// list yields the original elements, and format∘parse is idempotent.
func TestListRoundTrip(t *testing.T) {
	elementSets := [][]string{
		{"a", "b", "c"},
		{"hello world", "plain"},
		{"", "", ""},
		{"{braces}", "un{balanced", "back\\slash"},
		{"$dollar", "[bracket]", "semi;colon"},
		{"tab\there", "newline\nthere", "quote\"mark"},
		{"カタカナ", "mixedカタ"},
	}

	for _, elems := range elementSets {
		items := make([]*Obj, len(elems))
		for i, e := range elems {
			items[i] = NewString(e)
		}
		formatted := FormatList(items)

		parsed, err := ParseList(formatted)
		require.NoError(t, err, "formatted: %q", formatted)
		require.Equal(t, elems, listStrings(parsed), "formatted: %q", formatted)

		// Idempotence: formatting the parsed form changes nothing.
		assert.Equal(t, formatted, FormatList(parsed))
	}
}

func TestEmptyListFormatsEmpty(t *testing.T) {
	assert.Equal(t, "", FormatList(nil))
	assert.Equal(t, "", NewList().String())
}

func TestListObjShimmering(t *testing.T) {
	// String -> list caches the parsed form.
	o := NewString("a b c")
	items, err := AsList(o)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "list", o.Type())

	// List -> string computes the canonical image.
	l := NewList(NewString("x y"), NewString("z"))
	assert.Equal(t, "{x y} z", l.String())

	// A failed parse must not install a form.
	bad := NewString("{unclosed")
	_, err = AsList(bad)
	require.Error(t, err)
	assert.Equal(t, "string", bad.Type())
}
