package quill

import "testing"

func checkGlob(t *testing.T, pat, str string, shouldMatch bool) {
	t.Helper()
	if globMatch(pat, str) != shouldMatch {
		verb := "should have"
		if !shouldMatch {
			verb = "should not have"
		}
		t.Errorf("%q %s matched %q", pat, verb, str)
	}
}

func TestGlobMatch(t *testing.T) {
	match := func(a, b string) { checkGlob(t, a, b, true) }
	matchNot := func(a, b string) { checkGlob(t, a, b, false) }

	match("c?t", "cat")
	match("ca*", "cat")
	match("c*", "cat")
	match("c*at", "cat")
	match("c*t", "cat")
	match("???", "cat")
	match("a*cd", "abdddddbdbdbdbdbdbdbcd")
	matchNot("a*dc", "abdddddbdbdbdbdbdbdbcd")
	matchNot(`a\*b`, "acb")
	match(`a\*b`, "a*b")
	match("λ*", "λxxxx")
	match("λ?λ", "λλλ")

	match("", "")
	matchNot("", "x")
	match("*", "")
	match("*", "anything")
	match("a*", "a")

	match("[a-c]x", "bx")
	matchNot("[a-c]x", "dx")
	match("[abc]", "b")
	matchNot("[abc]", "d")
}
