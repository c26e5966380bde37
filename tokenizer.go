package quill

import (
	"strconv"
	"unicode/utf8"
)

// eof marks the end of input for cursor peeks.
const eof rune = -1

// cursor is a character cursor over script text, used by the script parser,
// the list parser, and the expression parser. The basic procedure:
//
//   - Use next and peek to query the input in the usual way.
//   - Detect the beginning of a token and save its index with mark.
//   - Skip just past the end of the token using next, skip, etc.
//   - Use token to retrieve the slice from the mark to the index.
type cursor struct {
	input string
	index int

	// bracketTerm is true while parsing a command-substitution body, where
	// an unescaped ']' terminates the script.
	bracketTerm bool
}

func newCursor(input string) *cursor {
	return &cursor{input: input}
}

// peek returns the next character without consuming it, or eof.
func (c *cursor) peek() rune {
	if c.index >= len(c.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(c.input[c.index:])
	return r
}

// next consumes and returns the next character, or eof.
func (c *cursor) next() rune {
	if c.index >= len(c.input) {
		return eof
	}
	r, size := utf8.DecodeRuneInString(c.input[c.index:])
	c.index += size
	return r
}

// atEnd reports whether the input is exhausted.
func (c *cursor) atEnd() bool {
	return c.index >= len(c.input)
}

// mark returns the current index for later use with token.
func (c *cursor) mark() int {
	return c.index
}

// token returns the input between the mark and the current index.
func (c *cursor) token(mark int) string {
	return c.input[mark:c.index]
}

// rest returns the remainder of the input.
func (c *cursor) rest() string {
	return c.input[c.index:]
}

// resetTo rewinds the cursor to a previous mark.
func (c *cursor) resetTo(mark int) {
	c.index = mark
}

// is reports whether the next character is ch.
func (c *cursor) is(ch rune) bool {
	return c.peek() == ch
}

// has reports whether the predicate holds for the next character.
func (c *cursor) has(pred func(rune) bool) bool {
	r := c.peek()
	return r != eof && pred(r)
}

// skip consumes the next character. Equivalent to next, but communicates
// better at call sites.
func (c *cursor) skip() {
	c.next()
}

// skipChar consumes the next character, which must be ch.
func (c *cursor) skipChar(ch rune) {
	if !c.is(ch) {
		panic("cursor: expected '" + string(ch) + "'")
	}
	c.next()
}

// skipWhile consumes characters while the predicate holds.
func (c *cursor) skipWhile(pred func(rune) bool) {
	for c.has(pred) {
		c.next()
	}
}

// backslashSubst parses a backslash escape and returns its value. If the
// escape is valid, the value is the substituted character; otherwise it is
// the character following the backslash. A backslash-newline (plus any
// following blanks) collapses to a single space. A trailing backslash at end
// of input yields the backslash itself.
func (c *cursor) backslashSubst() rune {
	c.skipChar('\\')

	if c.atEnd() {
		return '\\'
	}

	start := c.mark()
	ch := c.next()
	switch ch {
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	case '\n':
		// Line continuation: backslash-newline plus following blanks is a
		// single space.
		c.skipWhile(func(r rune) bool { return r == ' ' || r == '\t' })
		return ' '
	case '0', '1', '2', '3', '4', '5', '6', '7':
		for c.has(isOctalDigit) && c.index-start < 3 {
			c.next()
		}
		val, _ := strconv.ParseUint(c.token(start), 8, 32)
		return rune(val)
	case 'x', 'u', 'U':
		max := 2
		if ch == 'u' {
			max = 4
		} else if ch == 'U' {
			max = 8
		}
		digits := c.mark()
		for c.has(isHexDigit) && c.index-digits < max {
			c.next()
		}
		if c.index == digits {
			return ch
		}
		val, _ := strconv.ParseUint(c.token(digits), 16, 32)
		if !utf8.ValidRune(rune(val)) {
			c.resetTo(digits)
			return ch
		}
		return rune(val)
	default:
		return ch
	}
}

func isOctalDigit(r rune) bool {
	return r >= '0' && r <= '7'
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// isListWhite reports whether r separates list elements and commands.
func isListWhite(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// isLineWhite reports whether r separates words within a command.
func isLineWhite(r rune) bool {
	return r == ' ' || r == '\t'
}
