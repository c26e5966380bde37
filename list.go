package quill

import (
	"fmt"
	"strings"
)

// This file implements the canonical list syntax: parsing a string into a
// sequence of values, and formatting a sequence of values into the canonical
// string. The two are inverses for well-formed input; formatting is
// idempotent once a list has been canonicalized.

// ParseList parses a string as a list, returning its elements.
// Elements are separated by whitespace; a braced element is taken verbatim
// with the outer braces stripped; a quoted element processes backslash
// escapes; a bare element runs to the next whitespace, processing escapes.
func ParseList(s string) ([]*Obj, error) {
	c := newCursor(s)
	var items []*Obj

	for {
		c.skipWhile(isListWhite)
		if c.atEnd() {
			break
		}
		var elem string
		var err error
		switch c.peek() {
		case '{':
			elem, err = parseBracedElement(c)
		case '"':
			elem, err = parseQuotedElement(c)
		default:
			elem, err = parseBareElement(c)
		}
		if err != nil {
			return nil, err
		}
		items = append(items, NewString(elem))
	}

	return items, nil
}

// parseBracedElement parses a {…} element. Braces nest; backslash hides a
// brace from the balance count but is otherwise preserved verbatim.
func parseBracedElement(c *cursor) (string, error) {
	c.skipChar('{')
	depth := 1
	var buf strings.Builder
	start := c.mark()

	for !c.atEnd() {
		switch c.peek() {
		case '{':
			depth++
			c.skip()
		case '}':
			depth--
			if depth > 0 {
				c.skip()
				continue
			}
			buf.WriteString(c.token(start))
			c.skip()
			if !c.atEnd() && !c.has(isListWhite) {
				return "", fmt.Errorf("list element in braces followed by \"%s\" instead of space", c.rest())
			}
			return buf.String(), nil
		case '\\':
			c.skip()
			if !c.atEnd() {
				c.skip()
			}
		default:
			c.skip()
		}
	}

	return "", fmt.Errorf("unmatched open brace in list")
}

// parseQuotedElement parses a "…" element, processing backslash escapes.
func parseQuotedElement(c *cursor) (string, error) {
	c.skipChar('"')
	var buf strings.Builder
	start := c.mark()

	for !c.atEnd() {
		switch c.peek() {
		case '\\':
			buf.WriteString(c.token(start))
			buf.WriteRune(c.backslashSubst())
			start = c.mark()
		case '"':
			buf.WriteString(c.token(start))
			c.skip()
			if !c.atEnd() && !c.has(isListWhite) {
				return "", fmt.Errorf("list element in quotes followed by \"%s\" instead of space", c.rest())
			}
			return buf.String(), nil
		default:
			c.skip()
		}
	}

	return "", fmt.Errorf("unmatched open quote in list")
}

// parseBareElement parses an unquoted element, processing backslash escapes.
func parseBareElement(c *cursor) (string, error) {
	var buf strings.Builder
	start := c.mark()

	for !c.atEnd() && !c.has(isListWhite) {
		if c.is('\\') {
			buf.WriteString(c.token(start))
			buf.WriteRune(c.backslashSubst())
			start = c.mark()
		} else {
			c.skip()
		}
	}
	buf.WriteString(c.token(start))
	return buf.String(), nil
}

// FormatList formats elements into the canonical list string.
// An empty list formats to the empty string.
func FormatList(items []*Obj) string {
	var buf strings.Builder
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(FormatListElement(item.String()))
	}
	return buf.String()
}

// FormatListElement formats a single element so that parsing the result
// yields the element back. Plain elements are emitted verbatim; elements
// with special characters are brace-wrapped; elements whose braces don't
// balance are backslash-escaped instead.
func FormatListElement(s string) string {
	if s == "" {
		return "{}"
	}
	if !listElementNeedsQuoting(s) {
		return s
	}
	if bracesBalanced(s) && !strings.HasSuffix(s, "\\") {
		return "{" + s + "}"
	}
	return escapeListElement(s)
}

// listElementNeedsQuoting reports whether s can't be emitted verbatim.
func listElementNeedsQuoting(s string) bool {
	if strings.HasPrefix(s, "#") {
		return true
	}
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f',
			'{', '}', '"', '\\', '$', '[', ']', ';':
			return true
		}
	}
	return false
}

// bracesBalanced reports whether the braces in s balance, never dipping
// below zero. Backslashed braces don't count.
func bracesBalanced(s string) bool {
	depth := 0
	escaped := false
	for _, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// escapeListElement emits s with every special character backslash-escaped.
func escapeListElement(s string) string {
	var buf strings.Builder
	for _, r := range s {
		switch r {
		case '\n':
			buf.WriteString(`\n`)
		case '\t':
			buf.WriteString(`\t`)
		case '\r':
			buf.WriteString(`\r`)
		case '\v':
			buf.WriteString(`\v`)
		case '\f':
			buf.WriteString(`\f`)
		case ' ', '{', '}', '"', '\\', '$', '[', ']', ';':
			buf.WriteByte('\\')
			buf.WriteRune(r)
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
