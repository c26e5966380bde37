package quill

import "unicode/utf8"

// Glob matching for string match, lsearch -glob, switch -glob, and command
// name filtering. Patterns support *, ?, [ranges], and backslash escapes.

func uncons(s string) (rune, string) {
	head, sz := utf8.DecodeRuneInString(s)
	if head == utf8.RuneError && sz <= 1 {
		return head, ""
	}
	return head, s[sz:]
}

func runeHead(s string) rune {
	c, _ := uncons(s)
	return c
}

func runeTail(s string) string {
	_, t := uncons(s)
	return t
}

// matchCharset matches one character of str against a [...] set. pat starts
// just after the '['. Returns whether it matched, the pattern after the
// closing ']', and the string after the consumed character.
func matchCharset(pat, str string) (bool, string, string) {
	if str == "" {
		return false, pat, str
	}
	sh, rest2 := uncons(str)
	ph, rest := uncons(pat)
	gotMatch := false
	for ph != ']' && ph != utf8.RuneError {
		if !gotMatch {
			if sh == ph {
				gotMatch = true
			} else if runeHead(rest) == '-' {
				rest = runeTail(rest)
				var ph2 rune
				ph2, rest = uncons(rest)
				if ph2 == utf8.RuneError {
					return false, "", ""
				}
				gotMatch = sh >= ph && sh <= ph2
			}
		}
		ph, rest = uncons(rest)
	}
	return gotMatch, rest, rest2
}

// globMatch reports whether str matches the glob pattern.
func globMatch(pat, str string) bool {
	for pat != "" {
		ph, rest := uncons(pat)
		switch ph {
		case '?':
			if str == "" {
				return false
			}
			str = runeTail(str)
		case '[':
			var isMatch bool
			isMatch, rest, str = matchCharset(rest, str)
			if !isMatch {
				return false
			}
		case '*':
			if rest == "" {
				return true
			}
			for ; str != ""; str = runeTail(str) {
				if globMatch(rest, str) {
					return true
				}
			}
			return globMatch(rest, "")
		default:
			if ph == '\\' {
				if rest == "" {
					return false
				}
				ph, rest = uncons(rest)
			}
			if str == "" {
				return false
			}
			var sh rune
			sh, str = uncons(str)
			if sh != ph {
				return false
			}
		}
		pat = rest
	}
	return str == ""
}
