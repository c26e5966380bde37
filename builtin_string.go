package quill

import (
	"strings"
	"unicode"
)

// The string ensemble. All indexing is by rune, not byte, so multibyte
// text behaves the way scripts expect.

func registerStringCommands(i *Interp) {
	e := ensemble{
		"length":    strLength,
		"index":     strIndex,
		"range":     strRange,
		"cat":       strCat,
		"compare":   strCompare,
		"equal":     strEqual,
		"first":     strFirst,
		"last":      strLast,
		"map":       strMap,
		"match":     strMatch,
		"repeat":    strRepeat,
		"replace":   strReplace,
		"reverse":   strReverse,
		"tolower":   strToLower,
		"toupper":   strToUpper,
		"totitle":   strToTitle,
		"trim":      strTrim,
		"trimleft":  strTrimLeft,
		"trimright": strTrimRight,
		"is":        strIs,
	}
	i.RegisterCommand("string", e.command("string"))
}

// isSpaceRune honors the unicode-whitespace feature.
func (i *Interp) isSpaceRune(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return i.features.UnicodeWhitespace && unicode.IsSpace(r)
}

// caseLower honors the unicode-case feature.
func (i *Interp) caseLower(s string) string {
	if i.features.UnicodeCase {
		return strings.ToLower(s)
	}
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

func (i *Interp) caseUpper(s string) string {
	if i.features.UnicodeCase {
		return strings.ToUpper(s)
	}
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r - ('a' - 'A')
		}
		return r
	}, s)
}

func strLength(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 3, "string length string"); flow != nil {
		return nil, flow
	}
	return NewInt(int64(len([]rune(args[2].String())))), nil
}

func strIndex(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, 4, "string index string charIndex"); flow != nil {
		return nil, flow
	}
	runes := []rune(args[2].String())
	idx, flow := parseIndex(args[3], len(runes))
	if flow != nil {
		return nil, flow
	}
	if idx < 0 || idx >= len(runes) {
		return emptyObj(), nil
	}
	return NewString(string(runes[idx])), nil
}

func strRange(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 5, 5, "string range string first last"); flow != nil {
		return nil, flow
	}
	runes := []rune(args[2].String())
	first, flow := parseIndex(args[3], len(runes))
	if flow != nil {
		return nil, flow
	}
	last, flow := parseIndex(args[4], len(runes))
	if flow != nil {
		return nil, flow
	}
	if first < 0 {
		first = 0
	}
	if last >= len(runes) {
		last = len(runes) - 1
	}
	if first > last {
		return emptyObj(), nil
	}
	return NewString(string(runes[first : last+1])), nil
}

func strCat(i *Interp, args []*Obj) (*Obj, error) {
	var buf strings.Builder
	for _, arg := range args[2:] {
		buf.WriteString(arg.String())
	}
	return NewString(buf.String()), nil
}

// compareArgs parses the shared options of string compare and string equal:
// ?-nocase? ?-length n? string1 string2. A negative -length means no limit.
func compareArgs(i *Interp, args []*Obj, usage string) (a, b string, flow *Flow) {
	nocase := false
	length := int64(-1)
	rest := args[2:]
	for len(rest) > 2 {
		switch rest[0].String() {
		case "-nocase":
			nocase = true
			rest = rest[1:]
		case "-length":
			if len(rest) < 2 {
				return "", "", errorf("wrong # args: should be \"%s\"", usage)
			}
			n, err := AsInt(rest[1])
			if err != nil {
				return "", "", asFlow(err)
			}
			length = n
			rest = rest[2:]
		default:
			return "", "", errorf("bad option \"%s\": must be -nocase or -length", rest[0].String())
		}
	}
	if len(rest) != 2 {
		return "", "", errorf("wrong # args: should be \"%s\"", usage)
	}

	a, b = rest[0].String(), rest[1].String()
	if nocase {
		a, b = i.caseLower(a), i.caseLower(b)
	}
	if length >= 0 {
		ra, rb := []rune(a), []rune(b)
		if int64(len(ra)) > length {
			ra = ra[:length]
		}
		if int64(len(rb)) > length {
			rb = rb[:length]
		}
		a, b = string(ra), string(rb)
	}
	return a, b, nil
}

func strCompare(i *Interp, args []*Obj) (*Obj, error) {
	a, b, flow := compareArgs(i, args, "string compare ?-nocase? ?-length length? string1 string2")
	if flow != nil {
		return nil, flow
	}
	return NewInt(int64(strings.Compare(a, b))), nil
}

func strEqual(i *Interp, args []*Obj) (*Obj, error) {
	a, b, flow := compareArgs(i, args, "string equal ?-nocase? ?-length length? string1 string2")
	if flow != nil {
		return nil, flow
	}
	return NewBool(a == b), nil
}

// runeIndexOf returns the rune index of needle in haystack, or -1.
func runeIndexOf(haystack, needle string, fromRune int) int {
	runes := []rune(haystack)
	if fromRune < 0 {
		fromRune = 0
	}
	if fromRune > len(runes) {
		return -1
	}
	byteOff := len(string(runes[:fromRune]))
	pos := strings.Index(haystack[byteOff:], needle)
	if pos < 0 {
		return -1
	}
	return fromRune + len([]rune(haystack[byteOff:byteOff+pos]))
}

func strFirst(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, 5, "string first needleString haystackString ?startIndex?"); flow != nil {
		return nil, flow
	}
	needle, haystack := args[2].String(), args[3].String()
	start := 0
	if len(args) == 5 {
		idx, flow := parseIndex(args[4], len([]rune(haystack)))
		if flow != nil {
			return nil, flow
		}
		start = idx
	}
	return NewInt(int64(runeIndexOf(haystack, needle, start))), nil
}

func strLast(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, 5, "string last needleString haystackString ?lastIndex?"); flow != nil {
		return nil, flow
	}
	needle, haystack := args[2].String(), args[3].String()
	runes := []rune(haystack)
	limit := len(runes)
	if len(args) == 5 {
		idx, flow := parseIndex(args[4], len(runes))
		if flow != nil {
			return nil, flow
		}
		if idx < limit {
			limit = idx + 1
		}
	}
	if limit < 0 {
		return NewInt(-1), nil
	}
	searched := string(runes[:min(limit, len(runes))])
	pos := strings.LastIndex(searched, needle)
	if pos < 0 {
		return NewInt(-1), nil
	}
	return NewInt(int64(len([]rune(searched[:pos])))), nil
}

func strMap(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, 5, "string map ?-nocase? charMap string"); flow != nil {
		return nil, flow
	}
	nocase := false
	rest := args[2:]
	if rest[0].String() == "-nocase" {
		nocase = true
		rest = rest[1:]
	}
	if len(rest) != 2 {
		return nil, errorf("wrong # args: should be \"string map ?-nocase? charMap string\"")
	}

	pairs, err := AsList(rest[0])
	if err != nil {
		return nil, err
	}
	if len(pairs)%2 != 0 {
		return nil, newError("char map list unbalanced")
	}

	s := rest[1].String()
	var buf strings.Builder
	for pos := 0; pos < len(s); {
		replaced := false
		for n := 0; n+1 < len(pairs); n += 2 {
			from := pairs[n].String()
			if from == "" {
				continue
			}
			var matches bool
			if nocase {
				matches = len(s)-pos >= len(from) &&
					strings.EqualFold(s[pos:pos+len(from)], from)
			} else {
				matches = strings.HasPrefix(s[pos:], from)
			}
			if matches {
				buf.WriteString(pairs[n+1].String())
				pos += len(from)
				replaced = true
				break
			}
		}
		if !replaced {
			buf.WriteByte(s[pos])
			pos++
		}
	}
	return NewString(buf.String()), nil
}

func strMatch(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, 5, "string match ?-nocase? pattern string"); flow != nil {
		return nil, flow
	}
	rest := args[2:]
	nocase := false
	if rest[0].String() == "-nocase" {
		nocase = true
		rest = rest[1:]
	}
	if len(rest) != 2 {
		return nil, errorf("wrong # args: should be \"string match ?-nocase? pattern string\"")
	}
	pat, s := rest[0].String(), rest[1].String()
	if nocase {
		pat, s = i.caseLower(pat), i.caseLower(s)
	}
	return NewBool(globMatch(pat, s)), nil
}

func strRepeat(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, 4, "string repeat string count"); flow != nil {
		return nil, flow
	}
	count, err := AsInt(args[3])
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return emptyObj(), nil
	}
	return NewString(strings.Repeat(args[2].String(), int(count))), nil
}

func strReplace(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 5, 6, "string replace string first last ?newString?"); flow != nil {
		return nil, flow
	}
	runes := []rune(args[2].String())
	first, flow := parseIndex(args[3], len(runes))
	if flow != nil {
		return nil, flow
	}
	last, flow := parseIndex(args[4], len(runes))
	if flow != nil {
		return nil, flow
	}
	if first > last || first >= len(runes) || last < 0 {
		return args[2], nil
	}
	if first < 0 {
		first = 0
	}
	if last >= len(runes) {
		last = len(runes) - 1
	}

	var buf strings.Builder
	buf.WriteString(string(runes[:first]))
	if len(args) == 6 {
		buf.WriteString(args[5].String())
	}
	buf.WriteString(string(runes[last+1:]))
	return NewString(buf.String()), nil
}

func strReverse(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 3, "string reverse string"); flow != nil {
		return nil, flow
	}
	runes := []rune(args[2].String())
	for a, b := 0, len(runes)-1; a < b; a, b = a+1, b-1 {
		runes[a], runes[b] = runes[b], runes[a]
	}
	return NewString(string(runes)), nil
}

func strToLower(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 3, "string tolower string"); flow != nil {
		return nil, flow
	}
	return NewString(i.caseLower(args[2].String())), nil
}

func strToUpper(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 3, "string toupper string"); flow != nil {
		return nil, flow
	}
	return NewString(i.caseUpper(args[2].String())), nil
}

func strToTitle(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 3, "string totitle string"); flow != nil {
		return nil, flow
	}
	s := args[2].String()
	if s == "" {
		return emptyObj(), nil
	}
	runes := []rune(s)
	head := i.caseUpper(string(runes[0]))
	tail := i.caseLower(string(runes[1:]))
	return NewString(head + tail), nil
}

// trimSet builds the cutset predicate for the trim commands.
func (i *Interp) trimSet(args []*Obj) func(rune) bool {
	if len(args) == 4 {
		chars := args[3].String()
		return func(r rune) bool { return strings.ContainsRune(chars, r) }
	}
	return i.isSpaceRune
}

func strTrim(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 4, "string trim string ?chars?"); flow != nil {
		return nil, flow
	}
	return NewString(strings.TrimFunc(args[2].String(), i.trimSet(args))), nil
}

func strTrimLeft(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 4, "string trimleft string ?chars?"); flow != nil {
		return nil, flow
	}
	return NewString(strings.TrimLeftFunc(args[2].String(), i.trimSet(args))), nil
}

func strTrimRight(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 4, "string trimright string ?chars?"); flow != nil {
		return nil, flow
	}
	return NewString(strings.TrimRightFunc(args[2].String(), i.trimSet(args))), nil
}

func strIs(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, 5, "string is class ?-strict? string"); flow != nil {
		return nil, flow
	}
	class := args[2].String()
	strict := false
	rest := args[3:]
	if rest[0].String() == "-strict" {
		strict = true
		rest = rest[1:]
	}
	if len(rest) != 1 {
		return nil, errorf("wrong # args: should be \"string is class ?-strict? string\"")
	}
	s := rest[0].String()
	if s == "" {
		return NewBool(!strict), nil
	}

	var pred func(rune) bool
	switch class {
	case "alpha":
		pred = unicode.IsLetter
	case "digit":
		pred = unicode.IsDigit
	case "alnum":
		pred = func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }
	case "space":
		pred = i.isSpaceRune
	case "upper":
		pred = unicode.IsUpper
	case "lower":
		pred = unicode.IsLower
	case "ascii":
		pred = func(r rune) bool { return r < 128 }
	case "wordchar":
		pred = func(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }
	case "integer":
		_, err := parseInt(s)
		return NewBool(err == nil), nil
	case "double":
		if _, err := parseInt(s); err == nil {
			return NewBool(true), nil
		}
		_, err := parseFloat(s)
		return NewBool(err == nil), nil
	case "boolean":
		_, err := parseBool(s)
		return NewBool(err == nil), nil
	default:
		return nil, errorf("unknown class \"%s\"", class)
	}

	for _, r := range s {
		if !pred(r) {
			return NewBool(false), nil
		}
	}
	return NewBool(true), nil
}
