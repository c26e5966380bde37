package quill

import (
	"strings"
	"unicode"
)

// The script parser converts script text into an internal form:
//
//   - A Script is a list of commands.
//   - A command is a list of words.
//   - A word is an entity the evaluator materializes into a single value:
//     a literal, a variable reference, a nested script, or a concatenation
//     of such fragments.
//
// The parser performs no substitution itself; substitutions are recorded as
// fragments and applied by the evaluator at use time. Parsed scripts are
// cached on the source value, so loop bodies parse once.

// Script is a parsed script, ready for evaluation.
type Script struct {
	commands []parsedCommand
}

// parsedCommand is a single command: the name word followed by argument words.
type parsedCommand struct {
	words []word
}

// word is one fragment tree in a command. The evaluator materializes each
// word into a value at evaluation time.
type word interface {
	isWord()
}

type (
	// wordValue is a fully literal word, e.g. a braced word.
	wordValue struct{ value *Obj }

	// wordString is a literal run inside a concatenation.
	wordString struct{ text string }

	// wordVarRef is a scalar variable reference, e.g. $name.
	wordVarRef struct{ name string }

	// wordArrayRef is an array element reference, e.g. $a(i$x); the index
	// is itself a word since it may contain substitutions.
	wordArrayRef struct {
		name  string
		index word
	}

	// wordScript is a command substitution, e.g. [foo 1 2].
	wordScript struct{ script *Script }

	// wordTokens concatenates fragment values into one word, e.g. a$x[f].
	wordTokens struct{ parts []word }

	// wordExpand marks a word prefixed with the {*} expansion operator.
	wordExpand struct{ inner word }
)

func (wordValue) isWord()    {}
func (wordString) isWord()   {}
func (wordVarRef) isWord()   {}
func (wordArrayRef) isWord() {}
func (wordScript) isWord()   {}
func (wordTokens) isWord()   {}
func (wordExpand) isWord()   {}

// varName is a parsed variable name: the name proper plus an optional array
// index, as in "x" or "a(i)".
type varName struct {
	name  string
	index string
	isArr bool
}

// parseVarNameLiteral splits a literal variable name into name and index.
// A name containing an opening parenthesis and ending with ')' is an array
// element reference; anything else is a scalar name.
func parseVarNameLiteral(literal string) varName {
	open := strings.IndexByte(literal, '(')
	if open < 0 || !strings.HasSuffix(literal, ")") || open == len(literal)-1 {
		return varName{name: literal}
	}
	return varName{
		name:  literal[:open],
		index: literal[open+1 : len(literal)-1],
		isArr: true,
	}
}

// parser carries the cursor plus the identifier policy in effect.
type parser struct {
	*cursor

	// uniNames widens the identifier character class to any Unicode letter
	// or digit.
	uniNames bool
}

// isVarNameChar reports whether r may appear in a variable or command name.
// The namespace separator ':' is accepted so qualified names parse whole.
func (p *parser) isVarNameChar(r rune) bool {
	if r == '_' || r == ':' {
		return true
	}
	if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
		return true
	}
	return p.uniNames && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

// atEndOfScript reports whether the parser has consumed the script: end of
// input, or the closing bracket of a command substitution.
func (p *parser) atEndOfScript() bool {
	return p.atEnd() || (p.bracketTerm && p.is(']'))
}

// atEndOfCommand reports whether the parser sits at a command separator.
func (p *parser) atEndOfCommand() bool {
	return p.atEndOfScript() || p.is('\n') || p.is(';')
}

// skipBlockWhite consumes whitespace between commands, including newlines.
func (p *parser) skipBlockWhite() {
	for {
		if p.has(isListWhite) {
			p.skip()
			continue
		}
		if p.atLineContinuation() {
			p.skip()
			p.skip()
			continue
		}
		return
	}
}

// skipLineWhite consumes whitespace between words: blanks and backslash-
// newline continuations.
func (p *parser) skipLineWhite() {
	for {
		if p.has(isLineWhite) {
			p.skip()
			continue
		}
		if p.atLineContinuation() {
			p.skip()
			p.skip()
			p.skipWhile(isLineWhite)
			continue
		}
		return
	}
}

// atLineContinuation reports whether the next two characters are a
// backslash-newline pair.
func (p *parser) atLineContinuation() bool {
	return strings.HasPrefix(p.rest(), "\\\n")
}

// skipComment consumes a comment if one starts here. Comments begin with
// '#' where a command is expected and extend to the end of the line; a
// backslash-newline continues the comment.
func (p *parser) skipComment() bool {
	if !p.is('#') {
		return false
	}
	for !p.atEnd() {
		if p.atLineContinuation() {
			p.skip()
			p.skip()
			continue
		}
		if p.next() == '\n' {
			break
		}
	}
	return true
}

// parseScriptText parses script source into its internal form.
func parseScriptText(input string, uniNames bool) (*Script, *Flow) {
	p := &parser{cursor: newCursor(input), uniNames: uniNames}
	return parseScript(p)
}

func parseScript(p *parser) (*Script, *Flow) {
	script := &Script{}
	for !p.atEndOfScript() {
		cmd, err := parseCommand(p)
		if err != nil {
			return nil, err
		}
		if len(cmd.words) > 0 {
			script.commands = append(script.commands, cmd)
		}
	}
	return script, nil
}

func parseCommand(p *parser) (parsedCommand, *Flow) {
	var cmd parsedCommand

	// Skip whitespace and comments until the command proper starts.
	for !p.atEndOfScript() {
		p.skipBlockWhite()
		if !p.skipComment() {
			break
		}
	}

	for !p.atEndOfCommand() {
		w, err := parseNextWord(p)
		if err != nil {
			return cmd, err
		}
		cmd.words = append(cmd.words, w)
		p.skipLineWhite()
	}

	if p.is(';') || p.is('\n') {
		p.skip()
	}

	return cmd, nil
}

func parseNextWord(p *parser) (word, *Flow) {
	if p.is('{') {
		// The {*} expansion operator, unless it's just a braced asterisk.
		if strings.HasPrefix(p.rest(), "{*}") {
			p.skip()
			p.skip()
			p.skip()
			if p.atEnd() || p.has(isListWhite) || p.atEndOfCommand() {
				return wordValue{NewString("*")}, nil
			}
			inner, err := parseNextWord(p)
			if err != nil {
				return nil, err
			}
			return wordExpand{inner}, nil
		}
		return parseBracedWord(p)
	}
	if p.is('"') {
		return parseQuotedWord(p)
	}
	return parseBareWord(p, false)
}

// parseBracedWord parses a braced word. The contents are verbatim except
// that backslash-newline collapses to a space; inner braces must balance.
func parseBracedWord(p *parser) (word, *Flow) {
	p.skipChar('{')
	depth := 1

	var text strings.Builder
	start := p.mark()

	for !p.atEnd() {
		switch p.peek() {
		case '{':
			depth++
			p.skip()
		case '}':
			depth--
			if depth > 0 {
				p.skip()
				continue
			}
			text.WriteString(p.token(start))
			p.skip()
			if p.atEndOfCommand() || p.has(isLineWhite) {
				return wordValue{NewString(text.String())}, nil
			}
			return nil, newError("extra characters after close-brace")
		case '\\':
			text.WriteString(p.token(start))
			p.skip()
			if ch := p.next(); ch == '\n' {
				text.WriteByte(' ')
			} else if ch != eof {
				text.WriteByte('\\')
				text.WriteRune(ch)
			}
			start = p.mark()
		default:
			p.skip()
		}
	}

	return nil, newError("missing close-brace")
}

// parseQuotedWord parses a quoted word, recording backslash, variable, and
// command substitutions.
func parseQuotedWord(p *parser) (word, *Flow) {
	p.skipChar('"')

	var tokens tokenAccum
	start := p.mark()

	for !p.atEnd() {
		switch p.peek() {
		case '[':
			tokens.pushStr(p.token(start))
			script, err := parseBrackets(p)
			if err != nil {
				return nil, err
			}
			tokens.push(wordScript{script})
			start = p.mark()
		case '$':
			tokens.pushStr(p.token(start))
			if err := parseDollar(p, &tokens); err != nil {
				return nil, err
			}
			start = p.mark()
		case '\\':
			tokens.pushStr(p.token(start))
			tokens.pushChar(p.backslashSubst())
			start = p.mark()
		case '"':
			tokens.pushStr(p.token(start))
			p.skip()
			if !p.atEndOfCommand() && !p.has(isLineWhite) {
				return nil, newError("extra characters after close-quote")
			}
			return tokens.take(), nil
		default:
			p.skip()
		}
	}

	return nil, newError(`missing "`)
}

// parseBareWord parses an unquoted word. With indexFlag set the word is an
// array index and a close paren ends it.
func parseBareWord(p *parser, indexFlag bool) (word, *Flow) {
	var tokens tokenAccum
	start := p.mark()

	for !p.atEndOfCommand() && !p.has(isLineWhite) && !p.atLineContinuation() {
		if indexFlag && p.is(')') {
			break
		}
		switch p.peek() {
		case '[':
			tokens.pushStr(p.token(start))
			script, err := parseBrackets(p)
			if err != nil {
				return nil, err
			}
			tokens.push(wordScript{script})
			start = p.mark()
		case '$':
			tokens.pushStr(p.token(start))
			if err := parseDollar(p, &tokens); err != nil {
				return nil, err
			}
			start = p.mark()
		case '\\':
			tokens.pushStr(p.token(start))
			tokens.pushChar(p.backslashSubst())
			start = p.mark()
		default:
			p.skip()
		}
	}

	tokens.pushStr(p.token(start))
	return tokens.take(), nil
}

// parseBrackets parses a [script] command substitution.
func parseBrackets(p *parser) (*Script, *Flow) {
	p.skipChar('[')

	oldFlag := p.bracketTerm
	p.bracketTerm = true
	script, err := parseScript(p)
	p.bracketTerm = oldFlag

	if err != nil {
		return nil, err
	}
	if !p.is(']') {
		return nil, newError("missing close-bracket")
	}
	p.skip()
	return script, nil
}

// parseDollar parses a '$' in the input. Usually this is a variable
// reference, but a bare '$' stands for itself.
func parseDollar(p *parser, tokens *tokenAccum) *Flow {
	p.skipChar('$')

	if !p.has(p.isVarNameChar) && !p.is('{') {
		tokens.pushChar('$')
		return nil
	}

	w, err := parseVarRef(p)
	if err != nil {
		return err
	}
	tokens.push(w)
	return nil
}

// parseVarRef parses a variable name after '$': braced or bare, scalar or
// array element.
func parseVarRef(p *parser) (word, *Flow) {
	if p.is('{') {
		p.skipChar('{')
		start := p.mark()
		p.skipWhile(func(r rune) bool { return r != '}' })
		if p.atEnd() {
			return nil, newError("missing close-brace for variable name")
		}
		vn := parseVarNameLiteral(p.token(start))
		p.skipChar('}')
		if vn.isArr {
			return wordArrayRef{vn.name, wordString{vn.index}}, nil
		}
		return wordVarRef{vn.name}, nil
	}

	start := p.mark()
	p.skipWhile(p.isVarNameChar)
	name := p.token(start)

	if !p.is('(') {
		return wordVarRef{name}, nil
	}

	p.skip()
	index, err := parseBareWord(p, true)
	if err != nil {
		return nil, err
	}
	if !p.is(')') {
		return nil, errorf("missing )")
	}
	p.skip()
	return wordArrayRef{name, index}, nil
}

// tokenAccum accumulates the fragments of a bare or quoted word, merging
// adjacent string literals.
type tokenAccum struct {
	list      []word
	gotString bool
	str       strings.Builder
}

func (t *tokenAccum) push(w word) {
	if t.gotString {
		t.list = append(t.list, wordString{t.str.String()})
		t.str.Reset()
		t.gotString = false
	}
	t.list = append(t.list, w)
}

func (t *tokenAccum) pushStr(s string) {
	if s == "" {
		return
	}
	t.str.WriteString(s)
	t.gotString = true
}

func (t *tokenAccum) pushChar(ch rune) {
	t.str.WriteRune(ch)
	t.gotString = true
}

// take folds the accumulated fragments into a single word: a literal when
// there's nothing to substitute, otherwise a concatenation.
func (t *tokenAccum) take() word {
	if t.gotString {
		if len(t.list) == 0 {
			return wordValue{NewString(t.str.String())}
		}
		t.list = append(t.list, wordString{t.str.String()})
		t.str.Reset()
		t.gotString = false
	}

	switch len(t.list) {
	case 0:
		return wordValue{emptyObj()}
	case 1:
		return t.list[0]
	default:
		return wordTokens{t.list}
	}
}

// scriptType caches a parsed script as a value's internal rep, so loop
// bodies and proc bodies parse once.
type scriptType struct {
	src      string
	uniNames bool
	script   *Script
}

func (t *scriptType) Name() string         { return "script" }
func (t *scriptType) Dup() ObjType         { return t }
func (t *scriptType) UpdateString() string { return t.src }

// asScript returns the parsed form of a value, parsing and caching it if
// needed. The cache is keyed on the identifier policy in effect.
func asScript(o *Obj, uniNames bool) (*Script, *Flow) {
	if rep, ok := o.intrep.(*scriptType); ok && rep.uniNames == uniNames {
		return rep.script, nil
	}
	src := o.String()
	script, err := parseScriptText(src, uniNames)
	if err != nil {
		return nil, err
	}
	o.setIntRep(&scriptType{src: src, uniNames: uniNames, script: script})
	return script, nil
}
