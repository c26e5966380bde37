package quill

import "strings"

// The evaluator drives parsed scripts: it materializes each word by
// applying substitutions, dispatches the command, and routes control-flow
// outcomes. It never panics across command boundaries; every outcome is a
// value or a *Flow.

// evalObj evaluates a value as a script in the active frame, propagating
// every control-flow outcome to the caller. Control-flow commands use this
// for their bodies; proc invocation and the public entry points apply the
// return protocol on top.
func (i *Interp) evalObj(body *Obj) (*Obj, *Flow) {
	script, flow := asScript(body, i.features.UnicodeAlphanum)
	if flow != nil {
		return nil, flow
	}
	return i.evalScript(script)
}

// evalScript runs each command of a parsed script in order. The result is
// the result of the last command, or the empty value for an empty script.
func (i *Interp) evalScript(script *Script) (*Obj, *Flow) {
	i.evalDepth++
	defer func() { i.evalDepth-- }()
	if i.evalDepth > i.recursionLimit {
		return nil, newError("too many nested evaluations (infinite loop?)")
	}

	result := emptyObj()
	for ci := range script.commands {
		if i.cancelled.Load() {
			return nil, newError("eval canceled")
		}

		words, flow := i.evalWords(&script.commands[ci])
		if flow != nil {
			return nil, flow
		}
		if len(words) == 0 {
			continue
		}

		result, flow = i.invoke(words)
		if flow != nil {
			return nil, flow
		}
	}
	return result, nil
}

// evalWords materializes a command's words, splicing {*}-expanded words.
func (i *Interp) evalWords(cmd *parsedCommand) ([]*Obj, *Flow) {
	words := make([]*Obj, 0, len(cmd.words))
	for _, w := range cmd.words {
		if exp, ok := w.(wordExpand); ok {
			v, flow := i.evalWord(exp.inner)
			if flow != nil {
				return nil, flow
			}
			items, err := AsList(v)
			if err != nil {
				return nil, asFlow(err)
			}
			words = append(words, items...)
			continue
		}
		v, flow := i.evalWord(w)
		if flow != nil {
			return nil, flow
		}
		words = append(words, v)
	}
	return words, nil
}

// evalWord materializes one word: literals pass through, variable and
// command substitutions are applied, fragments are concatenated.
func (i *Interp) evalWord(w word) (*Obj, *Flow) {
	switch w := w.(type) {
	case wordValue:
		return w.value, nil
	case wordString:
		return NewString(w.text), nil
	case wordVarRef:
		return i.getVar(w.name)
	case wordArrayRef:
		index, flow := i.evalWord(w.index)
		if flow != nil {
			return nil, flow
		}
		return i.getElem(w.name, index.String())
	case wordScript:
		return i.evalScript(w.script)
	case wordTokens:
		var buf strings.Builder
		for _, part := range w.parts {
			v, flow := i.evalWord(part)
			if flow != nil {
				return nil, flow
			}
			buf.WriteString(v.String())
		}
		return NewString(buf.String()), nil
	case wordExpand:
		// Expansion outside a command word position concatenates like a
		// plain word; evalWords handles the splicing case.
		return i.evalWord(w.inner)
	}
	return nil, newError("unknown word form")
}

// invoke looks up and runs a single command. args[0] is the command name.
func (i *Interp) invoke(args []*Obj) (*Obj, *Flow) {
	if len(args) == 0 {
		return emptyObj(), nil
	}
	if i.cancelled.Load() {
		return nil, newError("eval canceled")
	}

	name := args[0].String()
	cmd, ok := i.commands[name]

	var result *Obj
	var err error
	switch {
	case ok:
		result, err = cmd.fn(i, args)
	case i.unknownHandler != nil:
		result, err = i.unknownHandler(i, args)
	default:
		return nil, errorf("invalid command name \"%s\"", name)
	}

	flow := asFlow(err)
	if flow != nil && flow.IsError() && i.features.ErrorStackTrace {
		if flow.isNewError() {
			flow.addErrorInfo("    while executing\n\"" + commandText(args) + "\"")
		} else {
			flow.addErrorInfo("    invoked from within\n\"" + commandText(args) + "\"")
		}
	}
	if flow != nil {
		return nil, flow
	}
	if result == nil {
		result = emptyObj()
	}
	return result, nil
}

// commandText renders a command invocation for stack traces, truncated so
// traces stay readable.
func commandText(args []*Obj) string {
	var buf strings.Builder
	for n, arg := range args {
		if n > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(arg.String())
		if buf.Len() > 80 {
			return buf.String()[:80] + "..."
		}
	}
	return buf.String()
}

// ----------------------------------------------------------------------------
// Substitution without execution

// substFlags selects which substitutions Subst applies.
type substFlags int

const (
	substBackslashes substFlags = 1 << iota
	substCommands
	substVariables

	substAll = substBackslashes | substCommands | substVariables
)

// substText applies variable, command, and backslash substitution to text
// without treating it as a command.
func (i *Interp) substText(text string, flags substFlags) (*Obj, *Flow) {
	p := &parser{cursor: newCursor(text), uniNames: i.features.UnicodeAlphanum}
	var buf strings.Builder

	for !p.atEnd() {
		switch {
		case p.is('\\') && flags&substBackslashes != 0:
			buf.WriteRune(p.backslashSubst())
		case p.is('$') && flags&substVariables != 0:
			var tokens tokenAccum
			if err := parseDollar(p, &tokens); err != nil {
				return nil, err
			}
			v, flow := i.evalWord(tokens.take())
			if flow != nil {
				return nil, flow
			}
			buf.WriteString(v.String())
		case p.is('[') && flags&substCommands != 0:
			script, err := parseBrackets(p)
			if err != nil {
				return nil, err
			}
			v, flow := i.evalScript(script)
			if flow != nil {
				return nil, flow
			}
			buf.WriteString(v.String())
		default:
			buf.WriteRune(p.next())
		}
	}

	return NewString(buf.String()), nil
}
