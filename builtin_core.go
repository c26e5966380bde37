package quill

import (
	"fmt"
	"strings"
	"time"
)

// Core commands: variables, procedures, control-flow producers, catch, and
// the evaluation commands. Each is an ordinary CommandFunc; nothing here is
// special to the evaluator.

// checkArgs validates an argument count. min and max count args[0]; max -1
// means unlimited. The error is the canonical wrong-args message.
func checkArgs(args []*Obj, min, max int, usage string) *Flow {
	if len(args) >= min && (max < 0 || len(args) <= max) {
		return nil
	}
	return errorf("wrong # args: should be \"%s\"", usage)
}

func registerCoreCommands(i *Interp) {
	i.RegisterCommand("set", cmdSet)
	i.RegisterCommand("unset", cmdUnset)
	i.RegisterCommand("append", cmdAppend)
	i.RegisterCommand("incr", cmdIncr)
	i.RegisterCommand("proc", cmdProc)
	i.RegisterCommand("return", cmdReturn)
	i.RegisterCommand("break", cmdBreak)
	i.RegisterCommand("continue", cmdContinue)
	i.RegisterCommand("error", cmdError)
	i.RegisterCommand("throw", cmdThrow)
	i.RegisterCommand("catch", cmdCatch)
	i.RegisterCommand("eval", cmdEval)
	i.RegisterCommand("subst", cmdSubst)
	i.RegisterCommand("uplevel", cmdUplevel)
	i.RegisterCommand("upvar", cmdUpvar)
	i.RegisterCommand("global", cmdGlobal)
	i.RegisterCommand("rename", cmdRename)
	i.RegisterCommand("time", cmdTime)
	if i.features.Expr {
		i.RegisterCommand("expr", cmdExpr)
	}
}

func cmdSet(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, 3, "set varName ?newValue?"); flow != nil {
		return nil, flow
	}
	name := args[1].String()
	if len(args) == 3 {
		if flow := i.setVar(name, args[2]); flow != nil {
			return nil, flow
		}
		return args[2], nil
	}
	v, flow := i.getVar(name)
	if flow != nil {
		return nil, flow
	}
	return v, nil
}

func cmdUnset(i *Interp, args []*Obj) (*Obj, error) {
	nocomplain := false
	rest := args[1:]
	for len(rest) > 0 {
		switch rest[0].String() {
		case "-nocomplain":
			nocomplain = true
			rest = rest[1:]
			continue
		case "--":
			rest = rest[1:]
		}
		break
	}
	for _, nameObj := range rest {
		if flow := i.unsetVar(nameObj.String()); flow != nil && !nocomplain {
			return nil, flow
		}
	}
	return emptyObj(), nil
}

func cmdAppend(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, -1, "append varName ?value value ...?"); flow != nil {
		return nil, flow
	}
	name := args[1].String()
	var buf strings.Builder
	if i.varExists(name) {
		v, flow := i.getVar(name)
		if flow != nil {
			return nil, flow
		}
		buf.WriteString(v.String())
	}
	for _, arg := range args[2:] {
		buf.WriteString(arg.String())
	}
	result := NewString(buf.String())
	if flow := i.setVar(name, result); flow != nil {
		return nil, flow
	}
	return result, nil
}

func cmdIncr(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, 3, "incr varName ?increment?"); flow != nil {
		return nil, flow
	}
	name := args[1].String()
	var incr int64 = 1
	if len(args) == 3 {
		n, err := AsInt(args[2])
		if err != nil {
			return nil, err
		}
		incr = n
	}
	var cur int64
	if i.varExists(name) {
		v, flow := i.getVar(name)
		if flow != nil {
			return nil, flow
		}
		n, err := AsInt(v)
		if err != nil {
			return nil, err
		}
		cur = n
	}
	result := NewInt(cur + incr)
	if flow := i.setVar(name, result); flow != nil {
		return nil, flow
	}
	return result, nil
}

// procUsage renders the canonical wrong-args usage string for a proc.
func procUsage(name string, params []*Obj) string {
	var buf strings.Builder
	buf.WriteString(name)
	for _, p := range params {
		spec, _ := AsList(p)
		buf.WriteByte(' ')
		switch {
		case len(spec) >= 2:
			buf.WriteString("?" + spec[0].String() + "?")
		case len(spec) == 1 && spec[0].String() == "args":
			buf.WriteString("?arg ...?")
		case len(spec) == 1:
			buf.WriteString(spec[0].String())
		}
	}
	return buf.String()
}

func cmdProc(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, 4, "proc name args body"); flow != nil {
		return nil, flow
	}
	name := args[1].String()
	params, err := AsList(args[2])
	if err != nil {
		return nil, err
	}
	for _, p := range params {
		spec, err := AsList(p)
		if err != nil {
			return nil, err
		}
		if len(spec) == 0 || len(spec) > 2 {
			return nil, errorf("argument with no name")
		}
	}

	def := &procedure{name: args[1], params: args[2], body: args[3]}
	i.commands[name] = &command{
		proc: def,
		fn: func(i *Interp, callArgs []*Obj) (*Obj, error) {
			return i.callProc(def, params, callArgs)
		},
	}
	return emptyObj(), nil
}

// callProc binds arguments, runs the body in a fresh frame, and applies the
// return protocol on the way out.
func (i *Interp) callProc(def *procedure, params []*Obj, args []*Obj) (*Obj, error) {
	name := args[0].String()
	prevActive := i.active
	frame := i.pushFrame(name)
	defer func() {
		i.popFrame()
		i.active = prevActive
	}()

	// Bind parameters to arguments.
	supplied := args[1:]
	for pi, p := range params {
		spec, _ := AsList(p)
		pname := spec[0].String()

		if pname == "args" && pi == len(params)-1 {
			frame.vars[pname] = &variable{value: NewList(supplied...)}
			supplied = nil
			break
		}
		switch {
		case len(supplied) > 0:
			frame.vars[pname] = &variable{value: supplied[0]}
			supplied = supplied[1:]
		case len(spec) == 2:
			frame.vars[pname] = &variable{value: spec[1]}
		default:
			return nil, errorf("wrong # args: should be \"%s\"", procUsage(name, params))
		}
	}
	if len(supplied) > 0 {
		return nil, errorf("wrong # args: should be \"%s\"", procUsage(name, params))
	}

	result, flow := i.evalObj(def.body)
	if flow == nil {
		return result, nil
	}

	switch flow.Code() {
	case ResultReturn:
		flow.decrementLevel()
		switch flow.Code() {
		case ResultOK, ResultReturn:
			if flow.Code() == ResultReturn {
				return nil, flow
			}
			return flow.Value(), nil
		default:
			return nil, flow
		}
	case ResultBreak, ResultContinue:
		return nil, newError(flow.Error())
	case ResultError:
		if i.features.ErrorStackTrace {
			flow.addErrorInfo(fmt.Sprintf("    (procedure \"%s\" body)", name))
		}
		return nil, flow
	}
	return nil, flow
}

func cmdReturn(i *Interp, args []*Obj) (*Obj, error) {
	value := emptyObj()
	level := 1
	code := ResultOK
	var errCode, errInfo *Obj

	rest := args[1:]
	for len(rest) >= 2 {
		opt := rest[0].String()
		switch opt {
		case "-code":
			c, err := resultFromObj(rest[1])
			if err != nil {
				return nil, err
			}
			code = c
		case "-level":
			n, err := AsInt(rest[1])
			if err != nil || n < 0 {
				return nil, errorf("bad -level value: expected non-negative integer but got \"%s\"", rest[1].String())
			}
			level = int(n)
		case "-errorcode":
			errCode = rest[1]
		case "-errorinfo":
			errInfo = rest[1]
		default:
			return nil, errorf("bad option \"%s\": must be -code, -errorcode, -errorinfo, or -level", opt)
		}
		rest = rest[2:]
	}
	if len(rest) == 1 {
		value = rest[0]
	} else if len(rest) > 1 {
		return nil, errorf("wrong # args: should be \"return ?-code code? ?-level level? ?value?\"")
	}

	// -level 0 -code ok is a normal completion of the return command
	// itself; the script continues.
	if level == 0 && code == ResultOK {
		return value, nil
	}

	flow := newReturnExt(value, level, code)
	if code == ResultError {
		if errCode != nil {
			flow.errorCode = errCode
		}
		if errInfo != nil {
			flow.trace = []string{errInfo.String()}
			flow.rethrown = true
		}
	}
	return nil, flow
}

func cmdBreak(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 1, 1, "break"); flow != nil {
		return nil, flow
	}
	return nil, newBreak()
}

func cmdContinue(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 1, 1, "continue"); flow != nil {
		return nil, flow
	}
	return nil, newContinue()
}

func cmdError(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, 4, "error message ?errorInfo? ?errorCode?"); flow != nil {
		return nil, flow
	}
	flow := newError(args[1].String())
	if len(args) >= 3 && args[2].String() != "" {
		flow.trace = []string{args[2].String()}
		flow.rethrown = true
	}
	if len(args) >= 4 {
		flow.errorCode = args[3]
	}
	return nil, flow
}

func cmdThrow(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 3, "throw type message"); flow != nil {
		return nil, flow
	}
	return nil, throwError(args[1], args[2].String())
}

func cmdCatch(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, 4, "catch script ?resultVarName? ?optionVarName?"); flow != nil {
		return nil, flow
	}

	result, flow := i.evalObj(args[1])

	code := ResultOK
	if flow != nil {
		code = flow.Code()
		result = flow.Value()
		if flow.IsError() {
			i.lastError = flow
		}
	}
	if result == nil {
		result = emptyObj()
	}

	if len(args) >= 3 {
		if setFlow := i.setVar(args[2].String(), result); setFlow != nil {
			return nil, setFlow
		}
	}
	if len(args) == 4 {
		opts := NewDict(
			NewString("-code"), NewInt(int64(code)),
			NewString("-level"), NewInt(0),
		)
		if flow != nil && flow.IsError() {
			d, _ := AsDict(opts)
			d.Put("-errorcode", flow.ErrorCode())
			if i.features.ErrorStackTrace {
				d.Put("-errorinfo", flow.ErrorInfo())
			}
		}
		if setFlow := i.setVar(args[3].String(), opts); setFlow != nil {
			return nil, setFlow
		}
	}

	return NewInt(int64(code)), nil
}

func cmdExpr(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, -1, "expr arg ?arg ...?"); flow != nil {
		return nil, flow
	}
	var exprObj *Obj
	if len(args) == 2 {
		exprObj = args[1]
	} else {
		parts := make([]string, len(args)-1)
		for n, arg := range args[1:] {
			parts[n] = arg.String()
		}
		exprObj = NewString(strings.Join(parts, " "))
	}
	v, flow := i.exprEval(exprObj)
	if flow != nil {
		return nil, flow
	}
	return v, nil
}

func cmdEval(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, -1, "eval arg ?arg ...?"); flow != nil {
		return nil, flow
	}
	script := args[1]
	if len(args) > 2 {
		parts := make([]string, len(args)-1)
		for n, arg := range args[1:] {
			parts[n] = arg.String()
		}
		script = NewString(strings.Join(parts, " "))
	}
	v, flow := i.evalObj(script)
	if flow != nil {
		return nil, flow
	}
	return v, nil
}

func cmdSubst(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, 5, "subst ?-nobackslashes? ?-nocommands? ?-novariables? string"); flow != nil {
		return nil, flow
	}
	flags := substAll
	for _, arg := range args[1 : len(args)-1] {
		switch arg.String() {
		case "-nobackslashes":
			flags &^= substBackslashes
		case "-nocommands":
			flags &^= substCommands
		case "-novariables":
			flags &^= substVariables
		default:
			return nil, errorf("bad option \"%s\": must be -nobackslashes, -nocommands, or -novariables", arg.String())
		}
	}
	v, flow := i.substText(args[len(args)-1].String(), flags)
	if flow != nil {
		return nil, flow
	}
	return v, nil
}

func cmdUplevel(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, -1, "uplevel ?level? arg ?arg ...?"); flow != nil {
		return nil, flow
	}

	rest := args[1:]
	spec := ""
	if len(rest) > 1 && looksLikeLevel(rest[0].String()) {
		spec = rest[0].String()
		rest = rest[1:]
	}
	target, flow := i.frameAt(spec)
	if flow != nil {
		return nil, flow
	}

	script := rest[0]
	if len(rest) > 1 {
		parts := make([]string, len(rest))
		for n, arg := range rest {
			parts[n] = arg.String()
		}
		script = NewString(strings.Join(parts, " "))
	}

	prev := i.active
	i.active = target.level
	defer func() { i.active = prev }()

	v, evalFlow := i.evalObj(script)
	if evalFlow != nil {
		return nil, evalFlow
	}
	return v, nil
}

// looksLikeLevel reports whether s is a level spec: an integer or #integer.
func looksLikeLevel(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '#' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

func cmdUpvar(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, -1, "upvar ?level? otherVar myVar ?otherVar myVar ...?"); flow != nil {
		return nil, flow
	}

	rest := args[1:]
	spec := ""
	if len(rest)%2 == 1 {
		spec = rest[0].String()
		if !looksLikeLevel(spec) {
			return nil, errorf("bad level \"%s\"", spec)
		}
		rest = rest[1:]
	}
	target, flow := i.frameAt(spec)
	if flow != nil {
		return nil, flow
	}

	for n := 0; n+1 < len(rest); n += 2 {
		if flow := i.linkVar(target, rest[n].String(), rest[n+1].String()); flow != nil {
			return nil, flow
		}
	}
	return emptyObj(), nil
}

func cmdGlobal(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, -1, "global varName ?varName ...?"); flow != nil {
		return nil, flow
	}
	if i.active == 0 {
		return emptyObj(), nil
	}
	global := i.globalFrame()
	for _, nameObj := range args[1:] {
		name := nameObj.String()
		if flow := i.linkVar(global, name, name); flow != nil {
			return nil, flow
		}
	}
	return emptyObj(), nil
}

func cmdRename(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 3, "rename oldName newName"); flow != nil {
		return nil, flow
	}
	if err := i.RenameCommand(args[1].String(), args[2].String()); err != nil {
		return nil, err
	}
	return emptyObj(), nil
}

func cmdTime(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, 3, "time command ?count?"); flow != nil {
		return nil, flow
	}
	count := int64(1)
	if len(args) == 3 {
		n, err := AsInt(args[2])
		if err != nil {
			return nil, err
		}
		if n < 1 {
			n = 1
		}
		count = n
	}

	start := time.Now()
	for n := int64(0); n < count; n++ {
		if _, flow := i.evalObj(args[1]); flow != nil {
			return nil, flow
		}
	}
	elapsed := time.Since(start)

	perIter := float64(elapsed.Microseconds()) / float64(count)
	return NewString(fmt.Sprintf("%g microseconds per iteration", perIter)), nil
}
