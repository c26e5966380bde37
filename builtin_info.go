package quill

import "sort"

// Introspection: the info ensemble and the array ensemble.

func registerInfoCommands(i *Interp) {
	info := ensemble{
		"exists":   infoExists,
		"commands": infoCommands,
		"procs":    infoProcs,
		"globals":  infoGlobals,
		"locals":   infoLocals,
		"vars":     infoVars,
		"level":    infoLevel,
		"body":     infoBody,
		"args":     infoArgs,
		"complete": infoComplete,
	}
	i.RegisterCommand("info", info.command("info"))

	arr := ensemble{
		"exists": arrayExists,
		"get":    arrayGet,
		"set":    arraySet,
		"names":  arrayNames,
		"size":   arraySize,
		"unset":  arrayUnset,
	}
	i.RegisterCommand("array", arr.command("array"))
}

func infoExists(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 3, "info exists varName"); flow != nil {
		return nil, flow
	}
	return NewBool(i.varExists(args[2].String())), nil
}

func infoCommands(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, 3, "info commands ?pattern?"); flow != nil {
		return nil, flow
	}
	pattern := ""
	if len(args) == 3 {
		pattern = args[2].String()
	}
	names := i.CommandNames(pattern)
	items := make([]*Obj, len(names))
	for n, name := range names {
		items[n] = NewString(name)
	}
	return NewList(items...), nil
}

func infoProcs(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, 3, "info procs ?pattern?"); flow != nil {
		return nil, flow
	}
	pattern := ""
	if len(args) == 3 {
		pattern = args[2].String()
	}
	var names []string
	for name, cmd := range i.commands {
		if cmd.proc == nil {
			continue
		}
		if pattern != "" && !globMatch(pattern, name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	items := make([]*Obj, len(names))
	for n, name := range names {
		items[n] = NewString(name)
	}
	return NewList(items...), nil
}

// frameVarNames lists readable variable names in a frame, optionally
// filtered by a glob pattern.
func frameVarNames(frame *CallFrame, pattern string) []*Obj {
	var names []string
	for name := range frame.vars {
		if pattern != "" && !globMatch(pattern, name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	items := make([]*Obj, len(names))
	for n, name := range names {
		items[n] = NewString(name)
	}
	return items
}

func infoGlobals(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, 3, "info globals ?pattern?"); flow != nil {
		return nil, flow
	}
	pattern := ""
	if len(args) == 3 {
		pattern = args[2].String()
	}
	return NewList(frameVarNames(i.globalFrame(), pattern)...), nil
}

func infoLocals(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, 3, "info locals ?pattern?"); flow != nil {
		return nil, flow
	}
	if i.active == 0 {
		return emptyObj(), nil
	}
	pattern := ""
	if len(args) == 3 {
		pattern = args[2].String()
	}
	return NewList(frameVarNames(i.frame(), pattern)...), nil
}

func infoVars(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, 3, "info vars ?pattern?"); flow != nil {
		return nil, flow
	}
	pattern := ""
	if len(args) == 3 {
		pattern = args[2].String()
	}
	return NewList(frameVarNames(i.frame(), pattern)...), nil
}

func infoLevel(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, 3, "info level ?number?"); flow != nil {
		return nil, flow
	}
	if len(args) == 2 {
		return NewInt(int64(i.active)), nil
	}
	n, err := AsInt(args[2])
	if err != nil {
		return nil, err
	}
	level := int(n)
	if level < 0 {
		level = i.active + level
	}
	if level <= 0 || level > i.active {
		return nil, errorf("bad level \"%s\"", args[2].String())
	}
	return NewString(i.frames[level].proc), nil
}

// lookupProc fetches a proc definition for info body / info args.
func (i *Interp) lookupProc(name string) (*procedure, *Flow) {
	cmd, ok := i.commands[name]
	if !ok || cmd.proc == nil {
		return nil, errorf("\"%s\" isn't a procedure", name)
	}
	return cmd.proc, nil
}

func infoBody(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 3, "info body procname"); flow != nil {
		return nil, flow
	}
	proc, flow := i.lookupProc(args[2].String())
	if flow != nil {
		return nil, flow
	}
	return proc.body, nil
}

func infoArgs(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 3, "info args procname"); flow != nil {
		return nil, flow
	}
	proc, flow := i.lookupProc(args[2].String())
	if flow != nil {
		return nil, flow
	}
	params, err := AsList(proc.params)
	if err != nil {
		return nil, err
	}
	names := make([]*Obj, len(params))
	for n, p := range params {
		spec, _ := AsList(p)
		if len(spec) > 0 {
			names[n] = spec[0]
		} else {
			names[n] = p
		}
	}
	return NewList(names...), nil
}

func infoComplete(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 3, "info complete command"); flow != nil {
		return nil, flow
	}
	return NewBool(i.Complete(args[2].String())), nil
}

func arrayExists(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 3, "array exists arrayName"); flow != nil {
		return nil, flow
	}
	_, ok := i.arrayVar(args[2].String())
	return NewBool(ok), nil
}

func arrayGet(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 4, "array get arrayName ?pattern?"); flow != nil {
		return nil, flow
	}
	cells, ok := i.arrayVar(args[2].String())
	if !ok {
		return emptyObj(), nil
	}
	pattern := ""
	if len(args) == 4 {
		pattern = args[3].String()
	}
	keys := make([]string, 0, len(cells))
	for k := range cells {
		if pattern != "" && !globMatch(pattern, k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var items []*Obj
	for _, k := range keys {
		items = append(items, NewString(k), cells[k])
	}
	return NewList(items...), nil
}

func arraySet(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, 4, "array set arrayName list"); flow != nil {
		return nil, flow
	}
	pairs, err := AsList(args[3])
	if err != nil {
		return nil, err
	}
	if len(pairs)%2 != 0 {
		return nil, newError("list must have an even number of elements")
	}
	name := args[2].String()
	for n := 0; n+1 < len(pairs); n += 2 {
		if flow := i.setElem(name, pairs[n].String(), pairs[n+1]); flow != nil {
			return nil, flow
		}
	}
	return emptyObj(), nil
}

func arrayNames(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 4, "array names arrayName ?pattern?"); flow != nil {
		return nil, flow
	}
	cells, ok := i.arrayVar(args[2].String())
	if !ok {
		return emptyObj(), nil
	}
	pattern := ""
	if len(args) == 4 {
		pattern = args[3].String()
	}
	var names []string
	for k := range cells {
		if pattern != "" && !globMatch(pattern, k) {
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)
	items := make([]*Obj, len(names))
	for n, name := range names {
		items[n] = NewString(name)
	}
	return NewList(items...), nil
}

func arraySize(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 3, "array size arrayName"); flow != nil {
		return nil, flow
	}
	cells, ok := i.arrayVar(args[2].String())
	if !ok {
		return NewInt(0), nil
	}
	return NewInt(int64(len(cells))), nil
}

func arrayUnset(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 4, "array unset arrayName ?pattern?"); flow != nil {
		return nil, flow
	}
	cells, ok := i.arrayVar(args[2].String())
	if !ok {
		return emptyObj(), nil
	}
	if len(args) == 3 {
		if flow := i.unsetVar(args[2].String()); flow != nil {
			return nil, flow
		}
		return emptyObj(), nil
	}
	pattern := args[3].String()
	for k := range cells {
		if globMatch(pattern, k) {
			delete(cells, k)
		}
	}
	return emptyObj(), nil
}
