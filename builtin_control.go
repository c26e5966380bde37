package quill

// Control structure commands. Loop bodies are evaluated in the caller's
// frame; break and continue flows are absorbed here, everything else
// propagates.

func registerControlCommands(i *Interp) {
	i.RegisterCommand("if", cmdIf)
	i.RegisterCommand("while", cmdWhile)
	i.RegisterCommand("for", cmdFor)
	i.RegisterCommand("foreach", cmdForeach)
	i.RegisterCommand("lmap", cmdLmap)
	i.RegisterCommand("switch", cmdSwitch)
}

func cmdIf(i *Interp, args []*Obj) (*Obj, error) {
	usage := "if expr1 ?then? body1 elseif expr2 ?then? body2 elseif ... ?else? ?bodyN?"
	if flow := checkArgs(args, 3, -1, usage); flow != nil {
		return nil, flow
	}

	n := 1
	for {
		cond := args[n]
		n++
		if n < len(args) && args[n].String() == "then" {
			n++
		}
		if n >= len(args) {
			return nil, errorf("wrong # args: no script following \"%s\" argument", cond.String())
		}

		b, flow := i.condBool(cond)
		if flow != nil {
			return nil, flow
		}
		if b {
			v, flow := i.evalObj(args[n])
			if flow != nil {
				return nil, flow
			}
			return v, nil
		}
		n++

		if n >= len(args) {
			return emptyObj(), nil
		}
		switch args[n].String() {
		case "elseif":
			n++
			if n >= len(args) {
				return nil, errorf("wrong # args: no expression after \"elseif\" argument")
			}
			continue
		case "else":
			n++
		}
		if n >= len(args) {
			return nil, errorf("wrong # args: no script following \"else\" argument")
		}
		v, flow := i.evalObj(args[n])
		if flow != nil {
			return nil, flow
		}
		return v, nil
	}
}

// runLoopBody evaluates a loop body once, mapping break/continue flows to
// loop actions.
type loopAction int

const (
	loopNext loopAction = iota
	loopStop
)

func (i *Interp) runLoopBody(body *Obj) (loopAction, *Flow) {
	_, flow := i.evalObj(body)
	if flow == nil {
		return loopNext, nil
	}
	switch flow.Code() {
	case ResultBreak:
		return loopStop, nil
	case ResultContinue:
		return loopNext, nil
	}
	return loopStop, flow
}

func cmdWhile(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 3, "while test command"); flow != nil {
		return nil, flow
	}
	for {
		b, flow := i.condBool(args[1])
		if flow != nil {
			return nil, flow
		}
		if !b {
			return emptyObj(), nil
		}
		action, flow := i.runLoopBody(args[2])
		if flow != nil {
			return nil, flow
		}
		if action == loopStop {
			return emptyObj(), nil
		}
	}
}

func cmdFor(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 5, 5, "for start test next command"); flow != nil {
		return nil, flow
	}
	if _, flow := i.evalObj(args[1]); flow != nil {
		return nil, flow
	}
	for {
		b, flow := i.condBool(args[2])
		if flow != nil {
			return nil, flow
		}
		if !b {
			return emptyObj(), nil
		}
		action, flow := i.runLoopBody(args[4])
		if flow != nil {
			return nil, flow
		}
		if action == loopStop {
			return emptyObj(), nil
		}
		if _, flow := i.evalObj(args[3]); flow != nil {
			// A break in the next script stops the loop too.
			if flow.Code() == ResultBreak {
				return emptyObj(), nil
			}
			return nil, flow
		}
	}
}

// foreachState drives one or more variable/list groups in lockstep.
type foreachState struct {
	varNames [][]*Obj
	lists    [][]*Obj
	index    []int
}

func newForeachState(i *Interp, pairs []*Obj) (*foreachState, *Flow) {
	st := &foreachState{}
	for n := 0; n+1 < len(pairs); n += 2 {
		names, err := AsList(pairs[n])
		if err != nil {
			return nil, asFlow(err)
		}
		if len(names) == 0 {
			return nil, newError("foreach varlist is empty")
		}
		items, err := AsList(pairs[n+1])
		if err != nil {
			return nil, asFlow(err)
		}
		st.varNames = append(st.varNames, names)
		st.lists = append(st.lists, items)
		st.index = append(st.index, 0)
	}
	return st, nil
}

// step assigns the next batch of loop variables. Returns false when every
// list is exhausted. Missing elements become the empty value.
func (st *foreachState) step(i *Interp) (bool, *Flow) {
	anyLeft := false
	for g := range st.lists {
		if st.index[g] < len(st.lists[g]) {
			anyLeft = true
			break
		}
	}
	if !anyLeft {
		return false, nil
	}
	for g := range st.lists {
		for _, nameObj := range st.varNames[g] {
			var v *Obj
			if st.index[g] < len(st.lists[g]) {
				v = st.lists[g][st.index[g]]
			} else {
				v = emptyObj()
			}
			st.index[g]++
			if flow := i.setVar(nameObj.String(), v); flow != nil {
				return false, flow
			}
		}
	}
	return true, nil
}

func cmdForeach(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, -1, "foreach varList list ?varList list ...? command"); flow != nil {
		return nil, flow
	}
	if len(args)%2 != 0 {
		return nil, errorf("wrong # args: should be \"foreach varList list ?varList list ...? command\"")
	}

	st, flow := newForeachState(i, args[1:len(args)-1])
	if flow != nil {
		return nil, flow
	}
	body := args[len(args)-1]

	for {
		more, flow := st.step(i)
		if flow != nil {
			return nil, flow
		}
		if !more {
			return emptyObj(), nil
		}
		action, flow := i.runLoopBody(body)
		if flow != nil {
			return nil, flow
		}
		if action == loopStop {
			return emptyObj(), nil
		}
	}
}

func cmdLmap(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, -1, "lmap varList list ?varList list ...? command"); flow != nil {
		return nil, flow
	}
	if len(args)%2 != 0 {
		return nil, errorf("wrong # args: should be \"lmap varList list ?varList list ...? command\"")
	}

	st, flow := newForeachState(i, args[1:len(args)-1])
	if flow != nil {
		return nil, flow
	}
	body := args[len(args)-1]

	var results []*Obj
	for {
		more, flow := st.step(i)
		if flow != nil {
			return nil, flow
		}
		if !more {
			return NewList(results...), nil
		}
		v, bodyFlow := i.evalObj(body)
		if bodyFlow != nil {
			switch bodyFlow.Code() {
			case ResultBreak:
				return NewList(results...), nil
			case ResultContinue:
				continue
			}
			return nil, bodyFlow
		}
		results = append(results, v)
	}
}

func cmdSwitch(i *Interp, args []*Obj) (*Obj, error) {
	usage := "switch ?-exact|-glob? ?--? string pattern body ?pattern body ...?"
	if flow := checkArgs(args, 3, -1, usage); flow != nil {
		return nil, flow
	}

	useGlob := false
	rest := args[1:]
	for len(rest) > 0 {
		switch rest[0].String() {
		case "-exact":
			useGlob = false
			rest = rest[1:]
			continue
		case "-glob":
			useGlob = true
			rest = rest[1:]
			continue
		case "--":
			rest = rest[1:]
		}
		break
	}
	if len(rest) == 0 {
		return nil, errorf("wrong # args: should be \"%s\"", usage)
	}

	subject := rest[0].String()
	rest = rest[1:]

	// Patterns may be supplied as one brace-wrapped list.
	if len(rest) == 1 {
		items, err := AsList(rest[0])
		if err != nil {
			return nil, err
		}
		rest = items
	}
	if len(rest) == 0 || len(rest)%2 != 0 {
		return nil, newError("extra switch pattern with no body")
	}

	for n := 0; n < len(rest); n += 2 {
		pat := rest[n].String()
		matched := pat == "default" && n == len(rest)-2
		if !matched {
			if useGlob {
				matched = globMatch(pat, subject)
			} else {
				matched = pat == subject
			}
		}
		if !matched {
			continue
		}
		// Fall through "-" bodies to the next pattern's body.
		for n < len(rest) && rest[n+1].String() == "-" {
			n += 2
		}
		if n >= len(rest) {
			return nil, errorf("no body specified for pattern \"%s\"", pat)
		}
		v, flow := i.evalObj(rest[n+1])
		if flow != nil {
			return nil, flow
		}
		return v, nil
	}
	return emptyObj(), nil
}
