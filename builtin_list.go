package quill

import (
	"sort"
	"strings"
)

// List commands. Lists are immutable once visible to scripts: every
// "mutating" command builds a new list value, because the input may be
// shared.

func registerListCommands(i *Interp) {
	i.RegisterCommand("list", cmdList)
	i.RegisterCommand("llength", cmdLlength)
	i.RegisterCommand("lindex", cmdLindex)
	i.RegisterCommand("lrange", cmdLrange)
	i.RegisterCommand("lappend", cmdLappend)
	i.RegisterCommand("linsert", cmdLinsert)
	i.RegisterCommand("lreplace", cmdLreplace)
	i.RegisterCommand("lset", cmdLset)
	i.RegisterCommand("lsearch", cmdLsearch)
	i.RegisterCommand("lsort", cmdLsort)
	i.RegisterCommand("lreverse", cmdLreverse)
	i.RegisterCommand("join", cmdJoin)
	i.RegisterCommand("split", cmdSplit)
	i.RegisterCommand("concat", cmdConcat)
}

// parseIndex parses a list or string index: an integer, end, end-N, or
// end+N. The result may lie outside [0, length); callers clamp or reject
// as their command requires.
func parseIndex(o *Obj, length int) (int, *Flow) {
	s := o.String()
	if strings.HasPrefix(s, "end") {
		rest := s[3:]
		if rest == "" {
			return length - 1, nil
		}
		if rest[0] == '-' || rest[0] == '+' {
			n, err := parseInt(rest)
			if err == nil {
				return length - 1 + int(n), nil
			}
		}
		return 0, errorf("bad index \"%s\": must be integer or end?-integer?", s)
	}
	n, err := parseInt(s)
	if err != nil {
		return 0, errorf("bad index \"%s\": must be integer or end?-integer?", s)
	}
	return int(n), nil
}

func cmdList(i *Interp, args []*Obj) (*Obj, error) {
	return NewList(args[1:]...), nil
}

func cmdLlength(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, 2, "llength list"); flow != nil {
		return nil, flow
	}
	items, err := AsList(args[1])
	if err != nil {
		return nil, err
	}
	return NewInt(int64(len(items))), nil
}

func cmdLindex(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, -1, "lindex list ?index ...?"); flow != nil {
		return nil, flow
	}
	current := args[1]
	for _, idxObj := range args[2:] {
		items, err := AsList(current)
		if err != nil {
			return nil, err
		}
		idx, flow := parseIndex(idxObj, len(items))
		if flow != nil {
			return nil, flow
		}
		if idx < 0 || idx >= len(items) {
			return emptyObj(), nil
		}
		current = items[idx]
	}
	return current, nil
}

func cmdLrange(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, 4, "lrange list first last"); flow != nil {
		return nil, flow
	}
	items, err := AsList(args[1])
	if err != nil {
		return nil, err
	}
	first, flow := parseIndex(args[2], len(items))
	if flow != nil {
		return nil, flow
	}
	last, flow := parseIndex(args[3], len(items))
	if flow != nil {
		return nil, flow
	}
	if first < 0 {
		first = 0
	}
	if last >= len(items) {
		last = len(items) - 1
	}
	if first > last {
		return emptyObj(), nil
	}
	return NewList(items[first : last+1]...), nil
}

func cmdLappend(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, -1, "lappend varName ?value ...?"); flow != nil {
		return nil, flow
	}
	name := args[1].String()

	var items []*Obj
	if i.varExists(name) {
		v, flow := i.getVar(name)
		if flow != nil {
			return nil, flow
		}
		existing, err := AsList(v)
		if err != nil {
			return nil, err
		}
		// Copy: the existing list value may be shared.
		items = append(items, existing...)
	}
	items = append(items, args[2:]...)

	result := NewList(items...)
	if flow := i.setVar(name, result); flow != nil {
		return nil, flow
	}
	return result, nil
}

func cmdLinsert(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, -1, "linsert list index ?element ...?"); flow != nil {
		return nil, flow
	}
	items, err := AsList(args[1])
	if err != nil {
		return nil, err
	}
	idx, flow := parseIndex(args[2], len(items))
	if flow != nil {
		return nil, flow
	}
	// A bare "end" appends after the last element.
	if args[2].String() == "end" {
		idx = len(items)
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(items) {
		idx = len(items)
	}

	result := make([]*Obj, 0, len(items)+len(args)-3)
	result = append(result, items[:idx]...)
	result = append(result, args[3:]...)
	result = append(result, items[idx:]...)
	return NewList(result...), nil
}

func cmdLreplace(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, -1, "lreplace list first last ?element ...?"); flow != nil {
		return nil, flow
	}
	items, err := AsList(args[1])
	if err != nil {
		return nil, err
	}
	first, flow := parseIndex(args[2], len(items))
	if flow != nil {
		return nil, flow
	}
	last, flow := parseIndex(args[3], len(items))
	if flow != nil {
		return nil, flow
	}
	if first < 0 {
		first = 0
	}
	if first > len(items) {
		first = len(items)
	}
	if last >= len(items) {
		last = len(items) - 1
	}
	// With last < first nothing is removed; the new elements are inserted
	// before first.
	tail := last + 1
	if tail < first {
		tail = first
	}

	result := make([]*Obj, 0, len(items))
	result = append(result, items[:first]...)
	result = append(result, args[4:]...)
	result = append(result, items[tail:]...)
	return NewList(result...), nil
}

func cmdLset(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, 4, "lset varName index value"); flow != nil {
		return nil, flow
	}
	name := args[1].String()
	v, flow := i.getVar(name)
	if flow != nil {
		return nil, flow
	}
	items, err := AsList(v)
	if err != nil {
		return nil, err
	}
	idx, flow := parseIndex(args[2], len(items))
	if flow != nil {
		return nil, flow
	}
	if idx < 0 || idx >= len(items) {
		return nil, errorf("list index out of range")
	}

	updated := make([]*Obj, len(items))
	copy(updated, items)
	updated[idx] = args[3]

	result := NewList(updated...)
	if flow := i.setVar(name, result); flow != nil {
		return nil, flow
	}
	return result, nil
}

func cmdLsearch(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 4, "lsearch ?-exact|-glob? list pattern"); flow != nil {
		return nil, flow
	}
	useGlob := true
	rest := args[1:]
	switch rest[0].String() {
	case "-exact":
		useGlob = false
		rest = rest[1:]
	case "-glob":
		rest = rest[1:]
	}
	if len(rest) != 2 {
		return nil, errorf("wrong # args: should be \"lsearch ?-exact|-glob? list pattern\"")
	}

	items, err := AsList(rest[0])
	if err != nil {
		return nil, err
	}
	pattern := rest[1].String()
	for n, item := range items {
		var matched bool
		if useGlob {
			matched = globMatch(pattern, item.String())
		} else {
			matched = item.String() == pattern
		}
		if matched {
			return NewInt(int64(n)), nil
		}
	}
	return NewInt(-1), nil
}

func cmdLsort(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, -1, "lsort ?-increasing|-decreasing? ?-ascii|-integer? list"); flow != nil {
		return nil, flow
	}
	decreasing := false
	integer := false
	for _, arg := range args[1 : len(args)-1] {
		switch arg.String() {
		case "-increasing":
			decreasing = false
		case "-decreasing":
			decreasing = true
		case "-ascii":
			integer = false
		case "-integer":
			integer = true
		default:
			return nil, errorf("bad option \"%s\": must be -ascii, -decreasing, -increasing, or -integer", arg.String())
		}
	}

	items, err := AsList(args[len(args)-1])
	if err != nil {
		return nil, err
	}
	sorted := make([]*Obj, len(items))
	copy(sorted, items)

	var sortErr error
	sort.SliceStable(sorted, func(a, b int) bool {
		cmp := 0
		if integer {
			av, errA := AsInt(sorted[a])
			bv, errB := AsInt(sorted[b])
			if errA != nil && sortErr == nil {
				sortErr = errA
			}
			if errB != nil && sortErr == nil {
				sortErr = errB
			}
			switch {
			case av < bv:
				cmp = -1
			case av > bv:
				cmp = 1
			}
		} else {
			cmp = strings.Compare(sorted[a].String(), sorted[b].String())
		}
		if decreasing {
			return cmp > 0
		}
		return cmp < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return NewList(sorted...), nil
}

func cmdLreverse(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, 2, "lreverse list"); flow != nil {
		return nil, flow
	}
	items, err := AsList(args[1])
	if err != nil {
		return nil, err
	}
	reversed := make([]*Obj, len(items))
	for n, item := range items {
		reversed[len(items)-1-n] = item
	}
	return NewList(reversed...), nil
}

func cmdJoin(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, 3, "join list ?joinString?"); flow != nil {
		return nil, flow
	}
	items, err := AsList(args[1])
	if err != nil {
		return nil, err
	}
	sep := " "
	if len(args) == 3 {
		sep = args[2].String()
	}
	parts := make([]string, len(items))
	for n, item := range items {
		parts[n] = item.String()
	}
	return NewString(strings.Join(parts, sep)), nil
}

func cmdSplit(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 2, 3, "split string ?splitChars?"); flow != nil {
		return nil, flow
	}
	s := args[1].String()
	splitChars := " \t\n\r"
	if len(args) == 3 {
		splitChars = args[2].String()
	}

	if splitChars == "" {
		var items []*Obj
		for _, r := range s {
			items = append(items, NewString(string(r)))
		}
		return NewList(items...), nil
	}

	var items []*Obj
	start := 0
	for pos, r := range s {
		if strings.ContainsRune(splitChars, r) {
			items = append(items, NewString(s[start:pos]))
			start = pos + len(string(r))
		}
	}
	items = append(items, NewString(s[start:]))
	return NewList(items...), nil
}

func cmdConcat(i *Interp, args []*Obj) (*Obj, error) {
	var parts []string
	for _, arg := range args[1:] {
		s := strings.TrimSpace(arg.String())
		if s != "" {
			parts = append(parts, s)
		}
	}
	return NewString(strings.Join(parts, " ")), nil
}
