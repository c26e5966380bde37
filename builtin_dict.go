package quill

// The dict ensemble. Dicts are insertion-ordered; commands never mutate an
// input dict in place, they build a duplicate, because the input may be
// shared.

func registerDictCommands(i *Interp) {
	e := ensemble{
		"create":  dictCreate,
		"get":     dictGet,
		"set":     dictSet,
		"unset":   dictUnset,
		"exists":  dictExists,
		"keys":    dictKeys,
		"values":  dictValues,
		"size":    dictSize,
		"merge":   dictMerge,
		"remove":  dictRemove,
		"replace": dictReplace,
		"append":  dictAppendCmd,
		"incr":    dictIncr,
		"lappend": dictLappend,
		"for":     dictFor,
	}
	i.RegisterCommand("dict", e.command("dict"))
}

func dictCreate(i *Interp, args []*Obj) (*Obj, error) {
	if len(args)%2 != 0 {
		return nil, errorf("wrong # args: should be \"dict create ?key value ...?\"")
	}
	return NewDict(args[2:]...), nil
}

func dictGet(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, -1, "dict get dictionary ?key ...?"); flow != nil {
		return nil, flow
	}
	current := args[2]
	if len(args) == 3 {
		// Canonicalize and return the whole dict.
		if _, err := AsDict(current); err != nil {
			return nil, err
		}
		return current, nil
	}
	for _, keyObj := range args[3:] {
		d, err := AsDict(current)
		if err != nil {
			return nil, err
		}
		v, ok := d.Get(keyObj.String())
		if !ok {
			return nil, errorf("key \"%s\" not known in dictionary", keyObj.String())
		}
		current = v
	}
	return current, nil
}

// dictModify reads a dict variable, applies fn to a duplicate, and writes
// the result back. A missing variable starts from an empty dict.
func dictModify(i *Interp, varName *Obj, fn func(*DictType) *Flow) (*Obj, error) {
	name := varName.String()
	d := &DictType{Items: map[string]*Obj{}}
	if i.varExists(name) {
		v, flow := i.getVar(name)
		if flow != nil {
			return nil, flow
		}
		existing, err := AsDict(v)
		if err != nil {
			return nil, err
		}
		d = existing.Dup().(*DictType)
	}

	if flow := fn(d); flow != nil {
		return nil, flow
	}

	result := &Obj{intrep: d}
	if flow := i.setVar(name, result); flow != nil {
		return nil, flow
	}
	return result, nil
}

func dictSet(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 5, -1, "dict set dictVarName key ?key ...? value"); flow != nil {
		return nil, flow
	}
	keys := args[3 : len(args)-1]
	value := args[len(args)-1]

	return dictModify(i, args[2], func(d *DictType) *Flow {
		return dictSetNested(d, keys, value)
	})
}

// dictSetNested sets a value through a path of keys, creating intermediate
// dicts as needed. Intermediate dicts are duplicated before modification.
func dictSetNested(d *DictType, keys []*Obj, value *Obj) *Flow {
	key := keys[0].String()
	if len(keys) == 1 {
		d.Put(key, value)
		return nil
	}
	var child *DictType
	if existing, ok := d.Get(key); ok {
		parsed, err := AsDict(existing)
		if err != nil {
			return asFlow(err)
		}
		child = parsed.Dup().(*DictType)
	} else {
		child = &DictType{Items: map[string]*Obj{}}
	}
	if flow := dictSetNested(child, keys[1:], value); flow != nil {
		return flow
	}
	d.Put(key, &Obj{intrep: child})
	return nil
}

func dictUnset(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, 4, "dict unset dictVarName key"); flow != nil {
		return nil, flow
	}
	return dictModify(i, args[2], func(d *DictType) *Flow {
		d.Remove(args[3].String())
		return nil
	})
}

func dictExists(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, -1, "dict exists dictionary key ?key ...?"); flow != nil {
		return nil, flow
	}
	current := args[2]
	for _, keyObj := range args[3:] {
		d, err := AsDict(current)
		if err != nil {
			return NewBool(false), nil
		}
		v, ok := d.Get(keyObj.String())
		if !ok {
			return NewBool(false), nil
		}
		current = v
	}
	return NewBool(true), nil
}

func dictKeys(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 4, "dict keys dictionary ?globPattern?"); flow != nil {
		return nil, flow
	}
	d, err := AsDict(args[2])
	if err != nil {
		return nil, err
	}
	var keys []*Obj
	for _, k := range d.Order {
		if len(args) == 4 && !globMatch(args[3].String(), k) {
			continue
		}
		keys = append(keys, NewString(k))
	}
	return NewList(keys...), nil
}

func dictValues(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 4, "dict values dictionary ?globPattern?"); flow != nil {
		return nil, flow
	}
	d, err := AsDict(args[2])
	if err != nil {
		return nil, err
	}
	var values []*Obj
	for _, k := range d.Order {
		v := d.Items[k]
		if len(args) == 4 && !globMatch(args[3].String(), v.String()) {
			continue
		}
		values = append(values, v)
	}
	return NewList(values...), nil
}

func dictSize(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, 3, "dict size dictionary"); flow != nil {
		return nil, flow
	}
	d, err := AsDict(args[2])
	if err != nil {
		return nil, err
	}
	return NewInt(int64(d.Len())), nil
}

func dictMerge(i *Interp, args []*Obj) (*Obj, error) {
	merged := &DictType{Items: map[string]*Obj{}}
	for _, arg := range args[2:] {
		d, err := AsDict(arg)
		if err != nil {
			return nil, err
		}
		for _, k := range d.Order {
			merged.Put(k, d.Items[k])
		}
	}
	return &Obj{intrep: merged}, nil
}

func dictRemove(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, -1, "dict remove dictionary ?key ...?"); flow != nil {
		return nil, flow
	}
	d, err := AsDict(args[2])
	if err != nil {
		return nil, err
	}
	result := d.Dup().(*DictType)
	for _, keyObj := range args[3:] {
		result.Remove(keyObj.String())
	}
	return &Obj{intrep: result}, nil
}

func dictReplace(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 3, -1, "dict replace dictionary ?key value ...?"); flow != nil {
		return nil, flow
	}
	if (len(args)-3)%2 != 0 {
		return nil, errorf("wrong # args: should be \"dict replace dictionary ?key value ...?\"")
	}
	d, err := AsDict(args[2])
	if err != nil {
		return nil, err
	}
	result := d.Dup().(*DictType)
	for n := 3; n+1 < len(args); n += 2 {
		result.Put(args[n].String(), args[n+1])
	}
	return &Obj{intrep: result}, nil
}

func dictAppendCmd(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, -1, "dict append dictVarName key ?string ...?"); flow != nil {
		return nil, flow
	}
	key := args[3].String()
	return dictModify(i, args[2], func(d *DictType) *Flow {
		s := ""
		if existing, ok := d.Get(key); ok {
			s = existing.String()
		}
		for _, arg := range args[4:] {
			s += arg.String()
		}
		d.Put(key, NewString(s))
		return nil
	})
}

func dictIncr(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, 5, "dict incr dictVarName key ?increment?"); flow != nil {
		return nil, flow
	}
	key := args[3].String()
	incr := int64(1)
	if len(args) == 5 {
		n, err := AsInt(args[4])
		if err != nil {
			return nil, err
		}
		incr = n
	}
	return dictModify(i, args[2], func(d *DictType) *Flow {
		var cur int64
		if existing, ok := d.Get(key); ok {
			n, err := AsInt(existing)
			if err != nil {
				return asFlow(err)
			}
			cur = n
		}
		d.Put(key, NewInt(cur+incr))
		return nil
	})
}

func dictLappend(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 4, -1, "dict lappend dictVarName key ?value ...?"); flow != nil {
		return nil, flow
	}
	key := args[3].String()
	return dictModify(i, args[2], func(d *DictType) *Flow {
		var items []*Obj
		if existing, ok := d.Get(key); ok {
			parsed, err := AsList(existing)
			if err != nil {
				return asFlow(err)
			}
			items = append(items, parsed...)
		}
		items = append(items, args[4:]...)
		d.Put(key, NewList(items...))
		return nil
	})
}

func dictFor(i *Interp, args []*Obj) (*Obj, error) {
	if flow := checkArgs(args, 5, 5, "dict for {keyVarName valueVarName} dictionary body"); flow != nil {
		return nil, flow
	}
	vars, err := AsList(args[2])
	if err != nil {
		return nil, err
	}
	if len(vars) != 2 {
		return nil, newError("must have exactly two variable names")
	}
	d, err := AsDict(args[3])
	if err != nil {
		return nil, err
	}

	for _, k := range append([]string(nil), d.Order...) {
		if flow := i.setVar(vars[0].String(), NewString(k)); flow != nil {
			return nil, flow
		}
		if flow := i.setVar(vars[1].String(), d.Items[k]); flow != nil {
			return nil, flow
		}
		action, flow := i.runLoopBody(args[4])
		if flow != nil {
			return nil, flow
		}
		if action == loopStop {
			break
		}
	}
	return emptyObj(), nil
}
