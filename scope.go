package quill

// Variable scopes. Each proc invocation pushes a CallFrame owning its
// variables; frame 0 is the global frame. Scoping is not lexical: a name
// resolves in the active frame only, unless an upvar link redirects it.
//
// Links hold a frame index and a name, never a variable pointer, so
// resolution always runs top-down and cyclic values are impossible.

// varLink represents a link to a variable in another frame (for upvar and
// global).
type varLink struct {
	targetLevel int    // frame level where the target variable lives
	targetName  string // name of the variable in the target frame
}

// variable is a single named variable: a scalar cell, an array of cells, or
// a link to a variable in another frame. Scalars and arrays share the
// namespace; a name is one or the other.
type variable struct {
	value *Obj            // scalar cell (nil when unset or array/link)
	array map[string]*Obj // array cells (nil unless array)
	link  *varLink        // non-nil for upvar links
}

func (v *variable) isArray() bool { return v.array != nil }

// CallFrame represents an execution frame on the call stack.
// Each frame has its own variable environment.
type CallFrame struct {
	vars  map[string]*variable
	level int    // frame index on the call stack
	proc  string // proc name for stack traces ("" for eval frames)
}

func newCallFrame(level int) *CallFrame {
	return &CallFrame{vars: make(map[string]*variable), level: level}
}

// maxLinkDepth bounds link-chain resolution. Links are created acyclic, but
// rename tricks through upvar could still produce a loop; the depth limit
// turns that into an error instead of a hang.
const maxLinkDepth = 100

// pushFrame enters a new call frame and makes it active.
func (i *Interp) pushFrame(procName string) *CallFrame {
	frame := newCallFrame(len(i.frames))
	frame.proc = procName
	i.frames = append(i.frames, frame)
	i.active = frame.level
	return frame
}

// popFrame leaves the active frame, discarding its variables and links.
func (i *Interp) popFrame() {
	if len(i.frames) <= 1 {
		return
	}
	i.frames = i.frames[:len(i.frames)-1]
	if i.active >= len(i.frames) {
		i.active = len(i.frames) - 1
	}
}

// frame returns the active frame.
func (i *Interp) frame() *CallFrame {
	return i.frames[i.active]
}

// globalFrame returns frame 0.
func (i *Interp) globalFrame() *CallFrame {
	return i.frames[0]
}

// frameAt resolves an uplevel-style level spec relative to the active
// frame: N means N frames up; #N is the absolute frame number.
func (i *Interp) frameAt(spec string) (*CallFrame, *Flow) {
	level := 1
	if spec != "" {
		if spec[0] == '#' {
			n, err := parseInt(spec[1:])
			if err != nil || n < 0 || int(n) > i.active {
				return nil, errorf("bad level \"%s\"", spec)
			}
			return i.frames[n], nil
		}
		n, err := parseInt(spec)
		if err != nil || n < 0 {
			return nil, errorf("bad level \"%s\"", spec)
		}
		level = int(n)
	}
	target := i.active - level
	if target < 0 {
		return nil, errorf("bad level \"%s\"", spec)
	}
	return i.frames[target], nil
}

// resolveVar follows link variables from the given frame down to the frame
// and name that actually own storage. Missing variables resolve to the
// frame where they would be created.
func (i *Interp) resolveVar(frame *CallFrame, name string) (*CallFrame, string, *Flow) {
	for depth := 0; depth < maxLinkDepth; depth++ {
		v, ok := frame.vars[name]
		if !ok || v.link == nil {
			return frame, name, nil
		}
		if v.link.targetLevel >= len(i.frames) {
			return nil, "", errorf("upvar target frame for \"%s\" no longer exists", name)
		}
		frame = i.frames[v.link.targetLevel]
		name = v.link.targetName
	}
	return nil, "", errorf("too many nested upvar links for \"%s\"", name)
}

// getVar reads a variable in the active frame. The name may use the
// name(index) array element form.
func (i *Interp) getVar(name string) (*Obj, *Flow) {
	vn := parseVarNameLiteral(name)
	if vn.isArr {
		return i.getElem(vn.name, vn.index)
	}
	frame, resolved, flow := i.resolveVar(i.frame(), name)
	if flow != nil {
		return nil, flow
	}
	v, ok := frame.vars[resolved]
	if !ok || (v.value == nil && !v.isArray()) {
		return nil, errorf("can't read \"%s\": no such variable", name)
	}
	if v.isArray() {
		return nil, errorf("can't read \"%s\": variable is array", name)
	}
	return v.value, nil
}

// getElem reads one array element in the active frame.
func (i *Interp) getElem(name, index string) (*Obj, *Flow) {
	frame, resolved, flow := i.resolveVar(i.frame(), name)
	if flow != nil {
		return nil, flow
	}
	v, ok := frame.vars[resolved]
	if !ok {
		return nil, errorf("can't read \"%s(%s)\": no such variable", name, index)
	}
	if !v.isArray() {
		if v.value == nil {
			return nil, errorf("can't read \"%s(%s)\": no such variable", name, index)
		}
		return nil, errorf("can't read \"%s(%s)\": variable isn't array", name, index)
	}
	elem, ok := v.array[index]
	if !ok {
		return nil, errorf("can't read \"%s(%s)\": no such element in array", name, index)
	}
	return elem, nil
}

// setVar writes a variable in the active frame, creating it if needed. The
// name may use the name(index) array element form.
func (i *Interp) setVar(name string, value *Obj) *Flow {
	vn := parseVarNameLiteral(name)
	if vn.isArr {
		return i.setElem(vn.name, vn.index, value)
	}
	frame, resolved, flow := i.resolveVar(i.frame(), name)
	if flow != nil {
		return flow
	}
	v, ok := frame.vars[resolved]
	if !ok {
		frame.vars[resolved] = &variable{value: value}
		return nil
	}
	if v.isArray() {
		return errorf("can't set \"%s\": variable is array", name)
	}
	v.value = value
	return nil
}

// setElem writes one array element in the active frame, creating the array
// if needed.
func (i *Interp) setElem(name, index string, value *Obj) *Flow {
	frame, resolved, flow := i.resolveVar(i.frame(), name)
	if flow != nil {
		return flow
	}
	v, ok := frame.vars[resolved]
	if !ok {
		frame.vars[resolved] = &variable{array: map[string]*Obj{index: value}}
		return nil
	}
	if v.value != nil {
		return errorf("can't set \"%s(%s)\": variable isn't array", name, index)
	}
	if v.array == nil {
		v.array = make(map[string]*Obj)
	}
	v.array[index] = value
	return nil
}

// unsetVar removes a variable or array element from the active frame.
// Unsetting through a link removes the link's target; the link itself stays.
func (i *Interp) unsetVar(name string) *Flow {
	vn := parseVarNameLiteral(name)
	frame, resolved, flow := i.resolveVar(i.frame(), vn.name)
	if flow != nil {
		return flow
	}
	v, ok := frame.vars[resolved]
	if !ok {
		return errorf("can't unset \"%s\": no such variable", name)
	}
	if vn.isArr {
		if !v.isArray() {
			return errorf("can't unset \"%s\": variable isn't array", name)
		}
		if _, ok := v.array[vn.index]; !ok {
			return errorf("can't unset \"%s\": no such element in array", name)
		}
		delete(v.array, vn.index)
		return nil
	}
	// The target goes away; a link pointing at it stays, so writing
	// through the link later recreates the target.
	delete(frame.vars, resolved)
	return nil
}

// varExists reports whether a variable (or array element) is readable in
// the active frame.
func (i *Interp) varExists(name string) bool {
	vn := parseVarNameLiteral(name)
	frame, resolved, flow := i.resolveVar(i.frame(), vn.name)
	if flow != nil {
		return false
	}
	v, ok := frame.vars[resolved]
	if !ok {
		return false
	}
	if vn.isArr {
		if !v.isArray() {
			return false
		}
		_, ok := v.array[vn.index]
		return ok
	}
	return v.value != nil || v.isArray()
}

// linkVar installs a link named local in the active frame, aliasing the
// variable named other in the target frame. Linking a name to itself in the
// same frame is rejected; longer cycles hit the resolution depth limit.
func (i *Interp) linkVar(target *CallFrame, other, local string) *Flow {
	if target.level == i.active && other == local {
		return errorf("can't upvar from variable to itself")
	}
	cur := i.frame()
	if v, ok := cur.vars[local]; ok && v.link == nil {
		return errorf("variable \"%s\" already exists", local)
	}
	cur.vars[local] = &variable{link: &varLink{targetLevel: target.level, targetName: other}}
	return nil
}

// arrayVar returns the array cells for name, if name is an array.
func (i *Interp) arrayVar(name string) (map[string]*Obj, bool) {
	frame, resolved, flow := i.resolveVar(i.frame(), name)
	if flow != nil {
		return nil, false
	}
	v, ok := frame.vars[resolved]
	if !ok || !v.isArray() {
		return nil, false
	}
	return v.array, true
}

// visibleVars lists the variable names visible in the active frame.
func (i *Interp) visibleVars() []string {
	frame := i.frame()
	names := make([]string, 0, len(frame.vars))
	for name := range frame.vars {
		names = append(names, name)
	}
	return names
}
