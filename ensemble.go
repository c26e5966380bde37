package quill

import (
	"sort"
	"strings"
)

// ensemble groups subcommands under a single command name, dispatching on
// the first argument. Handlers receive the full argument vector, so
// args[0] is the ensemble name and args[1] the subcommand.
type ensemble map[string]CommandFunc

// command returns the dispatching CommandFunc for the ensemble.
func (e ensemble) command(name string) CommandFunc {
	return func(i *Interp, args []*Obj) (*Obj, error) {
		if len(args) < 2 {
			return nil, errorf("wrong # args: should be \"%s subcommand ?arg ...?\"", name)
		}
		sub := args[1].String()
		fn, ok := e[sub]
		if !ok {
			return nil, errorf("unknown or ambiguous subcommand \"%s\": must be %s", sub, e.subcommandList())
		}
		return fn(i, args)
	}
}

// subcommandList renders the sorted subcommand names for error messages.
func (e ensemble) subcommandList() string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 1 {
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}
