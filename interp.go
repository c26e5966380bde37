package quill

import (
	"math/rand"
	"sort"
	"strings"
	"sync/atomic"
)

// CommandFunc is the signature for command implementations, built-in and
// host-supplied alike. args[0] is the command name as invoked; the remaining
// elements are the fully substituted argument words.
//
// A command returns its result value, or an error. Returning a *Flow gives
// full control over the outcome (errors with codes, return/break/continue);
// any other error is wrapped into a script error.
type CommandFunc func(i *Interp, args []*Obj) (*Obj, error)

// MathFunc is the signature for expression functions (abs, sin, ...).
type MathFunc func(i *Interp, args []*Obj) (*Obj, error)

// command is an entry in the command table. Procs carry their definition so
// introspection can recover parameter lists and bodies.
type command struct {
	fn   CommandFunc
	proc *procedure // non-nil for script-defined procs
}

// procedure holds a proc definition.
type procedure struct {
	name   *Obj
	params *Obj
	body   *Obj
}

// Features selects which parts of the language surface an interpreter
// exposes. Every field strictly shrinks the surface when disabled; the
// zero value is the smallest interpreter. Most hosts want DefaultFeatures.
type Features struct {
	// Dict enables the dict value form and the dict command.
	Dict bool

	// Float enables floating-point values in expressions. When off, float
	// literals are a parse error.
	Float bool

	// Wide selects 64-bit integers. When off, integer results are range
	// checked to 32 bits.
	Wide bool

	// Expr enables the expression sub-language: the expr command and
	// expression parsing in conditional commands. When off, conditional
	// commands require a command word instead of an expression.
	Expr bool

	// StringCommand enables the string ensemble.
	StringCommand bool

	// ErrorStackTrace enables stack-trace accumulation on uncaught errors.
	ErrorStackTrace bool

	// UnicodeCase widens case mapping beyond ASCII.
	UnicodeCase bool

	// UnicodeWhitespace widens the whitespace class used by string trim
	// and string is space beyond ASCII.
	UnicodeWhitespace bool

	// UnicodeAlphanum widens the identifier class for variable and command
	// names to any Unicode letter or digit.
	UnicodeAlphanum bool
}

// DefaultFeatures returns the full language surface.
func DefaultFeatures() Features {
	return Features{
		Dict:              true,
		Float:             true,
		Wide:              true,
		Expr:              true,
		StringCommand:     true,
		ErrorStackTrace:   true,
		UnicodeCase:       true,
		UnicodeWhitespace: true,
		UnicodeAlphanum:   true,
	}
}

// Option configures an interpreter at construction time.
type Option func(*Interp)

// WithFeatures replaces the feature set.
func WithFeatures(f Features) Option {
	return func(i *Interp) { i.features = f }
}

// WithRecursionLimit sets the maximum evaluation depth.
func WithRecursionLimit(limit int) Option {
	return func(i *Interp) { i.SetRecursionLimit(limit) }
}

// WithMathFunc registers an expression function at construction time.
func WithMathFunc(name string, fn MathFunc) Option {
	return func(i *Interp) { i.mathFuncs[name] = fn }
}

// DefaultRecursionLimit is the default maximum evaluation depth.
const DefaultRecursionLimit = 1000

// Interp is an interpreter instance.
//
// Create a new interpreter with [New] and call [Interp.Close] when done.
// An interpreter is not safe for concurrent use from multiple goroutines;
// the only exception is [Interp.Cancel], which may be called from anywhere.
//
//	interp := quill.New()
//	defer interp.Close()
//	result, err := interp.Eval("expr {2 + 2}")
type Interp struct {
	commands  map[string]*command
	mathFuncs map[string]MathFunc
	frames    []*CallFrame
	active    int // index of the active frame (uplevel retargets this)

	features       Features
	recursionLimit int
	evalDepth      int
	loopDepth      int

	cancelled atomic.Bool
	lastError *Flow
	rng       *rand.Rand // expression rand()/srand() state, seeded lazily

	// unknownHandler, when set, receives commands whose names are not in
	// the table: args[0] is the unresolved name.
	unknownHandler CommandFunc
}

// New creates an interpreter with the full command set, honoring any
// options.
func New(opts ...Option) *Interp {
	i := &Interp{
		commands:       make(map[string]*command),
		mathFuncs:      make(map[string]MathFunc),
		features:       DefaultFeatures(),
		recursionLimit: DefaultRecursionLimit,
	}
	i.frames = []*CallFrame{newCallFrame(0)}

	for _, opt := range opts {
		opt(i)
	}

	registerCoreCommands(i)
	registerControlCommands(i)
	registerListCommands(i)
	registerInfoCommands(i)
	if i.features.StringCommand {
		registerStringCommands(i)
	}
	if i.features.Dict {
		registerDictCommands(i)
	}
	if i.features.Expr {
		registerMathFuncs(i)
	}

	return i
}

// Close releases the interpreter. The interpreter must not be used after
// Close; today this only drops references so the collector can reclaim
// shared values promptly, but hosts should not rely on that staying true.
func (i *Interp) Close() {
	i.commands = nil
	i.mathFuncs = nil
	i.frames = nil
	i.lastError = nil
}

// Features returns the interpreter's feature set.
func (i *Interp) Features() Features { return i.features }

// SetRecursionLimit sets the maximum evaluation depth. The limit covers
// proc recursion and command-substitution nesting alike. Non-positive
// limits select the default.
func (i *Interp) SetRecursionLimit(limit int) {
	if limit <= 0 {
		limit = DefaultRecursionLimit
	}
	i.recursionLimit = limit
}

// RecursionLimit returns the configured maximum evaluation depth.
func (i *Interp) RecursionLimit() int { return i.recursionLimit }

// Depth returns the current evaluation depth. Useful in host commands that
// want their own headroom checks.
func (i *Interp) Depth() int { return i.evalDepth }

// Cancel requests that the running script stop. The evaluator checks the
// flag between commands and aborts with an error; no partial results are
// guaranteed between checkpoints. Safe to call from another goroutine.
func (i *Interp) Cancel() {
	i.cancelled.Store(true)
}

// ResetCancel clears a previous Cancel so the interpreter can run again.
func (i *Interp) ResetCancel() {
	i.cancelled.Store(false)
}

// LastErrorInfo returns the stack trace of the most recent error, whether it
// reached the host or was caught by catch.
func (i *Interp) LastErrorInfo() string {
	if i.lastError == nil {
		return ""
	}
	return i.lastError.ErrorInfo().String()
}

// LastErrorCode returns the error code of the most recent error, whether it
// reached the host or was caught by catch.
func (i *Interp) LastErrorCode() string {
	if i.lastError == nil {
		return "NONE"
	}
	return i.lastError.ErrorCode().String()
}

// ----------------------------------------------------------------------------
// Command table

// RegisterCommand adds a command with the low-level handler signature.
// An existing command with the same name is replaced.
func (i *Interp) RegisterCommand(name string, fn CommandFunc) {
	i.commands[name] = &command{fn: fn}
}

// Unregister removes a command. Removing a missing command is a no-op.
func (i *Interp) Unregister(name string) {
	delete(i.commands, name)
}

// RenameCommand renames a command atomically; renaming to "" deletes it.
// This is the procedural-patching primitive: rename the original out of the
// way, then register a wrapper under the old name.
func (i *Interp) RenameCommand(oldName, newName string) error {
	cmd, ok := i.commands[oldName]
	if !ok {
		return errorf("can't rename \"%s\": command doesn't exist", oldName)
	}
	if newName == "" {
		delete(i.commands, oldName)
		return nil
	}
	if _, exists := i.commands[newName]; exists {
		return errorf("can't rename to \"%s\": command already exists", newName)
	}
	delete(i.commands, oldName)
	i.commands[newName] = cmd
	return nil
}

// CommandExists reports whether a command is registered.
func (i *Interp) CommandExists(name string) bool {
	_, ok := i.commands[name]
	return ok
}

// CommandNames returns the sorted names of all registered commands,
// optionally filtered by a glob pattern.
func (i *Interp) CommandNames(pattern string) []string {
	names := make([]string, 0, len(i.commands))
	for name := range i.commands {
		if pattern == "" || globMatch(pattern, name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// SetUnknownHandler installs a handler invoked when a command name is not
// found. The handler receives the unresolved name as args[0]. Set nil to
// restore the default behavior (an invalid-command error).
func (i *Interp) SetUnknownHandler(fn CommandFunc) {
	i.unknownHandler = fn
}

// RegisterMathFunc adds a function to the expression sub-language.
func (i *Interp) RegisterMathFunc(name string, fn MathFunc) {
	i.mathFuncs[name] = fn
}

// ----------------------------------------------------------------------------
// Value constructors (interpreter-scoped conveniences)

// String creates a string value.
func (i *Interp) String(s string) *Obj { return NewString(s) }

// Int creates an integer value.
func (i *Interp) Int(n int64) *Obj { return NewInt(n) }

// Double creates a floating-point value.
func (i *Interp) Double(f float64) *Obj { return NewDouble(f) }

// Bool creates a boolean value ("1" or "0").
func (i *Interp) Bool(b bool) *Obj { return NewBool(b) }

// List creates a list value from the given elements.
func (i *Interp) List(items ...*Obj) *Obj { return NewList(items...) }

// ListFrom creates a list value from a Go slice, converting each element.
func (i *Interp) ListFrom(items any) *Obj {
	return toObj(items)
}

// Dict creates a dict value from alternating key/value pairs.
func (i *Interp) Dict(pairs ...*Obj) *Obj { return NewDict(pairs...) }

// ----------------------------------------------------------------------------
// Variables

// Var reads a variable in the active frame. Returns an empty value if the
// variable doesn't exist; use VarObj when the distinction matters.
func (i *Interp) Var(name string) Value {
	v, err := i.VarObj(name)
	if err != nil {
		return emptyObj()
	}
	return v
}

// VarObj reads a variable in the active frame.
func (i *Interp) VarObj(name string) (*Obj, error) {
	v, flow := i.getVar(name)
	if flow != nil {
		return nil, flow
	}
	return v, nil
}

// SetVar writes a string variable in the active frame.
func (i *Interp) SetVar(name, value string) error {
	return i.SetVarObj(name, NewString(value))
}

// SetVarObj writes a variable in the active frame.
func (i *Interp) SetVarObj(name string, value *Obj) error {
	if flow := i.setVar(name, value); flow != nil {
		return flow
	}
	return nil
}

// UnsetVar removes a variable from the active frame.
func (i *Interp) UnsetVar(name string) error {
	if flow := i.unsetVar(name); flow != nil {
		return flow
	}
	return nil
}

// VarExists reports whether a variable is readable in the active frame.
func (i *Interp) VarExists(name string) bool {
	return i.varExists(name)
}

// ----------------------------------------------------------------------------
// Evaluation entry points

// Eval evaluates a script in the active frame and returns its result.
// A return at the top level yields the returned value; break and continue
// outside a loop are errors. Script errors are returned as *Flow.
func (i *Interp) Eval(script string) (Value, error) {
	v, flow := i.evalObj(NewString(script))
	return i.finish(v, flow)
}

// EvalObj is Eval for an already constructed value, preserving its cached
// parse between calls.
func (i *Interp) EvalObj(script *Obj) (Value, error) {
	v, flow := i.evalObj(script)
	return i.finish(v, flow)
}

// Call invokes a single command with pre-split arguments, bypassing the
// parser entirely.
func (i *Interp) Call(name string, args ...*Obj) (Value, error) {
	words := make([]*Obj, 0, len(args)+1)
	words = append(words, NewString(name))
	words = append(words, args...)
	v, flow := i.invoke(words)
	return i.finish(v, flow)
}

// Subst applies variable, command, and backslash substitution to text
// without executing it as a command.
func (i *Interp) Subst(text string) (Value, error) {
	v, flow := i.substText(text, substAll)
	return i.finish(v, flow)
}

// Complete reports whether a script is syntactically complete: no unclosed
// braces, quotes, or brackets. REPLs use it to decide whether to prompt for
// a continuation line.
func (i *Interp) Complete(script string) bool {
	_, flow := parseScriptText(script, i.features.UnicodeAlphanum)
	if flow == nil {
		return true
	}
	msg := flow.Value().String()
	return !strings.Contains(msg, "missing close-brace") &&
		!strings.Contains(msg, "missing close-bracket") &&
		!strings.Contains(msg, `missing "`)
}

// finish converts an internal outcome into the public (Value, error) form,
// applying the top-level control-flow policy.
func (i *Interp) finish(v *Obj, flow *Flow) (Value, error) {
	if flow == nil {
		if v == nil {
			return emptyObj(), nil
		}
		return v, nil
	}

	switch flow.Code() {
	case ResultReturn:
		// A top-level return yields its value, unless -code redirects.
		flow.decrementLevel()
		if flow.Code() == ResultReturn || flow.Code() == ResultOK {
			return flow.Value(), nil
		}
		return i.finish(nil, flow)
	case ResultOK:
		return flow.Value(), nil
	case ResultError:
		i.lastError = flow
		return nil, flow
	default:
		// Break or continue that escaped every loop.
		err := newError(flow.Error())
		i.lastError = err
		return nil, err
	}
}
