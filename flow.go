package quill

import (
	"errors"
	"fmt"
	"strings"
)

// Result is the outcome code of evaluating a script, a command, or a word.
// A normal result is paired with a value; every other code travels as a
// *Flow through Go error returns.
type Result int

// Result codes, in the order scripts observe them from catch.
const (
	ResultOK       Result = 0
	ResultError    Result = 1
	ResultReturn   Result = 2
	ResultBreak    Result = 3
	ResultContinue Result = 4
)

// String formats a result code the way the return command's -code option
// spells it.
func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultError:
		return "error"
	case ResultReturn:
		return "return"
	case ResultBreak:
		return "break"
	case ResultContinue:
		return "continue"
	}
	return fmt.Sprintf("%d", int(r))
}

// resultFromObj converts a symbolic or numeric code value into a Result.
func resultFromObj(o *Obj) (Result, error) {
	switch o.String() {
	case "ok":
		return ResultOK, nil
	case "error":
		return ResultError, nil
	case "return":
		return ResultReturn, nil
	case "break":
		return ResultBreak, nil
	case "continue":
		return ResultContinue, nil
	}
	n, err := AsInt(o)
	if err != nil {
		return 0, fmt.Errorf("bad completion code \"%s\": must be ok, error, return, break, continue, or an integer", o.String())
	}
	return Result(n), nil
}

// Flow represents an exceptional outcome of evaluation: a script error, an
// explicit return, or a loop break/continue. Flow implements error so that
// outcomes propagate through ordinary Go returns; language-level panics are
// never used, because they confuse catch semantics and stack-trace control.
type Flow struct {
	code  Result
	value *Obj

	// The return -level value. Non-zero only for ResultReturn.
	level int

	// The return -code value. Equal to code except when code is Return.
	nextCode Result

	// Error data, present only for ResultError.
	errorCode *Obj     // machine-readable code list; defaults to NONE
	trace     []string // human-readable stack trace lines
	rethrown  bool     // true when the trace was seeded by return -errorinfo
}

// Error implements the error interface. For error flows this is the error
// message; for other codes it describes the stray control flow.
func (f *Flow) Error() string {
	switch f.code {
	case ResultError:
		return f.value.String()
	case ResultReturn:
		return "command returned: " + f.value.String()
	case ResultBreak:
		return `invoked "break" outside of a loop`
	case ResultContinue:
		return `invoked "continue" outside of a loop`
	}
	return f.value.String()
}

// Code returns the flow's result code.
func (f *Flow) Code() Result { return f.code }

// Value returns the flow's value: the return value or the error message.
func (f *Flow) Value() *Obj {
	if f.value == nil {
		return emptyObj()
	}
	return f.value
}

// IsError reports whether the flow is a script error.
func (f *Flow) IsError() bool { return f.code == ResultError }

// Level returns the return command's -level value.
func (f *Flow) Level() int { return f.level }

// NextCode returns the return command's -code value.
func (f *Flow) NextCode() Result { return f.nextCode }

// ErrorCode returns the machine-readable error code list. It is NONE unless
// the error producer set something more specific.
func (f *Flow) ErrorCode() *Obj {
	if f.errorCode == nil {
		return NewString("NONE")
	}
	return f.errorCode
}

// ErrorInfo returns the human-readable stack trace accumulated while the
// error propagated.
func (f *Flow) ErrorInfo() *Obj {
	return NewString(strings.Join(f.trace, "\n"))
}

// addErrorInfo appends a line to the stack trace. Host commands that
// evaluate scripts may use this to extend the trace before rethrowing.
func (f *Flow) addErrorInfo(line string) {
	f.trace = append(f.trace, line)
}

// isNewError reports whether the trace still holds only the original error
// message, i.e. no frame context has been recorded yet.
func (f *Flow) isNewError() bool {
	return f.code == ResultError && !f.rethrown && len(f.trace) <= 1
}

// decrementLevel implements the return command's -level protocol: each proc
// boundary decrements the level, and at zero the flow becomes its -code.
func (f *Flow) decrementLevel() {
	f.level--
	if f.level <= 0 {
		f.level = 0
		f.code = f.nextCode
	}
}

// newError creates an error flow with code NONE.
func newError(msg string) *Flow {
	return &Flow{
		code:      ResultError,
		value:     NewString(msg),
		nextCode:  ResultError,
		errorCode: NewString("NONE"),
		trace:     []string{msg},
	}
}

// errorf creates an error flow from a format string.
func errorf(format string, args ...any) *Flow {
	return newError(fmt.Sprintf(format, args...))
}

// throwError creates an error flow with an explicit error code list.
func throwError(code *Obj, msg string) *Flow {
	f := newError(msg)
	f.errorCode = code
	return f
}

// arithError creates an error flow with code ARITH, for expression failures.
func arithError(msg string) *Flow {
	return throwError(NewString("ARITH"), msg)
}

// newReturn creates the flow produced by a plain return command.
func newReturn(value *Obj) *Flow {
	return newReturnExt(value, 1, ResultOK)
}

// newReturnExt creates a return flow honoring -level and -code. With
// level 0 the flow takes on the next code immediately.
func newReturnExt(value *Obj, level int, nextCode Result) *Flow {
	code := ResultReturn
	if level == 0 {
		code = nextCode
	}
	f := &Flow{
		code:     code,
		value:    value,
		level:    level,
		nextCode: nextCode,
	}
	if code == ResultError {
		f.errorCode = NewString("NONE")
		f.trace = []string{value.String()}
	}
	return f
}

// newBreak creates a break flow.
func newBreak() *Flow {
	return &Flow{code: ResultBreak, nextCode: ResultBreak}
}

// newContinue creates a continue flow.
func newContinue() *Flow {
	return &Flow{code: ResultContinue, nextCode: ResultContinue}
}

// asFlow normalizes an error into a flow. Plain Go errors from host
// commands become error flows.
func asFlow(err error) *Flow {
	if err == nil {
		return nil
	}
	var f *Flow
	if errors.As(err, &f) {
		return f
	}
	return newError(err.Error())
}

// IsFlowError reports whether err is (or wraps) a *Flow carrying a script
// error, and returns the flow if so.
func IsFlowError(err error) (*Flow, bool) {
	var f *Flow
	if errors.As(err, &f) && f.IsError() {
		return f, true
	}
	return nil, false
}
