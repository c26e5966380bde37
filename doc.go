// Package quill provides an embeddable TCL-like interpreter for Go applications.
//
// # Overview
//
// quill is a minimal, pure-Go implementation of the core TCL language designed
// for embedding. It provides:
//
//   - A clean, idiomatic Go API
//   - Automatic type conversion between Go and script values
//   - Per-interpreter feature toggles that shrink the language surface
//   - No I/O in the core: the host decides what the language can touch
//
// # Quick Start
//
//	import "github.com/quill-lang/quill"
//
//	func main() {
//	    interp := quill.New()
//	    defer interp.Close()
//
//	    // Evaluate scripts
//	    result, _ := interp.Eval("expr {2 + 2}")
//	    fmt.Println(result.String()) // "4"
//
//	    // Set and get variables
//	    interp.SetVar("name", "World")
//	    result, _ = interp.Eval(`set greeting "Hello, $name!"`)
//
//	    // Register Go functions
//	    interp.Register("double", func(x int) int { return x * 2 })
//	    result, _ = interp.Eval("double 21") // "42"
//	}
//
// # Registering Go Functions
//
// The Register method accepts any Go function and automatically converts
// arguments and return values:
//
//	// Simple function
//	interp.Register("greet", func(name string) string {
//	    return "Hello, " + name + "!"
//	})
//
//	// Function with error return
//	interp.Register("divide", func(a, b int) (int, error) {
//	    if b == 0 {
//	        return 0, errors.New("division by zero")
//	    }
//	    return a / b, nil
//	})
//
//	// Variadic function
//	interp.Register("sum", func(nums ...int) int {
//	    total := 0
//	    for _, n := range nums {
//	        total += n
//	    }
//	    return total
//	})
//
// Lower-level control is available through RegisterCommand, whose handlers
// receive the interpreter and the argument values and may return any control
// flow outcome, exactly like a built-in command.
//
// # Values
//
// Script values are shared, dual-representation data: every value has a
// canonical string, and may carry one cached typed interpretation (integer,
// double, list, dict). Conversions are lazy and cached, so loops over lists
// and arithmetic on integers don't re-parse on every access.
//
//	result, _ := interp.Eval("list 1 2 3")
//
//	str := result.String()        // "1 2 3"
//	items, _ := result.List()     // []Value with 3 elements
//	for _, v := range items {
//	    n, _ := v.Int()           // 1, 2, 3
//	}
//
// Values must never be mutated once visible to a script; operations that
// appear to mutate (lappend, dict set) build new values.
//
// # Control Flow
//
// Evaluation outcomes are data, not panics. Eval returns a *Flow error for
// script errors; a break or continue outside any loop is reported as an
// error, and a return at the top level yields its value with a nil error.
// Hosts usually care only about errors:
//
//	if _, err := interp.Eval(script); err != nil {
//	    var flow *quill.Flow
//	    if errors.As(err, &flow) && flow.IsError() {
//	        log.Printf("script failed: %s (code %s)", flow.Value(), flow.ErrorCode())
//	    }
//	}
//
// # Concurrency
//
// An interpreter is not safe for concurrent use. Serialize access or create
// one interpreter per goroutine. A long-running script can be aborted from
// another goroutine with Cancel; the evaluator checks the flag between
// commands.
package quill
