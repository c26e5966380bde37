package quill_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quill-lang/quill"
)

// mustEval evaluates a script and fails the test on error.
func mustEval(t *testing.T, interp *quill.Interp, script string) string {
	t.Helper()
	result, err := interp.Eval(script)
	require.NoError(t, err, "script: %s", script)
	return result.String()
}

// TestEndToEnd runs the canonical end-to-end scenarios.
func TestEndToEnd(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{
			"expr with variable",
			"set x 3; expr {$x * 2 + 1}",
			"7",
		},
		{
			"recursive fibonacci",
			"proc f {n} { if {$n < 2} {return $n}; expr {[f [expr {$n-1}]] + [f [expr {$n-2}]]} }; f 7",
			"13",
		},
		{
			"string map",
			"string map {FOO BAR} abcdFOOefgh",
			"abcdBARefgh",
		},
		{
			"string range multibyte",
			"string range カタカナ 2 3",
			"カナ",
		},
		{
			"catch error message",
			"catch {error boom} msg; set msg",
			"boom",
		},
		{
			"word expansion",
			"list {*}{a b c} d",
			"a b c d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interp := quill.New()
			defer interp.Close()
			require.Equal(t, tt.want, mustEval(t, interp, tt.script))
		})
	}
}

// TestScopeIsolation checks that proc-frame variables are invisible after
// the proc returns, unless linked with upvar.
func TestScopeIsolation(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	mustEval(t, interp, "proc p {} {set inner 5; return done}; p")
	require.False(t, interp.VarExists("inner"), "proc local leaked into global frame")

	mustEval(t, interp, "proc q {} {upvar 1 outer o; set o 7}; set outer 0; q")
	require.Equal(t, "7", interp.Var("outer").String())
}

// TestCatchNeutralizesControlFlow checks that catch converts every outcome
// into a normal result encoding the outcome as an integer.
func TestCatchNeutralizesControlFlow(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	tests := []struct {
		script string
		want   string
	}{
		{"catch {set ok 1}", "0"},
		{"catch {error boom}", "1"},
		{"catch {return val}", "2"},
		{"catch {break}", "3"},
		{"catch {continue}", "4"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, mustEval(t, interp, tt.script), "script: %s", tt.script)
	}

	// The options dict carries code and error data.
	mustEval(t, interp, "catch {throw {A B} oops} msg opts")
	require.Equal(t, "oops", interp.Var("msg").String())
	opts, err := quill.AsDict(interp.Var("opts").(*quill.Obj))
	require.NoError(t, err)
	code, ok := opts.Get("-errorcode")
	require.True(t, ok)
	require.Equal(t, "A B", code.String())
}

// TestShortCircuit checks that the unevaluated branch of &&, ||, and ?: has
// no observable side effects.
func TestShortCircuit(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	mustEval(t, interp, `
		set hits 0
		proc touch {} { global hits; incr hits; return 1 }
	`)

	require.Equal(t, "0", mustEval(t, interp, "expr {0 && [touch]}"))
	require.Equal(t, "0", interp.Var("hits").String())

	require.Equal(t, "1", mustEval(t, interp, "expr {1 || [touch]}"))
	require.Equal(t, "0", interp.Var("hits").String())

	require.Equal(t, "5", mustEval(t, interp, "expr {1 ? 5 : [touch]}"))
	require.Equal(t, "0", interp.Var("hits").String())

	// The selected branch does run.
	require.Equal(t, "1", mustEval(t, interp, "expr {0 || [touch]}"))
	require.Equal(t, "1", interp.Var("hits").String())
}

// TestControlFlowMisuse checks that stray break/continue become errors.
func TestControlFlowMisuse(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	for _, script := range []string{"break", "continue"} {
		_, err := interp.Eval(script)
		require.Error(t, err, "script: %s", script)
	}

	// A return at the top level is not an error; it yields its value.
	require.Equal(t, "v", mustEval(t, interp, "return v"))
}

func TestLoops(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	require.Equal(t, "10", mustEval(t, interp, `
		set sum 0
		foreach x {1 2 3 4} { incr sum $x }
		set sum
	`))

	require.Equal(t, "6", mustEval(t, interp, `
		set sum 0
		for {set i 1} {$i <= 10} {incr i} {
			if {$i > 3} { break }
			incr sum $i
		}
		set sum
	`))

	require.Equal(t, "20", mustEval(t, interp, `
		set sum 0
		set i 0
		while {$i < 8} {
			incr i
			if {$i % 2 == 1} { continue }
			incr sum $i
		}
		set sum
	`))

	require.Equal(t, "2 4 6", mustEval(t, interp, "lmap x {1 2 3} {expr {$x * 2}}"))
}

func TestUplevel(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	mustEval(t, interp, `
		proc setter {name value} { uplevel 1 [list set $name $value] }
		setter answer 42
	`)
	require.Equal(t, "42", interp.Var("answer").String())
}

func TestProcDefaultsAndArgs(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	mustEval(t, interp, `proc greet {name {greeting hello}} { return "$greeting $name" }`)
	require.Equal(t, "hello bob", mustEval(t, interp, "greet bob"))
	require.Equal(t, "hi bob", mustEval(t, interp, "greet bob hi"))

	_, err := interp.Eval("greet")
	require.Error(t, err)
	require.Contains(t, err.Error(), "wrong # args")

	mustEval(t, interp, `proc count {args} { llength $args }`)
	require.Equal(t, "3", mustEval(t, interp, "count a b c"))
	require.Equal(t, "0", mustEval(t, interp, "count"))
}

func TestSwitch(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	require.Equal(t, "two", mustEval(t, interp, `switch 2 { 1 {concat one} 2 {concat two} default {concat other} }`))
	require.Equal(t, "other", mustEval(t, interp, `switch 9 { 1 {concat one} 2 {concat two} default {concat other} }`))
	require.Equal(t, "vowel", mustEval(t, interp, `switch -glob a { [aeiou] {concat vowel} default {concat consonant} }`))
	require.Equal(t, "small", mustEval(t, interp, `switch 1 { 1 - 2 {concat small} default {concat big} }`))
}

func TestFeatureToggles(t *testing.T) {
	t.Run("float off", func(t *testing.T) {
		f := quill.DefaultFeatures()
		f.Float = false
		interp := quill.New(quill.WithFeatures(f))
		defer interp.Close()

		require.Equal(t, "3", mustEval(t, interp, "expr {1 + 2}"))
		_, err := interp.Eval("expr {1.5 + 2}")
		require.Error(t, err)
	})

	t.Run("string command off", func(t *testing.T) {
		f := quill.DefaultFeatures()
		f.StringCommand = false
		interp := quill.New(quill.WithFeatures(f))
		defer interp.Close()

		_, err := interp.Eval("string length abc")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid command name")
	})

	t.Run("dict off", func(t *testing.T) {
		f := quill.DefaultFeatures()
		f.Dict = false
		interp := quill.New(quill.WithFeatures(f))
		defer interp.Close()

		_, err := interp.Eval("dict create a 1")
		require.Error(t, err)
	})

	t.Run("narrow ints", func(t *testing.T) {
		f := quill.DefaultFeatures()
		f.Wide = false
		interp := quill.New(quill.WithFeatures(f))
		defer interp.Close()

		_, err := interp.Eval("expr {2147483647 + 1}")
		require.Error(t, err)
	})

	t.Run("expr off", func(t *testing.T) {
		f := quill.DefaultFeatures()
		f.Expr = false
		interp := quill.New(quill.WithFeatures(f))
		defer interp.Close()

		require.False(t, interp.CommandExists("expr"))

		// Conditionals take a command word instead of an expression.
		interp.Register("isSmall", func(n int) bool { return n < 5 })
		require.Equal(t, "yes", mustEval(t, interp, `if {isSmall 3} {concat yes} else {concat no}`))
	})
}

func TestErrorStackTrace(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	_, err := interp.Eval(`
		proc inner {} { error deep }
		proc outer {} { inner }
		outer
	`)
	require.Error(t, err)

	info := interp.LastErrorInfo()
	require.Contains(t, info, "deep")
	require.Contains(t, info, "inner")
	require.Contains(t, info, "outer")

	// A caught error leaves no residue in later traces.
	mustEval(t, interp, "catch {error transient}")
	_, err = interp.Eval("error fresh")
	require.Error(t, err)
	require.NotContains(t, interp.LastErrorInfo(), "transient")
}
