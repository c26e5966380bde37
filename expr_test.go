package quill

import (
	"errors"
	"testing"
)

// evalExpr evaluates an expression in a fresh default interpreter.
func evalExpr(t *testing.T, expr string) (string, error) {
	t.Helper()
	i := New()
	defer i.Close()
	v, flow := i.exprEval(NewString(expr))
	if flow != nil {
		return "", flow
	}
	return v.String(), nil
}

func TestExprArithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1 + 2", "3"},
		{"10 - 4", "6"},
		{"6 * 7", "42"},
		{"7 / 2", "3"},
		{"-7 / 2", "-3"}, // integer division truncates toward zero
		{"7 % 3", "1"},
		{"-7 % 3", "2"}, // modulo follows the divisor's sign
		{"7 % -3", "-2"},
		{"2 ** 10", "1024"},
		{"2 ** 3 ** 2", "512"}, // right-associative
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"10 / 3.0 > 3", "1"},
		{"1.5 + 2.5", "4.0"},
		{"1 + 2.5", "3.5"}, // int promotes to float
		{"7 << 2", "28"},
		{"28 >> 2", "7"},
		{"6 & 3", "2"},
		{"6 | 3", "7"},
		{"6 ^ 3", "5"},
		{"-5", "-5"},
		{"- -5", "5"},
		{"~0", "-1"},
		{"!0", "1"},
		{"!3", "0"},
	}
	for _, tt := range tests {
		got, err := evalExpr(t, tt.expr)
		if err != nil {
			t.Errorf("expr %q: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("expr %q = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestExprComparisons(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1 < 2", "1"},
		{"2 <= 2", "1"},
		{"3 > 2", "1"},
		{"2 >= 3", "0"},
		{"2 == 2.0", "1"}, // numeric comparison when both numeric
		{"10 < 9", "0"},
		{`"abc" < "abd"`, "1"}, // string comparison otherwise
		{`"10" == "10"`, "1"},
		{`"abc" eq "abc"`, "1"},
		{`"2" eq "2.0"`, "0"}, // eq is always a string comparison
		{`"a" ne "b"`, "1"},
		{`"b" in {a b c}`, "1"},
		{`"d" in {a b c}`, "0"},
		{`"d" ni {a b c}`, "1"},
		{"true && true", "1"},
		{"true && false", "0"},
		{"false || true", "1"},
		{"1 < 2 ? 10 : 20", "10"},
		{"1 > 2 ? 10 : 20", "20"},
		{"0 ? 1 : 1 ? 2 : 3", "2"}, // ternary is right-associative
	}
	for _, tt := range tests {
		got, err := evalExpr(t, tt.expr)
		if err != nil {
			t.Errorf("expr %q: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("expr %q = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestExprLiterals(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"0x1f", "31"},
		{"0o17", "15"},
		{"0b1010", "10"},
		{"0d99", "99"},
		{"1e2", "100.0"},
		{"1.5e2", "150.0"},
		{"{abc}", "abc"},
		{`"abc"`, "abc"},
		{"Inf > 1e300", "1"},
		{"true", "1"},
		{"off", "0"},
	}
	for _, tt := range tests {
		got, err := evalExpr(t, tt.expr)
		if err != nil {
			t.Errorf("expr %q: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("expr %q = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestExprVariablesAndCommands(t *testing.T) {
	i := New()
	defer i.Close()

	i.SetVarObj("x", NewInt(4))
	i.setElem("a", "k", NewInt(9))

	tests := []struct {
		expr string
		want string
	}{
		{"$x * 2", "8"},
		{"$a(k) + 1", "10"},
		{"[llength {a b c}] + 1", "4"},
		{`"$x-"`, "4-"},
	}
	for _, tt := range tests {
		v, flow := i.exprEval(NewString(tt.expr))
		if flow != nil {
			t.Errorf("expr %q: %v", tt.expr, flow)
			continue
		}
		if v.String() != tt.want {
			t.Errorf("expr %q = %q, want %q", tt.expr, v.String(), tt.want)
		}
	}
}

func TestExprFunctions(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"abs(-5)", "5"},
		{"abs(5)", "5"},
		{"abs(-2.5)", "2.5"},
		{"min(3, 1, 2)", "1"},
		{"max(3, 1, 2)", "3"},
		{"sqrt(9)", "3.0"},
		{"int(2.9)", "2"},
		{"double(2)", "2.0"},
		{"round(2.5)", "3"},
		{"pow(2, 8)", "256.0"},
	}
	for _, tt := range tests {
		got, err := evalExpr(t, tt.expr)
		if err != nil {
			t.Errorf("expr %q: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("expr %q = %q, want %q", tt.expr, got, tt.want)
		}
	}

	if _, err := evalExpr(t, "nosuchfn(1)"); err == nil {
		t.Error("expected error for unknown function")
	}
}

func TestExprHostFunction(t *testing.T) {
	i := New(WithMathFunc("triple", func(i *Interp, args []*Obj) (*Obj, error) {
		n, err := AsInt(args[0])
		if err != nil {
			return nil, err
		}
		return NewInt(n * 3), nil
	}))
	defer i.Close()

	v, flow := i.exprEval(NewString("triple(7)"))
	if flow != nil {
		t.Fatalf("exprEval failed: %v", flow)
	}
	if v.String() != "21" {
		t.Errorf("got %q, want 21", v.String())
	}
}

// TestExprBareArrayRef checks the disambiguation rule: name(args) is a
// function call iff name is a registered function, else a variable ref.
func TestExprBareArrayRef(t *testing.T) {
	i := New()
	defer i.Close()
	i.setElem("scores", "bob", NewInt(7))

	v, flow := i.exprEval(NewString("scores(bob) + 1"))
	if flow != nil {
		t.Fatalf("exprEval failed: %v", flow)
	}
	if v.String() != "8" {
		t.Errorf("got %q, want 8", v.String())
	}
}

func TestExprErrors(t *testing.T) {
	arithExprs := []string{"1 / 0", "1 % 0", `1 + "abc"`, "1.5 & 2"}
	for _, expr := range arithExprs {
		_, err := evalExpr(t, expr)
		if err == nil {
			t.Errorf("expr %q: expected error", expr)
			continue
		}
		var flow *Flow
		if !errors.As(err, &flow) {
			t.Errorf("expr %q: expected *Flow, got %T", expr, err)
			continue
		}
		if flow.ErrorCode().String() != "ARITH" {
			t.Errorf("expr %q: error code %q, want ARITH", expr, flow.ErrorCode().String())
		}
	}

	parseErrs := []string{"", "1 +", "(1", "1 ? 2", "2 @ 3"}
	for _, expr := range parseErrs {
		if _, err := evalExpr(t, expr); err == nil {
			t.Errorf("expr %q: expected parse error", expr)
		}
	}
}

func TestExprCaching(t *testing.T) {
	i := New()
	defer i.Close()

	o := NewString("1 + 2")
	if _, flow := i.exprEval(o); flow != nil {
		t.Fatal(flow)
	}
	if o.Type() != "expr" {
		t.Errorf("expected cached expr form, got %q", o.Type())
	}
	// Re-evaluating reuses the cached tree.
	v, flow := i.exprEval(o)
	if flow != nil || v.String() != "3" {
		t.Errorf("cached eval: %v, %v", v, flow)
	}
}

func TestExprIntegerOverflowNarrow(t *testing.T) {
	f := DefaultFeatures()
	f.Wide = false
	i := New(WithFeatures(f))
	defer i.Close()

	if _, flow := i.exprEval(NewString("2000000000 + 2000000000")); flow == nil {
		t.Error("expected range error with narrow integers")
	}
	v, flow := i.exprEval(NewString("1000 * 1000"))
	if flow != nil || v.String() != "1000000" {
		t.Errorf("in-range arithmetic should work: %v, %v", v, flow)
	}
}
