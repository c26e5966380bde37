package quill_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/quill-lang/quill"
)

func TestNew(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	result, err := interp.Eval("expr {2 + 2}")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "4" {
		t.Errorf("expected '4', got %q", result.String())
	}
}

func TestSetVar(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	interp.SetVar("name", "World")
	result, err := interp.Eval(`set greeting "Hello, $name!"`)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "Hello, World!" {
		t.Errorf("expected 'Hello, World!', got %q", result.String())
	}
}

func TestVar(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	interp.SetVar("x", "42")
	v := interp.Var("x")
	if v.String() != "42" {
		t.Errorf("expected '42', got %q", v.String())
	}

	n, err := v.Int()
	if err != nil {
		t.Fatalf("Int() failed: %v", err)
	}
	if n != 42 {
		t.Errorf("expected 42, got %d", n)
	}
}

func TestRegisterSimple(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	interp.Register("double", func(x int) int {
		return x * 2
	})

	result, err := interp.Eval("double 21")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "42" {
		t.Errorf("expected '42', got %q", result.String())
	}
}

func TestRegisterWithError(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	interp.Register("divide", func(a, b int) (int, error) {
		if b == 0 {
			return 0, errors.New("division by zero")
		}
		return a / b, nil
	})

	result, err := interp.Eval("divide 10 2")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "5" {
		t.Errorf("expected '5', got %q", result.String())
	}

	_, err = interp.Eval("divide 1 0")
	if err == nil {
		t.Fatal("expected error for division by zero")
	}
	if !strings.Contains(err.Error(), "division by zero") {
		t.Errorf("unexpected error message: %v", err)
	}

	// The error is catchable from script.
	result, err = interp.Eval("catch {divide 1 0} msg; set msg")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "division by zero" {
		t.Errorf("expected 'division by zero', got %q", result.String())
	}
}

func TestRegisterVariadic(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	interp.Register("sum", func(nums ...int) int {
		total := 0
		for _, n := range nums {
			total += n
		}
		return total
	})

	result, err := interp.Eval("sum 1 2 3 4")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "10" {
		t.Errorf("expected '10', got %q", result.String())
	}
}

func TestRegisterWithInterp(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	interp.Register("defined", func(i *quill.Interp, name string) bool {
		return i.VarExists(name)
	})

	interp.SetVar("x", "1")
	result, err := interp.Eval("defined x")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "1" {
		t.Errorf("expected '1', got %q", result.String())
	}
}

func TestRegisterCommandFlow(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	interp.RegisterCommand("first", func(i *quill.Interp, args []*quill.Obj) (*quill.Obj, error) {
		if len(args) != 2 {
			return nil, errors.New("wrong # args: should be \"first list\"")
		}
		items, err := quill.AsList(args[1])
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return quill.NewString(""), nil
		}
		return items[0], nil
	})

	result, err := interp.Eval("first {a b c}")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "a" {
		t.Errorf("expected 'a', got %q", result.String())
	}
}

func TestRenameCommand(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	if err := interp.RenameCommand("llength", "list_length"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if interp.CommandExists("llength") {
		t.Error("llength should no longer exist")
	}
	result, err := interp.Eval("list_length {a b c}")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "3" {
		t.Errorf("expected '3', got %q", result.String())
	}

	// Scripts can patch procedurally through rename too.
	if _, err := interp.Eval("rename list_length llength"); err != nil {
		t.Fatalf("rename back failed: %v", err)
	}
	if !interp.CommandExists("llength") {
		t.Error("llength should exist again")
	}
}

func TestUnknownHandler(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	interp.SetUnknownHandler(func(i *quill.Interp, args []*quill.Obj) (*quill.Obj, error) {
		return quill.NewString("unknown:" + args[0].String()), nil
	})

	result, err := interp.Eval("nosuchcommand a b")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "unknown:nosuchcommand" {
		t.Errorf("got %q", result.String())
	}
}

func TestCallBypassesParser(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	// The argument contains every special character; Call must not
	// re-substitute it.
	tricky := `$x [boom] {unbalanced`
	result, err := interp.Call("string", quill.NewString("length"), quill.NewString(tricky))
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	n, _ := result.(*quill.Obj).Int()
	if n != int64(len(tricky)) {
		t.Errorf("expected %d, got %d", len(tricky), n)
	}
}

func TestSubst(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	interp.SetVar("x", "world")
	result, err := interp.Subst(`hello $x [string toupper !]`)
	if err != nil {
		t.Fatalf("Subst failed: %v", err)
	}
	if result.String() != "hello world !" {
		t.Errorf("got %q", result.String())
	}
}

func TestComplete(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	complete := []string{"set x 1", "if {1} {puts a}", `set s "done"`}
	incomplete := []string{"if {1} {", `set s "un`, "set y [list a"}

	for _, s := range complete {
		if !interp.Complete(s) {
			t.Errorf("Complete(%q) = false, want true", s)
		}
	}
	for _, s := range incomplete {
		if interp.Complete(s) {
			t.Errorf("Complete(%q) = true, want false", s)
		}
	}
}

func TestCancel(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	// Cancel before evaluation: the first command checkpoint aborts.
	interp.Cancel()
	_, err := interp.Eval("set x 1")
	if err == nil || !strings.Contains(err.Error(), "canceled") {
		t.Fatalf("expected cancel error, got %v", err)
	}

	interp.ResetCancel()
	if _, err := interp.Eval("set x 1"); err != nil {
		t.Fatalf("interpreter should be usable after ResetCancel: %v", err)
	}
}

func TestRecursionLimit(t *testing.T) {
	interp := quill.New(quill.WithRecursionLimit(50))
	defer interp.Close()

	_, err := interp.Eval("proc loop {} {loop}; loop")
	if err == nil {
		t.Fatal("expected recursion error")
	}
	if !strings.Contains(err.Error(), "too many nested evaluations") {
		t.Errorf("unexpected error: %v", err)
	}

	// The interpreter remains usable once unwound.
	result, err := interp.Eval("expr {1 + 1}")
	if err != nil {
		t.Fatalf("interpreter unusable after recursion error: %v", err)
	}
	if result.String() != "2" {
		t.Errorf("expected '2', got %q", result.String())
	}
}

func TestLastError(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	_, err := interp.Eval("throw {MY CODE} boom")
	if err == nil {
		t.Fatal("expected error")
	}
	if interp.LastErrorCode() != "MY CODE" {
		t.Errorf("LastErrorCode = %q, want 'MY CODE'", interp.LastErrorCode())
	}
	if !strings.Contains(interp.LastErrorInfo(), "boom") {
		t.Errorf("LastErrorInfo = %q, should mention boom", interp.LastErrorInfo())
	}
}
