// Package quill_test exercises the ergonomic Go API for quill.
package quill_test

import (
	"testing"

	"github.com/quill-lang/quill"
)

func TestConstructPrimitives(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	t.Run("String", func(t *testing.T) {
		s := interp.String("hello")
		if s.String() != "hello" {
			t.Errorf("expected 'hello', got %q", s.String())
		}
		if s.Type() != "string" {
			t.Errorf("expected type 'string', got %q", s.Type())
		}
	})

	t.Run("Int", func(t *testing.T) {
		i := interp.Int(42)
		if i.String() != "42" {
			t.Errorf("expected '42', got %q", i.String())
		}
		if i.Type() != "int" {
			t.Errorf("expected type 'int', got %q", i.Type())
		}
		n, err := quill.AsInt(i)
		if err != nil || n != 42 {
			t.Errorf("AsInt() = %d, %v; want 42, nil", n, err)
		}
	})

	t.Run("Double", func(t *testing.T) {
		d := interp.Double(3.14)
		f, err := quill.AsDouble(d)
		if err != nil || f != 3.14 {
			t.Errorf("AsDouble() = %f, %v; want 3.14, nil", f, err)
		}
		if d.Type() != "double" {
			t.Errorf("expected type 'double', got %q", d.Type())
		}
	})

	t.Run("Bool", func(t *testing.T) {
		b, err := quill.AsBool(interp.String("true"))
		if err != nil || !b {
			t.Errorf("AsBool() = %v, %v; want true, nil", b, err)
		}
		b, err = quill.AsBool(interp.String("0"))
		if err != nil || b {
			t.Errorf("AsBool() = %v, %v; want false, nil", b, err)
		}
	})
}

func TestConstructLists(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	t.Run("List variadic", func(t *testing.T) {
		list := interp.List(interp.String("a"), interp.Int(1), interp.String("c"))
		if list.Type() != "list" {
			t.Errorf("expected type 'list', got %q", list.Type())
		}
		items, err := quill.AsList(list)
		if err != nil {
			t.Fatalf("AsList() failed: %v", err)
		}
		if len(items) != 3 {
			t.Errorf("expected 3 items, got %d", len(items))
		}
		if items[0].String() != "a" || items[1].String() != "1" {
			t.Errorf("unexpected items: %v", items)
		}
	})

	t.Run("ListFrom string slice", func(t *testing.T) {
		list := interp.ListFrom([]string{"x", "y z", ""})
		if list.String() != "x {y z} {}" {
			t.Errorf("got %q", list.String())
		}
	})

	t.Run("ListFrom int slice", func(t *testing.T) {
		list := interp.ListFrom([]int{3, 1, 2})
		if list.String() != "3 1 2" {
			t.Errorf("got %q", list.String())
		}
	})
}

func TestConstructDicts(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	d := interp.Dict(
		interp.String("name"), interp.String("quill"),
		interp.String("kind"), interp.String("interpreter"),
	)
	if d.Type() != "dict" {
		t.Errorf("expected type 'dict', got %q", d.Type())
	}

	m, err := d.Dict()
	if err != nil {
		t.Fatalf("Dict() failed: %v", err)
	}
	if m["name"].String() != "quill" {
		t.Errorf("m[name] = %q", m["name"].String())
	}
}

func TestValueInterface(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	result, err := interp.Eval("list 1 2 3")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}

	items, err := result.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	sum := int64(0)
	for _, v := range items {
		n, err := v.Int()
		if err != nil {
			t.Fatalf("Int() failed: %v", err)
		}
		sum += n
	}
	if sum != 6 {
		t.Errorf("sum = %d, want 6", sum)
	}

	if result.IsNil() {
		t.Error("non-empty value reported nil")
	}
	empty, _ := interp.Eval("")
	if !empty.IsNil() {
		t.Error("empty result should be nil-ish")
	}
}

func TestRegisterSliceAndMapArgs(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	interp.Register("total", func(nums []int) int {
		sum := 0
		for _, n := range nums {
			sum += n
		}
		return sum
	})
	result, err := interp.Eval("total {1 2 3}")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "6" {
		t.Errorf("got %q", result.String())
	}

	interp.Register("keycount", func(m map[string]string) int {
		return len(m)
	})
	result, err = interp.Eval("keycount {a 1 b 2}")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "2" {
		t.Errorf("got %q", result.String())
	}
}

func TestRegisterReturnsSlice(t *testing.T) {
	interp := quill.New()
	defer interp.Close()

	interp.Register("pair", func() []string {
		return []string{"a", "b c"}
	})
	result, err := interp.Eval("lindex [pair] 1")
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if result.String() != "b c" {
		t.Errorf("got %q", result.String())
	}
}
