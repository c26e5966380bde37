package quill

import (
	"math"
	"math/rand"
	"time"
)

// The default expression function table. Hosts can extend it with
// RegisterMathFunc. A name followed by '(' parses as a function call only if
// it is registered when the expression is parsed; otherwise it parses as an
// array element reference, and a cached expression keeps that reading.

// checkMathArgs validates the argument count of a math function call.
func checkMathArgs(name string, args []*Obj, min, max int) *Flow {
	if len(args) < min || (max >= 0 && len(args) > max) {
		return errorf("wrong # args for math function \"%s\"", name)
	}
	return nil
}

// float1 wraps a one-argument float function.
func float1(name string, fn func(float64) float64) MathFunc {
	return func(i *Interp, args []*Obj) (*Obj, error) {
		if flow := checkMathArgs(name, args, 1, 1); flow != nil {
			return nil, flow
		}
		f, err := AsDouble(args[0])
		if err != nil {
			return nil, arithError(err.Error())
		}
		r := fn(f)
		if math.IsNaN(r) && !math.IsNaN(f) {
			return nil, arithError("domain error: argument not in valid range")
		}
		return NewDouble(r), nil
	}
}

// pickBy wraps min/max over any number of numeric arguments.
func pickBy(name string, takeRight func(a, b number) bool) MathFunc {
	return func(i *Interp, args []*Obj) (*Obj, error) {
		if flow := checkMathArgs(name, args, 1, -1); flow != nil {
			return nil, flow
		}
		best, ok := i.asNumber(args[0])
		if !ok {
			return nil, arithError("can't use non-numeric string as operand of \"" + name + "\"")
		}
		for _, arg := range args[1:] {
			n, ok := i.asNumber(arg)
			if !ok {
				return nil, arithError("can't use non-numeric string as operand of \"" + name + "\"")
			}
			if takeRight(best, n) {
				best = n
			}
		}
		return best.toObj(), nil
	}
}

func registerMathFuncs(i *Interp) {
	funcs := map[string]MathFunc{
		"abs": func(i *Interp, args []*Obj) (*Obj, error) {
			if flow := checkMathArgs("abs", args, 1, 1); flow != nil {
				return nil, flow
			}
			n, ok := i.asNumber(args[0])
			if !ok {
				return nil, arithError("can't use non-numeric string as operand of \"abs\"")
			}
			if n.isFloat {
				return NewDouble(math.Abs(n.f)), nil
			}
			if n.i < 0 {
				r, flow := i.checkIntRange(-n.i)
				if flow != nil {
					return nil, flow
				}
				return NewInt(r), nil
			}
			return NewInt(n.i), nil
		},
		"int": func(i *Interp, args []*Obj) (*Obj, error) {
			if flow := checkMathArgs("int", args, 1, 1); flow != nil {
				return nil, flow
			}
			n, ok := i.asNumber(args[0])
			if !ok {
				return nil, arithError("can't use non-numeric string as operand of \"int\"")
			}
			if n.isFloat {
				return NewInt(int64(n.f)), nil
			}
			return NewInt(n.i), nil
		},
		"double": func(i *Interp, args []*Obj) (*Obj, error) {
			if flow := checkMathArgs("double", args, 1, 1); flow != nil {
				return nil, flow
			}
			f, err := AsDouble(args[0])
			if err != nil {
				return nil, arithError(err.Error())
			}
			return NewDouble(f), nil
		},
		"round": func(i *Interp, args []*Obj) (*Obj, error) {
			if flow := checkMathArgs("round", args, 1, 1); flow != nil {
				return nil, flow
			}
			n, ok := i.asNumber(args[0])
			if !ok {
				return nil, arithError("can't use non-numeric string as operand of \"round\"")
			}
			if !n.isFloat {
				return NewInt(n.i), nil
			}
			return NewInt(int64(math.Round(n.f))), nil
		},
		"fmod": func(i *Interp, args []*Obj) (*Obj, error) {
			if flow := checkMathArgs("fmod", args, 2, 2); flow != nil {
				return nil, flow
			}
			a, err := AsDouble(args[0])
			if err != nil {
				return nil, arithError(err.Error())
			}
			b, err := AsDouble(args[1])
			if err != nil {
				return nil, arithError(err.Error())
			}
			if b == 0 {
				return nil, arithError("divide by zero")
			}
			return NewDouble(math.Mod(a, b)), nil
		},
		"pow": func(i *Interp, args []*Obj) (*Obj, error) {
			if flow := checkMathArgs("pow", args, 2, 2); flow != nil {
				return nil, flow
			}
			a, err := AsDouble(args[0])
			if err != nil {
				return nil, arithError(err.Error())
			}
			b, err := AsDouble(args[1])
			if err != nil {
				return nil, arithError(err.Error())
			}
			return NewDouble(math.Pow(a, b)), nil
		},
		"hypot": func(i *Interp, args []*Obj) (*Obj, error) {
			if flow := checkMathArgs("hypot", args, 2, 2); flow != nil {
				return nil, flow
			}
			a, err := AsDouble(args[0])
			if err != nil {
				return nil, arithError(err.Error())
			}
			b, err := AsDouble(args[1])
			if err != nil {
				return nil, arithError(err.Error())
			}
			return NewDouble(math.Hypot(a, b)), nil
		},
		"min": pickBy("min", func(a, b number) bool { return b.float() < a.float() }),
		"max": pickBy("max", func(a, b number) bool { return b.float() > a.float() }),
		"rand": func(i *Interp, args []*Obj) (*Obj, error) {
			if flow := checkMathArgs("rand", args, 0, 0); flow != nil {
				return nil, flow
			}
			if i.rng == nil {
				i.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
			}
			return NewDouble(i.rng.Float64()), nil
		},
		"srand": func(i *Interp, args []*Obj) (*Obj, error) {
			if flow := checkMathArgs("srand", args, 1, 1); flow != nil {
				return nil, flow
			}
			seed, err := AsInt(args[0])
			if err != nil {
				return nil, arithError(err.Error())
			}
			i.rng = rand.New(rand.NewSource(seed))
			return NewDouble(i.rng.Float64()), nil
		},
	}

	if !i.features.Float {
		// Without floats only the integer-capable functions remain.
		for _, name := range []string{"double", "round", "fmod", "pow", "hypot", "rand", "srand"} {
			delete(funcs, name)
		}
		for name, fn := range funcs {
			i.mathFuncs[name] = fn
		}
		return
	}

	for name, fn := range map[string]func(float64) float64{
		"sqrt":  math.Sqrt,
		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"asin":  math.Asin,
		"acos":  math.Acos,
		"atan":  math.Atan,
		"exp":   math.Exp,
		"log":   math.Log,
		"log10": math.Log10,
		"floor": math.Floor,
		"ceil":  math.Ceil,
	} {
		funcs[name] = float1(name, fn)
	}

	for name, fn := range funcs {
		i.mathFuncs[name] = fn
	}
}
