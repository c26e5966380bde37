package quill

import (
	"fmt"
	"reflect"
	"sort"
)

// The high-level registration bridge: Register wraps an arbitrary Go
// function as a command, converting arguments and results between Go types
// and script values by reflection.

// Register wraps a Go function as a command. Arguments are converted from
// script values to the function's parameter types; return values are
// converted back. A trailing error return becomes a script error. Variadic
// functions work as expected.
//
//	interp.Register("double", func(x int) int { return x * 2 })
//
// Register panics if fn is not a function; registration is host
// programming, not script input.
func (i *Interp) Register(name string, fn any) {
	i.RegisterCommand(name, wrapFunc(fn))
}

// toObj converts a Go value to a script value.
func toObj(v any) *Obj {
	if v == nil {
		return emptyObj()
	}

	switch val := v.(type) {
	case *Obj:
		if val == nil {
			return emptyObj()
		}
		return val
	case string:
		return NewString(val)
	case int:
		return NewInt(int64(val))
	case int32:
		return NewInt(int64(val))
	case int64:
		return NewInt(val)
	case float64:
		return NewDouble(val)
	case float32:
		return NewDouble(float64(val))
	case bool:
		return NewBool(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]*Obj, rv.Len())
		for n := 0; n < rv.Len(); n++ {
			items[n] = toObj(rv.Index(n).Interface())
		}
		return NewList(items...)
	case reflect.Map:
		d := &DictType{Items: make(map[string]*Obj, rv.Len())}
		// Sort keys by their string image for a stable dict order.
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := toObj(iter.Key().Interface()).String()
			keys = append(keys, k)
			byKey[k] = iter.Value()
		}
		sort.Strings(keys)
		for _, k := range keys {
			d.Put(k, toObj(byKey[k].Interface()))
		}
		return &Obj{intrep: d}
	default:
		return NewString(fmt.Sprintf("%v", v))
	}
}

// wrapFunc wraps a Go function as a CommandFunc.
func wrapFunc(fn any) CommandFunc {
	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()

	if fnType.Kind() != reflect.Func {
		panic(fmt.Sprintf("Register: expected function, got %T", fn))
	}

	return func(ip *Interp, args []*Obj) (*Obj, error) {
		callArgs := args[1:]
		numIn := fnType.NumIn()
		isVariadic := fnType.IsVariadic()

		// The function may take the interpreter as its first parameter.
		takesInterp := numIn > 0 && fnType.In(0) == reflect.TypeOf((*Interp)(nil))
		wantArgs := numIn
		if takesInterp {
			wantArgs--
		}

		if isVariadic {
			if len(callArgs) < wantArgs-1 {
				return nil, errorf("wrong # args: expected at least %d, got %d", wantArgs-1, len(callArgs))
			}
		} else if len(callArgs) != wantArgs {
			return nil, errorf("wrong # args: expected %d, got %d", wantArgs, len(callArgs))
		}

		in := make([]reflect.Value, 0, len(callArgs)+1)
		if takesInterp {
			in = append(in, reflect.ValueOf(ip))
		}
		for n, arg := range callArgs {
			paramIdx := n
			if takesInterp {
				paramIdx++
			}
			var paramType reflect.Type
			if isVariadic && paramIdx >= numIn-1 {
				paramType = fnType.In(numIn - 1).Elem()
			} else {
				paramType = fnType.In(paramIdx)
			}
			converted, err := convertArg(arg, paramType)
			if err != nil {
				return nil, errorf("argument %d: %v", n+1, err)
			}
			in = append(in, converted)
		}

		return convertResults(fnVal.Call(in), fnType)
	}
}

// convertArg converts a script value to the target Go type.
func convertArg(arg *Obj, targetType reflect.Type) (reflect.Value, error) {
	switch targetType {
	case reflect.TypeOf((*Obj)(nil)):
		return reflect.ValueOf(arg), nil
	case reflect.TypeOf((*Value)(nil)).Elem():
		return reflect.ValueOf(Value(arg)), nil
	}

	switch targetType.Kind() {
	case reflect.String:
		return reflect.ValueOf(arg.String()).Convert(targetType), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := AsInt(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(n).Convert(targetType), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := AsInt(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		if n < 0 {
			return reflect.Value{}, fmt.Errorf("expected unsigned integer but got \"%s\"", arg.String())
		}
		return reflect.ValueOf(n).Convert(targetType), nil
	case reflect.Float32, reflect.Float64:
		f, err := AsDouble(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(f).Convert(targetType), nil
	case reflect.Bool:
		b, err := AsBool(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b), nil
	case reflect.Slice:
		items, err := AsList(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		slice := reflect.MakeSlice(targetType, len(items), len(items))
		for n, item := range items {
			elem, err := convertArg(item, targetType.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %v", n, err)
			}
			slice.Index(n).Set(elem)
		}
		return slice, nil
	case reflect.Map:
		if targetType.Key().Kind() != reflect.String {
			return reflect.Value{}, fmt.Errorf("unsupported map key type %s", targetType.Key())
		}
		d, err := AsDict(arg)
		if err != nil {
			return reflect.Value{}, err
		}
		m := reflect.MakeMapWithSize(targetType, d.Len())
		for _, k := range d.Order {
			elem, err := convertArg(d.Items[k], targetType.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("value for key %q: %v", k, err)
			}
			m.SetMapIndex(reflect.ValueOf(k).Convert(targetType.Key()), elem)
		}
		return m, nil
	case reflect.Interface:
		if targetType.NumMethod() == 0 {
			return reflect.ValueOf(arg.String()), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("unsupported parameter type %s", targetType)
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// convertResults converts a function's return values into a command
// outcome. A trailing error return, when non-nil, wins.
func convertResults(results []reflect.Value, fnType reflect.Type) (*Obj, error) {
	numOut := fnType.NumOut()
	hasErr := numOut > 0 && fnType.Out(numOut-1) == errType

	if hasErr {
		if errVal := results[numOut-1]; !errVal.IsNil() {
			return nil, asFlow(errVal.Interface().(error))
		}
		results = results[:numOut-1]
	}

	switch len(results) {
	case 0:
		return emptyObj(), nil
	case 1:
		return toObj(results[0].Interface()), nil
	default:
		items := make([]*Obj, len(results))
		for n, r := range results {
			items[n] = toObj(r.Interface())
		}
		return NewList(items...), nil
	}
}
