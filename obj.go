package quill

import "fmt"

// Obj is a quill value.
// It follows TCL semantics where values have both a string representation
// and an optional internal representation that can be lazily computed.
//
// An Obj may be shared by any number of variables, list elements, and host
// temporaries at once. Holders must treat it as immutable; commands that
// appear to mutate a value construct a new Obj instead.
type Obj struct {
	bytes  string  // string representation ("" = empty string if intrep == nil)
	intrep ObjType // internal representation (nil = pure string)
}

// ObjType defines the core behavior for an internal representation.
type ObjType interface {
	// Name returns the type name (e.g., "int", "list").
	Name() string

	// UpdateString regenerates the string representation from this internal rep.
	UpdateString() string

	// Dup creates a copy of this internal representation.
	Dup() ObjType
}

// IntoInt can convert directly to int64.
type IntoInt interface {
	IntoInt() (int64, bool)
}

// IntoDouble can convert directly to float64.
type IntoDouble interface {
	IntoDouble() (float64, bool)
}

// IntoList can convert directly to a list.
type IntoList interface {
	IntoList() ([]*Obj, bool)
}

// IntoDict can convert directly to a dictionary.
type IntoDict interface {
	IntoDict() (map[string]*Obj, []string, bool)
}

// IntoBool can convert directly to a boolean.
type IntoBool interface {
	IntoBool() (bool, bool)
}

// String returns the string representation of the object.
// If the string representation is empty and there's an internal
// representation, it regenerates the string from the internal rep.
func (o *Obj) String() string {
	if o == nil {
		return ""
	}
	if o.bytes == "" && o.intrep != nil {
		o.bytes = o.intrep.UpdateString()
	}
	return o.bytes
}

// Type returns the type name of the object.
// Returns "string" for pure string objects (no internal representation).
func (o *Obj) Type() string {
	if o == nil || o.intrep == nil {
		return "string"
	}
	return o.intrep.Name()
}

// InternalRep returns the internal representation of the object.
// Returns nil for pure string objects.
//
// Use type assertion to access custom ObjType implementations:
//
//	if myType, ok := obj.InternalRep().(*MyType); ok {
//	    // use myType
//	}
func (o *Obj) InternalRep() ObjType {
	if o == nil {
		return nil
	}
	return o.intrep
}

// IsNil reports whether the object is nil or the empty string.
func (o *Obj) IsNil() bool {
	return o == nil || (o.intrep == nil && o.bytes == "")
}

// Equal reports whether two objects have the same canonical string image.
// This is the language's notion of value equality.
func (o *Obj) Equal(other *Obj) bool {
	return o.String() == other.String()
}

// Dup returns a copy of the object with a duplicated internal rep.
// The string image is shared (strings are immutable in Go).
func (o *Obj) Dup() *Obj {
	if o == nil {
		return nil
	}
	dup := &Obj{bytes: o.String()}
	if o.intrep != nil {
		dup.intrep = o.intrep.Dup()
	}
	return dup
}

// setIntRep installs a freshly computed internal rep, forcing the string
// image first so the two representations stay coherent.
func (o *Obj) setIntRep(rep ObjType) {
	_ = o.String()
	o.intrep = rep
}

// GoString implements fmt.GoStringer for debugging.
func (o *Obj) GoString() string {
	return fmt.Sprintf("quill.Obj{%q, %s}", o.String(), o.Type())
}

// NewString creates a value with the given string representation.
func NewString(s string) *Obj {
	return &Obj{bytes: s}
}

// NewInt creates a value with a cached integer representation.
func NewInt(n int64) *Obj {
	return &Obj{intrep: IntType(n)}
}

// NewDouble creates a value with a cached floating-point representation.
func NewDouble(f float64) *Obj {
	return &Obj{intrep: DoubleType(f)}
}

// NewBool creates a value representing a boolean as "1" or "0".
func NewBool(b bool) *Obj {
	if b {
		return &Obj{bytes: "1", intrep: IntType(1)}
	}
	return &Obj{bytes: "0", intrep: IntType(0)}
}

// NewList creates a value with a cached list representation.
// The element objects are shared, not copied.
func NewList(items ...*Obj) *Obj {
	return &Obj{intrep: ListType(items)}
}

// NewDict creates a value with a cached dict representation built from
// alternating key/value pairs. Later duplicate keys overwrite earlier ones
// without disturbing insertion order.
func NewDict(pairs ...*Obj) *Obj {
	if len(pairs)%2 != 0 {
		panic("quill.NewDict: odd number of arguments")
	}
	d := &DictType{Items: make(map[string]*Obj, len(pairs)/2)}
	for i := 0; i < len(pairs); i += 2 {
		d.Put(pairs[i].String(), pairs[i+1])
	}
	return &Obj{intrep: d}
}

// emptyObj returns a fresh empty value. Callers may install an intrep, so
// this must not return a shared instance.
func emptyObj() *Obj {
	return &Obj{}
}

// AsInt returns the integer representation of a value, converting and
// caching it if necessary. The cached rep is not installed on failure.
func AsInt(o *Obj) (int64, error) {
	if o == nil {
		return 0, fmt.Errorf("expected integer but got \"\"")
	}
	if rep, ok := o.intrep.(IntoInt); ok {
		if n, ok := rep.IntoInt(); ok {
			return n, nil
		}
	}
	n, err := parseInt(o.String())
	if err != nil {
		return 0, err
	}
	o.setIntRep(IntType(n))
	return n, nil
}

// AsDouble returns the floating-point representation of a value, converting
// and caching it if necessary.
func AsDouble(o *Obj) (float64, error) {
	if o == nil {
		return 0, fmt.Errorf("expected floating-point number but got \"\"")
	}
	if rep, ok := o.intrep.(IntoDouble); ok {
		if f, ok := rep.IntoDouble(); ok {
			return f, nil
		}
	}
	// Integer strings are acceptable doubles.
	if n, err := parseInt(o.String()); err == nil {
		return float64(n), nil
	}
	f, err := parseFloat(o.String())
	if err != nil {
		return 0, err
	}
	o.setIntRep(DoubleType(f))
	return f, nil
}

// AsBool returns the boolean representation of a value.
// Truthy: "1", "true", "yes", "on"; falsy: "0", "false", "no", "off"
// (case-insensitive). Nonzero numbers are true.
func AsBool(o *Obj) (bool, error) {
	if o == nil {
		return false, fmt.Errorf("expected boolean but got \"\"")
	}
	if rep, ok := o.intrep.(IntoBool); ok {
		if b, ok := rep.IntoBool(); ok {
			return b, nil
		}
	}
	b, err := parseBool(o.String())
	if err != nil {
		return false, err
	}
	return b, nil
}

// AsList returns the list representation of a value, parsing and caching it
// if necessary. The cached rep is not installed on failure.
func AsList(o *Obj) ([]*Obj, error) {
	if o == nil {
		return nil, nil
	}
	if rep, ok := o.intrep.(IntoList); ok {
		if items, ok := rep.IntoList(); ok {
			return items, nil
		}
	}
	items, err := ParseList(o.String())
	if err != nil {
		return nil, err
	}
	o.setIntRep(ListType(items))
	return items, nil
}

// AsDict returns the dict representation of a value, parsing and caching it
// if necessary. The string form must be an even-length list.
func AsDict(o *Obj) (*DictType, error) {
	if o == nil {
		return &DictType{Items: map[string]*Obj{}}, nil
	}
	if rep, ok := o.intrep.(IntoDict); ok {
		if items, order, ok := rep.IntoDict(); ok {
			if d, isDict := o.intrep.(*DictType); isDict {
				return d, nil
			}
			d := &DictType{Items: items, Order: order}
			o.setIntRep(d)
			return d, nil
		}
	}
	items, err := ParseList(o.String())
	if err != nil {
		return nil, err
	}
	if len(items)%2 != 0 {
		return nil, fmt.Errorf("missing value to go with key")
	}
	d := &DictType{Items: make(map[string]*Obj, len(items)/2)}
	for i := 0; i < len(items); i += 2 {
		d.Put(items[i].String(), items[i+1])
	}
	o.setIntRep(d)
	return d, nil
}
