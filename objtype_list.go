package quill

import "slices"

// ListType is the internal representation for list values.
type ListType []*Obj

func (t ListType) Name() string         { return "list" }
func (t ListType) Dup() ObjType         { return ListType(slices.Clone(t)) }
func (t ListType) UpdateString() string { return FormatList(t) }

func (t ListType) IntoList() ([]*Obj, bool) { return t, true }

func (t ListType) IntoDict() (map[string]*Obj, []string, bool) {
	if len(t)%2 != 0 {
		return nil, nil, false
	}
	items := make(map[string]*Obj, len(t)/2)
	var order []string
	for i := 0; i < len(t); i += 2 {
		key := t[i].String()
		if _, exists := items[key]; !exists {
			order = append(order, key)
		}
		items[key] = t[i+1]
	}
	return items, order, true
}
