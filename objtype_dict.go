package quill

import "strings"

// DictType is the internal representation for dictionary values.
// Iteration order is key insertion order.
type DictType struct {
	Items map[string]*Obj
	Order []string
}

func (t *DictType) Name() string { return "dict" }

func (t *DictType) Dup() ObjType {
	newItems := make(map[string]*Obj, len(t.Items))
	for k, v := range t.Items {
		newItems[k] = v
	}
	newOrder := make([]string, len(t.Order))
	copy(newOrder, t.Order)
	return &DictType{Items: newItems, Order: newOrder}
}

func (t *DictType) UpdateString() string {
	var result strings.Builder
	for i, key := range t.Order {
		if i > 0 {
			result.WriteByte(' ')
		}
		result.WriteString(FormatListElement(key))
		result.WriteByte(' ')
		result.WriteString(FormatListElement(t.Items[key].String()))
	}
	return result.String()
}

func (t *DictType) IntoDict() (map[string]*Obj, []string, bool) {
	return t.Items, t.Order, true
}

func (t *DictType) IntoList() ([]*Obj, bool) {
	list := make([]*Obj, 0, len(t.Order)*2)
	for _, k := range t.Order {
		list = append(list, NewString(k), t.Items[k])
	}
	return list, true
}

// Get returns the value for key and whether it was present.
func (t *DictType) Get(key string) (*Obj, bool) {
	v, ok := t.Items[key]
	return v, ok
}

// Put sets key to value, appending key to the order when new.
func (t *DictType) Put(key string, value *Obj) {
	if _, exists := t.Items[key]; !exists {
		t.Order = append(t.Order, key)
	}
	t.Items[key] = value
}

// Remove deletes key, preserving the order of the remaining keys.
func (t *DictType) Remove(key string) {
	if _, exists := t.Items[key]; !exists {
		return
	}
	delete(t.Items, key)
	for i, k := range t.Order {
		if k == key {
			t.Order = append(t.Order[:i], t.Order[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (t *DictType) Len() int { return len(t.Items) }
