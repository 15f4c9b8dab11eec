package dom

import "strings"

// Attribute is one name/value/namespace triple on an element.
type Attribute struct {
	// Namespace is the attribute namespace (empty for plain HTML attributes).
	Namespace string

	// Name is the attribute name. HTML attribute names are folded to
	// lowercase on the way in; foreign-content attributes may carry
	// mixed case.
	Name string

	Value string
}

// Attributes is an ordered, case-insensitive-for-HTML attribute set.
// Order of insertion is preserved because serializers must reproduce
// the source order, not an arbitrary one.
type Attributes struct {
	items []Attribute
}

// NewAttributes creates a new empty Attributes collection.
func NewAttributes() *Attributes {
	return &Attributes{}
}

func foldName(name string) string { return strings.ToLower(name) }

// indexOf returns the slice index of the attribute matching namespace
// and name, or -1. Namespaced lookups compare names byte-for-byte;
// the plain (namespace == "") case folds case, matching how HTML
// attribute names are compared.
func (a *Attributes) indexOf(namespace, name string) int {
	for i := range a.items {
		item := &a.items[i]
		if item.Namespace != namespace {
			continue
		}
		if namespace == "" {
			if strings.EqualFold(item.Name, name) {
				return i
			}
			continue
		}
		if item.Name == name {
			return i
		}
	}
	return -1
}

// Get returns the value of a plain (non-namespaced) attribute by name.
func (a *Attributes) Get(name string) (string, bool) {
	return a.GetNS("", name)
}

// GetNS returns the value of a namespaced attribute.
func (a *Attributes) GetNS(namespace, name string) (string, bool) {
	if i := a.indexOf(namespace, name); i >= 0 {
		return a.items[i].Value, true
	}
	return "", false
}

// Set sets or updates a plain attribute. The name is folded to
// lowercase, since that is what a conforming HTML attribute name is.
func (a *Attributes) Set(name, value string) {
	a.SetNS("", foldName(name), value)
}

// SetNS sets or updates a namespaced attribute, appending a new entry
// if one with this namespace/name doesn't already exist.
func (a *Attributes) SetNS(namespace, name, value string) {
	if i := a.indexOf(namespace, name); i >= 0 {
		a.items[i].Value = value
		return
	}
	a.items = append(a.items, Attribute{Namespace: namespace, Name: name, Value: value})
}

// Has reports whether a plain attribute with the given name exists.
func (a *Attributes) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// HasNS reports whether a namespaced attribute exists.
func (a *Attributes) HasNS(namespace, name string) bool {
	_, ok := a.GetNS(namespace, name)
	return ok
}

// Remove deletes a plain attribute by name, if present.
func (a *Attributes) Remove(name string) {
	a.RemoveNS("", name)
}

// RemoveNS deletes a namespaced attribute, if present.
func (a *Attributes) RemoveNS(namespace, name string) {
	if i := a.indexOf(namespace, name); i >= 0 {
		a.items = append(a.items[:i], a.items[i+1:]...)
	}
}

// All returns a defensive copy of the attributes in insertion order.
func (a *Attributes) All() []Attribute {
	out := make([]Attribute, len(a.items))
	copy(out, a.items)
	return out
}

// Len reports how many attributes are set.
func (a *Attributes) Len() int {
	return len(a.items)
}

// Clone returns an independent copy of the attribute set.
func (a *Attributes) Clone() *Attributes {
	return &Attributes{items: a.All()}
}
