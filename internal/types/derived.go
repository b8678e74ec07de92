package types

import (
	"fmt"
	"strings"
	"sync"
)

// TypeSet pairs an element type with a cardinality.
type TypeSet struct {
	Element     BaseType
	Cardinality Cardinality
}

// String renders the set as element type plus a cardinality suffix:
// "?" for AtMostOne, "[+]" for AtLeastOne, "[]" for Many and "[0]" for Empty.
func (ts TypeSet) String() string {
	name := "<nil>"
	if ts.Element != nil {
		name = ts.Element.Name()
		if o, ok := ts.Element.(*ObjectType); ok && o.shape != nil {
			name = o.shape.String()
		}
	}
	switch ts.Cardinality {
	case Empty:
		return name + "[0]"
	case AtMostOne:
		return name + "?"
	case AtLeastOne:
		return name + "[+]"
	case Many:
		return name + "[]"
	default:
		return name
	}
}

// RangeElements lists the scalars that may be wrapped by ranges.
var RangeElements = []string{
	"std::int32",
	"std::int64",
	"std::float32",
	"std::float64",
	"std::decimal",
	"std::datetime",
	"cal::local_datetime",
	"cal::local_date",
}

// derived memoizes collection types by kind and the identity of their
// component types, so same-named types from separate registries never share
// a collection.
var derived sync.Map

func intern[T BaseType](t T, key string) T {
	if !memoizable(t) {
		return t
	}
	actual, _ := derived.LoadOrStore(key, t)
	return actual.(T)
}

// derivedKey identifies a collection by kind, field labels and the
// addresses of its component types.
func derivedKey(kind string, labels []string, items ...BaseType) string {
	var b strings.Builder
	b.WriteString(kind)
	for i, item := range items {
		b.WriteByte('|')
		if labels != nil {
			b.WriteString(labels[i])
			b.WriteByte(':')
		}
		fmt.Fprintf(&b, "%p", item)
	}
	return b.String()
}

// memoizable is false for collections over projection types, whose names
// do not capture their shape.
func memoizable(t BaseType) bool {
	switch v := t.(type) {
	case *ObjectType:
		return v.shape == nil
	case *ArrayType:
		return memoizable(v.element)
	case *TupleType:
		for _, item := range v.items {
			if !memoizable(item) {
				return false
			}
		}
	case *NamedTupleType:
		for _, f := range v.fields {
			if !memoizable(f.Type) {
				return false
			}
		}
	}
	return true
}

// ArrayOf returns array<element>. Arrays cannot nest.
func ArrayOf(element BaseType) (*ArrayType, error) {
	if element == nil {
		return nil, TypeMismatchError{Type: "array", Reason: "element type is required"}
	}
	name := "array<" + element.Name() + ">"
	if IsArrayType(element) {
		return nil, TypeMismatchError{Type: name, Reason: "arrays cannot contain arrays"}
	}
	return intern(&ArrayType{element: element, name: name}, derivedKey("array", nil, element)), nil
}

// TupleOf returns the positional tuple over items.
func TupleOf(items ...BaseType) (*TupleType, error) {
	names := make([]string, len(items))
	for i, item := range items {
		if item == nil {
			return nil, TypeMismatchError{Type: "tuple", Reason: "item type is required"}
		}
		names[i] = item.Name()
	}
	name := "tuple<" + strings.Join(names, ", ") + ">"
	return intern(&TupleType{items: append([]BaseType(nil), items...), name: name}, derivedKey("tuple", nil, items...)), nil
}

// NamedTupleOf returns the named tuple over fields, displayed in the given
// order.
func NamedTupleOf(fields ...NamedType) (*NamedTupleType, error) {
	parts := make([]string, len(fields))
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		if f.Name == "" || f.Type == nil {
			return nil, TypeMismatchError{Type: "tuple", Field: f.Name, Reason: "named tuple fields require a name and a type"}
		}
		if seen[f.Name] {
			return nil, TypeMismatchError{Type: "tuple", Field: f.Name, Reason: "duplicate named tuple field"}
		}
		seen[f.Name] = true
		parts[i] = f.Name + ": " + f.Type.Name()
	}
	name := "tuple<" + strings.Join(parts, ", ") + ">"
	labels := make([]string, len(fields))
	items := make([]BaseType, len(fields))
	for i, f := range fields {
		labels[i], items[i] = f.Name, f.Type
	}
	nt := &NamedTupleType{fields: append([]NamedType(nil), fields...), name: name}
	return intern(nt, derivedKey("namedtuple", labels, items...)), nil
}

// RangeOf returns range<element>.
func RangeOf(element *ScalarType) (*RangeType, error) {
	if err := checkRangeElement("range", element); err != nil {
		return nil, err
	}
	return intern(&RangeType{element: element, name: "range<" + element.Name() + ">"}, derivedKey("range", nil, element)), nil
}

// MultiRangeOf returns multirange<element>.
func MultiRangeOf(element *ScalarType) (*MultiRangeType, error) {
	if err := checkRangeElement("multirange", element); err != nil {
		return nil, err
	}
	return intern(&MultiRangeType{element: element, name: "multirange<" + element.Name() + ">"}, derivedKey("multirange", nil, element)), nil
}

func checkRangeElement(kind string, element *ScalarType) error {
	if element == nil {
		return TypeMismatchError{Type: kind, Reason: "element type is required"}
	}
	for _, allowed := range RangeElements {
		if element.Extends(allowed) {
			return nil
		}
	}
	return TypeMismatchError{
		Type:   kind + "<" + element.Name() + ">",
		Reason: element.Name() + " cannot be used in a range",
	}
}
