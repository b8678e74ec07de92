package types

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// TypeKind identifies the family of a type descriptor.
type TypeKind string

const (
	KindScalar     TypeKind = "scalar"
	KindEnum       TypeKind = "enum"
	KindObject     TypeKind = "object"
	KindArray      TypeKind = "array"
	KindTuple      TypeKind = "tuple"
	KindNamedTuple TypeKind = "namedtuple"
	KindRange      TypeKind = "range"
	KindMultiRange TypeKind = "multirange"
)

// BaseType is the root of every type descriptor.
// This is a sealed interface: only descriptors in this package implement it.
type BaseType interface {
	Kind() TypeKind
	Name() string
	// identity is the structural key used for type equality.
	identity() string
}

// SameType reports whether a and b describe the same type.
func SameType(a, b BaseType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.identity() == b.identity()
}

// IdentityKey returns the structural key of t. It equals t.Name() for every
// kind except named tuples (and collections containing them), whose field
// order does not take part in identity.
func IdentityKey(t BaseType) string {
	return t.identity()
}

// HostTypes describes the Go representations of a scalar.
type HostTypes struct {
	Runtime reflect.Type   // decoded query results
	Const   reflect.Type   // literal values
	Args    []reflect.Type // accepted query arguments
}

// AcceptsArg reports whether t is an accepted argument representation.
func (h HostTypes) AcceptsArg(t reflect.Type) bool {
	for _, a := range h.Args {
		if t == a || (t != nil && t.AssignableTo(a)) {
			return true
		}
	}
	return false
}

// CoerceFunc converts a Go value into a scalar's constant representation.
type CoerceFunc func(v any) (any, error)

// ScalarType is a scalar descriptor.
type ScalarType struct {
	host   HostTypes
	coerce CoerceFunc
	base   *ScalarType
	name   string
}

// NewScalarType creates a scalar. The constant host type must be one of the
// accepted argument types.
func NewScalarType(name string, host HostTypes, coerce CoerceFunc) (*ScalarType, error) {
	if name == "" {
		return nil, fmt.Errorf("scalar type name is required")
	}
	if host.Const == nil {
		return nil, TypeMismatchError{Type: name, Reason: "scalar requires a constant host type"}
	}
	if !host.AcceptsArg(host.Const) {
		return nil, TypeMismatchError{
			Type:   name,
			Reason: fmt.Sprintf("constant type %s is not an accepted argument type", host.Const),
		}
	}
	if host.Runtime == nil {
		host.Runtime = host.Const
	}
	return &ScalarType{name: name, host: host, coerce: coerce}, nil
}

// DeriveScalarType creates a custom scalar extending base. It inherits the
// host types and literal coercion of base.
func DeriveScalarType(name string, base *ScalarType) (*ScalarType, error) {
	if name == "" {
		return nil, fmt.Errorf("scalar type name is required")
	}
	if base == nil {
		return nil, TypeMismatchError{Type: name, Reason: "custom scalar requires a base scalar"}
	}
	return &ScalarType{name: name, base: base}, nil
}

func (*ScalarType) Kind() TypeKind        { return KindScalar }
func (s *ScalarType) Name() string        { return s.name }
func (s *ScalarType) identity() string    { return s.name }
func (s *ScalarType) String() string      { return s.name }
func (s *ScalarType) Base() *ScalarType   { return s.base }
func (s *ScalarType) Host() HostTypes     { return s.Root().host }
func (s *ScalarType) coercer() CoerceFunc { return s.Root().coerce }

// Root returns the outermost base scalar, or s itself.
func (s *ScalarType) Root() *ScalarType {
	r := s
	for r.base != nil {
		r = r.base
	}
	return r
}

// Extends reports whether s is name or derives from it.
func (s *ScalarType) Extends(name string) bool {
	for r := s; r != nil; r = r.base {
		if r.name == name {
			return true
		}
	}
	return false
}

// Coerce converts v into the constant representation of s.
func (s *ScalarType) Coerce(v any) (any, error) {
	if v == nil {
		return nil, TypeMismatchError{Type: s.name, Reason: "nil is not a valid literal"}
	}
	if fn := s.coercer(); fn != nil {
		out, err := fn(v)
		if err != nil {
			return nil, TypeMismatchError{Type: s.name, Reason: err.Error()}
		}
		return out, nil
	}
	host := s.Host()
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(host.Const) {
		return nil, TypeMismatchError{
			Type:   s.name,
			Reason: fmt.Sprintf("expected %s, got %T", host.Const, v),
		}
	}
	return v, nil
}

// EnumType is an enumeration of string members.
type EnumType struct {
	index   map[string]struct{}
	name    string
	members []string
}

// NewEnumType creates an enum. Members must be non-empty and distinct.
func NewEnumType(name string, members ...string) (*EnumType, error) {
	if name == "" {
		return nil, fmt.Errorf("enum type name is required")
	}
	if len(members) == 0 {
		return nil, TypeMismatchError{Type: name, Reason: "enum requires at least one member"}
	}
	e := &EnumType{name: name, index: make(map[string]struct{}, len(members))}
	for _, m := range members {
		if m == "" {
			return nil, TypeMismatchError{Type: name, Reason: "enum members cannot be empty"}
		}
		if _, dup := e.index[m]; dup {
			return nil, TypeMismatchError{Type: name, Field: m, Reason: "duplicate enum member"}
		}
		e.index[m] = struct{}{}
		e.members = append(e.members, m)
	}
	return e, nil
}

func (*EnumType) Kind() TypeKind     { return KindEnum }
func (e *EnumType) Name() string     { return e.name }
func (e *EnumType) identity() string { return e.name }
func (e *EnumType) String() string   { return e.name }

// Members returns the ordered enum members.
func (e *EnumType) Members() []string {
	return append([]string(nil), e.members...)
}

// Has reports whether m is a member.
func (e *EnumType) Has(m string) bool {
	_, ok := e.index[m]
	return ok
}

// ArrayType is array<element>.
type ArrayType struct {
	element BaseType
	name    string
}

func (*ArrayType) Kind() TypeKind      { return KindArray }
func (a *ArrayType) Name() string      { return a.name }
func (a *ArrayType) identity() string  { return "array<" + a.element.identity() + ">" }
func (a *ArrayType) String() string    { return a.name }
func (a *ArrayType) Element() BaseType { return a.element }

// TupleType is a positional tuple.
type TupleType struct {
	name  string
	items []BaseType
}

func (*TupleType) Kind() TypeKind   { return KindTuple }
func (t *TupleType) Name() string   { return t.name }
func (t *TupleType) String() string { return t.name }

func (t *TupleType) identity() string {
	keys := make([]string, len(t.items))
	for i, item := range t.items {
		keys[i] = item.identity()
	}
	return "tuple<" + strings.Join(keys, ", ") + ">"
}

// Items returns the tuple item types.
func (t *TupleType) Items() []BaseType {
	return append([]BaseType(nil), t.items...)
}

// Len is the number of items.
func (t *TupleType) Len() int { return len(t.items) }

// Item returns the i-th item type.
func (t *TupleType) Item(i int) (BaseType, bool) {
	if i < 0 || i >= len(t.items) {
		return nil, false
	}
	return t.items[i], true
}

// NamedType pairs a field name with its type.
type NamedType struct {
	Type BaseType
	Name string
}

// NamedTupleType is a tuple with named fields.
type NamedTupleType struct {
	name   string
	fields []NamedType
}

func (*NamedTupleType) Kind() TypeKind   { return KindNamedTuple }
func (t *NamedTupleType) Name() string   { return t.name }
func (t *NamedTupleType) String() string { return t.name }

func (t *NamedTupleType) identity() string {
	keys := make([]string, len(t.fields))
	for i, f := range t.fields {
		keys[i] = f.Name + ": " + f.Type.identity()
	}
	sort.Strings(keys)
	return "tuple<" + strings.Join(keys, ", ") + ">"
}

// Fields returns the fields in declaration order.
func (t *NamedTupleType) Fields() []NamedType {
	return append([]NamedType(nil), t.fields...)
}

// Field looks up a field type by name.
func (t *NamedTupleType) Field(name string) (BaseType, bool) {
	for _, f := range t.fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// RangeType is range<element>.
type RangeType struct {
	element *ScalarType
	name    string
}

func (*RangeType) Kind() TypeKind         { return KindRange }
func (r *RangeType) Name() string         { return r.name }
func (r *RangeType) identity() string     { return r.name }
func (r *RangeType) String() string       { return r.name }
func (r *RangeType) Element() *ScalarType { return r.element }

// MultiRangeType is multirange<element>.
type MultiRangeType struct {
	element *ScalarType
	name    string
}

func (*MultiRangeType) Kind() TypeKind         { return KindMultiRange }
func (r *MultiRangeType) Name() string         { return r.name }
func (r *MultiRangeType) identity() string     { return r.name }
func (r *MultiRangeType) String() string       { return r.name }
func (r *MultiRangeType) Element() *ScalarType { return r.element }

// Classification predicates.

func IsScalarType(t BaseType) bool     { return t != nil && t.Kind() == KindScalar }
func IsEnumType(t BaseType) bool       { return t != nil && t.Kind() == KindEnum }
func IsObjectType(t BaseType) bool     { return t != nil && t.Kind() == KindObject }
func IsArrayType(t BaseType) bool      { return t != nil && t.Kind() == KindArray }
func IsTupleType(t BaseType) bool      { return t != nil && t.Kind() == KindTuple }
func IsNamedTupleType(t BaseType) bool { return t != nil && t.Kind() == KindNamedTuple }
func IsRangeType(t BaseType) bool      { return t != nil && t.Kind() == KindRange }
func IsMultiRangeType(t BaseType) bool { return t != nil && t.Kind() == KindMultiRange }
