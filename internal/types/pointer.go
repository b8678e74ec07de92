package types

import "strings"

// PointerKind distinguishes properties from links.
type PointerKind string

const (
	PointerProperty PointerKind = "property"
	PointerLink     PointerKind = "link"
)

// Reserved pointer names present on every object type.
const (
	PointerID       = "id"
	PointerTypeLink = "__type__"
	// TypenameField is the discriminant carried by polymorphic result branches.
	TypenameField = "__typename__"
)

// PointerFlags are the independent boolean attributes of a pointer.
type PointerFlags struct {
	Exclusive  bool
	Computed   bool
	Readonly   bool
	HasDefault bool
}

// Pointer is a property or link on an object type.
// This is a sealed interface: only PropertyDesc and LinkDesc implement it.
type Pointer interface {
	PointerKind() PointerKind
	GetTarget() BaseType
	GetCardinality() Cardinality
	GetFlags() PointerFlags
	pointerNode()
}

// PropertyDesc describes a scalar-, enum- or collection-valued pointer.
type PropertyDesc struct {
	Target      BaseType
	Cardinality Cardinality
	PointerFlags
}

func (*PropertyDesc) PointerKind() PointerKind      { return PointerProperty }
func (p *PropertyDesc) GetTarget() BaseType         { return p.Target }
func (p *PropertyDesc) GetCardinality() Cardinality { return p.Cardinality }
func (p *PropertyDesc) GetFlags() PointerFlags      { return p.PointerFlags }
func (*PropertyDesc) pointerNode()                  {}

// NamedProperty is a link property. Name is stored without the leading "@".
type NamedProperty struct {
	Desc *PropertyDesc
	Name string
}

// LinkDesc describes an object-valued pointer. Properties are attached to
// the edge itself, not to the target.
type LinkDesc struct {
	Target      *ObjectType
	Properties  []NamedProperty
	Cardinality Cardinality
	PointerFlags
}

func (*LinkDesc) PointerKind() PointerKind      { return PointerLink }
func (l *LinkDesc) GetTarget() BaseType         { return l.Target }
func (l *LinkDesc) GetCardinality() Cardinality { return l.Cardinality }
func (l *LinkDesc) GetFlags() PointerFlags      { return l.PointerFlags }
func (*LinkDesc) pointerNode()                  {}

// Property looks up a link property by name, with or without the "@" prefix.
func (l *LinkDesc) Property(name string) (*PropertyDesc, bool) {
	name = strings.TrimPrefix(name, "@")
	for _, p := range l.Properties {
		if p.Name == name {
			return p.Desc, true
		}
	}
	return nil, false
}

// IsBacklink reports whether a pointer name denotes a backlink ("<name").
func IsBacklink(name string) bool {
	return strings.HasPrefix(name, "<")
}

// IsReservedPointer reports whether name is one of the implicit pointers.
func IsReservedPointer(name string) bool {
	return name == PointerID || name == PointerTypeLink
}

func validatePropertyDesc(owner, name string, p *PropertyDesc) error {
	if p == nil || p.Target == nil {
		return TypeMismatchError{Type: owner, Field: name, Reason: "property requires a target type"}
	}
	if IsObjectType(p.Target) {
		return TypeMismatchError{Type: owner, Field: name, Reason: "property target cannot be an object type"}
	}
	if !p.Cardinality.Valid() {
		return TypeMismatchError{Type: owner, Field: name, Reason: "invalid cardinality"}
	}
	return nil
}

func validateLinkDesc(owner, name string, l *LinkDesc) error {
	if l == nil || l.Target == nil {
		return TypeMismatchError{Type: owner, Field: name, Reason: "link requires a target object type"}
	}
	if !l.Cardinality.Valid() {
		return TypeMismatchError{Type: owner, Field: name, Reason: "invalid cardinality"}
	}
	seen := make(map[string]bool, len(l.Properties))
	for _, p := range l.Properties {
		if p.Name == "" || seen[p.Name] {
			return TypeMismatchError{Type: owner, Field: name + "@" + p.Name, Reason: "link property names must be unique and non-empty"}
		}
		seen[p.Name] = true
		if err := validatePropertyDesc(owner, name+"@"+p.Name, p.Desc); err != nil {
			return err
		}
	}
	return nil
}
