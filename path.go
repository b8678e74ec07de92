package edgeql

import (
	"strings"

	"github.com/zoobzio/edgeql/internal/types"
)

// PathExpr is a root object set or a step through a pointer. Parent is a
// back-reference used for rendering only.
type PathExpr struct {
	Parent  Expression
	Pointer Pointer
	scope   *Scope
	Name    string
	node
}

// Kind is PathNode for object-valued paths and PathLeaf otherwise.
func (p *PathExpr) Kind() ExprKind {
	if types.IsObjectType(p.Element()) {
		return ExprPathNode
	}
	return ExprPathLeaf
}

// IsRoot reports whether p is the set of all objects of a type.
func (p *PathExpr) IsRoot() bool { return p.Parent == nil && p.scope == nil }

// IsLinkProp reports whether p addresses a link property.
func (p *PathExpr) IsLinkProp() bool { return strings.HasPrefix(p.Name, "@") }

// Root is the set of all objects of type t, with cardinality Many.
func Root(t *ObjectType) *PathExpr {
	return &PathExpr{Name: t.Name(), node: newNode(t, Many)}
}

// TryP steps into the named pointer of p.
func (p *PathExpr) TryP(name string) (*PathExpr, error) {
	return Step(p, name)
}

// P steps into the named pointer of p and panics if it does not exist.
func (p *PathExpr) P(name string) *PathExpr {
	return Must(Step(p, name))
}

// Step follows pointer name from parent. The result cardinality is the
// product of the parent and pointer cardinalities. Links yield their target
// projected to {id}. Names starting with "@" address link properties.
func Step(parent Expression, name string) (*PathExpr, error) {
	if strings.HasPrefix(name, "@") {
		return LinkProp(parent, name)
	}
	obj, ok := objectElement(parent)
	if !ok {
		return nil, TypeMismatchError{Type: parent.Element().Name(), Field: name, Reason: "only object types have pointers"}
	}
	ptr, ok := obj.Pointer(name)
	if !ok {
		return computedStep(parent, obj, name)
	}
	element := ptr.GetTarget()
	if link, ok := ptr.(*LinkDesc); ok {
		element = link.Target.DefaultShape()
	}
	return &PathExpr{
		Parent:  parent,
		Pointer: ptr,
		Name:    name,
		node:    newNode(element, Multiply(parent.Cardinality(), ptr.GetCardinality())),
	}, nil
}

// computedStep follows a computed field of a shaped object type.
func computedStep(parent Expression, obj *ObjectType, name string) (*PathExpr, error) {
	var f *types.ResultField
	if shape := obj.Shape(); shape != nil {
		f, _ = shape.Field(name)
	}
	if f == nil || !f.Computed || f.LinkProp {
		return nil, UnknownFieldError{Type: obj.Name(), Field: name}
	}
	flags := types.PointerFlags{Computed: true, Readonly: true}
	var ptr Pointer = &PropertyDesc{Target: f.Type, Cardinality: f.Cardinality, PointerFlags: flags}
	if target, ok := f.Type.(*ObjectType); ok {
		ptr = &LinkDesc{Target: target, Cardinality: f.Cardinality, PointerFlags: flags}
	}
	return &PathExpr{
		Parent:  parent,
		Pointer: ptr,
		Name:    name,
		node:    newNode(f.Type, Multiply(parent.Cardinality(), f.Cardinality)),
	}, nil
}

// LinkProp follows link property name ("@name") of a path through a link.
func LinkProp(parent Expression, name string) (*PathExpr, error) {
	name = "@" + strings.TrimPrefix(name, "@")
	path, ok := parent.(*PathExpr)
	if !ok {
		return nil, UnknownFieldError{Type: parent.Element().Name(), Field: name}
	}
	link, ok := path.Pointer.(*LinkDesc)
	if !ok {
		return nil, UnknownFieldError{Type: parent.Element().Name(), Field: name}
	}
	prop, ok := link.Property(name)
	if !ok {
		return nil, UnknownFieldError{Type: parent.Element().Name(), Field: name}
	}
	return &PathExpr{
		Parent:  parent,
		Pointer: prop,
		Name:    name,
		node:    newNode(prop.Target, Multiply(parent.Cardinality(), prop.Cardinality)),
	}, nil
}

// TypeIntersectionExpr narrows an object set to a subtype.
type TypeIntersectionExpr struct {
	Expr    Expression
	Subtype *ObjectType
	node
}

func (*TypeIntersectionExpr) Kind() ExprKind { return ExprTypeIntersection }

// TryP steps into the named pointer of the narrowed set.
func (t *TypeIntersectionExpr) TryP(name string) (*PathExpr, error) {
	return Step(t, name)
}

// P steps into the named pointer of the narrowed set and panics if it does
// not exist.
func (t *TypeIntersectionExpr) P(name string) *PathExpr {
	return Must(Step(t, name))
}

// Is narrows expr to subtype. The cardinality is unchanged. The subtype must
// be the expression's own type or one of its declared polymorphic subtypes.
func Is(expr Expression, subtype *ObjectType) (*TypeIntersectionExpr, error) {
	obj, ok := objectElement(expr)
	if !ok {
		return nil, InvalidNarrowingError{Type: expr.Element().Name(), Subtype: subtype.Name()}
	}
	if !obj.CanNarrowTo(subtype) {
		return nil, InvalidNarrowingError{Type: obj.Name(), Subtype: subtype.Name()}
	}
	return &TypeIntersectionExpr{
		Expr:    expr,
		Subtype: subtype,
		node:    newNode(subtype, expr.Cardinality()),
	}, nil
}

// Scope is the single element currently being selected. Paths built from a
// scope render relative to the select subject (".name").
type Scope struct {
	path *PathExpr
}

func newScope(element *ObjectType, link *LinkDesc) *Scope {
	s := &Scope{}
	var ptr Pointer
	if link != nil {
		ptr = link
	}
	s.path = &PathExpr{Pointer: ptr, scope: s, node: newNode(element, One)}
	return s
}

// Expr returns the scope element as an expression.
func (s *Scope) Expr() *PathExpr { return s.path }

// Element returns the type of the scope element.
func (s *Scope) Element() *ObjectType {
	o, _ := objectElement(s.path)
	return o
}

// TryP steps into the named pointer of the scope element.
func (s *Scope) TryP(name string) (*PathExpr, error) {
	return Step(s.path, name)
}

// P steps into the named pointer of the scope element and panics if it does
// not exist.
func (s *Scope) P(name string) *PathExpr {
	return Must(Step(s.path, name))
}

// Is narrows the scope element to subtype.
func (s *Scope) Is(subtype *ObjectType) (*TypeIntersectionExpr, error) {
	return Is(s.path, subtype)
}
