package edgeql

import (
	"github.com/zoobzio/edgeql/internal/types"
)

// SelectExpr is a select over a source set. Object sources are projected
// through a shape; other sources accept modifiers only.
type SelectExpr struct {
	Source Expression
	scope  *Scope
	proj   *projection
	mods   modifiers
	free   bool
	node
}

func (*SelectExpr) Kind() ExprKind { return ExprSelect }

// Scope returns the scope the shape was built against, or nil for non-object
// sources.
func (s *SelectExpr) Scope() *Scope { return s.scope }

// Shape returns the result shape of an object select, or nil.
func (s *SelectExpr) Shape() *types.ResultShape {
	if obj, ok := objectElement(s); ok {
		return obj.Shape()
	}
	return nil
}

// TryP steps into a pointer of the selected objects.
func (s *SelectExpr) TryP(name string) (*PathExpr, error) {
	return Step(s, name)
}

// P steps into a pointer of the selected objects and panics if it does not
// exist.
func (s *SelectExpr) P(name string) *PathExpr {
	return Must(Step(s, name))
}

// Select projects source through the shape built by fn. fn receives a scope
// bound to a single element of the source. For non-object sources the scope
// is nil and the shape may only hold modifiers.
func Select(source Expression, fn func(*Scope) Shape) (*SelectExpr, error) {
	if source == nil {
		return nil, TypeMismatchError{Type: "select", Reason: "source is required"}
	}
	obj, ok := objectElement(source)
	if !ok {
		var shape Shape
		if fn != nil {
			shape = fn(nil)
		}
		return selectNonObject(source, shape)
	}
	scope := newScope(obj, nil)
	var shape Shape
	if fn != nil {
		shape = fn(scope)
	}
	p := newProjector(obj, nil, scope, 0)
	proj, rs, mods := p.project(shape)
	if p.err != nil {
		return nil, p.err
	}
	return &SelectExpr{
		Source: source,
		scope:  scope,
		proj:   proj,
		mods:   mods,
		node:   newNode(types.NewShapeType(obj, rs), mods.apply(source.Cardinality())),
	}, nil
}

// SelectShape projects source through a fixed shape.
func SelectShape(source Expression, shape Shape) (*SelectExpr, error) {
	return Select(source, func(*Scope) Shape { return shape })
}

func selectNonObject(source Expression, shape Shape) (*SelectExpr, error) {
	p := &projector{}
	n := p.normalize(shape)
	if p.err != nil {
		return nil, p.err
	}
	if len(n.order) > 0 || len(n.polys) > 0 {
		return nil, TypeMismatchError{Type: source.Element().Name(), Reason: "only object selects accept shape fields"}
	}
	return &SelectExpr{
		Source: source,
		mods:   n.mods,
		node:   newNode(source.Element(), n.mods.apply(source.Cardinality())),
	}, nil
}

// SelectFree selects a free object built from computed fields. The result
// cardinality is One.
func SelectFree(shape Shape) (*SelectExpr, error) {
	obj := types.FreeObjectType
	p := newProjector(obj, nil, nil, 0)
	proj := &projection{}
	rs := &types.ResultShape{}
	n := p.normalize(shape)
	if p.err != nil {
		return nil, p.err
	}
	if len(n.polys) > 0 || !n.mods.empty() {
		return nil, TypeMismatchError{Type: obj.Name(), Reason: "free objects only accept computed fields"}
	}
	for _, name := range n.order {
		item := n.fields[name]
		if item.kind != fieldComputed {
			return nil, TypeMismatchError{Type: obj.Name(), Field: name, Reason: "free objects only accept computed fields"}
		}
		f := p.resolveField(obj, item)
		if p.err != nil {
			return nil, p.err
		}
		proj.fields = append(proj.fields, f)
		rs.Fields = append(rs.Fields, f.result)
	}
	return &SelectExpr{
		proj: proj,
		free: true,
		node: newNode(types.NewShapeType(obj, rs), One),
	}, nil
}
