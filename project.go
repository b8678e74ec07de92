package edgeql

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/zoobzio/edgeql/internal/types"
)

// modifiers are the filter, order and pagination clauses of a select.
type modifiers struct {
	filter     Expression
	limit      Expression
	offset     Expression
	order      []OrderTerm
	limitN     int64
	limitKnown bool
	single     bool
}

func (m modifiers) empty() bool {
	return m.filter == nil && m.limit == nil && m.offset == nil && len(m.order) == 0 && !m.single
}

// apply adjusts a cardinality for the modifiers. Filters and offsets admit
// an empty result; limit 0 is Empty, limit 1 caps the upper bound and any
// other limit admits an empty result; filter_single forces AtMostOne last.
func (m modifiers) apply(c Cardinality) Cardinality {
	if m.filter != nil || m.offset != nil {
		c = types.OverrideLowerBound(c, types.Zero)
	}
	if m.limit != nil {
		switch {
		case m.limitKnown && m.limitN == 0:
			c = Empty
		case m.limitKnown && m.limitN == 1:
			c = types.OverrideUpperBound(c, types.Single)
		default:
			c = types.OverrideLowerBound(c, types.Zero)
		}
	}
	if m.single {
		c = AtMostOne
	}
	return c
}

// projection is a resolved shape, kept for rendering.
type projection struct {
	fields   []*projectedField
	typename bool
}

// projectedField is one resolved shape element.
type projectedField struct {
	expr    Expression
	poly    *ObjectType
	nested  *projection
	scope   *Scope
	result  *types.ResultField
	name    string
	mods    modifiers
	kind    fieldKind
	linkPtr bool
}

// projector resolves a shape against an object type. It stops at the
// first error.
type projector struct {
	err   error
	obj   *ObjectType
	link  *LinkDesc
	scope *Scope
	depth int
}

func newProjector(obj *ObjectType, link *LinkDesc, scope *Scope, depth int) *projector {
	return &projector{obj: obj, link: link, scope: scope, depth: depth}
}

func (p *projector) typeName() string {
	if p.obj == nil {
		return "select"
	}
	return p.obj.Name()
}

type normalizedShape struct {
	fields map[string]fieldItem
	order  []string
	polys  []*PolyShapeElement
	mods   modifiers
}

func (p *projector) normalize(shape Shape) normalizedShape {
	n := normalizedShape{fields: make(map[string]fieldItem)}
	for _, item := range shape {
		if p.err != nil {
			break
		}
		switch v := item.(type) {
		case fieldItem:
			if v.kind == fieldExclude {
				if _, ok := n.fields[v.name]; ok {
					delete(n.fields, v.name)
					n.order = removeName(n.order, v.name)
				}
				continue
			}
			if _, ok := n.fields[v.name]; !ok {
				n.order = append(n.order, v.name)
			}
			n.fields[v.name] = v
		case *PolyShapeElement:
			n.polys = append(n.polys, v)
		case filterItem:
			p.setFilter(&n.mods, v.expr, v.single)
		case exclusiveItem:
			p.setExclusiveFilter(&n.mods, v.values)
		case orderItem:
			p.setOrder(&n.mods, v.terms)
		case limitItem:
			n.mods.limit, n.mods.limitN, n.mods.limitKnown = p.pagination("limit", v.value)
		case offsetItem:
			n.mods.offset, _, _ = p.pagination("offset", v.value)
		case nil:
			p.err = TypeMismatchError{Type: p.typeName(), Reason: "nil shape item"}
		}
	}
	return n
}

func removeName(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

func (p *projector) setFilter(m *modifiers, expr Expression, single bool) {
	if expr == nil {
		p.err = TypeMismatchError{Type: p.typeName(), Reason: "filter expression is required"}
		return
	}
	if !extendsAny(expr.Element(), "std::bool") {
		p.err = TypeMismatchError{Type: p.typeName(), Reason: "filter must be std::bool, got " + expr.Element().Name()}
		return
	}
	m.filter = expr
	m.single = single
}

func (p *projector) setExclusiveFilter(m *modifiers, values map[string]any) {
	if p.obj == nil || p.scope == nil {
		p.err = TypeMismatchError{Type: p.typeName(), Reason: "exclusive filters require an object select"}
		return
	}
	keys := sortedKeys(values)
	if len(keys) == 0 || !p.obj.IsExclusive(keys...) {
		p.err = UnknownFieldError{Type: p.obj.Name(), Field: "exclusive(" + strings.Join(keys, ", ") + ")"}
		return
	}
	var cond Expression
	for _, k := range keys {
		path, err := Step(p.scope.Expr(), k)
		if err != nil {
			p.err = err
			return
		}
		eq, err := Op(EQ, path, values[k])
		if err != nil {
			p.err = err
			return
		}
		if cond == nil {
			cond = eq
			continue
		}
		if cond, err = Op(AND, cond, eq); err != nil {
			p.err = err
			return
		}
	}
	m.filter = cond
	m.single = true
}

func (p *projector) setOrder(m *modifiers, terms []OrderTerm) {
	for _, t := range terms {
		if t.Expr == nil || types.IsObjectType(t.Expr.Element()) {
			p.err = TypeMismatchError{Type: p.typeName(), Reason: "order by requires a non-object expression"}
			return
		}
	}
	m.order = append([]OrderTerm(nil), terms...)
}

// pagination resolves a limit or offset value. Go integers are known at
// construction time; integer expressions are not.
func (p *projector) pagination(clause string, v any) (Expression, int64, bool) {
	if e, ok := v.(Expression); ok {
		if !isInteger(e.Element()) {
			p.err = TypeMismatchError{Type: clause, Reason: "expected an integer expression, got " + e.Element().Name()}
			return nil, 0, false
		}
		return e, 0, false
	}
	rv := reflect.ValueOf(v)
	var n int64
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n = rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		n = int64(rv.Uint())
	default:
		p.err = TypeMismatchError{Type: clause, Reason: fmt.Sprintf("expected an integer, got %T", v)}
		return nil, 0, false
	}
	if n < 0 {
		p.err = TypeMismatchError{Type: clause, Reason: fmt.Sprintf("%s cannot be negative", clause)}
		return nil, 0, false
	}
	return Int64(n), n, true
}

// project resolves shape into a render projection, a result shape and the
// shape's modifiers.
func (p *projector) project(shape Shape) (*projection, *types.ResultShape, modifiers) {
	if p.depth > types.MaxNestingDepth {
		p.err = fmt.Errorf("maximum shape depth (%d) exceeded", types.MaxNestingDepth)
		return nil, nil, modifiers{}
	}
	n := p.normalize(shape)
	if p.err != nil {
		return nil, nil, modifiers{}
	}
	if len(n.order) == 0 && len(n.polys) == 0 {
		n.order = []string{types.PointerID}
		n.fields[types.PointerID] = fieldItem{name: types.PointerID, kind: fieldInclude}
	}

	covered := make(map[string]bool)
	polyFields := make([][]*projectedField, len(n.polys))
	for i, poly := range n.polys {
		polyFields[i] = p.projectPoly(poly)
		if p.err != nil {
			return nil, nil, modifiers{}
		}
		for _, f := range polyFields[i] {
			covered[f.name] = true
		}
	}

	proj := &projection{}
	rs := &types.ResultShape{}
	for _, name := range n.order {
		if covered[name] {
			continue
		}
		f := p.resolveField(p.obj, n.fields[name])
		if p.err != nil {
			return nil, nil, modifiers{}
		}
		proj.fields = append(proj.fields, f)
		rs.Fields = append(rs.Fields, f.result)
	}

	if len(n.polys) > 0 {
		proj.typename = true
		// Rows of the selected type itself get a branch after its subtypes.
		names := append(p.obj.PolyTypenames(), p.obj.Name())
		for _, name := range names {
			branch := &types.PolyBranch{
				Typename: name,
				Fields:   []*types.ResultField{{Name: types.TypenameField, Type: StdStr, Cardinality: One}},
			}
			for i, poly := range n.polys {
				if poly.subtype.Name() != name && !poly.subtype.HasPolyTypename(name) {
					continue
				}
				for _, f := range polyFields[i] {
					branch.Fields = replaceField(branch.Fields, f.result)
				}
			}
			rs.Branches = append(rs.Branches, branch)
		}
		for _, fields := range polyFields {
			proj.fields = append(proj.fields, fields...)
		}
	}
	return proj, rs, n.mods
}

func replaceField(fields []*types.ResultField, f *types.ResultField) []*types.ResultField {
	for i, existing := range fields {
		if existing.Name == f.Name {
			fields[i] = f
			return fields
		}
	}
	return append(fields, f)
}

func (p *projector) projectPoly(poly *PolyShapeElement) []*projectedField {
	if poly.subtype == nil {
		p.err = TypeMismatchError{Type: p.obj.Name(), Reason: "polymorphic element requires a subtype"}
		return nil
	}
	if !p.obj.CanNarrowTo(poly.subtype) {
		p.err = InvalidNarrowingError{Type: p.obj.Name(), Subtype: poly.subtype.Name()}
		return nil
	}
	sub := newProjector(poly.subtype, p.link, p.scope, p.depth)
	n := sub.normalize(poly.items)
	if sub.err != nil {
		p.err = sub.err
		return nil
	}
	if len(n.polys) > 0 || !n.mods.empty() {
		p.err = TypeMismatchError{Type: poly.subtype.Name(), Reason: "polymorphic elements may only contain fields"}
		return nil
	}
	fields := make([]*projectedField, 0, len(n.order))
	for _, name := range n.order {
		f := sub.resolveField(poly.subtype, n.fields[name])
		if sub.err != nil {
			p.err = sub.err
			return nil
		}
		f.poly = poly.subtype
		fields = append(fields, f)
	}
	return fields
}

// resolveField computes the result type of one shape key on obj.
func (p *projector) resolveField(obj *ObjectType, item fieldItem) *projectedField {
	f := &projectedField{name: item.name, kind: item.kind}
	if strings.HasPrefix(item.name, "@") {
		return p.resolveLinkProp(obj, item, f)
	}
	ptr, hasPtr := obj.Pointer(item.name)

	switch item.kind {
	case fieldComputed:
		if item.expr == nil {
			p.err = TypeMismatchError{Type: obj.Name(), Field: item.name, Reason: "computed field requires an expression"}
			return nil
		}
		card := item.expr.Cardinality()
		if hasPtr {
			card = ptr.GetCardinality()
		}
		f.expr = item.expr
		f.result = &types.ResultField{Name: item.name, Type: item.expr.Element(), Cardinality: card, Computed: true}
		return f
	case fieldNested:
		if !hasPtr {
			p.err = UnknownFieldError{Type: obj.Name(), Field: item.name}
			return nil
		}
		link, ok := ptr.(*LinkDesc)
		if !ok {
			p.err = TypeMismatchError{Type: obj.Name(), Field: item.name, Reason: "nested shapes require a link"}
			return nil
		}
		scope := newScope(link.Target, link)
		shape := item.shape
		if item.fn != nil {
			shape = item.fn(scope)
		}
		child := newProjector(link.Target, link, scope, p.depth+1)
		proj, rs, mods := child.project(shape)
		if child.err != nil {
			p.err = child.err
			return nil
		}
		f.nested, f.scope, f.mods, f.linkPtr = proj, scope, mods, true
		f.result = &types.ResultField{
			Name:        item.name,
			Type:        types.NewShapeType(link.Target, rs),
			Cardinality: mods.apply(Multiply(One, link.Cardinality)),
		}
		return f
	default:
		if !hasPtr {
			p.err = UnknownFieldError{Type: obj.Name(), Field: item.name}
			return nil
		}
		element := ptr.GetTarget()
		if link, ok := ptr.(*LinkDesc); ok {
			element = link.Target.DefaultShape()
			f.linkPtr = true
		}
		f.result = &types.ResultField{Name: item.name, Type: element, Cardinality: Multiply(One, ptr.GetCardinality())}
		return f
	}
}

func (p *projector) resolveLinkProp(obj *ObjectType, item fieldItem, f *projectedField) *projectedField {
	if p.link == nil {
		p.err = UnknownFieldError{Type: obj.Name(), Field: item.name}
		return nil
	}
	prop, ok := p.link.Property(item.name)
	if !ok {
		p.err = UnknownFieldError{Type: obj.Name(), Field: item.name}
		return nil
	}
	switch item.kind {
	case fieldComputed:
		if item.expr == nil {
			p.err = TypeMismatchError{Type: obj.Name(), Field: item.name, Reason: "computed field requires an expression"}
			return nil
		}
		f.expr = item.expr
		f.result = &types.ResultField{Name: item.name, Type: item.expr.Element(), Cardinality: prop.Cardinality, Computed: true, LinkProp: true}
	case fieldNested:
		p.err = TypeMismatchError{Type: obj.Name(), Field: item.name, Reason: "link properties cannot have nested shapes"}
		return nil
	default:
		f.result = &types.ResultField{Name: item.name, Type: prop.Target, Cardinality: Multiply(One, prop.Cardinality), LinkProp: true}
	}
	return f
}
