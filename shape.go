package edgeql

// ShapeItem is one entry of a selection shape: a field or a modifier.
// This is a sealed interface: only items built by this package implement it.
type ShapeItem interface {
	shapeItem()
}

// Shape is an ordered selection descriptor. A later item with the same key
// replaces an earlier one.
type Shape []ShapeItem

type fieldKind int

const (
	fieldInclude fieldKind = iota
	fieldExclude
	fieldNested
	fieldComputed
)

type fieldItem struct {
	expr  Expression
	fn    func(*Scope) Shape
	name  string
	shape Shape
	kind  fieldKind
}

// PolyShapeElement is a shape entry scoped to a polymorphic subtype. As an
// expression it is one element of the subtype; it renders only inside a shape.
type PolyShapeElement struct {
	subtype *ObjectType
	items   Shape
	node
}

func (*PolyShapeElement) Kind() ExprKind { return ExprPolyShapeElement }

// Subtype returns the subtype the fields are read from.
func (e *PolyShapeElement) Subtype() *ObjectType { return e.subtype }

// Items returns the subtype fields.
func (e *PolyShapeElement) Items() Shape { return append(Shape(nil), e.items...) }

type filterItem struct {
	expr   Expression
	single bool
}

type exclusiveItem struct {
	values map[string]any
}

type orderItem struct {
	terms []OrderTerm
}

type limitItem struct {
	value any
}

type offsetItem struct {
	value any
}

func (fieldItem) shapeItem()     {}
func (*PolyShapeElement) shapeItem() {}
func (filterItem) shapeItem()    {}
func (exclusiveItem) shapeItem() {}
func (orderItem) shapeItem()     {}
func (limitItem) shapeItem()     {}
func (offsetItem) shapeItem()    {}

// Field includes a pointer or link property ("@name"). Links are included
// with the default {id} shape.
func Field(name string) ShapeItem { return fieldItem{name: name, kind: fieldInclude} }

// Fields includes several pointers.
func Fields(names ...string) []ShapeItem {
	out := make([]ShapeItem, len(names))
	for i, n := range names {
		out[i] = Field(n)
	}
	return out
}

// Exclude removes a key included earlier in the shape.
func Exclude(name string) ShapeItem { return fieldItem{name: name, kind: fieldExclude} }

// Nest selects a link with a nested shape built from a scope bound to one
// element of the link target.
func Nest(name string, fn func(*Scope) Shape) ShapeItem {
	return fieldItem{name: name, fn: fn, kind: fieldNested}
}

// NestShape selects a link with a fixed nested shape.
func NestShape(name string, shape Shape) ShapeItem {
	return fieldItem{name: name, shape: shape, kind: fieldNested}
}

// Compute adds a computed field. On an existing pointer key it overrides the
// pointer and keeps the pointer's cardinality.
func Compute(name string, expr Expression) ShapeItem {
	return fieldItem{name: name, expr: expr, kind: fieldComputed}
}

// Poly scopes fields to a polymorphic subtype of the selected type.
func Poly(subtype *ObjectType, items ...ShapeItem) *PolyShapeElement {
	e := &PolyShapeElement{subtype: subtype, items: items}
	if subtype != nil {
		e.node = newNode(subtype, One)
	}
	return e
}

// Filter restricts the selection. The result may be empty.
func Filter(expr Expression) ShapeItem { return filterItem{expr: expr} }

// FilterSingle restricts the selection and declares that at most one
// element matches. Executors enforce the declaration at run time.
func FilterSingle(expr Expression) ShapeItem { return filterItem{expr: expr, single: true} }

// FilterExclusive filters by equality on pointers that form a declared
// exclusive constraint. The result is AtMostOne.
func FilterExclusive(values map[string]any) ShapeItem { return exclusiveItem{values: values} }

// OrderTerm is one order by expression.
type OrderTerm struct {
	Expr      Expression
	Direction Direction
	Empty     EmptyOrdering
}

// Asc orders by expr ascending.
func Asc(expr Expression) OrderTerm { return OrderTerm{Expr: expr, Direction: ASC} }

// Desc orders by expr descending.
func Desc(expr Expression) OrderTerm { return OrderTerm{Expr: expr, Direction: DESC} }

// OrderBy sorts the selection.
func OrderBy(terms ...OrderTerm) ShapeItem { return orderItem{terms: terms} }

// Limit caps the selection. n is an integer or an integer expression.
func Limit(n any) ShapeItem { return limitItem{value: n} }

// Offset skips elements of the selection. n is an integer or an integer
// expression.
func Offset(n any) ShapeItem { return offsetItem{value: n} }
