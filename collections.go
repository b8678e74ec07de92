package edgeql

import (
	"fmt"
	"strconv"

	"github.com/zoobzio/edgeql/internal/types"
)

// ArrayExpr is an array constructor.
type ArrayExpr struct {
	Items []Expression
	node
}

func (*ArrayExpr) Kind() ExprKind { return ExprArray }

// Array builds an array from items sharing one element type. The result
// cardinality is the product of the item cardinalities.
func Array(items ...Expression) (*ArrayExpr, error) {
	if len(items) == 0 {
		return nil, TypeMismatchError{Type: "array", Reason: "array constructor requires at least one item; use EmptyArray"}
	}
	first := items[0].Element()
	for i, item := range items {
		if types.IsArrayType(item.Element()) {
			return nil, TypeMismatchError{Type: "array<" + item.Element().Name() + ">", Reason: "arrays cannot contain arrays"}
		}
		if !SameType(first, item.Element()) {
			return nil, HeterogeneousArrayError{Index: i, Expected: first.Name(), Got: item.Element().Name()}
		}
	}
	at, err := types.ArrayOf(first)
	if err != nil {
		return nil, err
	}
	return &ArrayExpr{
		Items: append([]Expression(nil), items...),
		node:  newNode(at, MultiplyVariadic(cardinalities(items)...)),
	}, nil
}

// EmptyArray returns an empty array literal of the given element type.
func EmptyArray(element BaseType) (*LiteralExpr, error) {
	at, err := types.ArrayOf(element)
	if err != nil {
		return nil, err
	}
	return Literal(at, []any{})
}

// TupleExpr is a positional tuple constructor.
type TupleExpr struct {
	Items []Expression
	node
}

func (*TupleExpr) Kind() ExprKind { return ExprTuple }

// Tuple builds a positional tuple. The result cardinality is the product of
// the item cardinalities.
func Tuple(items ...Expression) (*TupleExpr, error) {
	elems := make([]BaseType, len(items))
	for i, item := range items {
		elems[i] = item.Element()
	}
	tt, err := types.TupleOf(elems...)
	if err != nil {
		return nil, err
	}
	return &TupleExpr{
		Items: append([]Expression(nil), items...),
		node:  newNode(tt, MultiplyVariadic(cardinalities(items)...)),
	}, nil
}

// NamedExpr pairs a field name with an expression.
type NamedExpr struct {
	Expr Expression
	Name string
}

// NamedTupleExpr is a named tuple constructor.
type NamedTupleExpr struct {
	Fields []NamedExpr
	node
}

func (*NamedTupleExpr) Kind() ExprKind { return ExprNamedTuple }

// NamedTuple builds a named tuple. Its cardinality follows
// NamedTupleCardinality over the field cardinalities.
func NamedTuple(fields ...NamedExpr) (*NamedTupleExpr, error) {
	if len(fields) == 0 {
		return nil, TypeMismatchError{Type: "tuple", Reason: "named tuple requires at least one field"}
	}
	named := make([]NamedType, len(fields))
	cards := make([]Cardinality, len(fields))
	for i, f := range fields {
		if f.Expr == nil {
			return nil, TypeMismatchError{Type: "tuple", Field: f.Name, Reason: "field expression is required"}
		}
		named[i] = NamedType{Name: f.Name, Type: f.Expr.Element()}
		cards[i] = f.Expr.Cardinality()
	}
	nt, err := types.NamedTupleOf(named...)
	if err != nil {
		return nil, err
	}
	return &NamedTupleExpr{
		Fields: append([]NamedExpr(nil), fields...),
		node:   newNode(nt, NamedTupleCardinality(cards...)),
	}, nil
}

// TuplePathExpr accesses one item of a tuple-typed expression.
type TuplePathExpr struct {
	Parent Expression
	Index  string
	node
}

func (*TuplePathExpr) Kind() ExprKind { return ExprTuplePath }

// TupleIndex accesses item i of a positional tuple.
func TupleIndex(parent Expression, i int) (*TuplePathExpr, error) {
	tt, ok := parent.Element().(*TupleType)
	if !ok {
		return nil, TypeMismatchError{Type: parent.Element().Name(), Reason: "positional access requires a tuple"}
	}
	item, ok := tt.Item(i)
	if !ok {
		return nil, UnknownFieldError{Type: tt.Name(), Field: strconv.Itoa(i)}
	}
	return &TuplePathExpr{Parent: parent, Index: strconv.Itoa(i), node: newNode(item, parent.Cardinality())}, nil
}

// TupleField accesses a field of a named tuple.
func TupleField(parent Expression, name string) (*TuplePathExpr, error) {
	nt, ok := parent.Element().(*NamedTupleType)
	if !ok {
		return nil, TypeMismatchError{Type: parent.Element().Name(), Reason: "field access requires a named tuple"}
	}
	ft, ok := nt.Field(name)
	if !ok {
		return nil, UnknownFieldError{Type: nt.Name(), Field: name}
	}
	return &TuplePathExpr{Parent: parent, Index: name, node: newNode(ft, parent.Cardinality())}, nil
}

// SetExpr is a set constructor ({a, b}).
type SetExpr struct {
	Items []Expression
	node
}

func (*SetExpr) Kind() ExprKind { return ExprSet }

// Set unions items of one common type. Go values are converted to literals
// of the first expression's type.
func Set(items ...any) (*SetExpr, error) {
	if len(items) == 0 {
		return nil, TypeMismatchError{Type: "set", Reason: "set constructor requires at least one item; use EmptySet"}
	}
	var hint BaseType
	for _, it := range items {
		if e, ok := it.(Expression); ok {
			hint = e.Element()
			break
		}
	}
	exprs := make([]Expression, len(items))
	for i, it := range items {
		e, err := toExpression(it, hint)
		if err != nil {
			return nil, err
		}
		if hint == nil {
			hint = e.Element()
		}
		if !SameType(hint, e.Element()) && !sameObjectRoot(hint, e.Element()) {
			return nil, TypeMismatchError{
				Type:   hint.Name(),
				Field:  strconv.Itoa(i),
				Reason: fmt.Sprintf("set item has type %s", e.Element().Name()),
			}
		}
		exprs[i] = e
	}
	return &SetExpr{Items: exprs, node: newNode(hint, types.MergeVariadic(cardinalities(exprs)...))}, nil
}

// EmptySet returns the empty set of type t.
func EmptySet(t BaseType) *SetExpr {
	return &SetExpr{node: newNode(t, Empty)}
}

func sameObjectRoot(a, b BaseType) bool {
	ao, ok1 := a.(*ObjectType)
	bo, ok2 := b.(*ObjectType)
	return ok1 && ok2 && ao.SchemaType() == bo.SchemaType()
}
