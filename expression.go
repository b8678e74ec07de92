package edgeql

import "github.com/zoobzio/edgeql/internal/types"

// ExprKind identifies the kind of an expression node.
type ExprKind string

const (
	ExprLiteral          ExprKind = "literal"
	ExprPathNode         ExprKind = "pathnode"
	ExprPathLeaf         ExprKind = "pathleaf"
	ExprOperator         ExprKind = "operator"
	ExprArray            ExprKind = "array"
	ExprTuple            ExprKind = "tuple"
	ExprNamedTuple       ExprKind = "namedtuple"
	ExprTuplePath        ExprKind = "tuplepath"
	ExprTypeIntersection ExprKind = "typeintersection"
	ExprFunction         ExprKind = "function"
	ExprCast             ExprKind = "cast"
	ExprSet              ExprKind = "set"
	ExprSelect           ExprKind = "select"
	ExprParam            ExprKind = "param"
	ExprWithParams       ExprKind = "withparams"
	ExprPolyShapeElement ExprKind = "polyshapeelement"
)

// Expression is a typed expression node. Nodes are immutable and may be
// shared between any number of parent expressions.
// This is a sealed interface: only node types in this package implement it.
type Expression interface {
	Kind() ExprKind
	TypeSet() TypeSet
	Element() BaseType
	Cardinality() Cardinality
	exprNode()
}

// node carries the TypeSet every expression embeds.
type node struct {
	ts types.TypeSet
}

func (n node) TypeSet() TypeSet         { return n.ts }
func (n node) Element() BaseType        { return n.ts.Element }
func (n node) Cardinality() Cardinality { return n.ts.Cardinality }
func (node) exprNode()                  {}

func newNode(element BaseType, card Cardinality) node {
	return node{ts: types.TypeSet{Element: element, Cardinality: card}}
}

// cardinalities collects the cardinality of each expression.
func cardinalities(exprs []Expression) []Cardinality {
	out := make([]Cardinality, len(exprs))
	for i, e := range exprs {
		out[i] = e.Cardinality()
	}
	return out
}

// objectElement returns the object element of e, if any.
func objectElement(e Expression) (*ObjectType, bool) {
	o, ok := e.Element().(*ObjectType)
	return o, ok
}
