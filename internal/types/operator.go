package types

// Operator represents EdgeQL operators.
type Operator string

const (
	// Comparison operators.
	EQ Operator = "="
	NE Operator = "!="
	GT Operator = ">"
	GE Operator = ">="
	LT Operator = "<"
	LE Operator = "<="

	// Extended operators.
	IN       Operator = "in"
	NotIn    Operator = "not in"
	LIKE     Operator = "like"
	NotLike  Operator = "not like"
	ILIKE    Operator = "ilike"
	NotILike Operator = "not ilike"

	// Logical operators.
	AND Operator = "and"
	OR  Operator = "or"
	NOT Operator = "not"

	// Arithmetic operators.
	Add      Operator = "+"
	Sub      Operator = "-"
	Mul      Operator = "*"
	Div      Operator = "/"
	FloorDiv Operator = "//"
	Mod      Operator = "%"
	Pow      Operator = "^"
	Neg      Operator = "neg"
	Concat   Operator = "++"

	// Collection access.
	Index  Operator = "[]"
	Slice  Operator = "[:]"
	IfElse Operator = "if_else"
)

// OperatorKind is the syntactic position of an operator.
type OperatorKind string

const (
	PrefixOp  OperatorKind = "prefix"
	InfixOp   OperatorKind = "infix"
	TernaryOp OperatorKind = "ternary"
)

// Kind returns the syntactic kind of op.
func (op Operator) Kind() OperatorKind {
	switch op {
	case NOT, Neg:
		return PrefixOp
	case Slice, IfElse:
		return TernaryOp
	default:
		return InfixOp
	}
}

// Arity is the number of operands op takes.
func (op Operator) Arity() int {
	switch op.Kind() {
	case PrefixOp:
		return 1
	case TernaryOp:
		return 3
	default:
		return 2
	}
}

// Known reports whether op is a supported operator.
func (op Operator) Known() bool {
	switch op {
	case EQ, NE, GT, GE, LT, LE, IN, NotIn, LIKE, NotLike, ILIKE, NotILike,
		AND, OR, NOT, Add, Sub, Mul, Div, FloorDiv, Mod, Pow, Neg, Concat,
		Index, Slice, IfElse:
		return true
	}
	return false
}

// Direction represents sort direction.
type Direction string

const (
	ASC  Direction = "asc"
	DESC Direction = "desc"
)

// EmptyOrdering places empty values in an order by clause.
type EmptyOrdering string

const (
	EmptyFirst EmptyOrdering = "empty first"
	EmptyLast  EmptyOrdering = "empty last"
)
