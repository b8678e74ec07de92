package edgeql

import (
	"fmt"

	"github.com/zoobzio/edgeql/internal/types"
)

// OperatorExpr applies an operator to operands.
type OperatorExpr struct {
	Op       Operator
	Operands []Expression
	node
}

func (*OperatorExpr) Kind() ExprKind { return ExprOperator }

// Op applies op to operands. The result cardinality is the product of the
// operand cardinalities. Operands may be expressions or Go values; Go values
// become literals typed after a sibling operand where one exists.
//
// Ternary operators take their operands in EdgeQL source order: Slice is
// (collection, start, end) and IfElse is (then, condition, else).
func Op(op Operator, operands ...any) (*OperatorExpr, error) {
	if !op.Known() {
		return nil, TypeMismatchError{Type: string(op), Reason: "unknown operator"}
	}
	if len(operands) != op.Arity() {
		return nil, TypeMismatchError{
			Type:   string(op),
			Reason: fmt.Sprintf("expected %d operands, got %d", op.Arity(), len(operands)),
		}
	}
	exprs, err := operandExpressions(op, operands)
	if err != nil {
		return nil, err
	}
	element, err := operatorResult(op, exprs)
	if err != nil {
		return nil, err
	}
	return &OperatorExpr{
		Op:       op,
		Operands: exprs,
		node:     newNode(element, MultiplyVariadic(cardinalities(exprs)...)),
	}, nil
}

func operandExpressions(op Operator, operands []any) ([]Expression, error) {
	exprs := make([]Expression, len(operands))
	for i, v := range operands {
		if v == nil {
			return nil, TypeMismatchError{Type: string(op), Reason: fmt.Sprintf("operand %d is nil; use EmptySet", i)}
		}
		if e, ok := v.(Expression); ok {
			exprs[i] = e
		}
	}
	for i, v := range operands {
		if exprs[i] != nil {
			continue
		}
		hint := operandHint(op, i, exprs)
		if (op == IN || op == NotIn) && i == 1 && !collectionHint(hint) {
			if items, ok := sliceItems(v); ok {
				if len(items) == 0 {
					if hint == nil {
						return nil, TypeMismatchError{Type: string(op), Reason: "cannot infer the type of an empty set"}
					}
					exprs[i] = EmptySet(hint)
					continue
				}
				items = append([]any(nil), items...)
				for j := range items {
					if _, isExpr := items[j].(Expression); !isExpr && hint != nil {
						lit, err := Literal(hint, items[j])
						if err != nil {
							return nil, err
						}
						items[j] = lit
					}
				}
				set, err := Set(items...)
				if err != nil {
					return nil, err
				}
				exprs[i] = set
				continue
			}
		}
		e, err := toExpression(v, hint)
		if err != nil {
			return nil, err
		}
		exprs[i] = e
	}
	return exprs, nil
}

func collectionHint(t BaseType) bool {
	return types.IsArrayType(t) || SameType(t, StdBytes) || SameType(t, PgVector)
}

// operandHint picks the type a Go value at position i should take.
func operandHint(op Operator, i int, exprs []Expression) BaseType {
	switch op {
	case AND, OR, NOT:
		return StdBool
	case LIKE, NotLike, ILIKE, NotILike:
		return StdStr
	case Index, Slice:
		if i > 0 {
			return StdInt64
		}
		return nil
	case IfElse:
		if i == 1 {
			return StdBool
		}
		if other := exprs[2-i]; other != nil {
			return other.Element()
		}
		return nil
	}
	for j, e := range exprs {
		if j != i && e != nil {
			return e.Element()
		}
	}
	return nil
}

func operatorResult(op Operator, xs []Expression) (BaseType, error) {
	mismatch := func(reason string) error {
		return TypeMismatchError{Type: string(op), Reason: reason}
	}
	switch op {
	case EQ, NE, GT, GE, LT, LE, IN, NotIn:
		a, b := xs[0].Element(), xs[1].Element()
		if !comparableTypes(a, b) {
			return nil, mismatch(fmt.Sprintf("cannot compare %s with %s", a.Name(), b.Name()))
		}
		return StdBool, nil
	case LIKE, NotLike, ILIKE, NotILike:
		for _, x := range xs {
			if !extendsAny(x.Element(), "std::str") {
				return nil, mismatch("pattern matching requires std::str operands, got " + x.Element().Name())
			}
		}
		return StdBool, nil
	case AND, OR, NOT:
		for _, x := range xs {
			if !extendsAny(x.Element(), "std::bool") {
				return nil, mismatch("logical operators require std::bool operands, got " + x.Element().Name())
			}
		}
		return StdBool, nil
	case Neg:
		t := xs[0].Element()
		if !isNumeric(t) && !extendsAny(t, "std::duration") {
			return nil, mismatch("negation requires a numeric operand, got " + t.Name())
		}
		return t, nil
	case Add, Sub:
		if t, ok := temporalResult(op, xs[0].Element(), xs[1].Element()); ok {
			return t, nil
		}
		return numericResult(op, xs[0].Element(), xs[1].Element())
	case Mul, Div, FloorDiv, Mod, Pow:
		return numericResult(op, xs[0].Element(), xs[1].Element())
	case Concat:
		a, b := xs[0].Element(), xs[1].Element()
		if !SameType(a, b) {
			return nil, mismatch(fmt.Sprintf("cannot concatenate %s with %s", a.Name(), b.Name()))
		}
		if !types.IsArrayType(a) && !extendsAny(a, "std::str", "std::bytes", "std::json") {
			return nil, mismatch("cannot concatenate " + a.Name())
		}
		return a, nil
	case Index, Slice:
		coll := xs[0].Element()
		for _, x := range xs[1:] {
			if isInteger(x.Element()) || (op == Index && extendsAny(coll, "std::json") && extendsAny(x.Element(), "std::str")) {
				continue
			}
			return nil, mismatch("index must be an integer, got " + x.Element().Name())
		}
		if at, ok := coll.(*ArrayType); ok {
			if op == Index {
				return at.Element(), nil
			}
			return at, nil
		}
		if extendsAny(coll, "std::str", "std::bytes", "std::json") {
			return coll, nil
		}
		return nil, mismatch("cannot index " + coll.Name())
	case IfElse:
		a, cond, b := xs[0].Element(), xs[1].Element(), xs[2].Element()
		if !extendsAny(cond, "std::bool") {
			return nil, mismatch("condition must be std::bool, got " + cond.Name())
		}
		if SameType(a, b) || sameObjectRoot(a, b) {
			return a, nil
		}
		if isNumeric(a) && isNumeric(b) {
			return numericResult(Add, a, b)
		}
		return nil, mismatch(fmt.Sprintf("branches have types %s and %s", a.Name(), b.Name()))
	}
	return nil, mismatch("unsupported operator")
}

// extendsAny reports whether t is a scalar extending one of names.
func extendsAny(t BaseType, names ...string) bool {
	s, ok := t.(*ScalarType)
	if !ok {
		return false
	}
	for _, n := range names {
		if s.Extends(n) {
			return true
		}
	}
	return false
}

func isInteger(t BaseType) bool {
	return extendsAny(t, "std::int16", "std::int32", "std::int64", "std::bigint")
}

func isFloat(t BaseType) bool {
	return extendsAny(t, "std::float32", "std::float64")
}

func isNumeric(t BaseType) bool {
	return isInteger(t) || isFloat(t) || extendsAny(t, "std::decimal")
}

func comparableTypes(a, b BaseType) bool {
	if SameType(a, b) || sameObjectRoot(a, b) {
		return true
	}
	if isNumeric(a) && isNumeric(b) {
		return true
	}
	as, ok1 := a.(*ScalarType)
	bs, ok2 := b.(*ScalarType)
	return ok1 && ok2 && (as.Extends(bs.Name()) || bs.Extends(as.Name()))
}

var integerRank = map[string]int{
	"std::int16":  1,
	"std::int32":  2,
	"std::int64":  3,
	"std::bigint": 4,
}

// numericResult applies EdgeQL numeric promotion.
func numericResult(op Operator, a, b BaseType) (BaseType, error) {
	if !isNumeric(a) || !isNumeric(b) {
		return nil, TypeMismatchError{
			Type:   string(op),
			Reason: fmt.Sprintf("arithmetic requires numeric operands, got %s and %s", a.Name(), b.Name()),
		}
	}
	decimalMix := extendsAny(a, "std::decimal") || extendsAny(b, "std::decimal")
	if decimalMix && (isFloat(a) || isFloat(b)) {
		return nil, TypeMismatchError{Type: string(op), Reason: "cannot mix std::decimal with floating point operands"}
	}
	bigMix := extendsAny(a, "std::bigint") || extendsAny(b, "std::bigint")
	switch op {
	case Div, Pow:
		if decimalMix || bigMix {
			return StdDecimal, nil
		}
		if op == Div && SameType(a, b) && isFloat(a) {
			return a, nil
		}
		return StdFloat64, nil
	}
	if SameType(a, b) {
		return a, nil
	}
	switch {
	case decimalMix:
		return StdDecimal, nil
	case isFloat(a) || isFloat(b):
		return StdFloat64, nil
	}
	ra := integerRank[a.(*ScalarType).Root().Name()]
	rb := integerRank[b.(*ScalarType).Root().Name()]
	if ra >= rb {
		return a.(*ScalarType).Root(), nil
	}
	return b.(*ScalarType).Root(), nil
}

// temporalResult handles datetime and duration arithmetic.
func temporalResult(op Operator, a, b BaseType) (BaseType, bool) {
	const duration = "std::duration"
	temporal := func(t BaseType) bool {
		return extendsAny(t, "std::datetime", "cal::local_datetime", "cal::local_date")
	}
	switch {
	case temporal(a) && extendsAny(b, duration):
		return a, true
	case op == Add && extendsAny(a, duration) && temporal(b):
		return b, true
	case extendsAny(a, duration) && extendsAny(b, duration):
		return a, true
	case op == Sub && temporal(a) && SameType(a, b):
		return StdDuration, true
	}
	return nil, false
}
