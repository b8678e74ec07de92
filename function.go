package edgeql

import (
	"fmt"
	"strings"

	"github.com/zoobzio/edgeql/internal/types"
)

// FunctionExpr is a call to a named function.
type FunctionExpr struct {
	Name string
	Args []Expression
	node
}

func (*FunctionExpr) Kind() ExprKind { return ExprFunction }

// Func calls the named function returning returns. The result cardinality is
// the product of the argument cardinalities.
func Func(name string, returns BaseType, args ...any) (*FunctionExpr, error) {
	if !strings.Contains(name, "::") {
		return nil, TypeMismatchError{Type: name, Reason: "function names must be module qualified"}
	}
	if returns == nil {
		return nil, TypeMismatchError{Type: name, Reason: "return type is required"}
	}
	exprs := make([]Expression, len(args))
	for i, a := range args {
		e, err := toExpression(a, nil)
		if err != nil {
			return nil, err
		}
		exprs[i] = e
	}
	return &FunctionExpr{
		Name: name,
		Args: exprs,
		node: newNode(returns, MultiplyVariadic(cardinalities(exprs)...)),
	}, nil
}

// AssertSingle wraps expr in std::assert_single. The cardinality becomes
// AtMostOne and the element type is unchanged; executors reject results
// with more than one element.
func AssertSingle(expr Expression) *FunctionExpr {
	return &FunctionExpr{
		Name: "std::assert_single",
		Args: []Expression{expr},
		node: newNode(expr.Element(), AtMostOne),
	}
}

// Count is the aggregate std::count. Its cardinality is One.
func Count(expr Expression) *FunctionExpr {
	return &FunctionExpr{
		Name: "std::count",
		Args: []Expression{expr},
		node: newNode(StdInt64, One),
	}
}

// Exists is the aggregate "exists". Its cardinality is One.
func Exists(expr Expression) *FunctionExpr {
	return &FunctionExpr{
		Name: "exists",
		Args: []Expression{expr},
		node: newNode(StdBool, One),
	}
}

// Len is std::len over a string, bytes or array expression.
func Len(expr Expression) (*FunctionExpr, error) {
	t := expr.Element()
	if !types.IsArrayType(t) && !extendsAny(t, "std::str", "std::bytes") {
		return nil, TypeMismatchError{Type: t.Name(), Reason: "std::len requires std::str, std::bytes or an array"}
	}
	return &FunctionExpr{
		Name: "std::len",
		Args: []Expression{expr},
		node: newNode(StdInt64, expr.Cardinality()),
	}, nil
}

// CastExpr converts an expression to another type.
type CastExpr struct {
	Expr Expression
	node
}

func (*CastExpr) Kind() ExprKind { return ExprCast }

// Cast converts expr to t. Object types are not cast targets.
func Cast(t BaseType, expr any) (*CastExpr, error) {
	if t == nil || types.IsObjectType(t) {
		name := "<nil>"
		if t != nil {
			name = t.Name()
		}
		return nil, TypeMismatchError{Type: name, Reason: "cannot cast to an object type"}
	}
	e, err := toExpression(expr, nil)
	if err != nil {
		return nil, err
	}
	if types.IsObjectType(e.Element()) {
		return nil, TypeMismatchError{Type: t.Name(), Reason: fmt.Sprintf("cannot cast %s", e.Element().Name())}
	}
	return &CastExpr{Expr: e, node: newNode(t, e.Cardinality())}, nil
}
