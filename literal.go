package edgeql

import (
	"fmt"
	"math/big"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zoobzio/edgeql/internal/types"
)

// Range is a range value. A nil bound is unbounded.
type Range struct {
	Lower    any  `json:"lower"`
	Upper    any  `json:"upper"`
	IncLower bool `json:"inc_lower"`
	IncUpper bool `json:"inc_upper"`
	Empty    bool `json:"empty,omitempty"`
}

// NewRange returns the half-open range [lower, upper).
func NewRange(lower, upper any) Range {
	return Range{Lower: lower, Upper: upper, IncLower: true}
}

// MultiRange is a multirange value.
type MultiRange []Range

// LiteralExpr is a constant value of a known type. Its cardinality is One.
type LiteralExpr struct {
	Value any
	node
}

func (*LiteralExpr) Kind() ExprKind { return ExprLiteral }

// Literal checks v against t and wraps it as a constant.
//
// Scalars are coerced through their constant host type, enums take a member
// name, arrays take any slice, tuples take []any of the exact length, named
// tuples take map[string]any with exactly the declared fields, ranges take
// Range and multiranges take MultiRange.
func Literal(t BaseType, v any) (*LiteralExpr, error) {
	if t == nil {
		return nil, fmt.Errorf("literal type is required")
	}
	value, err := coerceValue(t, v)
	if err != nil {
		return nil, err
	}
	return &LiteralExpr{Value: value, node: newNode(t, One)}, nil
}

func coerceValue(t BaseType, v any) (any, error) {
	switch tt := t.(type) {
	case *ScalarType:
		return tt.Coerce(v)
	case *EnumType:
		rv := reflect.ValueOf(v)
		if v == nil || rv.Kind() != reflect.String {
			return nil, TypeMismatchError{Type: tt.Name(), Reason: fmt.Sprintf("expected enum member, got %T", v)}
		}
		if !tt.Has(rv.String()) {
			return nil, TypeMismatchError{Type: tt.Name(), Reason: fmt.Sprintf("%q is not a member", rv.String())}
		}
		return rv.String(), nil
	case *ArrayType:
		items, ok := sliceItems(v)
		if !ok {
			return nil, TypeMismatchError{Type: tt.Name(), Reason: fmt.Sprintf("expected slice, got %T", v)}
		}
		out := make([]any, len(items))
		for i, item := range items {
			c, err := coerceValue(tt.Element(), item)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case *TupleType:
		items, ok := v.([]any)
		if !ok || len(items) != tt.Len() {
			return nil, TypeMismatchError{Type: tt.Name(), Reason: fmt.Sprintf("expected []any of length %d", tt.Len())}
		}
		out := make([]any, len(items))
		for i, item := range items {
			it, _ := tt.Item(i)
			c, err := coerceValue(it, item)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case *NamedTupleType:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, TypeMismatchError{Type: tt.Name(), Reason: fmt.Sprintf("expected map[string]any, got %T", v)}
		}
		out := make(map[string]any, len(m))
		for _, f := range tt.Fields() {
			fv, ok := m[f.Name]
			if !ok {
				return nil, TypeMismatchError{Type: tt.Name(), Field: f.Name, Reason: "missing field"}
			}
			c, err := coerceValue(f.Type, fv)
			if err != nil {
				return nil, err
			}
			out[f.Name] = c
		}
		if len(m) != len(out) {
			for _, k := range sortedKeys(m) {
				if _, ok := out[k]; !ok {
					return nil, TypeMismatchError{Type: tt.Name(), Field: k, Reason: "unknown field"}
				}
			}
		}
		return out, nil
	case *RangeType:
		r, ok := v.(Range)
		if !ok {
			return nil, TypeMismatchError{Type: tt.Name(), Reason: fmt.Sprintf("expected Range, got %T", v)}
		}
		return coerceRange(tt.Element(), r)
	case *MultiRangeType:
		mr, ok := v.(MultiRange)
		if !ok {
			return nil, TypeMismatchError{Type: tt.Name(), Reason: fmt.Sprintf("expected MultiRange, got %T", v)}
		}
		out := make(MultiRange, len(mr))
		for i, r := range mr {
			c, err := coerceRange(tt.Element(), r)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}
	return nil, TypeMismatchError{Type: t.Name(), Reason: t.Name() + " values cannot be literals"}
}

func coerceRange(element *ScalarType, r Range) (Range, error) {
	out := r
	if r.Empty {
		return Range{Empty: true}, nil
	}
	if r.Lower != nil {
		v, err := element.Coerce(r.Lower)
		if err != nil {
			return Range{}, err
		}
		out.Lower = v
	}
	if r.Upper != nil {
		v, err := element.Coerce(r.Upper)
		if err != nil {
			return Range{}, err
		}
		out.Upper = v
	}
	return out, nil
}

func sliceItems(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func scalarLiteral(t *ScalarType, v any) *LiteralExpr {
	return Must(Literal(t, v))
}

// Scalar literal shorthands.

func Str(v string) *LiteralExpr              { return scalarLiteral(StdStr, v) }
func Bool(v bool) *LiteralExpr               { return scalarLiteral(StdBool, v) }
func Int16(v int16) *LiteralExpr             { return scalarLiteral(StdInt16, v) }
func Int32(v int32) *LiteralExpr             { return scalarLiteral(StdInt32, v) }
func Int64(v int64) *LiteralExpr             { return scalarLiteral(StdInt64, v) }
func Float32(v float32) *LiteralExpr         { return scalarLiteral(StdFloat32, v) }
func Float64(v float64) *LiteralExpr         { return scalarLiteral(StdFloat64, v) }
func Decimal(v decimal.Decimal) *LiteralExpr { return scalarLiteral(StdDecimal, v) }
func UUID(v uuid.UUID) *LiteralExpr          { return scalarLiteral(StdUUID, v) }
func Bytes(v []byte) *LiteralExpr            { return scalarLiteral(StdBytes, v) }
func Datetime(v time.Time) *LiteralExpr      { return scalarLiteral(StdDatetime, v) }
func Duration(v time.Duration) *LiteralExpr  { return scalarLiteral(StdDuration, v) }
func LocalDate(v time.Time) *LiteralExpr     { return scalarLiteral(CalLocalDate, v) }

// BigInt panics on a nil value.
func BigInt(v *big.Int) *LiteralExpr { return scalarLiteral(StdBigInt, v) }

// JSON panics if v cannot be marshaled.
func JSON(v any) *LiteralExpr { return scalarLiteral(StdJSON, v) }

// inferLiteralType picks a scalar for a Go value when no sibling operand
// provides one.
func inferLiteralType(v any) (BaseType, bool) {
	switch v.(type) {
	case string:
		return StdStr, true
	case bool:
		return StdBool, true
	case int, int64, uint8, uint16, uint32:
		return StdInt64, true
	case int32:
		return StdInt32, true
	case int16, int8:
		return StdInt16, true
	case float64:
		return StdFloat64, true
	case float32:
		return StdFloat32, true
	case *big.Int:
		return StdBigInt, true
	case decimal.Decimal:
		return StdDecimal, true
	case uuid.UUID:
		return StdUUID, true
	case []byte:
		return StdBytes, true
	case time.Time:
		return StdDatetime, true
	case time.Duration:
		return StdDuration, true
	case []float32:
		return PgVector, true
	}
	return nil, false
}

// toExpression converts v into an expression. Go values become literals of
// hint when given, otherwise of the type inferred from v.
func toExpression(v any, hint BaseType) (Expression, error) {
	if e, ok := v.(Expression); ok {
		return e, nil
	}
	if hint != nil && !types.IsObjectType(hint) {
		return Literal(hint, v)
	}
	t, ok := inferLiteralType(v)
	if !ok {
		return nil, TypeMismatchError{Type: fmt.Sprintf("%T", v), Reason: "cannot infer an EdgeQL type for value"}
	}
	return Literal(t, v)
}
