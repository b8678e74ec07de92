package edgeql

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestOp_ResultTypes(t *testing.T) {
	reg := loadTestSchema(t)
	movie := newScope(reg.Object("default::Movie"), nil)
	ints := Must(Array(Int64(1), Int64(2)))

	tests := []struct {
		name     string
		op       Operator
		operands []any
		want     string
	}{
		{"comparison", EQ, []any{Str("a"), "b"}, "std::bool"},
		{"derived scalar comparison", EQ, []any{movie.P("title"), "Iron Man"}, "std::bool"},
		{"mixed numeric comparison", LT, []any{Int16(1), Float64(2)}, "std::bool"},
		{"in set", IN, []any{Int64(1), []int{1, 2}}, "std::bool"},
		{"like", LIKE, []any{Str("a"), "%a%"}, "std::bool"},
		{"and", AND, []any{Bool(true), false}, "std::bool"},
		{"not", NOT, []any{true}, "std::bool"},
		{"int addition", Add, []any{Int64(1), 2}, "std::int64"},
		{"int promotion", Add, []any{Int16(1), Int32(2)}, "std::int32"},
		{"float promotion", Mul, []any{Int64(1), Float32(2)}, "std::float64"},
		{"int division", Div, []any{Int64(1), Int64(2)}, "std::float64"},
		{"float32 division", Div, []any{Float32(1), Float32(2)}, "std::float32"},
		{"decimal", Add, []any{Decimal(decimal.NewFromInt(1)), Int64(2)}, "std::decimal"},
		{"floor division", FloorDiv, []any{Int32(7), Int32(2)}, "std::int32"},
		{"negation", Neg, []any{Int16(3)}, "std::int16"},
		{"datetime plus duration", Add, []any{Datetime(time.Unix(0, 0)), Duration(time.Hour)}, "std::datetime"},
		{"datetime difference", Sub, []any{Datetime(time.Unix(0, 0)), Datetime(time.Unix(60, 0))}, "std::duration"},
		{"string concat", Concat, []any{Str("a"), "b"}, "std::str"},
		{"array concat", Concat, []any{ints, ints}, "array<std::int64>"},
		{"array index", Index, []any{ints, 0}, "std::int64"},
		{"array slice", Slice, []any{ints, 0, 1}, "array<std::int64>"},
		{"string index", Index, []any{Str("abc"), 1}, "std::str"},
		{"json key", Index, []any{JSON(map[string]any{"a": 1}), Str("a")}, "std::json"},
		{"if else", IfElse, []any{"a", true, "b"}, "std::str"},
		{"if else numeric", IfElse, []any{Int64(1), Bool(true), Float64(2)}, "std::float64"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Op(tt.op, tt.operands...)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if e.Element().Name() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, e.Element().Name())
			}
			if e.Kind() != ExprOperator {
				t.Errorf("Expected operator kind, got %s", e.Kind())
			}
		})
	}
}

func TestOp_Cardinality(t *testing.T) {
	reg := loadTestSchema(t)
	hero := newScope(reg.Object("default::Hero"), nil)
	heroes := reg.Root("default::Hero")

	tests := []struct {
		name     string
		operands []any
		want     Cardinality
	}{
		{"One x One", []any{hero.P("name"), "a"}, One},
		{"AtMostOne x One", []any{hero.P("secret_identity"), "a"}, AtMostOne},
		{"Many x One", []any{heroes.P("name"), "a"}, Many},
		{"AtMostOne x Many", []any{hero.P("secret_identity"), heroes.P("name")}, Many},
		{"Empty x One", []any{EmptySet(StdStr), "a"}, Empty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Op(EQ, tt.operands...)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if e.Cardinality() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, e.Cardinality())
			}
		})
	}
}

func TestOp_Errors(t *testing.T) {
	tests := []struct {
		name     string
		op       Operator
		operands []any
	}{
		{"unknown operator", Operator("<=>"), []any{Int64(1), Int64(2)}},
		{"wrong arity", EQ, []any{Int64(1)}},
		{"nil operand", EQ, []any{Int64(1), nil}},
		{"incomparable", EQ, []any{Int64(1), Str("a")}},
		{"like on int", LIKE, []any{Int64(1), Int64(2)}},
		{"and on int", AND, []any{Int64(1), Bool(true)}},
		{"add strings", Add, []any{Str("a"), Str("b")}},
		{"decimal and float", Add, []any{Decimal(decimal.NewFromInt(1)), Float64(1)}},
		{"negate string", Neg, []any{Str("a")}},
		{"concat mismatch", Concat, []any{Str("a"), Bytes([]byte("b"))}},
		{"string index", Index, []any{Str("a"), Str("b")}},
		{"if else condition", IfElse, []any{Str("a"), Int64(1), Str("b")}},
		{"if else branches", IfElse, []any{Str("a"), Bool(true), Int64(1)}},
		{"untyped operands", EQ, []any{struct{}{}, struct{}{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Op(tt.op, tt.operands...)
			if err == nil {
				t.Fatal("Expected error")
			}
			var mismatch TypeMismatchError
			if !errors.As(err, &mismatch) {
				t.Errorf("Expected TypeMismatchError, got %T: %v", err, err)
			}
		})
	}
}

func TestOp_InBuildsSet(t *testing.T) {
	e, err := Op(IN, Int16(1), []int{1, 2, 3})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	set, ok := e.Operands[1].(*SetExpr)
	if !ok {
		t.Fatalf("Expected a set operand, got %T", e.Operands[1])
	}
	if set.Element() != StdInt16 || len(set.Items) != 3 {
		t.Errorf("Unexpected set %s with %d items", set.TypeSet(), len(set.Items))
	}
	if e.Cardinality() != AtLeastOne {
		t.Errorf("Expected AtLeastOne, got %s", e.Cardinality())
	}
}
