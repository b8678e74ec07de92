package edgeql

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/zoobzio/edgeql/internal/types"
)

// ParamExpr references a declared query parameter.
type ParamExpr struct {
	Name     string
	Optional bool
	node
}

func (*ParamExpr) Kind() ExprKind { return ExprParam }

// ParamDecl declares a named parameter.
type ParamDecl struct {
	Type     BaseType
	Name     string
	Optional bool
}

// WithParamsExpr binds parameters around a body expression.
type WithParamsExpr struct {
	Body   Expression
	Params []*ParamExpr
	node
}

func (*WithParamsExpr) Kind() ExprKind { return ExprWithParams }

// Params declares parameters and builds body from them. The result has the
// element and cardinality of the body. Parameter types are restricted to
// scalars, enums, tuples and named tuples of parameter types, ranges,
// multiranges, and arrays of scalars, tuples, named tuples, ranges or
// multiranges.
func Params(decls []ParamDecl, body func(params map[string]*ParamExpr) (Expression, error)) (*WithParamsExpr, error) {
	params := make([]*ParamExpr, 0, len(decls))
	byName := make(map[string]*ParamExpr, len(decls))
	for _, d := range decls {
		if !isValidParamName(d.Name) {
			return nil, TypeMismatchError{Type: "parameter", Field: d.Name, Reason: "must be alphanumeric with underscores, starting with a letter"}
		}
		if _, dup := byName[d.Name]; dup {
			return nil, TypeMismatchError{Type: "parameter", Field: d.Name, Reason: "duplicate parameter"}
		}
		if d.Type == nil || !validParamType(d.Type) {
			name := "<nil>"
			if d.Type != nil {
				name = d.Type.Name()
			}
			return nil, DisallowedParameterTypeError{Param: d.Name, Type: name}
		}
		card := One
		if d.Optional {
			card = AtMostOne
		}
		p := &ParamExpr{Name: d.Name, Optional: d.Optional, node: newNode(d.Type, card)}
		params = append(params, p)
		byName[d.Name] = p
	}
	b, err := body(byName)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("params body returned no expression")
	}
	return &WithParamsExpr{Body: b, Params: params, node: newNode(b.Element(), b.Cardinality())}, nil
}

func validParamType(t BaseType) bool {
	switch tt := t.(type) {
	case *ScalarType, *EnumType, *RangeType, *MultiRangeType:
		return true
	case *ArrayType:
		switch tt.Element().(type) {
		case *ScalarType, *RangeType, *MultiRangeType:
			return true
		case *TupleType, *NamedTupleType:
			return validParamType(tt.Element())
		}
		return false
	case *TupleType:
		for _, item := range tt.Items() {
			if !validParamType(item) {
				return false
			}
		}
		return true
	case *NamedTupleType:
		for _, f := range tt.Fields() {
			if !validParamType(f.Type) {
				return false
			}
		}
		return true
	}
	return false
}

// Only allows alphanumeric characters and underscores, must start with letter.
func isValidParamName(name string) bool {
	if name == "" {
		return false
	}

	first := name[0]
	if !((first >= 'a' && first <= 'z') ||
		(first >= 'A' && first <= 'Z')) {
		return false
	}

	for i := 1; i < len(name); i++ {
		ch := name[i]
		if !((ch >= 'a' && ch <= 'z') ||
			(ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') ||
			ch == '_') {
			return false
		}
	}

	// Reject EdgeQL keywords that would be confusing as parameter names
	lower := strings.ToLower(name)
	keywords := []string{
		"select", "insert", "update", "delete", "with",
		"filter", "order", "limit", "offset", "for",
		"and", "or", "not", "if", "else", "exists",
		"union", "group", "true", "false", "module",
	}
	for _, keyword := range keywords {
		if lower == keyword {
			return false
		}
	}

	return true
}

// ValidateArgs checks args against the declared parameters: every required
// parameter is present, no undeclared argument is passed, and each value is
// one of the parameter type's accepted argument representations.
func ValidateArgs(params []*ParamExpr, args map[string]any) error {
	declared := make(map[string]bool, len(params))
	for _, p := range params {
		declared[p.Name] = true
		v, ok := args[p.Name]
		if !ok || v == nil {
			if p.Optional {
				continue
			}
			return TypeMismatchError{Type: p.Element().Name(), Field: p.Name, Reason: "missing required argument"}
		}
		if err := checkArg(p.Element(), v); err != nil {
			return TypeMismatchError{Type: p.Element().Name(), Field: p.Name, Reason: err.Error()}
		}
	}
	for _, name := range sortedKeys(args) {
		if !declared[name] {
			return UnknownFieldError{Type: "parameters", Field: name}
		}
	}
	return nil
}

func checkArg(t BaseType, v any) error {
	switch tt := t.(type) {
	case *ScalarType:
		if !tt.Host().AcceptsArg(reflect.TypeOf(v)) {
			return fmt.Errorf("%T is not an accepted argument for %s", v, tt.Name())
		}
		return nil
	case *EnumType:
		s, ok := v.(string)
		if !ok || !tt.Has(s) {
			return fmt.Errorf("%v is not a member of %s", v, tt.Name())
		}
		return nil
	case *ArrayType:
		items, ok := sliceItems(v)
		if !ok {
			return fmt.Errorf("expected slice for %s, got %T", tt.Name(), v)
		}
		for i, item := range items {
			if err := checkArg(tt.Element(), item); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		return nil
	case *TupleType:
		items, ok := v.([]any)
		if !ok || len(items) != tt.Len() {
			return fmt.Errorf("expected []any of length %d for %s", tt.Len(), tt.Name())
		}
		for i, item := range items {
			it, _ := tt.Item(i)
			if err := checkArg(it, item); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		return nil
	case *NamedTupleType:
		m, ok := v.(map[string]any)
		if !ok || len(m) != len(tt.Fields()) {
			return fmt.Errorf("expected map with fields of %s", tt.Name())
		}
		for _, f := range tt.Fields() {
			fv, ok := m[f.Name]
			if !ok {
				return fmt.Errorf("missing field %q", f.Name)
			}
			if err := checkArg(f.Type, fv); err != nil {
				return fmt.Errorf("field %q: %w", f.Name, err)
			}
		}
		return nil
	case *RangeType:
		r, ok := v.(Range)
		if !ok {
			return fmt.Errorf("expected Range for %s, got %T", tt.Name(), v)
		}
		return checkRangeArg(tt.Element(), r)
	case *MultiRangeType:
		mr, ok := v.(MultiRange)
		if !ok {
			return fmt.Errorf("expected MultiRange for %s, got %T", tt.Name(), v)
		}
		for _, r := range mr {
			if err := checkRangeArg(tt.Element(), r); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%s cannot be passed as an argument", t.Name())
}

func checkRangeArg(element *types.ScalarType, r Range) error {
	for _, b := range []any{r.Lower, r.Upper} {
		if b == nil {
			continue
		}
		if err := checkArg(element, b); err != nil {
			return err
		}
	}
	return nil
}
