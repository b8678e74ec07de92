package edgeql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/valyala/fastjson"
	"github.com/zoobzio/edgeql/internal/logging"
	"github.com/zoobzio/edgeql/internal/types"
)

// Executor runs EdgeQL text with named arguments and returns the result set
// as a JSON array.
type Executor interface {
	QueryJSON(ctx context.Context, query string, args map[string]any) (string, error)
}

// SetLogger replaces the package logger. The default discards everything.
func SetLogger(logger zerolog.Logger) {
	logging.SetGlobalLogger(logger)
}

// RunJSON executes the rendered expr and returns the JSON result. Multi-valued
// results are a JSON array; singleton results are the element or "null".
func RunJSON(ctx context.Context, exec Executor, expr Expression, args map[string]any) (string, error) {
	items, query, err := execute(ctx, exec, expr, args)
	if err != nil {
		return "", err
	}
	if !expr.Cardinality().IsSingleton() {
		var a fastjson.Arena
		arr := a.NewArray()
		for i, item := range items {
			arr.SetArrayItem(i, item)
		}
		return string(arr.MarshalTo(nil)), nil
	}
	if len(items) == 0 {
		return "null", nil
	}
	logging.Ctx(ctx).Debug().Str("query", query).Msg("singleton result")
	return string(items[0].MarshalTo(nil)), nil
}

// Run executes the rendered expr and decodes the result. Multi-valued results
// are []any; singleton results are the element or nil. Objects decode to
// map[string]any and numbers to json.Number.
func Run(ctx context.Context, exec Executor, expr Expression, args map[string]any) (any, error) {
	items, _, err := execute(ctx, exec, expr, args)
	if err != nil {
		return nil, err
	}
	if !expr.Cardinality().IsSingleton() {
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = decodeJSON(item)
		}
		return out, nil
	}
	if len(items) == 0 {
		return nil, nil
	}
	return decodeJSON(items[0]), nil
}

func execute(ctx context.Context, exec Executor, expr Expression, args map[string]any) ([]*fastjson.Value, string, error) {
	if exec == nil {
		return nil, "", fmt.Errorf("executor is required")
	}
	result, params, err := renderQuery(expr)
	if err != nil {
		return nil, "", err
	}
	query := result.EdgeQL
	if err := ValidateArgs(params, args); err != nil {
		return nil, query, ExecutionError{Err: err, Code: InvalidArgument, Query: query}
	}
	bound := make(map[string]any, len(params))
	for _, p := range params {
		bound[p.Name] = args[p.Name]
	}

	logging.Ctx(ctx).Debug().Str("query", query).Int("args", len(bound)).Msg("executing query")
	out, err := exec.QueryJSON(ctx, query, bound)
	if err != nil {
		var ee ExecutionError
		if errors.As(err, &ee) {
			return nil, query, err
		}
		logging.Ctx(ctx).Error().Err(err).Str("query", query).Msg("executor failed")
		return nil, query, ExecutionError{Err: err, Code: ExecutorFailure, Query: query}
	}

	var p fastjson.Parser
	v, err := p.Parse(out)
	if err != nil {
		return nil, query, ExecutionError{Err: err, Code: MalformedResult, Query: query}
	}
	items, err := v.Array()
	if err != nil {
		return nil, query, ExecutionError{Err: fmt.Errorf("result is not a JSON array: %w", err), Code: MalformedResult, Query: query}
	}
	if err := checkCardinality(expr.Cardinality(), len(items)); err != nil {
		logging.Ctx(ctx).Warn().Str("query", query).Int("count", len(items)).Stringer("cardinality", expr.Cardinality()).Msg("cardinality violation")
		return nil, query, ExecutionError{Err: err, Code: CardinalityViolation, Query: query}
	}
	return items, query, nil
}

// checkCardinality verifies that n elements fit the bounds of c.
func checkCardinality(c Cardinality, n int) error {
	lower, upper := c.Bounds()
	if n < boundCount(lower) {
		return fmt.Errorf("expected at least %d element(s) for cardinality %s, got %d", boundCount(lower), c, n)
	}
	if upper != types.Unbounded && n > boundCount(upper) {
		return fmt.Errorf("expected at most %d element(s) for cardinality %s, got %d", boundCount(upper), c, n)
	}
	return nil
}

func boundCount(b types.Bound) int {
	if b == types.Single {
		return 1
	}
	return 0
}

// decodeJSON converts a parsed JSON value to Go values.
func decodeJSON(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeObject:
		o, _ := v.Object()
		m := make(map[string]any, o.Len())
		o.Visit(func(key []byte, item *fastjson.Value) {
			m[string(key)] = decodeJSON(item)
		})
		return m
	case fastjson.TypeArray:
		items, _ := v.Array()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = decodeJSON(item)
		}
		return out
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return json.Number(v.String())
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	}
	return nil
}
