// Package sqlexec runs rendered queries through database/sql. Each result
// row carries one JSON value; the rows are assembled into the JSON array
// that edgeql.Run decodes.
package sqlexec

import (
	"context"
	"database/sql"
	"encoding/json"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/valyala/fastjson"
	"github.com/zoobzio/edgeql"
	"github.com/zoobzio/edgeql/internal/logging"
	"github.com/zoobzio/edgeql/internal/render"
)

// Capabilities describes the argument kinds a backend can bind.
type Capabilities = render.Capabilities

// ArgStyle is how a backend binds query arguments.
type ArgStyle = render.ArgStyle

const (
	ArgsPositional = render.ArgsPositional
	ArgsNamed      = render.ArgsNamed
)

// Executor implements edgeql.Executor over a *sql.DB.
type Executor struct {
	db      *sql.DB
	logger  zerolog.Logger
	target  string
	column  string
	caps    Capabilities
	timeout time.Duration
}

var _ edgeql.Executor = (*Executor)(nil)

type Option func(*Executor)

// WithLogger sets the logger used for per-query diagnostics.
func WithLogger(logger zerolog.Logger) Option { return func(e *Executor) { e.logger = logger } }

// WithTimeout bounds each query. Zero means no timeout.
func WithTimeout(d time.Duration) Option { return func(e *Executor) { e.timeout = d } }

// WithColumn reads the JSON value from the named column instead of the
// first one.
func WithColumn(name string) Option { return func(e *Executor) { e.column = name } }

// WithCapabilities sets the argument kinds the backend can bind.
func WithCapabilities(caps Capabilities) Option { return func(e *Executor) { e.caps = caps } }

// WithTarget names the backend in errors and logs.
func WithTarget(name string) Option { return func(e *Executor) { e.target = name } }

// New wraps db. Arguments are bound by name unless WithCapabilities says
// otherwise.
func New(db *sql.DB, opts ...Option) *Executor {
	e := &Executor{
		db:     db,
		logger: logging.Logger,
		target: "sql",
		caps:   Capabilities{Args: ArgsNamed, Collections: true},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DB returns the underlying database handle.
func (e *Executor) DB() *sql.DB { return e.db }

// Close closes the underlying database handle.
func (e *Executor) Close() error { return e.db.Close() }

// QueryJSON runs query and returns its rows as one JSON array. SQL NULL
// rows are skipped.
func (e *Executor) QueryJSON(ctx context.Context, query string, args map[string]any) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	bound, err := e.bindArgs(args)
	if err != nil {
		return "", err
	}

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, query, bound...)
	if err != nil {
		return "", errors.Wrapf(err, "%s: couldn't execute query", e.target)
	}
	defer rows.Close()

	idx, width, err := e.columnIndex(rows)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	out.WriteByte('[')
	count := 0
	dest := make([]any, width)
	for rows.Next() {
		var value sql.NullString
		for i := range dest {
			if i == idx {
				dest[i] = &value
				continue
			}
			dest[i] = new(any)
		}
		if err := rows.Scan(dest...); err != nil {
			return "", errors.Wrapf(err, "%s: couldn't scan row %d", e.target, count)
		}
		if !value.Valid {
			continue
		}
		if err := fastjson.Validate(value.String); err != nil {
			return "", errors.Wrapf(err, "%s: row %d is not valid JSON", e.target, count)
		}
		if count > 0 {
			out.WriteByte(',')
		}
		out.WriteString(value.String)
		count++
	}
	if err := rows.Err(); err != nil {
		return "", errors.Wrapf(err, "%s: couldn't read rows", e.target)
	}
	out.WriteByte(']')

	e.logger.Debug().
		Str("target", e.target).
		Str("query", query).
		Int("rows", count).
		Dur("duration", time.Since(start)).
		Msg("query executed")
	return out.String(), nil
}

func (e *Executor) columnIndex(rows *sql.Rows) (int, int, error) {
	cols, err := rows.Columns()
	if err != nil {
		return 0, 0, errors.Wrapf(err, "%s: couldn't read columns", e.target)
	}
	if len(cols) == 0 {
		return 0, 0, errors.Errorf("%s: query returned no columns", e.target)
	}
	if e.column == "" {
		return 0, len(cols), nil
	}
	for i, c := range cols {
		if c == e.column {
			return i, len(cols), nil
		}
	}
	return 0, 0, errors.Errorf("%s: result has no column %q", e.target, e.column)
}

// bindArgs converts edgeql argument values into database/sql arguments.
// Positional backends receive them in sorted name order.
func (e *Executor) bindArgs(args map[string]any) ([]any, error) {
	names := make([]string, 0, len(args))
	for n := range args {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]any, 0, len(names))
	for _, name := range names {
		v, err := e.bindValue(name, args[name])
		if err != nil {
			return nil, err
		}
		if e.caps.Args == ArgsNamed {
			out = append(out, sql.Named(name, v))
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (e *Executor) bindValue(name string, v any) (any, error) {
	kind := argKind(v)
	if !e.caps.Supports(kind) {
		return nil, errors.Wrapf(render.NewUnsupportedFeatureError(e.target, kind+" arguments"), "argument %s", name)
	}
	switch x := v.(type) {
	case []float32:
		return formatVector(x), nil
	case json.RawMessage:
		return string(x), nil
	}
	switch kind {
	case "range", "multirange", "array", "namedtuple":
		data, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %s", name)
		}
		return string(data), nil
	}
	return v, nil
}

// argKind classifies a value by the capability needed to bind it. Any slice
// or array other than bytes is a collection.
func argKind(v any) string {
	switch v.(type) {
	case edgeql.Range:
		return "range"
	case edgeql.MultiRange:
		return "multirange"
	case []float32:
		return "vector"
	case json.RawMessage:
		return "scalar"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return "namedtuple"
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return "scalar"
		}
		return "array"
	}
	return "scalar"
}

func formatVector(v []float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(float64(f), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
