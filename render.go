package edgeql

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zoobzio/edgeql/internal/render"
	"github.com/zoobzio/edgeql/internal/types"
)

const (
	renderTarget = "edgeql"
	paramPrefix  = "__param__"
)

// renderContext tracks rendering state for scoping, parameters and depth
// limiting.
type renderContext struct {
	scope      *Scope
	usedParams map[string]bool
	params     []*ParamExpr
	depth      int
}

// newRenderContext creates a new render context.
func newRenderContext() *renderContext {
	return &renderContext{usedParams: make(map[string]bool)}
}

// descend enters a nested expression and enforces the depth limit.
func (ctx *renderContext) descend() error {
	if ctx.depth >= types.MaxNestingDepth {
		return fmt.Errorf("maximum nesting depth (%d) exceeded", types.MaxNestingDepth)
	}
	ctx.depth++
	return nil
}

func (ctx *renderContext) ascend() { ctx.depth-- }

// withScope runs fn with scope as the current select subject.
func (ctx *renderContext) withScope(scope *Scope, fn func() error) error {
	prev := ctx.scope
	ctx.scope = scope
	defer func() { ctx.scope = prev }()
	return fn()
}

// addParam records a declared parameter once and returns its binding name.
func (ctx *renderContext) addParam(p *ParamExpr) string {
	if !ctx.usedParams[p.Name] {
		ctx.usedParams[p.Name] = true
		ctx.params = append(ctx.params, p)
	}
	return paramPrefix + p.Name
}

// Render converts an expression to a QueryResult with EdgeQL text and the
// declared parameter names.
func Render(expr Expression) (*QueryResult, error) {
	result, _, err := renderQuery(expr)
	return result, err
}

// ToEdgeQL renders an expression to EdgeQL text. Rendering is
// deterministic: the same expression always yields the same text.
func ToEdgeQL(expr Expression) (string, error) {
	result, err := Render(expr)
	if err != nil {
		return "", err
	}
	return result.EdgeQL, nil
}

func renderQuery(expr Expression) (*QueryResult, []*ParamExpr, error) {
	if expr == nil {
		return nil, nil, fmt.Errorf("cannot render a nil expression")
	}
	ctx := newRenderContext()
	var b strings.Builder
	var err error
	switch e := expr.(type) {
	case *SelectExpr:
		err = ctx.renderSelect(&b, e)
	case *WithParamsExpr:
		err = ctx.renderWithParams(&b, e)
	default:
		b.WriteString("select ")
		err = ctx.renderExpr(&b, expr)
	}
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, len(ctx.params))
	for i, p := range ctx.params {
		names[i] = p.Name
	}
	return &QueryResult{EdgeQL: b.String(), RequiredParams: names}, ctx.params, nil
}

func (ctx *renderContext) renderExpr(b *strings.Builder, expr Expression) error {
	if err := ctx.descend(); err != nil {
		return err
	}
	defer ctx.ascend()

	switch e := expr.(type) {
	case *LiteralExpr:
		return renderLiteral(b, e.Element(), e.Value)
	case *PathExpr:
		return ctx.renderPath(b, e)
	case *TypeIntersectionExpr:
		if err := ctx.renderPathParent(b, e.Expr); err != nil {
			return err
		}
		b.WriteString("[is " + e.Subtype.Name() + "]")
		return nil
	case *OperatorExpr:
		return ctx.renderOperator(b, e)
	case *PolyShapeElement:
		return render.NewUnsupportedFeatureError(renderTarget, "polymorphic shape element outside a shape", "pass it to Select as a shape item")
	case *ArrayExpr:
		b.WriteByte('[')
		if err := ctx.renderList(b, e.Items); err != nil {
			return err
		}
		b.WriteByte(']')
		return nil
	case *TupleExpr:
		b.WriteByte('(')
		if err := ctx.renderList(b, e.Items); err != nil {
			return err
		}
		if len(e.Items) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
		return nil
	case *NamedTupleExpr:
		b.WriteByte('(')
		for i, f := range e.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name + " := ")
			if err := ctx.renderExpr(b, f.Expr); err != nil {
				return err
			}
		}
		b.WriteByte(')')
		return nil
	case *TuplePathExpr:
		if err := ctx.renderPathParent(b, e.Parent); err != nil {
			return err
		}
		b.WriteString("." + e.Index)
		return nil
	case *FunctionExpr:
		if e.Name == "exists" {
			b.WriteString("(exists ")
			if err := ctx.renderExpr(b, e.Args[0]); err != nil {
				return err
			}
			b.WriteByte(')')
			return nil
		}
		b.WriteString(e.Name + "(")
		if err := ctx.renderList(b, e.Args); err != nil {
			return err
		}
		b.WriteByte(')')
		return nil
	case *CastExpr:
		b.WriteString("<" + e.Element().Name() + ">(")
		if err := ctx.renderExpr(b, e.Expr); err != nil {
			return err
		}
		b.WriteByte(')')
		return nil
	case *SetExpr:
		if len(e.Items) == 0 {
			b.WriteString("<" + e.Element().Name() + ">{}")
			return nil
		}
		b.WriteByte('{')
		if err := ctx.renderList(b, e.Items); err != nil {
			return err
		}
		b.WriteByte('}')
		return nil
	case *SelectExpr:
		b.WriteByte('(')
		if err := ctx.renderSelect(b, e); err != nil {
			return err
		}
		b.WriteByte(')')
		return nil
	case *ParamExpr:
		if !ctx.usedParams[e.Name] {
			return render.NewUnsupportedFeatureError(renderTarget, "undeclared parameter "+e.Name, "build parameters with Params")
		}
		b.WriteString(paramPrefix + e.Name)
		return nil
	case *WithParamsExpr:
		b.WriteByte('(')
		if err := ctx.renderWithParams(b, e); err != nil {
			return err
		}
		b.WriteByte(')')
		return nil
	}
	return fmt.Errorf("cannot render %T", expr)
}

func (ctx *renderContext) renderList(b *strings.Builder, exprs []Expression) error {
	for i, e := range exprs {
		if i > 0 {
			b.WriteString(", ")
		}
		if err := ctx.renderExpr(b, e); err != nil {
			return err
		}
	}
	return nil
}

// renderPathParent renders an expression that a path step or tuple access
// continues from. Paths chain directly; anything else is parenthesized.
func (ctx *renderContext) renderPathParent(b *strings.Builder, parent Expression) error {
	switch parent.(type) {
	case *PathExpr, *TypeIntersectionExpr, *TuplePathExpr:
		return ctx.renderExpr(b, parent)
	}
	b.WriteByte('(')
	if err := ctx.renderExpr(b, parent); err != nil {
		return err
	}
	b.WriteByte(')')
	return nil
}

func (ctx *renderContext) renderPath(b *strings.Builder, p *PathExpr) error {
	if p.scope != nil {
		return ctx.renderScopeSubject(b, p)
	}
	if p.Parent == nil {
		b.WriteString(p.Name)
		return nil
	}
	if parent, ok := p.Parent.(*PathExpr); ok && parent.scope != nil {
		if err := ctx.checkScope(parent.scope); err != nil {
			return err
		}
		if !p.IsLinkProp() {
			b.WriteByte('.')
		}
		b.WriteString(p.Name)
		return nil
	}
	if err := ctx.renderPathParent(b, p.Parent); err != nil {
		return err
	}
	if !p.IsLinkProp() {
		b.WriteByte('.')
	}
	b.WriteString(p.Name)
	return nil
}

// renderScopeSubject renders a bare reference to the select subject. At the
// top level the subject is addressed by its type name.
func (ctx *renderContext) renderScopeSubject(b *strings.Builder, p *PathExpr) error {
	if err := ctx.checkScope(p.scope); err != nil {
		return err
	}
	if p.Pointer != nil {
		return render.NewUnsupportedFeatureError(renderTarget, "bare reference to a nested shape subject", "step into a pointer of the scope")
	}
	obj, _ := objectElement(p)
	b.WriteString(obj.SchemaType().Name())
	return nil
}

func (ctx *renderContext) checkScope(s *Scope) error {
	if ctx.scope != nil && ctx.scope != s {
		return render.NewUnsupportedFeatureError(renderTarget, "outer scope reference", "bind the outer value with a computed field")
	}
	return nil
}

func (ctx *renderContext) renderOperator(b *strings.Builder, e *OperatorExpr) error {
	xs := e.Operands
	b.WriteByte('(')
	var err error
	switch e.Op {
	case NOT:
		b.WriteString("not ")
		err = ctx.renderExpr(b, xs[0])
	case Neg:
		b.WriteByte('-')
		err = ctx.renderExpr(b, xs[0])
	case Index:
		err = ctx.renderSequence(b, xs[0], "[", xs[1], "]")
	case Slice:
		err = ctx.renderSequence(b, xs[0], "[", xs[1], ":", xs[2], "]")
	case IfElse:
		err = ctx.renderSequence(b, xs[0], " if ", xs[1], " else ", xs[2])
	default:
		err = ctx.renderSequence(b, xs[0], " "+string(e.Op)+" ", xs[1])
	}
	if err != nil {
		return err
	}
	b.WriteByte(')')
	return nil
}

// renderSequence writes strings verbatim and renders expressions.
func (ctx *renderContext) renderSequence(b *strings.Builder, parts ...any) error {
	for _, part := range parts {
		switch v := part.(type) {
		case string:
			b.WriteString(v)
		case Expression:
			if err := ctx.renderExpr(b, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ctx *renderContext) renderWithParams(b *strings.Builder, e *WithParamsExpr) error {
	if len(e.Params) > 0 {
		b.WriteString("with ")
		for i, p := range e.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(ctx.addParam(p) + " := <")
			if p.Optional {
				b.WriteString("optional ")
			}
			b.WriteString(p.Element().Name() + ">$" + p.Name)
		}
		b.WriteByte(' ')
	}
	if sel, ok := e.Body.(*SelectExpr); ok {
		return ctx.renderSelect(b, sel)
	}
	b.WriteString("select ")
	return ctx.renderExpr(b, e.Body)
}

func (ctx *renderContext) renderSelect(b *strings.Builder, s *SelectExpr) error {
	if err := ctx.descend(); err != nil {
		return err
	}
	defer ctx.ascend()

	b.WriteString("select ")
	if s.free {
		return ctx.renderProjection(b, s.proj)
	}
	if err := ctx.renderSelectSource(b, s.Source); err != nil {
		return err
	}
	if s.proj == nil {
		return ctx.renderModifiers(b, s.mods)
	}
	return ctx.withScope(s.scope, func() error {
		b.WriteByte(' ')
		if err := ctx.renderProjection(b, s.proj); err != nil {
			return err
		}
		return ctx.renderModifiers(b, s.mods)
	})
}

func (ctx *renderContext) renderSelectSource(b *strings.Builder, source Expression) error {
	if p, ok := source.(*PathExpr); ok && p.IsRoot() {
		b.WriteString(p.Name)
		return nil
	}
	if _, ok := source.(*SelectExpr); ok {
		return ctx.renderExpr(b, source)
	}
	b.WriteByte('(')
	if err := ctx.renderExpr(b, source); err != nil {
		return err
	}
	b.WriteByte(')')
	return nil
}

func (ctx *renderContext) renderProjection(b *strings.Builder, proj *projection) error {
	if err := ctx.descend(); err != nil {
		return err
	}
	defer ctx.ascend()

	b.WriteString("{ ")
	first := true
	sep := func() {
		if !first {
			b.WriteString(", ")
		}
		first = false
	}
	for _, f := range proj.fields {
		if f.poly != nil {
			continue
		}
		sep()
		if err := ctx.renderField(b, f); err != nil {
			return err
		}
	}
	if proj.typename {
		sep()
		b.WriteString(types.TypenameField + " := .__type__.name")
	}
	for _, f := range proj.fields {
		if f.poly == nil {
			continue
		}
		sep()
		b.WriteString("[is " + f.poly.Name() + "].")
		if err := ctx.renderField(b, f); err != nil {
			return err
		}
	}
	b.WriteString(" }")
	return nil
}

func (ctx *renderContext) renderField(b *strings.Builder, f *projectedField) error {
	b.WriteString(f.name)
	switch f.kind {
	case fieldComputed:
		b.WriteString(" := ")
		return ctx.renderExpr(b, f.expr)
	case fieldNested:
		b.WriteString(": ")
		return ctx.withScope(f.scope, func() error {
			if err := ctx.renderProjection(b, f.nested); err != nil {
				return err
			}
			return ctx.renderModifiers(b, f.mods)
		})
	}
	return nil
}

func (ctx *renderContext) renderModifiers(b *strings.Builder, m modifiers) error {
	if m.filter != nil {
		b.WriteString(" filter ")
		if err := ctx.renderExpr(b, m.filter); err != nil {
			return err
		}
	}
	if len(m.order) > 0 {
		b.WriteString(" order by ")
		for i, t := range m.order {
			if i > 0 {
				b.WriteString(" then ")
			}
			if err := ctx.renderExpr(b, t.Expr); err != nil {
				return err
			}
			dir := t.Direction
			if dir == "" {
				dir = ASC
			}
			b.WriteString(" " + string(dir))
			if t.Empty != "" {
				b.WriteString(" " + string(t.Empty))
			}
		}
	}
	if m.offset != nil {
		b.WriteString(" offset ")
		if err := ctx.renderExpr(b, m.offset); err != nil {
			return err
		}
	}
	if m.limit != nil {
		b.WriteString(" limit ")
		if err := ctx.renderExpr(b, m.limit); err != nil {
			return err
		}
	}
	return nil
}

// renderLiteral writes v as an EdgeQL constant of type t.
func renderLiteral(b *strings.Builder, t BaseType, v any) error {
	switch tt := t.(type) {
	case *ScalarType:
		return renderScalar(b, tt, v)
	case *EnumType:
		b.WriteString("<" + tt.Name() + ">" + quoteString(v.(string)))
		return nil
	case *ArrayType:
		items := v.([]any)
		if len(items) == 0 {
			b.WriteString("<" + tt.Name() + ">[]")
			return nil
		}
		b.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := renderLiteral(b, tt.Element(), item); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil
	case *TupleType:
		items := v.([]any)
		b.WriteByte('(')
		for i, item := range items {
			if i > 0 {
				b.WriteString(", ")
			}
			it, _ := tt.Item(i)
			if err := renderLiteral(b, it, item); err != nil {
				return err
			}
		}
		if len(items) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
		return nil
	case *NamedTupleType:
		m := v.(map[string]any)
		b.WriteByte('(')
		for i, f := range tt.Fields() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name + " := ")
			if err := renderLiteral(b, f.Type, m[f.Name]); err != nil {
				return err
			}
		}
		b.WriteByte(')')
		return nil
	case *RangeType:
		return renderRange(b, tt.Element(), v.(Range))
	case *MultiRangeType:
		mr := v.(MultiRange)
		if len(mr) == 0 {
			b.WriteString("multirange(<array<range<" + tt.Element().Name() + ">>>[])")
			return nil
		}
		b.WriteString("multirange([")
		for i, r := range mr {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := renderRange(b, tt.Element(), r); err != nil {
				return err
			}
		}
		b.WriteString("])")
		return nil
	}
	return TypeMismatchError{Type: t.Name(), Reason: "cannot render literal"}
}

func renderRange(b *strings.Builder, element *ScalarType, r Range) error {
	unbounded := "<" + element.Name() + ">{}"
	b.WriteString("range(")
	if r.Empty {
		b.WriteString(unbounded + ", empty := true)")
		return nil
	}
	for i, bound := range []any{r.Lower, r.Upper} {
		if i > 0 {
			b.WriteString(", ")
		}
		if bound == nil {
			b.WriteString(unbounded)
			continue
		}
		if err := renderScalar(b, element, bound); err != nil {
			return err
		}
	}
	fmt.Fprintf(b, ", inc_lower := %t, inc_upper := %t)", r.IncLower, r.IncUpper)
	return nil
}

func renderScalar(b *strings.Builder, t *ScalarType, v any) error {
	root := t.Root()
	if root != t {
		b.WriteString("<" + t.Name() + ">(")
		if err := renderScalar(b, root, v); err != nil {
			return err
		}
		b.WriteByte(')')
		return nil
	}
	cast := func(text string) {
		b.WriteString("<" + t.Name() + ">" + text)
	}
	switch x := v.(type) {
	case string:
		if t.Name() == "std::str" {
			b.WriteString(quoteString(x))
			return nil
		}
		cast(quoteString(x))
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case int16:
		cast(strconv.FormatInt(int64(x), 10))
	case int32:
		cast(strconv.FormatInt(int64(x), 10))
	case int64:
		cast(strconv.FormatInt(x, 10))
	case float32:
		cast(formatFloat(float64(x), 32))
	case float64:
		cast(formatFloat(x, 64))
	case *big.Int:
		cast(quoteString(x.String()))
	case decimal.Decimal:
		cast(quoteString(x.String()))
	case uuid.UUID:
		cast(quoteString(x.String()))
	case time.Time:
		cast(quoteString(formatTime(t.Name(), x)))
	case time.Duration:
		cast(quoteString("PT" + strconv.FormatFloat(x.Seconds(), 'f', -1, 64) + "S"))
	case json.RawMessage:
		b.WriteString("to_json(" + quoteString(string(x)) + ")")
	case []byte:
		b.WriteString(quoteBytes(x))
	case []float32:
		parts := make([]string, len(x))
		for i, f := range x {
			parts[i] = strconv.FormatFloat(float64(f), 'f', -1, 32)
		}
		cast("[" + strings.Join(parts, ", ") + "]")
	default:
		cast(quoteString(fmt.Sprint(v)))
	}
	return nil
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "'NaN'"
	case math.IsInf(f, 1):
		return "'inf'"
	case math.IsInf(f, -1):
		return "'-inf'"
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

func formatTime(scalar string, t time.Time) string {
	switch scalar {
	case "cal::local_date":
		return t.Format(types.LocalDateLayout)
	case "cal::local_datetime":
		return t.Format(types.LocalDateTimeLayout)
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// quoteString renders s as a single-quoted EdgeQL string.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// quoteBytes renders p as an EdgeQL bytes literal.
func quoteBytes(p []byte) string {
	var b strings.Builder
	b.WriteString("b'")
	for _, c := range p {
		switch {
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\'':
			b.WriteString(`\'`)
		case c >= 0x20 && c < 0x7f:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, `\x%02x`, c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
