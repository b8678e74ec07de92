// Package benchmarks provides performance benchmarks for edgeql.
package benchmarks

import (
	"testing"

	"github.com/zoobzio/edgeql"
	eqltest "github.com/zoobzio/edgeql/testing"
)

// BenchmarkSimpleSelect measures building and rendering an id-only select.
func BenchmarkSimpleSelect(b *testing.B) {
	reg := eqltest.TestRegistry(b)
	heroes := reg.Root("default::Hero")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		q, err := edgeql.SelectShape(heroes, nil)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := edgeql.Render(q); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSelectWithFilter measures a select with a filter and ordering.
func BenchmarkSelectWithFilter(b *testing.B) {
	reg := eqltest.TestRegistry(b)
	movies := reg.Root("default::Movie")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		q, err := edgeql.Select(movies, func(m *edgeql.Scope) edgeql.Shape {
			return edgeql.Shape{
				edgeql.Field("title"),
				edgeql.Field("release_year"),
				edgeql.Filter(edgeql.Must(edgeql.Op(edgeql.GE, m.P("release_year"), 2000))),
				edgeql.OrderBy(edgeql.Desc(m.P("release_year"))),
				edgeql.Limit(10),
			}
		})
		if err != nil {
			b.Fatal(err)
		}
		if _, err := edgeql.Render(q); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkNestedShape measures a two-level shape with link properties.
func BenchmarkNestedShape(b *testing.B) {
	reg := eqltest.TestRegistry(b)
	movies := reg.Root("default::Movie")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		q, err := edgeql.SelectShape(movies, edgeql.Shape{
			edgeql.Field("title"),
			edgeql.Nest("characters", func(c *edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{
					edgeql.Field("name"),
					edgeql.Field("@character_name"),
					edgeql.OrderBy(edgeql.Asc(c.P("name"))),
				}
			}),
		})
		if err != nil {
			b.Fatal(err)
		}
		if _, err := edgeql.Render(q); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkPolymorphicShape measures a shape with subtype branches.
func BenchmarkPolymorphicShape(b *testing.B) {
	reg := eqltest.TestRegistry(b)
	people := reg.Root("default::Person")
	hero := reg.Object("default::Hero")
	villain := reg.Object("default::Villain")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		q, err := edgeql.SelectShape(people, edgeql.Shape{
			edgeql.Field("name"),
			edgeql.Poly(hero, edgeql.Field("secret_identity")),
			edgeql.Poly(villain, edgeql.Field("nemesis")),
		})
		if err != nil {
			b.Fatal(err)
		}
		if _, err := edgeql.Render(q); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkWithParams measures a parameterized query.
func BenchmarkWithParams(b *testing.B) {
	reg := eqltest.TestRegistry(b)
	heroes := reg.Root("default::Hero")
	decls := []edgeql.ParamDecl{
		{Name: "name", Type: edgeql.StdStr},
		{Name: "max", Type: edgeql.StdInt64, Optional: true},
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		q, err := edgeql.Params(decls, func(p map[string]*edgeql.ParamExpr) (edgeql.Expression, error) {
			return edgeql.Select(heroes, func(h *edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{
					edgeql.Field("name"),
					edgeql.Filter(edgeql.Must(edgeql.Op(edgeql.EQ, h.P("name"), p["name"]))),
					edgeql.Limit(p["max"]),
				}
			})
		})
		if err != nil {
			b.Fatal(err)
		}
		if _, err := edgeql.Render(q); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkLiterals measures rendering of collection and range literals.
func BenchmarkLiterals(b *testing.B) {
	ints := edgeql.Must(edgeql.RangeOf(edgeql.StdInt64))

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		tuple, err := edgeql.NamedTuple(
			edgeql.NamedExpr{Name: "tags", Expr: edgeql.Must(edgeql.Array(edgeql.Str("a"), edgeql.Str("b")))},
			edgeql.NamedExpr{Name: "span", Expr: edgeql.Must(edgeql.Literal(ints, edgeql.NewRange(1, 10)))},
		)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := edgeql.Render(tuple); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDBMLRegistry measures building a registry from DBML.
func BenchmarkDBMLRegistry(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		eqltest.TestDBMLRegistry(b)
	}
}
