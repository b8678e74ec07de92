package edgeql_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/edgeql"
	eqltest "github.com/zoobzio/edgeql/testing"
)

func shapeString(t *testing.T, q *edgeql.SelectExpr) string {
	t.Helper()
	shape := q.Shape()
	if shape == nil {
		t.Fatal("Expected an object select")
	}
	return shape.String()
}

func TestSelect_EmptyShapeIsID(t *testing.T) {
	reg := eqltest.TestRegistry(t)

	q, err := edgeql.SelectShape(reg.Root("default::Hero"), nil)
	eqltest.AssertNoError(t, err)
	eqltest.AssertCardinality(t, edgeql.Many, q)

	if diff := cmp.Diff("{id: std::uuid}", shapeString(t, q)); diff != "" {
		t.Errorf("Shape mismatch (-want +got):\n%s", diff)
	}
	eqltest.AssertRenders(t, "select default::Hero { id }", q)
}

func TestSelect_NestedShape(t *testing.T) {
	reg := eqltest.TestRegistry(t)

	q, err := edgeql.Select(reg.Root("default::Hero"), func(h *edgeql.Scope) edgeql.Shape {
		return edgeql.Shape{
			edgeql.Field("name"),
			edgeql.Field("secret_identity"),
			edgeql.Nest("villains", func(v *edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{edgeql.Field("name")}
			}),
		}
	})
	eqltest.AssertNoError(t, err)
	eqltest.AssertCardinality(t, edgeql.Many, q)

	want := "{name: std::str, secret_identity: std::str?, villains: {name: std::str}[]}"
	if diff := cmp.Diff(want, shapeString(t, q)); diff != "" {
		t.Errorf("Shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"name", "secret_identity", "villains"}, q.Shape().Names()); diff != "" {
		t.Errorf("Field order mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_IncludedLinkUsesIDShape(t *testing.T) {
	reg := eqltest.TestRegistry(t)

	q, err := edgeql.SelectShape(reg.Root("default::Villain"), edgeql.Shape{edgeql.Field("nemesis")})
	eqltest.AssertNoError(t, err)

	if diff := cmp.Diff("{nemesis: {id: std::uuid}?}", shapeString(t, q)); diff != "" {
		t.Errorf("Shape mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_Modifiers(t *testing.T) {
	reg := eqltest.TestRegistry(t)
	heroes := reg.Root("default::Hero")

	tests := []struct {
		name  string
		shape func(h *edgeql.Scope) edgeql.Shape
		want  edgeql.Cardinality
	}{
		{
			name:  "no modifiers",
			shape: func(*edgeql.Scope) edgeql.Shape { return edgeql.Shape{edgeql.Field("name")} },
			want:  edgeql.Many,
		},
		{
			name: "filter",
			shape: func(h *edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{edgeql.Filter(edgeql.Must(edgeql.Op(edgeql.EQ, h.P("name"), "Tony")))}
			},
			want: edgeql.Many,
		},
		{
			name: "filter single",
			shape: func(h *edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{edgeql.FilterSingle(edgeql.Must(edgeql.Op(edgeql.EQ, h.P("name"), "Tony")))}
			},
			want: edgeql.AtMostOne,
		},
		{
			name: "filter exclusive",
			shape: func(*edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{edgeql.FilterExclusive(map[string]any{"name": "Tony"})}
			},
			want: edgeql.AtMostOne,
		},
		{
			name:  "limit 0",
			shape: func(*edgeql.Scope) edgeql.Shape { return edgeql.Shape{edgeql.Limit(0)} },
			want:  edgeql.Empty,
		},
		{
			name:  "limit 1",
			shape: func(*edgeql.Scope) edgeql.Shape { return edgeql.Shape{edgeql.Limit(1)} },
			want:  edgeql.AtMostOne,
		},
		{
			name:  "limit 10",
			shape: func(*edgeql.Scope) edgeql.Shape { return edgeql.Shape{edgeql.Limit(10)} },
			want:  edgeql.Many,
		},
		{
			name:  "limit expression",
			shape: func(*edgeql.Scope) edgeql.Shape { return edgeql.Shape{edgeql.Limit(edgeql.Int64(1))} },
			want:  edgeql.Many,
		},
		{
			name:  "offset",
			shape: func(*edgeql.Scope) edgeql.Shape { return edgeql.Shape{edgeql.Offset(5)} },
			want:  edgeql.Many,
		},
		{
			name: "order",
			shape: func(h *edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{edgeql.OrderBy(edgeql.Asc(h.P("name")))}
			},
			want: edgeql.Many,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := edgeql.Select(heroes, tt.shape)
			eqltest.AssertNoError(t, err)
			eqltest.AssertCardinality(t, tt.want, q)
		})
	}
}

func TestSelect_ModifiersOnSingleSource(t *testing.T) {
	reg := eqltest.TestRegistry(t)
	one := edgeql.AssertSingle(reg.Root("default::Hero"))

	q, err := edgeql.Select(one, func(h *edgeql.Scope) edgeql.Shape {
		return edgeql.Shape{edgeql.Field("name"), edgeql.Limit(1)}
	})
	eqltest.AssertNoError(t, err)
	eqltest.AssertCardinality(t, edgeql.AtMostOne, q)

	s, err := edgeql.Select(edgeql.Str("a"), func(*edgeql.Scope) edgeql.Shape {
		return edgeql.Shape{edgeql.Offset(1)}
	})
	eqltest.AssertNoError(t, err)
	eqltest.AssertCardinality(t, edgeql.AtMostOne, s)
}

func TestSelect_NestedModifiers(t *testing.T) {
	reg := eqltest.TestRegistry(t)

	q, err := edgeql.Select(reg.Root("default::Hero"), func(*edgeql.Scope) edgeql.Shape {
		return edgeql.Shape{
			edgeql.Nest("villains", func(v *edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{edgeql.Field("name"), edgeql.OrderBy(edgeql.Asc(v.P("name"))), edgeql.Limit(1)}
			}),
		}
	})
	eqltest.AssertNoError(t, err)

	f, ok := q.Shape().Field("villains")
	if !ok {
		t.Fatal("Expected villains field")
	}
	if f.Cardinality != edgeql.AtMostOne {
		t.Errorf("Expected AtMostOne, got %s", f.Cardinality)
	}
}

func TestSelect_ShapeKeyOrdering(t *testing.T) {
	reg := eqltest.TestRegistry(t)

	q, err := edgeql.Select(reg.Root("default::Hero"), func(h *edgeql.Scope) edgeql.Shape {
		return edgeql.Shape{
			edgeql.Field("name"),
			edgeql.Field("secret_identity"),
			edgeql.Field("number_of_movies"),
			edgeql.Compute("name", edgeql.Must(edgeql.Func("std::str_upper", edgeql.StdStr, h.P("name")))),
			edgeql.Exclude("secret_identity"),
		}
	})
	eqltest.AssertNoError(t, err)

	if diff := cmp.Diff([]string{"name", "number_of_movies"}, q.Shape().Names()); diff != "" {
		t.Errorf("Field order mismatch (-want +got):\n%s", diff)
	}
	f, _ := q.Shape().Field("name")
	if !f.Computed || f.Cardinality != edgeql.One {
		t.Errorf("Expected computed override with pointer cardinality, got %+v", f)
	}
	eqltest.AssertRenders(t, "select default::Hero { name := std::str_upper(.name), number_of_movies }", q)
}

func TestSelect_ComputedField(t *testing.T) {
	reg := eqltest.TestRegistry(t)

	q, err := edgeql.Select(reg.Root("default::Hero"), func(h *edgeql.Scope) edgeql.Shape {
		return edgeql.Shape{
			edgeql.Field("name"),
			edgeql.Compute("villain_count", edgeql.Count(h.P("villains"))),
			edgeql.Compute("villain_names", h.P("villains").P("name")),
		}
	})
	eqltest.AssertNoError(t, err)

	want := "{name: std::str, villain_count: std::int64, villain_names: std::str[]}"
	if diff := cmp.Diff(want, shapeString(t, q)); diff != "" {
		t.Errorf("Shape mismatch (-want +got):\n%s", diff)
	}

	// Computed fields are addressable on the result.
	count, err := q.TryP("villain_count")
	eqltest.AssertNoError(t, err)
	eqltest.AssertCardinality(t, edgeql.Many, count)
	if count.Element() != edgeql.StdInt64 {
		t.Errorf("Expected std::int64, got %s", count.Element().Name())
	}
}

func TestSelect_LinkProperties(t *testing.T) {
	reg := eqltest.TestRegistry(t)

	q, err := edgeql.Select(reg.Root("default::Movie"), func(*edgeql.Scope) edgeql.Shape {
		return edgeql.Shape{
			edgeql.Field("title"),
			edgeql.Nest("characters", func(c *edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{edgeql.Field("name"), edgeql.Field("@character_name")}
			}),
		}
	})
	eqltest.AssertNoError(t, err)

	want := "{title: std::str, characters: {name: std::str, @character_name: std::str?}[]}"
	if diff := cmp.Diff(want, shapeString(t, q)); diff != "" {
		t.Errorf("Shape mismatch (-want +got):\n%s", diff)
	}

	chars, _ := q.Shape().Field("characters")
	nested := chars.Type.(*edgeql.ObjectType).Shape()
	prop, _ := nested.Field("@character_name")
	if !prop.LinkProp {
		t.Error("Expected @character_name to be marked as a link property")
	}
}

func TestSelect_Polymorphic(t *testing.T) {
	reg := eqltest.TestRegistry(t)
	hero := reg.Object("default::Hero")
	villain := reg.Object("default::Villain")

	q, err := edgeql.Select(reg.Root("default::Person"), func(*edgeql.Scope) edgeql.Shape {
		return edgeql.Shape{
			edgeql.Field("name"),
			edgeql.Poly(hero, edgeql.Field("secret_identity")),
			edgeql.Poly(villain, edgeql.Nest("nemesis", func(*edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{edgeql.Field("name")}
			})),
		}
	})
	eqltest.AssertNoError(t, err)

	shape := q.Shape()
	if diff := cmp.Diff([]string{"name"}, shape.Names()); diff != "" {
		t.Errorf("Common fields mismatch (-want +got):\n%s", diff)
	}

	branchNames := func(typename string) []string {
		fields, ok := shape.Branch(typename)
		if !ok {
			t.Fatalf("Expected a %s branch", typename)
		}
		out := make([]string, len(fields))
		for i, f := range fields {
			out[i] = f.Name
		}
		return out
	}
	if diff := cmp.Diff([]string{"name", "__typename__", "secret_identity"}, branchNames("default::Hero")); diff != "" {
		t.Errorf("Hero branch mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"name", "__typename__", "nemesis"}, branchNames("default::Villain")); diff != "" {
		t.Errorf("Villain branch mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"name", "__typename__"}, branchNames("default::Person")); diff != "" {
		t.Errorf("Person branch mismatch (-want +got):\n%s", diff)
	}

	want := "{name: std::str}" +
		" | [is default::Hero] {name: std::str, __typename__: std::str, secret_identity: std::str?}" +
		" | [is default::Villain] {name: std::str, __typename__: std::str, nemesis: {name: std::str}?}" +
		" | [is default::Person] {name: std::str, __typename__: std::str}"
	if diff := cmp.Diff(want, shape.String()); diff != "" {
		t.Errorf("Shape mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_PolymorphicOverridesCommonKey(t *testing.T) {
	reg := eqltest.TestRegistry(t)
	hero := reg.Object("default::Hero")

	q, err := edgeql.Select(reg.Root("default::Person"), func(*edgeql.Scope) edgeql.Shape {
		return edgeql.Shape{
			edgeql.Field("id"),
			edgeql.Field("name"),
			edgeql.Poly(hero, edgeql.Field("name")),
		}
	})
	eqltest.AssertNoError(t, err)

	if diff := cmp.Diff([]string{"id"}, q.Shape().Names()); diff != "" {
		t.Errorf("Common fields mismatch (-want +got):\n%s", diff)
	}
	villain, ok := q.Shape().Branch("default::Villain")
	if !ok || len(villain) != 2 {
		t.Errorf("Expected Villain branch with id and __typename__, got %v", villain)
	}
	person, ok := q.Shape().Branch("default::Person")
	if !ok || len(person) != 2 {
		t.Errorf("Expected Person branch with id and __typename__, got %v", person)
	}
}

func TestSelect_PolymorphicOnConcreteSubtype(t *testing.T) {
	reg := eqltest.TestRegistry(t)
	hero := reg.Object("default::Hero")

	q, err := edgeql.Select(reg.Root("default::Hero"), func(*edgeql.Scope) edgeql.Shape {
		return edgeql.Shape{
			edgeql.Field("name"),
			edgeql.Poly(hero, edgeql.Field("secret_identity")),
		}
	})
	eqltest.AssertNoError(t, err)

	fields, ok := q.Shape().Branch("default::Hero")
	if !ok {
		t.Fatal("Expected a branch for the selected type")
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	if diff := cmp.Diff([]string{"name", "__typename__", "secret_identity"}, names); diff != "" {
		t.Errorf("Hero branch mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect_Errors(t *testing.T) {
	reg := eqltest.TestRegistry(t)
	heroes := reg.Root("default::Hero")
	movie := reg.Object("default::Movie")

	tests := []struct {
		name  string
		shape func(h *edgeql.Scope) edgeql.Shape
		check func(t *testing.T, err error)
	}{
		{
			name:  "unknown field",
			shape: func(*edgeql.Scope) edgeql.Shape { return edgeql.Shape{edgeql.Field("age")} },
			check: func(t *testing.T, err error) {
				var unknown edgeql.UnknownFieldError
				if !errors.As(err, &unknown) || unknown.Field != "age" {
					t.Errorf("Expected UnknownFieldError for age, got %v", err)
				}
			},
		},
		{
			name: "nested shape on a property",
			shape: func(*edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{edgeql.NestShape("name", edgeql.Shape{edgeql.Field("id")})}
			},
			check: isTypeMismatch,
		},
		{
			name: "nested unknown field",
			shape: func(*edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{edgeql.NestShape("villains", edgeql.Shape{edgeql.Field("age")})}
			},
			check: isUnknownField,
		},
		{
			name: "non boolean filter",
			shape: func(h *edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{edgeql.Filter(h.P("name"))}
			},
			check: isTypeMismatch,
		},
		{
			name: "non exclusive filter",
			shape: func(*edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{edgeql.FilterExclusive(map[string]any{"secret_identity": "Tony"})}
			},
			check: isUnknownField,
		},
		{
			name: "order by object",
			shape: func(h *edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{edgeql.OrderBy(edgeql.Asc(h.P("villains")))}
			},
			check: isTypeMismatch,
		},
		{
			name:  "negative limit",
			shape: func(*edgeql.Scope) edgeql.Shape { return edgeql.Shape{edgeql.Limit(-1)} },
			check: isTypeMismatch,
		},
		{
			name:  "string offset",
			shape: func(*edgeql.Scope) edgeql.Shape { return edgeql.Shape{edgeql.Offset("1")} },
			check: isTypeMismatch,
		},
		{
			name: "invalid narrowing",
			shape: func(*edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{edgeql.Poly(movie, edgeql.Field("title"))}
			},
			check: func(t *testing.T, err error) {
				var narrowing edgeql.InvalidNarrowingError
				if !errors.As(err, &narrowing) {
					t.Errorf("Expected InvalidNarrowingError, got %v", err)
				}
			},
		},
		{
			name: "link property outside a link",
			shape: func(*edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{edgeql.Field("@character_name")}
			},
			check: isUnknownField,
		},
		{
			name: "modifier inside polymorphic element",
			shape: func(*edgeql.Scope) edgeql.Shape {
				return edgeql.Shape{edgeql.Poly(reg.Object("default::Hero"), edgeql.Limit(1))}
			},
			check: isTypeMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := edgeql.Select(heroes, tt.shape)
			if err == nil {
				t.Fatal("Expected error")
			}
			tt.check(t, err)
		})
	}
}

func isTypeMismatch(t *testing.T, err error) {
	t.Helper()
	var mismatch edgeql.TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("Expected TypeMismatchError, got %T: %v", err, err)
	}
}

func isUnknownField(t *testing.T, err error) {
	t.Helper()
	var unknown edgeql.UnknownFieldError
	if !errors.As(err, &unknown) {
		t.Errorf("Expected UnknownFieldError, got %T: %v", err, err)
	}
}

func TestSelect_LinkPropertyNestedOnPerson(t *testing.T) {
	reg := eqltest.TestRegistry(t)
	_, err := edgeql.Select(reg.Root("default::Movie"), func(*edgeql.Scope) edgeql.Shape {
		return edgeql.Shape{
			edgeql.NestShape("characters", edgeql.Shape{edgeql.Field("@billing")}),
		}
	})
	isUnknownField(t, err)
}

func TestSelectFree(t *testing.T) {
	reg := eqltest.TestRegistry(t)

	q, err := edgeql.SelectFree(edgeql.Shape{
		edgeql.Compute("heroes", edgeql.Count(reg.Root("default::Hero"))),
		edgeql.Compute("greeting", edgeql.Str("hello")),
	})
	eqltest.AssertNoError(t, err)
	eqltest.AssertCardinality(t, edgeql.One, q)

	if diff := cmp.Diff("{heroes: std::int64, greeting: std::str}", shapeString(t, q)); diff != "" {
		t.Errorf("Shape mismatch (-want +got):\n%s", diff)
	}

	if _, err := edgeql.SelectFree(edgeql.Shape{edgeql.Field("name")}); err == nil {
		t.Error("Expected error for a non-computed free object field")
	}
	if _, err := edgeql.SelectFree(edgeql.Shape{edgeql.Limit(1)}); err == nil {
		t.Error("Expected error for a modifier on a free object")
	}
}

func TestSelect_NonObjectSource(t *testing.T) {
	set := edgeql.Must(edgeql.Set(1, 2, 3))

	q, err := edgeql.Select(set, func(s *edgeql.Scope) edgeql.Shape {
		if s != nil {
			t.Error("Expected a nil scope for a scalar source")
		}
		return edgeql.Shape{edgeql.Limit(2)}
	})
	eqltest.AssertNoError(t, err)
	eqltest.AssertCardinality(t, edgeql.Many, q)
	if q.Shape() != nil {
		t.Error("Expected no result shape for a scalar select")
	}
	if q.Element() != edgeql.StdInt64 {
		t.Errorf("Expected std::int64, got %s", q.Element().Name())
	}

	_, err = edgeql.Select(set, func(*edgeql.Scope) edgeql.Shape {
		return edgeql.Shape{edgeql.Field("id")}
	})
	isTypeMismatch(t, err)

	_, err = edgeql.Select(nil, nil)
	isTypeMismatch(t, err)
}

func TestSelect_AsSource(t *testing.T) {
	reg := eqltest.TestRegistry(t)

	inner, err := edgeql.Select(reg.Root("default::Hero"), func(h *edgeql.Scope) edgeql.Shape {
		return edgeql.Shape{edgeql.Field("name"), edgeql.Filter(edgeql.Must(edgeql.Op(edgeql.ILIKE, h.P("name"), "%man")))}
	})
	eqltest.AssertNoError(t, err)

	outer, err := edgeql.Select(inner, func(h *edgeql.Scope) edgeql.Shape {
		return edgeql.Shape{edgeql.Field("name"), edgeql.Limit(1)}
	})
	eqltest.AssertNoError(t, err)
	eqltest.AssertCardinality(t, edgeql.AtMostOne, outer)
	eqltest.AssertRenders(t, "select (select default::Hero { name } filter (.name ilike '%man')) { name } limit <std::int64>1", outer)
}

func TestPoly_IsAnExpression(t *testing.T) {
	reg := eqltest.TestRegistry(t)
	hero := reg.Object("default::Hero")

	el := edgeql.Poly(hero, edgeql.Field("secret_identity"))
	if el.Kind() != edgeql.ExprPolyShapeElement {
		t.Errorf("Expected %s, got %s", edgeql.ExprPolyShapeElement, el.Kind())
	}
	if el.Element() != hero || el.Subtype() != hero {
		t.Errorf("Expected the Hero element, got %s", el.Element().Name())
	}
	eqltest.AssertCardinality(t, edgeql.One, el)
	if len(el.Items()) != 1 {
		t.Errorf("Expected one item, got %d", len(el.Items()))
	}

	_, err := edgeql.ToEdgeQL(el)
	var unsupported edgeql.UnsupportedFeatureError
	if !errors.As(err, &unsupported) {
		t.Errorf("Expected UnsupportedFeatureError rendering outside a shape, got %v", err)
	}
}
