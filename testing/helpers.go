// Package testing provides test utilities for edgeql.
package testing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/zoobzio/dbml"
	"github.com/zoobzio/edgeql"
)

// TestRegistry creates a sealed registry holding the canonical test schema:
//
//	default::Person  { name }                         subtypes Hero, Villain
//	default::Hero    { name, secret_identity, number_of_movies, villains -> Villain[] }
//	default::Villain { name, nemesis -> Hero? }
//	default::Movie   { title, release_year, rating, characters -> Person[] { @character_name } }
func TestRegistry(t testing.TB) *edgeql.Registry {
	t.Helper()

	reg := edgeql.NewRegistry()
	person := mustObject(t, reg, "default::Person")
	hero := mustObject(t, reg, "default::Hero")
	villain := mustObject(t, reg, "default::Villain")
	movie := mustObject(t, reg, "default::Movie")

	name := func() *edgeql.PropertyDesc {
		return &edgeql.PropertyDesc{
			Target:       edgeql.StdStr,
			Cardinality:  edgeql.One,
			PointerFlags: edgeql.PointerFlags{Exclusive: true},
		}
	}
	for _, o := range []*edgeql.ObjectType{person, hero, villain} {
		must(t, o.AddProperty("name", name()))
	}
	must(t, person.AddPolyTypenames(hero.Name(), villain.Name()))

	must(t, hero.AddProperty("secret_identity", &edgeql.PropertyDesc{Target: edgeql.StdStr, Cardinality: edgeql.AtMostOne}))
	must(t, hero.AddProperty("number_of_movies", &edgeql.PropertyDesc{Target: edgeql.StdInt64, Cardinality: edgeql.AtMostOne}))
	must(t, hero.AddLink("villains", &edgeql.LinkDesc{Target: villain, Cardinality: edgeql.Many}))
	must(t, villain.AddLink("nemesis", &edgeql.LinkDesc{Target: hero, Cardinality: edgeql.AtMostOne}))

	must(t, movie.AddProperty("title", &edgeql.PropertyDesc{Target: edgeql.StdStr, Cardinality: edgeql.One}))
	must(t, movie.AddProperty("release_year", &edgeql.PropertyDesc{Target: edgeql.StdInt16, Cardinality: edgeql.One}))
	must(t, movie.AddProperty("rating", &edgeql.PropertyDesc{Target: edgeql.StdFloat64, Cardinality: edgeql.AtMostOne}))
	must(t, movie.AddLink("characters", &edgeql.LinkDesc{
		Target:      person,
		Cardinality: edgeql.Many,
		Properties: []edgeql.NamedProperty{{
			Name: "character_name",
			Desc: &edgeql.PropertyDesc{Target: edgeql.StdStr, Cardinality: edgeql.AtMostOne},
		}},
	}))
	must(t, movie.AddExclusive("title", "release_year"))

	reg.Seal()
	return reg
}

// TestDBMLRegistry creates a registry from a small DBML project with users
// and posts tables.
func TestDBMLRegistry(t testing.TB) *edgeql.Registry {
	t.Helper()

	project := dbml.NewProject("test")

	users := dbml.NewTable("users")
	users.AddColumn(dbml.NewColumn("id", "uuid"))
	users.AddColumn(dbml.NewColumn("username", "varchar"))
	users.AddColumn(dbml.NewColumn("email", "varchar(255)"))
	users.AddColumn(dbml.NewColumn("age", "int"))
	users.AddColumn(dbml.NewColumn("active", "boolean"))
	users.AddColumn(dbml.NewColumn("created_at", "timestamp"))
	users.AddColumn(dbml.NewColumn("metadata", "jsonb"))
	users.AddColumn(dbml.NewColumn("tags", "text[]"))
	users.AddColumn(dbml.NewColumn("embedding", "vector"))
	project.AddTable(users)

	posts := dbml.NewTable("posts")
	posts.AddColumn(dbml.NewColumn("id", "uuid"))
	posts.AddColumn(dbml.NewColumn("title", "varchar"))
	posts.AddColumn(dbml.NewColumn("body", "text"))
	posts.AddColumn(dbml.NewColumn("views", "bigint"))
	posts.AddColumn(dbml.NewColumn("score", "numeric"))
	project.AddTable(posts)

	reg, err := edgeql.NewFromDBML(project)
	if err != nil {
		t.Fatalf("Failed to create DBML registry: %v", err)
	}
	return reg
}

func mustObject(t testing.TB, reg *edgeql.Registry, name string) *edgeql.ObjectType {
	t.Helper()
	o, err := reg.RegisterObject(name)
	if err != nil {
		t.Fatalf("Failed to register %s: %v", name, err)
	}
	return o
}

func must(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Failed to build test schema: %v", err)
	}
}

// Call is one query received by a StubExecutor.
type Call struct {
	Args  map[string]any
	Query string
}

// StubExecutor is an edgeql.Executor returning canned JSON.
type StubExecutor struct {
	Err    error
	Result string
	calls  []Call
	mu     sync.Mutex
}

var _ edgeql.Executor = (*StubExecutor)(nil)

// NewStubExecutor returns an executor that answers every query with result.
func NewStubExecutor(result string) *StubExecutor {
	return &StubExecutor{Result: result}
}

// QueryJSON records the call and returns the canned result.
func (s *StubExecutor) QueryJSON(_ context.Context, query string, args map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Query: query, Args: args})
	if s.Err != nil {
		return "", s.Err
	}
	return s.Result, nil
}

// Calls returns the recorded calls in order.
func (s *StubExecutor) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// AssertEdgeQL fails the test when actual differs from expected, printing a diff.
func AssertEdgeQL(t testing.TB, expected, actual string) {
	t.Helper()
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("EdgeQL mismatch (-want +got):\n%s", diff)
	}
}

// AssertRenders renders expr and compares the text with expected.
func AssertRenders(t testing.TB, expected string, expr edgeql.Expression) {
	t.Helper()
	actual, err := edgeql.ToEdgeQL(expr)
	if err != nil {
		t.Fatalf("render %T: %v", expr, err)
	}
	AssertEdgeQL(t, expected, actual)
}

// AssertCardinality checks the static cardinality of expr.
func AssertCardinality(t testing.TB, expected edgeql.Cardinality, expr edgeql.Expression) {
	t.Helper()
	if actual := expr.Cardinality(); actual != expected {
		t.Errorf("cardinality of %T: got %s, want %s", expr, actual, expected)
	}
}

// AssertParams checks the declared parameter names, in order.
func AssertParams(t testing.TB, expected, actual []string) {
	t.Helper()
	if diff := cmp.Diff(expected, actual, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

// AssertNoError stops the test when err is non-nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertExecutionError checks that err carries an edgeql.ExecutionError
// with the given code and returns it.
func AssertExecutionError(t testing.TB, err error, code edgeql.ExecutionErrorCode) edgeql.ExecutionError {
	t.Helper()
	var ee edgeql.ExecutionError
	if !errors.As(err, &ee) {
		t.Fatalf("expected an ExecutionError, got %v", err)
	}
	if ee.Code != code {
		t.Fatalf("execution error code: got %v, want %v (%v)", ee.Code, code, err)
	}
	return ee
}
