package edgeql

import (
	"testing"
)

// loadTestSchema loads testdata/schema.yaml:
//
//	default::Person   { name }                      subtypes Hero, Villain (Sidekick via Hero)
//	default::Hero     { name, secret_identity, number_of_movies, villains -> Villain[] }
//	default::Sidekick { name }
//	default::Villain  { name, nemesis -> Hero? }
//	default::Movie    { title, release_year, genre, tags, rating, slug, characters -> Person[] { @character_name } }
func loadTestSchema(t *testing.T) *Registry {
	t.Helper()
	reg, err := LoadSchemaFile("testdata/schema.yaml")
	if err != nil {
		t.Fatalf("Failed to load test schema: %v", err)
	}
	return reg
}
