package edgeql

import (
	"testing"
)

func TestModifiers_Apply(t *testing.T) {
	cond := Bool(true)
	n := Int64(5)

	tests := []struct {
		name string
		mods modifiers
		in   Cardinality
		want Cardinality
	}{
		{"none", modifiers{}, Many, Many},
		{"filter on One", modifiers{filter: cond}, One, AtMostOne},
		{"filter on AtLeastOne", modifiers{filter: cond}, AtLeastOne, Many},
		{"offset", modifiers{offset: n}, AtLeastOne, Many},
		{"limit 0", modifiers{limit: Int64(0), limitKnown: true}, Many, Empty},
		{"limit 1 on Many", modifiers{limit: Int64(1), limitN: 1, limitKnown: true}, Many, AtMostOne},
		{"limit 1 on AtLeastOne", modifiers{limit: Int64(1), limitN: 1, limitKnown: true}, AtLeastOne, One},
		{"limit 5", modifiers{limit: n, limitN: 5, limitKnown: true}, AtLeastOne, Many},
		{"limit expression", modifiers{limit: n}, One, AtMostOne},
		{"filter and limit 1", modifiers{filter: cond, limit: Int64(1), limitN: 1, limitKnown: true}, AtLeastOne, AtMostOne},
		{"single", modifiers{filter: cond, single: true}, Many, AtMostOne},
		{"single on Empty", modifiers{single: true}, Empty, AtMostOne},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mods.apply(tt.in); got != tt.want {
				t.Errorf("apply(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestModifiers_Empty(t *testing.T) {
	if !(modifiers{}).empty() {
		t.Error("Expected zero modifiers to be empty")
	}
	if (modifiers{order: []OrderTerm{Asc(Int64(1))}}).empty() {
		t.Error("Expected order to count as a modifier")
	}
	if (modifiers{single: true}).empty() {
		t.Error("Expected single to count as a modifier")
	}
}

func TestCheckCardinality(t *testing.T) {
	tests := []struct {
		card    Cardinality
		n       int
		wantErr bool
	}{
		{Empty, 0, false},
		{Empty, 1, true},
		{AtMostOne, 0, false},
		{AtMostOne, 1, false},
		{AtMostOne, 2, true},
		{One, 0, true},
		{One, 1, false},
		{One, 2, true},
		{AtLeastOne, 0, true},
		{AtLeastOne, 3, false},
		{Many, 0, false},
		{Many, 100, false},
	}
	for _, tt := range tests {
		err := checkCardinality(tt.card, tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("checkCardinality(%s, %d) error = %v, wantErr %v", tt.card, tt.n, err, tt.wantErr)
		}
	}
}
