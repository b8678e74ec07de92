package types

import "testing"

// =============================================================================
// Multiply Tests
// =============================================================================

func TestMultiply_Table(t *testing.T) {
	tests := []struct {
		a, b, want Cardinality
	}{
		{AtMostOne, AtMostOne, AtMostOne},
		{AtMostOne, One, AtMostOne},
		{AtMostOne, AtLeastOne, Many},
		{AtMostOne, Many, Many},
		{One, One, One},
		{One, AtLeastOne, AtLeastOne},
		{AtLeastOne, AtMostOne, Many},
		{AtLeastOne, One, AtLeastOne},
		{AtLeastOne, AtLeastOne, AtLeastOne},
		{Many, One, Many},
		{Many, AtMostOne, Many},
	}
	for _, tt := range tests {
		if got := Multiply(tt.a, tt.b); got != tt.want {
			t.Errorf("Multiply(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMultiply_EmptyAbsorbs(t *testing.T) {
	for _, c := range Cardinalities {
		if got := Multiply(c, Empty); got != Empty {
			t.Errorf("Multiply(%s, Empty) = %s, want Empty", c, got)
		}
		if got := Multiply(Empty, c); got != Empty {
			t.Errorf("Multiply(Empty, %s) = %s, want Empty", c, got)
		}
	}
}

func TestMultiply_OneIsIdentity(t *testing.T) {
	for _, c := range Cardinalities {
		if got := Multiply(c, One); got != c {
			t.Errorf("Multiply(%s, One) = %s, want %s", c, got, c)
		}
		if got := Multiply(One, c); got != c {
			t.Errorf("Multiply(One, %s) = %s, want %s", c, got, c)
		}
	}
}

func TestMultiply_Associative(t *testing.T) {
	for _, a := range Cardinalities {
		for _, b := range Cardinalities {
			for _, c := range Cardinalities {
				left := Multiply(Multiply(a, b), c)
				right := Multiply(a, Multiply(b, c))
				if left != right {
					t.Errorf("(%s*%s)*%s = %s, %s*(%s*%s) = %s", a, b, c, left, a, b, c, right)
				}
			}
		}
	}
}

func TestMultiplyVariadic(t *testing.T) {
	if got := MultiplyVariadic(); got != One {
		t.Errorf("MultiplyVariadic() = %s, want One", got)
	}
	if got := MultiplyVariadic(One, AtMostOne, AtLeastOne); got != Many {
		t.Errorf("MultiplyVariadic(One, AtMostOne, AtLeastOne) = %s, want Many", got)
	}
	if got := MultiplyVariadic(One, One, One); got != One {
		t.Errorf("MultiplyVariadic(One, One, One) = %s, want One", got)
	}
}

// =============================================================================
// Named Tuple Cardinality Tests
// =============================================================================

func TestNamedTupleCardinality(t *testing.T) {
	tests := []struct {
		name string
		in   []Cardinality
		want Cardinality
	}{
		{"no fields", nil, AtMostOne},
		{"all one", []Cardinality{One, One}, One},
		{"many wins over empty", []Cardinality{Empty, Many}, Many},
		{"empty", []Cardinality{One, Empty}, Empty},
		{"all at most one", []Cardinality{AtMostOne, AtMostOne}, AtMostOne},
		{"mixed one and at most one", []Cardinality{One, AtMostOne}, One},
		{"at least one", []Cardinality{One, AtLeastOne}, Many},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NamedTupleCardinality(tt.in...); got != tt.want {
				t.Errorf("NamedTupleCardinality(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

// =============================================================================
// Bounds Tests
// =============================================================================

func TestBounds_RoundTrip(t *testing.T) {
	for _, c := range Cardinalities {
		lower, upper := c.Bounds()
		if got := FromBounds(lower, upper); got != c {
			t.Errorf("FromBounds(%s.Bounds()) = %s", c, got)
		}
	}
}

func TestOverrideBounds(t *testing.T) {
	if got := OverrideLowerBound(One, Zero); got != AtMostOne {
		t.Errorf("OverrideLowerBound(One, Zero) = %s, want AtMostOne", got)
	}
	if got := OverrideLowerBound(AtLeastOne, Zero); got != Many {
		t.Errorf("OverrideLowerBound(AtLeastOne, Zero) = %s, want Many", got)
	}
	if got := OverrideLowerBound(Empty, Single); got != Empty {
		t.Errorf("OverrideLowerBound(Empty, Single) = %s, want Empty", got)
	}
	if got := OverrideUpperBound(Many, Single); got != AtMostOne {
		t.Errorf("OverrideUpperBound(Many, Single) = %s, want AtMostOne", got)
	}
	if got := OverrideUpperBound(AtLeastOne, Single); got != One {
		t.Errorf("OverrideUpperBound(AtLeastOne, Single) = %s, want One", got)
	}
	if got := OverrideUpperBound(One, Zero); got != Empty {
		t.Errorf("OverrideUpperBound(One, Zero) = %s, want Empty", got)
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		a, b, want Cardinality
	}{
		{Empty, One, One},
		{One, One, AtLeastOne},
		{AtMostOne, AtMostOne, Many},
		{AtMostOne, Empty, AtMostOne},
		{One, Many, AtLeastOne},
		{Many, Many, Many},
	}
	for _, tt := range tests {
		if got := Merge(tt.a, tt.b); got != tt.want {
			t.Errorf("Merge(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
	if got := MergeVariadic(); got != Empty {
		t.Errorf("MergeVariadic() = %s, want Empty", got)
	}
}

func TestParseCardinality(t *testing.T) {
	for _, c := range Cardinalities {
		got, err := ParseCardinality(c.String())
		if err != nil {
			t.Fatalf("ParseCardinality(%q) error: %v", c.String(), err)
		}
		if got != c {
			t.Errorf("ParseCardinality(%q) = %s", c.String(), got)
		}
	}
	if got, _ := ParseCardinality("AT_MOST_ONE"); got != AtMostOne {
		t.Errorf("ParseCardinality(AT_MOST_ONE) = %s", got)
	}
	if _, err := ParseCardinality("Some"); err == nil {
		t.Error("expected error for unknown cardinality")
	}
}
