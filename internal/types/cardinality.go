package types

import "fmt"

// Cardinality is the statically known multiplicity bound of a result set.
type Cardinality int

const (
	Empty Cardinality = iota
	AtMostOne
	One
	AtLeastOne
	Many
)

var cardinalityNames = [...]string{
	Empty:      "Empty",
	AtMostOne:  "AtMostOne",
	One:        "One",
	AtLeastOne: "AtLeastOne",
	Many:       "Many",
}

// Cardinalities lists every cardinality in lattice order.
var Cardinalities = []Cardinality{Empty, AtMostOne, One, AtLeastOne, Many}

func (c Cardinality) String() string {
	if c < Empty || c > Many {
		return fmt.Sprintf("Cardinality(%d)", int(c))
	}
	return cardinalityNames[c]
}

// Valid reports whether c is one of the five lattice values.
func (c Cardinality) Valid() bool {
	return c >= Empty && c <= Many
}

// ParseCardinality resolves a cardinality by name. Lowercase and EdgeQL
// spellings ("AT_MOST_ONE") are accepted.
func ParseCardinality(s string) (Cardinality, error) {
	switch s {
	case "Empty", "empty", "EMPTY":
		return Empty, nil
	case "AtMostOne", "atMostOne", "at_most_one", "AT_MOST_ONE":
		return AtMostOne, nil
	case "One", "one", "ONE":
		return One, nil
	case "AtLeastOne", "atLeastOne", "at_least_one", "AT_LEAST_ONE":
		return AtLeastOne, nil
	case "Many", "many", "MANY":
		return Many, nil
	}
	return Empty, fmt.Errorf("unknown cardinality %q", s)
}

// multiplyTable[a][b] is the product of a and b.
var multiplyTable = [5][5]Cardinality{
	Empty:      {Empty, Empty, Empty, Empty, Empty},
	AtMostOne:  {Empty, AtMostOne, AtMostOne, Many, Many},
	One:        {Empty, AtMostOne, One, AtLeastOne, Many},
	AtLeastOne: {Empty, Many, AtLeastOne, AtLeastOne, Many},
	Many:       {Empty, Many, Many, Many, Many},
}

// Multiply composes two cardinalities, as when one result is nested inside
// or combined with another.
func Multiply(a, b Cardinality) Cardinality {
	return multiplyTable[a][b]
}

// MultiplyVariadic folds Multiply left to right. The empty product is One.
func MultiplyVariadic(cs ...Cardinality) Cardinality {
	out := One
	for _, c := range cs {
		out = Multiply(out, c)
	}
	return out
}

// NamedTupleCardinality derives a named tuple's cardinality from its fields.
// Precedence: any Many, then any Empty, then all AtMostOne, then a mix of
// One and AtMostOne (One), otherwise Many.
func NamedTupleCardinality(cs ...Cardinality) Cardinality {
	var hasMany, hasEmpty, allAtMostOne, allSingular = false, false, true, true
	for _, c := range cs {
		switch c {
		case Many:
			hasMany = true
		case Empty:
			hasEmpty = true
		}
		if c != AtMostOne {
			allAtMostOne = false
		}
		if c != AtMostOne && c != One {
			allSingular = false
		}
	}
	switch {
	case hasMany:
		return Many
	case hasEmpty:
		return Empty
	case allAtMostOne:
		return AtMostOne
	case allSingular:
		return One
	default:
		return Many
	}
}

// Bound is one end of a cardinality interval.
type Bound int

const (
	Zero Bound = iota
	Single
	Unbounded
)

// Bounds returns the lower and upper bound of c.
func (c Cardinality) Bounds() (lower, upper Bound) {
	switch c {
	case Empty:
		return Zero, Zero
	case AtMostOne:
		return Zero, Single
	case One:
		return Single, Single
	case AtLeastOne:
		return Single, Unbounded
	default:
		return Zero, Unbounded
	}
}

// FromBounds is the inverse of Bounds. A lower bound above the upper bound
// collapses to the upper bound.
func FromBounds(lower, upper Bound) Cardinality {
	switch upper {
	case Zero:
		return Empty
	case Single:
		if lower == Zero {
			return AtMostOne
		}
		return One
	default:
		if lower == Zero {
			return Many
		}
		return AtLeastOne
	}
}

// IsSingleton reports whether c never exceeds one element.
func (c Cardinality) IsSingleton() bool {
	_, upper := c.Bounds()
	return upper != Unbounded
}

// IsOptional reports whether c admits an empty result.
func (c Cardinality) IsOptional() bool {
	lower, _ := c.Bounds()
	return lower == Zero
}

// OverrideLowerBound replaces the lower bound of c. Empty stays Empty.
func OverrideLowerBound(c Cardinality, lower Bound) Cardinality {
	if lower == Unbounded {
		lower = Single
	}
	_, upper := c.Bounds()
	return FromBounds(lower, upper)
}

// OverrideUpperBound replaces the upper bound of c.
func OverrideUpperBound(c Cardinality, upper Bound) Cardinality {
	lower, _ := c.Bounds()
	if upper == Zero {
		return Empty
	}
	return FromBounds(lower, upper)
}

// Merge is the cardinality of the union of two sets.
func Merge(a, b Cardinality) Cardinality {
	la, ua := a.Bounds()
	lb, ub := b.Bounds()
	lower := Zero
	if la == Single || lb == Single {
		lower = Single
	}
	upper := ua + ub
	if upper > Unbounded {
		upper = Unbounded
	}
	return FromBounds(lower, upper)
}

// MergeVariadic folds Merge. The union of nothing is Empty.
func MergeVariadic(cs ...Cardinality) Cardinality {
	out := Empty
	for _, c := range cs {
		out = Merge(out, c)
	}
	return out
}
