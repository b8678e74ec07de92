package render

// ArgStyle is how a backend binds query arguments.
type ArgStyle int

const (
	ArgsPositional ArgStyle = iota // $1, $2 in sorted name order
	ArgsNamed                      // :name or @name
)

// Capabilities describes the argument kinds an executor backend can bind.
type Capabilities struct {
	Args        ArgStyle
	Ranges      bool // Range and MultiRange arguments
	Vectors     bool // ext::pgvector::vector arguments
	Collections bool // arrays, tuples and named tuples
}

// Supports reports whether an argument of the given kind can be bound.
func (c Capabilities) Supports(kind string) bool {
	switch kind {
	case "range", "multirange":
		return c.Ranges
	case "vector":
		return c.Vectors
	case "array", "tuple", "namedtuple":
		return c.Collections
	}
	return true
}
