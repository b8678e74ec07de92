package types

// QueryResult is a rendered query: the EdgeQL text and the names of the
// parameters it declares, in declaration order.
type QueryResult struct {
	EdgeQL         string
	RequiredParams []string
}

// MaxNestingDepth bounds nested shapes and sub-expressions.
const MaxNestingDepth = 32
