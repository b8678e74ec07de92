// Package edgeql provides a typed query model for EdgeQL databases.
//
// The package represents a schema's type universe, tracks the statically
// known cardinality of every expression, and projects selection shapes into
// result types. Every expression carries a TypeSet (element type plus
// cardinality) computed when it is constructed, so an expression that exists
// is well formed. Finished expressions render deterministically to EdgeQL.
//
// # Basic Usage
//
// Load a schema into a Registry, then build expressions against it:
//
//	reg, err := edgeql.LoadSchemaFile("schema.yaml")
//	if err != nil {
//		return err
//	}
//
//	hero := reg.Object("default::Hero")
//
//	query, err := edgeql.Select(edgeql.Root(hero), func(h *edgeql.Scope) edgeql.Shape {
//		return edgeql.Shape{
//			edgeql.Field("name"),
//			edgeql.Nest("villains", func(v *edgeql.Scope) edgeql.Shape {
//				return edgeql.Shape{edgeql.Field("name")}
//			}),
//			edgeql.FilterSingle(edgeql.Must(edgeql.Op(edgeql.EQ, h.P("name"), "Peter Parker"))),
//		}
//	})
//
//	// query.Cardinality(): AtMostOne
//	// query.Element():     {name: std::str, villains: {name: std::str}[]}
//
//	result, err := edgeql.Render(query)
//	// result.EdgeQL: select default::Hero { name, villains: { name } } filter (.name = 'Peter Parker')
//
// # Cardinality
//
// Cardinality is one of Empty, AtMostOne, One, AtLeastOne or Many. Nesting
// and combining results multiplies cardinalities; select modifiers (filter,
// limit, offset, filter_single) adjust them.
//
// # Errors
//
// Construction errors are typed values (TypeMismatchError, UnknownFieldError,
// InvalidNarrowingError, ...) matched with errors.As. Execution through Run
// and RunJSON enforces the declared cardinality and reports violations as
// ExecutionError.
package edgeql

import (
	"github.com/zoobzio/edgeql/internal/render"
	"github.com/zoobzio/edgeql/internal/types"
)

// BaseType is the root of every type descriptor.
// This is re-exported from internal/types for use by consumers.
type BaseType = types.BaseType

// TypeKind identifies the family of a type descriptor.
type TypeKind = types.TypeKind

// Re-export type kind constants for public API.
const (
	KindScalar     = types.KindScalar
	KindEnum       = types.KindEnum
	KindObject     = types.KindObject
	KindArray      = types.KindArray
	KindTuple      = types.KindTuple
	KindNamedTuple = types.KindNamedTuple
	KindRange      = types.KindRange
	KindMultiRange = types.KindMultiRange
)

// Type descriptors.
type (
	ScalarType     = types.ScalarType
	EnumType       = types.EnumType
	ObjectType     = types.ObjectType
	ArrayType      = types.ArrayType
	TupleType      = types.TupleType
	NamedTupleType = types.NamedTupleType
	NamedType      = types.NamedType
	RangeType      = types.RangeType
	MultiRangeType = types.MultiRangeType
	HostTypes      = types.HostTypes
	CoerceFunc     = types.CoerceFunc
)

// Pointer model.
type (
	Pointer       = types.Pointer
	PointerFlags  = types.PointerFlags
	PropertyDesc  = types.PropertyDesc
	LinkDesc      = types.LinkDesc
	NamedProperty = types.NamedProperty
)

// Projection results.
type (
	ResultShape = types.ResultShape
	ResultField = types.ResultField
	PolyBranch  = types.PolyBranch
)

// Cardinality is the statically known multiplicity of a result set.
type Cardinality = types.Cardinality

// Re-export cardinality constants for public API.
const (
	Empty      = types.Empty
	AtMostOne  = types.AtMostOne
	One        = types.One
	AtLeastOne = types.AtLeastOne
	Many       = types.Many
)

// TypeSet pairs an element type with a cardinality.
type TypeSet = types.TypeSet

// QueryResult contains the rendered EdgeQL and required parameters.
type QueryResult = types.QueryResult

// Operator represents EdgeQL operators.
type Operator = types.Operator

// Re-export operator constants for public API.
const (
	// Comparison operators.
	EQ = types.EQ
	NE = types.NE
	GT = types.GT
	GE = types.GE
	LT = types.LT
	LE = types.LE

	// Extended operators.
	IN       = types.IN
	NotIn    = types.NotIn
	LIKE     = types.LIKE
	NotLike  = types.NotLike
	ILIKE    = types.ILIKE
	NotILike = types.NotILike

	// Logical operators.
	AND = types.AND
	OR  = types.OR
	NOT = types.NOT

	// Arithmetic operators.
	Add      = types.Add
	Sub      = types.Sub
	Mul      = types.Mul
	Div      = types.Div
	FloorDiv = types.FloorDiv
	Mod      = types.Mod
	Pow      = types.Pow
	Neg      = types.Neg
	Concat   = types.Concat

	// Collection access.
	Index  = types.Index
	Slice  = types.Slice
	IfElse = types.IfElse
)

// Direction represents sort direction.
type Direction = types.Direction

// Re-export direction constants for public API.
const (
	ASC  = types.ASC
	DESC = types.DESC
)

// EmptyOrdering places empty values in an order by clause.
type EmptyOrdering = types.EmptyOrdering

// Re-export empty ordering constants for public API.
const (
	EmptyFirst = types.EmptyFirst
	EmptyLast  = types.EmptyLast
)

// Error types.
type (
	DuplicateTypeNameError       = types.DuplicateTypeNameError
	TypeMismatchError            = types.TypeMismatchError
	HeterogeneousArrayError      = types.HeterogeneousArrayError
	InvalidNarrowingError        = types.InvalidNarrowingError
	UnknownFieldError            = types.UnknownFieldError
	DisallowedParameterTypeError = types.DisallowedParameterTypeError
	ExecutionError               = types.ExecutionError
	ExecutionErrorCode           = types.ExecutionErrorCode
	UnsupportedFeatureError      = render.UnsupportedFeatureError
)

// Re-export execution error codes for public API.
const (
	CardinalityViolation = types.CardinalityViolation
	InvalidArgument      = types.InvalidArgument
	MalformedResult      = types.MalformedResult
	ExecutorFailure      = types.ExecutorFailure
)

// ErrRegistrySealed is returned when registering into a sealed registry.
var ErrRegistrySealed = types.ErrRegistrySealed

// IsCardinalityViolation reports whether err is a cardinality violation
// detected at run time.
func IsCardinalityViolation(err error) bool {
	return types.IsCardinalityViolation(err)
}

// Standard library scalars.
var (
	StdStr           = types.StdStr
	StdBool          = types.StdBool
	StdInt16         = types.StdInt16
	StdInt32         = types.StdInt32
	StdInt64         = types.StdInt64
	StdFloat32       = types.StdFloat32
	StdFloat64       = types.StdFloat64
	StdBigInt        = types.StdBigInt
	StdDecimal       = types.StdDecimal
	StdUUID          = types.StdUUID
	StdJSON          = types.StdJSON
	StdBytes         = types.StdBytes
	StdDatetime      = types.StdDatetime
	StdDuration      = types.StdDuration
	CalLocalDate     = types.CalLocalDate
	CalLocalDateTime = types.CalLocalDateTime
	PgVector         = types.PgVector
	SchemaObjectType = types.SchemaObjectType
)

// Multiply composes two cardinalities.
func Multiply(a, b Cardinality) Cardinality { return types.Multiply(a, b) }

// MultiplyVariadic folds Multiply left to right with identity One.
func MultiplyVariadic(cs ...Cardinality) Cardinality { return types.MultiplyVariadic(cs...) }

// NamedTupleCardinality derives a named tuple's cardinality from its fields.
func NamedTupleCardinality(cs ...Cardinality) Cardinality {
	return types.NamedTupleCardinality(cs...)
}

// Merge is the cardinality of the union of two sets.
func Merge(a, b Cardinality) Cardinality { return types.Merge(a, b) }

// SameType reports whether a and b describe the same type.
func SameType(a, b BaseType) bool { return types.SameType(a, b) }

// Classification predicates.
func IsScalarType(t BaseType) bool     { return types.IsScalarType(t) }
func IsEnumType(t BaseType) bool       { return types.IsEnumType(t) }
func IsObjectType(t BaseType) bool     { return types.IsObjectType(t) }
func IsArrayType(t BaseType) bool      { return types.IsArrayType(t) }
func IsTupleType(t BaseType) bool      { return types.IsTupleType(t) }
func IsNamedTupleType(t BaseType) bool { return types.IsNamedTupleType(t) }
func IsRangeType(t BaseType) bool      { return types.IsRangeType(t) }
func IsMultiRangeType(t BaseType) bool { return types.IsMultiRangeType(t) }

// Derived type constructors. Results are memoized, so two arrays over the
// same element are the same instance.
func ArrayOf(element BaseType) (*ArrayType, error)  { return types.ArrayOf(element) }
func TupleOf(items ...BaseType) (*TupleType, error) { return types.TupleOf(items...) }
func NamedTupleOf(fields ...NamedType) (*NamedTupleType, error) {
	return types.NamedTupleOf(fields...)
}
func RangeOf(element *ScalarType) (*RangeType, error) { return types.RangeOf(element) }
func MultiRangeOf(element *ScalarType) (*MultiRangeType, error) {
	return types.MultiRangeOf(element)
}

// Must panics if err is non-nil and returns v otherwise.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
