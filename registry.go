package edgeql

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zoobzio/edgeql/internal/logging"
	"github.com/zoobzio/edgeql/internal/types"
)

// Registry holds the named types of a schema. Types are stored in an arena
// and addressed by name; links between object types hold pointers into the
// same registry, so cycles need no special handling.
type Registry struct {
	index  map[string]int
	arena  []BaseType
	mu     sync.RWMutex
	sealed bool
}

// NewRegistry creates a registry holding the standard scalars and
// schema::ObjectType.
func NewRegistry() *Registry {
	r := &Registry{index: make(map[string]int)}
	for _, s := range types.StdScalars() {
		r.put(s)
	}
	r.put(SchemaObjectType)
	return r
}

func (r *Registry) put(t BaseType) {
	r.index[t.Name()] = len(r.arena)
	r.arena = append(r.arena, t)
}

// Register adds a named type. Registering a type structurally identical to
// the one already held under its name returns the existing instance;
// registering a different type under an existing name fails with
// DuplicateTypeNameError.
func (r *Registry) Register(t BaseType) (BaseType, error) {
	switch t.(type) {
	case *ScalarType, *EnumType, *ObjectType:
	default:
		return nil, TypeMismatchError{Type: t.Name(), Reason: "only scalar, enum and object types are registered by name"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.index[t.Name()]; ok {
		if existing := r.arena[i]; types.Equivalent(existing, t) {
			return existing, nil
		}
		return nil, DuplicateTypeNameError{Name: t.Name()}
	}
	if r.sealed {
		return nil, ErrRegistrySealed
	}
	r.put(t)
	return t, nil
}

// RegisterScalar creates and registers a custom scalar extending base.
func (r *Registry) RegisterScalar(name string, base *ScalarType) (*ScalarType, error) {
	s, err := types.DeriveScalarType(name, base)
	if err != nil {
		return nil, err
	}
	got, err := r.Register(s)
	if err != nil {
		return nil, err
	}
	return got.(*ScalarType), nil
}

// RegisterEnum creates and registers an enum type.
func (r *Registry) RegisterEnum(name string, members ...string) (*EnumType, error) {
	e, err := types.NewEnumType(name, members...)
	if err != nil {
		return nil, err
	}
	got, err := r.Register(e)
	if err != nil {
		return nil, err
	}
	return got.(*EnumType), nil
}

// RegisterObject creates and registers an empty object type. Pointers are
// added to the returned type until the registry is sealed. An existing object
// type that still has no declared pointers is returned as is.
func (r *Registry) RegisterObject(name string) (*ObjectType, error) {
	o, err := types.NewObjectType(name)
	if err != nil {
		return nil, err
	}
	got, err := r.Register(o)
	if err != nil {
		return nil, err
	}
	return got.(*ObjectType), nil
}

// Seal freezes every registered object type. Later registrations fail with
// ErrRegistrySealed.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return
	}
	objects := 0
	for _, t := range r.arena {
		if o, ok := t.(*ObjectType); ok {
			o.Freeze()
			objects++
		}
	}
	r.sealed = true
	logging.Debug().Int("types", len(r.arena)).Int("objects", objects).Msg("registry sealed")
}

// Sealed reports whether the registry has been sealed.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Lookup returns a registered type by name.
func (r *Registry) Lookup(name string) (BaseType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.arena[i], true
}

// Names lists the registered type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.index))
	for n := range r.index {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TryType resolves a type name, including derived names such as
// "array<std::str>" or "tuple<x: std::int64>", returning an error if
// unknown.
func (r *Registry) TryType(name string) (BaseType, error) {
	t, err := types.ParseTypeName(name, r.Lookup)
	if err != nil {
		return nil, fmt.Errorf("invalid type: %w", err)
	}
	return t, nil
}

// Type resolves a type name and panics if it is unknown.
func (r *Registry) Type(name string) BaseType {
	t, err := r.TryType(name)
	if err != nil {
		panic(err)
	}
	return t
}

// TryObject returns a registered object type, returning an error if the name
// is unknown or not an object type.
func (r *Registry) TryObject(name string) (*ObjectType, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("invalid object type: %q is not registered", name)
	}
	o, ok := t.(*ObjectType)
	if !ok {
		return nil, TypeMismatchError{Type: name, Reason: "not an object type"}
	}
	return o, nil
}

// Object returns a registered object type and panics if it is unknown.
func (r *Registry) Object(name string) *ObjectType {
	o, err := r.TryObject(name)
	if err != nil {
		panic(err)
	}
	return o
}

// TryScalar returns a registered scalar type, returning an error if the
// name is unknown or not a scalar.
func (r *Registry) TryScalar(name string) (*ScalarType, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("invalid scalar type: %q is not registered", name)
	}
	s, ok := t.(*ScalarType)
	if !ok {
		return nil, TypeMismatchError{Type: name, Reason: "not a scalar type"}
	}
	return s, nil
}

// Scalar returns a registered scalar type and panics if it is unknown.
func (r *Registry) Scalar(name string) *ScalarType {
	s, err := r.TryScalar(name)
	if err != nil {
		panic(err)
	}
	return s
}

// TryRoot returns the root set of a registered object type.
func (r *Registry) TryRoot(name string) (*PathExpr, error) {
	o, err := r.TryObject(name)
	if err != nil {
		return nil, err
	}
	return Root(o), nil
}

// Root returns the root set of a registered object type and panics if it is
// unknown.
func (r *Registry) Root(name string) *PathExpr {
	return Root(r.Object(name))
}
