package types

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ObjectType is an object descriptor. Object types are mutable while a schema
// is being loaded and frozen once their registry is sealed.
type ObjectType struct {
	pointers     map[string]Pointer
	shape        *ResultShape
	schema       *ObjectType
	defaultShape *ObjectType
	name         string
	order        []string
	exclusives   [][]string
	polyNames    []string
	once         sync.Once
	frozen       bool
}

// NewObjectType creates an object type carrying the implicit id and
// __type__ pointers.
func NewObjectType(name string) (*ObjectType, error) {
	if name == "" {
		return nil, fmt.Errorf("object type name is required")
	}
	o := newBareObjectType(name)
	o.addImplicitPointers(SchemaObjectType)
	return o, nil
}

func newBareObjectType(name string) *ObjectType {
	return &ObjectType{name: name, pointers: make(map[string]Pointer)}
}

func (o *ObjectType) addImplicitPointers(meta *ObjectType) {
	o.setPointer(PointerID, &PropertyDesc{
		Target:      StdUUID,
		Cardinality: One,
		PointerFlags: PointerFlags{
			Exclusive:  true,
			Readonly:   true,
			HasDefault: true,
		},
	})
	o.setPointer(PointerTypeLink, &LinkDesc{
		Target:       meta,
		Cardinality:  One,
		PointerFlags: PointerFlags{Readonly: true},
	})
}

func (o *ObjectType) setPointer(name string, p Pointer) {
	if _, ok := o.pointers[name]; !ok {
		o.order = append(o.order, name)
	}
	o.pointers[name] = p
}

func (*ObjectType) Kind() TypeKind     { return KindObject }
func (o *ObjectType) Name() string     { return o.name }
func (o *ObjectType) identity() string { return o.name }

// AddProperty declares a property pointer.
func (o *ObjectType) AddProperty(name string, p *PropertyDesc) error {
	if err := o.checkNewPointer(name); err != nil {
		return err
	}
	if err := validatePropertyDesc(o.name, name, p); err != nil {
		return err
	}
	o.setPointer(name, p)
	return nil
}

// AddLink declares a link pointer.
func (o *ObjectType) AddLink(name string, l *LinkDesc) error {
	if err := o.checkNewPointer(name); err != nil {
		return err
	}
	if err := validateLinkDesc(o.name, name, l); err != nil {
		return err
	}
	o.setPointer(name, l)
	return nil
}

func (o *ObjectType) checkNewPointer(name string) error {
	if o.frozen {
		return ErrRegistrySealed
	}
	if name == "" {
		return TypeMismatchError{Type: o.name, Reason: "pointer name is required"}
	}
	if IsReservedPointer(name) || name == TypenameField || strings.HasPrefix(name, "@") {
		return TypeMismatchError{Type: o.name, Field: name, Reason: "pointer name is reserved"}
	}
	if _, dup := o.pointers[name]; dup {
		return TypeMismatchError{Type: o.name, Field: name, Reason: "duplicate pointer"}
	}
	return nil
}

// AddExclusive declares a group of pointers that are jointly unique.
func (o *ObjectType) AddExclusive(names ...string) error {
	if o.frozen {
		return ErrRegistrySealed
	}
	if len(names) == 0 {
		return TypeMismatchError{Type: o.name, Reason: "exclusive constraint requires at least one pointer"}
	}
	for _, n := range names {
		if _, ok := o.pointers[n]; !ok {
			return UnknownFieldError{Type: o.name, Field: n}
		}
	}
	group := append([]string(nil), names...)
	sort.Strings(group)
	o.exclusives = append(o.exclusives, group)
	return nil
}

// AddPolyTypenames records subtype names reachable by narrowing.
func (o *ObjectType) AddPolyTypenames(names ...string) error {
	if o.frozen {
		return ErrRegistrySealed
	}
	for _, n := range names {
		if n == "" || n == o.name || o.HasPolyTypename(n) {
			continue
		}
		o.polyNames = append(o.polyNames, n)
		sort.Strings(o.polyNames)
	}
	return nil
}

// Freeze makes the object type immutable.
func (o *ObjectType) Freeze() { o.frozen = true }

// Frozen reports whether the object type is immutable.
func (o *ObjectType) Frozen() bool { return o.frozen }

// Pointer looks up a pointer by name.
func (o *ObjectType) Pointer(name string) (Pointer, bool) {
	p, ok := o.pointers[name]
	return p, ok
}

// PointerNames returns pointer names in declaration order, implicit
// pointers first.
func (o *ObjectType) PointerNames() []string {
	return append([]string(nil), o.order...)
}

// Exclusives returns the declared exclusive groups.
func (o *ObjectType) Exclusives() [][]string {
	out := make([][]string, len(o.exclusives))
	for i, g := range o.exclusives {
		out[i] = append([]string(nil), g...)
	}
	return out
}

// IsExclusive reports whether names identify at most one object: either a
// single exclusive pointer or exactly a declared exclusive group.
func (o *ObjectType) IsExclusive(names ...string) bool {
	if len(names) == 1 {
		if p, ok := o.pointers[names[0]]; ok && p.GetFlags().Exclusive {
			return true
		}
	}
	key := append([]string(nil), names...)
	sort.Strings(key)
	for _, g := range o.exclusives {
		if len(g) != len(key) {
			continue
		}
		match := true
		for i := range g {
			if g[i] != key[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// PolyTypenames returns the sorted subtype names reachable by narrowing.
func (o *ObjectType) PolyTypenames() []string {
	return append([]string(nil), o.polyNames...)
}

// HasPolyTypename reports whether name is a declared subtype.
func (o *ObjectType) HasPolyTypename(name string) bool {
	i := sort.SearchStrings(o.polyNames, name)
	return i < len(o.polyNames) && o.polyNames[i] == name
}

// CanNarrowTo reports whether an "is" narrowing from o to sub is valid.
func (o *ObjectType) CanNarrowTo(sub *ObjectType) bool {
	return o.name == sub.name || o.HasPolyTypename(sub.name)
}

// Shape returns the projection marker, or nil for schema types.
func (o *ObjectType) Shape() *ResultShape { return o.shape }

// SchemaType returns the registered type a projection was derived from.
func (o *ObjectType) SchemaType() *ObjectType {
	if o.schema != nil {
		return o.schema
	}
	return o
}

// InsertablePointers returns the pointers that may be set on insert.
func (o *ObjectType) InsertablePointers() []string {
	var out []string
	for _, name := range o.order {
		p := o.pointers[name]
		if IsReservedPointer(name) || IsBacklink(name) || p.GetFlags().Computed {
			continue
		}
		out = append(out, name)
	}
	return out
}

// UpdatablePointers returns the pointers that may be set on update.
func (o *ObjectType) UpdatablePointers() []string {
	var out []string
	for _, name := range o.InsertablePointers() {
		if o.pointers[name].GetFlags().Readonly {
			continue
		}
		out = append(out, name)
	}
	return out
}

// NewShapeType derives an unregistered projection of source. It keeps the
// source pointers so paths and narrowing work on results.
func NewShapeType(source *ObjectType, shape *ResultShape) *ObjectType {
	o := &ObjectType{
		name:       source.name,
		pointers:   source.pointers,
		order:      source.order,
		exclusives: source.exclusives,
		polyNames:  source.polyNames,
		schema:     source.SchemaType(),
		shape:      shape,
		frozen:     true,
	}
	return o
}

// DefaultShape returns o projected to {id}, the shape used for links that
// are included without a nested selection.
func (o *ObjectType) DefaultShape() *ObjectType {
	src := o.SchemaType()
	src.once.Do(func() {
		src.defaultShape = NewShapeType(src, &ResultShape{Fields: []*ResultField{IDField()}})
	})
	return src.defaultShape
}

func (o *ObjectType) String() string {
	if o.shape != nil {
		return o.shape.String()
	}
	return o.name
}

// IDField is the result field for the implicit id pointer.
func IDField() *ResultField {
	return &ResultField{Name: PointerID, Type: StdUUID, Cardinality: One}
}

// ResultField is one field of a projected object.
type ResultField struct {
	Type        BaseType
	Name        string
	Cardinality Cardinality
	Computed    bool
	LinkProp    bool
}

// PolyBranch is the result variant for one polymorphic subtype. Fields
// starts with the __typename__ discriminant.
type PolyBranch struct {
	Typename string
	Fields   []*ResultField
}

// ResultShape marks an object type as the result of a projection.
type ResultShape struct {
	Fields   []*ResultField
	Branches []*PolyBranch
}

// Field looks up a common-branch field.
func (s *ResultShape) Field(name string) (*ResultField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Names returns the common-branch field names in order.
func (s *ResultShape) Names() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// Branch returns the fields visible on a value of the given subtype: the
// common branch followed by the subtype branch.
func (s *ResultShape) Branch(typename string) ([]*ResultField, bool) {
	for _, b := range s.Branches {
		if b.Typename == typename {
			out := make([]*ResultField, 0, len(s.Fields)+len(b.Fields))
			out = append(out, s.Fields...)
			return append(out, b.Fields...), true
		}
	}
	return nil, false
}

func (s *ResultShape) String() string {
	var b strings.Builder
	writeFields(&b, s.Fields)
	for _, br := range s.Branches {
		b.WriteString(" | [is ")
		b.WriteString(br.Typename)
		b.WriteString("] ")
		all := append(append([]*ResultField(nil), s.Fields...), br.Fields...)
		writeFields(&b, all)
	}
	return b.String()
}

func writeFields(b *strings.Builder, fields []*ResultField) {
	b.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(TypeSet{Element: f.Type, Cardinality: f.Cardinality}.String())
	}
	b.WriteByte('}')
}
