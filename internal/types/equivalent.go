package types

// Equivalent reports whether two named types share a structure: the same
// name plus, for scalars, the same base chain; for enums, the same members in
// order; for objects, the same pointers, exclusives and subtype names.
// Pointer targets are compared by identity key.
func Equivalent(a, b BaseType) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind() != b.Kind() || a.Name() != b.Name() {
		return false
	}
	switch x := a.(type) {
	case *ScalarType:
		y := b.(*ScalarType)
		if x.base == nil || y.base == nil {
			return false
		}
		return Equivalent(x.base, y.base)
	case *EnumType:
		return equalStrings(x.members, b.(*EnumType).members)
	case *ObjectType:
		return equivalentObjects(x, b.(*ObjectType))
	}
	return false
}

func equivalentObjects(x, y *ObjectType) bool {
	if x.shape != nil || y.shape != nil {
		return false
	}
	if !equalStrings(x.order, y.order) || !equalStrings(x.polyNames, y.polyNames) {
		return false
	}
	if len(x.exclusives) != len(y.exclusives) {
		return false
	}
	for i := range x.exclusives {
		if !equalStrings(x.exclusives[i], y.exclusives[i]) {
			return false
		}
	}
	for _, name := range x.order {
		if !equivalentPointers(x.pointers[name], y.pointers[name]) {
			return false
		}
	}
	return true
}

func equivalentPointers(p, q Pointer) bool {
	if p == nil || q == nil || p.PointerKind() != q.PointerKind() {
		return p == q
	}
	if p.GetCardinality() != q.GetCardinality() || p.GetFlags() != q.GetFlags() {
		return false
	}
	if !sameTarget(p.GetTarget(), q.GetTarget()) {
		return false
	}
	pl, ok := p.(*LinkDesc)
	if !ok {
		return true
	}
	ql := q.(*LinkDesc)
	if len(pl.Properties) != len(ql.Properties) {
		return false
	}
	for i, prop := range pl.Properties {
		other := ql.Properties[i]
		if prop.Name != other.Name || !equivalentPointers(prop.Desc, other.Desc) {
			return false
		}
	}
	return true
}

func sameTarget(a, b BaseType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a == b || IdentityKey(a) == IdentityKey(b)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
