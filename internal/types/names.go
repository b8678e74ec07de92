package types

import (
	"fmt"
	"strings"
)

// LookupFunc resolves a plain type name.
type LookupFunc func(name string) (BaseType, bool)

// ParseTypeName resolves a type name, building derived collection types
// ("array<std::str>", "tuple<x: std::str, y: std::int64>",
// "range<std::int32>") around names resolved by lookup.
func ParseTypeName(name string, lookup LookupFunc) (BaseType, error) {
	name = strings.TrimSpace(name)
	open := strings.IndexByte(name, '<')
	if open < 0 {
		if t, ok := lookup(name); ok {
			return t, nil
		}
		return nil, UnknownFieldError{Type: "schema", Field: name}
	}
	if !strings.HasSuffix(name, ">") {
		return nil, fmt.Errorf("malformed type name %q", name)
	}
	ctor, body := name[:open], name[open+1:len(name)-1]
	args, err := splitTypeArgs(body)
	if err != nil {
		return nil, fmt.Errorf("malformed type name %q: %w", name, err)
	}
	switch ctor {
	case "array":
		if len(args) != 1 {
			return nil, fmt.Errorf("array type %q takes one element", name)
		}
		el, err := ParseTypeName(args[0], lookup)
		if err != nil {
			return nil, err
		}
		return ArrayOf(el)
	case "range", "multirange":
		if len(args) != 1 {
			return nil, fmt.Errorf("%s type %q takes one element", ctor, name)
		}
		el, err := ParseTypeName(args[0], lookup)
		if err != nil {
			return nil, err
		}
		s, ok := el.(*ScalarType)
		if !ok {
			return nil, TypeMismatchError{Type: name, Reason: "range element must be a scalar"}
		}
		if ctor == "range" {
			return RangeOf(s)
		}
		return MultiRangeOf(s)
	case "tuple":
		return parseTuple(args, lookup)
	}
	return nil, fmt.Errorf("unknown type constructor %q", ctor)
}

func parseTuple(args []string, lookup LookupFunc) (BaseType, error) {
	if len(args) == 0 {
		return TupleOf()
	}
	var named []NamedType
	var items []BaseType
	for i, arg := range args {
		field, typ, isNamed := splitTupleField(arg)
		if i > 0 && isNamed != (named != nil) {
			return nil, fmt.Errorf("tuple mixes named and positional items")
		}
		t, err := ParseTypeName(typ, lookup)
		if err != nil {
			return nil, err
		}
		if isNamed {
			named = append(named, NamedType{Name: field, Type: t})
		} else {
			items = append(items, t)
		}
	}
	if named != nil {
		return NamedTupleOf(named...)
	}
	return TupleOf(items...)
}

// splitTupleField splits "name: type". Module separators ("::") are not
// field separators.
func splitTupleField(s string) (field, typ string, ok bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ':':
			if depth > 0 {
				continue
			}
			if i+1 < len(s) && s[i+1] == ':' {
				i++
				continue
			}
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), true
		}
	}
	return "", s, false
}

func splitTypeArgs(body string) ([]string, error) {
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced '>'")
			}
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(body[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced '<'")
	}
	return append(out, strings.TrimSpace(body[start:])), nil
}
