package edgeql

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/zoobzio/edgeql/internal/logging"
	"github.com/zoobzio/edgeql/internal/types"
	"gopkg.in/yaml.v3"
)

// SchemaDocument is the YAML or JSON form of a schema descriptor.
type SchemaDocument struct {
	Scalars []ScalarDecl `yaml:"scalars,omitempty"`
	Enums   []EnumDecl   `yaml:"enums,omitempty"`
	Objects []ObjectDecl `yaml:"objects,omitempty"`
}

// ScalarDecl declares a custom scalar extending a registered scalar.
type ScalarDecl struct {
	Name string `yaml:"name"`
	Base string `yaml:"base"`
}

// EnumDecl declares an enum type.
type EnumDecl struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

// ObjectDecl declares an object type. Subtypes lists the object types an
// "is" narrowing may reach directly; the closure is computed on load.
type ObjectDecl struct {
	Name       string         `yaml:"name"`
	Subtypes   []string       `yaml:"subtypes,omitempty"`
	Exclusives [][]string     `yaml:"exclusives,omitempty"`
	Properties []PropertyDecl `yaml:"properties,omitempty"`
	Links      []LinkDecl     `yaml:"links,omitempty"`
}

// PropertyDecl declares a property or a link property. Type may be any type
// name the registry resolves, including derived collection names.
type PropertyDecl struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Cardinality string `yaml:"cardinality,omitempty"`
	PointerDecl `yaml:",inline"`
}

// LinkDecl declares a link.
type LinkDecl struct {
	Name        string         `yaml:"name"`
	Target      string         `yaml:"target"`
	Cardinality string         `yaml:"cardinality,omitempty"`
	Properties  []PropertyDecl `yaml:"properties,omitempty"`
	PointerDecl `yaml:",inline"`
}

// PointerDecl holds the pointer flags shared by properties and links.
type PointerDecl struct {
	Exclusive  bool `yaml:"exclusive,omitempty"`
	Computed   bool `yaml:"computed,omitempty"`
	Readonly   bool `yaml:"readonly,omitempty"`
	HasDefault bool `yaml:"default,omitempty"`
}

func (d PointerDecl) flags() types.PointerFlags {
	return types.PointerFlags{Exclusive: d.Exclusive, Computed: d.Computed, Readonly: d.Readonly, HasDefault: d.HasDefault}
}

// LoadSchemaFile reads a schema descriptor file into a sealed registry.
func LoadSchemaFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read schema file %s", path)
	}
	r, err := LoadSchema(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't load schema file %s", path)
	}
	return r, nil
}

// LoadSchema decodes a schema descriptor into a sealed registry. Unknown
// document fields are rejected.
func LoadSchema(r io.Reader) (*Registry, error) {
	var doc SchemaDocument
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "couldn't decode schema document")
	}
	return NewFromDocument(&doc)
}

// NewFromDocument builds a sealed registry from a decoded document. Object
// shells are registered before any pointer, so links may form cycles.
func NewFromDocument(doc *SchemaDocument) (*Registry, error) {
	reg := NewRegistry()
	if err := checkDeclaredOnce(doc); err != nil {
		return nil, err
	}

	for i, s := range doc.Scalars {
		base, err := reg.TryScalar(s.Base)
		if err != nil {
			return nil, errors.Wrapf(err, "scalar %d (%s)", i, s.Name)
		}
		if _, err := reg.RegisterScalar(s.Name, base); err != nil {
			return nil, errors.Wrapf(err, "scalar %d (%s)", i, s.Name)
		}
	}
	for i, e := range doc.Enums {
		if _, err := reg.RegisterEnum(e.Name, e.Members...); err != nil {
			return nil, errors.Wrapf(err, "enum %d (%s)", i, e.Name)
		}
	}

	objects := make([]*ObjectType, len(doc.Objects))
	for i, o := range doc.Objects {
		obj, err := reg.RegisterObject(o.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "object %d (%s)", i, o.Name)
		}
		objects[i] = obj
	}

	for i, o := range doc.Objects {
		obj := objects[i]
		for _, p := range o.Properties {
			desc, err := propertyDesc(reg, p)
			if err != nil {
				return nil, errors.Wrapf(err, "object %s property %s", o.Name, p.Name)
			}
			if err := obj.AddProperty(p.Name, desc); err != nil {
				return nil, errors.Wrapf(err, "object %s property %s", o.Name, p.Name)
			}
		}
		for _, l := range o.Links {
			desc, err := linkDesc(reg, l)
			if err != nil {
				return nil, errors.Wrapf(err, "object %s link %s", o.Name, l.Name)
			}
			if err := obj.AddLink(l.Name, desc); err != nil {
				return nil, errors.Wrapf(err, "object %s link %s", o.Name, l.Name)
			}
		}
		for _, group := range o.Exclusives {
			if err := obj.AddExclusive(group...); err != nil {
				return nil, errors.Wrapf(err, "object %s exclusive %v", o.Name, group)
			}
		}
	}

	if err := addPolyClosure(reg, doc.Objects, objects); err != nil {
		return nil, err
	}

	reg.Seal()
	logging.Debug().
		Int("scalars", len(doc.Scalars)).
		Int("enums", len(doc.Enums)).
		Int("objects", len(doc.Objects)).
		Msg("schema loaded")
	return reg, nil
}

func cardinalityOrDefault(s string) (Cardinality, error) {
	if s == "" {
		return AtMostOne, nil
	}
	return types.ParseCardinality(s)
}

func propertyDesc(reg *Registry, p PropertyDecl) (*PropertyDesc, error) {
	t, err := reg.TryType(p.Type)
	if err != nil {
		return nil, err
	}
	card, err := cardinalityOrDefault(p.Cardinality)
	if err != nil {
		return nil, err
	}
	return &PropertyDesc{Target: t, Cardinality: card, PointerFlags: p.flags()}, nil
}

func linkDesc(reg *Registry, l LinkDecl) (*LinkDesc, error) {
	target, err := reg.TryObject(l.Target)
	if err != nil {
		return nil, err
	}
	card, err := cardinalityOrDefault(l.Cardinality)
	if err != nil {
		return nil, err
	}
	desc := &LinkDesc{Target: target, Cardinality: card, PointerFlags: l.flags()}
	for _, p := range l.Properties {
		pd, err := propertyDesc(reg, p)
		if err != nil {
			return nil, errors.Wrapf(err, "link property %s", p.Name)
		}
		desc.Properties = append(desc.Properties, NamedProperty{Name: p.Name, Desc: pd})
	}
	return desc, nil
}

// addPolyClosure records, for every object, all subtypes reachable through
// declared subtype edges.
func addPolyClosure(reg *Registry, decls []ObjectDecl, objects []*ObjectType) error {
	direct := make(map[string][]string, len(decls))
	for _, d := range decls {
		for _, s := range d.Subtypes {
			if _, err := reg.TryObject(s); err != nil {
				return errors.Wrapf(err, "object %s subtype %s", d.Name, s)
			}
		}
		direct[d.Name] = d.Subtypes
	}
	for i, d := range decls {
		seen := map[string]bool{d.Name: true}
		stack := append([]string(nil), direct[d.Name]...)
		var closure []string
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[n] {
				continue
			}
			seen[n] = true
			closure = append(closure, n)
			stack = append(stack, direct[n]...)
		}
		if err := objects[i].AddPolyTypenames(closure...); err != nil {
			return errors.Wrapf(err, "object %s subtypes", d.Name)
		}
	}
	return nil
}

// checkDeclaredOnce rejects a document naming the same type twice, even when
// both declarations would register identically.
func checkDeclaredOnce(doc *SchemaDocument) error {
	declared := make(map[string]bool, len(doc.Scalars)+len(doc.Enums)+len(doc.Objects))
	names := make([]string, 0, len(doc.Scalars)+len(doc.Enums)+len(doc.Objects))
	for _, s := range doc.Scalars {
		names = append(names, s.Name)
	}
	for _, e := range doc.Enums {
		names = append(names, e.Name)
	}
	for _, o := range doc.Objects {
		names = append(names, o.Name)
	}
	for _, name := range names {
		if declared[name] {
			return errors.WithStack(DuplicateTypeNameError{Name: name})
		}
		declared[name] = true
	}
	return nil
}
