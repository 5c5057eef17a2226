package decorator

import (
	"fmt"
	"reflect"
	"slices"
)

// ClassMetadata is the metadata record of a Go struct type. It is created the
// first time the type is decorated or resolved and seeded from struct tags.
type ClassMetadata struct {
	typ     reflect.Type
	config  TypeConfig
	members []*MemberMetadata
	byName  map[string]*MemberMetadata

	// parents are the exported embedded structs, in declaration order.
	parents []parentLink
}

type parentLink struct {
	index int
	class *ClassMetadata
}

type memberKind int

const (
	propertyMember memberKind = iota
	methodMember
)

func (k memberKind) String() string {
	if k == methodMember {
		return "method"
	}
	return "property"
}

// MemberMetadata is the metadata record of a field or method of a type.
type MemberMetadata struct {
	owner  *ClassMetadata
	name   string
	kind   memberKind
	field  reflect.StructField
	method reflect.Method
	config FieldConfig
	params []*ParamMetadata
}

// ParamMetadata is the metadata record of a method parameter.
type ParamMetadata struct {
	index  int
	goType reflect.Type
	config ArgumentConfig
}

// classMetadata returns the metadata of t, creating it on first use. Callers
// must hold r.mu.
func (r *Registry) classMetadata(t reflect.Type) (*ClassMetadata, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("bad type %s: expected struct: %w", t, ErrUnsupportedType)
	}
	if c, ok := r.classes[t]; ok {
		return c, nil
	}

	c := &ClassMetadata{
		typ:    t,
		config: TypeConfig{Name: t.Name()},
		byName: make(map[string]*MemberMetadata),
	}
	// Registered before walking the fields so that pointer embedding of the
	// type itself terminates.
	r.classes[t] = c

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			parent := field.Type
			if parent.Kind() == reflect.Ptr {
				parent = parent.Elem()
			}
			if parent.Kind() != reflect.Struct || field.PkgPath != "" {
				continue
			}
			pc, err := r.classMetadata(parent)
			if err != nil {
				delete(r.classes, t)
				return nil, err
			}
			c.parents = append(c.parents, parentLink{index: i, class: pc})
			continue
		}

		decorators, ok, err := parseFieldTag(field)
		if err != nil {
			delete(r.classes, t)
			return nil, fmt.Errorf("bad type %s: %w", t, err)
		}
		if !ok {
			continue
		}
		m := c.addMember(&MemberMetadata{
			name:  field.Name,
			kind:  propertyMember,
			field: field,
		})
		for _, d := range decorators {
			if err := d.applyField(&m.config); err != nil {
				delete(r.classes, t)
				return nil, fmt.Errorf("bad type %s: field %s: %w", t, field.Name, err)
			}
		}
	}

	return c, nil
}

func (c *ClassMetadata) addMember(m *MemberMetadata) *MemberMetadata {
	m.owner = c
	c.members = append(c.members, m)
	c.byName[m.name] = m
	return m
}

// member returns the metadata of the named field or method, creating it on
// first use. Methods are looked up on the pointer type so both receiver kinds
// are found.
func (c *ClassMetadata) member(name string) (*MemberMetadata, error) {
	if m, ok := c.byName[name]; ok {
		return m, nil
	}

	if field, ok := c.typ.FieldByName(name); ok && exportedPath(c.typ, field.Index) {
		return c.addMember(&MemberMetadata{name: name, kind: propertyMember, field: field}), nil
	}
	if method, ok := reflect.PtrTo(c.typ).MethodByName(name); ok {
		return c.addMember(&MemberMetadata{name: name, kind: methodMember, method: method}), nil
	}
	return nil, fmt.Errorf("%s.%s: %w", c.typ, name, ErrUnknownMember)
}

// exportedPath reports whether every field along index is exported, which is
// what reflection needs to read a promoted field.
func exportedPath(t reflect.Type, index []int) bool {
	for _, i := range index {
		for t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		f := t.Field(i)
		if f.PkgPath != "" {
			return false
		}
		t = f.Type
	}
	return true
}

// paramTypes returns the GraphQL-visible parameter types of a method member:
// the receiver and a leading context.Context are skipped.
func (m *MemberMetadata) paramTypes() []reflect.Type {
	if m.kind != methodMember {
		return nil
	}
	fn := m.method.Type
	start := 1
	if fn.NumIn() > 1 && fn.In(1) == contextType {
		start = 2
	}
	types := make([]reflect.Type, 0, fn.NumIn()-start)
	for i := start; i < fn.NumIn(); i++ {
		types = append(types, fn.In(i))
	}
	return types
}

func (m *MemberMetadata) takesContext() bool {
	fn := m.method.Type
	return m.kind == methodMember && fn.NumIn() > 1 && fn.In(1) == contextType
}

// param returns the metadata of the index-th GraphQL-visible parameter of a
// method member, creating it on first use.
func (m *MemberMetadata) param(index int) (*ParamMetadata, error) {
	if m.kind != methodMember {
		return nil, fmt.Errorf("%s.%s is a %s, not a method: %w", m.owner.typ, m.name, m.kind, ErrUnsupportedTarget)
	}
	types := m.paramTypes()
	if index < 0 || index >= len(types) {
		return nil, fmt.Errorf("%s.%s has no parameter %d", m.owner.typ, m.name, index)
	}
	if len(m.params) < len(types) {
		params := make([]*ParamMetadata, len(types))
		copy(params, m.params)
		m.params = params
	}
	if m.params[index] == nil {
		m.params[index] = &ParamMetadata{index: index, goType: types[index]}
	}
	return m.params[index], nil
}

// resultType is the Go type a member resolves to: the field type, or the
// first result of the method.
func (m *MemberMetadata) resultType() (reflect.Type, error) {
	if m.kind == propertyMember {
		return m.field.Type, nil
	}
	fn := m.method.Type
	switch {
	case fn.NumOut() == 1 && fn.Out(0) != errType:
	case fn.NumOut() == 2 && fn.Out(1) == errType:
	default:
		return nil, fmt.Errorf("%s.%s must return a value and optionally an error", m.owner.typ, m.name)
	}
	return fn.Out(0), nil
}

// chainedMember is an exposed member as seen from a type that may inherit it
// through embedding.
type chainedMember struct {
	*MemberMetadata

	// path holds the indices of the embedded fields leading from the
	// resolving type to the member's owner.
	path []int
}

// chain walks the embedding chain of c, parents first, and returns the exposed
// members keyed by GraphQL name. A member declared closer to c overrides an
// inherited member with the same GraphQL name and takes over its position.
// Two members of the same owner reached through the same path may not share a
// name.
func (c *ClassMetadata) chain(name func(*MemberMetadata) string) ([]chainedMember, error) {
	var out []chainedMember
	pos := make(map[string]int)
	visited := map[*ClassMetadata]bool{}

	var err error
	var walk func(*ClassMetadata, []int)
	walk = func(cm *ClassMetadata, path []int) {
		if visited[cm] || err != nil {
			return
		}
		visited[cm] = true
		defer delete(visited, cm)

		for _, p := range cm.parents {
			walk(p.class, append(append([]int(nil), path...), p.index))
		}
		for _, m := range cm.members {
			if err != nil {
				return
			}
			if !m.config.Exposed {
				continue
			}
			n := name(m)
			if i, ok := pos[n]; ok {
				if prev := out[i]; prev.owner == m.owner && slices.Equal(prev.path, path) {
					err = fmt.Errorf("%w %s: %s.%s and %s.%s", ErrDuplicateField, n, cm.typ.Name(), prev.name, cm.typ.Name(), m.name)
					return
				}
				out[i] = chainedMember{MemberMetadata: m, path: path}
				continue
			}
			pos[n] = len(out)
			out = append(out, chainedMember{MemberMetadata: m, path: path})
		}
	}
	walk(c, nil)
	if err != nil {
		return nil, err
	}
	return out, nil
}
