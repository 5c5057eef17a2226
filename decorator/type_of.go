package decorator

import (
	"fmt"
	"reflect"

	"github.com/graphql-go/graphql"
)

// TypeOf resolves ref into a schema output type. ref is either a graphql.Type,
// returned unchanged, or a reference to a Go type: a value, a pointer or a
// reflect.Type. Struct types become object types built from their decorator
// metadata; results are memoized so repeated calls return the same object.
func (r *Registry) TypeOf(ref interface{}) (graphql.Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mark := len(r.journal)
	typ, err := r.resolveRef(ref, false)
	if err != nil {
		r.rollback(mark)
		return nil, err
	}
	r.journal = r.journal[:mark]
	if !graphql.IsOutputType(typ) {
		return nil, fmt.Errorf("%s is not an output type: %w", typ, ErrUnsupportedType)
	}
	return typ, nil
}

// InputTypeOf resolves ref into a schema input type. Struct types become input
// objects named after their InputName.
func (r *Registry) InputTypeOf(ref interface{}) (graphql.Input, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mark := len(r.journal)
	typ, err := r.resolveRef(ref, true)
	if err != nil {
		r.rollback(mark)
		return nil, err
	}
	r.journal = r.journal[:mark]
	if !graphql.IsInputType(typ) {
		return nil, fmt.Errorf("%s is not an input type: %w", typ, ErrUnsupportedType)
	}
	return typ, nil
}

// MustTypeOf is like TypeOf but panics on error.
func (r *Registry) MustTypeOf(ref interface{}) graphql.Output {
	typ, err := r.TypeOf(ref)
	if err != nil {
		panic(err)
	}
	return typ
}

// rollback drops every type built since mark from the caches.
func (r *Registry) rollback(mark int) {
	for _, b := range r.journal[mark:] {
		if b.input {
			delete(r.inputs, b.typ)
			delete(r.parsers, b.typ)
		} else {
			delete(r.objects, b.typ)
		}
	}
	r.journal = r.journal[:mark]
}

// configuredType computes the type of a field or argument: the explicit
// reference when set, otherwise the type inferred from goType, wrapped by the
// modifiers.
func (r *Registry) configuredType(ref interface{}, goType reflect.Type, modifiers []Modifier, input bool) (graphql.Type, error) {
	var base graphql.Type
	var err error
	if ref != nil {
		base, err = r.resolveRef(ref, input)
	} else {
		base, err = r.inferType(goType, input)
	}
	if err != nil {
		return nil, err
	}
	return applyModifiers(base, modifiers)
}

func (r *Registry) resolveRef(ref interface{}, input bool) (graphql.Type, error) {
	if typ, ok := ref.(graphql.Type); ok {
		return typ, nil
	}
	var t reflect.Type
	switch ref := ref.(type) {
	case nil:
		return nil, fmt.Errorf("nil type reference: %w", ErrUnsupportedType)
	case reflect.Type:
		t = ref
	default:
		t = reflect.TypeOf(ref)
	}
	return r.inferType(t, input)
}

// inferType maps a Go type onto a schema type. Pointers only mark
// nullability, which is the default, so they are stripped; slices and arrays
// become lists unless the type is a registered scalar.
func (r *Registry) inferType(t reflect.Type, input bool) (graphql.Type, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if scalar, ok := r.scalars[t]; ok {
		return scalar, nil
	}
	if enum, ok := r.enums[t]; ok {
		return enum, nil
	}

	switch t.Kind() {
	case reflect.String:
		return graphql.String, nil
	case reflect.Bool:
		return graphql.Boolean, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return graphql.Int, nil
	case reflect.Float32, reflect.Float64:
		return graphql.Float, nil
	case reflect.Slice, reflect.Array:
		inner, err := r.inferType(t.Elem(), input)
		if err != nil {
			return nil, err
		}
		return graphql.NewList(inner), nil
	case reflect.Struct:
		if input {
			return r.buildInputObject(t)
		}
		return r.buildObject(t)
	default:
		return nil, fmt.Errorf("bad type %s: %w", t, ErrUnsupportedType)
	}
}

// buildObject builds the object type of struct t from its metadata chain.
// The object is cached before its fields are built so that self references
// resolve to it.
func (r *Registry) buildObject(t reflect.Type) (*graphql.Object, error) {
	if obj, ok := r.objects[t]; ok {
		return obj, nil
	}
	return r.assembleObject(t, sourceReceiver(t), true)
}

// buildRoot builds an uncached object type of struct t whose resolvers run on
// bound when called by the engine for the root of an operation.
func (r *Registry) buildRoot(t reflect.Type, bound reflect.Value) (*graphql.Object, error) {
	return r.assembleObject(t, rootReceiver(t, bound), false)
}

func (r *Registry) assembleObject(t reflect.Type, receiver receiverFunc, cache bool) (*graphql.Object, error) {
	c, err := r.classMetadata(t)
	if err != nil {
		return nil, err
	}
	if c.config.Name == "" {
		return nil, fmt.Errorf("bad type %s: should have a name", t)
	}
	members, err := c.chain(r.fieldName)
	if err != nil {
		return nil, fmt.Errorf("bad type %s: %w", t, err)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("bad type %s: %w", t, ErrNoFields)
	}

	fields := graphql.Fields{}
	obj := graphql.NewObject(c.config.ToObjectConfig(fields))
	if cache {
		r.objects[t] = obj
		r.journal = append(r.journal, builtType{typ: t})
	}

	for _, m := range members {
		field, err := r.buildField(receiver, m)
		if err != nil {
			return nil, fmt.Errorf("bad type %s: field %s: %w", t, m.name, err)
		}
		fields[field.Name] = field
	}
	if err := obj.Error(); err != nil {
		return nil, fmt.Errorf("bad type %s: %w", t, err)
	}

	r.log().Debug().Str("type", obj.Name()).Stringer("goType", t).Int("fields", len(fields)).Bool("root", !cache).Msg("built object type")
	return obj, nil
}

func (r *Registry) buildField(receiver receiverFunc, m chainedMember) (*graphql.Field, error) {
	goType, err := m.resultType()
	if err != nil {
		return nil, err
	}
	typ, err := m.config.outputType(r, goType)
	if err != nil {
		return nil, err
	}

	config := m.config
	config.Name = r.fieldName(m.MemberMetadata)

	if m.kind == propertyMember {
		return config.ToField(typ, nil, propertyResolver(receiver, m.path, m.field.Index)), nil
	}

	args, call, err := r.buildArgs(m.MemberMetadata)
	if err != nil {
		return nil, err
	}
	return config.ToField(typ, args, methodResolver(receiver, m.path, m.name, call)), nil
}

// buildArgs converts the parameters of a method member into field arguments
// and the plan used to call the method with them.
func (r *Registry) buildArgs(m *MemberMetadata) (graphql.FieldConfigArgument, *callPlan, error) {
	call := &callPlan{withContext: m.takesContext()}
	types := m.paramTypes()
	if len(types) == 0 {
		return nil, call, nil
	}

	args := graphql.FieldConfigArgument{}
	for i, goType := range types {
		var p *ParamMetadata
		if i < len(m.params) {
			p = m.params[i]
		}
		if p == nil || p.config.Name == "" {
			return nil, nil, fmt.Errorf("parameter %d (%s): %w", i, goType, ErrMissingArgName)
		}
		if _, ok := args[p.config.Name]; ok {
			return nil, nil, fmt.Errorf("duplicate argument %s", p.config.Name)
		}

		typ, err := p.config.inputType(r, goType)
		if err != nil {
			return nil, nil, fmt.Errorf("argument %s: %w", p.config.Name, err)
		}
		parser, err := r.argParser(goType)
		if err != nil {
			return nil, nil, fmt.Errorf("argument %s: %w", p.config.Name, err)
		}

		args[p.config.Name] = p.config.ToArgumentConfig(typ)
		call.args = append(call.args, callArg{name: p.config.Name, parser: parser})
	}
	return args, call, nil
}

// TypeOf resolves ref in the default registry.
func TypeOf(ref interface{}) (graphql.Output, error) {
	return defaultRegistry.TypeOf(ref)
}

// InputTypeOf resolves ref as an input type in the default registry.
func InputTypeOf(ref interface{}) (graphql.Input, error) {
	return defaultRegistry.InputTypeOf(ref)
}

// MustTypeOf resolves ref in the default registry and panics on error.
func MustTypeOf(ref interface{}) graphql.Output {
	return defaultRegistry.MustTypeOf(ref)
}
