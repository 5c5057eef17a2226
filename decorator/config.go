package decorator

import (
	"fmt"
	"reflect"

	"github.com/graphql-go/graphql"
)

// Modifier wraps a field or argument type. Modifiers apply in the order the
// decorators were applied, the first one wrapping the base type.
type Modifier int

const (
	ListModifier Modifier = iota + 1
	NonNullModifier
)

func (m Modifier) String() string {
	switch m {
	case ListModifier:
		return "List"
	case NonNullModifier:
		return "NonNull"
	default:
		return fmt.Sprintf("Modifier(%d)", int(m))
	}
}

func applyModifiers(typ graphql.Type, modifiers []Modifier) (graphql.Type, error) {
	for _, m := range modifiers {
		switch m {
		case ListModifier:
			typ = graphql.NewList(typ)
		case NonNullModifier:
			if _, ok := typ.(*graphql.NonNull); ok {
				return nil, fmt.Errorf("%s is already non-null", typ)
			}
			typ = graphql.NewNonNull(typ)
		default:
			return nil, fmt.Errorf("unknown modifier %s", m)
		}
	}
	return typ, nil
}

// TypeConfig accumulates the type level attributes of an object type.
type TypeConfig struct {
	Name        string
	Description string
	InputName   string
}

// ToObjectConfig converts the config into the engine's object descriptor.
func (c *TypeConfig) ToObjectConfig(fields graphql.Fields) graphql.ObjectConfig {
	return graphql.ObjectConfig{
		Name:        c.Name,
		Description: c.Description,
		Fields:      fields,
	}
}

// ToInputObjectConfig converts the config into the engine's input object
// descriptor.
func (c *TypeConfig) ToInputObjectConfig(fields graphql.InputObjectConfigFieldMap) graphql.InputObjectConfig {
	return graphql.InputObjectConfig{
		Name:        c.inputName(),
		Description: c.Description,
		Fields:      fields,
	}
}

func (c *TypeConfig) inputName() string {
	if c.InputName != "" {
		return c.InputName
	}
	if c.Name == "" {
		return ""
	}
	return c.Name + "Input"
}

// FieldConfig accumulates the attributes of a single field.
type FieldConfig struct {
	Name              string
	Description       string
	DeprecationReason string

	// Type is an explicit type reference set by the Type decorator. When nil
	// the type is inferred from the Go member.
	Type      interface{}
	Modifiers []Modifier

	// Exposed reports whether the member is part of the GraphQL type.
	Exposed bool
}

// ToField converts the config into the engine's field descriptor.
func (c *FieldConfig) ToField(typ graphql.Output, args graphql.FieldConfigArgument, resolve graphql.FieldResolveFn) *graphql.Field {
	return &graphql.Field{
		Name:              c.Name,
		Type:              typ,
		Args:              args,
		Resolve:           resolve,
		Description:       c.Description,
		DeprecationReason: c.DeprecationReason,
	}
}

// ToInputField converts the config into the engine's input field descriptor.
func (c *FieldConfig) ToInputField(typ graphql.Input) *graphql.InputObjectFieldConfig {
	return &graphql.InputObjectFieldConfig{
		Type:        typ,
		Description: c.Description,
	}
}

func (c *FieldConfig) outputType(r *Registry, goType reflect.Type) (graphql.Output, error) {
	typ, err := r.configuredType(c.Type, goType, c.Modifiers, false)
	if err != nil {
		return nil, err
	}
	if !graphql.IsOutputType(typ) {
		return nil, fmt.Errorf("%s is not an output type: %w", typ, ErrUnsupportedType)
	}
	return typ, nil
}

func (c *FieldConfig) inputType(r *Registry, goType reflect.Type) (graphql.Input, error) {
	typ, err := r.configuredType(c.Type, goType, c.Modifiers, true)
	if err != nil {
		return nil, err
	}
	if !graphql.IsInputType(typ) {
		return nil, fmt.Errorf("%s is not an input type: %w", typ, ErrUnsupportedType)
	}
	return typ, nil
}

// ArgumentConfig accumulates the attributes of a method parameter exposed as
// a field argument.
type ArgumentConfig struct {
	Name        string
	Description string

	// DefaultValue only applies when HasDefault is set, so that zero values
	// can be used as defaults.
	DefaultValue interface{}
	HasDefault   bool

	Type      interface{}
	Modifiers []Modifier
}

// ToArgumentConfig converts the config into the engine's argument descriptor.
func (c *ArgumentConfig) ToArgumentConfig(typ graphql.Input) *graphql.ArgumentConfig {
	arg := &graphql.ArgumentConfig{
		Type:        typ,
		Description: c.Description,
	}
	if c.HasDefault {
		arg.DefaultValue = c.DefaultValue
	}
	return arg
}

func (c *ArgumentConfig) inputType(r *Registry, goType reflect.Type) (graphql.Input, error) {
	typ, err := r.configuredType(c.Type, goType, c.Modifiers, true)
	if err != nil {
		return nil, err
	}
	if !graphql.IsInputType(typ) {
		return nil, fmt.Errorf("%s is not an input type: %w", typ, ErrUnsupportedType)
	}
	return typ, nil
}
