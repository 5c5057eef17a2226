package decorator

import (
	"fmt"
)

// A Decorator is a configuration fragment that can be attached to a type, a
// member or a method parameter. Each decorator only supports some of those
// targets; applying it elsewhere fails with ErrUnsupportedTarget.
type Decorator struct {
	name    string
	onType  func(*TypeConfig)
	onField func(*FieldConfig)
	onArg   func(*ArgumentConfig)
}

func (d Decorator) String() string {
	return d.name
}

func (d Decorator) applyType(c *TypeConfig) error {
	if d.onType == nil {
		return fmt.Errorf("%s on type: %w", d.name, ErrUnsupportedTarget)
	}
	d.onType(c)
	return nil
}

func (d Decorator) applyField(c *FieldConfig) error {
	if d.onField == nil {
		return fmt.Errorf("%s on member: %w", d.name, ErrUnsupportedTarget)
	}
	d.onField(c)
	return nil
}

func (d Decorator) applyArg(c *ArgumentConfig) error {
	if d.onArg == nil {
		return fmt.Errorf("%s on parameter: %w", d.name, ErrUnsupportedTarget)
	}
	d.onArg(c)
	return nil
}

// TypeName sets the GraphQL name of an object type. Without it the Go type name
// is used.
func TypeName(name string) Decorator {
	return Decorator{
		name:   "TypeName",
		onType: func(c *TypeConfig) { c.Name = name },
	}
}

// InputName sets the GraphQL name used when the type appears as an input
// object. It defaults to the object name suffixed with "Input".
func InputName(name string) Decorator {
	return Decorator{
		name:   "InputName",
		onType: func(c *TypeConfig) { c.InputName = name },
	}
}

// Field exposes a member as a GraphQL field. The optional name overrides the
// lower camel case form of the Go member name.
func Field(name ...string) Decorator {
	if len(name) > 1 {
		panic("at most one name allowed for Field")
	}
	return Decorator{
		name: "Field",
		onField: func(c *FieldConfig) {
			c.Exposed = true
			if len(name) == 1 && name[0] != "" {
				c.Name = name[0]
			}
		},
	}
}

// Arg names a method parameter. Every GraphQL-visible parameter of an exposed
// method must be named.
func Arg(name string) Decorator {
	return Decorator{
		name:  "Arg",
		onArg: func(c *ArgumentConfig) { c.Name = name },
	}
}

// Description documents a type, a field or an argument.
func Description(description string) Decorator {
	return Decorator{
		name:    "Description",
		onType:  func(c *TypeConfig) { c.Description = description },
		onField: func(c *FieldConfig) { c.Description = description },
		onArg:   func(c *ArgumentConfig) { c.Description = description },
	}
}

// DefaultValue sets the value an argument takes when the query omits it.
func DefaultValue(value interface{}) Decorator {
	return Decorator{
		name: "DefaultValue",
		onArg: func(c *ArgumentConfig) {
			c.DefaultValue = value
			c.HasDefault = true
		},
	}
}

// Type sets the type of a field or argument explicitly. ref is either a
// graphql.Type or a reference to a Go type (a value, a pointer or a
// reflect.Type). An explicit type replaces inference from the Go member type,
// including list inference for slices.
func Type(ref interface{}) Decorator {
	return Decorator{
		name:    "Type",
		onField: func(c *FieldConfig) { c.Type = ref },
		onArg:   func(c *ArgumentConfig) { c.Type = ref },
	}
}

// List wraps the current field or argument type in a list.
func List() Decorator {
	return Decorator{
		name:    "List",
		onField: func(c *FieldConfig) { c.Modifiers = append(c.Modifiers, ListModifier) },
		onArg:   func(c *ArgumentConfig) { c.Modifiers = append(c.Modifiers, ListModifier) },
	}
}

// NonNull wraps the current field or argument type in a non-null type.
func NonNull() Decorator {
	return Decorator{
		name:    "NonNull",
		onField: func(c *FieldConfig) { c.Modifiers = append(c.Modifiers, NonNullModifier) },
		onArg:   func(c *ArgumentConfig) { c.Modifiers = append(c.Modifiers, NonNullModifier) },
	}
}

// Deprecated marks a field as deprecated with the given reason.
func Deprecated(reason string) Decorator {
	return Decorator{
		name:    "Deprecated",
		onField: func(c *FieldConfig) { c.DeprecationReason = reason },
	}
}
