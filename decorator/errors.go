package decorator

import "errors"

var (
	// ErrUnsupportedTarget is returned when a decorator is applied to a kind of
	// target it does not know how to configure, e.g. TypeName on a field.
	ErrUnsupportedTarget = errors.New("decorator not applicable to target")

	// ErrUnknownMember is returned when a field or method name does not exist
	// on the decorated type, or is not exported.
	ErrUnknownMember = errors.New("unknown member")

	// ErrMissingArgName is returned when a method parameter reaches schema
	// construction without an Arg decorator naming it.
	ErrMissingArgName = errors.New("missing argument name")

	// ErrUnsupportedType is returned when a Go type cannot be mapped onto a
	// GraphQL type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNoFields is returned when an object or input object type exposes no
	// fields.
	ErrNoFields = errors.New("no fields exposed")

	// ErrDuplicateField is returned when two exposed members declared on the
	// same type share a GraphQL name.
	ErrDuplicateField = errors.New("duplicate field")
)
