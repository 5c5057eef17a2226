package decorator

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/golang/protobuf/ptypes"
	"github.com/golang/protobuf/ptypes/duration"
	"github.com/golang/protobuf/ptypes/timestamp"
	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// UUID is the scalar for github.com/google/uuid values, serialized in their
// canonical string form.
var UUID = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "UUID",
	Description: "A universally unique identifier in its canonical textual form.",
	Serialize: func(value interface{}) interface{} {
		switch v := value.(type) {
		case uuid.UUID:
			return v.String()
		case *uuid.UUID:
			if v == nil {
				return nil
			}
			return v.String()
		default:
			return nil
		}
	},
	ParseValue: func(value interface{}) interface{} {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil
		}
		return id
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		s, ok := valueAST.(*ast.StringValue)
		if !ok {
			return nil
		}
		id, err := uuid.Parse(s.Value)
		if err != nil {
			return nil
		}
		return id
	},
})

// Timestamp is the scalar for protobuf timestamps, serialized as RFC 3339
// strings.
var Timestamp = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Timestamp",
	Description: "A point in time encoded as an RFC 3339 string.",
	Serialize: func(value interface{}) interface{} {
		ts, ok := value.(*timestamp.Timestamp)
		if !ok || ts == nil {
			return nil
		}
		t, err := ptypes.Timestamp(ts)
		if err != nil {
			return nil
		}
		return t.Format(time.RFC3339Nano)
	},
	ParseValue: func(value interface{}) interface{} {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		return parseTimestamp(s)
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		s, ok := valueAST.(*ast.StringValue)
		if !ok {
			return nil
		}
		return parseTimestamp(s.Value)
	},
})

func parseTimestamp(s string) interface{} {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	ts, err := ptypes.TimestampProto(t)
	if err != nil {
		return nil
	}
	return ts
}

// Duration is the scalar for protobuf durations, serialized in the format of
// time.Duration.String, e.g. "1h30m".
var Duration = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Duration",
	Description: "A span of time such as \"1h30m\" or \"250ms\".",
	Serialize: func(value interface{}) interface{} {
		d, ok := value.(*duration.Duration)
		if !ok || d == nil {
			return nil
		}
		gd, err := ptypes.Duration(d)
		if err != nil {
			return nil
		}
		return gd.String()
	},
	ParseValue: func(value interface{}) interface{} {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		return parseDuration(s)
	},
	ParseLiteral: func(valueAST ast.Value) interface{} {
		s, ok := valueAST.(*ast.StringValue)
		if !ok {
			return nil
		}
		return parseDuration(s.Value)
	},
})

func parseDuration(s string) interface{} {
	d, err := time.ParseDuration(s)
	if err != nil {
		return nil
	}
	return ptypes.DurationProto(d)
}

var builtinScalars = map[reflect.Type]*graphql.Scalar{
	reflect.TypeOf(time.Time{}):                        graphql.DateTime,
	reflect.TypeOf(uuid.UUID{}):                        UUID,
	reflect.TypeOf((*timestamp.Timestamp)(nil)).Elem(): Timestamp,
	reflect.TypeOf((*duration.Duration)(nil)).Elem():   Duration,
}

// RegisterScalar maps the Go type referenced by ref onto a scalar. Members of
// that type (or a pointer to it) resolve to the scalar, and argument values
// produced by the scalar's parse functions are assigned to parameters of that
// type. Registering a type again replaces the previous scalar.
func (r *Registry) RegisterScalar(ref interface{}, scalar *graphql.Scalar) error {
	if scalar == nil {
		return errors.New("scalar must not be nil")
	}
	t, err := scalarType(ref)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.scalars[t] = scalar
	delete(r.parsers, t)
	return nil
}

func scalarType(ref interface{}) (reflect.Type, error) {
	var t reflect.Type
	switch ref := ref.(type) {
	case nil:
		return nil, fmt.Errorf("nil type reference: %w", ErrUnsupportedType)
	case reflect.Type:
		t = ref
	default:
		t = reflect.TypeOf(ref)
	}
	if t.Kind() == reflect.Ptr {
		return nil, errors.New("type should not be of pointer type")
	}
	return t, nil
}

// RegisterEnum maps the Go type referenced by ref onto a GraphQL enum. values
// maps each enum value name to a Go value of that type.
func (r *Registry) RegisterEnum(ref interface{}, name string, values map[string]interface{}, description ...string) error {
	t, err := scalarType(ref)
	if err != nil {
		return err
	}
	if len(description) > 1 {
		return errors.New("at most one description allowed for RegisterEnum")
	}
	if len(values) == 0 {
		return fmt.Errorf("enum %s: no values", name)
	}

	config := graphql.EnumValueConfigMap{}
	for valueName, v := range values {
		if reflect.TypeOf(v) != t {
			return fmt.Errorf("enum %s: value %s is a %T, expected %s", name, valueName, v, t)
		}
		config[valueName] = &graphql.EnumValueConfig{Value: v}
	}

	enumConfig := graphql.EnumConfig{Name: name, Values: config}
	if len(description) == 1 {
		enumConfig.Description = description[0]
	}
	enum := graphql.NewEnum(enumConfig)
	if err := enum.Error(); err != nil {
		return fmt.Errorf("enum %s: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enums[t]; ok {
		return fmt.Errorf("enum %s: %s already registered", name, t)
	}
	r.enums[t] = enum
	delete(r.parsers, t)
	return nil
}

// RegisterScalar registers a scalar in the default registry.
func RegisterScalar(ref interface{}, scalar *graphql.Scalar) error {
	return defaultRegistry.RegisterScalar(ref, scalar)
}

// RegisterEnum registers an enum in the default registry.
func RegisterEnum(ref interface{}, name string, values map[string]interface{}, description ...string) error {
	return defaultRegistry.RegisterEnum(ref, name, values, description...)
}
