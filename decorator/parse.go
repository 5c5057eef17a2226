package decorator

import (
	"errors"
	"fmt"
	"math"
	"reflect"
)

// argParser fills a Go value from an argument value coerced by the engine:
// scalars arrive as Go scalars, lists as []interface{} and input objects as
// map[string]interface{} keyed by GraphQL field name.
type argParser struct {
	FromJSON func(value interface{}, dest reflect.Value) error
	Type     reflect.Type
}

type inputField struct {
	name   string
	index  []int
	parser *argParser
}

// argParser returns the parser for values of Go type t. Callers must hold
// r.mu; the returned parser is safe to use without it.
func (r *Registry) argParser(t reflect.Type) (*argParser, error) {
	if p, ok := r.parsers[t]; ok {
		return p, nil
	}

	if t.Kind() == reflect.Ptr {
		inner, err := r.argParser(t.Elem())
		if err != nil {
			return nil, err
		}
		p := wrapPtrParser(t, inner)
		r.parsers[t] = p
		return p, nil
	}

	_, scalar := r.scalars[t]
	_, enum := r.enums[t]
	if scalar || enum {
		p := assignParser(t)
		r.parsers[t] = p
		return p, nil
	}

	var p *argParser
	switch t.Kind() {
	case reflect.String:
		p = &argParser{Type: t, FromJSON: parseString}
	case reflect.Bool:
		p = &argParser{Type: t, FromJSON: parseBool}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		p = &argParser{Type: t, FromJSON: parseInt}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		p = &argParser{Type: t, FromJSON: parseUint}
	case reflect.Float32, reflect.Float64:
		p = &argParser{Type: t, FromJSON: parseFloat}
	case reflect.Slice:
		return r.sliceParser(t)
	case reflect.Struct:
		return r.structParser(t)
	default:
		return nil, fmt.Errorf("bad arg type %s: %w", t, ErrUnsupportedType)
	}
	r.parsers[t] = p
	return p, nil
}

// structParser generates the parser for an input struct. The parser is cached
// before its fields are generated to allow self-referencing inputs.
func (r *Registry) structParser(t reflect.Type) (*argParser, error) {
	c, err := r.classMetadata(t)
	if err != nil {
		return nil, err
	}

	members, err := c.chain(r.fieldName)
	if err != nil {
		return nil, fmt.Errorf("bad input type %s: %w", t, err)
	}

	p := &argParser{Type: t}
	r.parsers[t] = p

	var fields []inputField
	for _, m := range members {
		if m.kind != propertyMember {
			delete(r.parsers, t)
			return nil, fmt.Errorf("bad input type %s: method %s cannot be an input field", t, m.name)
		}
		parser, err := r.argParser(m.field.Type)
		if err != nil {
			delete(r.parsers, t)
			return nil, err
		}
		index := append(append([]int(nil), m.path...), m.field.Index...)
		fields = append(fields, inputField{name: r.fieldName(m.MemberMetadata), index: index, parser: parser})
	}

	p.FromJSON = func(value interface{}, dest reflect.Value) error {
		if value == nil {
			return nil
		}
		asMap, ok := value.(map[string]interface{})
		if !ok {
			return errors.New("not an object")
		}
		for _, field := range fields {
			v, ok := asMap[field.name]
			if !ok {
				continue
			}
			if err := field.parser.FromJSON(v, fieldByIndexAlloc(dest, field.index)); err != nil {
				return fmt.Errorf("%s: %s", field.name, err)
			}
		}
		return nil
	}
	return p, nil
}

// sliceParser generates the parser for a list input by generating the parser
// for the element type and using it to fill each entry.
func (r *Registry) sliceParser(t reflect.Type) (*argParser, error) {
	inner, err := r.argParser(t.Elem())
	if err != nil {
		return nil, err
	}

	p := &argParser{
		FromJSON: func(value interface{}, dest reflect.Value) error {
			if value == nil {
				return nil
			}
			asSlice, ok := value.([]interface{})
			if !ok {
				// A single value is accepted where a list is expected.
				asSlice = []interface{}{value}
			}

			out := reflect.MakeSlice(t, len(asSlice), len(asSlice))
			for i, v := range asSlice {
				if err := inner.FromJSON(v, out.Index(i)); err != nil {
					return err
				}
			}
			dest.Set(out)
			return nil
		},
		Type: t,
	}
	r.parsers[t] = p
	return p, nil
}

func wrapPtrParser(t reflect.Type, inner *argParser) *argParser {
	return &argParser{
		FromJSON: func(value interface{}, dest reflect.Value) error {
			if value == nil {
				return nil
			}
			if v := reflect.ValueOf(value); v.Type().AssignableTo(dest.Type()) {
				dest.Set(v)
				return nil
			}
			ptr := reflect.New(dest.Type().Elem())
			if err := inner.FromJSON(value, ptr.Elem()); err != nil {
				return err
			}
			dest.Set(ptr)
			return nil
		},
		Type: t,
	}
}

// assignParser handles scalars and enums, whose values are already produced
// as Go values by the engine.
func assignParser(t reflect.Type) *argParser {
	return &argParser{
		FromJSON: func(value interface{}, dest reflect.Value) error {
			if value == nil {
				return nil
			}
			v := reflect.ValueOf(value)
			switch {
			case v.Type().AssignableTo(dest.Type()):
				dest.Set(v)
			case v.Kind() == reflect.Ptr && !v.IsNil() && v.Elem().Type().AssignableTo(dest.Type()):
				dest.Set(v.Elem())
			case v.Kind() == dest.Kind() && v.Type().ConvertibleTo(dest.Type()):
				dest.Set(v.Convert(dest.Type()))
			default:
				return fmt.Errorf("cannot use %T as %s", value, dest.Type())
			}
			return nil
		},
		Type: t,
	}
}

func parseString(value interface{}, dest reflect.Value) error {
	if value == nil {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return errors.New("not a string")
	}
	dest.SetString(s)
	return nil
}

func parseBool(value interface{}, dest reflect.Value) error {
	if value == nil {
		return nil
	}
	b, ok := value.(bool)
	if !ok {
		return errors.New("not a boolean")
	}
	dest.SetBool(b)
	return nil
}

func parseInt(value interface{}, dest reflect.Value) error {
	if value == nil {
		return nil
	}
	n, err := asInt64(value)
	if err != nil {
		return err
	}
	if dest.OverflowInt(n) {
		return fmt.Errorf("%d overflows %s", n, dest.Type())
	}
	dest.SetInt(n)
	return nil
}

func parseUint(value interface{}, dest reflect.Value) error {
	if value == nil {
		return nil
	}
	n, err := asInt64(value)
	if err != nil {
		return err
	}
	if n < 0 || dest.OverflowUint(uint64(n)) {
		return fmt.Errorf("%d overflows %s", n, dest.Type())
	}
	dest.SetUint(uint64(n))
	return nil
}

func asInt64(value interface{}) (int64, error) {
	v := reflect.ValueOf(value)
	switch {
	case v.CanInt():
		return v.Int(), nil
	case v.CanUint():
		if v.Uint() > math.MaxInt64 {
			return 0, errors.New("integer out of range")
		}
		return int64(v.Uint()), nil
	case v.CanFloat():
		f := v.Float()
		if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
			return 0, errors.New("not an integer")
		}
		return int64(f), nil
	default:
		return 0, errors.New("not a number")
	}
}

func parseFloat(value interface{}, dest reflect.Value) error {
	if value == nil {
		return nil
	}
	v := reflect.ValueOf(value)
	var f float64
	switch {
	case v.CanFloat():
		f = v.Float()
	case v.CanInt():
		f = float64(v.Int())
	case v.CanUint():
		f = float64(v.Uint())
	default:
		return errors.New("not a number")
	}
	if dest.OverflowFloat(f) {
		return fmt.Errorf("%v overflows %s", f, dest.Type())
	}
	dest.SetFloat(f)
	return nil
}

// fieldByIndexAlloc is reflect.Value.FieldByIndex that allocates nil embedded
// pointers along the way. v must be settable.
func fieldByIndexAlloc(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}
