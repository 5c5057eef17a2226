package decorator

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/graphql-go/graphql"
	"github.com/iancoleman/strcase"
	"github.com/rs/zerolog"

	"github.com/koba789/gqldecorator/internal/logging"
)

// A Registry holds decorator metadata for Go types together with the schema
// types built from it. Most programs use the package level functions, which
// operate on a shared default registry.
type Registry struct {
	mu sync.Mutex

	classes map[reflect.Type]*ClassMetadata
	objects map[reflect.Type]*graphql.Object
	inputs  map[reflect.Type]*graphql.InputObject
	parsers map[reflect.Type]*argParser
	scalars map[reflect.Type]*graphql.Scalar
	enums   map[reflect.Type]*graphql.Enum

	// journal records the types built by the current TypeOf call so that a
	// failed build does not leave half-built types in the cache.
	journal []builtType

	namer  func(string) string
	logger *zerolog.Logger
}

type builtType struct {
	typ   reflect.Type
	input bool
}

// An Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for debug output while building types. By
// default the package logger is used, which discards everything unless the
// program configures it.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = &logger
	}
}

// WithFieldNamer replaces the function deriving GraphQL field names from Go
// member names. The default converts to lower camel case.
func WithFieldNamer(namer func(goName string) string) Option {
	return func(r *Registry) {
		r.namer = namer
	}
}

// NewRegistry returns an empty registry with the built-in scalars registered.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		classes: make(map[reflect.Type]*ClassMetadata),
		objects: make(map[reflect.Type]*graphql.Object),
		inputs:  make(map[reflect.Type]*graphql.InputObject),
		parsers: make(map[reflect.Type]*argParser),
		scalars: make(map[reflect.Type]*graphql.Scalar),
		enums:   make(map[reflect.Type]*graphql.Enum),
		namer:   strcase.ToLowerCamel,
	}
	for typ, scalar := range builtinScalars {
		r.scalars[typ] = scalar
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) log() *zerolog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return &logging.Logger
}

// refType returns the Go type referenced by ref: a reflect.Type is used as is,
// any other value contributes its dynamic type. Pointers are dereferenced.
func refType(ref interface{}) (reflect.Type, error) {
	var t reflect.Type
	switch ref := ref.(type) {
	case nil:
		return nil, fmt.Errorf("nil type reference: %w", ErrUnsupportedType)
	case reflect.Type:
		t = ref
	default:
		t = reflect.TypeOf(ref)
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t, nil
}

func (r *Registry) fieldName(m *MemberMetadata) string {
	if m.config.Name != "" {
		return m.config.Name
	}
	return r.namer(m.name)
}

func (r *Registry) warnIfBuilt(t reflect.Type) {
	_, object := r.objects[t]
	_, input := r.inputs[t]
	if object || input {
		r.log().Warn().Stringer("type", t).Msg("type decorated after its schema type was built; the built type is not updated")
	}
}

// DecorateType applies type decorators to the type referenced by class.
func (r *Registry) DecorateType(class interface{}, decorators ...Decorator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := refType(class)
	if err != nil {
		return err
	}
	c, err := r.classMetadata(t)
	if err != nil {
		return err
	}
	r.warnIfBuilt(t)
	for _, d := range decorators {
		if err := d.applyType(&c.config); err != nil {
			return fmt.Errorf("%s: %w", t, err)
		}
	}
	return nil
}

// DecorateField applies member decorators to the named field or method of the
// type referenced by class.
func (r *Registry) DecorateField(class interface{}, member string, decorators ...Decorator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := refType(class)
	if err != nil {
		return err
	}
	c, err := r.classMetadata(t)
	if err != nil {
		return err
	}
	m, err := c.member(member)
	if err != nil {
		return err
	}
	r.warnIfBuilt(t)
	for _, d := range decorators {
		if err := d.applyField(&m.config); err != nil {
			return fmt.Errorf("%s.%s: %w", t, member, err)
		}
	}
	return nil
}

// DecorateArg applies parameter decorators to the index-th parameter of the
// named method. A leading context.Context parameter is not counted.
func (r *Registry) DecorateArg(class interface{}, method string, index int, decorators ...Decorator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := refType(class)
	if err != nil {
		return err
	}
	c, err := r.classMetadata(t)
	if err != nil {
		return err
	}
	m, err := c.member(method)
	if err != nil {
		return err
	}
	p, err := m.param(index)
	if err != nil {
		return err
	}
	r.warnIfBuilt(t)
	for _, d := range decorators {
		if err := d.applyArg(&p.config); err != nil {
			return fmt.Errorf("%s.%s[%d]: %w", t, method, index, err)
		}
	}
	return nil
}

// TypeConfigOf returns a copy of the accumulated type config of class.
func (r *Registry) TypeConfigOf(class interface{}) (TypeConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := refType(class)
	if err != nil {
		return TypeConfig{}, err
	}
	c, err := r.classMetadata(t)
	if err != nil {
		return TypeConfig{}, err
	}
	return c.config, nil
}

// FieldConfigOf returns a copy of the accumulated config of a member of class.
func (r *Registry) FieldConfigOf(class interface{}, member string) (FieldConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := refType(class)
	if err != nil {
		return FieldConfig{}, err
	}
	c, err := r.classMetadata(t)
	if err != nil {
		return FieldConfig{}, err
	}
	m, err := c.member(member)
	if err != nil {
		return FieldConfig{}, err
	}
	return m.config, nil
}

// ArgumentConfigOf returns a copy of the accumulated config of a method
// parameter of class.
func (r *Registry) ArgumentConfigOf(class interface{}, method string, index int) (ArgumentConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := refType(class)
	if err != nil {
		return ArgumentConfig{}, err
	}
	c, err := r.classMetadata(t)
	if err != nil {
		return ArgumentConfig{}, err
	}
	m, err := c.member(method)
	if err != nil {
		return ArgumentConfig{}, err
	}
	p, err := m.param(index)
	if err != nil {
		return ArgumentConfig{}, err
	}
	return p.config, nil
}

var defaultRegistry = NewRegistry()

// Default returns the registry used by the package level functions.
func Default() *Registry {
	return defaultRegistry
}

// DecorateType applies type decorators to class in the default registry. It
// panics on error, as a failing decorator is a programming error at the
// declaration site.
func DecorateType(class interface{}, decorators ...Decorator) {
	if err := defaultRegistry.DecorateType(class, decorators...); err != nil {
		panic(err)
	}
}

// DecorateField applies member decorators in the default registry and panics
// on error.
func DecorateField(class interface{}, member string, decorators ...Decorator) {
	if err := defaultRegistry.DecorateField(class, member, decorators...); err != nil {
		panic(err)
	}
}

// DecorateArg applies parameter decorators in the default registry and panics
// on error.
func DecorateArg(class interface{}, method string, index int, decorators ...Decorator) {
	if err := defaultRegistry.DecorateArg(class, method, index, decorators...); err != nil {
		panic(err)
	}
}
