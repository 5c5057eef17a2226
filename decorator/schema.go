package decorator

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/graphql-go/graphql"
)

// SchemaConfig names the root types of a schema. Each root is a reference to
// a decorated struct type. When a root is a non-nil pointer, that value is the
// receiver of the root type's resolvers in this schema; otherwise a zero value
// is used.
type SchemaConfig struct {
	Query    interface{}
	Mutation interface{}

	// Types lists additional types to include, e.g. objects only reachable
	// through fields declared with an explicit graphql.Type.
	Types []interface{}
}

// NewSchema builds the schema. Root objects are built for this schema alone;
// every other type comes from TypeOf.
func (r *Registry) NewSchema(config SchemaConfig) (graphql.Schema, error) {
	if config.Query == nil {
		return graphql.Schema{}, errors.New("schema requires a query type")
	}

	query, err := r.rootObject(config.Query)
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("query: %w", err)
	}
	schemaConfig := graphql.SchemaConfig{Query: query}

	if config.Mutation != nil {
		mutation, err := r.rootObject(config.Mutation)
		if err != nil {
			return graphql.Schema{}, fmt.Errorf("mutation: %w", err)
		}
		schemaConfig.Mutation = mutation
	}

	for _, ref := range config.Types {
		typ, err := r.TypeOf(ref)
		if err != nil {
			return graphql.Schema{}, err
		}
		schemaConfig.Types = append(schemaConfig.Types, typ)
	}

	schema, err := graphql.NewSchema(schemaConfig)
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("building schema: %w", err)
	}

	r.log().Debug().Str("query", query.Name()).Int("types", len(schema.TypeMap())).Msg("built schema")
	return schema, nil
}

// rootObject builds the object of a root type for one schema. Each call builds
// a new object so that its resolvers keep the receiver given here.
func (r *Registry) rootObject(ref interface{}) (*graphql.Object, error) {
	if typ, ok := ref.(graphql.Type); ok {
		obj, ok := typ.(*graphql.Object)
		if !ok {
			return nil, fmt.Errorf("%s is not an object type", typ)
		}
		return obj, nil
	}

	t, err := refType(ref)
	if err != nil {
		return nil, err
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not an object type: %w", t, ErrUnsupportedType)
	}
	bound := reflect.New(t)
	if v := reflect.ValueOf(ref); v.Kind() == reflect.Ptr && !v.IsNil() && v.Type().Elem() == t {
		bound = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if scalar, ok := r.scalars[t]; ok {
		return nil, fmt.Errorf("%s is not an object type", scalar)
	}
	mark := len(r.journal)
	obj, err := r.buildRoot(t, bound)
	if err != nil {
		r.rollback(mark)
		return nil, err
	}
	r.journal = r.journal[:mark]
	return obj, nil
}

// NewSchema builds a schema from the default registry.
func NewSchema(config SchemaConfig) (graphql.Schema, error) {
	return defaultRegistry.NewSchema(config)
}
