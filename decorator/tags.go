package decorator

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// parseFieldTag translates the graphql and description struct tags of a field
// into the member decorators they stand for. ok is false when the field is not
// part of the GraphQL type: it is unexported, untagged or tagged "-".
//
// Supported form:
//
//	`graphql:"name,nonnull,list,description=...,deprecated=..." description:"..."`
//
// An empty name keeps the default field name. Options apply in the order they
// are written, like decorators.
func parseFieldTag(field reflect.StructField) (decorators []Decorator, ok bool, err error) {
	if field.PkgPath != "" { // unexported fields are never exposed
		return nil, false, nil
	}

	tag, tagged := field.Tag.Lookup("graphql")
	if !tagged {
		return nil, false, nil
	}

	opts := strings.Split(tag, ",")
	name := strings.TrimSpace(opts[0])
	if name == "-" {
		return nil, false, nil
	}

	decorators = append(decorators, Field(name))
	for _, opt := range opts[1:] {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "":
		case opt == "nonnull":
			decorators = append(decorators, NonNull())
		case opt == "list":
			decorators = append(decorators, List())
		case strings.HasPrefix(opt, "description="):
			decorators = append(decorators, Description(strings.TrimPrefix(opt, "description=")))
		case strings.HasPrefix(opt, "deprecated="):
			decorators = append(decorators, Deprecated(strings.TrimPrefix(opt, "deprecated=")))
		default:
			return nil, false, fmt.Errorf("field %s: unknown graphql tag option %q", field.Name, opt)
		}
	}

	// The standalone tag allows commas in descriptions.
	if desc, ok := field.Tag.Lookup("description"); ok {
		decorators = append(decorators, Description(desc))
	}

	return decorators, true, nil
}

// Common Types that we will need to perform type assertions against.
var errType = reflect.TypeOf((*error)(nil)).Elem()
var contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
