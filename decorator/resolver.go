package decorator

import (
	"context"
	"fmt"
	"reflect"

	"github.com/graphql-go/graphql"
)

// callPlan describes how to call a method member from field arguments.
type callPlan struct {
	withContext bool
	args        []callArg
}

type callArg struct {
	name   string
	parser *argParser
}

// A receiverFunc maps the source of a field onto a pointer to the value the
// field is resolved on. An invalid value means the source is nil.
type receiverFunc func(source interface{}) (reflect.Value, error)

// sourceReceiver accepts sources of type t or pointers to t.
func sourceReceiver(t reflect.Type) receiverFunc {
	return func(source interface{}) (reflect.Value, error) {
		v := reflect.ValueOf(source)
		if !v.IsValid() {
			return reflect.Value{}, nil
		}
		for v.Kind() == reflect.Ptr && !v.IsNil() {
			if v.Type().Elem() == t {
				return v, nil
			}
			v = v.Elem()
		}
		switch v.Type() {
		case t:
			ptr := reflect.New(t)
			ptr.Elem().Set(v)
			return ptr, nil
		case reflect.PtrTo(t):
			return reflect.Value{}, nil
		}
		return reflect.Value{}, fmt.Errorf("cannot resolve %s fields on a %T", t, source)
	}
}

// rootReceiver resolves the fields of a root type on bound whenever the source
// is not a t, which is how the engine calls root resolvers.
func rootReceiver(t reflect.Type, bound reflect.Value) receiverFunc {
	own := sourceReceiver(t)
	return func(source interface{}) (reflect.Value, error) {
		if v, err := own(source); err == nil && v.IsValid() {
			return v, nil
		}
		return bound, nil
	}
}

// walkPath follows embedded fields from v, dereferencing pointers. ok is false
// when a nil pointer is met along the way.
func walkPath(v reflect.Value, path []int) (reflect.Value, bool) {
	for _, i := range path {
		for v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	return v, true
}

// propertyResolver reads a struct field of the receiver. index is the field
// index relative to the member's owner, reached from the receiver through
// path.
func propertyResolver(receiver receiverFunc, path, index []int) graphql.FieldResolveFn {
	full := append(append([]int(nil), path...), index...)
	return func(p graphql.ResolveParams) (interface{}, error) {
		recv, err := receiver(p.Source)
		if err != nil || !recv.IsValid() {
			return nil, err
		}
		v, ok := walkPath(recv, full)
		if !ok {
			return nil, nil
		}
		return v.Interface(), nil
	}
}

// methodResolver calls the named method on the member's owner with the
// context (when the method takes one) and the parsed arguments.
func methodResolver(receiver receiverFunc, path []int, name string, call *callPlan) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		recv, err := receiver(p.Source)
		if err != nil || !recv.IsValid() {
			return nil, err
		}
		owner, ok := walkPath(recv, path)
		if !ok {
			return nil, nil
		}
		if owner.Kind() != reflect.Ptr {
			if !owner.CanAddr() {
				ptr := reflect.New(owner.Type())
				ptr.Elem().Set(owner)
				owner = ptr.Elem()
			}
			owner = owner.Addr()
		} else if owner.IsNil() {
			return nil, nil
		}

		in := make([]reflect.Value, 0, len(call.args)+1)
		if call.withContext {
			ctx := p.Context
			if ctx == nil {
				ctx = context.Background()
			}
			in = append(in, reflect.ValueOf(ctx))
		}
		for _, arg := range call.args {
			dest := reflect.New(arg.parser.Type).Elem()
			if err := arg.parser.FromJSON(p.Args[arg.name], dest); err != nil {
				return nil, fmt.Errorf("%s: %s", arg.name, err)
			}
			in = append(in, dest)
		}

		out := owner.MethodByName(name).Call(in)
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}
}
