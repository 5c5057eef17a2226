// Package introspection renders schemas built from decorated types, either as
// the JSON result of the standard introspection query or as SDL.
package introspection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/printer"
)

// ComputeSchemaJSON returns the result of executing a GraphQL introspection
// query against schema.
func ComputeSchemaJSON(ctx context.Context, schema graphql.Schema) ([]byte, error) {
	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: Query,
		Context:       ctx,
	})
	if result.HasErrors() {
		errs := make([]error, 0, len(result.Errors))
		for _, e := range result.Errors {
			errs = append(errs, errors.New(e.Message))
		}
		return nil, fmt.Errorf("introspection: %w", errors.Join(errs...))
	}

	return json.MarshalIndent(result.Data, "", "  ")
}

var specifiedScalars = map[string]bool{
	"String":  true,
	"Int":     true,
	"Float":   true,
	"Boolean": true,
	"ID":      true,
}

// PrintSchema renders the user-defined types of schema as SDL, sorted by
// name. Introspection types and the scalars every schema has are omitted.
func PrintSchema(schema graphql.Schema) string {
	typeMap := schema.TypeMap()
	names := make([]string, 0, len(typeMap))
	for name := range typeMap {
		if strings.HasPrefix(name, "__") || specifiedScalars[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var blocks []string
	if block := printSchemaDefinition(schema); block != "" {
		blocks = append(blocks, block)
	}
	for _, name := range names {
		if block := printType(typeMap[name]); block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// printSchemaDefinition prints the schema block when the root types do not
// use the conventional names.
func printSchemaDefinition(schema graphql.Schema) string {
	query := schema.QueryType()
	mutation := schema.MutationType()
	if (query == nil || query.Name() == "Query") && (mutation == nil || mutation.Name() == "Mutation") {
		return ""
	}

	var b strings.Builder
	b.WriteString("schema {\n")
	if query != nil {
		fmt.Fprintf(&b, "  query: %s\n", query.Name())
	}
	if mutation != nil {
		fmt.Fprintf(&b, "  mutation: %s\n", mutation.Name())
	}
	b.WriteString("}")
	return b.String()
}

func printType(typ graphql.Type) string {
	switch t := typ.(type) {
	case *graphql.Scalar:
		return printDescription(t.Description(), "") + "scalar " + t.Name()
	case *graphql.Enum:
		return printEnum(t)
	case *graphql.Object:
		return printObject(t)
	case *graphql.InputObject:
		return printInputObject(t)
	default:
		return ""
	}
}

func printObject(obj *graphql.Object) string {
	var b strings.Builder
	b.WriteString(printDescription(obj.Description(), ""))
	b.WriteString("type " + obj.Name())

	if len(obj.Interfaces()) > 0 {
		names := make([]string, 0, len(obj.Interfaces()))
		for _, iface := range obj.Interfaces() {
			names = append(names, iface.Name())
		}
		b.WriteString(" implements " + strings.Join(names, " & "))
	}
	b.WriteString(" {\n")

	fields := obj.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f := fields[name]
		b.WriteString(printDescription(f.Description, "  "))
		b.WriteString("  " + f.Name + printArgs(f.Args, "  ") + ": " + f.Type.String())
		if f.DeprecationReason != "" {
			b.WriteString(" @deprecated(reason: " + quote(f.DeprecationReason) + ")")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// printArgs prints the arguments of a field inline, or one per line below the
// field when any of them has a description.
func printArgs(args []*graphql.Argument, indent string) string {
	if len(args) == 0 {
		return ""
	}
	sorted := append([]*graphql.Argument(nil), args...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })

	described := false
	parts := make([]string, 0, len(sorted))
	for _, arg := range sorted {
		part := arg.Name() + ": " + arg.Type.String()
		if arg.DefaultValue != nil {
			part += " = " + printValue(arg.DefaultValue, arg.Type)
		}
		parts = append(parts, part)
		described = described || arg.Description() != ""
	}
	if !described {
		return "(" + strings.Join(parts, ", ") + ")"
	}

	var b strings.Builder
	b.WriteString("(\n")
	for i, arg := range sorted {
		b.WriteString(printDescription(arg.Description(), indent+"  "))
		b.WriteString(indent + "  " + parts[i] + "\n")
	}
	b.WriteString(indent + ")")
	return b.String()
}

func printInputObject(obj *graphql.InputObject) string {
	var b strings.Builder
	b.WriteString(printDescription(obj.Description(), ""))
	b.WriteString("input " + obj.Name() + " {\n")

	fields := obj.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		f := fields[name]
		b.WriteString(printDescription(f.Description(), "  "))
		b.WriteString("  " + f.Name() + ": " + f.Type.String())
		if f.DefaultValue != nil {
			b.WriteString(" = " + printValue(f.DefaultValue, f.Type))
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

func printEnum(enum *graphql.Enum) string {
	var b strings.Builder
	b.WriteString(printDescription(enum.Description(), ""))
	b.WriteString("enum " + enum.Name() + " {\n")

	values := append([]*graphql.EnumValueDefinition(nil), enum.Values()...)
	sort.Slice(values, func(i, j int) bool { return values[i].Name < values[j].Name })
	for _, v := range values {
		b.WriteString(printDescription(v.Description, "  "))
		b.WriteString("  " + v.Name)
		if v.DeprecationReason != "" {
			b.WriteString(" @deprecated(reason: " + quote(v.DeprecationReason) + ")")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

func printDescription(description, indent string) string {
	if description == "" {
		return ""
	}
	if !strings.Contains(description, "\n") {
		return indent + quote(description) + "\n"
	}
	lines := strings.Split(description, "\n")
	var b strings.Builder
	b.WriteString(indent + `"""` + "\n")
	for _, line := range lines {
		b.WriteString(indent + strings.ReplaceAll(line, `"""`, `\"""`) + "\n")
	}
	b.WriteString(indent + `"""` + "\n")
	return b.String()
}

func quote(s string) string {
	out, _ := json.Marshal(s)
	return string(out)
}

// printValue renders v as a GraphQL literal of typ.
func printValue(v interface{}, typ graphql.Type) string {
	printed, ok := printer.Print(valueAST(v, typ)).(string)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return printed
}

// valueAST converts a Go value into the literal of typ. Input object values
// are maps keyed by field name.
func valueAST(v interface{}, typ graphql.Type) ast.Value {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nullAST()
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nullAST()
	}
	v = rv.Interface()

	switch t := typ.(type) {
	case *graphql.NonNull:
		return valueAST(v, t.OfType)
	case *graphql.List:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return valueAST(v, t.OfType)
		}
		values := make([]ast.Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			values = append(values, valueAST(rv.Index(i).Interface(), t.OfType))
		}
		return ast.NewListValue(&ast.ListValue{Values: values})
	case *graphql.InputObject:
		m, ok := v.(map[string]interface{})
		if !ok {
			return scalarAST(v)
		}
		fieldDefs := t.Fields()
		names := make([]string, 0, len(m))
		for name := range m {
			if _, ok := fieldDefs[name]; ok {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		fields := make([]*ast.ObjectField, 0, len(names))
		for _, name := range names {
			fields = append(fields, ast.NewObjectField(&ast.ObjectField{
				Name:  ast.NewName(&ast.Name{Value: name}),
				Value: valueAST(m[name], fieldDefs[name].Type),
			}))
		}
		return ast.NewObjectValue(&ast.ObjectValue{Fields: fields})
	case *graphql.Enum:
		name, ok := t.Serialize(v).(string)
		if !ok {
			return nullAST()
		}
		return ast.NewEnumValue(&ast.EnumValue{Value: name})
	case *graphql.Scalar:
		return scalarAST(t.Serialize(v))
	}
	return scalarAST(v)
}

func scalarAST(v interface{}) ast.Value {
	switch v := v.(type) {
	case nil:
		return nullAST()
	case bool:
		return ast.NewBooleanValue(&ast.BooleanValue{Value: v})
	case string:
		// The printer adds the quotes but does not escape.
		return ast.NewStringValue(&ast.StringValue{Value: strings.TrimSuffix(strings.TrimPrefix(quote(v), `"`), `"`)})
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return ast.NewIntValue(&ast.IntValue{Value: fmt.Sprintf("%d", v)})
	case float32:
		return ast.NewFloatValue(&ast.FloatValue{Value: strconv.FormatFloat(float64(v), 'g', -1, 32)})
	case float64:
		return ast.NewFloatValue(&ast.FloatValue{Value: strconv.FormatFloat(v, 'g', -1, 64)})
	}
	return scalarAST(fmt.Sprintf("%v", v))
}

// nullAST stands in for the null literal, which the ast package lacks.
func nullAST() ast.Value {
	return ast.NewEnumValue(&ast.EnumValue{Value: "null"})
}
