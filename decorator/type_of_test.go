package decorator_test

import (
	"bytes"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/golang/protobuf/ptypes/duration"
	"github.com/golang/protobuf/ptypes/timestamp"
	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/iancoleman/strcase"
	"github.com/kylelemons/godebug/pretty"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/koba789/gqldecorator/decorator"
)

type Scalars struct {
	S  string               `graphql:"s"`
	B  bool                 `graphql:"b"`
	I  int64                `graphql:"i"`
	U  uint8                `graphql:"u"`
	F  float32              `graphql:"f"`
	P  *string              `graphql:"p"`
	L  []int                `graphql:"l"`
	A  [2]bool              `graphql:"a"`
	T  time.Time            `graphql:"t"`
	ID uuid.UUID            `graphql:"id"`
	TS *timestamp.Timestamp `graphql:"ts"`
	D  *duration.Duration   `graphql:"d"`
}

type Modifiers struct {
	A []string `graphql:"a,nonnull"`
	B string   `graphql:"b,nonnull,list,nonnull"`
	C []string `graphql:"c"`
	D []string
}

type DoubleNonNull struct {
	E string `graphql:"e,nonnull,nonnull"`
}

type Tree struct {
	Value    int     `graphql:"value"`
	Children []*Tree `graphql:"children"`
	Parent   *Tree   `graphql:"parent"`
}

type Leaf struct {
	X int `graphql:"x"`
}

type Broken struct {
	Fn func() `graphql:"fn"`
}

type HasBroken struct {
	Ok Leaf   `graphql:"ok"`
	B  Broken `graphql:"b"`
}

type Empty struct {
	X int
}

type Greeter struct{}

func (Greeter) Greet(name string) string { return "hello " + name }

type Point struct {
	X int `graphql:"x,nonnull"`
	Y int `graphql:"y"`
}

type WithMethod struct {
	X int `graphql:"x"`
}

func (WithMethod) Y() int { return 0 }

type Animal struct {
	Name string `graphql:"name"`
}

type Dog struct {
	Animal
	Breed string `graphql:"breed"`
}

type Event struct {
	CreatedAt time.Time `graphql:",nonnull"`
}

type Clash struct {
	Name string `graphql:"name"`
}

func (Clash) Label() string { return "label" }

type Box[T any] struct {
	V T `graphql:"v"`
}

func fieldTypes(obj *graphql.Object) map[string]string {
	out := map[string]string{}
	for name, f := range obj.Fields() {
		out[name] = f.Type.String()
	}
	return out
}

func TestTypeOfInfersFieldTypes(t *testing.T) {
	r := decorator.NewRegistry()
	obj, ok := r.MustTypeOf(Scalars{}).(*graphql.Object)
	require.True(t, ok)
	require.Equal(t, "Scalars", obj.Name())

	want := map[string]string{
		"s":  "String",
		"b":  "Boolean",
		"i":  "Int",
		"u":  "Int",
		"f":  "Float",
		"p":  "String",
		"l":  "[Int]",
		"a":  "[Boolean]",
		"t":  "DateTime",
		"id": "UUID",
		"ts": "Timestamp",
		"d":  "Duration",
	}
	if diff := pretty.Compare(fieldTypes(obj), want); diff != "" {
		t.Errorf("unexpected field types (-got +want):\n%s", diff)
	}
}

func TestTypeOfAppliesModifiersInOrder(t *testing.T) {
	r := decorator.NewRegistry()
	require.NoError(t, r.DecorateField(Modifiers{}, "D", decorator.Field(), decorator.Type(graphql.ID), decorator.List()))

	obj := r.MustTypeOf(Modifiers{}).(*graphql.Object)
	want := map[string]string{
		"a": "[String]!",
		"b": "[String!]!",
		"c": "[String]",
		"d": "[ID]",
	}
	if diff := pretty.Compare(fieldTypes(obj), want); diff != "" {
		t.Errorf("unexpected field types (-got +want):\n%s", diff)
	}

	_, err := r.TypeOf(DoubleNonNull{})
	require.ErrorContains(t, err, "already non-null")
}

func TestTypeOfIsMemoized(t *testing.T) {
	r := decorator.NewRegistry()
	a, err := r.TypeOf(Leaf{})
	require.NoError(t, err)
	b, err := r.TypeOf(&Leaf{})
	require.NoError(t, err)
	c, err := r.TypeOf(reflect.TypeOf(Leaf{}))
	require.NoError(t, err)

	require.Same(t, a.(*graphql.Object), b.(*graphql.Object))
	require.Same(t, a.(*graphql.Object), c.(*graphql.Object))

	other := decorator.NewRegistry().MustTypeOf(Leaf{})
	require.NotSame(t, a.(*graphql.Object), other.(*graphql.Object))
}

func TestTypeOfPassesEngineTypesThrough(t *testing.T) {
	r := decorator.NewRegistry()
	typ, err := r.TypeOf(graphql.String)
	require.NoError(t, err)
	require.Equal(t, graphql.String, typ)

	list := graphql.NewList(graphql.Int)
	typ, err = r.TypeOf(list)
	require.NoError(t, err)
	require.Equal(t, list, typ)

	typ, err = r.TypeOf("")
	require.NoError(t, err)
	require.Equal(t, graphql.String, typ)
}

func TestTypeOfSelfReference(t *testing.T) {
	r := decorator.NewRegistry()
	obj := r.MustTypeOf(Tree{}).(*graphql.Object)

	fields := obj.Fields()
	require.Same(t, obj, fields["parent"].Type.(*graphql.Object))
	require.Equal(t, "[Tree]", fields["children"].Type.String())
}

func TestTypeOfRollsBackFailedBuilds(t *testing.T) {
	r := decorator.NewRegistry()

	_, err := r.TypeOf(HasBroken{})
	require.ErrorIs(t, err, decorator.ErrUnsupportedType)
	require.ErrorContains(t, err, "HasBroken")

	// Leaf was built while building HasBroken; after the rollback it is built
	// again and picks up the new name.
	require.NoError(t, r.DecorateType(Leaf{}, decorator.TypeName("Leaflet")))
	leaf, err := r.TypeOf(Leaf{})
	require.NoError(t, err)
	require.Equal(t, "Leaflet", leaf.Name())

	_, err = r.TypeOf(HasBroken{})
	require.ErrorIs(t, err, decorator.ErrUnsupportedType)
}

func TestTypeOfErrors(t *testing.T) {
	r := decorator.NewRegistry()

	_, err := r.TypeOf(Empty{})
	require.ErrorIs(t, err, decorator.ErrNoFields)

	_, err = r.TypeOf(make(chan int))
	require.ErrorIs(t, err, decorator.ErrUnsupportedType)

	_, err = r.TypeOf(nil)
	require.ErrorIs(t, err, decorator.ErrUnsupportedType)

	require.NoError(t, r.DecorateField(Greeter{}, "Greet", decorator.Field()))
	_, err = r.TypeOf(Greeter{})
	require.ErrorIs(t, err, decorator.ErrMissingArgName)

	require.NoError(t, r.DecorateArg(Greeter{}, "Greet", 0, decorator.Arg("name")))
	obj, err := r.TypeOf(Greeter{})
	require.NoError(t, err)
	args := obj.(*graphql.Object).Fields()["greet"].Args
	require.Len(t, args, 1)
	require.Equal(t, "name", args[0].Name())

	require.Panics(t, func() { r.MustTypeOf(Empty{}) })
}

func TestTypeOfRejectsDuplicateFields(t *testing.T) {
	r := decorator.NewRegistry()
	require.NoError(t, r.DecorateField(Clash{}, "Label", decorator.Field("name")))

	_, err := r.TypeOf(Clash{})
	require.ErrorIs(t, err, decorator.ErrDuplicateField)
	require.ErrorContains(t, err, "duplicate field name: Clash.Name and Clash.Label")

	_, err = r.InputTypeOf(Clash{})
	require.ErrorIs(t, err, decorator.ErrDuplicateField)

	require.NoError(t, r.DecorateField(Clash{}, "Label", decorator.Field("label")))
	obj, err := r.TypeOf(Clash{})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"name": "String", "label": "String"}, fieldTypes(obj.(*graphql.Object)))
}

func TestRegistryConcurrentUse(t *testing.T) {
	r := decorator.NewRegistry()
	refs := []interface{}{
		Box[int]{}, Box[string]{}, Box[bool]{}, Box[float64]{},
		Box[int8]{}, Box[uint16]{}, Box[[]string]{}, Box[*int]{},
	}

	type result struct {
		obj  graphql.Output
		in   graphql.Input
		leaf graphql.Output
		err  error
	}
	results := make([]result, len(refs))

	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref interface{}) {
			defer wg.Done()
			res := &results[i]
			if res.err = r.DecorateType(ref, decorator.TypeName(fmt.Sprintf("Box%d", i))); res.err != nil {
				return
			}
			if res.err = r.DecorateField(ref, "V", decorator.Description(fmt.Sprintf("value %d", i))); res.err != nil {
				return
			}
			if res.obj, res.err = r.TypeOf(ref); res.err != nil {
				return
			}
			if res.in, res.err = r.InputTypeOf(ref); res.err != nil {
				return
			}
			res.leaf, res.err = r.TypeOf(Leaf{})
		}(i, ref)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := r.RegisterScalar(Celsius(0), celsiusScalar); err != nil {
			t.Errorf("registering scalar: %v", err)
		}
	}()
	wg.Wait()

	for i, res := range results {
		require.NoError(t, res.err, "type %d", i)
		obj, ok := res.obj.(*graphql.Object)
		require.True(t, ok)
		require.Equal(t, fmt.Sprintf("Box%d", i), obj.Name())
		require.Equal(t, fmt.Sprintf("value %d", i), obj.Fields()["v"].Description)
		require.Equal(t, fmt.Sprintf("Box%dInput", i), res.in.Name())
		require.Same(t, results[0].leaf.(*graphql.Object), res.leaf.(*graphql.Object))
	}

	typ, err := r.TypeOf(Celsius(0))
	require.NoError(t, err)
	require.Equal(t, celsiusScalar, typ)
}

func TestInputTypeOf(t *testing.T) {
	r := decorator.NewRegistry()

	in, err := r.InputTypeOf(Point{})
	require.NoError(t, err)
	obj, ok := in.(*graphql.InputObject)
	require.True(t, ok)
	require.Equal(t, "PointInput", obj.Name())
	require.Equal(t, "Int!", obj.Fields()["x"].Type.String())
	require.Equal(t, "Int", obj.Fields()["y"].Type.String())

	out, err := r.TypeOf(Point{})
	require.NoError(t, err)
	require.Equal(t, "Point", out.Name())

	require.NoError(t, r.DecorateType(Leaf{}, decorator.InputName("LeafFields")))
	in, err = r.InputTypeOf(Leaf{})
	require.NoError(t, err)
	require.Equal(t, "LeafFields", in.Name())

	require.NoError(t, r.DecorateField(WithMethod{}, "Y", decorator.Field()))
	_, err = r.InputTypeOf(WithMethod{})
	require.ErrorContains(t, err, "cannot be an input field")

	_, err = r.InputTypeOf(r.MustTypeOf(Point{}))
	require.ErrorIs(t, err, decorator.ErrUnsupportedType)
}

func TestNamesAreNotInherited(t *testing.T) {
	r := decorator.NewRegistry()
	require.NoError(t, r.DecorateType(Animal{}, decorator.TypeName("Creature"), decorator.Description("Any animal.")))

	obj := r.MustTypeOf(Dog{}).(*graphql.Object)
	require.Equal(t, "Dog", obj.Name())
	require.Equal(t, "", obj.Description())
	require.Equal(t, map[string]string{"name": "String", "breed": "String"}, fieldTypes(obj))

	parent := r.MustTypeOf(Animal{}).(*graphql.Object)
	require.Equal(t, "Creature", parent.Name())
	require.Equal(t, "Any animal.", parent.Description())
}

func TestWithFieldNamer(t *testing.T) {
	r := decorator.NewRegistry(decorator.WithFieldNamer(strcase.ToSnake))
	obj := r.MustTypeOf(Event{}).(*graphql.Object)
	require.Equal(t, map[string]string{"created_at": "DateTime!"}, fieldTypes(obj))

	obj = decorator.NewRegistry().MustTypeOf(Event{}).(*graphql.Object)
	require.Equal(t, map[string]string{"createdAt": "DateTime!"}, fieldTypes(obj))
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	r := decorator.NewRegistry(decorator.WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))

	r.MustTypeOf(Leaf{})
	require.Contains(t, buf.String(), `"message":"built object type"`)
	require.Contains(t, buf.String(), `"type":"Leaf"`)

	buf.Reset()
	require.NoError(t, r.DecorateType(Leaf{}, decorator.Description("late")))
	require.Contains(t, buf.String(), `"level":"warn"`)
}
