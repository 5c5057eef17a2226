// Package decorator declares GraphQL object types, fields and arguments on Go
// types and derives a graphql-go type graph from those declarations.
//
// Declarations are made by applying decorators to a type, to one of its
// members (a field or a method) or to one of a method's parameters:
//
//	type User struct {
//		ID    string `graphql:"id,nonnull"`
//		Name  string `graphql:"name" description:"Display name."`
//		posts []*Post
//	}
//
//	func (u *User) Posts(ctx context.Context, first int) ([]*Post, error) {
//		...
//	}
//
//	func init() {
//		decorator.DecorateType(User{}, decorator.TypeName("User"))
//		decorator.DecorateField(User{}, "Posts",
//			decorator.Field(), decorator.Type(Post{}), decorator.NonNull(),
//			decorator.List(), decorator.NonNull())
//		decorator.DecorateArg(User{}, "Posts", 0,
//			decorator.Arg("first"), decorator.DefaultValue(10))
//	}
//
//	userType := decorator.MustTypeOf(User{})
//
// Struct tags are the declarative spelling of member decorators. A
// `graphql:"name,opt,..."` tag exposes the field; recognised options are
// nonnull, list, description=... and deprecated=...; `graphql:"-"` hides it.
// Members without a tag are only exposed once decorated with Field.
//
// Embedded structs act as parent types: their exposed members are inherited
// by the embedding type, which may override them by declaring a member with
// the same GraphQL name.
//
// Type construction is delegated to github.com/graphql-go/graphql. Results of
// TypeOf are memoized per Go type so every reference to a type resolves to the
// same engine object.
package decorator
