// Package blog is a small blog backend whose GraphQL schema is declared with
// decorators on its Go types.
package blog

import (
	"github.com/graphql-go/graphql"

	"github.com/koba789/gqldecorator/decorator"
)

// registrar applies decorators to a registry, keeping the first error.
type registrar struct {
	r   *decorator.Registry
	err error
}

func (g *registrar) typ(class interface{}, decorators ...decorator.Decorator) {
	if g.err == nil {
		g.err = g.r.DecorateType(class, decorators...)
	}
}

func (g *registrar) field(class interface{}, member string, decorators ...decorator.Decorator) {
	if g.err == nil {
		g.err = g.r.DecorateField(class, member, decorators...)
	}
}

func (g *registrar) arg(class interface{}, method string, index int, decorators ...decorator.Decorator) {
	if g.err == nil {
		g.err = g.r.DecorateArg(class, method, index, decorators...)
	}
}

// Register declares the blog types on r.
func Register(r *decorator.Registry) error {
	if err := r.RegisterEnum(RoleReader, "Role", map[string]interface{}{
		"ADMIN":  RoleAdmin,
		"AUTHOR": RoleAuthor,
		"READER": RoleReader,
	}, "Access level of a user."); err != nil {
		return err
	}

	g := &registrar{r: r}

	g.typ(User{}, decorator.Description("A registered member of the blog."))
	g.field(User{}, "Posts", decorator.Field(), decorator.Type(Post{}), decorator.NonNull(), decorator.List(), decorator.NonNull(),
		decorator.Description("Posts written by the user, newest first."))

	g.typ(Post{}, decorator.Description("An article, either a draft or published."))
	g.field(Post{}, "Author", decorator.Field(), decorator.NonNull())
	g.field(Post{}, "Comments", decorator.Field(), decorator.Type(Comment{}), decorator.NonNull(), decorator.List())
	g.arg(Post{}, "Comments", 0, decorator.Arg("first"), decorator.DefaultValue(20),
		decorator.Description("Maximum number of comments to return."))
	g.field(Post{}, "Excerpt", decorator.Field(), decorator.NonNull())
	g.arg(Post{}, "Excerpt", 0, decorator.Arg("length"), decorator.DefaultValue(80))
	g.field(Post{}, "ReadingTime", decorator.Field())

	g.field(Comment{}, "Author", decorator.Field(), decorator.NonNull())
	g.field(Comment{}, "Post", decorator.Field(), decorator.NonNull())

	g.typ(PostFilter{}, decorator.InputName("PostFilter"))
	g.typ(NewPost{}, decorator.InputName("CreatePostInput"))

	g.field(Query{}, "User", decorator.Field())
	g.arg(Query{}, "User", 0, decorator.Arg("id"), decorator.NonNull())
	g.field(Query{}, "Users", decorator.Field(), decorator.Type(User{}), decorator.NonNull(), decorator.List(), decorator.NonNull())
	g.arg(Query{}, "Users", 0, decorator.Arg("role"))
	g.field(Query{}, "Post", decorator.Field())
	g.arg(Query{}, "Post", 0, decorator.Arg("id"), decorator.NonNull())
	g.field(Query{}, "Posts", decorator.Field(), decorator.Type(Post{}), decorator.NonNull(), decorator.List(), decorator.NonNull())
	g.arg(Query{}, "Posts", 0, decorator.Arg("filter"))

	g.field(Mutation{}, "CreatePost", decorator.Field(), decorator.Description("Creates a draft post."))
	g.arg(Mutation{}, "CreatePost", 0, decorator.Arg("input"), decorator.NonNull())
	g.field(Mutation{}, "Publish", decorator.Field())
	g.arg(Mutation{}, "Publish", 0, decorator.Arg("id"), decorator.NonNull())
	g.field(Mutation{}, "AddComment", decorator.Field())
	g.arg(Mutation{}, "AddComment", 0, decorator.Arg("postId"), decorator.NonNull())
	g.arg(Mutation{}, "AddComment", 1, decorator.Arg("authorId"), decorator.NonNull())
	g.arg(Mutation{}, "AddComment", 2, decorator.Arg("body"), decorator.NonNull())

	return g.err
}

// NewSchema builds the blog schema on a fresh registry, resolving the root
// fields against store.
func NewSchema(store *Store, opts ...decorator.Option) (graphql.Schema, error) {
	r := decorator.NewRegistry(opts...)
	if err := Register(r); err != nil {
		return graphql.Schema{}, err
	}
	return r.NewSchema(decorator.SchemaConfig{
		Query:    &Query{store: store},
		Mutation: &Mutation{store: store},
	})
}
