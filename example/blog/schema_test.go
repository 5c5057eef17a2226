package blog

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/require"

	"github.com/koba789/gqldecorator/introspection"
)

// tickingClock starts at a fixed instant and advances a minute per call.
func tickingClock() func() time.Time {
	t := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newTestSchema(t *testing.T) (*Store, graphql.Schema) {
	t.Helper()
	store := NewStore()
	store.now = tickingClock()
	Seed(store)

	schema, err := NewSchema(store)
	require.NoError(t, err)
	return store, schema
}

func do(t *testing.T, schema graphql.Schema, query string, vars map[string]interface{}) string {
	t.Helper()
	res := graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: vars,
		Context:        context.Background(),
	})
	require.False(t, res.HasErrors(), spew.Sdump(res.Errors))
	out, err := json.Marshal(res.Data)
	require.NoError(t, err)
	return string(out)
}

func doErr(t *testing.T, schema graphql.Schema, query string, vars map[string]interface{}) string {
	t.Helper()
	res := graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: vars,
		Context:        context.Background(),
	})
	require.Len(t, res.Errors, 1, spew.Sdump(res))
	return res.Errors[0].Message
}

func TestQueryUsers(t *testing.T) {
	_, schema := newTestSchema(t)

	got := do(t, schema, `{ users { name role createdAt } }`, nil)
	require.JSONEq(t, `{"users": [
		{"name": "Alice", "role": "ADMIN", "createdAt": "2024-01-02T03:05:05Z"},
		{"name": "Bob", "role": "AUTHOR", "createdAt": "2024-01-02T03:06:05Z"},
		{"name": "Carol", "role": "READER", "createdAt": "2024-01-02T03:07:05Z"}
	]}`, got)

	got = do(t, schema, `query ($role: Role) { users(role: $role) { name } }`, map[string]interface{}{"role": "AUTHOR"})
	require.JSONEq(t, `{"users": [{"name": "Bob"}]}`, got)
}

func TestQueryPost(t *testing.T) {
	store, schema := newTestSchema(t)
	intro := store.allPosts[0]

	got := do(t, schema, `query ($id: UUID!) {
		post(id: $id) {
			id
			title
			excerpt(length: 14)
			readingTime
			publishedAt
			author { name role }
			comments { body author { name } post { title } }
		}
	}`, map[string]interface{}{"id": intro.ID.String()})

	require.JSONEq(t, `{"post": {
		"id": "`+intro.ID.String()+`",
		"title": "Hello, blog",
		"excerpt": "The first post…",
		"readingTime": "3.6s",
		"publishedAt": "2024-01-02T03:09:05Z",
		"author": {"name": "Alice", "role": "ADMIN"},
		"comments": [{"body": "Welcome!", "author": {"name": "Bob"}, "post": {"title": "Hello, blog"}}]
	}}`, got)
}

func TestQueryPostNotFound(t *testing.T) {
	_, schema := newTestSchema(t)

	msg := doErr(t, schema, `{ post(id: "00000000-0000-0000-0000-000000000000") { title } }`, nil)
	require.Contains(t, msg, "not found")
}

func TestQueryPostsFilter(t *testing.T) {
	store, schema := newTestSchema(t)

	got := do(t, schema, `{ posts { title } }`, nil)
	require.JSONEq(t, `{"posts": [{"title": "Drafts are private"}, {"title": "Hello, blog"}]}`, got)

	got = do(t, schema, `{ posts(filter: {tag: "HOWTO"}) { title tags } }`, nil)
	require.JSONEq(t, `{"posts": [{"title": "Drafts are private", "tags": ["meta", "howto"]}]}`, got)

	got = do(t, schema, `{ posts(filter: {published: false}) { title publishedAt } }`, nil)
	require.JSONEq(t, `{"posts": [{"title": "Drafts are private", "publishedAt": null}]}`, got)

	alice := store.allPosts[0].AuthorID
	got = do(t, schema, `query ($author: UUID) { posts(filter: {authorId: $author}) { title } }`,
		map[string]interface{}{"author": alice.String()})
	require.JSONEq(t, `{"posts": [{"title": "Hello, blog"}]}`, got)
}

func TestUserPosts(t *testing.T) {
	_, schema := newTestSchema(t)

	got := do(t, schema, `{ users(role: AUTHOR) { name posts { title comments(first: 0) { body } } } }`, nil)
	require.JSONEq(t, `{"users": [{"name": "Bob", "posts": [{"title": "Drafts are private", "comments": []}]}]}`, got)
}

func TestMutations(t *testing.T) {
	store, schema := newTestSchema(t)
	bob := store.allPosts[1].AuthorID

	got := do(t, schema, `mutation ($author: UUID!) {
		createPost(input: {authorId: $author, title: "Second", body: "two words", tags: ["go"]}) {
			title tags publishedAt author { name }
		}
	}`, map[string]interface{}{"author": bob.String()})
	require.JSONEq(t, `{"createPost": {"title": "Second", "tags": ["go"], "publishedAt": null, "author": {"name": "Bob"}}}`, got)

	second := store.allPosts[len(store.allPosts)-1]
	require.Equal(t, "Second", second.Title)

	msg := doErr(t, schema, `mutation ($post: UUID!, $author: UUID!) {
		addComment(postId: $post, authorId: $author, body: "first!") { body }
	}`, map[string]interface{}{"post": second.ID.String(), "author": bob.String()})
	require.Contains(t, msg, "not published")

	got = do(t, schema, `mutation ($id: UUID!) { publish(id: $id) { publishedAt } }`,
		map[string]interface{}{"id": second.ID.String()})
	require.JSONEq(t, `{"publish": {"publishedAt": "2024-01-02T03:13:05Z"}}`, got)

	got = do(t, schema, `mutation ($post: UUID!, $author: UUID!) {
		addComment(postId: $post, authorId: $author, body: "first!") { body post { title } }
	}`, map[string]interface{}{"post": second.ID.String(), "author": bob.String()})
	require.JSONEq(t, `{"addComment": {"body": "first!", "post": {"title": "Second"}}}`, got)
}

func TestCreatePostForbidden(t *testing.T) {
	store, schema := newTestSchema(t)

	var carol *User
	for _, u := range store.users(nil) {
		if u.Name == "Carol" {
			carol = u
		}
	}
	require.NotNil(t, carol)

	msg := doErr(t, schema, `mutation ($author: UUID!) {
		createPost(input: {authorId: $author, title: "Nope"}) { title }
	}`, map[string]interface{}{"author": carol.ID.String()})
	require.Contains(t, msg, "forbidden")
}

func TestSchemaSDL(t *testing.T) {
	_, schema := newTestSchema(t)
	sdl := introspection.PrintSchema(schema)

	for _, want := range []string{
		"\"Access level of a user.\"\nenum Role {\n  ADMIN\n  AUTHOR\n  READER\n}",
		"input CreatePostInput {\n  authorId: UUID!\n  body: String\n  tags: [String]\n  title: String!\n}",
		"input PostFilter {\n  authorId: UUID\n  published: Boolean\n  tag: String\n}",
		"  comments(\n    \"Maximum number of comments to return.\"\n    first: Int = 20\n  ): [Comment!]\n",
		"  posts(filter: PostFilter): [Post!]!\n",
		"  users(role: Role): [User!]!\n",
		"  addComment(authorId: UUID!, body: String!, postId: UUID!): Comment\n",
		"scalar Duration",
		"scalar Timestamp",
		"scalar DateTime",
	} {
		if !strings.Contains(sdl, want) {
			t.Errorf("SDL is missing %q:\n%s", want, sdl)
		}
	}
}
