package blog

import (
	"context"
	"strings"
	"time"

	"github.com/golang/protobuf/ptypes"
	"github.com/golang/protobuf/ptypes/duration"
	"github.com/golang/protobuf/ptypes/timestamp"
	"github.com/google/uuid"
)

// Node holds the attributes shared by every stored entity. Types embedding it
// inherit its fields.
type Node struct {
	ID        uuid.UUID `graphql:"id,nonnull"`
	CreatedAt time.Time `graphql:",nonnull"`
}

// Role is the access level of a user.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleAuthor Role = "AUTHOR"
	RoleReader Role = "READER"
)

type User struct {
	Node
	Name  string `graphql:",nonnull"`
	Email string `graphql:"email" description:"Contact address, only visible to admins in a real deployment."`
	Role  Role   `graphql:",nonnull"`

	store *Store
}

// Posts returns the posts written by the user, newest first.
func (u *User) Posts() []*Post {
	return u.store.postsBy(u.ID)
}

type Post struct {
	Node
	Title       string               `graphql:",nonnull"`
	Body        string               `graphql:"body" description:"Markdown source of the post."`
	Tags        []string             `graphql:"tags"`
	PublishedAt *timestamp.Timestamp `graphql:"publishedAt"`
	AuthorID    uuid.UUID

	store *Store
}

func (p *Post) Author() (*User, error) {
	return p.store.User(p.AuthorID)
}

// Comments returns up to first comments in the order they were written.
func (p *Post) Comments(first int) []*Comment {
	comments := p.store.commentsOn(p.ID)
	if first >= 0 && first < len(comments) {
		comments = comments[:first]
	}
	return comments
}

// Excerpt returns the first length runes of the body.
func (p *Post) Excerpt(length int) string {
	runes := []rune(p.Body)
	if length < 0 || length >= len(runes) {
		return p.Body
	}
	return strings.TrimSpace(string(runes[:length])) + "…"
}

const wordsPerMinute = 200

// ReadingTime estimates how long reading the body takes.
func (p *Post) ReadingTime() *duration.Duration {
	words := len(strings.Fields(p.Body))
	return ptypes.DurationProto(time.Duration(words) * time.Minute / wordsPerMinute)
}

type Comment struct {
	Node
	Body     string `graphql:",nonnull"`
	PostID   uuid.UUID
	AuthorID uuid.UUID

	store *Store
}

func (c *Comment) Author() (*User, error) {
	return c.store.User(c.AuthorID)
}

func (c *Comment) Post() (*Post, error) {
	return c.store.Post(c.PostID)
}

// PostFilter narrows the posts listed by Query.Posts.
type PostFilter struct {
	Tag       string     `graphql:"tag"`
	AuthorID  *uuid.UUID `graphql:"authorId"`
	Published *bool      `graphql:"published"`
}

func (f *PostFilter) match(p *Post) bool {
	if f == nil {
		return true
	}
	if f.Tag != "" && !hasTag(p.Tags, f.Tag) {
		return false
	}
	if f.AuthorID != nil && *f.AuthorID != p.AuthorID {
		return false
	}
	if f.Published != nil && *f.Published != (p.PublishedAt != nil) {
		return false
	}
	return true
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// NewPost is the input of Mutation.CreatePost.
type NewPost struct {
	AuthorID uuid.UUID `graphql:"authorId,nonnull"`
	Title    string    `graphql:",nonnull"`
	Body     string    `graphql:"body"`
	Tags     []string  `graphql:"tags"`
}

// Query is the query root.
type Query struct {
	store *Store
}

func (q *Query) User(id uuid.UUID) (*User, error) {
	return q.store.User(id)
}

// Users lists the users with the given role, or all of them.
func (q *Query) Users(role *Role) []*User {
	return q.store.users(role)
}

func (q *Query) Post(id uuid.UUID) (*Post, error) {
	return q.store.Post(id)
}

func (q *Query) Posts(filter *PostFilter) []*Post {
	return q.store.posts(filter)
}

// Mutation is the mutation root.
type Mutation struct {
	store *Store
}

func (m *Mutation) CreatePost(ctx context.Context, input NewPost) (*Post, error) {
	return m.store.CreatePost(ctx, input)
}

func (m *Mutation) Publish(ctx context.Context, id uuid.UUID) (*Post, error) {
	return m.store.Publish(ctx, id)
}

func (m *Mutation) AddComment(ctx context.Context, postID, authorID uuid.UUID, body string) (*Comment, error) {
	return m.store.AddComment(ctx, postID, authorID, body)
}
