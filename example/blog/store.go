package blog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang/protobuf/ptypes"
	"github.com/google/uuid"

	"github.com/koba789/gqldecorator/internal/logging"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// Store is an in-memory blog backend.
type Store struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*User
	allPosts []*Post
	comments []*Comment

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		byID: make(map[uuid.UUID]*User),
		now:  time.Now,
	}
}

func (s *Store) node() Node {
	return Node{ID: uuid.New(), CreatedAt: s.now().UTC()}
}

func (s *Store) AddUser(name, email string, role Role) *User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := &User{Node: s.node(), Name: name, Email: email, Role: role, store: s}
	s.byID[u.ID] = u
	return u
}

func (s *Store) User(id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return u, nil
}

func (s *Store) users(role *Role) []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*User
	for _, u := range s.byID {
		if role == nil || u.Role == *role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *Store) Post(id uuid.UUID) (*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.allPosts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("post %s: %w", id, ErrNotFound)
}

// posts returns the posts matching filter, newest first.
func (s *Store) posts(filter *PostFilter) []*Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Post
	for i := len(s.allPosts) - 1; i >= 0; i-- {
		if p := s.allPosts[i]; filter.match(p) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) postsBy(author uuid.UUID) []*Post {
	return s.posts(&PostFilter{AuthorID: &author})
}

func (s *Store) commentsOn(post uuid.UUID) []*Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Comment
	for _, c := range s.comments {
		if c.PostID == post {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) CreatePost(ctx context.Context, input NewPost) (*Post, error) {
	author, err := s.User(input.AuthorID)
	if err != nil {
		return nil, err
	}
	if author.Role == RoleReader {
		return nil, fmt.Errorf("user %s cannot write posts: %w", author.Name, ErrForbidden)
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.New("title must not be empty")
	}

	s.mu.Lock()
	p := &Post{
		Node:     s.node(),
		Title:    input.Title,
		Body:     input.Body,
		Tags:     input.Tags,
		AuthorID: author.ID,
		store:    s,
	}
	s.allPosts = append(s.allPosts, p)
	s.mu.Unlock()

	logging.Info().Stringer("post", p.ID).Str("author", author.Name).Msg("created post")
	return p, nil
}

func (s *Store) Publish(ctx context.Context, id uuid.UUID) (*Post, error) {
	p, err := s.Post(id)
	if err != nil {
		return nil, err
	}
	ts, err := ptypes.TimestampProto(s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if p.PublishedAt == nil {
		p.PublishedAt = ts
	}
	s.mu.Unlock()

	logging.Info().Stringer("post", p.ID).Msg("published post")
	return p, nil
}

func (s *Store) AddComment(ctx context.Context, postID, authorID uuid.UUID, body string) (*Comment, error) {
	p, err := s.Post(postID)
	if err != nil {
		return nil, err
	}
	if p.PublishedAt == nil {
		return nil, fmt.Errorf("post %s is not published: %w", p.ID, ErrForbidden)
	}
	if _, err := s.User(authorID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	c := &Comment{Node: s.node(), Body: body, PostID: p.ID, AuthorID: authorID, store: s}
	s.comments = append(s.comments, c)
	s.mu.Unlock()

	logging.Debug().Stringer("comment", c.ID).Stringer("post", p.ID).Msg("added comment")
	return c, nil
}

// Seed fills the store with a couple of users and posts.
func Seed(s *Store) {
	alice := s.AddUser("Alice", "alice@example.com", RoleAdmin)
	bob := s.AddUser("Bob", "bob@example.com", RoleAuthor)
	s.AddUser("Carol", "carol@example.com", RoleReader)

	ctx := context.Background()
	intro, _ := s.CreatePost(ctx, NewPost{
		AuthorID: alice.ID,
		Title:    "Hello, blog",
		Body:     "The first post of this blog, written to have something to query.",
		Tags:     []string{"meta"},
	})
	_, _ = s.Publish(ctx, intro.ID)
	_, _ = s.CreatePost(ctx, NewPost{
		AuthorID: bob.ID,
		Title:    "Drafts are private",
		Body:     "Unpublished posts do not accept comments.",
		Tags:     []string{"meta", "howto"},
	})
	_, _ = s.AddComment(ctx, intro.ID, bob.ID, "Welcome!")
}
