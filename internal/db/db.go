package db

import (
	"context"
	"errors"
	"time"

	"github.com/sidereusnuntius/postdiaspora/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal database error")
)

//go:generate mockgen -source db.go -destination ../mocks/mock_db.go -package mock_db

type DB interface {
	Posts
	Options
	GetAuthorByUsername(ctx context.Context, username string) (domain.Author, error)
}

type Posts interface {
	GetPost(ctx context.Context, id int64) (domain.Post, error)
	// ListPosts returns every post, newest first.
	ListPosts(ctx context.Context) ([]domain.Post, error)
	InsertPost(ctx context.Context, authorId int64, title, content string, created time.Time) (int64, error)
	// PublishPost sets the post status to published. The publication time is only recorded on the first call;
	// alreadyPublished tells whether the post was published before this call.
	PublishPost(ctx context.Context, id int64, at time.Time) (alreadyPublished bool, err error)
	UpdatePost(ctx context.Context, id int64, title, content string) error
}

// Options holds named JSON documents, each one a mapping of field names to values.
type Options interface {
	GetOption(ctx context.Context, name string) (map[string]any, error)
	PutOption(ctx context.Context, name string, value map[string]any) error
}
