package core

import (
	"context"
	"fmt"
	"strings"

	"code.superseriousbusiness.org/activity/streams/vocab"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/postdiaspora/internal/conversions"
	"github.com/sidereusnuntius/postdiaspora/internal/db"
	"github.com/sidereusnuntius/postdiaspora/internal/domain"
	"github.com/sidereusnuntius/postdiaspora/internal/service"
	"github.com/sidereusnuntius/postdiaspora/internal/validate"
)

// Messages are the texts of the post editing page message codes.
var Messages = map[int]string{
	service.MessagePublishedUpdate: "Post updated",
	service.MessageUpdated:         "Post updated",
	service.MessagePublished:       "Post published",
	service.MessageDraftUpdated:    "Post draft updated",
}

func (s *AppService) CreatePost(ctx context.Context, username, title, content string) (int64, error) {
	title = strings.TrimSpace(title)
	if err := validate.PostForm(title, content); err != nil {
		return 0, fmt.Errorf("%w: %s", service.ErrInvalidInput, err)
	}

	author, err := s.DB.GetAuthorByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	return s.DB.InsertPost(ctx, author.ID, title, content, s.now())
}

func (s *AppService) UpdatePost(ctx context.Context, id int64, title, content string) (int, error) {
	title = strings.TrimSpace(title)
	if err := validate.PostForm(title, content); err != nil {
		return 0, fmt.Errorf("%w: %s", service.ErrInvalidInput, err)
	}

	post, err := s.DB.GetPost(ctx, id)
	if err != nil {
		return 0, err
	}
	if err = s.DB.UpdatePost(ctx, id, title, content); err != nil {
		return 0, err
	}

	if post.IsPublished() {
		return service.MessagePublishedUpdate, nil
	}
	return service.MessageDraftUpdated, nil
}

func (s *AppService) GetPost(ctx context.Context, id int64) (domain.Post, error) {
	return s.DB.GetPost(ctx, id)
}

func (s *AppService) GetAuthor(ctx context.Context, username string) (domain.Author, error) {
	return s.DB.GetAuthorByUsername(ctx, strings.ToLower(username))
}

func (s *AppService) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return s.DB.ListPosts(ctx)
}

func (s *AppService) PublishPost(ctx context.Context, id int64) (int, error) {
	already, err := s.DB.PublishPost(ctx, id, s.now())
	if err != nil {
		return 0, err
	}

	code := service.MessagePublished
	if already {
		code = service.MessageUpdated
	}

	if err = s.notify(ctx, id); err != nil {
		// The post is published regardless; the failure is only logged.
		log.Error().Err(err).Int64("post", id).Msg("unable to notify diaspora")
	}
	return code, nil
}

func (s *AppService) PostMessages(ctx context.Context, id int64, code int) map[int]string {
	return s.sender().ConsumeStatus(ctx, id, code, Messages)
}

func (s *AppService) PublicNote(ctx context.Context, id int64) (vocab.ActivityStreamsNote, error) {
	post, err := s.DB.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return nil, fmt.Errorf("%w: %w", db.ErrNotFound, service.ErrNotPublished)
	}

	authorIRI := post.Author.URL
	if authorIRI == nil {
		authorIRI = s.Config.Url.JoinPath("author", post.Author.Username)
	}
	return conversions.PostToNote(post, post.Permalink(s.Config.Url), authorIRI), nil
}
