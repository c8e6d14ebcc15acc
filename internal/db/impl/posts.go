package impl

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/sidereusnuntius/postdiaspora/internal/db"
	"github.com/sidereusnuntius/postdiaspora/internal/db/impl/queries"
	"github.com/sidereusnuntius/postdiaspora/internal/domain"
)

func (d *dbImpl) GetPost(ctx context.Context, id int64) (domain.Post, error) {
	row, err := d.queries.GetPost(ctx, id)
	if err != nil {
		return domain.Post{}, d.HandleError(err)
	}
	return toPost(row)
}

func (d *dbImpl) ListPosts(ctx context.Context) ([]domain.Post, error) {
	rows, err := d.queries.ListPosts(ctx)
	if err != nil {
		return nil, d.HandleError(err)
	}

	posts := make([]domain.Post, 0, len(rows))
	for _, r := range rows {
		p, err := toPost(r)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (d *dbImpl) InsertPost(ctx context.Context, authorId int64, title, content string, created time.Time) (int64, error) {
	id, err := d.queries.InsertPost(ctx, queries.InsertPostParams{
		AuthorID: authorId,
		Title:    title,
		Content:  content,
		Created:  created.Unix(),
	})
	return id, d.HandleError(err)
}

func (d *dbImpl) PublishPost(ctx context.Context, id int64, at time.Time) (alreadyPublished bool, err error) {
	err = d.WithTx(func(tx *queries.Queries) error {
		status, err := tx.GetPostStatus(ctx, id)
		if err != nil {
			return d.HandleError(err)
		}
		alreadyPublished = status == domain.StatusPublished

		return tx.PublishPost(ctx, queries.PublishPostParams{
			Published: sql.NullInt64{Int64: at.Unix(), Valid: true},
			ID:        id,
		})
	})
	return
}

func (d *dbImpl) UpdatePost(ctx context.Context, id int64, title, content string) error {
	n, err := d.queries.UpdatePost(ctx, queries.UpdatePostParams{
		Title:   title,
		Content: content,
		ID:      id,
	})
	if err != nil {
		return d.HandleError(err)
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (d *dbImpl) GetAuthorByUsername(ctx context.Context, username string) (domain.Author, error) {
	a, err := d.queries.GetAuthorByUsername(ctx, username)
	if err != nil {
		return domain.Author{}, d.HandleError(err)
	}
	return toAuthor(a.ID, a.Username, a.DisplayName, a.Url)
}

func toPost(r queries.PostRow) (domain.Post, error) {
	author, err := toAuthor(r.AuthorID, r.AuthorUsername, r.AuthorDisplayName, r.AuthorUrl)
	if err != nil {
		return domain.Post{}, err
	}

	p := domain.Post{
		ID:      r.ID,
		Title:   r.Title,
		Content: r.Content,
		Status:  r.Status,
		Author:  author,
	}
	if r.Published.Valid {
		p.Published = time.Unix(r.Published.Int64, 0).UTC()
	}
	return p, nil
}

func toAuthor(id int64, username, displayName string, u sql.NullString) (domain.Author, error) {
	a := domain.Author{
		ID:          id,
		Username:    username,
		DisplayName: displayName,
	}
	if u.Valid && u.String != "" {
		parsed, err := url.Parse(u.String)
		if err != nil {
			return domain.Author{}, fmt.Errorf("unable to parse url of author %d: %w", id, err)
		}
		a.URL = parsed
	}
	return a, nil
}
