package queries

import (
	"context"
	"database/sql"
)

const selectPost = `SELECT p.id, p.title, p.content, p.status, p.published,
	a.id, a.username, a.display_name, a.url
FROM posts p
JOIN authors a ON a.id = p.author_id
`

func scanPost(row interface{ Scan(...any) error }) (PostRow, error) {
	var i PostRow
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Content,
		&i.Status,
		&i.Published,
		&i.AuthorID,
		&i.AuthorUsername,
		&i.AuthorDisplayName,
		&i.AuthorUrl,
	)
	return i, err
}

const getPost = selectPost + `WHERE p.id = ?`

func (q *Queries) GetPost(ctx context.Context, id int64) (PostRow, error) {
	row := q.db.QueryRowContext(ctx, getPost, id)
	return scanPost(row)
}

const listPosts = selectPost + `ORDER BY p.created DESC, p.id DESC`

func (q *Queries) ListPosts(ctx context.Context) ([]PostRow, error) {
	rows, err := q.db.QueryContext(ctx, listPosts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PostRow
	for rows.Next() {
		i, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertPost = `INSERT INTO posts (author_id, title, content, status, created)
VALUES (?, ?, ?, 'draft', ?)
RETURNING id`

type InsertPostParams struct {
	AuthorID int64
	Title    string
	Content  string
	Created  int64
}

func (q *Queries) InsertPost(ctx context.Context, arg InsertPostParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, insertPost,
		arg.AuthorID,
		arg.Title,
		arg.Content,
		arg.Created,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getPostStatus = `SELECT status FROM posts WHERE id = ?`

func (q *Queries) GetPostStatus(ctx context.Context, id int64) (string, error) {
	row := q.db.QueryRowContext(ctx, getPostStatus, id)
	var status string
	err := row.Scan(&status)
	return status, err
}

const publishPost = `UPDATE posts
SET status = 'publish', published = COALESCE(published, ?)
WHERE id = ?`

type PublishPostParams struct {
	Published sql.NullInt64
	ID        int64
}

func (q *Queries) PublishPost(ctx context.Context, arg PublishPostParams) error {
	_, err := q.db.ExecContext(ctx, publishPost, arg.Published, arg.ID)
	return err
}

const updatePost = `UPDATE posts SET title = ?, content = ? WHERE id = ?`

type UpdatePostParams struct {
	Title   string
	Content string
	ID      int64
}

func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updatePost, arg.Title, arg.Content, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
