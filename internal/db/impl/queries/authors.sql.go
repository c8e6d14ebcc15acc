package queries

import (
	"context"
	"database/sql"
)

const getAuthorByUsername = `SELECT id, username, display_name, url FROM authors WHERE username = ?`

func (q *Queries) GetAuthorByUsername(ctx context.Context, username string) (Author, error) {
	row := q.db.QueryRowContext(ctx, getAuthorByUsername, username)
	var i Author
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.DisplayName,
		&i.Url,
	)
	return i, err
}

const insertAuthor = `INSERT INTO authors (username, display_name, url)
VALUES (?, ?, ?)
ON CONFLICT (username) DO NOTHING`

type InsertAuthorParams struct {
	Username    string
	DisplayName string
	Url         sql.NullString
}

func (q *Queries) InsertAuthor(ctx context.Context, arg InsertAuthorParams) error {
	_, err := q.db.ExecContext(ctx, insertAuthor, arg.Username, arg.DisplayName, arg.Url)
	return err
}
