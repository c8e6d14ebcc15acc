package queries

import "context"

const getOption = `SELECT value FROM options WHERE name = ?`

func (q *Queries) GetOption(ctx context.Context, name string) (string, error) {
	row := q.db.QueryRowContext(ctx, getOption, name)
	var value string
	err := row.Scan(&value)
	return value, err
}

const upsertOption = `INSERT INTO options (name, value) VALUES (?, ?)
ON CONFLICT (name) DO UPDATE SET value = excluded.value`

func (q *Queries) UpsertOption(ctx context.Context, name, value string) error {
	_, err := q.db.ExecContext(ctx, upsertOption, name, value)
	return err
}
