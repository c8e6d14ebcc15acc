package queries

import "database/sql"

type Author struct {
	ID          int64
	Username    string
	DisplayName string
	Url         sql.NullString
}

type PostRow struct {
	ID                int64
	Title             string
	Content           string
	Status            string
	Published         sql.NullInt64
	AuthorID          int64
	AuthorUsername    string
	AuthorDisplayName string
	AuthorUrl         sql.NullString
}
