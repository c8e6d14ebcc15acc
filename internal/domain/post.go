package domain

import (
	"net/url"
	"strconv"
	"time"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "publish"
)

type Post struct {
	ID        int64
	Title     string
	Content   string
	Status    string
	Published time.Time
	Author    Author
}

func (p Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// Permalink is the public address of the post under the blog's base url.
func (p Post) Permalink(base *url.URL) *url.URL {
	return base.JoinPath("p", strconv.FormatInt(p.ID, 10))
}
