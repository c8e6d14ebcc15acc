package domain

import "net/url"

// Author is the writer of a post, as shown in the actor of outgoing activities.
type Author struct {
	ID          int64
	Username    string
	DisplayName string
	// URL is the author's profile page. It may be nil when the author never set one.
	URL *url.URL
}

type Account struct {
	Username string
	Admin    bool
}
