package service

import (
	"context"
	"errors"

	"code.superseriousbusiness.org/activity/streams/vocab"
	"github.com/sidereusnuntius/postdiaspora/internal/domain"
	"github.com/sidereusnuntius/postdiaspora/internal/options"
)

var (
	ErrInvalidInput = errors.New("invalid")
	ErrNotPublished = errors.New("post is not published")
)

// Message codes shown on the post editing page, named after the WordPress post messages.
const (
	MessagePublishedUpdate = 1
	MessageUpdated         = 4
	MessagePublished       = 6
	MessageDraftUpdated    = 10
)

// Settings field ids.
const (
	FieldDiasporaID = "diaspora_id"
	FieldIdentifier = "oauth2_identifier"
	FieldSecret     = "oauth2_secret"
	FieldProtocol   = "protocol"
	FieldPort       = "port"
	FieldNotify     = "notify"
)

type Service interface {
	// AuthenticateAdmin checks the administrator credentials. A wrong username or password gives
	// authenticated == false and a nil error; malformed input gives ErrInvalidInput.
	AuthenticateAdmin(ctx context.Context, user, password string) (a domain.Account, authenticated bool, err error)

	CreatePost(ctx context.Context, username, title, content string) (int64, error)
	// UpdatePost changes the title and content of a post and returns the message code to display.
	UpdatePost(ctx context.Context, id int64, title, content string) (code int, err error)
	GetPost(ctx context.Context, id int64) (domain.Post, error)
	GetAuthor(ctx context.Context, username string) (domain.Author, error)
	ListPosts(ctx context.Context) ([]domain.Post, error)
	// PublishPost publishes the post and, when enabled in the settings, notifies the configured Diaspora pod.
	// It returns MessagePublished for a first publication and MessageUpdated otherwise.
	PublishPost(ctx context.Context, id int64) (code int, err error)
	// PostMessages returns the messages of the post editing page, with the pending Diaspora status of the post
	// appended to the publication messages when code is one of them.
	PostMessages(ctx context.Context, id int64, code int) map[int]string
	// PublicNote returns the ActivityStreams representation of a published post.
	PublicNote(ctx context.Context, id int64) (vocab.ActivityStreamsNote, error)

	// Settings is the registry of the settings page fields, reading the stored values.
	Settings() *options.Registry
	// SaveSettings validates the submitted values, reporting errors to sink, and stores them even when some
	// are invalid. valid tells whether every field passed.
	SaveSettings(ctx context.Context, submitted options.Values, sink options.ErrorSink) (valid bool, err error)
}
