// Package diaspora notifies a Diaspora pod when a post is published, and keeps the outcome around so that the
// next page displaying the post can show it.
package diaspora

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sidereusnuntius/postdiaspora/internal/cache"
	"github.com/sidereusnuntius/postdiaspora/internal/domain"
	"github.com/sidereusnuntius/postdiaspora/internal/metrics"
)

const (
	HTTP      = "http"
	HTTPS     = "https"
	PortHTTP  = 80
	PortHTTPS = 443

	NotesPath = "/activity_streams/notes.json"
)

// Message codes of the post editing page after a save.
const (
	MessagePublishedUpdate = 1
	MessageUpdated         = 4
	MessagePublished       = 6
)

const (
	StatusSent           = "Posted to Diaspora successfully."
	StatusMissingID      = "Error posting to Diaspora. Please use your full Diaspora ID in the form of username@server_name.com"
	StatusRequestError   = "Error creating the HTTP request: "
	StatusTransportError = "Error posting to Diaspora. Error Code: "
	StatusRejected       = "Error posting to Diaspora. Retry Code: "
	StatusNoPost         = "Error posting to Diaspora. Post %d could not be loaded."
)

var ErrUnsupportedProtocol = errors.New("protocol must be http or https")

type PostSource interface {
	GetPost(ctx context.Context, id int64) (domain.Post, error)
}

type Poster interface {
	PostJSON(ctx context.Context, url string, body []byte, user, password string) (int, error)
}

type Config struct {
	// BlogURL is the base of the permalinks sent in the activity.
	BlogURL *url.URL
	// StatusPrefix and StatusTTL control the cache entry holding the outcome of the last notification of a post.
	StatusPrefix string
	StatusTTL    time.Duration
	Metrics      *metrics.Metrics
}

// Sender posts notifications on behalf of one Diaspora account. It is configured with the setters before
// calling Send, and is not meant to be shared between goroutines.
type Sender struct {
	posts  PostSource
	cache  cache.Ephemeral
	client Poster
	cfg    Config

	id         string
	username   string
	domain     string
	identifier string
	secret     string
	protocol   string
	port       int
}

func New(posts PostSource, c cache.Ephemeral, client Poster, cfg Config) *Sender {
	return &Sender{
		posts:    posts,
		cache:    c,
		client:   client,
		cfg:      cfg,
		protocol: HTTPS,
	}
}

// SetAccount takes a full Diaspora id, username@server_domain. The id is split on the first @ only; without
// one, username and domain are left empty and Send reports the error.
func (s *Sender) SetAccount(fullId string) {
	s.id = fullId
	s.username, s.domain = "", ""

	username, domain, found := strings.Cut(fullId, "@")
	if found {
		s.username = username
		s.domain = domain
	}
}

// SetCredentials sets the OAuth2 client identifier and secret, sent as HTTP Basic credentials.
func (s *Sender) SetCredentials(identifier, secret string) {
	s.identifier = identifier
	s.secret = secret
}

func (s *Sender) SetPort(port int) {
	s.port = port
}

// SetProtocol also sets the port to the protocol's default, unless a port was already set.
func (s *Sender) SetProtocol(protocol string) error {
	var defaultPort int
	switch protocol {
	case HTTP:
		defaultPort = PortHTTP
	case HTTPS:
		defaultPort = PortHTTPS
	default:
		return ErrUnsupportedProtocol
	}

	s.protocol = protocol
	if s.port == 0 {
		s.port = defaultPort
	}
	return nil
}

func (s *Sender) Username() string { return s.username }
func (s *Sender) Domain() string   { return s.domain }
func (s *Sender) Protocol() string { return s.protocol }
func (s *Sender) Port() int        { return s.port }

// Host is the address of the pod, without port.
func (s *Sender) Host() *url.URL {
	return &url.URL{Scheme: s.protocol, Host: s.domain}
}

// NotesURL is the endpoint receiving the activities. The port is omitted when it is one of the well known ones.
func (s *Sender) NotesURL() string {
	host := s.domain
	if s.port != 0 && s.port != PortHTTP && s.port != PortHTTPS {
		host += ":" + strconv.Itoa(s.port)
	}
	u := url.URL{Scheme: s.protocol, Host: host, Path: NotesPath}
	return u.String()
}

// StatusKey is the cache key of the notification status of a post.
func (s *Sender) StatusKey(postId int64) string {
	return s.cfg.StatusPrefix + "_diaspora_status_" + strconv.FormatInt(postId, 10)
}
