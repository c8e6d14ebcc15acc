package conversions

import (
	"fmt"
	"net/url"

	"github.com/sidereusnuntius/postdiaspora/internal/domain"
)

const (
	VerbPost = "post"
	// DiasporaObjectType tags the target of the activity as a Diaspora pod.
	DiasporaObjectType = "diaspora"
)

// Activity is the ActivityStreams 1.0 JSON document accepted by Diaspora's activity_streams/notes endpoint.
type Activity struct {
	// Published is a Unix timestamp.
	Published int64  `json:"published"`
	Verb      string `json:"verb"`
	Actor     Object `json:"actor"`
	Object    Object `json:"object"`
	Target    Object `json:"target"`
}

type Object struct {
	ObjectType  string `json:"objectType,omitempty"`
	URL         string `json:"url,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Content     string `json:"content,omitempty"`
}

// PostToActivity describes the publication of post by its author, aimed at the pod whose address is target.
func PostToActivity(post domain.Post, permalink, target *url.URL) Activity {
	actor := Object{
		DisplayName: post.Author.DisplayName,
	}
	if post.Author.URL != nil {
		actor.URL = post.Author.URL.String()
	}

	return Activity{
		Published: post.Published.Unix(),
		Verb:      VerbPost,
		Actor:     actor,
		Object: Object{
			URL:     permalink.String(),
			Content: fmt.Sprintf("%s - %s", post.Title, permalink),
		},
		Target: Object{
			ObjectType: DiasporaObjectType,
			URL:        target.String(),
		},
	}
}
