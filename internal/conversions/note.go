package conversions

import (
	"net/url"

	"code.superseriousbusiness.org/activity/streams"
	"code.superseriousbusiness.org/activity/streams/vocab"
	"github.com/sidereusnuntius/postdiaspora/internal/domain"
)

// PostToNote is the ActivityStreams 2.0 representation of a published post, served to clients asking for
// application/activity+json.
func PostToNote(post domain.Post, permalink, authorIRI *url.URL) vocab.ActivityStreamsNote {
	n := streams.NewActivityStreamsNote()

	id := streams.NewJSONLDIdProperty()
	id.SetIRI(permalink)
	n.SetJSONLDId(id)

	if post.Title != "" {
		name := streams.NewActivityStreamsNameProperty()
		name.AppendXMLSchemaString(post.Title)
		n.SetActivityStreamsName(name)
	}

	content := streams.NewActivityStreamsContentProperty()
	content.AppendXMLSchemaString(post.Content)
	n.SetActivityStreamsContent(content)

	u := streams.NewActivityStreamsUrlProperty()
	u.AppendIRI(permalink)
	n.SetActivityStreamsUrl(u)

	if authorIRI != nil {
		attributedTo := streams.NewActivityStreamsAttributedToProperty()
		attributedTo.AppendIRI(authorIRI)
		n.SetActivityStreamsAttributedTo(attributedTo)
	}

	if !post.Published.IsZero() {
		published := streams.NewActivityStreamsPublishedProperty()
		published.Set(post.Published)
		n.SetActivityStreamsPublished(published)
	}

	return n
}
