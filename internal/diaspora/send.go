package diaspora

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/postdiaspora/internal/client"
	"github.com/sidereusnuntius/postdiaspora/internal/conversions"
	"github.com/sidereusnuntius/postdiaspora/internal/metrics"
)

// Send notifies the pod about the post with the given id and returns a human readable status, which is also
// kept in the cache for ConsumeStatus. Exactly one request is attempted; failures are reported in the status.
func (s *Sender) Send(ctx context.Context, postId int64) string {
	status := s.send(ctx, postId)

	if err := s.cache.Set(ctx, s.StatusKey(postId), status, s.cfg.StatusTTL); err != nil {
		log.Error().Err(err).Int64("post", postId).Msg("failed to store notification status")
	}
	return status
}

func (s *Sender) send(ctx context.Context, postId int64) string {
	if s.username == "" || s.domain == "" {
		log.Warn().Str("id", s.id).Msg("diaspora id is not in the form username@domain")
		s.cfg.Metrics.Observe(metrics.ResultMisconfigured)
		return StatusMissingID
	}

	post, err := s.posts.GetPost(ctx, postId)
	if err != nil {
		log.Error().Err(err).Int64("post", postId).Msg("unable to load post")
		s.cfg.Metrics.Observe(metrics.ResultMisconfigured)
		return fmt.Sprintf(StatusNoPost, postId)
	}

	activity := conversions.PostToActivity(post, post.Permalink(s.cfg.BlogURL), s.Host())
	body, err := json.Marshal(activity)
	if err != nil {
		s.cfg.Metrics.Observe(metrics.ResultMisconfigured)
		return StatusRequestError + err.Error()
	}

	target := s.NotesURL()
	start := time.Now()
	code, err := s.client.PostJSON(ctx, target, body, s.identifier, s.secret)
	s.cfg.Metrics.ObserveDuration(time.Since(start).Seconds())

	event := log.Info().Int64("post", postId).Str("to", target)
	switch {
	case errors.Is(err, client.ErrRequest):
		s.cfg.Metrics.Observe(metrics.ResultTransportError)
		event.Err(err).Msg("notification request could not be built")
		return StatusRequestError + err.Error()
	case err != nil:
		s.cfg.Metrics.Observe(metrics.ResultTransportError)
		event.Err(err).Msg("notification failed")
		return StatusTransportError + err.Error()
	case code == http.StatusOK:
		s.cfg.Metrics.Observe(metrics.ResultSent)
		event.Msg("notification sent")
		return StatusSent
	default:
		s.cfg.Metrics.Observe(metrics.ResultRejected)
		event.Int("code", code).Msg("notification rejected")
		return StatusRejected + strconv.Itoa(code)
	}
}

// ConsumeStatus appends the pending notification status of a post to the page messages, when the page shows
// one of the publication messages. The status is removed from the cache, so it is displayed once. messages is
// not modified; a copy is returned.
func (s *Sender) ConsumeStatus(ctx context.Context, postId int64, code int, messages map[int]string) map[int]string {
	if !displaysStatus(code) {
		return messages
	}

	status, ok, err := s.cache.Take(ctx, s.StatusKey(postId))
	if err != nil {
		log.Error().Err(err).Int64("post", postId).Msg("failed to read notification status")
		return messages
	}
	if !ok || status == "" {
		return messages
	}

	result := maps.Clone(messages)
	for _, c := range []int{MessagePublishedUpdate, MessageUpdated, MessagePublished} {
		if m, exists := result[c]; exists {
			result[c] = m + ". " + status
		}
	}
	return result
}

func displaysStatus(code int) bool {
	switch code {
	case MessagePublishedUpdate, MessageUpdated, MessagePublished:
		return true
	}
	return false
}
