package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"code.superseriousbusiness.org/activity/streams"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/postdiaspora/internal/db"
	"github.com/sidereusnuntius/postdiaspora/internal/domain"
	"github.com/sidereusnuntius/postdiaspora/templates"
)

const ActivityContentType = "application/activity+json"

func wantsActivity(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/ld+json") || strings.Contains(accept, ActivityContentType)
}

// Index lists the published posts.
func Index(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := handler.service.ListPosts(r.Context())
		if err != nil {
			handler.fail(w, r, err)
			return
		}

		var public []domain.Post
		for _, p := range posts {
			if p.IsPublished() {
				public = append(public, p)
			}
		}
		handler.render(w, r, handler.Config.Name, templates.Public, templates.PostIndex(public))
	}
}

// AuthorPage lists the published posts of an author. Its address is the actor url of the notifications.
func AuthorPage(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		author, err := handler.service.GetAuthor(ctx, chi.URLParam(r, "username"))
		if err != nil {
			handler.fail(w, r, err)
			return
		}

		posts, err := handler.service.ListPosts(ctx)
		if err != nil {
			handler.fail(w, r, err)
			return
		}

		var public []domain.Post
		for _, p := range posts {
			if p.IsPublished() && p.Author.ID == author.ID {
				public = append(public, p)
			}
		}
		handler.render(w, r, author.DisplayName, templates.Public, templates.PostIndex(public))
	}
}

// PublicPost serves a published post, as HTML or as an ActivityStreams Note depending on the Accept header.
func PublicPost(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := GetID(r)
		if err != nil {
			handler.fail(w, r, err)
			return
		}

		if wantsActivity(r) {
			note, err := handler.service.PublicNote(ctx, id)
			if err != nil {
				handler.fail(w, r, err)
				return
			}
			data, err := streams.Serialize(note)
			if err != nil {
				handler.fail(w, r, err)
				return
			}

			w.Header().Set("Content-Type", ActivityContentType)
			if err = json.NewEncoder(w).Encode(data); err != nil {
				log.Error().Err(err).Int64("post", id).Msg("failed to write note")
			}
			return
		}

		post, err := handler.service.GetPost(ctx, id)
		if err == nil && !post.IsPublished() {
			err = db.ErrNotFound
		}
		if err != nil {
			handler.fail(w, r, err)
			return
		}
		handler.render(w, r, post.Title, templates.Public, templates.PostView(post))
	}
}
