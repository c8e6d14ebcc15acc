package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sidereusnuntius/postdiaspora/internal/domain"
	"github.com/sidereusnuntius/postdiaspora/templates"
)

func postURL(id int64, code int) string {
	u := PostsPath + "/" + strconv.FormatInt(id, 10)
	if code != 0 {
		u += "?message=" + strconv.Itoa(code)
	}
	return u
}

func ListPosts(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := handler.service.ListPosts(r.Context())
		if err != nil {
			handler.fail(w, r, err)
			return
		}
		handler.render(w, r, "Posts", templates.Posts, templates.PostList(posts))
	}
}

func NewPost(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handler.render(w, r, "Add New Post", templates.Posts, templates.PostEditor(domain.Post{}, ""))
	}
}

func CreatePost(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(MaxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			http.Error(w, "malformed form", http.StatusBadRequest)
			return
		}

		s, _ := GetSession(r.Context())
		id, err := handler.service.CreatePost(r.Context(), s.Username, r.Form.Get("title"), r.Form.Get("content"))
		if err != nil {
			handler.fail(w, r, err)
			return
		}
		http.Redirect(w, r, postURL(id, 0), http.StatusSeeOther)
	}
}

// EditPost shows the editor of a post. The message query parameter selects the message shown above it, to
// which the pending Diaspora status of the post is appended.
func EditPost(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := GetID(r)
		if err != nil {
			handler.fail(w, r, err)
			return
		}

		post, err := handler.service.GetPost(ctx, id)
		if err != nil {
			handler.fail(w, r, err)
			return
		}

		var message string
		if code := GetCode(r); code != 0 {
			message = handler.service.PostMessages(ctx, id, code)[code]
		}
		handler.render(w, r, "Edit Post", templates.Posts, templates.PostEditor(post, message))
	}
}

func UpdatePost(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := GetID(r)
		if err != nil {
			handler.fail(w, r, err)
			return
		}
		if err = r.ParseMultipartForm(MaxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			http.Error(w, "malformed form", http.StatusBadRequest)
			return
		}

		code, err := handler.service.UpdatePost(r.Context(), id, r.Form.Get("title"), r.Form.Get("content"))
		if err != nil {
			handler.fail(w, r, err)
			return
		}
		http.Redirect(w, r, postURL(id, code), http.StatusSeeOther)
	}
}

func PublishPost(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := GetID(r)
		if err != nil {
			handler.fail(w, r, err)
			return
		}

		code, err := handler.service.PublishPost(r.Context(), id)
		if err != nil {
			handler.fail(w, r, err)
			return
		}
		http.Redirect(w, r, postURL(id, code), http.StatusSeeOther)
	}
}
