package web

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) Mount(r chi.Router) {
	authenticated := AuthenticatedMiddleware(h)
	r.Use(SessionMiddleware(h))

	r.Get("/", Index(h))
	r.Get(LoginRoute, GetLogin(h))
	r.Post(LoginRoute, Login(h))
	r.Get(LogoutRoute, Logout(h))

	r.Get(PublicPath+"/{id}", PublicPost(h))
	r.Get(AuthorPath+"/{username}", AuthorPage(h))

	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticated)

		r.Get("/settings", GetSettings(h))
		r.Post("/settings", PostSettings(h))

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", ListPosts(h))
			r.Post("/", CreatePost(h))
			r.Get("/new", NewPost(h))
			r.Get("/{id}", EditPost(h))
			r.Post("/{id}", UpdatePost(h))
			r.Post("/{id}/publish", PublishPost(h))
		})
	})

	if h.Metrics != nil {
		r.Handle(MetricsRoute, h.Metrics)
	}
}
