package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/postdiaspora/internal/service"
	"github.com/sidereusnuntius/postdiaspora/templates"
)

const SessionKey = "user"

type Session struct {
	Username string
	Admin    bool
}

type key struct{}

func GetSession(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(key{}).(Session)
	return s, ok
}

// AuthenticatedMiddleware sends visitors without a session to the login page.
func AuthenticatedMiddleware(handler *Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, ok := GetSession(r.Context()); ok && s.Admin {
				next.ServeHTTP(w, r)
				return
			}
			http.Redirect(w, r, LoginRoute, http.StatusSeeOther)
		})
	}
}

func Logout(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := handler.SessionManager.Load(r)
		if err := s.Destroy(w); err != nil {
			log.Error().Err(err).Msg("failed to destroy session")
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func SessionMiddleware(handler *Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			zero := Session{}
			session := handler.SessionManager.Load(r)
			var s Session
			err := session.GetObject(SessionKey, &s)
			if s != zero && err == nil {
				ctx := r.Context()
				ctx = context.WithValue(ctx, key{}, s)
				r = r.WithContext(ctx)
			}

			h.ServeHTTP(w, r)
		})
	}
}

func Login(handler *Handler) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		session := handler.SessionManager.Load(r)
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			renderLogin(handler, w, r, err)
			return
		}

		user := r.Form.Get("user")
		password := r.Form.Get("password")
		a, authenticated, err := handler.service.AuthenticateAdmin(ctx, user, password)
		if err != nil {
			log.Debug().Err(err).Msg("rejected login")
			w.WriteHeader(http.StatusBadRequest)
			if !errors.Is(err, service.ErrInvalidInput) {
				err = errors.New("unable to log in")
			}
			renderLogin(handler, w, r, err)
			return
		}

		if !authenticated {
			w.WriteHeader(http.StatusUnauthorized)
			renderLogin(handler, w, r, errors.New("wrong username or password"))
			return
		}

		err = session.PutObject(w, SessionKey, Session{
			Username: a.Username,
			Admin:    a.Admin,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to create session")
			w.WriteHeader(http.StatusInternalServerError)
			renderLogin(handler, w, r, errors.New("failed to create and load session"))
			return
		}
		http.Redirect(w, r, PostsPath, http.StatusSeeOther)
	})
}

func GetLogin(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSession(r.Context()); ok {
			http.Redirect(w, r, PostsPath, http.StatusSeeOther)
			return
		}
		renderLogin(handler, w, r, nil)
	}
}

func renderLogin(handler *Handler, w http.ResponseWriter, r *http.Request, err error) {
	handler.render(w, r, "Log in", templates.Auth, templates.Login(LoginRoute, err))
}
