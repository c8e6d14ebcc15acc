package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/postdiaspora/internal/db"
	"github.com/sidereusnuntius/postdiaspora/internal/service"
	"github.com/sidereusnuntius/postdiaspora/templates"
)

func (h *Handler) render(w http.ResponseWriter, r *http.Request, title string, place templates.Place, child templ.Component) {
	s, ok := GetSession(r.Context())
	err := templates.Layout(templates.PageData{
		BlogName:      h.Config.Name,
		Authenticated: ok,
		Username:      s.Username,
		PageTitle:     title,
		Place:         place,
		Child:         child,
	}).Render(r.Context(), w)
	if err != nil {
		log.Error().Err(err).Str("url", r.URL.String()).Msg("failed to render page")
	}
}

// fail writes the error page matching err.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, message := http.StatusInternalServerError, "Internal error."
	switch {
	case errors.Is(err, db.ErrNotFound):
		code, message = http.StatusNotFound, "Not found."
	case errors.Is(err, service.ErrInvalidInput):
		code, message = http.StatusBadRequest, err.Error()
	default:
		log.Error().Err(err).Str("url", r.URL.String()).Msg("request failed")
	}

	w.WriteHeader(code)
	h.render(w, r, http.StatusText(code), templates.Public, templates.ErrorPage(message))
}

// GetID parses the id route parameter.
func GetID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, db.ErrNotFound
	}
	return id, nil
}

// GetCode parses the message query parameter; zero when absent or malformed.
func GetCode(r *http.Request) int {
	code, err := strconv.Atoi(r.URL.Query().Get("message"))
	if err != nil {
		return 0
	}
	return code
}
