package wellknown

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/postdiaspora/internal/db"
	"github.com/sidereusnuntius/postdiaspora/internal/state"
)

const (
	JRDContentType = "application/jrd+json"
	RelProfilePage = "http://webfinger.net/rel/profile-page"
)

type WebfingerLink struct {
	Rel  string `json:"rel"`
	Type string `json:"type"`
	Href string `json:"href"`
}

type WebfingerResponse struct {
	Subject string          `json:"subject"`
	Aliases []string        `json:"aliases,omitempty"`
	Links   []WebfingerLink `json:"links"`
}

func Mount(state *state.State, r chi.Router) {
	r.Route("/.well-known", func(r chi.Router) {
		r.Get("/webfinger", WebfingerEndpoint(state))
	})
}

// WebfingerEndpoint resolves acct:username@host resources of the blog authors to their profile page, so that
// the actors of the notifications sent to Diaspora can be looked up.
func WebfingerEndpoint(state *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resource := r.URL.Query().Get("resource")
		account, found := strings.CutPrefix(resource, "acct:")
		if !found {
			http.Error(w, "resource must be an acct uri", http.StatusBadRequest)
			return
		}

		username, host, found := strings.Cut(account, "@")
		if !found || username == "" {
			http.Error(w, "failed to parse resource", http.StatusBadRequest)
			return
		}
		if !strings.EqualFold(host, state.Config.Url.Host) {
			http.Error(w, "", http.StatusNotFound)
			return
		}

		author, err := state.DB.GetAuthorByUsername(r.Context(), strings.ToLower(username))
		if err != nil {
			http.Error(w, "", handleErr(err))
			return
		}

		profile := state.Config.Url.JoinPath("author", author.Username).String()
		res := WebfingerResponse{
			Subject: resource,
			Links: []WebfingerLink{
				{Rel: RelProfilePage, Type: "text/html", Href: profile},
			},
		}
		if author.URL != nil && author.URL.String() != profile {
			res.Aliases = []string{author.URL.String()}
		}

		w.Header().Set("Content-Type", JRDContentType)
		encoder := json.NewEncoder(w)
		if err = encoder.Encode(res); err != nil {
			log.Error().Err(err).Msg("unable to marshal webfinger response")
		}
	}
}

func handleErr(err error) int {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	default:
		log.Error().Err(err).Msg("webfinger lookup failed")
		return http.StatusInternalServerError
	}
}
