package web

import (
	"net/http"

	"github.com/alexedwards/scs"
	"github.com/sidereusnuntius/postdiaspora/internal/config"
	"github.com/sidereusnuntius/postdiaspora/internal/service"
)

const (
	LoginRoute    = "/login"
	LogoutRoute   = "/logout"
	PostsPath     = "/admin/posts"
	SettingsPath  = "/admin/settings"
	PublicPath    = "/p"
	AuthorPath    = "/author"
	MetricsRoute  = "/metrics"
	MaxFormMemory = 64 * 1024
)

type Handler struct {
	Config         *config.Configuration
	service        service.Service
	SessionManager *scs.Manager
	// Metrics serves the Prometheus metrics. Nil disables the route.
	Metrics http.Handler
}

func New(config *config.Configuration, service service.Service, manager *scs.Manager, metrics http.Handler) Handler {
	return Handler{
		Config:         config,
		service:        service,
		SessionManager: manager,
		Metrics:        metrics,
	}
}
