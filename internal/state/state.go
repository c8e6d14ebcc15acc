package state

import (
	"github.com/sidereusnuntius/postdiaspora/internal/cache"
	"github.com/sidereusnuntius/postdiaspora/internal/client"
	"github.com/sidereusnuntius/postdiaspora/internal/config"
	"github.com/sidereusnuntius/postdiaspora/internal/db"
	"github.com/sidereusnuntius/postdiaspora/internal/metrics"
)

// State carries the long lived dependencies shared by the service.
type State struct {
	Config  config.Configuration
	DB      db.DB
	Cache   cache.Ephemeral
	Client  *client.HttpClient
	Metrics *metrics.Metrics
}
