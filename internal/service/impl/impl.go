package core

import (
	"time"

	"github.com/sidereusnuntius/postdiaspora/internal/config"
	"github.com/sidereusnuntius/postdiaspora/internal/db"
	"github.com/sidereusnuntius/postdiaspora/internal/diaspora"
	"github.com/sidereusnuntius/postdiaspora/internal/options"
	"github.com/sidereusnuntius/postdiaspora/internal/service"
	"github.com/sidereusnuntius/postdiaspora/internal/state"
	"github.com/sidereusnuntius/postdiaspora/internal/validate"
)

const BcryptCost = 10

type AppService struct {
	Config   config.Configuration
	DB       db.DB
	Poster   diaspora.Poster
	state    state.State
	settings *options.Registry
	now      func() time.Time
}

func New(state *state.State) (service.Service, error) {
	s := &AppService{
		Config: state.Config,
		DB:     state.DB,
		state:  *state,
		now:    time.Now,
	}
	if state.Client != nil {
		s.Poster = state.Client
	}

	s.settings = options.New(
		state.Config.OptionsName,
		optionStore{db: state.DB, name: state.Config.OptionsName},
		options.FilterFunc(validate.Filter),
	)
	if err := registerSettings(s.settings); err != nil {
		return nil, err
	}
	return s, nil
}

// sender returns a Sender without account, enough to consume pending statuses.
func (s *AppService) sender() *diaspora.Sender {
	return diaspora.New(s.DB, s.state.Cache, s.Poster, diaspora.Config{
		BlogURL:      s.Config.Url,
		StatusPrefix: s.Config.StatusPrefix,
		StatusTTL:    s.Config.StatusTTL,
		Metrics:      s.state.Metrics,
	})
}
