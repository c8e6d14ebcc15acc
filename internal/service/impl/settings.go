package core

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/postdiaspora/internal/db"
	"github.com/sidereusnuntius/postdiaspora/internal/diaspora"
	"github.com/sidereusnuntius/postdiaspora/internal/options"
	"github.com/sidereusnuntius/postdiaspora/internal/service"
	"github.com/sidereusnuntius/postdiaspora/internal/validate"
)

const NotifyPosts = "post"

func registerSettings(r *options.Registry) error {
	fields := []struct {
		id string
		f  options.Field
	}{
		{service.FieldDiasporaID, options.Field{
			Label: "Diaspora ID",
			Name:  service.FieldDiasporaID,
			Rules: []options.Rule{
				options.Required(),
				options.Regex(`^[^@]+@[^@]+$`, "Use your full Diaspora ID in the form of username@server_name.com"),
			},
		}},
		{service.FieldIdentifier, options.Field{
			Label: "OAuth2 Identifier",
			Name:  service.FieldIdentifier,
			Rules: []options.Rule{options.Required()},
		}},
		{service.FieldSecret, options.Field{
			Label: "OAuth2 Secret",
			Name:  service.FieldSecret,
			Type:  options.TypePassword,
			Rules: []options.Rule{options.Required()},
		}},
		{service.FieldProtocol, options.Field{
			Label:   "Protocol",
			Name:    service.FieldProtocol,
			Type:    options.TypeSelect,
			Class:   "small-text",
			Default: diaspora.HTTPS,
			Choices: []options.Choice{
				{Value: diaspora.HTTP, Label: "HTTP"},
				{Value: diaspora.HTTPS, Label: "HTTPS"},
			},
		}},
		{service.FieldPort, options.Field{
			Label: "Port",
			Name:  service.FieldPort,
			Class: "small-text",
			Rules: []options.Rule{options.Filter(validate.KindInt, "The port must be a number.")},
		}},
		{service.FieldNotify, options.Field{
			Label:   "Notify Diaspora when publishing",
			Name:    service.FieldNotify,
			Type:    options.TypeCheckbox,
			Default: NotifyPosts,
			Choices: []options.Choice{
				{Value: NotifyPosts, Label: "Posts"},
				{Value: "page", Label: "Pages"},
			},
		}},
	}

	for _, field := range fields {
		if err := r.Register(field.id, field.f); err != nil {
			return err
		}
	}
	return nil
}

func (s *AppService) Settings() *options.Registry {
	return s.settings
}

func (s *AppService) SaveSettings(ctx context.Context, submitted options.Values, sink options.ErrorSink) (bool, error) {
	valid := s.settings.ValidateAll(ctx, submitted, sink)

	value := make(map[string]any, len(submitted))
	for k, v := range submitted {
		value[k] = v
	}
	return valid, s.DB.PutOption(ctx, s.Config.OptionsName, value)
}

// storedSettings returns the stored settings document, empty when it was never saved.
func (s *AppService) storedSettings(ctx context.Context) (options.Values, error) {
	value, err := s.DB.GetOption(ctx, s.Config.OptionsName)
	if errors.Is(err, db.ErrNotFound) {
		return options.Values{}, nil
	}
	return options.Values(value), err
}

// notify sends the post to the pod configured in the settings, if notifications are enabled.
func (s *AppService) notify(ctx context.Context, id int64) error {
	settings, err := s.storedSettings(ctx)
	if err != nil {
		return err
	}

	// An empty selection means every box was cleared; only a missing key falls back to the default.
	notify, ok := settings[service.FieldNotify]
	if !ok || notify == nil {
		notify = NotifyPosts
	}
	if !slices.Contains(options.Strings(notify), NotifyPosts) {
		log.Debug().Int64("post", id).Msg("diaspora notifications are disabled")
		return nil
	}

	sender := s.sender()
	sender.SetAccount(setting(settings, service.FieldDiasporaID))
	sender.SetCredentials(setting(settings, service.FieldIdentifier), setting(settings, service.FieldSecret))
	if port := setting(settings, service.FieldPort); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			sender.SetPort(n)
		}
	}
	protocol := setting(settings, service.FieldProtocol)
	if protocol == "" {
		protocol = diaspora.HTTPS
	}
	if err = sender.SetProtocol(protocol); err != nil {
		log.Warn().Err(err).Str("protocol", protocol).Msg("falling back to https")
		_ = sender.SetProtocol(diaspora.HTTPS)
	}

	status := sender.Send(ctx, id)
	log.Debug().Int64("post", id).Str("status", status).Msg("diaspora notification done")
	return nil
}

func setting(settings options.Values, name string) string {
	return strings.Join(options.Strings(settings[name]), ",")
}

// optionStore reads the settings fields from the stored settings document.
type optionStore struct {
	db   db.Options
	name string
}

func (o optionStore) Get(ctx context.Context, name string) (any, bool) {
	value, err := o.db.GetOption(ctx, o.name)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.Error().Err(err).Str("option", o.name).Msg("unable to read settings")
		}
		return nil, false
	}
	v, ok := value[name]
	return v, ok
}
