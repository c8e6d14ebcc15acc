package web

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/postdiaspora/internal/options"
	"github.com/sidereusnuntius/postdiaspora/templates"
)

const settingsFlashKey = "settings"

// SettingsFlash carries the outcome of a settings submission across the redirect that follows it.
type SettingsFlash struct {
	Errors options.Errors
	Saved  bool
}

func GetSettings(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := handler.SessionManager.Load(r)
		var flash SettingsFlash
		if err := session.GetObject(settingsFlashKey, &flash); err != nil {
			log.Warn().Err(err).Msg("unreadable settings flash")
		}
		if flash.Saved {
			if err := session.Remove(w, settingsFlashKey); err != nil {
				log.Error().Err(err).Msg("failed to clear settings flash")
			}
		}

		registry := handler.service.Settings()
		var rows []templates.SettingsRow
		for _, id := range registry.IDs() {
			f, _ := registry.Field(id)
			rows = append(rows, templates.SettingsRow{
				ID:      id,
				Label:   f.Label,
				Control: registry.Render(id),
			})
		}

		handler.render(w, r, "Post to Diaspora Settings", templates.Settings, templates.SettingsForm(templates.SettingsPage{
			Action: SettingsPath,
			Rows:   rows,
			Errors: flash.Errors,
			Saved:  flash.Saved,
		}))
	}
}

// PostSettings stores the submitted settings, even invalid ones, and redirects to the settings page which
// shows the validation errors.
func PostSettings(handler *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form", http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		submitted := handler.service.Settings().Submitted(r.PostForm)

		var errs options.Errors
		valid, err := handler.service.SaveSettings(ctx, submitted, &errs)
		if err != nil {
			handler.fail(w, r, err)
			return
		}
		log.Info().Bool("valid", valid).Int("errors", len(errs)).Msg("settings saved")

		session := handler.SessionManager.Load(r)
		err = session.PutObject(w, settingsFlashKey, SettingsFlash{Errors: errs, Saved: true})
		if err != nil {
			log.Error().Err(err).Msg("failed to store settings flash")
		}
		http.Redirect(w, r, SettingsPath, http.StatusSeeOther)
	}
}
