//go:generate go tool templ generate

package main

import (
	"context"
	"encoding/gob"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/postdiaspora/internal/client"
	"github.com/sidereusnuntius/postdiaspora/internal/config"
	db "github.com/sidereusnuntius/postdiaspora/internal/db/impl"
	"github.com/sidereusnuntius/postdiaspora/internal/initialization"
	"github.com/sidereusnuntius/postdiaspora/internal/metrics"
	service "github.com/sidereusnuntius/postdiaspora/internal/service/impl"
	"github.com/sidereusnuntius/postdiaspora/internal/state"
	"github.com/sidereusnuntius/postdiaspora/internal/web"
	"github.com/sidereusnuntius/postdiaspora/internal/wellknown"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	config, err := config.ReadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if config.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := initialization.OpenDB(config.DbUrl)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	log.Info().Msg("database connection established")

	if config.Setup {
		err = initialization.SetupDB(&config, d, config.MigrationsFolder, config.DbUrl)
		if err != nil {
			log.Fatal().Err(err).Msg("setup failed")
		}
	}

	statusCache, err := initialization.OpenCache(ctx, &config)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	state := state.State{
		Config: config,
		DB:     db.New(config, d),
		Cache:  statusCache,
		Client: client.New(client.Options{
			ConnectTimeout: config.ConnectTimeout,
			RequestTimeout: config.RequestTimeout,
		}),
		Metrics: metrics.New(reg),
	}

	service, err := service.New(&state)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	gob.Register(web.Session{})
	gob.Register(web.SettingsFlash{})
	manager := scs.NewCookieManager(config.SessionKey)

	handler := web.New(&config, service, manager, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	router := chi.NewRouter()
	handler.Mount(router)
	wellknown.Mount(&state, router)

	s := &http.Server{
		Addr:              config.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdown); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
		if err := statusCache.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close the status cache")
		}
		if err := d.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close the database")
		}
	}()

	log.Info().Str("addr", config.Listen).Str("url", config.Url.String()).Msg("started server")
	if err = s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Send()
	}
	<-closed
}
