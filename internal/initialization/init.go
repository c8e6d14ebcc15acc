// The initialization package contains functions that setup required dependencies such as the SQLite database
// and the status cache.
package initialization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/postdiaspora/internal/cache"
	"github.com/sidereusnuntius/postdiaspora/internal/config"
)

// SetupDB applies all remaining migrations found in folder, then makes sure the administrator has an author row.
func SetupDB(cfg *config.Configuration, db *sql.DB, folder, dbname string) error {
	log.Info().Msg("starting migrations")
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		log.Error().Err(err).Msg("failed to create sqlite3 migration driver")
		return err
	}

	mig, err := migrate.NewWithDatabaseInstance(
		"file://"+folder,
		dbname,
		driver,
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create Migrate object")
		return err
	}

	err = mig.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Error().Err(err).Msg("failed to run migrations")
		return err
	}

	return EnsureAuthor(db, cfg)
}

func OpenDB(connString string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", connString)
	if err != nil {
		log.Error().Err(err).Str("connection string", connString).Msg("failed to open database")
	}
	return db, err
}

// EnsureAuthor inserts the administrator as an author, if it does not exist yet.
func EnsureAuthor(DB *sql.DB, cfg *config.Configuration) error {
	row := DB.QueryRow("SELECT EXISTS(SELECT TRUE FROM authors WHERE username = ?)", cfg.AdminUsername)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return err
	}

	if exists {
		return nil
	}

	log.Info().Str("username", cfg.AdminUsername).Msg("inserting administrator as author")
	_, err := DB.Exec(`INSERT INTO authors(username, display_name, url) VALUES (?,?,?)`,
		cfg.AdminUsername, cfg.AdminUsername, cfg.Url.JoinPath("author", cfg.AdminUsername).String())
	if err != nil {
		log.Error().Err(err).Msg("insert failed")
	}
	return err
}

// OpenCache returns a redis backed cache when a redis url is configured, and an in-memory one otherwise.
func OpenCache(ctx context.Context, cfg *config.Configuration) (cache.Ephemeral, error) {
	if cfg.RedisUrl == "" {
		log.Info().Msg("using in-memory status cache")
		return cache.NewMemory(), nil
	}

	opts, err := redis.ParseURL(cfg.RedisUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err = client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis is unreachable: %w", err)
	}
	log.Info().Str("addr", opts.Addr).Msg("using redis status cache")
	return cache.NewRedis(client), nil
}
