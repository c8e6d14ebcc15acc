package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	DefaultOptionsName  = "post_to_diaspora"
	DefaultStatusPrefix = "wp_post_to_diaspora"
)

type Configuration struct {
	// Name of the blog, displayed on every page.
	Name string
	// Url is the blog's public address; permalinks and actor IRIs are built on top of it.
	Url *url.URL
	// Listen is the address the HTTP server binds to.
	Listen string
	// Debug, if true, lowers the log level to debug.
	Debug bool
	// DbUrl is the path to the SQLite database file.
	DbUrl            string
	MigrationsFolder string
	// Setup makes the application run the pending migrations at startup.
	Setup bool
	// RedisUrl selects the redis backed status cache. When empty an in-memory cache is used, which only works
	// for a single process.
	RedisUrl string
	// OptionsName is the group under which the settings fields are stored and submitted.
	OptionsName string
	// StatusPrefix prefixes the cache keys holding the last notification status of each post.
	StatusPrefix string
	StatusTTL    time.Duration
	// ConnectTimeout bounds the dial to the Diaspora pod; RequestTimeout bounds the whole exchange.
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	SessionKey     string
	AdminUsername  string
	// AdminPasswordHash is a bcrypt hash.
	AdminPasswordHash string
}

func (c *Configuration) Validate() error {
	var errs []error
	if c.Url == nil || c.Url.Host == "" {
		errs = append(errs, errors.New("url is required"))
	}
	if len(c.SessionKey) < 32 {
		errs = append(errs, fmt.Errorf("session_key must be at least 32 characters"))
	}
	if c.AdminUsername == "" || c.AdminPasswordHash == "" {
		errs = append(errs, errors.New("admin_username and admin_password_hash are required"))
	}
	if c.RequestTimeout > 0 && c.RequestTimeout < c.ConnectTimeout {
		errs = append(errs, errors.New("request_timeout must not be shorter than connect_timeout"))
	}
	return errors.Join(errs...)
}
