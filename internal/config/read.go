package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "Blog")
	v.SetDefault("url", "http://localhost:8080")
	v.SetDefault("listen", ":8080")
	v.SetDefault("db_url", "blog.db")
	v.SetDefault("migrations_folder", "migrations")
	v.SetDefault("options_name", DefaultOptionsName)
	v.SetDefault("status_prefix", DefaultStatusPrefix)
	v.SetDefault("status_ttl", 60*time.Second)
	v.SetDefault("connect_timeout", 30*time.Second)
	v.SetDefault("request_timeout", 60*time.Second)
}

// ReadConfig loads the configuration from a config file in the working directory, if any, and from
// POSTDIASPORA_ prefixed environment variables, which take precedence. A .env file is loaded first.
func ReadConfig() (Configuration, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.SetEnvPrefix("postdiaspora")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Configuration{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Configuration, error) {
	u, err := url.Parse(v.GetString("url"))
	if err != nil {
		return Configuration{}, fmt.Errorf("invalid url: %w", err)
	}

	cfg := Configuration{
		Name:              v.GetString("name"),
		Url:               u,
		Listen:            v.GetString("listen"),
		Debug:             v.GetBool("debug"),
		DbUrl:             v.GetString("db_url"),
		MigrationsFolder:  v.GetString("migrations_folder"),
		Setup:             v.GetBool("setup"),
		RedisUrl:          v.GetString("redis_url"),
		OptionsName:       v.GetString("options_name"),
		StatusPrefix:      v.GetString("status_prefix"),
		StatusTTL:         v.GetDuration("status_ttl"),
		ConnectTimeout:    v.GetDuration("connect_timeout"),
		RequestTimeout:    v.GetDuration("request_timeout"),
		SessionKey:        v.GetString("session_key"),
		AdminUsername:     v.GetString("admin_username"),
		AdminPasswordHash: v.GetString("admin_password_hash"),
	}

	return cfg, cfg.Validate()
}
