package database

import (
	"fmt"
	"strings"

	"moneyrats/internal/config"
)

// Driver names supported by the database manager.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const defaultSQLitePath = "moneyrats.db"

// Config holds database configuration
type Config struct {
	Driver string

	// URL is the postgresql:// connection URL (postgres driver only).
	URL string

	// Path is the database file (sqlite driver only).
	Path string
}

// NewConfig derives the database configuration from the application config.
//
// DATABASE_URL accepts postgres://, postgresql:// and sqlite:// URLs. Hosted
// providers hand out postgres:// URLs, which are rewritten to postgresql://.
// Without DATABASE_URL, DB_DRIVER=postgres assembles the URL from DB_*;
// any other driver value uses a local SQLite file.
func NewConfig(cfg *config.Config) (*Config, error) {
	raw := strings.TrimSpace(cfg.DatabaseURL)

	switch {
	case strings.HasPrefix(raw, "postgres://"):
		return &Config{Driver: DriverPostgres, URL: strings.Replace(raw, "postgres://", "postgresql://", 1)}, nil
	case strings.HasPrefix(raw, "postgresql://"):
		return &Config{Driver: DriverPostgres, URL: raw}, nil
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		// sqlite:///./file.db keeps one slash too many
		path = strings.TrimPrefix(path, "/")
		if path == "" {
			path = defaultSQLitePath
		}
		return &Config{Driver: DriverSQLite, Path: path}, nil
	case raw != "":
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme: %q", raw)
	}

	if cfg.DBDriver == DriverPostgres {
		return &Config{
			Driver: DriverPostgres,
			URL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
				cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode),
		}, nil
	}

	return &Config{Driver: DriverSQLite, Path: defaultSQLitePath}, nil
}
