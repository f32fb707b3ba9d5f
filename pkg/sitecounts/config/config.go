package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/site-counts/pkg/sitecounts"
	"github.com/tendant/site-counts/pkg/sitecounts/repo/memory"
	repopg "github.com/tendant/site-counts/pkg/sitecounts/repo/postgres"
	"github.com/tendant/site-counts/pkg/sitecounts/repo/sqlite"
	"github.com/tendant/site-counts/pkg/sitecounts/seed"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	q := sitecounts.DefaultListQuery()
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		DBSchema:     "content",
		AutoMigrate:  true,
		Locale:       "en",
		Timezone:     "UTC",
		Query: QueryConfig{
			MaxResults: q.MaxResults,
			ItemType:   q.ItemType,
			StartHour:  q.Window.StartHour,
			EndHour:    q.Window.EndHour,
			Category:   q.Category,
			Tag:        q.Tag,
		},
	}
}

// ServerConfig represents configuration for the site counts block and its server
type ServerConfig struct {
	Port        string `env:"PORT" env-description:"HTTP port"`
	Environment string `env:"ENVIRONMENT" env-description:"development, production or testing"`

	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL" env-description:"memory, postgres://..., sqlite://path or file:path"`
	DatabaseType string `env:"DATABASE_TYPE" env-description:"memory, postgres or sqlite (detected from DATABASE_URL)"`
	DBSchema     string `env:"CONTENT_DB_SCHEMA" env-description:"Postgres schema to use"`
	AutoMigrate  bool   `env:"AUTO_MIGRATE" env-description:"Create tables on startup"`

	// Seed dataset loaded into the repository on startup
	SeedURL string `env:"SEED_URL" env-description:"file:// or s3:// location of a JSON seed"`
	SeedS3  seed.S3Config

	// Rendering options
	Locale            string `env:"LOCALE" env-description:"Language of the block text (BCP 47)"`
	Timezone          string `env:"TIMEZONE" env-description:"Time zone publish hours are read in"`
	ConcurrentQueries bool   `env:"CONCURRENT_QUERIES" env-description:"Run the count and list queries in parallel"`
	Query             QueryConfig
}

// QueryConfig holds the filtered list query settings
type QueryConfig struct {
	MaxResults int    `env:"LIST_MAX_RESULTS" env-description:"Items fetched for the filtered list"`
	ItemType   string `env:"LIST_ITEM_TYPE" env-description:"Content type of listed items"`
	StartHour  int    `env:"LIST_START_HOUR" env-description:"First publish hour included (0-23)"`
	EndHour    int    `env:"LIST_END_HOUR" env-description:"Last publish hour included (0-23)"`
	Category   string `env:"LIST_CATEGORY" env-description:"Required category"`
	Tag        string `env:"LIST_TAG" env-description:"Required tag"`
}

// ListQuery converts the settings into a sitecounts.ListQuery
func (q QueryConfig) ListQuery() sitecounts.ListQuery {
	return sitecounts.ListQuery{
		MaxResults: q.MaxResults,
		ItemType:   q.ItemType,
		Status:     sitecounts.ItemStatusPublished,
		Window:     &sitecounts.TimeWindow{StartHour: q.StartHour, EndHour: q.EndHour},
		Category:   q.Category,
		Tag:        q.Tag,
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory":
	case "postgres", "sqlite":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required when using %s", c.DatabaseType)
		}
	default:
		return errors.New("database_type must be 'memory', 'postgres' or 'sqlite'")
	}

	if err := c.Query.ListQuery().Validate(); err != nil {
		return fmt.Errorf("invalid list query: %w", err)
	}
	if _, err := sitecounts.ParseLocale(c.Locale); err != nil {
		return fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	return nil
}

// WithEnv applies environment variable overrides. Variables that are not set
// leave the current value untouched. The database type is detected from
// DATABASE_URL when it is set.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return applyDatabaseURL(c)
	}
}

// WithFile reads a YAML, JSON, TOML or .env file, then applies environment
// overrides on top of it.
func WithFile(path string) Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return applyDatabaseURL(c)
	}
}

// WithDatabaseURL detects the database type from the configured URL. Use it
// after options that set DatabaseURL directly.
func WithDatabaseURL() Option {
	return applyDatabaseURL
}

// Usage describes every environment variable
func Usage() string {
	var cfg ServerConfig
	var sb strings.Builder
	cleanenv.FUsage(&sb, &cfg, nil)()
	return sb.String()
}

// applyDatabaseURL detects the database type from the URL
func applyDatabaseURL(c *ServerConfig) error {
	dbURL := c.DatabaseURL
	switch {
	case dbURL == "" || dbURL == "memory":
		if c.DatabaseType == "" || dbURL == "memory" {
			c.DatabaseType = "memory"
		}
		if dbURL == "memory" {
			c.DatabaseURL = ""
		}
	case strings.HasPrefix(dbURL, "postgresql://"), strings.HasPrefix(dbURL, "postgres://"):
		c.DatabaseType = "postgres"
	case strings.HasPrefix(dbURL, "sqlite://"), strings.HasPrefix(dbURL, "file:"):
		c.DatabaseType = "sqlite"
	default:
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'postgresql://...' or 'sqlite://...')", dbURL)
	}
	return nil
}

// sqliteDSN converts sqlite://path into a go-sqlite3 data source name
func sqliteDSN(dbURL string) string {
	if strings.HasPrefix(dbURL, "sqlite://") {
		return strings.TrimPrefix(dbURL, "sqlite://")
	}
	return dbURL
}

// Repository is a backend built from configuration: reads for rendering,
// writes for seeding. Close releases its database connections.
type Repository interface {
	sitecounts.Repository
	seed.Store
	io.Closer
}

// BuildRepository creates the repository described by the configuration,
// migrating and seeding it as configured. The caller must close it.
func (c *ServerConfig) BuildRepository(ctx context.Context) (Repository, error) {
	repo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	if c.SeedURL != "" {
		ds, err := seed.Load(ctx, c.SeedURL, c.SeedS3, repo)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to load seed: %w", err)
		}
		slog.Info("Seed loaded", "url", c.SeedURL, "types", len(ds.Types), "items", len(ds.Items))
	}

	return repo, nil
}

// BuildBlock creates a Block instance from the configuration. The returned
// closer releases the block's repository and must be called once the block is
// no longer used.
func (c *ServerConfig) BuildBlock(ctx context.Context, extra ...sitecounts.Option) (sitecounts.Block, io.Closer, error) {
	tag, err := sitecounts.ParseLocale(c.Locale)
	if err != nil {
		return nil, nil, err
	}

	repo, err := c.BuildRepository(ctx)
	if err != nil {
		return nil, nil, err
	}

	options := []sitecounts.Option{
		sitecounts.WithRepository(repo),
		sitecounts.WithTranslator(sitecounts.NewTranslator(tag)),
		sitecounts.WithListQuery(c.Query.ListQuery()),
		sitecounts.WithConcurrentQueries(c.ConcurrentQueries),
		sitecounts.WithLogger(slog.Default()),
	}
	options = append(options, extra...)

	block, err := sitecounts.New(options...)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	return block, repo, nil
}

// buildRepository creates a repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (Repository, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, err
	}

	switch c.DatabaseType {
	case "memory":
		return memory.New(memory.WithLocation(loc)), nil
	case "sqlite":
		repo, err := sqlite.Open(sqliteDSN(c.DatabaseURL), sqlite.WithLocation(loc))
		if err != nil {
			return nil, err
		}
		if c.AutoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				repo.Close()
				return nil, err
			}
		}
		return repo, nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		schema := c.DBSchema
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if schema == "" {
				return nil
			}
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", pgx.Identifier{schema}.Sanitize()))
			return err
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		repo := repopg.NewWithPool(pool, repopg.WithTimezone(c.Timezone))
		if c.AutoMigrate {
			if err := repo.CreateSchema(ctx, schema); err != nil {
				repo.Close()
				return nil, err
			}
			if err := repo.Migrate(ctx); err != nil {
				repo.Close()
				return nil, err
			}
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}
