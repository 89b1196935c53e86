// Package config loads the resolution tuning from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/OFFIS-RIT/scorelink/internal/util"
	"github.com/OFFIS-RIT/scorelink/pkg/symbol"

	"github.com/go-playground/validator"
	"github.com/pelletier/go-toml/v2"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreS3       = "s3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type StoreConfig struct {
	Kind        string `toml:"kind" validate:"oneof=memory sqlite postgres s3"`
	Path        string `toml:"path"`
	DatabaseURL string `toml:"database_url"`
	Bucket      string `toml:"bucket"`
	Prefix      string `toml:"prefix"`
}

type S3Config struct {
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}

type QueueConfig struct {
	User       string `toml:"user"`
	Password   string `toml:"password"`
	Host       string `toml:"host"`
	Port       string `toml:"port"`
	MaxRetries int    `toml:"max_retries" validate:"min=0"`
}

// URL is the AMQP connection url.
func (q QueueConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", q.User, q.Password, q.Host, q.Port)
}

type Config struct {
	Strategy    string           `toml:"strategy" validate:"oneof=serial parallel"`
	Parallelism int              `toml:"parallelism" validate:"min=0"`
	VipIDs      []int            `toml:"vip_ids"`
	Debug       bool             `toml:"debug"`
	Constants   symbol.Constants `toml:"constants"`
	Store       StoreConfig      `toml:"store"`
	S3          S3Config         `toml:"s3"`
	Queue       QueueConfig      `toml:"queue"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Strategy:  "serial",
		Constants: symbol.DefaultConstants(),
		Store: StoreConfig{
			Kind: StoreSQLite,
			Path: "scorelink.db",
		},
		Queue: QueueConfig{
			Host:       "localhost",
			Port:       "5672",
			MaxRetries: 10,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Strategy = util.GetEnvString("SCORELINK_STRATEGY", c.Strategy)
	c.Parallelism = util.GetEnvInt("SCORELINK_PARALLELISM", c.Parallelism)
	if ids := util.GetEnvInts("SCORELINK_VIP_IDS"); len(ids) > 0 {
		c.VipIDs = ids
	}
	c.Debug = util.GetEnvBool("DEBUG", c.Debug)

	c.Store.Kind = util.GetEnvString("SCORELINK_STORE", c.Store.Kind)
	c.Store.Path = util.GetEnvString("SCORELINK_STORE_PATH", c.Store.Path)
	c.Store.DatabaseURL = util.GetEnvString("DATABASE_URL", c.Store.DatabaseURL)
	c.Store.Bucket = util.GetEnvString("AWS_BUCKET", c.Store.Bucket)

	c.S3.Region = util.GetEnvString("AWS_REGION", c.S3.Region)
	c.S3.Endpoint = util.GetEnvString("AWS_ENDPOINT", c.S3.Endpoint)
	c.S3.AccessKey = util.GetEnvString("AWS_ACCESS_KEY", c.S3.AccessKey)
	c.S3.SecretKey = util.GetEnvString("AWS_SECRET_KEY", c.S3.SecretKey)

	c.Queue.User = util.GetEnvString("RABBITMQ_USER", c.Queue.User)
	c.Queue.Password = util.GetEnvString("RABBITMQ_PASSWORD", c.Queue.Password)
	c.Queue.Host = util.GetEnvString("RABBITMQ_HOST", c.Queue.Host)
	c.Queue.Port = util.GetEnvString("RABBITMQ_PORT", c.Queue.Port)
}

// Validate checks field constraints and the settings each store kind needs.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch c.Store.Kind {
	case StoreSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: sqlite store needs a path", ErrInvalidConfig)
		}
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("%w: postgres store needs DATABASE_URL", ErrInvalidConfig)
		}
	case StoreS3:
		if c.Store.Bucket == "" {
			return fmt.Errorf("%w: s3 store needs a bucket", ErrInvalidConfig)
		}
	}
	return nil
}
