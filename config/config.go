/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	storeerrors "github.com/suparena/sportstore/errors"
)

// Engine names accepted in store.engine.
const (
	EngineMemory   = "memory"
	EngineSQLite   = "sqlite"
	EngineDynamoDB = "dynamodb"
)

// Config holds all configuration for the store and the CLI.
// Values come from sportstore.yaml, SPORTSTORE_* environment variables and
// an optional .env file, in increasing precedence of env over file.
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	DynamoDB DynamoDBConfig `mapstructure:"dynamodb"`
	Log      LogConfig      `mapstructure:"log"`
}

type StoreConfig struct {
	Engine    string `mapstructure:"engine"`
	Path      string `mapstructure:"path"`
	CacheSize int    `mapstructure:"cache_size"`
}

type DynamoDBConfig struct {
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Table     string `mapstructure:"table"`
	Endpoint  string `mapstructure:"endpoint"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.engine", EngineMemory)
	v.SetDefault("store.path", "sportstore.db")
	v.SetDefault("store.cache_size", 0)
	v.SetDefault("dynamodb.region", "eu-central-1")
	v.SetDefault("dynamodb.access_key", "")
	v.SetDefault("dynamodb.secret_key", "")
	v.SetDefault("dynamodb.table", "")
	v.SetDefault("dynamodb.endpoint", "")
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.format", "CONSOLE")
}

// Load reads sportstore.yaml from dir, if present, and overlays the
// environment. A .env file in dir is loaded into the environment first
// without overriding variables that are already set.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("sportstore")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SPORTSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected engine has what it needs.
func (c *Config) Validate() error {
	c.Store.Engine = strings.ToLower(c.Store.Engine)
	switch c.Store.Engine {
	case EngineMemory:
	case EngineSQLite:
		if c.Store.Path == "" {
			return storeerrors.NewValidationError("store.path", "required for the sqlite engine")
		}
	case EngineDynamoDB:
		if c.DynamoDB.Table == "" {
			return storeerrors.NewValidationError("dynamodb.table", "required for the dynamodb engine")
		}
		if c.DynamoDB.Region == "" {
			return storeerrors.NewValidationError("dynamodb.region", "required for the dynamodb engine")
		}
	default:
		return storeerrors.NewValidationError("store.engine",
			fmt.Sprintf("unknown engine %q, expected memory, sqlite or dynamodb", c.Store.Engine))
	}
	if c.Store.CacheSize < 0 {
		return storeerrors.NewValidationError("store.cache_size", "must not be negative")
	}
	return nil
}
