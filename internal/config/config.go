// Package config loads the persistpager CLI configuration: the backend
// connections and one pager provider per object class.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/Alp4ka/persistpager"
)

// EnvPrefix prefixes the environment variables overriding file values, e.g.
// PERSISTPAGER_CONNECTIONS_ORM_DSN.
const EnvPrefix = "PERSISTPAGER"

// Drivers.
const (
	DriverORM    = "orm"
	DriverODM    = "odm"
	DriverPHPCR  = "phpcr"
	DriverSearch = "search"
)

var _drivers = []string{DriverORM, DriverODM, DriverPHPCR, DriverSearch}

// Config holds all configuration options.
type Config struct {
	Log          LogConfig          `mapstructure:"log"`
	ManagerCache ManagerCacheConfig `mapstructure:"manager_cache"`
	Connections  ConnectionsConfig  `mapstructure:"connections"`
	Providers    []ProviderConfig   `mapstructure:"providers"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" (default) or "json"
}

// ManagerCacheConfig enables memoization of resolved managers.
type ManagerCacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type ConnectionsConfig struct {
	ORM    SQLConfig      `mapstructure:"orm"`
	PHPCR  PHPCRConfig    `mapstructure:"phpcr"`
	ODM    DynamoDBConfig `mapstructure:"odm"`
	Search SearchConfig   `mapstructure:"search"`
}

// SQLConfig describes a database/sql connection.
type SQLConfig struct {
	Dialect string `mapstructure:"dialect"` // "mysql", "postgres"; phpcr also accepts "sqlite"
	DSN     string `mapstructure:"dsn"`
	Debug   bool   `mapstructure:"debug"`
}

type PHPCRConfig struct {
	SQLConfig `mapstructure:",squash"`
	Table     string `mapstructure:"table"`
}

type DynamoDBConfig struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	Table           string `mapstructure:"table"`
	TypeIndex       string `mapstructure:"type_index"`
	TypeAttribute   string `mapstructure:"type_attribute"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type SearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// ProviderConfig declares the pager provider of one object class.
type ProviderConfig struct {
	ObjectClass string `mapstructure:"object_class"`
	Driver      string `mapstructure:"driver"`
	// Source locates the class in its backend: table (orm), root path (phpcr),
	// entity type (odm) or index (search).
	Source  string         `mapstructure:"source"`
	Options map[string]any `mapstructure:"options"`
}

// BaseConfig returns the provider options as a persistpager.Config.
func (p ProviderConfig) BaseConfig() persistpager.Config {
	return persistpager.Config(p.Options).Clone()
}

// Defaults returns the configuration used for absent keys.
func Defaults() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		ManagerCache: ManagerCacheConfig{
			Expiration: persistpager.DefaultManagerCacheExpiration,
		},
		Connections: ConnectionsConfig{
			PHPCR: PHPCRConfig{Table: "phpcr_nodes"},
			ODM:   DynamoDBConfig{TypeAttribute: "EntityType"},
		},
	}
}

// Load reads the configuration file at path. When path is empty, a
// persistpager.{yaml,json,toml} file is looked up in the working directory and
// its absence is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("persistpager")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Defaults()
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("manager_cache.enabled", defaults.ManagerCache.Enabled)
	v.SetDefault("manager_cache.expiration", defaults.ManagerCache.Expiration)

	// Registered so that AutomaticEnv also applies to keys absent from the file.
	v.SetDefault("connections.orm.dialect", "")
	v.SetDefault("connections.orm.dsn", "")
	v.SetDefault("connections.orm.debug", false)
	v.SetDefault("connections.phpcr.dialect", "")
	v.SetDefault("connections.phpcr.dsn", "")
	v.SetDefault("connections.phpcr.debug", false)
	v.SetDefault("connections.phpcr.table", defaults.Connections.PHPCR.Table)
	v.SetDefault("connections.odm.region", "")
	v.SetDefault("connections.odm.endpoint", "")
	v.SetDefault("connections.odm.table", "")
	v.SetDefault("connections.odm.type_index", "")
	v.SetDefault("connections.odm.type_attribute", defaults.Connections.ODM.TypeAttribute)
	v.SetDefault("connections.odm.access_key_id", "")
	v.SetDefault("connections.odm.secret_access_key", "")
	v.SetDefault("connections.search.addresses", []string{})
	v.SetDefault("connections.search.username", "")
	v.SetDefault("connections.search.password", "")
}

// Validate checks the configuration without connecting anywhere.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Providers) == 0 {
		errs = append(errs, errors.New("no providers configured"))
	}

	for i, provider := range c.Providers {
		if err := c.validateProvider(provider); err != nil {
			errs = append(errs, fmt.Errorf("providers[%d]: %w", i, err))
		}
	}

	classes := lo.Map(c.Providers, func(p ProviderConfig, _ int) string { return p.ObjectClass })
	for _, duplicate := range lo.FindDuplicates(lo.Compact(classes)) {
		errs = append(errs, fmt.Errorf("object class %q has more than one provider", duplicate))
	}

	return errors.Join(errs...)
}

func (c *Config) validateProvider(p ProviderConfig) error {
	if p.ObjectClass == "" {
		return errors.New("object_class is required")
	}
	if !lo.Contains(_drivers, p.Driver) {
		return fmt.Errorf("unknown driver %q for %q, expected one of %s", p.Driver, p.ObjectClass, strings.Join(_drivers, ", "))
	}
	if p.Source == "" && p.Driver != DriverODM {
		return fmt.Errorf("source is required for %q", p.ObjectClass)
	}

	if err := c.Connections.validate(p.Driver); err != nil {
		return err
	}

	base := p.BaseConfig()
	if _, _, err := base.Int(persistpager.MaxPerPageKey); err != nil {
		return err
	}
	if _, err := persistpager.SortFromConfig(base); err != nil {
		return err
	}
	if p.Driver == DriverSearch && !base.Has(persistpager.QueryBuilderMethodKey) {
		return fmt.Errorf("%q: the search driver requires %s", p.ObjectClass, persistpager.QueryBuilderMethodKey)
	}

	return nil
}

func (c ConnectionsConfig) validate(driver string) error {
	switch driver {
	case DriverORM:
		if !lo.Contains([]string{"mysql", "postgres"}, c.ORM.Dialect) || c.ORM.DSN == "" {
			return errors.New("connections.orm requires a mysql or postgres dialect and a dsn")
		}
	case DriverPHPCR:
		if !lo.Contains([]string{"mysql", "postgres", "sqlite"}, c.PHPCR.Dialect) || c.PHPCR.DSN == "" {
			return errors.New("connections.phpcr requires a mysql, postgres or sqlite dialect and a dsn")
		}
	case DriverODM:
		if c.ODM.Region == "" || c.ODM.Table == "" {
			return errors.New("connections.odm requires a region and a table")
		}
	case DriverSearch:
		if len(c.Search.Addresses) == 0 {
			return errors.New("connections.search requires at least one address")
		}
	}

	return nil
}
