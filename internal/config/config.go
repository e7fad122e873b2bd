package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storefront StorefrontConfig `mapstructure:"storefront"`
	Cart       CartConfig       `mapstructure:"cart"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
}

// ServerConfig holds the page server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// StorefrontConfig holds the vendor storefront API configuration. The domain
// and access token are deployment secrets and must come from config or
// environment, never from source.
type StorefrontConfig struct {
	Domain               string `mapstructure:"domain"`
	APIVersion           string `mapstructure:"api_version"`
	AccessToken          string `mapstructure:"access_token"`
	FeaturedCollection   string `mapstructure:"featured_collection"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRetries           int    `mapstructure:"max_retries"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
}

// Endpoint builds the GraphQL endpoint URL from the store domain and API version.
func (c StorefrontConfig) Endpoint() string {
	return fmt.Sprintf("https://%s/api/%s/graphql.json", c.Domain, c.APIVersion)
}

// CartConfig holds cart persistence settings. Profile scopes the persisted
// cart handle key so each profile keeps at most one active cart.
type CartConfig struct {
	Profile       string `mapstructure:"profile"`
	LinesPageSize int    `mapstructure:"lines_page_size"`
}

// DatabaseConfig holds the product archive database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Password        string `mapstructure:"password"`
	Database        int    `mapstructure:"database"`
	CatalogCacheTTL int    `mapstructure:"catalog_cache_ttl"`
}

// Load loads configuration from YAML file with environment variable overrides
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("config.yaml file not found in current directory")
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the settings that have no sensible default. Error messages
// name the missing key but never echo credential values.
func (c *Config) Validate() error {
	if c.Storefront.Domain == "" {
		return fmt.Errorf("storefront.domain is required")
	}
	if c.Storefront.AccessToken == "" {
		return fmt.Errorf("storefront.access_token is required")
	}
	if c.Cart.LinesPageSize < 1 {
		return fmt.Errorf("cart.lines_page_size must be at least 1")
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "localhost")

	viper.SetDefault("storefront.api_version", "2025-01")
	viper.SetDefault("storefront.featured_collection", "frontpage")
	viper.SetDefault("storefront.timeout", 30)
	viper.SetDefault("storefront.max_retries", 3)
	viper.SetDefault("storefront.max_requests_per_second", 4)

	viper.SetDefault("cart.profile", "default")
	viper.SetDefault("cart.lines_page_size", 50)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "storefront")
	viper.SetDefault("database.user", "storefront_user")
	viper.SetDefault("database.password", "storefront_pass")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.database", 0)
	viper.SetDefault("redis.catalog_cache_ttl", 300)
}
