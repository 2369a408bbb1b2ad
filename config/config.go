package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all gateway configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Merge    MergeConfig    `mapstructure:"merge"`
	Lookups  LookupsConfig  `mapstructure:"lookups"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	GinMode        string        `mapstructure:"gin_mode"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`

	// Screens without a request for this long are closed and their merged URLs revoked.
	ScreenIdleTimeout time.Duration `mapstructure:"screen_idle_timeout"`
}

// BackendConfig points at the fund-management-api instance the gateway fronts.
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MergeConfig tunes the document merge assembler and merged-URL lifetime.
type MergeConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	URLTTL      time.Duration `mapstructure:"url_ttl"`
	Store       string        `mapstructure:"store"` // memory or redis
}

// LookupsConfig selects where category/subcategory names are read from.
type LookupsConfig struct {
	Source    string        `mapstructure:"source"` // backend or database
	StatusTTL time.Duration `mapstructure:"status_ttl"`
}

// DatabaseConfig is the read-only MySQL replica used for lookups.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DebugSQL bool   `mapstructure:"debug_sql"`
}

// RedisConfig holds Redis connection settings for the merged-document store.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig controls bearer handling. An empty JWTSecret means claims are read
// without verification, which Validate only allows outside release mode.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Load reads .env, an optional YAML file and the environment, in that order of precedence
// (environment wins).
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8081")
	v.SetDefault("server.gin_mode", "debug")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.screen_idle_timeout", 2*time.Hour)

	v.SetDefault("backend.base_url", "http://localhost:8080")
	v.SetDefault("backend.timeout", 60*time.Second)

	v.SetDefault("merge.concurrency", 6)
	v.SetDefault("merge.url_ttl", 30*time.Minute)
	v.SetDefault("merge.store", "memory")

	v.SetDefault("lookups.source", "backend")
	v.SetDefault("lookups.status_ttl", 5*time.Minute)

	v.SetDefault("database.port", "3306")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", LogFilePath())
}

// bindEnvVars keeps the environment variable names the fund backend already uses.
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.gin_mode", "GIN_MODE")
	_ = v.BindEnv("backend.base_url", "BACKEND_BASE_URL")
	_ = v.BindEnv("merge.store", "MERGE_STORE")
	_ = v.BindEnv("lookups.source", "LOOKUP_SOURCE")
	_ = v.BindEnv("database.host", "DB_HOST")
	_ = v.BindEnv("database.port", "DB_PORT")
	_ = v.BindEnv("database.database", "DB_DATABASE")
	_ = v.BindEnv("database.username", "DB_USERNAME")
	_ = v.BindEnv("database.password", "DB_PASSWORD")
	_ = v.BindEnv("database.debug_sql", "DEBUG_SQL")
	_ = v.BindEnv("redis.address", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("logger.level", "LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	// Screens and merged URLs are scoped by the user id in the token, so release builds
	// must verify it.
	if c.Server.GinMode == "release" && strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("auth.jwt_secret is required when server.gin_mode=release")
	}
	if c.Merge.Concurrency < 1 {
		return fmt.Errorf("merge.concurrency must be at least 1")
	}
	switch c.Merge.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("merge.store must be memory or redis, got %q", c.Merge.Store)
	}
	switch c.Lookups.Source {
	case "backend":
	case "database":
		if c.Database.Host == "" || c.Database.Database == "" {
			return fmt.Errorf("database.host and database.database are required when lookups.source=database")
		}
	default:
		return fmt.Errorf("lookups.source must be backend or database, got %q", c.Lookups.Source)
	}
	return nil
}
