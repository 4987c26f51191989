package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Search    SearchConfig
	Import    ImportConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	CORSOrigins  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type StorageConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectAttempts int
	AutoMigrate     bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	SearchCacheTTL time.Duration
}

type AuthConfig struct {
	JWTSecret    string
	Issuer       string
	TokenTTL     time.Duration
	BcryptCost   int
	PublicSearch bool
}

type RateLimitConfig struct {
	AuthRPS   float64
	AuthBurst int
}

type SearchConfig struct {
	DefaultRadius int
	PageSize      int
	MaxPageSize   int
}

type ImportConfig struct {
	TagProperty string
	SeedFile    string // GeoJSON, загружается при старте с STORAGE_DRIVER=memory
}

type LogConfig struct {
	Level string
}

// Load reads .env (if present) and the process environment. Environment
// variables always win over the file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return build(viper.GetViper())
}

func build(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("API_HOST"),
			Port:         v.GetInt("API_PORT"),
			Env:          v.GetString("API_ENV"),
			CORSOrigins:  v.GetString("API_CORS_ORIGINS"),
			ReadTimeout:  time.Duration(v.GetInt("API_READ_TIMEOUT")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("API_WRITE_TIMEOUT")) * time.Second,
			IdleTimeout:  time.Duration(v.GetInt("API_IDLE_TIMEOUT")) * time.Second,
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
			ConnectAttempts: v.GetInt("DB_CONNECT_ATTEMPTS"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			SearchCacheTTL: time.Duration(v.GetInt("SEARCH_CACHE_TTL")) * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:    v.GetString("AUTH_JWT_SECRET"),
			Issuer:       v.GetString("AUTH_ISSUER"),
			TokenTTL:     time.Duration(v.GetInt("AUTH_TOKEN_TTL_MINUTES")) * time.Minute,
			BcryptCost:   v.GetInt("AUTH_BCRYPT_COST"),
			PublicSearch: v.GetBool("AUTH_PUBLIC_SEARCH"),
		},
		RateLimit: RateLimitConfig{
			AuthRPS:   v.GetFloat64("RATE_LIMIT_AUTH_RPS"),
			AuthBurst: v.GetInt("RATE_LIMIT_AUTH_BURST"),
		},
		Search: SearchConfig{
			DefaultRadius: v.GetInt("SEARCH_DEFAULT_RADIUS"),
			PageSize:      v.GetInt("SEARCH_PAGE_SIZE"),
			MaxPageSize:   v.GetInt("SEARCH_MAX_PAGE_SIZE"),
		},
		Import: ImportConfig{
			TagProperty: v.GetString("IMPORT_TAG_PROPERTY"),
			SeedFile:    v.GetString("IMPORT_SEED_FILE"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")
	v.SetDefault("API_CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("API_READ_TIMEOUT", 10)
	v.SetDefault("API_WRITE_TIMEOUT", 10)
	v.SetDefault("API_IDLE_TIMEOUT", 60)

	v.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "parkingdb")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)
	v.SetDefault("DB_CONNECT_ATTEMPTS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("SEARCH_CACHE_TTL", 3600)

	v.SetDefault("AUTH_ISSUER", "parking-finder")
	v.SetDefault("AUTH_TOKEN_TTL_MINUTES", 24*60)
	v.SetDefault("AUTH_BCRYPT_COST", 10)

	v.SetDefault("RATE_LIMIT_AUTH_RPS", 5)
	v.SetDefault("RATE_LIMIT_AUTH_BURST", 10)

	v.SetDefault("SEARCH_DEFAULT_RADIUS", 500)
	v.SetDefault("SEARCH_PAGE_SIZE", 10)
	v.SetDefault("SEARCH_MAX_PAGE_SIZE", 100)

	v.SetDefault("IMPORT_TAG_PROPERTY", "TAG")
	v.SetDefault("LOG_LEVEL", "info")
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	if c.Search.DefaultRadius < 0 {
		return errors.New("SEARCH_DEFAULT_RADIUS must be non-negative")
	}
	if c.Search.PageSize <= 0 || c.Search.MaxPageSize < c.Search.PageSize {
		return errors.New("SEARCH_PAGE_SIZE must be positive and not exceed SEARCH_MAX_PAGE_SIZE")
	}
	return nil
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory") ||
		strings.Contains(err.Error(), "cannot find the file")
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

func (c *Config) GetRedisAddr() string {
	return c.Redis.Addr()
}

// DSN - строка подключения в формате key=value (pgx и lib/pq)
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
