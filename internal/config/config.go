package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers accepted by Storage.Driver
const (
	DriverMongoDB  = "mongodb"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	MongoDB  MongoDBConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Draw     DrawConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            string
	AllowedHosts    []string
	ShutdownTimeout time.Duration
}

// StorageConfig selects the participant registry backend
type StorageConfig struct {
	Driver         string
	RequestTimeout time.Duration
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// PostgresConfig holds Postgres-specific configuration
type PostgresConfig struct {
	URL      string
	MaxConns int32
}

// RedisConfig configures the optional coupon lookup cache. An empty URL disables it.
type RedisConfig struct {
	URL string
	TTL time.Duration
}

// KafkaConfig configures the optional event publisher. No brokers disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	Issuer    string
	ExpiresIn int
}

// AdminConfig holds the admin login credentials. PasswordHash is a bcrypt hash.
type AdminConfig struct {
	Username     string
	PasswordHash string
}

// DrawConfig tunes registration and draw behaviour
type DrawConfig struct {
	CouponAttempts  int
	DefaultPageSize int
	MaxPageSize     int
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Slices do not split from env strings on their own
	cfg.Server.AllowedHosts = splitList(v.GetStringSlice("Server.AllowedHosts"))
	cfg.Kafka.Brokers = splitList(v.GetStringSlice("Kafka.Brokers"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMongoDB, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("config: unsupported Storage.Driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == DriverPostgres && c.Postgres.URL == "" {
		return errors.New("config: Postgres.URL must be set when Storage.Driver is postgres")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("config: JWT.Secret must be at least 32 characters")
	}
	if c.JWT.ExpiresIn <= 0 {
		return errors.New("config: JWT.ExpiresIn must be positive")
	}
	if c.Draw.CouponAttempts < 1 {
		return errors.New("config: Draw.CouponAttempts must be at least 1")
	}
	if c.Draw.DefaultPageSize < 1 || c.Draw.MaxPageSize < c.Draw.DefaultPageSize {
		return errors.New("config: Draw.DefaultPageSize must be positive and not exceed Draw.MaxPageSize")
	}
	return nil
}

// setDefaults sets default values for configuration.
// Every key needs a default so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedHosts", []string{"http://localhost:8080"})
	v.SetDefault("Server.ShutdownTimeout", 5*time.Second)
	v.SetDefault("Storage.Driver", DriverMongoDB)
	v.SetDefault("Storage.RequestTimeout", 10*time.Second)
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "mawadha")
	v.SetDefault("Postgres.URL", "")
	v.SetDefault("Postgres.MaxConns", 10)
	v.SetDefault("Redis.URL", "")
	v.SetDefault("Redis.TTL", 15*time.Minute)
	v.SetDefault("Kafka.Brokers", []string{})
	v.SetDefault("Kafka.Topic", "giveaway-events")
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.Issuer", "mawadha-giveaway")
	v.SetDefault("JWT.ExpiresIn", 8*60*60) // 8 hours
	v.SetDefault("Admin.Username", "admin")
	v.SetDefault("Admin.PasswordHash", "")
	v.SetDefault("Draw.CouponAttempts", 3)
	v.SetDefault("Draw.DefaultPageSize", 10)
	v.SetDefault("Draw.MaxPageSize", 100)
	v.SetDefault("LogLevel", "info")
}

func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
