package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	JWT       JWTConfig
	Draw      DrawConfig
	Scheduler SchedulerConfig
	Locks     LocksConfig
	Kafka     KafkaConfig
	Admin     AdminConfig
	LogLevel  string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string
	AllowedHosts   []string
	RequestTimeout time.Duration
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration. ExpiresIn is in seconds.
type JWTConfig struct {
	Secret    string
	ExpiresIn int
}

// DrawConfig holds draw engine configuration. A non-zero Seed makes draws reproducible.
// AllocationTimeout bounds a draw after it is claimed, independent of the request.
type DrawConfig struct {
	Seed              int64
	AllocationTimeout time.Duration
}

// SchedulerConfig controls the lifecycle sweep.
type SchedulerConfig struct {
	Enabled       bool
	LifecycleSpec string
}

// LocksConfig selects the per-giveaway lock backend: "mongo" or "memory".
type LocksConfig struct {
	Backend  string
	LeaseTTL time.Duration
}

// KafkaConfig holds the giveaway event publisher configuration
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// AdminConfig seeds the first admin account when no admin with Email exists.
// Seeding is skipped when Password is empty.
type AdminConfig struct {
	Email    string
	Password string
}

// Load loads configuration from .env, an optional config file and environment variables.
// Environment variables use upper case with underscores, e.g. MONGODB_URI.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// setDefaults sets default values for configuration. Every key needs a default so
// AutomaticEnv can bind it during Unmarshal.
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"http://localhost:3000"})
	viper.SetDefault("Server.RequestTimeout", 15*time.Second)
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "giveaways")
	viper.SetDefault("JWT.Secret", "")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("Draw.Seed", 0)
	viper.SetDefault("Draw.AllocationTimeout", time.Minute)
	viper.SetDefault("Scheduler.Enabled", true)
	viper.SetDefault("Scheduler.LifecycleSpec", "@every 1m")
	viper.SetDefault("Locks.Backend", "mongo")
	viper.SetDefault("Locks.LeaseTTL", 2*time.Minute)
	viper.SetDefault("Kafka.Enabled", false)
	viper.SetDefault("Kafka.Brokers", []string{"localhost:9092"})
	viper.SetDefault("Kafka.Topic", "giveaway-events")
	viper.SetDefault("Admin.Email", "admin@example.com")
	viper.SetDefault("Admin.Password", "")
	viper.SetDefault("LogLevel", "info")
}
