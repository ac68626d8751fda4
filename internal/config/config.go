package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Services ServicesConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// ServicesConfig controls the catalog rules applied on POST /services.
type ServicesConfig struct {
	// Unique rejects a second service with the same name or the same
	// non-empty doctor name.
	Unique bool
}

const (
	defaultMongoTimeoutSec    = 10
	defaultShutdownTimeoutSec = 5
)

// LoadConfig loads configuration from environment variables and an optional .env file.
// An empty MongoDB URI is allowed: the server then runs on the in-memory store.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("MONGODB_DATABASE", "clinic")
	v.SetDefault("MONGODB_TIMEOUT", defaultMongoTimeoutSec)
	v.SetDefault("SERVICES_UNIQUE", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SHUTDOWN_TIMEOUT", defaultShutdownTimeoutSec)

	// MONGO_URL is the historical name; MONGODB_URI matches the rest of our services.
	uri := v.GetString("MONGO_URL")
	if uri == "" {
		uri = v.GetString("MONGODB_URI")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			Host:            v.GetString("SERVER_HOST"),
			Environment:     v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: seconds(v, "SHUTDOWN_TIMEOUT", defaultShutdownTimeoutSec),
		},
		MongoDB: MongoDBConfig{
			URI:      uri,
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  seconds(v, "MONGODB_TIMEOUT", defaultMongoTimeoutSec),
		},
		Services: ServicesConfig{
			Unique: v.GetBool("SERVICES_UNIQUE"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}
	return cfg, nil
}

// seconds reads key as a whole number of seconds. Unparsable, zero or negative
// values fall back to def.
func seconds(v *viper.Viper, key string, def int) time.Duration {
	n := v.GetInt(key)
	if n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}

// Addr returns the host:port pair the HTTP server listens on.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
