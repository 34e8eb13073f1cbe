package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"productapi/internal/middleware"
	"productapi/internal/repositories"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is loaded once at startup and not modified afterwards.
type Config struct {
	AppPort     string
	APIKey      middleware.APIKey
	Store       repositories.Options
	RabbitMQURL string
	Exchange    string
	LogLevel    slog.Level
	LogFormat   string
	CORSOrigins string
	AccessLog   bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("STORE_DRIVER", repositories.DriverMemory)
	v.SetDefault("DATABASE_DSN", "file:products.db?cache=shared")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "productsdb")
	v.SetDefault("MONGO_COLLECTION", "products")
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("RABBITMQ_EXCHANGE", "products")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("ACCESS_LOG", true)
}

// Load reads envFile (if it exists) into the environment and builds a Config
// from environment variables.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	timeout, err := time.ParseDuration(v.GetString("STORE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_TIMEOUT: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	format := v.GetString("LOG_FORMAT")
	if format != "json" && format != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: want json or text", format)
	}

	driver := v.GetString("STORE_DRIVER")
	switch driver {
	case repositories.DriverMemory, repositories.DriverSQLite, repositories.DriverPostgres, repositories.DriverMongo:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", driver)
	}

	key := middleware.APIKey{
		Plain: v.GetString("API_KEY"),
		Hash:  v.GetString("API_KEY_HASH"),
	}
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("set API_KEY or API_KEY_HASH: %w", err)
	}

	return &Config{
		AppPort: v.GetString("APP_PORT"),
		APIKey:  key,
		Store: repositories.Options{
			Driver:          driver,
			DSN:             v.GetString("DATABASE_DSN"),
			MongoURI:        v.GetString("MONGO_URI"),
			MongoDatabase:   v.GetString("MONGO_DATABASE"),
			MongoCollection: v.GetString("MONGO_COLLECTION"),
			Timeout:         timeout,
			AutoMigrate:     v.GetBool("AUTO_MIGRATE"),
		},
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
		Exchange:    v.GetString("RABBITMQ_EXCHANGE"),
		LogLevel:    level,
		LogFormat:   format,
		CORSOrigins: v.GetString("CORS_ALLOW_ORIGINS"),
		AccessLog:   v.GetBool("ACCESS_LOG"),
	}, nil
}
