package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	StorageDriver   string        `envconfig:"STORAGE_DRIVER"   default:"postgres"`
	DatabaseURL     string        `envconfig:"DATABASE_URL"`
	MongoURI        string        `envconfig:"MONGO_URI"`
	MongoDatabase   string        `envconfig:"MONGO_DATABASE"   default:"kaydee"`
	HTTPPort        string        `envconfig:"HTTP_PORT"        default:":8081"`
	GrpcPort        string        `envconfig:"GRPC_PORT"        default:":50051"` // health only
	LogLevel        string        `envconfig:"LOG_LEVEL"        default:"info"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT"  default:"5s"`
	// AdminToken seeds an admin session for the memory driver, which has no
	// other way to obtain one.
	AdminToken string `envconfig:"ADMIN_TOKEN"`
}

var (
	config  Config
	loadErr error
	once    sync.Once
)

// LoadConfig reads an optional .env file and the environment once per
// process. Later calls return the first result.
func LoadConfig(logger *logrus.Logger) (*Config, error) {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		config, loadErr = fromEnv()
		if loadErr != nil {
			return
		}
		logger.Infof("Configuration loaded: Storage=%s, HTTP Port=%s, GRPC Port=%s, LogLevel=%s",
			config.StorageDriver, config.HTTPPort, config.GrpcPort, config.LogLevel)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return &config, nil
}

func fromEnv() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return c, fmt.Errorf("failed to process configuration from environment variables: %w", err)
	}
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks that the selected storage driver has what it needs.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("configuration error: DATABASE_URL is required for the %s driver", DriverPostgres)
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("configuration error: MONGO_URI is required for the %s driver", DriverMongo)
		}
		if c.MongoDatabase == "" {
			return fmt.Errorf("configuration error: MONGO_DATABASE cannot be empty")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("configuration error: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.AdminToken != "" {
		if c.StorageDriver != DriverMemory {
			return fmt.Errorf("configuration error: ADMIN_TOKEN is only used by the %s driver", DriverMemory)
		}
		if _, err := uuid.Parse(c.AdminToken); err != nil {
			return fmt.Errorf("configuration error: ADMIN_TOKEN must be a UUID: %w", err)
		}
	}
	if c.HTTPPort == "" {
		return fmt.Errorf("configuration error: HTTP_PORT cannot be empty")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("configuration error: SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}
