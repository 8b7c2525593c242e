package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration for integration tests from the .env file or environment variables.
// If TEST_MONGO_URI is not set, the returned Config has an empty Mongo.URI and integration tests are skipped.
func LoadTestConfig() (*Config, error) {
	// Try both possible paths
	_ = godotenv.Load("./../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Mongo.URI = os.Getenv("TEST_MONGO_URI")
	if cfg.Mongo.URI == "" {
		return cfg, nil
	}

	cfg.Mongo.Database = stringEnv("TEST_MONGO_DATABASE", "users_app_test")
	cfg.Mongo.MigrationsPath = stringEnv("TEST_MIGRATIONS_PATH", "file://../../migrations")

	var err error
	if cfg.Mongo.Timeout, err = durationEnv("TEST_MONGO_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}
