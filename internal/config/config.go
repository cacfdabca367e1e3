package config

import (
	"os"
	"path/filepath"
	"sync"

	"fintrack/internal/logging"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// LoadEnv loads environment variables from a .env file in the working
// directory or its parent, if one exists. Existing variables win.
func LoadEnv() {
	envOnce.Do(func() {
		loadEnvFrom(".env", filepath.Join("..", ".env"))
	})
}

func loadEnvFrom(candidates ...string) string {
	log := logging.GetLogger()
	for _, envFile := range candidates {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			log.WithError(err).Warn("Error loading .env file", logging.F(logging.FieldFile, envFile))
			return ""
		}
		log.Debug("Loaded environment variables", logging.F(logging.FieldFile, envFile))
		return envFile
	}
	log.Debug("No .env file found, using environment variables")
	return ""
}

// NewLogger builds the application logger from the log section.
func (c *Config) NewLogger() logging.Logger {
	return logging.NewLogrusAdapter(c.Log.Level, c.Log.Format)
}
