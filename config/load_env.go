package config

import (
	"log/slog"
	"os"

	"github.com/subosito/gotenv"
)

// EnvFile returns the env file for env. ENV_FILE overrides the per-env default.
func EnvFile(env string) string {
	if path := os.Getenv("ENV_FILE"); path != "" {
		return path
	}
	return "config/envs/.env." + env
}

// LoadEnv copies the env file's values into the process environment. Values
// already set in the environment win over the file.
func LoadEnv(env string) {
	envFile := EnvFile(env)
	if err := gotenv.Load(envFile); err != nil {
		slog.Warn("No .env file found, using OS environment",
			slog.String("file", envFile))
		return
	}
	slog.Debug("Loaded env file", slog.String("file", envFile))
}
