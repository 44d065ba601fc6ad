package config

import "os"

// GetEnv reads an environment variable. Defaults live at the call sites
// so that required settings can be warned about individually.
func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvOr reads an environment variable with a fallback.
func GetEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
