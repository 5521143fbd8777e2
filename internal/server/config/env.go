package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays variables that are set in the environment; unset ones
// leave the current value untouched.
func parseEnv(config *Config) error {
	return env.Parse(config)
}
