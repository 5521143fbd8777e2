package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/reviewhub/internal/flagx"
	"github.com/dmitrijs2005/reviewhub/internal/timex"
)

// JsonConfig is the on-disk shape of the optional config file. Only keys
// present in the file override the current values.
type JsonConfig struct {
	HTTPAddress              *string         `json:"http_address"`
	DatabaseDSN              *string         `json:"database_dsn"`
	SecretKey                *string         `json:"secret_key"`
	TokenValidityDuration    *timex.Duration `json:"token_validity_duration"`
	LogLevel                 *string         `json:"log_level"`
	Argon2Time               *uint32         `json:"argon2_time"`
	Argon2MemoryKiB          *uint32         `json:"argon2_memory_kib"`
	Argon2Threads            *uint8          `json:"argon2_threads"`
	AuthRateLimit            *int            `json:"auth_rate_limit"`
	CORSOrigins              *string         `json:"cors_origins"`
	S3RootUser               *string         `json:"s3_root_user"`
	S3RootPassword           *string         `json:"s3_root_password"`
	S3Bucket                 *string         `json:"s3_bucket"`
	S3Region                 *string         `json:"s3_region"`
	S3BaseEndpoint           *string         `json:"s3_base_endpoint"`
	ImageURLValidityDuration *timex.Duration `json:"image_url_validity_duration"`
}

// parseJSON loads the file named by -c/-config in args, if any, into config.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	set(&config.HTTPAddress, c.HTTPAddress)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	set(&config.LogLevel, c.LogLevel)
	set(&config.Argon2Time, c.Argon2Time)
	set(&config.Argon2MemoryKiB, c.Argon2MemoryKiB)
	set(&config.Argon2Threads, c.Argon2Threads)
	set(&config.AuthRateLimit, c.AuthRateLimit)
	set(&config.CORSOrigins, c.CORSOrigins)
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.ImageURLValidityDuration != nil {
		config.ImageURLValidityDuration = c.ImageURLValidityDuration.Duration
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
