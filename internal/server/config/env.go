package config

import (
	"os"
	"time"
)

// parseEnv overlays Config with values from the environment. A .env file, if
// present, is loaded into the environment by main before this runs.
//
// Recognized variables: ADDRESS, DATABASE_DSN, SECRET_KEY,
// ACCESS_TOKEN_VALIDITY, REFRESH_TOKEN_VALIDITY, RESET_TOKEN_VALIDITY
// (Go duration strings), S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET,
// S3_REGION, S3_BASE_ENDPOINT, CORS_ALLOWED_ORIGIN.
func parseEnv(config *Config) {
	setString := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString("ADDRESS", &config.EndpointAddr)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("SECRET_KEY", &config.SecretKey)
	setDuration("ACCESS_TOKEN_VALIDITY", &config.AccessTokenValidityDuration)
	setDuration("REFRESH_TOKEN_VALIDITY", &config.RefreshTokenValidityDuration)
	setDuration("RESET_TOKEN_VALIDITY", &config.ResetTokenValidityDuration)
	setString("S3_ROOT_USER", &config.S3RootUser)
	setString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	setString("S3_BUCKET", &config.S3Bucket)
	setString("S3_REGION", &config.S3Region)
	setString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	setString("CORS_ALLOWED_ORIGIN", &config.CORSAllowedOrigin)
}
