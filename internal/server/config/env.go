package config

import (
	"os"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from environment variables, loading a local
// .env file first if one exists. Missing variables leave the current values
// untouched.
func parseEnv(config *Config) {
	// No .env file is fine; the environment may come from the deployment.
	_ = godotenv.Load()

	setIfNotEmpty(&config.EndpointAddr, os.Getenv("ENDPOINT_ADDR"))
	setIfNotEmpty(&config.DatabaseDSN, os.Getenv("DATABASE_DSN"))
	setIfNotEmpty(&config.NatsURL, os.Getenv("NATS_URL"))
	setIfNotEmpty(&config.S3AccessKey, os.Getenv("S3_ACCESS_KEY"))
	setIfNotEmpty(&config.S3SecretKey, os.Getenv("S3_SECRET_KEY"))
	setIfNotEmpty(&config.S3Bucket, os.Getenv("S3_BUCKET"))
	setIfNotEmpty(&config.S3Region, os.Getenv("S3_REGION"))
	setIfNotEmpty(&config.S3BaseEndpoint, os.Getenv("S3_BASE_ENDPOINT"))
}
