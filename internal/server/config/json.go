package config

import (
	"encoding/json"
	"os"

	"github.com/ebalakin/costmate/internal/flagx"
)

// JSONConfig is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config.
// Empty fields leave the current value untouched.
type JSONConfig struct {
	EndpointAddr   string `json:"endpoint_addr"`
	DatabaseDSN    string `json:"database_dsn"`
	NatsURL        string `json:"nats_url"`
	S3AccessKey    string `json:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

// parseJSON loads configuration values from the JSON file named by the -c or
// -config flags. If neither flag is set, no file is loaded. An unreadable or
// invalid file panics: a requested config file that cannot be used is a
// startup error.
func parseJSON(config *Config) {
	jsonConfigFile := flagx.JSONConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JSONConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIfNotEmpty(&config.EndpointAddr, c.EndpointAddr)
	setIfNotEmpty(&config.DatabaseDSN, c.DatabaseDSN)
	setIfNotEmpty(&config.NatsURL, c.NatsURL)
	setIfNotEmpty(&config.S3AccessKey, c.S3AccessKey)
	setIfNotEmpty(&config.S3SecretKey, c.S3SecretKey)
	setIfNotEmpty(&config.S3Bucket, c.S3Bucket)
	setIfNotEmpty(&config.S3Region, c.S3Region)
	setIfNotEmpty(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setIfNotEmpty(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
