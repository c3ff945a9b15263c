// Package config loads configuration for axin binaries.
//
// Viper reads an optional YAML file (explicit path or the first hit among
// the standard locations), godotenv loads an optional .env file, and every
// AXIN_-prefixed environment variable is bound onto the nested keys it can
// address (AXIN_API_BASE_URL sets api.base_url).
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("axin", &cfg, config.WithConfigFile("axin.yml"))
package config
