// Package config provides configuration management for the offrows services.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file (via godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key, environment, body limit)
//   - Database: canonical store connection details (mysql or sqlite)
//   - Storage: S3/MinIO credentials and bucket settings for file values
//   - Log: logging level and format
//   - Client: sync driver settings (server URL, local store path, throttle)
//
// Defaults come from `default` struct tags, bound recursively by reflection,
// and environment variables map onto nested keys (SERVER_PORT -> server.port).
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
