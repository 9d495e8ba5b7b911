// Package server holds the HTTP server configuration and constants.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structures and valid values for server settings,
// such as the deployment environment and request body limits.
//
// # Configuration
//
// The Config struct defines the HTTP port, API key, environment name, and the
// request body size limit used by the sync endpoint.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server
// settings and by the health endpoint to report the environment.
package server
