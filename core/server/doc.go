// Package server holds the HTTP server configuration.
//
// The Config struct defines the listen port, the API key gate and request
// limits. It is embedded by core/config and read by the start command.
package server
