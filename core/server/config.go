package server

import "strings"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the protected API routes.
	ApiKey string `mapstructure:"api_key" default:""`
	// PublicURL is the externally reachable origin used to build media proxy URLs
	// (e.g. https://sync.example.com). When empty, the origin of the sync request is used.
	PublicURL string `mapstructure:"public_url" default:""`
}

// Origin returns the configured public origin without a trailing slash.
func (c Config) Origin() string {
	return strings.TrimRight(c.PublicURL, "/")
}
