// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structure for server settings such as the listen port,
// the API key guarding the sync trigger and the public origin that media proxy
// URLs written into the CMS are built from.
package server
