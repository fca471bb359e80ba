// Package config provides configuration management for the vehicle sync.
//
// It loads an optional .env file with godotenv and reads every setting from the
// environment through Viper. Defaults come from the `default` struct tags of the
// section types, so each package owns its own settings.
//
// # Configuration Structure
//
// The Config struct is divided into subsections, one per environment prefix:
//   - Server (SERVER_*): port, API key, public origin for media URLs
//   - Log (LOG_*): level and format
//   - Syscara (SYSCARA_*): source API URL and basic-auth credentials
//   - Webflow (WEBFLOW_*): token, collection ids, publishing, throttling
//   - Sync (SYNC_*): batch size, source filter, scope
//   - Offset (OFFSET_*): offset store backend
//   - Media (MEDIA_*): media proxy cache headers and cache limits
//   - Storage (STORAGE_*): MinIO media cache and run report archive
//   - Database (DATABASE_*): optional SQL backend for offsets and the run log
//
// List values such as SYNC_ZIP_CODES are comma separated.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
