// Package database handles the optional SQL connection.
//
// It provides a wrapper around GORM to configure MySQL (production) or SQLite
// (local runs and tests) connections based on the application's configuration.
//
// The SQL backend is used for two things:
//   - the "sql" offset store, which advances the round-robin batch offset with a
//     conditional UPDATE so overlapping sync invocations cannot both win;
//   - the run log, one row per non-dry sync run.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Database connection failed", zap.Error(err))
//	}
package database
