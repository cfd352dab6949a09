// Package database handles database connections and schema inspection.
//
// It wraps GORM and configures either an embedded SQLite file or a MySQL
// server from the application's configuration.
//
// # Connect
//
// Connect opens the configured driver, applies pool settings and pings the
// database before returning. Migrate runs GORM auto-migration for the models
// a feature owns.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns read the live schema so the integrity
// feature can report tables that drifted from the models.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "remote_items", []string{"local_item_id"})
package database
