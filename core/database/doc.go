// Package database handles connections to the canonical store.
//
// It provides a wrapper around GORM that configures either a MySQL connection
// (deployments) or a SQLite database (client-side local stores and tests)
// based on the application's configuration.
//
// # Connect
//
// Connect establishes the connection, tunes the pool, and verifies it with a
// ping. It enables GORM's error translation so that the two uniqueness
// constraints the sync protocol depends on (table name, and (tableId, rowKey)
// on rows) report races as gorm.ErrDuplicatedKey regardless of driver.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
