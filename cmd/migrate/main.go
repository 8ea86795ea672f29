package main

import (
	"university_admin/internal/config" // Custom import path (Config)
	"university_admin/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DSN())      // Run schema migration and role seeding
}
