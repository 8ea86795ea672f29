package db

import (
	"university_admin/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
)

// Migrate performs automatic migration for the database schema
// and seeds the read-only roles table
func Migrate(dsn string) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{}) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	err = db.AutoMigrate(&domain.Role{}, &domain.User{}, &domain.Account{}, &domain.Resource{})
	if err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	SeedRoles(db) // Roles are fixed reference data
	logrus.Info("Migration completed.")
}

// SeedRoles inserts the fixed role rows when they are missing
func SeedRoles(db *gorm.DB) {
	roles := []domain.Role{
		{ID: domain.RoleUser, RoleType: "User"},
		{ID: domain.RoleAdmin, RoleType: "Admin"},
		{ID: domain.RoleSuperAdmin, RoleType: "Super Admin"},
	}
	for _, role := range roles {
		// FirstOrCreate keeps reseeding idempotent
		if err := db.Where(domain.Role{ID: role.ID}).FirstOrCreate(&role).Error; err != nil {
			logrus.Fatalf("role seeding failed: %v", err)
		}
	}
}
