package main

import (
	"context"                              // context package is needed for Redis operations
	"log"                                  // log package is needed for logging
	"time"                                 // Durations for pool and token lifetimes
	"university_admin/internal/api"        // Custom package for API handlers
	"university_admin/internal/config"     // Custom package for configuration
	"university_admin/internal/middleware" // Custom package for middleware

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Authenticated routes cannot be served without a real signing secret;
	// refuse to start rather than fall back to a guessable value
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is not set")
	}

	// Connect to the database
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Bound the connection pool; multi-statement transactions each hold
	// one connection from here until commit or rollback
	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatalf("failed to access DB pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBPoolSize)
	sqlDB.SetMaxIdleConns(cfg.DBPoolSize)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Setup Redis client when configured; handlers degrade to uncached
	// reads when it is absent
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	jwtExpires := time.Duration(cfg.JWTExpires) * time.Hour // Token lifetime

	// Auth routes
	r.POST("/api/login", api.LoginHandler(db, cfg.JWTSecret, jwtExpires)) // Login endpoint
	r.GET("/api/login/test-db", api.TestDBHandler(db))                    // Database liveness probe

	// Superadmin routes (protected by JWT and an active-user check)
	superadmin := r.Group("/api/superadmin")
	superadmin.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.ActiveUserMiddleware(db))

	// User management
	superadmin.POST("/addUser", api.AddUserHandler(db, redisClient))                           // Create user + account
	superadmin.GET("/viewUsers", api.ViewUsersHandler(db))                                     // List users
	superadmin.GET("/viewUsers/counts", api.UserCountsHandler(db, redisClient))                // Active/archived/total counts
	superadmin.GET("/updateUser/:id", api.GetUserHandler(db))                                  // Fetch for edit
	superadmin.PUT("/updateUser/:id", api.UpdateUserHandler(db, redisClient))                  // Update user + account
	superadmin.DELETE("/deleteUser/:id", api.DeleteUserHandler(db, redisClient))               // Hard delete
	superadmin.POST("/deleteUser/bulk", api.BulkDeleteUsersHandler(db, redisClient))           // Bulk hard delete
	superadmin.PATCH("/deleteUser/:id/deactivate", api.DeactivateUserHandler(db, redisClient)) // Soft deactivate
	superadmin.PATCH("/deleteUser/:id/restore", api.RestoreUserHandler(db, redisClient))       // Reactivate

	// Resource management
	superadmin.POST("/addResources", api.AddResourceHandler(db, redisClient))                           // Create resource
	superadmin.GET("/viewResources", api.ViewResourcesHandler(db, redisClient))                         // List resources
	superadmin.PUT("/updateResource/:id", api.UpdateResourceHandler(db, redisClient))                   // Full update
	superadmin.PATCH("/updateResource/:id", api.UpdateResourceHandler(db, redisClient))                 // Partial update
	superadmin.DELETE("/deleteResource/:id", api.DeleteResourceHandler(db, redisClient))                // Hard delete
	superadmin.DELETE("/deleteResource", api.BulkDeleteResourcesHandler(db, redisClient))               // Bulk hard delete
	superadmin.PATCH("/deleteResource/:id/soft-delete", api.SoftDeleteResourceHandler(db, redisClient)) // Soft delete
	superadmin.PATCH("/deleteResource/:id/restore", api.RestoreResourceHandler(db, redisClient))        // Restore

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
