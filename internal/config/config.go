package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	DBTLS      string // Database TLS mode (e.g. "false", "skip-verify", "true")
	DBPoolSize int    // Max open database connections
	JWTSecret  string // JWT secret key
	JWTExpires int    // Token lifetime in hours
	RedisAddr  string // Redis server address
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number
	IsProd     bool   // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	poolSize, err := strconv.Atoi(os.Getenv("DB_POOL_SIZE"))
	if err != nil || poolSize <= 0 {
		poolSize = 10 // Bounded connection pool default
	}
	expires, err := strconv.Atoi(os.Getenv("JWT_EXPIRES_HOURS"))
	if err != nil || expires <= 0 {
		expires = 24 // Tokens live for a day by default
	}
	return &Config{
		AppPort:    os.Getenv("APP_PORT"),          // Application port
		DBUser:     os.Getenv("DB_USER"),           // Database user
		DBPassword: os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:     os.Getenv("DB_HOST"),           // Database host
		DBPort:     os.Getenv("DB_PORT"),           // Database port
		DBName:     os.Getenv("DB_NAME"),           // Database name
		DBTLS:      os.Getenv("DB_TLS"),            // Database TLS mode
		DBPoolSize: poolSize,                       // Pool size
		JWTSecret:  os.Getenv("JWT_SECRET"),        // JWT secret key, required
		JWTExpires: expires,                        // Token lifetime in hours
		RedisAddr:  os.Getenv("REDIS_ADDR"),        // Redis server address
		RedisPass:  os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:    redisDB,                        // Redis database number
		IsProd:     os.Getenv("IS_PROD") == "true", // Is production environment
	}
}

// DSN builds the MySQL Data Source Name from the loaded settings
func (c *Config) DSN() string {
	dsn := c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
	if c.DBTLS != "" {
		dsn += "&tls=" + c.DBTLS // TLS mode only when configured
	}
	return dsn
}
