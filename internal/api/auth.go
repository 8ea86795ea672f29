package api

import (
	"net/http"                         // HTTP status codes
	"time"                             // Token lifetime
	"university_admin/internal/domain" // Importing domain models
	"university_admin/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// LoginRequest carries the submitted credentials
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"` // Username or email
	Password   string `json:"password" binding:"required"`   // Plaintext secret
}

// LoginResponse is returned on successful authentication
type LoginResponse struct {
	Token    string `json:"token"`    // Signed session token
	RoleID   string `json:"role_id"`  // Role code
	Name     string `json:"name"`     // Display name
	Username string `json:"username"` // Login name
}

// LoginHandler verifies credentials and issues a session token.
// Rejections for unknown identifiers and wrong passwords share one
// response shape so the endpoint does not reveal which accounts exist.
func LoginHandler(db *gorm.DB, jwtSecret string, jwtExpires time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
			return
		}
		// Fetch every account matching under the store's collation, then pick
		// the byte-exact one in Go: MySQL's default collation is
		// case-insensitive, and "Bob" must not log in as "bob".
		var candidates []domain.Account
		if err := db.Where("username = ? OR email = ?", req.Identifier, req.Identifier).Find(&candidates).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Login lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		var account *domain.Account // The byte-exact match, if any
		for i := range candidates {
			if candidates[i].Username == req.Identifier || candidates[i].Email == req.Identifier {
				account = &candidates[i]
				break
			}
		}
		if account == nil {
			// Unknown identifier; same body as a wrong password
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		var user domain.User // Fetch the owning user with its role
		if err := db.Preload("Role").First(&user, "id = ?", account.UserID).Error; err != nil {
			logrus.WithField("user_id", account.UserID).Error("Account without user row")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		// Deactivated accounts are refused before the password is checked
		if !user.Active {
			c.JSON(http.StatusForbidden, gin.H{"message": "Account deactivated. Contact administrator."})
			return
		}
		// Compare provided password with stored hash (constant-time inside bcrypt)
		if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		// Generate session token
		token, err := utils.GenerateJWT(account.Username, user.RoleID, user.ID, jwtSecret, jwtExpires)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
			return
		}
		// Log the outcome without the secret or any part of the hash
		logrus.WithFields(logrus.Fields{
			"username": account.Username, // Login name
			"role_id":  user.RoleID,      // Role code
		}).Info("Login successful")
		// Return the token in the response
		c.JSON(http.StatusOK, LoginResponse{
			Token:    token,            // Signed session token
			RoleID:   user.RoleID,      // Role code
			Name:     user.Name,        // Display name
			Username: account.Username, // Login name
		})
	}
}

// TestDBHandler reports whether the database answers a trivial query
func TestDBHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var now time.Time // Current database time
		if err := db.Raw("SELECT CURRENT_TIMESTAMP").Scan(&now).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Database connection failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Database connected successfully", "time": now.Format(time.RFC3339)})
	}
}
