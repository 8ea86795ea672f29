package api

import (
	"context"                          // Context for Redis operations
	"net/http"                         // HTTP status codes
	"strings"                          // String manipulation
	"time"                             // Cache TTLs
	"university_admin/internal/domain" // Importing domain models
	"university_admin/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/crypto/bcrypt"   // Password hashing
	"gorm.io/gorm"                 // GORM ORM library
)

// userCountsKey caches the viewUsers/counts payload; invalidated on every user write
const userCountsKey = "users:counts"

// bcryptCost matches the cost factor used for all stored hashes
const bcryptCost = 10

// AddUserRequest carries a new user with its login account
type AddUserRequest struct {
	ID         string `json:"id" binding:"required"`         // User natural key
	Name       string `json:"name" binding:"required"`       // Display name
	Department string `json:"department" binding:"required"` // Department label
	Username   string `json:"username" binding:"required"`   // Unique login name
	Email      string `json:"email" binding:"required"`      // Unique email
	Password   string `json:"password" binding:"required"`   // Plaintext, hashed before any write
	RoleID     string `json:"role_id" binding:"required"`    // Role code
}

// AddUserHandler creates a user and its account in one transaction
func AddUserHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
			return
		}
		// Friendly pre-check; the unique indexes remain the real race guard
		var existing int64
		if err := db.Model(&domain.Account{}).Where("email = ? OR user_id = ?", req.Email, req.ID).Count(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error during check"})
			return
		}
		if existing > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email or ID already exists"})
			return
		}
		// Hash the password before anything touches the store
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		// Both inserts succeed or neither is retained
		err = db.Transaction(func(tx *gorm.DB) error {
			user := domain.User{
				ID:         req.ID,         // Natural key
				Name:       req.Name,       // Display name
				Department: req.Department, // Department label
				RoleID:     req.RoleID,     // Role code
				Active:     true,           // New users start active
			}
			if err := tx.Create(&user).Error; err != nil {
				return err // Return error to rollback
			}
			account := domain.Account{
				UserID:   req.ID,       // 1:1 reference to the user row
				Username: req.Username, // Login name
				Email:    req.Email,    // Email
				Password: string(hash), // bcrypt hash
			}
			if err := tx.Create(&account).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": req.ID,      // New user ID
				"error":   err.Error(), // Error message
			}).Error("User creation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error while inserting user"})
			return
		}
		// Invalidate the cached counts
		_ = utils.DeleteCache(context.Background(), rdb, userCountsKey)
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "userId": req.ID})
	}
}

// UserView is a listed user with its display role
type UserView struct {
	ID               string `json:"id"`                 // User natural key
	Name             string `json:"name"`               // Display name
	Department       string `json:"department"`         // Department label
	RoleID           string `json:"role_id"`            // Role code
	Active           bool   `json:"active"`             // Active flag
	RoleType         string `json:"role_type"`          // Stored role label
	ComputedRoleType string `json:"computed_role_type"` // Prefix-derived display label
}

// displayRoleType overrides the stored role label when the user ID
// carries a recognized category prefix
func displayRoleType(userID, roleType string) string {
	switch {
	case strings.HasPrefix(userID, domain.PrefixOrganization):
		return "Organization"
	case strings.HasPrefix(userID, domain.PrefixAdviser):
		return "Adviser"
	case strings.HasPrefix(userID, domain.PrefixStaff):
		return "Staff"
	default:
		return roleType // Fall back to the stored label
	}
}

// ViewUsersHandler lists users, optionally filtered by role and status
func ViewUsersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&domain.User{}).Preload("Role") // Base query with role relation
		// status filter: "active", "archived", or "all"; "all" adds no clause
		switch c.Query("status") {
		case "active":
			query = query.Where("active = ?", true)
		case "archived":
			query = query.Where("active = ?", false)
		}
		// role_id: comma-separated role codes, OR semantics
		if roleIDs := c.Query("role_id"); roleIDs != "" {
			query = query.Where("role_id IN ?", strings.Split(roleIDs, ","))
		}
		var users []domain.User // Slice to hold users
		if err := query.Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		// Map users to the view shape with the computed display role
		views := make([]UserView, len(users))
		for i, u := range users {
			views[i] = UserView{
				ID:               u.ID,                                   // Natural key
				Name:             u.Name,                                 // Display name
				Department:       u.Department,                           // Department label
				RoleID:           u.RoleID,                               // Role code
				Active:           u.Active,                               // Active flag
				RoleType:         u.Role.RoleType,                        // Stored label
				ComputedRoleType: displayRoleType(u.ID, u.Role.RoleType), // Display label
			}
		}
		c.JSON(http.StatusOK, views) // Return the list
	}
}

// UserCountsHandler returns active/archived/total user counts
func UserCountsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Context for Redis operations
		var cached struct {
			ActiveCount   int64 `json:"activeCount"`   // Active users
			ArchivedCount int64 `json:"archivedCount"` // Deactivated users
			TotalCount    int64 `json:"totalCount"`    // All users
		}
		// If cached data found, return it
		if found, err := utils.GetCache(ctx, rdb, userCountsKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		}
		var active, archived, total int64 // Counters
		if err := db.Model(&domain.User{}).Where("active = ?", true).Count(&active).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if err := db.Model(&domain.User{}).Where("active = ?", false).Count(&archived).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		cached.ActiveCount = active     // Active users
		cached.ArchivedCount = archived // Deactivated users
		cached.TotalCount = total       // All users
		// Cache the counts for future requests
		_ = utils.SetCache(ctx, rdb, userCountsKey, cached, 60*time.Second)
		c.JSON(http.StatusOK, cached)
	}
}

// GetUserHandler returns one user with account fields for edit forms,
// password omitted
func GetUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id") // Target user ID
		var user domain.User    // Fetch user with relations
		if err := db.Preload("Role").Preload("Account").First(&user, "id = ?", userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":         user.ID,               // Natural key
			"name":       user.Name,             // Display name
			"department": user.Department,       // Department label
			"role_id":    user.RoleID,           // Role code
			"username":   user.Account.Username, // Login name
			"email":      user.Account.Email,    // Email
			"role_type":  user.Role.RoleType,    // Stored role label
		})
	}
}

// UpdateUserRequest carries the editable user and account fields.
// Password is optional: blank means "keep the stored hash".
type UpdateUserRequest struct {
	Name       string `json:"name" binding:"required"`       // Display name
	Department string `json:"department" binding:"required"` // Department label
	Username   string `json:"username" binding:"required"`   // Login name
	Email      string `json:"email" binding:"required"`      // Email
	Password   string `json:"password"`                      // Optional new password
	RoleID     string `json:"role_id" binding:"required"`    // Role code
}

// UpdateUserHandler updates the user and account rows in one transaction
func UpdateUserHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id")   // Target user ID
		var req UpdateUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name, department, username, email, and role_id are required"})
			return
		}
		// The target must exist
		var user domain.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error during user check"})
			return
		}
		// New email/username must not belong to any other user; the conflict
		// reason is distinguished in the payload
		var duplicate domain.Account
		err := db.Where("(email = ? OR username = ?) AND user_id != ?", req.Email, req.Username, userID).First(&duplicate).Error
		if err == nil {
			if duplicate.Email == req.Email {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists for another user"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists for another user"})
			return
		} else if err != gorm.ErrRecordNotFound {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error during duplicate check"})
			return
		}
		// Rehash only when a non-blank replacement password was supplied
		var newHash string
		if strings.TrimSpace(req.Password) != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing password"})
				return
			}
			newHash = string(hash)
		}
		// Update both tables atomically
		err = db.Transaction(func(tx *gorm.DB) error {
			userCols := map[string]any{
				"name":       req.Name,       // Display name
				"department": req.Department, // Department label
				"role_id":    req.RoleID,     // Role code
			}
			if err := tx.Model(&domain.User{}).Where("id = ?", userID).Updates(userCols).Error; err != nil {
				return err // Return error to rollback
			}
			accountCols := map[string]any{
				"username": req.Username, // Login name
				"email":    req.Email,    // Email
			}
			if newHash != "" {
				accountCols["password"] = newHash // Overwrite the stored hash
			}
			if err := tx.Model(&domain.Account{}).Where("user_id = ?", userID).Updates(accountCols).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // Target user ID
				"error":   err.Error(), // Error message
			}).Error("User update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving changes"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "userId": userID})
	}
}

// DeleteUserHandler removes a user and its account in one transaction,
// account row first to respect the foreign key
func DeleteUserHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id") // Target user ID
		var user domain.User    // Existence check first
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error during user check"})
			return
		}
		// Delete account then user atomically
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("user_id = ?", userID).Delete(&domain.Account{}).Error; err != nil {
				return err // Return error to rollback
			}
			if err := tx.Where("id = ?", userID).Delete(&domain.User{}).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // Target user ID
				"error":   err.Error(), // Error message
			}).Error("User deletion failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error completing deletion"})
			return
		}
		// Invalidate the cached counts
		_ = utils.DeleteCache(context.Background(), rdb, userCountsKey)
		c.JSON(http.StatusOK, gin.H{
			"message": "User deleted successfully",
			"deletedUser": gin.H{
				"id":   userID,    // Deleted user ID
				"name": user.Name, // Deleted user name
			},
		})
	}
}

// BulkDeleteUsersRequest carries the IDs to remove
type BulkDeleteUsersRequest struct {
	UserIDs []string `json:"userIds" binding:"required"` // Target user IDs
}

// BulkDeleteUsersHandler removes several users at once. Missing IDs are
// reported per-id instead of failing the whole batch.
func BulkDeleteUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BulkDeleteUsersRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || len(req.UserIDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User IDs array is required"})
			return
		}
		// Work out which of the requested IDs actually exist
		var existing []string
		if err := db.Model(&domain.User{}).Where("id IN ?", req.UserIDs).Pluck("id", &existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error during user check"})
			return
		}
		existingSet := make(map[string]bool, len(existing))
		for _, id := range existing {
			existingSet[id] = true
		}
		var notFound []string // IDs with no matching row
		for _, id := range req.UserIDs {
			if !existingSet[id] {
				notFound = append(notFound, id)
			}
		}
		// Delete what exists, accounts before users, in one transaction
		if len(existing) > 0 {
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Where("user_id IN ?", existing).Delete(&domain.Account{}).Error; err != nil {
					return err // Return error to rollback
				}
				if err := tx.Where("id IN ?", existing).Delete(&domain.User{}).Error; err != nil {
					return err // Return error to rollback
				}
				return nil // Commit transaction
			})
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"user_ids": existing,    // Target user IDs
					"error":    err.Error(), // Error message
				}).Error("Bulk user deletion failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error completing bulk deletion"})
				return
			}
		}
		// Invalidate the cached counts
		_ = utils.DeleteCache(context.Background(), rdb, userCountsKey)
		resp := gin.H{
			"message":      "Users deleted successfully",
			"deletedCount": len(existing), // Rows removed
		}
		if len(notFound) > 0 {
			resp["notFoundIds"] = notFound // Requested but missing
		}
		c.JSON(http.StatusOK, resp)
	}
}

// DeactivateUserHandler flips the active flag off
func DeactivateUserHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return setUserActive(db, rdb, false, "User deactivated successfully")
}

// RestoreUserHandler flips the active flag back on
func RestoreUserHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return setUserActive(db, rdb, true, "User restored successfully")
}

// setUserActive is the shared single-statement flag flip
func setUserActive(db *gorm.DB, rdb *redis.Client, active bool, okMessage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id") // Target user ID
		result := db.Model(&domain.User{}).Where("id = ?", userID).Update("active", active)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		// No row affected means no such user
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		// Invalidate the cached counts
		_ = utils.DeleteCache(context.Background(), rdb, userCountsKey)
		c.JSON(http.StatusOK, gin.H{"message": okMessage, "userId": userID})
	}
}
