package api

import (
	"context"                          // Context for Redis operations
	"errors"                           // Error matching
	"io"                               // Reading uploaded files
	"net/http"                         // HTTP status codes
	"strings"                          // String manipulation
	"time"                             // Timestamps and cache TTLs
	"university_admin/internal/domain" // Importing domain models
	"university_admin/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// resourceListKey caches the unfiltered viewResources payload;
// invalidated on every resource write
const resourceListKey = "resources:all"

// formImage pulls the optional f_image upload out of the multipart form.
// Returns nil bytes when no file was attached; rejects anything that is
// not a genuine JPEG or PNG by magic bytes, or that exceeds the size cap.
func formImage(c *gin.Context) ([]byte, error) {
	header, err := c.FormFile("f_image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil // Attachment is optional
		}
		return nil, errors.New("invalid image upload")
	}
	// Cap the size before reading the payload into memory
	if header.Size > utils.MaxImageSize {
		return nil, utils.ErrImageTooLarge
	}
	file, err := header.Open()
	if err != nil {
		return nil, errors.New("invalid image upload")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("invalid image upload")
	}
	// The bytes decide the type, not the file extension
	if _, err := utils.ValidateImage(data); err != nil {
		return nil, err
	}
	return data, nil
}

// AddResourceHandler creates a resource record with an optional image
func AddResourceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		fID := c.PostForm("f_id")                   // Natural key
		fName := c.PostForm("f_name")               // Display name
		fDescription := c.PostForm("f_description") // Description
		category := c.PostForm("category")          // Category label
		// Validate input presence
		if fID == "" || fName == "" || fDescription == "" || category == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID, name, description, and category are required"})
			return
		}
		image, err := formImage(c) // Optional sniffed attachment
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Combined OR check on both natural keys
		var existing int64
		if err := db.Model(&domain.Resource{}).Where("f_id = ? OR f_name = ?", fID, fName).Count(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if existing > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID or name already exists"})
			return
		}
		resource := domain.Resource{
			FID:          fID,          // Natural key
			FName:        fName,        // Display name
			FDescription: fDescription, // Description
			FImage:       image,        // Optional image bytes
			Category:     category,     // Category label
		}
		if err := db.Create(&resource).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"f_id":  fID,         // Resource ID
				"error": err.Error(), // Error message
			}).Error("Resource creation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		// Invalidate the cached listing
		_ = utils.DeleteCache(context.Background(), rdb, resourceListKey)
		c.JSON(http.StatusCreated, gin.H{"message": "Resource registered successfully"})
	}
}

// ResourceView is a listed resource with its image as a data URI
type ResourceView struct {
	FID          string  `json:"f_id"`          // Natural key
	FName        string  `json:"f_name"`        // Display name
	FDescription string  `json:"f_description"` // Description
	Category     string  `json:"category"`      // Category label
	ImageURL     *string `json:"image_url"`     // base64 data URI, null when no image
}

// ViewResourcesHandler lists resources, optionally filtered by category
func ViewResourcesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()            // Context for Redis operations
		rawCategories := c.Query("categories") // Comma-separated category filter
		// Only the unfiltered listing is cached; filter combinations are
		// unbounded and would defeat delete-on-write invalidation
		if rawCategories == "" {
			var cached []ResourceView
			if found, err := utils.GetCache(ctx, rdb, resourceListKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
		query := db.Model(&domain.Resource{}) // Base query
		if rawCategories != "" {
			query = query.Where("category IN ?", strings.Split(rawCategories, ","))
		}
		var resources []domain.Resource // Slice to hold resources
		if err := query.Find(&resources).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		// Map resources to the view shape, re-encoding images as data URIs
		views := make([]ResourceView, len(resources))
		for i, r := range resources {
			views[i] = ResourceView{
				FID:          r.FID,          // Natural key
				FName:        r.FName,        // Display name
				FDescription: r.FDescription, // Description
				Category:     r.Category,     // Category label
			}
			if uri := utils.ImageDataURI(r.FImage); uri != "" {
				views[i].ImageURL = &uri // Attach the encoded image
			}
		}
		if rawCategories == "" {
			// Cache the unfiltered listing for future requests
			_ = utils.SetCache(ctx, rdb, resourceListKey, views, 60*time.Second)
		}
		c.JSON(http.StatusOK, views)
	}
}

// UpdateResourceHandler mutates only the supplied fields of a resource.
// Serves both PUT and PATCH; at least one field must be present.
func UpdateResourceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		resourceID := c.Param("id")                 // Target resource ID
		fName := c.PostForm("f_name")               // Optional new name
		fDescription := c.PostForm("f_description") // Optional new description
		category := c.PostForm("category")          // Optional new category
		image, err := formImage(c)                  // Optional new image
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// At least one field must be supplied
		if fName == "" && fDescription == "" && category == "" && image == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "At least one field must be provided for update"})
			return
		}
		// The target must exist
		var resource domain.Resource
		if err := db.First(&resource, "f_id = ?", resourceID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		// A changed name must stay unique, excluding the resource itself
		if fName != "" {
			var conflict int64
			if err := db.Model(&domain.Resource{}).Where("f_name = ? AND f_id != ?", fName, resourceID).Count(&conflict).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
				return
			}
			if conflict > 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Resource name already exists"})
				return
			}
		}
		// Mutate only what was supplied
		updates := map[string]any{}
		if fName != "" {
			updates["f_name"] = fName
		}
		if fDescription != "" {
			updates["f_description"] = fDescription
		}
		if category != "" {
			updates["category"] = category
		}
		if image != nil {
			updates["f_image"] = image
		}
		if err := db.Model(&domain.Resource{}).Where("f_id = ?", resourceID).Updates(updates).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"f_id":  resourceID,  // Resource ID
				"error": err.Error(), // Error message
			}).Error("Resource update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		// Invalidate the cached listing
		_ = utils.DeleteCache(context.Background(), rdb, resourceListKey)
		c.JSON(http.StatusOK, gin.H{"message": "Resource updated successfully"})
	}
}

// DeleteResourceHandler permanently removes one resource
func DeleteResourceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		resourceID := c.Param("id") // Target resource ID
		var resource domain.Resource
		// Existence check before deleting
		if err := db.Select("f_id", "f_name").First(&resource, "f_id = ?", resourceID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if err := db.Where("f_id = ?", resourceID).Delete(&domain.Resource{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		// Invalidate the cached listing
		_ = utils.DeleteCache(context.Background(), rdb, resourceListKey)
		c.JSON(http.StatusOK, gin.H{
			"message": "Resource deleted successfully",
			"deletedResource": gin.H{
				"f_id":   resource.FID,   // Deleted resource ID
				"f_name": resource.FName, // Deleted resource name
			},
		})
	}
}

// BulkDeleteResourcesRequest carries the IDs to remove
type BulkDeleteResourcesRequest struct {
	IDs []string `json:"ids" binding:"required"` // Target resource IDs
}

// BulkDeleteResourcesHandler removes several resources at once with a
// per-id outcome: existing rows are deleted, missing ones reported
func BulkDeleteResourcesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BulkDeleteResourcesRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Array of resource IDs is required"})
			return
		}
		// Every submitted ID must be non-empty
		for _, id := range req.IDs {
			if id == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "All resource IDs must be valid"})
				return
			}
		}
		// Work out which of the requested IDs actually exist
		var existing []domain.Resource
		if err := db.Select("f_id", "f_name").Where("f_id IN ?", req.IDs).Find(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if len(existing) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "No resources found with provided IDs"})
			return
		}
		existingSet := make(map[string]bool, len(existing))
		for _, r := range existing {
			existingSet[r.FID] = true
		}
		var notFound []string // IDs with no matching row
		for _, id := range req.IDs {
			if !existingSet[id] {
				notFound = append(notFound, id)
			}
		}
		result := db.Where("f_id IN ?", req.IDs).Delete(&domain.Resource{})
		if result.Error != nil {
			logrus.WithFields(logrus.Fields{
				"ids":   req.IDs,              // Target resource IDs
				"error": result.Error.Error(), // Error message
			}).Error("Bulk resource deletion failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		// Invalidate the cached listing
		_ = utils.DeleteCache(context.Background(), rdb, resourceListKey)
		resp := gin.H{
			"message":          "Resources deleted successfully",
			"deletedCount":     result.RowsAffected, // Rows removed
			"deletedResources": existing,            // What was removed
		}
		if len(notFound) > 0 {
			resp["notFoundIds"] = notFound // Requested but missing
		}
		c.JSON(http.StatusOK, resp)
	}
}

// SoftDeleteResourceHandler stamps deleted_at, once
func SoftDeleteResourceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		resourceID := c.Param("id") // Target resource ID
		var resource domain.Resource
		// Missing resources and already-deleted ones are reported differently
		if err := db.Select("f_id", "f_name").First(&resource, "f_id = ?", resourceID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		now := time.Now() // Deletion timestamp
		// The IS NULL guard makes a second soft delete a no-op
		result := db.Model(&domain.Resource{}).Where("f_id = ? AND deleted_at IS NULL", resourceID).Update("deleted_at", &now)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Resource is already deleted"})
			return
		}
		// Invalidate the cached listing
		_ = utils.DeleteCache(context.Background(), rdb, resourceListKey)
		c.JSON(http.StatusOK, gin.H{
			"message": "Resource soft deleted successfully",
			"softDeletedResource": gin.H{
				"f_id":   resource.FID,   // Resource ID
				"f_name": resource.FName, // Resource name
			},
		})
	}
}

// RestoreResourceHandler clears deleted_at on a soft-deleted resource
func RestoreResourceHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		resourceID := c.Param("id") // Target resource ID
		var resource domain.Resource
		// Only resources currently in the soft-deleted state can be restored
		if err := db.Select("f_id", "f_name").First(&resource, "f_id = ? AND deleted_at IS NOT NULL", resourceID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Deleted resource not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if err := db.Model(&domain.Resource{}).Where("f_id = ?", resourceID).Update("deleted_at", nil).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		// Invalidate the cached listing
		_ = utils.DeleteCache(context.Background(), rdb, resourceListKey)
		c.JSON(http.StatusOK, gin.H{
			"message": "Resource restored successfully",
			"restoredResource": gin.H{
				"f_id":   resource.FID,   // Resource ID
				"f_name": resource.FName, // Resource name
			},
		})
	}
}
