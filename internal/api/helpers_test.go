package api

import (
	"bytes"
	"mime/multipart"
	"testing"
	"university_admin/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// pngBytes is a minimal payload carrying the PNG magic signature
var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

// jpegBytes carries the JPEG magic signature
var jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}

// newTestDB opens an in-memory sqlite database with the full schema
// and seeded roles
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	// A shared in-memory sqlite database needs a single connection
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Role{}, &domain.User{}, &domain.Account{}, &domain.Resource{}))
	roles := []domain.Role{
		{ID: domain.RoleUser, RoleType: "User"},
		{ID: domain.RoleAdmin, RoleType: "Admin"},
		{ID: domain.RoleSuperAdmin, RoleType: "Super Admin"},
	}
	require.NoError(t, db.Create(&roles).Error)
	return db
}

// seedUser inserts a user with its account; the password is stored hashed
func seedUser(t *testing.T, db *gorm.DB, id, name, username, email, password, roleID string, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := domain.User{ID: id, Name: name, Department: "CS", RoleID: roleID, Active: active}
	require.NoError(t, db.Create(&user).Error)
	account := domain.Account{UserID: id, Username: username, Email: email, Password: string(hash)}
	require.NoError(t, db.Create(&account).Error)
}

// seedResource inserts a resource row directly
func seedResource(t *testing.T, db *gorm.DB, id, name, category string, image []byte) {
	t.Helper()
	r := domain.Resource{FID: id, FName: name, FDescription: "desc", Category: category, FImage: image}
	require.NoError(t, db.Create(&r).Error)
}

// newRouter returns a fresh gin engine in test mode
func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// multipartBody builds a multipart form from fields plus an optional
// f_image file part
func multipartBody(t *testing.T, fields map[string]string, image []byte, filename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("f_image", filename)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}
