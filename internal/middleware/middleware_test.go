package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"university_admin/internal/domain"
	"university_admin/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func guardedRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/api/superadmin")
	group.Use(JWTAuthMiddleware(testSecret), ActiveUserMiddleware(db))
	group.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": c.GetString("username")})
	})
	return r
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Role{}, &domain.User{}, &domain.Account{}))
	return db
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/superadmin/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGuardRejectsMissingOrMalformedHeader(t *testing.T) {
	r := guardedRouter(t, openDB(t))

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Basic abc123").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer not-a-token").Code)
}

func TestGuardRejectsExpiredToken(t *testing.T) {
	r := guardedRouter(t, openDB(t))

	token, err := utils.GenerateJWT("alice", "R03", "STF-001", testSecret, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+token).Code)
}

func TestGuardAdmitsActiveUser(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.Create(&domain.User{ID: "STF-001", Name: "Alice", Department: "CS", RoleID: "R03", Active: true}).Error)
	r := guardedRouter(t, db)

	token, err := utils.GenerateJWT("alice", "R03", "STF-001", testSecret, time.Hour)
	require.NoError(t, err)
	w := get(r, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestGuardRejectsDeactivatedOrDeletedSubject(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.Create(&domain.User{ID: "STF-001", Name: "Alice", Department: "CS", RoleID: "R03", Active: false}).Error)
	r := guardedRouter(t, db)

	// Deactivated after the token was issued
	token, err := utils.GenerateJWT("alice", "R03", "STF-001", testSecret, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(r, "Bearer "+token).Code)

	// Deleted outright
	token, err = utils.GenerateJWT("ghost", "R03", "STF-404", testSecret, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+token).Code)
}
