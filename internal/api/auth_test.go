package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"university_admin/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func loginRouter(db *gorm.DB) http.Handler {
	r := newRouter()
	r.POST("/api/login", LoginHandler(db, testSecret, time.Hour))
	return r
}

func postLogin(t *testing.T, h http.Handler, identifier, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"identifier": identifier, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestLoginSuccess(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "STF-001", "Alice", "alice", "alice@uni.edu", "correct", "R03", true)
	h := loginRouter(db)

	for _, identifier := range []string{"alice", "alice@uni.edu"} {
		w := postLogin(t, h, identifier, "correct")
		require.Equal(t, http.StatusOK, w.Code, "identifier %q", identifier)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "R03", resp.RoleID)
		assert.Equal(t, "Alice", resp.Name)
		assert.Equal(t, "alice", resp.Username)
		assert.NotContains(t, w.Body.String(), "password")

		// The token must verify against the signing secret and carry
		// the identity claims
		claims, err := utils.ParseJWT(resp.Token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "R03", claims.RoleID)
		assert.Equal(t, "STF-001", claims.UserID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "STF-001", "Alice", "alice", "alice@uni.edu", "correct", "R03", true)
	h := loginRouter(db)

	w := postLogin(t, h, "alice", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Invalid credentials"}`, w.Body.String())
}

func TestLoginUnknownIdentifierSameShape(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "STF-001", "Alice", "alice", "alice@uni.edu", "correct", "R03", true)
	h := loginRouter(db)

	unknown := postLogin(t, h, "nobody", "whatever")
	wrong := postLogin(t, h, "alice", "wrong")

	// Rejections must not reveal whether the identifier exists
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
}

func TestLoginCaseSensitiveIdentifier(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "STF-001", "Bob", "Bob", "bob@uni.edu", "correct", "R02", true)
	h := loginRouter(db)

	// "bob" is not "Bob": the match is byte-exact
	w := postLogin(t, h, "bob", "correct")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postLogin(t, h, "Bob", "correct")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "STF-002", "Carol", "carol", "carol@uni.edu", "correct", "R02", false)
	h := loginRouter(db)

	// Deactivation wins regardless of password correctness
	for _, password := range []string{"correct", "wrong"} {
		w := postLogin(t, h, "carol", password)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Account deactivated")
	}
}

func TestLoginMissingFields(t *testing.T) {
	db := newTestDB(t)
	h := loginRouter(db)

	w := postLogin(t, h, "alice", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postLogin(t, h, "", "secret")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
