package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Garvit-Adlakha/chat-app-sub000/internal/api/handler"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/config"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/models"
	"github.com/Garvit-Adlakha/chat-app-sub000/internal/storage"
	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

// stubStorage overrides just the storage methods the auth endpoints touch.
// The embedded interface panics on anything else, which is the point: auth
// must not reach further into storage than these.
type stubStorage struct {
	storage.Storage
	user      *models.User
	createErr error
}

func (s *stubStorage) GetUserByEmail(email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, storage.ErrUserNotFound
	}
	return s.user, nil
}

func (s *stubStorage) CreateUser(u *models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	u.ID = "created-user-id"
	return nil
}

func newTestHandler(s storage.Storage) *handler.Handler {
	return handler.NewHandler(nil, s, &config.Config{JWTSecret: "test-secret"})
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	assert.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestToken_RoundTrip(t *testing.T) {
	// Arrange
	h := newTestHandler(nil)

	// Act
	token, err := h.IssueToken("user-1")
	assert.NoError(t, err)
	userID, err := h.VerifyToken(token)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestToken_WrongSecretRejected(t *testing.T) {
	// Arrange
	issuer := handler.NewHandler(nil, nil, &config.Config{JWTSecret: "other-secret"})
	verifier := newTestHandler(nil)
	token, err := issuer.IssueToken("user-1")
	assert.NoError(t, err)

	// Act
	_, err = verifier.VerifyToken(token)

	// Assert
	assert.ErrorIs(t, err, handler.ErrInvalidToken)
}

func TestToken_ExpiredRejected(t *testing.T) {
	// Arrange: a token that expired an hour ago, signed with the right secret
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	assert.NoError(t, err)
	h := newTestHandler(nil)

	// Act
	_, err = h.VerifyToken(token)

	// Assert
	assert.ErrorIs(t, err, handler.ErrInvalidToken)
}

func TestToken_GarbageRejected(t *testing.T) {
	// Arrange
	h := newTestHandler(nil)

	// Act
	_, err := h.VerifyToken("not.a.token")

	// Assert
	assert.ErrorIs(t, err, handler.ErrInvalidToken)
}

func TestRequireAuth(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	h := newTestHandler(nil)
	r := gin.New()
	r.GET("/protected", h.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	token, err := h.IssueToken("user-1")
	assert.NoError(t, err)

	// Act & Assert: no header
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Act & Assert: bad token
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Act & Assert: valid token
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	assert.NoError(t, err)
	store := &stubStorage{user: &models.User{
		ID:           "user-1",
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}}
	h := newTestHandler(store)
	r := gin.New()
	r.POST("/login", h.Login)

	// Act & Assert: valid credentials
	w := postJSON(t, r, "/login", gin.H{"email": "alice@example.com", "password": "password123"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)

	// Act & Assert: wrong password
	w = postJSON(t, r, "/login", gin.H{"email": "alice@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Act & Assert: unknown email
	w = postJSON(t, r, "/login", gin.H{"email": "nobody@example.com", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	assert.NoError(t, err)
	store := &stubStorage{user: &models.User{
		ID:           "user-1",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Deactivated:  true,
	}}
	h := newTestHandler(store)
	r := gin.New()
	r.POST("/login", h.Login)

	// Act
	w := postJSON(t, r, "/login", gin.H{"email": "alice@example.com", "password": "password123"})

	// Assert
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSignup(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	h := newTestHandler(&stubStorage{})
	r := gin.New()
	r.POST("/signup", h.Signup)

	// Act & Assert: valid signup returns the user and a token
	w := postJSON(t, r, "/signup", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)
	assert.NotContains(t, w.Body.String(), "password123")

	// Act & Assert: password shorter than the minimum
	w = postJSON(t, r, "/signup", gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
