package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"distress-server/internal/models"
	"distress-server/internal/utils"
	"distress-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(tokens TokenValidator, roles ...models.Role) *gin.Engine {
	router := gin.New()
	router.GET("/protected", RequireRole(tokens, roles...), func(c *gin.Context) {
		identity := GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"id": identity.SubjectID.Hex(), "role": identity.Role})
	})
	return router
}

func doRequest(router http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)
	subject := primitive.NewObjectID()
	token, err := tokens.Generate(subject.Hex(), "user", time.Hour)
	require.NoError(t, err)

	identity, err := Authenticate(tokens, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, subject, identity.SubjectID)
	assert.Equal(t, models.RoleUser, identity.Role)

	_, err = Authenticate(tokens, "")
	assert.Equal(t, utils.KindUnauthenticated, utils.KindOf(err))

	_, err = Authenticate(tokens, token)
	assert.Equal(t, utils.KindUnauthenticated, utils.KindOf(err))

	_, err = Authenticate(tokens, "Bearer garbage")
	assert.Equal(t, utils.KindInvalidCredential, utils.KindOf(err))

	expired, err := tokens.Generate(subject.Hex(), "user", -time.Minute)
	require.NoError(t, err)
	_, err = Authenticate(tokens, "Bearer "+expired)
	assert.Equal(t, utils.KindInvalidCredential, utils.KindOf(err))

	notAnID, err := tokens.Generate("42", "user", time.Hour)
	require.NoError(t, err)
	_, err = Authenticate(tokens, "Bearer "+notAnID)
	assert.Equal(t, utils.KindInvalidCredential, utils.KindOf(err))
}

func TestRequireRole(t *testing.T) {
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)
	userToken, err := tokens.Generate(primitive.NewObjectID().Hex(), "user", time.Hour)
	require.NoError(t, err)
	adminToken, err := tokens.Generate(primitive.NewObjectID().Hex(), "admin", time.Hour)
	require.NoError(t, err)

	anyone := newProtectedRouter(tokens)
	assert.Equal(t, http.StatusUnauthorized, doRequest(anyone, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(anyone, "Bearer nope").Code)
	assert.Equal(t, http.StatusOK, doRequest(anyone, "Bearer "+userToken).Code)

	admins := newProtectedRouter(tokens, models.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, doRequest(admins, "Bearer "+userToken).Code)

	w := doRequest(admins, "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
}

func TestRequireRole_QueryTokenOnlyForUpgrades(t *testing.T) {
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)
	token, err := tokens.Generate(primitive.NewObjectID().Hex(), "user", time.Hour)
	require.NoError(t, err)
	router := newProtectedRouter(tokens)

	plain := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, plain)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	upgrade := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	upgrade.Header.Set("Connection", "Upgrade")
	upgrade.Header.Set("Upgrade", "websocket")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, upgrade)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, logger.RequestIDFromContext(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestCORSMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware([]string{"https://app.example.com"}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	store, err := NewLimiterStore(nil)
	require.NoError(t, err)
	limit, err := RateLimit(store, "2-M", logger.NewNop())
	require.NoError(t, err)

	router := gin.New()
	router.POST("/escalate", limit, func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/escalate", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		last = httptest.NewRecorder()
		router.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))

	_, err = RateLimit(store, "lots", logger.NewNop())
	assert.Error(t, err)
}
