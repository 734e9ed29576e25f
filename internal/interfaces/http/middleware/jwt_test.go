package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vansales/backend/internal/infrastructure/auth"
	"github.com/vansales/backend/internal/infrastructure/config"
)

func newTestTokenService(expiration time.Duration) *auth.TokenService {
	return auth.NewTokenService(config.JWTConfig{
		Secret:          "test-secret-key-for-middleware",
		TokenExpiration: expiration,
		Issuer:          "vansales-test",
	})
}

func newAuthTestRouter(tokenService *auth.TokenService) *gin.Engine {
	router := gin.New()
	router.Use(AgentAuth(tokenService))
	router.GET("/api/v1/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"agent_id":   GetAgentID(c),
			"agent_name": GetAgentName(c),
		})
	})
	router.GET("/api/v1/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func authErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error.Code
}

func TestAgentAuth_ValidToken(t *testing.T) {
	tokenService := newTestTokenService(time.Hour)
	router := newAuthTestRouter(tokenService)

	agentID := uuid.New()
	issued, err := tokenService.Generate(agentID, "Dana Kovacs")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/protected", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+issued.Token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, agentID.String(), body["agent_id"])
	assert.Equal(t, "Dana Kovacs", body["agent_name"])
}

func TestAgentAuth_MissingHeader(t *testing.T) {
	router := newAuthTestRouter(newTestTokenService(time.Hour))

	req := httptest.NewRequest("GET", "/api/v1/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "ERR_TOKEN_INVALID", authErrorCode(t, w))
}

func TestAgentAuth_MalformedHeader(t *testing.T) {
	router := newAuthTestRouter(newTestTokenService(time.Hour))

	req := httptest.NewRequest("GET", "/api/v1/protected", nil)
	req.Header.Set(AuthHeaderKey, "Token abc123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAgentAuth_ExpiredToken(t *testing.T) {
	// Same secret, negative lifetime: the token is already expired
	expiredService := newTestTokenService(-time.Hour)
	issued, err := expiredService.Generate(uuid.New(), "Dana Kovacs")
	require.NoError(t, err)

	router := newAuthTestRouter(newTestTokenService(time.Hour))

	req := httptest.NewRequest("GET", "/api/v1/protected", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+issued.Token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "ERR_TOKEN_EXPIRED", authErrorCode(t, w))
}

func TestAgentAuth_WrongSecret(t *testing.T) {
	otherService := auth.NewTokenService(config.JWTConfig{
		Secret:          "a-different-secret",
		TokenExpiration: time.Hour,
		Issuer:          "vansales-test",
	})
	issued, err := otherService.Generate(uuid.New(), "Dana Kovacs")
	require.NoError(t, err)

	router := newAuthTestRouter(newTestTokenService(time.Hour))

	req := httptest.NewRequest("GET", "/api/v1/protected", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+issued.Token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "ERR_TOKEN_INVALID", authErrorCode(t, w))
}

func TestAgentAuth_SkipPaths(t *testing.T) {
	router := newAuthTestRouter(newTestTokenService(time.Hour))

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAgentAuthWithConfig_OnError(t *testing.T) {
	called := false
	cfg := DefaultAgentAuthConfig(newTestTokenService(time.Hour))
	cfg.OnError = func(c *gin.Context, err error) {
		called = true
		c.AbortWithStatus(http.StatusTeapot)
	}

	router := gin.New()
	router.Use(AgentAuthWithConfig(cfg))
	router.GET("/api/v1/protected", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest("GET", "/api/v1/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestGetAgentClaims_NotAuthenticated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetAgentClaims(c))
	assert.Empty(t, GetAgentID(c))
	assert.Empty(t, GetAgentName(c))
}
