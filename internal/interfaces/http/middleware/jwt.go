package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vansales/backend/internal/infrastructure/auth"
	"github.com/vansales/backend/internal/infrastructure/logger"
)

// JWT context keys
const (
	JWTClaimsKey    = "jwt_claims"
	JWTAgentIDKey   = "jwt_agent_id"
	JWTAgentNameKey = "jwt_agent_name"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// AgentAuthConfig holds configuration for the agent token middleware
type AgentAuthConfig struct {
	// TokenService is required for token validation
	TokenService *auth.TokenService
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	// Optional callback if token is invalid (default: return 401)
	OnError func(c *gin.Context, err error)
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultAgentAuthConfig returns default agent auth middleware configuration
func DefaultAgentAuthConfig(tokenService *auth.TokenService) AgentAuthConfig {
	return AgentAuthConfig{
		TokenService: tokenService,
		SkipPaths: []string{
			"/health",
			"/api/v1/health",
			"/api/v1/auth/token",
		},
	}
}

// AgentAuth creates agent token authentication middleware
func AgentAuth(tokenService *auth.TokenService) gin.HandlerFunc {
	return AgentAuthWithConfig(DefaultAgentAuthConfig(tokenService))
}

// AgentAuthWithConfig creates agent token authentication middleware with
// custom config
func AgentAuthWithConfig(cfg AgentAuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing authorization header")
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			handleAuthError(c, cfg, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := cfg.TokenService.Validate(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err, "Token validation failed")
			return
		}

		// Store claims in context for downstream use
		c.Set(JWTClaimsKey, claims)
		c.Set(JWTAgentIDKey, claims.AgentID)
		c.Set(JWTAgentNameKey, claims.AgentName)

		// Also tag the request context so logs carry the agent
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithAgentID(ctx, log, claims.AgentID)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("Agent token accepted",
				zap.String("agent_id", claims.AgentID),
				zap.String("agent_name", claims.AgentName),
			)
		}

		c.Next()
	}
}

// handleAuthError handles authentication errors
func handleAuthError(c *gin.Context, cfg AgentAuthConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("Agent authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := "ERR_UNAUTHORIZED"
	errorMessage := "Authentication required"

	switch err {
	case auth.ErrExpiredToken:
		errorCode = "ERR_TOKEN_EXPIRED"
		errorMessage = "Token has expired"
	case auth.ErrInvalidToken:
		errorCode = "ERR_TOKEN_INVALID"
		errorMessage = "Invalid token"
	case auth.ErrTokenNotYetValid:
		errorCode = "ERR_TOKEN_INVALID"
		errorMessage = "Token is not yet valid"
	case auth.ErrInvalidClaims, auth.ErrMissingAgentID:
		errorCode = "ERR_TOKEN_INVALID"
		errorMessage = "Invalid token claims"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    errorCode,
			"message": errorMessage,
		},
	})
}

// GetAgentClaims retrieves agent claims from gin.Context
func GetAgentClaims(c *gin.Context) *auth.AgentClaims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if agentClaims, ok := claims.(*auth.AgentClaims); ok {
			return agentClaims
		}
	}
	return nil
}

// GetAgentID retrieves the authenticated agent id from context, or ""
// when the request was not authenticated
func GetAgentID(c *gin.Context) string {
	if agentID, exists := c.Get(JWTAgentIDKey); exists {
		if id, ok := agentID.(string); ok {
			return id
		}
	}
	return ""
}

// GetAgentName retrieves the authenticated agent name from context
func GetAgentName(c *gin.Context) string {
	if agentName, exists := c.Get(JWTAgentNameKey); exists {
		if name, ok := agentName.(string); ok {
			return name
		}
	}
	return ""
}
