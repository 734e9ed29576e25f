package handler

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/vansales/backend/internal/application/inventory"
	"github.com/vansales/backend/internal/domain/shared"
	"github.com/vansales/backend/internal/infrastructure/auth"
)

// AuthHandler exchanges the shared API key for per-agent bearer tokens.
type AuthHandler struct {
	BaseHandler
	tokenService *auth.TokenService
	agentService *inventoryapp.AgentService
	apiKey       string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(tokenService *auth.TokenService, agentService *inventoryapp.AgentService, apiKey string) *AuthHandler {
	return &AuthHandler{
		tokenService: tokenService,
		agentService: agentService,
		apiKey:       apiKey,
	}
}

// TokenRequest is the credential pair presented at POST /auth/token.
type TokenRequest struct {
	AgentID uuid.UUID `json:"agent_id" binding:"required"`
	APIKey  string    `json:"api_key" binding:"required"`
}

// TokenResponse carries an issued bearer token and the agent it names.
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	AgentID   uuid.UUID `json:"agent_id"`
	AgentName string    `json:"agent_name"`
}

// IssueToken handles POST /auth/token. The caller presents the shared API
// key together with an agent id and receives a token scoped to that agent.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.apiKey)) != 1 {
		h.Unauthorized(c, "Invalid API key")
		return
	}

	agent, err := h.agentService.GetByID(c.Request.Context(), req.AgentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// An unknown agent id is a credential failure, not a lookup miss.
			h.Unauthorized(c, "Unknown agent")
			return
		}
		h.HandleError(c, err)
		return
	}
	if !agent.Active {
		h.Unauthorized(c, "Agent is deactivated")
		return
	}

	issued, err := h.tokenService.Generate(agent.ID, agent.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, TokenResponse{
		Token:     issued.Token,
		TokenType: issued.TokenType,
		ExpiresAt: issued.ExpiresAt,
		AgentID:   agent.ID,
		AgentName: agent.Name,
	})
}
