package service

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Saoudyahya/tournament-stream-relay/internal/logging"
	"github.com/Saoudyahya/tournament-stream-relay/internal/models"
)

const chatNotConfigured = "Chat service not configured: set STREAM_API_KEY and STREAM_API_SECRET"

// TokenIssuer signs chat user tokens. *chat.TokenIssuer implements it.
type TokenIssuer interface {
	CreateToken(userID string) (string, error)
	APIKey() string
}

type ChatHandler struct {
	issuer TokenIssuer
	logger zerolog.Logger
}

// NewChatHandler accepts a nil issuer when chat credentials are absent; token
// requests then fail with a configuration error.
func NewChatHandler(issuer TokenIssuer) *ChatHandler {
	return &ChatHandler{
		issuer: issuer,
		logger: logging.WithComponent("chat-handler"),
	}
}

func (h *ChatHandler) CreateToken(c *gin.Context) {
	var req models.ChatTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "userId and username are required"})
		return
	}

	if h.issuer == nil {
		h.logger.Error().Msg("chat token requested but chat credentials are not configured")
		c.JSON(500, gin.H{"error": chatNotConfigured})
		return
	}

	token, err := h.issuer.CreateToken(req.UserID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", req.UserID).Msg("failed to create chat token")
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	h.logger.Debug().Str("user_id", req.UserID).Str("username", req.Username).Msg("chat token issued")
	c.JSON(200, models.ChatTokenResponse{Token: token, APIKey: h.issuer.APIKey()})
}
