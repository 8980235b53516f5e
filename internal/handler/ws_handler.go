package handler

import (
	"net/http"

	"ideaboard/internal/auth"
	"ideaboard/internal/notify"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WSHandler streams undo toasts to the browser. Browsers cannot set headers
// on a websocket handshake, so the token comes in the query string.
type WSHandler struct {
	hub    *notify.Hub
	tokens *auth.TokenIssuer
	logger *zap.Logger
}

func NewWSHandler(hub *notify.Hub, tokens *auth.TokenIssuer, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{hub: hub, tokens: tokens, logger: logger}
}

// Connect godoc
// @Summary      Toast stream
// @Description  Upgrades to a websocket that receives toast and error events for the caller.
// @Tags         Actions
// @Param        token query string true "JWT access token"
// @Success      101
// @Failure      401 {object} map[string]string
// @Router       /ws [get]
func (h *WSHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}

	userID, err := h.tokens.Parse(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	if err := h.hub.Serve(c.Writer, c.Request, userID); err != nil {
		h.logger.Warn("WebSocket upgrade failed",
			zap.String("userId", userID.String()),
			zap.Error(err),
		)
	}
}
