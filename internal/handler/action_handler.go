package handler

import (
	"net/http"
	"time"

	"ideaboard/internal/service"
	"ideaboard/internal/undo"

	"github.com/gin-gonic/gin"
)

type ActionHandler struct {
	actions *service.ActionService
}

func NewActionHandler(actions *service.ActionService) *ActionHandler {
	return &ActionHandler{actions: actions}
}

// ActionResponse is returned for every undoable request. The change is
// already visible; it becomes permanent at expires_at unless undone.
type ActionResponse struct {
	ActionID    string `json:"action_id"`
	Message     string `json:"message"`
	ActionLabel string `json:"action_label"`
	ExpiresAt   string `json:"expires_at"`
}

func newActionResponse(a *undo.Action) ActionResponse {
	return ActionResponse{
		ActionID:    a.ID.String(),
		Message:     a.Message,
		ActionLabel: undo.ActionLabel,
		ExpiresAt:   a.Deadline.UTC().Format(time.RFC3339Nano),
	}
}

// Undo godoc
// @Summary      Undo a pending action
// @Tags         Actions
// @Produce      json
// @Param        id path string true "Action ID"
// @Success      200 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Failure      409 {object} map[string]string
// @Router       /actions/{id}/undo [post]
// @Security     BearerAuth
func (h *ActionHandler) Undo(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	actionID, ok := pathID(c, "id", "action")
	if !ok {
		return
	}

	if err := h.actions.Undo(actionID, userID); err != nil {
		respondError(c, err, "Action not found", "Action not found", "Failed to undo action")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Action undone"})
}

// Pending godoc
// @Summary      List my pending actions
// @Tags         Actions
// @Produce      json
// @Success      200 {array} service.PendingAction
// @Router       /actions [get]
// @Security     BearerAuth
func (h *ActionHandler) Pending(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.actions.Pending(userID))
}
