package handler

import (
	"errors"
	"net/http"

	"ideaboard/internal/model"
	"ideaboard/internal/repository"
	"ideaboard/internal/service"

	"github.com/gin-gonic/gin"
)

type BoardShareHandler struct {
	boardRepo      *repository.BoardRepository
	userRepo       repository.UserRepositoryInterface
	boardShareRepo *repository.BoardShareRepository
	access         *service.AccessService
}

func NewBoardShareHandler(
	boardRepo *repository.BoardRepository,
	userRepo repository.UserRepositoryInterface,
	boardShareRepo *repository.BoardShareRepository,
	access *service.AccessService,
) *BoardShareHandler {
	return &BoardShareHandler{
		boardRepo:      boardRepo,
		userRepo:       userRepo,
		boardShareRepo: boardShareRepo,
		access:         access,
	}
}

type ShareBoardRequest struct {
	Email string     `json:"email" binding:"required,email"`
	Role  model.Role `json:"role" binding:"required,oneof=viewer editor"`
}

// BoardShareResponse is one member of a board, the owner included.
type BoardShareResponse struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	IsOwner bool   `json:"is_owner"`
	IsBot   bool   `json:"is_bot"`
}

// ShareBoard godoc
// @Summary      Share a board by email
// @Tags         Board Sharing
// @Accept       json
// @Produce      json
// @Param        id path string true "Board ID"
// @Param        request body ShareBoardRequest true "Member"
// @Success      200 {object} map[string]interface{}
// @Failure      403 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /boards/{id}/share [post]
// @Security     BearerAuth
func (h *BoardShareHandler) ShareBoard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id", "board")
	if !ok {
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	if board.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the board owner can share the board"})
		return
	}

	var req ShareBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	target, err := h.userRepo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find user"})
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if target.ID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot share board with yourself"})
		return
	}

	if err := h.boardShareRepo.ShareBoard(c.Request.Context(), boardID, target.ID, req.Role); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to share board"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Board shared successfully",
		"share": BoardShareResponse{
			UserID: target.ID.String(),
			Email:  target.Email,
			Name:   target.Name,
			Role:   string(req.Role),
			IsBot:  target.IsBot,
		},
	})
}

// RemoveShare godoc
// @Summary      Revoke a member
// @Tags         Board Sharing
// @Produce      json
// @Param        id path string true "Board ID"
// @Param        user_id path string true "User ID"
// @Success      200 {object} map[string]string
// @Failure      403 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /boards/{id}/share/{user_id} [delete]
// @Security     BearerAuth
func (h *BoardShareHandler) RemoveShare(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id", "board")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "user_id", "user")
	if !ok {
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}
	if board == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return
	}
	if board.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the board owner can remove access"})
		return
	}

	if err := h.boardShareRepo.RemoveShare(c.Request.Context(), boardID, memberID); err != nil {
		if errors.Is(err, repository.ErrShareNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User is not a member of this board"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove share"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Board access removed successfully"})
}

// GetBoardShares godoc
// @Summary      List board members
// @Tags         Board Sharing
// @Produce      json
// @Param        id path string true "Board ID"
// @Success      200 {array} BoardShareResponse
// @Failure      403 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /boards/{id}/share [get]
// @Security     BearerAuth
func (h *BoardShareHandler) GetBoardShares(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id", "board")
	if !ok {
		return
	}

	if err := h.access.Check(c.Request.Context(), boardID, userID, model.RoleViewer); err != nil {
		respondError(c, err, "Board not found", "You don't have access to this board", "Failed to check access")
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil || board == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}

	shares, err := h.boardShareRepo.GetBoardShares(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board shares"})
		return
	}

	response := make([]BoardShareResponse, 0, len(shares)+1)

	owner, err := h.userRepo.GetByID(c.Request.Context(), board.OwnerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board owner"})
		return
	}
	if owner != nil {
		response = append(response, BoardShareResponse{
			UserID:  owner.ID.String(),
			Email:   owner.Email,
			Name:    owner.Name,
			Role:    "owner",
			IsOwner: true,
			IsBot:   owner.IsBot,
		})
	}

	for _, share := range shares {
		response = append(response, BoardShareResponse{
			UserID: share.UserID.String(),
			Email:  share.User.Email,
			Name:   share.User.Name,
			Role:   string(share.Role),
			IsBot:  share.User.IsBot,
		})
	}

	c.JSON(http.StatusOK, response)
}

// GetSharedBoards godoc
// @Summary      Boards shared with me
// @Tags         Board Sharing
// @Produce      json
// @Success      200 {array} BoardResponse
// @Router       /shared-boards [get]
// @Security     BearerAuth
func (h *BoardShareHandler) GetSharedBoards(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	boards, err := h.boardShareRepo.GetSharedBoards(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve shared boards"})
		return
	}

	response := make([]BoardResponse, len(boards))
	for i := range boards {
		response[i] = newBoardResponse(&boards[i])
	}

	c.JSON(http.StatusOK, response)
}
