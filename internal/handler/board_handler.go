package handler

import (
	"net/http"

	"ideaboard/internal/model"
	"ideaboard/internal/repository"
	"ideaboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const MaxBoardsPerUser = 5

type BoardHandler struct {
	boardRepo *repository.BoardRepository
	access    *service.AccessService
}

func NewBoardHandler(boardRepo *repository.BoardRepository, access *service.AccessService) *BoardHandler {
	return &BoardHandler{
		boardRepo: boardRepo,
		access:    access,
	}
}

type CreateBoardRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	IdeaID      *string `json:"idea_id" binding:"omitempty,uuid"`
}

type BoardResponse struct {
	ID          string  `json:"id"`
	IdeaID      *string `json:"idea_id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	OwnerID     string  `json:"owner_id"`
	CreatedAt   string  `json:"created_at"`
}

type UpdateBoardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func newBoardResponse(board *model.Board) BoardResponse {
	resp := BoardResponse{
		ID:          board.ID.String(),
		Title:       board.Title,
		Description: board.Description,
		OwnerID:     board.OwnerID.String(),
		CreatedAt:   board.CreatedAt.Format(http.TimeFormat),
	}
	if board.IdeaID != nil {
		idea := board.IdeaID.String()
		resp.IdeaID = &idea
	}
	return resp
}

// Create godoc
// @Summary      Create a board
// @Tags         Boards
// @Accept       json
// @Produce      json
// @Param        request body CreateBoardRequest true "Board"
// @Success      201 {object} BoardResponse
// @Failure      400 {object} map[string]string
// @Failure      403 {object} map[string]string
// @Failure      409 {object} map[string]string
// @Router       /boards [post]
// @Security     BearerAuth
func (h *BoardHandler) Create(c *gin.Context) {
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	// Check if user already has the maximum number of boards
	count, err := h.boardRepo.CountOwned(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check board count"})
		return
	}
	if count >= MaxBoardsPerUser {
		c.JSON(http.StatusForbidden, gin.H{"error": "Maximum number of boards reached (5)"})
		return
	}

	var req CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	board := &model.Board{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     ownerID,
	}

	// An idea has at most one board
	if req.IdeaID != nil {
		ideaID := uuid.MustParse(*req.IdeaID)
		existing, err := h.boardRepo.GetByIdea(c.Request.Context(), ideaID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "This idea already has a board"})
			return
		}
		board.IdeaID = &ideaID
	}

	if err := h.boardRepo.Create(c.Request.Context(), board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create board"})
		return
	}

	c.JSON(http.StatusCreated, newBoardResponse(board))
}

// GetAll godoc
// @Summary      List own boards
// @Tags         Boards
// @Produce      json
// @Success      200 {array} BoardResponse
// @Router       /boards [get]
// @Security     BearerAuth
func (h *BoardHandler) GetAll(c *gin.Context) {
	ownerID, ok := currentUser(c)
	if !ok {
		return
	}

	boards, err := h.boardRepo.GetOwned(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve boards"})
		return
	}

	response := make([]BoardResponse, len(boards))
	for i := range boards {
		response[i] = newBoardResponse(&boards[i])
	}

	c.JSON(http.StatusOK, response)
}

// GetByID godoc
// @Summary      Get a board
// @Tags         Boards
// @Produce      json
// @Param        id path string true "Board ID"
// @Success      200 {object} BoardResponse
// @Failure      403 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /boards/{id} [get]
// @Security     BearerAuth
func (h *BoardHandler) GetByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id", "board")
	if !ok {
		return
	}

	if err := h.access.Check(c.Request.Context(), boardID, userID, model.RoleViewer); err != nil {
		respondError(c, err, "Board not found", "You don't have permission to access this board", "Failed to retrieve board")
		return
	}

	board, err := h.boardRepo.GetByID(c.Request.Context(), boardID)
	if err != nil || board == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}

	c.JSON(http.StatusOK, newBoardResponse(board))
}

// Update godoc
// @Summary      Update a board
// @Tags         Boards
// @Accept       json
// @Produce      json
// @Param        id path string true "Board ID"
// @Param        request body UpdateBoardRequest true "Fields to change"
// @Success      200 {object} BoardResponse
// @Failure      403 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /boards/{id} [put]
// @Security     BearerAuth
func (h *BoardHandler) Update(c *gin.Context) {
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

	// Only the owner edits board details
	if board.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to update this board"})
		return
	}

	var req UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Title != "" {
		board.Title = req.Title
	}
	if req.Description != "" {
		board.Description = req.Description
	}

	if err := h.boardRepo.Update(c.Request.Context(), board); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update board"})
		return
	}

	c.JSON(http.StatusOK, newBoardResponse(board))
}
