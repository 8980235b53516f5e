package handler

import (
	"net/http"

	"ideaboard/internal/model"
	"ideaboard/internal/repository"
	"ideaboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ColumnHandler struct {
	columnRepo *repository.ColumnRepository
	access     *service.AccessService
	ordering   *service.OrderingService
	actions    *service.ActionService
}

func NewColumnHandler(
	columnRepo *repository.ColumnRepository,
	access *service.AccessService,
	ordering *service.OrderingService,
	actions *service.ActionService,
) *ColumnHandler {
	return &ColumnHandler{
		columnRepo: columnRepo,
		access:     access,
		ordering:   ordering,
		actions:    actions,
	}
}

type CreateColumnRequest struct {
	Title   string `json:"title" binding:"required"`
	BoardID string `json:"board_id" binding:"required,uuid"`
}

type UpdateColumnRequest struct {
	Title string `json:"title" binding:"required"`
}

// MoveColumnRequest places a column at a slot of the visible column list.
type MoveColumnRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

type ColumnResponse struct {
	ID       string `json:"id"`
	BoardID  string `json:"board_id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

func newColumnResponse(column *model.Column) ColumnResponse {
	return ColumnResponse{
		ID:       column.ID.String(),
		BoardID:  column.BoardID.String(),
		Title:    column.Title,
		Position: column.Position,
	}
}

// Create godoc
// @Summary      Add a column at the end of a board
// @Tags         Columns
// @Accept       json
// @Produce      json
// @Param        request body CreateColumnRequest true "Column"
// @Success      201 {object} ColumnResponse
// @Failure      403 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /columns [post]
// @Security     BearerAuth
func (h *ColumnHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	boardID := uuid.MustParse(req.BoardID)

	if err := h.access.Check(c.Request.Context(), boardID, userID, model.RoleEditor); err != nil {
		respondError(c, err, "Board not found", "You don't have permission to add columns to this board", "Failed to check board access")
		return
	}

	column := &model.Column{BoardID: boardID, Title: req.Title}
	if err := h.ordering.AppendColumn(c.Request.Context(), column); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create column"})
		return
	}

	c.JSON(http.StatusCreated, newColumnResponse(column))
}

// GetAll godoc
// @Summary      List the columns of a board
// @Tags         Columns
// @Produce      json
// @Param        id path string true "Board ID"
// @Success      200 {array} ColumnResponse
// @Failure      403 {object} map[string]string
// @Router       /boards/{id}/columns [get]
// @Security     BearerAuth
func (h *ColumnHandler) GetAll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id", "board")
	if !ok {
		return
	}

	if err := h.access.Check(c.Request.Context(), boardID, userID, model.RoleViewer); err != nil {
		respondError(c, err, "Board not found", "You don't have permission to view this board", "Failed to check board access")
		return
	}

	columns, err := h.columnRepo.GetByBoardID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve columns"})
		return
	}

	response := make([]ColumnResponse, len(columns))
	for i := range columns {
		response[i] = newColumnResponse(&columns[i])
	}

	c.JSON(http.StatusOK, response)
}

// GetByID godoc
// @Summary      Get a column
// @Tags         Columns
// @Produce      json
// @Param        id path string true "Column ID"
// @Success      200 {object} ColumnResponse
// @Failure      404 {object} map[string]string
// @Router       /columns/{id} [get]
// @Security     BearerAuth
func (h *ColumnHandler) GetByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	columnID, ok := pathID(c, "id", "column")
	if !ok {
		return
	}

	column, err := h.access.Column(c.Request.Context(), columnID, userID, model.RoleViewer)
	if err != nil {
		respondError(c, err, "Column not found", "You don't have permission to view this column", "Failed to retrieve column")
		return
	}

	c.JSON(http.StatusOK, newColumnResponse(column))
}

// Update godoc
// @Summary      Rename a column
// @Tags         Columns
// @Accept       json
// @Produce      json
// @Param        id path string true "Column ID"
// @Param        request body UpdateColumnRequest true "Title"
// @Success      200 {object} ColumnResponse
// @Failure      404 {object} map[string]string
// @Router       /columns/{id} [put]
// @Security     BearerAuth
func (h *ColumnHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	columnID, ok := pathID(c, "id", "column")
	if !ok {
		return
	}

	column, err := h.access.Column(c.Request.Context(), columnID, userID, model.RoleEditor)
	if err != nil {
		respondError(c, err, "Column not found", "You don't have permission to update this column", "Failed to retrieve column")
		return
	}

	var req UpdateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.columnRepo.UpdateTitle(c.Request.Context(), column.ID, req.Title); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update column"})
		return
	}
	column.Title = req.Title

	c.JSON(http.StatusOK, newColumnResponse(column))
}

// Move godoc
// @Summary      Move a column to another slot
// @Tags         Columns
// @Accept       json
// @Produce      json
// @Param        id path string true "Column ID"
// @Param        request body MoveColumnRequest true "Target slot"
// @Success      200 {object} ColumnResponse
// @Failure      400 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /columns/{id}/move [post]
// @Security     BearerAuth
func (h *ColumnHandler) Move(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	columnID, ok := pathID(c, "id", "column")
	if !ok {
		return
	}

	var req MoveColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	column, err := h.access.Column(c.Request.Context(), columnID, userID, model.RoleEditor)
	if err != nil {
		respondError(c, err, "Column not found", "You don't have permission to reorder columns on this board", "Failed to retrieve column")
		return
	}

	if err := h.ordering.MoveColumn(c.Request.Context(), column, *req.Index); err != nil {
		respondError(c, err, "Column not found", "Forbidden", "Failed to move column")
		return
	}

	c.JSON(http.StatusOK, newColumnResponse(column))
}

// Delete godoc
// @Summary      Delete a column with an undo window
// @Description  The column disappears at once and is deleted with its tasks when the window closes.
// @Tags         Columns
// @Produce      json
// @Param        id path string true "Column ID"
// @Success      202 {object} ActionResponse
// @Failure      404 {object} map[string]string
// @Router       /columns/{id} [delete]
// @Security     BearerAuth
func (h *ColumnHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	columnID, ok := pathID(c, "id", "column")
	if !ok {
		return
	}

	if _, err := h.access.Column(c.Request.Context(), columnID, userID, model.RoleEditor); err != nil {
		respondError(c, err, "Column not found", "You don't have permission to delete this column", "Failed to retrieve column")
		return
	}

	action, err := h.actions.DeleteColumn(c.Request.Context(), columnID, userID)
	if err != nil {
		respondError(c, err, "Column not found", "Forbidden", "Failed to delete column")
		return
	}

	c.JSON(http.StatusAccepted, newActionResponse(action))
}
