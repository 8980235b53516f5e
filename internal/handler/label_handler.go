package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ideaboard/internal/model"
	"ideaboard/internal/repository"
	"ideaboard/internal/service"
)

// CreateLabelRequest defines the expected request body for creating a label
type CreateLabelRequest struct {
	BoardID string `json:"board_id" binding:"required,uuid"`
	Name    string `json:"name" binding:"required"`
	Color   string `json:"color" binding:"required,hexcolor"`
}

// UpdateLabelRequest defines the expected request body for updating a label
type UpdateLabelRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color" binding:"required,hexcolor"`
}

type LabelResponse struct {
	ID      string `json:"id"`
	BoardID string `json:"board_id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
}

func newLabelResponse(label *model.Label) LabelResponse {
	return LabelResponse{
		ID:      label.ID.String(),
		BoardID: label.BoardID.String(),
		Name:    label.Name,
		Color:   label.Color,
	}
}

// LabelHandler handles label-related HTTP requests
type LabelHandler struct {
	labelRepo *repository.LabelRepository
	access    *service.AccessService
}

// NewLabelHandler creates a new LabelHandler instance
func NewLabelHandler(labelRepo *repository.LabelRepository, access *service.AccessService) *LabelHandler {
	return &LabelHandler{
		labelRepo: labelRepo,
		access:    access,
	}
}

// loadLabel resolves the :id label with the given role on its board.
func (h *LabelHandler) loadLabel(c *gin.Context, role model.Role, forbidden string) (*model.Label, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	labelID, ok := pathID(c, "id", "label")
	if !ok {
		return nil, false
	}

	label, err := h.labelRepo.GetByID(c.Request.Context(), labelID)
	if errors.Is(err, repository.ErrLabelNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Label not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve label"})
		return nil, false
	}

	if err := h.access.Check(c.Request.Context(), label.BoardID, userID, role); err != nil {
		respondError(c, err, "Board not found", forbidden, "Failed to check access")
		return nil, false
	}
	return label, true
}

// Create godoc
// @Summary      Create a label on a board
// @Tags         Labels
// @Accept       json
// @Produce      json
// @Param        request body CreateLabelRequest true "Label"
// @Success      201 {object} LabelResponse
// @Failure      403 {object} map[string]string
// @Failure      409 {object} map[string]string
// @Router       /labels [post]
// @Security     BearerAuth
func (h *LabelHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	boardID := uuid.MustParse(req.BoardID)

	if err := h.access.Check(c.Request.Context(), boardID, userID, model.RoleEditor); err != nil {
		respondError(c, err, "Board not found", "You don't have permission to create labels for this board", "Failed to check access")
		return
	}

	label := &model.Label{
		BoardID: boardID,
		Name:    req.Name,
		Color:   req.Color,
	}
	if err := h.labelRepo.Create(c.Request.Context(), label); err != nil {
		if errors.Is(err, repository.ErrLabelExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "A label with this name already exists on the board"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create label"})
		return
	}

	c.JSON(http.StatusCreated, newLabelResponse(label))
}

// GetByID godoc
// @Summary      Get a label
// @Tags         Labels
// @Produce      json
// @Param        id path string true "Label ID"
// @Success      200 {object} LabelResponse
// @Failure      404 {object} map[string]string
// @Router       /labels/{id} [get]
// @Security     BearerAuth
func (h *LabelHandler) GetByID(c *gin.Context) {
	label, ok := h.loadLabel(c, model.RoleViewer, "You don't have permission to view this label")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newLabelResponse(label))
}

// GetByBoardID godoc
// @Summary      List the labels of a board
// @Tags         Labels
// @Produce      json
// @Param        id path string true "Board ID"
// @Success      200 {array} LabelResponse
// @Router       /boards/{id}/labels [get]
// @Security     BearerAuth
func (h *LabelHandler) GetByBoardID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := pathID(c, "id", "board")
	if !ok {
		return
	}

	if err := h.access.Check(c.Request.Context(), boardID, userID, model.RoleViewer); err != nil {
		respondError(c, err, "Board not found", "You don't have permission to view labels for this board", "Failed to check access")
		return
	}

	labels, err := h.labelRepo.GetByBoardID(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve labels"})
		return
	}

	response := make([]LabelResponse, len(labels))
	for i := range labels {
		response[i] = newLabelResponse(&labels[i])
	}

	c.JSON(http.StatusOK, response)
}

// Update godoc
// @Summary      Rename or recolor a label
// @Tags         Labels
// @Accept       json
// @Produce      json
// @Param        id path string true "Label ID"
// @Param        request body UpdateLabelRequest true "Label"
// @Success      200 {object} LabelResponse
// @Failure      409 {object} map[string]string
// @Router       /labels/{id} [put]
// @Security     BearerAuth
func (h *LabelHandler) Update(c *gin.Context) {
	label, ok := h.loadLabel(c, model.RoleEditor, "You don't have permission to update this label")
	if !ok {
		return
	}

	var req UpdateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	label.Name = req.Name
	label.Color = req.Color
	if err := h.labelRepo.Update(c.Request.Context(), label); err != nil {
		if errors.Is(err, repository.ErrLabelExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "A label with this name already exists on the board"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update label"})
		return
	}

	c.JSON(http.StatusOK, newLabelResponse(label))
}

// Delete godoc
// @Summary      Delete a label
// @Tags         Labels
// @Produce      json
// @Param        id path string true "Label ID"
// @Success      200 {object} map[string]string
// @Router       /labels/{id} [delete]
// @Security     BearerAuth
func (h *LabelHandler) Delete(c *gin.Context) {
	label, ok := h.loadLabel(c, model.RoleEditor, "You don't have permission to delete this label")
	if !ok {
		return
	}

	if err := h.labelRepo.Delete(c.Request.Context(), label.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete label"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Label deleted successfully"})
}

// GetTasksWithLabel godoc
// @Summary      List visible tasks carrying a label
// @Tags         Labels
// @Produce      json
// @Param        id path string true "Label ID"
// @Success      200 {array} map[string]interface{}
// @Router       /labels/{id}/tasks [get]
// @Security     BearerAuth
func (h *LabelHandler) GetTasksWithLabel(c *gin.Context) {
	label, ok := h.loadLabel(c, model.RoleViewer, "You don't have permission to view this label")
	if !ok {
		return
	}

	tasks, err := h.labelRepo.GetTasksWithLabel(c.Request.Context(), label.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := make([]gin.H, len(tasks))
	for i, task := range tasks {
		response[i] = gin.H{
			"id":        task.ID.String(),
			"title":     task.Title,
			"column_id": task.ColumnID.String(),
			"position":  task.Position,
		}
	}

	c.JSON(http.StatusOK, response)
}
