package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ideaboard/internal/middleware"
	"ideaboard/internal/model"
	"ideaboard/internal/repository"
	"ideaboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	taskRepo  *repository.TaskRepository
	labelRepo *repository.LabelRepository
	userRepo  repository.UserRepositoryInterface
	access    *service.AccessService
	ordering  *service.OrderingService
	actions   *service.ActionService
}

func NewTaskHandler(
	taskRepo *repository.TaskRepository,
	labelRepo *repository.LabelRepository,
	userRepo repository.UserRepositoryInterface,
	access *service.AccessService,
	ordering *service.OrderingService,
	actions *service.ActionService,
) *TaskHandler {
	return &TaskHandler{
		taskRepo:  taskRepo,
		labelRepo: labelRepo,
		userRepo:  userRepo,
		access:    access,
		ordering:  ordering,
		actions:   actions,
	}
}

// TaskRequest creates a task. Without an index the task goes to the bottom
// of the column.
type TaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	ColumnID    string     `json:"column_id" binding:"required,uuid"`
	DueDate     *time.Time `json:"due_date"`
	Index       *int       `json:"index" binding:"omitempty,min=0"`
}

type UpdateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TaskMoveRequest places a task at a slot of the visible task list of a
// column, which may be the one it is in.
type TaskMoveRequest struct {
	ColumnID string `json:"column_id" binding:"required,uuid"`
	Index    *int   `json:"index" binding:"required,min=0"`
}

type TaskAssignRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

type TaskDueDateRequest struct {
	DueDate *time.Time `json:"due_date"`
}

type TaskResponse struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	ColumnID     string          `json:"column_id"`
	AssignedTo   *string         `json:"assigned_to,omitempty"`
	AssigneeName *string         `json:"assignee_name,omitempty"`
	CreatedBy    string          `json:"created_by"`
	CreatorName  string          `json:"creator_name"`
	DueDate      *string         `json:"due_date,omitempty"`
	Position     int             `json:"position"`
	Labels       []LabelResponse `json:"labels,omitempty"`
}

// taskResponse fills in creator and assignee names. names caches lookups
// across a listing.
func (h *TaskHandler) taskResponse(ctx context.Context, task *model.Task, names map[uuid.UUID]string) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		ColumnID:    task.ColumnID.String(),
		CreatedBy:   task.CreatedBy.String(),
		CreatorName: h.userName(ctx, task.CreatedBy, names),
		Position:    task.Position,
	}
	if task.AssignedTo != nil {
		id := task.AssignedTo.String()
		name := h.userName(ctx, *task.AssignedTo, names)
		resp.AssignedTo = &id
		resp.AssigneeName = &name
	}
	if task.DueDate != nil {
		due := task.DueDate.Format(time.RFC3339)
		resp.DueDate = &due
	}
	for i := range task.Labels {
		resp.Labels = append(resp.Labels, newLabelResponse(&task.Labels[i]))
	}
	return resp
}

func (h *TaskHandler) userName(ctx context.Context, id uuid.UUID, names map[uuid.UUID]string) string {
	if name, ok := names[id]; ok {
		return name
	}
	var name string
	if user, err := h.userRepo.GetByID(ctx, id); err == nil && user != nil {
		name = user.Name
	}
	names[id] = name
	return name
}

// loadTask resolves the :id task with the given role or writes the error.
func (h *TaskHandler) loadTask(c *gin.Context, role model.Role, forbidden string) (*model.Task, *model.Column, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return nil, nil, false
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return nil, nil, false
	}
	task, column, err := h.access.Task(c.Request.Context(), taskID, userID, role)
	if err != nil {
		respondError(c, err, "Task not found", forbidden, "Failed to retrieve task")
		return nil, nil, false
	}
	return task, column, true
}

// Create godoc
// @Summary      Create a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        request body TaskRequest true "Task"
// @Success      201 {object} TaskResponse
// @Failure      400 {object} map[string]string
// @Failure      403 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /tasks [post]
// @Security     BearerAuth
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	column, err := h.access.Column(c.Request.Context(), uuid.MustParse(req.ColumnID), userID, model.RoleEditor)
	if err != nil {
		respondError(c, err, "Column not found", "You don't have permission to create tasks on this board", "Failed to retrieve column")
		return
	}

	task := &model.Task{
		ColumnID:    column.ID,
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   userID,
		DueDate:     req.DueDate,
	}

	if req.Index != nil {
		err = h.ordering.InsertTask(c.Request.Context(), task, *req.Index)
	} else {
		err = h.ordering.AppendTask(c.Request.Context(), task)
	}
	if err != nil {
		respondError(c, err, "Column not found", "Forbidden", "Failed to create task")
		return
	}

	c.JSON(http.StatusCreated, h.taskResponse(c.Request.Context(), task, map[uuid.UUID]string{}))
}

// GetByID godoc
// @Summary      Get a task
// @Tags         Tasks
// @Produce      json
// @Param        id path string true "Task ID"
// @Success      200 {object} TaskResponse
// @Failure      404 {object} map[string]string
// @Router       /tasks/{id} [get]
// @Security     BearerAuth
func (h *TaskHandler) GetByID(c *gin.Context) {
	task, _, ok := h.loadTask(c, model.RoleViewer, "You don't have permission to view this task")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.taskResponse(c.Request.Context(), task, map[uuid.UUID]string{}))
}

// GetByColumnID godoc
// @Summary      List the tasks of a column
// @Tags         Tasks
// @Produce      json
// @Param        id path string true "Column ID"
// @Success      200 {array} TaskResponse
// @Failure      404 {object} map[string]string
// @Router       /columns/{id}/tasks [get]
// @Security     BearerAuth
func (h *TaskHandler) GetByColumnID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	columnID, ok := pathID(c, "id", "column")
	if !ok {
		return
	}

	if _, err := h.access.Column(c.Request.Context(), columnID, userID, model.RoleViewer); err != nil {
		respondError(c, err, "Column not found", "You don't have permission to view tasks on this board", "Failed to retrieve column")
		return
	}

	tasks, err := h.taskRepo.GetByColumnID(c.Request.Context(), columnID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	names := map[uuid.UUID]string{}
	response := make([]TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = h.taskResponse(c.Request.Context(), &tasks[i], names)
	}

	c.JSON(http.StatusOK, response)
}

// Update godoc
// @Summary      Edit task details
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id path string true "Task ID"
// @Param        request body UpdateTaskRequest true "Fields to change"
// @Success      200 {object} TaskResponse
// @Failure      404 {object} map[string]string
// @Router       /tasks/{id} [put]
// @Security     BearerAuth
func (h *TaskHandler) Update(c *gin.Context) {
	task, _, ok := h.loadTask(c, model.RoleEditor, "You don't have permission to update this task")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Description != "" {
		task.Description = req.Description
	}

	if err := h.taskRepo.UpdateDetails(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	c.JSON(http.StatusOK, h.taskResponse(c.Request.Context(), task, map[uuid.UUID]string{}))
}

// Delete godoc
// @Summary      Delete a task with an undo window
// @Tags         Tasks
// @Produce      json
// @Param        id path string true "Task ID"
// @Success      202 {object} ActionResponse
// @Failure      404 {object} map[string]string
// @Router       /tasks/{id} [delete]
// @Security     BearerAuth
func (h *TaskHandler) Delete(c *gin.Context) {
	task, _, ok := h.loadTask(c, model.RoleEditor, "You don't have permission to delete this task")
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)

	action, err := h.actions.DeleteTask(c.Request.Context(), task.ID, userID)
	if err != nil {
		respondError(c, err, "Task not found", "Forbidden", "Failed to delete task")
		return
	}

	c.JSON(http.StatusAccepted, newActionResponse(action))
}

// Archive godoc
// @Summary      Archive a task with an undo window
// @Tags         Tasks
// @Produce      json
// @Param        id path string true "Task ID"
// @Success      202 {object} ActionResponse
// @Failure      404 {object} map[string]string
// @Router       /tasks/{id}/archive [post]
// @Security     BearerAuth
func (h *TaskHandler) Archive(c *gin.Context) {
	task, _, ok := h.loadTask(c, model.RoleEditor, "You don't have permission to archive this task")
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)

	action, err := h.actions.ArchiveTask(c.Request.Context(), task.ID, userID)
	if err != nil {
		respondError(c, err, "Task not found", "Forbidden", "Failed to archive task")
		return
	}

	c.JSON(http.StatusAccepted, newActionResponse(action))
}

// MoveTask godoc
// @Summary      Move a task within or across columns
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id path string true "Task ID"
// @Param        request body TaskMoveRequest true "Target column and slot"
// @Success      200 {object} TaskResponse
// @Failure      400 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /tasks/{id}/move [post]
// @Security     BearerAuth
func (h *TaskHandler) MoveTask(c *gin.Context) {
	task, column, ok := h.loadTask(c, model.RoleEditor, "You don't have permission to move this task")
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)

	var req TaskMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	target := column
	if targetID := uuid.MustParse(req.ColumnID); targetID != column.ID {
		var err error
		target, err = h.access.Column(c.Request.Context(), targetID, userID, model.RoleEditor)
		if err != nil {
			respondError(c, err, "Target column not found", "You don't have permission to move this task", "Failed to retrieve target column")
			return
		}
		if target.BoardID != column.BoardID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot move task to a column from another board"})
			return
		}
	}

	if err := h.ordering.MoveTask(c.Request.Context(), task, target.ID, *req.Index); err != nil {
		respondError(c, err, "Task not found", "Forbidden", "Failed to move task")
		return
	}

	c.JSON(http.StatusOK, h.taskResponse(c.Request.Context(), task, map[uuid.UUID]string{}))
}

// AssignUser godoc
// @Summary      Assign a board member to a task
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id path string true "Task ID"
// @Param        request body TaskAssignRequest true "Assignee"
// @Success      200 {object} TaskResponse
// @Failure      400 {object} map[string]string
// @Failure      404 {object} map[string]string
// @Router       /tasks/{id}/assign [post]
// @Security     BearerAuth
func (h *TaskHandler) AssignUser(c *gin.Context) {
	task, column, ok := h.loadTask(c, model.RoleEditor, "You don't have permission to assign users to this task")
	if !ok {
		return
	}

	var req TaskAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	assigneeID := uuid.MustParse(req.UserID)

	assignee, err := h.userRepo.GetByID(c.Request.Context(), assigneeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}
	if assignee == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Only people who can see the board can be assigned
	if err := h.access.Check(c.Request.Context(), column.BoardID, assigneeID, model.RoleViewer); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User is not a member of this board"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return
	}

	if err := h.taskRepo.AssignUser(c.Request.Context(), task.ID, assigneeID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign user to task"})
		return
	}
	task.AssignedTo = &assigneeID

	c.JSON(http.StatusOK, h.taskResponse(c.Request.Context(), task, map[uuid.UUID]string{assigneeID: assignee.Name}))
}

// UnassignUser godoc
// @Summary      Clear the assignee of a task
// @Tags         Tasks
// @Produce      json
// @Param        id path string true "Task ID"
// @Success      200 {object} map[string]string
// @Router       /tasks/{id}/assign [delete]
// @Security     BearerAuth
func (h *TaskHandler) UnassignUser(c *gin.Context) {
	task, _, ok := h.loadTask(c, model.RoleEditor, "You don't have permission to modify this task")
	if !ok {
		return
	}

	if err := h.taskRepo.UnassignUser(c.Request.Context(), task.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unassign user from task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unassigned successfully"})
}

// labelForTask loads the :label_id label and checks it belongs to the board
// of column.
func (h *TaskHandler) labelForTask(c *gin.Context, column *model.Column) (*model.Label, bool) {
	labelID, ok := pathID(c, "label_id", "label")
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
	if label.BoardID != column.BoardID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Label belongs to another board"})
		return nil, false
	}
	return label, true
}

// AddLabel godoc
// @Summary      Attach a label to a task
// @Tags         Tasks
// @Produce      json
// @Param        id path string true "Task ID"
// @Param        label_id path string true "Label ID"
// @Success      200 {object} map[string]string
// @Router       /tasks/{id}/labels/{label_id} [post]
// @Security     BearerAuth
func (h *TaskHandler) AddLabel(c *gin.Context) {
	task, column, ok := h.loadTask(c, model.RoleEditor, "You don't have permission to add labels to this task")
	if !ok {
		return
	}
	label, ok := h.labelForTask(c, column)
	if !ok {
		return
	}

	if err := h.taskRepo.AddLabel(c.Request.Context(), task.ID, label.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add label to task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Label added to task successfully"})
}

// RemoveLabel godoc
// @Summary      Detach a label from a task
// @Tags         Tasks
// @Produce      json
// @Param        id path string true "Task ID"
// @Param        label_id path string true "Label ID"
// @Success      200 {object} map[string]string
// @Router       /tasks/{id}/labels/{label_id} [delete]
// @Security     BearerAuth
func (h *TaskHandler) RemoveLabel(c *gin.Context) {
	task, column, ok := h.loadTask(c, model.RoleEditor, "You don't have permission to remove labels from this task")
	if !ok {
		return
	}
	label, ok := h.labelForTask(c, column)
	if !ok {
		return
	}

	if err := h.taskRepo.RemoveLabel(c.Request.Context(), task.ID, label.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove label from task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Label removed from task successfully"})
}

// GetTaskLabels godoc
// @Summary      List the labels of a task
// @Tags         Tasks
// @Produce      json
// @Param        id path string true "Task ID"
// @Success      200 {array} LabelResponse
// @Router       /tasks/{id}/labels [get]
// @Security     BearerAuth
func (h *TaskHandler) GetTaskLabels(c *gin.Context) {
	task, _, ok := h.loadTask(c, model.RoleViewer, "You don't have permission to view this task's labels")
	if !ok {
		return
	}

	labels, err := h.labelRepo.GetByTaskID(c.Request.Context(), task.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task labels"})
		return
	}

	response := make([]LabelResponse, len(labels))
	for i := range labels {
		response[i] = newLabelResponse(&labels[i])
	}

	c.JSON(http.StatusOK, response)
}

// SetDueDate godoc
// @Summary      Set or clear the due date
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        id path string true "Task ID"
// @Param        request body TaskDueDateRequest true "Due date, null clears it"
// @Success      200 {object} TaskResponse
// @Router       /tasks/{id}/due-date [post]
// @Security     BearerAuth
func (h *TaskHandler) SetDueDate(c *gin.Context) {
	task, _, ok := h.loadTask(c, model.RoleEditor, "You don't have permission to modify this task")
	if !ok {
		return
	}

	var req TaskDueDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.taskRepo.SetDueDate(c.Request.Context(), task.ID, req.DueDate); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task due date"})
		return
	}
	task.DueDate = req.DueDate

	c.JSON(http.StatusOK, h.taskResponse(c.Request.Context(), task, map[uuid.UUID]string{}))
}
