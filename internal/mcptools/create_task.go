package mcptools

import (
	"context"
	"fmt"

	"ideaboard/internal/model"

	"github.com/mark3labs/mcp-go/mcp"
)

// CreateTaskTool handles the create_task MCP tool.
type CreateTaskTool struct {
	board *Board
}

func NewCreateTaskTool(board *Board) *CreateTaskTool {
	return &CreateTaskTool{board: board}
}

// Definition returns the MCP tool definition for create_task.
func (t *CreateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("create_task",
		mcp.WithDescription("Create a task in a column. Without an index it goes to the bottom."),
		mcp.WithString("column_id",
			mcp.Required(),
			mcp.Description("Column ID from list_board"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Task title"),
		),
		mcp.WithString("description",
			mcp.Description("Optional task description"),
		),
		mcp.WithNumber("index",
			mcp.Description("Zero-based slot among the visible tasks of the column"),
		),
	)
}

// Handle processes the create_task tool call.
func (t *CreateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	columnID, err := uuidArg(req, "column_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	column, err := t.board.Access.Column(ctx, columnID, t.board.Actor, model.RoleEditor)
	if err != nil {
		return errorResult(err, "column"), nil
	}

	task := &model.Task{
		ColumnID:    column.ID,
		Title:       title,
		Description: req.GetString("description", ""),
		CreatedBy:   t.board.Actor,
	}
	if index := intArg(req, "index", -1); index >= 0 {
		err = t.board.Ordering.InsertTask(ctx, task, index)
	} else {
		err = t.board.Ordering.AppendTask(ctx, task)
	}
	if err != nil {
		return errorResult(err, "column"), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Task created: %q in %s\nID: %s", task.Title, column.Title, task.ID)), nil
}
