package mcptools

import (
	"context"
	"fmt"

	"ideaboard/internal/model"

	"github.com/mark3labs/mcp-go/mcp"
)

// MoveTaskTool handles the move_task MCP tool.
type MoveTaskTool struct {
	board *Board
}

func NewMoveTaskTool(board *Board) *MoveTaskTool {
	return &MoveTaskTool{board: board}
}

// Definition returns the MCP tool definition for move_task.
func (t *MoveTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("move_task",
		mcp.WithDescription(
			"Move a task to a slot of a column on the same board. "+
				"Pass its current column to reorder, another column to move it across.",
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("Task ID from list_board"),
		),
		mcp.WithString("column_id",
			mcp.Required(),
			mcp.Description("Target column ID"),
		),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Zero-based slot among the visible tasks of the target column"),
		),
	)
}

// Handle processes the move_task tool call.
func (t *MoveTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := uuidArg(req, "task_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetID, err := uuidArg(req, "column_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	index := intArg(req, "index", -1)
	if index < 0 {
		return mcp.NewToolResultError("'index' is required"), nil
	}

	task, column, err := t.board.Access.Task(ctx, taskID, t.board.Actor, model.RoleEditor)
	if err != nil {
		return errorResult(err, "task"), nil
	}
	target := column
	if targetID != column.ID {
		target, err = t.board.Access.Column(ctx, targetID, t.board.Actor, model.RoleEditor)
		if err != nil {
			return errorResult(err, "column"), nil
		}
		if target.BoardID != column.BoardID {
			return mcp.NewToolResultError("the target column is on another board"), nil
		}
	}

	if err := t.board.Ordering.MoveTask(ctx, task, target.ID, index); err != nil {
		return errorResult(err, "task"), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Moved %q to %s at index %d", task.Title, target.Title, index)), nil
}
