package mcptools

import (
	"context"
	"fmt"
	"strings"

	"ideaboard/internal/model"

	"github.com/mark3labs/mcp-go/mcp"
)

// ListBoardTool handles the list_board MCP tool.
type ListBoardTool struct {
	board *Board
}

func NewListBoardTool(board *Board) *ListBoardTool {
	return &ListBoardTool{board: board}
}

// Definition returns the MCP tool definition for list_board.
func (t *ListBoardTool) Definition() mcp.Tool {
	return mcp.NewTool("list_board",
		mcp.WithDescription(
			"Show a board as columns of tasks in display order. "+
				"Use the ids it prints with create_task and move_task. Indexes are zero-based.",
		),
		mcp.WithString("board_id",
			mcp.Required(),
			mcp.Description("Board ID"),
		),
	)
}

// Handle processes the list_board tool call.
func (t *ListBoardTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, err := uuidArg(req, "board_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.board.Access.Check(ctx, boardID, t.board.Actor, model.RoleViewer); err != nil {
		return errorResult(err, "board"), nil
	}

	columns, err := t.board.Columns.GetByBoardID(ctx, boardID)
	if err != nil {
		return errorResult(err, "board"), nil
	}
	if len(columns) == 0 {
		return mcp.NewToolResultText("The board has no columns yet."), nil
	}

	var b strings.Builder
	for _, col := range columns {
		tasks, err := t.board.Tasks.GetByColumnID(ctx, col.ID)
		if err != nil {
			return errorResult(err, "column"), nil
		}
		fmt.Fprintf(&b, "## %s (%s)\n", col.Title, col.ID)
		if len(tasks) == 0 {
			b.WriteString("_empty_\n")
		}
		for i, task := range tasks {
			fmt.Fprintf(&b, "%d. %s (%s)\n", i, task.Title, task.ID)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}
