package mcptools

import (
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewServer registers the board tools on a stdio-ready MCP server.
func NewServer(board *Board) *server.MCPServer {
	s := server.NewMCPServer(
		"ideaboard",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(
			"Work an ideaboard board as its bot member. Call list_board first; "+
				"indexes are zero-based slots among the tasks currently shown.",
		),
	)

	listTool := NewListBoardTool(board)
	s.AddTool(listTool.Definition(), listTool.Handle)

	createTool := NewCreateTaskTool(board)
	s.AddTool(createTool.Definition(), createTool.Handle)

	moveTool := NewMoveTaskTool(board)
	s.AddTool(moveTool.Definition(), moveTool.Handle)

	return s
}
