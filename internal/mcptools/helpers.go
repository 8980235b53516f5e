// Package mcptools exposes board operations as MCP tools so agents and bot
// members can work a board over stdio.
package mcptools

import (
	"errors"
	"fmt"

	"ideaboard/internal/repository"
	"ideaboard/internal/service"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// Board bundles what the tools need. Actor is the user every call runs as.
type Board struct {
	Access   *service.AccessService
	Ordering *service.OrderingService
	Columns  *repository.ColumnRepository
	Tasks    *repository.TaskRepository
	Actor    uuid.UUID
}

// uuidArg extracts a required uuid argument.
func uuidArg(req mcp.CallToolRequest, key string) (uuid.UUID, error) {
	raw := req.GetString(key, "")
	if raw == "" {
		return uuid.Nil, fmt.Errorf("'%s' is required", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("'%s' is not a valid id", key)
	}
	return id, nil
}

// intArg extracts a numeric argument from a tool request.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// errorResult turns a service error into the text an agent sees.
func errorResult(err error, what string) *mcp.CallToolResult {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return mcp.NewToolResultError(what + " not found")
	case errors.Is(err, service.ErrForbidden):
		return mcp.NewToolResultError("access denied")
	case errors.Is(err, service.ErrInvalidMove):
		return mcp.NewToolResultError("index is out of range")
	}
	return mcp.NewToolResultError(fmt.Sprintf("failed: %v", err))
}
