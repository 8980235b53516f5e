// ideaboard-mcp serves the board tools over MCP stdio, acting as the user
// whose token is in IDEABOARD_TOKEN.
//
// Usage:
//
//	IDEABOARD_TOKEN=<jwt> ideaboard-mcp
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"ideaboard/internal/auth"
	"ideaboard/internal/config"
	"ideaboard/internal/database"
	"ideaboard/internal/mcptools"
	"ideaboard/internal/ordering"
	"ideaboard/internal/repository"
	"ideaboard/internal/service"

	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	token := os.Getenv("IDEABOARD_TOKEN")
	if token == "" {
		return errors.New("IDEABOARD_TOKEN is required")
	}
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)
	actor, err := tokens.Parse(token)
	if err != nil {
		return fmt.Errorf("parsing IDEABOARD_TOKEN: %w", err)
	}

	db, err := database.New(database.Config{Driver: cfg.DBDriver, DSN: cfg.DSN(), MaxOpenConns: 4})
	if err != nil {
		return err
	}
	defer database.Close(db)

	boards := repository.NewBoardRepository(db)
	shares := repository.NewBoardShareRepository(db)
	columns := repository.NewColumnRepository(db)
	tasks := repository.NewTaskRepository(db)

	// Stdout carries the MCP protocol, so the services log nothing.
	board := &mcptools.Board{
		Access:   service.NewAccessService(boards, shares, columns, tasks),
		Ordering: service.NewOrderingService(columns, tasks, ordering.Spacing{Gap: cfg.PositionGap}, nil, nil),
		Columns:  columns,
		Tasks:    tasks,
		Actor:    actor,
	}

	return server.ServeStdio(mcptools.NewServer(board))
}
