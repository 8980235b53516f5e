package main

import (
	"log"

	_ "ideaboard/docs"
	"ideaboard/internal/config"
	"ideaboard/internal/server"
)

// @title           Ideaboard API
// @version         1.0
// @description     Boards of ordered columns and tasks, with a short undo window on destructive actions.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
