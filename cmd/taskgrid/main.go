package main

import (
	"log"
	"os"

	"github.com/taskmaster/taskgrid/cmd/taskgrid/commands"
)

// @title TaskGrid API
// @version 1.0
// @description Task grid storage and date/time offset engine

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
