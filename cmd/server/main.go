package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/taskkeeper/internal/server"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	ctx := context.Background()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	app.Run(ctx)
}
