package main

import (
	"context"
	"os"

	"github.com/ikikae/inaka/pkg/cli"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development; missing file is fine
	_ = godotenv.Load()

	ctx := context.Background()
	if err := cli.Run(ctx, os.Args); err != nil {
		os.Exit(err.Code)
	}
}
