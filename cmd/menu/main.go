// Command menu is an interactive terminal menu with a Fibonacci printer,
// a temperature converter and a number-guessing game.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nibzard/taskman/internal/logging"
	"github.com/nibzard/taskman/internal/menu"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logging.NewFromConfig(os.Stderr, os.Getenv("TASKMAN_LOG_LEVEL"), os.Getenv("TASKMAN_LOG_FORMAT"), false, false)
	app := menu.New(os.Stdin, os.Stdout, menu.WithLogger(logger))

	if err := app.Run(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintf(os.Stderr, "\nInterrupted\n")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
