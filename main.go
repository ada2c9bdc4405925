package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sitelift/sitelift/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
