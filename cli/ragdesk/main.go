package main

import (
	"context"
	"os"
	"os/signal"

	ragdeskcmder "github.com/papercomputeco/ragdesk/cmd/ragdesk"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := ragdeskcmder.NewRagdeskCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
