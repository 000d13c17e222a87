package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	// Embedded zone database for hosts without /usr/share/zoneinfo.
	_ "time/tzdata"

	"github.com/tphakala/wildlife-analytics/cmd"
	"github.com/tphakala/wildlife-analytics/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cmd.RootCommand(app.NewContext()).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
