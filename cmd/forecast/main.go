package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/forecast/internal/cmd"
	"github.com/felixgeelhaar/forecast/internal/exitcode"
	"github.com/felixgeelhaar/forecast/internal/ux"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	interrupted := ctx.Err() != nil
	stop()

	switch {
	case err == nil:
		exitcode.Success.Exit()
	case interrupted:
		fmt.Fprintln(os.Stderr, "\ncancelled")
		exitcode.Interrupted.Exit()
	default:
		fmt.Fprintln(os.Stderr, ux.RenderError(err, ux.NewStyles(os.Getenv("NO_COLOR") != "")))
		exitcode.For(err).Exit()
	}
}
