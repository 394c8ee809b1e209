package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/codewarden/warden/cmd"
	errUtils "github.com/codewarden/warden/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		errUtils.CheckErrorPrintAndExit(err)
	}
}
