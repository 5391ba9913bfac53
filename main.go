package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gestorjudicial/gestor/cmd"
)

// Set with -ldflags "-X main.Version=... -X main.BuildTime=...".
var (
	Version   = "dev"
	BuildTime = ""
)

func main() {
	cmd.SetVersion(Version, BuildTime)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
