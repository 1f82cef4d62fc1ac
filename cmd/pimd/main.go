package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/pimd/internal/logging"
	"github.com/danmuck/pimd/internal/server"
	"github.com/docopt/docopt-go"
)

const version = "0.1.0"

const usage = `pimd, the PIM storage session and notification daemon.

Usage:
    pimd [--config=<path>]
    pimd -h | --help
    pimd --version

Options:
    -h --help         Show this screen.
    --version         Show version.
    --config=<path>   TOML configuration file.`

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pimd: %v\n", err)
		os.Exit(2)
	}
	logging.ConfigureRuntime()

	cfg := server.DefaultServiceConfig()
	if path, _ := opts.String("--config"); path != "" {
		if cfg, err = loadServiceConfig(path); err != nil {
			fmt.Fprintf(os.Stderr, "pimd: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := server.NewServiceWithConfig(cfg).Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "pimd: %v\n", err)
		os.Exit(1)
	}
}
