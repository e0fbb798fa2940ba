package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/okian/dots/internal/roundcheck"
	"github.com/okian/dots/pkg/logger"
)

var CLI struct {
	URL      string        `short:"u" default:"http://localhost:9080" help:"Base URL of the service"`
	Rounds   int           `short:"n" default:"3000" help:"Number of cases to generate and submit"`
	Workers  int           `short:"w" default:"0" help:"Concurrent requests (default CPU cores * 2)"`
	Timeout  time.Duration `default:"30s" help:"HTTP request timeout"`
	Deadline time.Duration `default:"10m" help:"Overall run deadline"`
	Seed     uint64        `help:"Generator seed (default from clock)"`
	Output   string        `short:"o" help:"Write generated cases to this JSON file"`
	Verbose  bool          `short:"v" help:"Log every case"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("round-check"),
		kong.Description("Submits generated rounds to a dots service and verifies every settlement."),
	)

	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		kctx.Exit(1)
	}
	if CLI.Verbose {
		_ = logger.SetLevelString("debug")
	}

	workers := CLI.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, CLI.Deadline)
	defer cancel()

	_, err := roundcheck.Run(ctx, &roundcheck.Config{
		BaseURL:    CLI.URL,
		Rounds:     CLI.Rounds,
		Workers:    workers,
		Timeout:    CLI.Timeout,
		Seed:       CLI.Seed,
		OutputFile: CLI.Output,
		Verbose:    CLI.Verbose,
	}, logger.Named("roundcheck"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "round check failed:", err)
		cancel()
		stop()
		kctx.Exit(1)
	}
}
