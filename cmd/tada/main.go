package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Makepad-fr/tada/internal/cli"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/log"
	"github.com/Makepad-fr/tada/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Root flags (apply to every subcommand)
	configPath := flag.String("config", "", "path to a TOML config file (default ./tada.toml)")
	theme := flag.String("theme", "", "output theme: classic, neon or mono")
	group := flag.Bool("group", false, "group ls output by pending/completed")
	flag.Usage = func() { cli.PrintHelp(flag.CommandLine.Output()) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp(os.Stderr)
		return cli.ExitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		ui.Fail(os.Stderr, "config: "+err.Error())
		return cli.ExitError
	}
	if *theme != "" {
		cfg.UI.Theme = *theme
	}
	if err := ui.SetTheme(cfg.UI.Theme); err != nil {
		ui.Fail(os.Stderr, err.Error())
		return cli.ExitUsage
	}

	if err := log.Setup(cfg.Log, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "log setup:", err)
		return cli.ExitError
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Run(ctx, args, cli.Options{
		Config: cfg,
		Group:  *group,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
}
