package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alanbjohnston/pacsat-telem/cmd/pacsat-telem/app"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"Usage: pacsat-telem [OPTION]...\n"+
			"-h,--help                        help\n"+
			"-d,--dir                         use this data directory, rather than default\n"+
			"-v,--verbose                     print additional status and progress messages\n")
}

func main() {
	var logLevel slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &logLevel}))

	config := app.NewConfig()

	var help bool
	flag.BoolVar(&help, "h", false, "help")
	flag.BoolVar(&help, "help", false, "help")
	flag.StringVar(&config.DataDir, "d", app.DefaultDataDir, "data directory")
	flag.StringVar(&config.DataDir, "dir", app.DefaultDataDir, "data directory")
	flag.BoolVar(&config.Verbose, "v", false, "verbose")
	flag.BoolVar(&config.Verbose, "verbose", false, "verbose")
	flag.Usage = usage
	flag.Parse()

	if help {
		usage()
		os.Exit(0)
	}

	if err := config.Load(); err != nil {
		logger.Error(fmt.Sprintf("failed to load configuration: %s", err))
		flag.Usage()
		os.Exit(1)
	}

	if config.Verbose {
		logLevel.Set(slog.LevelDebug)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	// SIGHUP is accepted as a config reload request but reloading is
	// not implemented yet; TODO: re-read the config file on SIGHUP.
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	go func() {
		for range reload {
			logger.Info("reload requested, ignoring (not implemented)")
		}
	}()

	if err := app.Run(ctx, config, logger); err != nil {
		logger.Error(err.Error())

		cancel()
		os.Exit(1)
	}
}
