package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/staticd/internal/logger"
	"github.com/marmos91/staticd/pkg/config"
	"github.com/marmos91/staticd/pkg/content"
	"github.com/marmos91/staticd/pkg/server"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

const usage = `staticd - minimal static file HTTP server

Usage:
  staticd <command> [flags]

Commands:
  init      Write a sample configuration file
  start     Start the server
  version   Print version information

Flags for init:
  --config string   Path to write (default: $XDG_CONFIG_HOME/staticd/config.yaml)
  --force           Overwrite an existing file

Flags for start:
  --config string   Path to config file (default: $XDG_CONFIG_HOME/staticd/config.yaml)

Environment variables (STATICD_ prefix) override config values, e.g.:
  STATICD_LOGGING_LEVEL=DEBUG
  STATICD_ADAPTERS_HTTP_PORT=9000
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(os.Args[2:])
	case "start":
		err = runStart(os.Args[2:])
	case "version":
		fmt.Printf("staticd %s (commit %s)\n", version, commit)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to write the config file")
	force := fs.Bool("force", false, "Overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *configPath
	if path == "" {
		var err error
		if path, err = config.InitConfig(*force); err != nil {
			return err
		}
	} else if err := config.InitConfigToPath(path, *force); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s\n", path)
	fmt.Println("Edit content.root, then run: staticd start")
	return nil
}

func runStart(args []string) error {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := configureLogger(cfg.Logging); err != nil {
		return err
	}

	logger.Info("staticd %s starting", version)
	logger.Info("Log level: %s, format: %s", cfg.Logging.Level, cfg.Logging.Format)

	root, err := content.New(cfg.Content.Root, cfg.Content.ContainPaths)
	if err != nil {
		return fmt.Errorf("failed to open content root: %w", err)
	}
	if root.Contained() {
		logger.Info("Serving %s (paths contained)", root.Dir())
	} else {
		logger.Info("Serving %s", root.Dir())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metricsResult := config.InitializeMetrics(cfg)
	metricsDone := make(chan struct{})
	if metricsResult.Server != nil {
		go func() {
			defer close(metricsDone)
			if err := metricsResult.Server.Start(ctx); err != nil {
				logger.Error("Metrics server error: %v", err)
			}
		}()
	} else {
		close(metricsDone)
	}

	adapters, err := config.CreateAdapters(cfg, metricsResult.HTTPMetrics)
	if err != nil {
		return err
	}

	srv := server.New(root)
	srv.SetStopTimeout(cfg.Server.ShutdownTimeout)
	for _, a := range adapters {
		if err := srv.AddAdapter(a); err != nil {
			return fmt.Errorf("failed to register adapter: %w", err)
		}
	}

	logger.Info("Server is running. Press Ctrl+C to stop.")

	err = srv.Serve(ctx)
	cancel()
	<-metricsDone

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

func configureLogger(cfg config.LoggingConfig) error {
	logger.SetLevel(cfg.Level)
	logger.SetFormat(cfg.Format)
	if err := logger.SetOutput(cfg.Output); err != nil {
		return fmt.Errorf("failed to configure log output: %w", err)
	}
	return nil
}
