package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/luki/smarttent/internal/config"
	"github.com/luki/smarttent/internal/dashboard"
	"github.com/luki/smarttent/internal/logging"
	"github.com/luki/smarttent/internal/monitor"
	"github.com/luki/smarttent/internal/relay"
	"github.com/luki/smarttent/internal/telemetry"
)

const appName = "smarttent"

// Default version is "dev" if not set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cmd := "monitor"
	var args []string
	if len(os.Args) > 1 {
		cmd, args = os.Args[1], os.Args[2:]
	}

	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		printHelp()
		return
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "monitor":
		err = runMonitor(ctx, cfg)
	case "serve":
		err = runServe(ctx, cfg)
	case "send":
		err = runSend(ctx, cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printHelp()
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Usage: smarttent [command]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  monitor       live dashboard for one device (default)")
	fmt.Println("  serve         run the relay API devices post readings to")
	fmt.Println("  send [file]   post one JSON reading from file or stdin")
	fmt.Println()
	fmt.Println("Configuration comes from the environment or a .env file:")
	fmt.Println("  SMARTTENT_URL, DEVICE_ID, POLL_INTERVAL, STARTUP_DELAY, LOCALE,")
	fmt.Println("  SIGNAL_BARS, HTTP_ADDR, MQTT_BROKER, MQTT_PORT, MQTT_TOPIC,")
	fmt.Println("  APP_ENV, LOG_LEVEL, LOG_FILE")
}

func newClient(cfg config.Config, logger *slog.Logger) *telemetry.Client {
	return telemetry.NewClient(telemetry.Config{
		Origin:       cfg.ServerURL,
		DeviceID:     cfg.DeviceID,
		PollInterval: cfg.PollInterval,
	}, telemetry.WithLogger(logger))
}

// runMonitor owns the terminal, so logs go to the rotating file.
func runMonitor(ctx context.Context, cfg config.Config) error {
	logger, closer := logging.NewFile(cfg, version, appName)
	defer closer.Close()
	slog.SetDefault(logger)

	logger.Info("starting", "version", version, "env", cfg.AppEnv, "log_level", cfg.LogLevel.String())

	client := newClient(cfg, logger)
	tree := dashboard.NewDefaultTree(cfg.SignalBars)
	renderer := dashboard.NewRenderer(client, tree, dashboard.LabelsFor(cfg.Locale), logger)
	poller := dashboard.NewPoller(renderer, logger)

	err := monitor.Run(ctx, monitor.RunConfig{
		Renderer:     renderer,
		Poller:       poller,
		DeviceID:     client.DeviceID(),
		Interval:     client.PollInterval(),
		StartupDelay: cfg.StartupDelay,
	})
	logger.Info("shutting down")
	return err
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	logger.Info("starting", "version", version, "env", cfg.AppEnv, "log_level", cfg.LogLevel.String())

	err := relay.Run(ctx, cfg, logger)
	logger.Info("shutting down")
	return err
}

func runSend(ctx context.Context, cfg config.Config, args []string) error {
	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	var in io.Reader = os.Stdin
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var payload map[string]any
	if err := json.NewDecoder(in).Decode(&payload); err != nil {
		return fmt.Errorf("read reading: %w", err)
	}
	if payload == nil {
		return errors.New("read reading: expected a JSON object")
	}

	client := newClient(cfg, logger)
	if !client.SubmitReading(ctx, payload) {
		return errors.New("reading was not accepted")
	}
	fmt.Println("sent")
	return nil
}
