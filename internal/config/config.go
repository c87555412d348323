// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	// LogFile receives logs while the terminal UI owns stdout.
	LogFile string

	// ServerURL is the origin of the relay, without the /api suffix.
	ServerURL    string
	DeviceID     string
	PollInterval time.Duration
	StartupDelay time.Duration
	Locale       string
	SignalBars   int

	HTTPAddr string

	// MQTTBroker empty disables MQTT ingest on the relay.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none)
// into the environment. Variables already set win. A missing file is not an
// error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func LoadFromEnv() (Config, error) {
	appEnv := getenv("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(getenv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	serverURL := strings.TrimRight(getenv("SMARTTENT_URL", "http://localhost:5000"), "/")
	u, err := url.Parse(serverURL)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SMARTTENT_URL %q: %w", serverURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return Config{}, fmt.Errorf("invalid SMARTTENT_URL %q (want http(s)://host[:port])", serverURL)
	}

	pollInterval, err := parsePositiveDuration("POLL_INTERVAL", "10s")
	if err != nil {
		return Config{}, err
	}

	delayStr := getenv("STARTUP_DELAY", "1s")
	startupDelay, err := time.ParseDuration(delayStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid STARTUP_DELAY %q: %w", delayStr, err)
	}
	if startupDelay < 0 {
		return Config{}, fmt.Errorf("invalid STARTUP_DELAY %q (must not be negative)", delayStr)
	}

	locale := strings.ToLower(getenv("LOCALE", "en"))
	switch locale {
	case "en", "fr":
	default:
		return Config{}, fmt.Errorf("invalid LOCALE %q (allowed: en, fr)", locale)
	}

	barsStr := getenv("SIGNAL_BARS", "4")
	bars, err := strconv.Atoi(barsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SIGNAL_BARS %q: %w", barsStr, err)
	}
	if bars < 1 || bars > 10 {
		return Config{}, fmt.Errorf("invalid SIGNAL_BARS %d (allowed: 1-10)", bars)
	}

	portStr := getenv("MQTT_PORT", "1883")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", portStr, err)
	}
	if port < 1 || port > 65535 {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %d (allowed: 1-65535)", port)
	}

	return Config{
		AppEnv:       appEnv,
		LogLevel:     level,
		LogFile:      getenv("LOG_FILE", "smarttent.log"),
		ServerURL:    serverURL,
		DeviceID:     getenv("DEVICE_ID", "smart_tent_001"),
		PollInterval: pollInterval,
		StartupDelay: startupDelay,
		Locale:       locale,
		SignalBars:   bars,
		HTTPAddr:     getenv("HTTP_ADDR", ":5000"),
		MQTTBroker:   getenv("MQTT_BROKER", ""),
		MQTTPort:     port,
		MQTTClientID: getenv("MQTT_CLIENT_ID", "smarttent-relay"),
		MQTTTopic:    getenv("MQTT_TOPIC", "smarttent/+/data"),
	}, nil
}

// getenv returns the trimmed value of key, or def when it is empty.
func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	s := getenv(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q (must be positive)", key, s)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
