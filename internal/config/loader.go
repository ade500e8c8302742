package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"github.com/example/water-supply/internal/status"
)

// Config captures environment driven configuration values for the supply service.
type Config struct {
	HTTPPort   int
	SQLiteDSN  string
	Limit      status.Limit
	PolicyFile string
	LogLevel   slog.Level
	Location   *time.Location
}

// Load parses configuration values from the current process environment,
// after loading an optional .env file from the working directory.
//
// Optional fields fall back to defaults; every malformed value is reported in
// a single error.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:  8080,
		SQLiteDSN: "file:supply.db?_pragma=busy_timeout(5000)",
		Limit:     status.Limit{Value: status.DefaultLimitValue, Type: status.DefaultLimitType},
		LogLevel:  slog.LevelInfo,
		Location:  time.UTC,
	}

	invalid := make([]string, 0, 4)

	if portValue := strings.TrimSpace(os.Getenv("SUPPLY_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "SUPPLY_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("SUPPLY_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if limitValue := strings.TrimSpace(os.Getenv("SUPPLY_LIMIT_VALUE")); limitValue != "" {
		limit, err := strconv.Atoi(limitValue)
		if err != nil || limit <= 0 {
			invalid = append(invalid, "SUPPLY_LIMIT_VALUE")
		} else {
			cfg.Limit.Value = limit
		}
	}

	if limitType := strings.TrimSpace(os.Getenv("SUPPLY_LIMIT_TYPE")); limitType != "" {
		cfg.Limit.Type = limitType
	}

	cfg.PolicyFile = strings.TrimSpace(os.Getenv("SUPPLY_POLICY_FILE"))

	if levelValue := strings.TrimSpace(os.Getenv("SUPPLY_LOG_LEVEL")); levelValue != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(levelValue)); err != nil {
			invalid = append(invalid, "SUPPLY_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	if tz := strings.TrimSpace(os.Getenv("SUPPLY_TIMEZONE")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			invalid = append(invalid, "SUPPLY_TIMEZONE")
		} else {
			cfg.Location = loc
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// LimitPolicy builds the limit policy described by the configuration. When a
// policy file is configured its defaults are layered over the environment
// limit.
func (c Config) LimitPolicy() (status.LimitPolicy, error) {
	if c.PolicyFile == "" {
		return status.FixedLimitPolicy{Limit: c.Limit}, nil
	}
	return LoadPolicy(c.PolicyFile, c.Limit)
}
