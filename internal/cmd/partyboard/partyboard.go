// Package partyboard parses service flags and launches the party engine.
package partyboard

import (
	"context"
	"flag"
	"fmt"
	"time"

	"golang.org/x/text/language"

	"github.com/louisbranch/partyboard/internal/party/app"
	"github.com/louisbranch/partyboard/internal/party/display"
	entrypoint "github.com/louisbranch/partyboard/internal/platform/cmd"
	"github.com/louisbranch/partyboard/internal/platform/timeouts"
)

// Config holds party engine command configuration.
type Config struct {
	Port         int           `env:"PARTYBOARD_PORT" envDefault:"8090"`
	DBPath       string        `env:"PARTYBOARD_DB_PATH" envDefault:"data/partyboard.db"`
	TickInterval time.Duration `env:"PARTYBOARD_TICK_INTERVAL" envDefault:"30s"`
	DisplayURL   string        `env:"PARTYBOARD_DISPLAY_URL"`
	DisplayToken string        `env:"PARTYBOARD_DISPLAY_TOKEN"`
	Locale       string        `env:"PARTYBOARD_LOCALE" envDefault:"en"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The health HTTP server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The party SQLite database path")
	fs.DurationVar(&cfg.TickInterval, "tick-interval", cfg.TickInterval, "Promotion scheduler poll interval")
	fs.StringVar(&cfg.DisplayURL, "display-url", cfg.DisplayURL, "The message-board API endpoint")
	fs.StringVar(&cfg.DisplayToken, "display-token", cfg.DisplayToken, "The message-board API bearer token")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Display language tag")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the party engine runtime.
func Run(ctx context.Context, cfg Config) error {
	board, err := display.NewClient(cfg.DisplayURL, cfg.DisplayToken, timeouts.Display)
	if err != nil {
		return fmt.Errorf("configure display client: %w", err)
	}
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return fmt.Errorf("parse locale %q: %w", cfg.Locale, err)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceParty, func(ctx context.Context) error {
		return app.Run(ctx, app.RuntimeConfig{
			Port:         cfg.Port,
			DBPath:       cfg.DBPath,
			TickInterval: cfg.TickInterval,
			Locale:       tag,
			Display:      board,
			Notifier:     board,
		})
	})
}
