package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"mcp-relay/internal/client"
	"mcp-relay/internal/config"
	"mcp-relay/internal/relay"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Best effort: a local .env may carry MCP_URL and MCP_API_KEY.
	_ = godotenv.Load()

	var cli config.CLI
	kong.Parse(&cli,
		kong.Name("mcp-relay"),
		kong.Description("Relay stdin to a remote HTTPS endpoint and stream back the response."),
		kong.Vars{"version": fmt.Sprintf("%s (%s, %s)", version, commit, date)},
	)

	fx.New(
		fx.Provide(
			func() *config.CLI { return &cli },
			config.Load,
			newLogger,
			client.NewEndpointClient,
			relay.New,
		),
		fx.WithLogger(newFxLogger),
		fx.Invoke(warnConfigPermissions, runExchange),
	).Run()
}

// newLogger builds the diagnostic logger. It always writes to stderr:
// stdout carries the forwarded response body verbatim, so no diagnostic
// output may ever be interleaved with it.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		h = slog.NewJSONHandler(os.Stderr, opts)
	default:
		h = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(h)
}

// newFxLogger routes fx lifecycle events through the diagnostic logger at
// debug level, keeping stderr quiet on an ordinary run.
func newFxLogger(logger *slog.Logger) fxevent.Logger {
	l := &fxevent.SlogLogger{Logger: logger}
	l.UseLogLevel(slog.LevelDebug)
	return l
}

func warnConfigPermissions(cfg *config.Config, logger *slog.Logger) {
	cfg.WarnPermissions(logger)
}

// runExchange performs the single exchange once the app has started and
// shuts the app down with the exit code the exchange earned: 0 for a fully
// streamed response, 1 for any failure.
func runExchange(lc fx.Lifecycle, sd fx.Shutdowner, r *relay.Relay, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := r.Run(context.Background()); err != nil {
					logger.Error("relay failed", "err", err)
					_ = sd.Shutdown(fx.ExitCode(1))
					return
				}
				_ = sd.Shutdown(fx.ExitCode(0))
			}()
			return nil
		},
	})
}
