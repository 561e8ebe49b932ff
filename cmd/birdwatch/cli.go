package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/birdwatch/birdwatch/internal/analyze"
	"github.com/birdwatch/birdwatch/internal/config"
	"github.com/birdwatch/birdwatch/internal/errors"
	"github.com/birdwatch/birdwatch/internal/ingest"
	"github.com/birdwatch/birdwatch/internal/mcp"
	"github.com/birdwatch/birdwatch/internal/notify"
	"github.com/birdwatch/birdwatch/internal/ops"
	"github.com/birdwatch/birdwatch/internal/provider"
	"github.com/birdwatch/birdwatch/internal/sched"
)

// app bundles the shared dependencies of all CLI commands.
type app struct {
	db     *sql.DB
	cfg    *config.Config
	logger *slog.Logger

	// newProvider is swapped out by tests to avoid real API calls.
	newProvider func() ingest.Provider
}

func (a *app) provider() ingest.Provider {
	if a.newProvider != nil {
		return a.newProvider()
	}
	return provider.New(a.cfg.XBearerToken, a.logger)
}

// runDeps wires the full ingestion-to-notification pipeline.
func (a *app) runDeps() ops.RunDeps {
	var notifiers []notify.Notifier
	if a.cfg.TelegramEnabled() {
		notifiers = append(notifiers, notify.NewTelegram(a.cfg.TelegramBotToken, a.cfg.TelegramChatID, a.logger))
	}
	if a.cfg.EmailEnabled() {
		notifiers = append(notifiers, notify.NewEmail(
			a.cfg.SMTPHost, a.cfg.SMTPPort, a.cfg.SMTPUser, a.cfg.SMTPPassword, a.cfg.EmailTo, a.logger))
	}

	return ops.RunDeps{
		DB:         a.db,
		Ingestor:   ingest.NewOrchestrator(a.db, a.provider(), a.cfg, a.logger),
		Summarizer: analyze.New(a.cfg, a.logger),
		Notifiers:  notifiers,
		Logger:     a.logger,
	}
}

func (a *app) requireBearerToken() error {
	if a.cfg.XBearerToken == "" {
		return errors.NewInvalidRequest("X_BEARER_TOKEN is not configured")
	}
	return nil
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(a *app) *cli.App {
	cliApp := &cli.App{
		Name:    "birdwatch",
		Usage:   "Monitor X/Twitter accounts with rate-aware incremental ingestion",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(a),
			removeCmd(a),
			listCmd(a),
			runCmd(a),
			queryCmd(a),
			historyCmd(a),
			regenerateCmd(a),
			serveCmd(a),
			mcpCmd(a),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	cliApp.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return cliApp
}

func addCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Register an account for monitoring",
		ArgsUsage: "<handle>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one handle is required"))
			}
			if err := a.requireBearerToken(); err != nil {
				return outputError(err)
			}

			output, err := ops.Register(c.Context, a.db, a.provider(), a.logger, ops.RegisterInput{
				Handle: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func removeCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Stop monitoring an account (collected tweets are kept)",
		ArgsUsage: "<handle>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("exactly one handle is required"))
			}

			output, err := ops.Unregister(a.db, ops.UnregisterInput{Handle: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func listCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List monitored accounts",
		Action: func(c *cli.Context) error {
			output, err := ops.List(a.db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func runCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run one ingestion cycle",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "summarize", Usage: "Generate and persist the daily summary"},
			&cli.BoolFlag{Name: "notify", Usage: "Deliver the summary over the configured channels"},
		},
		Action: func(c *cli.Context) error {
			if err := a.requireBearerToken(); err != nil {
				return outputError(err)
			}

			output, err := ops.Run(c.Context, a.runDeps(), ops.RunInput{
				Summarize: c.Bool("summarize") || c.Bool("notify"),
				Notify:    c.Bool("notify"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func queryCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "Show stored tweets from the trailing window",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "handle", Usage: "Restrict to one account"},
			&cli.IntFlag{Name: "since-hours", Usage: "Window size in hours (default 24)"},
			&cli.IntFlag{Name: "limit", Usage: "Maximum tweets to return"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Query(a.db, ops.QueryInput{
				Handle:     c.String("handle"),
				SinceHours: c.Int("since-hours"),
				Limit:      c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func historyCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent daily summaries",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "Number of summaries (default 7)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.History(a.db, ops.HistoryInput{Limit: c.Int("limit")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func regenerateCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "regenerate",
		Usage: "Rebuild the summary for a date from stored tweets",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "Date as YYYY-MM-DD (default today, UTC)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Regenerate(c.Context, a.runDeps(), ops.RegenerateInput{
				Date: c.String("date"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func serveCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the daily ingest-summarize-notify schedule until interrupted",
		Action: func(c *cli.Context) error {
			if err := a.requireBearerToken(); err != nil {
				return outputError(err)
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps := a.runDeps()
			daily := sched.NewDaily(a.cfg.SummaryHour, a.cfg.SummaryMinute, a.logger)
			err := daily.Run(ctx, func(ctx context.Context) error {
				_, err := ops.Run(ctx, deps, ops.RunInput{Summarize: true, Notify: true})
				return err
			})
			if ctx.Err() != nil {
				a.logger.Info("shutting down")
				return nil
			}
			return err
		},
	}
}

func mcpCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the stored data to MCP clients over stdio",
		Action: func(c *cli.Context) error {
			return mcp.Run(a.db, Version)
		},
	}
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if e, ok := err.(*errors.Error); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", e.Code, e.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
