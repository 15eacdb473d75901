package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/naveenspark/nexus/internal/command"
	"github.com/naveenspark/nexus/internal/config"
	"github.com/naveenspark/nexus/internal/directory"
	"github.com/naveenspark/nexus/internal/logging"
	"github.com/naveenspark/nexus/internal/relay"
	"github.com/naveenspark/nexus/internal/settings"
	"github.com/naveenspark/nexus/internal/tui"
	"github.com/naveenspark/nexus/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("nexus", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := config.RegisterFlags(fs)
	showVersion := fs.BoolP("version", "v", false, "show version")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stdout, fs)
			return nil
		}
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, "nexus "+version)
		return nil
	}

	sub := fs.Arg(0)
	switch sub {
	case "version":
		fmt.Fprintln(stdout, "nexus "+version)
		return nil
	case "help":
		printHelp(stdout, fs)
		return nil
	case "", "reload", "stats":
	default:
		return fmt.Errorf("unknown command %q (see nexus help)", sub)
	}

	cfg, err := config.Resolve(flags)
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	if sub == "" {
		return runConsole(cfg, level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, closer, err := logging.New(logging.Options{File: cfg.LogFile, Level: level, Text: stderr})
	if err != nil {
		return err
	}
	defer closer.Close() //nolint:errcheck

	c := client.New(cfg.APIURL, cfg.RequestTimeout)
	if sub == "reload" {
		return runReload(ctx, command.New(c, logger), stdout)
	}
	return runStats(ctx, c, stdout)
}

// runReload re-registers the bot's slash commands once.
func runReload(ctx context.Context, cmds *command.Commands, stdout io.Writer) error {
	err := cmds.ReloadCommands(ctx)
	printResult(stdout, cmds.ReloadState())
	return err
}

// runStats prints the bot's metrics once.
func runStats(ctx context.Context, src tui.StatsSource, stdout io.Writer) error {
	stats, err := src.Stats(ctx)
	if err != nil {
		return err
	}
	printStats(stdout, stats.Entries())
	return nil
}

func runConsole(cfg *config.Config, level slog.Level) error {
	status := logging.NewStatusHandler(slog.LevelWarn)
	logger, closer, err := logging.New(logging.Options{File: cfg.LogFile, Level: level, Status: status})
	if err != nil {
		return err
	}
	defer closer.Close() //nolint:errcheck

	relayURL, err := cfg.RelayURL()
	if err != nil {
		return err
	}
	relays := relay.NewRegistry(relay.Options{Logger: logger})
	defer relays.Close()

	c := client.New(cfg.APIURL, cfg.RequestTimeout)
	logger.Info("console starting", "api", c.BaseURL(), "relay", relayURL, "env", cfg.Environment)

	app := tui.NewApp(tui.Deps{
		Stats:     c,
		Directory: directory.New(c, logger),
		Settings:  settings.New(c, logger),
		Commands:  command.New(c, logger),
		Events:    relays.Relay(relayURL),
		Status:    status,
		Options: tui.Options{
			StatsInterval:       cfg.StatsInterval,
			LiveLogCapacity:     cfg.LiveLogCapacity,
			CeremonyLogCapacity: cfg.CeremonyLogCapacity,
			GuildID:             cfg.GuildID,
			Version:             version,
			APIURL:              c.BaseURL(),
		},
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
