// skyeview is the terminal viewer for the Skye catalog. It browses the
// content API in a full-screen TUI and hands playback to an external
// player. Static assets and precached URLs are kept in a versioned
// in-memory cache so the viewer degrades cleanly when the API is down.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"skyeserver/internal/cache"
	"skyeserver/internal/client"
	"skyeserver/internal/config"
	"skyeserver/internal/logging"
	"skyeserver/internal/offline"
	"skyeserver/internal/player"
	"skyeserver/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var apiURL string
	var playerCommand string

	flagSet := pflag.NewFlagSet("skyeview", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "", "path to config file")
	flagSet.StringVar(&apiURL, "api", "", "content API base URL (overrides config)")
	flagSet.StringVar(&playerCommand, "player", "", "player command line, e.g. \"mpv --fs\" (overrides config)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiURL != "" {
		cfg.Viewer.APIURL = apiURL
	}
	if playerCommand != "" {
		cfg.Viewer.PlayerCommand = playerCommand
	}

	// The alt screen owns the terminal. Log records only go to a file.
	logger, closer, err := logging.New(cfg.Logging, io.Discard)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer closer.Close()

	offlineCfg := cfg.Viewer.Offline
	transport := offline.NewTransport(nil,
		cache.New(offlineCfg.Capacity, offlineCfg.MaxSize),
		offlineCfg.Version, "/api/",
		logger.With().Str("component", "offline").Logger())

	if len(offlineCfg.Precache) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		if err := transport.Install(ctx, offlineCfg.Precache); err != nil {
			logger.Warn().Err(err).Msg("precache failed, continuing without it")
		}
		cancel()
	}
	if dropped := transport.Activate(offlineCfg.Version); dropped > 0 {
		logger.Info().Int("entries", dropped).Msg("dropped stale cache entries")
	}

	api := client.New(cfg.Viewer.APIURL, &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	})

	var mediaPlayer tui.MediaPlayer
	if p := player.New(cfg.Viewer.PlayerCommand, logger.With().Str("component", "player").Logger()); p.IsAvailable() {
		mediaPlayer = p
	} else {
		logger.Warn().Str("command", cfg.Viewer.PlayerCommand).Msg("player not found, playback disabled")
	}

	logger.Info().Str("api", cfg.Viewer.APIURL).Msg("starting viewer")

	model := tui.NewModel(api, mediaPlayer, cfg.Viewer.HeroInterval, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Skye viewer: browse and play the catalog from a terminal.

Usage:
  skyeview [flags]

Keys:
  arrows or hjkl  move focus
  enter           select
  /               search
  r               refresh
  q               quit

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
