package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/artic-catalog/internal/config"
	"github.com/Sternrassler/artic-catalog/internal/tui"
	"github.com/Sternrassler/artic-catalog/pkg/catalog"
	"github.com/Sternrassler/artic-catalog/pkg/logging"
	"github.com/Sternrassler/artic-catalog/pkg/selection"
	"github.com/Sternrassler/artic-catalog/pkg/store"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion, saveConfig bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&saveConfig, "save-config", false, "write the resolved configuration to the config file and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("artcat %s\n", Version)
		return
	}

	if saveConfig {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		path, err := config.Save(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The TUI owns the terminal, so logs always go to a file.
	logger := logging.Setup(logging.Config{
		Level: logging.LogLevel(cfg.Logging.Level),
		File:  cfg.Logging.File,
	})
	logger.Info().Str("version", Version).Msg("Starting artcat")

	selStore, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open selection store: %w", err)
	}
	defer selStore.Close()

	clientCfg := catalog.DefaultConfig(cfg.API.UserAgent)
	clientCfg.BaseURL = cfg.API.BaseURL
	clientCfg.RequestsPerMinute = cfg.API.RequestsPerMinute
	clientCfg.Redis = openRedis(cfg.Cache.RedisAddr)

	client, err := catalog.New(clientCfg)
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}

	acc := selection.NewAccumulator(selStore)

	model := tui.NewModel(client, acc, cfg.API.PageSize)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info().Msg("Starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error().Err(err).Msg("TUI error")
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info().Msg("Shutting down")
	return nil
}

// openRedis connects the response cache. An unreachable redis degrades
// to uncached operation instead of blocking startup.
func openRedis(addr string) *redis.Client {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger := logging.NewLogger("main")
		logger.Warn().
			Err(err).
			Str("addr", addr).
			Msg("Redis unreachable - response cache disabled")
		client.Close()
		return nil
	}
	return client
}
