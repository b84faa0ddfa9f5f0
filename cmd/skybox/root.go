package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gizatt/skybox/internal/config"
	"github.com/gizatt/skybox/internal/elemcache"
	"github.com/gizatt/skybox/internal/fetch"
	"github.com/gizatt/skybox/internal/frame"
	"github.com/gizatt/skybox/internal/imagery"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "skybox",
		Short:         "Resolve current geostationary weather-satellite frames",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "satellite catalog path (embedded sample when empty)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newResolveCommand(opts))
	rootCmd.AddCommand(newCatalogCommand(opts))

	return rootCmd
}

func (o *rootOptions) logger() (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(o.logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", o.logLevel)
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.configPath)
}

// buildResolver wires the shared resolution pipeline: persistent element
// cache, HTTP client (or the failing offline one), image loader, resolver.
// The returned closer releases the cache database.
func buildResolver(cfg *config.Config, logger *slog.Logger, offline bool) (*frame.Resolver, func() error, error) {
	store, err := elemcache.OpenSQLite(cfg.Cache.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening element cache: %w", err)
	}

	var client fetch.Doer = fetch.NewClient()
	if offline {
		client = fetch.ErrorDoer{Err: errors.New("network disabled")}
	}

	elements := elemcache.New(store, client, logger)
	loader := &imagery.HTTPLoader{Client: client}
	resolver := frame.NewResolver(cfg, elements, client, loader, logger)
	return resolver, store.Close, nil
}
