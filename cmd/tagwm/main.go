package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tagwm/internal/config"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:   "tagwm",
	Short: "A dynamic tiling window manager for X11",
	Long: `tagwm manages X11 windows in tiled, monocle and floating layouts.
Windows carry tags; a monitor shows every window whose tags intersect
its selected tag set. Run without a subcommand to start the window manager.`,
	SilenceUsage: true,
	RunE:         runWM,
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", version, commit)
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: $XDG_CONFIG_HOME/tagwm/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default: from config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configPath returns the --config flag or the default config location.
func configPath(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return path, nil
	}
	return config.DefaultConfigPath()
}

// loadConfig loads the configuration selected by --config.
func loadConfig(cmd *cobra.Command) (*config.LoadResult, string, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, "", err
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, path, err
	}
	return res, path, nil
}

// newLogger builds the process logger. The --log-level flag wins over the
// config value.
func newLogger(cmd *cobra.Command, cfgLevel string) (*slog.Logger, error) {
	level := cfgLevel
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		level = flagLevel
	}
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (use debug, info, warn or error)", s)
	}
}
