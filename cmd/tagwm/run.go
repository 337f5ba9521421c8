package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tagwm/internal/daemon"
	"github.com/1broseidon/tagwm/internal/ipc"
	"github.com/1broseidon/tagwm/internal/platform"
	"github.com/1broseidon/tagwm/internal/wm"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the window manager (foreground)",
	Args:  cobra.NoArgs,
	RunE:  runWM,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runWM(cmd *cobra.Command, _ []string) error {
	res, path, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config

	logger, err := newLogger(cmd, cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.Info("configuration loaded", "path", path, "files", len(res.Files), "tags", len(cfg.Tags))

	backend, err := platform.NewLinuxBackendFromDisplay(logger)
	if err != nil {
		return fmt.Errorf("failed to start window manager: %w", err)
	}
	defer backend.Disconnect()

	w, err := wm.New(wm.Options{Backend: backend, Config: cfg, Logger: logger})
	if err != nil {
		return err
	}
	if err := w.Scan(); err != nil {
		return fmt.Errorf("failed to adopt existing windows: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl := daemon.NewController(daemon.ControllerConfig{ConfigPath: path, Logger: logger}, w)

	srv, err := ipc.NewServer(ipc.ServerConfig{Version: version, Logger: logger}, ctrl)
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		logger.Warn("remote control disabled", "error", err)
	} else {
		defer srv.Stop()
	}

	if cfg.Watch {
		watcher, err := daemon.NewWatcher(daemon.WatcherConfig{Path: path, Logger: logger}, ctrl.Reload)
		if err != nil {
			logger.Warn("config watching disabled", "error", err)
		} else {
			go watcher.Run(ctx)
		}
	}

	go reloadOnHangup(ctx, ctrl, logger)

	runErr := w.Run(ctx)
	w.Cleanup()
	if runErr != nil {
		logger.Error("window manager stopped on error", "error", runErr)
		return runErr
	}
	logger.Info("window manager exited")
	return nil
}

// reloadOnHangup reloads the config file on SIGHUP until ctx ends.
func reloadOnHangup(ctx context.Context, ctrl *daemon.Controller, logger *slog.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			err := ctrl.Reload(ctx)
			if errors.Is(err, wm.ErrStopped) {
				return
			}
			if err != nil {
				logger.Warn("config reload rejected, keeping current config", "error", err)
			}
		}
	}
}
