package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tagwm/internal/ipc"
	"github.com/1broseidon/tagwm/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve window manager control tools over MCP (stdio transport)",
	Long: `Start an MCP server on stdin/stdout. Tools (get_state, run_command,
set_status, reload) are forwarded to the running window manager over its
control socket. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		lvl, err := parseLevel(level)
		if err != nil {
			return err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

		client := ipc.NewClient()
		if _, err := client.Ping(); err != nil {
			logger.Warn("window manager not reachable yet, tools will fail until it starts", "error", err)
		}

		srv := mcp.NewServer(client, logger)
		if err := srv.Run(cmd.Context()); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tagwm %s (commit: %s)\n", version, commit)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd, versionCmd)
}
