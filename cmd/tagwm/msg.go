package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tagwm/internal/ipc"
)

var msgCmd = &cobra.Command{
	Use:   "msg <command> [arg...]",
	Short: "Run a window manager command in the running instance",
	Long: `Run a named command as if its key binding was pressed, for example:

  tagwm msg view 3
  tagwm msg setmfact +0.05
  tagwm msg setlayout monocle
  tagwm msg setmfact -0.05
  tagwm msg spawn st -e htop

The argument uses the same syntax as the arg of a key binding. For spawn,
more than one argument is taken as an explicit argv.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMsg,
}

var statusCmd = &cobra.Command{
	Use:   "status [text...]",
	Short: "Override the bar status text (no text restores the root window name)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return ipc.NewClient().SetStatus(strings.Join(args, " "))
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the configuration file in the running instance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ipc.NewClient().Reload(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "config reloaded")
		return nil
	},
}

var quitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Stop the running window manager",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ipc.NewClient().Quit()
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the window manager is running",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := ipc.NewClient().Ping()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "tagwm %s, up %ds\n", data.Version, data.UptimeSeconds)
		return nil
	},
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show monitors and clients of the running instance",
	Args:  cobra.NoArgs,
	RunE:  runState,
}

func init() {
	rootCmd.AddCommand(msgCmd, statusCmd, reloadCmd, quitCmd, pingCmd, stateCmd)
	stateCmd.Flags().Bool("json", false, "Print the raw state as JSON")
	// Arguments such as "-0.05" or a spawn argv are not flags.
	msgCmd.Flags().SetInterspersed(false)
}

func runMsg(cmd *cobra.Command, args []string) error {
	name := args[0]
	var arg string
	var argv []string
	switch rest := args[1:]; {
	case len(rest) == 1:
		arg = rest[0]
	case len(rest) > 1 && name == "spawn":
		argv = rest
	case len(rest) > 1:
		return fmt.Errorf("%s takes at most one argument", name)
	}
	return ipc.NewClient().Exec(name, arg, argv)
}

func runState(cmd *cobra.Command, _ []string) error {
	st, err := ipc.NewClient().State()
	if err != nil {
		return err
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}
	fmt.Fprint(cmd.OutOrStdout(), formatState(st, outputWidth(os.Stdout)))
	return nil
}
