package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/tagwm/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file and its includes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, path, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(res.Files) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "config: ok (no file at %s, using defaults)\n", path)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config: ok (%d file(s))\n", len(res.Files))
		return nil
	},
}

var configPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg *config.Config
		if defaults, _ := cmd.Flags().GetBool("defaults"); defaults {
			cfg = config.DefaultConfig()
		} else {
			res, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configExplainCmd = &cobra.Command{
	Use:   "explain <yaml.path>",
	Short: "Show a config value and where it was set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		value, src, err := config.Explain(res, args[0])
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "path: %s\n", args[0])
		fmt.Fprintf(w, "source: %s\n", formatSource(src))
		fmt.Fprintf(w, "value:\n%s", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd, configPrintCmd, configPathCmd, configExplainCmd)
	configPrintCmd.Flags().Bool("defaults", false, "Print built-in defaults (no files)")
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		return "default"
	default:
		return string(src.Kind)
	}
}
