// cmd/taskboard/main.go
//
// Entry point for the taskboard binary. `taskboard serve` runs the API over
// the SQLite store; `taskboard` (or `taskboard tui`) opens the terminal
// client against it.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kingrea/taskboard/internal/config"
)

var Version = "dev"

type globalFlags struct {
	verbose bool
	workDir string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	tuiOpts := &tuiFlags{}
	root := &cobra.Command{
		Use:          "taskboard",
		Short:        "Projects, tasks and a cross-project kanban board",
		Version:      Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), flags, tuiOpts)
		},
	}
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().StringVar(&flags.workDir, "dir", "", "directory holding .taskboard (default: current directory)")
	tuiOpts.bind(root)

	root.AddCommand(tuiCmd(flags))
	root.AddCommand(serveCmd(flags))
	root.AddCommand(initCmd(flags))
	return root
}

func initCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create .taskboard with a default config.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", cfg.ConfigPath())
			fmt.Fprintf(cmd.OutOrStdout(), "Database: %s\n", cfg.DatabasePath())
			fmt.Fprintln(cmd.OutOrStdout(), "Set TASKBOARD_EMAIL, TASKBOARD_PASSWORD and TASKBOARD_SECRET before running `taskboard serve`.")
			return nil
		},
	}
}

// loadConfig initializes the state directory if needed and loads its config.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	workDir := flags.workDir
	if workDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		workDir = cwd
	}
	if err := config.InitDir(workDir); err != nil {
		return nil, fmt.Errorf("initialize %s: %w", config.Dir, err)
	}
	return config.NewConfig(workDir)
}
