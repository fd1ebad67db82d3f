package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/taskboard/internal/client"
	"github.com/kingrea/taskboard/internal/logbook"
	"github.com/kingrea/taskboard/internal/logging"
	"github.com/kingrea/taskboard/internal/tui"
)

type tuiFlags struct {
	project string
	email   string
}

func (f *tuiFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.project, "project", "", "open the projects screen on this project id")
	cmd.Flags().StringVar(&f.email, "email", "", "prefill the sign-in email (default: $TASKBOARD_EMAIL)")
}

func tuiCmd(flags *globalFlags) *cobra.Command {
	opts := &tuiFlags{}
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal client",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), flags, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func runTUI(ctx context.Context, flags *globalFlags, opts *tuiFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{LogsDir: cfg.LogsDir(), Verbose: flags.verbose})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	lb, err := logbook.New(cfg.ActivityLogPath(), logbook.WithMirror(logger))
	if err != nil {
		return fmt.Errorf("open activity log: %w", err)
	}
	appOpts := []tui.Option{
		tui.WithLogbook(lb),
		tui.WithLogger(logger),
		tui.WithFocus(opts.project),
		tui.WithTimeout(cfg.File.Client.Timeout),
	}
	if watcher, err := lb.Watch(); err != nil {
		logger.Warn("activity log watch unavailable", zap.Error(err))
	} else {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		watcher.Start(watchCtx)
		defer func() { _ = watcher.Stop() }()
		appOpts = append(appOpts, tui.WithWatcher(watcher))
	}
	email := opts.email
	if email == "" {
		email = os.Getenv("TASKBOARD_EMAIL")
	}
	appOpts = append(appOpts, tui.WithEmail(email))

	api := client.New(cfg.APIURL(), cfg.File.Client.Timeout)
	logger.Info("client starting", zap.String("api", api.BaseURL()))

	p := tea.NewProgram(
		tui.NewApp(api, appOpts...),
		tea.WithAltScreen(),
		// Motion events while a button is held drive mouse drags.
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
