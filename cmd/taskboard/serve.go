package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kingrea/taskboard/internal/auth"
	"github.com/kingrea/taskboard/internal/logging"
	"github.com/kingrea/taskboard/internal/server"
	"github.com/kingrea/taskboard/internal/store"
)

const (
	shutdownTimeout = 5 * time.Second
	storeCheckEvery = 30 * time.Second
)

type serveFlags struct {
	host string
	port int
}

func serveCmd(flags *globalFlags) *cobra.Command {
	opts := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API over the SQLite store",
		Long: `Run the taskboard API.

The allowed account comes from the environment:
  TASKBOARD_EMAIL, TASKBOARD_PASSWORD and TASKBOARD_SECRET (token signing key).

Examples:
  taskboard serve
  taskboard serve --port 9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				opts.port = -1
			}
			return runServe(cmd, flags, opts)
		},
	}
	cmd.Flags().StringVar(&opts.host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVar(&opts.port, "port", 0, "listen port (overrides config, 0 picks a free port)")
	return cmd
}

func runServe(cmd *cobra.Command, flags *globalFlags, opts *serveFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{LogsDir: cfg.LogsDir(), Verbose: flags.verbose, Stderr: true})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if flags.verbose {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer st.Close()

	gate := auth.NewGate(auth.CredentialsFromEnv(cfg.File.Auth.DisplayName, cfg.File.Auth.TokenTTL))
	if !gate.Configured() {
		logger.Warn("sign-in disabled: set TASKBOARD_EMAIL, TASKBOARD_PASSWORD and TASKBOARD_SECRET")
	}

	settings := server.SettingsFromConfig(cfg)
	if opts.host != "" {
		settings.Host = opts.host
	}
	if opts.port >= 0 {
		settings.Port = opts.port
	}
	srv := server.NewServer(settings, st, gate, server.WithLogger(logger))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "taskboard API listening on %s (db %s)\n", srv.BaseURL(), st.Path())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(storeCheckEvery)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := st.Ping(gctx); err != nil && gctx.Err() == nil {
					logger.Error("store unreachable", zap.Error(err))
				}
			}
		}
	})
	return g.Wait()
}
