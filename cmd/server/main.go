package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/leaderboard-graph/internal/board"
	"github.com/DoyleJ11/leaderboard-graph/internal/config"
	"github.com/DoyleJ11/leaderboard-graph/internal/gameapi"
	"github.com/DoyleJ11/leaderboard-graph/internal/httpapi"
	"github.com/DoyleJ11/leaderboard-graph/internal/hub"
)

const shutdownTimeout = 5 * time.Second

type rootOptions struct {
	configPath string
	addr       string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "graphd",
		Short:         "Live leaderboard effect graph",
		Long:          "Polls the game API for players and effects and streams the resulting graph to render clients.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = opts.addr
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = opts.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "debug|info|warn|error (overrides config)")
	return cmd
}

func run(parent context.Context, cfg config.Config) error {
	log, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := gameapi.New(cfg.LeaderboardURL, cfg.EffectsURL, &http.Client{Timeout: cfg.FetchTimeout}, log.Named("gameapi"))
	h := hub.NewHub(ctx, log.Named("hub"))
	b := board.NewBoard(ctx, client, h, cfg.BoardOptions(), log.Named("board"))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.SetupRoutes(b, h, cfg.OriginPatterns, log.Named("ws")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs error
		errs = multierr.Append(errs, srv.Shutdown(sctx))
		select {
		case b.Inbox() <- board.Shutdown{}:
		case <-b.Done():
		}
		select {
		case <-b.Done():
		case <-sctx.Done():
			errs = multierr.Append(errs, errors.New("board did not stop"))
		}
		select {
		case h.Inbox() <- hub.ShutdownHub{}:
		case <-h.Done():
		}
		return errs
	})
	return g.Wait()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
