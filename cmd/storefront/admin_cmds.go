package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/storefront/internal/config"
	"github.com/jask/storefront/internal/fixture"
	"github.com/jask/storefront/internal/logging"
)

func newFailuresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "failures",
		Short: "Show the most recent failed catalog reads from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if cfg.Journal.Path == "" {
				return errors.New("failure journal is disabled (journal.path is empty)")
			}
			repo, closeDB, err := openJournal(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer closeDB()

			if age, _ := cmd.Flags().GetDuration("prune"); age > 0 {
				n, err := repo.Prune(cmd.Context(), time.Now().UTC().Add(-age))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pruned %d rows older than %s\n", n, age)
				return nil
			}

			rows, err := repo.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), format, rows, []string{"When", "Unit", "Operation", "Message"}, failureRows(rows))
		},
	}
	cmd.Flags().Int("limit", 20, "Number of rows to show")
	cmd.Flags().Duration("prune", 0, "Delete rows older than this age instead of listing")
	return cmd
}

func newFixturesCmd() *cobra.Command {
	fixtures := &cobra.Command{
		Use:   "fixtures",
		Short: "Offline catalog built from embedded fixtures",
	}
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the fixture catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			level, _ := cmd.Flags().GetString("log-level")
			log, err := logging.NewConsole(level)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serveFixtures(ctx, addr, log, func(url string) {
				fmt.Fprintf(cmd.OutOrStdout(), "fixture catalog on %s (STOREFRONT_CATALOG_BASE_URL=%s)\n", url, url)
			})
		},
	}
	serve.Flags().String("addr", "127.0.0.1:8089", "Listen address")
	serve.Flags().String("log-level", "info", "Request log level")
	fixtures.AddCommand(serve)
	return fixtures
}

// serveFixtures blocks until ctx is done. ready receives the base URL once
// the listener is bound.
func serveFixtures(ctx context.Context, addr string, log *zap.Logger, ready func(url string)) error {
	data, err := fixture.Load()
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	h := fixture.NewRouter(data, middleware.RequestID, middleware.Recoverer, fixture.RequestLogger(log))
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	url := "http://" + ln.Addr().String()
	log.Info("fixture catalog listening", zap.String("url", url))
	if ready != nil {
		ready(url)
	}
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			path := config.Path()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
	cfgCmd.AddCommand(initCmd)
	return cfgCmd
}
