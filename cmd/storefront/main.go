package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/storefront/internal/catalog"
	"github.com/jask/storefront/internal/config"
	"github.com/jask/storefront/internal/database"
	"github.com/jask/storefront/internal/database/repository"
	"github.com/jask/storefront/internal/diag"
	"github.com/jask/storefront/internal/logging"
	"github.com/jask/storefront/internal/telemetry"
	"github.com/jask/storefront/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "storefront",
		Short: "Browse the demo store catalog",
		Long: `storefront reads products, users and categories from a fakestoreapi
compatible catalog. Without a subcommand it opens the terminal UI.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context())
		},
	}
	root.PersistentFlags().StringP("output", "o", formatTable, "Output format: table, json or yaml")

	root.AddCommand(
		newProductsCmd(),
		newUsersCmd(),
		newUserCmd(),
		newCategoriesCmd(),
		newSnapshotCmd(),
		newFailuresCmd(),
		newFixturesCmd(),
		newConfigCmd(),
	)
	return root
}

// env is what every catalog command needs.
type env struct {
	cfg     config.Config
	log     *zap.Logger
	client  *catalog.Client
	metrics *telemetry.Metrics
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())
	client, err := catalog.New(cfg.Catalog.BaseURL,
		catalog.WithTimeout(cfg.Catalog.Timeout),
		catalog.WithObserver(metrics),
	)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, client: client, metrics: metrics}, nil
}

func (e *env) Close() {
	_ = e.log.Sync()
}

// openJournal prepares the failure journal database.
func openJournal(path string) (*repository.FailureRepo, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir journal dir: %w", err)
	}
	if err := database.RunMigrations(path); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}
	return repository.NewFailureRepo(db), db.Close, nil
}

func runTUI(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sink := diag.Tee{diag.NewLogger(e.log)}
	if e.cfg.Journal.Path != "" {
		repo, closeDB, err := openJournal(e.cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer closeDB()
		sink = append(sink, diag.NewJournal(repo, e.log))
	}

	if addr := e.cfg.Metrics.Addr; addr != "" {
		go func() {
			if err := e.metrics.Serve(ctx, addr, e.log); err != nil {
				e.log.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	deps := tui.Deps{Catalog: e.client, Sink: sink, CurrencyPrefix: e.cfg.UI.CurrencyPrefix}
	e.log.Info("starting tui", zap.String("catalog", e.cfg.Catalog.BaseURL))
	p := tea.NewProgram(tui.New(ctx, deps, e.cfg.Catalog.FeaturedCategory), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
