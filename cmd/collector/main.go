package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"policydash/internal/catalog"
	"policydash/internal/collector"
	"policydash/internal/config"
	"policydash/internal/logging"
	"policydash/internal/model"
	"policydash/internal/providers/fred"
	"policydash/internal/store"
	"policydash/internal/store/csvfile"
	"policydash/internal/store/sqlite"
)

const datasetAll = "all"

var (
	cfgFile string
	dataDir string
	dbPath  string
	cfg     *config.Config
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "collector run failed:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "collector",
		Short: "Fetch FRED series into the local cache",
		Long: `collector downloads the inflation and policy indicator sets from FRED,
joins them by date and overwrites the cache files the dashboard reads.

Example usage:
  collector run                      # Refresh both datasets
  collector run --dataset inflation  # Refresh one dataset
  collector run --db policydash.db   # Also mirror into SQLite
  collector runs --db policydash.db  # Show recent runs from the mirror`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./policydash.yaml)")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "cache directory (overrides data.dir)")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "sqlite mirror path (overrides data.db, empty disables)")

	root.AddCommand(newRunCmd(), newRunsCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var dataset string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch every indicator of one or all datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runCollector(ctx, cfg, dataset)
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", datasetAll, "dataset to refresh: inflation, policy or all")
	return cmd
}

func newRunsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent collector runs recorded in the SQLite mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRuns(cmd.Context(), cfg, limit, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}

func initConfig(cmd *cobra.Command) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("data-dir") {
		loaded.Data.Dir = dataDir
	}
	if cmd.Flags().Changed("db") {
		loaded.Data.DB = dbPath
	}
	if _, err := logging.Init(loaded.Logging()); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// runCollector builds the FRED client first so a missing credential fails
// before any cache file is opened.
func runCollector(ctx context.Context, cfg *config.Config, datasetName string) error {
	cat, err := catalog.Default()
	if err != nil {
		return err
	}
	datasets, err := selectDatasets(cat, datasetName)
	if err != nil {
		return err
	}

	provider, err := fred.NewWithConfig(cfg.FREDProvider())
	if err != nil {
		return err
	}

	cache, err := csvfile.New(cfg.Data.Dir)
	if err != nil {
		return err
	}
	mirror, err := openMirror(cfg.Data.DB)
	if err != nil {
		return err
	}
	defer mirror.Close()

	c := collector.New(provider, cache, mirror, cat.ObservationStart)
	if err := c.RunAll(ctx, datasets); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"datasets": len(datasets),
		"dir":      cfg.Data.Dir,
		"mirror":   cfg.Data.DB != "",
	}).Info("collector run complete")
	return nil
}

func selectDatasets(cat *catalog.Catalog, name string) ([]model.Dataset, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == datasetAll {
		return cat.Datasets, nil
	}
	ds, err := cat.Dataset(model.DatasetID(name))
	if err != nil {
		return nil, err
	}
	return []model.Dataset{ds}, nil
}

func openMirror(path string) (store.Store, error) {
	if strings.TrimSpace(path) == "" {
		return &store.NopStore{}, nil
	}
	return sqlite.New(path)
}

func listRuns(ctx context.Context, cfg *config.Config, limit int, w io.Writer) error {
	if strings.TrimSpace(cfg.Data.DB) == "" {
		return errors.New("runs requires a mirror database (--db or data.db)")
	}
	mirror, err := sqlite.New(cfg.Data.DB)
	if err != nil {
		return err
	}
	defer mirror.Close()

	runs, err := mirror.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	for _, run := range runs {
		line := fmt.Sprintf("%s  %-9s  %-9s  rows=%d  %s",
			run.ID, run.Dataset, run.Status, run.Rows, humanize.Time(run.StartedAt))
		if run.Error != "" {
			line += "  error=" + run.Error
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
