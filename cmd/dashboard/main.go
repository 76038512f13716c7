package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"policydash/internal/catalog"
	"policydash/internal/config"
	"policydash/internal/dataset"
	"policydash/internal/logging"
	"policydash/internal/presenter"
	"policydash/internal/server"
	"policydash/internal/store"
	"policydash/internal/store/csvfile"
	"policydash/internal/store/sqlite"
)

var (
	cfgFile string
	dataDir string
	source  string
	cfg     *config.Config
)

type metaFile struct {
	GeneratedAt string     `json:"generated_at"`
	Terms       []termMeta `json:"terms"`
}

type termMeta struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type termsFile struct {
	GeneratedAt string               `json:"generated_at"`
	Terms       []presenter.TermView `json:"terms"`
}

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dashboard failed:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve or export the presidential term dashboard",
		Long: `dashboard reads the cached indicator tables and presents one card per
presidential term with a CPI summary and five line charts.

Example usage:
  dashboard serve                   # Serve on :8050
  dashboard serve --source sqlite   # Read the SQLite mirror instead of CSV
  dashboard build --out site/data   # Write static JSON`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./policydash.yaml)")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "cache directory (overrides data.dir)")
	root.PersistentFlags().StringVar(&source, "source", "", "table source: csv or sqlite (overrides data.source)")

	root.AddCommand(newServeCmd(), newBuildCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides server.addr)")
	return cmd
}

func newBuildCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Export term views as static JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := buildSite(cmd.Context(), cfg, outDir); err != nil {
				return err
			}
			fmt.Printf("dashboard build complete (out=%s)\n", outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "site/data", "output directory")
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
	if cmd.Flags().Changed("source") {
		loaded.Data.Source = source
		if err := loaded.Validate(); err != nil {
			return err
		}
	}
	if _, err := logging.Init(loaded.Logging()); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func openSource(cfg *config.Config) (store.Store, error) {
	if cfg.Data.Source == config.SourceSQLite {
		return sqlite.New(cfg.Data.DB)
	}
	return csvfile.New(cfg.Data.Dir)
}

func newPresenter(ctx context.Context, cfg *config.Config) (*presenter.Presenter, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	st, err := openSource(cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	repo, err := dataset.Load(ctx, st, cat.Datasets)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w (run the collector first)", err)
		}
		return nil, err
	}
	return presenter.New(cat, repo), nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	p, err := newPresenter(ctx, cfg)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(p).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", cfg.Server.Addr).Info("dashboard listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(stopCh)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-stopCh:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logrus.Info("dashboard stopped")
	return nil
}

func buildSite(ctx context.Context, cfg *config.Config, outDir string) error {
	p, err := newPresenter(ctx, cfg)
	if err != nil {
		return err
	}
	views, err := p.BuildTermViews()
	if err != nil {
		return err
	}
	overview, err := p.BuildOverview()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	meta := metaFile{GeneratedAt: now, Terms: make([]termMeta, 0, len(views))}
	for _, view := range views {
		meta.Terms = append(meta.Terms, termMeta{ID: view.ID, Label: view.Label})
	}
	if err := writeJSON(filepath.Join(outDir, "meta.json"), meta); err != nil {
		return fmt.Errorf("write meta.json: %w", err)
	}
	if err := writeJSON(filepath.Join(outDir, "terms.json"), termsFile{GeneratedAt: now, Terms: views}); err != nil {
		return fmt.Errorf("write terms.json: %w", err)
	}
	if err := writeJSON(filepath.Join(outDir, "overview.json"), overview); err != nil {
		return fmt.Errorf("write overview.json: %w", err)
	}
	return nil
}

func writeJSON(path string, value any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
