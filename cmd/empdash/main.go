// Package main provides the CLI entrypoint for empdash.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/empdash/internal/config"
	"github.com/verte-zerg/empdash/internal/dashboard"
	"github.com/verte-zerg/empdash/internal/dashui"
	"github.com/verte-zerg/empdash/internal/dataset"
	"github.com/verte-zerg/empdash/internal/export"
	"github.com/verte-zerg/empdash/internal/insight"
	"github.com/verte-zerg/empdash/internal/server"
	"github.com/verte-zerg/empdash/internal/stats"
	"github.com/verte-zerg/empdash/internal/store"
)

const (
	defaultAddr         = ":8080"
	defaultSource       = "employee_data.csv"
	shutdownGracePeriod = 5 * time.Second
)

var (
	sourcePath  string
	sqliteTable string
	currency    string
	exportPath  string

	serveAddr string

	convertTo    string
	convertTable string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "empdash",
		Short:         "Employee performance dashboard",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runDashboardCmd,
	}

	rootCmd.PersistentFlags().StringVar(&sourcePath, "source", defaultSource, "dataset file (.csv, .tsv, .txt, .db, .sqlite)")
	rootCmd.PersistentFlags().StringVar(&sqliteTable, "sqlite-table", store.DefaultTable, "table to read from a SQLite source")
	rootCmd.PersistentFlags().StringVar(&currency, "currency", insight.DefaultCurrency, "currency symbol for salary figures")
	rootCmd.Flags().StringVar(&exportPath, "out", export.DefaultFilename, "export path for the e key")

	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// loadFileConfig applies config values to every flag not set on the
// command line.
func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "source", &sourcePath, fileCfg.Dashboard.Source)
	applyStringConfig(cmd, "sqlite-table", &sqliteTable, fileCfg.Dashboard.SQLiteTable)
	applyStringConfig(cmd, "currency", &currency, fileCfg.Dashboard.Currency)
	applyStringConfig(cmd, "out", &exportPath, fileCfg.Dashboard.ExportPath)
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Server.Addr)
	return fileCfg, nil
}

func currentSource() (dataset.Source, error) {
	path := strings.TrimSpace(sourcePath)
	if path == "" {
		return dataset.Source{}, fmt.Errorf("--source must not be empty")
	}
	return dataset.Source{Path: path, SQLiteTable: strings.TrimSpace(sqliteTable)}, nil
}

func openSession(ctx context.Context, cmd *cobra.Command) (*dashboard.Session, error) {
	if _, err := loadFileConfig(cmd); err != nil {
		return nil, err
	}
	src, err := currentSource()
	if err != nil {
		return nil, err
	}
	session := dashboard.NewSession(src, nil, currency)
	if err := session.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return session, nil
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	session, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	model := dashui.NewModel(session, exportPath)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print KPIs, insights and charts for the filtered view",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	addFilterFlags(cmd)
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	session, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	bounds, _ := session.Bounds()
	view, err := session.Evaluate(filterSpecFromFlags(cmd, bounds))
	if err != nil {
		return err
	}
	if view.Warning != "" {
		logErrln("warning:", view.Warning)
	}
	return writeReport(cmd.OutOrStdout(), view, session.Currency())
}

func writeReport(w io.Writer, view dashboard.View, symbol string) error {
	if err := stats.RenderSummary(w, view.Result, insight.Texts(slices.Values(view.Insights)), symbol); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if view.Result.Count == 0 {
		return nil
	}
	if err := stats.RenderBreakdown(w, view.Result, symbol); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderBars(w, "Employees by Department", stats.CountByDepartment(view.Table), stats.CountFormat, 0, false); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderBars(w, "Performance Score Distribution", stats.PerformanceDistribution(view.Table), stats.CountFormat, 0, false); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderSpread(w, stats.SalarySpread(view.Table), symbol); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderPivot(w, stats.PerformancePivot(view.Table)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered view as an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportPath, "out", export.DefaultFilename, "output path")
	addFilterFlags(cmd)
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	session, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	bounds, _ := session.Bounds()
	spec := filterSpecFromFlags(cmd, bounds)
	view, err := session.Evaluate(spec)
	if err != nil {
		return err
	}
	if view.Warning != "" {
		logErrf("warning: %s\n", view.Warning)
	}
	data, err := session.Export(spec)
	if err != nil {
		return err
	}
	if err := export.WriteFile(exportPath, data); err != nil {
		return err
	}
	logErrf("Wrote %s (%d rows, %s)\n", exportPath, view.Table.Len(), humanize.Bytes(uint64(len(data))))
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over an HTTP JSON API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	src, err := currentSource()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Routes answer 503 until the first load completes.
	session := dashboard.NewSession(src, nil, currency)
	e := server.New(session)

	go func() {
		log.Printf("loading dataset %s", src)
		t0 := time.Now()
		if err := session.Load(ctx); err != nil {
			log.Printf("failed to load dataset: %v (POST /api/reload to retry)", err)
			return
		}
		tbl, _ := session.Table()
		log.Printf("loaded %d records in %v", tbl.Len(), time.Since(t0))
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", serveAddr)
		if err := e.Start(serveAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Copy a dataset into a SQLite database",
		Args:  cobra.NoArgs,
		RunE:  runConvertCmd,
	}
	cmd.Flags().StringVar(&convertTo, "to", "", "target SQLite file (default: XDG data dir)")
	cmd.Flags().StringVar(&convertTable, "table", store.DefaultTable, "target table name")
	return cmd
}

func runConvertCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	src, err := currentSource()
	if err != nil {
		return err
	}
	target := strings.TrimSpace(convertTo)
	if target == "" {
		target = config.DefaultDBPath()
	}
	return convertDataset(cmd.Context(), src, target, convertTable)
}

func convertDataset(ctx context.Context, src dataset.Source, target, table string) error {
	if strings.TrimSpace(table) == "" {
		return fmt.Errorf("--table must not be empty")
	}
	if !(dataset.Source{Path: target}).IsSQLite() {
		return fmt.Errorf("target %s must have a .db, .sqlite or .sqlite3 extension", target)
	}
	tbl, err := dataset.Load(ctx, src)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	st, err := store.Open(target)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	if err := st.WriteTable(ctx, table, tbl); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	logErrf("Wrote %d records to %s\n", tbl.Len(), dataset.Source{Path: target, SQLiteTable: table})
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# empdash configuration
# Uncomment a value to enable it. CLI flags override config values.

[dashboard]
# source = %q      # Dataset file (.csv, .tsv, .txt, .db, .sqlite)
# sqlite-table = %q         # Table read from SQLite sources
# currency = %q                   # Currency symbol for salary figures
# export-path = %q  # Where the dashboard writes exports

[server]
# addr = %q                   # Listen address for empdash serve
`,
		defaultSource,
		store.DefaultTable,
		insight.DefaultCurrency,
		export.DefaultFilename,
		defaultAddr,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
