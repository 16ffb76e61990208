package main

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/internal/pipeline"
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/registry"
	"github.com/ajitpratap0/strata/pkg/dedup"
	"github.com/ajitpratap0/strata/pkg/json"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/metrics"
	"github.com/ajitpratap0/strata/pkg/observability"
)

// app carries the settings shared by every command. Flags are bound through
// viper so each one can also come from a STRATA_* environment variable.
type app struct {
	v          *viper.Viper
	connectors *registry.Registry
}

func newRootCommand() *cobra.Command {
	return newApp(nil).command()
}

func newApp(connectors *registry.Registry) *app {
	v := viper.New()
	v.SetEnvPrefix("STRATA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if connectors == nil {
		connectors = registry.GetRegistry()
	}
	return &app{v: v, connectors: connectors}
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:   "strata",
		Short: "Strata - declarative multi-source record reconciliation",
		Long: `Strata stages records from many sources, unions and merges them through a
graph of declarative layers, resolves conflicting values and writes the
reconciled tables to destinations.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringP("config", "c", "pipeline.yaml", "Path to the pipeline YAML file")
	pf.String("log-level", "", "Log level (debug, info, warn, error); overrides settings.log_level")
	pf.String("log-format", "console", "Log encoding (console, json)")
	pf.Bool("tracing", false, "Export OpenTelemetry spans to stderr")
	pf.String("metrics-addr", "", "Serve Prometheus metrics on this address while running")
	_ = a.v.BindPFlags(pf)

	root.AddCommand(
		a.versionCommand(),
		a.listCommand(),
		a.validateCommand(),
		a.runCommand(),
		a.analyzeCommand(),
		a.scheduleCommand(),
	)
	return root
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Strata v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available connectors and their options",
		Run: func(cmd *cobra.Command, _ []string) {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tNAME\tDESCRIPTION\tOPTIONS")
			for _, info := range a.connectors.Catalog() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Type, info.Name, info.Description, strings.Join(info.Options, ", "))
			}
			_ = w.Flush()
		},
	}
}

func (a *app) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a pipeline without touching any data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.loadPipeline()
			if err != nil {
				return err
			}
			runner, err := pipeline.New(p, pipeline.Options{Connectors: a.connectors})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pipeline %q is valid: %d sources, %d layers, %d outputs\n",
				p.Name, len(p.Sources), len(runner.Layers()), len(p.Outputs))
			return nil
		},
	}
}

func (a *app) runCommand() *cobra.Command {
	var opts pipeline.Options
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline",
		Long: `Run stages every source, materialises the layers in declaration order and
writes each output.

Example:
  strata run --config pipeline.yaml --only-layers contacts --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.execute(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printSummary(cmd, res, opts.DryRun)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&opts.OnlyLayers, "only-layers", nil, "Materialise only these layers and their dependencies")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Do everything except writing to destinations")
	return cmd
}

func (a *app) analyzeCommand() *cobra.Command {
	var name string
	keys := dedup.DefaultKeyColumns()
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report identifier coverage and duplicates of a source or layer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.execute(cmd.Context(), pipeline.Options{OnlyLayers: []string{name}, DryRun: true})
			if err != nil {
				return err
			}
			t, ok := res.Table(name)
			if !ok {
				return fmt.Errorf("table %s was not materialised", name)
			}
			data, err := json.MarshalIndent(dedup.Analyze(t, keys), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "layer", "", "Source or layer to analyze (required)")
	cmd.Flags().StringVar(&keys.Email, "email-column", keys.Email, "Column holding e-mail addresses")
	cmd.Flags().StringVar(&keys.Phone, "phone-column", keys.Phone, "Column holding phone numbers")
	_ = cmd.MarkFlagRequired("layer")
	return cmd
}

func (a *app) loadPipeline() (*config.Pipeline, error) {
	p, err := config.Load(a.v.GetString("config"))
	if err != nil {
		return nil, err
	}
	level := a.v.GetString("log-level")
	if level == "" {
		level = p.Settings.LogLevel
	}
	if err := logger.Init(logger.Config{
		Level:       level,
		Encoding:    a.v.GetString("log-format"),
		OutputPaths: []string{"stderr"},
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// execute loads the pipeline and runs it once, with tracing and the
// metrics endpoint set up for the duration of the run.
func (a *app) execute(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	p, err := a.loadPipeline()
	if err != nil {
		return nil, err
	}
	log := logger.Get().With(zap.String("component", "strata-cli"))

	if a.v.GetBool("tracing") || p.Settings.Tracing {
		cfg := observability.DefaultConfig()
		cfg.Enabled = true
		cfg.ServiceVersion = version
		if err := observability.Init(cfg); err != nil {
			return nil, err
		}
		defer func() {
			if err := observability.Shutdown(context.Background()); err != nil {
				log.Warn("failed to flush traces", zap.Error(err))
			}
		}()
	}

	addr := a.v.GetString("metrics-addr")
	if addr == "" {
		addr = p.Settings.MetricsAddr
	}
	if addr != "" {
		stop := serveMetrics(addr, log)
		defer stop()
	}

	opts.Connectors = a.connectors
	opts.Logger = log
	runner, err := pipeline.New(p, opts)
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx)
}

func serveMetrics(addr string, log *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func printSummary(cmd *cobra.Command, res *pipeline.Result, dryRun bool) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tKIND\tROWS\tCOLUMNS")
	for _, s := range res.Sources {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", s.Name, s.Kind, s.Rows, s.Columns)
	}
	for _, l := range res.Layers {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", l.Name, l.Kind, l.Rows, l.Columns)
	}
	_ = w.Flush()

	if len(res.Outputs) > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		w = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "OUTPUT\tLAYER\tDESTINATION\tROWS\tSTATUS")
		for _, o := range res.Outputs {
			status := "written"
			switch {
			case o.Skipped:
				status = "skipped"
			case dryRun:
				status = "dry-run"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", o.Name, o.Layer, o.Destination, o.Rows, status)
		}
		_ = w.Flush()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nrun %s finished in %s\n", res.RunID, res.Duration.Round(time.Millisecond))
}
