package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/specialistvlad/neurogrid/internal/app"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// options collects flag values. Only flags the user set override the
// config file.
type options struct {
	configFile string

	catalogPath      string
	logLevel         string
	logFormat        string
	uiURL            string
	uiNamespace      string
	healthcheckPort  int
	workers          int
	strictInvariants bool
	traceExporter    string
	metricExporter   string
	otlpEndpoint     string
}

// NewRootCommand returns the neurogrid command with its subcommands. Command
// output goes to outW, logs of the catalog and validate commands to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	return newRootCommand(outW, errW, &options{})
}

func newRootCommand(outW, errW io.Writer, opts *options) *cobra.Command {
	defaults := app.DefaultConfig()

	root := &cobra.Command{
		Use:   "neurogrid",
		Short: "A node-graph engine for composing neural network models",
		Long: `neurogrid keeps a graph of typed nodes, links and parameter values,
and recompiles it incrementally as an editor UI changes it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "", "Path to a YAML config file.")
	pf.StringVar(&opts.catalogPath, "catalog", "", "Path to extra .hcl catalog manifests, a file or a directory.")
	pf.StringVar(&opts.logLevel, "log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&opts.logFormat, "log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Connect to the editor UI and serve graph operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return app.NewApp(cmd.OutOrStdout(), cfg).Run(cmd.Context())
		},
	}
	sf := serve.Flags()
	sf.StringVar(&opts.uiURL, "ui-url", "", "socket.io URL of the editor UI. Empty disables the bridge.")
	sf.StringVar(&opts.uiNamespace, "ui-namespace", "", "socket.io namespace of the editor UI.")
	sf.IntVar(&opts.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	sf.IntVar(&opts.workers, "workers", defaults.Workers, "Number of concurrent compile workers.")
	sf.BoolVar(&opts.strictInvariants, "strict", false, "Check graph invariants after every change.")
	sf.StringVar(&opts.traceExporter, "trace-exporter", defaults.TraceExporter, "Trace exporter. Options: 'none', 'stdout', 'otlp'.")
	sf.StringVar(&opts.metricExporter, "metric-exporter", defaults.MetricExporter, "Metric exporter. Options: 'none', 'stdout', 'prometheus'.")
	sf.StringVar(&opts.otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC endpoint for traces.")

	var asJSON bool
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the node kinds the UI can build",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			a := app.NewApp(cmd.ErrOrStderr(), cfg)
			return a.WriteCatalog(cmd.Context(), cmd.OutOrStdout(), asJSON)
		},
	}
	catalogCmd.Flags().BoolVar(&asJSON, "json", false, "Print the catalog as JSON.")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the catalog manifests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			reg := app.NewApp(cmd.ErrOrStderr(), cfg).Registry()
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog is valid: %d kinds, %d operations.\n", len(reg.Kinds()), len(reg.OperationNames()))
			return nil
		},
	}

	root.AddCommand(serve, catalogCmd, validateCmd)
	return root
}

// resolve layers defaults, the config file and the flags the user set, in
// that order, and validates the result.
func (o *options) resolve(cmd *cobra.Command) (*app.Config, error) {
	cfg := app.DefaultConfig()
	if o.configFile != "" {
		if err := app.LoadFile(o.configFile, &cfg); err != nil {
			return nil, &ExitError{Code: 2, Message: err.Error()}
		}
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			apply()
		}
	}
	set("catalog", func() { cfg.CatalogPath = o.catalogPath })
	set("log-level", func() { cfg.LogLevel = o.logLevel })
	set("log-format", func() { cfg.LogFormat = o.logFormat })
	set("ui-url", func() { cfg.UIURL = o.uiURL })
	set("ui-namespace", func() { cfg.UINamespace = o.uiNamespace })
	set("healthcheck-port", func() { cfg.HealthcheckPort = o.healthcheckPort })
	set("workers", func() { cfg.Workers = o.workers })
	set("strict", func() { cfg.StrictInvariants = o.strictInvariants })
	set("trace-exporter", func() { cfg.TraceExporter = o.traceExporter })
	set("metric-exporter", func() { cfg.MetricExporter = o.metricExporter })
	set("otlp-endpoint", func() { cfg.OTLPEndpoint = o.otlpEndpoint })

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, nil
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, outW, errW io.Writer, args []string) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
